package stats

import (
	"fmt"
	"math"
	"slices"

	"github.com/RyanBlaney/sonido-tfa/algorithms/common"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// QuartileInfo contains quartile-specific information
type QuartileInfo struct {
	Q1  float64 `json:"q1"`  // First quartile (25th percentile)
	Q2  float64 `json:"q2"`  // Second quartile (50th percentile, median)
	Q3  float64 `json:"q3"`  // Third quartile (75th percentile)
	IQR float64 `json:"iqr"` // Interquartile range (Q3 - Q1)
}

// Summary describes the distribution of one ridge quantity over time
type Summary struct {
	Count     int          `json:"count"`
	Mean      float64      `json:"mean"`
	StdDev    float64      `json:"std_dev"` // Population standard deviation
	Min       float64      `json:"min"`
	Max       float64      `json:"max"`
	Quartiles QuartileInfo `json:"quartiles"`
}

// Summarize computes the summary of data. Quartiles use linear
// interpolation between the closest ranks.
func Summarize(data []float64) (*Summary, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", common.ErrInvalidParameter)
	}
	if floats.HasNaN(data) {
		return nil, fmt.Errorf("%w: data contains NaN", common.ErrInvalidParameter)
	}

	sorted := slices.Clone(data)
	slices.Sort(sorted)

	mean, std := stat.PopMeanStdDev(sorted, nil)
	q := QuartileInfo{
		Q1: quantile(0.25, sorted),
		Q2: quantile(0.5, sorted),
		Q3: quantile(0.75, sorted),
	}
	q.IQR = q.Q3 - q.Q1

	return &Summary{
		Count:     len(sorted),
		Mean:      mean,
		StdDev:    std,
		Min:       sorted[0],
		Max:       sorted[len(sorted)-1],
		Quartiles: q,
	}, nil
}

// quantile interpolates between closest ranks, p in [0, 1]
func quantile(p float64, sorted []float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := min(lo+1, len(sorted)-1)
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// CoefficientOfVariation returns StdDev/|Mean|, or +Inf for a zero mean
func (s *Summary) CoefficientOfVariation() float64 {
	if s.Mean == 0 {
		return math.Inf(1)
	}
	return s.StdDev / math.Abs(s.Mean)
}
