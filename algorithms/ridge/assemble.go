package ridge

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/RyanBlaney/sonido-tfa/algorithms/common"
	"github.com/RyanBlaney/sonido-tfa/algorithms/wavelet"
)

// AssembleParams controls thresholding and smoothing of a ridge
type AssembleParams struct {
	// Threshold masks every time index whose ridge power is below it
	Threshold float64 `json:"threshold" yaml:"threshold"`

	// SmoothingWindow is the moving average length applied to the period and
	// amplitude traces. 0 disables smoothing, other values are normalized to
	// an odd length of at least 3.
	SmoothingWindow int `json:"smoothing_window" yaml:"smoothing_window"`
}

// Record holds the physical quantities along a ridge for every unmasked
// time index. All slices have the same length; masked indices are absent,
// which leaves gaps in TimeIndices.
type Record struct {
	TimeIndices   []int     `json:"time_indices"`   // Column of each point in the spectrum
	PeriodIndices []int     `json:"period_indices"` // Row of each point in the spectrum
	Time          []float64 `json:"time"`
	Periods       []float64 `json:"periods"`
	Power         []float64 `json:"power"`
	Phase         []float64 `json:"phase"` // Radians in [0, 2π)
	Amplitude     []float64 `json:"amplitude"`

	// Smoothed traces, nil when smoothing is disabled
	SmoothedPeriods   []float64 `json:"periods_smoothed,omitempty"`
	SmoothedAmplitude []float64 `json:"amplitude_smoothed,omitempty"`

	Threshold       float64 `json:"threshold"`
	SmoothingWindow int     `json:"smoothing_window"` // Normalized window, 0 when disabled
}

// Len returns the number of unmasked points
func (r *Record) Len() int {
	return len(r.TimeIndices)
}

// Segments returns [start, end) ranges of the record's slices that are
// contiguous in time; a masked index starts a new segment.
func (r *Record) Segments() [][2]int {
	var segments [][2]int
	start := 0
	for i := 1; i <= len(r.TimeIndices); i++ {
		if i == len(r.TimeIndices) || r.TimeIndices[i] != r.TimeIndices[i-1]+1 {
			if i > start {
				segments = append(segments, [2]int{start, i})
			}
			start = i
		}
	}
	return segments
}

// Assemble converts an index-space ridge into physical units using the
// spectrum it was traced on. tvec gives the time of each column; nil uses
// i*dt. Points with power below the threshold are masked, and a ridge that
// is masked everywhere is reported as ErrNoRidgeFound.
func Assemble(spectrum *wavelet.Spectrum, path Path, tvec []float64, params AssembleParams) (*Record, error) {
	if spectrum == nil || spectrum.Modulus == nil || spectrum.Coefficients == nil {
		return nil, fmt.Errorf("%w: missing spectrum", common.ErrInvalidParameter)
	}
	rows, cols := spectrum.Dims()
	if err := path.validate(rows, cols); err != nil {
		return nil, err
	}
	if len(spectrum.Periods) != rows || len(spectrum.Scales) != rows {
		return nil, fmt.Errorf("%w: spectrum has %d rows but %d periods", common.ErrInvalidParameter, rows, len(spectrum.Periods))
	}
	if tvec == nil {
		tvec = common.TimeVector(cols, spectrum.Dt)
	}
	if len(tvec) != cols {
		return nil, fmt.Errorf("%w: time vector length %d, spectrum has %d columns", common.ErrInvalidParameter, len(tvec), cols)
	}
	if params.Threshold < 0 || math.IsNaN(params.Threshold) {
		return nil, fmt.Errorf("%w: power threshold must be non-negative, got %g", common.ErrInvalidParameter, params.Threshold)
	}
	if params.SmoothingWindow < 0 {
		return nil, fmt.Errorf("%w: smoothing window must be non-negative, got %d", common.ErrInvalidParameter, params.SmoothingWindow)
	}

	record := &Record{
		Threshold:       params.Threshold,
		SmoothingWindow: common.OddWindow(params.SmoothingWindow),
	}

	for t, row := range path {
		power := spectrum.Modulus.At(row, t)
		if power < params.Threshold {
			continue
		}

		w := spectrum.Coefficients.At(row, t)
		phase := cmplx.Phase(w)
		if phase < 0 {
			phase += 2 * math.Pi
		}

		record.TimeIndices = append(record.TimeIndices, t)
		record.PeriodIndices = append(record.PeriodIndices, row)
		record.Time = append(record.Time, tvec[t])
		record.Periods = append(record.Periods, spectrum.Periods[row])
		record.Power = append(record.Power, power)
		record.Phase = append(record.Phase, phase)
		record.Amplitude = append(record.Amplitude, wavelet.Amplitude(w, spectrum.Scales[row]))
	}

	if record.Len() == 0 {
		return nil, fmt.Errorf("%w: all %d points below power threshold %g", common.ErrNoRidgeFound, cols, params.Threshold)
	}

	if record.SmoothingWindow > 0 {
		record.SmoothedPeriods = smoothSegments(record.Periods, record.Segments(), record.SmoothingWindow)
		record.SmoothedAmplitude = smoothSegments(record.Amplitude, record.Segments(), record.SmoothingWindow)
	}

	return record, nil
}

// smoothSegments smooths each contiguous segment on its own so values are
// never averaged across a masked gap. Segments shorter than the window are
// copied unchanged.
func smoothSegments(values []float64, segments [][2]int, window int) []float64 {
	out := make([]float64, len(values))
	for _, seg := range segments {
		copy(out[seg[0]:seg[1]], common.SmoothFlat(values[seg[0]:seg[1]], window))
	}
	return out
}
