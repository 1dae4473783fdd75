package wavelet

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/RyanBlaney/sonido-tfa/algorithms/common"
	"github.com/RyanBlaney/sonido-tfa/algorithms/spectral"
	"github.com/RyanBlaney/sonido-tfa/logging"
	"gonum.org/v1/gonum/mat"
)

// Normalization selects how the modulus is derived from the coefficients
type Normalization int

const (
	// VarianceNormalized divides |W|² by the population variance of the
	// signal, matching the Fourier power/var convention. This is the default.
	VarianceNormalized Normalization = iota

	// RawPower keeps |W|² unscaled
	RawPower
)

func (n Normalization) String() string {
	switch n {
	case VarianceNormalized:
		return "variance"
	case RawPower:
		return "raw"
	default:
		return "unknown"
	}
}

// ParseNormalization maps "variance" and "raw" to their Normalization
func ParseNormalization(name string) (Normalization, error) {
	switch name {
	case "", "variance":
		return VarianceNormalized, nil
	case "raw":
		return RawPower, nil
	default:
		return 0, fmt.Errorf("%w: unknown power normalization %q", common.ErrInvalidParameter, name)
	}
}

// Spectrum is the continuous wavelet transform of one signal over a period
// grid. Rows follow Periods, columns follow time. Both matrices share one
// shape and are backed by flat row-major buffers.
type Spectrum struct {
	Periods       []float64     `json:"periods"`       // Period grid, strictly increasing
	Scales        []float64     `json:"scales"`        // Morlet scale per period, in samples
	Dt            float64       `json:"dt"`            // Sampling interval
	Normalization Normalization `json:"normalization"` // Modulus convention
	Variance      float64       `json:"variance"`      // Population variance of the analysed signal

	Modulus      *mat.Dense  `json:"-"` // Power per (period, time)
	Coefficients *mat.CDense `json:"-"` // Complex coefficients per (period, time)
}

// Dims returns the number of periods and time samples
func (s *Spectrum) Dims() (periods, samples int) {
	return s.Modulus.Dims()
}

// ConeOfInfluence returns the largest reliable period per time index
func (s *Spectrum) ConeOfInfluence() []float64 {
	_, n := s.Dims()
	return ConeOfInfluence(n, s.Dt)
}

// InConeOfInfluence reports whether the coefficient at (row, col) lies in
// the edge-affected region, i.e. its period exceeds the cone at that time.
func (s *Spectrum) InConeOfInfluence(row, col int) bool {
	_, n := s.Dims()
	d := min(col, n-1-col)
	return s.Periods[row] > FourierFactor()*s.Dt*float64(d)/math.Sqrt2
}

// TransformParams configures a Transform
type TransformParams struct {
	Normalization Normalization `json:"normalization"`

	// Workers bounds the number of rows computed concurrently, 0 picks a
	// value from the CPU count and the number of periods.
	Workers int `json:"workers"`

	// Progress, if set, is called from the calling goroutine after each
	// finished row with the number of rows done and the total.
	Progress func(done, total int) `json:"-"`
}

// Transform computes Morlet wavelet spectra
type Transform struct {
	params TransformParams
	logger logging.Logger
}

// NewTransform creates a transform with variance normalization and the
// default worker count
func NewTransform() *Transform {
	return NewTransformWithParams(TransformParams{})
}

// NewTransformWithParams creates a transform with explicit parameters
func NewTransformWithParams(params TransformParams) *Transform {
	return &Transform{
		params: params,
		logger: logging.GetGlobalLogger(),
	}
}

// SetLogger replaces the transform's logger
func (t *Transform) SetLogger(logger logging.Logger) {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	t.logger = logger
}

// Compute returns the wavelet spectrum of signal sampled every dt over the
// given periods. The signal is zero padded beyond both ends; see
// ConeOfInfluence for where that matters.
//
// Rows are computed in parallel, each worker writing only its own rows. If
// ctx is cancelled before all rows are done, Compute returns nil and the
// context error.
func (t *Transform) Compute(ctx context.Context, signal []float64, dt float64, periods []float64) (*Spectrum, error) {
	if err := common.CheckSignal(signal); err != nil {
		return nil, err
	}
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: sampling interval must be positive, got %g", common.ErrInvalidParameter, dt)
	}
	if err := ValidatePeriods(periods, dt, len(signal)); err != nil {
		return nil, err
	}

	variance := common.PopVariance(signal)
	norm := 1.0
	switch t.params.Normalization {
	case VarianceNormalized:
		if common.NegligibleVariance(variance, common.MeanSquare(signal)) {
			return nil, fmt.Errorf("%w: signal variance %g is too small to normalize by", common.ErrNumericDegeneracy, variance)
		}
		norm = 1 / variance
	case RawPower:
	default:
		return nil, fmt.Errorf("%w: unknown normalization %d", common.ErrInvalidParameter, t.params.Normalization)
	}

	n := len(signal)
	rows := len(periods)

	scales := make([]float64, rows)
	for i, p := range periods {
		scales[i] = ScaleFromPeriod(p, dt)
	}
	// Periods increase, so the last scale has the widest kernel
	maxKernel := 2*KernelHalfWidth(scales[rows-1], n) + 1

	convolver, err := spectral.NewConvolver(signal, maxKernel)
	if err != nil {
		return nil, err
	}

	t.logger.Debug("computing wavelet spectrum", logging.Fields{
		"samples":       n,
		"periods":       rows,
		"fft_size":      convolver.Size(),
		"normalization": t.params.Normalization.String(),
	})

	modulus := make([]float64, rows*n)
	coeffs := make([]complex128, rows*n)

	numWorkers := t.getOptimalWorkerCount(rows)
	jobs := make(chan int)
	finished := make(chan int, numWorkers)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for row := range jobs {
				if ctx.Err() != nil {
					continue
				}

				kernel, center := Morlet(scales[row], n)
				coeffRow := coeffs[row*n : (row+1)*n]
				if err := convolver.ConvolveSame(coeffRow, kernel, center); err != nil {
					errOnce.Do(func() { firstErr = err })
					continue
				}

				modRow := modulus[row*n : (row+1)*n]
				for j, w := range coeffRow {
					re, im := real(w), imag(w)
					modRow[j] = (re*re + im*im) * norm
				}
				finished <- row
			}
		}()
	}

	go func() {
		defer close(jobs)
		for row := range rows {
			select {
			case <-ctx.Done():
				return
			case jobs <- row:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(finished)
	}()

	done := 0
	for range finished {
		done++
		if t.params.Progress != nil {
			t.params.Progress(done, rows)
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if done < rows {
		t.logger.Warn("wavelet spectrum cancelled", logging.Fields{"rows_done": done, "rows": rows})
		return nil, fmt.Errorf("wavelet spectrum: %w", context.Cause(ctx))
	}

	return &Spectrum{
		Periods:       append([]float64(nil), periods...),
		Scales:        scales,
		Dt:            dt,
		Normalization: t.params.Normalization,
		Variance:      variance,
		Modulus:       mat.NewDense(rows, n, modulus),
		Coefficients:  mat.NewCDense(rows, n, coeffs),
	}, nil
}

// getOptimalWorkerCount determines the number of workers based on workload
func (t *Transform) getOptimalWorkerCount(rows int) int {
	if t.params.Workers > 0 {
		return min(t.params.Workers, rows)
	}

	numCPU := runtime.NumCPU()

	// For small grids, don't over-parallelize
	if rows < 16 {
		return max(1, min(numCPU/2, rows))
	}

	return max(1, min(numCPU, rows))
}
