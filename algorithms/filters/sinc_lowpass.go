package filters

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-tfa/algorithms/common"
	"github.com/RyanBlaney/sonido-tfa/algorithms/spectral"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"
)

// SincLowpass implements a Blackman-windowed sinc low-pass filter used to
// estimate the slow trend of a time series. Variations faster than the cutoff
// period are removed; what remains is the trend.
//
// References:
//   - Steven W. Smith, "The Scientist and Engineer's Guide to Digital Signal
//     Processing", Chapter 16 (Windowed-Sinc Filters)
//
// The signal is mirror padded by half the kernel length before the
// convolution, so the ends are not pulled towards zero. A constant input
// yields exactly the same constant as its trend.
type SincLowpass struct {
	cutoffPeriod float64 // T_c in the caller's time unit
	dt           float64 // Sampling interval in the same unit
	order        int     // Kernel order M (kernel has M+1 taps), 0 = derive from signal length

	fft *spectral.FFT
}

// SincLowpassParams configures a SincLowpass
type SincLowpassParams struct {
	CutoffPeriod float64 `json:"cutoff_period" yaml:"cutoff_period"`
	Dt           float64 `json:"dt" yaml:"dt"`

	// Order is the kernel order M. It is rounded down to an even value and
	// capped at len(signal)-1. Zero picks the longest kernel the signal
	// allows, giving the sharpest roll-off.
	Order int `json:"order,omitempty" yaml:"order,omitempty"`
}

// NewSincLowpass creates a low-pass filter with the given cutoff period and
// sampling interval, using the longest kernel the signal allows.
func NewSincLowpass(cutoffPeriod, dt float64) *SincLowpass {
	return NewSincLowpassWithParams(SincLowpassParams{
		CutoffPeriod: cutoffPeriod,
		Dt:           dt,
	})
}

// NewSincLowpassWithParams creates a low-pass filter from explicit parameters
func NewSincLowpassWithParams(params SincLowpassParams) *SincLowpass {
	return &SincLowpass{
		cutoffPeriod: params.CutoffPeriod,
		dt:           params.Dt,
		order:        params.Order,
		fft:          spectral.NewFFT(),
	}
}

// CutoffPeriod returns the configured cutoff period
func (s *SincLowpass) CutoffPeriod() float64 {
	return s.cutoffPeriod
}

func (s *SincLowpass) validate(signal []float64) error {
	if s.cutoffPeriod <= 0 || math.IsNaN(s.cutoffPeriod) || math.IsInf(s.cutoffPeriod, 0) {
		return fmt.Errorf("%w: cutoff period must be positive, got %g", common.ErrInvalidParameter, s.cutoffPeriod)
	}
	if s.dt <= 0 || math.IsNaN(s.dt) || math.IsInf(s.dt, 0) {
		return fmt.Errorf("%w: sampling interval must be positive, got %g", common.ErrInvalidParameter, s.dt)
	}
	if s.order < 0 {
		return fmt.Errorf("%w: kernel order must not be negative, got %d", common.ErrInvalidParameter, s.order)
	}
	return common.CheckSignal(signal)
}

// kernelOrder returns the even kernel order M used for a signal of length n
func (s *SincLowpass) kernelOrder(n int) int {
	m := n - 1
	if s.order > 0 && s.order < m {
		m = s.order
	}
	if m%2 != 0 {
		m--
	}
	return m
}

// Kernel returns the normalized windowed sinc kernel of order m (m+1 taps)
// for this filter's relative cutoff frequency dt/T_c.
func (s *SincLowpass) Kernel(m int) []float64 {
	fc := s.dt / s.cutoffPeriod
	half := float64(m / 2)

	taps := window.Blackman(m + 1)
	for i := range taps {
		x := float64(i) - half
		if x == 0 {
			taps[i] *= 2 * math.Pi * fc
			continue
		}
		taps[i] *= math.Sin(2*math.Pi*fc*x) / x
	}

	// Unit gain at DC
	floats.Scale(1/floats.Sum(taps), taps)
	return taps
}

// Trend returns the low-pass filtered signal, same length as the input
func (s *SincLowpass) Trend(signal []float64) ([]float64, error) {
	if err := s.validate(signal); err != nil {
		return nil, err
	}

	n := len(signal)
	m := s.kernelOrder(n)
	if m == 0 {
		// Two samples leave no room for a kernel, the mean is the trend
		trend := make([]float64, n)
		mean := common.Mean(signal)
		for i := range trend {
			trend[i] = mean
		}
		return trend, nil
	}

	half := m / 2
	padded := common.MirrorPad(signal, half)

	full, err := s.fft.Convolve(padded, s.Kernel(m))
	if err != nil {
		return nil, err
	}

	// padded[i+half] is signal[i] and the kernel delays by half again
	trend := make([]float64, n)
	copy(trend, full[m:m+n])
	return trend, nil
}

// Detrend returns signal - Trend(signal)
func (s *SincLowpass) Detrend(signal []float64) ([]float64, error) {
	trend, err := s.Trend(signal)
	if err != nil {
		return nil, err
	}

	detrended := make([]float64, len(signal))
	floats.SubTo(detrended, signal, trend)
	return detrended, nil
}
