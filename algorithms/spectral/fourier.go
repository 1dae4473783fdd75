package spectral

import (
	"fmt"
	"math/cmplx"

	"github.com/RyanBlaney/sonido-tfa/algorithms/common"
)

// FourierResult holds a one-sided Fourier power spectrum on a period axis.
// The DC bin is dropped since it has no finite period.
type FourierResult struct {
	Frequencies []float64 `json:"frequencies"` // Frequency of each bin (1/time unit)
	Periods     []float64 `json:"periods"`     // 1/frequency, decreasing
	Power       []float64 `json:"power"`       // |X_k| / var(signal)
	Variance    float64   `json:"variance"`    // Population variance of the input
}

// FourierPower computes |rfft(signal)| divided by the signal variance for
// every positive frequency bin, the same power convention as the wavelet
// spectrum's variance normalization.
func FourierPower(signal []float64, dt float64) (*FourierResult, error) {
	if err := common.CheckSignal(signal); err != nil {
		return nil, err
	}
	if dt <= 0 {
		return nil, fmt.Errorf("%w: sampling interval must be positive, got %g", common.ErrInvalidParameter, dt)
	}

	variance := common.PopVariance(signal)
	if common.NegligibleVariance(variance, common.MeanSquare(signal)) {
		return nil, fmt.Errorf("%w: signal variance %g is too small to normalize by", common.ErrNumericDegeneracy, variance)
	}

	coeffs := NewFFT().Compute(signal)
	n := len(signal)

	// Positive frequencies up to Nyquist: bins 1..n/2
	bins := n / 2
	result := &FourierResult{
		Frequencies: make([]float64, bins),
		Periods:     make([]float64, bins),
		Power:       make([]float64, bins),
		Variance:    variance,
	}

	for k := 1; k <= bins; k++ {
		freq := float64(k) / (float64(n) * dt)
		result.Frequencies[k-1] = freq
		result.Periods[k-1] = 1 / freq
		result.Power[k-1] = cmplx.Abs(coeffs[k]) / variance
	}

	return result, nil
}
