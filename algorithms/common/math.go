package common

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic numeric helpers shared by the filters, wavelet and ridge packages,
// using gonum where it covers the operation.

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// PopVariance calculates the population variance (normalized by N, not N-1).
// This is the convention used for power normalization.
func PopVariance(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.PopVariance(data, nil)
}

// relativeVarianceFloor is the variance, relative to the mean square, at or
// below which a signal counts as constant. Rounding residue of a detrended
// constant sits near 1e-31 of its original mean square.
const relativeVarianceFloor = 1e-24

// MeanSquare returns the mean of the squared samples
func MeanSquare(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Dot(data, data) / float64(len(data))
}

// NegligibleVariance reports whether variance cannot be told apart from
// floating point residue on a signal whose mean square is meanSquare. Mean
// squares below one are compared as one, so a signal holding nothing but
// residue is caught as well.
func NegligibleVariance(variance, meanSquare float64) bool {
	return variance <= relativeVarianceFloor*math.Max(1, meanSquare)
}

// CheckSignal verifies that a signal has at least two samples and that every
// sample is finite. NaNs have to be removed by the caller before analysis.
func CheckSignal(signal []float64) error {
	if len(signal) < 2 {
		return fmt.Errorf("%w: signal needs at least 2 samples, got %d", ErrInvalidParameter, len(signal))
	}
	if floats.HasNaN(signal) {
		return fmt.Errorf("%w: signal contains NaN", ErrInvalidParameter)
	}
	for i, v := range signal {
		if math.IsInf(v, 0) {
			return fmt.Errorf("%w: signal sample %d is infinite", ErrInvalidParameter, i)
		}
	}
	return nil
}

// TimeVector returns t[i] = i*dt for n samples
func TimeVector(n int, dt float64) []float64 {
	if n <= 0 {
		return []float64{}
	}
	tvec := make([]float64, n)
	for i := range tvec {
		tvec[i] = float64(i) * dt
	}
	return tvec
}

// reflectIndex maps an arbitrary index onto [0, n) by mirroring at the ends
// without repeating the edge sample (x[-1] = x[1], x[n] = x[n-2]).
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - i
	}
	return i
}

// MirrorPad extends data by pad samples on both sides with its reflection.
// Pads longer than the data keep reflecting back and forth.
func MirrorPad(data []float64, pad int) []float64 {
	n := len(data)
	if n == 0 || pad <= 0 {
		out := make([]float64, n)
		copy(out, data)
		return out
	}

	padded := make([]float64, n+2*pad)
	for i := range padded {
		padded[i] = data[reflectIndex(i-pad, n)]
	}
	return padded
}

// OddWindow normalizes a requested smoothing window length: 0 (or less)
// disables smoothing and returns 0, lengths below 3 become 3 and even
// lengths are raised to the next odd value.
func OddWindow(length int) int {
	if length <= 0 {
		return 0
	}
	if length < 3 {
		return 3
	}
	if length%2 == 0 {
		return length + 1
	}
	return length
}

// SmoothFlat applies a centered flat moving average of odd length window,
// mirror padding both ends so the output has the same length as data.
// Data shorter than the window is returned unchanged (as a copy).
func SmoothFlat(data []float64, window int) []float64 {
	out := make([]float64, len(data))
	copy(out, data)
	if window < 3 || window%2 == 0 || len(data) < window {
		return out
	}

	half := window / 2
	padded := MirrorPad(data, half)

	// Running sum over the padded series
	sum := floats.Sum(padded[:window])
	out[0] = sum / float64(window)
	for i := 1; i < len(data); i++ {
		sum += padded[i+window-1] - padded[i-1]
		out[i] = sum / float64(window)
	}

	return out
}

// ClampInt constrains an integer to [lo, hi]
func ClampInt(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
