package spectral

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/RyanBlaney/sonido-tfa/algorithms/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func directConvolve(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, x := range a {
		for j, y := range b {
			out[i+j] += x * y
		}
	}
	return out
}

func TestFFTConvolve(t *testing.T) {
	f := NewFFT()
	a := []float64{1, -2, 0.5, 3, 4, -1, 2}
	b := []float64{0.25, 0.5, 0.25}

	got, err := f.Convolve(a, b)
	require.NoError(t, err)
	assert.InDeltaSlice(t, directConvolve(a, b), got, 1e-10)

	_, err = f.Convolve(nil, b)
	assert.ErrorIs(t, err, common.ErrInvalidParameter)
}

func TestFFTComputeMatchesDFT(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7}
	got := NewFFT().Compute(x)
	require.Len(t, got, len(x))

	n := float64(len(x))
	for k := range x {
		var want complex128
		for i, v := range x {
			want += complex(v, 0) * cmplx.Exp(complex(0, -2*math.Pi*float64(k*i)/n))
		}
		assert.InDelta(t, real(want), real(got[k]), 1e-9, "real part of bin %d", k)
		assert.InDelta(t, imag(want), imag(got[k]), 1e-9, "imag part of bin %d", k)
	}

	assert.Empty(t, NewFFT().Compute(nil))
}

func TestConvolverSame(t *testing.T) {
	signal := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3}
	kernel := []complex128{1, 2i, -1, 0.5}
	center := 1

	conv, err := NewConvolver(signal, len(kernel))
	require.NoError(t, err)
	assert.Equal(t, 16, conv.Size())

	dst := make([]complex128, len(signal))
	require.NoError(t, conv.ConvolveSame(dst, kernel, center))

	for p := range signal {
		var want complex128
		for i, x := range signal {
			k := p - i + center
			if k >= 0 && k < len(kernel) {
				want += complex(x, 0) * kernel[k]
			}
		}
		assert.InDelta(t, real(want), real(dst[p]), 1e-10, "real part at %d", p)
		assert.InDelta(t, imag(want), imag(dst[p]), 1e-10, "imag part at %d", p)
	}
}

func TestConvolverErrors(t *testing.T) {
	_, err := NewConvolver(nil, 3)
	assert.ErrorIs(t, err, common.ErrInvalidParameter)
	_, err = NewConvolver([]float64{1, 2}, 0)
	assert.ErrorIs(t, err, common.ErrInvalidParameter)

	conv, err := NewConvolver([]float64{1, 2, 3}, 2)
	require.NoError(t, err)

	assert.ErrorIs(t, conv.ConvolveSame(make([]complex128, 2), []complex128{1}, 0), common.ErrInvalidParameter)
	assert.ErrorIs(t, conv.ConvolveSame(make([]complex128, 3), []complex128{1, 1, 1}, 0), common.ErrInvalidParameter)
	assert.ErrorIs(t, conv.ConvolveSame(make([]complex128, 3), []complex128{1, 1}, 2), common.ErrInvalidParameter)
}
