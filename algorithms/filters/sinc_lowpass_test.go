package filters

import (
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-tfa/algorithms/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestSincLowpassConstant(t *testing.T) {
	signal := make([]float64, 101)
	for i := range signal {
		signal[i] = 3.5
	}

	trend, err := NewSincLowpass(20, 1).Trend(signal)
	require.NoError(t, err)
	require.Len(t, trend, len(signal))
	for i, v := range trend {
		assert.InDelta(t, 3.5, v, 1e-9, "sample %d", i)
	}
}

func TestSincLowpassSeparatesTrend(t *testing.T) {
	const n = 500
	slow := make([]float64, n)
	signal := make([]float64, n)
	for i := range signal {
		slow[i] = 0.01 * float64(i)
		signal[i] = slow[i] + math.Sin(2*math.Pi*float64(i)/10)
	}

	lowpass := NewSincLowpassWithParams(SincLowpassParams{CutoffPeriod: 50, Dt: 1, Order: 100})
	assert.Equal(t, 50.0, lowpass.CutoffPeriod())

	trend, err := lowpass.Trend(signal)
	require.NoError(t, err)
	for i := 100; i < 400; i++ {
		assert.InDelta(t, slow[i], trend[i], 0.01, "interior sample %d", i)
	}

	detrended, err := lowpass.Detrend(signal)
	require.NoError(t, err)
	for i := range detrended {
		assert.InDelta(t, signal[i]-trend[i], detrended[i], 1e-12)
	}
}

func TestDetrendFixedPointLargeCutoff(t *testing.T) {
	const n = 900
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = 2 + 0.0005*float64(i) + math.Sin(2*math.Pi*float64(i)/70)
	}

	for _, cutoff := range []float64{2000, 1e5} {
		lowpass := NewSincLowpass(cutoff, 1)

		detrended, err := lowpass.Detrend(signal)
		require.NoError(t, err)

		removed := make([]float64, n)
		floats.SubTo(removed, signal, detrended)
		again, err := lowpass.Detrend(removed)
		require.NoError(t, err)

		ratio := floats.Norm(again, 2) / floats.Norm(detrended, 2)
		assert.Less(t, ratio, 0.05, "cutoff %g", cutoff)
	}
}

func TestSincLowpassTwoSamples(t *testing.T) {
	trend, err := NewSincLowpass(10, 1).Trend([]float64{1, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2}, trend)
}

func TestSincLowpassKernel(t *testing.T) {
	lowpass := NewSincLowpassWithParams(SincLowpassParams{CutoffPeriod: 8, Dt: 1, Order: 51})

	m := lowpass.kernelOrder(200)
	assert.Equal(t, 50, m)
	assert.Equal(t, 198, NewSincLowpass(8, 1).kernelOrder(200))
	assert.Equal(t, 98, lowpass.kernelOrder(99), "order is capped by the signal length")

	kernel := lowpass.Kernel(m)
	require.Len(t, kernel, m+1)
	assert.InDelta(t, 1, floats.Sum(kernel), 1e-12)
	for i := range m / 2 {
		assert.InDelta(t, kernel[i], kernel[m-i], 1e-12, "kernel must be symmetric")
	}
	assert.Equal(t, m/2, floats.MaxIdx(kernel))
}

func TestSincLowpassInvalid(t *testing.T) {
	signal := []float64{1, 2, 3, 4}

	cases := map[string]*SincLowpass{
		"zero cutoff":     NewSincLowpass(0, 1),
		"negative cutoff": NewSincLowpass(-5, 1),
		"zero dt":         NewSincLowpass(10, 0),
		"nan cutoff":      NewSincLowpass(math.NaN(), 1),
		"negative order":  NewSincLowpassWithParams(SincLowpassParams{CutoffPeriod: 10, Dt: 1, Order: -2}),
	}
	for name, lowpass := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := lowpass.Trend(signal)
			assert.ErrorIs(t, err, common.ErrInvalidParameter)
		})
	}

	_, err := NewSincLowpass(10, 1).Detrend([]float64{1})
	assert.ErrorIs(t, err, common.ErrInvalidParameter)
}
