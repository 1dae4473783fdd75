// Package synth generates synthetic test signals: a sinusoid with Gaussian
// noise riding on a quadratic trend.
package synth

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/RyanBlaney/sonido-tfa/algorithms/common"
	"gonum.org/v1/gonum/stat/distuv"
)

// Params describes a synthetic signal
type Params struct {
	Samples    int     `json:"samples" yaml:"samples"`         // Number of samples, t = 0..Samples-1
	Amplitude  float64 `json:"amplitude" yaml:"amplitude"`     // Sine amplitude
	Period     float64 `json:"period" yaml:"period"`           // Sine period in samples
	NoiseSigma float64 `json:"noise_sigma" yaml:"noise_sigma"` // Standard deviation of the noise, 0 for none
	Slope      float64 `json:"slope" yaml:"slope"`             // Trend height at the last sample, in units of Amplitude
	Seed       uint64  `json:"seed" yaml:"seed"`
}

// DefaultParams returns a 900-sample sine of period 70 with mild noise and trend
func DefaultParams() Params {
	return Params{
		Samples:    900,
		Amplitude:  1,
		Period:     70,
		NoiseSigma: 0.2,
		Slope:      1,
		Seed:       42,
	}
}

// Signal is a generated series with its noise-free parts kept for reference
type Signal struct {
	Time   []float64 `json:"time"`
	Values []float64 `json:"values"` // Sine + noise + trend
	Trend  []float64 `json:"trend"`  // Quadratic trend alone
}

// Generate builds
//
//	x[i] = A sin(2π i / T) + noise[i] + Slope·A·i² / (N-1)²
func Generate(p Params) (*Signal, error) {
	if p.Samples < 2 {
		return nil, fmt.Errorf("%w: need at least 2 samples, got %d", common.ErrInvalidParameter, p.Samples)
	}
	if p.Period <= 0 {
		return nil, fmt.Errorf("%w: period must be positive, got %g", common.ErrInvalidParameter, p.Period)
	}
	if p.NoiseSigma < 0 {
		return nil, fmt.Errorf("%w: noise sigma must be non-negative, got %g", common.ErrInvalidParameter, p.NoiseSigma)
	}

	var noise *distuv.Normal
	if p.NoiseSigma > 0 {
		noise = &distuv.Normal{
			Mu:    0,
			Sigma: p.NoiseSigma,
			Src:   rand.NewPCG(p.Seed, p.Seed+1),
		}
	}

	last := float64(p.Samples - 1)
	sig := &Signal{
		Time:   common.TimeVector(p.Samples, 1),
		Values: make([]float64, p.Samples),
		Trend:  make([]float64, p.Samples),
	}

	for i := range p.Samples {
		t := float64(i)
		trend := p.Slope * p.Amplitude * t * t / (last * last)
		value := p.Amplitude*math.Sin(2*math.Pi*t/p.Period) + trend
		if noise != nil {
			value += noise.Rand()
		}
		sig.Trend[i] = trend
		sig.Values[i] = value
	}

	return sig, nil
}
