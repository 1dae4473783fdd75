package wavelet

import "math"

// ConeOfInfluence returns, for each of n time indices, the largest period
// whose coefficient is not dominated by the zero padding beyond the signal
// ends. It uses the Morlet e-folding time √2·s: a coefficient at distance d
// from the nearest edge is reliable while √2·s ≤ d, i.e. for periods up to
// FourierFactor·d/√2. The value is zero at both ends and largest mid-signal.
func ConeOfInfluence(n int, dt float64) []float64 {
	if n <= 0 {
		return []float64{}
	}

	factor := FourierFactor() * dt / math.Sqrt2
	coi := make([]float64, n)
	for i := range coi {
		d := min(i, n-1-i)
		coi[i] = factor * float64(d)
	}
	return coi
}
