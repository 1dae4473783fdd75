package wavelet

import (
	"math"
	"math/cmplx"
)

// Omega0 is the Morlet centre frequency in radians per unit scale. With 2π
// a scale of one sample oscillates roughly once per sample, so scale and
// period nearly coincide.
const Omega0 = 2 * math.Pi

// supportWidth is the kernel half-width in units of scale. The Gaussian
// envelope has decayed to exp(-12.5) ≈ 3.7e-6 there.
const supportWidth = 5.0

// morletNorm is the π^(-1/4) factor giving the mother wavelet unit energy
var morletNorm = math.Pow(math.Pi, -0.25)

// FourierFactor converts a Morlet scale into the equivalent Fourier period:
// period = FourierFactor * scale.
//
// References:
//   - Torrence & Compo, "A Practical Guide to Wavelet Analysis",
//     Bull. Amer. Meteor. Soc. 79 (1998), Table 1
func FourierFactor() float64 {
	return 4 * math.Pi / (Omega0 + math.Sqrt(2+Omega0*Omega0))
}

// ScaleFromPeriod returns the Morlet scale, in samples, whose Fourier period
// equals period (in the time unit of dt).
func ScaleFromPeriod(period, dt float64) float64 {
	return period / dt / FourierFactor()
}

// Morlet samples the scaled Morlet wavelet ψ(t/s)/√s for a signal of n
// samples. The kernel spans t = -h..h with h = min(n-1, ceil(5s)); the
// returned center h is the index of t = 0.
//
// The 1/√s factor keeps the wavelet energy equal across scales, so a sine of
// fixed amplitude produces the same ridge power at every period.
func Morlet(scale float64, n int) (kernel []complex128, center int) {
	h := KernelHalfWidth(scale, n)

	kernel = make([]complex128, 2*h+1)
	norm := morletNorm / math.Sqrt(scale)
	for k := range kernel {
		u := float64(k-h) / scale
		envelope := norm * math.Exp(-0.5*u*u)
		kernel[k] = complex(envelope, 0) * cmplx.Exp(complex(0, Omega0*u))
	}
	return kernel, h
}

// KernelHalfWidth returns the h used by Morlet for the given scale and length
func KernelHalfWidth(scale float64, n int) int {
	h := int(math.Ceil(supportWidth * scale))
	return max(0, min(h, n-1))
}

// Amplitude converts a coefficient at the given scale (in samples) into the
// amplitude of the sinusoid that produced it.
//
// For x(t) = A cos(ωt) analysed at its matching scale s,
// |W| ≈ (A/2) π^(-1/4) √(2π s), hence A = |W| √2 π^(1/4) / √(π s).
func Amplitude(w complex128, scale float64) float64 {
	return cmplx.Abs(w) * math.Sqrt2 / (morletNorm * math.Sqrt(math.Pi) * math.Sqrt(scale))
}
