package spectral

import (
	"fmt"

	"github.com/RyanBlaney/sonido-tfa/algorithms/common"
	"github.com/mjibson/go-dsp/dsputils"
	"github.com/mjibson/go-dsp/fft"
)

// FFT provides the transform-domain operations used by the detrending
// filter and the Fourier power spectrum
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute returns the full (two-sided) DFT of a real signal
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	// go-dsp falls back to Bluestein for lengths that are not powers of two
	return fft.FFTReal(x)
}

// Convolve returns the full linear convolution of two real sequences, of
// length len(a)+len(b)-1. Both inputs are zero padded to a power of two so
// the circular convolution does not wrap.
func (f *FFT) Convolve(a, b []float64) ([]float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, fmt.Errorf("%w: empty convolution input", common.ErrInvalidParameter)
	}

	fullLen := len(a) + len(b) - 1
	size := dsputils.NextPowerOf2(fullLen)

	ca := dsputils.ToComplex(dsputils.ZeroPadF(a, size))
	cb := dsputils.ToComplex(dsputils.ZeroPadF(b, size))
	conv := fft.Convolve(ca, cb)

	out := make([]float64, fullLen)
	for i := range out {
		out[i] = real(conv[i])
	}
	return out, nil
}

// Convolver convolves one fixed real signal with many complex kernels. The
// signal spectrum is computed once and only read afterwards, so a single
// Convolver can be shared by concurrent workers.
type Convolver struct {
	n              int
	size           int
	maxKernel      int
	signalSpectrum []complex128
}

// NewConvolver prepares a convolver for kernels of at most maxKernel samples
func NewConvolver(signal []float64, maxKernel int) (*Convolver, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("%w: empty signal", common.ErrInvalidParameter)
	}
	if maxKernel <= 0 {
		return nil, fmt.Errorf("%w: kernel length must be positive, got %d", common.ErrInvalidParameter, maxKernel)
	}

	size := dsputils.NextPowerOf2(len(signal) + maxKernel - 1)
	padded := dsputils.ZeroPad(dsputils.ToComplex(signal), size)

	return &Convolver{
		n:              len(signal),
		size:           size,
		maxKernel:      maxKernel,
		signalSpectrum: fft.FFT(padded),
	}, nil
}

// Size returns the transform length
func (c *Convolver) Size() int {
	return c.size
}

// ConvolveSame writes the linear convolution of the signal with kernel into
// dst (len(dst) == len(signal)). center is the kernel index aligned with
// the output sample, so dst[p] = sum_i x[i] * kernel[p-i+center].
func (c *Convolver) ConvolveSame(dst, kernel []complex128, center int) error {
	if len(dst) != c.n {
		return fmt.Errorf("%w: destination length %d, want %d", common.ErrInvalidParameter, len(dst), c.n)
	}
	if len(kernel) == 0 || len(kernel) > c.maxKernel {
		return fmt.Errorf("%w: kernel length %d outside [1, %d]", common.ErrInvalidParameter, len(kernel), c.maxKernel)
	}
	if center < 0 || center >= len(kernel) {
		return fmt.Errorf("%w: kernel center %d outside kernel", common.ErrInvalidParameter, center)
	}

	kernelSpectrum := fft.FFT(dsputils.ZeroPad(kernel, c.size))
	for i := range kernelSpectrum {
		kernelSpectrum[i] *= c.signalSpectrum[i]
	}
	full := fft.IFFT(kernelSpectrum)

	copy(dst, full[center:center+c.n])
	return nil
}
