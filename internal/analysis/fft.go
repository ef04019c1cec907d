package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns |X_k|²/n for k = 0..n/2, where X is the real DFT of
// xs. Any length is accepted.
func PowerSpectrum(xs []float64) []float64 {
	n := len(xs)
	if n == 0 {
		return nil
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, xs)

	ps := make([]float64, len(coeffs))
	for i, c := range coeffs {
		a := cmplx.Abs(c)
		ps[i] = a * a / float64(n)
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-zero
// component of xs sampled every dt seconds, or 0 when there is none.
func DominantFrequency(xs []float64, dt float64) float64 {
	n := len(xs)
	if n < 2 || !(dt > 0) {
		return 0
	}

	centered := make([]float64, n)
	copy(centered, xs)
	floats.AddConst(-stat.Mean(xs, nil), centered)

	ps := PowerSpectrum(centered)
	k := floats.MaxIdx(ps[1:]) + 1
	if ps[k] == 0 {
		return 0
	}

	return fourier.NewFFT(n).Freq(k) / dt
}

// Frequencies returns the frequency in Hz of every PowerSpectrum bin for a
// series of n samples taken every dt seconds.
func Frequencies(n int, dt float64) []float64 {
	if n == 0 {
		return nil
	}
	fft := fourier.NewFFT(n)
	out := make([]float64, n/2+1)
	for k := range out {
		out[k] = fft.Freq(k) / dt
	}
	return out
}
