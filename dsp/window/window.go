// Package window generates analysis window functions and reports the
// spectral properties needed to scale FFT magnitudes.
package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	Rectangular Type = iota
	Hann
	Hamming
	Blackman
	FlatTop
)

// cosineTerms holds the cosine-sum coefficients per window type.
// Sign convention: w[x] = sum_k a[k] * cos(2*pi*k*x).
var cosineTerms = map[Type][]float64{
	Rectangular: {1},
	Hann:        {0.5, -0.5},
	Hamming:     {0.54, -0.46},
	Blackman:    {0.42, -0.5, 0.08},
	FlatTop:     {0.21557895, -0.41663158, 0.277263158, -0.083578947, 0.006947368},
}

// Generate returns the periodic (FFT framing) form of the window: the
// coefficients repeat seamlessly across frame boundaries, which is what
// spectrum analysis wants. Returns nil for a non-positive length.
func Generate(t Type, length int) []float64 {
	if length <= 0 {
		return nil
	}

	terms, ok := cosineTerms[t]
	if !ok {
		terms = cosineTerms[Rectangular]
	}

	out := make([]float64, length)
	for i := range out {
		x := float64(i) / float64(length)
		w := 0.0
		for k, a := range terms {
			w += a * math.Cos(2*math.Pi*float64(k)*x)
		}
		out[i] = w
	}
	return out
}

// ApplyInPlace multiplies samples by the window coefficients. Lengths
// must match; mismatched input is left untouched.
func ApplyInPlace(samples, coeffs []float64) {
	if len(samples) != len(coeffs) {
		return
	}
	vecmath.MulBlockInPlace(samples, coeffs)
}

// CoherentGain returns sum(w)/N, the window's DC response. Amplitude
// spectra divide by it to read true tone levels.
func CoherentGain(coeffs []float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}
	return sum / float64(len(coeffs))
}

// ENBW returns the equivalent noise bandwidth in bins,
// N * sum(w^2) / sum(w)^2. Power spectra divide by it to read true
// noise densities.
func ENBW(coeffs []float64) float64 {
	sum := 0.0
	sumSq := 0.0
	for _, c := range coeffs {
		sum += c
		sumSq += c * c
	}
	if sum == 0 {
		return 0
	}
	return float64(len(coeffs)) * sumSq / (sum * sum)
}
