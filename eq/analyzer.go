package eq

import (
	"fmt"
	"math"
	"sync/atomic"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/AidenCarrera/OloEQ/dsp/core"
	"github.com/AidenCarrera/OloEQ/dsp/window"
)

// analyzerFloorDB is the lowest magnitude reported per bin.
const analyzerFloorDB = -120.0

// Analyzer taps the processed audio stream for spectrum display.
//
// It is a single-producer, single-consumer ring: the audio goroutine
// appends with Push (wait-free, no locks, no allocation) and one UI or
// control goroutine calls Compute to obtain magnitude-dB FFT bins of the
// most recent window. Compute detects when the writer lapped it mid-copy
// and reports ok=false; the caller simply retries on its next tick.
type Analyzer struct {
	fftSize int
	plan    *algofft.Plan[complex128]
	window  []float64
	scale   float64

	ring []float64
	mask uint64
	head atomic.Uint64 // total samples written

	block  []float64
	fftIn  []complex128
	fftOut []complex128
	re, im []float64
}

// NewAnalyzer creates an analyzer for the given FFT size, which must be
// a power of two. The ring keeps four windows of history so a slow
// consumer rarely gets lapped.
func NewAnalyzer(fftSize int) (*Analyzer, error) {
	if fftSize <= 0 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("eq: analyzer FFT size must be a power of two, got %d", fftSize)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("eq: analyzer FFT plan: %w", err)
	}

	ringLen := 4 * fftSize
	half := fftSize/2 + 1

	// Amplitude scaling: window length, coherent gain and the factor of
	// two for folding negative frequencies into the one-sided spectrum.
	coeffs := window.Generate(window.Hann, fftSize)
	scale := 2 / (window.CoherentGain(coeffs) * float64(fftSize))

	return &Analyzer{
		fftSize: fftSize,
		plan:    plan,
		window:  coeffs,
		scale:   scale,
		ring:    make([]float64, ringLen),
		mask:    uint64(ringLen - 1),
		block:   make([]float64, fftSize),
		fftIn:   make([]complex128, fftSize),
		fftOut:  make([]complex128, fftSize),
		re:      make([]float64, half),
		im:      make([]float64, half),
	}, nil
}

// FFTSize returns the analysis window length in samples.
func (a *Analyzer) FFTSize() int {
	return a.fftSize
}

// Bins returns the number of spectrum bins Compute produces.
func (a *Analyzer) Bins() int {
	return a.fftSize/2 + 1
}

// BinFrequency returns the center frequency of bin i at the given
// sample rate.
func (a *Analyzer) BinFrequency(i int, sampleRate float64) float64 {
	return float64(i) * sampleRate / float64(a.fftSize)
}

// Push appends a block of samples from the audio goroutine, overwriting
// the oldest history. It never locks or allocates.
func (a *Analyzer) Push(samples []float64) {
	h := a.head.Load()
	for _, v := range samples {
		a.ring[h&a.mask] = v
		h++
	}
	a.head.Store(h)
}

// Reset discards all buffered history.
func (a *Analyzer) Reset() {
	core.Zero(a.ring)
	a.head.Store(0)
}

// Compute returns the Hann-windowed magnitude spectrum in dB of the
// newest full window: Bins() values from DC to Nyquist. ok is false
// until a full window has been pushed, or when the writer overran the
// read; retry on the next tick.
func (a *Analyzer) Compute() (binsDB []float64, ok bool) {
	end := a.head.Load()
	if end < uint64(a.fftSize) {
		return nil, false
	}

	base := end - uint64(a.fftSize)
	for i := range a.block {
		a.block[i] = a.ring[(base+uint64(i))&a.mask]
	}

	// If the writer advanced past the copied region, the window is torn.
	if a.head.Load()-base >= uint64(len(a.ring)) {
		return nil, false
	}

	window.ApplyInPlace(a.block, a.window)
	for i, v := range a.block {
		a.fftIn[i] = complex(v, 0)
	}

	if err := a.plan.Forward(a.fftOut, a.fftIn); err != nil {
		return nil, false
	}

	half := a.Bins()
	for i := 0; i < half; i++ {
		a.re[i] = real(a.fftOut[i])
		a.im[i] = imag(a.fftOut[i])
	}

	binsDB = make([]float64, half)
	vecmath.Magnitude(binsDB, a.re, a.im)

	floor := core.DBToLinear(analyzerFloorDB)
	for i := range binsDB {
		binsDB[i] = core.LinearToDB(math.Max(binsDB[i]*a.scale, floor))
	}

	return binsDB, true
}
