package eq

import (
	"math"
	"sync/atomic"

	"github.com/AidenCarrera/OloEQ/dsp/biquad"
	"github.com/AidenCarrera/OloEQ/dsp/core"
)

// stage is one second-order section slot in the chain. The delay line is
// owned exclusively by the audio goroutine. Coefficients and the
// participation flag live in atomic storage: the control side replaces
// the coefficient handle wholesale, never a field at a time, so a block
// in flight always reads a complete record.
type stage struct {
	coeffs atomic.Pointer[biquad.Coefficients]
	active atomic.Bool

	d0, d1 float64
}

// set installs a new immutable coefficient record with a handle swap.
func (st *stage) set(c biquad.Coefficients) {
	st.coeffs.Store(&c)
}

// processSample runs the stage's Direct Form II Transposed update.
// Inactive stages pass the signal through unmodified.
func (st *stage) processSample(x float64) float64 {
	if !st.active.Load() {
		return x
	}

	c := st.coeffs.Load()
	if c == nil {
		return x
	}

	y := c.B0*x + st.d0
	st.d0 = c.B1*x - c.A1*y + st.d1
	st.d1 = c.B2*x - c.A2*y

	return y
}

func (st *stage) reset() {
	st.d0 = 0
	st.d1 = 0
}

// settle flushes denormal delay-line values after a block, keeping the
// feedback path out of the denormal range during silence.
func (st *stage) settle() {
	st.d0 = core.FlushDenormals(st.d0)
	st.d1 = core.FlushDenormals(st.d1)
}

func (st *stage) magnitudeSquared(freqHz, sampleRate float64) float64 {
	if !st.active.Load() {
		return 1
	}
	c := st.coeffs.Load()
	if c == nil {
		return 1
	}
	return c.MagnitudeSquared(freqHz, sampleRate)
}

// CutCascade is a fixed chain of four biquad stages realizing one cut
// filter. For slope S, stages 0..S carry the designed sections and the
// remaining stages pass the signal through.
type CutCascade struct {
	stages [numCutStages]stage
}

// SetCoefficients replaces the coefficient handle at index. It is safe
// to call from a control goroutine while the audio goroutine processes a
// block with the previous handle.
func (c *CutCascade) SetCoefficients(index int, coeffs biquad.Coefficients) {
	c.stages[index].set(coeffs)
}

// SetActive toggles a stage's participation in the signal path.
func (c *CutCascade) SetActive(index int, active bool) {
	c.stages[index].active.Store(active)
}

// Active reports whether the stage at index participates in the signal path.
func (c *CutCascade) Active(index int) bool {
	return c.stages[index].active.Load()
}

// Update installs a freshly designed cascade for the given slope. Every
// stage is deactivated first, then stages 0..slope are activated with
// their new coefficients, so a stale higher-order stage can never run
// against coefficients designed for a lower slope.
func (c *CutCascade) Update(coeffs []biquad.Coefficients, slope Slope) {
	for i := range c.stages {
		c.stages[i].active.Store(false)
	}

	n := slope.Sections()
	if n > len(coeffs) {
		n = len(coeffs)
	}
	for i := 0; i < n; i++ {
		c.stages[i].set(coeffs[i])
		c.stages[i].active.Store(true)
	}
}

func (c *CutCascade) processSample(x float64) float64 {
	for i := range c.stages {
		x = c.stages[i].processSample(x)
	}
	return x
}

func (c *CutCascade) reset() {
	for i := range c.stages {
		c.stages[i].reset()
	}
}

func (c *CutCascade) settle() {
	for i := range c.stages {
		c.stages[i].settle()
	}
}

func (c *CutCascade) magnitudeSquared(freqHz, sampleRate float64) float64 {
	mag2 := 1.0
	for i := range c.stages {
		mag2 *= c.stages[i].magnitudeSquared(freqHz, sampleRate)
	}
	return mag2
}

// MonoChain applies [low-cut cascade, peak stage, high-cut cascade] to
// one audio channel. The zero value is a passthrough chain; Update
// installs coefficients for a settings snapshot.
type MonoChain struct {
	lowCut       CutCascade
	peak         stage
	highCut      CutCascade
	peakBypassed atomic.Bool
}

// LowCut exposes the low-cut cascade for per-stage control.
func (m *MonoChain) LowCut() *CutCascade {
	return &m.lowCut
}

// HighCut exposes the high-cut cascade for per-stage control.
func (m *MonoChain) HighCut() *CutCascade {
	return &m.highCut
}

// SetPeakBypassed removes or restores the peak band in the signal path.
func (m *MonoChain) SetPeakBypassed(bypassed bool) {
	m.peakBypassed.Store(bypassed)
	m.peak.active.Store(!bypassed)
}

// PeakBypassed reports whether the peak band is bypassed.
func (m *MonoChain) PeakBypassed() bool {
	return m.peakBypassed.Load()
}

// Update derives all three coefficient sets from the snapshot and
// installs them. Safe to call from a control goroutine while the audio
// goroutine is processing.
func (m *MonoChain) Update(s Settings, sampleRate float64) {
	m.lowCut.Update(DesignLowCut(s, sampleRate), s.LowCutSlope)

	m.peak.set(DesignPeak(s, sampleRate))
	m.peak.active.Store(!m.peakBypassed.Load())

	m.highCut.Update(DesignHighCut(s, sampleRate), s.HighCutSlope)
}

// ProcessSample filters one sample through the full chain.
func (m *MonoChain) ProcessSample(x float64) float64 {
	x = m.lowCut.processSample(x)
	x = m.peak.processSample(x)
	return m.highCut.processSample(x)
}

// ProcessBlock filters a block in place, preserving sample order.
func (m *MonoChain) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = m.ProcessSample(x)
	}

	m.lowCut.settle()
	m.peak.settle()
	m.highCut.settle()
}

// Reset zeroes every delay line. Must not run concurrently with an
// in-flight ProcessBlock.
func (m *MonoChain) Reset() {
	m.lowCut.reset()
	m.peak.reset()
	m.highCut.reset()
}

// MagnitudeDB evaluates the chain's magnitude response in dB from the
// live coefficient handles and activity flags, so a displayed curve can
// never drift from what the audio path actually runs.
func (m *MonoChain) MagnitudeDB(freqHz, sampleRate float64) float64 {
	mag2 := m.lowCut.magnitudeSquared(freqHz, sampleRate)
	mag2 *= m.peak.magnitudeSquared(freqHz, sampleRate)
	mag2 *= m.highCut.magnitudeSquared(freqHz, sampleRate)
	return 10 * math.Log10(mag2)
}
