package eq

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Processor is the stereo signal-processing core: two mono chains with
// identical coefficients, fed from one parameter store.
//
// ProcessBlock is the audio-rate entry point and stays free of locks; it
// re-derives coefficients only when the store reports pending changes,
// so steady-state blocks touch pre-installed, immutable records only.
type Processor struct {
	params     *Store
	analyzer   *Analyzer
	sampleRate float64
	maxBlock   int

	left  MonoChain
	right MonoChain
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithStore shares an externally owned parameter store instead of
// creating a fresh one.
func WithStore(store *Store) ProcessorOption {
	return func(p *Processor) {
		if store != nil {
			p.params = store
		}
	}
}

// WithAnalyzer taps the processed left channel into a spectrum analyzer
// after each block.
func WithAnalyzer(a *Analyzer) ProcessorOption {
	return func(p *Processor) {
		p.analyzer = a
	}
}

// NewProcessor returns a processor with default parameters. Prepare must
// be called before the first ProcessBlock.
func NewProcessor(opts ...ProcessorOption) *Processor {
	p := &Processor{}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.params == nil {
		p.params = NewStore()
	}
	return p
}

// Params returns the parameter store feeding this processor.
func (p *Processor) Params() *Store {
	return p.params
}

// SampleRate returns the rate passed to the last Prepare call, or 0.
func (p *Processor) SampleRate() float64 {
	return p.sampleRate
}

// MaxBlockSize returns the block limit passed to the last Prepare call.
func (p *Processor) MaxBlockSize() int {
	return p.maxBlock
}

// Prepare (re)initializes both channels for the given sample rate: delay
// lines are zeroed unconditionally and the current snapshot is applied.
// It must be called before the first ProcessBlock and again whenever the
// sample rate changes, never concurrently with an in-flight block.
func (p *Processor) Prepare(sampleRate float64, maxBlockSize int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("eq: invalid sample rate %g", sampleRate)
	}
	if maxBlockSize <= 0 {
		return fmt.Errorf("eq: invalid maximum block size %d", maxBlockSize)
	}

	p.sampleRate = sampleRate
	p.maxBlock = maxBlockSize

	p.left.Reset()
	p.right.Reset()

	p.ApplySnapshot(p.params.Snapshot())
	p.params.TakeDirty()

	log.WithFields(log.Fields{
		"sampleRate":   sampleRate,
		"maxBlockSize": maxBlockSize,
	}).Debug("eq: processor prepared")

	return nil
}

// ApplySnapshot derives all three coefficient sets from the snapshot and
// installs them in both channels with atomic handle swaps. It may be
// called from a control goroutine while audio is running.
func (p *Processor) ApplySnapshot(s Settings) {
	if p.sampleRate <= 0 {
		return
	}

	s = s.Clamped()
	p.left.Update(s, p.sampleRate)
	p.right.Update(s, p.sampleRate)
}

// Snapshot returns the current settings from the parameter store.
func (p *Processor) Snapshot() Settings {
	return p.params.Snapshot()
}

// Restore re-reads persisted parameter values; the refreshed
// coefficients take effect on the next processed block.
func (p *Processor) Restore(values map[string]float64) {
	p.params.Restore(values)
}

// Left exposes the left channel chain, primarily for live response
// evaluation.
func (p *Processor) Left() *MonoChain {
	return &p.left
}

// Right exposes the right channel chain.
func (p *Processor) Right() *MonoChain {
	return &p.right
}

// ProcessBlock filters both channel buffers in place, sample by sample.
// If parameters changed since the previous block, the pending snapshot
// is applied first, so every block runs a coefficient set consistent
// with one snapshot.
//
// The two slices may have different lengths; each channel processes its
// own. Callers own any output channels beyond these two.
func (p *Processor) ProcessBlock(left, right []float64) {
	if p.params.TakeDirty() {
		p.ApplySnapshot(p.params.Snapshot())
	}

	p.left.ProcessBlock(left)
	p.right.ProcessBlock(right)

	if p.analyzer != nil {
		p.analyzer.Push(left)
	}
}
