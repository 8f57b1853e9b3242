package eq

import (
	"github.com/gopxl/beep"

	"github.com/AidenCarrera/OloEQ/dsp/core"
)

// Streamer applies the equalizer to a beep stream, so the processor
// drops into any beep playback or encoding pipeline. The wrapped source
// is pulled first, then both channels are filtered in place.
type Streamer struct {
	src  beep.Streamer
	proc *Processor

	left, right []float64
}

// NewStreamer wraps src with the given processor. The processor must be
// prepared with the stream's sample rate before playback starts.
func NewStreamer(src beep.Streamer, proc *Processor) *Streamer {
	return &Streamer{src: src, proc: proc}
}

// Stream fills samples from the source and filters them through both
// channel chains. Blocks larger than the processor's prepared limit are
// split, so beep's buffer sizing never exceeds what Prepare promised.
func (s *Streamer) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = s.src.Stream(samples)
	if n == 0 {
		return n, ok
	}

	s.left = core.EnsureLen(s.left, n)
	s.right = core.EnsureLen(s.right, n)
	for i := 0; i < n; i++ {
		s.left[i] = samples[i][0]
		s.right[i] = samples[i][1]
	}

	step := s.proc.MaxBlockSize()
	if step <= 0 {
		step = n
	}
	for i := 0; i < n; i += step {
		end := i + step
		if end > n {
			end = n
		}
		s.proc.ProcessBlock(s.left[i:end], s.right[i:end])
	}

	for i := 0; i < n; i++ {
		samples[i][0] = s.left[i]
		samples[i][1] = s.right[i]
	}

	return n, ok
}

// Err propagates the source's error state.
func (s *Streamer) Err() error {
	return s.src.Err()
}
