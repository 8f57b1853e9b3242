// Package eq implements a three-band parametric equalizer core: a
// Butterworth low-cut cascade, an RBJ peaking band and a Butterworth
// high-cut cascade, applied identically to two audio channels.
//
// The package separates a lock-free audio-rate path (Processor,
// MonoChain) from the control-rate path (Store, Refresher) that derives
// filter coefficients from parameter snapshots. Coefficients are
// immutable once designed; updates install new records with an atomic
// handle swap per stage, so a block in flight always observes a complete
// record.
package eq

import (
	"fmt"
	"strconv"

	"github.com/AidenCarrera/OloEQ/dsp/biquad"
	"github.com/AidenCarrera/OloEQ/dsp/core"
	"github.com/AidenCarrera/OloEQ/dsp/design"
)

// Slope selects the roll-off steepness of a cut filter. Each step adds
// one active second-order stage, i.e. 12 dB/octave.
type Slope int

// Available cut slopes.
const (
	Slope12 Slope = iota
	Slope24
	Slope36
	Slope48
)

// numCutStages is the fixed stage count of a cut cascade.
const numCutStages = 4

// Sections returns the number of active second-order stages for the slope.
func (s Slope) Sections() int {
	return int(s) + 1
}

// Order returns the Butterworth filter order realized by the slope.
func (s Slope) Order() int {
	return 2 * (int(s) + 1)
}

// DBPerOctave returns the nominal roll-off steepness.
func (s Slope) DBPerOctave() int {
	return 12 * (int(s) + 1)
}

func (s Slope) String() string {
	return strconv.Itoa(s.DBPerOctave()) + " dB/Oct"
}

// SlopeFromDBPerOctave maps 12, 24, 36 or 48 to the matching Slope.
func SlopeFromDBPerOctave(db int) (Slope, error) {
	if db < 12 || db > 48 || db%12 != 0 {
		return Slope12, fmt.Errorf("eq: unsupported slope %d dB/Oct", db)
	}
	return Slope(db/12 - 1), nil
}

func clampSlope(s Slope) Slope {
	if s < Slope12 {
		return Slope12
	}
	if s > Slope48 {
		return Slope48
	}
	return s
}

// Legal parameter ranges. The Store enforces them on every write and
// Settings.Clamped enforces them defensively on every snapshot.
const (
	MinFrequency = 20.0
	MaxFrequency = 20000.0
	MinGainDB    = -24.0
	MaxGainDB    = 24.0
	MinQuality   = 0.1
	MaxQuality   = 10.0
)

// Settings is an immutable snapshot of all control parameters, taken at
// one instant for use in one update cycle.
type Settings struct {
	PeakFreq    float64
	PeakGainDB  float64
	PeakQuality float64

	LowCutFreq  float64
	HighCutFreq float64

	LowCutSlope  Slope
	HighCutSlope Slope
}

// DefaultSettings returns the snapshot matching the parameter defaults:
// a flat chain with the peak band parked at 750 Hz.
func DefaultSettings() Settings {
	return Settings{
		PeakFreq:     750,
		PeakGainDB:   0,
		PeakQuality:  1,
		LowCutFreq:   MinFrequency,
		HighCutFreq:  MaxFrequency,
		LowCutSlope:  Slope12,
		HighCutSlope: Slope12,
	}
}

// Clamped returns a copy with every field forced into its legal range.
func (s Settings) Clamped() Settings {
	s.PeakFreq = core.Clamp(s.PeakFreq, MinFrequency, MaxFrequency)
	s.PeakGainDB = core.Clamp(s.PeakGainDB, MinGainDB, MaxGainDB)
	s.PeakQuality = core.Clamp(s.PeakQuality, MinQuality, MaxQuality)
	s.LowCutFreq = core.Clamp(s.LowCutFreq, MinFrequency, MaxFrequency)
	s.HighCutFreq = core.Clamp(s.HighCutFreq, MinFrequency, MaxFrequency)
	s.LowCutSlope = clampSlope(s.LowCutSlope)
	s.HighCutSlope = clampSlope(s.HighCutSlope)
	return s
}

// DesignPeak derives the peaking-band coefficients from the snapshot.
func DesignPeak(s Settings, sampleRate float64) biquad.Coefficients {
	return design.Peak(s.PeakFreq, s.PeakGainDB, s.PeakQuality, sampleRate)
}

// DesignLowCut derives the low-cut Butterworth cascade from the
// snapshot: exactly s.LowCutSlope.Sections() second-order sections for
// in-range input.
func DesignLowCut(s Settings, sampleRate float64) []biquad.Coefficients {
	return design.ButterworthHP(s.LowCutFreq, s.LowCutSlope.Order(), sampleRate)
}

// DesignHighCut derives the high-cut Butterworth cascade from the snapshot.
func DesignHighCut(s Settings, sampleRate float64) []biquad.Coefficients {
	return design.ButterworthLP(s.HighCutFreq, s.HighCutSlope.Order(), sampleRate)
}
