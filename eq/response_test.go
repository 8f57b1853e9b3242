package eq

import (
	"math"
	"testing"
)

func TestLogFrequencyAxis(t *testing.T) {
	axis := LogFrequencyAxis(5, 20, 20000)
	if len(axis) != 5 {
		t.Fatalf("got %d points", len(axis))
	}

	// Endpoints are pinned exactly, not recomputed via pow(10, log10(x)).
	if axis[0] != 20 || axis[4] != 20000 {
		t.Errorf("endpoints: %v .. %v", axis[0], axis[4])
	}

	// Log-uniform spacing has a constant ratio between neighbors.
	ratio := axis[1] / axis[0]
	for i := 2; i < len(axis); i++ {
		if math.Abs(axis[i]/axis[i-1]-ratio) > 1e-9 {
			t.Errorf("ratio broke at %d: %v vs %v", i, axis[i]/axis[i-1], ratio)
		}
	}

	if got := LogFrequencyAxis(1, 100, 20000); len(got) != 1 || got[0] != 100 {
		t.Errorf("n=1: %v", got)
	}

	if LogFrequencyAxis(0, 20, 20000) != nil {
		t.Error("n=0 must return nil")
	}
	if LogFrequencyAxis(8, 0, 20000) != nil {
		t.Error("minHz=0 must return nil")
	}
	if LogFrequencyAxis(8, 20, -5) != nil {
		t.Error("negative maxHz must return nil")
	}
}

func TestMagnitudeDB_DefaultsNearFlat(t *testing.T) {
	const sampleRate = 48000.0

	// The default cuts sit at the band edges, so the interior of the
	// band stays within a fraction of a dB of flat.
	s := DefaultSettings()
	for _, f := range LogFrequencyAxis(64, 40, 10000) {
		db := MagnitudeDB(f, s, sampleRate)
		if math.Abs(db) > 0.5 {
			t.Errorf("%.1f Hz: %v dB, want within +-0.5", f, db)
		}
	}
}

func TestMagnitudeDB_PeakGainAtCenter(t *testing.T) {
	const sampleRate = 48000.0

	s := DefaultSettings()
	s.PeakFreq = 1000
	s.PeakQuality = 1

	prev := math.Inf(-1)
	for _, gain := range []float64{0, 3, 6, 12, 24} {
		s.PeakGainDB = gain
		db := MagnitudeDB(1000, s, sampleRate)
		if math.Abs(db-gain) > 0.1 {
			t.Errorf("gain %v: response %v dB at center", gain, db)
		}
		if db <= prev {
			t.Errorf("gain %v: response %v not above previous %v", gain, db, prev)
		}
		prev = db
	}
}

func TestMagnitudeDB_SlopeOrdering(t *testing.T) {
	const (
		sampleRate = 48000.0
		cutoff     = 1000.0
	)

	s := DefaultSettings()
	s.LowCutFreq = cutoff

	// One octave below the cutoff, each slope step attenuates harder.
	prev := math.Inf(1)
	for slope := Slope12; slope <= Slope48; slope++ {
		s.LowCutSlope = slope
		db := MagnitudeDB(cutoff/2, s, sampleRate)
		if db >= prev {
			t.Errorf("slope %v: %v dB not below %v dB", slope, db, prev)
		}
		prev = db
	}
}

func TestMagnitudeDB_ButterworthCutoffPoint(t *testing.T) {
	const sampleRate = 48000.0

	s := DefaultSettings()
	s.HighCutFreq = 2000

	for slope := Slope12; slope <= Slope48; slope++ {
		s.HighCutSlope = slope
		db := MagnitudeDB(2000, s, sampleRate)
		if math.Abs(db-(-3.0103)) > 0.05 {
			t.Errorf("slope %v: %v dB at cutoff, want -3.01", slope, db)
		}
	}
}

func TestResponseCurve(t *testing.T) {
	const sampleRate = 48000.0

	s := DefaultSettings()
	s.PeakFreq = 1000
	s.PeakGainDB = 6

	freqs, mags := ResponseCurve(s, sampleRate, 256)
	if len(freqs) != 256 || len(mags) != 256 {
		t.Fatalf("lengths: %d / %d", len(freqs), len(mags))
	}

	if freqs[0] != MinFrequency {
		t.Errorf("first point %v", freqs[0])
	}
	if freqs[255] != MaxFrequency {
		t.Errorf("last point %v", freqs[255])
	}

	// The maximum of the curve lands at the boosted band.
	maxIdx := 0
	for i, m := range mags {
		if m > mags[maxIdx] {
			maxIdx = i
		}
	}
	if f := freqs[maxIdx]; f < 700 || f > 1400 {
		t.Errorf("curve peak at %v Hz, want near 1000", f)
	}
}
