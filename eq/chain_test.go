package eq

import (
	"math"
	"testing"

	"github.com/AidenCarrera/OloEQ/dsp/biquad"
)

func TestCutCascade_ActivationMatchesSlope(t *testing.T) {
	const sampleRate = 48000.0

	s := DefaultSettings()
	s.LowCutFreq = 200

	var cascade CutCascade
	for slope := Slope12; slope <= Slope48; slope++ {
		s.LowCutSlope = slope
		cascade.Update(DesignLowCut(s, sampleRate), slope)

		for i := 0; i < numCutStages; i++ {
			want := i < slope.Sections()
			if got := cascade.Active(i); got != want {
				t.Errorf("slope %v stage %d: active=%v, want %v", slope, i, got, want)
			}
		}
	}
}

func TestCutCascade_UpdateDeactivatesHigherStages(t *testing.T) {
	const sampleRate = 48000.0

	s := DefaultSettings()
	s.LowCutFreq = 200
	s.LowCutSlope = Slope48

	var cascade CutCascade
	cascade.Update(DesignLowCut(s, sampleRate), Slope48)

	s.LowCutSlope = Slope12
	cascade.Update(DesignLowCut(s, sampleRate), Slope12)

	if !cascade.Active(0) {
		t.Error("stage 0 must stay active")
	}
	for i := 1; i < numCutStages; i++ {
		if cascade.Active(i) {
			t.Errorf("stage %d still active after dropping to 12 dB/Oct", i)
		}
	}
}

func TestStage_InactivePassesThrough(t *testing.T) {
	var st stage
	st.set(biquad.Coefficients{B0: 0.5})

	for _, x := range []float64{1, -0.25, 0.75} {
		if y := st.processSample(x); y != x {
			t.Fatalf("inactive stage altered %v to %v", x, y)
		}
	}

	st.active.Store(true)
	if y := st.processSample(1); y != 0.5 {
		t.Errorf("active stage: got %v, want 0.5", y)
	}
}

func TestMonoChain_ZeroValueIsPassthrough(t *testing.T) {
	var m MonoChain

	buf := []float64{1, -0.5, 0.25, 0, 0.9}
	want := append([]float64(nil), buf...)

	m.ProcessBlock(buf)
	for i := range buf {
		if buf[i] != want[i] {
			t.Fatalf("index %d: got %v, want %v", i, buf[i], want[i])
		}
	}
}

func TestMonoChain_PeakBypass(t *testing.T) {
	const sampleRate = 48000.0

	s := DefaultSettings()
	s.PeakFreq = 1000
	s.PeakGainDB = 12

	var m MonoChain
	m.Update(s, sampleRate)

	boosted := m.MagnitudeDB(1000, sampleRate)
	if math.Abs(boosted-12) > 0.5 {
		t.Fatalf("peak response: got %v dB, want about 12", boosted)
	}

	m.SetPeakBypassed(true)
	if !m.PeakBypassed() {
		t.Fatal("bypass flag not set")
	}

	flat := m.MagnitudeDB(1000, sampleRate)
	if math.Abs(flat) > 0.5 {
		t.Errorf("bypassed response: got %v dB, want about 0", flat)
	}

	// Bypass must survive a coefficient refresh.
	m.Update(s, sampleRate)
	if got := m.MagnitudeDB(1000, sampleRate); math.Abs(got) > 0.5 {
		t.Errorf("bypass lost across Update: got %v dB", got)
	}

	m.SetPeakBypassed(false)
	m.Update(s, sampleRate)
	if got := m.MagnitudeDB(1000, sampleRate); math.Abs(got-12) > 0.5 {
		t.Errorf("after un-bypass: got %v dB, want about 12", got)
	}
}

func TestMonoChain_MagnitudeMatchesSnapshotEvaluator(t *testing.T) {
	const sampleRate = 48000.0

	s := DefaultSettings()
	s.LowCutFreq = 80
	s.LowCutSlope = Slope24
	s.HighCutFreq = 12000
	s.HighCutSlope = Slope36
	s.PeakFreq = 1000
	s.PeakGainDB = 6
	s.PeakQuality = 2

	var m MonoChain
	m.Update(s, sampleRate)

	for _, f := range []float64{40, 80, 500, 1000, 4000, 12000, 18000} {
		live := m.MagnitudeDB(f, sampleRate)
		derived := MagnitudeDB(f, s, sampleRate)
		if math.Abs(live-derived) > 1e-9 {
			t.Errorf("%v Hz: live %v dB, derived %v dB", f, live, derived)
		}
	}
}

func TestMonoChain_ResetClearsState(t *testing.T) {
	const sampleRate = 48000.0

	s := DefaultSettings()
	s.LowCutFreq = 1000
	s.LowCutSlope = Slope48

	var m MonoChain
	m.Update(s, sampleRate)

	impulse := make([]float64, 64)
	impulse[0] = 1
	m.ProcessBlock(impulse)

	m.Reset()

	again := make([]float64, 64)
	again[0] = 1
	m.ProcessBlock(again)

	for i := range impulse {
		if impulse[i] != again[i] {
			t.Fatalf("index %d: %v vs %v after Reset", i, impulse[i], again[i])
		}
	}
}
