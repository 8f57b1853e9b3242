package eq

import "math"

// MagnitudeDB evaluates the chain's magnitude response in dB at one
// frequency, deriving coefficients from the snapshot with exactly the
// designers and activation rule the audio path uses. The contributions
// of the peak band and every active cut stage multiply in the linear
// domain before conversion to dB.
func MagnitudeDB(freqHz float64, s Settings, sampleRate float64) float64 {
	s = s.Clamped()

	peak := DesignPeak(s, sampleRate)
	mag2 := peak.MagnitudeSquared(freqHz, sampleRate)

	for _, c := range DesignLowCut(s, sampleRate) {
		mag2 *= c.MagnitudeSquared(freqHz, sampleRate)
	}
	for _, c := range DesignHighCut(s, sampleRate) {
		mag2 *= c.MagnitudeSquared(freqHz, sampleRate)
	}

	return 10 * math.Log10(mag2)
}

// LogFrequencyAxis returns n frequencies log-uniformly spaced between
// minHz and maxHz, inclusive on both ends:
//
//	freq(i) = 10^(log10(minHz) + i/(n-1) * (log10(maxHz)-log10(minHz)))
//
// The endpoints are pinned to minHz and maxHz exactly rather than
// recomputed through the log round trip.
func LogFrequencyAxis(n int, minHz, maxHz float64) []float64 {
	if n <= 0 || minHz <= 0 || maxHz <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{minHz}
	}

	logMin := math.Log10(minHz)
	logMax := math.Log10(maxHz)

	out := make([]float64, n)
	out[0] = minHz
	out[n-1] = maxHz
	for i := 1; i < n-1; i++ {
		t := float64(i) / float64(n-1)
		out[i] = math.Pow(10, logMin+t*(logMax-logMin))
	}
	return out
}

// ResponseCurve evaluates the magnitude response over n points of the
// audible band, returning the frequency axis and the matching dB values.
func ResponseCurve(s Settings, sampleRate float64, n int) (freqs, magsDB []float64) {
	freqs = LogFrequencyAxis(n, MinFrequency, MaxFrequency)
	magsDB = make([]float64, len(freqs))
	for i, f := range freqs {
		magsDB[i] = MagnitudeDB(f, s, sampleRate)
	}
	return freqs, magsDB
}
