package analysis

import (
	"math"
	"math/rand"
	"testing"
)

func TestCompareIdenticalImpactsHasLowDistance(t *testing.T) {
	sr := 48000
	x := makeImpact(sr, 440.0, 2.0, 0.6)
	m := Compare(x, x, sr)
	if m.Score > 0.05 {
		t.Fatalf("expected very low score for identical impacts, got %f", m.Score)
	}
	if m.Similarity < 0.85 {
		t.Fatalf("expected high similarity for identical impacts, got %f", m.Similarity)
	}
}

func TestCompareDifferentMaterialsHasHigherDistance(t *testing.T) {
	sr := 48000
	bright := makeImpact(sr, 660.0, 2.0, 1.1)
	dull := makeImpact(sr, 120.0, 2.0, 0.12)
	m := Compare(bright, dull, sr)
	if m.Score < 0.2 {
		t.Fatalf("expected higher score for different materials, got %f", m.Score)
	}
}

func TestCompareToleratesOnsetShift(t *testing.T) {
	sr := 48000
	x := makeImpact(sr, 330.0, 2.0, 0.5)
	shifted := make([]float64, len(x)+960)
	copy(shifted[960:], x)
	m := Compare(x, shifted, sr)
	if m.Score > 0.1 {
		t.Fatalf("expected alignment to absorb onset shift, got score %f", m.Score)
	}
}

func TestEstimateLagFindsPositiveShift(t *testing.T) {
	const (
		n      = 8192
		shift  = 237
		maxLag = 600
	)
	ref := randomSignal(n, 7)
	cand := make([]float64, n)
	copy(cand, ref[shift:])

	got := estimateLag(ref, cand, maxLag)
	if got != shift {
		t.Fatalf("estimateLag() = %d, want %d", got, shift)
	}
}

func TestEstimateLagFindsNegativeShift(t *testing.T) {
	const (
		n      = 8192
		shift  = -191
		maxLag = 600
	)
	ref := randomSignal(n, 11)
	cand := make([]float64, n)
	copy(cand[-shift:], ref)

	got := estimateLag(ref, cand, maxLag)
	if got != shift {
		t.Fatalf("estimateLag() = %d, want %d", got, shift)
	}
}

func TestDecaySlopeMatchesExponential(t *testing.T) {
	sr := 48000
	tau := 0.3
	x := makeImpact(sr, 440.0, 2.0, tau)

	got := DecaySlope(x, sr)
	want := -20.0 * math.Log10(math.E) / tau // dB/s of exp(-t/tau)
	if math.IsNaN(got) {
		t.Fatalf("DecaySlope returned NaN")
	}
	if math.Abs(got-want)/math.Abs(want) > 0.15 {
		t.Fatalf("DecaySlope() = %f dB/s, want ~%f", got, want)
	}
}

func TestSpectralCentroidTracksBrightness(t *testing.T) {
	sr := 48000
	low := makeImpact(sr, 200.0, 1.0, 0.5)
	high := makeImpact(sr, 2000.0, 1.0, 0.5)

	cl := SpectralCentroid(low, sr)
	ch := SpectralCentroid(high, sr)
	if cl <= 0 || ch <= 0 {
		t.Fatalf("centroids %f, %f", cl, ch)
	}
	if ch <= cl {
		t.Fatalf("brighter impact has lower centroid: %f <= %f", ch, cl)
	}
}

func makeImpact(sr int, freq float64, durationSec float64, decaySec float64) []float64 {
	n := int(float64(sr) * durationSec)
	if n < 1 {
		n = 1
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sr)
		env := math.Exp(-t / decaySec)
		out[i] = env * math.Sin(2*math.Pi*freq*t)
	}
	return out
}

func randomSignal(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()*2 - 1
	}
	return out
}
