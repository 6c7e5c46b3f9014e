package collide

import (
	"math"
	"testing"
)

func TestTriggerAllocatesRoundRobin(t *testing.T) {
	m := NewModalSynth(testSampleRate, 1.0)
	mat := LookupMaterial(MatMetal)

	for i := 0; i < NumVoices; i++ {
		if m.NextVoice() != i {
			t.Fatalf("cursor = %d before trigger %d", m.NextVoice(), i)
		}
		m.Trigger(mat, 1.0, 0.5)
	}
	if m.NextVoice() != 0 {
		t.Fatalf("cursor = %d after %d triggers, want wrap to 0", m.NextVoice(), NumVoices)
	}

	// The ninth trigger steals voice 0 even though it is still decaying.
	seq := m.voices[0].trigSeq.Load()
	m.Trigger(mat, 1.0, 0.5)
	if m.voices[0].trigSeq.Load() != seq+1 {
		t.Fatalf("ninth trigger did not retrigger voice 0")
	}
}

func TestBurstOfTriggersStaysBounded(t *testing.T) {
	m := NewModalSynth(testSampleRate, 1.0)
	mat := LookupMaterial(MatGlass)
	for i := 0; i < 10; i++ {
		m.Trigger(mat, 1.0, float32(i)/10.0)
	}

	out := m.RenderBlock(4800)
	if n := m.ActiveVoices(); n > NumVoices {
		t.Fatalf("ActiveVoices() = %d, want <= %d", n, NumVoices)
	}
	peak := 0.0
	for i, s := range out {
		v := float64(s)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("non-finite sample at %d: %v", i, s)
		}
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		t.Fatalf("burst rendered silence")
	}
}

func TestRenderIntoZeroesDestination(t *testing.T) {
	m := NewModalSynth(testSampleRate, 1.0)
	dst := make([]float32, 256)
	for i := range dst {
		dst[i] = 42
	}
	m.RenderInto(dst, 128)
	for i, s := range dst {
		if s != 0 {
			t.Fatalf("idle pool left residue at %d: %f", i, s)
		}
	}
}

func TestOutputGainScalesMix(t *testing.T) {
	render := func(gain float32) float64 {
		m := NewModalSynth(testSampleRate, gain)
		m.Trigger(LookupMaterial(MatMetal), 1.0, 0.5)
		out := m.RenderBlock(4800)
		var sum float64
		for _, s := range out {
			sum += float64(s) * float64(s)
		}
		return math.Sqrt(sum / float64(len(out)))
	}

	full := render(1.0)
	half := render(0.5)
	if full <= 0 {
		t.Fatalf("unity render silent")
	}
	ratio := half / full
	if ratio < 0.45 || ratio > 0.55 {
		t.Fatalf("gain 0.5 RMS ratio = %f, want ~0.5", ratio)
	}
}

func TestChokeFadesActiveVoices(t *testing.T) {
	m := NewModalSynth(testSampleRate, 1.0)
	m.Trigger(LookupMaterial(MatMetal), 1.0, 0.5)
	m.RenderBlock(256)
	if m.ActiveVoices() == 0 {
		t.Fatalf("voice not active after trigger and render")
	}

	// Metal decays for 1.8s; a choked voice must be gone well before
	// that, within the short release window.
	m.Choke()
	m.RenderBlock(testSampleRate / 5)
	if m.ActiveVoices() != 0 {
		t.Fatalf("ActiveVoices() = %d 200ms after choke", m.ActiveVoices())
	}
}

func TestChokeSwallowsPendingTriggers(t *testing.T) {
	m := NewModalSynth(testSampleRate, 1.0)
	m.Trigger(LookupMaterial(MatGlass), 1.0, 0.5)
	// Choke before the trigger ever reaches a render block.
	m.Choke()
	m.RenderBlock(256)
	if m.ActiveVoices() != 0 {
		t.Fatalf("pending trigger survived a choke")
	}
}

func TestResetSilencesPool(t *testing.T) {
	m := NewModalSynth(testSampleRate, 1.0)
	m.Trigger(LookupMaterial(MatMetal), 1.0, 0.5)
	m.RenderBlock(256)
	if m.ActiveVoices() == 0 {
		t.Fatalf("voice not active after trigger and render")
	}
	m.Reset()
	if m.ActiveVoices() != 0 {
		t.Fatalf("ActiveVoices() = %d after reset", m.ActiveVoices())
	}
	out := m.RenderBlock(256)
	for i, s := range out {
		if s != 0 {
			t.Fatalf("sample %d = %f after reset", i, s)
		}
	}
}
