package collide

import (
	"testing"
	"time"
)

func TestClockRespectsTransport(t *testing.T) {
	w := quietWorld(nil)
	c := NewClock(w, 500)
	c.Start()
	defer c.Stop()

	if c.Playing() {
		t.Fatalf("clock playing before transport start")
	}
	time.Sleep(50 * time.Millisecond)
	if got := w.Ticks(); got != 0 {
		t.Fatalf("Ticks() = %d while transport stopped", got)
	}

	c.SetPlaying(true)
	time.Sleep(100 * time.Millisecond)
	if w.Ticks() == 0 {
		t.Fatalf("no ticks after 100ms at 500 Hz")
	}

	c.SetPlaying(false)
	// Let an in-flight tick drain before sampling.
	time.Sleep(20 * time.Millisecond)
	before := w.Ticks()
	time.Sleep(60 * time.Millisecond)
	if got := w.Ticks(); got != before {
		t.Fatalf("Ticks() advanced %d -> %d while paused", before, got)
	}
}

func TestClockStopIsIdempotent(t *testing.T) {
	w := quietWorld(nil)
	c := NewClock(w, 500)
	c.Start()
	c.SetPlaying(true)
	time.Sleep(20 * time.Millisecond)

	c.Stop()
	c.Stop()

	before := w.Ticks()
	time.Sleep(30 * time.Millisecond)
	if got := w.Ticks(); got != before {
		t.Fatalf("Ticks() advanced %d -> %d after Stop", before, got)
	}
}

func TestClockDefaultsTickRate(t *testing.T) {
	c := NewClock(quietWorld(nil), 0)
	if c.dt != 1.0/60.0 {
		t.Fatalf("dt = %f for unset rate, want 1/60", c.dt)
	}
}
