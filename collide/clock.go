package collide

import (
	"sync"
	"sync/atomic"
	"time"
)

// Clock drives World.Step at a fixed tick rate on its own goroutine,
// decoupled from the audio block cadence. The host transport pauses
// and resumes it; while paused the world holds still but the goroutine
// keeps ticking cheaply.
type Clock struct {
	world    *World
	interval time.Duration
	dt       float64

	playing atomic.Bool
	stop    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewClock creates a stopped clock for the given tick rate.
func NewClock(w *World, tickRateHz float64) *Clock {
	if tickRateHz <= 0 {
		tickRateHz = 60
	}
	return &Clock{
		world:    w,
		interval: time.Duration(float64(time.Second) / tickRateHz),
		dt:       1.0 / tickRateHz,
		stop:     make(chan struct{}),
	}
}

// Start launches the tick goroutine. Safe to call once.
func (c *Clock) Start() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
				if c.playing.Load() {
					c.world.Step(c.dt)
				}
			}
		}
	}()
}

// SetPlaying follows the host transport state.
func (c *Clock) SetPlaying(playing bool) {
	c.playing.Store(playing)
}

// Playing reports the transport state.
func (c *Clock) Playing() bool {
	return c.playing.Load()
}

// Stop terminates the tick goroutine and waits for it to exit.
func (c *Clock) Stop() {
	c.once.Do(func() { close(c.stop) })
	c.wg.Wait()
}
