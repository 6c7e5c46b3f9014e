package collide

import "sync/atomic"

// GateCategory enumerates the trigger gate outputs.
type GateCategory int

const (
	GateMain GateCategory = iota
	GateCircle
	GateSquare
	GateTriangle
	NumGates
)

// gatePulseSeconds is the width of a trigger gate pulse.
const gatePulseSeconds = 0.001

// CVBank publishes the physics snapshot to the audio context: per-shape
// normalized kinematics and edge-triggered gates. All fields cross the
// boundary as atomics with latest-value-wins semantics; a value is at
// most one physics tick stale.
type CVBank struct {
	kin [NumShapeKinds]struct {
		posX, posY atomicFloat32
		velX, velY atomicFloat32
		live       atomic.Bool
	}

	// pending counts triggers per category (physics side); the audio
	// side consumes the difference against its local count and raises
	// the gate for pulseSamples.
	pending [NumGates]atomic.Uint32

	consumed      [NumGates]uint32 // audio-context local
	gateRemaining [NumGates]int    // audio-context local
	pulseSamples  int

	ready atomic.Bool
}

// NewCVBank creates a bank with the gate pulse width derived from the
// audio sample rate.
func NewCVBank(sampleRate int) *CVBank {
	c := &CVBank{}
	c.SetSampleRate(sampleRate)
	return c
}

// SetSampleRate recomputes the gate pulse width.
func (c *CVBank) SetSampleRate(sampleRate int) {
	c.pulseSamples = int(gatePulseSeconds * float64(sampleRate))
	if c.pulseSamples < 1 {
		c.pulseSamples = 1
	}
}

// publishKinematics stores the latest normalized snapshot for a shape
// kind. Physics context.
func (c *CVBank) publishKinematics(k ShapeKind, px, py, vx, vy float32) {
	s := &c.kin[k]
	s.posX.Store(px)
	s.posY.Store(py)
	s.velX.Store(vx)
	s.velY.Store(vy)
	s.live.Store(true)
}

// clearKinematics resets a shape kind with no live instances to the
// neutral snapshot.
func (c *CVBank) clearKinematics(k ShapeKind) {
	s := &c.kin[k]
	s.posX.Store(0)
	s.posY.Store(0)
	s.velX.Store(0)
	s.velY.Store(0)
	s.live.Store(false)
}

// Kinematics loads the latest snapshot for a shape kind. Audio context.
func (c *CVBank) Kinematics(k ShapeKind) (px, py, vx, vy float32) {
	s := &c.kin[k]
	return s.posX.Load(), s.posY.Load(), s.velX.Load(), s.velY.Load()
}

// pulse records a trigger edge. Physics context.
func (c *CVBank) pulse(cat GateCategory) {
	c.pending[cat].Add(1)
}

// markReady flags that at least one physics snapshot exists; before
// this the audio context emits neutral output.
func (c *CVBank) markReady() {
	c.ready.Store(true)
}

// Ready reports whether a physics snapshot has ever been published.
func (c *CVBank) Ready() bool {
	return c.ready.Load()
}

// gateSample advances one gate by one audio sample and returns its
// value (0 or 1). Audio context only.
func (c *CVBank) gateSample(cat GateCategory) float32 {
	if p := c.pending[cat].Load(); p != c.consumed[cat] {
		c.consumed[cat] = p
		c.gateRemaining[cat] = c.pulseSamples
	}
	if c.gateRemaining[cat] > 0 {
		c.gateRemaining[cat]--
		return 1
	}
	return 0
}

// resetGates clears audio-side gate state (prepare-to-play).
func (c *CVBank) resetGates() {
	for i := range c.consumed {
		c.consumed[i] = c.pending[i].Load()
		c.gateRemaining[i] = 0
	}
}
