package collide

// Trigger tuning. minTriggerImpulse is the graze threshold: contacts
// below it make no sound. refractoryMs suppresses motor-buzz from
// sustained contact on the same object.
const (
	minTriggerImpulse = 0.002
	refractoryMs      = 5.0
)

// contactListener turns resolved contacts into synthesizer triggers
// and gate pulses. It runs synchronously inside World.Step, on the
// physics context; the handoff to the audio context happens inside
// ModalSynth.Trigger and CVBank.pulse, which are built for it.
type contactListener struct {
	synth *ModalSynth
	cv    *CVBank
}

func newContactListener(synth *ModalSynth, cv *CVBank) contactListener {
	return contactListener{synth: synth, cv: cv}
}

// reset chokes the voice pool on scene clear.
func (l *contactListener) reset() {
	if l.synth != nil {
		l.synth.Choke()
	}
}

// surfaceContact handles a dynamic body hitting a stroke: the stroke's
// material sounds.
func (l *contactListener) surfaceContact(o *PhysicsObject, st *Stroke, impulse float64, nowMs float64) {
	if st.MaterialTag == MatConveyor {
		// Conveyors drive, they do not ring.
		return
	}
	l.fire(o, LookupMaterial(st.MaterialTag), impulse, nowMs)
}

// objectContact handles two dynamic bodies colliding: the struck
// (slower) object's own material sounds.
func (l *contactListener) objectContact(a, b *PhysicsObject, impulse float64, nowMs float64) {
	struck := b
	if a.Vel.MagnitudeSquared() < b.Vel.MagnitudeSquared() {
		struck = a
	}
	l.fire(struck, struck.Material, impulse, nowMs)
}

func (l *contactListener) fire(o *PhysicsObject, mat MaterialData, impulse float64, nowMs float64) {
	if impulse < minTriggerImpulse {
		return
	}
	if o.lastSoundMs > 0 && nowMs-o.lastSoundMs < refractoryMs {
		return
	}
	o.lastSoundMs = nowMs

	pan := float32(clampFloat64((o.Pos.X-worldMin)/(worldMax-worldMin), 0, 1))
	if l.synth != nil {
		l.synth.Trigger(mat, impulse, pan)
	}
	if l.cv != nil {
		l.cv.pulse(GateMain)
		switch o.Kind {
		case ShapeCircle:
			l.cv.pulse(GateCircle)
		case ShapeSquare:
			l.cv.pulse(GateSquare)
		case ShapeTriangle:
			l.cv.pulse(GateTriangle)
		}
	}
}
