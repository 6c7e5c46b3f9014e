package collide

import "testing"

func pendingPulses(cv *CVBank, cat GateCategory) uint32 {
	return cv.pending[cat].Load()
}

func TestGrazeBelowThresholdIsSilent(t *testing.T) {
	cv := NewCVBank(testSampleRate)
	l := newContactListener(nil, cv)
	o := &PhysicsObject{Kind: ShapeCircle, Pos: Vec2{X: 0.5, Y: 0.5}, Material: LookupMaterial(MatMetal)}

	l.fire(o, o.Material, minTriggerImpulse/2, 100)
	if pendingPulses(cv, GateMain) != 0 {
		t.Fatalf("graze fired a gate")
	}

	l.fire(o, o.Material, minTriggerImpulse*2, 100)
	if pendingPulses(cv, GateMain) != 1 {
		t.Fatalf("real contact did not fire")
	}
}

func TestRefractoryWindowSuppressesBuzz(t *testing.T) {
	cv := NewCVBank(testSampleRate)
	l := newContactListener(nil, cv)
	o := &PhysicsObject{Kind: ShapeCircle, Pos: Vec2{X: 0.5, Y: 0.5}, Material: LookupMaterial(MatWood)}

	l.fire(o, o.Material, 0.1, 100.0)
	l.fire(o, o.Material, 0.1, 100.0+refractoryMs-1)
	if got := pendingPulses(cv, GateMain); got != 1 {
		t.Fatalf("pulses = %d inside refractory window, want 1", got)
	}

	l.fire(o, o.Material, 0.1, 100.0+refractoryMs+1)
	if got := pendingPulses(cv, GateMain); got != 2 {
		t.Fatalf("pulses = %d after refractory window, want 2", got)
	}
}

func TestRefractoryIsPerObject(t *testing.T) {
	cv := NewCVBank(testSampleRate)
	l := newContactListener(nil, cv)
	a := &PhysicsObject{Kind: ShapeCircle, Pos: Vec2{X: 0.4, Y: 0.5}, Material: LookupMaterial(MatMetal)}
	b := &PhysicsObject{Kind: ShapeCircle, Pos: Vec2{X: 0.6, Y: 0.5}, Material: LookupMaterial(MatMetal)}

	l.fire(a, a.Material, 0.1, 100.0)
	l.fire(b, b.Material, 0.1, 100.5)
	if got := pendingPulses(cv, GateMain); got != 2 {
		t.Fatalf("pulses = %d for two distinct objects, want 2", got)
	}
}

func TestConveyorSurfaceDoesNotRing(t *testing.T) {
	cv := NewCVBank(testSampleRate)
	l := newContactListener(nil, cv)
	o := &PhysicsObject{Kind: ShapeCircle, Pos: Vec2{X: 0.5, Y: 0.5}, Material: LookupMaterial(MatDefault)}
	st := &Stroke{MaterialTag: MatConveyor}

	l.surfaceContact(o, st, 1.0, 100)
	if pendingPulses(cv, GateMain) != 0 {
		t.Fatalf("conveyor contact fired a gate")
	}
}

func TestSurfaceContactSoundsStrokeMaterial(t *testing.T) {
	synth := NewModalSynth(testSampleRate, 1.0)
	cv := NewCVBank(testSampleRate)
	l := newContactListener(synth, cv)
	o := &PhysicsObject{Kind: ShapeTriangle, Pos: Vec2{X: 0.5, Y: 0.5}, Material: LookupMaterial(MatRubber)}
	st := &Stroke{MaterialTag: MatGlass}

	l.surfaceContact(o, st, 0.5, 100)
	if pendingPulses(cv, GateTriangle) != 1 {
		t.Fatalf("shape gate did not fire")
	}

	// The triggered voice carries the stroke's material, not the body's.
	glass := LookupMaterial(MatGlass)
	v := synth.voices[0]
	if got := v.freqBits[0].Load(); got != glass.BasePitchHz {
		t.Fatalf("voice fundamental = %f, want glass %f", got, glass.BasePitchHz)
	}
}

func TestObjectContactSoundsStruckObject(t *testing.T) {
	synth := NewModalSynth(testSampleRate, 1.0)
	cv := NewCVBank(testSampleRate)
	l := newContactListener(synth, cv)

	fast := &PhysicsObject{Kind: ShapeCircle, Pos: Vec2{X: 0.4, Y: 0.5}, Vel: Vec2{X: 1}, Material: LookupMaterial(MatRubber)}
	slow := &PhysicsObject{Kind: ShapeSquare, Pos: Vec2{X: 0.6, Y: 0.5}, Material: LookupMaterial(MatIce)}

	l.objectContact(fast, slow, 0.5, 100)

	ice := LookupMaterial(MatIce)
	v := synth.voices[0]
	if got := v.freqBits[0].Load(); got != ice.BasePitchHz {
		t.Fatalf("voice fundamental = %f, want struck ice %f", got, ice.BasePitchHz)
	}
	if slow.lastSoundMs != 100 {
		t.Fatalf("struck object refractory clock not updated")
	}
	if fast.lastSoundMs != 0 {
		t.Fatalf("striking object refractory clock updated")
	}
	if pendingPulses(cv, GateSquare) != 1 {
		t.Fatalf("struck shape gate did not fire")
	}
}

func TestPanFollowsHorizontalPosition(t *testing.T) {
	synth := NewModalSynth(testSampleRate, 1.0)
	l := newContactListener(synth, nil)

	left := &PhysicsObject{Kind: ShapeCircle, Pos: Vec2{X: 0.0, Y: 0.5}, Material: LookupMaterial(MatMetal)}
	l.fire(left, left.Material, 0.5, 100)
	if got := synth.voices[0].panBits.Load(); got != 0 {
		t.Fatalf("leftmost contact pan = %f, want 0", got)
	}

	right := &PhysicsObject{Kind: ShapeCircle, Pos: Vec2{X: 1.0, Y: 0.5}, Material: LookupMaterial(MatMetal)}
	l.fire(right, right.Material, 0.5, 100)
	if got := synth.voices[1].panBits.Load(); got != 1 {
		t.Fatalf("rightmost contact pan = %f, want 1", got)
	}
}

// Dropping a ball onto a metal stroke must produce exactly the chain
// the instrument is built around: contact, trigger, gate.
func TestDroppedBallRingsMetalStroke(t *testing.T) {
	synth := NewModalSynth(testSampleRate, 1.0)
	cv := NewCVBank(testSampleRate)
	w := NewWorld(NewDefaultParams(), synth, cv)

	w.DrawStroke(StrokeDesc{
		Points:   []Vec2{{X: 0.1, Y: 0.7}, {X: 0.9, Y: 0.7}},
		Material: MatMetal,
	})
	w.SpawnObject(ObjectDesc{Kind: ShapeCircle, Pos: Vec2{X: 0.5, Y: 0.3}, Size: 0.02, Mass: 1})

	for i := 0; i < 180; i++ {
		w.Step(testDT)
		if pendingPulses(cv, GateMain) > 0 {
			break
		}
	}
	if pendingPulses(cv, GateMain) == 0 {
		t.Fatalf("no trigger after 3 simulated seconds")
	}
	if pendingPulses(cv, GateCircle) == 0 {
		t.Fatalf("circle gate did not fire")
	}

	out := synth.RenderBlock(4800)
	peak := float32(0)
	for _, s := range out {
		if s > peak {
			peak = s
		} else if -s > peak {
			peak = -s
		}
	}
	if peak == 0 {
		t.Fatalf("trigger produced no audio")
	}
}
