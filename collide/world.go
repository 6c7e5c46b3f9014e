package collide

import (
	"math"
	"sync/atomic"
)

const (
	worldMin     = 0.0
	worldMax     = 1.0
	boundsMargin = 0.25

	commandQueueSlots = 32

	maxVortexForce = 6.0
	conveyorDrive  = 0.8
	// cvMaxSpeed normalizes velocity CV to [-1, 1].
	cvMaxSpeed = 2.0
)

type requestKind int

const (
	requestObject requestKind = iota
	requestVortex
	requestEmitter
)

type spawnRequest struct {
	kind    requestKind
	object  ObjectDesc
	force   ForceDesc
	emitter EmitterDesc
}

type destroyKind int

const (
	destroyObject destroyKind = iota
	destroyStroke
	destroyForce
	destroyEmitter
)

type destroyRequest struct {
	kind   destroyKind
	handle Handle
	index  int // forces/emitters are addressed by list index
}

// World owns the rigid-body simulation and its fixed-timestep
// evolution. The editing context talks to it exclusively through the
// bounded command queues and atomic flags; the audio context reads the
// published CV/trigger atomics.
type World struct {
	params *Params
	mod    *ModParams
	scene  SceneStore

	spawnQ   *spscRing[spawnRequest]
	strokeQ  *spscRing[StrokeDesc]
	destroyQ *spscRing[destroyRequest]
	clearAll atomic.Bool

	listener contactListener

	// pendingDestroy collects bodies found dead mid-step (out of
	// bounds); destroying them is deferred to the start of the next
	// tick, never done inside contact handling.
	pendingDestroy []Handle

	nowMs float64
	ticks atomic.Uint64
}

// NewWorld creates a world publishing triggers into synth and CV into cv.
func NewWorld(params *Params, synth *ModalSynth, cv *CVBank) *World {
	if params == nil {
		params = NewDefaultParams()
	}
	w := &World{
		params:   params,
		mod:      newModParams(params),
		spawnQ:   newSPSCRing[spawnRequest](commandQueueSlots),
		strokeQ:  newSPSCRing[StrokeDesc](commandQueueSlots),
		destroyQ: newSPSCRing[destroyRequest](commandQueueSlots),
	}
	w.listener = newContactListener(synth, cv)
	return w
}

// Mod exposes the CV-modulatable parameter atomics.
func (w *World) Mod() *ModParams {
	return w.mod
}

// Ticks reports how many physics ticks have completed.
func (w *World) Ticks() uint64 {
	return w.ticks.Load()
}

// ObjectCount reports the number of live dynamic objects.
func (w *World) ObjectCount() int {
	return int(w.scene.liveObjects.Load())
}

// StrokeCount reports the number of live strokes.
func (w *World) StrokeCount() int {
	return int(w.scene.liveStrokes.Load())
}

// ---- editing-context API (queue producers, fire-and-forget) ----

// SpawnObject requests a new dynamic object. Returns false when the
// queue is full; the request is dropped.
func (w *World) SpawnObject(d ObjectDesc) bool {
	return w.spawnQ.Push(spawnRequest{kind: requestObject, object: d})
}

// AddVortex requests a new vortex force field.
func (w *World) AddVortex(pos Vec2) bool {
	return w.spawnQ.Push(spawnRequest{kind: requestVortex, force: ForceDesc{Pos: pos, Kind: ForceVortex}})
}

// AddEmitter requests a new periodic spawner.
func (w *World) AddEmitter(d EmitterDesc) bool {
	return w.spawnQ.Push(spawnRequest{kind: requestEmitter, emitter: d})
}

// DrawStroke requests a new static surface from a finished draw
// gesture. Degenerate geometry is rejected later, at the drain point.
func (w *World) DrawStroke(d StrokeDesc) bool {
	return w.strokeQ.Push(d)
}

// RemoveObject queues destruction of an object by handle.
func (w *World) RemoveObject(h Handle) bool {
	return w.destroyQ.Push(destroyRequest{kind: destroyObject, handle: h})
}

// RemoveStroke queues destruction of a stroke by handle.
func (w *World) RemoveStroke(h Handle) bool {
	return w.destroyQ.Push(destroyRequest{kind: destroyStroke, handle: h})
}

// RemoveForce queues removal of a force field by list index.
func (w *World) RemoveForce(index int) bool {
	return w.destroyQ.Push(destroyRequest{kind: destroyForce, index: index})
}

// RemoveEmitter queues removal of an emitter by list index.
func (w *World) RemoveEmitter(index int) bool {
	return w.destroyQ.Push(destroyRequest{kind: destroyEmitter, index: index})
}

// RequestClearAll schedules a full scene wipe at the start of the next
// tick.
func (w *World) RequestClearAll() {
	w.clearAll.Store(true)
}

// ExportScene snapshots the scene description. Must be called from the
// physics context, or while the physics clock is stopped.
func (w *World) ExportScene() SceneDescription {
	return w.scene.export()
}

// ---- physics-context step ----

// Step advances the simulation by dt seconds. Called at a fixed tick
// rate, independent of the audio block rate. Contact callbacks run
// synchronously inside this call.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}

	if w.clearAll.Swap(false) {
		w.scene.clear()
		w.pendingDestroy = w.pendingDestroy[:0]
		w.listener.reset()
	}

	// Deferred destruction first: bodies that died during the previous
	// step, then externally queued removals.
	for _, h := range w.pendingDestroy {
		w.scene.removeObject(h)
	}
	w.pendingDestroy = w.pendingDestroy[:0]
	w.drainDestroy()
	w.drainSpawns()
	w.drainStrokes()

	gravity := float64(w.mod.Gravity.Load())
	wind := float64(w.mod.WindX.Load())
	vortexStrength := float64(w.mod.VortexStrength.Load())
	vortexSpin := float64(w.mod.VortexSpin.Load())
	magnetForce := float64(w.mod.MagnetForce.Load())

	w.applyGlobalForces(dt, gravity, wind, vortexStrength, vortexSpin)
	w.applyMagnetForces(dt, magnetForce)
	w.advanceEmitters(dt)

	w.scene.forEachObject(func(_ Handle, o *PhysicsObject) {
		o.Pos = o.Pos.Add(o.Vel.Scale(dt))
		o.Angle += o.AngVel * dt
	})

	w.nowMs += dt * 1000.0
	w.handleCollisions(dt)
	w.cullOutOfBounds()
	w.publishCV()
	w.ticks.Add(1)
}

func (w *World) drainDestroy() {
	for {
		req, ok := w.destroyQ.Pop()
		if !ok {
			return
		}
		switch req.kind {
		case destroyObject:
			w.scene.removeObject(req.handle)
		case destroyStroke:
			w.scene.removeStroke(req.handle)
		case destroyForce:
			if req.index >= 0 && req.index < len(w.scene.forces) {
				w.scene.forces = append(w.scene.forces[:req.index], w.scene.forces[req.index+1:]...)
			}
		case destroyEmitter:
			if req.index >= 0 && req.index < len(w.scene.emitters) {
				w.scene.emitters = append(w.scene.emitters[:req.index], w.scene.emitters[req.index+1:]...)
			}
		}
	}
}

func (w *World) drainSpawns() {
	for {
		req, ok := w.spawnQ.Pop()
		if !ok {
			return
		}
		switch req.kind {
		case requestObject:
			w.spawnObject(req.object)
		case requestVortex:
			w.scene.forces = append(w.scene.forces, ForceObject{Pos: req.force.Pos, Kind: req.force.Kind})
		case requestEmitter:
			e := req.emitter
			if e.SpawnRateHz <= 0 {
				continue
			}
			w.scene.emitters = append(w.scene.emitters, EmitterObject{
				Pos:         e.Pos,
				Shape:       e.Shape,
				SpawnRateHz: e.SpawnRateHz,
				InitialVel:  e.InitialVel,
				Radius:      boundingRadius(e.Shape, e.Size),
				Mass:        math.Max(e.Mass, minMass),
				Polarity:    e.Polarity,
				MaterialTag: e.Material,
			})
		}
	}
}

// spawnObject creates a body, enforcing the population cap and the
// mass floor. Requests beyond the cap are dropped, not queued.
func (w *World) spawnObject(d ObjectDesc) bool {
	if int(w.scene.liveObjects.Load()) >= w.params.MaxObjects {
		return false
	}
	if !d.Pos.IsFinite() || !d.Vel.IsFinite() {
		return false
	}
	mass := d.Mass
	if mass <= 0 || math.IsNaN(mass) {
		mass = minMass
	}
	mass = math.Max(mass, minMass)

	o := PhysicsObject{
		Kind:        d.Kind,
		Pos:         d.Pos,
		Vel:         d.Vel,
		Radius:      boundingRadius(d.Kind, d.Size),
		Mass:        mass,
		Polarity:    d.Polarity,
		MaterialTag: d.Material,
		Material:    LookupMaterial(d.Material),
		invMass:     1.0 / mass,
	}
	_, ok := w.scene.addObject(o)
	return ok
}

func (w *World) drainStrokes() {
	for {
		d, ok := w.strokeQ.Pop()
		if !ok {
			return
		}
		if !validStrokePoints(d.Points) {
			continue
		}
		w.scene.addStroke(Stroke{
			Points:      d.Points,
			MaterialTag: d.Material,
			AuxDir:      d.AuxDir,
		})
	}
}

func (w *World) applyGlobalForces(dt, gravity, wind, vortexStrength, vortexSpin float64) {
	w.scene.forEachObject(func(_ Handle, o *PhysicsObject) {
		accel := Vec2{X: wind, Y: gravity}
		for _, f := range w.scene.forces {
			if f.Kind != ForceVortex {
				continue
			}
			r := o.Pos.Sub(f.Pos)
			dist := r.Magnitude()
			if dist < 1e-4 {
				continue
			}
			// Tangential swirl plus a weak inward pull, both capped.
			inv := 1.0 / dist
			tangent := r.Perp().Scale(inv)
			swirl := clampFloat64(vortexStrength*inv*0.1, -maxVortexForce, maxVortexForce) * vortexSpin
			pull := clampFloat64(vortexStrength*inv*0.03, 0, maxVortexForce)
			accel = accel.Add(tangent.Scale(swirl)).Sub(r.Scale(inv * pull))
		}
		o.Vel = o.Vel.Add(accel.Scale(dt))
	})
}

// applyMagnetForces applies pairwise polarity forces: opposite poles
// attract, like poles repel, inverse-square with a cap.
func (w *World) applyMagnetForces(dt, magnetForce float64) {
	if magnetForce == 0 {
		return
	}
	var polarized []*PhysicsObject
	w.scene.forEachObject(func(_ Handle, o *PhysicsObject) {
		if o.Polarity != PolarityNone {
			polarized = append(polarized, o)
		}
	})
	for i := 0; i < len(polarized); i++ {
		for j := i + 1; j < len(polarized); j++ {
			a, b := polarized[i], polarized[j]
			r := b.Pos.Sub(a.Pos)
			distSq := r.MagnitudeSquared()
			if distSq < 1e-6 {
				continue
			}
			mag := clampFloat64(magnetForce*0.01/distSq, 0, maxVortexForce)
			if a.Polarity == b.Polarity {
				mag = -mag
			}
			dir := r.Normalize()
			a.Vel = a.Vel.Add(dir.Scale(mag * dt * a.invMass))
			b.Vel = b.Vel.Sub(dir.Scale(mag * dt * b.invMass))
		}
	}
}

func (w *World) advanceEmitters(dt float64) {
	for i := range w.scene.emitters {
		e := &w.scene.emitters[i]
		e.sinceSpawn += dt
		interval := 1.0 / e.SpawnRateHz
		// The accumulator is a float sum of tick deltas; without the
		// epsilon, n ticks summing to one interval can land a hair
		// short and skip a spawn.
		for e.sinceSpawn >= interval-1e-9 {
			e.sinceSpawn -= interval
			w.spawnObject(ObjectDesc{
				Kind:     e.Shape,
				Pos:      e.Pos,
				Vel:      e.InitialVel,
				Size:     spawnSize(e.Shape, e.Radius),
				Mass:     e.Mass,
				Polarity: e.Polarity,
				Material: e.MaterialTag,
			})
		}
	}
}

func (w *World) handleCollisions(dt float64) {
	var objs []*PhysicsObject
	w.scene.forEachObject(func(_ Handle, o *PhysicsObject) {
		objs = append(objs, o)
	})

	thickness := float64(w.params.StrokeSize)

	// Dynamic vs static strokes.
	for _, o := range objs {
		w.scene.forEachStroke(func(_ Handle, st *Stroke) {
			m, ok := detectObjectStroke(o, st, thickness)
			if !ok {
				return
			}
			j := resolve(&m)
			if st.MaterialTag == MatConveyor {
				o.Vel = o.Vel.Add(st.AuxDir.Normalize().Scale(conveyorDrive * dt))
			}
			w.listener.surfaceContact(o, st, math.Abs(j), w.nowMs)
		})
	}

	// Dynamic vs dynamic. The object count is capped low enough that
	// the quadratic pass beats maintaining a broadphase.
	for i := 0; i < len(objs); i++ {
		for k := i + 1; k < len(objs); k++ {
			m, ok := detectObjectObject(objs[i], objs[k])
			if !ok {
				continue
			}
			j := resolve(&m)
			w.listener.objectContact(objs[i], objs[k], math.Abs(j), w.nowMs)
		}
	}
}

// cullOutOfBounds queues bodies that left the simulation bounds for
// destruction at the start of the next tick.
func (w *World) cullOutOfBounds() {
	w.scene.forEachObject(func(h Handle, o *PhysicsObject) {
		if o.Pos.X < worldMin-boundsMargin || o.Pos.X > worldMax+boundsMargin ||
			o.Pos.Y < worldMin-boundsMargin || o.Pos.Y > worldMax+boundsMargin ||
			!o.Pos.IsFinite() {
			w.pendingDestroy = append(w.pendingDestroy, h)
		}
	})
}

// publishCV writes the per-shape kinematic snapshot. For each shape
// kind the most recently active object wins: last sounded, falling back
// to most recently spawned.
func (w *World) publishCV() {
	cv := w.listener.cv
	if cv == nil {
		return
	}
	var best [NumShapeKinds]*PhysicsObject
	w.scene.forEachObject(func(_ Handle, o *PhysicsObject) {
		k := o.Kind
		if k < 0 || k >= NumShapeKinds {
			return
		}
		cur := best[k]
		if cur == nil {
			best[k] = o
			return
		}
		if o.lastSoundMs > cur.lastSoundMs ||
			(o.lastSoundMs == cur.lastSoundMs && o.spawnSeq > cur.spawnSeq) {
			best[k] = o
		}
	})
	for k := ShapeKind(0); k < NumShapeKinds; k++ {
		o := best[k]
		if o == nil {
			cv.clearKinematics(k)
			continue
		}
		px := float32(clampFloat64((o.Pos.X-worldMin)/(worldMax-worldMin), 0, 1))
		py := float32(clampFloat64((o.Pos.Y-worldMin)/(worldMax-worldMin), 0, 1))
		vx := float32(clampFloat64(o.Vel.X/cvMaxSpeed, -1, 1))
		vy := float32(clampFloat64(o.Vel.Y/cvMaxSpeed, -1, 1))
		cv.publishKinematics(k, px, py, vx, vy)
	}
	cv.markReady()
}
