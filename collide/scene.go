package collide

import "sync/atomic"

// Handle is a generation-checked reference to a stroke or object slot.
// Handles are the only cross-context way to name an entity; raw
// pointers never leave the physics context.
type Handle struct {
	idx uint32
	gen uint32
}

// IsZero reports whether the handle was never assigned.
func (h Handle) IsZero() bool {
	return h.gen == 0
}

type strokeSlot struct {
	gen  uint32
	live bool
	s    Stroke
}

type objectSlot struct {
	gen  uint32
	live bool
	o    PhysicsObject
}

// SceneStore owns the authoritative scene state: strokes, dynamic
// objects, force fields, and emitters. Entities live in stable slot
// arrays indexed by Handle, so slots can be reused without dangling
// references.
type SceneStore struct {
	strokes  []strokeSlot
	objects  []objectSlot
	forces   []ForceObject
	emitters []EmitterObject

	// Written by the physics context, read by any context for
	// telemetry, so they cross the boundary as atomics.
	liveObjects atomic.Int32
	liveStrokes atomic.Int32

	spawnSeq uint64
}

func (s *SceneStore) addStroke(st Stroke) Handle {
	st.buildSegments()
	for i := range s.strokes {
		if !s.strokes[i].live {
			s.strokes[i].live = true
			s.strokes[i].gen++
			s.strokes[i].s = st
			s.liveStrokes.Add(1)
			return Handle{idx: uint32(i), gen: s.strokes[i].gen}
		}
	}
	s.strokes = append(s.strokes, strokeSlot{gen: 1, live: true, s: st})
	s.liveStrokes.Add(1)
	return Handle{idx: uint32(len(s.strokes) - 1), gen: 1}
}

func (s *SceneStore) removeStroke(h Handle) bool {
	if int(h.idx) >= len(s.strokes) {
		return false
	}
	slot := &s.strokes[h.idx]
	if !slot.live || slot.gen != h.gen {
		return false
	}
	slot.live = false
	slot.s = Stroke{}
	s.liveStrokes.Add(-1)
	return true
}

func (s *SceneStore) addObject(o PhysicsObject) (Handle, bool) {
	s.spawnSeq++
	o.spawnSeq = s.spawnSeq
	for i := range s.objects {
		if !s.objects[i].live {
			s.objects[i].live = true
			s.objects[i].gen++
			s.objects[i].o = o
			s.liveObjects.Add(1)
			return Handle{idx: uint32(i), gen: s.objects[i].gen}, true
		}
	}
	s.objects = append(s.objects, objectSlot{gen: 1, live: true, o: o})
	s.liveObjects.Add(1)
	return Handle{idx: uint32(len(s.objects) - 1), gen: 1}, true
}

func (s *SceneStore) removeObject(h Handle) bool {
	if int(h.idx) >= len(s.objects) {
		return false
	}
	slot := &s.objects[h.idx]
	if !slot.live || slot.gen != h.gen {
		return false
	}
	slot.live = false
	slot.o = PhysicsObject{}
	s.liveObjects.Add(-1)
	return true
}

// object resolves a handle; nil for stale or cleared handles.
func (s *SceneStore) object(h Handle) *PhysicsObject {
	if int(h.idx) >= len(s.objects) {
		return nil
	}
	slot := &s.objects[h.idx]
	if !slot.live || slot.gen != h.gen {
		return nil
	}
	return &slot.o
}

func (s *SceneStore) stroke(h Handle) *Stroke {
	if int(h.idx) >= len(s.strokes) {
		return nil
	}
	slot := &s.strokes[h.idx]
	if !slot.live || slot.gen != h.gen {
		return nil
	}
	return &slot.s
}

func (s *SceneStore) forEachObject(f func(h Handle, o *PhysicsObject)) {
	for i := range s.objects {
		if s.objects[i].live {
			f(Handle{idx: uint32(i), gen: s.objects[i].gen}, &s.objects[i].o)
		}
	}
}

func (s *SceneStore) forEachStroke(f func(h Handle, st *Stroke)) {
	for i := range s.strokes {
		if s.strokes[i].live {
			f(Handle{idx: uint32(i), gen: s.strokes[i].gen}, &s.strokes[i].s)
		}
	}
}

func (s *SceneStore) clear() {
	for i := range s.objects {
		if s.objects[i].live {
			s.objects[i].live = false
			s.objects[i].o = PhysicsObject{}
		}
	}
	for i := range s.strokes {
		if s.strokes[i].live {
			s.strokes[i].live = false
			s.strokes[i].s = Stroke{}
		}
	}
	s.forces = s.forces[:0]
	s.emitters = s.emitters[:0]
	s.liveObjects.Store(0)
	s.liveStrokes.Store(0)
}

// SceneDescription is the stable value-type export of a scene, suitable
// for an external persistence layer. Physics-body identity is not part
// of the description: re-import recreates bodies through the same spawn
// and stroke-creation queues live editing uses, so handles are not
// preserved across a round trip.
type SceneDescription struct {
	Strokes  []StrokeDesc
	Objects  []ObjectDesc
	Forces   []ForceDesc
	Emitters []EmitterDesc
}

// StrokeDesc describes one stroke by value.
type StrokeDesc struct {
	Points   []Vec2
	Material Tag
	AuxDir   Vec2
}

// ObjectDesc describes one dynamic object by value.
type ObjectDesc struct {
	Kind     ShapeKind
	Pos      Vec2
	Vel      Vec2
	Size     float64
	Mass     float64
	Polarity Polarity
	Material Tag
}

// ForceDesc describes one force field by value.
type ForceDesc struct {
	Pos  Vec2
	Kind ForceKind
}

// EmitterDesc describes one emitter by value.
type EmitterDesc struct {
	Pos         Vec2
	Shape       ShapeKind
	SpawnRateHz float64
	InitialVel  Vec2
	Size        float64
	Mass        float64
	Polarity    Polarity
	Material    Tag
}

// export snapshots the scene into a SceneDescription.
func (s *SceneStore) export() SceneDescription {
	var d SceneDescription
	s.forEachStroke(func(_ Handle, st *Stroke) {
		pts := append([]Vec2(nil), st.Points...)
		d.Strokes = append(d.Strokes, StrokeDesc{Points: pts, Material: st.MaterialTag, AuxDir: st.AuxDir})
	})
	s.forEachObject(func(_ Handle, o *PhysicsObject) {
		d.Objects = append(d.Objects, ObjectDesc{
			Kind:     o.Kind,
			Pos:      o.Pos,
			Vel:      o.Vel,
			Size:     spawnSize(o.Kind, o.Radius),
			Mass:     o.Mass,
			Polarity: o.Polarity,
			Material: o.MaterialTag,
		})
	})
	for _, f := range s.forces {
		d.Forces = append(d.Forces, ForceDesc{Pos: f.Pos, Kind: f.Kind})
	}
	for _, e := range s.emitters {
		d.Emitters = append(d.Emitters, EmitterDesc{
			Pos:         e.Pos,
			Shape:       e.Shape,
			SpawnRateHz: e.SpawnRateHz,
			InitialVel:  e.InitialVel,
			Size:        spawnSize(e.Shape, e.Radius),
			Mass:        e.Mass,
			Polarity:    e.Polarity,
			Material:    e.MaterialTag,
		})
	}
	return d
}
