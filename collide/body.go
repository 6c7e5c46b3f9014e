package collide

import (
	"fmt"
	"math"
)

// ShapeKind enumerates the spawnable dynamic shapes.
type ShapeKind int

const (
	ShapeCircle ShapeKind = iota
	ShapeSquare
	ShapeTriangle
	NumShapeKinds
)

var shapeNames = [NumShapeKinds]string{"circle", "square", "triangle"}

func (k ShapeKind) String() string {
	if k < 0 || k >= NumShapeKinds {
		return "circle"
	}
	return shapeNames[k]
}

// ParseShape resolves a shape name as used in scene files.
func ParseShape(name string) (ShapeKind, error) {
	for k, n := range shapeNames {
		if n == name {
			return ShapeKind(k), nil
		}
	}
	return ShapeCircle, fmt.Errorf("unknown shape %q", name)
}

// Polarity marks an object for the magnet force field.
type Polarity int

const (
	PolarityNone Polarity = iota
	PolarityNorth
	PolaritySouth
)

var polarityNames = [...]string{"none", "north", "south"}

func (p Polarity) String() string {
	if p < 0 || int(p) >= len(polarityNames) {
		return "none"
	}
	return polarityNames[p]
}

// ParsePolarity resolves a polarity name as used in scene files.
func ParsePolarity(name string) (Polarity, error) {
	if name == "" {
		return PolarityNone, nil
	}
	for p, n := range polarityNames {
		if n == name {
			return Polarity(p), nil
		}
	}
	return PolarityNone, fmt.Errorf("unknown polarity %q", name)
}

const minMass = 0.05

// PhysicsObject is one dynamic body. Owned by the physics context;
// other contexts refer to it only through a Handle.
type PhysicsObject struct {
	Kind        ShapeKind
	Pos         Vec2
	Vel         Vec2
	Angle       float64
	AngVel      float64
	Radius      float64 // bounding radius; squares also use it as half extent
	Mass        float64
	Polarity    Polarity
	MaterialTag Tag
	Material    MaterialData

	invMass     float64
	lastSoundMs float64
	spawnSeq    uint64
}

// applyImpulse changes velocity by an impulse at a contact point,
// with a small angular contribution from the contact offset.
func (o *PhysicsObject) applyImpulse(impulse Vec2, contact Vec2) {
	o.Vel = o.Vel.Add(impulse.Scale(o.invMass))
	r := contact.Sub(o.Pos)
	o.AngVel += r.Cross(impulse) * o.invMass * 2.0
}

// Stroke is a user-drawn static surface: an ordered polyline tagged
// with a material. AuxDir is meaningful only for the conveyor material.
type Stroke struct {
	Points      []Vec2
	MaterialTag Tag
	AuxDir      Vec2

	segs []segment
}

type segment struct {
	a, b   Vec2
	tan    Vec2 // unit tangent a->b
	normal Vec2 // unit normal
	length float64
}

// buildSegments precomputes segment geometry. Degenerate spans
// (zero length, non-finite points) are skipped.
func (s *Stroke) buildSegments() {
	s.segs = s.segs[:0]
	for i := 0; i+1 < len(s.Points); i++ {
		a, b := s.Points[i], s.Points[i+1]
		if !a.IsFinite() || !b.IsFinite() {
			continue
		}
		d := b.Sub(a)
		l := d.Magnitude()
		if l < 1e-9 {
			continue
		}
		t := d.Scale(1.0 / l)
		s.segs = append(s.segs, segment{a: a, b: b, tan: t, normal: t.Perp(), length: l})
	}
}

// closestOnSegment returns the closest point on seg to p.
func (seg *segment) closestTo(p Vec2) Vec2 {
	t := p.Sub(seg.a).Dot(seg.tan)
	t = clampFloat64(t, 0, seg.length)
	return seg.a.Add(seg.tan.Scale(t))
}

// ForceObject is a static continuous force field.
type ForceObject struct {
	Pos  Vec2
	Kind ForceKind
}

// ForceKind enumerates force field types.
type ForceKind int

const (
	ForceVortex ForceKind = iota
)

// EmitterObject spawns objects periodically. Mutated only by the
// physics context (timer accumulation).
type EmitterObject struct {
	Pos         Vec2
	Shape       ShapeKind
	SpawnRateHz float64
	InitialVel  Vec2
	Radius      float64
	Mass        float64
	Polarity    Polarity
	MaterialTag Tag

	sinceSpawn float64
}

// validStrokePoints rejects degenerate stroke geometry before any body
// is created: fewer than two points, or non-finite coordinates.
func validStrokePoints(points []Vec2) bool {
	if len(points) < 2 {
		return false
	}
	for _, p := range points {
		if !p.IsFinite() {
			return false
		}
	}
	// At least one non-degenerate span.
	for i := 0; i+1 < len(points); i++ {
		if points[i+1].Sub(points[i]).MagnitudeSquared() > 1e-18 {
			return true
		}
	}
	return false
}

// boundingRadius maps a spawn size request to the collision radius for
// each shape kind. Squares and triangles collide on their circumscribed
// circle; the kind still selects material defaults and CV routing.
func boundingRadius(kind ShapeKind, size float64) float64 {
	if size <= 0 || math.IsNaN(size) {
		size = 0.02
	}
	switch kind {
	case ShapeSquare:
		return size * math.Sqrt2 * 0.5 * 1.2
	case ShapeTriangle:
		return size * 0.62
	default:
		return size * 0.5
	}
}

// spawnSize inverts boundingRadius so scene export reproduces the size
// a spawn request asked for.
func spawnSize(kind ShapeKind, radius float64) float64 {
	switch kind {
	case ShapeSquare:
		return radius / (math.Sqrt2 * 0.5 * 1.2)
	case ShapeTriangle:
		return radius / 0.62
	default:
		return radius * 2
	}
}
