package collide

import (
	"math"
	"testing"
)

func circleAt(x, y, r float64) *PhysicsObject {
	return &PhysicsObject{
		Kind:     ShapeCircle,
		Pos:      Vec2{X: x, Y: y},
		Radius:   r,
		Mass:     1,
		invMass:  1,
		Material: LookupMaterial(MatDefault),
	}
}

func squareAt(x, y, r float64) *PhysicsObject {
	o := circleAt(x, y, r)
	o.Kind = ShapeSquare
	return o
}

func TestCircleCircleDetection(t *testing.T) {
	a := circleAt(0.50, 0.5, 0.02)
	b := circleAt(0.53, 0.5, 0.02)
	m, ok := detectObjectObject(a, b)
	if !ok {
		t.Fatalf("overlapping circles not detected")
	}
	if m.normal.X <= 0 {
		t.Fatalf("normal %+v does not point a->b", m.normal)
	}
	if m.penetration <= 0 || m.penetration > 0.04 {
		t.Fatalf("penetration %f", m.penetration)
	}

	far := circleAt(0.60, 0.5, 0.02)
	if _, ok := detectObjectObject(a, far); ok {
		t.Fatalf("separated circles detected")
	}
}

func TestCoincidentCirclesGetFallbackNormal(t *testing.T) {
	a := circleAt(0.5, 0.5, 0.02)
	b := circleAt(0.5, 0.5, 0.02)
	m, ok := detectObjectObject(a, b)
	if !ok {
		t.Fatalf("coincident circles not detected")
	}
	if !m.normal.IsFinite() || m.normal.Magnitude() == 0 {
		t.Fatalf("degenerate normal %+v", m.normal)
	}
}

func TestBoxBoxPicksShallowestAxis(t *testing.T) {
	a := squareAt(0.50, 0.50, 0.02)
	b := squareAt(0.52, 0.505, 0.02)
	m, ok := detectObjectObject(a, b)
	if !ok {
		t.Fatalf("overlapping boxes not detected")
	}
	if m.normal.X != 1 || m.normal.Y != 0 {
		t.Fatalf("normal %+v, want +X for mostly-horizontal overlap", m.normal)
	}
}

func TestCircleBoxMixedPair(t *testing.T) {
	c := circleAt(0.50, 0.50, 0.02)
	s := squareAt(0.53, 0.50, 0.02)
	m, ok := detectObjectObject(c, s)
	if !ok {
		t.Fatalf("circle-box overlap not detected")
	}
	if m.a != c || m.b != s {
		t.Fatalf("manifold order not preserved")
	}

	// Symmetric call with the box first flips the normal, same contact.
	m2, ok := detectObjectObject(s, c)
	if !ok {
		t.Fatalf("box-circle overlap not detected")
	}
	if m2.normal.X*m.normal.X > 0 {
		t.Fatalf("normals not mirrored: %+v vs %+v", m.normal, m2.normal)
	}
}

func TestStrokeDetectionFindsDeepestSegment(t *testing.T) {
	s := &Stroke{Points: []Vec2{{X: 0.1, Y: 0.5}, {X: 0.5, Y: 0.5}, {X: 0.9, Y: 0.6}}}
	s.buildSegments()

	o := circleAt(0.3, 0.495, 0.02)
	m, ok := detectObjectStroke(o, s, 0.008)
	if !ok {
		t.Fatalf("contact with stroke not detected")
	}
	if m.normal.Y <= 0 {
		t.Fatalf("normal %+v does not point from object toward surface", m.normal)
	}

	high := circleAt(0.3, 0.3, 0.02)
	if _, ok := detectObjectStroke(high, s, 0.008); ok {
		t.Fatalf("distant object detected against stroke")
	}
}

func TestResolveReflectsVelocity(t *testing.T) {
	o := circleAt(0.5, 0.49, 0.02)
	o.Vel = Vec2{Y: 1.0}
	s := &Stroke{Points: []Vec2{{X: 0.1, Y: 0.5}, {X: 0.9, Y: 0.5}}, MaterialTag: MatBouncy}
	s.buildSegments()

	m, ok := detectObjectStroke(o, s, 0.008)
	if !ok {
		t.Fatalf("no contact")
	}
	j := resolve(&m)
	if j <= 0 {
		t.Fatalf("impulse %f, want positive for approaching contact", j)
	}
	if o.Vel.Y >= 0 {
		t.Fatalf("velocity %+v not reflected off surface", o.Vel)
	}
}

func TestResolveIgnoresSeparatingContact(t *testing.T) {
	a := circleAt(0.50, 0.5, 0.02)
	b := circleAt(0.53, 0.5, 0.02)
	a.Vel = Vec2{X: -1}
	b.Vel = Vec2{X: 1}
	m, ok := detectObjectObject(a, b)
	if !ok {
		t.Fatalf("no contact")
	}
	if j := resolve(&m); j != 0 {
		t.Fatalf("impulse %f on separating pair, want 0", j)
	}
}

func TestRestitutionTakesSofterMaterial(t *testing.T) {
	bouncy := circleAt(0.50, 0.5, 0.02)
	bouncy.Material = LookupMaterial(MatBouncy)
	soft := circleAt(0.53, 0.5, 0.02)
	soft.Material = LookupMaterial(MatIce)

	m, _ := detectObjectObject(bouncy, soft)
	want := math.Min(bouncy.Material.Restitution, soft.Material.Restitution)
	if m.restitution != want {
		t.Fatalf("restitution %f, want min %f", m.restitution, want)
	}
	wantFriction := math.Sqrt(bouncy.Material.Friction * soft.Material.Friction)
	if math.Abs(m.friction-wantFriction) > 1e-12 {
		t.Fatalf("friction %f, want %f", m.friction, wantFriction)
	}
}

func TestPositionalCorrectionSeparatesOverlap(t *testing.T) {
	a := circleAt(0.500, 0.5, 0.02)
	b := circleAt(0.505, 0.5, 0.02)
	before := a.Pos.Distance(b.Pos)
	m, _ := detectObjectObject(a, b)
	resolve(&m)
	if after := a.Pos.Distance(b.Pos); after <= before {
		t.Fatalf("overlap not reduced: %f -> %f", before, after)
	}
}
