package collide

import "math"

// manifold describes one contact found during a tick. For surface
// contacts b is nil and stroke/surfMaterial carry the static side.
type manifold struct {
	a, b        *PhysicsObject
	stroke      *Stroke
	normal      Vec2 // points from a toward b (or out of the surface)
	penetration float64
	contact     Vec2
	restitution float64
	friction    float64
}

// detectObjectObject tests two dynamic bodies. Circles and triangles
// collide on their bounding circle; square pairs use AABB overlap and
// mixed pairs use circle-vs-box closest point.
func detectObjectObject(a, b *PhysicsObject) (manifold, bool) {
	if a.Kind == ShapeSquare && b.Kind == ShapeSquare {
		return detectBoxBox(a, b)
	}
	if a.Kind == ShapeSquare {
		m, ok := detectCircleBox(b, a)
		if ok {
			m.a, m.b = a, b
			m.normal = m.normal.Scale(-1)
		}
		return m, ok
	}
	if b.Kind == ShapeSquare {
		return detectCircleBox(a, b)
	}
	return detectCircleCircle(a, b)
}

func pairMaterials(a, b *PhysicsObject) (restitution, friction float64) {
	restitution = math.Min(a.Material.Restitution, b.Material.Restitution)
	friction = math.Sqrt(a.Material.Friction * b.Material.Friction)
	return
}

func detectCircleCircle(a, b *PhysicsObject) (manifold, bool) {
	delta := b.Pos.Sub(a.Pos)
	distSq := delta.MagnitudeSquared()
	total := a.Radius + b.Radius
	if distSq >= total*total {
		return manifold{}, false
	}

	dist := math.Sqrt(distSq)
	normal := Vec2{X: 1, Y: 0}
	if dist > 0 {
		normal = delta.Scale(1.0 / dist)
	}
	m := manifold{
		a:           a,
		b:           b,
		normal:      normal,
		penetration: total - dist,
		contact:     a.Pos.Add(normal.Scale(a.Radius - (total-dist)*0.5)),
	}
	m.restitution, m.friction = pairMaterials(a, b)
	return m, true
}

func detectBoxBox(a, b *PhysicsObject) (manifold, bool) {
	ha := a.Radius / math.Sqrt2
	hb := b.Radius / math.Sqrt2
	overlapX := math.Min(a.Pos.X+ha, b.Pos.X+hb) - math.Max(a.Pos.X-ha, b.Pos.X-hb)
	overlapY := math.Min(a.Pos.Y+ha, b.Pos.Y+hb) - math.Max(a.Pos.Y-ha, b.Pos.Y-hb)
	if overlapX <= 0 || overlapY <= 0 {
		return manifold{}, false
	}

	var normal Vec2
	var pen float64
	if overlapX < overlapY {
		pen = overlapX
		if a.Pos.X < b.Pos.X {
			normal = Vec2{X: 1, Y: 0}
		} else {
			normal = Vec2{X: -1, Y: 0}
		}
	} else {
		pen = overlapY
		if a.Pos.Y < b.Pos.Y {
			normal = Vec2{X: 0, Y: 1}
		} else {
			normal = Vec2{X: 0, Y: -1}
		}
	}
	m := manifold{
		a:           a,
		b:           b,
		normal:      normal,
		penetration: pen,
		contact:     a.Pos.Add(b.Pos).Scale(0.5),
	}
	m.restitution, m.friction = pairMaterials(a, b)
	return m, true
}

// detectCircleBox: circle is a, box is b.
func detectCircleBox(circle, box *PhysicsObject) (manifold, bool) {
	h := box.Radius / math.Sqrt2
	closest := Vec2{
		X: clampFloat64(circle.Pos.X, box.Pos.X-h, box.Pos.X+h),
		Y: clampFloat64(circle.Pos.Y, box.Pos.Y-h, box.Pos.Y+h),
	}
	delta := circle.Pos.Sub(closest)
	distSq := delta.MagnitudeSquared()
	if distSq >= circle.Radius*circle.Radius {
		return manifold{}, false
	}

	dist := math.Sqrt(distSq)
	normal := Vec2{X: 0, Y: -1}
	pen := circle.Radius - dist
	if dist > 0 {
		normal = delta.Scale(-1.0 / dist) // from circle toward box
	} else {
		pen = circle.Radius
	}
	m := manifold{
		a:           circle,
		b:           box,
		normal:      normal,
		penetration: pen,
		contact:     closest,
	}
	m.restitution, m.friction = pairMaterials(circle, box)
	return m, true
}

// detectObjectStroke tests a dynamic body against every segment of a
// stroke, on the body's bounding circle inflated by the stroke
// thickness. Returns the deepest contact only.
func detectObjectStroke(o *PhysicsObject, s *Stroke, thickness float64) (manifold, bool) {
	best := manifold{}
	found := false
	reach := o.Radius + thickness
	for i := range s.segs {
		seg := &s.segs[i]
		closest := seg.closestTo(o.Pos)
		delta := o.Pos.Sub(closest)
		distSq := delta.MagnitudeSquared()
		if distSq >= reach*reach {
			continue
		}
		dist := math.Sqrt(distSq)
		normal := seg.normal
		if dist > 0 {
			normal = delta.Scale(1.0 / dist)
		}
		pen := reach - dist
		if !found || pen > best.penetration {
			surf := LookupMaterial(s.MaterialTag)
			best = manifold{
				a:           o,
				stroke:      s,
				normal:      normal.Scale(-1), // from object toward surface
				penetration: pen,
				contact:     closest,
				restitution: math.Min(o.Material.Restitution, surf.Restitution),
				friction:    math.Sqrt(o.Material.Friction * surf.Friction),
			}
			found = true
		}
	}
	return best, found
}

// resolve applies an impulse-based response and positional correction,
// returning the normal impulse magnitude (the trigger strength).
// Surface contacts treat the static side as infinite mass.
func resolve(m *manifold) float64 {
	a := m.a
	var bVel Vec2
	invMassSum := a.invMass
	if m.b != nil {
		bVel = m.b.Vel
		invMassSum += m.b.invMass
	}
	if invMassSum <= 0 {
		return 0
	}

	rel := bVel.Sub(a.Vel)
	velAlongNormal := rel.Dot(m.normal)
	if velAlongNormal > 0 {
		return 0
	}

	j := -(1 + m.restitution) * velAlongNormal / invMassSum
	impulse := m.normal.Scale(j)
	a.applyImpulse(impulse.Scale(-1), m.contact)
	if m.b != nil {
		m.b.applyImpulse(impulse, m.contact)
	}

	applyFriction(m, j, invMassSum)
	correctPositions(m, invMassSum)
	return j
}

func applyFriction(m *manifold, normalImpulse, invMassSum float64) {
	a := m.a
	var bVel Vec2
	if m.b != nil {
		bVel = m.b.Vel
	}
	rel := bVel.Sub(a.Vel)
	tangent := rel.Sub(m.normal.Scale(rel.Dot(m.normal)))
	tMagSq := tangent.MagnitudeSquared()
	if tMagSq < 1e-12 {
		return
	}
	tangent = tangent.Scale(1.0 / math.Sqrt(tMagSq))

	jt := -rel.Dot(tangent) / invMassSum
	limit := math.Abs(normalImpulse) * m.friction

	var fi Vec2
	if math.Abs(jt) < limit {
		fi = tangent.Scale(jt)
	} else {
		fi = tangent.Scale(-limit * 0.8)
	}
	a.applyImpulse(fi.Scale(-1), m.contact)
	if m.b != nil {
		m.b.applyImpulse(fi, m.contact)
	}
}

func correctPositions(m *manifold, invMassSum float64) {
	const percent = 0.4
	const slop = 0.0005
	if m.penetration <= slop {
		return
	}
	correction := (m.penetration - slop) / invMassSum * percent
	cv := m.normal.Scale(correction)
	m.a.Pos = m.a.Pos.Sub(cv.Scale(m.a.invMass))
	if m.b != nil {
		m.b.Pos = m.b.Pos.Add(cv.Scale(m.b.invMass))
	}
}
