package collide

import "testing"

func TestLookupMaterialUnknownFallsBack(t *testing.T) {
	def := LookupMaterial(MatDefault)
	for _, bad := range []Tag{-1, numMaterials, 999} {
		got := LookupMaterial(bad)
		if got.BasePitchHz != def.BasePitchHz || got.DecayTime != def.DecayTime {
			t.Fatalf("LookupMaterial(%d) did not fall back to default", bad)
		}
	}
}

func TestParseTagRoundTrip(t *testing.T) {
	for _, tag := range MaterialTags() {
		got, err := ParseTag(tag.String())
		if err != nil {
			t.Fatalf("ParseTag(%q): %v", tag.String(), err)
		}
		if got != tag {
			t.Fatalf("ParseTag(%q) = %v, want %v", tag.String(), got, tag)
		}
	}
	if _, err := ParseTag("granite"); err == nil {
		t.Fatalf("ParseTag accepted unknown material")
	}
}

func TestMaterialTableIsWellFormed(t *testing.T) {
	for _, tag := range MaterialTags() {
		m := LookupMaterial(tag)
		if len(m.Frequencies) != 3 {
			t.Fatalf("%v: %d partial ratios, want 3", tag, len(m.Frequencies))
		}
		if m.Frequencies[0] != 1.0 {
			t.Fatalf("%v: first ratio %f, want 1.0", tag, m.Frequencies[0])
		}
		for i := 1; i < len(m.Frequencies); i++ {
			if m.Frequencies[i] <= m.Frequencies[i-1] {
				t.Fatalf("%v: ratios not ascending at %d: %f <= %f",
					tag, i, m.Frequencies[i], m.Frequencies[i-1])
			}
		}
		if m.DecayTime <= 0 {
			t.Fatalf("%v: decay time %f", tag, m.DecayTime)
		}
		if m.BasePitchHz <= 0 {
			t.Fatalf("%v: base pitch %f", tag, m.BasePitchHz)
		}
		if m.Restitution < 0 || m.Restitution > 1 {
			t.Fatalf("%v: restitution %f out of [0,1]", tag, m.Restitution)
		}
		if m.Friction < 0 {
			t.Fatalf("%v: negative friction %f", tag, m.Friction)
		}
	}
}

func TestParseShapeAndPolarity(t *testing.T) {
	for k := ShapeKind(0); k < NumShapeKinds; k++ {
		got, err := ParseShape(k.String())
		if err != nil || got != k {
			t.Fatalf("ParseShape(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseShape("hexagon"); err == nil {
		t.Fatalf("ParseShape accepted unknown shape")
	}

	for _, p := range []Polarity{PolarityNone, PolarityNorth, PolaritySouth} {
		got, err := ParsePolarity(p.String())
		if err != nil || got != p {
			t.Fatalf("ParsePolarity(%q) = %v, %v", p.String(), got, err)
		}
	}
	if got, err := ParsePolarity(""); err != nil || got != PolarityNone {
		t.Fatalf("ParsePolarity(\"\") = %v, %v", got, err)
	}
}
