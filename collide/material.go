package collide

import "fmt"

// Tag identifies a material in the database.
type Tag int

const (
	MatDefault Tag = iota
	MatMetal
	MatWood
	MatGlass
	MatRubber
	MatIce
	MatBouncy
	MatConveyor
	numMaterials
)

var tagNames = [numMaterials]string{
	MatDefault:  "default",
	MatMetal:    "metal",
	MatWood:     "wood",
	MatGlass:    "glass",
	MatRubber:   "rubber",
	MatIce:      "ice",
	MatBouncy:   "bouncy",
	MatConveyor: "conveyor",
}

func (t Tag) String() string {
	if t < 0 || t >= numMaterials {
		return "default"
	}
	return tagNames[t]
}

// ParseTag resolves a material name as used in scene files.
func ParseTag(name string) (Tag, error) {
	for t, n := range tagNames {
		if n == name {
			return Tag(t), nil
		}
	}
	return MatDefault, fmt.Errorf("unknown material %q", name)
}

// MaterialData holds the acoustic and physical properties of one material.
// Frequencies are oscillator ratios relative to BasePitchHz.
type MaterialData struct {
	Frequencies []float32
	DecayTime   float32 // seconds
	BasePitchHz float32
	Friction    float64
	Restitution float64
}

// The ratio sets approximate the first transverse modes of the struck
// body: near-harmonic for strings/plates under tension, stretched for
// stiff bars (free-bar ratios 1 : 2.76 : 5.40).
var materialTable = [numMaterials]MaterialData{
	MatDefault: {
		Frequencies: []float32{1.0, 2.0, 3.0},
		DecayTime:   0.5,
		BasePitchHz: 220.0,
		Friction:    0.3,
		Restitution: 0.4,
	},
	MatMetal: {
		Frequencies: []float32{1.0, 3.01, 6.17},
		DecayTime:   1.8,
		BasePitchHz: 440.0,
		Friction:    0.2,
		Restitution: 0.55,
	},
	MatWood: {
		Frequencies: []float32{1.0, 2.57, 4.52},
		DecayTime:   0.3,
		BasePitchHz: 180.0,
		Friction:    0.45,
		Restitution: 0.35,
	},
	MatGlass: {
		Frequencies: []float32{1.0, 2.32, 4.25},
		DecayTime:   1.1,
		BasePitchHz: 660.0,
		Friction:    0.1,
		Restitution: 0.6,
	},
	MatRubber: {
		Frequencies: []float32{1.0, 1.83, 2.76},
		DecayTime:   0.12,
		BasePitchHz: 90.0,
		Friction:    0.8,
		Restitution: 0.75,
	},
	MatIce: {
		Frequencies: []float32{1.0, 2.76, 5.40},
		DecayTime:   0.8,
		BasePitchHz: 520.0,
		Friction:    0.02,
		Restitution: 0.3,
	},
	MatBouncy: {
		Frequencies: []float32{1.0, 1.5, 2.0},
		DecayTime:   0.25,
		BasePitchHz: 150.0,
		Friction:    0.4,
		Restitution: 0.95,
	},
	MatConveyor: {
		Frequencies: []float32{1.0, 2.0, 2.99},
		DecayTime:   0.2,
		BasePitchHz: 120.0,
		Friction:    0.9,
		Restitution: 0.1,
	},
}

// LookupMaterial returns the MaterialData for a tag. Unknown tags fall
// back to the default material so every scene tag resolves to exactly
// one entry.
func LookupMaterial(t Tag) MaterialData {
	if t < 0 || t >= numMaterials {
		return materialTable[MatDefault]
	}
	return materialTable[t]
}

// MaterialTags lists every tag in the database, for table-driven tests
// and UI enumeration.
func MaterialTags() []Tag {
	tags := make([]Tag, numMaterials)
	for i := range tags {
		tags[i] = Tag(i)
	}
	return tags
}
