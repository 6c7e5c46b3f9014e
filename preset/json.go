// Package preset persists scenes and simulation parameters as JSON.
package preset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cwbudde/algo-collide/collide"
)

// File is the JSON schema for scene presets. Parameter fields are
// pointers so a file only overrides what it names.
type File struct {
	Params   *ParamSettings   `json:"params,omitempty"`
	Strokes  []StrokeSetting  `json:"strokes,omitempty"`
	Objects  []ObjectSetting  `json:"objects,omitempty"`
	Forces   []ForceSetting   `json:"forces,omitempty"`
	Emitters []EmitterSetting `json:"emitters,omitempty"`
}

// ParamSettings is a partial parameter override block.
type ParamSettings struct {
	Gravity        *float32 `json:"gravity"`
	WindX          *float32 `json:"wind_x"`
	VortexStrength *float32 `json:"vortex_strength"`
	VortexSpin     *float32 `json:"vortex_spin"`
	MagnetForce    *float32 `json:"magnet_force"`
	MaxObjects     *int     `json:"max_objects"`
	StrokeSize     *float32 `json:"stroke_size"`
	OutputGain     *float32 `json:"output_gain"`
	TickRateHz     *float32 `json:"tick_rate_hz"`
}

// Point is one polyline vertex in world coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// StrokeSetting describes one drawn surface.
type StrokeSetting struct {
	Points   []Point `json:"points"`
	Material string  `json:"material"`
	AuxDirX  float64 `json:"aux_dir_x,omitempty"`
	AuxDirY  float64 `json:"aux_dir_y,omitempty"`
}

// ObjectSetting describes one dynamic object.
type ObjectSetting struct {
	Shape    string  `json:"shape"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	VelX     float64 `json:"vel_x,omitempty"`
	VelY     float64 `json:"vel_y,omitempty"`
	Size     float64 `json:"size"`
	Mass     float64 `json:"mass"`
	Polarity string  `json:"polarity,omitempty"`
	Material string  `json:"material"`
}

// ForceSetting describes one force field.
type ForceSetting struct {
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// EmitterSetting describes one periodic spawner.
type EmitterSetting struct {
	Shape       string  `json:"shape"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	SpawnRateHz float64 `json:"spawn_rate_hz"`
	VelX        float64 `json:"vel_x,omitempty"`
	VelY        float64 `json:"vel_y,omitempty"`
	Size        float64 `json:"size"`
	Mass        float64 `json:"mass"`
	Polarity    string  `json:"polarity,omitempty"`
	Material    string  `json:"material"`
}

// LoadJSON reads and validates a scene file.
func LoadJSON(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	if err := Validate(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// SaveJSON writes a scene file with stable indentation.
func SaveJSON(path string, f *File) error {
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// Validate checks every entry before any of it reaches the world.
func Validate(f *File) error {
	if f == nil {
		return nil
	}
	if p := f.Params; p != nil {
		if p.MaxObjects != nil && *p.MaxObjects < 1 {
			return fmt.Errorf("params.max_objects must be >= 1")
		}
		if p.StrokeSize != nil && *p.StrokeSize <= 0 {
			return fmt.Errorf("params.stroke_size must be > 0")
		}
		if p.OutputGain != nil && *p.OutputGain <= 0 {
			return fmt.Errorf("params.output_gain must be > 0")
		}
		if p.TickRateHz != nil && *p.TickRateHz <= 0 {
			return fmt.Errorf("params.tick_rate_hz must be > 0")
		}
	}
	for i, s := range f.Strokes {
		if len(s.Points) < 2 {
			return fmt.Errorf("strokes[%d]: need at least 2 points", i)
		}
		if _, err := collide.ParseTag(s.Material); err != nil {
			return fmt.Errorf("strokes[%d]: %w", i, err)
		}
	}
	for i, o := range f.Objects {
		if _, err := collide.ParseShape(o.Shape); err != nil {
			return fmt.Errorf("objects[%d]: %w", i, err)
		}
		if _, err := collide.ParseTag(o.Material); err != nil {
			return fmt.Errorf("objects[%d]: %w", i, err)
		}
		if _, err := collide.ParsePolarity(o.Polarity); err != nil {
			return fmt.Errorf("objects[%d]: %w", i, err)
		}
		if o.Size <= 0 {
			return fmt.Errorf("objects[%d]: size must be > 0", i)
		}
	}
	for i, fo := range f.Forces {
		if fo.Kind != "vortex" {
			return fmt.Errorf("forces[%d]: unknown kind %q", i, fo.Kind)
		}
	}
	for i, e := range f.Emitters {
		if _, err := collide.ParseShape(e.Shape); err != nil {
			return fmt.Errorf("emitters[%d]: %w", i, err)
		}
		if _, err := collide.ParseTag(e.Material); err != nil {
			return fmt.Errorf("emitters[%d]: %w", i, err)
		}
		if _, err := collide.ParsePolarity(e.Polarity); err != nil {
			return fmt.Errorf("emitters[%d]: %w", i, err)
		}
		if e.SpawnRateHz <= 0 {
			return fmt.Errorf("emitters[%d]: spawn_rate_hz must be > 0", i)
		}
	}
	return nil
}

// ApplyParams applies the parameter override block onto existing params.
func ApplyParams(dst *collide.Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination params")
	}
	if f == nil || f.Params == nil {
		return nil
	}
	p := f.Params
	if p.Gravity != nil {
		dst.Gravity = *p.Gravity
	}
	if p.WindX != nil {
		dst.WindX = *p.WindX
	}
	if p.VortexStrength != nil {
		dst.VortexStrength = *p.VortexStrength
	}
	if p.VortexSpin != nil {
		dst.VortexSpin = *p.VortexSpin
	}
	if p.MagnetForce != nil {
		dst.MagnetForce = *p.MagnetForce
	}
	if p.MaxObjects != nil {
		dst.MaxObjects = *p.MaxObjects
	}
	if p.StrokeSize != nil {
		dst.StrokeSize = *p.StrokeSize
	}
	if p.OutputGain != nil {
		dst.OutputGain = *p.OutputGain
	}
	if p.TickRateHz != nil {
		dst.TickRateHz = *p.TickRateHz
	}
	return nil
}

// Spawn enqueues every scene entity through the world's editing API,
// the same path live editing uses. Entities beyond the command queue
// capacity are dropped; the returned count is how many were accepted.
// Interleave Spawn with physics ticks when loading large scenes.
func Spawn(w *collide.World, f *File) int {
	if w == nil || f == nil {
		return 0
	}
	accepted := 0
	for _, s := range f.Strokes {
		mat, _ := collide.ParseTag(s.Material)
		pts := make([]collide.Vec2, len(s.Points))
		for i, p := range s.Points {
			pts[i] = collide.Vec2{X: p.X, Y: p.Y}
		}
		if w.DrawStroke(collide.StrokeDesc{
			Points:   pts,
			Material: mat,
			AuxDir:   collide.Vec2{X: s.AuxDirX, Y: s.AuxDirY},
		}) {
			accepted++
		}
	}
	for _, o := range f.Objects {
		kind, _ := collide.ParseShape(o.Shape)
		mat, _ := collide.ParseTag(o.Material)
		pol, _ := collide.ParsePolarity(o.Polarity)
		if w.SpawnObject(collide.ObjectDesc{
			Kind:     kind,
			Pos:      collide.Vec2{X: o.X, Y: o.Y},
			Vel:      collide.Vec2{X: o.VelX, Y: o.VelY},
			Size:     o.Size,
			Mass:     o.Mass,
			Polarity: pol,
			Material: mat,
		}) {
			accepted++
		}
	}
	for _, fo := range f.Forces {
		if w.AddVortex(collide.Vec2{X: fo.X, Y: fo.Y}) {
			accepted++
		}
	}
	for _, e := range f.Emitters {
		kind, _ := collide.ParseShape(e.Shape)
		mat, _ := collide.ParseTag(e.Material)
		pol, _ := collide.ParsePolarity(e.Polarity)
		if w.AddEmitter(collide.EmitterDesc{
			Pos:         collide.Vec2{X: e.X, Y: e.Y},
			Shape:       kind,
			SpawnRateHz: e.SpawnRateHz,
			InitialVel:  collide.Vec2{X: e.VelX, Y: e.VelY},
			Size:        e.Size,
			Mass:        e.Mass,
			Polarity:    pol,
			Material:    mat,
		}) {
			accepted++
		}
	}
	return accepted
}

// FromScene converts an exported scene back into the file schema.
func FromScene(d collide.SceneDescription) *File {
	f := &File{}
	for _, s := range d.Strokes {
		pts := make([]Point, len(s.Points))
		for i, p := range s.Points {
			pts[i] = Point{X: p.X, Y: p.Y}
		}
		f.Strokes = append(f.Strokes, StrokeSetting{
			Points:   pts,
			Material: s.Material.String(),
			AuxDirX:  s.AuxDir.X,
			AuxDirY:  s.AuxDir.Y,
		})
	}
	for _, o := range d.Objects {
		e := ObjectSetting{
			Shape:    o.Kind.String(),
			X:        o.Pos.X,
			Y:        o.Pos.Y,
			VelX:     o.Vel.X,
			VelY:     o.Vel.Y,
			Size:     o.Size,
			Mass:     o.Mass,
			Material: o.Material.String(),
		}
		if o.Polarity != collide.PolarityNone {
			e.Polarity = o.Polarity.String()
		}
		f.Objects = append(f.Objects, e)
	}
	for _, fo := range d.Forces {
		f.Forces = append(f.Forces, ForceSetting{Kind: "vortex", X: fo.Pos.X, Y: fo.Pos.Y})
	}
	for _, em := range d.Emitters {
		e := EmitterSetting{
			Shape:       em.Shape.String(),
			X:           em.Pos.X,
			Y:           em.Pos.Y,
			SpawnRateHz: em.SpawnRateHz,
			VelX:        em.InitialVel.X,
			VelY:        em.InitialVel.Y,
			Size:        em.Size,
			Mass:        em.Mass,
			Material:    em.Material.String(),
		}
		if em.Polarity != collide.PolarityNone {
			e.Polarity = em.Polarity.String()
		}
		f.Emitters = append(f.Emitters, e)
	}
	return f
}
