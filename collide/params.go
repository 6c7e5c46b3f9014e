package collide

// Params holds the static configuration of the simulation.
type Params struct {
	Gravity        float32 // downward acceleration, world units / s^2
	WindX          float32 // constant horizontal acceleration
	VortexStrength float32
	VortexSpin     float32 // -1..1, sign sets rotation direction
	MagnetForce    float32
	MaxObjects     int
	StrokeSize     float32 // collision thickness of drawn strokes
	OutputGain     float32
	TickRateHz     float32
}

// NewDefaultParams creates default parameters.
func NewDefaultParams() *Params {
	return &Params{
		Gravity:        0.5,
		WindX:          0.0,
		VortexStrength: 0.4,
		VortexSpin:     1.0,
		MagnetForce:    0.5,
		MaxObjects:     50,
		StrokeSize:     0.008,
		OutputGain:     1.0,
		TickRateHz:     60.0,
	}
}

// ModParams mirrors the CV-modulatable parameters as atomics. The
// renderer (audio context) writes them, the physics context reads them
// at the top of every tick.
type ModParams struct {
	Gravity        atomicFloat32
	WindX          atomicFloat32
	VortexStrength atomicFloat32
	VortexSpin     atomicFloat32
	MagnetForce    atomicFloat32
}

func newModParams(p *Params) *ModParams {
	m := &ModParams{}
	m.Gravity.Store(p.Gravity)
	m.WindX.Store(p.WindX)
	m.VortexStrength.Store(p.VortexStrength)
	m.VortexSpin.Store(p.VortexSpin)
	m.MagnetForce.Store(p.MagnetForce)
	return m
}
