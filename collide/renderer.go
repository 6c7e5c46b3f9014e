package collide

// ModTarget names a CV-modulatable physics parameter.
type ModTarget int

const (
	ModGravity ModTarget = iota
	ModWindX
	ModVortexStrength
	ModVortexSpin
	ModMagnetForce
	NumModTargets
)

// KinematicsBlock carries one shape kind's CV channels for a block.
type KinematicsBlock struct {
	PosX, PosY []float32
	VelX, VelY []float32
}

// OutputBlock is the per-block output surface handed to the host:
// stereo audio, four trigger gates, and per-shape kinematic CV.
type OutputBlock struct {
	Audio  []float32 // stereo interleaved, 2*frames
	Gates  [NumGates][]float32
	Shapes [NumShapeKinds]KinematicsBlock
}

// NewOutputBlock allocates all channels for the given block size.
func NewOutputBlock(frames int) *OutputBlock {
	b := &OutputBlock{Audio: make([]float32, frames*2)}
	for i := range b.Gates {
		b.Gates[i] = make([]float32, frames)
	}
	for i := range b.Shapes {
		b.Shapes[i] = KinematicsBlock{
			PosX: make([]float32, frames),
			PosY: make([]float32, frames),
			VelX: make([]float32, frames),
			VelY: make([]float32, frames),
		}
	}
	return b
}

// Frames reports the block size this output was allocated for.
func (b *OutputBlock) Frames() int {
	return len(b.Audio) / 2
}

func (b *OutputBlock) zero() {
	for i := range b.Audio {
		b.Audio[i] = 0
	}
	for g := range b.Gates {
		for i := range b.Gates[g] {
			b.Gates[g][i] = 0
		}
	}
	for s := range b.Shapes {
		kb := &b.Shapes[s]
		for i := range kb.PosX {
			kb.PosX[i] = 0
			kb.PosY[i] = 0
			kb.VelX[i] = 0
			kb.VelY[i] = 0
		}
	}
}

// Telemetry is the coarse state read by the (external) UI layer.
type Telemetry struct {
	Ticks       uint64
	ObjectCount int
	StrokeCount int
}

// Renderer is the audio-context entry point. It mixes the voice pool,
// copies the latest CV/gate snapshot into the output channels, and
// forwards modulation inputs to the physics parameter atomics. The
// process path never allocates, locks, or blocks.
type Renderer struct {
	sampleRate int
	blockSize  int
	params     *Params

	synth *ModalSynth
	cv    *CVBank
	world *World
	clock *Clock

	routing [NumModTargets]int
	mix     []float32
}

// NewRenderer assembles the full subsystem: voice pool, CV bank,
// physics world, and tick clock.
func NewRenderer(sampleRate, blockSize int, params *Params) *Renderer {
	if params == nil {
		params = NewDefaultParams()
	}
	synth := NewModalSynth(sampleRate, params.OutputGain)
	cv := NewCVBank(sampleRate)
	world := NewWorld(params, synth, cv)
	r := &Renderer{
		sampleRate: sampleRate,
		blockSize:  blockSize,
		params:     params,
		synth:      synth,
		cv:         cv,
		world:      world,
		clock:      NewClock(world, float64(params.TickRateHz)),
		mix:        make([]float32, blockSize*2),
	}
	for i := range r.routing {
		r.routing[i] = -1
	}
	return r
}

// World exposes the editing-context API.
func (r *Renderer) World() *World {
	return r.world
}

// Clock exposes the physics tick clock.
func (r *Renderer) Clock() *Clock {
	return r.clock
}

// Synth exposes the voice pool.
func (r *Renderer) Synth() *ModalSynth {
	return r.synth
}

// CV exposes the published snapshot bank.
func (r *Renderer) CV() *CVBank {
	return r.cv
}

// PrepareToPlay resets the voice pool, gate state, and scratch buffers
// for a new session. Must be called while the transport is stopped.
func (r *Renderer) PrepareToPlay(sampleRate, blockSize int) {
	r.sampleRate = sampleRate
	r.blockSize = blockSize
	r.synth.SetSampleRate(sampleRate)
	r.synth.Reset()
	r.cv.SetSampleRate(sampleRate)
	r.cv.resetGates()
	r.mix = make([]float32, blockSize*2)
}

// SetTransportPlaying follows the host transport: physics does not
// advance while the transport is stopped.
func (r *Renderer) SetTransportPlaying(playing bool) {
	r.clock.SetPlaying(playing)
}

// SetModRouting maps a modulation target to an input channel index;
// a negative index disconnects it.
func (r *Renderer) SetModRouting(t ModTarget, channel int) {
	if t < 0 || t >= NumModTargets {
		return
	}
	r.routing[t] = channel
}

// modRange maps a normalized 0..1 modulation value into the target's
// parameter range.
func modRange(t ModTarget, norm float32) float32 {
	norm = clampFloat32(norm, 0, 1)
	switch t {
	case ModGravity:
		return norm * 2.0
	case ModWindX:
		return norm*2.0 - 1.0
	case ModVortexStrength:
		return norm * 1.5
	case ModVortexSpin:
		return norm*2.0 - 1.0
	case ModMagnetForce:
		return norm * 2.0
	}
	return norm
}

func (r *Renderer) applyModulation(inputs [][]float32) {
	mod := r.world.Mod()
	for t := ModTarget(0); t < NumModTargets; t++ {
		ch := r.routing[t]
		if ch < 0 || ch >= len(inputs) || len(inputs[ch]) == 0 {
			continue
		}
		v := modRange(t, inputs[ch][len(inputs[ch])-1])
		switch t {
		case ModGravity:
			mod.Gravity.Store(v)
		case ModWindX:
			mod.WindX.Store(v)
		case ModVortexStrength:
			mod.VortexStrength.Store(v)
		case ModVortexSpin:
			mod.VortexSpin.Store(v)
		case ModMagnetForce:
			mod.MagnetForce.Store(v)
		}
	}
}

// ProcessBlock renders one audio block. Before the first physics tick
// has published a snapshot, every output channel stays neutral.
func (r *Renderer) ProcessBlock(inputs [][]float32, out *OutputBlock) {
	r.applyModulation(inputs)

	frames := out.Frames()
	if frames > len(r.mix)/2 {
		frames = len(r.mix) / 2
	}

	if !r.cv.Ready() {
		out.zero()
		return
	}

	r.synth.RenderInto(r.mix, frames)
	copy(out.Audio[:frames*2], r.mix[:frames*2])

	for i := 0; i < frames; i++ {
		for g := GateCategory(0); g < NumGates; g++ {
			out.Gates[g][i] = r.cv.gateSample(g)
		}
	}

	for k := ShapeKind(0); k < NumShapeKinds; k++ {
		px, py, vx, vy := r.cv.Kinematics(k)
		kb := &out.Shapes[k]
		for i := 0; i < frames; i++ {
			kb.PosX[i] = px
			kb.PosY[i] = py
			kb.VelX[i] = vx
			kb.VelY[i] = vy
		}
	}
}

// Telemetry snapshots coarse counters for the UI layer.
func (r *Renderer) Telemetry() Telemetry {
	return Telemetry{
		Ticks:       r.world.Ticks(),
		ObjectCount: r.world.ObjectCount(),
		StrokeCount: r.world.StrokeCount(),
	}
}
