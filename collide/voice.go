package collide

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-collide/dsp"
)

const (
	voiceOscillators = 3

	attackSeconds  = 0.005
	releaseSeconds = 0.010

	// impulseCalibration maps collision impulse to note gain:
	// gain = clamp(impulse/impulseCalibration, minVoiceGain, 1).
	impulseCalibration = 0.8
	minVoiceGain       = 0.1

	envSilence = 1e-4
)

// Relative excitation of the three partials.
var modeWeights = [voiceOscillators]float32{1.0, 0.56, 0.35}

type envStage int

const (
	envIdle envStage = iota
	envAttack
	envDecay
	envRelease
)

// adsr is a one-shot impact envelope: short linear attack, exponential
// decay to silence (sustain 0), short release when cut off early.
type adsr struct {
	stage        envStage
	level        float32
	attackStep   float32
	decayCoeff   float32
	releaseCoeff float32
}

func (e *adsr) trigger(attackStep, decayC, releaseC float32) {
	e.stage = envAttack
	e.level = 0
	e.attackStep = attackStep
	e.decayCoeff = decayC
	e.releaseCoeff = releaseC
}

func (e *adsr) cut() {
	if e.stage == envAttack || e.stage == envDecay {
		e.stage = envRelease
	}
}

func (e *adsr) next() float32 {
	switch e.stage {
	case envAttack:
		e.level += e.attackStep
		if e.level >= 1 {
			e.level = 1
			e.stage = envDecay
		}
	case envDecay:
		e.level *= e.decayCoeff
		if e.level < envSilence {
			e.level = 0
			e.stage = envIdle
		}
	case envRelease:
		e.level *= e.releaseCoeff
		if e.level < envSilence {
			e.level = 0
			e.stage = envIdle
		}
	}
	return e.level
}

func (e *adsr) isActive() bool {
	return e.stage != envIdle
}

// oscState is one rotating-phasor sine oscillator.
type oscState struct {
	re, im     float32
	cosW, sinW float32
	gain       float32
}

func (o *oscState) step() float32 {
	nx := o.re*o.cosW - o.im*o.sinW
	ny := o.re*o.sinW + o.im*o.cosW
	o.re = nx
	o.im = ny
	return nx * o.gain
}

// Voice is one modal synthesis voice: three sine partials shaped by a
// one-shot envelope and a material brightness lowpass.
//
// Trigger parameters cross the physics→audio boundary through atomics
// plus a trigger sequence number; the render side applies the newest
// pending trigger at the top of each block. All other voice state is
// touched only by the audio context.
type Voice struct {
	sampleRate int

	trigSeq    atomic.Uint32
	freqBits   [voiceOscillators]atomicFloat32
	gainBits   atomicFloat32
	panBits    atomicFloat32
	decayBits  atomicFloat32
	cutoffBits atomicFloat32

	seenSeq    uint32
	oscs       [voiceOscillators]oscState
	env        adsr
	noteGain   float32
	panL, panR float32
	tone       *dsp.Biquad
}

// NewVoice creates an idle voice for the given sample rate.
func NewVoice(sampleRate int) *Voice {
	if sampleRate < 8000 {
		sampleRate = 8000
	}
	return &Voice{
		sampleRate: sampleRate,
		tone:       dsp.NewLowpass(8000, float32(sampleRate), 0.707),
	}
}

// Trigger arms the voice from the physics context. The reset itself
// happens on the audio context at the next block boundary; triggering
// is unconditional even if the voice is mid-decay.
func (v *Voice) Trigger(mat MaterialData, impulse float64, pan float32) {
	gain := clampFloat32(float32(impulse)/impulseCalibration, minVoiceGain, 1.0)

	for i := 0; i < voiceOscillators; i++ {
		ratio := float32(i + 1)
		if i < len(mat.Frequencies) {
			ratio = mat.Frequencies[i]
		}
		v.freqBits[i].Store(mat.BasePitchHz * ratio)
	}
	v.gainBits.Store(gain)
	v.panBits.Store(clampFloat32(pan, 0, 1))
	v.decayBits.Store(maxf(mat.DecayTime, 0.01))
	v.cutoffBits.Store(minf(mat.BasePitchHz*8, float32(v.sampleRate)*0.4))

	v.trigSeq.Add(1)
}

// applyPendingTrigger hard-resets oscillators, envelope, gain, and pan
// from the latest armed parameters. Audio context only.
func (v *Voice) applyPendingTrigger() {
	seq := v.trigSeq.Load()
	if seq == v.seenSeq {
		return
	}
	v.seenSeq = seq

	sr := float32(v.sampleRate)
	nyquist := sr * 0.5
	for i := 0; i < voiceOscillators; i++ {
		freq := v.freqBits[i].Load()
		o := &v.oscs[i]
		if freq <= 0 || freq >= nyquist*0.95 {
			o.gain = 0
			o.re, o.im = 0, 0
			continue
		}
		w := 2.0 * math.Pi * float64(freq/sr)
		o.cosW = float32(math.Cos(w))
		o.sinW = float32(math.Sin(w))
		o.gain = modeWeights[i]
		o.re = 1
		o.im = 0
	}

	v.noteGain = v.gainBits.Load()
	p := v.panBits.Load()
	v.panL = float32(math.Cos(float64(p) * math.Pi * 0.5))
	v.panR = float32(math.Sin(float64(p) * math.Pi * 0.5))

	attackStep := float32(1.0) / (attackSeconds * sr)
	releaseC := decayCoeff(releaseSeconds, v.sampleRate)
	v.env.trigger(attackStep, decayCoeff(v.decayBits.Load(), v.sampleRate), releaseC)

	v.tone.Reset()
	v.tone.SetLowpass(v.cutoffBits.Load(), sr, 0.707)
}

// processInto accumulates the voice into a stereo interleaved buffer.
func (v *Voice) processInto(dst []float32, frames int) {
	v.applyPendingTrigger()
	if !v.env.isActive() {
		return
	}
	for i := 0; i < frames; i++ {
		var s float32
		for j := range v.oscs {
			s += v.oscs[j].step()
		}
		s = v.tone.Process(s)
		out := s * v.env.next() * v.noteGain
		dst[i*2] += out * v.panL
		dst[i*2+1] += out * v.panR
		if !v.env.isActive() {
			return
		}
	}
}

// Active reports whether the envelope has decayed to silence yet.
func (v *Voice) Active() bool {
	return v.env.isActive()
}
