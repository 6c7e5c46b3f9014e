package collide

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-approx"
)

func clampFloat32(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func clampFloat64(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func minf(a float32, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a float32, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// decayCoeff returns the per-sample multiplier that brings a unity
// envelope down to roughly -30 dB after decaySeconds.
func decayCoeff(decaySeconds float32, sampleRate int) float32 {
	if decaySeconds <= 0 || sampleRate <= 0 {
		return 0
	}
	return approx.FastExp(-envDecayTarget / (decaySeconds * float32(sampleRate)))
}

// envDecayTarget is -ln(level at t=decayTime); e^-3.5 ~= 0.030.
const envDecayTarget = 3.5

// atomicFloat32 is a float published across the physics/audio boundary.
type atomicFloat32 struct {
	bits atomic.Uint32
}

func (a *atomicFloat32) Store(v float32) {
	a.bits.Store(math.Float32bits(v))
}

func (a *atomicFloat32) Load() float32 {
	return math.Float32frombits(a.bits.Load())
}
