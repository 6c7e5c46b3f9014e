package collide

import "sync/atomic"

// NumVoices is the fixed size of the synthesis voice pool.
const NumVoices = 8

// ModalSynth owns the fixed voice pool. Trigger is called from the
// physics context; RenderInto runs on the audio context. Voice slots
// are reassigned round-robin, unconditionally: a new trigger always
// takes the next slot, even if that voice is still decaying.
type ModalSynth struct {
	sampleRate int
	voices     [NumVoices]*Voice
	next       int // physics-context owned round-robin index
	outGain    float32
	choke      atomic.Bool
}

// NewModalSynth creates the voice pool. No voices are allocated after
// this point.
func NewModalSynth(sampleRate int, outGain float32) *ModalSynth {
	if outGain <= 0 {
		outGain = 1.0
	}
	m := &ModalSynth{sampleRate: sampleRate, outGain: outGain}
	for i := range m.voices {
		m.voices[i] = NewVoice(sampleRate)
	}
	return m
}

// Trigger starts a note on the next round-robin voice. Physics context.
func (m *ModalSynth) Trigger(mat MaterialData, impulse float64, pan float32) {
	m.voices[m.next].Trigger(mat, impulse, pan)
	m.next = (m.next + 1) % NumVoices
}

// Choke fades every sounding voice out through its release stage at
// the next audio block. Called from the physics context on scene
// clear, so a wiped scene does not keep ringing.
func (m *ModalSynth) Choke() {
	m.choke.Store(true)
}

// RenderInto mixes all active voices into a stereo interleaved buffer
// of len 2*frames. The buffer is zeroed first. Audio context; does not
// allocate.
func (m *ModalSynth) RenderInto(dst []float32, frames int) {
	n := frames * 2
	if n > len(dst) {
		n = len(dst)
		frames = n / 2
	}
	for i := 0; i < n; i++ {
		dst[i] = 0
	}
	if m.choke.Swap(false) {
		for _, v := range m.voices {
			v.env.cut()
			// Pending triggers armed before the choke die with it.
			v.seenSeq = v.trigSeq.Load()
		}
	}
	for _, v := range m.voices {
		v.processInto(dst, frames)
	}
	if m.outGain != 1.0 {
		for i := 0; i < n; i++ {
			dst[i] *= m.outGain
		}
	}
}

// RenderBlock renders a freshly allocated stereo interleaved block.
// Convenience for offline use and tests.
func (m *ModalSynth) RenderBlock(frames int) []float32 {
	dst := make([]float32, frames*2)
	m.RenderInto(dst, frames)
	return dst
}

// ActiveVoices counts voices whose envelope has not reached silence.
func (m *ModalSynth) ActiveVoices() int {
	count := 0
	for _, v := range m.voices {
		if v.Active() {
			count++
		}
	}
	return count
}

// NextVoice exposes the round-robin cursor for allocation tests.
func (m *ModalSynth) NextVoice() int {
	return m.next
}

// SetSampleRate rebuilds the voice pool for a new sample rate. Must be
// called while no audio or physics context is running.
func (m *ModalSynth) SetSampleRate(sampleRate int) {
	if sampleRate == m.sampleRate {
		return
	}
	m.sampleRate = sampleRate
	for i := range m.voices {
		m.voices[i] = NewVoice(sampleRate)
	}
	m.next = 0
}

// Reset rearms the pool for a new playback session: all voices fall
// silent at the next block.
func (m *ModalSynth) Reset() {
	for _, v := range m.voices {
		v.env.stage = envIdle
		v.env.level = 0
		v.seenSeq = v.trigSeq.Load()
		v.tone.Reset()
	}
	m.next = 0
}
