package collide

import (
	"fmt"
	"os"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"
	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
)

// RoomConvolver applies a room impulse response to the stereo output,
// via partitioned convolution. Offline use: the real-time path stays
// dry.
type RoomConvolver struct {
	sampleRate int
	partSize   int
	irLen      int

	leftOLA  *dspconv.StreamingOverlapAddT[float32, complex64]
	rightOLA *dspconv.StreamingOverlapAddT[float32, complex64]

	leftIn, rightIn   []float32
	leftOut, rightOut []float32
}

// NewRoomConvolver creates a pass-through convolver (unit impulse).
func NewRoomConvolver(sampleRate int) *RoomConvolver {
	c := &RoomConvolver{
		sampleRate: sampleRate,
		partSize:   128,
	}
	c.SetIR([]float32{1.0}, []float32{1.0})
	return c
}

// IRLength reports the loaded impulse response length in samples.
func (c *RoomConvolver) IRLength() int {
	return c.irLen
}

// ProcessStereo convolves a stereo interleaved buffer and returns a new
// stereo interleaved buffer of the same length.
func (c *RoomConvolver) ProcessStereo(input []float32) []float32 {
	output := make([]float32, len(input))
	frames := len(input) / 2
	processed := 0
	for processed < frames {
		blockLen := c.partSize
		if processed+blockLen > frames {
			blockLen = frames - processed
		}
		for i := 0; i < c.partSize; i++ {
			if i < blockLen {
				c.leftIn[i] = input[(processed+i)*2]
				c.rightIn[i] = input[(processed+i)*2+1]
			} else {
				c.leftIn[i] = 0
				c.rightIn[i] = 0
			}
		}

		errL := c.leftOLA.ProcessBlockTo(c.leftOut, c.leftIn)
		errR := c.rightOLA.ProcessBlockTo(c.rightOut, c.rightIn)
		if errL != nil || errR != nil {
			// Pass this block through dry.
			for i := 0; i < blockLen; i++ {
				output[(processed+i)*2] = input[(processed+i)*2]
				output[(processed+i)*2+1] = input[(processed+i)*2+1]
			}
			processed += blockLen
			continue
		}

		for i := 0; i < blockLen; i++ {
			output[(processed+i)*2] = c.leftOut[i]
			output[(processed+i)*2+1] = c.rightOut[i]
		}
		processed += blockLen
	}
	return output
}

// SetIR configures left/right impulse responses.
func (c *RoomConvolver) SetIR(leftIR []float32, rightIR []float32) {
	if len(leftIR) == 0 {
		leftIR = []float32{1.0}
	}
	if len(rightIR) == 0 {
		rightIR = []float32{1.0}
	}

	leftOLA, errL := dspconv.NewStreamingOverlapAdd32(leftIR, c.partSize)
	rightOLA, errR := dspconv.NewStreamingOverlapAdd32(rightIR, c.partSize)
	if errL != nil || errR != nil {
		return
	}
	c.leftOLA = leftOLA
	c.rightOLA = rightOLA
	c.irLen = len(leftIR)
	if len(rightIR) > c.irLen {
		c.irLen = len(rightIR)
	}

	c.leftIn = make([]float32, c.partSize)
	c.rightIn = make([]float32, c.partSize)
	c.leftOut = make([]float32, c.partSize)
	c.rightOut = make([]float32, c.partSize)

	c.Reset()
}

// SetIRFromWAV loads a mono or stereo IR from a WAV file, resampling
// to the convolver's rate when needed.
func (c *RoomConvolver) SetIRFromWAV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return fmt.Errorf("invalid wav buffer: %s", path)
	}

	numCh := buf.Format.NumChannels
	srcRate := buf.Format.SampleRate
	if srcRate <= 0 {
		return fmt.Errorf("invalid wav sample-rate: %d", srcRate)
	}
	frames := len(buf.Data) / numCh
	if frames == 0 {
		return fmt.Errorf("empty wav data: %s", path)
	}

	left := make([]float32, frames)
	right := make([]float32, frames)
	if numCh == 1 {
		for i := 0; i < frames; i++ {
			v := buf.Data[i]
			left[i] = v
			right[i] = v
		}
	} else {
		for i := 0; i < frames; i++ {
			left[i] = buf.Data[i*numCh]
			right[i] = buf.Data[i*numCh+1]
		}
	}

	left, err = c.resampleIfNeeded(left, srcRate)
	if err != nil {
		return err
	}
	right, err = c.resampleIfNeeded(right, srcRate)
	if err != nil {
		return err
	}
	c.SetIR(left, right)
	return nil
}

// Reset clears convolver history and overlap buffers.
func (c *RoomConvolver) Reset() {
	if c.leftOLA != nil {
		c.leftOLA.Reset()
	}
	if c.rightOLA != nil {
		c.rightOLA.Reset()
	}
}

func (c *RoomConvolver) resampleIfNeeded(in []float32, inRate int) ([]float32, error) {
	if inRate == c.sampleRate {
		return in, nil
	}
	r, err := dspresample.NewForRates(
		float64(inRate),
		float64(c.sampleRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}

	in64 := make([]float64, len(in))
	for i, v := range in {
		in64[i] = float64(v)
	}
	out64 := r.Process(in64)
	out := make([]float32, len(out64))
	for i, v := range out64 {
		out[i] = float32(v)
	}
	return out, nil
}
