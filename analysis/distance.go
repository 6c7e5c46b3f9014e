// Package analysis measures how close a synthesized impact sound is to
// a recorded reference. The material fitter minimizes the combined
// score.
package analysis

import (
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

const fftSize = 4096

// Metrics contains distance measurements between two impact sounds.
type Metrics struct {
	SampleRate int `json:"sample_rate"`

	ReferenceFrames int `json:"reference_frames"`
	CandidateFrames int `json:"candidate_frames"`
	AlignedFrames   int `json:"aligned_frames"`
	LagSamples      int `json:"lag_samples"`

	TimeRMSE        float64 `json:"time_rmse"`
	EnvelopeRMSEDB  float64 `json:"envelope_rmse_db"`
	SpectralRMSEDB  float64 `json:"spectral_rmse_db"`
	RefDecayDBPerS  float64 `json:"ref_decay_db_per_s"`
	CandDecayDBPerS float64 `json:"cand_decay_db_per_s"`
	DecayDiffDBPerS float64 `json:"decay_diff_db_per_s"`

	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

// Compare returns objective distance metrics and a combined score in
// [0,1]; 0 means identical. Signals are aligned on their onsets and
// RMS-normalized first, so only envelope shape, spectrum, and decay
// rate count.
func Compare(reference []float64, candidate []float64, sampleRate int) Metrics {
	m := Metrics{
		SampleRate:      sampleRate,
		ReferenceFrames: len(reference),
		CandidateFrames: len(candidate),
	}
	if sampleRate <= 0 || len(reference) == 0 || len(candidate) == 0 {
		m.Score = 1.0
		return m
	}

	ref := trimLeadingSilence(reference, 1e-6)
	cand := trimLeadingSilence(candidate, 1e-6)
	if len(ref) == 0 || len(cand) == 0 {
		m.Score = 1.0
		return m
	}

	ref = normalizeRMS(ref, 0.1)
	cand = normalizeRMS(cand, 0.1)

	maxLag := sampleRate / 10 // impacts align within 100ms once trimmed
	if maxLag < 1 {
		maxLag = 1
	}
	if maxLag > len(ref)-1 {
		maxLag = len(ref) - 1
	}
	if maxLag > len(cand)-1 {
		maxLag = len(cand) - 1
	}
	if maxLag < 1 {
		maxLag = 1
	}
	lag := estimateLag(ref, cand, maxLag)
	m.LagSamples = lag

	refA, candA := alignByLag(ref, cand, lag)
	n := len(refA)
	if len(candA) < n {
		n = len(candA)
	}
	if n < 256 {
		m.Score = 1.0
		return m
	}
	// Impact sounds are over within a few seconds; cap the window.
	maxFrames := sampleRate * 4
	if n > maxFrames {
		n = maxFrames
	}
	refA = refA[:n]
	candA = candA[:n]
	m.AlignedFrames = n

	m.TimeRMSE = rmse(refA, candA)

	refEnv := rmsEnvelope(refA, 256, 128)
	candEnv := rmsEnvelope(candA, 256, 128)
	envN := len(refEnv)
	if len(candEnv) < envN {
		envN = len(candEnv)
	}
	if envN > 0 {
		var sum float64
		for i := 0; i < envN; i++ {
			d := linToDB(refEnv[i]) - linToDB(candEnv[i])
			sum += d * d
		}
		m.EnvelopeRMSEDB = math.Sqrt(sum / float64(envN))
	}

	m.SpectralRMSEDB = spectralRMSEDB(refA, candA)

	hopSec := 128.0 / float64(sampleRate)
	m.RefDecayDBPerS = decaySlopeDBPerS(refEnv, hopSec)
	m.CandDecayDBPerS = decaySlopeDBPerS(candEnv, hopSec)
	if isFinite(m.RefDecayDBPerS) && isFinite(m.CandDecayDBPerS) {
		m.DecayDiffDBPerS = math.Abs(m.RefDecayDBPerS - m.CandDecayDBPerS)
	}

	// Decay rate and spectrum dominate: they are what a material tag
	// actually encodes. Sample-exact waveform agreement matters least.
	timeNorm := clamp01(m.TimeRMSE / 0.25)
	envNorm := clamp01(m.EnvelopeRMSEDB / 30.0)
	specNorm := clamp01(m.SpectralRMSEDB / 30.0)
	decNorm := clamp01(m.DecayDiffDBPerS / 40.0)
	m.Score = clamp01(0.10*timeNorm + 0.25*envNorm + 0.35*specNorm + 0.30*decNorm)
	m.Similarity = clamp01(math.Exp(-4.0 * m.Score))

	return m
}

// DecaySlope estimates a signal's post-peak decay in dB per second.
// NaN when the signal is too short or never decays 6 frames past peak.
func DecaySlope(x []float64, sampleRate int) float64 {
	if sampleRate <= 0 {
		return math.NaN()
	}
	env := rmsEnvelope(x, 256, 128)
	return decaySlopeDBPerS(env, 128.0/float64(sampleRate))
}

// SpectralCentroid computes the magnitude-weighted mean frequency of
// the first fftSize samples, in Hz. A brightness proxy.
func SpectralCentroid(x []float64, sampleRate int) float64 {
	if sampleRate <= 0 || len(x) == 0 {
		return 0
	}
	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		return 0
	}
	buf := make([]float64, fftSize)
	for i := 0; i < fftSize && i < len(x); i++ {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(fftSize-1))
		buf[i] = x[i] * w
	}
	spec := make([]complex128, fftSize/2+1)
	plan.Forward(spec, buf)

	binHz := float64(sampleRate) / float64(fftSize)
	var wsum, msum float64
	for k := 1; k < fftSize/2; k++ {
		mag := cmplx.Abs(spec[k])
		wsum += mag * float64(k) * binHz
		msum += mag
	}
	if msum < 1e-12 {
		return 0
	}
	return wsum / msum
}

func trimLeadingSilence(x []float64, threshold float64) []float64 {
	for i := 0; i < len(x); i++ {
		if math.Abs(x[i]) > threshold {
			return x[i:]
		}
	}
	return nil
}

func normalizeRMS(x []float64, target float64) []float64 {
	if len(x) == 0 {
		return x
	}
	r := rms1(x)
	if r <= 1e-12 {
		return append([]float64(nil), x...)
	}
	g := target / r
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] * g
	}
	return out
}

func estimateLag(ref []float64, cand []float64, maxLag int) int {
	if len(ref) == 0 || len(cand) == 0 {
		return 0
	}
	step := 2
	if len(ref) > 200000 || len(cand) > 200000 {
		step = 4
	}
	bestLag := 0
	best := math.Inf(-1)
	for lag := -maxLag; lag <= maxLag; lag++ {
		s := dotAtLag(ref, cand, lag, step)
		if s > best {
			best = s
			bestLag = lag
		}
	}
	return bestLag
}

func dotAtLag(a []float64, b []float64, lag int, step int) float64 {
	var ai, bi int
	if lag >= 0 {
		ai = lag
	} else {
		bi = -lag
	}
	n := len(a) - ai
	if len(b)-bi < n {
		n = len(b) - bi
	}
	if n <= 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i += step {
		sum += a[ai+i] * b[bi+i]
	}
	return sum
}

func alignByLag(ref []float64, cand []float64, lag int) ([]float64, []float64) {
	if lag >= 0 {
		if lag >= len(ref) {
			return nil, nil
		}
		return ref[lag:], cand
	}
	o := -lag
	if o >= len(cand) {
		return nil, nil
	}
	return ref, cand[o:]
}

func rmse(a []float64, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

func rms1(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func rmsEnvelope(x []float64, frame int, hop int) []float64 {
	if frame <= 0 || hop <= 0 || len(x) < frame {
		return nil
	}
	n := 1 + (len(x)-frame)/hop
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i * hop
		out[i] = rms1(x[start : start+frame])
	}
	return out
}

// spectralRMSEDB compares windowed magnitude spectra of the two onsets.
func spectralRMSEDB(a []float64, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n < 512 {
		return 0
	}
	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		return 0
	}
	aw := make([]float64, fftSize)
	bw := make([]float64, fftSize)
	for i := 0; i < fftSize && i < n; i++ {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(fftSize-1))
		aw[i] = a[i] * w
		bw[i] = b[i] * w
	}
	specA := make([]complex128, fftSize/2+1)
	specB := make([]complex128, fftSize/2+1)
	plan.Forward(specA, aw)
	plan.Forward(specB, bw)

	bins := fftSize / 2
	var sum float64
	for k := 1; k < bins; k++ {
		d := linToDB(cmplx.Abs(specA[k])) - linToDB(cmplx.Abs(specB[k]))
		sum += d * d
	}
	return math.Sqrt(sum / float64(bins-1))
}

func linToDB(x float64) float64 {
	if x < 1e-12 {
		x = 1e-12
	}
	return 20.0 * math.Log10(x)
}

func decaySlopeDBPerS(env []float64, hopSec float64) float64 {
	if len(env) < 8 || hopSec <= 0 {
		return math.NaN()
	}
	peak := -math.MaxFloat64
	peakIdx := 0
	for i, v := range env {
		db := linToDB(v)
		if db > peak {
			peak = db
			peakIdx = i
		}
	}
	start := peakIdx + 1
	if start >= len(env)-4 {
		return math.NaN()
	}

	threshold := peak - 60.0
	end := len(env)
	for i := start; i < len(env); i++ {
		if linToDB(env[i]) < threshold {
			end = i
			break
		}
	}
	if end-start < 6 {
		return math.NaN()
	}

	var sx, sy, sxx, sxy float64
	n := float64(end - start)
	for i := start; i < end; i++ {
		x := float64(i-start) * hopSec
		y := linToDB(env[i])
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	den := n*sxx - sx*sx
	if math.Abs(den) < 1e-12 {
		return math.NaN()
	}
	return (n*sxy - sx*sy) / den
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
