package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cwbudde/algo-collide/analysis"
	"github.com/cwbudde/algo-collide/collide"
	"github.com/cwbudde/algo-collide/internal/wavutil"
	"github.com/cwbudde/mayfly"
)

// knobDef maps one normalized [0,1] optimizer dimension to a material
// parameter range.
type knobDef struct {
	name string
	lo   float64
	hi   float64
}

var knobs = []knobDef{
	{"ratio2", 1.1, 4.0},
	{"ratio3", 2.0, 9.0},
	{"decay_time", 0.05, 3.0},
	{"base_pitch_hz", 60.0, 1200.0},
}

type fitReport struct {
	Reference    string           `json:"reference"`
	SampleRate   int              `json:"sample_rate"`
	Evaluations  int              `json:"evaluations"`
	BestScore    float64          `json:"best_score"`
	Similarity   float64          `json:"similarity"`
	Ratios       []float32        `json:"ratios"`
	DecayTime    float32          `json:"decay_time"`
	BasePitchHz  float32          `json:"base_pitch_hz"`
	Metrics      analysis.Metrics `json:"metrics"`
	ElapsedSec   float64          `json:"elapsed_seconds"`
	TimestampUTC string           `json:"timestamp_utc"`
}

func main() {
	refPath := flag.String("reference", "", "Reference impact WAV to match (required)")
	reportPath := flag.String("report", "", "Report JSON path (default: <reference>.fit.json)")
	renderOut := flag.String("render-best", "", "Optional WAV path for the best candidate")
	sampleRate := flag.Int("sample-rate", 48000, "Analysis sample rate")
	pop := flag.Int("pop", 20, "Mayfly population size per sex")
	iters := flag.Int("iters", 40, "Mayfly iterations")
	seed := flag.Int64("seed", 1, "Random seed")
	flag.Parse()

	if *refPath == "" {
		die("reference is required")
	}
	if *sampleRate < 8000 {
		die("sample-rate must be >= 8000")
	}
	if *pop < 4 {
		die("pop must be >= 4")
	}
	if *iters < 1 {
		die("iters must be >= 1")
	}

	raw, srcRate, err := wavutil.ReadWAVMono(*refPath)
	if err != nil {
		die("read reference: %v", err)
	}
	raw, err = wavutil.ResampleIfNeeded(raw, srcRate, *sampleRate)
	if err != nil {
		die("resample reference: %v", err)
	}
	reference := wavutil.NormalizeMono(raw)
	fmt.Printf("Reference: %s, %d frames @ %d Hz\n", *refPath, len(reference), *sampleRate)

	start := time.Now()

	var mu sync.Mutex
	best := make([]float64, len(knobs))
	bestScore := math.Inf(1)
	var bestMetrics analysis.Metrics
	evals := 0

	cfg := mayfly.NewDefaultConfig()
	cfg.ProblemSize = len(knobs)
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = *iters
	cfg.NPop = *pop
	cfg.NPopF = *pop
	cfg.NC = 2 * *pop
	cfg.NM = maxInt(1, int(math.Round(0.05*float64(*pop))))
	cfg.Rand = rand.New(rand.NewSource(*seed))
	cfg.ObjectiveFunc = func(pos []float64) float64 {
		mat := materialFromPosition(pos)
		cand := renderImpact(mat, *sampleRate)
		m := analysis.Compare(reference, cand, *sampleRate)

		mu.Lock()
		evals++
		if m.Score < bestScore {
			bestScore = m.Score
			bestMetrics = m
			copy(best, pos)
			fmt.Printf("Improved eval=%d score=%.4f sim=%.2f%% ratios=[1 %.2f %.2f] decay=%.2fs pitch=%.0fHz\n",
				evals, m.Score, m.Similarity*100.0,
				mat.Frequencies[1], mat.Frequencies[2], mat.DecayTime, mat.BasePitchHz)
		} else if evals%200 == 0 {
			fmt.Printf("Progress eval=%d best=%.4f elapsed=%.1fs\n", evals, bestScore, time.Since(start).Seconds())
		}
		mu.Unlock()
		return m.Score
	}

	if _, err := mayfly.Optimize(cfg); err != nil {
		die("optimize: %v", err)
	}

	mat := materialFromPosition(best)
	report := fitReport{
		Reference:    *refPath,
		SampleRate:   *sampleRate,
		Evaluations:  evals,
		BestScore:    bestScore,
		Similarity:   bestMetrics.Similarity,
		Ratios:       mat.Frequencies,
		DecayTime:    mat.DecayTime,
		BasePitchHz:  mat.BasePitchHz,
		Metrics:      bestMetrics,
		ElapsedSec:   time.Since(start).Seconds(),
		TimestampUTC: time.Now().UTC().Format(time.RFC3339),
	}

	if *reportPath == "" {
		*reportPath = *refPath + ".fit.json"
	}
	if err := writeJSON(*reportPath, report); err != nil {
		die("write report: %v", err)
	}

	if *renderOut != "" {
		mono := renderImpact(mat, *sampleRate)
		out := make([]float32, len(mono))
		for i, v := range mono {
			out[i] = float32(v)
		}
		if err := wavutil.WriteMonoWAV(*renderOut, out, *sampleRate); err != nil {
			die("write render: %v", err)
		}
	}

	fmt.Printf("Done evals=%d score=%.4f report=%s\n", evals, bestScore, *reportPath)
}

// materialFromPosition decodes a normalized optimizer position. Partial
// ratios are kept ascending so the spectrum stays well ordered.
func materialFromPosition(pos []float64) collide.MaterialData {
	v := make([]float64, len(knobs))
	for i, k := range knobs {
		p := pos[i]
		if p < 0 {
			p = 0
		}
		if p > 1 {
			p = 1
		}
		v[i] = k.lo + p*(k.hi-k.lo)
	}
	r2, r3 := v[0], v[1]
	if r3 < r2+0.1 {
		r3 = r2 + 0.1
	}
	return collide.MaterialData{
		Frequencies: []float32{1.0, float32(r2), float32(r3)},
		DecayTime:   float32(v[2]),
		BasePitchHz: float32(v[3]),
	}
}

// renderImpact synthesizes a single full-strength impact and returns
// mono samples covering the decay tail.
func renderImpact(mat collide.MaterialData, sampleRate int) []float64 {
	synth := collide.NewModalSynth(sampleRate, 1.0)
	synth.Trigger(mat, 1.0, 0.5)

	frames := int(float64(sampleRate) * (float64(mat.DecayTime) + 0.5))
	if frames > sampleRate*4 {
		frames = sampleRate * 4
	}
	stereo := synth.RenderBlock(frames)
	return wavutil.StereoToMono64(stereo)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
