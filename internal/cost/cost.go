// Package cost computes per-job price estimates from a fixed price table.
package cost

import (
	"fmt"
	"math"
)

// Mode selects the generation tier and its base price.
type Mode string

const (
	ModeRelax Mode = "relax"
	ModeFast  Mode = "fast"
	ModeTurbo Mode = "turbo"
)

// Features are the optional post-processing steps that add to the base cost.
type Features struct {
	RemoveBackground bool `json:"removeBackground"`
	Upscale          bool `json:"upscale"`
	FaceEnhance      bool `json:"faceEnhance"`
}

// Entry is one line of a cost breakdown.
type Entry struct {
	Feature   string  `json:"feature"`
	AmountUSD float64 `json:"amountUsd"`
}

// Calculation is an ordered breakdown plus the rounded total.
type Calculation struct {
	Breakdown []Entry `json:"breakdown"`
	TotalUSD  float64 `json:"totalUsd"`
}

// Level is a qualitative classification of a total cost.
type Level string

const (
	LevelFree   Level = "free"
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

var baseCosts = map[Mode]float64{
	ModeRelax: 0.05,
	ModeFast:  0.08,
	ModeTurbo: 0.15,
}

// Feature increments in fixed declared order.
var featureCosts = []struct {
	name    string
	amount  float64
	enabled func(Features) bool
}{
	{"removeBackground", 0.02, func(f Features) bool { return f.RemoveBackground }},
	{"upscale", 0.01, func(f Features) bool { return f.Upscale }},
	{"faceEnhance", 0.01, func(f Features) bool { return f.FaceEnhance }},
}

// Estimate builds the breakdown for one job: base cost first, then each
// enabled feature in declared order. The total is the rounded sum.
func Estimate(mode Mode, features Features) (Calculation, error) {
	base, ok := baseCosts[mode]
	if !ok {
		return Calculation{}, fmt.Errorf("unknown processing mode: %s", mode)
	}

	breakdown := []Entry{{Feature: "base:" + string(mode), AmountUSD: base}}
	total := base
	for _, fc := range featureCosts {
		if !fc.enabled(features) {
			continue
		}
		breakdown = append(breakdown, Entry{Feature: fc.name, AmountUSD: fc.amount})
		total += fc.amount
	}

	return Calculation{
		Breakdown: breakdown,
		TotalUSD:  roundCents(total),
	}, nil
}

// Ascending level thresholds; a total exactly at a threshold classifies
// into the higher band.
const (
	lowThreshold    = 0.01
	mediumThreshold = 0.05
	highThreshold   = 0.10
)

// LevelFor classifies a total cost into a qualitative band.
func LevelFor(totalUSD float64) Level {
	switch {
	case totalUSD >= highThreshold:
		return LevelHigh
	case totalUSD >= mediumThreshold:
		return LevelMedium
	case totalUSD >= lowThreshold:
		return LevelLow
	default:
		return LevelFree
	}
}

// roundCents rounds to two decimals to avoid float drift in sums.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
