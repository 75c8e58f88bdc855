package cost

import (
	"reflect"
	"testing"
)

// TestEstimateTable verifies the fixed price table sums.
func TestEstimateTable(t *testing.T) {
	tests := []struct {
		name      string
		mode      Mode
		features  Features
		wantTotal float64
		wantLen   int
	}{
		{"relax base only", ModeRelax, Features{}, 0.05, 1},
		{"relax with background removal", ModeRelax, Features{RemoveBackground: true}, 0.07, 2},
		{"fast base only", ModeFast, Features{}, 0.08, 1},
		{"turbo base only", ModeTurbo, Features{}, 0.15, 1},
		{"turbo all features", ModeTurbo, Features{RemoveBackground: true, Upscale: true, FaceEnhance: true}, 0.19, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Estimate(tt.mode, tt.features)
			if err != nil {
				t.Fatalf("Estimate() error = %v", err)
			}
			if got.TotalUSD != tt.wantTotal {
				t.Fatalf("total = %v, want %v", got.TotalUSD, tt.wantTotal)
			}
			if len(got.Breakdown) != tt.wantLen {
				t.Fatalf("breakdown len = %d, want %d", len(got.Breakdown), tt.wantLen)
			}
		})
	}
}

// TestEstimateBreakdownOrder verifies base first, then declared feature order.
func TestEstimateBreakdownOrder(t *testing.T) {
	got, err := Estimate(ModeTurbo, Features{RemoveBackground: true, Upscale: true, FaceEnhance: true})
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}

	names := make([]string, 0, len(got.Breakdown))
	for _, entry := range got.Breakdown {
		names = append(names, entry.Feature)
	}
	want := []string{"base:turbo", "removeBackground", "upscale", "faceEnhance"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("breakdown order = %v, want %v", names, want)
	}
}

// TestEstimateUnknownMode checks closed-enum validation.
func TestEstimateUnknownMode(t *testing.T) {
	if _, err := Estimate("warp", Features{}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

// TestEstimateIsPure verifies identical inputs give identical outputs.
func TestEstimateIsPure(t *testing.T) {
	first, err := Estimate(ModeFast, Features{Upscale: true})
	if err != nil {
		t.Fatalf("first Estimate() error = %v", err)
	}
	second, err := Estimate(ModeFast, Features{Upscale: true})
	if err != nil {
		t.Fatalf("second Estimate() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("estimates differ: %+v vs %+v", first, second)
	}
}

// TestLevelFor verifies band classification with lower-inclusive boundaries.
func TestLevelFor(t *testing.T) {
	tests := []struct {
		total float64
		want  Level
	}{
		{0, LevelFree},
		{0.009, LevelFree},
		{0.01, LevelLow},
		{0.04, LevelLow},
		{0.05, LevelMedium},
		{0.09, LevelMedium},
		{0.10, LevelHigh},
		{0.19, LevelHigh},
	}

	for _, tt := range tests {
		if got := LevelFor(tt.total); got != tt.want {
			t.Fatalf("LevelFor(%v) = %s, want %s", tt.total, got, tt.want)
		}
	}
}
