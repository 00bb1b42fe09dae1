package cmap

import (
	"math"
	"testing"
)

func TestEqualSpaceCdfUpdateProducesStrictlyIncreasingBounds(t *testing.T) {
	fallback := Uniform(10, 0, 10)
	samples := make([]Sample, 0, 20)
	for i := 0; i < 20; i++ {
		samples = append(samples, Sample{P: float64(i % 10), Weight: 1})
	}
	out := EqualSpaceCdfUpdate(DensityPlot{}, samples, 10, 0.5, true, 0.5, fallback)
	bounds := out.Bounds()
	for i := 1; i < len(bounds); i++ {
		if bounds[i] <= bounds[i-1] {
			t.Fatalf("bounds not strictly increasing at %d: %v <= %v", i, bounds[i], bounds[i-1])
		}
	}
}

func TestEqualSpaceCdfUpdateSpansSupport(t *testing.T) {
	fallback := Uniform(5, 0, 10)
	samples := []Sample{{P: 3, Weight: 1}, {P: 7, Weight: 1}}
	out := EqualSpaceCdfUpdate(DensityPlot{}, samples, 5, 0.5, true, 1, fallback)
	if out.Min() != fallback.Min() || out.Max() != fallback.Max() {
		t.Fatalf("expected rebin to preserve support [%v,%v], got [%v,%v]",
			fallback.Min(), fallback.Max(), out.Min(), out.Max())
	}
}

func TestEqualSpaceCdfUpdateFallsBackWhenNoEvidence(t *testing.T) {
	fallback := Uniform(5, 0, 10)
	out := EqualSpaceCdfUpdate(DensityPlot{}, nil, 5, 0.5, true, 0.5, fallback)
	if out.Size() != fallback.Size() {
		t.Fatalf("expected fallback size %d, got %d", fallback.Size(), out.Size())
	}
	for i, b := range out.Bounds() {
		if b != fallback.Bounds()[i] {
			t.Fatalf("expected unchanged boundary at %d: %v != %v", i, b, fallback.Bounds()[i])
		}
	}
}

func TestEqualSpaceCdfUpdateConcentratesAroundDenseRegion(t *testing.T) {
	fallback := Uniform(10, 0, 100)
	var samples []Sample
	for i := 0; i < 200; i++ {
		samples = append(samples, Sample{P: 50 + math.Mod(float64(i), 2), Weight: 1})
	}
	out := EqualSpaceCdfUpdate(DensityPlot{}, samples, 10, 0.25, true, 1, fallback)
	// Most interior boundaries should cluster tightly around the dense
	// region near 50-51, leaving wide bins at the tails.
	bounds := out.Bounds()
	tailWidth := bounds[1] - bounds[0]
	midWidth := bounds[out.Size()/2+1] - bounds[out.Size()/2]
	if midWidth >= tailWidth {
		t.Fatalf("expected narrower bins near the dense region: mid=%v tail=%v", midWidth, tailWidth)
	}
}
