package cmap

import "math"

// Sample is one buffered observation in measure space, carrying whatever
// weight narrowUpdate would otherwise have applied directly to a counter.
type Sample struct {
	P      float64
	Weight float64
}

// Record is one entry of a DensityPlot: the density of observations over
// Range, i.e. probability mass divided by Range.Length().
type Record struct {
	Range   RangeP
	Density float64
}

// DensityPlot is the per-bin density list produced by sampling a generation
// (see the root package's DensityPlot query) and consumed as prior evidence
// by EqualSpaceCdfUpdate. It is deliberately the same shape on both sides of
// that boundary: output of one generation, input to the rebin of the next.
type DensityPlot struct {
	Records []Record
}

// gridResolution is the number of points used internally to approximate the
// combined density before integrating to a CDF. It trades rebin precision
// for rebin cost; 512 keeps EqualSpaceCdfUpdate comfortably sub-millisecond
// even for cmapSize in the low thousands.
const gridResolution = 512

// EqualSpaceCdfUpdate computes a new Cmap of exactly size finite bins from a
// prior generation's DensityPlot and a batch of recently buffered samples.
// alpha is the weight given to the new samples against the prior plot
// (1-alpha); dataKernelWindow is the triangular-kernel half-width as a
// multiple of the current bin width; boundaryCorrection mirror-reflects mass
// that would otherwise fall outside [fallback.Min(), fallback.Max()].
//
// If both the prior plot and the sample batch carry no usable mass, rebin
// fails softly and fallback is returned unchanged — deep updates must always
// rotate generations even when there is nothing new to learn from.
func EqualSpaceCdfUpdate(prior DensityPlot, samples []Sample, size int, dataKernelWindow float64, boundaryCorrection bool, alpha float64, fallback Cmap) Cmap {
	lo, hi := fallback.Min(), fallback.Max()
	if !(hi > lo) || size < 1 {
		return fallback
	}

	grid := make([]float64, gridResolution)
	step := (hi - lo) / float64(gridResolution)

	priorMass := sampleDensityPlot(prior, lo, step)
	newMass := kernelPlot(samples, lo, hi, step, dataKernelWindow, boundaryCorrection, fallback)

	if !hasMass(priorMass) && !hasMass(newMass) {
		return fallback
	}
	normalize(priorMass)
	normalize(newMass)

	a := alpha
	if !hasMass(priorMass) {
		a = 1
	}
	if !hasMass(newMass) {
		a = 0
	}
	for i := range grid {
		grid[i] = (1-a)*priorMass[i] + a*newMass[i]
	}
	normalize(grid)

	cdf := make([]float64, gridResolution+1)
	for i := 0; i < gridResolution; i++ {
		cdf[i+1] = cdf[i] + grid[i]
	}
	if total := cdf[gridResolution]; total > 0 {
		for i := range cdf {
			cdf[i] /= total
		}
	}

	bounds := make([]float64, size+1)
	bounds[0] = lo
	bounds[size] = hi
	prev := lo
	for k := 1; k < size; k++ {
		target := float64(k) / float64(size)
		x := quantileFromCdf(cdf, lo, step, target)
		if x <= prev {
			x = math.Nextafter(prev, hi)
		}
		bounds[k] = x
		prev = x
	}
	if bounds[size] <= prev {
		bounds[size] = math.Nextafter(prev, math.Inf(1))
	}
	return New(bounds)
}

func hasMass(xs []float64) bool {
	for _, x := range xs {
		if x > 0 {
			return true
		}
	}
	return false
}

func normalize(xs []float64) {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	if sum <= 0 {
		return
	}
	for i := range xs {
		xs[i] /= sum
	}
}

// sampleDensityPlot evaluates a (piecewise-constant) DensityPlot at the
// centre of each grid cell, giving it mass proportional to density * step.
func sampleDensityPlot(plot DensityPlot, lo, step float64) []float64 {
	out := make([]float64, gridResolution)
	if len(plot.Records) == 0 {
		return out
	}
	for i := range out {
		x := lo + step*(float64(i)+0.5)
		for _, rec := range plot.Records {
			if rec.Range.Contains(x) && rec.Density > 0 {
				out[i] = rec.Density * step
				break
			}
		}
	}
	return out
}

// kernelPlot smears each sample's weight over a triangular window of
// half-width dataKernelWindow times the width of the fallback Cmap bin that
// contains the sample (the mean finite bin width for a sample in a tail),
// never narrower than half a grid cell.
func kernelPlot(samples []Sample, lo, hi, step, dataKernelWindow float64, boundaryCorrection bool, fallback Cmap) []float64 {
	out := make([]float64, gridResolution)
	if len(samples) == 0 {
		return out
	}
	for _, s := range samples {
		if step <= 0 || s.Weight <= 0 {
			continue
		}
		localWidth := localBinWidth(fallback, s.P)
		halfWidth := dataKernelWindow * localWidth
		if halfWidth <= 0 {
			halfWidth = step
		}
		centerIdx := (s.P - lo) / step
		radius := halfWidth / step
		if radius < 0.5 {
			radius = 0.5
		}
		lowI := int(math.Floor(centerIdx - radius))
		highI := int(math.Ceil(centerIdx + radius))
		var kernelSum float64
		weights := make(map[int]float64, highI-lowI+1)
		for i := lowI; i <= highI; i++ {
			dist := math.Abs(float64(i) + 0.5 - centerIdx)
			w := 1 - dist/radius
			if w <= 0 {
				continue
			}
			idx := i
			if idx < 0 || idx >= gridResolution {
				if !boundaryCorrection {
					continue
				}
				idx = reflect(idx, gridResolution)
			}
			weights[idx] += w
			kernelSum += w
		}
		if kernelSum <= 0 {
			idx := clampIndex(int(centerIdx), gridResolution)
			out[idx] += s.Weight
			continue
		}
		for idx, w := range weights {
			out[idx] += s.Weight * w / kernelSum
		}
	}
	return out
}

func reflect(idx, n int) int {
	if idx < 0 {
		idx = -idx - 1
	}
	if idx >= n {
		idx = 2*n - idx - 1
	}
	return clampIndex(idx, n)
}

func clampIndex(idx, n int) int {
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}

func localBinWidth(c Cmap, p float64) float64 {
	r := c.Range(c.Apply(p))
	if math.IsInf(r.Length(), 0) || r.Length() <= 0 {
		return (c.Max() - c.Min()) / float64(c.Size())
	}
	return r.Length()
}

// quantileFromCdf finds x such that the piecewise-linear interpolation of
// cdf (sampled at lo, lo+step, ..., lo+n*step) first reaches target,
// breaking ties by advancing to the next strictly greater CDF value.
func quantileFromCdf(cdf []float64, lo, step, target float64) float64 {
	n := len(cdf) - 1
	for i := 0; i < n; i++ {
		if cdf[i+1] < target {
			continue
		}
		if cdf[i+1] == cdf[i] {
			continue
		}
		frac := (target - cdf[i]) / (cdf[i+1] - cdf[i])
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
		return lo + step*(float64(i)+frac)
	}
	return lo + step*float64(n)
}
