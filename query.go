package flowmap

import (
	"math"

	"github.com/dsketch/flowmap/cmap"
)

// ageWeight is the exp(-k) geometric age decay weight for generation k
// (0 = youngest).
func ageWeight(k int) float64 {
	return math.Exp(-float64(k))
}

// countP is Count in measure space: the age-weighted sum, across every
// retained generation, of each generation's interpolated bin overlap with
// [ps, pe].
func (s *Sketch[A]) countP(ps, pe float64) float64 {
	var weightedSum, totalWeight float64
	s.structures.Each(func(k int, g Structure) {
		w := ageWeight(k)
		totalWeight += w
		weightedSum += w * countForGeneration(g, ps, pe)
	})
	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}

func countForGeneration(g Structure, ps, pe float64) float64 {
	var total float64
	for i, r := range g.Cmap.Bins() {
		frac := fraction(r, ps, pe)
		if frac == 0 {
			continue
		}
		total += frac * g.Counter.Count(i)
	}
	return total
}

// fraction is the overlap length of r with [s, e] divided by r's own
// length, with the convention that an infinite-length bin (a sentinel tail)
// contributes only when [s, e] covers it entirely (overlap also infinite),
// in which case it contributes in full.
func fraction(r cmap.RangeP, s, e float64) float64 {
	overlap := r.Overlap(s, e)
	if overlap <= 0 {
		return 0
	}
	length := r.Length()
	if math.IsInf(length, 0) {
		if math.IsInf(overlap, 0) {
			return 1
		}
		return 0
	}
	return overlap / length
}

// Count returns the age-weighted estimate of observation mass in [start,
// end], interpolating at bin boundaries.
func (s *Sketch[A]) Count(start, end A) float64 {
	return s.countP(s.measure.To(start), s.measure.To(end))
}

// Sum is Count over the entire real line: the age-weighted total mass held
// by the sketch.
func (s *Sketch[A]) Sum() float64 {
	return s.countP(math.Inf(-1), math.Inf(1))
}

// probabilityP is Probability in measure space.
func (s *Sketch[A]) probabilityP(ps, pe float64) float64 {
	total := s.Sum()
	if total > 0 {
		return s.countP(ps, pe) / total
	}
	return s.flatProbability(ps, pe)
}

// flatProbability is the non-informative fallback used while a sketch has
// accumulated zero mass: a uniform density over the young Cmap's finite
// support [min, max], zero outside it. Clamping the query range to that
// support (rather than using its raw, possibly infinite, length) is what
// keeps Cdf bounded in [0, 1] even for queries that reach to +-Inf.
func (s *Sketch[A]) flatProbability(ps, pe float64) float64 {
	young := s.structures.Young()
	min, max := young.Cmap.Min(), young.Cmap.Max()
	if !(max > min) {
		return 0
	}
	flatDensity := 1 / (max - min)
	overlap := (cmap.RangeP{Start: min, End: max}).Overlap(ps, pe)
	return flatDensity * overlap
}

// Probability returns Count(start, end) / Sum(), or a flat-density fallback
// proportional to range length when the sketch has observed zero mass.
func (s *Sketch[A]) Probability(start, end A) float64 {
	return s.probabilityP(s.measure.To(start), s.measure.To(end))
}

// densityP is the instantaneous density at range r: Probability(r) /
// r.Length(), with an infinite-length range (a sentinel tail) always
// yielding 0 since its mass, however large, is spread over infinite width.
func (s *Sketch[A]) densityP(r cmap.RangeP) float64 {
	length := r.Length()
	if length <= 0 {
		return 0
	}
	p := s.probabilityP(r.Start, r.End)
	if math.IsInf(length, 0) {
		return 0
	}
	return p / length
}

// sampling produces the DensityPlot over g's Cmap bins, used both as the
// DensityPlot query result and as prior evidence for the next rebin.
func (s *Sketch[A]) sampling(g Structure) cmap.DensityPlot {
	bins := g.Cmap.Bins()
	records := make([]cmap.Record, len(bins))
	for i, r := range bins {
		records[i] = cmap.Record{Range: r, Density: s.densityP(r)}
	}
	return cmap.DensityPlot{Records: records}
}

// DensityPlot returns one density record per bin of the young Cmap,
// including the two sentinel tails: the first record ends at the Cmap's
// lower bound, the last starts at its upper bound.
func (s *Sketch[A]) DensityPlot() cmap.DensityPlot {
	return s.sampling(s.structures.Young())
}

// FastPdf locates the young Cmap's bin containing a, forms its three-bin
// neighbourhood, and linearly interpolates the per-bin densities at a's
// position. Beyond the Cmap's support it clamps to the nearest finite
// neighbour's density rather than extrapolating from an infinite-width
// tail bin.
func (s *Sketch[A]) FastPdf(a A) float64 {
	return s.fastPdfP(s.measure.To(a))
}

// Pdf is an alias for FastPdf: the only Pdf implementation this sketch
// provides is the interpolated one over its own sampling plot.
func (s *Sketch[A]) Pdf(a A) float64 {
	return s.FastPdf(a)
}

func (s *Sketch[A]) fastPdfP(p float64) float64 {
	young := s.structures.Young()
	n := young.Cmap.Size()
	i := young.Cmap.Apply(p)

	if i <= 0 || i >= n+1 {
		nearest := 1
		if i >= n+1 {
			nearest = n
		}
		return s.densityP(young.Cmap.Range(nearest))
	}

	lo, hi := i-1, i+1
	if lo < 1 {
		lo = 1
	}
	if hi > n {
		hi = n
	}

	type point struct{ x, d float64 }
	pts := make([]point, 0, 3)
	for k := lo; k <= hi; k++ {
		r := young.Cmap.Range(k)
		pts = append(pts, point{x: (r.Start + r.End) / 2, d: s.densityP(r)})
	}
	if len(pts) == 1 {
		return pts[0].d
	}
	if p <= pts[0].x {
		return pts[0].d
	}
	if p >= pts[len(pts)-1].x {
		return pts[len(pts)-1].d
	}
	for j := 0; j < len(pts)-1; j++ {
		if p >= pts[j].x && p <= pts[j+1].x {
			frac := (p - pts[j].x) / (pts[j+1].x - pts[j].x)
			return pts[j].d + frac*(pts[j+1].d-pts[j].d)
		}
	}
	return pts[len(pts)-1].d
}

// Cdf returns Probability(-Inf, a): the fraction of observed mass at or
// below a, monotone non-decreasing and within [0, 1].
func (s *Sketch[A]) Cdf(a A) float64 {
	return s.probabilityP(math.Inf(-1), s.measure.To(a))
}

// Median bisects Cdf over the young Cmap's support to find x with
// Cdf(x) ~= 0.5.
func (s *Sketch[A]) Median() A {
	young := s.structures.Young()
	lo, hi := young.Cmap.Min(), young.Cmap.Max()
	for iter := 0; iter < 64; iter++ {
		mid := lo + (hi-lo)/2
		if s.probabilityP(math.Inf(-1), mid) < 0.5 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return s.measure.From(lo + (hi-lo)/2)
}
