// Package cmap implements the cumulative map: an ordered partition of the
// real line into variable-width bins, found by binary search, and the
// rebinning procedure that derives a new partition from an empirical CDF.
//
// Layout follows z.HistogramData from the ristretto lineage this package
// grew out of: a sorted slice of boundaries, except that a Cmap holds no
// per-bucket counts (those live in package counter), the buckets are
// addressed both ways (value -> index, index -> range), and the boundaries
// move over time instead of staying fixed powers of two.
package cmap

import (
	"math"
	"sort"
)

// RangeP is a half-open real interval [Start, End).
type RangeP struct {
	Start float64
	End   float64
}

// Length returns End - Start.
func (r RangeP) Length() float64 {
	return r.End - r.Start
}

// Contains reports whether p lies in [Start, End), with a range ending at
// +Inf treated as closed on the right.
func (r RangeP) Contains(p float64) bool {
	if math.IsNaN(p) {
		return false
	}
	if p < r.Start {
		return false
	}
	if math.IsInf(r.End, 1) {
		return true
	}
	return p < r.End
}

// Overlap returns the length of the intersection of r with [start, end].
func (r RangeP) Overlap(start, end float64) float64 {
	lo := math.Max(r.Start, start)
	hi := math.Min(r.End, end)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// Cmap is an ordered sequence of boundaries b0 < b1 < ... < bN (N = Size())
// plus the two implicit tails (-Inf, b0) and [bN, +Inf). Index 0 is the
// bottom tail, index k+1 is [b_k, b_{k+1}) for k in [0, N-1], and index N+1
// is the top tail.
type Cmap struct {
	bounds []float64 // len == Size()+1
}

// New wraps a strictly increasing slice of N+1 boundaries into a Cmap of N
// finite bins. It panics if bounds is not strictly increasing or has fewer
// than two elements; callers are expected to have validated configuration
// already (see the root package's Empty).
func New(bounds []float64) Cmap {
	if len(bounds) < 2 {
		panic("cmap: need at least two boundaries")
	}
	for i := 1; i < len(bounds); i++ {
		if !(bounds[i-1] < bounds[i]) {
			panic("cmap: boundaries must be strictly increasing")
		}
	}
	cp := make([]float64, len(bounds))
	copy(cp, bounds)
	return Cmap{bounds: cp}
}

// Uniform returns the Cmap with size-1 interior boundaries equally spaced on
// [start, end], i.e. size finite bins of equal width.
func Uniform(size int, start, end float64) Cmap {
	if size < 1 {
		panic("cmap: size must be >= 1")
	}
	bounds := make([]float64, size+1)
	width := (end - start) / float64(size)
	for i := 0; i <= size; i++ {
		bounds[i] = start + width*float64(i)
	}
	bounds[size] = end // avoid float drift on the last boundary
	return Cmap{bounds: bounds}
}

// Size returns the number of finite bins, N.
func (c Cmap) Size() int {
	return len(c.bounds) - 1
}

// Min is the lowest finite boundary, b0.
func (c Cmap) Min() float64 { return c.bounds[0] }

// Max is the highest finite boundary, bN.
func (c Cmap) Max() float64 { return c.bounds[len(c.bounds)-1] }

// Apply returns the bin index containing p, in [0, Size()+1].
func (c Cmap) Apply(p float64) int {
	n := len(c.bounds) - 1
	if math.IsNaN(p) {
		return 0
	}
	if p < c.bounds[0] {
		return 0
	}
	if p >= c.bounds[n] {
		return n + 1
	}
	// find k such that bounds[k] <= p < bounds[k+1]
	k := sort.Search(len(c.bounds), func(i int) bool { return c.bounds[i] > p }) - 1
	if k < 0 {
		k = 0
	}
	return k + 1
}

// Range is the inverse of Apply: it returns the RangeP covering index i.
func (c Cmap) Range(i int) RangeP {
	n := len(c.bounds) - 1
	switch {
	case i <= 0:
		return RangeP{Start: math.Inf(-1), End: c.bounds[0]}
	case i >= n+1:
		return RangeP{Start: c.bounds[n], End: math.Inf(1)}
	default:
		k := i - 1
		return RangeP{Start: c.bounds[k], End: c.bounds[k+1]}
	}
}

// Bins returns the full covering of the real line in ascending order,
// including the two sentinel tails, indices 0..Size()+1.
func (c Cmap) Bins() []RangeP {
	n := c.Size()
	out := make([]RangeP, 0, n+2)
	for i := 0; i <= n+1; i++ {
		out = append(out, c.Range(i))
	}
	return out
}

// Bounds returns a copy of the underlying boundary slice, b0..bN.
func (c Cmap) Bounds() []float64 {
	cp := make([]float64, len(c.bounds))
	copy(cp, c.bounds)
	return cp
}
