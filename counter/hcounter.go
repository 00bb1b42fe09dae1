// Package counter implements HCounter, a hashed multi-row count-min counter
// over bin indices. An update adds its delta to the hashed cell of every
// row (plain count-min update, not conservative update). It follows the
// cmSketch design in the ristretto lineage this module grew out of — a
// d x w matrix of counters addressed through independent hashes — but
// generalized from 4-bit saturating integer counters tracking key
// frequency to non-negative float64 counters tracking bin mass, since a
// density sketch needs arbitrary observation weights and decay, not just
// "was this key seen again".
package counter

import (
	"github.com/cespare/xxhash/v2"
	farm "github.com/dgryski/go-farm"
)

// HCounter is a d x w matrix of non-negative counters, queried through d
// independent hash functions mapping bin index -> [0, w).
//
// Two construction modes, matching the spec: Uncompressed uses w equal to
// the number of addressable indices and a single identity row, so queries
// are exact; Compressed uses a fixed width smaller than the index space and
// multiple hashed rows, trading exactness for bounded memory.
type HCounter struct {
	rows       [][]float64
	depth      int
	width      int
	seed       uint64
	compressed bool
}

// NewUncompressed returns the exact counter used when cmapSize <= counterSize:
// width == size, depth == 1, h0(i) = i. Callers addressing a Cmap's full
// index space (the cmapSize finite bins plus the two sentinel tails) must
// pass size == cmapSize+2, not cmapSize, or indices for the top bin and the
// top sentinel will be out of range.
func NewUncompressed(size int) *HCounter {
	if size < 1 {
		panic("counter: size must be >= 1")
	}
	return &HCounter{
		rows:       [][]float64{make([]float64, size)},
		depth:      1,
		width:      size,
		compressed: false,
	}
}

// NewCompressed returns a count-min counter of depth d and width w, with
// hashes seeded deterministically from seed so that two counters built with
// the same configuration and seed over the same stream agree exactly.
func NewCompressed(depth, width int, seed uint64) *HCounter {
	if depth < 1 || width < 1 {
		panic("counter: depth and width must be >= 1")
	}
	rows := make([][]float64, depth)
	for i := range rows {
		rows[i] = make([]float64, width)
	}
	return &HCounter{
		rows:       rows,
		depth:      depth,
		width:      width,
		seed:       seed,
		compressed: true,
	}
}

// Depth is d, the number of rows.
func (h *HCounter) Depth() int { return h.depth }

// Width is w, the number of columns per row.
func (h *HCounter) Width() int { return h.width }

// hash returns the column hashed for row j from index i. Even rows use the
// xxhash of i XORed with a value derived from the counter's seed and the row
// number; odd rows use go-farm's hash seeded from the counter's seed and the
// row number, so adjacent rows come from two different hash families.
func (h *HCounter) hash(j int, i int) int {
	if !h.compressed {
		return i
	}
	buf := make([]byte, 8)
	ux := uint64(int64(i))
	for k := 0; k < 8; k++ {
		buf[k] = byte(ux >> (8 * k))
	}
	var v uint64
	if j%2 == 0 {
		v = xxhash.Sum64(buf) ^ (h.seed + uint64(j)*0x9E3779B97F4A7C15)
	} else {
		v = farm.Hash64WithSeed(buf, h.seed+uint64(j)*0xC2B2AE3D27D4EB4F)
	}
	return int(v % uint64(h.width))
}

// Update adds delta (>= 0) to the chosen cell in every row.
func (h *HCounter) Update(i int, delta float64) {
	if delta < 0 {
		delta = 0
	}
	for j := 0; j < h.depth; j++ {
		col := h.hash(j, i)
		h.rows[j][col] += delta
	}
}

// Count returns min_j C[j][h_j(i)].
func (h *HCounter) Count(i int) float64 {
	min := h.rows[0][h.hash(0, i)]
	for j := 1; j < h.depth; j++ {
		if v := h.rows[j][h.hash(j, i)]; v < min {
			min = v
		}
	}
	return min
}

// Sum returns the total mass held by the counter: the row sum for
// uncompressed counters (exact), or the minimum row sum for compressed
// counters (a standard count-min under-estimator of the true total).
func (h *HCounter) Sum() float64 {
	var min float64
	for j := 0; j < h.depth; j++ {
		var s float64
		for _, v := range h.rows[j] {
			s += v
		}
		if j == 0 || s < min {
			min = s
		}
	}
	return min
}

// Scale multiplies every cell by r, r in [0, 1]. Used to age a generation's
// counter down without discarding it outright.
func (h *HCounter) Scale(r float64) {
	if r < 0 {
		r = 0
	}
	for j := range h.rows {
		row := h.rows[j]
		for k := range row {
			row[k] *= r
		}
	}
}

// Fresh returns a new, zeroed counter with the same shape and seed as h.
func (h *HCounter) Fresh() *HCounter {
	if !h.compressed {
		return NewUncompressed(h.width)
	}
	return NewCompressed(h.depth, h.width, h.seed)
}
