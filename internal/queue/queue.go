// Package queue implements the bounded FIFO buffer PeriodicSketch uses to
// accumulate observations between deep updates. It is a single-writer
// simplification of ring.Buffer from the ristretto lineage this module grew
// out of: that buffer used atomics and a drain callback to cope with
// concurrent producers feeding a shared policy; a sketch is single-writer
// (see the root package's concurrency note), so the bookkeeping collapses
// to a plain slice with a logical length.
package queue

import "github.com/dsketch/flowmap/internal/arena"

// arenaThreshold is the capacity above which a queue's weight column
// moves off the Go heap and into an mmap'd arena, so a caller
// configuring a very large queueSize does not hand the garbage
// collector a correspondingly large slice to scan every cycle.
const arenaThreshold = 1 << 16

// Observation is one buffered (position, weight) pair awaiting the next
// deep update.
type Observation[A any] struct {
	Value  A
	Weight float64
}

// Bounded is a fixed-capacity FIFO. Push reports whether the queue is now
// full (the caller's cue to trigger a deep update and Drain). Values and
// weights are stored in parallel slices rather than a slice of structs so
// that the weight column - always float64 regardless of A - can be backed
// by an arena when the queue is large.
type Bounded[A any] struct {
	values  []A
	weights []float64
	backing *arena.Float64
	n       int
	cap     int
}

// NewBounded returns an empty queue that holds at most cap observations.
func NewBounded[A any](cap int) *Bounded[A] {
	if cap < 1 {
		panic("queue: cap must be >= 1")
	}
	b := &Bounded[A]{values: make([]A, cap), cap: cap}
	if cap >= arenaThreshold {
		if a, err := arena.NewFloat64(cap); err == nil {
			b.backing = a
			b.weights = a.Slice()
		}
	}
	if b.weights == nil {
		b.weights = make([]float64, cap)
	}
	return b
}

// Push appends an observation and reports whether the queue is now full.
func (b *Bounded[A]) Push(v A, weight float64) (full bool) {
	b.values[b.n] = v
	b.weights[b.n] = weight
	b.n++
	return b.n >= b.cap
}

// Len returns the number of buffered observations.
func (b *Bounded[A]) Len() int { return b.n }

// Cap returns the queue's fixed capacity.
func (b *Bounded[A]) Cap() int { return b.cap }

// Items returns the buffered observations in arrival order.
func (b *Bounded[A]) Items() []Observation[A] {
	out := make([]Observation[A], b.n)
	for i := 0; i < b.n; i++ {
		out[i] = Observation[A]{Value: b.values[i], Weight: b.weights[i]}
	}
	return out
}

// Drain empties the queue without releasing its backing storage.
func (b *Bounded[A]) Drain() {
	b.n = 0
}

// Release frees the queue's arena-backed storage, if any. A drained,
// released queue must not be pushed to again.
func (b *Bounded[A]) Release() error {
	if b.backing != nil {
		return b.backing.Release()
	}
	return nil
}
