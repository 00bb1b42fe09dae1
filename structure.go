package flowmap

import (
	"github.com/dsketch/flowmap/cmap"
	"github.com/dsketch/flowmap/counter"
)

// Structure is one generation: a Cmap paired with the HCounter built over
// it.
type Structure struct {
	Cmap    cmap.Cmap
	Counter *counter.HCounter
	seq     uint64 // monotonically increasing; lower is older
}

// genEntry is the element the eviction heap orders on: a generation's
// sequence number plus its position in Structures.gens at insertion time.
// The position is not updated as later generations are prepended, so
// Prepend finds the evicted generation in gens by seq.
type genEntry struct {
	seq   uint64
	index int
}

// genHeap is a binary min-heap over genEntry ordered by seq, so the oldest
// surviving generation is always the eviction candidate at Extract time.
// Structures evicts strictly by age (FIFO) today; routing eviction through
// a heap rather than always popping the slice tail keeps the door open for
// a future policy that ages generations out by something other than pure
// insertion order (e.g. a generation that still carries unusually high
// mass) without reshaping Structures' public surface.
type genHeap struct {
	entries []genEntry
}

func (h *genHeap) insert(e genEntry) {
	h.entries = append(h.entries, e)
	h.heapifyUp(len(h.entries) - 1)
}

func (h *genHeap) extractOldest() (genEntry, bool) {
	if len(h.entries) == 0 {
		return genEntry{}, false
	}
	oldest := h.entries[0]
	last := len(h.entries) - 1
	h.entries[0] = h.entries[last]
	h.entries = h.entries[:last]
	if len(h.entries) > 0 {
		h.heapifyDown(0)
	}
	return oldest, true
}

func (h *genHeap) heapifyUp(index int) {
	for index > 0 {
		parent := (index - 1) / 2
		if h.entries[parent].seq <= h.entries[index].seq {
			break
		}
		h.entries[parent], h.entries[index] = h.entries[index], h.entries[parent]
		index = parent
	}
}

func (h *genHeap) heapifyDown(index int) {
	for {
		smallest := index
		left, right := 2*index+1, 2*index+2
		if left < len(h.entries) && h.entries[left].seq < h.entries[smallest].seq {
			smallest = left
		}
		if right < len(h.entries) && h.entries[right].seq < h.entries[smallest].seq {
			smallest = right
		}
		if smallest == index {
			break
		}
		h.entries[index], h.entries[smallest] = h.entries[smallest], h.entries[index]
		index = smallest
	}
}

// Structures is the non-empty, bounded FIFO of generations at the heart of
// a sketch: youngest at index 0, oldest at the end. Its length never
// exceeds depth (cmapNo).
type Structures struct {
	gens    []Structure
	heap    genHeap
	depth   int
	nextSeq uint64
}

// NewStructures seeds the stack with a single generation.
func NewStructures(initial Structure, depth int) *Structures {
	if depth < 1 {
		panic("flowmap: cmapNo must be >= 1")
	}
	initial.seq = 0
	s := &Structures{
		gens:    []Structure{initial},
		depth:   depth,
		nextSeq: 1,
	}
	s.heap.insert(genEntry{seq: 0, index: 0})
	return s
}

// Len is the current number of retained generations.
func (s *Structures) Len() int { return len(s.gens) }

// Depth is the configured maximum, cmapNo.
func (s *Structures) Depth() int { return s.depth }

// Young returns the head (most recent) generation. Panics if the stack is
// empty, which would indicate a bug elsewhere in this package — the stack
// is an invariant-preserving type and must never be constructed empty.
func (s *Structures) Young() Structure {
	if len(s.gens) == 0 {
		panicEmptyStructures("Young")
	}
	return s.gens[0]
}

// At returns the k-th generation, k=0 is youngest.
func (s *Structures) At(k int) Structure {
	return s.gens[k]
}

// Each calls f for every generation, youngest first, passing its age index
// k (used by callers to compute the exp(-k) weight).
func (s *Structures) Each(f func(k int, g Structure)) {
	for k, g := range s.gens {
		f(k, g)
	}
}

// NarrowUpdate increments the young generation's counter at bin i by
// weight. It does not touch the Cmap.
func (s *Structures) NarrowUpdate(i int, weight float64) {
	if len(s.gens) == 0 {
		panicEmptyStructures("NarrowUpdate")
	}
	s.gens[0].Counter.Update(i, weight)
}

// Prepend pushes a freshly rebinned generation to the front of the stack.
// If the stack would now exceed depth, the oldest generation is evicted and
// returned.
func (s *Structures) Prepend(next Structure) (evicted *Structure) {
	next.seq = s.nextSeq
	s.nextSeq++

	shifted := make([]Structure, 0, len(s.gens)+1)
	shifted = append(shifted, next)
	shifted = append(shifted, s.gens...)
	s.gens = shifted
	s.heap.insert(genEntry{seq: next.seq, index: 0})

	if len(s.gens) <= s.depth {
		return nil
	}

	victim, ok := s.heap.extractOldest()
	if !ok {
		panicEmptyStructures("Prepend")
	}
	for i, g := range s.gens {
		if g.seq == victim.seq {
			ev := g
			s.gens = append(s.gens[:i], s.gens[i+1:]...)
			return &ev
		}
	}
	panicEmptyStructures("Prepend")
	return nil
}
