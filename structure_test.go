package flowmap

import (
	"testing"

	"github.com/dsketch/flowmap/cmap"
	"github.com/dsketch/flowmap/counter"
)

func newStructure(size int) Structure {
	return Structure{Cmap: cmap.Uniform(size, 0, 10), Counter: counter.NewUncompressed(size)}
}

func TestNewStructuresStartsAtOne(t *testing.T) {
	s := NewStructures(newStructure(4), 3)
	if s.Len() != 1 {
		t.Fatalf("expected len 1, got %d", s.Len())
	}
}

func TestPrependGrowsUntilDepth(t *testing.T) {
	s := NewStructures(newStructure(4), 3)
	if ev := s.Prepend(newStructure(4)); ev != nil {
		t.Fatal("expected no eviction while growing")
	}
	if s.Len() != 2 {
		t.Fatalf("expected len 2, got %d", s.Len())
	}
	if ev := s.Prepend(newStructure(4)); ev != nil {
		t.Fatal("expected no eviction at exactly depth")
	}
	if s.Len() != 3 {
		t.Fatalf("expected len 3, got %d", s.Len())
	}
}

func TestPrependEvictsOldestAtSteadyState(t *testing.T) {
	s := NewStructures(newStructure(4), 2)
	first := s.Young()
	s.Prepend(newStructure(4))
	if s.Len() != 2 {
		t.Fatalf("expected len 2, got %d", s.Len())
	}
	ev := s.Prepend(newStructure(4))
	if ev == nil {
		t.Fatal("expected an eviction at steady state")
	}
	if ev.seq != first.seq {
		t.Fatalf("expected the original oldest generation evicted, got seq %d want %d", ev.seq, first.seq)
	}
	if s.Len() != 2 {
		t.Fatalf("expected size bound to hold, got %d", s.Len())
	}
}

func TestNarrowUpdateOnlyTouchesYoung(t *testing.T) {
	s := NewStructures(newStructure(4), 2)
	s.Prepend(newStructure(4))
	s.NarrowUpdate(1, 5)
	if got := s.Young().Counter.Count(1); got != 5 {
		t.Fatalf("expected young counter updated, got %v", got)
	}
	if got := s.At(1).Counter.Count(1); got != 0 {
		t.Fatalf("expected older generation untouched, got %v", got)
	}
}

func TestGenHeapExtractsOldestFirst(t *testing.T) {
	var h genHeap
	h.insert(genEntry{seq: 30, index: 0})
	h.insert(genEntry{seq: 25, index: 1})
	h.insert(genEntry{seq: 35, index: 2})
	h.insert(genEntry{seq: 20, index: 3})

	wantOrder := []uint64{20, 25, 30, 35}
	for i, want := range wantOrder {
		got, ok := h.extractOldest()
		if !ok {
			t.Fatalf("extractOldest %d: expected an entry, got none", i)
		}
		if got.seq != want {
			t.Fatalf("extractOldest %d: got seq %d, want %d", i, got.seq, want)
		}
	}
	if _, ok := h.extractOldest(); ok {
		t.Fatal("expected extractOldest on an empty heap to report false")
	}
}
