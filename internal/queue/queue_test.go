package queue

import "testing"

func TestPushReportsFull(t *testing.T) {
	q := NewBounded[float64](3)
	if q.Push(1, 1) {
		t.Fatal("should not be full after 1 of 3")
	}
	if q.Push(2, 1) {
		t.Fatal("should not be full after 2 of 3")
	}
	if !q.Push(3, 1) {
		t.Fatal("should be full after 3 of 3")
	}
}

func TestDrainEmpties(t *testing.T) {
	q := NewBounded[float64](2)
	q.Push(1, 1)
	q.Push(2, 1)
	q.Drain()
	if q.Len() != 0 {
		t.Fatalf("expected empty queue after drain, got len %d", q.Len())
	}
}

func TestItemsPreservesOrder(t *testing.T) {
	q := NewBounded[int](4)
	q.Push(10, 1)
	q.Push(20, 2)
	q.Push(30, 3)
	items := q.Items()
	want := []int{10, 20, 30}
	for i, v := range want {
		if items[i].Value != v {
			t.Fatalf("item %d: expected %d, got %d", i, v, items[i].Value)
		}
	}
}

func TestArenaBackedQueueBehavesLikeAPlainOne(t *testing.T) {
	q := NewBounded[float64](arenaThreshold)
	defer q.Release()
	if q.Push(1.5, 1) {
		t.Fatal("should not report full after a single push")
	}
	items := q.Items()
	if len(items) != 1 || items[0].Value != 1.5 {
		t.Fatalf("expected one buffered item with value 1.5, got %+v", items)
	}
	q.Drain()
	if q.Len() != 0 {
		t.Fatalf("expected empty queue after drain, got len %d", q.Len())
	}
}
