package counter

import "testing"

func TestUncompressedIsExact(t *testing.T) {
	c := NewUncompressed(16)
	c.Update(3, 1)
	c.Update(3, 1)
	c.Update(3, 1)
	c.Update(3, 1)
	if got := c.Count(3); got != 4 {
		t.Fatalf("expected 4, got %v", got)
	}
	if got := c.Count(4); got != 0 {
		t.Fatalf("expected neighbor untouched, got %v", got)
	}
}

func TestUncompressedSum(t *testing.T) {
	c := NewUncompressed(8)
	c.Update(0, 1)
	c.Update(1, 2)
	c.Update(7, 3)
	if got := c.Sum(); got != 6 {
		t.Fatalf("expected sum 6, got %v", got)
	}
}

func TestCompressedNeverUndercounts(t *testing.T) {
	c := NewCompressed(4, 16, 42)
	want := make([]float64, 16)
	for i := 0; i < 100; i++ {
		c.Update(i%16, 1)
		want[i%16]++
	}
	for i := 0; i < 16; i++ {
		if got := c.Count(i); got < want[i] {
			t.Fatalf("count at %d must not undercount: got %v, true count %v", i, got, want[i])
		}
	}
}

func TestCompressedDeterministic(t *testing.T) {
	a := NewCompressed(3, 32, 7)
	b := NewCompressed(3, 32, 7)
	for i := 0; i < 50; i++ {
		a.Update(i, float64(i))
		b.Update(i, float64(i))
	}
	for i := 0; i < 50; i++ {
		if a.Count(i) != b.Count(i) {
			t.Fatalf("counters with identical seed diverged at %d: %v != %v", i, a.Count(i), b.Count(i))
		}
	}
}

func TestScaleHalvesCounts(t *testing.T) {
	c := NewUncompressed(4)
	c.Update(0, 10)
	c.Scale(0.5)
	if got := c.Count(0); got != 5 {
		t.Fatalf("expected 5 after scaling, got %v", got)
	}
}

func TestScaleNeverNegative(t *testing.T) {
	c := NewUncompressed(4)
	c.Update(0, 10)
	c.Scale(-1)
	if got := c.Count(0); got < 0 {
		t.Fatalf("expected non-negative count, got %v", got)
	}
}

func TestFreshIsZeroedSameShape(t *testing.T) {
	c := NewCompressed(2, 10, 1)
	c.Update(5, 100)
	fresh := c.Fresh()
	if fresh.Depth() != c.Depth() || fresh.Width() != c.Width() {
		t.Fatal("fresh counter shape mismatch")
	}
	if fresh.Count(5) != 0 {
		t.Fatalf("expected fresh counter to be zeroed, got %v", fresh.Count(5))
	}
}
