package arena

import "testing"

func TestNewFloat64IsZeroed(t *testing.T) {
	f, err := NewFloat64(128)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer f.Release()
	for i, v := range f.Slice() {
		if v != 0 {
			t.Fatalf("expected zeroed slot at %d, got %v", i, v)
		}
	}
}

func TestFloat64SliceIsWritable(t *testing.T) {
	f, err := NewFloat64(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer f.Release()
	s := f.Slice()
	s[3] = 42
	if f.Slice()[3] != 42 {
		t.Fatalf("expected write to persist, got %v", f.Slice()[3])
	}
}

func TestReleaseIsIdempotentOnNilData(t *testing.T) {
	f, err := NewFloat64(4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.Release(); err != nil {
		t.Fatalf("unexpected error releasing: %v", err)
	}
	if err := f.Release(); err != nil {
		t.Fatalf("expected release to be a no-op after data is nil, got: %v", err)
	}
}
