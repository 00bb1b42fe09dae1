// Package arena backs large fixed-size float64 buffers with anonymous
// mmap'd memory instead of the Go heap, the same technique
// ristretto's z package uses to keep big buffers out of the garbage
// collector's scan set. It trades a syscall at construction time for
// zero GC pressure from buffers that live for the life of a sketch.
package arena

import "golang.org/x/sys/unix"

// Float64 is a fixed-capacity []float64 backed by an anonymous mmap
// region.
type Float64 struct {
	data []float64
}

// NewFloat64 mmaps n*8 bytes and returns a Float64 viewing it as n
// float64 slots, all zeroed.
func NewFloat64(n int) (*Float64, error) {
	if n < 1 {
		panic("arena: capacity must be >= 1")
	}
	buf, err := unix.Mmap(-1, 0, n*8, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}
	return &Float64{data: bytesToFloat64(buf, n)}, nil
}

// Slice returns the backing float64 view. The caller must not retain
// it past Release.
func (f *Float64) Slice() []float64 { return f.data }

// Release unmaps the backing memory. The Float64 must not be used
// afterward.
func (f *Float64) Release() error {
	if f.data == nil {
		return nil
	}
	b := float64ToBytes(f.data)
	f.data = nil
	return unix.Munmap(b)
}
