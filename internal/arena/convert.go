package arena

import "unsafe"

func bytesToFloat64(b []byte, n int) []float64 {
	return unsafe.Slice((*float64)(unsafe.Pointer(&b[0])), n)
}

func float64ToBytes(f []float64) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&f[0])), len(f)*8)
}
