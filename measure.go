package flowmap

// Measure is a bijection between a domain type A and the real line, used to
// project arbitrary observations into the space the sketch actually buckets.
// It is supplied by the caller; flowmap never constructs one itself other
// than Identity.
type Measure[A any] struct {
	To   func(A) float64
	From func(float64) A
}

// Identity is the Measure for float64 observations: the common case where
// the stream already lives on the real line.
func Identity() Measure[float64] {
	return Measure[float64]{
		To:   func(p float64) float64 { return p },
		From: func(p float64) float64 { return p },
	}
}
