package flowmap

// PolicyKind distinguishes the members of the update-policy family the
// original design expressed as a class hierarchy (Simple, Adaptive,
// Periodic, Recur). Here they are one tagged union: the variants only ever
// disagreed about when a deep update fires, never about how queries read
// the resulting generation stack, so there is exactly one Sketch type and
// one set of query methods regardless of which kind a sketch was built
// with.
type PolicyKind int

const (
	// PolicySimple narrow-updates every observation and never triggers a
	// deep update on its own; callers drive rebinning explicitly via
	// DeepUpdate/Rearrange. No buffer is allocated.
	PolicySimple PolicyKind = iota
	// PolicyPeriodic buffers observations and deep-updates every
	// StartThreshold arrivals or when the buffer fills, whichever comes
	// first. This is the flavour described in the spec as PeriodicSketch.
	PolicyPeriodic
	// PolicyAdaptive behaves like PolicyPeriodic but can also trigger a
	// deep update early, before the buffer fills or the threshold is hit,
	// when the buffered batch looks unusually volatile (see
	// NoveltyThreshold).
	PolicyAdaptive
	// PolicyRecur behaves like PolicyPeriodic but additionally performs a
	// bare Rearrange every RearrangeEvery deep updates, aging the stack
	// down on a fixed cadence even without fresh evidence to rebin from.
	PolicyRecur
)

// UpdatePolicy selects a PolicyKind and carries the parameters specific to
// it. Zero value is PolicySimple.
type UpdatePolicy struct {
	Kind PolicyKind

	// NoveltyThreshold is the coefficient-of-variation cutoff PolicyAdaptive
	// uses to decide a buffered batch is worth rebinning early. Ignored by
	// other kinds.
	NoveltyThreshold float64

	// RearrangeEvery is the number of deep updates PolicyRecur lets pass
	// before also performing a bare Rearrange. Ignored by other kinds.
	RearrangeEvery int
}
