// Package flowmap implements an adaptive streaming sketch for non-parametric
// density estimation over an unbounded stream of real-valued observations.
// Unlike a fixed-bin histogram, the sketch continuously re-chooses its
// quantization boundaries (the Cmap) so that regions of high sample density
// get finer resolution, without prior knowledge of the input distribution.
//
// The three subsystems doing the real work are package cmap (the bin
// partition and its rebinning rule), package counter (the hashed count-min
// counter over bin indices), and this package's Structures stack (the
// bounded, age-weighted FIFO of (Cmap, HCounter) generations). Everything
// else — Count, Probability, Pdf, Cdf, DensityPlot, Median — is a read view
// over that stack.
//
// A Sketch is logically single-writer: Update, NarrowUpdate, DeepUpdate and
// Rearrange are not safe to call from multiple goroutines concurrently on
// the same value, though independent sketches may be built in parallel.
package flowmap

import (
	"fmt"
	"hash/fnv"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/dsketch/flowmap/cmap"
	"github.com/dsketch/flowmap/counter"
	"github.com/dsketch/flowmap/internal/queue"
)

// SketchConf is the configuration record every Sketch is built from.
type SketchConf struct {
	CmapSize           int     // finite bins per generation, >= 2
	CmapNo             int     // generations retained, >= 1
	CmapStart          float64 // initial uniform Cmap lower bound
	CmapEnd            float64 // initial uniform Cmap upper bound
	CounterSize        int     // HCounter width, >= 1
	CounterNo          int     // HCounter depth, >= 1
	QueueSize          int     // PeriodicSketch buffer, >= 1
	StartThreshold     int     // deep-update trigger, in arrivals
	DataKernelWindow   float64 // rebinning smoothing window, > 0
	BoundaryCorrection bool    // mirror-reflect mass at Cmap edges
	Policy             UpdatePolicy
}

// validate returns a ConfigurationError for the first inconsistent field,
// or nil if conf can build a sketch.
func (c SketchConf) validate() error {
	switch {
	case c.CmapSize < 2:
		return configErr("CmapSize", "must be >= 2")
	case c.CmapNo < 1:
		return configErr("CmapNo", "must be >= 1")
	case c.CounterSize < 1:
		return configErr("CounterSize", "must be >= 1")
	case c.CounterNo < 1:
		return configErr("CounterNo", "must be >= 1")
	case c.CmapEnd <= c.CmapStart:
		return configErr("CmapEnd", "must be greater than CmapStart")
	case c.DataKernelWindow <= 0:
		return configErr("DataKernelWindow", "must be > 0")
	}
	if c.Policy.Kind != PolicySimple && c.QueueSize < 1 {
		return configErr("QueueSize", "must be >= 1")
	}
	return nil
}

func (c SketchConf) seed() uint64 {
	h := fnv.New64a()
	var buf [40]byte
	putF(buf[0:8], float64(c.CmapSize))
	putF(buf[8:16], float64(c.CmapNo))
	putF(buf[16:24], float64(c.CounterSize))
	putF(buf[24:32], float64(c.CounterNo))
	putF(buf[32:40], c.DataKernelWindow)
	_, _ = h.Write(buf[:])
	return h.Sum64()
}

func putF(b []byte, f float64) {
	bits := math.Float64bits(f)
	for i := 0; i < 8; i++ {
		b[i] = byte(bits >> (8 * i))
	}
}

// Sketch is the concrete, single-writer density sketch over domain type A.
type Sketch[A any] struct {
	measure     Measure[A]
	conf        SketchConf
	structures  *Structures
	buffer      *queue.Bounded[float64]
	priorPlot   cmap.DensityPlot
	arrivals    uint64
	deepUpdates uint64
}

// Empty constructs a sketch with a single initial generation and no
// observations. It is the only operation that can fail, and only on
// internally inconsistent configuration.
func Empty[A any](measure Measure[A], conf SketchConf) (*Sketch[A], error) {
	if err := conf.validate(); err != nil {
		return nil, err
	}
	initialCmap := cmap.Uniform(conf.CmapSize, conf.CmapStart, conf.CmapEnd)
	initialCounter := newCounterFor(conf)
	structures := NewStructures(Structure{Cmap: initialCmap, Counter: initialCounter}, conf.CmapNo)

	s := &Sketch[A]{
		measure:    measure,
		conf:       conf,
		structures: structures,
	}
	if conf.Policy.Kind != PolicySimple {
		qs := conf.QueueSize
		if qs < 1 {
			qs = 1
		}
		s.buffer = queue.NewBounded[float64](qs)
	}
	return s, nil
}

// addressableIndices is the number of distinct indices Cmap.Apply can
// return for a Cmap of cmapSize finite bins: index 0 (the bottom sentinel),
// 1..cmapSize (the finite bins), and cmapSize+1 (the top sentinel).
func addressableIndices(cmapSize int) int {
	return cmapSize + 2
}

func newCounterFor(conf SketchConf) *counter.HCounter {
	if conf.CmapSize <= conf.CounterSize {
		return counter.NewUncompressed(addressableIndices(conf.CmapSize))
	}
	return counter.NewCompressed(conf.CounterNo, conf.CounterSize, conf.seed())
}

// StructuresSize exposes the size of the retained generation stack.
func (s *Sketch[A]) StructuresSize() int { return s.structures.Len() }

// String is a diagnostic one-liner for logs and test failure messages, not
// a wire or serialization format.
func (s *Sketch[A]) String() string {
	young := s.structures.Young()
	return fmt.Sprintf(
		"Sketch(generations=%d, youngBins=%s, youngSpan=[%s, %s], sum≈%s)",
		s.structures.Len(),
		humanize.Comma(int64(young.Cmap.Size())),
		humanize.Ftoa(young.Cmap.Min()),
		humanize.Ftoa(young.Cmap.Max()),
		humanize.Ftoa(s.Sum()),
	)
}

// Update feeds one or more observations into the sketch, each with weight
// 1, applying whatever update policy the sketch was configured with.
func (s *Sketch[A]) Update(obs ...A) {
	for _, a := range obs {
		s.updateOne(a, 1)
	}
}

func (s *Sketch[A]) updateOne(a A, weight float64) {
	p := s.measure.To(a)
	s.arrivals++

	s.narrow(p, weight)
	if s.conf.Policy.Kind == PolicySimple || s.buffer == nil {
		return
	}
	full := s.buffer.Push(p, weight)
	if s.shouldDeepUpdate(full) {
		s.flushDeepUpdate()
	}
}

func (s *Sketch[A]) shouldDeepUpdate(full bool) bool {
	if full {
		return true
	}
	if s.conf.Policy.Kind == PolicyAdaptive && s.buffer.Len() >= 2 &&
		bufferIsVolatile(s.buffer, s.conf.Policy.NoveltyThreshold) {
		return true
	}
	threshold := s.conf.StartThreshold
	return threshold > 0 && int(s.arrivals)%threshold == 0
}

// bufferIsVolatile flags a buffered batch as "already informative enough to
// rebin early" when its coefficient of variation exceeds noveltyThreshold —
// a cheap proxy for "the stream just shifted regime" without keeping a
// running estimate of the prior distribution to compare against.
func bufferIsVolatile(b *queue.Bounded[float64], noveltyThreshold float64) bool {
	if noveltyThreshold <= 0 {
		return false
	}
	items := b.Items()
	var mean, m2, n float64
	for _, it := range items {
		n++
		delta := it.Value - mean
		mean += delta / n
		m2 += delta * (it.Value - mean)
	}
	if n < 2 || mean == 0 {
		return false
	}
	stddev := math.Sqrt(m2 / n)
	cv := math.Abs(stddev / mean)
	return cv > noveltyThreshold
}

func (s *Sketch[A]) narrow(p float64, weight float64) {
	young := s.structures.Young()
	i := young.Cmap.Apply(p)
	s.structures.NarrowUpdate(i, weight)
}

// NarrowUpdate increments the young generation's counter for a, leaving the
// Cmap unchanged. O(d) in the counter depth.
func (s *Sketch[A]) NarrowUpdate(a A) {
	p := s.measure.To(a)
	s.arrivals++
	s.narrow(p, 1)
}

// flushDeepUpdate drains the buffer and rebins from it. The buffered
// samples were already narrow-updated into the young generation as they
// arrived (updateOne), and that generation is what Prepend demotes one slot
// older — so their mass already lives there. Folding the narrow update into
// this flush means the samples are passed to deepUpdateWithSamples only as
// rebinning evidence (countSamples = nil), never replayed into the new
// counter; replaying them as well would count each observation twice, once
// in the demoted generation and again in the fresh one.
func (s *Sketch[A]) flushDeepUpdate() {
	items := s.buffer.Items()
	rebinSamples := make([]cmap.Sample, len(items))
	for i, it := range items {
		rebinSamples[i] = cmap.Sample{P: it.Value, Weight: it.Weight}
	}
	s.buffer.Drain()
	s.deepUpdateWithSamples(rebinSamples, nil)

	if s.conf.Policy.Kind == PolicyRecur && s.conf.Policy.RearrangeEvery > 0 {
		s.deepUpdates++
		if int(s.deepUpdates)%s.conf.Policy.RearrangeEvery == 0 {
			s.deepUpdateWithSamples(nil, nil)
		}
	}
}

// DeepUpdate rebins a new Cmap from the given observations (plus the young
// generation's current sampling plot as prior evidence), prepends a fresh
// generation, and evicts the oldest if the stack would now exceed cmapNo.
// It returns the evicted generation, if any. Unlike the buffered policies'
// flush path, obs here were never narrow-updated into any generation (this
// is the caller driving a deep update directly), so they are counted into
// the new generation's counter as well as used to rebin it.
func (s *Sketch[A]) DeepUpdate(obs ...A) (evicted *Structure) {
	samples := make([]cmap.Sample, len(obs))
	for i, a := range obs {
		samples[i] = cmap.Sample{P: s.measure.To(a), Weight: 1}
	}
	return s.deepUpdateWithSamples(samples, samples)
}

// deepUpdateWithSamples rebins using rebinSamples as evidence (alongside the
// young generation's current sampling plot as prior) and populates the
// fresh generation's counter with countSamples. The two are the same slice
// when the caller's observations have not yet been counted anywhere
// (DeepUpdate), and rebinSamples/nil when they have (flushDeepUpdate,
// Rearrange) so the fresh generation starts genuinely zeroed per spec.
func (s *Sketch[A]) deepUpdateWithSamples(rebinSamples, countSamples []cmap.Sample) (evicted *Structure) {
	young := s.structures.Young()
	prior := s.sampling(young)

	newCmap := cmap.EqualSpaceCdfUpdate(
		prior, rebinSamples, s.conf.CmapSize, s.conf.DataKernelWindow,
		s.conf.BoundaryCorrection, decayAlpha(), young.Cmap,
	)
	newCounter := newCounterFor(s.conf)
	for _, sample := range countSamples {
		i := newCmap.Apply(sample.P)
		newCounter.Update(i, sample.Weight)
	}

	ev := s.structures.Prepend(Structure{Cmap: newCmap, Counter: newCounter})
	s.priorPlot = prior
	return ev
}

// Rearrange is a deep update with no new observations: a pure refresh that
// promotes the current young generation one slot older and starts a fresh,
// empty young generation over the same rebinned boundaries.
func (s *Sketch[A]) Rearrange() (evicted *Structure) {
	return s.deepUpdateWithSamples(nil, nil)
}

// decayAlpha is the weight given to newly buffered evidence against the
// prior sampling plot inside EqualSpaceCdfUpdate. Fixed rather than
// configurable: it governs how fast the Cmap's shape responds to new
// evidence, distinct from (and deliberately decoupled from) the exp(-k)
// age weighting queries use across generations.
func decayAlpha() float64 { return 0.5 }
