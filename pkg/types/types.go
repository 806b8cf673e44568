package types

import "time"

// Tag names one pressure resource exposed under /proc/pressure.
type Tag string

const (
	TagCPU    Tag = "cpu"
	TagIO     Tag = "io"
	TagMemory Tag = "memory"
)

// Tags returns the monitored resources in display order.
func Tags() []Tag {
	return []Tag{TagCPU, TagIO, TagMemory}
}

// Kind is the stall flavor the kernel reports per resource: "some" means at
// least one task was stalled, "full" means all non-idle tasks were stalled.
type Kind string

const (
	KindSome Kind = "some"
	KindFull Kind = "full"
)

// Kinds returns the stall kinds in display order (full before some, matching
// the table layout).
func Kinds() []Kind {
	return []Kind{KindFull, KindSome}
}

// Series identifies one monitored counter stream, e.g. cpu.some.
type Series struct {
	Tag  Tag
	Kind Kind
}

func (s Series) String() string {
	return string(s.Tag) + "." + string(s.Kind)
}

// AllSeries returns every (tag, kind) pair in stable display order.
func AllSeries() []Series {
	out := make([]Series, 0, len(Tags())*len(Kinds()))
	for _, tag := range Tags() {
		for _, kind := range Kinds() {
			out = append(out, Series{Tag: tag, Kind: kind})
		}
	}
	return out
}

// Reading is one cumulative stall observation for a series: the total stall
// time in microseconds since boot plus the kernel-computed long averages,
// which are displayed as given and never recomputed.
type Reading struct {
	TotalMicros uint64
	Avg60       float64
	Avg300      float64
}

const (
	// RingCapacity is the number of sample batches retained, one more than
	// the largest rate lag so a 10-step delta is always available.
	RingCapacity = 11

	// HistoryCapacity bounds the retained threshold events.
	HistoryCapacity = 100

	// DefaultPeriod is the sampling tick length.
	DefaultPeriod = time.Second
)

// SampleLags are the lags (in sample steps) for which rolling rates are
// computed from the ring each tick.
var SampleLags = []int{1, 3, 10}

// EventIntervals are the windows the event detector can be cycled through.
// 1/3/10 are ring-derived rates; 60/300 use the kernel passthrough averages.
var EventIntervals = []int{1, 3, 10, 60, 300}

// Threshold bounds. The event threshold is always a multiple of
// ThresholdStep inside [ThresholdMin, ThresholdMax].
const (
	ThresholdMin  = 5
	ThresholdMax  = 95
	ThresholdStep = 5
)

// ClampThreshold snaps v to the nearest multiple of ThresholdStep and clamps
// it into [ThresholdMin, ThresholdMax].
func ClampThreshold(v int) int {
	step := ThresholdStep
	snapped := ((v + step/2) / step) * step
	if v < 0 {
		snapped = ((v - step/2) / step) * step
	}
	if snapped < ThresholdMin {
		return ThresholdMin
	}
	if snapped > ThresholdMax {
		return ThresholdMax
	}
	return snapped
}
