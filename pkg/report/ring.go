// Package report turns raw cumulative stall counters into rolling rates,
// threshold events, and distribution summaries.
package report

import (
	"time"

	"github.com/psitop/psitop/pkg/types"
)

// Batch is one sampling instant: the monotonic-bearing timestamp at which
// every series was read plus the cumulative reading per series. Batches are
// immutable once pushed.
type Batch struct {
	Seq      uint64
	At       time.Time
	Readings map[types.Series]types.Reading
}

// Ring keeps the most recent sample batches, newest first.
type Ring struct {
	batches  []Batch
	capacity int
	nextSeq  uint64
}

// NewRing returns an empty ring holding up to capacity batches.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{batches: make([]Batch, 0, capacity+1), capacity: capacity}
}

// Push inserts a batch at the front and drops the oldest batch once the ring
// is over capacity. The batch sequence number is assigned here.
func (r *Ring) Push(b Batch) {
	b.Seq = r.nextSeq
	r.nextSeq++
	r.batches = append([]Batch{b}, r.batches...)
	if len(r.batches) > r.capacity {
		r.batches = r.batches[:r.capacity]
	}
}

// Len reports how many batches are retained.
func (r *Ring) Len() int {
	return len(r.batches)
}

// Newest returns the most recent batch.
func (r *Ring) Newest() (Batch, bool) {
	if len(r.batches) == 0 {
		return Batch{}, false
	}
	return r.batches[0], true
}

// Rate computes the stalled percentage for a series over the window ending
// at the newest batch and starting lag batches back. The rate is undefined
// (ok=false) until lag+1 batches exist; callers skip undefined rates rather
// than rendering zero.
//
// With counters in microseconds and time in nanoseconds:
//
//	pct = 100000 * deltaMicros / deltaNanos
//
// The result is never negative. It is not clamped at 100: a value above 100
// indicates a counter reset or overlapping measurement and is shown as-is.
func (r *Ring) Rate(s types.Series, lag int) (float64, bool) {
	if lag < 1 || len(r.batches) < lag+1 {
		return 0, false
	}
	newest, older := r.batches[0], r.batches[lag]
	deltaNanos := newest.At.Sub(older.At).Nanoseconds()
	if deltaNanos <= 0 {
		return 0, true
	}
	deltaMicros := int64(newest.Readings[s].TotalMicros) - int64(older.Readings[s].TotalMicros)
	pct := 100000 * float64(deltaMicros) / float64(deltaNanos)
	if pct < 0 {
		pct = 0
	}
	return pct, true
}
