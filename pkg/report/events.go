package report

import (
	"math"
	"time"

	"github.com/psitop/psitop/pkg/types"
)

// Event records one threshold crossing. Immutable once created; aged out of
// the history only by truncation.
type Event struct {
	Mono      time.Time // monotonic-bearing creation instant, for age display
	Wall      time.Time // wall clock at detection
	Series    types.Series
	Percent   float64 // observed rate, rounded to three decimals
	Threshold int     // threshold in force at detection
	Interval  int     // window (lag or passthrough average) that triggered
}

// History is the bounded, newest-first event log.
type History struct {
	events   []Event
	capacity int
}

// NewHistory returns an empty history holding up to capacity events.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{events: make([]Event, 0, capacity+1), capacity: capacity}
}

// Insert pushes an event to the front and truncates to capacity.
func (h *History) Insert(e Event) {
	h.events = append([]Event{e}, h.events...)
	if len(h.events) > h.capacity {
		h.events = h.events[:h.capacity]
	}
}

// Len reports how many events are retained.
func (h *History) Len() int {
	return len(h.events)
}

// Events returns a copy of the retained events, newest first.
func (h *History) Events() []Event {
	out := make([]Event, len(h.events))
	copy(out, h.events)
	return out
}

// Detect inspects the current interval's value for every series and returns
// one event per series at or above the threshold. Intervals 1/3/10 use the
// ring rate for that lag; 60/300 use the kernel passthrough averages from
// the newest batch. There is deliberately no cooldown: a sustained stall
// produces one event per tick for as long as it stays above threshold.
func Detect(ring *Ring, threshold, interval int, wall time.Time) []Event {
	newest, ok := ring.Newest()
	if !ok {
		return nil
	}

	var events []Event
	for _, series := range types.AllSeries() {
		var pct float64
		switch interval {
		case 60:
			pct = newest.Readings[series].Avg60
		case 300:
			pct = newest.Readings[series].Avg300
		default:
			rate, defined := ring.Rate(series, interval)
			if !defined {
				continue
			}
			pct = rate
		}

		rounded := Round3(pct)
		if rounded < float64(threshold) {
			continue
		}
		events = append(events, Event{
			Mono:      newest.At,
			Wall:      wall,
			Series:    series,
			Percent:   rounded,
			Threshold: threshold,
			Interval:  interval,
		})
	}
	return events
}

// Round3 rounds to three decimal places, the precision events are compared
// and recorded at.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
