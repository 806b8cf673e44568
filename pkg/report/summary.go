package report

import (
	"fmt"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/psitop/psitop/pkg/types"
)

// Histogram bounds, in thousandths of a percent. The upper bound leaves room
// for over-100% readings caused by counter resets.
const (
	summaryMin    = 1
	summaryMax    = 1_000_000
	summarySigFig = 3
)

// Summary accumulates the per-series distribution of 1-step stall rates over
// the process lifetime. It backs the dump output and the exit report.
type Summary struct {
	hists map[types.Series]*hdrhistogram.Histogram
}

// NewSummary returns an empty summary covering every monitored series.
func NewSummary() *Summary {
	s := &Summary{hists: make(map[types.Series]*hdrhistogram.Histogram, len(types.AllSeries()))}
	for _, series := range types.AllSeries() {
		s.hists[series] = hdrhistogram.New(summaryMin, summaryMax, summarySigFig)
	}
	return s
}

// Record adds one observed rate (in percent) for a series.
func (s *Summary) Record(series types.Series, pct float64) {
	h, ok := s.hists[series]
	if !ok {
		return
	}
	v := int64(pct * 1000)
	if v < summaryMin {
		v = summaryMin
	}
	if v > summaryMax {
		v = summaryMax
	}
	// RecordValue only fails outside the clamped bounds.
	_ = h.RecordValue(v)
}

// Samples reports how many rates were recorded for a series.
func (s *Summary) Samples(series types.Series) int64 {
	if h, ok := s.hists[series]; ok {
		return h.TotalCount()
	}
	return 0
}

// Lines formats one distribution row per series with recorded samples.
func (s *Summary) Lines() []string {
	var out []string
	for _, series := range types.AllSeries() {
		h := s.hists[series]
		if h.TotalCount() == 0 {
			continue
		}
		out = append(out, fmt.Sprintf("%-11s  n=%-6d  min=%6.3f%%  p50=%6.3f%%  p90=%6.3f%%  max=%6.3f%%",
			series.String(), h.TotalCount(),
			float64(h.Min())/1000, float64(h.ValueAtQuantile(50))/1000,
			float64(h.ValueAtQuantile(90))/1000, float64(h.Max())/1000))
	}
	return out
}
