package report

import (
	"strings"
	"testing"
)

func TestSummaryRecordsAndFormats(t *testing.T) {
	s := NewSummary()
	for _, pct := range []float64{1.0, 2.0, 4.0, 8.0, 150.0} {
		s.Record(cpuSome, pct)
	}
	if got := s.Samples(cpuSome); got != 5 {
		t.Fatalf("expected 5 samples, got %d", got)
	}

	lines := s.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected one line for the one recorded series, got %v", lines)
	}
	if !strings.HasPrefix(lines[0], "cpu.some") {
		t.Fatalf("line not labeled with series: %q", lines[0])
	}
	if !strings.Contains(lines[0], "n=5") {
		t.Fatalf("line missing sample count: %q", lines[0])
	}
}

func TestSummaryClampsOutOfRangeValues(t *testing.T) {
	s := NewSummary()
	s.Record(cpuSome, 0)      // below the histogram floor
	s.Record(cpuSome, 5000.0) // far above the ceiling
	if got := s.Samples(cpuSome); got != 2 {
		t.Fatalf("out-of-range values must still be recorded, got %d", got)
	}
}
