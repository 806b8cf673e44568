package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/psitop/psitop/pkg/report"
	"github.com/psitop/psitop/pkg/types"
)

// briefEventRows is how many events stay visible in brief mode.
const briefEventRows = 8

// Line is one rendered dashboard row.
type Line struct {
	Text      string
	Highlight bool
}

// Dashboard carries everything one frame needs. It reads the ring and
// history but never mutates them.
type Dashboard struct {
	Ring      *report.Ring
	History   *report.History
	Threshold int
	Interval  int
	Brief     bool
	Now       time.Time // monotonic reference for event ages
	Wall      time.Time // wall clock shown in the header
}

// Lines lays out the frame in fixed row order: header, rate table, then the
// event history newest-first. The surface clips whatever exceeds its height.
func (d Dashboard) Lines() []Line {
	lines := []Line{
		{Text: d.headerLine(), Highlight: true},
		{Text: tableHeader()},
	}
	for _, tag := range types.Tags() {
		lines = append(lines, Line{Text: d.tagRow(tag)})
	}
	lines = append(lines, Line{})

	events := d.History.Events()
	if d.Brief && len(events) > briefEventRows {
		events = events[:briefEventRows]
	}
	for _, e := range events {
		lines = append(lines, Line{Text: EventLine(e, d.Now)})
	}
	return lines
}

func (d Dashboard) headerLine() string {
	mode := ""
	if d.Brief {
		mode = " [brief]"
	}
	return fmt.Sprintf("PSITOP  thresh=%d%%  itvl=%ds%s   keys: [t/T]hresh [i]tvl [b]rief [d]ump [?]help [q]uit   %s",
		d.Threshold, d.Interval, mode, d.Wall.Format("15:04:05"))
}

func tableHeader() string {
	var b strings.Builder
	for i, kind := range types.Kinds() {
		if i > 0 {
			b.WriteString("     ")
		}
		for _, w := range []string{"1s", "3s", "10s", "60s", "300s"} {
			b.WriteString(" " + PadLeft(w, 5))
		}
		label := "Full.Stall%"
		if kind == types.KindSome {
			label = "Some.Stall%"
		}
		b.WriteString("  " + label)
	}
	return b.String()
}

// tagRow renders one resource: the full half then the some half, each with
// the three ring rates, the two kernel passthrough averages, and the series
// label. Rates with insufficient history show n/a rather than a fake zero.
func (d Dashboard) tagRow(tag types.Tag) string {
	newest, haveBatch := d.Ring.Newest()

	var b strings.Builder
	for i, kind := range types.Kinds() {
		if i > 0 {
			b.WriteString("     ")
		}
		series := types.Series{Tag: tag, Kind: kind}
		for _, lag := range types.SampleLags {
			if pct, ok := d.Ring.Rate(series, lag); ok {
				b.WriteString(fmt.Sprintf(" %5.1f", pct))
			} else {
				b.WriteString(" " + PadLeft("n/a", 5))
			}
		}
		var avg60, avg300 float64
		if haveBatch {
			r := newest.Readings[series]
			avg60, avg300 = r.Avg60, r.Avg300
		}
		b.WriteString(fmt.Sprintf(" %5.1f %5.1f", avg60, avg300))
		b.WriteString(fmt.Sprintf("  %-11s", series.String()))
	}
	return strings.TrimRight(b.String(), " ")
}

// EventLine formats one history row: relative age, wall-clock time of
// detection, the series and percent that triggered, and the threshold and
// interval in force.
func EventLine(e report.Event, now time.Time) string {
	age := strings.TrimSpace(AgoString(now.Sub(e.Mono)))
	return fmt.Sprintf("%6s: %s  %-11s %7.3f   >=%d i=%d",
		age, e.Wall.Format("01-02 15:04:05.000"), e.Series.String(), e.Percent, e.Threshold, e.Interval)
}

// EventReport formats the entire history (newest first) followed by the
// lifetime per-series rate distribution, for the dump key and the report
// printed at exit. Unlike Lines it is never truncated by brief mode or the
// surface height.
func EventReport(history *report.History, summary *report.Summary, now time.Time) []string {
	events := history.Events()
	out := make([]string, 0, len(events)+8)
	out = append(out, fmt.Sprintf("-- event history (%d events, newest first) --", len(events)))
	if len(events) == 0 {
		out = append(out, "(none)")
	}
	for _, e := range events {
		out = append(out, EventLine(e, now))
	}
	if lines := summary.Lines(); len(lines) > 0 {
		out = append(out, "", "-- 1s stall rate distribution --")
		out = append(out, lines...)
	}
	return out
}

// HelpLines is the overlay shown while help mode is toggled on.
func HelpLines(threshold, interval int) []Line {
	return []Line{
		{Text: "PSITOP help", Highlight: true},
		{},
		{Text: fmt.Sprintf("  t    lower event threshold by 5 (now %d%%, floor %d)", threshold, types.ThresholdMin)},
		{Text: fmt.Sprintf("  T    raise event threshold by 5 (now %d%%, ceiling %d)", threshold, types.ThresholdMax)},
		{Text: fmt.Sprintf("  i    cycle event interval %v (now %ds)", types.EventIntervals, interval)},
		{Text: "  b    toggle brief event list"},
		{Text: "  d    dump full event history and rate distribution"},
		{Text: "  ?    toggle this help screen"},
		{Text: "  q    quit (Ctrl-C also quits)"},
		{},
		{Text: "Rates are percent of wall time stalled over the trailing window."},
		{Text: "60s/300s columns are kernel running averages, shown as reported."},
	}
}

// Draw writes a prepared set of lines to the surface as one frame.
func Draw(sf *Surface, lines []Line) {
	sf.BeginFrame()
	for row, line := range lines {
		sf.PutLine(row, line.Text, line.Highlight)
	}
	sf.EndFrame()
}
