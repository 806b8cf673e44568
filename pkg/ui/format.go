package ui

import (
	"fmt"
	"math"
	"time"
)

// Clip truncates s to at most width runes.
func Clip(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width])
}

// PadRight pads s with trailing spaces to width runes.
func PadRight(s string, width int) string {
	n := len([]rune(s))
	for n < width {
		s += " "
		n++
	}
	return s
}

// PadLeft pads s with leading spaces to width runes.
func PadLeft(s string, width int) string {
	n := len([]rune(s))
	for n < width {
		s = " " + s
		n++
	}
	return s
}

var (
	agoDivs  = []int64{60, 24, 7, 52, 9999999}
	agoUnits = []string{"s", "m", "h", "d", "w", "y"}
)

// AgoString renders an elapsed duration as a compact two-unit cascading
// string, e.g. "1m5s" or "1h23m", choosing the coarsest unit pair that keeps
// both components meaningful. When the higher unit is zero its slot is blank
// padded ("    8s") so ages line up in a column.
func AgoString(d time.Duration) string {
	ago := int64(math.Round(math.Abs(d.Seconds())))
	low, high := ago%60, ago/60
	uidx := 1
	for _, div := range agoDivs {
		if high < div {
			break
		}
		low, high = high%div, high/div
		uidx++
	}
	lead := "    "
	if high != 0 {
		lead = fmt.Sprintf("%d%s", high, agoUnits[uidx])
	}
	return lead + fmt.Sprintf("%d%s", low, agoUnits[uidx-1])
}
