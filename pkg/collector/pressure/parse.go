// Package pressure reads the kernel PSI counters under /proc/pressure.
package pressure

import (
	"strconv"
	"strings"

	"github.com/psitop/psitop/pkg/types"
)

// parseDocument extracts one Reading per stall kind from the contents of a
// pressure file. Each well-formed line looks like
//
//	some avg10=1.23 avg60=0.45 avg300=0.06 total=12345678
//
// with the cumulative microsecond counter as the final field. Lines that do
// not match this shape are skipped rather than treated as fatal, so a kernel
// format surprise degrades one series for one tick instead of killing the
// process. The returned map only contains the series that parsed cleanly.
func parseDocument(tag types.Tag, data string) map[types.Series]types.Reading {
	found := make(map[types.Series]types.Reading, 2)
	for _, line := range strings.Split(data, "\n") {
		kind, reading, ok := parseLine(line)
		if !ok {
			continue
		}
		found[types.Series{Tag: tag, Kind: kind}] = reading
	}
	return found
}

func parseLine(line string) (types.Kind, types.Reading, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", types.Reading{}, false
	}

	var kind types.Kind
	switch fields[0] {
	case string(types.KindSome):
		kind = types.KindSome
	case string(types.KindFull):
		kind = types.KindFull
	default:
		return "", types.Reading{}, false
	}

	// The cumulative counter is always the last field.
	total, ok := keyValue(fields[len(fields)-1], "total")
	if !ok {
		return "", types.Reading{}, false
	}
	micros, err := strconv.ParseUint(total, 10, 64)
	if err != nil {
		return "", types.Reading{}, false
	}

	reading := types.Reading{TotalMicros: micros}
	for _, field := range fields[1 : len(fields)-1] {
		if v, ok := keyValue(field, "avg60"); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				reading.Avg60 = f
			}
		}
		if v, ok := keyValue(field, "avg300"); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				reading.Avg300 = f
			}
		}
	}
	return kind, reading, true
}

// keyValue returns the value part of a "key=value" field when the key
// matches.
func keyValue(field, key string) (string, bool) {
	rest, ok := strings.CutPrefix(field, key+"=")
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}
