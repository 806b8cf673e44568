package pressure

import (
	"testing"

	"github.com/psitop/psitop/pkg/types"
)

const cpuDocument = `some avg10=1.23 avg60=0.45 avg300=0.06 total=12345678
full avg10=0.00 avg60=0.00 avg300=0.00 total=424242
`

func TestParseDocument(t *testing.T) {
	parsed := parseDocument(types.TagCPU, cpuDocument)
	if len(parsed) != 2 {
		t.Fatalf("expected 2 series, got %d: %v", len(parsed), parsed)
	}

	some := parsed[types.Series{Tag: types.TagCPU, Kind: types.KindSome}]
	if some.TotalMicros != 12345678 {
		t.Fatalf("unexpected some total: %d", some.TotalMicros)
	}
	if some.Avg60 != 0.45 || some.Avg300 != 0.06 {
		t.Fatalf("unexpected some averages: %+v", some)
	}

	full := parsed[types.Series{Tag: types.TagCPU, Kind: types.KindFull}]
	if full.TotalMicros != 424242 {
		t.Fatalf("unexpected full total: %d", full.TotalMicros)
	}
}

func TestParseLineRejectsMalformedShapes(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"unknown kind", "most avg10=1.0 avg60=1.0 avg300=1.0 total=5"},
		{"missing total value", "some avg10=1.0 avg60=1.0 avg300=1.0 total="},
		{"last field not total", "some avg10=1.0 total=5 avg60=1.0"},
		{"total not a number", "some avg10=1.0 avg60=1.0 avg300=1.0 total=abc"},
		{"kind only", "some"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, ok := parseLine(tt.line); ok {
				t.Fatalf("expected %q to be rejected", tt.line)
			}
		})
	}
}

func TestParseDocumentSkipsMalformedLineOnly(t *testing.T) {
	doc := "some garbage here\nfull avg10=0.00 avg60=0.10 avg300=0.20 total=999\n"
	parsed := parseDocument(types.TagIO, doc)
	if len(parsed) != 1 {
		t.Fatalf("expected only the full series, got %v", parsed)
	}
	full, ok := parsed[types.Series{Tag: types.TagIO, Kind: types.KindFull}]
	if !ok || full.TotalMicros != 999 {
		t.Fatalf("full series missing or wrong: %+v ok=%t", full, ok)
	}
}
