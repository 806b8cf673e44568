package pressure

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/psitop/psitop/pkg/types"
)

// DefaultDir is where the kernel exposes one pressure file per resource.
const DefaultDir = "/proc/pressure"

// Source samples the cumulative stall counters for all monitored series.
// The pressure files are opened once at startup and re-read from the start
// on every sample, matching how the kernel expects these files to be polled.
type Source struct {
	files map[types.Tag]*os.File
	last  map[types.Series]types.Reading
	log   *zap.SugaredLogger
}

// NewSource opens the pressure files under /proc/pressure. A missing or
// unreadable file is a startup failure: the kernel either lacks PSI support
// or the process lacks permission, and neither is recoverable at runtime.
func NewSource(log *zap.SugaredLogger) (*Source, error) {
	return newSource(DefaultDir, log)
}

func newSource(dir string, log *zap.SugaredLogger) (*Source, error) {
	s := &Source{
		files: make(map[types.Tag]*os.File, len(types.Tags())),
		last:  make(map[types.Series]types.Reading, len(types.AllSeries())),
		log:   log,
	}
	for _, tag := range types.Tags() {
		path := filepath.Join(dir, string(tag))
		f, err := os.Open(path)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("opening pressure file %s (is CONFIG_PSI enabled?): %w", path, err)
		}
		s.files[tag] = f
	}
	return s, nil
}

// Sample re-reads every pressure file and returns the current cumulative
// reading per series. A read or parse failure on one file leaves the
// affected series at its previous reading for this tick; the sample as a
// whole always succeeds once the source is open.
func (s *Source) Sample() map[types.Series]types.Reading {
	for tag, f := range s.files {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			s.log.Debugw("pressure seek failed, keeping previous readings", "tag", tag, "error", err)
			continue
		}
		data, err := io.ReadAll(f)
		if err != nil {
			s.log.Debugw("pressure read failed, keeping previous readings", "tag", tag, "error", err)
			continue
		}
		parsed := parseDocument(tag, string(data))
		for _, kind := range types.Kinds() {
			series := types.Series{Tag: tag, Kind: kind}
			reading, ok := parsed[series]
			if !ok {
				s.log.Debugw("pressure line missing or malformed, keeping previous reading", "series", series.String())
				continue
			}
			s.last[series] = reading
		}
	}

	out := make(map[types.Series]types.Reading, len(s.last))
	for series, reading := range s.last {
		out[series] = reading
	}
	return out
}

// Close releases the held file handles.
func (s *Source) Close() error {
	var firstErr error
	for _, f := range s.files {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
