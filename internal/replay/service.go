// Package replay orchestrates trace loading: parse, topology, correlation,
// and timeline assembly, producing an immutable Recording for playback.
package replay

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/mesh-sim/traceplay/internal/core/config"
	"github.com/mesh-sim/traceplay/internal/core/correlate"
	"github.com/mesh-sim/traceplay/internal/core/playback"
	"github.com/mesh-sim/traceplay/internal/core/timeline"
	"github.com/mesh-sim/traceplay/internal/core/topology"
	"github.com/mesh-sim/traceplay/internal/core/trace"
)

// Recording is everything derived from one trace file. Built once,
// immutable afterward; playback controllers and renderers only read it.
type Recording struct {
	Source        string
	Events        []trace.Event
	Stats         []trace.Stats
	Topology      *topology.Topology
	Transmissions []trace.Transmission
	Frames        []timeline.Frame
	SkippedRows   int
}

// Empty reports whether the trace produced no playable frames.
func (r *Recording) Empty() bool { return len(r.Frames) == 0 }

// TimeRange returns the first and last frame times. Zeroes when empty.
func (r *Recording) TimeRange() (int64, int64) {
	if r.Empty() {
		return 0, 0
	}
	return r.Frames[0].Time, r.Frames[len(r.Frames)-1].Time
}

// EventCount returns the number of events of the given kind.
func (r *Recording) EventCount(kind trace.Kind) int {
	n := 0
	for _, ev := range r.Events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// Service builds recordings and playback controllers from trace files.
type Service struct {
	cfg *config.Config
	log zerolog.Logger
}

// New creates a new Service.
func New(cfg *config.Config, log zerolog.Logger) *Service {
	return &Service{cfg: cfg, log: log}
}

// LoadRecording reads and fully processes a trace file. The whole pipeline
// runs synchronously here, before playback begins; nothing in the returned
// Recording mutates afterward.
func (s *Service) LoadRecording(ctx context.Context, path string) (*Recording, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.log.Debug().Str("path", path).Msg("loading trace")

	records, err := trace.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load trace: %w", err)
	}

	rec := s.process(records)
	rec.Source = path

	s.log.Info().
		Str("path", path).
		Int("events", len(rec.Events)).
		Int("skipped", rec.SkippedRows).
		Int("nodes", rec.Topology.NodeCount()).
		Int("edges", rec.Topology.EdgeCount()).
		Int("transmissions", len(rec.Transmissions)).
		Int("frames", len(rec.Frames)).
		Msg("trace loaded")

	return rec, nil
}

// process runs the parse → topology → correlate → timeline pipeline over raw
// records.
func (s *Service) process(records []trace.Record) *Recording {
	parsed := trace.Parse(records, trace.ParseOptions{
		DefaultTTL: s.cfg.Correlate.DefaultTTL,
	})
	if parsed.Skipped > 0 {
		s.log.Debug().Int("rows", parsed.Skipped).Msg("skipped unparseable rows")
	}

	topo := topology.Build(parsed.Events)
	txs := correlate.Correlate(parsed.Events, topo, s.cfg.Correlate.MaxDelayMS)
	frames := timeline.Build(parsed.Events, txs)

	return &Recording{
		Events:        parsed.Events,
		Stats:         parsed.Stats,
		Topology:      topo,
		Transmissions: txs,
		Frames:        frames,
		SkippedRows:   parsed.Skipped,
	}
}

// NewController creates a playback controller over a recording's frames,
// configured from the service's playback settings.
func (s *Service) NewController(rec *Recording) *playback.Controller {
	return playback.New(rec.Frames, playback.Options{
		MinSpeed: s.cfg.Playback.MinSpeed,
		MaxSpeed: s.cfg.Playback.MaxSpeed,
		Speed:    s.cfg.Playback.DefaultSpeed,
	})
}

// DiscoverTraces expands the configured trace_dirs globs and returns matching
// trace files, sorted and deduplicated. Patterns that match nothing are fine;
// an unreadable pattern is skipped with a warning rather than failing the
// whole discovery.
func (s *Service) DiscoverTraces(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var found []string
	for _, pattern := range s.cfg.TraceDirs {
		pattern = expandHome(pattern)

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithNoFollow())
		if err != nil {
			s.log.Warn().Err(err).Str("pattern", pattern).Msg("bad trace_dirs pattern")
			continue
		}

		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			found = append(found, m)
		}
	}

	slices.Sort(found)
	return slices.Compact(found), nil
}

func expandHome(pattern string) string {
	if !strings.HasPrefix(pattern, "~"+string(filepath.Separator)) {
		return pattern
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return pattern
	}
	return filepath.Join(home, pattern[2:])
}
