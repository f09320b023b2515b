package watcher

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/Tiliavir/file-time-tracker/internal/logger"
	"github.com/Tiliavir/file-time-tracker/internal/session"
)

// StreamSource reads newline-delimited JSON events, one per line:
//
//	{"kind":"saved","file":"src/app.ts","project":"Demo"}
//
// Editor plugins pipe their lifecycle signals into `ftt watch --stdin`.
// Malformed lines and unknown kinds are logged and skipped.
type StreamSource struct {
	r      io.Reader
	logger logger.Logger
}

func NewStreamSource(r io.Reader, log logger.Logger) *StreamSource {
	return &StreamSource{r: r, logger: log}
}

// Run returns nil at end of input. A blocked read is not interrupted by ctx.
func (s *StreamSource) Run(ctx context.Context, out chan<- session.Event) error {
	sc := bufio.NewScanner(s.r)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var ev session.Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			s.logger.Warnf(logger.TypeWatcher, "line %d: malformed event: %v", line, err)
			continue
		}
		if !ev.Kind.Valid() {
			s.logger.Warnf(logger.TypeWatcher, "line %d: unknown event kind %q", line, ev.Kind)
			continue
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading events: %w", err)
	}
	return nil
}
