// Package source reads digi events from JSON-lines input files.
package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/logari84/OnChipDataCompression/internal/ctxlog"
	"github.com/logari84/OnChipDataCompression/internal/event"
)

// maxLineBytes bounds a single event record on disk.
const maxLineBytes = 64 << 20

// record is the on-disk form of one event: one JSON object per line.
type record struct {
	Event    int             `json:"event"`
	Products []event.Product `json:"products"`
}

// Source streams events from a list of digi files in declared order.
type Source struct {
	fileNames []string
	maxEvents int
}

// New creates a source. maxEvents < 0 reads everything.
func New(fileNames []string, maxEvents int) *Source {
	return &Source{fileNames: fileNames, maxEvents: maxEvents}
}

// Run decodes events and sends them on out until the files are exhausted,
// the event limit is reached, or the context is cancelled. The channel is
// left open for the caller to close.
func (s *Source) Run(ctx context.Context, out chan<- *event.Event) error {
	logger := ctxlog.FromContext(ctx)
	emitted := 0
	for _, name := range s.fileNames {
		if s.limitReached(emitted) {
			break
		}
		n, err := s.runFile(ctx, name, out, emitted)
		if err != nil {
			return err
		}
		emitted += n
	}
	logger.Info("Input source exhausted.", "events", emitted)
	return nil
}

func (s *Source) limitReached(emitted int) bool {
	return s.maxEvents >= 0 && emitted >= s.maxEvents
}

func (s *Source) runFile(ctx context.Context, name string, out chan<- *event.Event, emittedSoFar int) (int, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Opening input file.", "file", name)

	f, err := os.Open(name)
	if err != nil {
		return 0, fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1<<20), maxLineBytes)
	emitted := 0
	line := 0
	for scanner.Scan() {
		line++
		if s.limitReached(emittedSoFar + emitted) {
			return emitted, nil
		}
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return emitted, fmt.Errorf("decoding event at %s:%d: %w", name, line, err)
		}
		ev, err := event.New(rec.Event, rec.Products)
		if err != nil {
			return emitted, fmt.Errorf("assembling event at %s:%d: %w", name, line, err)
		}
		select {
		case out <- ev:
			emitted++
		case <-ctx.Done():
			return emitted, ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return emitted, fmt.Errorf("reading input file %s: %w", name, err)
	}
	return emitted, nil
}
