// Package stream executes a process: it instantiates the configured analyzer
// modules, pulls events from the input source, and drives them through the
// execution paths on a pool of concurrent stream workers.
package stream

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/logari84/OnChipDataCompression/internal/ctxlog"
	"github.com/logari84/OnChipDataCompression/internal/event"
	"github.com/logari84/OnChipDataCompression/internal/process"
	"github.com/logari84/OnChipDataCompression/internal/registry"
	"github.com/logari84/OnChipDataCompression/internal/source"
)

// moduleInstance is one constructed analyzer with its run counters.
type moduleInstance struct {
	name     string
	analyzer registry.Analyzer
	events   atomic.Int64
	busy     atomic.Int64 // nanoseconds spent in Analyze
}

func (m *moduleInstance) analyze(ctx context.Context, ev *event.Event) error {
	start := time.Now()
	err := m.analyzer.Analyze(ctx, ev)
	m.busy.Add(int64(time.Since(start)))
	m.events.Add(1)
	if err != nil {
		return fmt.Errorf("module %q failed on event %d: %w", m.name, ev.Number, err)
	}
	return nil
}

// Runner owns one end-to-end execution of a process.
type Runner struct {
	proc *process.Process
	reg  *registry.Registry

	modules map[string]*moduleInstance
	paths   [][]*moduleInstance
}

// NewRunner creates a runner for the process.
func NewRunner(proc *process.Process, reg *registry.Registry) *Runner {
	return &Runner{proc: proc, reg: reg}
}

// Run executes the process: constructs the analyzers, streams all events
// through the paths, and finishes with each module's end-of-job hook. The
// first failure cancels the run.
func (r *Runner) Run(ctx context.Context) error {
	runID := uuid.New()
	logger := ctxlog.FromContext(ctx).With("process", r.proc.Name, "runID", runID.String())
	ctx = ctxlog.WithLogger(ctx, logger)

	if err := r.buildModules(ctx); err != nil {
		return err
	}

	nStreams := r.proc.Options.EffectiveStreams()
	logger.Info("Starting event processing.",
		"threads", r.proc.Options.NumberOfThreads, "streams", nStreams)
	start := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan *event.Event, nStreams)
	errs := make(chan error, nStreams+1)
	var wg sync.WaitGroup

	for streamID := 0; streamID < nStreams; streamID++ {
		wg.Add(1)
		go func(streamID int) {
			defer wg.Done()
			if err := r.streamWorker(ctx, streamID, events); err != nil {
				errs <- err
				cancel()
			}
		}(streamID)
	}

	src := source.New(r.proc.Source.FileNames, r.proc.Source.MaxEvents)
	go func() {
		defer close(events)
		if err := src.Run(ctx, events); err != nil && ctx.Err() == nil {
			errs <- err
			cancel()
		}
	}()

	wg.Wait()
	close(errs)
	for err := range errs {
		return err
	}

	if err := r.endJob(ctx); err != nil {
		return err
	}
	if r.proc.Options.WantSummary {
		r.logSummary(ctx, time.Since(start))
	}
	return nil
}

// buildModules constructs every analyzer referenced by a path, once per
// module name.
func (r *Runner) buildModules(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	r.modules = make(map[string]*moduleInstance)
	r.paths = r.paths[:0]

	for _, path := range r.proc.Paths {
		instances := make([]*moduleInstance, 0, len(path.Modules))
		for _, name := range path.Modules {
			instance, ok := r.modules[name]
			if !ok {
				cfg := r.proc.Modules[name]
				ra, err := r.reg.Analyzer(cfg.Type)
				if err != nil {
					return err
				}
				analyzer, err := ra.New(ctx, cfg.Input)
				if err != nil {
					return fmt.Errorf("constructing module %q: %w", name, err)
				}
				instance = &moduleInstance{name: name, analyzer: analyzer}
				r.modules[name] = instance
				logger.Debug("Constructed analyzer module.", "name", name, "type", cfg.Type)
			}
			instances = append(instances, instance)
		}
		r.paths = append(r.paths, instances)
	}
	return nil
}

// streamWorker is the processing loop of a single event stream.
func (r *Runner) streamWorker(ctx context.Context, streamID int, events <-chan *event.Event) error {
	logger := ctxlog.FromContext(ctx).With("streamID", streamID)
	logger.Debug("Stream worker started.")
	defer logger.Debug("Stream worker finished.")

	for ev := range events {
		if ctx.Err() != nil {
			return nil
		}
		logger.Debug("Processing event.", "eventID", ev.ID.String(), "event", ev.Number)
		for _, path := range r.paths {
			for _, instance := range path {
				if err := instance.analyze(ctx, ev); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (r *Runner) endJob(ctx context.Context) error {
	// End-of-job hooks run once per module, in path order.
	done := make(map[string]bool, len(r.modules))
	for _, path := range r.paths {
		for _, instance := range path {
			if done[instance.name] {
				continue
			}
			done[instance.name] = true
			if err := instance.analyzer.EndJob(ctx); err != nil {
				return fmt.Errorf("end of job of module %q: %w", instance.name, err)
			}
		}
	}
	return nil
}

func (r *Runner) logSummary(ctx context.Context, elapsed time.Duration) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Process summary.", "elapsed", elapsed.String())
	done := make(map[string]bool, len(r.modules))
	for _, path := range r.paths {
		for _, instance := range path {
			if done[instance.name] {
				continue
			}
			done[instance.name] = true
			logger.Info("Module summary.",
				"module", instance.name,
				"events", instance.events.Load(),
				"busy", time.Duration(instance.busy.Load()).String())
		}
	}
}
