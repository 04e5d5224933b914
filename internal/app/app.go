package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/logari84/OnChipDataCompression/internal/ctxlog"
	"github.com/logari84/OnChipDataCompression/internal/hclconf"
	"github.com/logari84/OnChipDataCompression/internal/process"
	"github.com/logari84/OnChipDataCompression/internal/registry"
	"github.com/logari84/OnChipDataCompression/internal/stream"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	process  *process.Process
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry
// and the loaded process descriptor.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All analyzer modules registered.", "count", len(modules))

	loader := hclconf.NewLoader()
	vars := hclconf.Variables{
		Dictionaries: cfg.Dictionaries,
		InputFiles:   cfg.InputFiles,
		MaxEvents:    cfg.MaxEvents,
	}
	proc, err := loader.Load(ctx, cfg.ProcessPath, vars, reg)
	if err != nil {
		// A failure to load the process configuration is a fatal startup error.
		panic(fmt.Errorf("failed to load process configuration: %w", err))
	}
	logger.Debug("Process configuration loaded.", "process", proc.Name)

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		process:  proc,
	}
}

// Process returns the loaded process descriptor. This is primarily for
// testing.
func (a *App) Process() *process.Process {
	return a.process
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Run executes the loaded process.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	runner := stream.NewRunner(a.process, a.registry)
	if err := runner.Run(ctx); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
