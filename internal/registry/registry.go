package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/logari84/OnChipDataCompression/internal/event"
)

// Analyzer is a read-only processing module: it consumes event data products
// but produces nothing for downstream modules.
type Analyzer interface {
	// Analyze processes a single event. It may be called concurrently from
	// multiple streams.
	Analyze(ctx context.Context, ev *event.Event) error
	// EndJob runs once after the last event has been processed.
	EndJob(ctx context.Context) error
}

// Module is the interface that all core analyzer modules implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// RegisteredAnalyzer holds the compiled Go parts of an analyzer type.
type RegisteredAnalyzer struct {
	// NewInput returns a fresh parameter struct the configuration loader
	// decodes the analyzer block into.
	NewInput func() any
	// New constructs the analyzer from its decoded parameters.
	New func(ctx context.Context, input any) (Analyzer, error)
}

// Registry holds the registered analyzer types for a single application
// instance.
type Registry struct {
	analyzers map[string]*RegisteredAnalyzer
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{analyzers: make(map[string]*RegisteredAnalyzer)}
}

// RegisterAnalyzer registers an analyzer type. Registering the same type
// twice is a programmer error.
func (r *Registry) RegisterAnalyzer(typeName string, ra *RegisteredAnalyzer) {
	if _, exists := r.analyzers[typeName]; exists {
		panic(fmt.Sprintf("analyzer with type name '%s' already registered", typeName))
	}
	slog.Debug("Registering analyzer type.", "type", typeName)
	r.analyzers[typeName] = ra
}

// Analyzer looks up a registered analyzer type.
func (r *Registry) Analyzer(typeName string) (*RegisteredAnalyzer, error) {
	ra, ok := r.analyzers[typeName]
	if !ok {
		return nil, fmt.Errorf("analyzer type '%s' is not registered", typeName)
	}
	return ra, nil
}
