// Package process defines the format-agnostic process descriptor: execution
// options, the input source, the configured analyzer modules, and the
// execution paths that reference them.
package process

import "fmt"

// ExecutionOptions are the static scheduling parameters of a process.
type ExecutionOptions struct {
	// WantSummary enables the end-of-job per-module summary.
	WantSummary bool
	// NumberOfThreads is the requested worker thread count.
	NumberOfThreads int
	// NumberOfStreams is the requested concurrent event stream count;
	// 0 lets the framework pick (one stream per thread).
	NumberOfStreams int
}

// EffectiveStreams resolves the stream count actually used.
func (o ExecutionOptions) EffectiveStreams() int {
	if o.NumberOfStreams > 0 {
		return o.NumberOfStreams
	}
	return o.NumberOfThreads
}

// SourceConfig describes the input source.
type SourceConfig struct {
	Type      string
	FileNames []string
	// MaxEvents limits the number of processed events; negative means all.
	MaxEvents int
}

// ModuleConfig is one named analyzer instance: its registered type name and
// its decoded parameters.
type ModuleConfig struct {
	Type  string
	Name  string
	Input any
}

// Path is an ordered list of module names executed per event.
type Path struct {
	Name    string
	Modules []string
}

// Process aggregates everything the runner needs to execute a job.
type Process struct {
	Name    string
	Options ExecutionOptions
	Source  SourceConfig
	Modules map[string]*ModuleConfig
	Paths   []Path
}

// Validate checks the internal consistency of the descriptor.
func (p *Process) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("process name is empty")
	}
	if p.Options.NumberOfThreads <= 0 {
		return fmt.Errorf("number of threads must be positive, got %d", p.Options.NumberOfThreads)
	}
	if p.Options.NumberOfStreams < 0 {
		return fmt.Errorf("number of streams must not be negative, got %d", p.Options.NumberOfStreams)
	}
	if len(p.Source.FileNames) == 0 {
		return fmt.Errorf("source has no input files")
	}
	if len(p.Paths) == 0 {
		return fmt.Errorf("process has no execution paths")
	}
	seen := make(map[string]bool, len(p.Paths))
	for _, path := range p.Paths {
		if seen[path.Name] {
			return fmt.Errorf("duplicate path name %q", path.Name)
		}
		seen[path.Name] = true
		if len(path.Modules) == 0 {
			return fmt.Errorf("path %q references no modules", path.Name)
		}
		for _, name := range path.Modules {
			if _, ok := p.Modules[name]; !ok {
				return fmt.Errorf("path %q references unknown module %q", path.Name, name)
			}
		}
	}
	return nil
}
