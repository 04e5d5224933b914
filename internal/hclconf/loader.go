// Package hclconf loads HCL process configurations and translates them into
// the format-agnostic process descriptor. Command-line option values are
// exposed to the configuration as top-level variables, so a process file can
// reference them the way an analysis script references its parsed options.
package hclconf

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/logari84/OnChipDataCompression/internal/ctxlog"
	"github.com/logari84/OnChipDataCompression/internal/process"
	"github.com/logari84/OnChipDataCompression/internal/registry"
)

// Variables are the command-line option values visible to a process file.
type Variables struct {
	Dictionaries string
	InputFiles   []string
	MaxEvents    int
}

// EvalContext builds the HCL evaluation context exposing the variables.
func (v Variables) EvalContext() *hcl.EvalContext {
	inputFiles := make([]cty.Value, 0, len(v.InputFiles))
	for _, name := range v.InputFiles {
		inputFiles = append(inputFiles, cty.StringVal(name))
	}
	files := cty.ListValEmpty(cty.String)
	if len(inputFiles) > 0 {
		files = cty.ListVal(inputFiles)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"dictionaries": cty.StringVal(v.Dictionaries),
			"input_files":  files,
			"max_events":   cty.NumberIntVal(int64(v.MaxEvents)),
		},
	}
}

// fileSchema is the top-level shape of a process configuration file.
type fileSchema struct {
	Process *processSchema `hcl:"process,block"`
}

type processSchema struct {
	Name      string           `hcl:"name,label"`
	Options   *optionsSchema   `hcl:"options,block"`
	Source    *sourceSchema    `hcl:"source,block"`
	Analyzers []analyzerSchema `hcl:"analyzer,block"`
	Paths     []pathSchema     `hcl:"path,block"`
}

type optionsSchema struct {
	WantSummary     bool `hcl:"want_summary,optional"`
	NumberOfThreads int  `hcl:"number_of_threads,optional"`
	NumberOfStreams int  `hcl:"number_of_streams,optional"`
}

type sourceSchema struct {
	Type      string   `hcl:"type,label"`
	FileNames []string `hcl:"file_names"`
	MaxEvents *int     `hcl:"max_events,optional"`
}

type analyzerSchema struct {
	Type string   `hcl:"type,label"`
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

type pathSchema struct {
	Name    string   `hcl:"name,label"`
	Modules []string `hcl:"modules"`
}

// Loader parses process configuration files.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a Loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load parses the process file at path, decodes each analyzer block through
// its registration, and returns the validated process descriptor.
func (l *Loader) Load(ctx context.Context, path string, vars Variables,
	reg *registry.Registry) (*process.Process, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading process configuration.", "path", path)

	f, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", path, diags)
	}

	evalCtx := vars.EvalContext()
	var root fileSchema
	if diags := gohcl.DecodeBody(f.Body, evalCtx, &root); diags.HasErrors() {
		return nil, fmt.Errorf("decoding %s: %w", path, diags)
	}
	if root.Process == nil {
		return nil, fmt.Errorf("%s contains no process block", path)
	}
	return l.translate(ctx, root.Process, evalCtx, reg)
}

func (l *Loader) translate(ctx context.Context, s *processSchema, evalCtx *hcl.EvalContext,
	reg *registry.Registry) (*process.Process, error) {
	logger := ctxlog.FromContext(ctx)

	p := &process.Process{
		Name:    s.Name,
		Modules: make(map[string]*process.ModuleConfig, len(s.Analyzers)),
	}

	if s.Options != nil {
		p.Options = process.ExecutionOptions{
			WantSummary:     s.Options.WantSummary,
			NumberOfThreads: s.Options.NumberOfThreads,
			NumberOfStreams: s.Options.NumberOfStreams,
		}
	}
	if p.Options.NumberOfThreads == 0 {
		p.Options.NumberOfThreads = 1
	}

	if s.Source == nil {
		return nil, fmt.Errorf("process %q has no source block", s.Name)
	}
	p.Source = process.SourceConfig{
		Type:      s.Source.Type,
		FileNames: s.Source.FileNames,
		MaxEvents: -1,
	}
	if s.Source.MaxEvents != nil {
		p.Source.MaxEvents = *s.Source.MaxEvents
	}

	for _, a := range s.Analyzers {
		if _, exists := p.Modules[a.Name]; exists {
			return nil, fmt.Errorf("duplicate analyzer name %q", a.Name)
		}
		ra, err := reg.Analyzer(a.Type)
		if err != nil {
			return nil, err
		}
		input := ra.NewInput()
		if diags := gohcl.DecodeBody(a.Body, evalCtx, input); diags.HasErrors() {
			return nil, fmt.Errorf("decoding parameters of analyzer %q: %w", a.Name, diags)
		}
		p.Modules[a.Name] = &process.ModuleConfig{Type: a.Type, Name: a.Name, Input: input}
		logger.Debug("Configured analyzer module.", "name", a.Name, "type", a.Type)
	}

	for _, path := range s.Paths {
		p.Paths = append(p.Paths, process.Path{Name: path.Name, Modules: path.Modules})
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid process %q: %w", s.Name, err)
	}
	return p, nil
}
