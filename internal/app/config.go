package app

import "fmt"

// Config holds all configuration for an application run, resolved from the
// command line before NewApp is called.
type Config struct {
	// ProcessPath is the path to the HCL process description to execute.
	ProcessPath string

	// Dictionaries is the output file for alphabet dictionaries, exposed to
	// the process configuration as the `dictionaries` variable.
	Dictionaries string

	// InputFiles are digi files, exposed as the `input_files` variable.
	InputFiles []string

	// MaxEvents limits how many events the source emits. Negative means all
	// events. Exposed as the `max_events` variable.
	MaxEvents int

	// LogFormat is "text" or "json".
	LogFormat string

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string
}

// NewConfig validates the given configuration and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.ProcessPath == "" {
		return fmt.Errorf("process configuration path is required")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (expected text or json)", c.LogFormat)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return nil
}
