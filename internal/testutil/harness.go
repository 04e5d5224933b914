package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/logari84/OnChipDataCompression/internal/app"
)

// HarnessConfig describes one process run under the test harness.
type HarnessConfig struct {
	// ProcessHCL is the process configuration text.
	ProcessHCL string

	// Dictionaries is exposed as the `dictionaries` variable. Empty picks a
	// file inside the harness directory.
	Dictionaries string

	// InputFiles are exposed as the `input_files` variable.
	InputFiles []string

	// MaxEvents is exposed as the `max_events` variable. Zero means all
	// events.
	MaxEvents int
}

// HarnessResult holds the outcomes of a process test run.
type HarnessResult struct {
	LogOutput    string
	Err          error
	App          *app.App
	Dictionaries string
}

// RunProcessTest writes the process configuration into a temporary directory,
// builds the application around it, and runs it to completion.
func RunProcessTest(t *testing.T, cfg HarnessConfig) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	processPath := filepath.Join(tmpDir, "process.hcl")
	require.NoError(t, os.WriteFile(processPath, []byte(cfg.ProcessHCL), 0o644))

	dictionaries := cfg.Dictionaries
	if dictionaries == "" {
		dictionaries = filepath.Join(tmpDir, "dictionaries.txt")
	}
	maxEvents := cfg.MaxEvents
	if maxEvents == 0 {
		maxEvents = -1
	}

	appConfig, err := app.NewConfig(app.Config{
		ProcessPath:  processPath,
		Dictionaries: dictionaries,
		InputFiles:   cfg.InputFiles,
		MaxEvents:    maxEvents,
		LogFormat:    "text",
		LogLevel:     "debug",
	})
	require.NoError(t, err)

	var logBuf SafeBuffer
	result := &HarnessResult{Dictionaries: dictionaries}

	// NewApp panics on configuration load failures; surface them as errors so
	// tests can assert on them.
	func() {
		defer func() {
			if r := recover(); r != nil {
				result.Err = fmt.Errorf("startup failed: %v", r)
			}
		}()
		result.App = app.NewApp(&logBuf, appConfig)
	}()
	if result.Err == nil {
		result.Err = result.App.Run(context.Background())
	}

	result.LogOutput = logBuf.String()
	return result
}
