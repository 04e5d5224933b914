package hclconf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logari84/OnChipDataCompression/internal/analyzers/dictbuilder"
	"github.com/logari84/OnChipDataCompression/internal/analyzers/encodercheck"
	"github.com/logari84/OnChipDataCompression/internal/event"
	"github.com/logari84/OnChipDataCompression/internal/process"
	"github.com/logari84/OnChipDataCompression/internal/registry"
)

const dictionaryBuilderHCL = `
process "TEST" {
  options {
    want_summary      = false
    number_of_threads = 4
    number_of_streams = 0
  }

  source "pool" {
    file_names = input_files
    max_events = max_events
  }

  analyzer "TestDictionaryBuilder" "testDictionaryBuilder" {
    output_file = dictionaries
    pixel_digis = {
      label    = "simSiPixelDigis"
      instance = "Pixel"
      process  = "HLT"
    }
  }

  path "p" {
    modules = ["testDictionaryBuilder"]
  }
}
`

func testRegistry() *registry.Registry {
	reg := registry.New()
	(&dictbuilder.Module{}).Register(reg)
	(&encodercheck.Module{}).Register(reg)
	return reg
}

func writeProcessFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "process.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadProcess(t *testing.T, content string, vars Variables) (*process.Process, error) {
	t.Helper()
	return NewLoader().Load(context.Background(), writeProcessFile(t, content), vars, testRegistry())
}

func TestLoadDictionaryBuilderProcess(t *testing.T) {
	vars := Variables{
		Dictionaries: "my_dictionaries.txt",
		InputFiles:   []string{"digis_1.jsonl", "digis_2.jsonl"},
		MaxEvents:    -1,
	}
	proc, err := loadProcess(t, dictionaryBuilderHCL, vars)
	require.NoError(t, err)

	assert.Equal(t, "TEST", proc.Name)
	assert.False(t, proc.Options.WantSummary)
	assert.Equal(t, 4, proc.Options.NumberOfThreads)
	assert.Equal(t, 0, proc.Options.NumberOfStreams)
	assert.Equal(t, 4, proc.Options.EffectiveStreams())

	assert.Equal(t, "pool", proc.Source.Type)
	assert.Equal(t, []string{"digis_1.jsonl", "digis_2.jsonl"}, proc.Source.FileNames)
	assert.Equal(t, -1, proc.Source.MaxEvents)

	require.Contains(t, proc.Modules, "testDictionaryBuilder")
	module := proc.Modules["testDictionaryBuilder"]
	assert.Equal(t, dictbuilder.TypeName, module.Type)

	input, ok := module.Input.(*dictbuilder.Input)
	require.True(t, ok)
	assert.Equal(t, "my_dictionaries.txt", input.OutputFile)
	assert.Equal(t, event.InputTag{Label: "simSiPixelDigis", Instance: "Pixel", Process: "HLT"},
		input.PixelDigis)

	require.Len(t, proc.Paths, 1)
	assert.Equal(t, "p", proc.Paths[0].Name)
	assert.Equal(t, []string{"testDictionaryBuilder"}, proc.Paths[0].Modules)
}

func TestLoadDefaultsThreadsToOne(t *testing.T) {
	content := `
process "TEST" {
  source "pool" {
    file_names = ["digis.jsonl"]
  }
  analyzer "TestDictionaryBuilder" "b" {
    output_file = dictionaries
    pixel_digis = { label = "l", instance = "i", process = "p" }
  }
  path "p" {
    modules = ["b"]
  }
}
`
	proc, err := loadProcess(t, content, Variables{Dictionaries: "d.txt"})
	require.NoError(t, err)
	assert.Equal(t, 1, proc.Options.NumberOfThreads)
	assert.Equal(t, -1, proc.Source.MaxEvents)
}

func TestLoadRejectsUnknownAnalyzerType(t *testing.T) {
	content := `
process "TEST" {
  source "pool" {
    file_names = ["digis.jsonl"]
  }
  analyzer "NoSuchAnalyzer" "x" {}
  path "p" {
    modules = ["x"]
  }
}
`
	_, err := loadProcess(t, content, Variables{})
	assert.ErrorContains(t, err, "not registered")
}

func TestLoadRejectsDuplicateAnalyzerNames(t *testing.T) {
	content := `
process "TEST" {
  source "pool" {
    file_names = ["digis.jsonl"]
  }
  analyzer "TestDictionaryBuilder" "b" {
    output_file = "d.txt"
    pixel_digis = { label = "l", instance = "i", process = "p" }
  }
  analyzer "TestDictionaryBuilder" "b" {
    output_file = "d.txt"
    pixel_digis = { label = "l", instance = "i", process = "p" }
  }
  path "p" {
    modules = ["b"]
  }
}
`
	_, err := loadProcess(t, content, Variables{})
	assert.ErrorContains(t, err, "duplicate analyzer name")
}

func TestLoadRejectsMissingProcessBlock(t *testing.T) {
	_, err := loadProcess(t, "\n", Variables{})
	assert.ErrorContains(t, err, "no process block")
}

func TestLoadRejectsMissingParameters(t *testing.T) {
	content := `
process "TEST" {
  source "pool" {
    file_names = ["digis.jsonl"]
  }
  analyzer "TestDictionaryBuilder" "b" {
    pixel_digis = { label = "l", instance = "i", process = "p" }
  }
  path "p" {
    modules = ["b"]
  }
}
`
	_, err := loadProcess(t, content, Variables{})
	assert.ErrorContains(t, err, "decoding parameters")
}

func TestLoadRejectsInvalidProcess(t *testing.T) {
	content := `
process "TEST" {
  source "pool" {
    file_names = []
  }
  analyzer "TestDictionaryBuilder" "b" {
    output_file = "d.txt"
    pixel_digis = { label = "l", instance = "i", process = "p" }
  }
  path "p" {
    modules = ["b"]
  }
}
`
	_, err := loadProcess(t, content, Variables{})
	assert.ErrorContains(t, err, "no input files")
}
