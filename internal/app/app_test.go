package app_test

import (
	"encoding/json"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logari84/OnChipDataCompression/internal/alphabet"
	"github.com/logari84/OnChipDataCompression/internal/event"
	"github.com/logari84/OnChipDataCompression/internal/testutil"
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

func barrelDigis(seed int) []event.Digi {
	return []event.Digi{
		{Row: int16(seed % 400), Column: int16((seed * 7) % 400), Adc: uint16(2 + seed%13)},
		{Row: int16((seed * 3) % 400), Column: int16((seed * 11) % 400), Adc: uint16(3 + seed%12)},
	}
}

func writeDigis(t *testing.T, numEvents int) string {
	t.Helper()
	events := make([]testutil.DigiEvent, 0, numEvents)
	for n := 1; n <= numEvents; n++ {
		events = append(events, testutil.DigiEvent{
			Number: n,
			Products: []event.Product{testutil.SimProduct(
				testutil.BarrelDetSet(uint32(100+n), 1, barrelDigis(n)...),
				testutil.BarrelDetSet(uint32(200+n), 2, barrelDigis(n+5)...),
				testutil.EndcapDetSet(uint32(300+n), 1, 2, barrelDigis(n+9)...),
			)},
		})
	}
	return testutil.WriteDigiFile(t, events...)
}

func TestDictionaryBuilderProcess(t *testing.T) {
	digis := writeDigis(t, 20)
	result := testutil.RunProcessTest(t, testutil.HarnessConfig{
		ProcessHCL: dictionaryBuilderHCL,
		InputFiles: []string{digis},
	})
	require.NoError(t, result.Err)

	proc := result.App.Process()
	assert.Equal(t, "TEST", proc.Name)
	assert.Equal(t, 4, proc.Options.NumberOfThreads)
	assert.Equal(t, 4, proc.Options.EffectiveStreams())
	assert.False(t, proc.Options.WantSummary)

	ra, err := result.App.Registry().Analyzer("TestDictionaryBuilder")
	require.NoError(t, err)
	assert.NotNil(t, ra)

	collection, err := alphabet.LoadCollection(result.Dictionaries)
	require.NoError(t, err)

	for _, kind := range []alphabet.Kind{
		alphabet.KindAdc, alphabet.KindActiveAdc, alphabet.KindDeltaRowColumn,
	} {
		stats, err := collection.AtKind(kind)
		require.NoError(t, err, "alphabet %s", kind.Name())
		assert.Positive(t, stats.Counts(), "alphabet %s", kind.Name())
		assert.GreaterOrEqual(t, stats.Entropy(), 0.0)
	}

	// Only barrel layer-1 detectors contribute: two digis per event.
	activeAdc, err := collection.AtKind(alphabet.KindActiveAdc)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), activeAdc.Counts())
}

func TestDictionaryBuilderHonorsMaxEvents(t *testing.T) {
	digis := writeDigis(t, 20)
	result := testutil.RunProcessTest(t, testutil.HarnessConfig{
		ProcessHCL: dictionaryBuilderHCL,
		InputFiles: []string{digis},
		MaxEvents:  5,
	})
	require.NoError(t, result.Err)

	collection, err := alphabet.LoadCollection(result.Dictionaries)
	require.NoError(t, err)
	activeAdc, err := collection.AtKind(alphabet.KindActiveAdc)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), activeAdc.Counts())
}

func TestEncoderCheckProcess(t *testing.T) {
	digis := writeDigis(t, 10)

	// First build the dictionaries the encoders will load.
	build := testutil.RunProcessTest(t, testutil.HarnessConfig{
		ProcessHCL: dictionaryBuilderHCL,
		InputFiles: []string{digis},
	})
	require.NoError(t, build.Err)

	summaryFile := build.Dictionaries + ".summary.json"
	checkHCL := fmt.Sprintf(`
process "TEST" {
  options {
    want_summary      = true
    number_of_threads = 4
  }

  source "pool" {
    file_names = input_files
    max_events = max_events
  }

  analyzer "TestChipDataEncoder" "testChipDataEncoder" {
    dictionaries = dictionaries
    output_file  = %q
    pixel_digis = {
      label    = "simSiPixelDigis"
      instance = "Pixel"
      process  = "HLT"
    }
  }

  path "p" {
    modules = ["testChipDataEncoder"]
  }
}
`, summaryFile)

	check := testutil.RunProcessTest(t, testutil.HarnessConfig{
		ProcessHCL:   checkHCL,
		Dictionaries: build.Dictionaries,
		InputFiles:   []string{digis},
	})
	require.NoError(t, check.Err)
	assert.Contains(t, check.LogOutput, "Process summary.")

	data, err := os.ReadFile(summaryFile)
	require.NoError(t, err)
	var summary map[string]struct {
		Chips     int64  `json:"chips"`
		TotalBits uint64 `json:"total_bits"`
	}
	require.NoError(t, json.Unmarshal(data, &summary))
	require.Len(t, summary, 4)
	for format, stats := range summary {
		assert.Equal(t, int64(10), stats.Chips, "format %s", format)
		assert.Positive(t, stats.TotalBits, "format %s", format)
	}
}

func TestStartupFailureSurfacesAsError(t *testing.T) {
	result := testutil.RunProcessTest(t, testutil.HarnessConfig{
		ProcessHCL: `process "BROKEN" {}`,
		InputFiles: []string{"digis.jsonl"},
	})
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "startup failed")
}
