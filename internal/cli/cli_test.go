package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	var out bytes.Buffer
	config, shouldExit, err := Parse([]string{"process.hcl"}, &out)
	require.NoError(t, err)
	require.False(t, shouldExit)

	assert.Equal(t, "process.hcl", config.ProcessPath)
	assert.Equal(t, "dictionaries.txt", config.Dictionaries)
	assert.Empty(t, config.InputFiles)
	assert.Equal(t, -1, config.MaxEvents)
	assert.Equal(t, "text", config.LogFormat)
	assert.Equal(t, "info", config.LogLevel)
}

func TestParseProcessFlagWinsOverPositional(t *testing.T) {
	var out bytes.Buffer
	config, _, err := Parse([]string{"-process", "a.hcl", "b.hcl"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "a.hcl", config.ProcessPath)

	config, _, err = Parse([]string{"-p", "c.hcl"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "c.hcl", config.ProcessPath)
}

func TestParseInputFiles(t *testing.T) {
	var out bytes.Buffer
	config, _, err := Parse([]string{
		"-input", "a.jsonl",
		"-input", "b.jsonl,c.jsonl",
		"process.hcl",
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jsonl", "b.jsonl", "c.jsonl"}, []string(config.InputFiles))
}

func TestParseOptions(t *testing.T) {
	var out bytes.Buffer
	config, _, err := Parse([]string{
		"-dictionaries", "out.txt",
		"-max-events", "100",
		"-log-format", "JSON",
		"-log-level", "DEBUG",
		"process.hcl",
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "out.txt", config.Dictionaries)
	assert.Equal(t, 100, config.MaxEvents)
	assert.Equal(t, "json", config.LogFormat)
	assert.Equal(t, "debug", config.LogLevel)
}

func TestParseWithoutProcessPathPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	config, shouldExit, err := Parse(nil, &out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, config)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParseHelpFlag(t *testing.T) {
	var out bytes.Buffer
	_, shouldExit, err := Parse([]string{"-h"}, &out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	var out bytes.Buffer

	_, _, err := Parse([]string{"-log-format", "xml", "process.hcl"}, &out)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, exitErr.Message, "invalid log-format")

	_, _, err = Parse([]string{"-log-level", "loud", "process.hcl"}, &out)
	require.ErrorAs(t, err, &exitErr)
	assert.Contains(t, exitErr.Message, "invalid log-level")

	_, _, err = Parse([]string{"-unknown-flag", "process.hcl"}, &out)
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}
