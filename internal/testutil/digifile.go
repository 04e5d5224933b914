package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/logari84/OnChipDataCompression/internal/event"
)

// DigiEvent is one event record of a digi file.
type DigiEvent struct {
	Number   int             `json:"event"`
	Products []event.Product `json:"products"`
}

// WriteDigiFile writes the given events into a JSON-lines digi file inside a
// temporary directory and returns its path.
func WriteDigiFile(t *testing.T, events ...DigiEvent) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "digis.jsonl")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, ev := range events {
		require.NoError(t, enc.Encode(ev))
	}
	require.NoError(t, f.Sync())
	return path
}
