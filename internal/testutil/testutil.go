// Package testutil provides shared helpers for tests: digi file writers,
// detector data builders, and a harness that runs a full process from an HCL
// string.
package testutil

import (
	"bytes"
	"sync"

	"github.com/logari84/OnChipDataCompression/internal/event"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SimDigisTag is the input tag digi files produced by the simulation chain
// carry their pixel digis under.
func SimDigisTag() event.InputTag {
	return event.InputTag{Label: "simSiPixelDigis", Instance: "Pixel", Process: "HLT"}
}

// BarrelDetSet builds a detector set on the given barrel layer.
func BarrelDetSet(detID uint32, layer int, digis ...event.Digi) event.DetSet {
	return event.DetSet{
		DetID:       detID,
		Subdetector: event.SubdetBarrel,
		Layer:       layer,
		Digis:       digis,
	}
}

// EndcapDetSet builds a detector set on the given endcap disk and side.
func EndcapDetSet(detID uint32, disk, side int, digis ...event.Digi) event.DetSet {
	return event.DetSet{
		DetID:       detID,
		Subdetector: event.SubdetEndcap,
		Layer:       disk,
		Side:        side,
		Digis:       digis,
	}
}

// SimProduct wraps detector sets into a product under the simulation tag.
func SimProduct(detSets ...event.DetSet) event.Product {
	return event.Product{InputTag: SimDigisTag(), DetSets: detSets}
}
