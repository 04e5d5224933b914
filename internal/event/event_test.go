package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputTagString(t *testing.T) {
	tag := InputTag{Label: "simSiPixelDigis", Instance: "Pixel", Process: "HLT"}
	assert.Equal(t, "simSiPixelDigis:Pixel:HLT", tag.String())
}

func TestSignedLayer(t *testing.T) {
	barrel := DetSet{Subdetector: SubdetBarrel, Layer: 2}
	layer, err := barrel.SignedLayer()
	require.NoError(t, err)
	assert.Equal(t, 2, layer)
	assert.True(t, barrel.IsBarrel())

	near := DetSet{Subdetector: SubdetEndcap, Layer: 3, Side: 1}
	layer, err = near.SignedLayer()
	require.NoError(t, err)
	assert.Equal(t, 3, layer)
	assert.False(t, near.IsBarrel())

	far := DetSet{Subdetector: SubdetEndcap, Layer: 3, Side: 2}
	layer, err = far.SignedLayer()
	require.NoError(t, err)
	assert.Equal(t, -3, layer)

	broken := DetSet{Subdetector: SubdetEndcap, Layer: 3, Side: 7}
	_, err = broken.SignedLayer()
	assert.ErrorContains(t, err, "bad endcap side")

	unknown := DetSet{Subdetector: "forward", Layer: 1}
	_, err = unknown.SignedLayer()
	assert.ErrorContains(t, err, "bad subdetector")
}

func TestEventGet(t *testing.T) {
	tag := InputTag{Label: "simSiPixelDigis", Instance: "Pixel", Process: "HLT"}
	detSets := []DetSet{{DetID: 10, Subdetector: SubdetBarrel, Layer: 1,
		Digis: []Digi{{Row: 1, Column: 2, Adc: 3}}}}

	ev, err := New(42, []Product{{InputTag: tag, DetSets: detSets}})
	require.NoError(t, err)
	assert.Equal(t, 42, ev.Number)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", ev.ID.String())

	got, err := ev.Get(tag)
	require.NoError(t, err)
	assert.Equal(t, detSets, got)

	_, err = ev.Get(InputTag{Label: "siPixelDigis"})
	assert.ErrorContains(t, err, "not found")
}

func TestNewRejectsDuplicateProducts(t *testing.T) {
	tag := InputTag{Label: "simSiPixelDigis", Instance: "Pixel", Process: "HLT"}
	_, err := New(1, []Product{{InputTag: tag}, {InputTag: tag}})
	assert.ErrorContains(t, err, "duplicate data product")
}
