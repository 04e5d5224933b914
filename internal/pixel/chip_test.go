package pixel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChip(t *testing.T, layout MultiRegionLayout, hits ...WithAdc) *Chip {
	t.Helper()
	chip := NewChip(layout)
	for _, hit := range hits {
		require.NoError(t, chip.AddPixel(hit.Pixel, hit.Adc))
	}
	return chip
}

func TestChipRegionBookkeeping(t *testing.T) {
	layout := MustMultiRegionLayoutSplit(8, 8, 2, 2)
	chip := newTestChip(t, layout,
		WithAdc{Pixel: Pixel{Row: 0, Column: 0}, Adc: 1},
		WithAdc{Pixel: Pixel{Row: 5, Column: 6}, Adc: 2},
	)

	active, err := chip.IsRegionActive(0)
	require.NoError(t, err)
	assert.True(t, active)

	active, err = chip.IsRegionActive(1)
	require.NoError(t, err)
	assert.False(t, active)

	active, err = chip.IsRegionActive(3)
	require.NoError(t, err)
	assert.True(t, active)

	_, err = chip.IsRegionActive(4)
	assert.Error(t, err)

	region, err := chip.RegionAt(3)
	require.NoError(t, err)
	assert.Equal(t, Adc(2), region.AdcAt(1, 2))

	_, err = chip.RegionAt(1)
	assert.ErrorContains(t, err, "not active")
}

func TestSingleRegionChipSharesStorage(t *testing.T) {
	layout := MustMultiRegionLayoutSplit(4, 4, 1, 1)
	chip := newTestChip(t, layout, WithAdc{Pixel: Pixel{Row: 1, Column: 1}, Adc: 9})

	region, err := chip.RegionAt(0)
	require.NoError(t, err)
	assert.Equal(t, Adc(9), region.AdcAt(1, 1))
}

func TestSplitChip(t *testing.T) {
	src := newTestChip(t, MustMultiRegionLayoutSplit(8, 8, 1, 1),
		WithAdc{Pixel: Pixel{Row: 3, Column: 7}, Adc: 4},
		WithAdc{Pixel: Pixel{Row: 6, Column: 1}, Adc: 5},
	)

	split, err := SplitChip(src, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, split.MultiLayout().NumRegions())
	assert.True(t, split.Equal(src))

	region, err := split.RegionAt(1)
	require.NoError(t, err)
	assert.Equal(t, Adc(4), region.AdcAt(3, 3))
}

func TestSubdivideRegion(t *testing.T) {
	region := NewRegion(MustRegionLayout(4, 4))
	require.NoError(t, region.AddPixel(Pixel{Row: 2, Column: 3}, 6))

	units, err := SubdivideRegion(region, MustRegionLayout(2, 2))
	require.NoError(t, err)
	assert.Equal(t, 4, units.MultiLayout().NumRegions())

	unit, err := units.RegionAt(3)
	require.NoError(t, err)
	assert.Equal(t, Adc(6), unit.AdcAt(0, 1))
}

func TestChipOrderedPixelsByRegion(t *testing.T) {
	layout := MustMultiRegionLayoutSplit(4, 4, 2, 2)
	chip := newTestChip(t, layout,
		WithAdc{Pixel: Pixel{Row: 0, Column: 0}, Adc: 1}, // region (0,0)
		WithAdc{Pixel: Pixel{Row: 0, Column: 3}, Adc: 2}, // region (0,1)
		WithAdc{Pixel: Pixel{Row: 3, Column: 0}, Adc: 3}, // region (1,0)
		WithAdc{Pixel: Pixel{Row: 3, Column: 3}, Adc: 4}, // region (1,1)
	)

	byRow, err := chip.OrderedPixels(ByRegionByRow)
	require.NoError(t, err)
	assert.Equal(t, []Pixel{{0, 0}, {0, 3}, {3, 0}, {3, 3}}, pixelsOf(byRow))

	byColumn, err := chip.OrderedPixels(ByRegionByColumn)
	require.NoError(t, err)
	assert.Equal(t, []Pixel{{0, 0}, {3, 0}, {0, 3}, {3, 3}}, pixelsOf(byColumn))
}

func TestChipOrderedPixelsPlainOrderings(t *testing.T) {
	layout := MustMultiRegionLayoutSplit(4, 4, 2, 2)
	chip := newTestChip(t, layout,
		WithAdc{Pixel: Pixel{Row: 0, Column: 3}, Adc: 1},
		WithAdc{Pixel: Pixel{Row: 3, Column: 0}, Adc: 2},
	)

	byColumn, err := chip.OrderedPixels(ByColumn)
	require.NoError(t, err)
	assert.Equal(t, []Pixel{{3, 0}, {0, 3}}, pixelsOf(byColumn))
}
