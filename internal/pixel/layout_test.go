package pixel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitsPerValue(t *testing.T) {
	testCases := []struct {
		maxValue int
		expected int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{16, 4},
		{17, 5},
		{400, 9},
		{160000, 18},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, BitsPerValue(tc.maxValue), "maxValue=%d", tc.maxValue)
	}
}

func TestParseOrdering(t *testing.T) {
	for name, expected := range map[string]Ordering{
		"by_row":              ByRow,
		"by_column":           ByColumn,
		"by_region_by_row":    ByRegionByRow,
		"by_region_by_column": ByRegionByColumn,
	} {
		o, err := ParseOrdering(name)
		require.NoError(t, err)
		assert.Equal(t, expected, o)
	}

	_, err := ParseOrdering("diagonal")
	assert.Error(t, err)
}

func TestRegionLayoutPixelID(t *testing.T) {
	layout := MustRegionLayout(4, 6)
	assert.Equal(t, 24, layout.NumPixels())
	assert.Equal(t, 2, layout.BitsPerRow())
	assert.Equal(t, 3, layout.BitsPerColumn())
	assert.Equal(t, 5, layout.BitsPerID())

	for id := 0; id < layout.NumPixels(); id++ {
		p, err := layout.PixelAt(id)
		require.NoError(t, err)
		back, err := layout.PixelID(p)
		require.NoError(t, err)
		assert.Equal(t, id, back)
	}

	_, err := layout.PixelID(Pixel{Row: 4, Column: 0})
	assert.Error(t, err)
	_, err = layout.PixelID(Pixel{Row: 0, Column: -1})
	assert.Error(t, err)
	_, err = layout.PixelAt(24)
	assert.Error(t, err)
}

func TestNewRegionLayoutRejectsBadDimensions(t *testing.T) {
	_, err := NewRegionLayout(0, 5)
	assert.Error(t, err)
	_, err = NewRegionLayout(5, -1)
	assert.Error(t, err)
}

func TestMultiRegionLayoutSplit(t *testing.T) {
	layout := MustMultiRegionLayoutSplit(400, 400, 1, 4)
	assert.Equal(t, 4, layout.NumRegions())
	assert.Equal(t, RegionLayout{Rows: 400, Columns: 100}, layout.Region)
	assert.Equal(t, 400, layout.LastRegionRows)
	assert.Equal(t, 100, layout.LastRegionColumns)
	for regionID := 0; regionID < layout.NumRegions(); regionID++ {
		assert.True(t, layout.IsRegionComplete(regionID))
	}
}

func TestMultiRegionLayoutPartialLastRegion(t *testing.T) {
	// 10x10 area split into 3x3 regions gives a 4x4 grid with partial
	// regions on the last row and column.
	layout, err := NewMultiRegionLayout(10, 10, MustRegionLayout(3, 3))
	require.NoError(t, err)
	assert.Equal(t, 4, layout.RegionRows)
	assert.Equal(t, 4, layout.RegionColumns)
	assert.Equal(t, 1, layout.LastRegionRows)
	assert.Equal(t, 1, layout.LastRegionColumns)

	assert.True(t, layout.IsRegionComplete(layout.RegionID(0, 0)))
	assert.False(t, layout.IsRegionComplete(layout.RegionID(0, 3)))
	assert.False(t, layout.IsRegionComplete(layout.RegionID(3, 0)))
	assert.Equal(t, RegionLayout{Rows: 1, Columns: 1},
		layout.ActualRegionLayout(layout.RegionID(3, 3)))
}

func TestRegionPixelRoundTrip(t *testing.T) {
	layout := MustMultiRegionLayoutSplit(8, 12, 2, 3)
	for row := Coordinate(0); int(row) < layout.Rows; row++ {
		for column := Coordinate(0); int(column) < layout.Columns; column++ {
			p := Pixel{Row: row, Column: column}
			regionID, regionPixel := layout.ToRegionPixel(p)
			require.Less(t, regionID, layout.NumRegions())
			assert.True(t, layout.Region.Contains(regionPixel))
			assert.Equal(t, p, layout.FromRegionPixel(regionID, regionPixel))
		}
	}
}

func TestSameSplit(t *testing.T) {
	a := MustMultiRegionLayoutSplit(400, 400, 1, 4)
	b := MustMultiRegionLayoutSplit(400, 400, 1, 4)
	c := MustMultiRegionLayoutSplit(400, 400, 2, 2)
	assert.True(t, a.SameSplit(b))
	assert.False(t, a.SameSplit(c))
}
