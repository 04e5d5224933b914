// Package pixel models the geometry and content of a pixel readout chip:
// rectangular layouts, their subdivision into regions, and sparse pixel
// collections with ADC values.
package pixel

import (
	"fmt"
	"math/bits"
)

// Coordinate is a raw pixel coordinate on a chip.
type Coordinate = int16

// Adc is a digitized charge reading of a single pixel.
type Adc = uint16

// Pixel is a (row, column) position on a chip or inside a region.
type Pixel struct {
	Row    Coordinate
	Column Coordinate
}

func (p Pixel) String() string {
	return fmt.Sprintf("(%d, %d)", p.Row, p.Column)
}

// Less orders pixels row-major: by row, then by column.
func (p Pixel) Less(other Pixel) bool {
	if p.Row != other.Row {
		return p.Row < other.Row
	}
	return p.Column < other.Column
}

// WithAdc pairs a pixel with its ADC value.
type WithAdc struct {
	Pixel Pixel
	Adc   Adc
}

// Ordering selects how pixels are linearized when a chip is read out.
type Ordering int

const (
	ByRow Ordering = iota
	ByColumn
	ByRegionByRow
	ByRegionByColumn
)

var orderingNames = map[string]Ordering{
	"by_row":              ByRow,
	"by_column":           ByColumn,
	"by_region_by_row":    ByRegionByRow,
	"by_region_by_column": ByRegionByColumn,
}

// ParseOrdering converts a configuration string into an Ordering.
func ParseOrdering(s string) (Ordering, error) {
	o, ok := orderingNames[s]
	if !ok {
		return 0, fmt.Errorf("unknown pixel ordering %q", s)
	}
	return o, nil
}

// BitsPerValue returns the number of bits needed to address maxValue
// distinct values.
func BitsPerValue(maxValue int) int {
	if maxValue <= 1 {
		return 0
	}
	return bits.Len(uint(maxValue - 1))
}

// RegionLayout describes a rectangular pixel area.
type RegionLayout struct {
	Rows    int
	Columns int
}

// NewRegionLayout validates the dimensions and builds a layout.
func NewRegionLayout(rows, columns int) (RegionLayout, error) {
	if rows <= 0 || columns <= 0 {
		return RegionLayout{}, fmt.Errorf("invalid region dimensions %dx%d", rows, columns)
	}
	return RegionLayout{Rows: rows, Columns: columns}, nil
}

// MustRegionLayout is NewRegionLayout for statically known dimensions.
func MustRegionLayout(rows, columns int) RegionLayout {
	layout, err := NewRegionLayout(rows, columns)
	if err != nil {
		panic(err)
	}
	return layout
}

// NumPixels returns the total number of pixel positions in the layout.
func (l RegionLayout) NumPixels() int { return l.Rows * l.Columns }

// Contains reports whether the pixel lies inside the layout.
func (l RegionLayout) Contains(p Pixel) bool {
	return p.Row >= 0 && int(p.Row) < l.Rows && p.Column >= 0 && int(p.Column) < l.Columns
}

// CheckPixel returns an error when the pixel lies outside the layout.
func (l RegionLayout) CheckPixel(p Pixel) error {
	if p.Row < 0 || int(p.Row) >= l.Rows {
		return fmt.Errorf("pixel row = %d is outside of the region interval [0, %d]", p.Row, l.Rows-1)
	}
	if p.Column < 0 || int(p.Column) >= l.Columns {
		return fmt.Errorf("pixel column = %d is outside of the region interval [0, %d]", p.Column, l.Columns-1)
	}
	return nil
}

// PixelID maps a pixel to its row-major linear index.
func (l RegionLayout) PixelID(p Pixel) (int, error) {
	if err := l.CheckPixel(p); err != nil {
		return 0, err
	}
	return int(p.Row)*l.Columns + int(p.Column), nil
}

// PixelAt is the inverse of PixelID.
func (l RegionLayout) PixelAt(id int) (Pixel, error) {
	column := id % l.Columns
	row := (id - column) / l.Columns
	p := Pixel{Row: Coordinate(row), Column: Coordinate(column)}
	if err := l.CheckPixel(p); err != nil {
		return Pixel{}, err
	}
	return p, nil
}

func (l RegionLayout) BitsPerRow() int    { return BitsPerValue(l.Rows) }
func (l RegionLayout) BitsPerColumn() int { return BitsPerValue(l.Columns) }
func (l RegionLayout) BitsPerID() int     { return BitsPerValue(l.NumPixels()) }

// MultiRegionLayout subdivides a layout into a grid of equally sized regions.
// The last region row and column may be partial.
type MultiRegionLayout struct {
	RegionLayout

	Region            RegionLayout
	RegionRows        int
	RegionColumns     int
	LastRegionRows    int
	LastRegionColumns int
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// NewMultiRegionLayout subdivides rows x columns into regions of the given
// region layout.
func NewMultiRegionLayout(rows, columns int, region RegionLayout) (MultiRegionLayout, error) {
	outer, err := NewRegionLayout(rows, columns)
	if err != nil {
		return MultiRegionLayout{}, err
	}
	m := MultiRegionLayout{
		RegionLayout:  outer,
		Region:        region,
		RegionRows:    ceilDiv(rows, region.Rows),
		RegionColumns: ceilDiv(columns, region.Columns),
	}
	if m.RegionRows <= 0 || m.RegionColumns <= 0 {
		return MultiRegionLayout{}, fmt.Errorf("invalid multi-region layout")
	}
	m.LastRegionRows = rows - (m.RegionRows-1)*region.Rows
	m.LastRegionColumns = columns - (m.RegionColumns-1)*region.Columns
	return m, nil
}

// NewMultiRegionLayoutSplit subdivides rows x columns into a grid of
// regionRows x regionColumns regions of derived size.
func NewMultiRegionLayoutSplit(rows, columns, regionRows, regionColumns int) (MultiRegionLayout, error) {
	if regionRows <= 0 || regionColumns <= 0 {
		return MultiRegionLayout{}, fmt.Errorf("invalid multi-region layout")
	}
	region, err := NewRegionLayout(ceilDiv(rows, regionRows), ceilDiv(columns, regionColumns))
	if err != nil {
		return MultiRegionLayout{}, err
	}
	return NewMultiRegionLayout(rows, columns, region)
}

// MustMultiRegionLayoutSplit is NewMultiRegionLayoutSplit for statically
// known dimensions.
func MustMultiRegionLayoutSplit(rows, columns, regionRows, regionColumns int) MultiRegionLayout {
	layout, err := NewMultiRegionLayoutSplit(rows, columns, regionRows, regionColumns)
	if err != nil {
		panic(err)
	}
	return layout
}

// NumRegions returns the number of regions in the grid.
func (m MultiRegionLayout) NumRegions() int { return m.RegionRows * m.RegionColumns }

// ToRegionPixel converts a chip pixel into its region id and a pixel local to
// that region.
func (m MultiRegionLayout) ToRegionPixel(p Pixel) (regionID int, regionPixel Pixel) {
	regionRowIndex := int(p.Row) / m.Region.Rows
	regionColumnIndex := int(p.Column) / m.Region.Columns
	regionID = regionRowIndex*m.RegionColumns + regionColumnIndex
	regionPixel = Pixel{
		Row:    Coordinate(int(p.Row) % m.Region.Rows),
		Column: Coordinate(int(p.Column) % m.Region.Columns),
	}
	return regionID, regionPixel
}

// FromRegionPixel converts a region-local pixel back into chip coordinates.
func (m MultiRegionLayout) FromRegionPixel(regionID int, regionPixel Pixel) Pixel {
	regionColumnIndex := regionID % m.RegionColumns
	regionRowIndex := (regionID - regionColumnIndex) / m.RegionColumns
	return Pixel{
		Row:    Coordinate(regionRowIndex*m.Region.Rows + int(regionPixel.Row)),
		Column: Coordinate(regionColumnIndex*m.Region.Columns + int(regionPixel.Column)),
	}
}

// RegionID maps grid indices to a region id.
func (m MultiRegionLayout) RegionID(regionRowIndex, regionColumnIndex int) int {
	return regionRowIndex*m.RegionColumns + regionColumnIndex
}

// ActualRegionLayout returns the true size of a region, accounting for
// partial regions at the grid edges.
func (m MultiRegionLayout) ActualRegionLayout(regionID int) RegionLayout {
	regionColumnIndex := regionID % m.RegionColumns
	regionRowIndex := (regionID - regionColumnIndex) / m.RegionColumns
	columns := m.Region.Columns
	if regionColumnIndex+1 == m.RegionColumns {
		columns = m.LastRegionColumns
	}
	rows := m.Region.Rows
	if regionRowIndex+1 == m.RegionRows {
		rows = m.LastRegionRows
	}
	return RegionLayout{Rows: rows, Columns: columns}
}

// IsRegionComplete reports whether the region has the nominal region size.
func (m MultiRegionLayout) IsRegionComplete(regionID int) bool {
	return m.ActualRegionLayout(regionID) == m.Region
}

// SameSplit reports whether both layouts subdivide their area identically.
func (m MultiRegionLayout) SameSplit(other MultiRegionLayout) bool {
	return m.Region == other.Region && m.RegionRows == other.RegionRows &&
		m.RegionColumns == other.RegionColumns
}
