package pixel

import "fmt"

// Chip is a pixel area subdivided into regions. Hits are kept both in the
// full-area region and in per-region substructures, so that readout code can
// address individual regions directly.
type Chip struct {
	*Region

	multiLayout MultiRegionLayout
	regions     []*Region
}

// NewChip creates an empty chip for the given multi-region layout.
func NewChip(multiLayout MultiRegionLayout) *Chip {
	c := &Chip{
		Region:      NewRegion(multiLayout.RegionLayout),
		multiLayout: multiLayout,
	}
	if multiLayout.NumRegions() > 1 {
		c.regions = make([]*Region, multiLayout.NumRegions())
	}
	return c
}

// SplitChip re-interprets the hits of src on a grid of
// regionRows x regionColumns regions.
func SplitChip(src *Chip, regionRows, regionColumns int) (*Chip, error) {
	multiLayout, err := NewMultiRegionLayoutSplit(src.Layout().Rows, src.Layout().Columns,
		regionRows, regionColumns)
	if err != nil {
		return nil, err
	}
	return fillChip(multiLayout, src.Region)
}

// SubdivideRegion re-interprets the hits of a region on a grid of readout
// units of the given layout.
func SubdivideRegion(src *Region, unit RegionLayout) (*Chip, error) {
	multiLayout, err := NewMultiRegionLayout(src.Layout().Rows, src.Layout().Columns, unit)
	if err != nil {
		return nil, err
	}
	return fillChip(multiLayout, src)
}

func fillChip(multiLayout MultiRegionLayout, src *Region) (*Chip, error) {
	c := NewChip(multiLayout)
	for _, hit := range src.Pixels() {
		if err := c.AddPixel(hit.Pixel, hit.Adc); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MultiLayout returns the chip's multi-region layout.
func (c *Chip) MultiLayout() MultiRegionLayout { return c.multiLayout }

// AddPixel records a hit on the chip and in its region.
func (c *Chip) AddPixel(p Pixel, adc Adc) error {
	if err := c.Region.AddPixel(p, adc); err != nil {
		return err
	}
	if c.regions == nil {
		return nil
	}
	regionID, regionPixel := c.multiLayout.ToRegionPixel(p)
	if c.regions[regionID] == nil {
		c.regions[regionID] = NewRegion(c.multiLayout.Region)
	}
	return c.regions[regionID].AddPixel(regionPixel, adc)
}

// IsRegionActive reports whether the region holds at least one hit.
func (c *Chip) IsRegionActive(regionID int) (bool, error) {
	if regionID < 0 || regionID >= c.multiLayout.NumRegions() {
		return false, fmt.Errorf("invalid region id = %d", regionID)
	}
	if c.regions == nil {
		return c.HasActivePixels(), nil
	}
	return c.regions[regionID] != nil, nil
}

// RegionAt returns the region with the given id. The region must be active.
func (c *Chip) RegionAt(regionID int) (*Region, error) {
	active, err := c.IsRegionActive(regionID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, fmt.Errorf("region %d is not active", regionID)
	}
	if c.regions == nil {
		return c.Region, nil
	}
	return c.regions[regionID], nil
}

// OrderedPixels returns the chip's hits linearized in the requested ordering.
// Region-major orderings walk the region grid and emit each active region's
// hits in row-major order, converted back to chip coordinates.
func (c *Chip) OrderedPixels(ordering Ordering) ([]WithAdc, error) {
	if ordering != ByRegionByRow && ordering != ByRegionByColumn {
		return c.Region.OrderedPixels(ordering)
	}

	outer, inner := c.multiLayout.RegionRows, c.multiLayout.RegionColumns
	regionID := c.multiLayout.RegionID
	if ordering == ByRegionByColumn {
		outer, inner = inner, outer
		regionID = func(n, k int) int { return c.multiLayout.RegionID(k, n) }
	}

	var result []WithAdc
	for n := 0; n < outer; n++ {
		for k := 0; k < inner; k++ {
			id := regionID(n, k)
			active, err := c.IsRegionActive(id)
			if err != nil {
				return nil, err
			}
			if !active {
				continue
			}
			region, err := c.RegionAt(id)
			if err != nil {
				return nil, err
			}
			for _, hit := range region.Pixels() {
				chipPixel := hit.Pixel
				if c.regions != nil {
					chipPixel = c.multiLayout.FromRegionPixel(id, hit.Pixel)
				}
				result = append(result, WithAdc{Pixel: chipPixel, Adc: hit.Adc})
			}
		}
	}
	return result, nil
}

// Equal reports whether both chips hold exactly the same hits.
func (c *Chip) Equal(other *Chip) bool {
	return c.SameHits(other.Region)
}
