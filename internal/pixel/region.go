package pixel

import (
	"fmt"
	"sort"
)

// Region is a sparse collection of hit pixels inside a single layout.
type Region struct {
	layout RegionLayout
	pixels map[Pixel]Adc
}

// NewRegion creates an empty region for the given layout.
func NewRegion(layout RegionLayout) *Region {
	return &Region{layout: layout, pixels: make(map[Pixel]Adc)}
}

// Layout returns the region layout.
func (r *Region) Layout() RegionLayout { return r.layout }

// NumPixels returns the number of hit pixels.
func (r *Region) NumPixels() int { return len(r.pixels) }

// HasActivePixels reports whether the region contains any hits.
func (r *Region) HasActivePixels() bool { return len(r.pixels) != 0 }

// AddPixel records a hit. A pixel can be added only once.
func (r *Region) AddPixel(p Pixel, adc Adc) error {
	if err := r.layout.CheckPixel(p); err != nil {
		return err
	}
	if _, exists := r.pixels[p]; exists {
		return fmt.Errorf("pixel %v is already present", p)
	}
	r.pixels[p] = adc
	return nil
}

// Adc returns the ADC of a pixel, or 0 when the pixel has no hit.
func (r *Region) Adc(p Pixel) Adc { return r.pixels[p] }

// AdcAt is Adc for integer coordinates.
func (r *Region) AdcAt(row, column int) Adc {
	return r.Adc(Pixel{Row: Coordinate(row), Column: Coordinate(column)})
}

// Pixels returns the hit pixels in row-major order.
func (r *Region) Pixels() []WithAdc {
	result := make([]WithAdc, 0, len(r.pixels))
	for p, adc := range r.pixels {
		result = append(result, WithAdc{Pixel: p, Adc: adc})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Pixel.Less(result[j].Pixel) })
	return result
}

// OrderedPixels returns the hit pixels linearized in the requested ordering.
// Region orderings are only available on chips.
func (r *Region) OrderedPixels(ordering Ordering) ([]WithAdc, error) {
	result := r.Pixels()
	switch ordering {
	case ByRow:
		// Pixels() is already row-major.
	case ByColumn:
		sort.Slice(result, func(i, j int) bool {
			if result[i].Pixel.Column != result[j].Pixel.Column {
				return result[i].Pixel.Column < result[j].Pixel.Column
			}
			return result[i].Pixel.Row < result[j].Pixel.Row
		})
	default:
		return nil, fmt.Errorf("unsupported ordering for a plain region")
	}
	return result, nil
}

// SameHits reports whether both regions hold exactly the same pixels with the
// same ADC values.
func (r *Region) SameHits(other *Region) bool {
	if len(r.pixels) != len(other.pixels) {
		return false
	}
	for p, adc := range r.pixels {
		otherAdc, ok := other.pixels[p]
		if !ok || otherAdc != adc {
			return false
		}
	}
	return true
}
