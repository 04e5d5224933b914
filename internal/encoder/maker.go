// Package encoder applies the on-chip encoding schemas to chip data: raw
// single-pixel readout, per-block readout with optional Huffman-coded ADC,
// and delta encoding against the compression dictionaries.
package encoder

import (
	"github.com/logari84/OnChipDataCompression/internal/bitpack"
	"github.com/logari84/OnChipDataCompression/internal/pixel"
)

// PackageMaker turns chip data into a bit-level package and back.
type PackageMaker interface {
	Make(chip *pixel.Chip) (*bitpack.Package, error)
	Read(pkg *bitpack.Package, layout pixel.MultiRegionLayout) (*pixel.Chip, error)
}

// SinglePixelMaker writes each hit as a pixel id plus a raw ADC value. A
// readout cycle is marked after every full region count of hits.
type SinglePixelMaker struct {
	bitsPerAdc int
}

// NewSinglePixelMaker creates a maker writing bitsPerAdc bits per ADC.
func NewSinglePixelMaker(bitsPerAdc int) *SinglePixelMaker {
	return &SinglePixelMaker{bitsPerAdc: bitsPerAdc}
}

// Make implements PackageMaker.
func (m *SinglePixelMaker) Make(chip *pixel.Chip) (*bitpack.Package, error) {
	pkg := &bitpack.Package{}
	layout := chip.MultiLayout()
	bitsPerPixelID := layout.BitsPerID()
	nRegions := layout.NumRegions()

	hits := chip.Pixels()
	for n, hit := range hits {
		pixelID, err := layout.PixelID(hit.Pixel)
		if err != nil {
			return nil, err
		}
		if err := pkg.Write(uint64(pixelID), bitsPerPixelID); err != nil {
			return nil, err
		}
		if err := pkg.Write(uint64(hit.Adc), m.bitsPerAdc); err != nil {
			return nil, err
		}
		if (n+1)%nRegions == 0 || n+1 == len(hits) {
			pkg.NextReadoutCycle()
		}
	}
	return pkg, nil
}

// Read implements PackageMaker.
func (m *SinglePixelMaker) Read(pkg *bitpack.Package, layout pixel.MultiRegionLayout) (*pixel.Chip, error) {
	bitsPerPixelID := layout.BitsPerID()
	chip := pixel.NewChip(layout)

	for r := pkg.Begin(); !r.AtEnd(); {
		pixelID, err := r.Read(bitsPerPixelID, false)
		if err != nil {
			return nil, err
		}
		adc, err := r.Read(m.bitsPerAdc, false)
		if err != nil {
			return nil, err
		}
		p, err := layout.PixelAt(int(pixelID))
		if err != nil {
			return nil, err
		}
		if err := chip.AddPixel(p, pixel.Adc(adc)); err != nil {
			return nil, err
		}
	}
	return chip, nil
}
