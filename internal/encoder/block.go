package encoder

import (
	"github.com/logari84/OnChipDataCompression/internal/alphabet"
	"github.com/logari84/OnChipDataCompression/internal/bitpack"
	"github.com/logari84/OnChipDataCompression/internal/pixel"
)

// BlockMaker writes whole readout units: a region address followed by the
// full ADC raster of the unit. With an ADC alphabet the values are
// Huffman-coded, otherwise they are written raw. Units from different macro
// regions are interleaved round-robin, one unit per macro region per readout
// cycle.
type BlockMaker struct {
	adcStat     *alphabet.Statistics
	readoutUnit pixel.RegionLayout
	bitsPerAdc  int
}

// NewBlockMaker creates a block maker. adcStat may be nil for raw ADC.
func NewBlockMaker(adcStat *alphabet.Statistics, readoutUnit pixel.RegionLayout, bitsPerAdc int) *BlockMaker {
	return &BlockMaker{adcStat: adcStat, readoutUnit: readoutUnit, bitsPerAdc: bitsPerAdc}
}

// fullRegionID interleaves the unit id with the macro region id.
func fullRegionID(macroRegionID, regionID, nMacroRegions int) int {
	return regionID*nMacroRegions + macroRegionID
}

func splitFullRegionID(id, nMacroRegions int) (macroRegionID, regionID int) {
	macroRegionID = id % nMacroRegions
	regionID = (id - macroRegionID) / nMacroRegions
	return macroRegionID, regionID
}

type activeUnit struct {
	regionID int
	region   *pixel.Region
}

// Make implements PackageMaker.
func (m *BlockMaker) Make(chip *pixel.Chip) (*bitpack.Package, error) {
	multiLayout := chip.MultiLayout()
	nMacroRegions := multiLayout.NumRegions()
	unitLayout, err := pixel.NewMultiRegionLayout(multiLayout.Region.Rows, multiLayout.Region.Columns, m.readoutUnit)
	if err != nil {
		return nil, err
	}
	nRegions := unitLayout.NumRegions()

	// Queue of pending readout units per active macro region.
	type macroQueue struct {
		macroRegionID int
		units         []activeUnit
	}
	var queues []*macroQueue
	for macroRegionID := 0; macroRegionID < nMacroRegions; macroRegionID++ {
		active, err := chip.IsRegionActive(macroRegionID)
		if err != nil {
			return nil, err
		}
		if !active {
			continue
		}
		macroRegion, err := chip.RegionAt(macroRegionID)
		if err != nil {
			return nil, err
		}
		area, err := pixel.SubdivideRegion(macroRegion, m.readoutUnit)
		if err != nil {
			return nil, err
		}
		q := &macroQueue{macroRegionID: macroRegionID}
		for regionID := 0; regionID < nRegions; regionID++ {
			unitActive, err := area.IsRegionActive(regionID)
			if err != nil {
				return nil, err
			}
			if !unitActive {
				continue
			}
			region, err := area.RegionAt(regionID)
			if err != nil {
				return nil, err
			}
			q.units = append(q.units, activeUnit{regionID: regionID, region: region})
		}
		if len(q.units) > 0 {
			queues = append(queues, q)
		}
	}

	bitsPerAddress := pixel.BitsPerValue(nRegions * nMacroRegions)
	pkg := &bitpack.Package{}
	for len(queues) > 0 {
		remaining := queues[:0]
		for _, q := range queues {
			unit := q.units[0]
			q.units = q.units[1:]

			id := fullRegionID(q.macroRegionID, unit.regionID, nMacroRegions)
			if err := pkg.Write(uint64(id), bitsPerAddress); err != nil {
				return nil, err
			}
			for row := 0; row < m.readoutUnit.Rows; row++ {
				for column := 0; column < m.readoutUnit.Columns; column++ {
					adc := unit.region.AdcAt(row, column)
					if m.adcStat != nil {
						if err := encodeLetter(m.adcStat, alphabet.Letter(adc), pkg); err != nil {
							return nil, err
						}
					} else if err := pkg.Write(uint64(adc), m.bitsPerAdc); err != nil {
						return nil, err
					}
				}
			}
			if len(q.units) > 0 {
				remaining = append(remaining, q)
			}
		}
		queues = remaining
		pkg.NextReadoutCycle()
	}
	return pkg, nil
}

// Read implements PackageMaker.
func (m *BlockMaker) Read(pkg *bitpack.Package, multiLayout pixel.MultiRegionLayout) (*pixel.Chip, error) {
	chip := pixel.NewChip(multiLayout)
	nMacroRegions := multiLayout.NumRegions()
	unitLayout, err := pixel.NewMultiRegionLayout(multiLayout.Region.Rows, multiLayout.Region.Columns, m.readoutUnit)
	if err != nil {
		return nil, err
	}
	nRegions := unitLayout.NumRegions()
	bitsPerAddress := pixel.BitsPerValue(nRegions * nMacroRegions)

	for r := pkg.Begin(); !r.AtEnd(); {
		id, err := r.Read(bitsPerAddress, false)
		if err != nil {
			return nil, err
		}
		macroRegionID, regionID := splitFullRegionID(int(id), nMacroRegions)

		for row := 0; row < m.readoutUnit.Rows; row++ {
			for column := 0; column < m.readoutUnit.Columns; column++ {
				var adc pixel.Adc
				if m.adcStat != nil {
					letter, err := decodeLetter(m.adcStat, r)
					if err != nil {
						return nil, err
					}
					adc = pixel.Adc(letter)
				} else {
					value, err := r.Read(m.bitsPerAdc, false)
					if err != nil {
						return nil, err
					}
					adc = pixel.Adc(value)
				}
				if adc == 0 {
					continue
				}
				readoutPixel := pixel.Pixel{
					Row:    pixel.Coordinate(row),
					Column: pixel.Coordinate(column),
				}
				macroRegionPixel := unitLayout.FromRegionPixel(regionID, readoutPixel)
				chipPixel := multiLayout.FromRegionPixel(macroRegionID, macroRegionPixel)
				if err := chip.AddPixel(chipPixel, adc); err != nil {
					return nil, err
				}
			}
		}
	}
	return chip, nil
}
