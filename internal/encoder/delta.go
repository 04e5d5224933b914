package encoder

import (
	"fmt"
	"math"

	"github.com/logari84/OnChipDataCompression/internal/alphabet"
	"github.com/logari84/OnChipDataCompression/internal/bitpack"
	"github.com/logari84/OnChipDataCompression/internal/dictionary"
	"github.com/logari84/OnChipDataCompression/internal/pixel"
)

// bitsPerNumPixels is the width of the per-macro-region pixel count written
// in the package trailer.
const bitsPerNumPixels = 10

// DeltaMaker writes hits as Huffman-coded combined row/column deltas between
// consecutive pixels of the readout ordering, with the active-ADC alphabet
// coding the charge. Deltas outside the reduced alphabet escape through the
// special letter followed by the raw pixel id. With more than one macro
// region a pixel-count trailer closes the package.
type DeltaMaker struct {
	readoutUnit pixel.RegionLayout
	ordering    pixel.Ordering
	adcStat     *alphabet.Statistics
	deltaStat   *alphabet.Statistics
}

// NewDeltaMaker creates a delta maker from the dictionaries collection.
func NewDeltaMaker(source *alphabet.Collection, readoutUnit pixel.RegionLayout,
	ordering pixel.Ordering) (*DeltaMaker, error) {
	adcStat, err := source.AtKind(alphabet.KindActiveAdc)
	if err != nil {
		return nil, err
	}
	deltaStat, err := source.AtKind(alphabet.KindDeltaRowColumn)
	if err != nil {
		return nil, err
	}
	return &DeltaMaker{
		readoutUnit: readoutUnit,
		ordering:    ordering,
		adcStat:     adcStat,
		deltaStat:   deltaStat,
	}, nil
}

// regionSequence walks the ordered hits of one macro region, tracking the
// previous pixel for delta computation.
type regionSequence struct {
	hits []pixel.WithAdc
	next int
}

func (s *regionSequence) hasCurrent() bool { return s.next < len(s.hits) }
func (s *regionSequence) current() pixel.WithAdc {
	return s.hits[s.next]
}
func (s *regionSequence) previous() pixel.Pixel {
	if s.next == 0 {
		return pixel.Pixel{}
	}
	return s.hits[s.next-1].Pixel
}

// Make implements PackageMaker.
func (m *DeltaMaker) Make(chip *pixel.Chip) (*bitpack.Package, error) {
	pkg := &bitpack.Package{}
	multiLayout := chip.MultiLayout()
	layout := multiLayout.Region
	nMacroRegions := multiLayout.NumRegions()

	sequences := make([]*regionSequence, 0, nMacroRegions)
	maxSize := 0
	for macroRegionID := 0; macroRegionID < nMacroRegions; macroRegionID++ {
		var hits []pixel.WithAdc
		active, err := chip.IsRegionActive(macroRegionID)
		if err != nil {
			return nil, err
		}
		if active {
			macroRegion, err := chip.RegionAt(macroRegionID)
			if err != nil {
				return nil, err
			}
			area, err := pixel.SubdivideRegion(macroRegion, m.readoutUnit)
			if err != nil {
				return nil, err
			}
			hits, err = area.OrderedPixels(m.ordering)
			if err != nil {
				return nil, err
			}
		}
		sequences = append(sequences, &regionSequence{hits: hits})
		maxSize = max(maxSize, len(hits))
	}

	for n := 0; n < maxSize; n++ {
		for _, seq := range sequences {
			if !seq.hasCurrent() {
				continue
			}
			hit := seq.current()
			if err := m.encodePixel(pkg, layout, hit.Pixel, seq.previous()); err != nil {
				return nil, err
			}
			if err := encodeLetter(m.adcStat, alphabet.Letter(hit.Adc), pkg); err != nil {
				return nil, err
			}
			seq.next++
		}
		if (n+1)%2 == 0 || n+1 == maxSize {
			pkg.NextReadoutCycle()
		}
	}

	if nMacroRegions > 1 {
		for _, seq := range sequences {
			if err := pkg.Write(uint64(len(seq.hits)), bitsPerNumPixels); err != nil {
				return nil, err
			}
		}
		pkg.NextReadoutCycle()
	}
	return pkg, nil
}

// Read implements PackageMaker.
func (m *DeltaMaker) Read(pkg *bitpack.Package, multiLayout pixel.MultiRegionLayout) (*pixel.Chip, error) {
	chip := pixel.NewChip(multiLayout)
	layout := multiLayout.Region
	nMacroRegions := multiLayout.NumRegions()

	previous := make([]pixel.Pixel, nMacroRegions)
	nPixels := make([]int, nMacroRegions)
	maxNumPixels := 0
	if nMacroRegions > 1 {
		trailer := pkg.End()
		if err := trailer.Seek(bitsPerNumPixels * nMacroRegions); err != nil {
			return nil, fmt.Errorf("reading delta package trailer: %w", err)
		}
		for k := 0; k < nMacroRegions; k++ {
			n, err := trailer.Read(bitsPerNumPixels, false)
			if err != nil {
				return nil, fmt.Errorf("reading delta package trailer: %w", err)
			}
			nPixels[k] = int(n)
			maxNumPixels = max(maxNumPixels, int(n))
		}
	} else {
		maxNumPixels = math.MaxInt
		nPixels[0] = maxNumPixels
	}

	r := pkg.Begin()
	for n := 0; n < maxNumPixels && !r.AtEnd(); n++ {
		for k := 0; k < nMacroRegions; k++ {
			if nPixels[k] <= n {
				continue
			}
			regionPixel, err := m.decodePixel(r, layout, previous[k])
			if err != nil {
				return nil, err
			}
			letter, err := decodeLetter(m.adcStat, r)
			if err != nil {
				return nil, err
			}
			chipPixel := multiLayout.FromRegionPixel(k, regionPixel)
			if err := chip.AddPixel(chipPixel, pixel.Adc(letter)); err != nil {
				return nil, err
			}
			previous[k] = regionPixel
		}
	}
	return chip, nil
}

// encodePixel writes the wrapped row/column delta as a single combined
// letter, escaping to the raw pixel id when the delta was reduced out of the
// alphabet.
func (m *DeltaMaker) encodePixel(pkg *bitpack.Package, layout pixel.RegionLayout,
	p, previous pixel.Pixel) error {
	deltaRow := (int(p.Row) + layout.Rows - int(previous.Row)) % layout.Rows
	deltaColumn := (int(p.Column) + layout.Columns - int(previous.Column)) % layout.Columns
	deltaRowColumn, err := layout.PixelID(pixel.Pixel{
		Row:    pixel.Coordinate(deltaRow),
		Column: pixel.Coordinate(deltaColumn),
	})
	if err != nil {
		return err
	}
	if m.deltaStat.Contains(deltaRowColumn) {
		return encodeLetter(m.deltaStat, deltaRowColumn, pkg)
	}
	if err := encodeLetter(m.deltaStat, dictionary.SpecialLetter, pkg); err != nil {
		return err
	}
	pixelID, err := layout.PixelID(p)
	if err != nil {
		return err
	}
	return pkg.Write(uint64(pixelID), layout.BitsPerID())
}

func (m *DeltaMaker) decodePixel(r *bitpack.Reader, layout pixel.RegionLayout,
	previous pixel.Pixel) (pixel.Pixel, error) {
	letter, err := decodeLetter(m.deltaStat, r)
	if err != nil {
		return pixel.Pixel{}, err
	}
	if letter == dictionary.SpecialLetter {
		pixelID, err := r.Read(layout.BitsPerID(), false)
		if err != nil {
			return pixel.Pixel{}, err
		}
		return layout.PixelAt(int(pixelID))
	}
	delta, err := layout.PixelAt(letter)
	if err != nil {
		return pixel.Pixel{}, err
	}
	return pixel.Pixel{
		Row:    pixel.Coordinate((int(previous.Row) + int(delta.Row)) % layout.Rows),
		Column: pixel.Coordinate((int(previous.Column) + int(delta.Column)) % layout.Columns),
	}, nil
}
