package encoder

import (
	"fmt"

	"github.com/logari84/OnChipDataCompression/internal/alphabet"
	"github.com/logari84/OnChipDataCompression/internal/bitpack"
	"github.com/logari84/OnChipDataCompression/internal/pixel"
)

// Format selects the encoding schema applied to chip data.
type Format int

const (
	// FormatSinglePixel writes every hit as pixel id + raw ADC.
	FormatSinglePixel Format = iota
	// FormatRegion writes whole readout units with raw ADC rasters.
	FormatRegion
	// FormatRegionCompressedAdc writes readout units with Huffman-coded ADC.
	FormatRegionCompressedAdc
	// FormatDelta writes Huffman-coded pixel deltas and active-ADC codes.
	FormatDelta
)

var formatNames = map[Format]string{
	FormatSinglePixel:         "SinglePixel",
	FormatRegion:              "Region",
	FormatRegionCompressedAdc: "RegionWithCompressedAdc",
	FormatDelta:               "Delta",
}

func (f Format) String() string { return formatNames[f] }

// Formats lists all supported formats in definition order.
func Formats() []Format {
	return []Format{FormatSinglePixel, FormatRegion, FormatRegionCompressedAdc, FormatDelta}
}

// ParseFormat converts a configuration string into a Format.
func ParseFormat(s string) (Format, error) {
	for f, name := range formatNames {
		if name == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown encoder format %q", s)
}

// ChipDataEncoder applies one encoding schema to chips of a fixed layout.
type ChipDataEncoder struct {
	chipLayout pixel.MultiRegionLayout
	maker      PackageMaker
}

// Options configure a ChipDataEncoder beyond its format and geometry.
type Options struct {
	Ordering       pixel.Ordering
	DictionaryFile string
}

// New builds a ChipDataEncoder. Formats that code against dictionaries
// require Options.DictionaryFile.
func New(format Format, chipLayout pixel.MultiRegionLayout, readoutUnit pixel.RegionLayout,
	maxAdc int, opts Options) (*ChipDataEncoder, error) {
	bitsPerAdc := pixel.BitsPerValue(maxAdc)
	e := &ChipDataEncoder{chipLayout: chipLayout}

	switch format {
	case FormatSinglePixel:
		e.maker = NewSinglePixelMaker(bitsPerAdc)
	case FormatRegion:
		e.maker = NewBlockMaker(nil, readoutUnit, bitsPerAdc)
	case FormatRegionCompressedAdc, FormatDelta:
		source, err := alphabet.LoadCollection(opts.DictionaryFile)
		if err != nil {
			return nil, err
		}
		if format == FormatRegionCompressedAdc {
			adcStat, err := source.AtKind(alphabet.KindAdc)
			if err != nil {
				return nil, err
			}
			e.maker = NewBlockMaker(adcStat, readoutUnit, bitsPerAdc)
		} else {
			maker, err := NewDeltaMaker(source, readoutUnit, opts.Ordering)
			if err != nil {
				return nil, err
			}
			e.maker = maker
		}
	default:
		return nil, fmt.Errorf("encoder format is not supported")
	}
	return e, nil
}

// Encode packs a chip. Chips with a different region split are re-split to
// the encoder's layout first.
func (e *ChipDataEncoder) Encode(chip *pixel.Chip) (*bitpack.Package, error) {
	if !chip.MultiLayout().SameSplit(e.chipLayout) {
		split, err := pixel.SplitChip(chip, e.chipLayout.RegionRows, e.chipLayout.RegionColumns)
		if err != nil {
			return nil, fmt.Errorf("re-splitting chip: %w", err)
		}
		chip = split
	}
	return e.maker.Make(chip)
}

// Decode unpacks a package back into chip data.
func (e *ChipDataEncoder) Decode(pkg *bitpack.Package) (*pixel.Chip, error) {
	return e.maker.Read(pkg, e.chipLayout)
}
