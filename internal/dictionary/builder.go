// Package dictionary builds the compression dictionaries: alphabet
// statistics collected over many chips and saved as a text file consumed by
// the encoders.
package dictionary

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/logari84/OnChipDataCompression/internal/alphabet"
	"github.com/logari84/OnChipDataCompression/internal/ctxlog"
	"github.com/logari84/OnChipDataCompression/internal/pixel"
)

// SpecialLetter absorbs the tail of a reduced alphabet.
const SpecialLetter alphabet.Letter = -1

// Builder accumulates alphabet statistics over chips and writes the
// resulting dictionaries. Chips may be added from multiple goroutines.
type Builder struct {
	chipLayout        pixel.MultiRegionLayout
	ordering          pixel.Ordering
	readoutUnitLayout pixel.RegionLayout
	maxAlphabetSize   int

	allAdc         *alphabet.Producer
	activeAdc      *alphabet.Producer
	deltaRowColumn *alphabet.Producer
}

// NewBuilder creates a builder for the given chip geometry. maxAdc bounds the
// ADC alphabets and maxAlphabetSize bounds the saved delta alphabet.
func NewBuilder(chipLayout pixel.MultiRegionLayout, ordering pixel.Ordering,
	readoutUnitLayout pixel.RegionLayout, maxAdc, maxAlphabetSize int) *Builder {
	return &Builder{
		chipLayout:        chipLayout,
		ordering:          ordering,
		readoutUnitLayout: readoutUnitLayout,
		maxAlphabetSize:   maxAlphabetSize,
		allAdc:            alphabet.NewRangeProducer(alphabet.KindAdc.Name(), 0, maxAdc),
		activeAdc:         alphabet.NewRangeProducer(alphabet.KindActiveAdc.Name(), 1, maxAdc),
		deltaRowColumn: alphabet.NewRangeProducer(alphabet.KindDeltaRowColumn.Name(),
			0, chipLayout.Region.NumPixels()),
	}
}

// AddChip feeds one chip into all three alphabets. Chips with a different
// region split are re-split to the builder's layout first.
func (b *Builder) AddChip(chip *pixel.Chip) error {
	if !chip.MultiLayout().SameSplit(b.chipLayout) {
		split, err := pixel.SplitChip(chip, b.chipLayout.RegionRows, b.chipLayout.RegionColumns)
		if err != nil {
			return fmt.Errorf("re-splitting chip: %w", err)
		}
		chip = split
	}

	for n := 0; n < b.chipLayout.NumRegions(); n++ {
		active, err := chip.IsRegionActive(n)
		if err != nil {
			return err
		}
		if !active {
			continue
		}
		region, err := chip.RegionAt(n)
		if err != nil {
			return err
		}
		area, err := pixel.SubdivideRegion(region, b.readoutUnitLayout)
		if err != nil {
			return fmt.Errorf("subdividing region %d: %w", n, err)
		}
		ordered, err := area.OrderedPixels(b.ordering)
		if err != nil {
			return err
		}
		if err := b.processOrderedPixels(ordered); err != nil {
			return err
		}
		if err := b.processRegionBlocks(area); err != nil {
			return err
		}
	}
	return nil
}

// processOrderedPixels records active ADC values and wrapped row/column
// deltas between consecutive pixels of the readout sequence.
func (b *Builder) processOrderedPixels(ordered []pixel.WithAdc) error {
	layout := b.chipLayout.Region
	previous := pixel.Pixel{}
	for _, hit := range ordered {
		deltaRow := (int(hit.Pixel.Row) + layout.Rows - int(previous.Row)) % layout.Rows
		deltaColumn := (int(hit.Pixel.Column) + layout.Columns - int(previous.Column)) % layout.Columns
		deltaRowColumn, err := layout.PixelID(pixel.Pixel{
			Row:    pixel.Coordinate(deltaRow),
			Column: pixel.Coordinate(deltaColumn),
		})
		if err != nil {
			return err
		}
		b.activeAdc.AddCount(alphabet.Letter(hit.Adc))
		b.deltaRowColumn.AddCount(deltaRowColumn)
		previous = hit.Pixel
	}
	return nil
}

// processRegionBlocks records every cell of every active readout unit,
// including the zeros, into the full ADC alphabet.
func (b *Builder) processRegionBlocks(area *pixel.Chip) error {
	for n := 0; n < area.MultiLayout().NumRegions(); n++ {
		active, err := area.IsRegionActive(n)
		if err != nil {
			return err
		}
		if !active {
			continue
		}
		region, err := area.RegionAt(n)
		if err != nil {
			return err
		}
		layout := region.Layout()
		for row := 0; row < layout.Rows; row++ {
			for column := 0; column < layout.Columns; column++ {
				b.allAdc.AddCount(alphabet.Letter(region.AdcAt(row, column)))
			}
		}
	}
	return nil
}

// SaveDictionaries produces the three statistics blocks and writes them to
// the output file. The delta alphabet is reduced to the configured size.
func (b *Builder) SaveDictionaries(ctx context.Context, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("saving dictionaries into '%s': %w", path, err)
	}
	defer f.Close()

	if err := b.saveStatistics(ctx, b.allAdc, f, false); err != nil {
		return fmt.Errorf("saving dictionaries into '%s': %w", path, err)
	}
	if err := b.saveStatistics(ctx, b.activeAdc, f, false); err != nil {
		return fmt.Errorf("saving dictionaries into '%s': %w", path, err)
	}
	if err := b.saveStatistics(ctx, b.deltaRowColumn, f, true); err != nil {
		return fmt.Errorf("saving dictionaries into '%s': %w", path, err)
	}
	return f.Sync()
}

func (b *Builder) saveStatistics(ctx context.Context, producer *alphabet.Producer,
	w io.Writer, reduce bool) error {
	logger := ctxlog.FromContext(ctx)
	if reduce && producer.NumLetters() > b.maxAlphabetSize {
		reduced, err := producer.Reduce(b.maxAlphabetSize, producer.Name(), SpecialLetter)
		if err != nil {
			return err
		}
		producer = reduced
	}
	stat, err := producer.Produce()
	if err != nil {
		return err
	}
	logger.Debug("Produced alphabet statistics.",
		"alphabet", stat.Name(), "letters", stat.NumLetters(), "entropy", stat.Entropy())
	if err := stat.WriteTo(w); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
