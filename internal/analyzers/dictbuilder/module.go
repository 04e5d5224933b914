// Package dictbuilder implements the TestDictionaryBuilder analyzer: it
// accumulates compression-alphabet statistics over the pixel digis of barrel
// layer-1 chips and writes the dictionaries file at the end of the job.
package dictbuilder

import (
	"context"
	"fmt"

	"github.com/logari84/OnChipDataCompression/internal/ctxlog"
	"github.com/logari84/OnChipDataCompression/internal/dictionary"
	"github.com/logari84/OnChipDataCompression/internal/event"
	"github.com/logari84/OnChipDataCompression/internal/pixel"
	"github.com/logari84/OnChipDataCompression/internal/registry"
)

// TypeName is the analyzer type name used in process configurations.
const TypeName = "TestDictionaryBuilder"

// Chip geometry of the studied readout chip.
const (
	chipRows        = 400
	chipColumns     = 400
	chipRegionRows  = 1
	chipRegionCols  = 4
	readoutRows     = 2
	readoutColumns  = 2
	maxAdc          = 15
	maxAlphabetSize = 32
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the parameters of the analyzer block.
type Input struct {
	OutputFile string         `hcl:"output_file"`
	PixelDigis event.InputTag `hcl:"pixel_digis"`
}

type analyzer struct {
	outputFile string
	pixelDigis event.InputTag
	chipLayout pixel.MultiRegionLayout
	builder    *dictionary.Builder
}

func newAnalyzer(ctx context.Context, input any) (registry.Analyzer, error) {
	in, ok := input.(*Input)
	if !ok {
		return nil, fmt.Errorf("unexpected input type %T", input)
	}
	chipLayout := pixel.MustMultiRegionLayoutSplit(chipRows, chipColumns, chipRegionRows, chipRegionCols)
	readoutUnit := pixel.MustRegionLayout(readoutRows, readoutColumns)
	return &analyzer{
		outputFile: in.OutputFile,
		pixelDigis: in.PixelDigis,
		chipLayout: chipLayout,
		builder: dictionary.NewBuilder(chipLayout, pixel.ByRegionByColumn, readoutUnit,
			maxAdc, maxAlphabetSize),
	}, nil
}

// Analyze feeds the barrel layer-1 chips of one event into the builder.
func (a *analyzer) Analyze(ctx context.Context, ev *event.Event) error {
	detSets, err := ev.Get(a.pixelDigis)
	if err != nil {
		return err
	}
	for i := range detSets {
		detSet := &detSets[i]
		layer, err := detSet.SignedLayer()
		if err != nil {
			return err
		}
		if !detSet.IsBarrel() || layer != 1 {
			continue
		}
		chip, err := chipFromDetSet(a.chipLayout, detSet)
		if err != nil {
			return err
		}
		if err := a.builder.AddChip(chip); err != nil {
			return fmt.Errorf("detector %d: %w", detSet.DetID, err)
		}
	}
	return nil
}

// EndJob writes the accumulated dictionaries.
func (a *analyzer) EndJob(ctx context.Context) error {
	ctxlog.FromContext(ctx).Info("Saving dictionaries.", "file", a.outputFile)
	return a.builder.SaveDictionaries(ctx, a.outputFile)
}

// chipFromDetSet fills a chip with the digis that fall inside the layout.
// The digi payload stores ADC 1-based.
func chipFromDetSet(layout pixel.MultiRegionLayout, detSet *event.DetSet) (*pixel.Chip, error) {
	chip := pixel.NewChip(layout)
	for _, digi := range detSet.Digis {
		p := pixel.Pixel{Row: digi.Row, Column: digi.Column}
		if !layout.Contains(p) {
			continue
		}
		adc := digi.Adc
		if adc > 0 {
			adc--
		}
		if err := chip.AddPixel(p, adc); err != nil {
			return nil, err
		}
	}
	return chip, nil
}

// Register registers the analyzer type with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterAnalyzer(TypeName, &registry.RegisteredAnalyzer{
		NewInput: func() any { return new(Input) },
		New:      newAnalyzer,
	})
}
