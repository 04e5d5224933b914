// Package encodercheck implements the TestChipDataEncoder analyzer: it runs
// every encoding schema over the pixel digis of each event, verifies that
// encoding round-trips, and writes a bits-per-chip summary at the end of the
// job.
package encodercheck

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/logari84/OnChipDataCompression/internal/ctxlog"
	"github.com/logari84/OnChipDataCompression/internal/encoder"
	"github.com/logari84/OnChipDataCompression/internal/event"
	"github.com/logari84/OnChipDataCompression/internal/pixel"
	"github.com/logari84/OnChipDataCompression/internal/registry"
)

// TypeName is the analyzer type name used in process configurations.
const TypeName = "TestChipDataEncoder"

const (
	chipRows       = 400
	chipColumns    = 400
	readoutRows    = 2
	readoutColumns = 2
	maxAdc         = 15
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the parameters of the analyzer block.
type Input struct {
	Dictionaries string         `hcl:"dictionaries"`
	PixelDigis   event.InputTag `hcl:"pixel_digis"`
	OutputFile   string         `hcl:"output_file,optional"`
}

// formatStats tracks the bits-per-chip distribution of one encoder format.
type formatStats struct {
	Chips     int64  `json:"chips"`
	TotalBits uint64 `json:"total_bits"`
	MinBits   int    `json:"min_bits"`
	MaxBits   int    `json:"max_bits"`
}

func (s *formatStats) add(bits int) {
	if s.Chips == 0 || bits < s.MinBits {
		s.MinBits = bits
	}
	if bits > s.MaxBits {
		s.MaxBits = bits
	}
	s.Chips++
	s.TotalBits += uint64(bits)
}

type analyzer struct {
	outputFile string
	pixelDigis event.InputTag
	chipLayout pixel.MultiRegionLayout
	encoders   map[encoder.Format]*encoder.ChipDataEncoder

	mu    sync.Mutex
	stats map[string]*formatStats
}

func newAnalyzer(ctx context.Context, input any) (registry.Analyzer, error) {
	in, ok := input.(*Input)
	if !ok {
		return nil, fmt.Errorf("unexpected input type %T", input)
	}
	outputFile := in.OutputFile
	if outputFile == "" {
		outputFile = "encoder_summary.json"
	}
	chipLayout := pixel.MustMultiRegionLayoutSplit(chipRows, chipColumns, 1, 1)
	readoutUnit := pixel.MustRegionLayout(readoutRows, readoutColumns)

	a := &analyzer{
		outputFile: outputFile,
		pixelDigis: in.PixelDigis,
		chipLayout: chipLayout,
		encoders:   make(map[encoder.Format]*encoder.ChipDataEncoder),
		stats:      make(map[string]*formatStats),
	}
	for _, format := range encoder.Formats() {
		e, err := encoder.New(format, chipLayout, readoutUnit, maxAdc, encoder.Options{
			Ordering:       pixel.ByRegionByColumn,
			DictionaryFile: in.Dictionaries,
		})
		if err != nil {
			return nil, fmt.Errorf("building %s encoder: %w", format, err)
		}
		a.encoders[format] = e
		a.stats[format.String()] = &formatStats{}
	}
	return a, nil
}

// Analyze encodes and decodes every chip of the event with every format.
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
		for _, format := range encoder.Formats() {
			e := a.encoders[format]
			pkg, err := e.Encode(chip)
			if err != nil {
				return fmt.Errorf("detector %d, format %s: %w", detSet.DetID, format, err)
			}
			decoded, err := e.Decode(pkg)
			if err != nil {
				return fmt.Errorf("detector %d, format %s: %w", detSet.DetID, format, err)
			}
			if !decoded.Equal(chip) {
				return fmt.Errorf("detector %d, format %s: invalid encoding-decoding",
					detSet.DetID, format)
			}
			a.record(format, pkg.Size())
		}
	}
	return nil
}

func (a *analyzer) record(format encoder.Format, bits int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats[format.String()].add(bits)
}

// EndJob writes the bits-per-chip summary.
func (a *analyzer) EndJob(ctx context.Context) error {
	ctxlog.FromContext(ctx).Info("Saving encoder summary.", "file", a.outputFile)
	a.mu.Lock()
	defer a.mu.Unlock()
	data, err := json.MarshalIndent(a.stats, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(a.outputFile, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("saving encoder summary: %w", err)
	}
	return nil
}

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
