// Package event models a single unit of detector data: digitized pixel hits
// grouped into detector sets and addressed by input tags.
package event

import (
	"fmt"

	"github.com/google/uuid"
)

// InputTag addresses one data product inside an event by the
// (label, instance, process) triple.
type InputTag struct {
	Label    string `hcl:"label" cty:"label" json:"label"`
	Instance string `hcl:"instance" cty:"instance" json:"instance"`
	Process  string `hcl:"process" cty:"process" json:"process"`
}

func (t InputTag) String() string {
	return fmt.Sprintf("%s:%s:%s", t.Label, t.Instance, t.Process)
}

// Digi is a single digitized pixel hit.
type Digi struct {
	Row    int16  `json:"row"`
	Column int16  `json:"column"`
	Adc    uint16 `json:"adc"`
}

// Subdetector part names used in digi files.
const (
	SubdetBarrel = "barrel"
	SubdetEndcap = "endcap"
)

// DetSet groups the digis of one detector unit.
type DetSet struct {
	DetID       uint32 `json:"det_id"`
	Subdetector string `json:"subdetector"`
	// Layer is the barrel layer, or the endcap disk.
	Layer int `json:"layer"`
	// Side distinguishes the two endcap halves (1 or 2); unused for barrel.
	Side  int    `json:"side,omitempty"`
	Digis []Digi `json:"digis"`
}

// IsBarrel reports whether the detector unit sits in the pixel barrel.
func (d *DetSet) IsBarrel() bool { return d.Subdetector == SubdetBarrel }

// SignedLayer returns the barrel layer, or the endcap disk with the sign
// carrying the side.
func (d *DetSet) SignedLayer() (int, error) {
	switch d.Subdetector {
	case SubdetBarrel:
		return d.Layer, nil
	case SubdetEndcap:
		switch d.Side {
		case 1:
			return d.Layer, nil
		case 2:
			return -d.Layer, nil
		default:
			return 0, fmt.Errorf("bad endcap side %d for detector %d", d.Side, d.DetID)
		}
	default:
		return 0, fmt.Errorf("bad subdetector %q for detector %d", d.Subdetector, d.DetID)
	}
}

// Product is a labeled collection of detector sets.
type Product struct {
	InputTag
	DetSets []DetSet `json:"det_sets"`
}

// Event is a single processed unit of data.
type Event struct {
	ID       uuid.UUID
	Number   int
	products map[InputTag]*Product
}

// New assembles an event from its products.
func New(number int, products []Product) (*Event, error) {
	e := &Event{
		ID:       uuid.New(),
		Number:   number,
		products: make(map[InputTag]*Product, len(products)),
	}
	for i := range products {
		p := &products[i]
		if _, exists := e.products[p.InputTag]; exists {
			return nil, fmt.Errorf("duplicate data product %s in event %d", p.InputTag, number)
		}
		e.products[p.InputTag] = p
	}
	return e, nil
}

// Get retrieves the detector sets of a data product by input tag.
func (e *Event) Get(tag InputTag) ([]DetSet, error) {
	p, ok := e.products[tag]
	if !ok {
		return nil, fmt.Errorf("data product %s not found in event %d", tag, e.Number)
	}
	return p.DetSets, nil
}
