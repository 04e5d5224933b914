package alphabet

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Producer accumulates letter frequencies for a single alphabet and turns
// them into Statistics. It is safe for concurrent use.
type Producer struct {
	mu          sync.Mutex
	name        string
	counts      uint64
	frequencies map[Letter]uint64
}

// NewProducer creates a producer. When an alphabet is given, its letters are
// preloaded with zero frequency so unseen letters still receive codes.
func NewProducer(name string, alphabet []Letter) *Producer {
	p := &Producer{name: name, frequencies: make(map[Letter]uint64, len(alphabet))}
	for _, letter := range alphabet {
		p.frequencies[letter] = 0
	}
	return p
}

// NewRangeProducer creates a producer preloaded with the letters
// [begin, end).
func NewRangeProducer(name string, begin, end Letter) *Producer {
	var alphabet []Letter
	for letter := begin; letter < end; letter++ {
		alphabet = append(alphabet, letter)
	}
	return NewProducer(name, alphabet)
}

// Name returns the alphabet name.
func (p *Producer) Name() string { return p.name }

// NumLetters returns the current alphabet size.
func (p *Producer) NumLetters() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frequencies)
}

// AddCount records one occurrence of the letter. Counting saturates at the
// integer limit instead of overflowing.
func (p *Producer) AddCount(letter Letter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.counts == math.MaxUint64 {
		return
	}
	p.frequencies[letter]++
	p.counts++
}

type letterFrequency struct {
	letter    Letter
	frequency uint64
}

// orderedFrequencies returns the letters sorted by ascending frequency, with
// descending letter value breaking ties. The caller must hold the lock.
func (p *Producer) orderedFrequencies() ([]letterFrequency, error) {
	if p.counts == 0 {
		return nil, fmt.Errorf("statistics is not available for '%s'", p.name)
	}
	ordered := make([]letterFrequency, 0, len(p.frequencies))
	for letter, frequency := range p.frequencies {
		ordered = append(ordered, letterFrequency{letter: letter, frequency: frequency})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].frequency != ordered[j].frequency {
			return ordered[i].frequency < ordered[j].frequency
		}
		return ordered[i].letter > ordered[j].letter
	})
	return ordered, nil
}

// Produce computes probabilities, the alphabet entropy, and the Huffman table
// from the accumulated frequencies.
func (p *Producer) Produce() (*Statistics, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ordered, err := p.orderedFrequencies()
	if err != nil {
		return nil, err
	}

	probabilities := make(map[Letter]float64, len(ordered))
	entropy := 0.0
	for _, entry := range ordered {
		probability := float64(entry.frequency) / float64(p.counts)
		probabilities[entry.letter] = probability
		if probability > 0 {
			entropy -= probability * math.Log2(probability)
		}
	}

	table, err := buildHuffmanTable(p.frequencies)
	if err != nil {
		return nil, err
	}
	return NewStatistics(p.name, p.counts, probabilities, entropy, table)
}

// Reduce builds a producer over a smaller alphabet: the newSize-1 most
// frequent letters are kept and everything else is absorbed into the special
// letter. When the alphabet already fits, a copy is returned.
func (p *Producer) Reduce(newSize int, newName string, special Letter) (*Producer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if newSize <= 1 {
		return nil, fmt.Errorf("new alphabet size = %d is too small", newSize)
	}
	if _, exists := p.frequencies[special]; exists {
		return nil, fmt.Errorf("special letter '%d' already present in the alphabet", special)
	}
	ordered, err := p.orderedFrequencies()
	if err != nil {
		return nil, err
	}
	if len(ordered) <= newSize {
		clone := NewProducer(p.name, nil)
		clone.counts = p.counts
		for letter, frequency := range p.frequencies {
			clone.frequencies[letter] = frequency
		}
		return clone, nil
	}

	reduced := NewProducer(newName, nil)
	reduced.counts = p.counts
	var kept uint64
	for n := 0; n < newSize-1; n++ {
		entry := ordered[len(ordered)-n-1]
		reduced.frequencies[entry.letter] = entry.frequency
		kept += entry.frequency
	}
	reduced.frequencies[special] = p.counts - kept
	return reduced, nil
}
