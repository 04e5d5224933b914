package alphabet

import (
	"fmt"
	"math"
	"sort"
)

// Statistics is the immutable outcome of a statistics production run: letter
// probabilities, the alphabet entropy, and the Huffman table in both
// directions.
type Statistics struct {
	name          string
	alphabet      []Letter
	counts        uint64
	probabilities map[Letter]float64
	entropy       float64
	letterToCode  map[Letter]Code
	codeToLetter  map[Code]Letter
}

// NewStatistics validates and assembles a Statistics value.
func NewStatistics(name string, counts uint64, probabilities map[Letter]float64,
	entropy float64, table map[Letter]Code) (*Statistics, error) {
	if entropy < 0 {
		return nil, fmt.Errorf("entropy should be a positive number or zero")
	}
	if counts == 0 {
		return nil, fmt.Errorf("original counts should be a positive number")
	}
	if len(probabilities) == 0 {
		return nil, fmt.Errorf("alphabet is empty")
	}

	s := &Statistics{
		name:          name,
		counts:        counts,
		probabilities: make(map[Letter]float64, len(probabilities)),
		entropy:       entropy,
		letterToCode:  make(map[Letter]Code, len(table)),
		codeToLetter:  make(map[Code]Letter, len(table)),
	}

	total := 0.0
	for letter, probability := range probabilities {
		if probability < 0 || probability > 1 {
			return nil, fmt.Errorf("invalid original probability for letter '%d'", letter)
		}
		if _, ok := table[letter]; !ok {
			return nil, fmt.Errorf("missing huffman code for letter '%d'", letter)
		}
		total += probability
		s.alphabet = append(s.alphabet, letter)
		s.probabilities[letter] = probability
	}
	if math.Abs(total-1) > 1e-5 {
		return nil, fmt.Errorf("total original probability = %g is not consistent with 1", total)
	}
	sort.Ints(s.alphabet)

	for letter, code := range table {
		if _, ok := s.probabilities[letter]; !ok {
			return nil, fmt.Errorf("missing original probability for letter '%d'", letter)
		}
		s.letterToCode[letter] = code
		s.codeToLetter[code] = letter
	}
	return s, nil
}

// Name returns the alphabet name.
func (s *Statistics) Name() string { return s.name }

// Alphabet returns the letters in ascending order.
func (s *Statistics) Alphabet() []Letter { return s.alphabet }

// NumLetters returns the alphabet size.
func (s *Statistics) NumLetters() int { return len(s.alphabet) }

// Entropy returns the Shannon entropy of the original distribution.
func (s *Statistics) Entropy() float64 { return s.entropy }

// Counts returns the total number of recorded letters.
func (s *Statistics) Counts() uint64 { return s.counts }

// Contains reports whether the letter belongs to the alphabet.
func (s *Statistics) Contains(letter Letter) bool {
	_, ok := s.probabilities[letter]
	return ok
}

// Probability returns the original probability of the letter.
func (s *Statistics) Probability(letter Letter) (float64, error) {
	probability, ok := s.probabilities[letter]
	if !ok {
		return 0, fmt.Errorf("letter '%d' not present in the alphabet", letter)
	}
	return probability, nil
}

// Frequency returns the original absolute frequency of the letter.
func (s *Statistics) Frequency(letter Letter) (float64, error) {
	probability, err := s.Probability(letter)
	if err != nil {
		return 0, err
	}
	return probability * float64(s.counts), nil
}

// CodeOf returns the Huffman code of the letter.
func (s *Statistics) CodeOf(letter Letter) (Code, error) {
	code, ok := s.letterToCode[letter]
	if !ok {
		return Code{}, fmt.Errorf("letter '%d' not present in the alphabet", letter)
	}
	return code, nil
}

// LetterFromCode resolves a Huffman code back to its letter.
func (s *Statistics) LetterFromCode(code Code) (Letter, bool) {
	letter, ok := s.codeToLetter[code]
	return letter, ok
}
