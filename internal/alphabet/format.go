package alphabet

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Kind identifies one of the well-known dictionary alphabets.
type Kind int

const (
	KindAdc Kind = iota
	KindActiveAdc
	KindDeltaRowColumn
)

var kindNames = map[Kind]string{
	KindAdc:            "all_adc",
	KindActiveAdc:      "active_adc",
	KindDeltaRowColumn: "delta_row_column",
}

// Name returns the dictionary-file name of the alphabet kind.
func (k Kind) Name() string { return kindNames[k] }

const (
	columnWidth = 20
	headerWidth = 30
)

// WriteTo writes the statistics block in the dictionary text format: a name
// line, three header parameters, and one table row per letter.
func (s *Statistics) WriteTo(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", s.name)
	fmt.Fprintf(&sb, "%-*s%d\n", headerWidth, "number_of_letters", s.NumLetters())
	fmt.Fprintf(&sb, "%-*s%.5e\n", headerWidth, "alphabet_entropy", s.entropy)
	fmt.Fprintf(&sb, "%-*s%d\n", headerWidth, "original_number_of_counts", s.counts)
	fmt.Fprintf(&sb, "%-*s%-*s%-*s%-*s\n", columnWidth, "Letter", columnWidth, "Orig_probability",
		columnWidth, "Huffman_nbits", columnWidth, "Huffman_code")
	for _, letter := range s.alphabet {
		code := s.letterToCode[letter]
		fmt.Fprintf(&sb, "%-*d%-*.5e%-*d%-*s\n", columnWidth, letter,
			columnWidth, s.probabilities[letter], columnWidth, code.NumBits(), columnWidth, code)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// blockReader walks the lines of a dictionary file.
type blockReader struct {
	scanner *bufio.Scanner
}

func (r *blockReader) nextLine() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	line := strings.TrimSuffix(r.scanner.Text(), "\r")
	return strings.TrimPrefix(line, "\uFEFF"), nil
}

func (r *blockReader) nextNonBlankLine() (string, error) {
	for {
		line, err := r.nextLine()
		if err != nil {
			return "", err
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed, nil
		}
	}
}

func (r *blockReader) readParam(name string) (string, error) {
	line, err := r.nextNonBlankLine()
	if err != nil {
		return "", fmt.Errorf("missing parameter %q: %w", name, err)
	}
	fields := strings.Fields(line)
	if len(fields) != 2 || fields[0] != name {
		return "", fmt.Errorf("malformed parameter line %q, expected %q", line, name)
	}
	return fields[1], nil
}

// readStatistics parses a single statistics block. io.EOF before the name
// line signals the clean end of the file.
func (r *blockReader) readStatistics() (*Statistics, error) {
	name, err := r.nextNonBlankLine()
	if err != nil {
		return nil, err
	}

	nLettersStr, err := r.readParam("number_of_letters")
	if err != nil {
		return nil, err
	}
	nLetters, err := strconv.Atoi(nLettersStr)
	if err != nil {
		return nil, fmt.Errorf("invalid number_of_letters: %w", err)
	}
	entropyStr, err := r.readParam("alphabet_entropy")
	if err != nil {
		return nil, err
	}
	entropy, err := strconv.ParseFloat(entropyStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid alphabet_entropy: %w", err)
	}
	countsStr, err := r.readParam("original_number_of_counts")
	if err != nil {
		return nil, err
	}
	counts, err := strconv.ParseUint(countsStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid original_number_of_counts: %w", err)
	}
	if _, err := r.nextNonBlankLine(); err != nil {
		return nil, fmt.Errorf("missing table header: %w", err)
	}

	probabilities := make(map[Letter]float64, nLetters)
	table := make(map[Letter]Code, nLetters)
	for n := 0; n < nLetters; n++ {
		line, err := r.nextNonBlankLine()
		if err != nil {
			return nil, fmt.Errorf("missing table row %d: %w", n, err)
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("malformed table row %q", line)
		}
		letter, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("invalid letter in row %q: %w", line, err)
		}
		if _, exists := probabilities[letter]; exists {
			return nil, fmt.Errorf("letter '%d' already defined", letter)
		}
		probability, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid probability in row %q: %w", line, err)
		}
		code, err := ParseCode(fields[3])
		if err != nil {
			return nil, err
		}
		if nBits, err := strconv.Atoi(fields[2]); err != nil || nBits != code.NumBits() {
			return nil, fmt.Errorf("inconsistent code length in row %q", line)
		}
		probabilities[letter] = probability
		table[letter] = code
	}

	return NewStatistics(name, counts, probabilities, entropy, table)
}

// Collection is a set of statistics blocks read from a dictionary file,
// addressable by alphabet name.
type Collection struct {
	statistics map[string]*Statistics
}

// ReadCollection parses all statistics blocks from the reader.
func ReadCollection(r io.Reader) (*Collection, error) {
	c := &Collection{statistics: make(map[string]*Statistics)}
	br := &blockReader{scanner: bufio.NewScanner(r)}
	for {
		stat, err := br.readStatistics()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading alphabet statistics: %w", err)
		}
		if _, exists := c.statistics[stat.Name()]; exists {
			return nil, fmt.Errorf("alphabet statistics with name '%s' is already defined", stat.Name())
		}
		c.statistics[stat.Name()] = stat
	}
	if len(c.statistics) == 0 {
		return nil, fmt.Errorf("no alphabet statistics found")
	}
	return c, nil
}

// LoadCollection reads a dictionary file from disk.
func LoadCollection(path string) (*Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dictionaries file: %w", err)
	}
	defer f.Close()
	return ReadCollection(f)
}

// At returns the statistics with the given name.
func (c *Collection) At(name string) (*Statistics, error) {
	stat, ok := c.statistics[name]
	if !ok {
		return nil, fmt.Errorf("alphabet statistics '%s' not found", name)
	}
	return stat, nil
}

// AtKind returns the statistics of a well-known alphabet.
func (c *Collection) AtKind(kind Kind) (*Statistics, error) {
	return c.At(kind.Name())
}
