package encoder

import (
	"fmt"

	"github.com/logari84/OnChipDataCompression/internal/alphabet"
	"github.com/logari84/OnChipDataCompression/internal/bitpack"
)

// encodeLetter appends the Huffman code of the letter to the package, bit by
// bit in code append order.
func encodeLetter(stat *alphabet.Statistics, letter alphabet.Letter, pkg *bitpack.Package) error {
	code, err := stat.CodeOf(letter)
	if err != nil {
		return err
	}
	for n := 0; n < code.NumBits(); n++ {
		var bit uint64
		if code.Bit(n) {
			bit = 1
		}
		if err := pkg.Write(bit, 1); err != nil {
			return err
		}
	}
	return nil
}

// decodeLetter reads bits until they form a known Huffman code and returns
// the matching letter.
func decodeLetter(stat *alphabet.Statistics, r *bitpack.Reader) (alphabet.Letter, error) {
	var code alphabet.Code
	for {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, fmt.Errorf("decoding huffman letter: %w", err)
		}
		code, err = code.Append(bit)
		if err != nil {
			return 0, fmt.Errorf("decoding huffman letter: %w", err)
		}
		if letter, ok := stat.LetterFromCode(code); ok {
			return letter, nil
		}
	}
}
