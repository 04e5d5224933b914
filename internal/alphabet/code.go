// Package alphabet collects per-letter frequency statistics and derives the
// Huffman dictionaries used by the chip data encoders.
package alphabet

import (
	"fmt"
	"strings"
)

// Letter is a symbol of a compression alphabet: an ADC value or an encoded
// pixel delta.
type Letter = int

// MaxCodeBits is the longest supported Huffman code.
const MaxCodeBits = 64

// Code is the Huffman code of a single letter. Bits are appended starting
// from the least significant position, so the textual form lists bits in
// append order.
type Code struct {
	bits  uint64
	nBits int
}

// NumBits returns the code length in bits.
func (c Code) NumBits() int { return c.nBits }

// Bit returns the n-th appended bit.
func (c Code) Bit(n int) bool { return (c.bits>>n)&1 != 0 }

// Append extends the code by one bit.
func (c Code) Append(bit bool) (Code, error) {
	if c.nBits+1 > MaxCodeBits {
		return Code{}, fmt.Errorf("huffman code is too long")
	}
	var b uint64
	if bit {
		b = 1
	}
	return Code{bits: b<<c.nBits | c.bits, nBits: c.nBits + 1}, nil
}

func (c Code) String() string {
	var sb strings.Builder
	for n := 0; n < c.nBits; n++ {
		if c.Bit(n) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// ParseCode reads a code back from its textual 0/1 form.
func ParseCode(s string) (Code, error) {
	var code Code
	var err error
	for _, r := range s {
		switch r {
		case '0':
			code, err = code.Append(false)
		case '1':
			code, err = code.Append(true)
		default:
			return Code{}, fmt.Errorf("invalid huffman code %q", s)
		}
		if err != nil {
			return Code{}, err
		}
	}
	return code, nil
}
