// Package bitpack implements the bit-level payload produced by the chip data
// encoders: an append-only bit stream with value-range checking and a bounded
// read cursor.
package bitpack

import (
	"fmt"
	"math"
)

const (
	// BitsPerByte is the number of bits per stream byte.
	BitsPerByte = 8
	// MaxBitsPerValue is the widest value that can be written or read at once.
	MaxBitsPerValue = 64
)

// Package is an append-only bit stream. Values are written most significant
// bit first; bits are packed into bytes starting from the least significant
// bit of each byte.
type Package struct {
	data             []byte
	size             int
	readoutPositions []int
}

// Size returns the stream length in bits.
func (p *Package) Size() int { return p.size }

// Bytes returns the packed stream content.
func (p *Package) Bytes() []byte { return p.data }

// ReadoutPositions returns the bit positions recorded by NextReadoutCycle.
func (p *Package) ReadoutPositions() []int { return p.readoutPositions }

func mask(nBits int) uint64 {
	if nBits >= MaxBitsPerValue {
		return math.MaxUint64
	}
	return (uint64(1) << nBits) - 1
}

func checkValue(value uint64, nBits int) error {
	if nBits > MaxBitsPerValue {
		return fmt.Errorf("number of bits = %d is too big", nBits)
	}
	if nBits < MaxBitsPerValue && value > mask(nBits) {
		return fmt.Errorf("input value = %d is too big, max value for %d bits is %d",
			value, nBits, mask(nBits))
	}
	return nil
}

// Write appends the nBits least significant bits of value, most significant
// bit first.
func (p *Package) Write(value uint64, nBits int) error {
	if err := checkValue(value, nBits); err != nil {
		return err
	}
	for n := 0; n < nBits; n++ {
		bit := (value >> (nBits - n - 1)) & 1
		p.appendBit(bit != 0)
	}
	return nil
}

func (p *Package) appendBit(bit bool) {
	shift := p.size % BitsPerByte
	if shift == 0 {
		p.data = append(p.data, 0)
	}
	if bit {
		p.data[len(p.data)-1] |= 1 << shift
	}
	p.size++
}

// WritePackage appends the full content of another package.
func (p *Package) WritePackage(other *Package) error {
	iter := other.Begin()
	for iter.Position() < other.Size() {
		nBits := min(MaxBitsPerValue, other.Size()-iter.Position())
		value, err := iter.Read(nBits, false)
		if err != nil {
			return err
		}
		if err := p.Write(value, nBits); err != nil {
			return err
		}
	}
	return nil
}

// FinalizeByte pads the stream with zero bits up to the next byte boundary.
func (p *Package) FinalizeByte() {
	written := p.size % BitsPerByte
	if written == 0 {
		return
	}
	for n := written; n < BitsPerByte; n++ {
		p.appendBit(false)
	}
}

// NextReadoutCycle marks the current stream position as a readout boundary.
func (p *Package) NextReadoutCycle() {
	p.readoutPositions = append(p.readoutPositions, p.size)
}

// Equal reports whether both streams carry identical bits.
func (p *Package) Equal(other *Package) bool {
	if p.size != other.size {
		return false
	}
	for n := range p.data {
		if p.data[n] != other.data[n] {
			return false
		}
	}
	return true
}

// Begin returns a read cursor at the start of the stream.
func (p *Package) Begin() *Reader { return &Reader{pkg: p} }

// End returns a read cursor at the end of the stream.
func (p *Package) End() *Reader { return &Reader{pkg: p, pos: p.size} }

// Reader is a cursor over a package's bits.
type Reader struct {
	pkg *Package
	pos int
}

// Position returns the cursor's bit position.
func (r *Reader) Position() int { return r.pos }

// AtEnd reports whether the cursor has consumed the whole stream.
func (r *Reader) AtEnd() bool { return r.pos >= r.pkg.size }

// Seek moves the cursor back by delta bits.
func (r *Reader) Seek(delta int) error {
	if delta > r.pos {
		return fmt.Errorf("seek delta = %d is beyond the start of the package", delta)
	}
	r.pos -= delta
	return nil
}

// Read consumes nBits bits, most significant bit first. When the stream ends
// before nBits bits and zeroFill is set, the missing low bits read as zero;
// otherwise the short read is an error.
func (r *Reader) Read(nBits int, zeroFill bool) (uint64, error) {
	if nBits > MaxBitsPerValue {
		return 0, fmt.Errorf("number of bits to read = %d is too big", nBits)
	}
	bitsLeft := r.pkg.size - r.pos
	if nBits > bitsLeft && !zeroFill {
		return 0, fmt.Errorf("not enough data in the package: requested %d bits, %d left",
			nBits, bitsLeft)
	}
	available := min(nBits, bitsLeft)
	var result uint64
	for n := 0; n < available; n++ {
		result = result<<1 | r.bitAt(r.pos)
		r.pos++
	}
	result <<= nBits - available
	return result, nil
}

// ReadBit consumes a single bit.
func (r *Reader) ReadBit() (bool, error) {
	value, err := r.Read(1, false)
	return value != 0, err
}

func (r *Reader) bitAt(pos int) uint64 {
	return uint64(r.pkg.data[pos/BitsPerByte]>>(pos%BitsPerByte)) & 1
}
