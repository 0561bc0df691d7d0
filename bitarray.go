package probds

import (
	"fmt"
	"math/bits"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// BitArray is a fixed-length array of bits packed into 64-bit cells.
// All bits are zero at construction; bits outside [0, Len()) are never
// read or written by any method.
type BitArray struct {
	cells []uint64
	length uint64
}

// NewBitArray allocates a BitArray with room for length bits.
func NewBitArray(length uint64) *BitArray {
	if length == 0 {
		length = 1
	}
	ncells := (length + 63) / 64
	return &BitArray{
		cells:  make([]uint64, ncells),
		length: length,
	}
}

// Len returns the number of addressable bits.
func (b *BitArray) Len() uint64 {
	return b.length
}

func (b *BitArray) check(i uint64) error {
	if i >= b.length {
		return errors.Wrapf(ErrInvalidIndex, "bit %d out of range [0,%d)", i, b.length)
	}
	return nil
}

// Get returns 0 or 1 for the bit at position i.
func (b *BitArray) Get(i uint64) (uint64, error) {
	if err := b.check(i); err != nil {
		return 0, err
	}
	return (b.cells[i/64] >> (i % 64)) & 1, nil
}

// IsSet reports whether the bit at position i is set.
func (b *BitArray) IsSet(i uint64) (bool, error) {
	v, err := b.Get(i)
	return v == 1, err
}

// Set sets the bit at position i to 1.
func (b *BitArray) Set(i uint64) error {
	if err := b.check(i); err != nil {
		return err
	}
	b.cells[i/64] |= 1 << (i % 64)
	return nil
}

// Unset clears the bit at position i to 0.
func (b *BitArray) Unset(i uint64) error {
	if err := b.check(i); err != nil {
		return err
	}
	b.cells[i/64] &^= 1 << (i % 64)
	return nil
}

// Toggle flips the bit at position i.
func (b *BitArray) Toggle(i uint64) error {
	if err := b.check(i); err != nil {
		return err
	}
	b.cells[i/64] ^= 1 << (i % 64)
	return nil
}

// PopCountAll returns the total number of set bits, masking off the
// unused tail bits of the final cell when Len() is not a multiple of
// 64 so padding never contributes to the count.
func (b *BitArray) PopCountAll() uint64 {
	if len(b.cells) == 0 {
		return 0
	}
	var total uint64
	last := len(b.cells) - 1
	for i := 0; i < last; i++ {
		total += uint64(bits.OnesCount64(b.cells[i]))
	}
	tailBits := b.length % 64
	tail := b.cells[last]
	if tailBits != 0 {
		tail &= (uint64(1) << tailBits) - 1
	}
	total += uint64(bits.OnesCount64(tail))
	return total
}

// Clear resets every bit to zero.
func (b *BitArray) Clear() {
	for i := range b.cells {
		b.cells[i] = 0
	}
}

// String reports the array's length and memory footprint.
func (b *BitArray) String() string {
	return fmt.Sprintf("BitArray{len=%s bits, size=%s}",
		humanize.Comma(int64(b.length)), humanize.IBytes(uint64(len(b.cells)*8)))
}
