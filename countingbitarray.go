package probds

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// Counter is the constraint satisfied by every width a
// CountingBitArray can be instantiated with.
type Counter interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// CountingBitArray is an array of Length fixed-width unsigned counters,
// each in [0, max value of W]. It backs CountingBloom's counters.
type CountingBitArray[W Counter] struct {
	counters []W
	length   uint64
}

// NewCountingBitArray allocates a CountingBitArray with room for
// length counters, all initialized to zero.
func NewCountingBitArray[W Counter](length uint64) *CountingBitArray[W] {
	if length == 0 {
		length = 1
	}
	return &CountingBitArray[W]{
		counters: make([]W, length),
		length:   length,
	}
}

// Len returns the number of counters.
func (c *CountingBitArray[W]) Len() uint64 {
	return c.length
}

func (c *CountingBitArray[W]) check(i uint64) error {
	if i >= c.length {
		return errors.Wrapf(ErrInvalidIndex, "counter %d out of range [0,%d)", i, c.length)
	}
	return nil
}

// maxCounter returns the maximum value representable by W.
func maxCounter[W Counter]() W {
	var zero W
	return zero - 1
}

// Get returns the counter value at position i.
func (c *CountingBitArray[W]) Get(i uint64) (W, error) {
	if err := c.check(i); err != nil {
		return 0, err
	}
	return c.counters[i], nil
}

// IsSet reports whether the counter at position i is nonzero.
func (c *CountingBitArray[W]) IsSet(i uint64) (bool, error) {
	v, err := c.Get(i)
	return v != 0, err
}

// Increment adds one to the counter at position i. It fails with
// ErrCounterOverflow, leaving the counter untouched, if doing so would
// exceed the counter's maximum value.
func (c *CountingBitArray[W]) Increment(i uint64) error {
	if err := c.check(i); err != nil {
		return err
	}
	if c.counters[i] == maxCounter[W]() {
		return errors.Wrapf(ErrCounterOverflow, "counter %d at max value %v", i, maxCounter[W]())
	}
	c.counters[i]++
	return nil
}

// Decrement subtracts one from the counter at position i. It fails
// with ErrCounterUnderflow, leaving the counter untouched, if the
// counter is already zero.
func (c *CountingBitArray[W]) Decrement(i uint64) error {
	if err := c.check(i); err != nil {
		return err
	}
	if c.counters[i] == 0 {
		return errors.Wrapf(ErrCounterUnderflow, "counter %d already zero", i)
	}
	c.counters[i]--
	return nil
}

// DecrementUnchecked subtracts one from the counter at position i
// without verifying it is positive first. The caller must have
// already established the counter is > 0; violating that contract
// wraps the counter around to its maximum value.
func (c *CountingBitArray[W]) DecrementUnchecked(i uint64) error {
	if err := c.check(i); err != nil {
		return err
	}
	c.counters[i]--
	return nil
}

// CountNonzero returns the number of counters with a nonzero value.
func (c *CountingBitArray[W]) CountNonzero() uint64 {
	var n uint64
	for _, v := range c.counters {
		if v != 0 {
			n++
		}
	}
	return n
}

// Clear resets every counter to zero.
func (c *CountingBitArray[W]) Clear() {
	for i := range c.counters {
		c.counters[i] = 0
	}
}

// String reports the array's length, counter width, and memory
// footprint.
func (c *CountingBitArray[W]) String() string {
	var w W
	bitWidth := 0
	switch any(w).(type) {
	case uint8:
		bitWidth = 8
	case uint16:
		bitWidth = 16
	case uint32:
		bitWidth = 32
	case uint64:
		bitWidth = 64
	}
	return fmt.Sprintf("CountingBitArray{len=%s, width=u%d, size=%s}",
		humanize.Comma(int64(c.length)), bitWidth,
		humanize.IBytes(uint64(len(c.counters))*uint64(bitWidth)/8))
}
