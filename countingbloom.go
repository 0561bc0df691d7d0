package probds

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// CountingBloom is a Bloom filter whose bits are replaced by W-bit
// counters, so that items can be removed as well as added. Counters do
// not saturate: an increment past W's maximum is reported by Set as
// ErrCounterOverflow.
// The index derivation is identical to Bloom: k positions per key via
// HashPair/doubleHashIndex.
//
// The "size" invariant — the filter represents a multiset of up to
// floor(sum of counters / k) items — is only approximate: two items
// that collide on all k positions are indistinguishable, same as in a
// plain Bloom filter. CountingBloom never produces a false negative
// for an item whose full set of k counters are still positive.
type CountingBloom[W Counter] struct {
	counters *CountingBitArray[W]
	k        int
}

// NewCountingBloom constructs a CountingBloom sized for n expected
// keys and a target false-positive rate p.
func NewCountingBloom[W Counter](n uint64, p float64) (*CountingBloom[W], error) {
	if p <= 0 || p > 1 {
		return nil, errors.Wrapf(ErrInvalidParameters, "false positive rate %v must be in (0,1]", p)
	}
	m := calcM(n, p)
	k := calcK(m, n)
	if k < 1 || k > 255 {
		return nil, errors.Wrapf(ErrInvalidParameters, "k=%d must be in [1,255]", k)
	}
	return &CountingBloom[W]{
		counters: NewCountingBitArray[W](m),
		k:        k,
	}, nil
}

func (f *CountingBloom[W]) positions(item []byte) []uint64 {
	h1, h2 := HashPair(item)
	m := f.counters.Len()
	pos := make([]uint64, f.k)
	for i := 0; i < f.k; i++ {
		pos[i] = doubleHashIndex(h1, h2, uint64(i), m)
	}
	return pos
}

// Set increments item's k counters. An overflow on any counter is
// returned as an error; the counters already incremented in this call
// remain incremented — callers must size W generously enough that
// overflow cannot occur in normal operation.
func (f *CountingBloom[W]) Set(item []byte) error {
	for _, pos := range f.positions(item) {
		if err := f.counters.Increment(pos); err != nil {
			return errors.Wrapf(err, "CountingBloom.Set: counter %d", pos)
		}
	}
	return nil
}

// Contains reports whether item may have been added: true iff every
// one of its k counters is nonzero.
func (f *CountingBloom[W]) Contains(item []byte) bool {
	for _, pos := range f.positions(item) {
		set, _ := f.counters.IsSet(pos)
		if !set {
			return false
		}
	}
	return true
}

// Remove decrements item's k counters if Contains(item) is true.
// It reports whether a removal happened. If the item is absent, Remove
// returns false without modifying the filter. Decrements use the
// unchecked form since Contains already established all k counters
// are positive.
func (f *CountingBloom[W]) Remove(item []byte) bool {
	if !f.Contains(item) {
		return false
	}
	for _, pos := range f.positions(item) {
		_ = f.counters.DecrementUnchecked(pos)
	}
	return true
}

// RemoveSafe verifies all k counters for item are positive before
// decrementing any of them. If any counter is already zero, it returns
// ErrCounterUnderflow and leaves the filter untouched.
func (f *CountingBloom[W]) RemoveSafe(item []byte) error {
	pos := f.positions(item)
	for _, p := range pos {
		set, _ := f.counters.IsSet(p)
		if !set {
			return errors.Wrapf(ErrCounterUnderflow, "CountingBloom.RemoveSafe: counter %d already zero", p)
		}
	}
	for _, p := range pos {
		_ = f.counters.DecrementUnchecked(p)
	}
	return nil
}

// EstimatedSize returns an estimate of the number of distinct items
// represented, using the count of nonzero cells the same way Bloom
// uses popcount.
func (f *CountingBloom[W]) EstimatedSize() uint64 {
	m := float64(f.counters.Len())
	x := float64(f.counters.CountNonzero())
	if x >= m {
		return 0
	}
	est := -(m / float64(f.k)) * logOneMinus(x/m)
	if est < 0 {
		return 0
	}
	return uint64(est)
}

// Clear resets every counter to zero.
func (f *CountingBloom[W]) Clear() {
	f.counters.Clear()
}

// K returns the number of hash functions used per key.
func (f *CountingBloom[W]) K() int {
	return f.k
}

// String reports the filter's shape and memory footprint.
func (f *CountingBloom[W]) String() string {
	return fmt.Sprintf("CountingBloom{m=%s counters, k=%d, size=%s}",
		humanize.Comma(int64(f.counters.Len())), f.k, humanize.IBytes(uint64(f.counters.Len())))
}
