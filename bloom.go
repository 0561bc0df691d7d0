package probds

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// Bloom is a classic Bloom filter: a bit array probed at k positions
// per key via double hashing. Bits are only ever set, never cleared
// (Clear and Intersect excepted), so false negatives are impossible.
type Bloom struct {
	bits *BitArray
	k    int
}

// NewBloom constructs a Bloom filter sized for n expected keys and a
// target false-positive rate p, deriving the number of bits and hash
// functions with calcM/calcK.
func NewBloom(n uint64, p float64) (*Bloom, error) {
	if p <= 0 || p > 1 {
		return nil, errors.Wrapf(ErrInvalidParameters, "false positive rate %v must be in (0,1]", p)
	}
	m := calcM(n, p)
	k := calcK(m, n)
	return NewBloomWithParams(m, k)
}

// NewBloomWithParams constructs a Bloom filter with an explicit number
// of bits m and hash functions k, for callers that have already done
// the sizing math (or are restoring a filter shaped like another one).
func NewBloomWithParams(m uint64, k int) (*Bloom, error) {
	if k < 1 || k > 255 {
		return nil, errors.Wrapf(ErrInvalidParameters, "k=%d must be in [1,255]", k)
	}
	return &Bloom{bits: NewBitArray(m), k: k}, nil
}

// Set adds item to the filter by setting its k double-hashed
// positions.
func (f *Bloom) Set(item []byte) {
	h1, h2 := HashPair(item)
	m := f.bits.Len()
	for i := 0; i < f.k; i++ {
		pos := doubleHashIndex(h1, h2, uint64(i), m)
		_ = f.bits.Set(pos) // pos < m by construction
	}
}

// Contains reports whether item may have been added. False positives
// are possible; false negatives are not.
func (f *Bloom) Contains(item []byte) bool {
	h1, h2 := HashPair(item)
	m := f.bits.Len()
	for i := 0; i < f.k; i++ {
		pos := doubleHashIndex(h1, h2, uint64(i), m)
		if set, _ := f.bits.IsSet(pos); !set {
			return false
		}
	}
	return true
}

// EstimatedSize returns floor(-(m/k)*ln(1 - X/m)) where X is the
// current popcount of the bit array, clamped to zero when X >= m.
func (f *Bloom) EstimatedSize() uint64 {
	m := float64(f.bits.Len())
	x := float64(f.bits.PopCountAll())
	if x >= m {
		return 0
	}
	est := -(m / float64(f.k)) * math.Log(1-x/m)
	if est < 0 || math.IsNaN(est) {
		return 0
	}
	return uint64(est)
}

// NumBits returns the number of bits backing the filter.
func (f *Bloom) NumBits() uint64 {
	return f.bits.Len()
}

// K returns the number of hash functions used per key.
func (f *Bloom) K() int {
	return f.k
}

// Clear resets the filter to its empty state.
func (f *Bloom) Clear() {
	f.bits.Clear()
}

// sameShape reports whether f and g have matching bit-array length and
// hash-function count, a prerequisite for Union/Intersect.
func (f *Bloom) sameShape(g *Bloom) error {
	if f.bits.Len() != g.bits.Len() {
		return errors.Wrapf(ErrInvalidParameters, "bit counts differ: %d != %d", f.bits.Len(), g.bits.Len())
	}
	if f.k != g.k {
		return errors.Wrapf(ErrInvalidParameters, "hash counts differ: %d != %d", f.k, g.k)
	}
	return nil
}

// Union sets f to the bitwise union of f and g. Both filters must have
// the same number of bits and hash functions, and should use the same
// hash functions on their keys, though Union cannot verify the latter.
//
// After Union, Contains returns true for every key that was in f or g.
func (f *Bloom) Union(g *Bloom) error {
	if err := f.sameShape(g); err != nil {
		return errors.Wrap(err, "Bloom.Union")
	}
	for i := range f.bits.cells {
		f.bits.cells[i] |= g.bits.cells[i]
	}
	return nil
}

// Intersect sets f to the bitwise intersection of f and g. Both
// filters must have the same number of bits and hash functions.
//
// Because Bloom filters may already have false positives, Contains
// may still return true after Intersect for a key absent from one of
// the operands; EstimatedSize becomes unreliable after Intersect.
func (f *Bloom) Intersect(g *Bloom) error {
	if err := f.sameShape(g); err != nil {
		return errors.Wrap(err, "Bloom.Intersect")
	}
	for i := range f.bits.cells {
		f.bits.cells[i] &= g.bits.cells[i]
	}
	return nil
}

// FPRate estimates the false positive rate of f after nkeys distinct
// keys have been inserted.
func (f *Bloom) FPRate(nkeys uint64) float64 {
	return FPRate(nkeys, f.bits.Len(), f.k)
}

// FPRate computes the standard false-positive-rate estimate
// (1 - e^(-kn/m))^k for a Bloom filter with m bits, k hash functions,
// after nkeys distinct keys have been inserted.
func FPRate(nkeys, m uint64, k int) float64 {
	if m == 0 {
		return 1
	}
	exponent := -float64(k) * float64(nkeys) / float64(m)
	return math.Pow(1-math.Exp(exponent), float64(k))
}

// Optimize returns the number of bits and hash functions that achieve
// the false positive rate p for n expected keys.
func Optimize(n uint64, p float64) (m uint64, k int) {
	m = calcM(n, p)
	k = calcK(m, n)
	return m, k
}

// String reports the filter's shape and memory footprint.
func (f *Bloom) String() string {
	return fmt.Sprintf("Bloom{m=%s bits, k=%d, size=%s}",
		humanize.Comma(int64(f.bits.Len())), f.k, humanize.IBytes(f.bits.Len()/8+1))
}
