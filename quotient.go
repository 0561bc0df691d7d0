package probds

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// quotientSlot packs a slot's remainder and its three metadata bits:
// occupied (some item hashes canonically to this slot), continuation
// (this slot extends a run rather than starting one), and shifted
// (this slot does not hold an item at its canonical position).
type quotientSlot struct {
	remainder    uint64
	occupied     bool
	continuation bool
	shifted      bool
	used         bool // slot holds a remainder at all (vs. truly empty)
}

// Quotient is a quotient filter: 2^q slots, each holding an r-bit
// remainder plus occupied/continuation/shifted metadata. A key's hash
// splits into q high bits (the canonical bucket) and r low bits (the
// stored remainder).
//
// This implementation follows the source's simplification rather than
// the full Bender/Fan run-shift algorithm: insertion linearly probes
// forward from the canonical slot instead of maintaining contiguous,
// sorted runs. The documented invariant this preserves is that
// Contains after Set on the same key always returns true, at a bounded
// false-positive rate under reasonable load; it does not implement
// deletion (see spec's open question on quotient deletion).
type Quotient struct {
	slots []quotientSlot
	q     uint
	r     uint
	count uint64
}

// NewQuotient constructs a Quotient filter with 2^q slots, each
// holding an r-bit remainder.
func NewQuotient(q, r uint) (*Quotient, error) {
	if q == 0 || q > 32 {
		return nil, errors.Wrapf(ErrInvalidParameters, "q=%d must be in [1,32]", q)
	}
	if r == 0 || r > 64 {
		return nil, errors.Wrapf(ErrInvalidParameters, "r=%d must be in [1,64]", r)
	}
	return &Quotient{
		slots: make([]quotientSlot, uint64(1)<<q),
		q:     q,
		r:     r,
	}, nil
}

// split derives the canonical bucket and remainder for item: the top
// q bits of its 64-bit hash select the bucket, the low r bits are the
// stored remainder.
func (f *Quotient) split(item []byte) (bucket, remainder uint64) {
	h1, h2 := HashPair(item)
	h := uint64(h1)<<32 | uint64(h2)
	bucket = h >> (64 - f.q)
	mask := uint64(1)<<f.r - 1
	remainder = h & mask
	return bucket, remainder
}

func (f *Quotient) numSlots() uint64 {
	return uint64(len(f.slots))
}

// Set inserts item. If the canonical slot is free, it is claimed
// directly. Otherwise Set probes forward (wrapping) for the first
// slot that is either empty or already holds item's remainder (at the
// canonical slot, or in a continuation slot further along); new
// occupants past the canonical slot are
// marked continuation+shifted, and the canonical slot's occupied bit
// is raised.
func (f *Quotient) Set(item []byte) {
	bucket, remainder := f.split(item)
	n := f.numSlots()

	if !f.slots[bucket].used {
		f.slots[bucket] = quotientSlot{remainder: remainder, occupied: true, used: true}
		f.count++
		return
	}
	f.slots[bucket].occupied = true

	i := bucket
	for {
		if f.slots[i].used && i == bucket && f.slots[i].remainder == remainder {
			return // already present at the canonical slot
		}
		if f.slots[i].used && i != bucket && f.slots[i].continuation && f.slots[i].remainder == remainder {
			return // already present later in the probe sequence
		}
		if !f.slots[i].used {
			f.slots[i] = quotientSlot{
				remainder:    remainder,
				continuation: i != bucket,
				shifted:      i != bucket,
				used:         true,
			}
			f.count++
			return
		}
		i = (i + 1) % n
	}
}

// Contains reports whether item may have been added. It returns false
// immediately if the canonical slot is unoccupied; otherwise it walks
// the exact same probe sequence Set uses — forward from the canonical
// slot, through every used slot regardless of whose run it belongs to
// — stopping only at the first empty slot (a gap Set would have filled
// had item been present) or back at the canonical slot. A slot
// directly occupied by some other key's own canonical placement does
// not end the scan: Set doesn't stop there either, so neither can
// Contains without reintroducing false negatives.
func (f *Quotient) Contains(item []byte) bool {
	bucket, remainder := f.split(item)
	if !f.slots[bucket].occupied {
		return false
	}

	n := f.numSlots()
	i := bucket
	for {
		s := f.slots[i]
		if !s.used {
			return false
		}
		if i == bucket && s.remainder == remainder {
			return true
		}
		if i != bucket && s.continuation && s.remainder == remainder {
			return true
		}
		i = (i + 1) % n
		if i == bucket {
			return false
		}
	}
}

// Count returns the number of items inserted.
func (f *Quotient) Count() uint64 {
	return f.count
}

// Clear resets the filter to its empty state.
func (f *Quotient) Clear() {
	for i := range f.slots {
		f.slots[i] = quotientSlot{}
	}
	f.count = 0
}

// String reports the filter's shape and memory footprint.
func (f *Quotient) String() string {
	bytesUsed := uint64(len(f.slots)) * (f.r/8 + 1 + 1)
	return fmt.Sprintf("Quotient{q=%d, r=%d, slots=%s, size=%s}",
		f.q, f.r, humanize.Comma(int64(len(f.slots))), humanize.IBytes(bytesUsed))
}
