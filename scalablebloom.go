package probds

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// ScalableBloom is a Bloom filter that grows by appending tighter
// sub-filters as it fills, so it can absorb an unbounded number of
// keys instead of being sized for a hard capacity up front.
//
// Component i has capacity c*g^i and target false-positive rate p*r^i,
// with growth factor g (default 2) and tightening ratio r (default
// 0.5). Membership is the logical OR across every component.
type ScalableBloom struct {
	filters  []*Bloom
	capacity uint64 // initial component capacity c
	fpRate   float64
	growth   float64
	tighten  float64
	sets     uint64 // total Set calls, not unique items
}

// NewScalableBloom constructs a ScalableBloom with initial capacity c,
// initial false-positive rate p, growth factor g, and tightening ratio
// r for each subsequent component.
func NewScalableBloom(c uint64, p, g, r float64) (*ScalableBloom, error) {
	if p <= 0 || p >= 1 {
		return nil, errors.Wrapf(ErrInvalidParameters, "false positive rate %v must be in (0,1)", p)
	}
	if g <= 1 {
		return nil, errors.Wrapf(ErrInvalidParameters, "growth %v must be > 1", g)
	}
	if r <= 0 || r >= 1 {
		return nil, errors.Wrapf(ErrInvalidParameters, "tightening ratio %v must be in (0,1)", r)
	}
	if c == 0 {
		c = 1
	}
	sb := &ScalableBloom{
		capacity: c,
		fpRate:   p,
		growth:   g,
		tighten:  r,
	}
	first, err := NewBloom(c, p)
	if err != nil {
		return nil, err
	}
	sb.filters = append(sb.filters, first)
	return sb, nil
}

// NewScalableBloomDefault constructs a ScalableBloom with the
// conventional growth factor 2 and tightening ratio 0.5.
func NewScalableBloomDefault(c uint64, p float64) (*ScalableBloom, error) {
	return NewScalableBloom(c, p, 2, 0.5)
}

// active returns the current (last) component.
func (sb *ScalableBloom) active() *Bloom {
	return sb.filters[len(sb.filters)-1]
}

// Set adds item to the active component. If the active component has
// reached its configured capacity, a new, tighter component is
// appended first and the item is inserted into it instead.
func (sb *ScalableBloom) Set(item []byte) {
	active := sb.active()
	capacity := sb.componentCapacity(len(sb.filters) - 1)
	if active.EstimatedSize() >= capacity {
		i := len(sb.filters)
		capacity = sb.componentCapacity(i)
		p := sb.fpRate * math.Pow(sb.tighten, float64(i))
		next, err := NewBloom(capacity, p)
		if err != nil {
			// Parameters were validated at construction time and
			// tighten/growth only move p further from its bounds
			// toward zero, so this should not happen in practice;
			// fall back to the last good shape rather than panic.
			next, _ = NewBloomWithParams(active.NumBits(), active.K())
		}
		sb.filters = append(sb.filters, next)
		active = next
	}
	active.Set(item)
	sb.sets++
}

func (sb *ScalableBloom) componentCapacity(i int) uint64 {
	return uint64(float64(sb.capacity) * math.Pow(sb.growth, float64(i)))
}

// Contains reports whether item may have been added: true iff any
// component reports it.
func (sb *ScalableBloom) Contains(item []byte) bool {
	for _, f := range sb.filters {
		if f.Contains(item) {
			return true
		}
	}
	return false
}

// EstimatedSize returns the number of Set calls made so far. Since
// ScalableBloom is meant for streams where duplicates are rare, this
// is used as the item-count estimate rather than summing each
// component's own (saturating) EstimatedSize.
func (sb *ScalableBloom) EstimatedSize() uint64 {
	return sb.sets
}

// FilterCount returns the number of component Bloom filters currently
// allocated.
func (sb *ScalableBloom) FilterCount() int {
	return len(sb.filters)
}

// Clear resets the filter back to a single empty component at its
// original capacity and false-positive rate.
func (sb *ScalableBloom) Clear() {
	first, err := NewBloom(sb.capacity, sb.fpRate)
	if err != nil {
		// Unreachable: these parameters were already validated by the
		// constructor that created sb.
		panic(err)
	}
	sb.filters = []*Bloom{first}
	sb.sets = 0
}

// String reports the number of components and the total bits across
// all of them.
func (sb *ScalableBloom) String() string {
	var bits uint64
	for _, f := range sb.filters {
		bits += f.NumBits()
	}
	return fmt.Sprintf("ScalableBloom{filters=%d, bits=%s, size=%s}",
		len(sb.filters), humanize.Comma(int64(bits)), humanize.IBytes(bits/8+1))
}
