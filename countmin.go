package probds

import (
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// CountMin is a Count-Min sketch: a w-wide, d-deep matrix of
// saturating counters. Each row's column is derived from one 64-bit
// hash of the key by double hashing with the row index; the minimum
// over the d rows is the frequency estimate, which is always >= the
// true count.
type CountMin[C Counter] struct {
	rows  [][]C
	w, d  uint64
}

// NewCountMin constructs a CountMin sketch with explicit width w and
// depth d.
func NewCountMin[C Counter](w, d uint64) (*CountMin[C], error) {
	if w == 0 || d == 0 {
		return nil, errors.Wrapf(ErrInvalidParameters, "width and depth must be > 0, got w=%d d=%d", w, d)
	}
	rows := make([][]C, d)
	for i := range rows {
		rows[i] = make([]C, w)
	}
	return &CountMin[C]{rows: rows, w: w, d: d}, nil
}

// NewCountMinWithError constructs a CountMin sketch sized so that
// estimates are within epsilon * totalCount of the truth with
// probability 1-delta: w = ceil(e/epsilon), d = ceil(ln(1/delta)).
func NewCountMinWithError[C Counter](epsilon, delta float64) (*CountMin[C], error) {
	if epsilon <= 0 || epsilon >= 1 {
		return nil, errors.Wrapf(ErrInvalidParameters, "epsilon %v must be in (0,1)", epsilon)
	}
	if delta <= 0 || delta >= 1 {
		return nil, errors.Wrapf(ErrInvalidParameters, "delta %v must be in (0,1)", delta)
	}
	w := uint64(math.Ceil(math.E / epsilon))
	d := uint64(math.Ceil(math.Log(1 / delta)))
	return NewCountMin[C](w, d)
}

// rowHashes splits a single 64-bit hash of item into two 32-bit
// halves and forces the second odd, so that for an even width w the
// step h2 mod w is never zero and the rows do not all land on the
// same column.
func (s *CountMin[C]) rowHashes(item []byte) (h1, h2 uint32) {
	h := xxhash.Sum64(item)
	h1 = uint32(h >> 32)
	h2 = uint32(h) | 1
	return h1, h2
}

func (s *CountMin[C]) columns(item []byte) []uint64 {
	h1, h2 := s.rowHashes(item)
	cols := make([]uint64, s.d)
	for row := uint64(0); row < s.d; row++ {
		cols[row] = doubleHashIndex(h1, h2, row, s.w)
	}
	return cols
}

// Set increments item's counter in every row by one, saturating at
// the counter's maximum value instead of overflowing.
func (s *CountMin[C]) Set(item []byte) {
	s.SetCount(item, 1)
}

// SetCount increments item's counter in every row by n, saturating at
// the counter's maximum value.
func (s *CountMin[C]) SetCount(item []byte, n uint64) {
	max := maxCounter[C]()
	for row, col := range s.columns(item) {
		cur := s.rows[row][col]
		remaining := uint64(max - cur)
		add := n
		if add > remaining {
			add = remaining
		}
		s.rows[row][col] = cur + C(add)
	}
}

// Estimate returns the minimum counter value for item across all rows,
// an upper bound on its true frequency.
func (s *CountMin[C]) Estimate(item []byte) uint64 {
	max := maxCounter[C]()
	min := uint64(max)
	for row, col := range s.columns(item) {
		v := uint64(s.rows[row][col])
		if v < min {
			min = v
		}
		_ = row
	}
	return min
}

// Merge adds other's counters into s cell-wise, saturating on
// overflow. Both sketches must have identical width and depth.
func (s *CountMin[C]) Merge(other *CountMin[C]) error {
	if s.w != other.w || s.d != other.d {
		return errors.Wrapf(ErrIncompatibleDimensions, "w,d = (%d,%d) vs (%d,%d)", s.w, s.d, other.w, other.d)
	}
	max := maxCounter[C]()
	for r := uint64(0); r < s.d; r++ {
		for c := uint64(0); c < s.w; c++ {
			cur := s.rows[r][c]
			remaining := uint64(max - cur)
			add := uint64(other.rows[r][c])
			if add > remaining {
				add = remaining
			}
			s.rows[r][c] = cur + C(add)
		}
	}
	return nil
}

// Clear resets every counter to zero.
func (s *CountMin[C]) Clear() {
	for r := range s.rows {
		for c := range s.rows[r] {
			s.rows[r][c] = 0
		}
	}
}

// Width returns w, the number of columns per row.
func (s *CountMin[C]) Width() uint64 { return s.w }

// Depth returns d, the number of rows.
func (s *CountMin[C]) Depth() uint64 { return s.d }

// String reports the sketch's shape and memory footprint.
func (s *CountMin[C]) String() string {
	var zero C
	width := 0
	switch any(zero).(type) {
	case uint8:
		width = 1
	case uint16:
		width = 2
	case uint32:
		width = 4
	case uint64:
		width = 8
	}
	total := s.w * s.d * uint64(width)
	return fmt.Sprintf("CountMin{w=%s, d=%d, size=%s}",
		humanize.Comma(int64(s.w)), s.d, humanize.IBytes(total))
}
