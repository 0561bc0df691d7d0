package probds

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// HyperLogLog estimates the cardinality (count-distinct) of a stream
// of byte-string items using 2^p registers of leading-zero ranks.
type HyperLogLog struct {
	registers []uint8
	p         uint
	alpha     float64
}

// NewHyperLogLog constructs a HyperLogLog with precision p, allocating
// 2^p registers. p must be in [4,16].
func NewHyperLogLog(p uint) (*HyperLogLog, error) {
	if p < 4 || p > 16 {
		return nil, errors.Wrapf(ErrInvalidPrecision, "p=%d", p)
	}
	m := uint64(1) << p
	return &HyperLogLog{
		registers: make([]uint8, m),
		p:         p,
		alpha:     alphaFor(m),
	}, nil
}

func alphaFor(m uint64) float64 {
	switch m {
	case 16:
		return 0.673
	case 32:
		return 0.697
	case 64:
		return 0.709
	default:
		return 0.7213 / (1 + 1.079/float64(m))
	}
}

// Add records item in the sketch: its top p hash bits select a
// register, and the register is updated to the max of its current
// value and 1 + the number of leading zeros of the remaining bits.
func (h *HyperLogLog) Add(item []byte) {
	hash := uint32(xxhash.Sum64(item))
	index := hash >> (32 - h.p)
	w := hash << h.p
	var rank uint8
	if w != 0 {
		rank = uint8(bits.LeadingZeros32(w)) + 1
	} else {
		// Deliberate departure from the literal rank formula taken at
		// face value over w's full 32 bits: w==0 would give
		// LeadingZeros32(0)=32, i.e. rank 33, clamped to 31 regardless
		// of p. But w's low p bits are always zero (w is hash<<p), so
		// only its top (32-p) bits are ever meaningful; w==0 means
		// those bits were all zero, the longest run observable at this
		// precision, whose uncapped rank is (32-p)+1, not 32.
		rank = uint8(32-h.p) + 1
	}
	if rank > 31 {
		rank = 31
	}
	if rank > h.registers[index] {
		h.registers[index] = rank
	}
}

// EstimatedSize returns the bias-corrected cardinality estimate:
// linear counting for small cardinalities with empty registers,
// raw HyperLogLog estimate for the typical range, and a large-range
// correction for estimates approaching 2^32.
func (h *HyperLogLog) EstimatedSize() uint64 {
	m := float64(len(h.registers))
	var z float64
	var zeros int
	for _, r := range h.registers {
		z += 1 / math.Pow(2, float64(r))
		if r == 0 {
			zeros++
		}
	}
	eRaw := h.alpha * m * m / z

	var e float64
	switch {
	case eRaw <= 2.5*m && zeros > 0:
		e = m * math.Log(m/float64(zeros))
	case eRaw <= math.Pow(2, 32)/30:
		e = eRaw
	default:
		e = -math.Pow(2, 32) * math.Log(1-eRaw/math.Pow(2, 32))
	}
	if e < 0 || math.IsNaN(e) {
		e = 0
	}
	return uint64(e)
}

// Merge sets h's registers to the register-wise max of h and other's.
// Both sketches must share the same precision.
func (h *HyperLogLog) Merge(other *HyperLogLog) error {
	if h.p != other.p {
		return errors.Wrapf(ErrIncompatiblePrecision, "p=%d vs p=%d", h.p, other.p)
	}
	for i := range h.registers {
		if other.registers[i] > h.registers[i] {
			h.registers[i] = other.registers[i]
		}
	}
	return nil
}

// Precision returns p.
func (h *HyperLogLog) Precision() uint {
	return h.p
}

// Clear resets every register to zero.
func (h *HyperLogLog) Clear() {
	for i := range h.registers {
		h.registers[i] = 0
	}
}

// String reports the sketch's precision and memory footprint.
func (h *HyperLogLog) String() string {
	return fmt.Sprintf("HyperLogLog{p=%d, registers=%s, size=%s}",
		h.p, humanize.Comma(int64(len(h.registers))), humanize.IBytes(uint64(len(h.registers))))
}
