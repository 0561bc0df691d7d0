package probds

import (
	"math"

	"github.com/cespare/xxhash/v2"
	farm "github.com/dgryski/go-farm"
	"github.com/spaolacci/murmur3"
)

// HashPair derives the two 32-bit hashes used by every double-hashed
// filter in this package: h1 from a Murmur3-class hash, h2 from an
// XX-class hash seeded by h1. Both are deterministic and stable across
// invocations, as required for the k positions of a single key to
// always land on the same bits.
func HashPair(item []byte) (h1, h2 uint32) {
	h1 = murmur3.Sum32(item)
	h2 = uint32(xxhash.Sum64(seeded(item, h1)))
	return h1, h2
}

// seeded appends a seed's bytes to item without mutating the caller's
// slice, so the secondary hash sees a value dependent on the primary.
func seeded(item []byte, seed uint32) []byte {
	out := make([]byte, len(item)+4)
	copy(out, item)
	out[len(item)+0] = byte(seed)
	out[len(item)+1] = byte(seed >> 8)
	out[len(item)+2] = byte(seed >> 16)
	out[len(item)+3] = byte(seed >> 24)
	return out
}

// doubleHashIndex computes position_i = (h1 + i*h2) mod m using
// wrapping 64-bit arithmetic, per spec: this avoids the bias that
//32-bit wraparound would introduce for large i or m.
func doubleHashIndex(h1, h2 uint32, i, m uint64) uint64 {
	return (uint64(h1) + i*uint64(h2)) % m
}

// calcM returns the number of bits m = ceil(n * -ln(p) / ln(2)^2)
// required for a Bloom-family filter sized for n keys and a target
// false-positive rate p.
func calcM(n uint64, p float64) uint64 {
	if n == 0 {
		n = 1
	}
	m := math.Ceil(float64(n) * -math.Log(p) / (math.Ln2 * math.Ln2))
	if m < 1 {
		m = 1
	}
	return uint64(m)
}

// calcK returns the number of hash functions k = round((m/n) * ln(2))
// for a Bloom-family filter with m bits sized for n keys.
func calcK(m, n uint64) int {
	if n == 0 {
		n = 1
	}
	k := math.Round(float64(m) / float64(n) * math.Ln2)
	if k < 1 {
		k = 1
	}
	return int(k)
}

// logOneMinus returns ln(1-x) via math.Log1p for numerical stability
// when x is small, used by CountingBloom's EstimatedSize.
func logOneMinus(x float64) float64 {
	return math.Log1p(-x)
}

// cuckooAltHash hashes a fingerprint for deriving a Cuckoo filter's
// alternate bucket. It deliberately uses a hash family (farm) distinct
// from the one used for HashPair's primary bucket placement, so the
// two candidate buckets for a fingerprint are not correlated with the
// hash used to compute the first bucket from the original key.
func cuckooAltHash(fp []byte) uint64 {
	return farm.Hash64(fp)
}
