package probds

import (
	"fmt"
	"math/bits"
	"math/rand"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// maxKicks bounds Cuckoo's eviction loop; after this many unsuccessful
// kicks, insertion fails with ErrFilterFull instead of looping forever.
const maxKicks = 500

// CuckooFP is the constraint on fingerprint types a Cuckoo filter can
// be instantiated with: an unsigned integer of 8, 16 or 32 bits, since
// fingerprints are short hashes truncated to fit.
type CuckooFP interface {
	~uint8 | ~uint16 | ~uint32
}

// cuckooBucket is a fixed-size row of fingerprint slots. A zero value
// means "empty"; fingerprint 0 is never stored (remapped to 1).
type cuckooBucket[F CuckooFP] []F

// Cuckoo is a cuckoo filter: an array of buckets, each with b slots,
// storing short fingerprints instead of full keys. A fingerprint may
// live in one of two candidate buckets, derived so that either bucket
// can be recovered from the other given the fingerprint, which is what
// makes relocation during insertion possible.
type Cuckoo[F CuckooFP] struct {
	buckets     []cuckooBucket[F]
	bucketSize  int
	numBuckets  uint64
	count       uint64
	rng         *rand.Rand
}

// CuckooOption configures a Cuckoo filter at construction time.
type CuckooOption func(*cuckooConfig)

type cuckooConfig struct {
	rng *rand.Rand
}

// WithRand injects the PRNG used for eviction's random slot choice,
// so tests can seed it deterministically instead of relying on the
// process-wide default.
func WithRand(r *rand.Rand) CuckooOption {
	return func(c *cuckooConfig) { c.rng = r }
}

// NewCuckoo constructs a Cuckoo filter sized to hold n items at bucket
// size b, with bucket count rounded up to the next power of two.
func NewCuckoo[F CuckooFP](n uint64, b int, opts ...CuckooOption) (*Cuckoo[F], error) {
	if n == 0 {
		return nil, errors.Wrapf(ErrInvalidParameters, "n must be > 0")
	}
	if b < 1 {
		return nil, errors.Wrapf(ErrInvalidParameters, "bucket size %d must be >= 1", b)
	}
	cfg := cuckooConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewSource(rand.Int63()))
	}

	need := (n + uint64(b) - 1) / uint64(b)
	numBuckets := nextPow2(need)
	if numBuckets == 0 {
		numBuckets = 1
	}

	buckets := make([]cuckooBucket[F], numBuckets)
	for i := range buckets {
		buckets[i] = make(cuckooBucket[F], b)
	}
	return &Cuckoo[F]{
		buckets:    buckets,
		bucketSize: b,
		numBuckets: numBuckets,
		rng:        cfg.rng,
	}, nil
}

func nextPow2(x uint64) uint64 {
	if x == 0 {
		return 1
	}
	if x&(x-1) == 0 {
		return x
	}
	return uint64(1) << bits.Len64(x)
}

// fingerprint derives item's fingerprint and its two candidate
// buckets. The zero fingerprint is reserved for "empty slot", so a
// hash that happens to truncate to zero is remapped to one.
func (f *Cuckoo[F]) fingerprint(item []byte) (fp F, b1, b2 uint64) {
	h1, _ := HashPair(item)
	fp = F(h1)
	if fp == 0 {
		fp = 1
	}
	b1 = uint64(h1) % f.numBuckets

	fpBytes := fingerprintBytes(fp)
	b2 = b1 ^ (cuckooAltHash(fpBytes) % f.numBuckets)
	return fp, b1, b2
}

// altBucket recovers the other candidate bucket for fp given one of
// them, using the symmetric XOR relationship: b1 = b2 XOR H(fp) and
// b2 = b1 XOR H(fp).
func (f *Cuckoo[F]) altBucket(fp F, bucket uint64) uint64 {
	return bucket ^ (cuckooAltHash(fingerprintBytes(fp)) % f.numBuckets)
}

func fingerprintBytes[F CuckooFP](fp F) []byte {
	v := uint64(fp)
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func (b cuckooBucket[F]) indexOf(fp F) int {
	for i, v := range b {
		if v == fp {
			return i
		}
	}
	return -1
}

func (b cuckooBucket[F]) emptySlot() int {
	return b.indexOf(0)
}

// Set inserts item's fingerprint into one of its two candidate
// buckets. If both are full, it evicts a random occupant repeatedly
// (cuckoo-style), relocating each evicted fingerprint to its own
// alternate bucket, until an empty slot is found or maxKicks is
// exceeded, in which case it returns ErrFilterFull.
func (f *Cuckoo[F]) Set(item []byte) error {
	fp, b1, b2 := f.fingerprint(item)

	if i := f.buckets[b1].emptySlot(); i >= 0 {
		f.buckets[b1][i] = fp
		f.count++
		return nil
	}
	if i := f.buckets[b2].emptySlot(); i >= 0 {
		f.buckets[b2][i] = fp
		f.count++
		return nil
	}

	bucket := b1
	if f.rng.Intn(2) == 1 {
		bucket = b2
	}
	for kick := 0; kick < maxKicks; kick++ {
		slot := f.rng.Intn(f.bucketSize)
		evicted := f.buckets[bucket][slot]
		f.buckets[bucket][slot] = fp
		fp = evicted
		bucket = f.altBucket(fp, bucket)

		if i := f.buckets[bucket].emptySlot(); i >= 0 {
			f.buckets[bucket][i] = fp
			f.count++
			return nil
		}
	}
	return errors.Wrapf(ErrFilterFull, "exceeded %d kicks", maxKicks)
}

// Contains reports whether item's fingerprint is present in either
// candidate bucket.
func (f *Cuckoo[F]) Contains(item []byte) bool {
	fp, b1, b2 := f.fingerprint(item)
	return f.buckets[b1].indexOf(fp) >= 0 || f.buckets[b2].indexOf(fp) >= 0
}

// Remove clears the first matching fingerprint across item's two
// candidate buckets and reports whether a removal happened.
//
// Calling Remove more times than an item (or a colliding fingerprint)
// was inserted can produce a false negative for a different item that
// shares the fingerprint; callers must not do that.
func (f *Cuckoo[F]) Remove(item []byte) bool {
	fp, b1, b2 := f.fingerprint(item)
	if i := f.buckets[b1].indexOf(fp); i >= 0 {
		f.buckets[b1][i] = 0
		f.count--
		return true
	}
	if i := f.buckets[b2].indexOf(fp); i >= 0 {
		f.buckets[b2][i] = 0
		f.count--
		return true
	}
	return false
}

// EstimatedSize returns the exact count of occupied slots.
func (f *Cuckoo[F]) EstimatedSize() uint64 {
	return f.count
}

// Clear resets every bucket to empty.
func (f *Cuckoo[F]) Clear() {
	for i := range f.buckets {
		for j := range f.buckets[i] {
			f.buckets[i][j] = 0
		}
	}
	f.count = 0
}

// String reports the filter's shape and memory footprint.
func (f *Cuckoo[F]) String() string {
	var fp F
	width := 0
	switch any(fp).(type) {
	case uint8:
		width = 1
	case uint16:
		width = 2
	case uint32:
		width = 4
	}
	total := f.numBuckets * uint64(f.bucketSize) * uint64(width)
	return fmt.Sprintf("Cuckoo{buckets=%s, bucketSize=%d, items=%s, size=%s}",
		humanize.Comma(int64(f.numBuckets)), f.bucketSize,
		humanize.Comma(int64(f.count)), humanize.IBytes(total))
}
