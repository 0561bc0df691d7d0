package probds

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// qdigestNode is one node of the implicit binary range tree over
// [0, universeSize): node id 1 is the root covering the whole range,
// and id*2/id*2+1 are its children, in the usual heap-array numbering.
type qdigestNode struct {
	id     uint64
	weight uint64
}

// QDigest is a q-digest: a compressed histogram over the integer range
// [0, universeSize) built from an implicit binary range tree, used to
// answer approximate rank and quantile queries. compressionFactor
// bounds the tree's total node count to roughly 3*compressionFactor.
type QDigest struct {
	nodes             map[uint64]uint64 // node id -> weight
	universeSize      uint64            // power of two
	depth              uint              // log2(universeSize)
	compressionFactor uint64
	totalWeight       uint64
}

// NewQDigest constructs a QDigest over [0, universeSize) with the
// given compression factor. universeSize must be a power of two;
// compressionFactor must be in [1,1000].
func NewQDigest(universeSize uint64, compressionFactor uint64) (*QDigest, error) {
	if universeSize == 0 || universeSize&(universeSize-1) != 0 {
		return nil, errors.Wrapf(ErrInvalidUniverseSize, "universeSize=%d", universeSize)
	}
	if compressionFactor < 1 || compressionFactor > 1000 {
		return nil, errors.Wrapf(ErrInvalidCompression, "compressionFactor=%d must be in [1,1000]", compressionFactor)
	}
	depth := uint(0)
	for uint64(1)<<depth < universeSize {
		depth++
	}
	return &QDigest{
		nodes:             make(map[uint64]uint64),
		universeSize:      universeSize,
		depth:             depth,
		compressionFactor: compressionFactor,
	}, nil
}

// leafID returns the id of the leaf node covering the single value v,
// in the heap-array numbering where the root is id 1 at depth 0.
func (q *QDigest) leafID(v uint64) uint64 {
	return (uint64(1) << q.depth) + v
}

func parentID(id uint64) uint64 { return id / 2 }

func siblingID(id uint64) uint64 {
	if id%2 == 0 {
		return id + 1
	}
	return id - 1
}

// rangeOf returns the [lo, hi] integer range (inclusive) that node id
// covers; the node's level below the root is derived from id.
func (q *QDigest) rangeOf(id uint64) (lo, hi uint64) {
	level := 0
	for t := id; t > 1; t >>= 1 {
		level++
	}
	span := uint64(1) << (uint(q.depth) - uint(level))
	offset := id - (uint64(1) << uint(level))
	lo = offset * span
	hi = lo + span - 1
	return lo, hi
}

// Add records one observation of v, then compresses if the node count
// has grown enough to be worth checking. v must be in [0, universeSize).
func (q *QDigest) Add(v uint64) error {
	if v >= q.universeSize {
		return errors.Wrapf(ErrInvalidParameters, "value %d out of universe [0,%d)", v, q.universeSize)
	}
	id := q.leafID(v)
	q.nodes[id]++
	q.totalWeight++
	if uint64(len(q.nodes)) > 3*q.compressionFactor {
		q.Compress()
	}
	return nil
}

// Compress folds a node and its sibling into their parent whenever the
// node's, the sibling's and the parent's weights together are at most
// floor(totalWeight/compressionFactor), pushing weight up toward the
// root and discarding nodes that reach
// zero. This bounds the digest to roughly 3*compressionFactor nodes
// while keeping rank error bounded by totalWeight/compressionFactor.
func (q *QDigest) Compress() {
	if len(q.nodes) == 0 || q.compressionFactor == 0 {
		return
	}
	threshold := q.totalWeight / q.compressionFactor

	ids := make([]uint64, 0, len(q.nodes))
	for id := range q.nodes {
		ids = append(ids, id)
	}
	// Process bottom-up (highest id first) so a child's weight has
	// already been folded into its parent before the parent itself is
	// considered for a further merge toward the root.
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	for _, id := range ids {
		if id <= 1 {
			continue
		}
		w, ok := q.nodes[id]
		if !ok || w == 0 {
			continue
		}
		sib := siblingID(id)
		parent := parentID(id)
		sibW := q.nodes[sib]
		parentW := q.nodes[parent]

		if w+sibW+parentW <= threshold {
			q.nodes[parent] = parentW + w + sibW
			delete(q.nodes, id)
			delete(q.nodes, sib)
		}
	}
	for id, w := range q.nodes {
		if w == 0 {
			delete(q.nodes, id)
		}
	}
}

// Rank returns the estimated fraction of observed weight at or below
// v: the sum of weight held by every node whose range's upper bound is
// <= v, divided by the total weight.
func (q *QDigest) Rank(v uint64) float64 {
	if q.totalWeight == 0 {
		return 0
	}
	var sum uint64
	for id, w := range q.nodes {
		_, hi := q.rangeOf(id)
		if hi <= v {
			sum += w
		}
	}
	return float64(sum) / float64(q.totalWeight)
}

// Quantile returns the smallest value v such that Rank(v) >= p, for p
// in [0,1].
func (q *QDigest) Quantile(p float64) (uint64, error) {
	if p < 0 || p > 1 {
		return 0, errors.Wrapf(ErrInvalidParameters, "percentile %v must be in [0,1]", p)
	}
	if q.totalWeight == 0 {
		return 0, ErrEmptyDigest
	}

	type rangeWeight struct {
		hi uint64
		w  uint64
	}
	entries := make([]rangeWeight, 0, len(q.nodes))
	for id, w := range q.nodes {
		_, hi := q.rangeOf(id)
		entries = append(entries, rangeWeight{hi: hi, w: w})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].hi < entries[j].hi })

	target := p * float64(q.totalWeight)
	var cumulative uint64
	for _, e := range entries {
		cumulative += e.w
		if float64(cumulative) >= target {
			return e.hi, nil
		}
	}
	return q.universeSize - 1, nil
}

// Merge folds other's node weights into q, requiring matching universe
// size and compression factor, and recompresses afterward.
func (q *QDigest) Merge(other *QDigest) error {
	if q.universeSize != other.universeSize {
		return errors.Wrapf(ErrInvalidUniverseSize, "universeSize %d vs %d", q.universeSize, other.universeSize)
	}
	if q.compressionFactor != other.compressionFactor {
		return errors.Wrapf(ErrInvalidCompression, "compressionFactor %d vs %d", q.compressionFactor, other.compressionFactor)
	}
	for id, w := range other.nodes {
		q.nodes[id] += w
	}
	q.totalWeight += other.totalWeight
	q.Compress()
	return nil
}

// Clear resets the digest to its empty state.
func (q *QDigest) Clear() {
	q.nodes = make(map[uint64]uint64)
	q.totalWeight = 0
}

// String reports the digest's shape and memory footprint.
func (q *QDigest) String() string {
	bytesUsed := uint64(len(q.nodes)) * 16
	return fmt.Sprintf("QDigest{universe=%s, compression=%d, nodes=%d, weight=%s, size=%s}",
		humanize.Comma(int64(q.universeSize)), q.compressionFactor, len(q.nodes),
		humanize.Comma(int64(q.totalWeight)), humanize.IBytes(bytesUsed))
}
