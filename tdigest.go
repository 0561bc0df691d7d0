package probds

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// tdigestMaxDiscrete is the number of raw centroids accumulated before
// compress runs automatically.
const tdigestMaxDiscrete = 25

// centroid is a (mean, weight) summary of a cluster of values.
type centroid struct {
	mean   float64
	weight uint64
}

// TDigest is a t-digest: a compressed, ordered set of centroids used
// to approximate quantiles of a numeric stream without storing every
// observation. Compression parameter delta controls how aggressively
// nearby centroids merge; larger delta means more, smaller centroids
// and tighter quantile estimates.
type TDigest struct {
	centroids   []centroid
	totalWeight uint64
	delta       float64
	dirty       int // raw adds since the last compress
}

// NewTDigest constructs a TDigest with compression parameter delta,
// which must be in [10,1000].
func NewTDigest(delta float64) (*TDigest, error) {
	if delta < 10 || delta > 1000 {
		return nil, errors.Wrapf(ErrInvalidCompression, "delta=%v must be in [10,1000]", delta)
	}
	return &TDigest{delta: delta}, nil
}

// NewTDigestDefault constructs a TDigest with the conventional
// compression parameter 100.
func NewTDigestDefault() *TDigest {
	td, _ := NewTDigest(100)
	return td
}

// Add records value with weight 1.
func (td *TDigest) Add(value float64) {
	td.AddWeighted(value, 1)
}

// AddWeighted appends a new centroid for value with the given weight,
// running compress once the number of uncompressed centroids exceeds
// tdigestMaxDiscrete.
func (td *TDigest) AddWeighted(value float64, weight uint64) {
	td.centroids = append(td.centroids, centroid{mean: value, weight: weight})
	td.totalWeight += weight
	td.dirty++
	if td.dirty > tdigestMaxDiscrete {
		td.Compress()
	}
}

// Compress sorts centroids by mean and merges adjacent pairs whose
// mean gap is below 100/delta and whose combined weight stays under
// totalWeight*2/delta, the source's approximation of Dunning's scale
// function.
func (td *TDigest) Compress() {
	if len(td.centroids) == 0 {
		return
	}
	sort.Slice(td.centroids, func(i, j int) bool {
		return td.centroids[i].mean < td.centroids[j].mean
	})

	meanGapLimit := 100 / td.delta
	weightLimit := float64(td.totalWeight) * 2 / td.delta

	merged := make([]centroid, 0, len(td.centroids))
	merged = append(merged, td.centroids[0])
	for _, c := range td.centroids[1:] {
		last := &merged[len(merged)-1]
		gap := c.mean - last.mean
		combined := last.weight + c.weight
		if gap < meanGapLimit && float64(combined) < weightLimit {
			last.mean = (last.mean*float64(last.weight) + c.mean*float64(c.weight)) / float64(combined)
			last.weight = combined
		} else {
			merged = append(merged, c)
		}
	}
	td.centroids = merged
	td.dirty = 0
}

// Quantile returns the estimated value at percentile p (in [0,1]),
// linearly interpolating between adjacent centroid means within the
// half-weight gap that contains the target weight.
func (td *TDigest) Quantile(p float64) (float64, error) {
	if p < 0 || p > 1 {
		return 0, errors.Wrapf(ErrInvalidParameters, "percentile %v must be in [0,1]", p)
	}
	if len(td.centroids) == 0 {
		return 0, ErrEmptyDigest
	}
	td.Compress()
	n := len(td.centroids)
	if n == 1 {
		return td.centroids[0].mean, nil
	}

	target := p * float64(td.totalWeight)
	if target <= float64(td.centroids[0].weight)/2 {
		return td.centroids[0].mean, nil
	}
	last := td.centroids[n-1]
	if target >= float64(td.totalWeight)-float64(last.weight)/2 {
		return last.mean, nil
	}

	cumulative := float64(td.centroids[0].weight) / 2
	for i := 0; i < n-1; i++ {
		c, next := td.centroids[i], td.centroids[i+1]
		gapWeight := float64(c.weight)/2 + float64(next.weight)/2
		if target <= cumulative+gapWeight {
			frac := (target - cumulative) / gapWeight
			return c.mean + frac*(next.mean-c.mean), nil
		}
		cumulative += gapWeight
	}
	return last.mean, nil
}

// CDF returns the fraction of observed weight at or below v, via the
// symmetric walk to Quantile: linear interpolation within the gap
// between the two centroids straddling v.
func (td *TDigest) CDF(v float64) (float64, error) {
	if len(td.centroids) == 0 {
		return 0, ErrEmptyDigest
	}
	td.Compress()
	n := len(td.centroids)
	if v <= td.centroids[0].mean {
		return 0, nil
	}
	if v >= td.centroids[n-1].mean {
		return 1, nil
	}

	cumulative := float64(td.centroids[0].weight) / 2
	for i := 0; i < n-1; i++ {
		c, next := td.centroids[i], td.centroids[i+1]
		if v <= next.mean {
			gapWeight := float64(c.weight)/2 + float64(next.weight)/2
			frac := (v - c.mean) / (next.mean - c.mean)
			return (cumulative + frac*gapWeight) / float64(td.totalWeight), nil
		}
		cumulative += float64(c.weight)/2 + float64(next.weight)/2
	}
	return 1, nil
}

// Merge re-inserts every centroid of other into td as a weighted
// sample. This is simple and correct, though not optimal (a streaming
// merge that preserves more of other's structure is possible but not
// required for the quantile invariants).
func (td *TDigest) Merge(other *TDigest) {
	for _, c := range other.centroids {
		td.AddWeighted(c.mean, c.weight)
	}
}

// Size returns the total weight (number of observations) recorded.
func (td *TDigest) Size() uint64 {
	return td.totalWeight
}

// String reports the digest's compression parameter, centroid count,
// and memory footprint.
func (td *TDigest) String() string {
	bytesUsed := uint64(len(td.centroids)) * 16
	return fmt.Sprintf("TDigest{delta=%v, centroids=%d, weight=%s, size=%s}",
		td.delta, len(td.centroids), humanize.Comma(int64(td.totalWeight)), humanize.IBytes(bytesUsed))
}
