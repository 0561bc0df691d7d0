package probds

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQDigestQuantileRank(t *testing.T) {
	q, err := NewQDigest(1024, 50)
	require.NoError(t, err)

	for i := uint64(1); i <= 100; i++ {
		require.NoError(t, q.Add(i))
	}

	median, err := q.Quantile(0.5)
	require.NoError(t, err)
	require.InDelta(t, 50, float64(median), 20)

	rank := q.Rank(50)
	require.InDelta(t, 0.5, rank, 0.2)
}

func TestQDigestInvalidUniverseSize(t *testing.T) {
	_, err := NewQDigest(100, 10)
	require.ErrorIs(t, err, ErrInvalidUniverseSize)
}

func TestQDigestInvalidCompression(t *testing.T) {
	_, err := NewQDigest(1024, 0)
	require.ErrorIs(t, err, ErrInvalidCompression)
	_, err = NewQDigest(1024, 5000)
	require.ErrorIs(t, err, ErrInvalidCompression)
}

func TestQDigestRejectsOutOfUniverseValue(t *testing.T) {
	q, err := NewQDigest(64, 10)
	require.NoError(t, err)
	require.ErrorIs(t, q.Add(64), ErrInvalidParameters)
	require.NoError(t, q.Add(63))
}

func TestQDigestEmptyDigest(t *testing.T) {
	q, err := NewQDigest(64, 10)
	require.NoError(t, err)
	_, err = q.Quantile(0.5)
	require.ErrorIs(t, err, ErrEmptyDigest)
}

func TestQDigestMergeRequiresMatchingShape(t *testing.T) {
	a, _ := NewQDigest(1024, 50)
	b, _ := NewQDigest(512, 50)
	require.Error(t, a.Merge(b))

	c, _ := NewQDigest(1024, 20)
	require.Error(t, a.Merge(c))
}

func TestQDigestMerge(t *testing.T) {
	a, _ := NewQDigest(1024, 50)
	b, _ := NewQDigest(1024, 50)
	for i := uint64(1); i <= 50; i++ {
		require.NoError(t, a.Add(i))
	}
	for i := uint64(51); i <= 100; i++ {
		require.NoError(t, b.Add(i))
	}
	require.NoError(t, a.Merge(b))
	median, err := a.Quantile(0.5)
	require.NoError(t, err)
	require.InDelta(t, 50, float64(median), 25)
}

func TestQDigestCompressBoundsNodeCount(t *testing.T) {
	q, err := NewQDigest(1024, 10)
	require.NoError(t, err)
	for i := uint64(0); i < 1000; i++ {
		require.NoError(t, q.Add(i%1024))
	}
	q.Compress()
	require.LessOrEqual(t, len(q.nodes), 3*10+20)
}
