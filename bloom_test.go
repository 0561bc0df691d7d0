package probds

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBloomInsertContains(t *testing.T) {
	f, err := NewBloom(100, 0.01)
	require.NoError(t, err)

	f.Set([]byte("apple"))
	f.Set([]byte("banana"))

	require.True(t, f.Contains([]byte("apple")))
	require.True(t, f.Contains([]byte("banana")))
	require.False(t, f.Contains([]byte("cherry")))
}

func TestBloomNoFalseNegatives(t *testing.T) {
	f, err := NewBloom(1000, 0.01)
	require.NoError(t, err)

	items := make([][]byte, 500)
	for i := range items {
		items[i] = []byte{byte(i), byte(i >> 8)}
		f.Set(items[i])
	}
	for _, it := range items {
		require.True(t, f.Contains(it))
	}
}

func TestBloomInvalidParams(t *testing.T) {
	_, err := NewBloom(100, 0)
	require.ErrorIs(t, err, ErrInvalidParameters)
	_, err = NewBloom(100, 1.5)
	require.ErrorIs(t, err, ErrInvalidParameters)
}

func TestBloomEstimatedSize(t *testing.T) {
	f, err := NewBloom(1000, 0.01)
	require.NoError(t, err)
	for i := 0; i < 200; i++ {
		f.Set([]byte{byte(i), byte(i >> 8), 0xAB})
	}
	est := f.EstimatedSize()
	require.InDelta(t, 200, float64(est), 40)
}

func TestBloomUnionIsMonotone(t *testing.T) {
	a, _ := NewBloomWithParams(1000, 4)
	b, _ := NewBloomWithParams(1000, 4)
	a.Set([]byte("a-only"))
	b.Set([]byte("b-only"))

	require.NoError(t, a.Union(b))
	require.True(t, a.Contains([]byte("a-only")))
	require.True(t, a.Contains([]byte("b-only")))
}

func TestBloomIntersect(t *testing.T) {
	a, _ := NewBloomWithParams(1000, 4)
	b, _ := NewBloomWithParams(1000, 4)
	a.Set([]byte("shared"))
	a.Set([]byte("a-only"))
	b.Set([]byte("shared"))

	require.NoError(t, a.Intersect(b))
	require.True(t, a.Contains([]byte("shared")))
}

func TestBloomUnionShapeMismatch(t *testing.T) {
	a, _ := NewBloomWithParams(1000, 4)
	b, _ := NewBloomWithParams(500, 4)
	require.Error(t, a.Union(b))
}

func TestBloomClear(t *testing.T) {
	f, _ := NewBloom(100, 0.01)
	f.Set([]byte("x"))
	f.Clear()
	require.False(t, f.Contains([]byte("x")))
}

func TestFPRateAndOptimize(t *testing.T) {
	m, k := Optimize(1000, 0.01)
	require.Greater(t, m, uint64(0))
	require.GreaterOrEqual(t, k, 1)

	rate := FPRate(1000, m, k)
	require.InDelta(t, 0.01, rate, 0.01)
}
