package probds

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountMinSetEstimate(t *testing.T) {
	s, err := NewCountMin[uint32](272, 5)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		s.Set([]byte("apple"))
	}
	s.Set([]byte("banana"))

	require.GreaterOrEqual(t, s.Estimate([]byte("apple")), uint64(10))
	require.GreaterOrEqual(t, s.Estimate([]byte("banana")), uint64(1))
	require.EqualValues(t, 0, s.Estimate([]byte("absent")))
}

func TestCountMinWithErrorSizing(t *testing.T) {
	s, err := NewCountMinWithError[uint32](0.01, 0.01)
	require.NoError(t, err)
	require.EqualValues(t, 272, s.Width())
	require.EqualValues(t, 5, s.Depth())
}

func TestCountMinNeverUnderestimates(t *testing.T) {
	s, err := NewCountMin[uint16](50, 4)
	require.NoError(t, err)

	truth := make(map[string]uint64)
	for i := 0; i < 500; i++ {
		key := fmt.Sprintf("key-%d", i%20)
		s.SetCount([]byte(key), 1)
		truth[key]++
	}
	for key, count := range truth {
		require.GreaterOrEqual(t, s.Estimate([]byte(key)), count)
	}
}

func TestCountMinMerge(t *testing.T) {
	a, _ := NewCountMin[uint32](100, 3)
	b, _ := NewCountMin[uint32](100, 3)
	a.Set([]byte("x"))
	b.Set([]byte("x"))
	b.Set([]byte("x"))

	require.NoError(t, a.Merge(b))
	require.GreaterOrEqual(t, a.Estimate([]byte("x")), uint64(3))
}

func TestCountMinMergeDimensionMismatch(t *testing.T) {
	a, _ := NewCountMin[uint32](100, 3)
	b, _ := NewCountMin[uint32](50, 3)
	require.ErrorIs(t, a.Merge(b), ErrIncompatibleDimensions)
}

func TestCountMinSaturates(t *testing.T) {
	s, err := NewCountMin[uint8](4, 1)
	require.NoError(t, err)
	s.SetCount([]byte("x"), 1000)
	require.EqualValues(t, 255, s.Estimate([]byte("x")))
}
