package probds

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountingBloomSetRemove(t *testing.T) {
	f, err := NewCountingBloom[uint8](100, 0.01)
	require.NoError(t, err)

	require.NoError(t, f.Set([]byte("apple")))
	require.True(t, f.Contains([]byte("apple")))

	require.True(t, f.Remove([]byte("apple")))
	require.False(t, f.Contains([]byte("apple")))
}

func TestCountingBloomRemoveAbsentItem(t *testing.T) {
	f, err := NewCountingBloom[uint8](100, 0.01)
	require.NoError(t, err)
	require.False(t, f.Remove([]byte("ghost")))
}

func TestCountingBloomRemoveSequence(t *testing.T) {
	f, err := NewCountingBloom[uint8](100, 0.01)
	require.NoError(t, err)

	require.NoError(t, f.Set([]byte("a")))
	require.NoError(t, f.Set([]byte("a")))
	require.True(t, f.Contains([]byte("a")))

	require.True(t, f.Remove([]byte("a")))
	require.True(t, f.Contains([]byte("a")), "second Set means item survives one Remove")

	require.True(t, f.Remove([]byte("a")))
	require.False(t, f.Contains([]byte("a")))
}

func TestCountingBloomRemoveSafe(t *testing.T) {
	f, err := NewCountingBloom[uint8](100, 0.01)
	require.NoError(t, err)
	err = f.RemoveSafe([]byte("ghost"))
	require.ErrorIs(t, err, ErrCounterUnderflow)
}

func TestCountingBloomOverflow(t *testing.T) {
	f, err := NewCountingBloom[uint8](10, 0.3)
	require.NoError(t, err)
	item := []byte("x")
	var overflowed error
	for i := 0; i < 300; i++ {
		if err := f.Set(item); err != nil {
			overflowed = err
			break
		}
	}
	require.ErrorIs(t, overflowed, ErrCounterOverflow)
}
