package probds

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitArraySetGet(t *testing.T) {
	b := NewBitArray(100)
	require.EqualValues(t, 100, b.Len())

	require.NoError(t, b.Set(5))
	require.NoError(t, b.Set(99))

	set, err := b.IsSet(5)
	require.NoError(t, err)
	require.True(t, set)

	set, err = b.IsSet(6)
	require.NoError(t, err)
	require.False(t, set)

	require.EqualValues(t, 2, b.PopCountAll())
}

func TestBitArrayUnsetToggle(t *testing.T) {
	b := NewBitArray(10)
	require.NoError(t, b.Set(3))
	require.NoError(t, b.Toggle(3))
	set, _ := b.IsSet(3)
	require.False(t, set)

	require.NoError(t, b.Toggle(4))
	set, _ = b.IsSet(4)
	require.True(t, set)

	require.NoError(t, b.Unset(4))
	set, _ = b.IsSet(4)
	require.False(t, set)
}

func TestBitArrayOutOfRange(t *testing.T) {
	b := NewBitArray(10)
	_, err := b.Get(10)
	require.ErrorIs(t, err, ErrInvalidIndex)
	require.Error(t, b.Set(100))
}

func TestBitArrayPopCountMasksTail(t *testing.T) {
	// length not a multiple of 64: only the bits within [0, length)
	// should ever be counted.
	b := NewBitArray(70)
	for i := uint64(0); i < 70; i++ {
		require.NoError(t, b.Set(i))
	}
	require.EqualValues(t, 70, b.PopCountAll())
}

func TestBitArrayClear(t *testing.T) {
	b := NewBitArray(64)
	require.NoError(t, b.Set(0))
	require.NoError(t, b.Set(63))
	b.Clear()
	require.EqualValues(t, 0, b.PopCountAll())
}
