package probds

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountingBitArrayIncrementDecrement(t *testing.T) {
	c := NewCountingBitArray[uint8](10)
	require.NoError(t, c.Increment(2))
	require.NoError(t, c.Increment(2))
	v, err := c.Get(2)
	require.NoError(t, err)
	require.EqualValues(t, 2, v)

	require.NoError(t, c.Decrement(2))
	v, _ = c.Get(2)
	require.EqualValues(t, 1, v)
}

func TestCountingBitArrayOverflow(t *testing.T) {
	c := NewCountingBitArray[uint8](1)
	for i := 0; i < 255; i++ {
		require.NoError(t, c.Increment(0))
	}
	err := c.Increment(0)
	require.ErrorIs(t, err, ErrCounterOverflow)
	v, _ := c.Get(0)
	require.EqualValues(t, 255, v, "failed increment must not touch the counter")
}

func TestCountingBitArrayUnderflow(t *testing.T) {
	c := NewCountingBitArray[uint16](1)
	err := c.Decrement(0)
	require.ErrorIs(t, err, ErrCounterUnderflow)
}

func TestCountingBitArrayCountNonzero(t *testing.T) {
	c := NewCountingBitArray[uint32](5)
	require.NoError(t, c.Increment(0))
	require.NoError(t, c.Increment(3))
	require.EqualValues(t, 2, c.CountNonzero())

	c.Clear()
	require.EqualValues(t, 0, c.CountNonzero())
}
