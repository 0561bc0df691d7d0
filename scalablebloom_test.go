package probds

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScalableBloomGrows(t *testing.T) {
	sb, err := NewScalableBloomDefault(10, 0.01)
	require.NoError(t, err)
	require.Equal(t, 1, sb.FilterCount())

	for i := 0; i < 200; i++ {
		sb.Set([]byte(fmt.Sprintf("item-%d", i)))
	}
	require.Greater(t, sb.FilterCount(), 1)
}

func TestScalableBloomContainsEverythingInserted(t *testing.T) {
	sb, err := NewScalableBloomDefault(10, 0.01)
	require.NoError(t, err)

	items := make([][]byte, 300)
	for i := range items {
		items[i] = []byte(fmt.Sprintf("key-%d", i))
		sb.Set(items[i])
	}
	for _, it := range items {
		require.True(t, sb.Contains(it))
	}
	require.EqualValues(t, 300, sb.EstimatedSize())
}

func TestScalableBloomInvalidParams(t *testing.T) {
	_, err := NewScalableBloom(10, 1.0, 2, 0.5)
	require.ErrorIs(t, err, ErrInvalidParameters)
	_, err = NewScalableBloom(10, 0.01, 1, 0.5)
	require.ErrorIs(t, err, ErrInvalidParameters)
	_, err = NewScalableBloom(10, 0.01, 2, 1.5)
	require.ErrorIs(t, err, ErrInvalidParameters)
}

func TestScalableBloomClear(t *testing.T) {
	sb, err := NewScalableBloomDefault(10, 0.01)
	require.NoError(t, err)
	sb.Set([]byte("x"))
	sb.Clear()
	require.False(t, sb.Contains([]byte("x")))
	require.Equal(t, 1, sb.FilterCount())
}
