package probds

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTDigestQuantiles(t *testing.T) {
	td, err := NewTDigest(100)
	require.NoError(t, err)

	for i := 1; i <= 100; i++ {
		td.Add(float64(i))
	}

	median, err := td.Quantile(0.5)
	require.NoError(t, err)
	require.InDelta(t, 50, median, 5)

	p25, err := td.Quantile(0.25)
	require.NoError(t, err)
	require.InDelta(t, 25, p25, 5)

	p75, err := td.Quantile(0.75)
	require.NoError(t, err)
	require.InDelta(t, 75, p75, 5)
}

func TestTDigestInvalidCompression(t *testing.T) {
	_, err := NewTDigest(5)
	require.ErrorIs(t, err, ErrInvalidCompression)
	_, err = NewTDigest(2000)
	require.ErrorIs(t, err, ErrInvalidCompression)
}

func TestTDigestEmptyDigest(t *testing.T) {
	td := NewTDigestDefault()
	_, err := td.Quantile(0.5)
	require.ErrorIs(t, err, ErrEmptyDigest)
	_, err = td.CDF(1)
	require.ErrorIs(t, err, ErrEmptyDigest)
}

func TestTDigestInvalidPercentile(t *testing.T) {
	td := NewTDigestDefault()
	td.Add(1)
	_, err := td.Quantile(-0.1)
	require.ErrorIs(t, err, ErrInvalidParameters)
	_, err = td.Quantile(1.1)
	require.ErrorIs(t, err, ErrInvalidParameters)
}

func TestTDigestCDFMonotone(t *testing.T) {
	td := NewTDigestDefault()
	for i := 1; i <= 100; i++ {
		td.Add(float64(i))
	}
	lo, err := td.CDF(25)
	require.NoError(t, err)
	hi, err := td.CDF(75)
	require.NoError(t, err)
	require.Less(t, lo, hi)
}

func TestTDigestMerge(t *testing.T) {
	a := NewTDigestDefault()
	b := NewTDigestDefault()
	for i := 1; i <= 50; i++ {
		a.Add(float64(i))
	}
	for i := 51; i <= 100; i++ {
		b.Add(float64(i))
	}
	a.Merge(b)
	median, err := a.Quantile(0.5)
	require.NoError(t, err)
	require.InDelta(t, 50, median, 10)
	require.EqualValues(t, 100, a.Size())
}
