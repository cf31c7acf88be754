package registration

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPriceRange(t *testing.T) {
	_, err := NewPriceRange(0)
	require.ErrorIs(t, err, ErrBasePriceUnavailable)

	_, err = NewPriceRange(99000)
	require.ErrorIs(t, err, ErrBasePriceTooLow)

	r, err := NewPriceRange(MinPrice)
	require.NoError(t, err)
	require.True(t, r.Contains(MinPrice))
}

func TestPriceRange_ContainsAndAdjust(t *testing.T) {
	r, err := NewPriceRange(850500)
	require.NoError(t, err)

	require.False(t, r.Contains(99999))
	require.True(t, r.Contains(100000))
	require.True(t, r.Contains(850500))
	require.False(t, r.Contains(850501))
	require.True(t, r.Contains(850000))
	require.False(t, r.Contains(123457))
	require.False(t, r.Contains(849500))

	require.Equal(t, 850500, r.Adjust(850500, 1))
	require.Equal(t, 849000, r.Adjust(850500, -1))
	require.Equal(t, 840000, r.Adjust(850500, -10))
	require.Equal(t, 850500, r.Adjust(850000, 1))
	require.Equal(t, 850000, r.Adjust(849000, 1))
	require.Equal(t, 100000, r.Adjust(105000, -10))
	require.Equal(t, 110000, r.Adjust(100000, 10))
	require.Equal(t, 100000, r.Clamp(1))
}
