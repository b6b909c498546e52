package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"100.00", 10000},
		{"125.00", 12500},
		{"0.01", 1},
		{"-19.99", -1999},
		{"99.995", 10000},
		{"0.004", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := FromDecimal(decimal.RequireFromString(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Int64())
		})
	}
}

func TestFromDecimal_Overflow(t *testing.T) {
	huge := decimal.New(1, 30)
	_, err := FromDecimal(huge)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "0.01", "1", "42.42", "100.00", "999999999.99", "-55.55"} {
		d := decimal.RequireFromString(s)
		a, err := FromDecimal(d)
		require.NoError(t, err)
		assert.True(t, d.Equal(a.Decimal()), "round trip of %s gave %s", s, a.Decimal())
	}
}

func TestBasisPoints(t *testing.T) {
	assert.Equal(t, 2500, BasisPoints(decimal.RequireFromString("25")))
	assert.Equal(t, 1250, BasisPoints(decimal.RequireFromString("12.5")))
	assert.Equal(t, 0, BasisPoints(decimal.Zero))
	assert.Equal(t, 833, BasisPoints(decimal.RequireFromString("8.33")))
}
