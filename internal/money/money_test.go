package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsNegative(t *testing.T) {
	_, err := New(decimal.NewFromInt(-1), "NGN")
	assert.Error(t, err)
}

func TestNew_RejectsEmptyCurrency(t *testing.T) {
	_, err := New(decimal.NewFromInt(10), "  ")
	assert.Error(t, err)
}

func TestParse_StripsGrouping(t *testing.T) {
	grouped, err := Parse("12,345.67", "NGN")
	require.NoError(t, err)

	plain, err := Parse("12345.67", "NGN")
	require.NoError(t, err)

	assert.True(t, grouped.Value.Equal(plain.Value))
	assert.Equal(t, "12345.67", grouped.APIString())
}

func TestParse_RejectsGarbage(t *testing.T) {
	_, err := Parse("12x45", "NGN")
	assert.Error(t, err)

	_, err = Parse("  ", "NGN")
	assert.Error(t, err)
}

func TestDisplay_GroupsDigits(t *testing.T) {
	cases := []struct {
		in     string
		places int32
		want   string
	}{
		{"54.3", 2, "54.30"},
		{"12345.67", 2, "12,345.67"},
		{"1234567", 2, "1,234,567.00"},
		{"999", 0, "999"},
		{"1000", 0, "1,000"},
		{"0", 2, "0.00"},
	}

	for _, tc := range cases {
		amount, err := Parse(tc.in, "NGN")
		require.NoError(t, err)
		assert.Equal(t, tc.want, amount.Display(tc.places), "input %q", tc.in)
	}
}

func TestDisplay_RoundTripsThroughParse(t *testing.T) {
	amount, err := Parse("9876543.21", "KES")
	require.NoError(t, err)

	reparsed, err := Parse(amount.Display(2), "KES")
	require.NoError(t, err)
	assert.True(t, amount.Value.Equal(reparsed.Value))
}

func TestPair_Swap(t *testing.T) {
	pair := NewPair("ngn", "kes")
	assert.Equal(t, Pair{From: "NGN", To: "KES"}, pair)

	swapped := pair.Swap()
	assert.Equal(t, Pair{From: "KES", To: "NGN"}, swapped)
}

func TestPair_Same(t *testing.T) {
	assert.True(t, NewPair("USD", "usd").Same())
	assert.False(t, NewPair("USD", "NGN").Same())
}

func TestPair_Complete(t *testing.T) {
	assert.False(t, NewPair("USD", "").Complete())
	assert.True(t, NewPair("USD", "NGN").Complete())
}
