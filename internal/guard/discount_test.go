package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeDiscount(t *testing.T) {
	tests := []struct {
		name    string
		list    string
		current string
		want    string
	}{
		{"basic discount", "100", "75", "25.00"},
		{"zero list price", "0", "50", ""},
		{"negative list price", "-10", "5", ""},
		{"empty current price", "100", "", ""},
		{"empty list price", "", "75", ""},
		{"non numeric current", "100", "abc", ""},
		{"non numeric list", "x", "75", ""},
		{"markup is negative, not clamped", "100", "120", "-20.00"},
		{"free item", "100", "0", "100.00"},
		{"fractional prices", "59.99", "44.99", "25.00"},
		{"repeating decimal rounds to 2dp", "3", "2", "33.33"},
		{"whitespace tolerated", " 100 ", " 75 ", "25.00"},
		{"no discount", "80", "80", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeDiscount(tt.list, tt.current))
		})
	}
}

func TestDiscountOrZero(t *testing.T) {
	assert.Equal(t, 25.0, DiscountOrZero("100", "75"))
	assert.Equal(t, 0.0, DiscountOrZero("0", "75"))
	assert.Equal(t, 0.0, DiscountOrZero("", ""))
	assert.Equal(t, -20.0, DiscountOrZero("100", "120"))
}

func TestParsePrice(t *testing.T) {
	v, ok := ParsePrice("19.99")
	assert.True(t, ok)
	assert.Equal(t, 19.99, v)

	_, ok = ParsePrice("-1")
	assert.False(t, ok)

	_, ok = ParsePrice("")
	assert.False(t, ok)

	v, ok = ParsePrice("0")
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)
}
