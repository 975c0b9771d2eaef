package tuistyles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		value  float64
		symbol string
		want   string
	}{
		{950, "₹", "₹950"},
		{12_400, "$", "$12K"},
		{2_460_000, "₹", "₹2.5M"},
		{3_200_000_000, "", "3.20B"},
		{-90_000, "₹", "-₹90K"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCompact(tt.value, tt.symbol))
	}
}

func TestTrendIndicator(t *testing.T) {
	assert.NotEqual(t, TrendIndicator(true), TrendIndicator(false))
}
