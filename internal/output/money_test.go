package output

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.Decimal
		code   string
		want   string
	}{
		{"rupees", decimal.NewFromInt(1210000), "INR", "₹1,210,000.00"},
		{"dollars with cents", decimal.RequireFromString("1234.567"), "USD", "$1,234.57"},
		{"unknown code", decimal.NewFromInt(5), "XXX1", "XXX1 5.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(tt.amount, tt.code))
		})
	}
}

func TestFormatMoneyWhole(t *testing.T) {
	assert.Equal(t, "$12,346", FormatMoneyWhole(decimal.RequireFromString("12345.6"), "USD"))
	assert.Equal(t, "₹0", FormatMoneyWhole(decimal.Zero, "INR"))
}

func TestFormatPercentage(t *testing.T) {
	assert.Equal(t, "7.00%", FormatPercentage(decimal.RequireFromString("0.07")))
	assert.Equal(t, "-1.50%", FormatPercentage(decimal.RequireFromString("-0.015")))
}

func TestCurrencySymbol(t *testing.T) {
	assert.Equal(t, "$", CurrencySymbol("USD"))
	assert.Equal(t, "₹", CurrencySymbol("INR"))
	assert.Equal(t, "ZZZ ", CurrencySymbol("ZZZ"))
}
