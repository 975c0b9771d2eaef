package output

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders amount in the given ISO currency with its symbol and
// grouping, rounded to the currency's minor unit. Unknown codes fall back to
// two decimals with the code as prefix.
func FormatMoney(amount decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return code + " " + amount.StringFixed(2)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), cur.Code).Display()
}

// FormatMoneyWhole renders amount rounded to whole units, for tables and charts.
func FormatMoneyWhole(amount decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return code + " " + amount.StringFixed(0)
	}
	f := money.NewFormatter(0, cur.Decimal, cur.Thousand, cur.Grapheme, cur.Template)
	return f.Format(amount.Round(0).IntPart())
}

// FormatPercentage renders a fraction (0.07) as a percentage ("7.00%").
func FormatPercentage(rate decimal.Decimal) string {
	return rate.Shift(2).StringFixed(2) + "%"
}

// CurrencySymbol returns the display symbol for an ISO code, or the code itself
// followed by a space when go-money does not know it.
func CurrencySymbol(code string) string {
	if cur := money.GetCurrency(code); cur != nil {
		return cur.Grapheme
	}
	return code + " "
}
