package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/rgehrsitz/firesim/internal/domain"
)

// CSVFormatter writes one row per YearRecord. Per-bucket withdrawal columns follow
// the result's bucket order; ending balance columns, in each bucket's own
// currency, follow the order of the first record's balances.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(result *domain.SimulationResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{
		"year", "age", "exchange_rate",
		"rental_income", "living", "travel", "insurance", "house_repair", "one_time_total", "total_expenses",
		"required_withdrawal", "actual_withdrawal", "shortfall", "taxable_income", "tax_due", "tax_paid",
	}
	for _, name := range result.BucketOrder {
		header = append(header, "withdrawal_"+name)
	}
	header = append(header, "unfunded_withdrawal", "ending_portfolio_value", "available_for_withdraw_start")
	balances := balanceColumns(result)
	for _, name := range balances {
		header = append(header, "balance_"+name)
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, rec := range result.Records {
		row := []string{
			strconv.Itoa(rec.Year),
			strconv.Itoa(rec.Age),
			rec.ExchangeRate.String(),
			rec.RentalIncome.StringFixed(2),
			rec.Living.StringFixed(2),
			rec.Travel.StringFixed(2),
			rec.Insurance.StringFixed(2),
			rec.HouseRepair.StringFixed(2),
			rec.OneTimeTotal.StringFixed(2),
			rec.TotalExpenses.StringFixed(2),
			rec.RequiredWithdrawal.StringFixed(2),
			rec.ActualWithdrawal.StringFixed(2),
			rec.Shortfall.StringFixed(2),
			rec.TaxableIncome.StringFixed(2),
			rec.TaxDue.StringFixed(2),
			rec.TaxPaid.StringFixed(2),
		}
		for _, name := range result.BucketOrder {
			row = append(row, rec.Withdrawals.Get(name).StringFixed(2))
		}
		row = append(row,
			rec.UnfundedWithdrawal.StringFixed(2),
			rec.EndingPortfolioValue.StringFixed(2),
			rec.AvailableForWithdrawStart.StringFixed(2))
		ending := make(map[string]string, len(rec.BucketBalances))
		for _, b := range rec.BucketBalances {
			ending[b.Bucket] = b.Amount.StringFixed(2)
		}
		for _, name := range balances {
			v, ok := ending[name]
			if !ok {
				v = "0.00"
			}
			row = append(row, v)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func balanceColumns(result *domain.SimulationResult) []string {
	if len(result.Records) == 0 {
		return nil
	}
	names := make([]string, 0, len(result.Records[0].BucketBalances))
	for _, b := range result.Records[0].BucketBalances {
		names = append(names, b.Bucket)
	}
	return names
}
