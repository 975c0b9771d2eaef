package main

import (
	"fmt"

	"github.com/rgehrsitz/firesim/internal/breakeven"
	"github.com/rgehrsitz/firesim/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var topUpCmd = &cobra.Command{
	Use:   "topup [input-file]",
	Short: "Find the smallest lump sum that funds the plan",
	Long: `Search for the smallest amount that, added to one bucket at the start, funds
every year in full without the portfolio dropping below the buffer.

Examples:
  # Top up the first bucket of the withdrawal order
  firesim topup plan.yaml

  # Top up a foreign bucket (amount in that bucket's currency)
  firesim topup plan.yaml --bucket equity_foreign

  # Solve every bucket and pick the cheapest
  firesim topup plan.yaml --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTopUp,
}

func init() {
	topUpCmd.Flags().String("bucket", "", "Bucket that receives the top-up (default: first in the withdrawal order)")
	topUpCmd.Flags().Bool("all", false, "Solve for every bucket and compare")
	topUpCmd.Flags().Float64("tolerance", 0, "Stop when the search bracket is narrower than this (default 1000)")
	topUpCmd.Flags().Int("max-iterations", 0, "Cap on solver iterations (default 80)")
	topUpCmd.Flags().Float64("upper", 0, "Largest top-up to consider (default 1e12)")
	topUpCmd.Flags().StringP("format", "f", "table", "Output format (table, json)")
	topUpCmd.Flags().Bool("debug", false, "Log every simulated year")

	rootCmd.AddCommand(topUpCmd)
}

func runTopUp(cmd *cobra.Command, args []string) error {
	params, err := loadParams(args)
	if err != nil {
		return err
	}

	bucket, _ := cmd.Flags().GetString("bucket")
	all, _ := cmd.Flags().GetBool("all")
	tolerance, _ := cmd.Flags().GetFloat64("tolerance")
	maxIter, _ := cmd.Flags().GetInt("max-iterations")
	upper, _ := cmd.Flags().GetFloat64("upper")
	format := stringFlag(cmd, "format", settings.Format)

	req := breakeven.TopUpRequest{
		Bucket:        bucket,
		Tolerance:     decimal.NewFromFloat(tolerance),
		MaxIterations: maxIter,
		UpperBound:    decimal.NewFromFloat(upper),
	}
	if err := req.Validate(); err != nil {
		return err
	}

	solver := breakeven.NewDefaultSolver(newEngine(cmd, false))
	solver.Options.Workers = settings.Workers

	var (
		table breakeven.TableFormatter
		js    breakeven.JSONFormatter
	)
	asJSON := output.NormalizeFormatName(format) == "json"

	if all {
		comparison, err := solver.CompareBuckets(cmd.Context(), params, nil, req)
		if err != nil {
			return err
		}
		if asJSON {
			out, err := js.FormatComparison(comparison)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), table.FormatComparison(comparison))
		return nil
	}

	result, err := solver.SolveTopUp(cmd.Context(), params, req)
	if err != nil {
		return err
	}
	if asJSON {
		out, err := js.Format(result)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), table.Format(result))
	return nil
}
