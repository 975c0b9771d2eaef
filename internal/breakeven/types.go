package breakeven

import (
	"fmt"

	"github.com/rgehrsitz/firesim/internal/domain"
	"github.com/shopspring/decimal"
)

// TopUpRequest describes the lump sum to solve for.
type TopUpRequest struct {
	// Bucket receives the extra amount at the start of the projection, in its own
	// currency. Empty means the first bucket of the withdrawal order.
	Bucket string `json:"bucket"`

	// UpperBound caps the search. Zero uses SolverOptions.MaxTopUp.
	UpperBound    decimal.Decimal `json:"upperBound,omitempty"`
	Tolerance     decimal.Decimal `json:"tolerance,omitempty"`
	MaxIterations int             `json:"maxIterations,omitempty"`
}

// Validate checks the request for values the solver cannot search with.
func (r *TopUpRequest) Validate() error {
	if r.UpperBound.IsNegative() {
		return &SolverError{
			Operation: "validate_request",
			Message:   "upper bound cannot be negative",
		}
	}
	if r.Tolerance.IsNegative() {
		return &SolverError{
			Operation: "validate_request",
			Message:   "tolerance cannot be negative",
		}
	}
	if r.MaxIterations < 0 {
		return &SolverError{
			Operation: "validate_request",
			Message:   "max iterations cannot be negative",
		}
	}
	return nil
}

// TopUpResult is the smallest lump sum found that funds every year in full while
// the ending portfolio stays at or above the buffer.
type TopUpResult struct {
	Request         TopUpRequest `json:"request"`
	Success         bool         `json:"success"`
	AlreadyFunded   bool         `json:"alreadyFunded"`
	Iterations      int          `json:"iterations"`
	ConvergenceInfo string       `json:"convergenceInfo"`

	Bucket         string          `json:"bucket"`
	Currency       domain.Currency `json:"currency"`
	TopUp          decimal.Decimal `json:"topUp"`
	TopUpDomestic  decimal.Decimal `json:"topUpDomestic"` // at the start-year exchange rate
	DomesticSymbol string          `json:"domesticCurrency"`
	ForeignSymbol  string          `json:"foreignCurrency"`

	Baseline domain.SensitivityMetrics `json:"baseline"`
	Solved   domain.SensitivityMetrics `json:"solved"`
}

// BucketComparison holds one top-up solve per candidate bucket.
type BucketComparison struct {
	Results         []TopUpResult `json:"results"`
	Cheapest        *TopUpResult  `json:"cheapest,omitempty"`
	Recommendations []string      `json:"recommendations"`
}

// SolverOptions configures the search.
type SolverOptions struct {
	Tolerance     decimal.Decimal // stop once the bracket is narrower than this
	MaxIterations int             // bracket expansions plus bisection steps
	InitialUpper  decimal.Decimal // first upper bound tried; zero uses the baseline shortfall plus unfunded
	MaxTopUp      decimal.Decimal // give up beyond this
	Workers       int             // concurrent solves in CompareBuckets; zero means unlimited
}

// DefaultSolverOptions returns default solver configuration
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Tolerance:     decimal.NewFromInt(1000),
		MaxIterations: 80,
		InitialUpper:  decimal.Zero,
		MaxTopUp:      decimal.NewFromInt(1_000_000_000_000),
	}
}

// SolverError represents errors from the top-up solver
type SolverError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *SolverError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Operation, e.Message, e.Cause)
	}
	return e.Operation + ": " + e.Message
}

func (e *SolverError) Unwrap() error {
	return e.Cause
}
