package breakeven

import (
	"context"
	"errors"
	"fmt"

	"github.com/rgehrsitz/firesim/internal/domain"
	"golang.org/x/sync/errgroup"
)

// CompareBuckets solves the top-up for each candidate bucket concurrently and
// picks the cheapest in domestic terms. An empty candidate list means every
// bucket. Buckets whose solve fails are left out of the comparison.
func (s *Solver) CompareBuckets(
	ctx context.Context,
	params *domain.ParameterSet,
	candidates []string,
	req TopUpRequest,
) (*BucketComparison, error) {
	if len(candidates) == 0 {
		for _, b := range params.Buckets {
			candidates = append(candidates, b.Name)
		}
	}

	solved := make([]*TopUpResult, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	if s.Options.Workers > 0 {
		g.SetLimit(s.Options.Workers)
	}
	for i, name := range candidates {
		g.Go(func() error {
			r := req
			r.Bucket = name
			res, err := s.SolveTopUp(gctx, params, r)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				return nil
			}
			solved[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	comparison := &BucketComparison{}
	for _, r := range solved {
		if r != nil && r.Success {
			comparison.Results = append(comparison.Results, *r)
		}
	}
	if len(comparison.Results) == 0 {
		return nil, &SolverError{
			Operation: "compare_buckets",
			Message:   "no bucket top-up funds the plan",
		}
	}

	for i := range comparison.Results {
		if comparison.Cheapest == nil ||
			comparison.Results[i].TopUpDomestic.LessThan(comparison.Cheapest.TopUpDomestic) {
			comparison.Cheapest = &comparison.Results[i]
		}
	}
	comparison.Recommendations = s.generateComparisonRecommendations(comparison)
	return comparison, nil
}

func (s *Solver) generateComparisonRecommendations(c *BucketComparison) []string {
	var recommendations []string
	best := c.Cheapest
	if best == nil {
		return recommendations
	}
	if best.AlreadyFunded {
		return append(recommendations, "The plan is already funded; no top-up is needed")
	}

	rec := fmt.Sprintf("Cheapest top-up: %s into %s", best.TopUp.StringFixed(0), best.Bucket)
	if best.Currency == domain.Foreign {
		rec += fmt.Sprintf(" (about %s %s today)", best.TopUpDomestic.StringFixed(0), best.DomesticSymbol)
	}
	recommendations = append(recommendations, rec)

	for _, r := range c.Results {
		if r.Bucket == best.Bucket || !best.TopUpDomestic.IsPositive() {
			continue
		}
		extra := r.TopUpDomestic.Sub(best.TopUpDomestic)
		pct := extra.Div(best.TopUpDomestic).Shift(2)
		recommendations = append(recommendations,
			fmt.Sprintf("%s needs %s%% more than %s", r.Bucket, pct.StringFixed(0), best.Bucket))
	}
	return recommendations
}
