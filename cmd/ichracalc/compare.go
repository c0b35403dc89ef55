package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/glovebenefits/ichracalc/internal/compare"
	"github.com/glovebenefits/ichracalc/internal/domain"
)

// compareCandidates loads cost sharing for each candidate plan and
// scores it against the baseline. Plans missing from the reference
// tables are skipped with a notice rather than failing the comparison.
func compareCandidates(ctx context.Context, a *app, baseline domain.BaselinePlan, planIDs []string) (compare.ComparisonSet, error) {
	var candidates []domain.PlanCostSharing
	for _, id := range planIDs {
		cs, err := a.store.CostSharing(ctx, id)
		if err != nil {
			if domain.IsNotFound(err) {
				fmt.Printf("note: plan %s has no cost-sharing data, skipping\n", id)
				continue
			}
			return compare.ComparisonSet{}, err
		}
		candidates = append(candidates, cs)
	}
	return compare.ScoreAll(baseline, candidates), nil
}

func printComparison(set compare.ComparisonSet, detail bool) {
	tf := compare.TableFormatter{}
	fmt.Print(tf.Format(&set))
	if detail {
		for i := range set.Results {
			fmt.Println()
			fmt.Print(tf.FormatDetail(&set.Results[i]))
		}
	}
}

func parseMoney(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
