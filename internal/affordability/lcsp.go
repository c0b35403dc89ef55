// Package affordability implements the IRS safe-harbor check for ICHRA
// offers: locating the Lowest Cost Silver Plan in an employee's rating
// area and testing the employee's share against the plan-year
// affordability threshold.
package affordability

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/glovebenefits/ichracalc/internal/domain"
	"github.com/glovebenefits/ichracalc/internal/store"
)

// LowestCostResult identifies the cheapest plan of a metal level for an
// employee's rating area and age band, priced employee-only.
type LowestCostResult struct {
	PlanID     string            `json:"plan_id"`
	MetalLevel string            `json:"metal_level"`
	RatingArea domain.RatingArea `json:"rating_area"`
	AgeBand    string            `json:"age_band"`
	Premium    decimal.Decimal   `json:"premium"`
}

// Engine selects lowest-cost plans and runs affordability checks.
type Engine struct {
	rates     store.RateStore
	threshold decimal.Decimal
}

// NewEngine builds an engine with the plan-year safe-harbor threshold
// (a fraction, e.g. 0.0996 for 2026).
func NewEngine(rates store.RateStore, threshold decimal.Decimal) *Engine {
	return &Engine{rates: rates, threshold: threshold}
}

// Threshold returns the configured safe-harbor fraction.
func (e *Engine) Threshold() decimal.Decimal { return e.threshold }

// LowestCostSilver returns the LCSP for a rating area and employee age
// band: the Silver plan with the lowest employee-only premium. The IRS
// benchmark is always the self-only rate, never a household aggregate.
//
// When several Silver plans share the identical lowest premium the
// source data defines no tie-break; we pick the lexicographically
// lowest plan ID so the reported LCSP identity is deterministic.
func (e *Engine) LowestCostSilver(ctx context.Context, area domain.RatingArea, ageBand string, effectiveDate time.Time) (LowestCostResult, error) {
	return e.LowestCostPlan(ctx, area, domain.MetalSilver, ageBand, effectiveDate)
}

// LowestCostPlan generalizes LCSP selection across metal levels; Bronze
// and Gold floors feed contribution modeling while Silver remains the
// affordability benchmark.
func (e *Engine) LowestCostPlan(ctx context.Context, area domain.RatingArea, metalLevel, ageBand string, effectiveDate time.Time) (LowestCostResult, error) {
	candidates, err := e.rates.RatesByMetal(ctx, area.StateCode, area.Number, metalLevel, ageBand, effectiveDate)
	if err != nil {
		return LowestCostResult{}, err
	}
	if len(candidates) == 0 {
		return LowestCostResult{}, domain.NewNotFound("plan",
			fmt.Sprintf("%s in %s rating area %d", metalLevel, area.StateCode, area.Number))
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.MonthlyPremium.LessThan(best.MonthlyPremium) ||
			(c.MonthlyPremium.Equal(best.MonthlyPremium) && c.PlanID < best.PlanID) {
			best = c
		}
	}

	return LowestCostResult{
		PlanID:     best.PlanID,
		MetalLevel: metalLevel,
		RatingArea: area,
		AgeBand:    ageBand,
		Premium:    best.MonthlyPremium,
	}, nil
}
