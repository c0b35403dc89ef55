package affordability

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glovebenefits/ichracalc/internal/domain"
	"github.com/glovebenefits/ichracalc/internal/store/memstore"
)

var (
	effectiveDate = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	texasArea     = domain.RatingArea{StateCode: "TX", Number: 5}
	threshold2026 = decimal.RequireFromString("0.0996")
)

func addPlanWithRate(st *memstore.Store, planID, metal string, premium string) {
	st.AddPlan(domain.Plan{
		HIOSPlanID:     planID,
		MetalLevel:     metal,
		MarketCoverage: "Individual",
		PlanType:       "HMO",
	})
	st.AddRate(domain.PlanRate{
		PlanID:            planID,
		RatingArea:        texasArea.Number,
		AgeBand:           "40",
		RateEffectiveDate: effectiveDate,
		MonthlyPremium:    decimal.RequireFromString(premium),
	})
}

func newLCSPFixture() *memstore.Store {
	st := memstore.New()
	// A Bronze plan cheaper than every Silver: must never win LCSP.
	addPlanWithRate(st, "10000TX0010001", domain.MetalBronze, "180.00")
	addPlanWithRate(st, "20000TX0010001", domain.MetalSilver, "310.00")
	addPlanWithRate(st, "30000TX0010001", domain.MetalSilver, "250.00")
	addPlanWithRate(st, "40000TX0010001", domain.MetalGold, "420.00")
	return st
}

func TestLowestCostSilver(t *testing.T) {
	eng := NewEngine(newLCSPFixture(), threshold2026)

	result, err := eng.LowestCostSilver(context.Background(), texasArea, "40", effectiveDate)
	require.NoError(t, err)

	assert.Equal(t, "30000TX0010001", result.PlanID)
	assert.Equal(t, domain.MetalSilver, result.MetalLevel)
	assert.Equal(t, "40", result.AgeBand)
	assert.True(t, result.Premium.Equal(decimal.RequireFromString("250.00")))
}

func TestLowestCostSilverTieBreak(t *testing.T) {
	st := newLCSPFixture()
	// Same premium as the current cheapest Silver but a lower plan ID.
	addPlanWithRate(st, "25000TX0010001", domain.MetalSilver, "250.00")
	eng := NewEngine(st, threshold2026)

	result, err := eng.LowestCostSilver(context.Background(), texasArea, "40", effectiveDate)
	require.NoError(t, err)
	assert.Equal(t, "25000TX0010001", result.PlanID)
}

func TestLowestCostPlanOtherMetals(t *testing.T) {
	eng := NewEngine(newLCSPFixture(), threshold2026)

	bronze, err := eng.LowestCostPlan(context.Background(), texasArea, domain.MetalBronze, "40", effectiveDate)
	require.NoError(t, err)
	assert.Equal(t, "10000TX0010001", bronze.PlanID)

	gold, err := eng.LowestCostPlan(context.Background(), texasArea, domain.MetalGold, "40", effectiveDate)
	require.NoError(t, err)
	assert.True(t, gold.Premium.Equal(decimal.RequireFromString("420.00")))
}

func TestLowestCostSilverEmptyArea(t *testing.T) {
	eng := NewEngine(newLCSPFixture(), threshold2026)

	_, err := eng.LowestCostSilver(context.Background(),
		domain.RatingArea{StateCode: "OK", Number: 1}, "40", effectiveDate)
	assert.True(t, domain.IsNotFound(err))
}

func TestIsAffordable(t *testing.T) {
	income := decimal.NewFromInt(3000)

	// 250 / 3000 = 8.33%, under the 9.96% threshold.
	assert.True(t, IsAffordable(decimal.NewFromInt(250), income, threshold2026))

	// 400 / 3000 = 13.3%, over the threshold.
	assert.False(t, IsAffordable(decimal.NewFromInt(400), income, threshold2026))

	// Exactly at the threshold is affordable.
	atThreshold := income.Mul(threshold2026)
	assert.True(t, IsAffordable(atThreshold, income, threshold2026))

	assert.False(t, IsAffordable(decimal.NewFromInt(100), decimal.Zero, threshold2026))
	assert.False(t, IsAffordable(decimal.NewFromInt(100), decimal.NewFromInt(-10), threshold2026))
}

func TestEvaluateWithIncome(t *testing.T) {
	eng := NewEngine(memstore.New(), threshold2026)
	lcsp := LowestCostResult{PlanID: "30000TX0010001", Premium: decimal.NewFromInt(400)}
	income := decimal.NewFromInt(3000)

	check := eng.Evaluate(lcsp, decimal.NewFromInt(400), income)

	// Max employee contribution: 3000 * 0.0996 = 298.80.
	assert.True(t, check.MaxEmployeeContribution.Equal(decimal.RequireFromString("298.8")),
		"got %s", check.MaxEmployeeContribution)
	// Min employer contribution: 400 - 298.80 = 101.20.
	assert.True(t, check.MinEmployerContribution.Equal(decimal.RequireFromString("101.2")),
		"got %s", check.MinEmployerContribution)
	require.NotNil(t, check.Affordable)
	assert.False(t, *check.Affordable)
}

func TestEvaluateAffordablePremiumFloorsAtZero(t *testing.T) {
	eng := NewEngine(memstore.New(), threshold2026)
	lcsp := LowestCostResult{PlanID: "30000TX0010001", Premium: decimal.NewFromInt(250)}

	check := eng.Evaluate(lcsp, decimal.NewFromInt(250), decimal.NewFromInt(3000))

	assert.True(t, check.MinEmployerContribution.IsZero(), "got %s", check.MinEmployerContribution)
	require.NotNil(t, check.Affordable)
	assert.True(t, *check.Affordable)
}

func TestEvaluateWithoutIncome(t *testing.T) {
	eng := NewEngine(memstore.New(), threshold2026)
	lcsp := LowestCostResult{PlanID: "30000TX0010001", Premium: decimal.NewFromInt(250)}

	check := eng.Evaluate(lcsp, decimal.NewFromInt(250), decimal.Zero)

	assert.Nil(t, check.Affordable)
	// Without income the employer floor is the full premium.
	assert.True(t, check.MinEmployerContribution.Equal(decimal.NewFromInt(250)))
}
