package engine

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glovebenefits/ichracalc/internal/affordability"
	"github.com/glovebenefits/ichracalc/internal/domain"
	"github.com/glovebenefits/ichracalc/internal/geo"
	"github.com/glovebenefits/ichracalc/internal/logging"
	"github.com/glovebenefits/ichracalc/internal/rates"
	"github.com/glovebenefits/ichracalc/internal/store/memstore"
)

const (
	candidatePlan = "11111TX0010001"
	silverPlan    = "30000TX0010001"
)

var (
	effectiveDate = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	threshold2026 = decimal.RequireFromString("0.0996")
)

func birthYear(age int) time.Time {
	return time.Date(2026-age, 1, 1, 0, 0, 0, 0, time.UTC)
}

func addRate(st *memstore.Store, planID, band string, premium string) {
	st.AddRate(domain.PlanRate{
		PlanID:            planID,
		RatingArea:        8,
		AgeBand:           band,
		RateEffectiveDate: effectiveDate,
		MonthlyPremium:    decimal.RequireFromString(premium),
	})
}

func newTestEngine(t *testing.T) (*Engine, *memstore.Store) {
	t.Helper()
	st := memstore.New()

	st.Assignments = []domain.RatingAreaAssignment{
		{ZIPCode: "75001", CountyFIPS: "48113", CountyName: "Dallas", StateCode: "TX", RatingArea: 8, PopulationShare: 1.0},
	}

	st.AddPlan(domain.Plan{
		HIOSPlanID:     candidatePlan,
		MetalLevel:     domain.MetalGold,
		MarketCoverage: "Individual",
		PlanType:       "PPO",
	})
	st.AddPlan(domain.Plan{
		HIOSPlanID:     silverPlan,
		MetalLevel:     domain.MetalSilver,
		MarketCoverage: "Individual",
		PlanType:       "HMO",
	})

	addRate(st, candidatePlan, "40", "500.00")
	addRate(st, candidatePlan, "38", "450.00")
	addRate(st, silverPlan, "40", "250.00")

	st.CostShares[candidatePlan] = domain.PlanCostSharing{
		HIOSPlanID:           candidatePlan,
		PlanType:             "PPO",
		IndividualDeductible: decimal.NewFromInt(1000),
		IndividualMOOP:       decimal.NewFromInt(5000),
		Coinsurance:          decimal.NewFromInt(20),
	}

	log := logging.NewNop()
	resolver := geo.NewResolver(st, nil, log)
	lookup := rates.NewLookup(st, []string{"NY", "VT"})
	afford := affordability.NewEngine(st, threshold2026)
	return New(st, resolver, lookup, afford, 4, log), st
}

func testHousehold(id string) domain.Household {
	return domain.Household{
		EmployeeID:    id,
		ZIPCode:       "75001",
		FamilyStatus:  domain.FamilyStatusEmployeeSpouse,
		MonthlyIncome: decimal.NewFromInt(3000),
		Members: []domain.HouseholdMember{
			{Role: domain.RoleEmployee, BirthDate: birthYear(40)},
			{Role: domain.RoleSpouse, BirthDate: birthYear(38)},
		},
	}
}

func TestProcessResolvesHousehold(t *testing.T) {
	eng, _ := newTestEngine(t)

	batch, err := eng.Process(context.Background(), Request{
		EffectiveDate:    effectiveDate,
		Households:       []domain.Household{testHousehold("E1")},
		CandidatePlanIDs: []string{candidatePlan},
	})
	require.NoError(t, err)
	require.Len(t, batch.Results, 1)
	assert.NotEqual(t, uuid.Nil, batch.RunID)

	r := batch.Results[0]
	assert.Empty(t, r.Gap)
	require.NotNil(t, r.RatingArea)
	assert.Equal(t, domain.RatingArea{StateCode: "TX", Number: 8}, *r.RatingArea)

	require.Len(t, r.Quotes, 1)
	assert.True(t, r.Quotes[0].TotalMonthly.Equal(decimal.NewFromInt(950)),
		"got %s", r.Quotes[0].TotalMonthly)

	require.NotNil(t, r.Affordability)
	assert.Equal(t, silverPlan, r.Affordability.LCSP.PlanID)
	require.NotNil(t, r.Affordability.Affordable)
	// 250 / 3000 = 8.33% is within the 9.96% threshold.
	assert.True(t, *r.Affordability.Affordable)
}

func TestProcessUnknownZIPIsPerRowGap(t *testing.T) {
	eng, _ := newTestEngine(t)

	bad := testHousehold("E-bad")
	bad.ZIPCode = "99999"

	batch, err := eng.Process(context.Background(), Request{
		EffectiveDate:    effectiveDate,
		Households:       []domain.Household{bad, testHousehold("E-good")},
		CandidatePlanIDs: []string{candidatePlan},
	})
	require.NoError(t, err)
	require.Len(t, batch.Results, 2)

	// Results keep census order even though rows run concurrently.
	assert.Equal(t, "E-bad", batch.Results[0].EmployeeID)
	assert.NotEmpty(t, batch.Results[0].Gap)
	assert.Nil(t, batch.Results[0].RatingArea)

	assert.Equal(t, "E-good", batch.Results[1].EmployeeID)
	assert.Empty(t, batch.Results[1].Gap)
	assert.Len(t, batch.Results[1].Quotes, 1)
}

func TestProcessPlanNotOfferedIsQuoteGap(t *testing.T) {
	eng, _ := newTestEngine(t)

	batch, err := eng.Process(context.Background(), Request{
		EffectiveDate:    effectiveDate,
		Households:       []domain.Household{testHousehold("E1")},
		CandidatePlanIDs: []string{candidatePlan, "77777TX0019999"},
	})
	require.NoError(t, err)

	r := batch.Results[0]
	assert.Len(t, r.Quotes, 1)
	require.Len(t, r.QuoteGaps, 1)
	assert.Contains(t, r.QuoteGaps[0], "77777TX0019999")
}

func TestProcessComparesCandidates(t *testing.T) {
	eng, _ := newTestEngine(t)

	baseline := &domain.BaselinePlan{
		Name:                 "Acme Group PPO",
		PlanType:             "PPO",
		IndividualDeductible: decimal.NewFromInt(1000),
		IndividualMOOP:       decimal.NewFromInt(5000),
		PCPCopay:             decimal.NewFromInt(25),
		SpecialistCopay:      decimal.NewFromInt(50),
		GenericRxCopay:       decimal.NewFromInt(10),
		Coinsurance:          decimal.NewFromInt(20),
	}

	batch, err := eng.Process(context.Background(), Request{
		EffectiveDate:    effectiveDate,
		Households:       []domain.Household{testHousehold("E1")},
		CandidatePlanIDs: []string{candidatePlan},
		Baseline:         baseline,
	})
	require.NoError(t, err)

	require.NotNil(t, batch.Comparisons)
	require.Len(t, batch.Comparisons.Results, 1)
	assert.Equal(t, candidatePlan, batch.Comparisons.Results[0].CandidatePlanID)
	assert.Equal(t, "Acme Group PPO", batch.Comparisons.BaselineName)
}

func TestProcessInputValidation(t *testing.T) {
	eng, _ := newTestEngine(t)

	_, err := eng.Process(context.Background(), Request{
		Households: []domain.Household{testHousehold("E1")},
	})
	assert.Error(t, err, "zero effective date must be rejected")

	_, err = eng.Process(context.Background(), Request{EffectiveDate: effectiveDate})
	assert.Error(t, err, "empty household list must be rejected")
}
