package rates

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

const (
	texasPlan   = "11111TX0010001"
	newYorkPlan = "22222NY0020002"
)

var (
	effectiveDate = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	texasArea     = domain.RatingArea{StateCode: "TX", Number: 5}
	newYorkArea   = domain.RatingArea{StateCode: "NY", Number: 4}
)

func birthYear(age int) time.Time {
	return time.Date(2026-age, 1, 1, 0, 0, 0, 0, time.UTC)
}

func addTexasRate(st *memstore.Store, band string, premium int64) {
	st.AddRate(domain.PlanRate{
		PlanID:            texasPlan,
		RatingArea:        texasArea.Number,
		AgeBand:           band,
		RateEffectiveDate: effectiveDate,
		MonthlyPremium:    decimal.NewFromInt(premium),
	})
}

func newFixtureStore(t *testing.T) *memstore.Store {
	t.Helper()
	st := memstore.New()
	addTexasRate(st, "40", 500)
	addTexasRate(st, "38", 450)
	addTexasRate(st, AgeBandChild, 200)
	addTexasRate(st, "16", 250)
	addTexasRate(st, "18", 280)
	addTexasRate(st, "20", 300)
	st.AddRate(domain.PlanRate{
		PlanID:            newYorkPlan,
		RatingArea:        newYorkArea.Number,
		AgeBand:           AgeBandFamilyTier,
		RateEffectiveDate: effectiveDate,
		MonthlyPremium:    decimal.NewFromInt(1500),
	})
	return st
}

func newAggregator(st *memstore.Store) *Aggregator {
	return NewAggregator(NewLookup(st, []string{"NY", "VT"}))
}

func TestAggregateAgeBanded(t *testing.T) {
	agg := newAggregator(newFixtureStore(t))

	h := domain.Household{
		EmployeeID:   "E1",
		FamilyStatus: domain.FamilyStatusEmployeeSpouse,
		Members: []domain.HouseholdMember{
			{Role: domain.RoleEmployee, BirthDate: birthYear(40)},
			{Role: domain.RoleSpouse, BirthDate: birthYear(38)},
		},
	}

	quote, err := agg.Aggregate(context.Background(), h, texasPlan, texasArea, effectiveDate)
	require.NoError(t, err)

	assert.False(t, quote.FamilyTier)
	assert.Equal(t, 0, quote.ExcludedDependents)
	require.Len(t, quote.Members, 2)
	assert.True(t, quote.TotalMonthly.Equal(decimal.NewFromInt(950)),
		"got %s", quote.TotalMonthly)
}

func TestAggregateCapsHighestPremiumDependents(t *testing.T) {
	agg := newAggregator(newFixtureStore(t))

	// Four dependents: the cheapest (the 10-year-old at 200) must be
	// the one excluded, regardless of census order or age.
	h := domain.Household{
		EmployeeID:   "E2",
		FamilyStatus: domain.FamilyStatusFamily,
		Members: []domain.HouseholdMember{
			{Role: domain.RoleEmployee, BirthDate: birthYear(40)},
			{Role: domain.RoleSpouse, BirthDate: birthYear(38)},
			{Role: domain.RoleDependent, BirthDate: birthYear(10)},
			{Role: domain.RoleDependent, BirthDate: birthYear(16)},
			{Role: domain.RoleDependent, BirthDate: birthYear(18)},
			{Role: domain.RoleDependent, BirthDate: birthYear(20)},
		},
	}

	quote, err := agg.Aggregate(context.Background(), h, texasPlan, texasArea, effectiveDate)
	require.NoError(t, err)

	assert.Equal(t, 1, quote.ExcludedDependents)
	require.Len(t, quote.Members, 5)
	// 500 + 450 + 300 + 280 + 250
	assert.True(t, quote.TotalMonthly.Equal(decimal.NewFromInt(1780)),
		"got %s", quote.TotalMonthly)

	// Kept dependents stay in census order.
	var depBands []string
	for _, m := range quote.Members {
		if m.Role == domain.RoleDependent {
			depBands = append(depBands, m.AgeBand)
		}
	}
	assert.Equal(t, []string{"16", "18", "20"}, depBands)
}

func TestAggregateThreeOrFewerDependentsUncapped(t *testing.T) {
	agg := newAggregator(newFixtureStore(t))

	h := domain.Household{
		EmployeeID:   "E3",
		FamilyStatus: domain.FamilyStatusEmployeeChildren,
		Members: []domain.HouseholdMember{
			{Role: domain.RoleEmployee, BirthDate: birthYear(40)},
			{Role: domain.RoleDependent, BirthDate: birthYear(10)},
			{Role: domain.RoleDependent, BirthDate: birthYear(16)},
			{Role: domain.RoleDependent, BirthDate: birthYear(18)},
		},
	}

	quote, err := agg.Aggregate(context.Background(), h, texasPlan, texasArea, effectiveDate)
	require.NoError(t, err)
	assert.Equal(t, 0, quote.ExcludedDependents)
	assert.True(t, quote.TotalMonthly.Equal(decimal.NewFromInt(1230)),
		"got %s", quote.TotalMonthly)
}

func TestAggregateFamilyTierIgnoresComposition(t *testing.T) {
	agg := newAggregator(newFixtureStore(t))

	small := domain.Household{
		EmployeeID:   "E4",
		FamilyStatus: domain.FamilyStatusEmployeeOnly,
		Members: []domain.HouseholdMember{
			{Role: domain.RoleEmployee, BirthDate: birthYear(40)},
		},
	}
	large := domain.Household{
		EmployeeID:   "E5",
		FamilyStatus: domain.FamilyStatusFamily,
		Members: []domain.HouseholdMember{
			{Role: domain.RoleEmployee, BirthDate: birthYear(40)},
			{Role: domain.RoleSpouse, BirthDate: birthYear(38)},
			{Role: domain.RoleDependent, BirthDate: birthYear(10)},
			{Role: domain.RoleDependent, BirthDate: birthYear(16)},
			{Role: domain.RoleDependent, BirthDate: birthYear(18)},
			{Role: domain.RoleDependent, BirthDate: birthYear(20)},
		},
	}

	quoteSmall, err := agg.Aggregate(context.Background(), small, newYorkPlan, newYorkArea, effectiveDate)
	require.NoError(t, err)
	quoteLarge, err := agg.Aggregate(context.Background(), large, newYorkPlan, newYorkArea, effectiveDate)
	require.NoError(t, err)

	assert.True(t, quoteSmall.FamilyTier)
	assert.True(t, quoteLarge.FamilyTier)
	assert.True(t, quoteSmall.TotalMonthly.Equal(quoteLarge.TotalMonthly))
	assert.True(t, quoteSmall.TotalMonthly.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, 0, quoteLarge.ExcludedDependents)
}

func TestAggregateMissingMemberRate(t *testing.T) {
	st := newFixtureStore(t)
	agg := newAggregator(st)

	// Age 55 has no rate row in the fixture.
	h := domain.Household{
		EmployeeID:   "E6",
		FamilyStatus: domain.FamilyStatusEmployeeSpouse,
		Members: []domain.HouseholdMember{
			{Role: domain.RoleEmployee, BirthDate: birthYear(40)},
			{Role: domain.RoleSpouse, BirthDate: birthYear(55)},
		},
	}

	_, err := agg.Aggregate(context.Background(), h, texasPlan, texasArea, effectiveDate)
	pf, ok := domain.IsPartialFailure(err)
	require.True(t, ok, "expected partial failure, got %v", err)
	require.Len(t, pf.Missing, 1)
	assert.Equal(t, domain.RoleSpouse, pf.Missing[0].Role)
	assert.Equal(t, 1, pf.Missing[0].Index)
	assert.Equal(t, "55", pf.Missing[0].AgeBand)
}

func TestAggregateDuplicateRates(t *testing.T) {
	st := newFixtureStore(t)
	// Exact duplicate row: benign, the premium is unambiguous.
	addTexasRate(st, "38", 450)
	agg := newAggregator(st)

	h := domain.Household{
		EmployeeID:   "E7",
		FamilyStatus: domain.FamilyStatusEmployeeSpouse,
		Members: []domain.HouseholdMember{
			{Role: domain.RoleEmployee, BirthDate: birthYear(40)},
			{Role: domain.RoleSpouse, BirthDate: birthYear(38)},
		},
	}
	_, err := agg.Aggregate(context.Background(), h, texasPlan, texasArea, effectiveDate)
	require.NoError(t, err)

	// Conflicting premium for the same key: must fail loudly.
	addTexasRate(st, "40", 510)
	_, err = agg.Aggregate(context.Background(), h, texasPlan, texasArea, effectiveDate)
	var integrity *domain.DataIntegrityError
	require.ErrorAs(t, err, &integrity)
}

func TestAggregateConflictBehindIdenticalDuplicates(t *testing.T) {
	st := newFixtureStore(t)
	// Two identical rows followed by a conflicting third: the duplicate
	// pair must not mask the divergent premium.
	addTexasRate(st, "38", 450)
	addTexasRate(st, "38", 510)
	agg := newAggregator(st)

	h := domain.Household{
		EmployeeID:   "E8",
		FamilyStatus: domain.FamilyStatusEmployeeSpouse,
		Members: []domain.HouseholdMember{
			{Role: domain.RoleEmployee, BirthDate: birthYear(40)},
			{Role: domain.RoleSpouse, BirthDate: birthYear(38)},
		},
	}

	_, err := agg.Aggregate(context.Background(), h, texasPlan, texasArea, effectiveDate)
	var integrity *domain.DataIntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.Equal(t, "plan_base_rates", integrity.Table)
}

func TestLookupBandFor(t *testing.T) {
	lookup := NewLookup(memstore.New(), []string{"NY", "VT"})

	assert.Equal(t, AgeBandFamilyTier, lookup.BandFor("NY", 40))
	assert.Equal(t, AgeBandFamilyTier, lookup.BandFor("VT", 7))
	assert.Equal(t, "40", lookup.BandFor("TX", 40))
	assert.Equal(t, AgeBandChild, lookup.BandFor("TX", 7))
	assert.True(t, lookup.IsFamilyTier("NY"))
	assert.False(t, lookup.IsFamilyTier("TX"))
}
