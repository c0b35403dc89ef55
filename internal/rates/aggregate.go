package rates

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/glovebenefits/ichracalc/internal/domain"
)

// Households may list any number of dependents, but the ACA child-rate
// cap counts at most three toward the family premium.
const dependentCap = 3

// MemberPremium is one member's contribution to a household quote.
type MemberPremium struct {
	Role    domain.MemberRole `json:"role"`
	Index   int               `json:"index"`
	Age     int               `json:"age"`
	AgeBand string            `json:"age_band"`
	Premium decimal.Decimal   `json:"premium"`
}

// Quote is the aggregated household premium for one plan.
type Quote struct {
	PlanID             string            `json:"plan_id"`
	RatingArea         domain.RatingArea `json:"rating_area"`
	FamilyTier         bool              `json:"family_tier"`
	Members            []MemberPremium   `json:"members"`
	ExcludedDependents int               `json:"excluded_dependents"`
	TotalMonthly       decimal.Decimal   `json:"total_monthly"`
}

// Aggregator combines per-member rates into household premiums.
type Aggregator struct {
	lookup *Lookup
}

// NewAggregator builds an aggregator over the given lookup.
func NewAggregator(lookup *Lookup) *Aggregator {
	return &Aggregator{lookup: lookup}
}

// Aggregate prices a household on one plan.
//
// Family-tier states return the single flat rate regardless of
// composition. Age-banded states sum the employee and spouse at their
// individual ages plus the three highest-premium dependents; pricing
// every dependent first and capping afterwards is required because the
// cap keeps the most expensive three, not the first or youngest three.
//
// When any counted member's rate is missing the aggregate fails with a
// PartialFailureError naming the members, so the caller can choose
// between dropping the plan and surfacing a data-completeness warning.
func (a *Aggregator) Aggregate(ctx context.Context, h domain.Household, planID string, area domain.RatingArea, effectiveDate time.Time) (Quote, error) {
	quote := Quote{PlanID: planID, RatingArea: area}

	if a.lookup.IsFamilyTier(area.StateCode) {
		return a.aggregateFamilyTier(ctx, quote, effectiveDate)
	}
	return a.aggregateAgeBanded(ctx, h, quote, effectiveDate)
}

func (a *Aggregator) aggregateFamilyTier(ctx context.Context, quote Quote, effectiveDate time.Time) (Quote, error) {
	premium, err := a.lookup.TierRate(ctx, quote.PlanID, quote.RatingArea, effectiveDate)
	if err != nil {
		if domain.IsNotFound(err) {
			return Quote{}, &domain.PartialFailureError{
				PlanID:  quote.PlanID,
				Missing: []domain.MemberRef{{Role: domain.RoleEmployee, Index: 0, AgeBand: AgeBandFamilyTier}},
			}
		}
		return Quote{}, err
	}
	quote.FamilyTier = true
	quote.TotalMonthly = premium
	return quote, nil
}

func (a *Aggregator) aggregateAgeBanded(ctx context.Context, h domain.Household, quote Quote, effectiveDate time.Time) (Quote, error) {
	var missing []domain.MemberRef
	var adults []MemberPremium
	var dependents []MemberPremium

	for i, m := range h.CountedMembers() {
		age := m.Age(effectiveDate)
		band := AgeBand(age)

		premium, err := a.lookup.MemberRate(ctx, quote.PlanID, quote.RatingArea, age, effectiveDate)
		if err != nil {
			if domain.IsNotFound(err) {
				missing = append(missing, domain.MemberRef{Role: m.Role, Index: i, AgeBand: band})
				continue
			}
			return Quote{}, err
		}

		mp := MemberPremium{Role: m.Role, Index: i, Age: age, AgeBand: band, Premium: premium}
		if m.Role == domain.RoleDependent {
			dependents = append(dependents, mp)
		} else {
			adults = append(adults, mp)
		}
	}

	if len(missing) > 0 {
		return Quote{}, &domain.PartialFailureError{PlanID: quote.PlanID, Missing: missing}
	}

	dependents, excluded := capDependents(dependents)
	quote.ExcludedDependents = excluded
	quote.Members = append(adults, dependents...)

	total := decimal.Zero
	for _, mp := range quote.Members {
		total = total.Add(mp.Premium)
	}
	quote.TotalMonthly = total
	return quote, nil
}

// capDependents keeps the highest-premium dependents up to the cap,
// returning the kept members in original census order plus the excluded
// count.
func capDependents(deps []MemberPremium) ([]MemberPremium, int) {
	if len(deps) <= dependentCap {
		return deps, 0
	}

	byPremium := make([]MemberPremium, len(deps))
	copy(byPremium, deps)
	sort.SliceStable(byPremium, func(i, j int) bool {
		return byPremium[i].Premium.GreaterThan(byPremium[j].Premium)
	})

	keep := make(map[int]bool, dependentCap)
	for _, mp := range byPremium[:dependentCap] {
		keep[mp.Index] = true
	}

	var kept []MemberPremium
	for _, mp := range deps {
		if keep[mp.Index] {
			kept = append(kept, mp)
		}
	}
	return kept, len(deps) - dependentCap
}
