// Package rates implements base-rate lookup and household premium
// aggregation against the CMS-published rate tables.
package rates

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/glovebenefits/ichracalc/internal/domain"
	"github.com/glovebenefits/ichracalc/internal/store"
)

// Lookup resolves premiums for individual members, branching on the
// state's rating style: most states rate each member by age band, while
// family-tier states (NY, VT in current vintages) publish one flat
// household rate.
type Lookup struct {
	rates            store.RateStore
	familyTierStates map[string]bool
}

// NewLookup builds a rate lookup over the given store.
func NewLookup(rates store.RateStore, familyTierStates []string) *Lookup {
	set := make(map[string]bool, len(familyTierStates))
	for _, s := range familyTierStates {
		set[s] = true
	}
	return &Lookup{rates: rates, familyTierStates: set}
}

// IsFamilyTier reports whether the state publishes family-tier rates.
func (l *Lookup) IsFamilyTier(stateCode string) bool {
	return l.familyTierStates[stateCode]
}

// BandFor returns the age band used to query rates for a member in the
// given state: the family-tier literal where that applies, otherwise
// the clamped age band.
func (l *Lookup) BandFor(stateCode string, age int) string {
	if l.familyTierStates[stateCode] {
		return AgeBandFamilyTier
	}
	return AgeBand(age)
}

// MemberRate fetches the premium for one member age at a plan/rating
// area/date. A missing row is a domain.NotFoundError: the plan is not
// offered there, which is a business outcome rather than a fault.
func (l *Lookup) MemberRate(ctx context.Context, planID string, area domain.RatingArea, age int, effectiveDate time.Time) (decimal.Decimal, error) {
	band := l.BandFor(area.StateCode, age)
	rate, err := l.rates.Rate(ctx, planID, area.StateCode, area.Number, band, effectiveDate)
	if err != nil {
		return decimal.Zero, err
	}
	return rate.MonthlyPremium, nil
}

// TierRate fetches the flat family-tier premium for a plan in a
// family-tier state.
func (l *Lookup) TierRate(ctx context.Context, planID string, area domain.RatingArea, effectiveDate time.Time) (decimal.Decimal, error) {
	rate, err := l.rates.Rate(ctx, planID, area.StateCode, area.Number, AgeBandFamilyTier, effectiveDate)
	if err != nil {
		return decimal.Zero, err
	}
	return rate.MonthlyPremium, nil
}
