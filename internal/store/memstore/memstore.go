// Package memstore is an in-memory implementation of the store
// interfaces, backed by fixture slices. It powers the engine tests and
// fixture-driven CLI runs without a database.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/glovebenefits/ichracalc/internal/domain"
)

// Store holds reference data in memory. It is safe for concurrent reads
// after construction; mutate only while setting up fixtures.
type Store struct {
	Assignments []domain.RatingAreaAssignment
	Rates       []domain.PlanRate
	Plans       map[string]domain.Plan
	CostShares  map[string]domain.PlanCostSharing
}

// New returns an empty store ready for fixture loading.
func New() *Store {
	return &Store{
		Plans:      make(map[string]domain.Plan),
		CostShares: make(map[string]domain.PlanCostSharing),
	}
}

// AddPlan registers a plan, deriving issuer and state from the HIOS ID
// the same way the database ingestion does.
func (s *Store) AddPlan(p domain.Plan) {
	if p.IssuerID == "" {
		p.IssuerID = domain.IssuerIDFromHIOS(p.HIOSPlanID)
	}
	if p.StateCode == "" {
		p.StateCode = domain.StateCodeFromHIOS(p.HIOSPlanID)
	}
	s.Plans[p.HIOSPlanID] = p
}

// AddRate appends a base-rate row, stamping the state code from the
// plan ID when absent.
func (s *Store) AddRate(r domain.PlanRate) {
	if r.StateCode == "" {
		r.StateCode = domain.StateCodeFromHIOS(r.PlanID)
	}
	s.Rates = append(s.Rates, r)
}

func (s *Store) AssignmentsForZIP(_ context.Context, zip string) ([]domain.RatingAreaAssignment, error) {
	var out []domain.RatingAreaAssignment
	for _, a := range s.Assignments {
		if a.ZIPCode == zip {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PopulationShare > out[j].PopulationShare
	})
	return out, nil
}

func (s *Store) RatingAreaForState(_ context.Context, stateCode string) (int, error) {
	best := 0
	for _, a := range s.Assignments {
		if a.StateCode == stateCode && (best == 0 || a.RatingArea < best) {
			best = a.RatingArea
		}
	}
	if best == 0 {
		return 0, domain.NewNotFound("rating area", stateCode)
	}
	return best, nil
}

func (s *Store) Rate(_ context.Context, planID, stateCode string, ratingArea int, ageBand string, effectiveDate time.Time) (domain.PlanRate, error) {
	var matches []domain.PlanRate
	for _, r := range s.Rates {
		if r.PlanID == planID && r.StateCode == stateCode && r.RatingArea == ratingArea &&
			r.AgeBand == ageBand && r.RateEffectiveDate.Equal(effectiveDate) {
			matches = append(matches, r)
		}
	}
	if len(matches) == 0 {
		return domain.PlanRate{}, domain.NewNotFound("rate",
			fmt.Sprintf("%s area %d age %s on %s", planID, ratingArea, ageBand, effectiveDate.Format("2006-01-02")))
	}
	// Every matching row must agree on the premium; identical
	// duplicates are benign but any divergent row is corruption.
	for _, m := range matches[1:] {
		if !m.MonthlyPremium.Equal(matches[0].MonthlyPremium) {
			return domain.PlanRate{}, &domain.DataIntegrityError{
				Table:  "plan_base_rates",
				Key:    fmt.Sprintf("(%s, %d, %s)", planID, ratingArea, ageBand),
				Detail: "conflicting premiums for the same rate key",
			}
		}
	}
	return matches[0], nil
}

func (s *Store) RatesByMetal(_ context.Context, stateCode string, ratingArea int, metalLevel, ageBand string, effectiveDate time.Time) ([]domain.PlanRate, error) {
	var out []domain.PlanRate
	for _, r := range s.Rates {
		if r.StateCode != stateCode || r.RatingArea != ratingArea ||
			r.AgeBand != ageBand || !r.RateEffectiveDate.Equal(effectiveDate) {
			continue
		}
		p, ok := s.Plans[r.PlanID]
		if !ok || p.MetalLevel != metalLevel || p.MarketCoverage != "Individual" {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].MonthlyPremium.Equal(out[j].MonthlyPremium) {
			return out[i].MonthlyPremium.LessThan(out[j].MonthlyPremium)
		}
		return out[i].PlanID < out[j].PlanID
	})
	return out, nil
}

func (s *Store) Plan(_ context.Context, hiosPlanID string) (domain.Plan, error) {
	p, ok := s.Plans[hiosPlanID]
	if !ok {
		return domain.Plan{}, domain.NewNotFound("plan", hiosPlanID)
	}
	return p, nil
}

func (s *Store) CostSharing(_ context.Context, hiosPlanID string) (domain.PlanCostSharing, error) {
	cs, ok := s.CostShares[hiosPlanID]
	if !ok {
		return domain.PlanCostSharing{}, domain.NewNotFound("plan cost sharing", hiosPlanID)
	}
	return cs, nil
}
