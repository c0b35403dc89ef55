// Package store provides read-only access to the regulatory reference
// tables: marketplace plans, the ~13M-row base-rate table, cost-sharing
// attributes and the geographic rating-area assignments. Reference data
// is bulk-loaded per plan year and treated as immutable during a
// session, so every interface here is a pure read path.
package store

import (
	"context"
	"time"

	"github.com/glovebenefits/ichracalc/internal/domain"
)

// GeoStore resolves ZIP codes to candidate county/rating-area
// assignments.
type GeoStore interface {
	// AssignmentsForZIP returns every county a ZIP maps to, with the
	// county's rating area and population share. An empty result means
	// the ZIP is absent from the reference table.
	AssignmentsForZIP(ctx context.Context, zip string) ([]domain.RatingAreaAssignment, error)

	// RatingAreaForState returns the rating area for a whole-state
	// rating state, where county granularity does not apply.
	RatingAreaForState(ctx context.Context, stateCode string) (int, error)
}

// RateStore looks up base-rate rows. Implementations must rely on the
// stored state_code column and the composite
// (state_code, rating_area, age, rate_effective_date) index; deriving
// the state from the plan ID at query time would defeat the index on a
// 13M-row table.
type RateStore interface {
	// Rate returns the single premium for a plan at a rating area, age
	// band and effective date. Returns domain.NotFoundError when the
	// plan has no row there (a legitimate business outcome: the plan is
	// not offered), and domain.DataIntegrityError when the key matches
	// conflicting rows.
	Rate(ctx context.Context, planID, stateCode string, ratingArea int, ageBand string, effectiveDate time.Time) (domain.PlanRate, error)

	// RatesByMetal returns all rate rows at a rating area/age band/date
	// for Individual-market plans of the given metal level. Used for
	// lowest-cost-plan selection.
	RatesByMetal(ctx context.Context, stateCode string, ratingArea int, metalLevel, ageBand string, effectiveDate time.Time) ([]domain.PlanRate, error)
}

// PlanStore returns plan reference rows and comparison attributes.
type PlanStore interface {
	Plan(ctx context.Context, hiosPlanID string) (domain.Plan, error)

	// CostSharing returns the deductible/MOOP and copay-basket
	// attributes used by the plan comparator.
	CostSharing(ctx context.Context, hiosPlanID string) (domain.PlanCostSharing, error)
}

// Store bundles the three read paths; the postgres and memory
// implementations both satisfy it.
type Store interface {
	GeoStore
	RateStore
	PlanStore
}
