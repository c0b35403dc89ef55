package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/glovebenefits/ichracalc/internal/config"
	"github.com/glovebenefits/ichracalc/internal/domain"
	"github.com/glovebenefits/ichracalc/internal/logging"
)

// Postgres implements Store against the RBIS reference schema. All
// queries filter tobacco-preference rate variants and the no-CSR plan
// variant, matching how the published tables are priced.
type Postgres struct {
	pool          *pgxpool.Pool
	log           *logging.Logger
	benefitLabels map[config.BenefitCode][]string
}

// NewPostgres opens a connection pool sized by cfg and verifies
// connectivity before returning.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig, benefitLabels map[config.BenefitCode][]string, log *logging.Logger) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{
		pool:          pool,
		log:           log.With("component", "store"),
		benefitLabels: benefitLabels,
	}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

const tobaccoFilter = `(br.tobacco IN ('No Preference', 'None', 'Tobacco User/Non-Tobacco User') OR br.tobacco IS NULL)`

// AssignmentsForZIP returns the county candidates for a ZIP joined to
// their Individual-market rating areas.
func (p *Postgres) AssignmentsForZIP(ctx context.Context, zip string) ([]domain.RatingAreaAssignment, error) {
	const q = `
		SELECT zc.zip, zc.county_fips, zc.county_name, zc.state_code,
		       ra.rating_area, zc.population_share
		FROM zip_to_county zc
		JOIN state_rating_area ra ON ra.county_fips = zc.county_fips
		WHERE zc.zip = $1
		  AND ra.market = 'Individual'
		ORDER BY zc.population_share DESC, zc.county_fips`

	rows, err := p.pool.Query(ctx, q, zip)
	if err != nil {
		return nil, fmt.Errorf("failed to query counties for zip %s: %w", zip, err)
	}
	defer rows.Close()

	var out []domain.RatingAreaAssignment
	for rows.Next() {
		var a domain.RatingAreaAssignment
		if err := rows.Scan(&a.ZIPCode, &a.CountyFIPS, &a.CountyName, &a.StateCode, &a.RatingArea, &a.PopulationShare); err != nil {
			return nil, fmt.Errorf("failed to scan zip assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// RatingAreaForState returns the rating area of a whole-state rating
// state.
func (p *Postgres) RatingAreaForState(ctx context.Context, stateCode string) (int, error) {
	const q = `
		SELECT MIN(rating_area)
		FROM state_rating_area
		WHERE state_code = $1 AND market = 'Individual'`

	var area *int
	if err := p.pool.QueryRow(ctx, q, stateCode).Scan(&area); err != nil {
		return 0, fmt.Errorf("failed to query rating area for state %s: %w", stateCode, err)
	}
	if area == nil {
		return 0, domain.NewNotFound("rating area", stateCode)
	}
	return *area, nil
}

// Rate fetches the premium row for a single (plan, area, age band,
// date) key. The query leads with the stored state_code column so the
// composite rate index is usable.
func (p *Postgres) Rate(ctx context.Context, planID, stateCode string, ratingArea int, ageBand string, effectiveDate time.Time) (domain.PlanRate, error) {
	// DISTINCT collapses benign duplicate loads: every selected column
	// except the premium is pinned by the WHERE clause, so a second
	// distinct row can only mean a second premium for the same key.
	q := `
		SELECT DISTINCT br.plan_id, br.state_code, br.rating_area, br.age,
		       br.rate_effective_date, br.individual_rate
		FROM plan_base_rates br
		WHERE br.state_code = $1
		  AND br.rating_area = $2
		  AND br.age = $3
		  AND br.rate_effective_date = $4
		  AND br.plan_id = $5
		  AND ` + tobaccoFilter + `
		LIMIT 2`

	rows, err := p.pool.Query(ctx, q, stateCode, ratingArea, ageBand, effectiveDate, planID)
	if err != nil {
		return domain.PlanRate{}, fmt.Errorf("failed to query rate for plan %s: %w", planID, err)
	}
	defer rows.Close()

	var rates []domain.PlanRate
	for rows.Next() {
		var r domain.PlanRate
		if err := rows.Scan(&r.PlanID, &r.StateCode, &r.RatingArea, &r.AgeBand, &r.RateEffectiveDate, &r.MonthlyPremium); err != nil {
			return domain.PlanRate{}, fmt.Errorf("failed to scan rate row: %w", err)
		}
		rates = append(rates, r)
	}
	if err := rows.Err(); err != nil {
		return domain.PlanRate{}, err
	}

	switch {
	case len(rates) == 0:
		return domain.PlanRate{}, domain.NewNotFound("rate",
			fmt.Sprintf("%s area %d age %s on %s", planID, ratingArea, ageBand, effectiveDate.Format("2006-01-02")))
	case len(rates) > 1:
		// The key must uniquely determine the premium; a second distinct
		// row means a corrupt load and must not be silently resolved.
		return domain.PlanRate{}, &domain.DataIntegrityError{
			Table:  "plan_base_rates",
			Key:    fmt.Sprintf("(%s, %d, %s, %s)", planID, ratingArea, ageBand, effectiveDate.Format("2006-01-02")),
			Detail: fmt.Sprintf("conflicting premiums %s and %s", rates[0].MonthlyPremium, rates[1].MonthlyPremium),
		}
	}
	return rates[0], nil
}

// RatesByMetal returns every Individual-market rate at the rating
// area/age band/date for plans of the given metal level.
func (p *Postgres) RatesByMetal(ctx context.Context, stateCode string, ratingArea int, metalLevel, ageBand string, effectiveDate time.Time) ([]domain.PlanRate, error) {
	q := `
		SELECT br.plan_id, br.state_code, br.rating_area, br.age,
		       br.rate_effective_date, br.individual_rate
		FROM plan_base_rates br
		JOIN plans p ON p.hios_plan_id = br.plan_id
		WHERE br.state_code = $1
		  AND br.rating_area = $2
		  AND br.age = $3
		  AND br.rate_effective_date = $4
		  AND p.market_coverage = 'Individual'
		  AND p.level_of_coverage = $5
		  AND ` + tobaccoFilter + `
		ORDER BY br.individual_rate, br.plan_id`

	rows, err := p.pool.Query(ctx, q, stateCode, ratingArea, ageBand, effectiveDate, metalLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s rates for %s area %d: %w", metalLevel, stateCode, ratingArea, err)
	}
	defer rows.Close()

	var out []domain.PlanRate
	for rows.Next() {
		var r domain.PlanRate
		if err := rows.Scan(&r.PlanID, &r.StateCode, &r.RatingArea, &r.AgeBand, &r.RateEffectiveDate, &r.MonthlyPremium); err != nil {
			return nil, fmt.Errorf("failed to scan rate row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Plan returns the reference row for a HIOS plan ID. issuer_id and
// state_code are generated stored columns; they are selected, never
// recomputed here.
func (p *Postgres) Plan(ctx context.Context, hiosPlanID string) (domain.Plan, error) {
	const q = `
		SELECT hios_plan_id, plan_marketing_name, issuer_id, state_code,
		       level_of_coverage, plan_type, market_coverage,
		       plan_effective_date, hsa_eligible
		FROM plans
		WHERE hios_plan_id = $1`

	var pl domain.Plan
	err := p.pool.QueryRow(ctx, q, hiosPlanID).Scan(
		&pl.HIOSPlanID, &pl.MarketingName, &pl.IssuerID, &pl.StateCode,
		&pl.MetalLevel, &pl.PlanType, &pl.MarketCoverage,
		&pl.EffectiveDate, &pl.HSAEligible,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Plan{}, domain.NewNotFound("plan", hiosPlanID)
	}
	if err != nil {
		return domain.Plan{}, fmt.Errorf("failed to query plan %s: %w", hiosPlanID, err)
	}
	return pl, nil
}

// CostSharing assembles the comparator attributes for a plan from the
// deductible/MOOP table and the benefit cost-share table. Benefit rows
// are matched against the canonical label mapping loaded from
// configuration; free-text substring matching is deliberately not used.
func (p *Postgres) CostSharing(ctx context.Context, hiosPlanID string) (domain.PlanCostSharing, error) {
	pl, err := p.Plan(ctx, hiosPlanID)
	if err != nil {
		return domain.PlanCostSharing{}, err
	}

	cs := domain.PlanCostSharing{
		HIOSPlanID:  pl.HIOSPlanID,
		PlanType:    pl.PlanType,
		HSAEligible: pl.HSAEligible,
	}

	if err := p.loadDeductibles(ctx, &cs); err != nil {
		return domain.PlanCostSharing{}, err
	}
	if err := p.loadCopays(ctx, &cs); err != nil {
		return domain.PlanCostSharing{}, err
	}
	return cs, nil
}

func (p *Postgres) loadDeductibles(ctx context.Context, cs *domain.PlanCostSharing) error {
	const q = `
		SELECT moop_ded_type, individual_amount, family_per_group
		FROM plan_deductibles_moop
		WHERE plan_id = $1
		  AND variant_component = 'Exchange variant (no CSR)'
		  AND network_type = 'In Network'`

	rows, err := p.pool.Query(ctx, q, cs.HIOSPlanID)
	if err != nil {
		return fmt.Errorf("failed to query deductibles for %s: %w", cs.HIOSPlanID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var dedType string
		var individual, familyGroup decimal.Decimal
		if err := rows.Scan(&dedType, &individual, &familyGroup); err != nil {
			return fmt.Errorf("failed to scan deductible row: %w", err)
		}
		switch dedType {
		case "Medical EHB Deductible":
			cs.IndividualDeductible = individual
			cs.FamilyDeductible = familyGroup
		case "Medical EHB Out of Pocket Maximum":
			cs.IndividualMOOP = individual
			cs.FamilyMOOP = familyGroup
		}
	}
	return rows.Err()
}

func (p *Postgres) loadCopays(ctx context.Context, cs *domain.PlanCostSharing) error {
	labels, codeByLabel := p.flattenLabels()
	const q = `
		SELECT benefit, co_payment, co_insurance
		FROM plan_benefit_cost_share
		WHERE hios_plan_id = $1
		  AND csr_variation_type = 'Exchange variant (no CSR)'
		  AND network_type = 'In Network'
		  AND benefit = ANY($2)`

	rows, err := p.pool.Query(ctx, q, cs.HIOSPlanID, labels)
	if err != nil {
		return fmt.Errorf("failed to query cost share for %s: %w", cs.HIOSPlanID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var benefit string
		var copay, coinsurance *decimal.Decimal
		if err := rows.Scan(&benefit, &copay, &coinsurance); err != nil {
			return fmt.Errorf("failed to scan cost share row: %w", err)
		}
		code := codeByLabel[strings.ToLower(benefit)]
		switch code {
		case config.BenefitPrimaryCare:
			cs.PCPCopay = copay
		case config.BenefitSpecialist:
			cs.SpecialistCopay = copay
		case config.BenefitGenericRx:
			cs.GenericRxCopay = copay
		}
		if coinsurance != nil && cs.Coinsurance.IsZero() {
			cs.Coinsurance = *coinsurance
		}
	}
	return rows.Err()
}

// flattenLabels returns all configured label variants plus a reverse
// index from lowercased label to canonical code.
func (p *Postgres) flattenLabels() ([]string, map[string]config.BenefitCode) {
	var labels []string
	index := make(map[string]config.BenefitCode)
	for code, variants := range p.benefitLabels {
		for _, v := range variants {
			labels = append(labels, v)
			index[strings.ToLower(v)] = code
		}
	}
	return labels, index
}
