// Package engine orchestrates the resolution pipeline for census
// batches: rating-area resolution, premium aggregation, affordability
// checks and plan comparisons, one household at a time.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/glovebenefits/ichracalc/internal/affordability"
	"github.com/glovebenefits/ichracalc/internal/compare"
	"github.com/glovebenefits/ichracalc/internal/domain"
	"github.com/glovebenefits/ichracalc/internal/geo"
	"github.com/glovebenefits/ichracalc/internal/logging"
	"github.com/glovebenefits/ichracalc/internal/rates"
	"github.com/glovebenefits/ichracalc/internal/store"
)

// Request is the immutable context for one batch run. The engine holds
// no session state of its own, so a single Engine may serve concurrent
// requests.
type Request struct {
	EffectiveDate    time.Time
	Households       []domain.Household
	CandidatePlanIDs []string
	Baseline         *domain.BaselinePlan
}

// EmployeeResult is the resolved output for one census row. Gaps are
// recoverable per-item failures; a populated Gap on one row never
// affects the others.
type EmployeeResult struct {
	EmployeeID    string               `json:"employee_id"`
	RatingArea    *domain.RatingArea   `json:"rating_area,omitempty"`
	Affordability *affordability.Check `json:"affordability,omitempty"`
	Quotes        []rates.Quote        `json:"quotes,omitempty"`
	QuoteGaps     []string             `json:"quote_gaps,omitempty"`
	Gap           string               `json:"gap,omitempty"`
}

// BatchResult is the full output of a census run.
type BatchResult struct {
	RunID         uuid.UUID              `json:"run_id"`
	EffectiveDate time.Time              `json:"effective_date"`
	Results       []EmployeeResult       `json:"results"`
	Comparisons   *compare.ComparisonSet `json:"comparisons,omitempty"`
}

// Engine wires the pipeline components together.
type Engine struct {
	store      store.Store
	resolver   *geo.Resolver
	lookup     *rates.Lookup
	aggregator *rates.Aggregator
	afford     *affordability.Engine
	workers    int
	log        *logging.Logger
}

// New builds an engine. workers bounds the census worker pool and
// should not exceed the store's connection-pool size.
func New(st store.Store, resolver *geo.Resolver, lookup *rates.Lookup, afford *affordability.Engine, workers int, log *logging.Logger) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		store:      st,
		resolver:   resolver,
		lookup:     lookup,
		aggregator: rates.NewAggregator(lookup),
		afford:     afford,
		workers:    workers,
		log:        log.With("component", "engine"),
	}
}

// Process runs the pipeline for every household in the request.
// Households are independent, so they are resolved concurrently;
// per-item gaps (unknown ZIPs, plans not offered, incomplete member
// rates) are collected into the results rather than aborting the batch.
func (e *Engine) Process(ctx context.Context, req Request) (*BatchResult, error) {
	if req.EffectiveDate.IsZero() {
		return nil, &domain.ConfigurationError{Field: "effective_date", Detail: "effective date is required"}
	}
	if len(req.Households) == 0 {
		return nil, fmt.Errorf("no households to process")
	}

	batch := &BatchResult{
		RunID:         uuid.New(),
		EffectiveDate: req.EffectiveDate,
		Results:       make([]EmployeeResult, len(req.Households)),
	}
	log := e.log.With("run_id", batch.RunID.String())
	log.Info("starting census batch", "households", len(req.Households), "candidates", len(req.CandidatePlanIDs))

	if req.Baseline != nil && len(req.CandidatePlanIDs) > 0 {
		set, err := e.compareCandidates(ctx, *req.Baseline, req.CandidatePlanIDs)
		if err != nil {
			return nil, err
		}
		batch.Comparisons = set
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range req.Households {
		g.Go(func() error {
			result, err := e.processHousehold(gctx, req, req.Households[i])
			if err != nil {
				return err
			}
			batch.Results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("census batch complete", "households", len(batch.Results))
	return batch, nil
}

// processHousehold resolves one census row end to end. Only
// infrastructure errors are returned; business gaps land in the result.
func (e *Engine) processHousehold(ctx context.Context, req Request, h domain.Household) (EmployeeResult, error) {
	result := EmployeeResult{EmployeeID: h.EmployeeID}

	area, err := e.resolver.Resolve(ctx, h.ZIPCode, h.CountyHint)
	if err != nil {
		if domain.IsNotFound(err) {
			result.Gap = err.Error()
			return result, nil
		}
		return result, err
	}
	result.RatingArea = &area

	if err := e.checkAffordability(ctx, req, h, area, &result); err != nil {
		return result, err
	}

	for _, planID := range req.CandidatePlanIDs {
		quote, err := e.aggregator.Aggregate(ctx, h, planID, area, req.EffectiveDate)
		if err != nil {
			if pf, ok := domain.IsPartialFailure(err); ok {
				result.QuoteGaps = append(result.QuoteGaps, pf.Error())
				continue
			}
			var integrity *domain.DataIntegrityError
			if errors.As(err, &integrity) {
				e.log.Error("skipping plan with corrupt rate data",
					"employee_id", h.EmployeeID, "plan_id", planID, "error", integrity.Error())
				result.QuoteGaps = append(result.QuoteGaps, integrity.Error())
				continue
			}
			return result, err
		}
		result.Quotes = append(result.Quotes, quote)
	}
	return result, nil
}

// checkAffordability finds the LCSP for the employee's own age band and
// evaluates the safe harbor. A rating area with no Silver plans is a
// gap, not a failure.
func (e *Engine) checkAffordability(ctx context.Context, req Request, h domain.Household, area domain.RatingArea, result *EmployeeResult) error {
	employee, ok := h.Employee()
	if !ok {
		result.QuoteGaps = append(result.QuoteGaps, fmt.Sprintf("household %s has no employee member", h.EmployeeID))
		return nil
	}

	band := e.lookup.BandFor(area.StateCode, employee.Age(req.EffectiveDate))
	lcsp, err := e.afford.LowestCostSilver(ctx, area, band, req.EffectiveDate)
	if err != nil {
		if domain.IsNotFound(err) {
			result.QuoteGaps = append(result.QuoteGaps, err.Error())
			return nil
		}
		return err
	}

	share := lcsp.Premium.Sub(h.CurrentEmployerMonthly)
	if share.LessThan(decimal.Zero) {
		share = decimal.Zero
	}
	check := e.afford.Evaluate(lcsp, share, h.MonthlyIncome)
	result.Affordability = &check
	return nil
}

// compareCandidates scores the candidate plans once per batch; the
// comparison depends only on plan attributes, not on any household.
func (e *Engine) compareCandidates(ctx context.Context, baseline domain.BaselinePlan, planIDs []string) (*compare.ComparisonSet, error) {
	var candidates []domain.PlanCostSharing
	for _, id := range planIDs {
		cs, err := e.store.CostSharing(ctx, id)
		if err != nil {
			if domain.IsNotFound(err) {
				e.log.Warn("candidate plan missing cost-sharing data, excluded from comparison", "plan_id", id)
				continue
			}
			return nil, err
		}
		candidates = append(candidates, cs)
	}
	set := compare.ScoreAll(baseline, candidates)
	return &set, nil
}
