package server

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/glovebenefits/ichracalc/internal/compare"
	"github.com/glovebenefits/ichracalc/internal/domain"
	"github.com/glovebenefits/ichracalc/internal/engine"
)

const dateLayout = "2006-01-02"

type resolveRequest struct {
	ZIPCode string `json:"zip_code" validate:"required"`
	County  string `json:"county"`
}

type resolveResponse struct {
	ZIPCode    string            `json:"zip_code"`
	RatingArea domain.RatingArea `json:"rating_area"`
}

func (s *Server) handleResolve(c *fiber.Ctx) error {
	var req resolveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	area, err := s.resolver.Resolve(c.Context(), req.ZIPCode, req.County)
	if err != nil {
		return err
	}
	return c.JSON(resolveResponse{ZIPCode: req.ZIPCode, RatingArea: area})
}

type censusRequest struct {
	EffectiveDate    string               `json:"effective_date" validate:"required"`
	Households       []domain.Household   `json:"households" validate:"required,min=1"`
	CandidatePlanIDs []string             `json:"candidate_plan_ids"`
	Baseline         *domain.BaselinePlan `json:"baseline"`
}

func (s *Server) handleCensus(c *fiber.Ctx) error {
	var req censusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return err
	}
	effectiveDate, err := time.Parse(dateLayout, req.EffectiveDate)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "effective_date must be YYYY-MM-DD")
	}
	for i, h := range req.Households {
		if !h.FamilyStatus.Valid() {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("household %d: unknown family status %q", i, h.FamilyStatus))
		}
	}

	batch, err := s.engine.Process(c.Context(), engine.Request{
		EffectiveDate:    effectiveDate,
		Households:       req.Households,
		CandidatePlanIDs: req.CandidatePlanIDs,
		Baseline:         req.Baseline,
	})
	if err != nil {
		return err
	}
	return c.JSON(batch)
}

func (s *Server) handleLCSP(c *fiber.Ctx) error {
	state := c.Query("state")
	if len(state) != 2 {
		return fiber.NewError(fiber.StatusBadRequest, "state must be a 2-letter code")
	}
	areaNum, err := strconv.Atoi(c.Query("area"))
	if err != nil || areaNum < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "area must be a positive integer")
	}
	age, err := strconv.Atoi(c.Query("age"))
	if err != nil || age < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "age must be a non-negative integer")
	}
	effectiveDate := s.cfg.RateEffectiveDate
	if raw := c.Query("date"); raw != "" {
		effectiveDate, err = time.Parse(dateLayout, raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
	}

	area := domain.RatingArea{StateCode: state, Number: areaNum}
	band := s.lookup.BandFor(state, age)
	result, err := s.afford.LowestCostSilver(c.Context(), area, band, effectiveDate)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

type compareRequest struct {
	Baseline         domain.BaselinePlan `json:"baseline" validate:"required"`
	CandidatePlanIDs []string            `json:"candidate_plan_ids" validate:"required,min=1"`
}

type compareResponse struct {
	compare.ComparisonSet
	SkippedPlanIDs []string `json:"skipped_plan_ids,omitempty"`
}

func (s *Server) handleCompare(c *fiber.Ctx) error {
	var req compareRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := s.validate.Struct(req); err != nil {
		return err
	}

	// Candidates without cost-sharing data are reported, not fatal; one
	// unknown plan must not block scoring the rest.
	var candidates []domain.PlanCostSharing
	var skipped []string
	for _, id := range req.CandidatePlanIDs {
		cs, err := s.store.CostSharing(c.Context(), id)
		if err != nil {
			if domain.IsNotFound(err) {
				skipped = append(skipped, id)
				continue
			}
			return err
		}
		candidates = append(candidates, cs)
	}
	return c.JSON(compareResponse{
		ComparisonSet:  compare.ScoreAll(req.Baseline, candidates),
		SkippedPlanIDs: skipped,
	})
}
