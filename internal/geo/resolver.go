// Package geo maps ZIP codes to health-insurance rating areas using the
// ZIP -> county -> rating-area reference tables.
package geo

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/glovebenefits/ichracalc/internal/domain"
	"github.com/glovebenefits/ichracalc/internal/logging"
	"github.com/glovebenefits/ichracalc/internal/store"
)

var zipPattern = regexp.MustCompile(`^[0-9]{5}$`)

// NormalizeZIP reduces census ZIP input to the canonical 5-digit form:
// ZIP+4 suffixes are stripped and short ZIPs are left-padded with
// zeros (spreadsheets routinely drop leading zeros from New England
// ZIPs).
func NormalizeZIP(raw string) string {
	z := strings.TrimSpace(raw)
	if i := strings.IndexByte(z, '-'); i >= 0 {
		z = z[:i]
	}
	for len(z) < 5 && z != "" {
		z = "0" + z
	}
	if len(z) > 5 {
		z = z[:5]
	}
	return z
}

// Resolver resolves household locations to rating areas.
type Resolver struct {
	geo              store.GeoStore
	singleAreaStates map[string]bool
	log              *logging.Logger
}

// NewResolver builds a resolver. singleAreaStates lists whole-state
// rating states, which bypass county granularity entirely.
func NewResolver(geo store.GeoStore, singleAreaStates []string, log *logging.Logger) *Resolver {
	set := make(map[string]bool, len(singleAreaStates))
	for _, s := range singleAreaStates {
		set[s] = true
	}
	return &Resolver{geo: geo, singleAreaStates: set, log: log.With("component", "geo")}
}

// Resolve maps a ZIP (plus optional county hint) to its rating area.
//
// When the ZIP spans multiple counties and no hint is given, the county
// with the largest population share wins. That is a best-effort
// heuristic, not a guarantee of correctness; callers presenting the
// result should treat the county choice as provisional.
//
// A malformed or unknown ZIP yields domain.NotFoundError, which is
// recoverable: it blocks only the household member being resolved.
func (r *Resolver) Resolve(ctx context.Context, zipCode, countyHint string) (domain.RatingArea, error) {
	zip := NormalizeZIP(zipCode)
	if !zipPattern.MatchString(zip) {
		return domain.RatingArea{}, domain.NewNotFound("zip", zipCode)
	}

	candidates, err := r.geo.AssignmentsForZIP(ctx, zip)
	if err != nil {
		return domain.RatingArea{}, fmt.Errorf("failed to resolve zip %s: %w", zip, err)
	}
	if len(candidates) == 0 {
		return domain.RatingArea{}, domain.NewNotFound("zip", zip)
	}

	// Whole-state rating short-circuits county disambiguation.
	if st := candidates[0].StateCode; r.singleAreaStates[st] {
		area, err := r.geo.RatingAreaForState(ctx, st)
		if err != nil {
			return domain.RatingArea{}, err
		}
		return domain.RatingArea{StateCode: st, Number: area}, nil
	}

	chosen := pick(candidates, countyHint)
	if len(candidates) > 1 && countyHint == "" {
		r.log.Debug("zip spans multiple counties, using population-share default",
			"zip", zip, "county", chosen.CountyName, "candidates", len(candidates))
	}
	return domain.RatingArea{StateCode: chosen.StateCode, Number: chosen.RatingArea}, nil
}

// pick selects among county candidates: an exact (case-insensitive)
// county-name hint wins, otherwise the largest population share. The
// store returns candidates ordered by share descending, so the first
// entry is the default.
func pick(candidates []domain.RatingAreaAssignment, countyHint string) domain.RatingAreaAssignment {
	if countyHint != "" {
		hint := strings.ToLower(strings.TrimSpace(countyHint))
		for _, c := range candidates {
			if strings.ToLower(c.CountyName) == hint {
				return c
			}
		}
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.PopulationShare > best.PopulationShare {
			best = c
		}
	}
	return best
}
