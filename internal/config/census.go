package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/glovebenefits/ichracalc/internal/domain"
)

// CensusInput is the YAML batch input: the employer's census rows plus
// the plans to quote and an optional baseline comparison anchor.
type CensusInput struct {
	Households       []domain.Household   `yaml:"households"`
	CandidatePlanIDs []string             `yaml:"candidate_plan_ids"`
	Baseline         *domain.BaselinePlan `yaml:"baseline,omitempty"`
}

// LoadCensus reads and validates a census file.
func LoadCensus(path string) (*CensusInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read census %s: %w", path, err)
	}

	var input CensusInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse census %s: %w", path, err)
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return &input, nil
}

// Validate rejects structurally broken census rows up front. Rows that
// are well-formed but unresolvable (unknown ZIP, no rates) pass here
// and surface later as per-row gaps.
func (ci *CensusInput) Validate() error {
	if len(ci.Households) == 0 {
		return &domain.ConfigurationError{Field: "households", Detail: "census has no household rows"}
	}

	seen := make(map[string]bool, len(ci.Households))
	for i, h := range ci.Households {
		where := fmt.Sprintf("households[%d]", i)
		if h.EmployeeID == "" {
			return &domain.ConfigurationError{Field: where, Detail: "employee_id is required"}
		}
		if seen[h.EmployeeID] {
			return &domain.ConfigurationError{Field: where, Detail: fmt.Sprintf("duplicate employee_id %q", h.EmployeeID)}
		}
		seen[h.EmployeeID] = true

		if h.ZIPCode == "" {
			return &domain.ConfigurationError{Field: where, Detail: "zip_code is required"}
		}
		if !h.FamilyStatus.Valid() {
			return &domain.ConfigurationError{Field: where, Detail: fmt.Sprintf("unknown family status %q", h.FamilyStatus)}
		}
		if _, ok := h.Employee(); !ok {
			return &domain.ConfigurationError{Field: where, Detail: "census row has no employee member"}
		}
		for j, m := range h.Members {
			if m.BirthDate.IsZero() {
				return &domain.ConfigurationError{
					Field:  fmt.Sprintf("%s.members[%d]", where, j),
					Detail: "birth_date is required",
				}
			}
		}
	}
	return nil
}
