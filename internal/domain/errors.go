package domain

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError is the recoverable per-entity gap: a ZIP with no
// reference entry, or a plan with no rate at a rating area/date. It
// blocks only the entity it names and must never abort a batch.
type NotFoundError struct {
	Entity string // what was looked up: "zip", "rate", "plan", "rating area"
	Key    string // the lookup key, for caller-facing messages
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

// NewNotFound builds a NotFoundError for the given entity and key.
func NewNotFound(entity, key string) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: key}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// MemberRef identifies a household member inside a PartialFailureError.
type MemberRef struct {
	Role    MemberRole `json:"role"`
	Index   int        `json:"index"` // position within the household's member list
	AgeBand string     `json:"age_band,omitempty"`
}

func (r MemberRef) String() string {
	if r.AgeBand != "" {
		return fmt.Sprintf("%s[%d] (age band %s)", r.Role, r.Index, r.AgeBand)
	}
	return fmt.Sprintf("%s[%d]", r.Role, r.Index)
}

// PartialFailureError reports that a household aggregate could not be
// completed because one or more members' rates were unresolvable. It
// names the members so the caller can decide between dropping the plan
// and surfacing a data-completeness warning.
type PartialFailureError struct {
	PlanID  string
	Missing []MemberRef
}

func (e *PartialFailureError) Error() string {
	refs := make([]string, len(e.Missing))
	for i, r := range e.Missing {
		refs[i] = r.String()
	}
	return fmt.Sprintf("plan %s: no rate for %s", e.PlanID, strings.Join(refs, ", "))
}

// IsPartialFailure reports whether err is (or wraps) a PartialFailureError.
func IsPartialFailure(err error) (*PartialFailureError, bool) {
	var pf *PartialFailureError
	if errors.As(err, &pf) {
		return pf, true
	}
	return nil, false
}

// DataIntegrityError reports a reference row violating an assumed
// invariant, e.g. two distinct premiums for the same rate key. The
// engine surfaces and skips the record rather than silently picking one.
type DataIntegrityError struct {
	Table  string
	Key    string
	Detail string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity violation in %s (%s): %s", e.Table, e.Key, e.Detail)
}

// ConfigurationError is fatal at startup: a missing affordability
// threshold or plan-year window means no calculation for that year can
// be trusted.
type ConfigurationError struct {
	Field  string
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error (%s): %s", e.Field, e.Detail)
}
