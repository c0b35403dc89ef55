package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FamilyStatus constrains which household members are counted toward a
// family premium.
type FamilyStatus string

const (
	FamilyStatusEmployeeOnly     FamilyStatus = "EE"
	FamilyStatusEmployeeSpouse   FamilyStatus = "ES"
	FamilyStatusEmployeeChildren FamilyStatus = "EC"
	FamilyStatusFamily           FamilyStatus = "F"
)

// Valid reports whether the status is one of the four census codes.
func (fs FamilyStatus) Valid() bool {
	switch fs {
	case FamilyStatusEmployeeOnly, FamilyStatusEmployeeSpouse,
		FamilyStatusEmployeeChildren, FamilyStatusFamily:
		return true
	}
	return false
}

// IncludesSpouse reports whether a spouse is counted under this status.
func (fs FamilyStatus) IncludesSpouse() bool {
	return fs == FamilyStatusEmployeeSpouse || fs == FamilyStatusFamily
}

// IncludesDependents reports whether dependents are counted under this status.
func (fs FamilyStatus) IncludesDependents() bool {
	return fs == FamilyStatusEmployeeChildren || fs == FamilyStatusFamily
}

// MemberRole identifies a household member's relationship to the employee.
type MemberRole string

const (
	RoleEmployee  MemberRole = "employee"
	RoleSpouse    MemberRole = "spouse"
	RoleDependent MemberRole = "dependent"
)

// HouseholdMember is a single person on the census row.
type HouseholdMember struct {
	Role      MemberRole `yaml:"role" json:"role"`
	BirthDate time.Time  `yaml:"birth_date" json:"birth_date"`
}

// Age computes the member's age at the given date. Rates are keyed off
// the plan-year effective date, so callers must pass that date rather
// than time.Now.
func (m HouseholdMember) Age(asOf time.Time) int {
	age := asOf.Year() - m.BirthDate.Year()
	if asOf.YearDay() < m.BirthDate.YearDay() {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// Household is one census row: the employee plus any counted family
// members, with location and optional financial context. Households are
// session-scoped input data and are never persisted.
type Household struct {
	EmployeeID   string            `yaml:"employee_id" json:"employee_id"`
	ZIPCode      string            `yaml:"zip_code" json:"zip_code"`
	CountyHint   string            `yaml:"county,omitempty" json:"county,omitempty"`
	FamilyStatus FamilyStatus      `yaml:"family_status" json:"family_status"`
	Members      []HouseholdMember `yaml:"members" json:"members"`

	// Optional census columns used for affordability and comparison.
	MonthlyIncome          decimal.Decimal `yaml:"monthly_income,omitempty" json:"monthly_income,omitempty"`
	CurrentEmployeeMonthly decimal.Decimal `yaml:"current_ee_monthly,omitempty" json:"current_ee_monthly,omitempty"`
	CurrentEmployerMonthly decimal.Decimal `yaml:"current_er_monthly,omitempty" json:"current_er_monthly,omitempty"`
}

// Employee returns the employee member. The second return is false when
// the census row is malformed and has no employee.
func (h Household) Employee() (HouseholdMember, bool) {
	for _, m := range h.Members {
		if m.Role == RoleEmployee {
			return m, true
		}
	}
	return HouseholdMember{}, false
}

// Spouse returns the spouse member if present.
func (h Household) Spouse() (HouseholdMember, bool) {
	for _, m := range h.Members {
		if m.Role == RoleSpouse {
			return m, true
		}
	}
	return HouseholdMember{}, false
}

// Dependents returns all dependent members in census order.
func (h Household) Dependents() []HouseholdMember {
	var deps []HouseholdMember
	for _, m := range h.Members {
		if m.Role == RoleDependent {
			deps = append(deps, m)
		}
	}
	return deps
}

// CountedMembers returns the members that participate in premium
// aggregation under the household's family status. A spouse on a row
// marked EC is ignored rather than rejected; the census upload layer
// warns about such rows before they reach the engine.
func (h Household) CountedMembers() []HouseholdMember {
	var counted []HouseholdMember
	for _, m := range h.Members {
		switch m.Role {
		case RoleEmployee:
			counted = append(counted, m)
		case RoleSpouse:
			if h.FamilyStatus.IncludesSpouse() {
				counted = append(counted, m)
			}
		case RoleDependent:
			if h.FamilyStatus.IncludesDependents() {
				counted = append(counted, m)
			}
		}
	}
	return counted
}
