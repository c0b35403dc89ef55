package affordability

import (
	"github.com/shopspring/decimal"
)

// Check is the per-employee affordability result.
type Check struct {
	LCSP LowestCostResult `json:"lcsp"`

	// MaxEmployeeContribution is the most the employee may be asked to
	// pay for self-only LCSP coverage: threshold x monthly income.
	MaxEmployeeContribution decimal.Decimal `json:"max_employee_contribution"`

	// MinEmployerContribution is the smallest monthly employer
	// contribution that makes the offer affordable: LCSP premium minus
	// the employee's maximum, floored at zero.
	MinEmployerContribution decimal.Decimal `json:"min_employer_contribution"`

	// Affordable is nil when the census row carries no income data.
	Affordable *bool `json:"affordable,omitempty"`
}

// IsAffordable applies the safe-harbor test: the employee's share of
// the self-only LCSP premium divided by monthly income must not exceed
// the threshold. A zero or negative income cannot be tested and
// returns false.
func IsAffordable(employeePremium, monthlyIncome, threshold decimal.Decimal) bool {
	if monthlyIncome.LessThanOrEqual(decimal.Zero) {
		return false
	}
	return employeePremium.Div(monthlyIncome).LessThanOrEqual(threshold)
}

// Evaluate computes the full check for an employee. employeeShare is
// what the employee would pay toward the LCSP after any employer
// contribution; income may be zero when the census omits it, in which
// case Affordable stays nil but the contribution floor is still
// reported relative to the full premium.
func (e *Engine) Evaluate(lcsp LowestCostResult, employeeShare, monthlyIncome decimal.Decimal) Check {
	check := Check{LCSP: lcsp}

	if monthlyIncome.GreaterThan(decimal.Zero) {
		check.MaxEmployeeContribution = monthlyIncome.Mul(e.threshold)
		affordable := IsAffordable(employeeShare, monthlyIncome, e.threshold)
		check.Affordable = &affordable
	}

	min := lcsp.Premium.Sub(check.MaxEmployeeContribution)
	if min.LessThan(decimal.Zero) {
		min = decimal.Zero
	}
	check.MinEmployerContribution = min
	return check
}
