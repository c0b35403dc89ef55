package rates

import "strconv"

// Age band literals used by the RBIS rate tables. Ages outside the
// discrete range collapse into the boundary bands; the boundaries come
// from the published age-curve tables and an off-by-one here changes
// the premium, so they are fixed constants rather than configuration.
const (
	AgeBandChild      = "0-14"
	AgeBandSenior     = "64 and over"
	AgeBandFamilyTier = "Family-Tier Rates"

	childBandMaxAge  = 14
	seniorBandMinAge = 64
)

// AgeBand converts an age to the rate-table band string: "0-14" for 14
// and under, "64 and over" for 64 and up, and the exact integer age
// otherwise. Rate rows store discrete integer ages as strings, matched
// by equality, not ranges.
func AgeBand(age int) string {
	switch {
	case age <= childBandMaxAge:
		return AgeBandChild
	case age >= seniorBandMinAge:
		return AgeBandSenior
	default:
		return strconv.Itoa(age)
	}
}
