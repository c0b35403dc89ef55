package compare

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/glovebenefits/ichracalc/internal/domain"
)

// Attribute weights. The copay basket splits 25 points across three
// services; the uneven last share makes the weights sum to exactly 100.
var (
	weightDeductible = decimal.NewFromInt(25)
	weightMOOP       = decimal.NewFromInt(25)
	weightPlanType   = decimal.NewFromInt(15)
	weightHSA        = decimal.NewFromInt(10)
	weightPCP        = decimal.RequireFromString("8.33")
	weightSpecialist = decimal.RequireFromString("8.33")
	weightGenericRx  = decimal.RequireFromString("8.34")

	// A candidate priced by coinsurance where the baseline has a flat
	// copay is not directly comparable; half the attribute weight is
	// charged for the structural difference.
	structuralPenaltyFactor = decimal.RequireFromString("0.5")

	// Relative differences at or below 10% read as "similar".
	similarBand = decimal.RequireFromString("0.10")

	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Score compares a candidate's cost-sharing attributes against the
// employer's baseline plan.
//
// Continuous attributes charge their percentage deviation scaled by the
// attribute weight and capped at that weight; categorical attributes
// (plan type, HSA eligibility) are all-or-nothing. The final score
// floors at zero, and a candidate identical to the baseline on every
// attribute scores exactly 100.
func Score(baseline domain.BaselinePlan, candidate domain.PlanCostSharing) ComparisonResult {
	result := ComparisonResult{CandidatePlanID: candidate.HIOSPlanID}
	score := hundred

	add := func(ac AttributeComparison) {
		result.Attributes = append(result.Attributes, ac)
		score = score.Sub(ac.Penalty)
	}

	add(continuous(AttrDeductible, baseline.IndividualDeductible, candidate.IndividualDeductible, weightDeductible))
	add(continuous(AttrMOOP, baseline.IndividualMOOP, candidate.IndividualMOOP, weightMOOP))
	add(categorical(AttrPlanType, baseline.PlanType, candidate.PlanType, weightPlanType))
	add(categorical(AttrHSAEligible, boolLabel(baseline.HSAEligible), boolLabel(candidate.HSAEligible), weightHSA))
	add(copay(AttrPCPCopay, baseline.PCPCopay, candidate.PCPCopay, weightPCP))
	add(copay(AttrSpecialistCopay, baseline.SpecialistCopay, candidate.SpecialistCopay, weightSpecialist))
	add(copay(AttrGenericRxCopay, baseline.GenericRxCopay, candidate.GenericRxCopay, weightGenericRx))

	// Coinsurance carries no score weight; it is labeled for display only.
	add(AttributeComparison{
		Attribute: AttrCoinsurance,
		Baseline:  baseline.Coinsurance.StringFixed(0),
		Candidate: candidate.Coinsurance.StringFixed(0),
		Penalty:   decimal.Zero,
		Label:     directionalLabel(baseline.Coinsurance, candidate.Coinsurance),
	})

	if score.LessThan(decimal.Zero) {
		score = decimal.Zero
	}
	result.MatchScore = score.Round(1)
	return result
}

// ScoreAll scores every candidate and returns them ordered by
// descending match score, ties broken by plan ID for a deterministic
// report ordering.
func ScoreAll(baseline domain.BaselinePlan, candidates []domain.PlanCostSharing) ComparisonSet {
	set := ComparisonSet{BaselineName: baseline.Name}
	for _, c := range candidates {
		set.Results = append(set.Results, Score(baseline, c))
	}
	sort.SliceStable(set.Results, func(i, j int) bool {
		if !set.Results[i].MatchScore.Equal(set.Results[j].MatchScore) {
			return set.Results[i].MatchScore.GreaterThan(set.Results[j].MatchScore)
		}
		return set.Results[i].CandidatePlanID < set.Results[j].CandidatePlanID
	})
	return set
}

// continuous charges percentage deviation scaled by weight, capped at
// the full weight. Every continuous attribute here is a cost where
// lower is better, so only adverse deviation (candidate above baseline)
// is charged; a richer candidate loses nothing. The max(baseline, 1)
// denominator keeps zero-dollar baselines from dividing by zero while
// still penalizing deviation.
func continuous(attr Attribute, baseline, candidate, weight decimal.Decimal) AttributeComparison {
	penalty := decimal.Zero
	if candidate.GreaterThan(baseline) {
		penalty = deviation(baseline, candidate).Mul(weight)
		if penalty.GreaterThan(weight) {
			penalty = weight
		}
	}
	return AttributeComparison{
		Attribute: attr,
		Baseline:  baseline.StringFixed(0),
		Candidate: candidate.StringFixed(0),
		Penalty:   penalty,
		Label:     directionalLabel(baseline, candidate),
	}
}

// categorical charges the full weight on mismatch and nothing on match.
func categorical(attr Attribute, baseline, candidate string, weight decimal.Decimal) AttributeComparison {
	ac := AttributeComparison{
		Attribute: attr,
		Baseline:  baseline,
		Candidate: candidate,
		Penalty:   decimal.Zero,
		Label:     LabelSimilar,
	}
	if baseline != candidate {
		ac.Penalty = weight
		ac.Label = LabelWorse
	}
	return ac
}

// copay handles the basket entries, where a candidate may price the
// service by coinsurance (nil copay) instead of a flat copay.
func copay(attr Attribute, baseline decimal.Decimal, candidate *decimal.Decimal, weight decimal.Decimal) AttributeComparison {
	if candidate == nil {
		return AttributeComparison{
			Attribute: attr,
			Baseline:  baseline.StringFixed(0),
			Candidate: "coinsurance",
			Penalty:   weight.Mul(structuralPenaltyFactor),
			Label:     LabelSimilar,
		}
	}
	return continuous(attr, baseline, *candidate, weight)
}

// deviation is |candidate - baseline| / max(baseline, 1).
func deviation(baseline, candidate decimal.Decimal) decimal.Decimal {
	denom := baseline
	if denom.LessThan(one) {
		denom = one
	}
	return candidate.Sub(baseline).Abs().Div(denom)
}

// directionalLabel applies the lower-is-better rule used for all cost
// attributes: within the 10% band reads as similar, below it better,
// above it worse.
func directionalLabel(baseline, candidate decimal.Decimal) Label {
	if deviation(baseline, candidate).LessThanOrEqual(similarBand) {
		return LabelSimilar
	}
	if candidate.LessThan(baseline) {
		return LabelBetter
	}
	return LabelWorse
}

func boolLabel(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
