// Package compare scores marketplace plans against an employer's
// current group plan using a weighted-attribute similarity function.
package compare

import (
	"github.com/shopspring/decimal"
)

// Label is the directional verdict for one attribute.
type Label string

const (
	LabelBetter  Label = "better"
	LabelSimilar Label = "similar"
	LabelWorse   Label = "worse"
)

// Attribute names the compared plan attributes.
type Attribute string

const (
	AttrDeductible      Attribute = "individual_deductible"
	AttrMOOP            Attribute = "individual_moop"
	AttrPlanType        Attribute = "plan_type"
	AttrHSAEligible     Attribute = "hsa_eligible"
	AttrPCPCopay        Attribute = "pcp_copay"
	AttrSpecialistCopay Attribute = "specialist_copay"
	AttrGenericRxCopay  Attribute = "generic_rx_copay"
	AttrCoinsurance     Attribute = "coinsurance"
)

// AttributeComparison is one attribute's contribution to a comparison:
// the two values, the weighted penalty charged, and the directional
// label shown to the broker.
type AttributeComparison struct {
	Attribute Attribute       `json:"attribute"`
	Baseline  string          `json:"baseline"`
	Candidate string          `json:"candidate"`
	Penalty   decimal.Decimal `json:"penalty"`
	Label     Label           `json:"label"`
}

// ComparisonResult scores one candidate against the baseline. Results
// are recomputed on every request and never persisted.
type ComparisonResult struct {
	CandidatePlanID string                `json:"candidate_plan_id"`
	MatchScore      decimal.Decimal       `json:"match_score"` // 0-100, 100 = identical
	Attributes      []AttributeComparison `json:"attributes"`
}

// LabelFor returns the label for an attribute, defaulting to similar
// when the attribute was not compared.
func (r ComparisonResult) LabelFor(attr Attribute) Label {
	for _, a := range r.Attributes {
		if a.Attribute == attr {
			return a.Label
		}
	}
	return LabelSimilar
}

// ComparisonSet is a baseline plus all candidate scores, ordered by
// descending match score.
type ComparisonSet struct {
	BaselineName string             `json:"baseline_name"`
	Results      []ComparisonResult `json:"results"`
}
