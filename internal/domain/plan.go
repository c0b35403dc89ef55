package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Metal levels published in the RBIS plan table.
const (
	MetalBronze         = "Bronze"
	MetalExpandedBronze = "Expanded Bronze"
	MetalSilver         = "Silver"
	MetalGold           = "Gold"
	MetalPlatinum       = "Platinum"
)

// HIOS plan IDs embed the issuer and state by regulatory convention:
// characters 1-5 are the issuer ID and characters 6-7 the state code.
// The store persists both as generated columns; these helpers exist for
// ingestion and validation, never for per-query derivation.
const hiosMinLen = 7

// IssuerIDFromHIOS extracts the 5-character issuer ID from a HIOS plan ID.
func IssuerIDFromHIOS(hiosPlanID string) string {
	if len(hiosPlanID) < hiosMinLen {
		return ""
	}
	return hiosPlanID[0:5]
}

// StateCodeFromHIOS extracts the 2-character state code from a HIOS plan ID.
func StateCodeFromHIOS(hiosPlanID string) string {
	if len(hiosPlanID) < hiosMinLen {
		return ""
	}
	return hiosPlanID[5:7]
}

// Plan is one row of the marketplace plan reference table, bulk-loaded
// per plan year and read-only during a session.
type Plan struct {
	HIOSPlanID     string    `yaml:"hios_plan_id" json:"hios_plan_id"`
	MarketingName  string    `yaml:"marketing_name" json:"marketing_name"`
	IssuerID       string    `yaml:"issuer_id" json:"issuer_id"`
	StateCode      string    `yaml:"state_code" json:"state_code"`
	MetalLevel     string    `yaml:"metal_level" json:"metal_level"`
	PlanType       string    `yaml:"plan_type" json:"plan_type"`
	MarketCoverage string    `yaml:"market_coverage" json:"market_coverage"`
	EffectiveDate  time.Time `yaml:"effective_date" json:"effective_date"`
	HSAEligible    bool      `yaml:"hsa_eligible" json:"hsa_eligible"`
}

// PlanRate is one row of the base-rates table: plan x rating area x age
// band x effective date. The age band is stored as a string because the
// source system mixes discrete integer ages with the literal bands
// "0-14", "64 and over" and "Family-Tier Rates".
type PlanRate struct {
	PlanID            string          `json:"plan_id"`
	StateCode         string          `json:"state_code"`
	RatingArea        int             `json:"rating_area"`
	AgeBand           string          `json:"age_band"`
	RateEffectiveDate time.Time       `json:"rate_effective_date"`
	MonthlyPremium    decimal.Decimal `json:"monthly_premium"`
}

// PlanCostSharing carries the comparison attributes for a marketplace
// plan: deductibles, out-of-pocket maxima and the copay basket. Copay
// pointers are nil when the plan uses coinsurance for that service
// instead of a flat copay.
type PlanCostSharing struct {
	HIOSPlanID           string           `json:"hios_plan_id"`
	PlanType             string           `json:"plan_type"`
	HSAEligible          bool             `json:"hsa_eligible"`
	IndividualDeductible decimal.Decimal  `json:"individual_deductible"`
	FamilyDeductible     decimal.Decimal  `json:"family_deductible"`
	IndividualMOOP       decimal.Decimal  `json:"individual_moop"`
	FamilyMOOP           decimal.Decimal  `json:"family_moop"`
	PCPCopay             *decimal.Decimal `json:"pcp_copay,omitempty"`
	SpecialistCopay      *decimal.Decimal `json:"specialist_copay,omitempty"`
	GenericRxCopay       *decimal.Decimal `json:"generic_rx_copay,omitempty"`
	Coinsurance          decimal.Decimal  `json:"coinsurance"`
}

// BaselinePlan is the employer's current group plan, supplied by the
// broker as a comparison anchor. It is never matched against
// marketplace identifiers and is discarded at session end.
type BaselinePlan struct {
	Name                 string          `yaml:"name" json:"name"`
	PlanType             string          `yaml:"plan_type" json:"plan_type"`
	HSAEligible          bool            `yaml:"hsa_eligible" json:"hsa_eligible"`
	IndividualDeductible decimal.Decimal `yaml:"individual_deductible" json:"individual_deductible"`
	FamilyDeductible     decimal.Decimal `yaml:"family_deductible" json:"family_deductible"`
	IndividualMOOP       decimal.Decimal `yaml:"individual_moop" json:"individual_moop"`
	FamilyMOOP           decimal.Decimal `yaml:"family_moop" json:"family_moop"`
	PCPCopay             decimal.Decimal `yaml:"pcp_copay" json:"pcp_copay"`
	SpecialistCopay      decimal.Decimal `yaml:"specialist_copay" json:"specialist_copay"`
	GenericRxCopay       decimal.Decimal `yaml:"generic_rx_copay" json:"generic_rx_copay"`
	Coinsurance          decimal.Decimal `yaml:"coinsurance" json:"coinsurance"`
}
