package compare

import (
	"encoding/csv"
	"strings"
)

// CSVFormatter renders a comparison set as CSV.
type CSVFormatter struct{}

// Format generates CSV output with one row per candidate.
func (cf *CSVFormatter) Format(set *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Candidate Plan ID",
		"Match Score",
		"Deductible",
		"MOOP",
		"Plan Type",
		"HSA",
		"PCP Copay",
		"Specialist Copay",
		"Generic Rx Copay",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	for _, r := range set.Results {
		row := []string{
			r.CandidatePlanID,
			r.MatchScore.StringFixed(1),
			string(r.LabelFor(AttrDeductible)),
			string(r.LabelFor(AttrMOOP)),
			string(r.LabelFor(AttrPlanType)),
			string(r.LabelFor(AttrHSAEligible)),
			string(r.LabelFor(AttrPCPCopay)),
			string(r.LabelFor(AttrSpecialistCopay)),
			string(r.LabelFor(AttrGenericRxCopay)),
		}
		if err := writer.Write(row); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
