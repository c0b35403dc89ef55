package compare

import (
	"fmt"
	"strings"
)

// TableFormatter renders a comparison set as a console table.
type TableFormatter struct{}

// Format generates the comparison report for a baseline and its
// candidates.
func (tf *TableFormatter) Format(set *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString("PLAN COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 78) + "\n")
	sb.WriteString(fmt.Sprintf("Baseline: %s\n\n", set.BaselineName))

	nameWidth := 18
	sb.WriteString(fmt.Sprintf("%-*s %7s  %-12s %-12s %-10s %-10s\n",
		nameWidth, "Candidate",
		"Score",
		"Deductible",
		"MOOP",
		"Plan Type",
		"PCP Copay"))
	sb.WriteString(strings.Repeat("-", 78) + "\n")

	for _, r := range set.Results {
		sb.WriteString(fmt.Sprintf("%-*s %7s  %-12s %-12s %-10s %-10s\n",
			nameWidth, tf.truncate(r.CandidatePlanID, nameWidth),
			r.MatchScore.StringFixed(1),
			string(r.LabelFor(AttrDeductible)),
			string(r.LabelFor(AttrMOOP)),
			string(r.LabelFor(AttrPlanType)),
			string(r.LabelFor(AttrPCPCopay))))
	}
	sb.WriteString(strings.Repeat("=", 78) + "\n")
	return sb.String()
}

// FormatDetail renders every attribute row for a single result.
func (tf *TableFormatter) FormatDetail(r *ComparisonResult) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s (match score %s)\n", r.CandidatePlanID, r.MatchScore.StringFixed(1)))
	sb.WriteString(strings.Repeat("-", 66) + "\n")
	for _, a := range r.Attributes {
		sb.WriteString(fmt.Sprintf("  %-22s %12s -> %-12s %-8s -%s\n",
			string(a.Attribute), a.Baseline, a.Candidate, string(a.Label), a.Penalty.StringFixed(2)))
	}
	return sb.String()
}

func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
