package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/glovebenefits/ichracalc/internal/compare"
	"github.com/glovebenefits/ichracalc/internal/engine"
)

// ConsoleFormatter renders the detailed per-employee console report.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(batch *engine.BatchResult) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, strings.Repeat("=", 78))
	fmt.Fprintln(&buf, "ICHRA CENSUS ANALYSIS")
	fmt.Fprintln(&buf, strings.Repeat("=", 78))
	fmt.Fprintf(&buf, "Run:            %s\n", batch.RunID)
	fmt.Fprintf(&buf, "Effective date: %s\n", batch.EffectiveDate.Format("2006-01-02"))
	fmt.Fprintf(&buf, "Households:     %d\n", len(batch.Results))
	fmt.Fprintln(&buf)

	for _, r := range batch.Results {
		c.writeEmployee(&buf, r)
	}

	if batch.Comparisons != nil {
		tf := compare.TableFormatter{}
		buf.WriteString(tf.Format(batch.Comparisons))
	}
	return buf.Bytes(), nil
}

func (c ConsoleFormatter) writeEmployee(buf *bytes.Buffer, r engine.EmployeeResult) {
	fmt.Fprintf(buf, "EMPLOYEE %s\n", r.EmployeeID)
	fmt.Fprintln(buf, strings.Repeat("-", 50))

	if r.Gap != "" {
		fmt.Fprintf(buf, "  unresolved: %s\n\n", r.Gap)
		return
	}
	if r.RatingArea != nil {
		fmt.Fprintf(buf, "  Rating area:  %s %d\n", r.RatingArea.StateCode, r.RatingArea.Number)
	}
	if a := r.Affordability; a != nil {
		fmt.Fprintf(buf, "  LCSP:         %s (%s, %s)\n", a.LCSP.PlanID, a.LCSP.MetalLevel, FormatCurrency(a.LCSP.Premium))
		fmt.Fprintf(buf, "  Min employer: %s/mo\n", FormatCurrency(a.MinEmployerContribution))
		switch {
		case a.Affordable == nil:
			fmt.Fprintln(buf, "  Affordable:   n/a (no income reported)")
		case *a.Affordable:
			fmt.Fprintln(buf, "  Affordable:   yes")
		default:
			fmt.Fprintln(buf, "  Affordable:   NO")
		}
	}
	for _, q := range r.Quotes {
		excluded := ""
		if q.ExcludedDependents > 0 {
			excluded = fmt.Sprintf("  (%d dependents excluded by cap)", q.ExcludedDependents)
		}
		tier := ""
		if q.FamilyTier {
			tier = "  [family-tier]"
		}
		fmt.Fprintf(buf, "  %-14s %s/mo for %d member(s)%s%s\n",
			q.PlanID, FormatCurrency(q.TotalMonthly), len(q.Members), excluded, tier)
	}
	for _, gap := range r.QuoteGaps {
		fmt.Fprintf(buf, "  skipped: %s\n", gap)
	}
	fmt.Fprintln(buf)
}
