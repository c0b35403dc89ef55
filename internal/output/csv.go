package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/glovebenefits/ichracalc/internal/engine"
)

// CSVFormatter emits one row per employee/plan quote, suitable for
// loading into a spreadsheet.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(batch *engine.BatchResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{
		"EmployeeID", "State", "RatingArea", "PlanID",
		"MonthlyPremium", "RatedMembers", "ExcludedDependents", "FamilyTier",
		"LCSPPlanID", "LCSPPremium", "MinEmployerContribution", "Affordable", "Gap",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, r := range batch.Results {
		state, areaNum := "", ""
		if r.RatingArea != nil {
			state = r.RatingArea.StateCode
			areaNum = strconv.Itoa(r.RatingArea.Number)
		}
		lcspID, lcspPremium, minER, affordable := "", "", "", ""
		if a := r.Affordability; a != nil {
			lcspID = a.LCSP.PlanID
			lcspPremium = a.LCSP.Premium.StringFixed(2)
			minER = a.MinEmployerContribution.StringFixed(2)
			if a.Affordable != nil {
				affordable = strconv.FormatBool(*a.Affordable)
			}
		}

		if len(r.Quotes) == 0 {
			row := []string{r.EmployeeID, state, areaNum, "", "", "", "", "",
				lcspID, lcspPremium, minER, affordable, firstGap(r)}
			if err := w.Write(row); err != nil {
				return nil, err
			}
			continue
		}
		for _, q := range r.Quotes {
			row := []string{
				r.EmployeeID, state, areaNum, q.PlanID,
				q.TotalMonthly.StringFixed(2),
				strconv.Itoa(len(q.Members)),
				strconv.Itoa(q.ExcludedDependents),
				strconv.FormatBool(q.FamilyTier),
				lcspID, lcspPremium, minER, affordable, "",
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func firstGap(r engine.EmployeeResult) string {
	if r.Gap != "" {
		return r.Gap
	}
	if len(r.QuoteGaps) > 0 {
		return fmt.Sprintf("%s (+%d more)", r.QuoteGaps[0], len(r.QuoteGaps)-1)
	}
	return ""
}
