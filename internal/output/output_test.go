package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glovebenefits/ichracalc/internal/affordability"
	"github.com/glovebenefits/ichracalc/internal/domain"
	"github.com/glovebenefits/ichracalc/internal/engine"
	"github.com/glovebenefits/ichracalc/internal/rates"
)

func sampleBatch() *engine.BatchResult {
	affordable := true
	area := domain.RatingArea{StateCode: "TX", Number: 8}
	return &engine.BatchResult{
		RunID:         uuid.New(),
		EffectiveDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Results: []engine.EmployeeResult{
			{
				EmployeeID: "E1",
				RatingArea: &area,
				Affordability: &affordability.Check{
					LCSP: affordability.LowestCostResult{
						PlanID:     "30000TX0010001",
						MetalLevel: domain.MetalSilver,
						RatingArea: area,
						AgeBand:    "40",
						Premium:    decimal.RequireFromString("250.00"),
					},
					MinEmployerContribution: decimal.Zero,
					Affordable:              &affordable,
				},
				Quotes: []rates.Quote{
					{
						PlanID:       "11111TX0010001",
						RatingArea:   area,
						Members:      []rates.MemberPremium{{Role: domain.RoleEmployee, Age: 40, AgeBand: "40", Premium: decimal.RequireFromString("500.00")}},
						TotalMonthly: decimal.RequireFromString("500.00"),
					},
				},
			},
			{
				EmployeeID: "E2",
				Gap:        "zip not found: 99999",
			},
		},
	}
}

func TestForFormat(t *testing.T) {
	for _, name := range []string{"console", "csv", "json", ""} {
		f, err := ForFormat(name)
		require.NoError(t, err, name)
		require.NotNil(t, f)
	}
	_, err := ForFormat("xml")
	assert.Error(t, err)
}

func TestConsoleFormat(t *testing.T) {
	out, err := (ConsoleFormatter{}).Format(sampleBatch())
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "ICHRA CENSUS ANALYSIS")
	assert.Contains(t, text, "EMPLOYEE E1")
	assert.Contains(t, text, "TX 8")
	assert.Contains(t, text, "30000TX0010001")
	assert.Contains(t, text, "$500.00/mo")
	assert.Contains(t, text, "unresolved: zip not found: 99999")
}

func TestCSVFormat(t *testing.T) {
	out, err := (CSVFormatter{}).Format(sampleBatch())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "EmployeeID,State,RatingArea,PlanID"))
	assert.Contains(t, lines[1], "E1,TX,8,11111TX0010001,500.00")
	// A row with no quotes still appears, carrying the gap.
	assert.Contains(t, lines[2], "E2")
	assert.Contains(t, lines[2], "zip not found: 99999")
}

func TestJSONFormatRoundTrips(t *testing.T) {
	batch := sampleBatch()
	out, err := (JSONFormatter{}).Format(batch)
	require.NoError(t, err)

	var decoded engine.BatchResult
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, batch.RunID, decoded.RunID)
	require.Len(t, decoded.Results, 2)
	assert.Equal(t, "E1", decoded.Results[0].EmployeeID)
	assert.Equal(t, "zip not found: 99999", decoded.Results[1].Gap)
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$250.00", FormatCurrency(decimal.RequireFromString("250")))
	assert.Equal(t, "$1780.50", FormatCurrency(decimal.RequireFromString("1780.5")))
}
