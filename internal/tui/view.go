package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/glovebenefits/ichracalc/internal/output"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(16)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	return s
}

// View renders the active scene.
func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render("error: "+m.err.Error()) + "\n\n" + statusStyle.Render("q to quit")
	}

	switch m.scene {
	case SceneLoading:
		return titleStyle.Render("ICHRA Census") + "\n\n  resolving census...\n"
	case SceneDetail:
		return m.viewDetail()
	default:
		return m.viewResults()
	}
}

func (m Model) viewResults() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("ICHRA Census — %d households, effective %s",
		len(m.batch.Results), m.batch.EffectiveDate.Format("2006-01-02"))))
	sb.WriteString("\n\n")
	sb.WriteString(m.results.View())
	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render("↑/↓ navigate · enter detail · q quit"))
	return sb.String()
}

func (m Model) viewDetail() string {
	r := m.batch.Results[m.selected]
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Employee " + r.EmployeeID))
	sb.WriteString("\n\n")

	if r.Gap != "" {
		sb.WriteString(warnStyle.Render("  unresolved: " + r.Gap))
		sb.WriteString("\n\n")
		sb.WriteString(statusStyle.Render("esc back · q quit"))
		return sb.String()
	}

	if r.RatingArea != nil {
		sb.WriteString(labelStyle.Render("  Rating area"))
		sb.WriteString(fmt.Sprintf("%s %d\n", r.RatingArea.StateCode, r.RatingArea.Number))
	}
	if a := r.Affordability; a != nil {
		sb.WriteString(labelStyle.Render("  LCSP"))
		sb.WriteString(fmt.Sprintf("%s at %s/mo\n", a.LCSP.PlanID, output.FormatCurrency(a.LCSP.Premium)))
		sb.WriteString(labelStyle.Render("  Min employer"))
		sb.WriteString(output.FormatCurrency(a.MinEmployerContribution) + "/mo\n")
		if a.Affordable != nil {
			sb.WriteString(labelStyle.Render("  Affordable"))
			sb.WriteString(boolWord(*a.Affordable) + "\n")
		}
	}

	if len(r.Quotes) > 0 {
		sb.WriteString("\n  Quotes\n")
		for _, q := range r.Quotes {
			note := ""
			if q.ExcludedDependents > 0 {
				note = fmt.Sprintf(" (%d dependents excluded)", q.ExcludedDependents)
			}
			if q.FamilyTier {
				note += " [family-tier]"
			}
			sb.WriteString(fmt.Sprintf("    %-16s %s/mo, %d member(s)%s\n",
				q.PlanID, output.FormatCurrency(q.TotalMonthly), len(q.Members), note))
		}
	}
	for _, gap := range r.QuoteGaps {
		sb.WriteString(warnStyle.Render("    skipped: "+gap) + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render("esc back · q quit"))
	return sb.String()
}
