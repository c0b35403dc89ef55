// Package tui is an interactive browser for census batch results.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/glovebenefits/ichracalc/internal/engine"
	"github.com/glovebenefits/ichracalc/internal/output"
)

// Scene identifies which view is active.
type Scene int

const (
	SceneLoading Scene = iota
	SceneResults
	SceneDetail
)

// BatchCompleteMsg carries the finished batch into the model.
type BatchCompleteMsg struct {
	Batch *engine.BatchResult
	Err   error
}

// Runner produces the batch the browser displays. It runs on the tea
// command goroutine so the UI stays responsive while the pipeline works.
type Runner func() (*engine.BatchResult, error)

// Model is the application state.
type Model struct {
	run   Runner
	scene Scene

	batch    *engine.BatchResult
	results  table.Model
	selected int

	width  int
	height int
	err    error
}

// NewModel builds the browser around a batch runner.
func NewModel(run Runner) Model {
	return Model{
		run:    run,
		scene:  SceneLoading,
		width:  80,
		height: 24,
	}
}

// Init kicks off the batch run.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg {
		batch, err := m.run()
		return BatchCompleteMsg{Batch: batch, Err: err}
	}
}

// resultsTable builds the employee summary table from the batch.
func resultsTable(batch *engine.BatchResult, height int) table.Model {
	columns := []table.Column{
		{Title: "Employee", Width: 14},
		{Title: "Area", Width: 8},
		{Title: "LCSP", Width: 16},
		{Title: "Min ER", Width: 10},
		{Title: "Affordable", Width: 10},
		{Title: "Quotes", Width: 7},
		{Title: "Gaps", Width: 5},
	}

	rows := make([]table.Row, 0, len(batch.Results))
	for _, r := range batch.Results {
		area, lcsp, minER, affordable := "-", "-", "-", "-"
		if r.RatingArea != nil {
			area = fmt.Sprintf("%s %d", r.RatingArea.StateCode, r.RatingArea.Number)
		}
		if a := r.Affordability; a != nil {
			lcsp = a.LCSP.PlanID
			minER = output.FormatCurrency(a.MinEmployerContribution)
			if a.Affordable != nil {
				affordable = boolWord(*a.Affordable)
			}
		}
		gaps := len(r.QuoteGaps)
		if r.Gap != "" {
			gaps++
		}
		rows = append(rows, table.Row{
			r.EmployeeID, area, lcsp, minER, affordable,
			fmt.Sprintf("%d", len(r.Quotes)),
			fmt.Sprintf("%d", gaps),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	t.SetStyles(tableStyles())
	return t
}

func boolWord(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
