package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and key presses.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.batch != nil {
			m.results.SetHeight(m.tableHeight())
		}
		return m, nil

	case BatchCompleteMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.batch = msg.Batch
		m.results = resultsTable(m.batch, m.tableHeight())
		m.scene = SceneResults
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.scene == SceneDetail {
			m.scene = SceneResults
		}
		return m, nil

	case "enter":
		if m.scene == SceneResults && m.batch != nil && len(m.batch.Results) > 0 {
			m.selected = m.results.Cursor()
			m.scene = SceneDetail
		}
		return m, nil
	}

	if m.scene == SceneResults {
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) tableHeight() int {
	h := m.height - 8
	if h < 3 {
		h = 3
	}
	return h
}
