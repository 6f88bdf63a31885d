// Package progress provides the weekly progress matrix tab.
package progress

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/leap-dashboard-tui/internal/app"
	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/metrics"
)

// sortOrder is how the matrix rows are ordered.
type sortOrder int

const (
	sortRoster sortOrder = iota
	sortCompletion
	sortEngagement
)

func (s sortOrder) String() string {
	switch s {
	case sortCompletion:
		return "lowest completion first"
	case sortEngagement:
		return "lowest engagement first"
	default:
		return "roster order"
	}
}

type keyMap struct {
	Up   key.Binding
	Down key.Binding
	Sort key.Binding
	Open key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Sort: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Open: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "find in directory")),
	}
}

// Model represents the progress matrix tab state.
type Model struct {
	state  *app.State
	keys   keyMap
	rows   []models.Participant
	sort   sortOrder
	cursor int
	offset int
	width  int
	height int
}

// New creates a new progress model.
func New(state *app.State) *Model {
	return &Model{
		state: state,
		keys:  defaultKeyMap(),
	}
}

// Init initializes the progress tab.
func (m *Model) Init() tea.Cmd {
	m.refresh()
	return nil
}

// Update handles messages for the progress tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.RosterChangedMsg:
		m.refresh()
	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Sort):
		m.sort = (m.sort + 1) % 3
		m.refresh()
	case key.Matches(msg, m.keys.Open):
		if m.cursor < len(m.rows) {
			p := m.rows[m.cursor]
			return app.Emit(app.NavigateMsg{View: models.ViewParticipants, Filter: &metrics.Filter{Search: p.Email}})
		}
	}
	m.scroll()
	return nil
}

// refresh reloads the rows from state in the current sort order.
func (m *Model) refresh() {
	roster := m.state.GetRoster()
	rows := roster.Participants

	switch m.sort {
	case sortCompletion:
		slices.SortStableFunc(rows, func(a, b models.Participant) int {
			return a.CompletionRate - b.CompletionRate
		})
	case sortEngagement:
		slices.SortStableFunc(rows, func(a, b models.Participant) int {
			return a.EngagementScore - b.EngagementScore
		})
	}

	m.rows = rows
	m.cursor = min(m.cursor, max(len(rows)-1, 0))
	m.scroll()
}

// visibleRows is how many participant rows fit below the header.
func (m *Model) visibleRows() int {
	return max(m.height-12, 3)
}

func (m *Model) scroll() {
	visible := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	m.offset = max(min(m.offset, len(m.rows)-visible), 0)
}

// SetSize sets the available size for the progress tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.scroll()
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Up, m.keys.Down, m.keys.Sort, m.keys.Open}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down},
		{m.keys.Sort, m.keys.Open},
	}
}
