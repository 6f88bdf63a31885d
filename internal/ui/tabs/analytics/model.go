// Package analytics provides the cohort analytics tab.
package analytics

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/leap-dashboard-tui/internal/app"
	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/metrics"
)

// scope selects which weeks the completion chart covers.
type scope int

const (
	scopeToDate scope = iota
	scopeProgram
)

func (s scope) Next() scope {
	if s == scopeToDate {
		return scopeProgram
	}
	return scopeToDate
}

func (s scope) String() string {
	if s == scopeProgram {
		return "All 12 weeks"
	}
	return "To date"
}

type keyMap struct {
	ToggleScope key.Binding
	Flagged     key.Binding
	Up          key.Binding
	Down        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ToggleScope: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle week range"),
		),
		Flagged: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "open flagged participants"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// report is everything the tab derives from the roster.
type report struct {
	week         int
	distribution models.EngagementBreakdown
	weekly       []models.WeekCompletion
	submissions  models.SubmissionSummary
	watchlist    []models.Participant
	below        []models.Participant
	missed       []models.Participant
}

// Model represents the analytics tab state.
type Model struct {
	state    *app.State
	keys     keyMap
	viewport viewport.Model
	scope    scope
	report   report
	width    int
	height   int
}

// New creates a new analytics model.
func New(state *app.State) *Model {
	return &Model{
		state:    state,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the analytics tab.
func (m *Model) Init() tea.Cmd {
	m.refresh()
	return nil
}

// Update handles messages for the analytics tab.
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
	case key.Matches(msg, m.keys.ToggleScope):
		m.scope = m.scope.Next()
	case key.Matches(msg, m.keys.Flagged):
		return app.Emit(app.NavigateMsg{View: models.ViewParticipants, Filter: &metrics.Filter{FlaggedOnly: true}})
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

// refresh recomputes the report from the roster and current thresholds.
func (m *Model) refresh() {
	roster := m.state.GetRoster()
	thresholds := m.state.GetSettings().Thresholds
	ps := roster.Participants

	m.report = report{
		week:         roster.CurrentWeek,
		distribution: metrics.Distribution(ps),
		weekly:       metrics.WeeklyCompletion(ps),
		submissions:  metrics.Submissions(ps, roster.CurrentWeek),
		watchlist:    metrics.Watchlist(ps, thresholds.AccountabilityMinimum),
		below:        metrics.BelowCompletion(ps, thresholds.PassingGrade),
		missed:       metrics.MissedAtLeast(ps, thresholds.AutoFlagMissedWeeks),
	}
}

// chartWeeks returns the weeks the completion chart shows for the current scope.
func (m *Model) chartWeeks() []models.WeekCompletion {
	if m.scope == scopeProgram {
		return m.report.weekly
	}
	return m.report.weekly[:min(max(m.report.week, 0), len(m.report.weekly))]
}

// SetSize sets the available size for the analytics tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ToggleScope,
		m.keys.Flagged,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleScope, m.keys.Flagged},
		{m.keys.Up, m.keys.Down},
	}
}
