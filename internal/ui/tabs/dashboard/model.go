// Package dashboard provides the program overview tab.
package dashboard

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/leap-dashboard-tui/internal/app"
	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/metrics"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/components"
)

// eligibilityWeek is the first week the certificate shortcut is offered.
const eligibilityWeek = 10

// keyMap defines the key bindings specific to the overview tab.
type keyMap struct {
	NextCard    key.Binding
	PrevCard    key.Binding
	Open        key.Binding
	Eligibility key.Binding
}

// defaultKeyMap returns the default key bindings for the overview tab.
func defaultKeyMap() keyMap {
	return keyMap{
		NextCard: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("→/l", "next card"),
		),
		PrevCard: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("←/h", "prev card"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open card"),
		),
		Eligibility: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "check eligibility"),
		),
	}
}

// card is a headline number that opens a filtered view.
type card struct {
	label  string
	value  string
	hint   string
	view   models.View
	filter *metrics.Filter
}

// Model represents the overview tab state.
type Model struct {
	state      *app.State
	spinner    components.LoadingSpinner
	keys       keyMap
	viewport   viewport.Model
	completion components.CompletionBar
	width      int
	height     int
	selected   int
}

// New creates a new overview model.
func New(state *app.State) *Model {
	return &Model{
		state:      state,
		spinner:    components.NewSpinner("Loading cohort..."),
		keys:       defaultKeyMap(),
		viewport:   viewport.New(0, 0),
		completion: components.NewCompletionBar(40),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick()
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case app.RosterChangedMsg:
		cmds = append(cmds, m.completion.SetPercent(float64(m.state.GetStats().AvgCompletionRate)))

	case components.AnimationTickMsg:
		var cmd tea.Cmd
		m.completion, cmd = m.completion.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		if m.state.IsInitialLoading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	cards := m.cards()

	switch {
	case key.Matches(msg, m.keys.NextCard):
		m.selected = (m.selected + 1) % len(cards)
	case key.Matches(msg, m.keys.PrevCard):
		m.selected = (m.selected - 1 + len(cards)) % len(cards)
	case key.Matches(msg, m.keys.Open):
		c := cards[m.selected]
		return app.Emit(app.NavigateMsg{View: c.view, Filter: c.filter})
	case key.Matches(msg, m.keys.Eligibility):
		if m.state.CurrentWeek() < eligibilityWeek {
			return app.Notify(app.ToastInfo, fmt.Sprintf("Certificates open in week %d.", eligibilityWeek))
		}
		return app.Emit(app.NavigateMsg{View: models.ViewCertificates})
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

// cards builds the headline cards from the current stats.
func (m *Model) cards() []card {
	stats := m.state.GetStats()
	return []card{
		{
			label:  "Participants",
			value:  fmt.Sprintf("%d", stats.TotalParticipants),
			hint:   fmt.Sprintf("%d active", stats.ActiveParticipants),
			view:   models.ViewParticipants,
			filter: &metrics.Filter{},
		},
		{
			label: "Completion",
			value: fmt.Sprintf("%d%%", stats.AvgCompletionRate),
			hint:  "Assignments & journals",
			view:  models.ViewProgress,
		},
		{
			label:  "Flags",
			value:  fmt.Sprintf("%d", stats.FlaggedCount),
			hint:   "Low engagement",
			view:   models.ViewParticipants,
			filter: &metrics.Filter{Level: models.EngagementLow},
		},
		{
			label: "Cycle",
			value: fmt.Sprintf("Week %d", stats.CurrentWeek),
			hint:  fmt.Sprintf("of %d weeks", models.TotalWeeks),
			view:  models.ViewProgress,
		},
	}
}

// SetSize sets the available size for the overview.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.NextCard,
		m.keys.PrevCard,
		m.keys.Open,
		m.keys.Eligibility,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.NextCard, m.keys.PrevCard},
		{m.keys.Open, m.keys.Eligibility},
	}
}
