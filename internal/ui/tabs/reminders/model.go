// Package reminders provides the reminders and accountability tab.
package reminders

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/leap-dashboard-tui/internal/app"
	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/metrics"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/reminders"
)

// watchlistShown is how many watchlist entries are listed before "+N more".
const watchlistShown = 5

type keyMap struct {
	Up            key.Binding
	Down          key.Binding
	Message       key.Binding
	EmailAll      key.Binding
	MessageRisk   key.Binding
	NudgeNow      key.Binding
	ScheduleNudge key.Binding
	PlanRelease   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:          key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Message:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "message participant")),
		EmailAll:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "email weekly release")),
		MessageRisk:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "message watchlist")),
		NudgeNow:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "send nudge now")),
		ScheduleNudge: key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "schedule nudge")),
		PlanRelease:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "schedule release")),
	}
}

// Model represents the reminders tab state.
type Model struct {
	state     *app.State
	keys      keyMap
	watchlist []models.Participant
	cursor    int
	width     int
	height    int
}

// New creates a new reminders model.
func New(state *app.State) *Model {
	return &Model{
		state: state,
		keys:  defaultKeyMap(),
	}
}

// Init initializes the reminders tab.
func (m *Model) Init() tea.Cmd {
	m.refresh()
	return nil
}

// Update handles messages for the reminders tab.
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
	week := m.state.CurrentWeek()
	templates := m.state.GetSettings().Templates

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < min(len(m.watchlist), watchlistShown)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Message):
		if m.cursor < len(m.watchlist) {
			return app.Emit(app.OpenComposeMsg{
				Channel:    models.ChannelWhatsApp,
				Recipients: []models.Participant{m.watchlist[m.cursor]},
				Body:       templates.AccountabilityNudge,
			})
		}
	case key.Matches(msg, m.keys.EmailAll):
		roster := m.state.GetRoster()
		return app.Emit(app.OpenComposeMsg{
			Channel:    models.ChannelEmail,
			Recipients: roster.Participants,
			Subject:    releaseTemplate(week),
			Body:       templates.WeeklyRelease,
		})
	case key.Matches(msg, m.keys.MessageRisk):
		if len(m.watchlist) == 0 {
			return app.Notify(app.ToastInfo, "Everyone is checking in. The watchlist is empty.")
		}
		return app.Emit(app.OpenComposeMsg{
			Channel:    models.ChannelWhatsApp,
			Recipients: m.watchlist,
			Body:       templates.AccountabilityNudge,
		})
	case key.Matches(msg, m.keys.NudgeNow), key.Matches(msg, m.keys.ScheduleNudge):
		if len(m.watchlist) == 0 {
			return app.Notify(app.ToastInfo, "Everyone is checking in. The watchlist is empty.")
		}
		req := reminders.Request{
			Template:     nudgeTemplate(week),
			Body:         templates.AccountabilityNudge,
			Channel:      models.ChannelWhatsApp,
			RecipientIDs: ids(m.watchlist),
		}
		now := key.Matches(msg, m.keys.NudgeNow)
		if !now {
			_, upcoming := m.state.GetReminders()
			req.At = upcoming.Nudge
		}
		return app.Emit(app.ReminderRequestMsg{Request: req, Now: now})
	case key.Matches(msg, m.keys.PlanRelease):
		_, upcoming := m.state.GetReminders()
		roster := m.state.GetRoster()
		next := min(week+1, models.TotalWeeks)
		return app.Emit(app.ReminderRequestMsg{Request: reminders.Request{
			Template:     releaseTemplate(next),
			Body:         templates.WeeklyRelease,
			Channel:      models.ChannelWhatsApp,
			RecipientIDs: ids(roster.Participants),
			At:           upcoming.ContentRelease,
		}})
	}
	return nil
}

func releaseTemplate(week int) string {
	return fmt.Sprintf("Week %d Content Release", week)
}

func nudgeTemplate(week int) string {
	return fmt.Sprintf("Week %d Accountability Nudge", week)
}

func ids(ps []models.Participant) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

// refresh recomputes the watchlist from the roster and thresholds.
func (m *Model) refresh() {
	roster := m.state.GetRoster()
	minimum := m.state.GetSettings().Thresholds.AccountabilityMinimum
	m.watchlist = metrics.Watchlist(roster.Participants, minimum)
	m.cursor = min(m.cursor, max(min(len(m.watchlist), watchlistShown)-1, 0))
}

// nextSends returns the upcoming automatic sends, or zero times when unknown.
func (m *Model) nextSends() (release, nudge time.Time) {
	_, upcoming := m.state.GetReminders()
	return upcoming.ContentRelease, upcoming.Nudge
}

// SetSize sets the available size for the reminders tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.EmailAll,
		m.keys.MessageRisk,
		m.keys.NudgeNow,
		m.keys.ScheduleNudge,
		m.keys.PlanRelease,
		m.keys.Message,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down, m.keys.Message},
		{m.keys.EmailAll, m.keys.MessageRisk},
		{m.keys.NudgeNow, m.keys.ScheduleNudge, m.keys.PlanRelease},
	}
}
