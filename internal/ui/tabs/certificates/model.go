// Package certificates provides the certification management tab.
package certificates

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/leap-dashboard-tui/internal/app"
	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/metrics"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/styles"
)

// closestShown is how many ineligible participants are listed as nearly there.
const closestShown = 5

// certificateSubject is the email subject used for the graduation message.
const certificateSubject = "Your Leap Leadership Program Certificate"

type keyMap struct {
	Issue    key.Binding
	Preview  key.Binding
	Download key.Binding
	EmailAll key.Binding
	Email    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Issue:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "issue certificate")),
		Preview:  key.NewBinding(key.WithKeys("enter", "p"), key.WithHelp("enter", "preview")),
		Download: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "download")),
		EmailAll: key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "email all eligible")),
		Email:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "email participant")),
	}
}

// Model represents the certificates tab state.
type Model struct {
	state      *app.State
	table      table.Model
	keys       keyMap
	eligible   []models.Participant
	ineligible []models.Participant
	width      int
	height     int
}

// New creates a new certificates model.
func New(state *app.State) *Model {
	t := table.New(
		table.WithColumns(columns(100)),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	t.SetStyles(styles.TableStyles())

	return &Model{
		state: state,
		table: t,
		keys:  defaultKeyMap(),
	}
}

func columns(width int) []table.Column {
	nameWidth := min(max((width-40)/2, 16), 28)
	emailWidth := min(max(width-40-nameWidth, 20), 36)
	return []table.Column{
		{Title: "Participant", Width: nameWidth},
		{Title: "Email", Width: emailWidth},
		{Title: "Score", Width: 6},
		{Title: "Certificate", Width: 12},
	}
}

// Init initializes the certificates tab.
func (m *Model) Init() tea.Cmd {
	m.refresh()
	return nil
}

// Update handles messages for the certificates tab.
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
	case key.Matches(msg, m.keys.EmailAll):
		if len(m.eligible) == 0 {
			return app.Notify(app.ToastInfo, "No participants currently meet the graduation criteria.")
		}
		return m.compose(m.eligible)
	}

	p, ok := m.selected()
	switch {
	case key.Matches(msg, m.keys.Issue):
		if !ok {
			return nil
		}
		if p.CertificateIssued {
			return app.Notify(app.ToastInfo, "Certificate already issued to "+p.FullName)
		}
		return app.Emit(app.IssueCertificateMsg{ParticipantID: p.ID, Name: p.FullName})
	case key.Matches(msg, m.keys.Preview):
		if ok {
			return app.Notify(app.ToastInfo, "Generating PDF preview for "+p.FullName+"...")
		}
	case key.Matches(msg, m.keys.Download):
		if ok {
			return app.Notify(app.ToastSuccess, "Downloading certificate for "+p.FullName+"...")
		}
	case key.Matches(msg, m.keys.Email):
		if ok {
			return m.compose([]models.Participant{p})
		}
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) compose(recipients []models.Participant) tea.Cmd {
	return app.Emit(app.OpenComposeMsg{
		Channel:    models.ChannelEmail,
		Recipients: recipients,
		Subject:    certificateSubject,
		Body:       m.state.GetSettings().Templates.GraduationCongrats,
	})
}

func (m *Model) selected() (models.Participant, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.eligible) {
		return models.Participant{}, false
	}
	return m.eligible[i], true
}

// refresh splits the roster at the certification threshold.
func (m *Model) refresh() {
	roster := m.state.GetRoster()
	threshold := m.state.GetSettings().Policy.CertificationThreshold
	m.eligible, m.ineligible = metrics.Eligibility(roster.Participants, threshold)

	rows := make([]table.Row, 0, len(m.eligible))
	for _, p := range m.eligible {
		status := "Pending"
		if p.CertificateIssued {
			status = "✓ Issued"
		}
		rows = append(rows, table.Row{p.FullName, p.Email, fmt.Sprintf("%d%%", p.CompletionRate), status})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// closest returns the ineligible participants nearest the threshold.
func (m *Model) closest() []models.Participant {
	out := slices.Clone(m.ineligible)
	slices.SortStableFunc(out, func(a, b models.Participant) int {
		return cmp.Compare(b.CompletionRate, a.CompletionRate)
	})
	return out[:min(len(out), closestShown)]
}

func (m *Model) issuedCount() int {
	n := 0
	for _, p := range m.eligible {
		if p.CertificateIssued {
			n++
		}
	}
	return n
}

// SetSize sets the available size for the certificates tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(height-22, 3))
	m.table.SetColumns(columns(width))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Issue, m.keys.Preview, m.keys.Download, m.keys.Email, m.keys.EmailAll}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Issue, m.keys.Preview, m.keys.Download},
		{m.keys.Email, m.keys.EmailAll},
	}
}
