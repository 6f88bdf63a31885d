// Package participants provides the participant directory tab.
package participants

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/leap-dashboard-tui/internal/app"
	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/metrics"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/styles"
)

// keyMap defines the key bindings specific to the participants tab.
type keyMap struct {
	Search     key.Binding
	Level      key.Binding
	Flagged    key.Binding
	Clear      key.Binding
	Profile    key.Binding
	Email      key.Binding
	WhatsApp   key.Binding
	EmailAll   key.Binding
	MessageAll key.Binding
	CopyEmails key.Binding
	CopyPhones key.Binding
	Close      key.Binding
}

// defaultKeyMap returns the default key bindings for the participants tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Level:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "cycle level")),
		Flagged:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "flagged only")),
		Clear:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear filters")),
		Profile:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "profile")),
		Email:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "email")),
		WhatsApp:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "whatsapp")),
		EmailAll:   key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "email all shown")),
		MessageAll: key.NewBinding(key.WithKeys("W"), key.WithHelp("W", "message all shown")),
		CopyEmails: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy emails")),
		CopyPhones: key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "copy numbers")),
		Close:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
	}
}

// Model represents the participants tab state.
type Model struct {
	state     *app.State
	table     table.Model
	search    textinput.Model
	keys      keyMap
	rows      []models.Participant
	profile   *models.Participant
	searching bool
	width     int
	height    int
}

// New creates a new participants model.
func New(state *app.State) *Model {
	search := textinput.New()
	search.Placeholder = "Search by name or email..."
	search.Prompt = "/ "
	search.CharLimit = 100
	search.Width = 40

	t := table.New(
		table.WithColumns(columns(100)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	t.SetStyles(styles.TableStyles())

	return &Model{
		state:  state,
		table:  t,
		search: search,
		keys:   defaultKeyMap(),
	}
}

func columns(width int) []table.Column {
	nameWidth := min(max((width-50)/2, 16), 28)
	emailWidth := min(max(width-50-nameWidth, 20), 36)
	return []table.Column{
		{Title: "Name", Width: nameWidth},
		{Title: "Email", Width: emailWidth},
		{Title: "Level", Width: 8},
		{Title: "Completion", Width: 10},
		{Title: "Score", Width: 6},
		{Title: "Flag", Width: 4},
	}
}

// Init initializes the participants tab.
func (m *Model) Init() tea.Cmd {
	m.refresh()
	return nil
}

// CapturingInput reports whether the search box has focus.
func (m *Model) CapturingInput() bool {
	return m.searching
}

// Update handles messages for the participants tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.RosterChangedMsg:
		m.refresh()
		if m.profile != nil {
			roster := m.state.GetRoster()
			if p, ok := roster.Find(m.profile.ID); ok {
				m.profile = p
			} else {
				m.profile = nil
			}
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.searching:
			return m, m.updateSearch(msg)
		case m.profile != nil:
			return m, m.updateProfile(msg)
		}
		return m, m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	filter := m.state.GetFilter()

	switch {
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(filter.Search)
		m.search.CursorEnd()
		return m.search.Focus()

	case key.Matches(msg, m.keys.Level):
		filter.Level = nextLevel(filter.Level)
		m.state.SetFilter(filter)
		m.refresh()

	case key.Matches(msg, m.keys.Flagged):
		filter.FlaggedOnly = !filter.FlaggedOnly
		m.state.SetFilter(filter)
		m.refresh()

	case key.Matches(msg, m.keys.Clear):
		m.state.SetFilter(metrics.Filter{})
		m.refresh()

	case key.Matches(msg, m.keys.Profile):
		if p, ok := m.selected(); ok {
			m.profile = &p
		}

	case key.Matches(msg, m.keys.Email), key.Matches(msg, m.keys.WhatsApp):
		p, ok := m.selected()
		if !ok {
			return nil
		}
		return compose(channelFor(msg, m.keys.Email), []models.Participant{p})

	case key.Matches(msg, m.keys.EmailAll), key.Matches(msg, m.keys.MessageAll):
		return compose(channelFor(msg, m.keys.EmailAll), m.rows)

	case key.Matches(msg, m.keys.CopyEmails):
		return m.copyContacts(models.ChannelEmail)

	case key.Matches(msg, m.keys.CopyPhones):
		return m.copyContacts(models.ChannelWhatsApp)

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "enter":
		m.searching = false
		m.search.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)

	filter := m.state.GetFilter()
	if filter.Search != m.search.Value() {
		filter.Search = m.search.Value()
		m.state.SetFilter(filter)
		m.refresh()
	}
	return cmd
}

func (m *Model) updateProfile(msg tea.KeyMsg) tea.Cmd {
	p := *m.profile
	switch {
	case key.Matches(msg, m.keys.Close):
		m.profile = nil
	case key.Matches(msg, m.keys.Email), key.Matches(msg, m.keys.WhatsApp):
		m.profile = nil
		return compose(channelFor(msg, m.keys.Email), []models.Participant{p})
	}
	return nil
}

func channelFor(msg tea.KeyMsg, email key.Binding) models.Channel {
	if key.Matches(msg, email) {
		return models.ChannelEmail
	}
	return models.ChannelWhatsApp
}

func compose(channel models.Channel, recipients []models.Participant) tea.Cmd {
	return app.Emit(app.OpenComposeMsg{Channel: channel, Recipients: recipients})
}

func (m *Model) copyContacts(channel models.Channel) tea.Cmd {
	text := app.ContactList(m.rows, channel)
	if text == "" {
		return app.Notify(app.ToastWarning, "No contacts to copy")
	}
	label := fmt.Sprintf("%d email addresses", len(m.rows))
	if channel == models.ChannelWhatsApp {
		label = fmt.Sprintf("%d phone numbers", len(m.rows))
	}
	return app.Emit(app.CopyToClipboardMsg{Text: text, Label: label})
}

// nextLevel cycles All, High, Medium, Low.
func nextLevel(level models.EngagementLevel) models.EngagementLevel {
	if level == "" {
		return models.EngagementLevels[0]
	}
	for i, l := range models.EngagementLevels {
		if l == level && i+1 < len(models.EngagementLevels) {
			return models.EngagementLevels[i+1]
		}
	}
	return ""
}

func (m *Model) selected() (models.Participant, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return models.Participant{}, false
	}
	return m.rows[i], true
}

// refresh rebuilds the table from the filtered roster.
func (m *Model) refresh() {
	m.rows = m.state.FilteredParticipants()
	rows := make([]table.Row, 0, len(m.rows))

	for _, p := range m.rows {
		flag := ""
		if p.IsFlagged {
			flag = "⚑"
		}
		rows = append(rows, table.Row{
			p.FullName,
			p.Email,
			string(p.EngagementLevel),
			fmt.Sprintf("%d%%", p.CompletionRate),
			fmt.Sprintf("%d", p.EngagementScore),
			flag,
		})
	}

	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// SetSize sets the available size for the participants tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(height-10, 3))
	m.table.SetColumns(columns(width))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.profile != nil {
		return []key.Binding{m.keys.Email, m.keys.WhatsApp, m.keys.Close}
	}
	return []key.Binding{
		m.keys.Search,
		m.keys.Level,
		m.keys.Flagged,
		m.keys.Profile,
		m.keys.Email,
		m.keys.WhatsApp,
		m.keys.EmailAll,
		m.keys.CopyEmails,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Search, m.keys.Level, m.keys.Flagged, m.keys.Clear},
		{m.keys.Profile, m.keys.Email, m.keys.WhatsApp},
		{m.keys.EmailAll, m.keys.MessageAll},
		{m.keys.CopyEmails, m.keys.CopyPhones},
	}
}
