// Package settings provides the program settings and audit trail tab.
package settings

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/leap-dashboard-tui/internal/app"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/settings"
)

// pane is which half of the tab is shown.
type pane int

const (
	paneConfig pane = iota
	paneAudit
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Edit   key.Binding
	Save   key.Binding
	Revert key.Binding
	Pane   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Edit:   key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit field")),
		Save:   key.NewBinding(key.WithKeys("ctrl+s", "s"), key.WithHelp("s", "save changes")),
		Revert: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "discard changes")),
		Pane:   key.NewBinding(key.WithKeys("a", "left", "right", "h", "l"), key.WithHelp("a", "configuration / audit trail")),
	}
}

// Model represents the settings tab state.
type Model struct {
	state  *app.State
	keys   keyMap
	fields []field
	draft  settings.ProgramSettings
	dirty  bool
	cursor int
	pane   pane

	editing bool
	input   textinput.Model
	err     string

	auditOffset int
	width       int
	height      int
}

// New creates a new settings model.
func New(state *app.State) *Model {
	input := textinput.New()
	input.CharLimit = 1000
	input.Width = 60

	return &Model{
		state:  state,
		keys:   defaultKeyMap(),
		fields: configFields(),
		input:  input,
		draft:  state.GetSettings(),
	}
}

// Init initializes the settings tab.
func (m *Model) Init() tea.Cmd {
	m.draft = m.state.GetSettings()
	return nil
}

// CapturingInput reports whether a field is being edited.
func (m *Model) CapturingInput() bool {
	return m.editing
}

// Update handles messages for the settings tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.RosterChangedMsg:
		current := m.state.GetSettings()
		if !m.dirty || sameSettings(m.draft, current) {
			m.draft = current
			m.dirty = false
		}
		m.auditOffset = min(m.auditOffset, max(len(m.state.GetAuditLog())-1, 0))
	case tea.KeyMsg:
		if m.editing {
			return m, m.updateEdit(msg)
		}
		return m, m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Pane) {
		if m.pane == paneConfig {
			m.pane = paneAudit
		} else {
			m.pane = paneConfig
		}
		return nil
	}
	if m.pane == paneAudit {
		return m.handleAuditKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.fields)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Edit):
		f := m.fields[m.cursor]
		m.editing = true
		m.err = ""
		m.input.SetValue(f.get(&m.draft))
		m.input.CursorEnd()
		return m.input.Focus()
	case key.Matches(msg, m.keys.Revert):
		m.draft = m.state.GetSettings()
		m.dirty = false
		m.err = ""
		return app.Notify(app.ToastInfo, "Changes discarded")
	case key.Matches(msg, m.keys.Save):
		return m.save()
	}
	return nil
}

func (m *Model) handleAuditKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.auditOffset > 0 {
			m.auditOffset--
		}
	case key.Matches(msg, m.keys.Down):
		if m.auditOffset < len(m.state.GetAuditLog())-1 {
			m.auditOffset++
		}
	}
	return nil
}

func (m *Model) updateEdit(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.stopEditing()
		return nil
	case "enter":
		next := m.draft
		if err := m.fields[m.cursor].set(&next, m.input.Value()); err != nil {
			m.err = err.Error()
			return nil
		}
		m.draft = next
		m.dirty = !sameSettings(m.draft, m.state.GetSettings())
		m.stopEditing()
		return nil
	}

	m.err = ""
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) stopEditing() {
	m.editing = false
	m.input.Blur()
}

// save validates the draft and asks the root model to persist it.
func (m *Model) save() tea.Cmd {
	if !m.dirty {
		return app.Notify(app.ToastInfo, "No changes to save")
	}
	if err := m.draft.Validate(); err != nil {
		m.err = err.Error()
		return app.Notify(app.ToastError, "Settings not saved: "+err.Error())
	}
	m.err = ""
	return app.Emit(app.UpdateSettingsMsg{Settings: m.draft})
}

// sameSettings compares settings ignoring the stored version.
func sameSettings(a, b settings.ProgramSettings) bool {
	a.Version, b.Version = 0, 0
	return a == b
}

// SetSize sets the available size for the settings tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-40, 20)
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.editing {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		}
	}
	return []key.Binding{m.keys.Edit, m.keys.Save, m.keys.Revert, m.keys.Pane}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down, m.keys.Edit},
		{m.keys.Save, m.keys.Revert, m.keys.Pane},
	}
}
