// Package resources provides the content library tab.
package resources

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/leap-dashboard-tui/internal/app"
	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/resources"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/styles"
)

// formField represents which field is currently focused in the add form.
type formField int

const (
	fieldTitle formField = iota
	fieldDescription
	fieldType
	fieldURL
	fieldWeek
	fieldTags
	fieldSubmit
	fieldCancel
	fieldCount
)

var resourceTypes = []models.ResourceType{models.ResourceFile, models.ResourceVideo, models.ResourceLink}

type keyMap struct {
	Search key.Binding
	Type   key.Binding
	Clear  key.Binding
	Copy   key.Binding
	Add    key.Binding
	Delete key.Binding
	Escape key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Type:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "cycle type")),
		Clear:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear filters")),
		Copy:   key.NewBinding(key.WithKeys("enter", "y"), key.WithHelp("enter", "copy link")),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add resource"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model represents the resources tab state.
type Model struct {
	state     *app.State
	table     table.Model
	search    textinput.Model
	keys      keyMap
	filter    resources.Filter
	rows      []models.Resource
	searching bool

	adding       bool
	focusedField formField
	inputs       map[formField]*textinput.Model
	formType     int
	formErr      string

	confirmDelete bool
	pending       models.Resource

	width  int
	height int
}

// New creates a new resources model.
func New(state *app.State) *Model {
	search := textinput.New()
	search.Placeholder = "Search by title or tag..."
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
		inputs: map[formField]*textinput.Model{
			fieldTitle:       newInput("Week 9: Giving Feedback", 120),
			fieldDescription: newInput("Optional summary", 500),
			fieldURL:         newInput("https://... or /files/...", 2048),
			fieldWeek:        newInput("1-12, blank for general", 2),
			fieldTags:        newInput("core, reading", 200),
		},
	}
}

func newInput(placeholder string, limit int) *textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = 40
	return &in
}

func columns(width int) []table.Column {
	titleWidth := min(max(width-60, 20), 44)
	return []table.Column{
		{Title: "Title", Width: titleWidth},
		{Title: "Type", Width: 6},
		{Title: "Week", Width: 8},
		{Title: "Tags", Width: 20},
		{Title: "Uploaded", Width: 10},
	}
}

// Init initializes the resources tab.
func (m *Model) Init() tea.Cmd {
	m.refresh()
	return nil
}

// CapturingInput reports whether a text field has focus.
func (m *Model) CapturingInput() bool {
	return m.searching || m.adding || m.confirmDelete
}

// Update handles messages for the resources tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	if _, ok := msg.(app.RosterChangedMsg); ok {
		m.refresh()
		return m, nil
	}

	if m.adding {
		return m, m.updateAddForm(msg)
	}
	if m.confirmDelete {
		return m, m.updateDeleteConfirm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.searching {
		return m, m.updateSearch(keyMsg)
	}

	switch {
	case key.Matches(keyMsg, m.keys.Search):
		m.searching = true
		return m, m.search.Focus()

	case key.Matches(keyMsg, m.keys.Type):
		m.filter.Type = nextType(m.filter.Type)
		m.refresh()

	case key.Matches(keyMsg, m.keys.Clear):
		m.filter = resources.Filter{}
		m.search.SetValue("")
		m.refresh()

	case key.Matches(keyMsg, m.keys.Copy):
		if r, ok := m.selected(); ok && r.URL != "" && r.URL != "#" {
			return m, app.Emit(app.CopyToClipboardMsg{Text: r.URL, Label: "link"})
		}

	case key.Matches(keyMsg, m.keys.Add):
		return m, m.openForm()

	case key.Matches(keyMsg, m.keys.Delete):
		if r, ok := m.selected(); ok {
			m.confirmDelete = true
			m.pending = r
		}

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
	case "enter":
		m.searching = false
		m.search.Blur()
	default:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.filter.Search = m.search.Value()
		m.refresh()
		return cmd
	}
	m.filter.Search = m.search.Value()
	m.refresh()
	return nil
}

// nextType cycles All, File, Video, Link.
func nextType(t models.ResourceType) models.ResourceType {
	if t == "" {
		return resourceTypes[0]
	}
	for i, rt := range resourceTypes {
		if rt == t && i+1 < len(resourceTypes) {
			return resourceTypes[i+1]
		}
	}
	return ""
}

func (m *Model) openForm() tea.Cmd {
	m.adding = true
	m.formErr = ""
	m.formType = 0
	for _, in := range m.inputs {
		in.SetValue("")
	}
	m.inputs[fieldWeek].SetValue(strconv.Itoa(m.state.CurrentWeek()))
	m.focusedField = fieldTitle
	return m.updateFormFocus()
}

func (m *Model) closeForm() {
	m.adding = false
	m.formErr = ""
	for _, in := range m.inputs {
		in.Blur()
	}
}

// updateAddForm handles the add resource form.
func (m *Model) updateAddForm(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "esc":
		m.closeForm()
		return nil

	case "tab", "down":
		m.focusedField = (m.focusedField + 1) % fieldCount
		return m.updateFormFocus()

	case "shift+tab", "up":
		m.focusedField = (m.focusedField - 1 + fieldCount) % fieldCount
		return m.updateFormFocus()

	case "left", "right", " ":
		if m.focusedField == fieldType {
			step := 1
			if keyMsg.String() == "left" {
				step = len(resourceTypes) - 1
			}
			m.formType = (m.formType + step) % len(resourceTypes)
			return nil
		}

	case "ctrl+s":
		return m.submit()

	case "enter":
		switch m.focusedField {
		case fieldSubmit:
			return m.submit()
		case fieldCancel:
			m.closeForm()
			return nil
		default:
			m.focusedField = (m.focusedField + 1) % fieldCount
			return m.updateFormFocus()
		}
	}

	in, ok := m.inputs[m.focusedField]
	if !ok {
		return nil
	}
	m.formErr = ""
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return cmd
}

// submit validates the form and emits the new resource.
func (m *Model) submit() tea.Cmd {
	r, err := m.formResource()
	if err != nil {
		m.formErr = err.Error()
		return nil
	}
	m.closeForm()
	return app.Emit(app.AddResourceMsg{Resource: r})
}

func (m *Model) formResource() (models.Resource, error) {
	r := models.Resource{
		Title:       strings.TrimSpace(m.inputs[fieldTitle].Value()),
		Description: strings.TrimSpace(m.inputs[fieldDescription].Value()),
		Type:        resourceTypes[m.formType],
		URL:         strings.TrimSpace(m.inputs[fieldURL].Value()),
		Tags:        resources.ParseTags(m.inputs[fieldTags].Value()),
	}
	if r.Title == "" {
		return r, errors.New("title is required")
	}
	if r.Type == models.ResourceLink && r.URL == "" {
		return r, errors.New("links need a URL")
	}
	if week := strings.TrimSpace(m.inputs[fieldWeek].Value()); week != "" {
		n, err := strconv.Atoi(week)
		if err != nil || n < 1 || n > models.TotalWeeks {
			return r, fmt.Errorf("week must be between 1 and %d", models.TotalWeeks)
		}
		r.AssignedWeek = models.WeekPtr(n)
	}
	return r, nil
}

// updateFormFocus updates which form field is focused.
func (m *Model) updateFormFocus() tea.Cmd {
	var cmd tea.Cmd
	for f, in := range m.inputs {
		if f == m.focusedField {
			cmd = in.Focus()
		} else {
			in.Blur()
		}
	}
	return cmd
}

// updateDeleteConfirm handles the delete confirmation.
func (m *Model) updateDeleteConfirm(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch keyMsg.String() {
	case "y", "Y":
		m.confirmDelete = false
		id := m.pending.ID
		m.pending = models.Resource{}
		return app.Emit(app.DeleteResourceMsg{ID: id})
	case "n", "N", "esc":
		m.confirmDelete = false
		m.pending = models.Resource{}
	}
	return nil
}

func (m *Model) selected() (models.Resource, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return models.Resource{}, false
	}
	return m.rows[i], true
}

// refresh rebuilds the table from the library and the current filter.
func (m *Model) refresh() {
	all := m.state.GetResources()
	m.rows = m.rows[:0]
	for i := range all {
		if m.filter.Match(&all[i]) {
			m.rows = append(m.rows, all[i])
		}
	}

	rows := make([]table.Row, 0, len(m.rows))
	for _, r := range m.rows {
		rows = append(rows, table.Row{
			r.Title,
			string(r.Type),
			r.WeekLabel(),
			strings.Join(r.Tags, ", "),
			r.UploadDate,
		})
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// SetSize sets the available size for the resources tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(height-12, 3))
	m.table.SetColumns(columns(width))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.adding {
		return []key.Binding{
			key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
			key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
			m.keys.Escape,
		}
	}
	return []key.Binding{
		m.keys.Search,
		m.keys.Type,
		m.keys.Add,
		m.keys.Delete,
		m.keys.Copy,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Search, m.keys.Type, m.keys.Clear},
		{m.keys.Add, m.keys.Delete, m.keys.Copy},
	}
}
