// Package app implements the main Bubble Tea application with view-based navigation.
package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/styles"
)

// Tab defines the interface that all tabs must implement.
type Tab interface {
	// Init initializes the tab and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tab and any commands.
	Update(msg tea.Msg) (Tab, tea.Cmd)

	// View renders the tab content.
	View() string

	// SetSize sets the available size for the tab.
	SetSize(width, height int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// InputCapturer is implemented by tabs with text inputs. While CapturingInput
// returns true, global keys are passed to the tab instead.
type InputCapturer interface {
	CapturingInput() bool
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Views       key.Binding
	NextTab     key.Binding
	PrevTab     key.Binding
	Refresh     key.Binding
	Help        key.Binding
	Quit        key.Binding
	Inbox       key.Binding
	CycleAdmin  key.Binding
	CycleCohort key.Binding
	PrevWeek    key.Binding
	NextWeek    key.Binding
	Up          key.Binding
	Down        key.Binding
	Enter       key.Binding
	Escape      key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	km := KeyMap{}
	km = setTabKeys(km)
	km = setActionKeys(km)
	km = setNavigationKeys(km)
	return km
}

func setTabKeys(k KeyMap) KeyMap {
	k.Views = key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8"), key.WithHelp("1-8", "open view"))
	k.NextTab = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view"))
	k.PrevTab = key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev view"))
	return k
}

func setActionKeys(k KeyMap) KeyMap {
	k.Refresh = key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh"))
	k.Help = key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help"))
	k.Quit = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))
	k.Inbox = key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "notifications"))
	k.CycleAdmin = key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "switch admin"))
	k.CycleCohort = key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "switch cohort"))
	k.PrevWeek = key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous week"))
	k.NextWeek = key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next week"))
	return k
}

func setNavigationKeys(k KeyMap) KeyMap {
	k.Up = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up"))
	k.Down = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down"))
	k.Enter = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select"))
	k.Escape = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
	return k
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Inbox, k.Refresh, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Views, k.NextTab, k.PrevTab},
		{k.CycleAdmin, k.CycleCohort, k.PrevWeek, k.NextWeek},
		{k.Up, k.Down, k.Enter, k.Escape},
		{k.Inbox, k.Refresh, k.Help, k.Quit},
	}
}

// Styles defines the application styles.
type Styles struct {
	// Tab bar styles
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	StatusBar   lipgloss.Style

	// Toast styles
	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style
	ToastWarning lipgloss.Style
	ToastInfo    lipgloss.Style

	// Content styles
	Content lipgloss.Style
	Help    lipgloss.Style
	Toast   lipgloss.Style

	// Common styles
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	highlight := lipgloss.AdaptiveColor{Light: "#4B4BFD", Dark: "#5F5FFF"}
	success := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warning := lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FF8C00"}
	errorColor := lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}
	info := lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#5FAFFF"}

	s := Styles{}
	s.TabBar = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).BorderForeground(subtle)
	s.ActiveTab = lipgloss.NewStyle().Bold(true).Foreground(highlight).Padding(0, 1)
	s.InactiveTab = lipgloss.NewStyle().Foreground(subtle).Padding(0, 1)
	s.StatusBar = lipgloss.NewStyle().Foreground(subtle).Padding(0, 1)

	s.ToastSuccess = lipgloss.NewStyle().Foreground(success).Padding(0, 1)
	s.ToastError = lipgloss.NewStyle().Foreground(errorColor).Bold(true).Padding(0, 1)
	s.ToastWarning = lipgloss.NewStyle().Foreground(warning).Padding(0, 1)
	s.ToastInfo = lipgloss.NewStyle().Foreground(info).Padding(0, 1)

	s.Content = lipgloss.NewStyle().Padding(1, 2)
	s.Help = lipgloss.NewStyle().Foreground(subtle).Padding(0, 1)
	s.Toast = styles.ToastStyle

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	s.Subtle = lipgloss.NewStyle().Foreground(subtle)
	s.Highlight = lipgloss.NewStyle().Foreground(highlight)
	s.Error = lipgloss.NewStyle().Foreground(errorColor)
	s.Success = lipgloss.NewStyle().Foreground(success)
	s.Warning = lipgloss.NewStyle().Foreground(warning)

	return s
}

// Model is the main application model.
type Model struct {
	tabs map[models.View]Tab

	// Shared state
	state    *State
	services *services.Manager
	keymap   KeyMap
	styles   Styles

	// UI components
	spinner  spinner.Model
	composer composer
	inbox    inbox

	// Window dimensions
	width  int
	height int

	// UI state
	showHelp bool
	ready    bool

	// Service subscription
	eventChannel chan services.ServiceEvent
}

// NewModel initializes a new application model.
func NewModel(mgr *services.Manager) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return &Model{
		tabs:     make(map[models.View]Tab),
		state:    NewState(),
		services: mgr,
		keymap:   DefaultKeyMap(),
		styles:   DefaultStyles(),
		spinner:  s,
		composer: newComposer(),
	}
}

// SetTab registers the tab rendered for view.
func (m *Model) SetTab(view models.View, tab Tab) {
	m.tabs[view] = tab
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// GetServices returns the service manager.
func (m *Model) GetServices() *services.Manager {
	return m.services
}

// GetKeyMap returns the key bindings.
func (m *Model) GetKeyMap() KeyMap {
	return m.keymap
}

// GetStyles returns the application styles.
func (m *Model) GetStyles() Styles {
	return m.styles
}

// ActiveView returns the open view.
func (m *Model) ActiveView() models.View {
	return m.state.CurrentView()
}

// GetWidth returns the window width.
func (m *Model) GetWidth() int {
	return m.width
}

// GetHeight returns the window height.
func (m *Model) GetHeight() int {
	return m.height
}

// IsReady returns true if the model is ready (window size received).
func (m *Model) IsReady() bool {
	return m.ready
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.state.SetLoadingToast("Loading cohort...")

	cmds := []tea.Cmd{
		m.spinner.Tick,
		defaultTickCmd(),
	}

	if m.services != nil {
		cmds = append(cmds, subscribeToServicesCmd(m.services))
		cmds = append(cmds, loadSnapshotCmd(m.services))
	}

	for _, view := range models.Views {
		if tab := m.tabs[view]; tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd, handled := m.handleKeyMsg(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if handled {
			return m, tea.Batch(cmds...)
		}

	case tea.WindowSizeMsg, spinner.TickMsg:
		if cmd := m.handleTeaMsg(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	default:
		if appCmds := m.handleAppMsg(msg); len(appCmds) > 0 {
			cmds = append(cmds, appCmds...)
		}
	}

	if cmd := m.updateActiveTab(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleTeaMsg(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredToasts()
		cmds = append(cmds, defaultTickCmd())
	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEventMsg(msg)...)
	case SnapshotLoadedMsg:
		cmds = append(cmds, m.handleSnapshotLoaded(msg)...)
	case AddToastMsg:
		id := m.state.AddToast(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearToastCmd(id, msg.Duration))
		}
	case RemoveToastMsg:
		m.state.RemoveToast(msg.ID)
	case ClearExpiredToastsMsg:
		m.state.ClearExpiredToasts()
	case StartLoadingMsg:
		m.state.SetLoading(msg.Resource, true)
		m.state.SetLoadingToast("Refreshing...")
	case StopLoadingMsg:
		m.handleStopLoading(msg.Resource)
	case ErrorMsg:
		m.handleStopLoading("roster")
		cmds = append(cmds, notifyErrorCmd(errorText(msg.Context, msg.Error)))
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	case NavigateMsg:
		cmds = append(cmds, m.navigate(msg))
	case CycleAdminMsg, CycleCohortMsg, ShiftWeekMsg:
		cmds = append(cmds, m.handleGlobalAction(msg))
	case CopyToClipboardMsg:
		cmds = append(cmds, copyToClipboardCmd(msg))
	case ClipboardResultMsg:
		if msg.Error != nil {
			cmds = append(cmds, notifyErrorCmd(errorText("copy to clipboard", msg.Error)))
		} else {
			cmds = append(cmds, notifySuccessCmd("Copied "+msg.Label))
		}
	case OpenComposeMsg:
		cmds = append(cmds, m.openComposer(msg))
	default:
		cmds = append(cmds, m.handleActionMsg(msg)...)
	}
	return cmds
}

// handleActionMsg runs requests emitted by tabs and reports their results.
func (m *Model) handleActionMsg(msg tea.Msg) []tea.Cmd {
	if m.services == nil {
		return nil
	}

	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case SendMessageMsg:
		m.state.SetLoadingToast("Sending...")
		cmds = append(cmds, sendMessageCmd(m.services, msg))
	case MessageSentMsg:
		m.state.ClearLoadingToast()
		if msg.Error != nil {
			return append(cmds, notifyErrorCmd(errorText("send message", msg.Error)))
		}
		cmds = append(cmds, notifySuccessCmd(msg.Result.Toast()))
		if msg.Result.Undeliverable > 0 {
			cmds = append(cmds, notifyWarningCmd(fmt.Sprintf("%d recipients have no %s on file", msg.Result.Undeliverable, contactLabel(msg.Result.Channel))))
		}
	case IssueCertificateMsg:
		cmds = append(cmds, issueCertificateCmd(m.services, msg))
	case CertificateIssuedMsg:
		if msg.Error != nil {
			return append(cmds, notifyErrorCmd(errorText("issue certificate", msg.Error)))
		}
		cmds = append(cmds, notifySuccessCmd("Certificate issued to "+msg.Name))
	case AddResourceMsg:
		cmds = append(cmds, addResourceCmd(m.services, msg.Resource))
	case DeleteResourceMsg:
		cmds = append(cmds, deleteResourceCmd(m.services, msg.ID))
	case ResourceResultMsg:
		switch {
		case msg.Error != nil:
			cmds = append(cmds, notifyErrorCmd(errorText("update resources", msg.Error)))
		case msg.Deleted:
			cmds = append(cmds, notifySuccessCmd("Deleted "+msg.Resource.Title))
		default:
			cmds = append(cmds, notifySuccessCmd("Added "+msg.Resource.Title))
		}
	case ReminderRequestMsg:
		cmds = append(cmds, reminderCmd(m.services, msg))
	case ReminderResultMsg:
		switch {
		case msg.Error != nil:
			cmds = append(cmds, notifyErrorCmd(errorText("send reminder", msg.Error)))
		case msg.Now:
			cmds = append(cmds, notifySuccessCmd(msg.Result.Toast()))
		default:
			cmds = append(cmds, notifySuccessCmd("Reminder scheduled for "+msg.Reminder.Date.Local().Format("Mon Jan 2 15:04")))
		}
	case UpdateSettingsMsg:
		cmds = append(cmds, updateSettingsCmd(m.services, msg))
	case SettingsSavedMsg:
		switch {
		case msg.Error != nil:
			cmds = append(cmds, notifyErrorCmd(errorText("save settings", msg.Error)))
		case len(msg.Changes) == 0:
			cmds = append(cmds, notifyInfoCmd("No changes to save"))
		default:
			cmds = append(cmds, notifySuccessCmd(fmt.Sprintf("Settings saved (%d changes)", len(msg.Changes))))
		}
	case MarkAllReadMsg:
		cmds = append(cmds, markReadCmd(m.services, ""))
	case MarkReadMsg:
		cmds = append(cmds, markReadCmd(m.services, msg.ID))
	}
	return cmds
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.composer.setWidth(msg.Width)
	m.updateTabSizes()
}

func (m *Model) handleStopLoading(resource string) {
	m.state.SetLoading(resource, false)
	if !m.state.AnyLoading() {
		m.state.ClearLoadingToast()
	}
}

func (m *Model) handleSnapshotLoaded(msg SnapshotLoadedMsg) []tea.Cmd {
	m.state.ApplySnapshot(msg.Snapshot)
	m.handleStopLoading("data")

	cmds := []tea.Cmd{m.rosterChanged()}
	if msg.Error != nil {
		cmds = append(cmds, notifyErrorCmd(errorText("load data", msg.Error)))
	}
	return cmds
}

func (m *Model) handleServiceEventMsg(msg ServiceEventMsg) []tea.Cmd {
	var cmds []tea.Cmd
	if cmd := m.handleServiceEvent(msg.Event); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.eventChannel != nil {
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	}
	return cmds
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.RosterUpdatedEvent:
		m.state.SetRoster(e.Roster, e.Stats, e.Cohort)
		m.handleStopLoading("roster")
		return m.rosterChanged()

	case services.AdminChangedEvent:
		m.state.SetAdmin(e.Admin)
		m.composer.close()
		return m.rosterChanged()

	case services.SettingsChangedEvent:
		m.state.SetSettings(e.Settings)
		cmds := []tea.Cmd{m.reload()}
		if e.External {
			cmds = append(cmds, notifyInfoCmd("Settings reloaded from disk"))
		}
		return tea.Batch(cmds...)

	case services.NotificationsEvent:
		m.state.SetInbox(e.Notifications, e.Unread)

	case services.ReminderEvent, services.AuditEvent:
		return m.reload()

	case services.ErrorEvent:
		return notifyErrorCmd(fmt.Sprintf("[%s] %v", e.Service, e.Error))
	}

	return nil
}

func (m *Model) reload() tea.Cmd {
	if m.services == nil {
		return nil
	}
	return loadSnapshotCmd(m.services)
}

// rosterChanged tells the active tab to rebuild from state.
func (m *Model) rosterChanged() tea.Cmd {
	version := m.state.RosterVersion()
	return func() tea.Msg { return RosterChangedMsg{Version: version} }
}

func (m *Model) navigate(msg NavigateMsg) tea.Cmd {
	if !m.state.Navigate(msg.View, msg.Filter) {
		return notifyWarningCmd(fmt.Sprintf("%s is not available to %s", msg.View.Title(), m.state.GetAdmin().Role))
	}
	m.updateTabSizes()
	return m.rosterChanged()
}

func (m *Model) handleGlobalAction(msg tea.Msg) tea.Cmd {
	if m.services == nil {
		return nil
	}
	switch msg := msg.(type) {
	case CycleAdminMsg:
		return cycleAdminCmd(m.services)
	case CycleCohortMsg:
		m.state.SetLoading("roster", true)
		return cycleCohortCmd(m.services)
	case ShiftWeekMsg:
		week := m.state.CurrentWeek() + msg.Delta
		if week < 1 || week > models.TotalWeeks {
			return nil
		}
		m.state.SetLoading("roster", true)
		return setWeekCmd(m.services, week)
	}
	return nil
}

func (m *Model) openComposer(msg OpenComposeMsg) tea.Cmd {
	admin := m.state.GetAdmin()
	if !models.CanMessage(admin.Role) {
		return notifyWarningCmd(string(admin.Role) + " cannot message participants")
	}
	if len(msg.Recipients) == 0 {
		return notifyWarningCmd("No recipients selected.")
	}

	week := m.state.CurrentWeek()
	var available []models.Resource
	for _, r := range m.state.GetResources() {
		if r.AssignedWeek != nil && *r.AssignedWeek == week {
			available = append(available, r)
		}
	}
	return m.composer.open(msg, available)
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	view := m.state.CurrentView()
	tab := m.tabs[view]
	if tab == nil {
		return nil
	}
	var cmd tea.Cmd
	m.tabs[view], cmd = tab.Update(msg)
	return cmd
}

func (m *Model) updateTabSizes() {
	contentHeight := max(m.height-5, 0)

	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

func (m *Model) activeTabCapturing() bool {
	c, ok := m.tabs[m.state.CurrentView()].(InputCapturer)
	return ok && c.CapturingInput()
}

// handleKeyMsg handles keyboard input. handled reports whether the key was
// consumed and must not reach the active tab.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return tea.Quit, true
	}

	switch {
	case m.composer.active:
		return m.composer.update(msg), true
	case m.inbox.active:
		items, _ := m.state.GetInbox()
		return m.inbox.update(msg, items), true
	case m.showHelp:
		if key.Matches(msg, m.keymap.Help, m.keymap.Escape) {
			m.showHelp = false
		}
		return nil, true
	case m.activeTabCapturing():
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit, true

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = true
		return nil, true

	case key.Matches(msg, m.keymap.Views):
		menu := m.state.Menu()
		idx := int(msg.String()[0] - '1')
		if idx < len(menu) {
			return m.navigate(NavigateMsg{View: menu[idx]}), true
		}
		return nil, true

	case key.Matches(msg, m.keymap.NextTab), key.Matches(msg, m.keymap.PrevTab):
		delta := 1
		if key.Matches(msg, m.keymap.PrevTab) {
			delta = -1
		}
		return m.navigate(NavigateMsg{View: m.adjacentView(delta)}), true

	case key.Matches(msg, m.keymap.Inbox):
		m.inbox.toggle()
		return nil, true

	case key.Matches(msg, m.keymap.CycleAdmin):
		return m.handleGlobalAction(CycleAdminMsg{}), true

	case key.Matches(msg, m.keymap.CycleCohort):
		return m.handleGlobalAction(CycleCohortMsg{}), true

	case key.Matches(msg, m.keymap.PrevWeek):
		return m.handleGlobalAction(ShiftWeekMsg{Delta: -1}), true

	case key.Matches(msg, m.keymap.NextWeek):
		return m.handleGlobalAction(ShiftWeekMsg{Delta: 1}), true

	case key.Matches(msg, m.keymap.Refresh):
		if m.services != nil {
			return tea.Batch(
				func() tea.Msg { return StartLoadingMsg{Resource: "data"} },
				loadSnapshotCmd(m.services),
			), true
		}
		return nil, true
	}

	// Let the tab handle other keys
	return nil, false
}

func (m *Model) adjacentView(delta int) models.View {
	menu := m.state.Menu()
	current := m.state.CurrentView()
	for i, v := range menu {
		if v == current {
			return menu[(i+delta+len(menu))%len(menu)]
		}
	}
	return menu[0]
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View())))
		return b.String()
	}

	if tab := m.tabs[m.state.CurrentView()]; tab != nil {
		b.WriteString(tab.View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}

	mainView := b.String()

	switch {
	case m.composer.active:
		mainView = m.overlayCentered(mainView, m.composer.view())
	case m.inbox.active:
		items, unread := m.state.GetInbox()
		mainView = m.overlayCentered(mainView, m.inbox.view(items, unread))
	case m.showHelp:
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}

	toasts := m.renderToasts()

	if len(toasts) > 0 {
		return m.overlayToasts(mainView, toasts)
	}

	return mainView
}

func (m *Model) overlayCentered(mainView string, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	overlayLines := strings.Split(overlay, "\n")

	overlayWidth := lipgloss.Width(overlay)

	y := max((m.height-len(overlayLines))/2, 0)
	x := max((m.width-overlayWidth)/2, 0)

	for len(mainLines) < y+len(overlayLines) {
		mainLines = append(mainLines, "")
	}

	for i, overlayLine := range overlayLines {
		mainLine := mainLines[y+i]

		left := ansi.Truncate(mainLine, x, "")
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")

		if lipgloss.Width(left) < x {
			left += strings.Repeat(" ", x-lipgloss.Width(left))
		}

		mainLines[y+i] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderNavbar() string {
	var tabs []string

	current := m.state.CurrentView()
	for i, view := range m.state.Menu() {
		if view == current {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, view.Title())))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, view.Title())))
		}
	}
	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderStatusBar(),
		m.styles.TabBar.Width(m.width).Render(tabBar),
	)
}

// renderStatusBar shows who is acting on which cohort and week.
func (m *Model) renderStatusBar() string {
	admin := m.state.GetAdmin()
	cohort := m.state.GetCohort()
	_, unread := m.state.GetInbox()

	parts := []string{
		m.styles.Title.Render("Leap"),
		cohort.Name,
		fmt.Sprintf("Week %d/%d", m.state.CurrentWeek(), models.TotalWeeks),
		admin.Name + " " + styles.GetRoleStyle(admin.Role).Render(string(admin.Role)),
	}
	bell := fmt.Sprintf("🔔 %d", unread)
	if unread > 0 {
		bell = m.styles.Warning.Render(bell)
	}
	parts = append(parts, bell)

	return m.styles.StatusBar.Render(strings.Join(parts, "  │  "))
}

func (m *Model) renderToasts() []string {
	toasts := m.state.GetToasts()
	if len(toasts) == 0 {
		return nil
	}

	var rendered []string
	for _, n := range toasts {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case ToastSuccess:
			style = m.styles.ToastSuccess
			prefix = "[OK]"
		case ToastError:
			style = m.styles.ToastError
			prefix = "[ERR]"
		case ToastWarning:
			style = m.styles.ToastWarning
			prefix = "[WARN]"
		case ToastInfo:
			style = m.styles.ToastInfo
			prefix = "[INFO]"
		case ToastLoading:
			style = m.styles.ToastInfo
			prefix = m.spinner.View()
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		rendered = append(rendered, m.styles.Toast.Render(content))
	}

	return rendered
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	if len(toasts) == 0 {
		return mainView
	}

	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")

	toastWidth := lipgloss.Width(toastStack)
	startX := max(m.width-toastWidth-2, 0)

	startY := 3

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		if lineIdx >= len(mainLines) {
			break
		}

		mainLine := mainLines[lineIdx]
		mainLineWidth := lipgloss.Width(mainLine)

		if mainLineWidth < startX {
			padding := strings.Repeat(" ", startX-mainLineWidth)
			mainLines[lineIdx] = mainLine + padding + toastLine
		} else {
			truncated := ansi.Truncate(mainLine, startX, "")
			mainLines[lineIdx] = truncated + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderHelp() string {
	var lines []string

	lines = append(lines, m.styles.Title.Render("Keyboard Shortcuts"))
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Navigation"))
	lines = append(lines, fmt.Sprintf("  1-%d        Open view", len(m.state.Menu())))
	lines = append(lines, "  Tab        Next view")
	lines = append(lines, "  Shift+Tab  Previous view")
	lines = append(lines, "  [ / ]      Previous / next week")
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Session"))
	lines = append(lines, "  u          Switch admin")
	lines = append(lines, "  c          Switch cohort")
	lines = append(lines, "  n          Notifications")
	lines = append(lines, "  r          Refresh data")
	lines = append(lines, "  ?          Toggle help")
	lines = append(lines, "  q/Ctrl+C   Quit")
	lines = append(lines, "")

	view := m.state.CurrentView()
	if tab := m.tabs[view]; tab != nil {
		tabHelp := tab.ShortHelp()
		if len(tabHelp) > 0 {
			lines = append(lines, m.styles.Highlight.Render(view.Title()))
			for _, binding := range tabHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
		}
	}

	lines = append(lines, "")
	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPlaceholder() string {
	view := m.state.CurrentView()
	content := fmt.Sprintf(
		"%s\n\n%s",
		view.Title(),
		m.styles.Subtle.Render("This view is not available."),
	)
	return m.styles.Content.Render(content)
}

// errorText renders a failed action for a toast. Permission errors are shown as is.
func errorText(action string, err error) string {
	if action == "" || errors.Is(err, services.ErrForbidden) {
		return err.Error()
	}
	return fmt.Sprintf("Failed to %s: %v", action, err)
}

func contactLabel(c models.Channel) string {
	if c == models.ChannelWhatsApp {
		return "WhatsApp number"
	}
	return "email address"
}
