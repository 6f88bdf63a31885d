package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services"
)

// stubTab records what reaches it.
type stubTab struct {
	name      string
	capturing bool
	msgs      []tea.Msg
	width     int
}

func (s *stubTab) Init() tea.Cmd { return nil }
func (s *stubTab) Update(msg tea.Msg) (Tab, tea.Cmd) {
	s.msgs = append(s.msgs, msg)
	return s, nil
}
func (s *stubTab) View() string              { return "stub:" + s.name }
func (s *stubTab) SetSize(width, _ int)      { s.width = width }
func (s *stubTab) ShortHelp() []key.Binding  { return []key.Binding{key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stub action"))} }
func (s *stubTab) FullHelp() [][]key.Binding { return nil }
func (s *stubTab) CapturingInput() bool      { return s.capturing }

func (s *stubTab) received(match func(tea.Msg) bool) bool {
	for _, m := range s.msgs {
		if match(m) {
			return true
		}
	}
	return false
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// drain runs cmd and flattens batches. Only use it on commands that do not sleep.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var msgs []tea.Msg
	for _, c := range batch {
		msgs = append(msgs, drain(c)...)
	}
	return msgs
}

func readyModel(mgr *services.Manager) *Model {
	m := NewModel(mgr)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func TestNewModel(t *testing.T) {
	model := NewModel(nil)
	if model == nil {
		t.Fatal("NewModel returned nil")
	}
	if model.GetState() == nil {
		t.Error("State should be initialized")
	}
	if model.ActiveView() != models.ViewDashboard {
		t.Error("Default view should be the overview")
	}
	if model.IsReady() {
		t.Error("model is not ready before the first WindowSizeMsg")
	}
}

func TestModel_Init(t *testing.T) {
	model := NewModel(nil)
	if model.Init() == nil {
		t.Error("Init returned nil command")
	}
	toasts := model.GetState().GetToasts()
	if len(toasts) != 1 || toasts[0].Type != ToastLoading {
		t.Errorf("Init should show a loading toast, got %+v", toasts)
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	model := NewModel(nil)
	tab := &stubTab{name: "overview"}
	model.SetTab(models.ViewDashboard, tab)

	model.Update(tea.WindowSizeMsg{Width: 100, Height: 50})

	if model.GetWidth() != 100 || model.GetHeight() != 50 {
		t.Errorf("size = %dx%d", model.GetWidth(), model.GetHeight())
	}
	if !model.IsReady() {
		t.Error("Model should be ready after WindowSizeMsg")
	}
	if tab.width != 100 {
		t.Errorf("tab width = %d, want 100", tab.width)
	}
}

func TestModel_ViewKeys(t *testing.T) {
	model := readyModel(nil)

	model.Update(runeKey('3'))
	if model.ActiveView() != models.ViewProgress {
		t.Errorf("key 3 = %s, want progress", model.ActiveView())
	}

	model.Update(tea.KeyMsg{Type: tea.KeyTab})
	if model.ActiveView() != models.ViewReminders {
		t.Errorf("tab = %s, want reminders", model.ActiveView())
	}

	model.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	model.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	model.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if model.ActiveView() != models.ViewDashboard {
		t.Errorf("shift+tab = %s, want dashboard", model.ActiveView())
	}
	model.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if model.ActiveView() != models.ViewSettings {
		t.Errorf("shift+tab should wrap to settings, got %s", model.ActiveView())
	}
}

func TestModel_ViewKeys_RoleMenu(t *testing.T) {
	model := readyModel(nil)
	model.GetState().SetAdmin(models.DefaultAdmins()[2])

	model.Update(runeKey('2'))
	if model.ActiveView() != models.ViewProgress {
		t.Errorf("viewer key 2 = %s, want progress", model.ActiveView())
	}
	model.Update(runeKey('8'))
	if model.ActiveView() != models.ViewProgress {
		t.Error("keys past the menu should do nothing")
	}

	model.Update(NavigateMsg{View: models.ViewSettings})
	if model.ActiveView() == models.ViewSettings {
		t.Error("viewer must not open settings")
	}
}

func TestModel_KeysReachActiveTab(t *testing.T) {
	model := readyModel(nil)
	tab := &stubTab{name: "participants"}
	model.SetTab(models.ViewParticipants, tab)
	model.Update(NavigateMsg{View: models.ViewParticipants})

	model.Update(runeKey('x'))
	if !tab.received(func(m tea.Msg) bool { k, ok := m.(tea.KeyMsg); return ok && k.String() == "x" }) {
		t.Error("unbound key should reach the tab")
	}

	model.Update(runeKey('3'))
	if model.ActiveView() != models.ViewProgress {
		t.Error("global key should switch views")
	}
}

func TestModel_CapturingTab(t *testing.T) {
	model := readyModel(nil)
	tab := &stubTab{name: "participants", capturing: true}
	model.SetTab(models.ViewParticipants, tab)
	model.Update(NavigateMsg{View: models.ViewParticipants})

	model.Update(runeKey('3'))
	if model.ActiveView() != models.ViewParticipants {
		t.Error("global keys should be suppressed while typing")
	}
	if !tab.received(func(m tea.Msg) bool { k, ok := m.(tea.KeyMsg); return ok && k.String() == "3" }) {
		t.Error("typed key should reach the tab")
	}

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Error("ctrl+c should always quit")
	}
}

func TestModel_Update_Tick(t *testing.T) {
	model := NewModel(nil)
	model.GetState().AddToast(ToastInfo, "old", time.Nanosecond)
	time.Sleep(time.Millisecond)

	_, cmd := model.Update(TickMsg{Time: time.Now()})
	if cmd == nil {
		t.Error("TickMsg should return a command (next tick)")
	}
	if len(model.GetState().GetToasts()) != 0 {
		t.Error("expired toasts should be cleared on tick")
	}
}

func TestModel_View(t *testing.T) {
	model := NewModel(nil)

	if !strings.Contains(model.View(), "Loading...") {
		t.Error("View should show Loading when not ready")
	}

	model = readyModel(nil)
	view := model.View()
	for _, want := range []string{"Overview", "Settings", "Sarah Connor", "not available"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}

	model.SetTab(models.ViewDashboard, &stubTab{name: "overview"})
	if !strings.Contains(model.View(), "stub:overview") {
		t.Error("View should render the active tab")
	}
}

func TestModel_Help(t *testing.T) {
	model := readyModel(nil)
	model.SetTab(models.ViewDashboard, &stubTab{name: "overview"})

	model.Update(runeKey('?'))
	if !model.showHelp {
		t.Fatal("? should open help")
	}
	view := model.View()
	if !strings.Contains(view, "Keyboard Shortcuts") || !strings.Contains(view, "stub action") {
		t.Error("help should list global and tab keys")
	}

	model.Update(runeKey('3'))
	if model.ActiveView() != models.ViewDashboard {
		t.Error("keys should be swallowed while help is open")
	}

	model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if model.showHelp {
		t.Error("esc should close help")
	}

	model.Update(ToggleHelpMsg{})
	if !model.showHelp {
		t.Error("ToggleHelpMsg should open help")
	}
}

func TestModel_Toasts(t *testing.T) {
	model := readyModel(nil)

	_, cmd := model.Update(AddToastMsg{Type: ToastSuccess, Message: "Saved", Duration: time.Second})
	if cmd == nil {
		t.Error("a timed toast should schedule its removal")
	}
	toasts := model.GetState().GetToasts()
	if len(toasts) != 1 {
		t.Fatalf("toasts = %d, want 1", len(toasts))
	}
	if !strings.Contains(model.View(), "[OK] Saved") {
		t.Error("View should render the toast")
	}

	model.Update(RemoveToastMsg{ID: toasts[0].ID})
	if len(model.GetState().GetToasts()) != 0 {
		t.Error("RemoveToastMsg should remove the toast")
	}
}

func TestModel_ErrorMsg(t *testing.T) {
	model := readyModel(nil)
	_, cmd := model.Update(ErrorMsg{Error: errors.New("boom"), Context: "change week"})
	found := false
	for _, msg := range drain(cmd) {
		if toast, ok := msg.(AddToastMsg); ok && toast.Type == ToastError && toast.Message == "Failed to change week: boom" {
			found = true
		}
	}
	if !found {
		t.Error("ErrorMsg should produce an error toast")
	}
}

func TestErrorText(t *testing.T) {
	forbidden := errors.Join(services.ErrForbidden)
	if got := errorText("send message", forbidden); got != services.ErrForbidden.Error() {
		t.Errorf("forbidden = %q", got)
	}
	if got := errorText("", errors.New("x")); got != "x" {
		t.Errorf("no action = %q", got)
	}
}

func TestModel_ComposeOverlay(t *testing.T) {
	model := readyModel(nil)
	recipients := []models.Participant{{ID: "p-1", FullName: "Alice Johnson", Email: "alice@example.com"}}

	model.Update(OpenComposeMsg{Channel: models.ChannelEmail, Recipients: recipients})
	if !model.composer.active {
		t.Fatal("composer should open")
	}
	if !strings.Contains(model.View(), "alice@example.com") {
		t.Error("composer should show the recipient")
	}

	model.Update(runeKey('3'))
	if model.ActiveView() != models.ViewDashboard {
		t.Error("keys should go to the composer")
	}

	model.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if !model.composer.active || model.composer.err == "" {
		t.Error("an empty draft should fail validation")
	}

	model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if model.composer.active {
		t.Error("esc should close the composer")
	}
}

func TestModel_ComposeForbiddenForViewer(t *testing.T) {
	model := readyModel(nil)
	model.GetState().SetAdmin(models.DefaultAdmins()[2])

	_, cmd := model.Update(OpenComposeMsg{Recipients: []models.Participant{{ID: "p-1"}}})
	if model.composer.active {
		t.Error("viewers cannot compose")
	}
	if cmd == nil {
		t.Error("expected a warning toast")
	}
}

func TestModel_Inbox(t *testing.T) {
	model := readyModel(nil)
	model.GetState().SetInbox([]models.Notification{
		{ID: "n-1", Type: models.AlertWarning, Title: "Low Engagement Alert", Message: "5 participants", Link: models.ViewParticipants, Timestamp: time.Now()},
	}, 1)

	model.Update(runeKey('n'))
	if !model.inbox.active {
		t.Fatal("n should open the inbox")
	}
	if !strings.Contains(model.View(), "Low Engagement Alert") {
		t.Error("inbox should list notifications")
	}

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter should open the notification")
	}
	if model.inbox.active {
		t.Error("following a link closes the inbox")
	}
}

func TestModel_HandleServiceEvent(t *testing.T) {
	model := readyModel(nil)
	tab := &stubTab{name: "overview"}
	model.SetTab(models.ViewDashboard, tab)

	roster := testRoster()
	model.Update(ServiceEventMsg{Event: services.RosterUpdatedEvent{Roster: roster, Stats: models.DashboardStats{TotalParticipants: 3}}})
	if model.GetState().GetStats().TotalParticipants != 3 {
		t.Error("roster event should update state")
	}

	model.Update(ServiceEventMsg{Event: services.NotificationsEvent{Notifications: []models.Notification{{ID: "x"}}, Unread: 1}})
	if _, unread := model.GetState().GetInbox(); unread != 1 {
		t.Error("notifications event should update the inbox")
	}

	model.Update(NavigateMsg{View: models.ViewSettings})
	model.Update(ServiceEventMsg{Event: services.AdminChangedEvent{Admin: models.DefaultAdmins()[1]}})
	if model.GetState().GetAdmin().ID != "u-2" || model.ActiveView() != models.ViewDashboard {
		t.Error("admin change should switch the admin and return to the overview")
	}

	_, cmd := model.Update(ServiceEventMsg{Event: services.ErrorEvent{Service: "settings", Error: errors.New("bad json")}})
	if cmd == nil {
		t.Error("error event should produce a toast")
	}
}

func TestModel_SnapshotLoaded(t *testing.T) {
	mgr := newTestManager(t)
	model := readyModel(mgr)
	tab := &stubTab{name: "overview"}
	model.SetTab(models.ViewDashboard, tab)

	snap, err := LoadSnapshot(mgr)
	if err != nil {
		t.Fatal(err)
	}
	_, cmd := model.Update(SnapshotLoadedMsg{Snapshot: snap})
	if model.GetState().IsInitialLoading() {
		t.Error("snapshot should end initial loading")
	}
	if model.GetState().GetRoster().Len() != 12 {
		t.Error("roster should be applied")
	}
	if cmd == nil {
		t.Fatal("snapshot should notify the active tab")
	}

	model.Update(RosterChangedMsg{Version: model.GetState().RosterVersion()})
	if !tab.received(func(m tea.Msg) bool { _, ok := m.(RosterChangedMsg); return ok }) {
		t.Error("RosterChangedMsg should reach the active tab")
	}
}

func TestModel_WeekKeys(t *testing.T) {
	mgr := newTestManager(t)
	model := readyModel(mgr)
	snap, _ := LoadSnapshot(mgr)
	model.Update(SnapshotLoadedMsg{Snapshot: snap})

	_, cmd := model.Update(runeKey(']'))
	if cmd == nil {
		t.Fatal("] should change the week")
	}
	drain(cmd)
	if mgr.CurrentWeek() != 9 {
		t.Errorf("CurrentWeek = %d, want 9", mgr.CurrentWeek())
	}
}

func TestModel_HandleSpinnerTick(t *testing.T) {
	model := NewModel(nil)
	_, cmd := model.Update(spinner.TickMsg{})
	if cmd == nil {
		t.Error("spinner tick should schedule the next tick")
	}
}

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	if len(km.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(km.FullHelp()) != 4 {
		t.Errorf("FullHelp groups = %d, want 4", len(km.FullHelp()))
	}
	if !key.Matches(runeKey('u'), km.CycleAdmin) {
		t.Error("u should switch admin")
	}
}
