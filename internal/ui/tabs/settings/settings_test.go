package settings

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/leap-dashboard-tui/internal/app"
	"github.com/j-veylop/leap-dashboard-tui/internal/app/apptest"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/settings"
)

const passingGradeField = 4

func newModel(t *testing.T) *Model {
	t.Helper()
	m := New(apptest.NewState(t, 8))
	m.SetSize(140, 40)
	m.Init()
	return m
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(apptest.Key(k))
	}
	return cmd
}

// editField replaces the value of the field at index with value.
func editField(m *Model, index int, value string) {
	m.cursor = index
	press(m, "enter")
	m.input.SetValue("")
	apptest.Type(func(msg tea.Msg) { m.Update(msg) }, value)
	press(m, "enter")
}

func TestConfigFields(t *testing.T) {
	fields := configFields()
	if len(fields) != 12 {
		t.Fatalf("fields = %d, want 12", len(fields))
	}
	if fields[passingGradeField].label != "Passing grade (%)" {
		t.Errorf("field %d = %q", passingGradeField, fields[passingGradeField].label)
	}

	p := settings.Defaults()
	for _, f := range fields {
		v := f.get(&p)
		if err := f.set(&p, v); err != nil {
			t.Errorf("%s: round trip failed: %v", f.label, err)
		}
	}
	if p != settings.Defaults() {
		t.Error("writing back every value should leave the settings unchanged")
	}
}

func TestModel_EditField(t *testing.T) {
	m := newModel(t)

	press(m, "down", "down", "down", "down", "enter")
	if !m.editing || !m.CapturingInput() {
		t.Fatal("enter should start editing")
	}
	if m.input.Value() != "80" {
		t.Errorf("input = %q, want current value", m.input.Value())
	}

	press(m, "backspace", "backspace")
	apptest.Type(func(msg tea.Msg) { m.Update(msg) }, "85")
	press(m, "enter")

	if m.editing {
		t.Error("enter should apply the edit")
	}
	if m.draft.Thresholds.PassingGrade != 85 || !m.dirty {
		t.Errorf("draft grade = %d, dirty = %v", m.draft.Thresholds.PassingGrade, m.dirty)
	}
	if !strings.Contains(m.View(), "unsaved changes") {
		t.Error("dirty marker missing")
	}
	if m.state.GetSettings().Thresholds.PassingGrade != 80 {
		t.Error("editing must not touch saved settings")
	}
}

func TestModel_EditErrors(t *testing.T) {
	m := newModel(t)

	m.cursor = passingGradeField
	press(m, "enter")
	m.input.SetValue("")
	apptest.Type(func(msg tea.Msg) { m.Update(msg) }, "abc")
	press(m, "enter")
	if !m.editing || !strings.Contains(m.err, "whole number") {
		t.Errorf("editing %v err %q", m.editing, m.err)
	}

	press(m, "esc")
	if m.editing || m.dirty {
		t.Error("esc should cancel without changes")
	}
}

func TestModel_Save(t *testing.T) {
	m := newModel(t)

	toast, ok := apptest.Find[app.AddToastMsg](press(m, "s"))
	if !ok || toast.Message != "No changes to save" {
		t.Errorf("clean save = %+v", toast)
	}

	editField(m, passingGradeField, "85")
	update, ok := apptest.Find[app.UpdateSettingsMsg](press(m, "s"))
	if !ok || update.Settings.Thresholds.PassingGrade != 85 {
		t.Fatalf("save = %+v", update)
	}

	saved := update.Settings
	saved.Version++
	m.state.SetSettings(saved)
	m.Update(app.RosterChangedMsg{})
	if m.dirty || m.draft != saved {
		t.Error("a reload with the saved settings should clear the dirty flag")
	}
}

func TestModel_SaveInvalid(t *testing.T) {
	m := newModel(t)
	editField(m, passingGradeField, "20")

	cmd := press(m, "s")
	if _, ok := apptest.Find[app.UpdateSettingsMsg](cmd); ok {
		t.Fatal("invalid settings must not be saved")
	}
	if toast, ok := apptest.Find[app.AddToastMsg](cmd); !ok || toast.Type != app.ToastError {
		t.Errorf("toast = %+v", toast)
	}
	if m.err == "" {
		t.Error("validation error should be shown")
	}
}

func TestModel_Revert(t *testing.T) {
	m := newModel(t)
	editField(m, 9, "Week {week} is live")
	if m.draft.Templates.WeeklyRelease != "Week {week} is live" {
		t.Fatalf("template = %q", m.draft.Templates.WeeklyRelease)
	}

	press(m, "x")
	if m.dirty || m.draft != m.state.GetSettings() {
		t.Error("x should discard the draft")
	}
}

func TestModel_ExternalReloadKeepsEdits(t *testing.T) {
	m := newModel(t)
	editField(m, passingGradeField, "85")

	external := settings.Defaults()
	external.Schedule.NudgeDay = "Friday"
	m.state.SetSettings(external)
	m.Update(app.RosterChangedMsg{})

	if !m.dirty || m.draft.Thresholds.PassingGrade != 85 {
		t.Error("unsaved edits should survive a reload")
	}
}

func TestModel_AuditPane(t *testing.T) {
	m := newModel(t)
	press(m, "a")
	if m.pane != paneAudit {
		t.Fatal("a should open the audit trail")
	}

	view := m.View()
	for _, want := range []string{"SETTINGS_UPDATE", "Sarah Connor", "1-5 of 5"} {
		if !strings.Contains(view, want) {
			t.Errorf("audit view missing %q", want)
		}
	}

	press(m, "down", "down")
	if m.auditOffset != 2 {
		t.Errorf("offset = %d, want 2", m.auditOffset)
	}
	press(m, "a")
	if m.pane != paneConfig {
		t.Error("a should return to configuration")
	}
}

func TestModel_ConfigView(t *testing.T) {
	m := newModel(t)
	view := m.View()
	for _, want := range []string{"System Settings", "Schedule", "Thresholds", "Templates", "Monday", "Certification threshold (%)"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}

func TestModel_Help(t *testing.T) {
	m := newModel(t)
	if len(m.ShortHelp()) != 4 || len(m.FullHelp()) != 2 {
		t.Error("help bindings missing")
	}
	press(m, "enter")
	if len(m.ShortHelp()) != 2 {
		t.Error("edit help should list apply and cancel")
	}
}
