// Package apptest provides fixtures for testing tabs against a populated State.
package apptest

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/leap-dashboard-tui/internal/app"
	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/metrics"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/reminders"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/settings"
)

// Seed is the roster seed used by NewState.
const Seed = 7

// Roster generates a deterministic roster of size participants at week.
func Roster(t *testing.T, size, week int) models.Roster {
	t.Helper()
	ps, err := metrics.GenerateRoster(size, week, Seed)
	if err != nil {
		t.Fatalf("GenerateRoster: %v", err)
	}
	return models.Roster{CohortID: "c-101", CurrentWeek: week, Seed: Seed, Participants: ps}
}

// NewState returns a loaded State for the super admin with a 20 participant roster.
func NewState(t *testing.T, week int) *app.State {
	t.Helper()
	roster := Roster(t, 20, week)
	stats, err := metrics.Summarize(roster)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	now := time.Now()
	s := app.NewState()
	s.ApplySnapshot(app.Snapshot{
		Roster:    roster,
		Stats:     stats,
		Cohort:    models.DefaultCohorts()[0],
		Cohorts:   models.DefaultCohorts(),
		Admin:     models.DefaultAdmins()[0],
		Settings:  settings.Defaults(),
		Resources: models.DefaultResources(),
		Reminders: models.DefaultReminderLogs(),
		Upcoming: reminders.Upcoming{
			ContentRelease: now.Add(48 * time.Hour),
			Nudge:          now.Add(24 * time.Hour),
		},
		AuditLog: models.DefaultAuditLog(),
		Inbox:    models.DefaultNotifications(now),
		Unread:   2,
	})
	return s
}

// Key builds a KeyMsg for a key name as bubbletea prints it.
func Key(name string) tea.KeyMsg {
	switch name {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
}

// Type sends each rune of text to update as a key press.
func Type(update func(tea.Msg), text string) {
	for _, r := range text {
		update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// Drain runs cmd and flattens batches into their messages. Commands that
// sleep (ticks, blinks) must not be passed in.
func Drain(cmd tea.Cmd) []tea.Msg {
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
		msgs = append(msgs, Drain(c)...)
	}
	return msgs
}

// Find returns the first message of type T produced by cmd.
func Find[T tea.Msg](cmd tea.Cmd) (T, bool) {
	for _, msg := range Drain(cmd) {
		if m, ok := msg.(T); ok {
			return m, true
		}
	}
	var zero T
	return zero, false
}
