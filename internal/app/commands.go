package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/resources"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultToastDuration is how long confirmations stay on screen.
	DefaultToastDuration = 3 * time.Second

	// LongToastDuration is for errors.
	LongToastDuration = 6 * time.Second

	// auditLogLimit bounds the audit trail loaded into the settings view.
	auditLogLimit = 50
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// LoadSnapshot reads everything the views need from the manager.
func LoadSnapshot(mgr *services.Manager) (Snapshot, error) {
	roster := mgr.Snapshot()
	snap := Snapshot{
		Roster:   roster.Roster,
		Stats:    roster.Stats,
		Cohort:   roster.Cohort,
		Cohorts:  mgr.Cohorts(),
		Admin:    mgr.Admin(),
		Settings: mgr.Settings(),
		Unread:   mgr.UnreadCount(),
	}

	var errs []error
	var err error
	if snap.Resources, err = mgr.Resources(resources.Filter{}); err != nil {
		errs = append(errs, fmt.Errorf("resources: %w", err))
	}
	if snap.Reminders, err = mgr.Reminders(); err != nil {
		errs = append(errs, fmt.Errorf("reminders: %w", err))
	}
	if snap.Upcoming, err = mgr.NextRelease(); err != nil {
		errs = append(errs, fmt.Errorf("schedule: %w", err))
	}
	if snap.AuditLog, err = mgr.AuditLog(auditLogLimit); err != nil {
		errs = append(errs, fmt.Errorf("audit log: %w", err))
	}
	if snap.Inbox, err = mgr.Notifications(); err != nil {
		errs = append(errs, fmt.Errorf("notifications: %w", err))
	}
	return snap, errors.Join(errs...)
}

// loadSnapshotCmd returns a command that loads the full snapshot.
func loadSnapshotCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		snap, err := LoadSnapshot(mgr)
		return SnapshotLoadedMsg{Snapshot: snap, Error: err}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearToastCmd returns a command that removes a toast after a delay.
func clearToastCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveToastMsg{ID: id}
	})
}

func cycleAdminCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		a := mgr.CycleAdmin()
		return AddToastMsg{Type: ToastInfo, Message: fmt.Sprintf("Acting as %s (%s)", a.Name, a.Role), Duration: DefaultToastDuration}
	}
}

func cycleCohortCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		c, err := mgr.CycleCohort()
		if err != nil {
			return ErrorMsg{Error: err, Context: "switch cohort"}
		}
		return AddToastMsg{Type: ToastInfo, Message: "Viewing " + c.Name, Duration: DefaultToastDuration}
	}
}

func setWeekCmd(mgr *services.Manager, week int) tea.Cmd {
	return func() tea.Msg {
		if err := mgr.SetWeek(week); err != nil {
			return ErrorMsg{Error: err, Context: "change week"}
		}
		return StopLoadingMsg{Resource: "roster"}
	}
}

func sendMessageCmd(mgr *services.Manager, msg SendMessageMsg) tea.Cmd {
	return func() tea.Msg {
		res, err := mgr.SendMessage(msg.Draft)
		return MessageSentMsg{Result: res, Error: err}
	}
}

func issueCertificateCmd(mgr *services.Manager, msg IssueCertificateMsg) tea.Cmd {
	return func() tea.Msg {
		_, err := mgr.IssueCertificate(msg.ParticipantID)
		return CertificateIssuedMsg{Name: msg.Name, Error: err}
	}
}

func addResourceCmd(mgr *services.Manager, r models.Resource) tea.Cmd {
	return func() tea.Msg {
		added, err := mgr.AddResource(r)
		return ResourceResultMsg{Resource: added, Error: err}
	}
}

func deleteResourceCmd(mgr *services.Manager, id string) tea.Cmd {
	return func() tea.Msg {
		deleted, err := mgr.DeleteResource(id)
		return ResourceResultMsg{Resource: deleted, Deleted: true, Error: err}
	}
}

func reminderCmd(mgr *services.Manager, msg ReminderRequestMsg) tea.Cmd {
	return func() tea.Msg {
		if msg.Now {
			r, res, err := mgr.SendReminderNow(msg.Request)
			return ReminderResultMsg{Reminder: r, Result: res, Now: true, Error: err}
		}
		r, err := mgr.ScheduleReminder(msg.Request)
		return ReminderResultMsg{Reminder: r, Error: err}
	}
}

func updateSettingsCmd(mgr *services.Manager, msg UpdateSettingsMsg) tea.Cmd {
	return func() tea.Msg {
		changes, err := mgr.UpdateSettings(msg.Settings)
		return SettingsSavedMsg{Changes: changes, Error: err}
	}
}

func markReadCmd(mgr *services.Manager, id string) tea.Cmd {
	return func() tea.Msg {
		var err error
		if id == "" {
			err = mgr.MarkAllRead()
		} else {
			err = mgr.MarkRead(id)
		}
		if err != nil {
			return ErrorMsg{Error: err, Context: "update notifications"}
		}
		return nil
	}
}

// copyToClipboardCmd writes text to the system clipboard.
func copyToClipboardCmd(msg CopyToClipboardMsg) tea.Cmd {
	return func() tea.Msg {
		return ClipboardResultMsg{Label: msg.Label, Error: clipboard.WriteAll(msg.Text)}
	}
}

// ContactList joins the addresses of participants for channel, skipping blanks.
func ContactList(participants []models.Participant, channel models.Channel) string {
	var out []string
	for _, p := range participants {
		addr := p.Email
		if channel == models.ChannelWhatsApp {
			addr = p.WhatsApp
		}
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	if channel == models.ChannelEmail {
		return strings.Join(out, ", ")
	}
	return strings.Join(out, "\n")
}

// notifySuccessCmd returns a command that shows a success toast.
func notifySuccessCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddToastMsg{Type: ToastSuccess, Message: message, Duration: DefaultToastDuration}
	}
}

// notifyErrorCmd returns a command that shows an error toast.
func notifyErrorCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddToastMsg{Type: ToastError, Message: message, Duration: LongToastDuration}
	}
}

// notifyWarningCmd returns a command that shows a warning toast.
func notifyWarningCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddToastMsg{Type: ToastWarning, Message: message, Duration: DefaultToastDuration}
	}
}

// notifyInfoCmd returns a command that shows an info toast.
func notifyInfoCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddToastMsg{Type: ToastInfo, Message: message, Duration: DefaultToastDuration}
	}
}

// Emit wraps a message in a command. Tabs use it to hand requests to the root model.
func Emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// Notify returns a command that shows a toast from a tab.
func Notify(toastType ToastType, message string) tea.Cmd {
	switch toastType {
	case ToastError:
		return notifyErrorCmd(message)
	case ToastWarning:
		return notifyWarningCmd(message)
	case ToastInfo:
		return notifyInfoCmd(message)
	default:
		return notifySuccessCmd(message)
	}
}
