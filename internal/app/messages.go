package app

import (
	"time"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/messaging"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/metrics"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/reminders"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/settings"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// SnapshotLoadedMsg contains everything loaded from the services.
type SnapshotLoadedMsg struct {
	Snapshot Snapshot
	Error    error
}

// RosterChangedMsg is forwarded to tabs after the roster is replaced.
type RosterChangedMsg struct {
	Version int
}

// AddToastMsg requests adding a new toast.
type AddToastMsg struct {
	Type     ToastType
	Message  string
	Duration time.Duration
}

// RemoveToastMsg requests removal of a toast.
type RemoveToastMsg struct {
	ID string
}

// ClearExpiredToastsMsg triggers clearing of expired toasts.
type ClearExpiredToastsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// NavigateMsg opens a view, optionally with a participant filter.
type NavigateMsg struct {
	View   models.View
	Filter *metrics.Filter
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// CycleAdminMsg switches to the next staff account.
type CycleAdminMsg struct{}

// CycleCohortMsg switches to the next cohort.
type CycleCohortMsg struct{}

// ShiftWeekMsg moves the viewed week by Delta.
type ShiftWeekMsg struct {
	Delta int
}

// CopyToClipboardMsg requests copying text to clipboard.
type CopyToClipboardMsg struct {
	Text  string
	Label string
}

// ClipboardResultMsg contains the result of a clipboard operation.
type ClipboardResultMsg struct {
	Label string
	Error error
}

// OpenComposeMsg opens the message composer.
type OpenComposeMsg struct {
	Channel    models.Channel
	Recipients []models.Participant
	Subject    string
	Body       string
}

// SendMessageMsg requests sending a draft.
type SendMessageMsg struct {
	Draft messaging.Draft
}

// MessageSentMsg contains the result of a send.
type MessageSentMsg struct {
	Result messaging.Result
	Error  error
}

// IssueCertificateMsg requests issuing a certificate.
type IssueCertificateMsg struct {
	ParticipantID string
	Name          string
}

// CertificateIssuedMsg contains the result of issuing a certificate.
type CertificateIssuedMsg struct {
	Name  string
	Error error
}

// AddResourceMsg requests adding a resource.
type AddResourceMsg struct {
	Resource models.Resource
}

// DeleteResourceMsg requests deleting a resource.
type DeleteResourceMsg struct {
	ID string
}

// ResourceResultMsg contains the result of a resource change.
type ResourceResultMsg struct {
	Resource models.Resource
	Deleted  bool
	Error    error
}

// ReminderRequestMsg requests scheduling a reminder, or sending it now when Now is set.
type ReminderRequestMsg struct {
	Request reminders.Request
	Now     bool
}

// ReminderResultMsg contains the result of a reminder request.
type ReminderResultMsg struct {
	Reminder models.ReminderLog
	Result   messaging.Result
	Now      bool
	Error    error
}

// UpdateSettingsMsg requests saving settings.
type UpdateSettingsMsg struct {
	Settings settings.ProgramSettings
}

// SettingsSavedMsg contains the result of saving settings.
type SettingsSavedMsg struct {
	Changes []string
	Error   error
}

// MarkAllReadMsg marks the whole inbox read.
type MarkAllReadMsg struct{}

// MarkReadMsg marks one notification read.
type MarkReadMsg struct {
	ID string
}
