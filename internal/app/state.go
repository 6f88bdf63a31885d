// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/metrics"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/reminders"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/settings"
)

// ToastType defines the type of toast.
type ToastType int

const (
	// ToastSuccess represents a success toast.
	ToastSuccess ToastType = iota
	// ToastError represents an error toast.
	ToastError
	// ToastWarning represents a warning toast.
	ToastWarning
	// ToastInfo represents an informational toast.
	ToastInfo
	// ToastLoading represents a loading toast with spinner.
	ToastLoading
)

const (
	// LoadingToastID is the fixed ID for loading toasts.
	LoadingToastID = "__loading__"
)

// String returns the string representation of a ToastType.
func (n ToastType) String() string {
	switch n {
	case ToastSuccess:
		return "success"
	case ToastError:
		return "error"
	case ToastWarning:
		return "warning"
	case ToastInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Toast represents a short-lived message shown over the current view.
type Toast struct {
	ID        string
	Type      ToastType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the toast has expired.
func (n *Toast) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial bool
	Roster  bool
	Data    bool
}

// Snapshot is everything the views read from the services at once.
type Snapshot struct {
	Roster    models.Roster
	Stats     models.DashboardStats
	Cohort    models.Cohort
	Cohorts   []models.Cohort
	Admin     models.Admin
	Settings  settings.ProgramSettings
	Resources []models.Resource
	Reminders []models.ReminderLog
	Upcoming  reminders.Upcoming
	AuditLog  []models.AuditLogEntry
	Inbox     []models.Notification
	Unread    int
}

// State is the application state shared by the root model and every tab.
type State struct {
	mu sync.RWMutex

	view      models.View
	admin     models.Admin
	cohort    models.Cohort
	cohorts   []models.Cohort
	roster    models.Roster
	stats     models.DashboardStats
	filter    metrics.Filter
	settings  settings.ProgramSettings
	resources []models.Resource
	reminders []models.ReminderLog
	upcoming  reminders.Upcoming
	auditLog  []models.AuditLogEntry
	inbox     []models.Notification
	unread    int

	// rosterVersion increments on every roster change so tabs can rebuild tables.
	rosterVersion int

	Loading LoadingState

	LastUpdated time.Time

	toasts []Toast
}

// NewState creates the state with the default admin on the overview.
func NewState() *State {
	return &State{
		view:     models.ViewDashboard,
		admin:    models.DefaultAdmins()[0],
		settings: settings.Defaults(),
		toasts:   make([]Toast, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "roster":
		s.Loading.Roster = loading
	case "data":
		s.Loading.Data = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial ||
		s.Loading.Roster ||
		s.Loading.Data
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// ApplySnapshot replaces all service data at once.
func (s *State) ApplySnapshot(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setRosterLocked(snap.Roster, snap.Stats, snap.Cohort)
	s.cohorts = snap.Cohorts
	if snap.Admin.ID != s.admin.ID {
		s.setAdminLocked(snap.Admin)
	}
	s.settings = snap.Settings
	s.resources = snap.Resources
	s.reminders = snap.Reminders
	s.upcoming = snap.Upcoming
	s.auditLog = snap.AuditLog
	s.inbox = snap.Inbox
	s.unread = snap.Unread
	s.Loading.Initial = false
	s.Loading.Data = false
}

// SetRoster updates the roster and its summary.
func (s *State) SetRoster(roster models.Roster, stats models.DashboardStats, cohort models.Cohort) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setRosterLocked(roster, stats, cohort)
	s.Loading.Roster = false
}

func (s *State) setRosterLocked(roster models.Roster, stats models.DashboardStats, cohort models.Cohort) {
	s.roster = roster
	s.stats = stats
	s.cohort = cohort
	s.rosterVersion++
	s.LastUpdated = time.Now()
}

// GetRoster returns a copy of the roster.
func (s *State) GetRoster() models.Roster {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roster.Clone()
}

// RosterVersion returns a counter that changes whenever the roster does.
func (s *State) RosterVersion() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rosterVersion
}

// GetStats returns the current dashboard statistics.
func (s *State) GetStats() models.DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// CurrentWeek returns the program week being viewed.
func (s *State) CurrentWeek() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roster.CurrentWeek
}

// GetCohort returns the selected cohort.
func (s *State) GetCohort() models.Cohort {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cohort
}

// GetCohorts returns every cohort.
func (s *State) GetCohorts() []models.Cohort {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.cohorts)
}

// SetAdmin switches the acting admin and returns to the overview.
func (s *State) SetAdmin(a models.Admin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setAdminLocked(a)
}

func (s *State) setAdminLocked(a models.Admin) {
	s.admin = a
	s.view = models.ViewDashboard
}

// GetAdmin returns the acting admin.
func (s *State) GetAdmin() models.Admin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin
}

// Menu returns the views the acting admin may open.
func (s *State) Menu() []models.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.MenuFor(s.admin.Role)
}

// CurrentView returns the open view.
func (s *State) CurrentView() models.View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Navigate opens view if the acting admin may see it. A non-nil filter replaces
// the participant filter; opening participants without one resets it.
func (s *State) Navigate(view models.View, filter *metrics.Filter) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !models.CanAccess(s.admin.Role, view) {
		return false
	}
	s.view = view
	switch {
	case filter != nil:
		s.filter = *filter
	case view == models.ViewParticipants:
		s.filter = metrics.Filter{}
	}
	return true
}

// GetFilter returns the participant filter.
func (s *State) GetFilter() metrics.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// SetFilter replaces the participant filter.
func (s *State) SetFilter(f metrics.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

// FilteredParticipants applies the participant filter to the roster.
func (s *State) FilteredParticipants() []models.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter.Apply(s.roster.Participants)
}

// GetSettings returns the program settings.
func (s *State) GetSettings() settings.ProgramSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetSettings replaces the program settings.
func (s *State) SetSettings(p settings.ProgramSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = p
}

// GetResources returns the resource library.
func (s *State) GetResources() []models.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.resources)
}

// GetReminders returns the reminder history and the next automated sends.
func (s *State) GetReminders() ([]models.ReminderLog, reminders.Upcoming) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.reminders), s.upcoming
}

// GetAuditLog returns the audit trail, newest first.
func (s *State) GetAuditLog() []models.AuditLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.auditLog)
}

// GetInbox returns the notification inbox and its unread count.
func (s *State) GetInbox() ([]models.Notification, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.inbox), s.unread
}

// SetInbox replaces the notification inbox.
func (s *State) SetInbox(inbox []models.Notification, unread int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inbox = inbox
	s.unread = unread
}

// AddToast adds a new toast and returns its ID.
func (s *State) AddToast(toastType ToastType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()

	toast := Toast{
		ID:        id,
		Type:      toastType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	}

	s.toasts = append(s.toasts, toast)

	// Keep only the last 5 toasts
	if len(s.toasts) > 5 {
		s.toasts = s.toasts[len(s.toasts)-5:]
	}

	return id
}

// RemoveToast removes a toast by ID.
func (s *State) RemoveToast(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.toasts {
		if n.ID == id {
			s.toasts = append(s.toasts[:i], s.toasts[i+1:]...)
			return
		}
	}
}

// ClearExpiredToasts removes all expired toasts.
func (s *State) ClearExpiredToasts() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Toast, 0, len(s.toasts))
	for _, n := range s.toasts {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.toasts = active
}

// GetToasts returns a copy of all active toasts.
func (s *State) GetToasts() []Toast {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Toast, 0, len(s.toasts))
	for _, n := range s.toasts {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}

	return active
}

// SetLoadingToast sets a loading toast message.
func (s *State) SetLoadingToast(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.toasts {
		if n.ID == LoadingToastID {
			s.toasts[i].Message = message
			return
		}
	}

	s.toasts = append(s.toasts, Toast{
		ID:        LoadingToastID,
		Type:      ToastLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingToast removes the loading toast.
func (s *State) ClearLoadingToast() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.toasts {
		if n.ID == LoadingToastID {
			s.toasts = append(s.toasts[:i], s.toasts[i+1:]...)
			return
		}
	}
}

// GetLastUpdated returns the last time the roster was updated.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}
