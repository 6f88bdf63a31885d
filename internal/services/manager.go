// Package services provides service orchestration for the TUI.
package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/leap-dashboard-tui/internal/config"
	"github.com/j-veylop/leap-dashboard-tui/internal/db"
	"github.com/j-veylop/leap-dashboard-tui/internal/logger"
	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/messaging"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/metrics"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/reminders"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/resources"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/settings"
)

// ErrForbidden is returned when the current admin's role does not allow an action.
var ErrForbidden = errors.New("permission denied")

type (
	// RosterUpdatedEvent is emitted whenever the roster is regenerated or recomputed.
	RosterUpdatedEvent struct {
		Roster models.Roster
		Stats  models.DashboardStats
		Cohort models.Cohort
	}

	// SettingsChangedEvent is emitted when program settings change.
	SettingsChangedEvent struct {
		Settings settings.ProgramSettings
		Changes  []string
		External bool
	}

	// AdminChangedEvent is emitted when the acting admin switches.
	AdminChangedEvent struct {
		Admin models.Admin
	}

	// ReminderEvent is emitted when a reminder is scheduled, sent or fails.
	ReminderEvent struct {
		Reminder models.ReminderLog
	}

	// NotificationsEvent is emitted when the inbox changes.
	NotificationsEvent struct {
		Notifications []models.Notification
		Unread        int
	}

	// AuditEvent is emitted after an entry is appended to the audit trail.
	AuditEvent struct {
		Entry models.AuditLogEntry
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (RosterUpdatedEvent) isServiceEvent()   {}
func (SettingsChangedEvent) isServiceEvent() {}
func (AdminChangedEvent) isServiceEvent()    {}
func (ReminderEvent) isServiceEvent()        {}
func (NotificationsEvent) isServiceEvent()   {}
func (AuditEvent) isServiceEvent()           {}
func (ErrorEvent) isServiceEvent()           {}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	database    *db.DB
	settings    *settings.Service
	engine      *metrics.Engine
	messaging   *messaging.Service
	resources   *resources.Service
	reminders   *reminders.Service
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
	closeOnce   sync.Once

	desktopAlerts bool
	notify        func(title, message string) error
	now           func() time.Time

	stateMu  sync.RWMutex
	admins   []models.Admin
	cohorts  []models.Cohort
	admin    models.Admin
	cohort   models.Cohort
	week     int
	size     int
	baseSeed int64
	roster   models.Roster
	stats    models.DashboardStats
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		eventChan:     make(chan ServiceEvent, 100),
		stopChan:      make(chan struct{}),
		desktopAlerts: cfg.DesktopNotifications,
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		now:     time.Now,
		admins:  models.DefaultAdmins(),
		cohorts: models.DefaultCohorts(),
		week:    cfg.CurrentWeek,
		size:    cfg.RosterSize,
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.settings, err = settings.New(cfg.SettingsPath)
	if err != nil {
		_ = m.database.Close()
		return nil, err
	}

	engineConfig := metrics.DefaultConfig()
	engineConfig.Policy = m.settings.Get().Policy
	engineConfig.Seed = cfg.RosterSeed
	m.engine, err = metrics.New(engineConfig)
	if err != nil {
		m.closeServices()
		return nil, fmt.Errorf("failed to initialize metrics engine: %w", err)
	}
	m.baseSeed = m.engine.Seed()

	m.messaging = messaging.New(m.database)
	m.resources, err = resources.New(m.database)
	if err != nil {
		m.closeServices()
		return nil, err
	}

	if err := m.seedHistory(); err != nil {
		m.closeServices()
		return nil, err
	}

	m.admin = m.admins[0]
	if a, ok := models.FindAdmin(m.admins, cfg.AdminID); ok {
		m.admin = a
	} else if cfg.AdminID != "" {
		logger.Warn("unknown admin, using default", "admin", cfg.AdminID, "default", m.admin.ID)
	}
	var found bool
	m.cohort, found = ResolveCohort(m.cohorts, cfg.CohortID)
	if !found && cfg.CohortID != "" {
		logger.Warn("unknown cohort, using default", "cohort", cfg.CohortID, "default", m.cohort.ID)
	}

	if err := m.regenerate(); err != nil {
		m.closeServices()
		return nil, err
	}

	m.reminders, err = reminders.New(m.database, m.messaging, m, reminders.Config{
		PollInterval: cfg.ReminderPollInterval,
		Now:          func() time.Time { return m.now() },
	})
	if err != nil {
		m.closeServices()
		return nil, err
	}

	go m.routeEvents()

	logger.Info("services started",
		"cohort", m.cohort.ID,
		"week", m.week,
		"participants", m.size,
		"seed", m.baseSeed,
	)
	return m, nil
}

// seedHistory fills an empty store with the audit trail and inbox the dashboard starts with.
func (m *Manager) seedHistory() error {
	empty, err := m.database.IsEmpty("audit_log")
	if err != nil {
		return err
	}
	if empty {
		entries := models.DefaultAuditLog()
		for i := len(entries) - 1; i >= 0; i-- {
			if err := m.database.InsertAuditEntry(&entries[i]); err != nil {
				return fmt.Errorf("failed to seed audit log: %w", err)
			}
		}
	}

	empty, err = m.database.IsEmpty("notifications")
	if err != nil {
		return err
	}
	if empty {
		for _, n := range models.DefaultNotifications(m.now()) {
			if err := m.database.SaveNotification(&n); err != nil {
				return fmt.Errorf("failed to seed notifications: %w", err)
			}
		}
	}
	return nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.settings.Events():
			m.handleSettingsEvent(event)

		case event := <-m.reminders.Events():
			m.handleReminderEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

// handleSettingsEvent applies settings edited outside the dashboard.
func (m *Manager) handleSettingsEvent(event settings.Event) {
	switch event.Type {
	case settings.EventSettingsChanged:
		if event.Settings == nil {
			return
		}
		if err := m.applySettings(*event.Settings); err != nil {
			m.broadcast(ErrorEvent{Service: "settings", Error: err})
			return
		}
		m.broadcast(SettingsChangedEvent{
			Settings: *event.Settings,
			Changes:  event.Changes,
			External: true,
		})

	case settings.EventError:
		m.broadcast(ErrorEvent{Service: "settings", Error: event.Error})
	}
}

// handleReminderEvent converts and broadcasts reminder events.
func (m *Manager) handleReminderEvent(event reminders.Event) {
	switch event.Type {
	case reminders.EventReminderScheduled, reminders.EventReminderSent:
		if event.Reminder != nil {
			m.broadcast(ReminderEvent{Reminder: *event.Reminder})
		}

	case reminders.EventReminderFailed:
		if event.Reminder == nil {
			return
		}
		r := *event.Reminder
		m.broadcast(ReminderEvent{Reminder: r})
		m.raise(models.Notification{
			ID:      "reminder-failed-" + r.ID,
			Type:    models.AlertCritical,
			Title:   "Reminder Failed",
			Message: fmt.Sprintf("%q reached none of its %d recipients.", r.Template, r.RecipientCount),
			Link:    models.ViewReminders,
		})
		m.broadcastNotifications()

	case reminders.EventError:
		m.broadcast(ErrorEvent{Service: "reminders", Error: event.Error})
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	// Send to main event channel
	select {
	case m.eventChan <- event:
	default:
	}

	// Send to subscribers
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// closeServices releases whatever NewManager managed to open.
func (m *Manager) closeServices() []error {
	var errs []error

	if m.reminders != nil {
		if err := m.reminders.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if m.settings != nil {
		if err := m.settings.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	var errs []error
	m.closeOnce.Do(func() {
		if m.stopChan != nil {
			close(m.stopChan)
		}

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		errs = m.closeServices()
	})

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
