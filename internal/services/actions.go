package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/j-veylop/leap-dashboard-tui/internal/logger"
	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/messaging"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/metrics"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/reminders"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/resources"
)

var (
	// ErrNotEligible is returned when issuing a certificate below the threshold.
	ErrNotEligible = errors.New("participant is not eligible for a certificate")

	// ErrAlreadyIssued is returned when a participant already has a certificate.
	ErrAlreadyIssued = errors.New("certificate already issued")

	// ErrUnknownParticipant is returned for IDs missing from the roster.
	ErrUnknownParticipant = errors.New("participant not found")
)

// Audit appends an entry for the acting admin and announces it.
func (m *Manager) Audit(action models.AuditAction, details string, status models.AuditStatus) {
	m.record(models.AuditLogEntry{
		ActorName: m.Admin().Name,
		Action:    action,
		Details:   details,
		Status:    status,
	})
}

func (m *Manager) record(entry models.AuditLogEntry) {
	if err := m.database.InsertAuditEntry(&entry); err != nil {
		logger.Error("failed to write audit entry", "action", entry.Action, "error", err)
		m.broadcast(ErrorEvent{Service: "audit", Error: err})
		return
	}
	m.broadcast(AuditEvent{Entry: entry})
}

// AuditLog returns up to limit entries, newest first. limit <= 0 returns all.
func (m *Manager) AuditLog(limit int) ([]models.AuditLogEntry, error) {
	return m.database.GetAuditLog(limit)
}

// Notifications returns the inbox, newest first.
func (m *Manager) Notifications() ([]models.Notification, error) {
	return m.database.GetNotifications(0)
}

// UnreadCount returns the number of unread notifications.
func (m *Manager) UnreadCount() int {
	n, err := m.database.CountUnreadNotifications()
	if err != nil {
		logger.Warn("failed to count unread notifications", "error", err)
		return 0
	}
	return n
}

// MarkAllRead marks every notification as read.
func (m *Manager) MarkAllRead() error {
	if _, err := m.database.MarkAllNotificationsRead(); err != nil {
		return err
	}
	m.broadcastNotifications()
	return nil
}

// MarkRead marks a single notification as read.
func (m *Manager) MarkRead(id string) error {
	if err := m.database.MarkNotificationRead(id); err != nil {
		return err
	}
	m.broadcastNotifications()
	return nil
}

func (m *Manager) broadcastNotifications() {
	list, err := m.Notifications()
	if err != nil {
		m.broadcast(ErrorEvent{Service: "notifications", Error: err})
		return
	}
	unread := 0
	for _, n := range list {
		if !n.IsRead {
			unread++
		}
	}
	m.broadcast(NotificationsEvent{Notifications: list, Unread: unread})
}

// raise stores n unless a notification with the same ID already exists.
// Critical and warning alerts are also sent to the desktop.
func (m *Manager) raise(n models.Notification) bool {
	existing, err := m.database.GetNotifications(0)
	if err != nil {
		logger.Warn("failed to read notifications", "error", err)
		return false
	}
	for _, e := range existing {
		if e.ID == n.ID {
			return false
		}
	}

	if n.Timestamp.IsZero() {
		n.Timestamp = m.now()
	}
	if err := m.database.SaveNotification(&n); err != nil {
		logger.Error("failed to save notification", "id", n.ID, "error", err)
		return false
	}

	if m.desktopAlerts && n.Type != models.AlertInfo && m.notify != nil {
		if err := m.notify(n.Title, n.Message); err != nil {
			logger.Debug("desktop notification failed", "error", err)
		}
	}
	return true
}

// checkAlerts raises the derived alerts for the current roster and thresholds.
func (m *Manager) checkAlerts() {
	th := m.settings.Get().Thresholds

	m.stateMu.RLock()
	cohortID, week := m.roster.CohortID, m.roster.CurrentWeek
	low := len(metrics.BelowCompletion(m.roster.Participants, th.LowEngagementWarning))
	missed := len(metrics.MissedAtLeast(m.roster.Participants, th.AutoFlagMissedWeeks))
	m.stateMu.RUnlock()

	raised := false
	if low > 0 {
		raised = m.raise(models.Notification{
			ID:      fmt.Sprintf("%s-w%d-low-%d", cohortID, week, th.LowEngagementWarning),
			Type:    models.AlertWarning,
			Title:   "Low Engagement Alert",
			Message: fmt.Sprintf("%d participants have dropped below %d%% completion rate this week.", low, th.LowEngagementWarning),
			Link:    models.ViewParticipants,
		}) || raised
	}
	if missed > 0 {
		raised = m.raise(models.Notification{
			ID:      fmt.Sprintf("%s-w%d-missed-%d", cohortID, week, th.AutoFlagMissedWeeks),
			Type:    models.AlertWarning,
			Title:   "Missed Weeks Alert",
			Message: fmt.Sprintf("%d participants have missed %d or more weeks.", missed, th.AutoFlagMissedWeeks),
			Link:    models.ViewProgress,
		}) || raised
	}
	raised = m.raise(models.Notification{
		ID:      fmt.Sprintf("%s-w%d-summary", cohortID, week),
		Type:    models.AlertInfo,
		Title:   "Weekly Summary Ready",
		Message: fmt.Sprintf("Week %d progress report is available for review.", week),
		Link:    models.ViewAnalytics,
	}) || raised

	if raised {
		m.broadcastNotifications()
	}
}

// topic names what the given week covers, for {topic} placeholders.
func (m *Manager) topic(week int) string {
	list, err := m.resources.ForWeek(week)
	if err != nil {
		logger.Warn("failed to load week resources", "week", week, "error", err)
	}
	return messaging.Topic(list, week)
}

// SendMessage sends a draft as the acting admin and records it in the audit trail.
func (m *Manager) SendMessage(d messaging.Draft) (messaging.Result, error) {
	admin := m.Admin()
	if !models.CanMessage(admin.Role) {
		return messaging.Result{}, fmt.Errorf("%w: %s cannot message participants", ErrForbidden, admin.Role)
	}

	if d.Week == 0 {
		d.Week = m.CurrentWeek()
	}
	if d.Topic == "" {
		d.Topic = m.topic(d.Week)
	}

	res, err := m.messaging.Send(d)
	if err != nil {
		return messaging.Result{}, err
	}
	m.record(res.AuditEntry(admin.Name))
	return res, nil
}

// Resources lists the library.
func (m *Manager) Resources(f resources.Filter) ([]models.Resource, error) {
	return m.resources.List(f)
}

// AddResource adds to the library as the acting admin.
func (m *Manager) AddResource(r models.Resource) (models.Resource, error) {
	added, err := m.resources.Add(m.Admin(), r)
	if err != nil {
		return models.Resource{}, err
	}
	m.Audit(models.ActionAddResource, resources.AddedDetails(added), models.AuditSuccess)
	return added, nil
}

// DeleteResource removes a resource as the acting admin.
func (m *Manager) DeleteResource(id string) (models.Resource, error) {
	deleted, err := m.resources.Delete(m.Admin(), id)
	if err != nil {
		return models.Resource{}, err
	}
	m.Audit(models.ActionDeleteResource, resources.DeletedDetails(deleted), models.AuditSuccess)
	return deleted, nil
}

func (m *Manager) canRemind() error {
	admin := m.Admin()
	if !models.CanAccess(admin.Role, models.ViewReminders) {
		return fmt.Errorf("%w: %s cannot send reminders", ErrForbidden, admin.Role)
	}
	return nil
}

// ScheduleReminder queues a reminder batch for later delivery.
func (m *Manager) ScheduleReminder(req reminders.Request) (models.ReminderLog, error) {
	if err := m.canRemind(); err != nil {
		return models.ReminderLog{}, err
	}
	return m.reminders.Schedule(m.Admin().Name, req)
}

// SendReminderNow delivers a reminder batch immediately.
func (m *Manager) SendReminderNow(req reminders.Request) (models.ReminderLog, messaging.Result, error) {
	if err := m.canRemind(); err != nil {
		return models.ReminderLog{}, messaging.Result{}, err
	}
	if req.Topic == "" {
		req.Topic = m.topic(m.CurrentWeek())
	}
	r, res, err := m.reminders.SendNow(m.Admin().Name, req)
	if err != nil {
		return r, res, err
	}
	m.broadcast(ReminderEvent{Reminder: r})
	return r, res, nil
}

// Reminders returns the reminder history, newest first.
func (m *Manager) Reminders() ([]models.ReminderLog, error) {
	return m.reminders.History()
}

// NextRelease returns the upcoming automated sends.
func (m *Manager) NextRelease() (reminders.Upcoming, error) {
	return reminders.NextRelease(m.now(), m.settings.Get().Schedule)
}

// ReminderStats returns the reminder poller statistics.
func (m *Manager) ReminderStats() reminders.Stats {
	return m.reminders.GetStats()
}

// Eligibility splits the roster by certificate eligibility.
func (m *Manager) Eligibility() (eligible, ineligible []models.Participant) {
	threshold := m.settings.Get().Policy.CertificationThreshold
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return metrics.Eligibility(m.roster.Participants, threshold)
}

// IssueCertificate records a certificate for an eligible participant and queues
// the graduation message to them.
func (m *Manager) IssueCertificate(participantID string) (messaging.Result, error) {
	admin := m.Admin()
	if !models.CanAccess(admin.Role, models.ViewCertificates) {
		return messaging.Result{}, fmt.Errorf("%w: %s cannot issue certificates", ErrForbidden, admin.Role)
	}
	ps := m.Settings()

	m.stateMu.RLock()
	cohortID, week := m.roster.CohortID, m.roster.CurrentWeek
	p, ok := m.roster.Find(participantID)
	var participant models.Participant
	if ok {
		participant = *p
	}
	m.stateMu.RUnlock()

	switch {
	case !ok:
		return messaging.Result{}, fmt.Errorf("%w: %s", ErrUnknownParticipant, participantID)
	case participant.CertificateIssued:
		return messaging.Result{}, fmt.Errorf("%w: %s", ErrAlreadyIssued, participant.FullName)
	case participant.CompletionRate < ps.Policy.CertificationThreshold:
		return messaging.Result{}, fmt.Errorf("%w: %s is at %d%%, needs %d%%",
			ErrNotEligible, participant.FullName, participant.CompletionRate, ps.Policy.CertificationThreshold)
	}

	created, err := m.database.IssueCertificate(cohortID, participantID, admin.Name, m.now())
	if err != nil {
		return messaging.Result{}, err
	}
	if !created {
		return messaging.Result{}, fmt.Errorf("%w: %s", ErrAlreadyIssued, participant.FullName)
	}

	m.stateMu.Lock()
	if p, ok := m.roster.Find(participantID); ok {
		p.CertificateIssued = true
	}
	m.refreshStatsLocked()
	event := m.rosterEventLocked()
	m.stateMu.Unlock()
	m.broadcast(event)

	res, err := m.messaging.Send(messaging.Draft{
		Channel:    models.ChannelWhatsApp,
		Recipients: []models.Participant{participant},
		Body:       ps.Templates.GraduationCongrats,
		Week:       week,
		Topic:      m.topic(week),
	})
	if err != nil {
		logger.Error("failed to queue graduation message", "participant", participantID, "error", err)
	}

	m.Audit(models.ActionIssueCertificate,
		fmt.Sprintf("Issued certificate to %s (%s)", participant.FullName, participant.ID),
		models.AuditSuccess)
	logger.Info("certificate issued", "cohort", cohortID, "participant", participantID, "at", m.now().Format(time.RFC3339))
	return res, err
}
