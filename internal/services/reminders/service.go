// Package reminders schedules reminder batches and delivers them when due.
package reminders

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/j-veylop/leap-dashboard-tui/internal/logger"
	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/messaging"
	"github.com/j-veylop/leap-dashboard-tui/internal/validation"
)

// ErrNotScheduled is returned when a scheduled time is missing.
var ErrNotScheduled = errors.New("reminder needs a delivery time")

// Store is the persistence reminders need.
type Store interface {
	InsertReminder(r *models.ReminderLog) error
	UpdateReminderDelivery(id string, status models.ReminderStatus, deliveryRate int) error
	GetReminder(id string) (*models.ReminderLog, error)
	GetReminders() ([]models.ReminderLog, error)
	GetDueReminders(now time.Time) ([]models.ReminderLog, error)
	InsertAuditEntry(entry *models.AuditLogEntry) error
	IsEmpty(table string) (bool, error)
}

// Sender delivers a rendered draft.
type Sender interface {
	Send(d messaging.Draft) (messaging.Result, error)
}

// RecipientProvider resolves participant IDs against the current roster.
type RecipientProvider interface {
	ParticipantsByID(ids []string) []models.Participant
	CurrentWeek() int
}

// Event represents a reminder service event.
type Event struct {
	Error    error
	Reminder *models.ReminderLog
	Result   *messaging.Result
	Type     EventType
}

// EventType defines the type of reminder event.
type EventType int

const (
	// EventReminderScheduled indicates a reminder was queued for later.
	EventReminderScheduled EventType = iota
	// EventReminderSent indicates a reminder reached at least one participant.
	EventReminderSent
	// EventReminderFailed indicates a reminder reached nobody.
	EventReminderFailed
	// EventError indicates the poller could not read or update the store.
	EventError
)

// Config holds configuration for the reminder service.
type Config struct {
	PollInterval time.Duration
	Now          func() time.Time
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval: 30 * time.Second,
		Now:          time.Now,
	}
}

// Request describes a reminder batch.
type Request struct {
	Template     string         `json:"template" validate:"notblank,max=200"`
	Body         string         `json:"body" validate:"notblank,max=1000"`
	Channel      models.Channel `json:"channel" validate:"oneof=Email WhatsApp"`
	RecipientIDs []string       `json:"recipientIds" validate:"min=1,dive,notblank"`
	At           time.Time      `json:"at"`
	Topic        string         `json:"topic"`
}

// Service stores reminders and delivers due ones in the background.
type Service struct {
	store      Store
	sender     Sender
	recipients RecipientProvider
	config     Config
	eventChan  chan Event
	stopChan   chan struct{}
	closeOnce  sync.Once
	deliverMu  sync.Mutex

	mu        sync.RWMutex
	lastPoll  time.Time
	delivered int
	failed    int
}

// New creates the reminder service, seeding history into an empty store, and
// starts the polling goroutine.
func New(store Store, sender Sender, recipients RecipientProvider, config Config) (*Service, error) {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultConfig().PollInterval
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	empty, err := store.IsEmpty("reminders")
	if err != nil {
		return nil, err
	}
	if empty {
		for _, r := range models.DefaultReminderLogs() {
			if err := store.InsertReminder(&r); err != nil {
				return nil, fmt.Errorf("failed to seed reminders: %w", err)
			}
		}
	}

	s := &Service{
		store:      store,
		sender:     sender,
		recipients: recipients,
		config:     config,
		eventChan:  make(chan Event, 100),
		stopChan:   make(chan struct{}),
	}

	go s.pollReminders()

	return s, nil
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// History returns every reminder, newest first.
func (s *Service) History() ([]models.ReminderLog, error) {
	return s.store.GetReminders()
}

func (req *Request) normalize() {
	req.Template = strings.TrimSpace(req.Template)
	if req.Channel == "" {
		req.Channel = models.ChannelWhatsApp
	}
}

func (req *Request) toLog(status models.ReminderStatus, at time.Time) models.ReminderLog {
	ids := make([]string, len(req.RecipientIDs))
	copy(ids, req.RecipientIDs)
	return models.ReminderLog{
		Date:           at,
		Template:       req.Template,
		Channel:        req.Channel,
		Body:           req.Body,
		RecipientIDs:   ids,
		RecipientCount: len(ids),
		Status:         status,
	}
}

// Schedule stores a reminder for delivery at req.At.
func (s *Service) Schedule(actor string, req Request) (models.ReminderLog, error) {
	req.normalize()
	if req.At.IsZero() {
		return models.ReminderLog{}, ErrNotScheduled
	}
	if err := validation.Struct(req); err != nil {
		return models.ReminderLog{}, err
	}

	r := req.toLog(models.ReminderScheduled, req.At)
	if err := s.store.InsertReminder(&r); err != nil {
		return models.ReminderLog{}, err
	}

	s.audit(models.AuditLogEntry{
		ActorName: actor,
		Action:    models.ActionScheduleReminder,
		Details:   fmt.Sprintf("Scheduled %q for %d participants at %s", r.Template, r.RecipientCount, r.Date.Format("2006-01-02 15:04")),
	})
	logger.Info("reminder scheduled", "id", r.ID, "template", r.Template, "at", r.Date)

	s.sendEvent(Event{Type: EventReminderScheduled, Reminder: &r})
	return r, nil
}

// SendNow stores and immediately delivers a reminder.
func (s *Service) SendNow(actor string, req Request) (models.ReminderLog, messaging.Result, error) {
	req.normalize()
	if err := validation.Struct(req); err != nil {
		return models.ReminderLog{}, messaging.Result{}, err
	}

	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	r := req.toLog(models.ReminderScheduled, s.config.Now())
	if err := s.store.InsertReminder(&r); err != nil {
		return models.ReminderLog{}, messaging.Result{}, err
	}

	res, err := s.deliver(&r, actor, req.Topic)
	return r, res, err
}

// DeliverDue delivers every scheduled reminder whose time has come and
// returns how many were processed.
func (s *Service) DeliverDue() (int, error) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	now := s.config.Now()
	s.mu.Lock()
	s.lastPoll = now
	s.mu.Unlock()

	due, err := s.store.GetDueReminders(now)
	if err != nil {
		return 0, err
	}

	var errs []error
	for i := range due {
		if _, err := s.deliver(&due[i], models.SystemActor, ""); err != nil {
			errs = append(errs, err)
		}
	}
	return len(due), errors.Join(errs...)
}

// deliver sends one reminder and records its outcome (must hold deliverMu).
func (s *Service) deliver(r *models.ReminderLog, actor, topic string) (messaging.Result, error) {
	week := s.recipients.CurrentWeek()
	participants := s.recipients.ParticipantsByID(r.RecipientIDs)

	var res messaging.Result
	if len(participants) > 0 {
		var err error
		res, err = s.sender.Send(messaging.Draft{
			Channel:    r.Channel,
			Recipients: participants,
			Subject:    r.Template,
			Body:       r.Body,
			Week:       week,
			Topic:      topic,
		})
		if err != nil {
			s.recordFailure(r)
			return messaging.Result{}, fmt.Errorf("failed to deliver reminder %s: %w", r.ID, err)
		}
	}

	r.DeliveryRate = DeliveryRate(res.Delivered, r.RecipientCount)
	r.Status = models.ReminderSent
	if res.Delivered == 0 {
		r.Status = models.ReminderFailed
	}

	if err := s.store.UpdateReminderDelivery(r.ID, r.Status, r.DeliveryRate); err != nil {
		s.sendEvent(Event{Type: EventError, Error: err, Reminder: r})
		return res, err
	}

	details := fmt.Sprintf("Sent %s to %d participants", r.Template, res.Delivered)
	status := models.AuditSuccess
	if r.Status == models.ReminderFailed {
		details = fmt.Sprintf("Reminder %s reached none of %d participants", r.Template, r.RecipientCount)
		status = models.AuditFailure
	}
	action := models.ActionAutoReminder
	if actor != models.SystemActor {
		action = models.ActionSendWhatsApp
		if r.Channel == models.ChannelEmail {
			action = models.ActionSendEmail
		}
	}
	s.audit(models.AuditLogEntry{ActorName: actor, Action: action, Details: details, Status: status})

	s.mu.Lock()
	if r.Status == models.ReminderSent {
		s.delivered++
	} else {
		s.failed++
	}
	s.mu.Unlock()

	logger.Info("reminder delivered",
		"id", r.ID,
		"template", r.Template,
		"status", r.Status,
		"delivery_rate", r.DeliveryRate,
	)

	eventType := EventReminderSent
	if r.Status == models.ReminderFailed {
		eventType = EventReminderFailed
	}
	s.sendEvent(Event{Type: eventType, Reminder: r, Result: &res})
	return res, nil
}

func (s *Service) recordFailure(r *models.ReminderLog) {
	r.Status = models.ReminderFailed
	r.DeliveryRate = 0
	if err := s.store.UpdateReminderDelivery(r.ID, r.Status, 0); err != nil {
		logger.Error("failed to mark reminder failed", "id", r.ID, "error", err)
	}
	s.mu.Lock()
	s.failed++
	s.mu.Unlock()
	s.sendEvent(Event{Type: EventReminderFailed, Reminder: r})
}

func (s *Service) audit(entry models.AuditLogEntry) {
	if err := s.store.InsertAuditEntry(&entry); err != nil {
		logger.Error("failed to write audit entry", "action", entry.Action, "error", err)
	}
}

// DeliveryRate is delivered/total as a rounded percentage, 0 when total is 0.
func DeliveryRate(delivered, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(delivered) / float64(total) * 100))
}

// pollReminders runs the background polling goroutine.
func (s *Service) pollReminders() {
	s.pollOnce()

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.pollOnce()
		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) pollOnce() {
	select {
	case <-s.stopChan:
		return
	default:
	}
	if _, err := s.DeliverDue(); err != nil {
		logger.Error("reminder poll failed", "error", err)
		s.sendEvent(Event{Type: EventError, Error: err})
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the poller.
func (s *Service) Close() error {
	s.closeOnce.Do(func() { close(s.stopChan) })
	return nil
}

// Stats returns statistics about the reminder service.
type Stats struct {
	LastPoll  time.Time
	Delivered int
	Failed    int
}

// GetStats returns current statistics.
func (s *Service) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{LastPoll: s.lastPoll, Delivered: s.delivered, Failed: s.failed}
}
