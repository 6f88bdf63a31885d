// Package messaging renders participant messages into the outbox.
//
// Nothing leaves the machine: every recipient gets one personalized outbox
// row, and recipients without an address for the channel are recorded as
// undeliverable.
package messaging

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/leap-dashboard-tui/internal/logger"
	"github.com/j-veylop/leap-dashboard-tui/internal/models"
)

var (
	// ErrNoRecipients is returned when a draft has nobody to send to.
	ErrNoRecipients = errors.New("No recipients selected.")

	// ErrEmptyMessage is returned when a draft has neither body nor attachments.
	ErrEmptyMessage = errors.New("message needs a body or an attachment")

	// ErrMissingSubject is returned for emails without a subject.
	ErrMissingSubject = errors.New("email needs a subject")

	// ErrUnknownChannel is returned for channels other than Email and WhatsApp.
	ErrUnknownChannel = errors.New("unknown channel")
)

// DefaultTopic fills {topic} when no resource is assigned to the week.
const DefaultTopic = "this week's material"

// Draft is a message waiting to be sent.
type Draft struct {
	Channel     models.Channel
	Recipients  []models.Participant
	Subject     string
	Body        string
	Attachments []models.Resource
	Week        int
	Topic       string
}

// IsBulk reports whether the draft goes to more than one participant.
func (d *Draft) IsBulk() bool {
	return len(d.Recipients) > 1
}

// Validate checks that the draft can be sent on its channel.
func (d *Draft) Validate() error {
	if len(d.Recipients) == 0 {
		return ErrNoRecipients
	}

	hasContent := strings.TrimSpace(d.Body) != "" || len(d.Attachments) > 0
	switch d.Channel {
	case models.ChannelEmail:
		if strings.TrimSpace(d.Subject) == "" {
			return ErrMissingSubject
		}
	case models.ChannelWhatsApp:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChannel, d.Channel)
	}
	if !hasContent {
		return ErrEmptyMessage
	}
	return nil
}

// ToLine describes the recipients the way the compose form shows them.
func (d *Draft) ToLine() string {
	switch {
	case len(d.Recipients) == 0:
		return ""
	case d.IsBulk() && d.Channel == models.ChannelEmail:
		return strconv.Itoa(len(d.Recipients)) + " recipients (BCC)"
	case d.IsBulk():
		return strconv.Itoa(len(d.Recipients)) + " participants (broadcast list)"
	case d.Channel == models.ChannelEmail:
		return d.Recipients[0].Email
	default:
		return d.Recipients[0].WhatsApp
	}
}

// Personalize replaces {name}, {week} and {topic} for one participant.
// {name} becomes the participant's first name.
func Personalize(text string, p *models.Participant, week int, topic string) string {
	if topic == "" {
		topic = DefaultTopic
	}
	r := strings.NewReplacer(
		"{name}", FirstName(p.FullName),
		"{week}", strconv.Itoa(week),
		"{topic}", topic,
	)
	return r.Replace(text)
}

// FirstName returns the first word of a full name.
func FirstName(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Topic derives the {topic} of a week from the first resource assigned to it,
// dropping a leading "Week N:" label.
func Topic(resources []models.Resource, week int) string {
	for _, r := range resources {
		if r.AssignedWeek == nil || *r.AssignedWeek != week {
			continue
		}
		title := r.Title
		if strings.HasPrefix(title, "Week ") {
			if _, rest, ok := strings.Cut(title, ":"); ok {
				title = rest
			}
		}
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	return DefaultTopic
}

// Result summarizes a sent batch.
type Result struct {
	BatchID       string
	Channel       models.Channel
	Subject       string
	Recipients    int
	Delivered     int
	Undeliverable int
	Attachments   int
	Messages      []models.OutboxMessage
}

// DeliveryRate is the share of recipients that had an address, as a percentage.
func (r *Result) DeliveryRate() int {
	if r.Recipients == 0 {
		return 0
	}
	return int(math.Round(float64(r.Delivered) / float64(r.Recipients) * 100))
}

// Toast is the confirmation shown after sending.
func (r *Result) Toast() string {
	attach := ""
	if r.Attachments > 0 {
		attach = fmt.Sprintf(" with %d attachments", r.Attachments)
	}
	if r.Channel == models.ChannelWhatsApp {
		return fmt.Sprintf("WhatsApp message sent to %d recipients%s", r.Recipients, attach)
	}
	return fmt.Sprintf("Email sent to %d recipients%s", r.Recipients, attach)
}

// AuditEntry builds the audit trail record for the batch.
func (r *Result) AuditEntry(actor string) models.AuditLogEntry {
	entry := models.AuditLogEntry{ActorName: actor, Status: models.AuditSuccess}
	if r.Channel == models.ChannelWhatsApp {
		entry.Action = models.ActionSendWhatsApp
		entry.Details = fmt.Sprintf("Message sent to %d recipients. Attachments: %d", r.Recipients, r.Attachments)
	} else {
		entry.Action = models.ActionSendEmail
		entry.Details = fmt.Sprintf("Subject: %q to %d recipients. Attachments: %d", r.Subject, r.Recipients, r.Attachments)
	}
	if r.Delivered == 0 {
		entry.Status = models.AuditFailure
	}
	return entry
}

// Outbox stores rendered messages.
type Outbox interface {
	InsertOutboxMessages(msgs []models.OutboxMessage) error
}

// Service renders drafts into the outbox.
type Service struct {
	outbox Outbox
	now    func() time.Time
}

// New creates a messaging service writing to outbox.
func New(outbox Outbox) *Service {
	return &Service{outbox: outbox, now: time.Now}
}

// Send validates the draft, renders one message per recipient and stores the batch.
func (s *Service) Send(d Draft) (Result, error) {
	if err := d.Validate(); err != nil {
		return Result{}, err
	}

	res := Result{
		BatchID:     uuid.NewString(),
		Channel:     d.Channel,
		Subject:     d.Subject,
		Recipients:  len(d.Recipients),
		Attachments: len(d.Attachments),
	}
	bcc := d.Channel == models.ChannelEmail && d.IsBulk()
	now := s.now()

	res.Messages = make([]models.OutboxMessage, 0, len(d.Recipients))
	for i := range d.Recipients {
		p := &d.Recipients[i]
		address := p.Email
		if d.Channel == models.ChannelWhatsApp {
			address = p.WhatsApp
		}
		delivered := strings.TrimSpace(address) != ""
		if delivered {
			res.Delivered++
		} else {
			res.Undeliverable++
		}

		msg := models.OutboxMessage{
			ID:            uuid.NewString(),
			BatchID:       res.BatchID,
			Channel:       d.Channel,
			ParticipantID: p.ID,
			Address:       address,
			Body:          Personalize(d.Body, p, d.Week, d.Topic),
			Attachments:   len(d.Attachments),
			Bcc:           bcc,
			Delivered:     delivered,
			CreatedAt:     now,
		}
		if d.Channel == models.ChannelEmail {
			msg.Subject = Personalize(d.Subject, p, d.Week, d.Topic)
		}
		res.Messages = append(res.Messages, msg)
	}

	if err := s.outbox.InsertOutboxMessages(res.Messages); err != nil {
		return Result{}, fmt.Errorf("failed to queue messages: %w", err)
	}

	logger.Info("messages queued",
		"batch", res.BatchID,
		"channel", d.Channel,
		"recipients", res.Recipients,
		"undeliverable", res.Undeliverable,
	)
	return res, nil
}
