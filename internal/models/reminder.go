package models

import "time"

// ReminderStatus is the delivery state of a reminder.
type ReminderStatus string

const (
	ReminderSent      ReminderStatus = "Sent"
	ReminderScheduled ReminderStatus = "Scheduled"
	ReminderFailed    ReminderStatus = "Failed"
)

// ReminderLog is one reminder batch, scheduled or delivered.
type ReminderLog struct {
	ID             string         `json:"id"`
	Date           time.Time      `json:"date"`
	Template       string         `json:"template"`
	Channel        Channel        `json:"channel"`
	Body           string         `json:"body,omitempty"`
	RecipientIDs   []string       `json:"recipientIds,omitempty"`
	RecipientCount int            `json:"recipientCount"`
	DeliveryRate   int            `json:"deliveryRate"`
	Status         ReminderStatus `json:"status"`
}

// IsDue reports whether a scheduled reminder should go out at now.
func (r *ReminderLog) IsDue(now time.Time) bool {
	return r.Status == ReminderScheduled && !r.Date.After(now)
}

// DefaultReminderLogs returns the reminder history the dashboard starts with.
func DefaultReminderLogs() []ReminderLog {
	return []ReminderLog{
		{ID: "r-1", Date: fixtureTime("2023-10-26 09:00"), Template: "Week 8 Content Release", Channel: ChannelWhatsApp, RecipientCount: 45, DeliveryRate: 100, Status: ReminderSent},
		{ID: "r-2", Date: fixtureTime("2023-10-23 09:00"), Template: "Week 7 Accountability Nudge", Channel: ChannelWhatsApp, RecipientCount: 12, DeliveryRate: 92, Status: ReminderSent},
		{ID: "r-3", Date: fixtureTime("2023-10-19 09:00"), Template: "Week 7 Content Release", Channel: ChannelWhatsApp, RecipientCount: 45, DeliveryRate: 98, Status: ReminderSent},
		{ID: "r-4", Date: fixtureTime("2023-10-16 09:00"), Template: "Week 6 Accountability Nudge", Channel: ChannelWhatsApp, RecipientCount: 8, DeliveryRate: 100, Status: ReminderSent},
	}
}

// Channel is the medium a message is delivered through.
type Channel string

const (
	ChannelEmail    Channel = "Email"
	ChannelWhatsApp Channel = "WhatsApp"
)

// OutboxMessage is a single rendered message addressed to one participant.
type OutboxMessage struct {
	ID            string    `json:"id"`
	BatchID       string    `json:"batchId"`
	Channel       Channel   `json:"channel"`
	ParticipantID string    `json:"participantId"`
	Address       string    `json:"address"`
	Subject       string    `json:"subject,omitempty"`
	Body          string    `json:"body"`
	Attachments   int       `json:"attachments"`
	Bcc           bool      `json:"bcc"`
	Delivered     bool      `json:"delivered"`
	CreatedAt     time.Time `json:"createdAt"`
}
