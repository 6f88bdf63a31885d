package models

import "time"

// AlertType is the severity of an inbox notification.
type AlertType string

const (
	AlertCritical AlertType = "critical"
	AlertWarning  AlertType = "warning"
	AlertInfo     AlertType = "info"
)

// Notification is an entry in the admin notification inbox.
type Notification struct {
	ID        string    `json:"id"`
	Type      AlertType `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	IsRead    bool      `json:"isRead"`
	Link      View      `json:"link,omitempty"`
}

// DefaultNotifications returns the inbox contents at startup, relative to now.
func DefaultNotifications(now time.Time) []Notification {
	return []Notification{
		{
			ID:        "n-1",
			Type:      AlertCritical,
			Title:     "Integration Error",
			Message:   "WhatsApp Business API token expired. Messages are not sending.",
			Timestamp: now.Add(-10 * time.Minute),
		},
		{
			ID:        "n-2",
			Type:      AlertWarning,
			Title:     "Low Engagement Alert",
			Message:   "5 participants have dropped below 50% completion rate this week.",
			Timestamp: now.Add(-2 * time.Hour),
			Link:      ViewParticipants,
		},
		{
			ID:        "n-3",
			Type:      AlertInfo,
			Title:     "Weekly Summary Ready",
			Message:   "Week 7 progress report is available for review.",
			Timestamp: now.Add(-24 * time.Hour),
			IsRead:    true,
		},
	}
}
