package models

import "time"

// AuditAction names the kind of change recorded in the audit trail.
type AuditAction string

const (
	ActionSettingsUpdate    AuditAction = "SETTINGS_UPDATE"
	ActionAutoReminder      AuditAction = "AUTO_REMINDER"
	ActionParticipantUpdate AuditAction = "PARTICIPANT_UPDATE"
	ActionSyncSheets        AuditAction = "SYNC_SHEETS"
	ActionSendEmail         AuditAction = "SEND_EMAIL"
	ActionSendWhatsApp      AuditAction = "SEND_WHATSAPP"
	ActionAddResource       AuditAction = "ADD_RESOURCE"
	ActionDeleteResource    AuditAction = "DELETE_RESOURCE"
	ActionIssueCertificate  AuditAction = "ISSUE_CERTIFICATE"
	ActionScheduleReminder  AuditAction = "SCHEDULE_REMINDER"
)

// AuditStatus is the outcome of an audited action.
type AuditStatus string

const (
	AuditSuccess AuditStatus = "Success"
	AuditFailure AuditStatus = "Failure"
)

// SystemActor is the actor name used for scheduled work.
const SystemActor = "System"

// AuditLogEntry records a single administrative action.
type AuditLogEntry struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	ActorName string      `json:"actorName"`
	Action    AuditAction `json:"action"`
	Details   string      `json:"details"`
	Status    AuditStatus `json:"status"`
}

func fixtureTime(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// DefaultAuditLog returns the audit history the dashboard starts with, newest first.
func DefaultAuditLog() []AuditLogEntry {
	return []AuditLogEntry{
		{ID: "log-1", Timestamp: fixtureTime("2023-10-27 14:30"), ActorName: "Sarah Connor", Action: ActionSettingsUpdate, Details: "Changed passing grade threshold from 75% to 80%", Status: AuditSuccess},
		{ID: "log-2", Timestamp: fixtureTime("2023-10-27 11:15"), ActorName: SystemActor, Action: ActionAutoReminder, Details: "Sent Week 8 content release to 45 participants", Status: AuditSuccess},
		{ID: "log-3", Timestamp: fixtureTime("2023-10-26 16:45"), ActorName: "John Reese", Action: ActionParticipantUpdate, Details: "Flagged participant Alice Johnson (p-1) for manual review", Status: AuditSuccess},
		{ID: "log-4", Timestamp: fixtureTime("2023-10-26 09:00"), ActorName: SystemActor, Action: ActionSyncSheets, Details: "Weekly grade sync from Google Sheets", Status: AuditSuccess},
		{ID: "log-5", Timestamp: fixtureTime("2023-10-25 18:20"), ActorName: "Sarah Connor", Action: ActionSendEmail, Details: `Bulk email sent to 12 "Low Engagement" participants`, Status: AuditSuccess},
	}
}
