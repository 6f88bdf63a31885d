// Package models defines data structures and domain types.
package models

import "time"

// TotalWeeks is the length of the program in weeks.
const TotalWeeks = 12

// AssignmentStatus is the state of a participant's weekly submission.
type AssignmentStatus string

const (
	StatusCompleted AssignmentStatus = "Completed"
	StatusPartial   AssignmentStatus = "Partial"
	StatusMissing   AssignmentStatus = "Missing"
	StatusPending   AssignmentStatus = "Pending"
)

// EngagementLevel classifies a participant's blended performance.
type EngagementLevel string

const (
	EngagementHigh   EngagementLevel = "High"
	EngagementMedium EngagementLevel = "Medium"
	EngagementLow    EngagementLevel = "Low"
)

// EngagementLevels lists the levels in display order.
var EngagementLevels = []EngagementLevel{EngagementHigh, EngagementMedium, EngagementLow}

// OnboardingStatus tracks whether a participant accepted the invitation.
type OnboardingStatus string

const (
	OnboardingInvited OnboardingStatus = "Invited"
	OnboardingJoined  OnboardingStatus = "Joined"
	OnboardingDropped OnboardingStatus = "Dropped"
)

// WeeklyRecord is the submission state for a single program week.
type WeeklyRecord struct {
	WeekNumber int              `json:"weekNumber"`
	Status     AssignmentStatus `json:"status"`
}

// ParticipantMetrics holds the values derived from a participant's raw activity.
// They are only ever produced together by the metrics engine.
type ParticipantMetrics struct {
	CompletedTaskCount     int             `json:"completedTaskCount"`
	CompletionRate         int             `json:"completionRate"`
	JournalingCount        int             `json:"journalingCount"`
	AccountabilityCheckins int             `json:"accountabilityCheckins"`
	EngagementScore        int             `json:"engagementScore"`
	EngagementLevel        EngagementLevel `json:"engagementLevel"`
	IsFlagged              bool            `json:"isFlagged"`
}

// Participant is a single enrollee of a cohort.
type Participant struct {
	ID                       string           `json:"id"`
	FullName                 string           `json:"fullName"`
	Email                    string           `json:"email"`
	WhatsApp                 string           `json:"whatsapp"`
	JoinDate                 string           `json:"joinDate"`
	OnboardingStatus         OnboardingStatus `json:"onboardingStatus"`
	Notes                    string           `json:"notes,omitempty"`
	WeeklyProgress           []WeeklyRecord   `json:"weeklyProgress"`
	SelfAssessmentsCompleted int              `json:"selfAssessmentsCompleted"`
	CertificateIssued        bool             `json:"certificateIssued,omitempty"`
	ParticipantMetrics
}

// StatusAt returns the status recorded for week, or Pending when absent.
func (p *Participant) StatusAt(week int) AssignmentStatus {
	for _, r := range p.WeeklyProgress {
		if r.WeekNumber == week {
			return r.Status
		}
	}
	return StatusPending
}

// StatusCounts tallies weekly records by status.
func (p *Participant) StatusCounts() map[AssignmentStatus]int {
	counts := make(map[AssignmentStatus]int, 4)
	for _, r := range p.WeeklyProgress {
		counts[r.Status]++
	}
	return counts
}

// IsActive reports whether the participant has joined the program.
func (p *Participant) IsActive() bool {
	return p.OnboardingStatus == OnboardingJoined
}

// Roster is the full set of participants generated for one cohort and week.
type Roster struct {
	CohortID     string        `json:"cohortId"`
	CurrentWeek  int           `json:"currentWeek"`
	Seed         int64         `json:"seed"`
	GeneratedAt  time.Time     `json:"generatedAt"`
	Participants []Participant `json:"participants"`
}

// Len returns the number of participants.
func (r Roster) Len() int {
	return len(r.Participants)
}

// Find returns the participant with the given ID. The pointer aliases r's
// participant slice.
func (r Roster) Find(id string) (*Participant, bool) {
	for i := range r.Participants {
		if r.Participants[i].ID == id {
			return &r.Participants[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the roster.
func (r Roster) Clone() Roster {
	clone := r
	clone.Participants = make([]Participant, len(r.Participants))
	for i, p := range r.Participants {
		p.WeeklyProgress = append([]WeeklyRecord(nil), p.WeeklyProgress...)
		clone.Participants[i] = p
	}
	return clone
}
