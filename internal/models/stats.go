package models

// DashboardStats is the roster-level summary shown on the overview.
type DashboardStats struct {
	TotalParticipants  int `json:"totalParticipants"`
	ActiveParticipants int `json:"activeParticipants"`
	AvgCompletionRate  int `json:"avgCompletionRate"`
	FlaggedCount       int `json:"flaggedCount"`
	CertificatesIssued int `json:"certificatesIssued"`
	CurrentWeek        int `json:"currentWeek"`
}

// EngagementBreakdown counts participants per engagement level.
type EngagementBreakdown struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Total returns the sum of all levels.
func (e EngagementBreakdown) Total() int {
	return e.High + e.Medium + e.Low
}

// Count returns the number of participants at level.
func (e EngagementBreakdown) Count(level EngagementLevel) int {
	switch level {
	case EngagementHigh:
		return e.High
	case EngagementMedium:
		return e.Medium
	case EngagementLow:
		return e.Low
	default:
		return 0
	}
}

// WeekCompletion is the share of the roster that completed a given week.
type WeekCompletion struct {
	Week int `json:"week"`
	Rate int `json:"rate"`
}

// SubmissionSummary describes how a single week's submissions break down.
type SubmissionSummary struct {
	Week      int `json:"week"`
	Completed int `json:"completed"`
	Partial   int `json:"partial"`
	Missing   int `json:"missing"`
	Pending   int `json:"pending"`
	Rate      int `json:"rate"`
}

// ProfileStats are per-participant rates shown in the profile view.
type ProfileStats struct {
	Completed      int  `json:"completed"`
	Partial        int  `json:"partial"`
	Missing        int  `json:"missing"`
	AttendanceRate int  `json:"attendanceRate"`
	MissedRate     int  `json:"missedRate"`
	OnTrack        bool `json:"onTrack"`
}
