package metrics

import (
	"math"
	"strings"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
)

// Summarize aggregates a roster into dashboard statistics.
func Summarize(roster models.Roster) (models.DashboardStats, error) {
	if len(roster.Participants) == 0 {
		return models.DashboardStats{}, ErrEmptyRoster
	}

	stats := models.DashboardStats{
		TotalParticipants: len(roster.Participants),
		CurrentWeek:       roster.CurrentWeek,
	}

	sum := 0
	for i := range roster.Participants {
		p := &roster.Participants[i]
		sum += p.CompletionRate
		if p.IsActive() {
			stats.ActiveParticipants++
		}
		if p.IsFlagged {
			stats.FlaggedCount++
		}
		if p.CertificateIssued {
			stats.CertificatesIssued++
		}
	}
	stats.AvgCompletionRate = int(math.Round(float64(sum) / float64(len(roster.Participants))))

	return stats, nil
}

// Distribution counts participants per engagement level.
func Distribution(participants []models.Participant) models.EngagementBreakdown {
	var b models.EngagementBreakdown
	for i := range participants {
		switch participants[i].EngagementLevel {
		case models.EngagementHigh:
			b.High++
		case models.EngagementMedium:
			b.Medium++
		case models.EngagementLow:
			b.Low++
		}
	}
	return b
}

// WeeklyCompletion returns, for every program week, the share of records marked Completed.
func WeeklyCompletion(participants []models.Participant) []models.WeekCompletion {
	out := make([]models.WeekCompletion, models.TotalWeeks)
	for w := 1; w <= models.TotalWeeks; w++ {
		total, completed := 0, 0
		for i := range participants {
			for _, r := range participants[i].WeeklyProgress {
				if r.WeekNumber != w {
					continue
				}
				total++
				if r.Status == models.StatusCompleted {
					completed++
				}
			}
		}
		out[w-1] = models.WeekCompletion{Week: w, Rate: percent(completed, total)}
	}
	return out
}

// CompletionTrend returns weekly completion rates up to and including currentWeek.
func CompletionTrend(participants []models.Participant, currentWeek int) []float64 {
	weeks := WeeklyCompletion(participants)
	currentWeek = max(0, min(currentWeek, len(weeks)))
	trend := make([]float64, currentWeek)
	for i := range trend {
		trend[i] = float64(weeks[i].Rate)
	}
	return trend
}

// Submissions summarises the statuses recorded for week.
func Submissions(participants []models.Participant, week int) models.SubmissionSummary {
	s := models.SubmissionSummary{Week: week}
	for i := range participants {
		switch participants[i].StatusAt(week) {
		case models.StatusCompleted:
			s.Completed++
		case models.StatusPartial:
			s.Partial++
		case models.StatusMissing:
			s.Missing++
		default:
			s.Pending++
		}
	}
	s.Rate = percent(s.Completed+s.Partial, len(participants))
	return s
}

// Profile computes the attendance figures shown for a single participant.
func Profile(p *models.Participant, currentWeek, passingGrade int) models.ProfileStats {
	counts := p.StatusCounts()
	weeks := max(1, currentWeek)
	return models.ProfileStats{
		Completed:      counts[models.StatusCompleted],
		Partial:        counts[models.StatusPartial],
		Missing:        counts[models.StatusMissing],
		AttendanceRate: percent(counts[models.StatusCompleted]+counts[models.StatusPartial], weeks),
		MissedRate:     percent(counts[models.StatusMissing], weeks),
		OnTrack:        p.CompletionRate >= passingGrade,
	}
}

// Eligibility splits participants by whether their completion rate reaches threshold.
// Roster order is preserved in both slices.
func Eligibility(participants []models.Participant, threshold int) (eligible, ineligible []models.Participant) {
	for _, p := range participants {
		if p.CompletionRate >= threshold {
			eligible = append(eligible, p)
		} else {
			ineligible = append(ineligible, p)
		}
	}
	return eligible, ineligible
}

// Watchlist returns participants with fewer than minCheckins accountability check-ins.
func Watchlist(participants []models.Participant, minCheckins int) []models.Participant {
	var out []models.Participant
	for _, p := range participants {
		if p.AccountabilityCheckins < minCheckins {
			out = append(out, p)
		}
	}
	return out
}

// BelowCompletion returns participants whose completion rate is under threshold.
func BelowCompletion(participants []models.Participant, threshold int) []models.Participant {
	var out []models.Participant
	for _, p := range participants {
		if p.CompletionRate < threshold {
			out = append(out, p)
		}
	}
	return out
}

// MissedAtLeast returns participants with n or more Missing weeks.
func MissedAtLeast(participants []models.Participant, n int) []models.Participant {
	if n <= 0 {
		return nil
	}
	var out []models.Participant
	for i := range participants {
		if participants[i].StatusCounts()[models.StatusMissing] >= n {
			out = append(out, participants[i])
		}
	}
	return out
}

// Filter narrows a participant list for the directory view.
type Filter struct {
	Search      string
	Level       models.EngagementLevel // empty means all levels
	FlaggedOnly bool
}

// Apply returns the participants that match every criterion of f, in roster order.
func (f Filter) Apply(participants []models.Participant) []models.Participant {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Participant, 0, len(participants))
	for _, p := range participants {
		if term != "" &&
			!strings.Contains(strings.ToLower(p.FullName), term) &&
			!strings.Contains(strings.ToLower(p.Email), term) {
			continue
		}
		if f.Level != "" && p.EngagementLevel != f.Level {
			continue
		}
		if f.FlaggedOnly && !p.IsFlagged {
			continue
		}
		out = append(out, p)
	}
	return out
}

// IsZero reports whether f matches everything.
func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Search) == "" && f.Level == "" && !f.FlaggedOnly
}
