package metrics

import (
	"errors"
	"testing"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
)

func participant(id string, rate int, status models.OnboardingStatus, flagged bool) models.Participant {
	return models.Participant{
		ID:               id,
		FullName:         "Participant " + id,
		Email:            id + "@example.com",
		OnboardingStatus: status,
		ParticipantMetrics: models.ParticipantMetrics{
			CompletionRate: rate,
			IsFlagged:      flagged,
		},
	}
}

func TestSummarize(t *testing.T) {
	roster := models.Roster{
		CurrentWeek: 8,
		Participants: []models.Participant{
			participant("a", 67, models.OnboardingJoined, false),
			participant("b", 66, models.OnboardingInvited, true),
		},
	}
	roster.Participants[0].CertificateIssued = true

	stats, err := Summarize(roster)
	if err != nil {
		t.Fatalf("Summarize() failed: %v", err)
	}

	want := models.DashboardStats{
		TotalParticipants:  2,
		ActiveParticipants: 1,
		AvgCompletionRate:  67,
		FlaggedCount:       1,
		CertificatesIssued: 1,
		CurrentWeek:        8,
	}
	if stats != want {
		t.Errorf("Summarize() = %+v, want %+v", stats, want)
	}

	again, err := Summarize(roster)
	if err != nil || again != stats {
		t.Errorf("second Summarize() = %+v, %v; want identical result", again, err)
	}
}

func TestSummarize_Empty(t *testing.T) {
	_, err := Summarize(models.Roster{CurrentWeek: 8})
	if !errors.Is(err, ErrEmptyRoster) {
		t.Errorf("Summarize(empty) error = %v, want ErrEmptyRoster", err)
	}
}

func TestSummarize_GeneratedRoster(t *testing.T) {
	participants, err := newTestEngine(t, 11).GenerateRoster(45, 8)
	if err != nil {
		t.Fatalf("GenerateRoster failed: %v", err)
	}

	stats, err := Summarize(models.Roster{CurrentWeek: 8, Participants: participants})
	if err != nil {
		t.Fatalf("Summarize() failed: %v", err)
	}
	if stats.TotalParticipants != 45 {
		t.Errorf("TotalParticipants = %d", stats.TotalParticipants)
	}
	if stats.FlaggedCount < 0 || stats.FlaggedCount > 45 {
		t.Errorf("FlaggedCount = %d out of range", stats.FlaggedCount)
	}
	if stats.AvgCompletionRate < 0 || stats.AvgCompletionRate > 100 {
		t.Errorf("AvgCompletionRate = %d out of range", stats.AvgCompletionRate)
	}
	flagged := 0
	for _, p := range participants {
		if p.IsFlagged {
			flagged++
			if p.CompletionRate >= 60 && p.EngagementScore >= 50 {
				t.Errorf("%s flagged with rate %d score %d", p.ID, p.CompletionRate, p.EngagementScore)
			}
		}
	}
	if flagged != stats.FlaggedCount {
		t.Errorf("FlaggedCount = %d, counted %d", stats.FlaggedCount, flagged)
	}
}

func TestDistribution(t *testing.T) {
	ps := []models.Participant{
		{ParticipantMetrics: models.ParticipantMetrics{EngagementLevel: models.EngagementHigh}},
		{ParticipantMetrics: models.ParticipantMetrics{EngagementLevel: models.EngagementLow}},
		{ParticipantMetrics: models.ParticipantMetrics{EngagementLevel: models.EngagementLow}},
	}

	got := Distribution(ps)
	if got.High != 1 || got.Medium != 0 || got.Low != 2 {
		t.Errorf("Distribution() = %+v", got)
	}
	if got.Total() != 3 || got.Count(models.EngagementLow) != 2 {
		t.Errorf("Total/Count mismatch: %+v", got)
	}
}

func TestWeeklyCompletion(t *testing.T) {
	ps := []models.Participant{
		{WeeklyProgress: records(C, C, M)},
		{WeeklyProgress: records(C, P, C)},
	}

	weeks := WeeklyCompletion(ps)
	if len(weeks) != models.TotalWeeks {
		t.Fatalf("got %d weeks", len(weeks))
	}

	want := map[int]int{1: 100, 2: 50, 3: 50, 4: 0, 12: 0}
	for week, rate := range want {
		if got := weeks[week-1]; got.Week != week || got.Rate != rate {
			t.Errorf("week %d = %+v, want rate %d", week, got, rate)
		}
	}

	for _, w := range WeeklyCompletion(nil) {
		if w.Rate != 0 {
			t.Errorf("empty roster week %d rate = %d", w.Week, w.Rate)
		}
	}
}

func TestCompletionTrend(t *testing.T) {
	ps := []models.Participant{{WeeklyProgress: records(C, M, C)}}

	trend := CompletionTrend(ps, 3)
	want := []float64{100, 0, 100}
	if len(trend) != len(want) {
		t.Fatalf("trend = %v", trend)
	}
	for i := range want {
		if trend[i] != want[i] {
			t.Errorf("trend[%d] = %v, want %v", i, trend[i], want[i])
		}
	}

	if got := CompletionTrend(ps, 40); len(got) != models.TotalWeeks {
		t.Errorf("trend beyond program length has %d points", len(got))
	}
}

func TestSubmissions(t *testing.T) {
	ps := []models.Participant{
		{WeeklyProgress: records(C, C)},
		{WeeklyProgress: records(C, P)},
		{WeeklyProgress: records(C, M)},
	}

	got := Submissions(ps, 2)
	want := models.SubmissionSummary{Week: 2, Completed: 1, Partial: 1, Missing: 1, Rate: 67}
	if got != want {
		t.Errorf("Submissions() = %+v, want %+v", got, want)
	}

	if empty := Submissions(nil, 2); empty.Rate != 0 {
		t.Errorf("Submissions(empty).Rate = %d", empty.Rate)
	}
}

func TestProfile(t *testing.T) {
	p := models.Participant{WeeklyProgress: records(C, P, M, C)}
	p.CompletionRate = 50

	got := Profile(&p, 4, 80)
	want := models.ProfileStats{Completed: 2, Partial: 1, Missing: 1, AttendanceRate: 75, MissedRate: 25}
	if got != want {
		t.Errorf("Profile() = %+v, want %+v", got, want)
	}

	p.CompletionRate = 80
	if !Profile(&p, 4, 80).OnTrack {
		t.Error("participant at passing grade should be on track")
	}
}

func TestEligibility(t *testing.T) {
	ps := []models.Participant{
		participant("a", 95, models.OnboardingJoined, false),
		participant("b", 89, models.OnboardingJoined, false),
		participant("c", 90, models.OnboardingJoined, false),
	}

	eligible, ineligible := Eligibility(ps, 90)
	if len(eligible) != 2 || eligible[0].ID != "a" || eligible[1].ID != "c" {
		t.Errorf("eligible = %v", ids(eligible))
	}
	if len(ineligible) != 1 || ineligible[0].ID != "b" {
		t.Errorf("ineligible = %v", ids(ineligible))
	}
}

func TestWatchlistAndThresholds(t *testing.T) {
	a := participant("a", 40, models.OnboardingJoined, true)
	a.AccountabilityCheckins = 2
	a.WeeklyProgress = records(M, M, C)
	b := participant("b", 90, models.OnboardingJoined, false)
	b.AccountabilityCheckins = 4
	b.WeeklyProgress = records(C, M, C)
	ps := []models.Participant{a, b}

	if got := ids(Watchlist(ps, 4)); len(got) != 1 || got[0] != "a" {
		t.Errorf("Watchlist() = %v", got)
	}
	if got := ids(BelowCompletion(ps, 50)); len(got) != 1 || got[0] != "a" {
		t.Errorf("BelowCompletion() = %v", got)
	}
	if got := ids(MissedAtLeast(ps, 2)); len(got) != 1 || got[0] != "a" {
		t.Errorf("MissedAtLeast(2) = %v", got)
	}
	if got := MissedAtLeast(ps, 0); got != nil {
		t.Errorf("MissedAtLeast(0) = %v, want nil", ids(got))
	}
}

func TestFilter_Apply(t *testing.T) {
	alice := participant("p-1", 90, models.OnboardingJoined, false)
	alice.FullName, alice.Email = "Alice Johnson", "alice.johnson@example.com"
	alice.EngagementLevel = models.EngagementHigh
	bob := participant("p-2", 40, models.OnboardingJoined, true)
	bob.FullName, bob.Email = "Bob Smith", "bob.smith@example.com"
	bob.EngagementLevel = models.EngagementLow
	ps := []models.Participant{alice, bob}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"zero filter", Filter{}, []string{"p-1", "p-2"}},
		{"name case insensitive", Filter{Search: "ALICE"}, []string{"p-1"}},
		{"email match", Filter{Search: "bob.smith@"}, []string{"p-2"}},
		{"level", Filter{Level: models.EngagementLow}, []string{"p-2"}},
		{"search and level disagree", Filter{Search: "alice", Level: models.EngagementLow}, nil},
		{"flagged only", Filter{FlaggedOnly: true}, []string{"p-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(tt.filter.Apply(ps))
			if len(got) != len(tt.want) {
				t.Fatalf("Apply() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Apply()[%d] = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}

	if !(Filter{Search: "  "}).IsZero() {
		t.Error("blank search should count as zero filter")
	}
}

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Policy)
		wantErr bool
	}{
		{"defaults", func(*Policy) {}, false},
		{"weights do not sum to one", func(p *Policy) { p.EngagementWeight = 0.5 }, true},
		{"negative weight", func(p *Policy) { p.CompletionWeight, p.EngagementWeight = -0.5, 1.5 }, true},
		{"medium above high", func(p *Policy) { p.MediumThreshold = 90 }, true},
		{"threshold over 100", func(p *Policy) { p.CertificationThreshold = 120 }, true},
		{"all completion", func(p *Policy) { p.CompletionWeight, p.EngagementWeight = 1, 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy()
			tt.mutate(&p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Validate() error %v does not wrap ErrInvalidArgument", err)
			}
		})
	}
}

func ids(ps []models.Participant) []string {
	var out []string
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}
