package metrics

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
)

func newTestEngine(t *testing.T, seed int64) *Engine {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Seed = seed
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return e
}

// records builds a 12-week history from the given leading statuses, padding with Pending.
func records(statuses ...models.AssignmentStatus) []models.WeeklyRecord {
	out := make([]models.WeeklyRecord, models.TotalWeeks)
	for i := range out {
		status := models.StatusPending
		if i < len(statuses) {
			status = statuses[i]
		}
		out[i] = models.WeeklyRecord{WeekNumber: i + 1, Status: status}
	}
	return out
}

const (
	C = models.StatusCompleted
	P = models.StatusPartial
	M = models.StatusMissing
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name        string
		week        int
		weekly      []models.WeeklyRecord
		journaling  int
		checkins    int
		wantRate    int
		wantScore   int
		wantLevel   models.EngagementLevel
		wantFlagged bool
	}{
		{
			name:       "mid program medium",
			week:       8,
			weekly:     records(C, C, C, C, C, C, P, C),
			journaling: 5, checkins: 6,
			wantRate: 88, wantScore: 69,
			wantLevel: models.EngagementMedium,
		},
		{
			name:       "perfect record",
			week:       12,
			weekly:     records(C, C, C, C, C, C, C, C, C, C, C, C),
			journaling: 12, checkins: 12,
			wantRate: 100, wantScore: 100,
			wantLevel: models.EngagementHigh,
		},
		{
			name:       "nothing submitted",
			week:       1,
			weekly:     records(P),
			journaling: 0, checkins: 0,
			wantRate: 0, wantScore: 0,
			wantLevel: models.EngagementLow, wantFlagged: true,
		},
		{
			name:       "blended exactly high threshold",
			week:       4,
			weekly:     records(C, C, C, P),
			journaling: 4, checkins: 4,
			wantRate: 75, wantScore: 100,
			wantLevel: models.EngagementHigh,
		},
		{
			name:       "blended exactly medium threshold",
			week:       1,
			weekly:     records(C),
			journaling: 0, checkins: 0,
			wantRate: 100, wantScore: 0,
			wantLevel: models.EngagementMedium, wantFlagged: true,
		},
		{
			name:       "flag thresholds are exclusive",
			week:       10,
			weekly:     records(C, C, C, C, C, C, M, M, P, P),
			journaling: 5, checkins: 5,
			wantRate: 60, wantScore: 50,
			wantLevel: models.EngagementLow,
		},
		{
			name:       "low completion flags",
			week:       2,
			weekly:     records(C, M),
			journaling: 2, checkins: 2,
			wantRate: 50, wantScore: 100,
			wantLevel: models.EngagementMedium, wantFlagged: true,
		},
		{
			name:       "engagement capped at 100",
			week:       2,
			weekly:     records(C, C),
			journaling: 9, checkins: 9,
			wantRate: 100, wantScore: 100,
			wantLevel: models.EngagementHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(DefaultPolicy(), tt.week, tt.weekly, tt.journaling, tt.checkins)
			if got.CompletionRate != tt.wantRate {
				t.Errorf("CompletionRate = %d, want %d", got.CompletionRate, tt.wantRate)
			}
			if got.EngagementScore != tt.wantScore {
				t.Errorf("EngagementScore = %d, want %d", got.EngagementScore, tt.wantScore)
			}
			if got.EngagementLevel != tt.wantLevel {
				t.Errorf("EngagementLevel = %s, want %s", got.EngagementLevel, tt.wantLevel)
			}
			if got.IsFlagged != tt.wantFlagged {
				t.Errorf("IsFlagged = %v, want %v", got.IsFlagged, tt.wantFlagged)
			}
			if got.JournalingCount != tt.journaling || got.AccountabilityCheckins != tt.checkins {
				t.Errorf("raw counts not carried through: %+v", got)
			}
		})
	}
}

func TestDerive_IgnoresCompletedAfterCurrentWeek(t *testing.T) {
	got := Derive(DefaultPolicy(), 2, records(C, C, C, C), 0, 0)
	if got.CompletedTaskCount != 2 {
		t.Errorf("CompletedTaskCount = %d, want 2", got.CompletedTaskCount)
	}
	if got.CompletionRate != 100 {
		t.Errorf("CompletionRate = %d, want 100", got.CompletionRate)
	}
}

func TestGenerateRoster_InvalidArguments(t *testing.T) {
	e := newTestEngine(t, 1)

	tests := []struct {
		name  string
		count int
		week  int
	}{
		{"zero count", 0, 8},
		{"negative count", -3, 8},
		{"week zero", 10, 0},
		{"week past end", 10, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roster, err := e.GenerateRoster(tt.count, tt.week)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("GenerateRoster(%d, %d) error = %v, want ErrInvalidArgument", tt.count, tt.week, err)
			}
			if roster != nil {
				t.Errorf("GenerateRoster returned %d participants on error", len(roster))
			}
		})
	}
}

func TestGenerateRoster_FirstWeek(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		roster, err := newTestEngine(t, seed).GenerateRoster(1, 1)
		if err != nil {
			t.Fatalf("GenerateRoster(1, 1) failed: %v", err)
		}
		weekly := roster[0].WeeklyProgress
		if s := weekly[0].Status; s != models.StatusCompleted && s != models.StatusPartial {
			t.Errorf("seed %d: week 1 status = %s, want Completed or Partial", seed, s)
		}
		for _, r := range weekly[1:] {
			if r.Status != models.StatusPending {
				t.Errorf("seed %d: week %d status = %s, want Pending", seed, r.WeekNumber, r.Status)
			}
		}
	}
}

func TestGenerateRoster_Invariants(t *testing.T) {
	policy := DefaultPolicy()

	for week := 1; week <= models.TotalWeeks; week++ {
		roster, err := newTestEngine(t, int64(week)).GenerateRoster(45, week)
		if err != nil {
			t.Fatalf("GenerateRoster(45, %d) failed: %v", week, err)
		}
		if len(roster) != 45 {
			t.Fatalf("week %d: got %d participants, want 45", week, len(roster))
		}

		for _, p := range roster {
			if len(p.WeeklyProgress) != models.TotalWeeks {
				t.Fatalf("%s: %d weekly records, want %d", p.ID, len(p.WeeklyProgress), models.TotalWeeks)
			}
			for i, r := range p.WeeklyProgress {
				if r.WeekNumber != i+1 {
					t.Errorf("%s: record %d has week %d", p.ID, i, r.WeekNumber)
				}
				if (r.Status == models.StatusPending) != (r.WeekNumber > week) {
					t.Errorf("%s: week %d status %s with current week %d", p.ID, r.WeekNumber, r.Status, week)
				}
			}

			if p.CompletionRate < 0 || p.CompletionRate > 100 {
				t.Errorf("%s: completion rate %d out of range", p.ID, p.CompletionRate)
			}
			if p.EngagementScore < 0 || p.EngagementScore > 100 {
				t.Errorf("%s: engagement score %d out of range", p.ID, p.EngagementScore)
			}
			if p.JournalingCount > week || p.AccountabilityCheckins > week {
				t.Errorf("%s: activity counts exceed week %d: %d/%d",
					p.ID, week, p.JournalingCount, p.AccountabilityCheckins)
			}

			blended := float64(p.CompletionRate)*0.6 + float64(p.EngagementScore)*0.4
			if want := policy.Level(blended); p.EngagementLevel != want {
				t.Errorf("%s: level %s, want %s for blended %.1f", p.ID, p.EngagementLevel, want, blended)
			}
			if want := p.CompletionRate < 60 || p.EngagementScore < 50; p.IsFlagged != want {
				t.Errorf("%s: flagged %v, want %v", p.ID, p.IsFlagged, want)
			}
		}
	}
}

func TestGenerateRoster_SelfAssessmentRanges(t *testing.T) {
	tests := []struct {
		week int
		max  int
	}{
		{4, 0},
		{5, 1},
		{8, 1},
		{9, 3},
		{12, 3},
	}

	for _, tt := range tests {
		roster, err := newTestEngine(t, 7).GenerateRoster(200, tt.week)
		if err != nil {
			t.Fatalf("GenerateRoster failed: %v", err)
		}
		for _, p := range roster {
			if p.SelfAssessmentsCompleted < 0 || p.SelfAssessmentsCompleted > tt.max {
				t.Errorf("week %d: %s self assessments %d, want 0..%d",
					tt.week, p.ID, p.SelfAssessmentsCompleted, tt.max)
			}
		}
	}
}

func TestGenerateRoster_Identity(t *testing.T) {
	roster, err := newTestEngine(t, 3).GenerateRoster(16, 8)
	if err != nil {
		t.Fatalf("GenerateRoster failed: %v", err)
	}

	first := roster[0]
	if first.ID != "p-1" || first.FullName != "Alice Johnson" {
		t.Errorf("first participant = %s %q", first.ID, first.FullName)
	}
	if first.Email != "alice.johnson@example.com" {
		t.Errorf("Email = %q", first.Email)
	}
	if first.WhatsApp != "+1 (555) 000-1000" {
		t.Errorf("WhatsApp = %q", first.WhatsApp)
	}
	if first.JoinDate != "2023-09-01" {
		t.Errorf("JoinDate = %q", first.JoinDate)
	}

	wrapped := roster[15]
	if wrapped.ID != "p-16" || wrapped.FullName != "Alice Johnson 15" {
		t.Errorf("16th participant = %s %q", wrapped.ID, wrapped.FullName)
	}
	if wrapped.Email != "alice.johnson.15@example.com" {
		t.Errorf("16th Email = %q", wrapped.Email)
	}
	if wrapped.WhatsApp != "+1 (555) 000-1015" {
		t.Errorf("16th WhatsApp = %q", wrapped.WhatsApp)
	}

	for _, p := range roster {
		if p.OnboardingStatus != models.OnboardingJoined && p.OnboardingStatus != models.OnboardingInvited {
			t.Errorf("%s: onboarding %s", p.ID, p.OnboardingStatus)
		}
		if p.Notes != "" && p.Notes != missedCheckinNote {
			t.Errorf("%s: unexpected note %q", p.ID, p.Notes)
		}
	}
}

func TestGenerateRoster_Reproducible(t *testing.T) {
	a, err := newTestEngine(t, 42).GenerateRoster(45, 8)
	if err != nil {
		t.Fatalf("GenerateRoster failed: %v", err)
	}
	b, err := NewWithRand(DefaultConfig(), rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("NewWithRand failed: %v", err)
	}
	other, err := b.GenerateRoster(45, 8)
	if err != nil {
		t.Fatalf("GenerateRoster failed: %v", err)
	}

	if !reflect.DeepEqual(a, other) {
		t.Error("same seed produced different rosters")
	}

	pkg, err := GenerateRoster(45, 8, 42)
	if err != nil {
		t.Fatalf("package GenerateRoster failed: %v", err)
	}
	if !reflect.DeepEqual(a, pkg) {
		t.Error("package GenerateRoster differs from engine with same seed")
	}
}

func TestGenerateRoster_Distribution(t *testing.T) {
	roster, err := newTestEngine(t, 99).GenerateRoster(4000, 12)
	if err != nil {
		t.Fatalf("GenerateRoster failed: %v", err)
	}

	var past, completed, partial, joined int
	for _, p := range roster {
		for _, r := range p.WeeklyProgress[:11] {
			past++
			switch r.Status {
			case models.StatusCompleted:
				completed++
			case models.StatusPartial:
				partial++
			}
		}
		if p.IsActive() {
			joined++
		}
	}

	within := func(name string, got, want, tol float64) {
		t.Helper()
		if got < want-tol || got > want+tol {
			t.Errorf("%s share = %.3f, want %.2f±%.2f", name, got, want, tol)
		}
	}
	within("completed", float64(completed)/float64(past), 0.75, 0.02)
	within("partial", float64(partial)/float64(past), 0.10, 0.02)
	within("joined", float64(joined)/float64(len(roster)), 0.90, 0.03)
}

func TestNewWithRand_RejectsInvalidPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy.CompletionWeight = 0.9

	if _, err := NewWithRand(cfg, rand.New(rand.NewSource(1))); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("NewWithRand() error = %v, want ErrInvalidArgument", err)
	}
}

func TestEngine_SetPolicy(t *testing.T) {
	e := newTestEngine(t, 5)

	strict := DefaultPolicy()
	strict.FlagCompletionBelow = 101
	if err := e.SetPolicy(strict); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("SetPolicy(out of range) error = %v", err)
	}

	strict.FlagCompletionBelow = 100
	if err := e.SetPolicy(strict); err != nil {
		t.Fatalf("SetPolicy() failed: %v", err)
	}

	roster, err := e.GenerateRoster(20, 6)
	if err != nil {
		t.Fatalf("GenerateRoster failed: %v", err)
	}
	for _, p := range roster {
		if p.CompletionRate < 100 && !p.IsFlagged {
			t.Errorf("%s: rate %d not flagged under strict policy", p.ID, p.CompletionRate)
		}
	}
}

func TestRecompute(t *testing.T) {
	p := models.Participant{WeeklyProgress: records(C, C, M, M)}
	p.JournalingCount = 4
	p.AccountabilityCheckins = 4

	Recompute(DefaultPolicy(), 4, &p)
	if p.CompletionRate != 50 || !p.IsFlagged {
		t.Fatalf("after Recompute: rate %d flagged %v", p.CompletionRate, p.IsFlagged)
	}

	lenient := DefaultPolicy()
	lenient.FlagCompletionBelow = 40
	Recompute(lenient, 4, &p)
	if p.IsFlagged {
		t.Error("participant still flagged under lenient policy")
	}
}
