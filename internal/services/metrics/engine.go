// Package metrics generates cohort rosters and derives participant metrics.
//
// Derivation is pure: the same raw activity and policy always produce the same
// rates, level and flag. Randomness is confined to roster generation and comes
// from an injectable source so rosters are reproducible from a seed.
package metrics

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
)

const (
	pastCompletedCutoff = 0.75
	pastPartialCutoff   = 0.85
	currentCompletedP   = 0.5
	joinedP             = 0.9
	notedP              = 0.2

	missedCheckinNote = "Missed check-in last week."
	defaultJoinDate   = "2023-09-01"
)

// names is the rotating list used to label generated participants.
var names = []string{
	"Alice Johnson", "Bob Smith", "Charlie Davis", "Diana Evans", "Ethan Hall",
	"Fiona Clark", "George Wright", "Hannah Lewis", "Ian Scott", "Julia Green",
	"Kevin Adams", "Laura Baker", "Michael Carter", "Nina Perez", "Oscar Roberts",
}

// Config holds configuration for the metrics engine.
type Config struct {
	Policy   Policy
	JoinDate string
	Seed     int64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Policy:   DefaultPolicy(),
		JoinDate: defaultJoinDate,
	}
}

// Engine generates rosters. One engine may be shared between goroutines.
type Engine struct {
	mu     sync.Mutex
	rng    *rand.Rand
	config Config
}

// NewSeededRNG creates a seeded random number generator.
// If seed is 0 the current time is used; the effective seed is returned.
func NewSeededRNG(seed int64) (*rand.Rand, int64) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)), seed
}

// New creates an engine seeded from cfg.Seed.
func New(cfg Config) (*Engine, error) {
	rng, seed := NewSeededRNG(cfg.Seed)
	cfg.Seed = seed
	return NewWithRand(cfg, rng)
}

// NewWithRand creates an engine drawing from rng.
func NewWithRand(cfg Config, rng *rand.Rand) (*Engine, error) {
	if err := cfg.Policy.Validate(); err != nil {
		return nil, err
	}
	if cfg.JoinDate == "" {
		cfg.JoinDate = defaultJoinDate
	}
	if rng == nil {
		rng, cfg.Seed = NewSeededRNG(cfg.Seed)
	}
	return &Engine{rng: rng, config: cfg}, nil
}

// Seed returns the seed the engine was created with, if known.
func (e *Engine) Seed() int64 {
	return e.config.Seed
}

// Policy returns the engine's classification policy.
func (e *Engine) Policy() Policy {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config.Policy
}

// SetPolicy replaces the classification policy for subsequent rosters.
func (e *Engine) SetPolicy(p Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.config.Policy = p
	e.mu.Unlock()
	return nil
}

// Reseed resets the random source so the next roster is reproducible from seed.
func (e *Engine) Reseed(seed int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rng, e.config.Seed = NewSeededRNG(seed)
}

// GenerateRoster produces count participants as of currentWeek.
// No partial roster is returned on error.
func (e *Engine) GenerateRoster(count, currentWeek int) ([]models.Participant, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: roster size must be positive, got %d", ErrInvalidArgument, count)
	}
	if currentWeek < 1 || currentWeek > models.TotalWeeks {
		return nil, fmt.Errorf("%w: current week must be within 1..%d, got %d",
			ErrInvalidArgument, models.TotalWeeks, currentWeek)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	participants := make([]models.Participant, count)
	for i := range participants {
		participants[i] = e.generateParticipant(i, currentWeek)
	}
	return participants, nil
}

// GenerateRoster builds a roster with the default policy from seed.
// A zero seed draws from the clock.
func GenerateRoster(count, currentWeek int, seed int64) ([]models.Participant, error) {
	cfg := DefaultConfig()
	cfg.Seed = seed
	e, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return e.GenerateRoster(count, currentWeek)
}

// generateParticipant must be called with e.mu held.
func (e *Engine) generateParticipant(index, currentWeek int) models.Participant {
	weekly := make([]models.WeeklyRecord, models.TotalWeeks)
	for w := 1; w <= models.TotalWeeks; w++ {
		weekly[w-1] = models.WeeklyRecord{WeekNumber: w, Status: e.sampleStatus(w, currentWeek)}
	}

	journaling := e.rng.Intn(currentWeek + 1)
	checkins := e.rng.Intn(currentWeek + 1)

	selfAssessments := 0
	switch {
	case currentWeek <= 4:
	case currentWeek <= 8:
		selfAssessments = e.rng.Intn(2)
	default:
		selfAssessments = e.rng.Intn(4)
	}

	name := ParticipantName(index)
	p := models.Participant{
		ID:                       fmt.Sprintf("p-%d", index+1),
		FullName:                 name,
		Email:                    ParticipantEmail(name),
		WhatsApp:                 fmt.Sprintf("+1 (555) 000-%d", 1000+index),
		JoinDate:                 e.config.JoinDate,
		OnboardingStatus:         models.OnboardingInvited,
		WeeklyProgress:           weekly,
		SelfAssessmentsCompleted: selfAssessments,
		ParticipantMetrics:       Derive(e.config.Policy, currentWeek, weekly, journaling, checkins),
	}
	if e.rng.Float64() < joinedP {
		p.OnboardingStatus = models.OnboardingJoined
	}
	if e.rng.Float64() < notedP {
		p.Notes = missedCheckinNote
	}
	return p
}

func (e *Engine) sampleStatus(week, currentWeek int) models.AssignmentStatus {
	switch {
	case week < currentWeek:
		r := e.rng.Float64()
		switch {
		case r < pastCompletedCutoff:
			return models.StatusCompleted
		case r < pastPartialCutoff:
			return models.StatusPartial
		default:
			return models.StatusMissing
		}
	case week == currentWeek:
		if e.rng.Float64() < currentCompletedP {
			return models.StatusCompleted
		}
		return models.StatusPartial
	default:
		return models.StatusPending
	}
}

// ParticipantName returns the generated display name for index.
func ParticipantName(index int) string {
	name := names[index%len(names)]
	if index >= len(names) {
		name = fmt.Sprintf("%s %d", name, index)
	}
	return name
}

// ParticipantEmail derives the placeholder address for a display name.
func ParticipantEmail(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", ".") + "@example.com"
}

// Derive computes every derived metric from raw activity in one step.
func Derive(policy Policy, currentWeek int, weekly []models.WeeklyRecord, journaling, checkins int) models.ParticipantMetrics {
	completed := 0
	for _, r := range weekly {
		if r.Status == models.StatusCompleted && r.WeekNumber <= currentWeek {
			completed++
		}
	}

	completionRate := percent(completed, max(1, currentWeek))
	engagementScore := percent(journaling+checkins, max(1, currentWeek*2))

	return models.ParticipantMetrics{
		CompletedTaskCount:     completed,
		CompletionRate:         completionRate,
		JournalingCount:        journaling,
		AccountabilityCheckins: checkins,
		EngagementScore:        engagementScore,
		EngagementLevel:        policy.Level(policy.Blend(completionRate, engagementScore)),
		IsFlagged:              policy.Flagged(completionRate, engagementScore),
	}
}

// Recompute re-derives p's metrics for policy and currentWeek in place.
func Recompute(policy Policy, currentWeek int, p *models.Participant) {
	p.ParticipantMetrics = Derive(policy, currentWeek, p.WeeklyProgress, p.JournalingCount, p.AccountabilityCheckins)
}

// percent returns round(n/d*100) capped at 100, or 0 when d is not positive.
func percent(n, d int) int {
	if d <= 0 {
		return 0
	}
	return min(100, int(math.Round(float64(n)/float64(d)*100)))
}
