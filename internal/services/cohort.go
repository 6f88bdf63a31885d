package services

import (
	"fmt"
	"hash/fnv"
	"slices"

	"github.com/j-veylop/leap-dashboard-tui/internal/logger"
	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/metrics"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/settings"
)

// CohortSeed derives the roster seed for a cohort from the session's base seed,
// so switching back to a cohort reproduces its roster.
func CohortSeed(base int64, cohortID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(cohortID))
	seed := base ^ int64(h.Sum64()>>1)
	if seed == 0 {
		seed = 1
	}
	return seed
}

// ResolveCohort returns the cohort with id, or the first cohort when id is
// unknown. ok reports whether id matched.
func ResolveCohort(cohorts []models.Cohort, id string) (cohort models.Cohort, ok bool) {
	if c, found := models.FindCohort(cohorts, id); found {
		return c, true
	}
	if len(cohorts) > 0 {
		cohort = cohorts[0]
	}
	return cohort, false
}

// regenerate rebuilds the roster for the current cohort and week.
func (m *Manager) regenerate() error {
	m.stateMu.Lock()
	cohort, week, size := m.cohort, m.week, m.size
	seed := CohortSeed(m.baseSeed, cohort.ID)

	m.engine.Reseed(seed)
	participants, err := m.engine.GenerateRoster(size, week)
	if err != nil {
		m.stateMu.Unlock()
		return err
	}

	issued, err := m.database.GetIssuedCertificates(cohort.ID)
	if err != nil {
		logger.Warn("failed to load issued certificates", "cohort", cohort.ID, "error", err)
	}
	for i := range participants {
		if _, ok := issued[participants[i].ID]; ok {
			participants[i].CertificateIssued = true
		}
	}

	m.roster = models.Roster{
		CohortID:     cohort.ID,
		CurrentWeek:  week,
		Seed:         seed,
		GeneratedAt:  m.now(),
		Participants: participants,
	}
	m.refreshStatsLocked()
	event := m.rosterEventLocked()
	m.stateMu.Unlock()

	logger.Debug("roster generated", "cohort", cohort.ID, "week", week, "seed", seed)
	m.broadcast(event)
	m.checkAlerts()
	return nil
}

// refreshStatsLocked recomputes dashboard stats (must hold stateMu).
func (m *Manager) refreshStatsLocked() {
	stats, err := metrics.Summarize(m.roster)
	if err != nil {
		logger.Error("failed to summarize roster", "cohort", m.roster.CohortID, "error", err)
		stats = models.DashboardStats{CurrentWeek: m.week}
	}
	m.stats = stats
}

func (m *Manager) rosterEventLocked() RosterUpdatedEvent {
	return RosterUpdatedEvent{Roster: m.roster.Clone(), Stats: m.stats, Cohort: m.cohort}
}

// recompute re-derives every participant's metrics for policy without regenerating activity.
func (m *Manager) recompute(policy metrics.Policy) {
	m.stateMu.Lock()
	for i := range m.roster.Participants {
		metrics.Recompute(policy, m.roster.CurrentWeek, &m.roster.Participants[i])
	}
	m.refreshStatsLocked()
	event := m.rosterEventLocked()
	m.stateMu.Unlock()

	m.broadcast(event)
}

// applySettings pushes a settings change into the engine and roster.
func (m *Manager) applySettings(p settings.ProgramSettings) error {
	if p.Policy != m.engine.Policy() {
		if err := m.engine.SetPolicy(p.Policy); err != nil {
			return err
		}
		m.recompute(p.Policy)
	}
	m.checkAlerts()
	return nil
}

// Roster returns a copy of the current roster.
func (m *Manager) Roster() models.Roster {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.roster.Clone()
}

// Stats returns the current dashboard statistics.
func (m *Manager) Stats() models.DashboardStats {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.stats
}

// Snapshot returns the roster event describing the current state.
func (m *Manager) Snapshot() RosterUpdatedEvent {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.rosterEventLocked()
}

// CurrentWeek returns the program week being viewed.
func (m *Manager) CurrentWeek() int {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.week
}

// ParticipantsByID resolves ids against the current roster, skipping unknown IDs.
func (m *Manager) ParticipantsByID(ids []string) []models.Participant {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()

	out := make([]models.Participant, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.roster.Find(id); ok {
			out = append(out, *p)
		}
	}
	return out
}

// SetWeek moves the dashboard to week and regenerates the roster.
func (m *Manager) SetWeek(week int) error {
	if week < 1 || week > models.TotalWeeks {
		return fmt.Errorf("%w: week must be within 1..%d, got %d", metrics.ErrInvalidArgument, models.TotalWeeks, week)
	}
	m.stateMu.Lock()
	if m.week == week {
		m.stateMu.Unlock()
		return nil
	}
	m.week = week
	m.stateMu.Unlock()

	return m.regenerate()
}

// Cohort returns the selected cohort.
func (m *Manager) Cohort() models.Cohort {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.cohort
}

// Cohorts returns every known cohort.
func (m *Manager) Cohorts() []models.Cohort {
	return slices.Clone(m.cohorts)
}

// SetCohort switches to the cohort with id and regenerates its roster.
func (m *Manager) SetCohort(id string) error {
	c, ok := models.FindCohort(m.cohorts, id)
	if !ok {
		return fmt.Errorf("%w: unknown cohort %q", metrics.ErrInvalidArgument, id)
	}
	m.stateMu.Lock()
	m.cohort = c
	m.stateMu.Unlock()

	logger.Info("cohort selected", "cohort", c.ID)
	return m.regenerate()
}

// CycleCohort selects the next cohort in the list.
func (m *Manager) CycleCohort() (models.Cohort, error) {
	m.stateMu.RLock()
	next := m.cohorts[(indexOf(m.cohorts, m.cohort.ID, func(c models.Cohort) string { return c.ID })+1)%len(m.cohorts)]
	m.stateMu.RUnlock()

	return next, m.SetCohort(next.ID)
}

// Admin returns the acting admin.
func (m *Manager) Admin() models.Admin {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.admin
}

// Admins returns every staff account.
func (m *Manager) Admins() []models.Admin {
	return slices.Clone(m.admins)
}

// SetAdmin switches the acting admin.
func (m *Manager) SetAdmin(id string) error {
	a, ok := models.FindAdmin(m.admins, id)
	if !ok {
		return fmt.Errorf("%w: unknown admin %q", metrics.ErrInvalidArgument, id)
	}
	m.stateMu.Lock()
	m.admin = a
	m.stateMu.Unlock()

	logger.Info("admin switched", "admin", a.ID, "role", a.Role)
	m.broadcast(AdminChangedEvent{Admin: a})
	return nil
}

// CycleAdmin switches to the next staff account.
func (m *Manager) CycleAdmin() models.Admin {
	m.stateMu.RLock()
	next := m.admins[(indexOf(m.admins, m.admin.ID, func(a models.Admin) string { return a.ID })+1)%len(m.admins)]
	m.stateMu.RUnlock()

	_ = m.SetAdmin(next.ID)
	return next
}

func indexOf[T any](items []T, id string, key func(T) string) int {
	for i, item := range items {
		if key(item) == id {
			return i
		}
	}
	return -1
}

// Settings returns the current program settings.
func (m *Manager) Settings() settings.ProgramSettings {
	return m.settings.Get()
}

// UpdateSettings saves new settings, records the change and recomputes the roster
// when the policy moved.
func (m *Manager) UpdateSettings(p settings.ProgramSettings) ([]string, error) {
	admin := m.Admin()
	if !models.CanAccess(admin.Role, models.ViewSettings) {
		return nil, fmt.Errorf("%w: %s cannot change settings", ErrForbidden, admin.Role)
	}

	changes, err := m.settings.Update(p)
	if err != nil {
		return nil, err
	}
	if err := m.applySettings(m.settings.Get()); err != nil {
		return changes, err
	}

	m.Audit(models.ActionSettingsUpdate, settings.Summary(changes), models.AuditSuccess)
	m.broadcast(SettingsChangedEvent{Settings: m.settings.Get(), Changes: changes})
	return changes, nil
}
