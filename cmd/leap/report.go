package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/j-veylop/leap-dashboard-tui/internal/config"
	"github.com/j-veylop/leap-dashboard-tui/internal/logger"
	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/metrics"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/settings"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/styles"
)

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the cohort roster and summary without starting the dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		rep, err := buildReport(cfg)
		if err != nil {
			return err
		}
		if reportJSON {
			return writeReportJSON(cmd.OutOrStdout(), rep)
		}
		return writeReportTable(cmd.OutOrStdout(), rep)
	},
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print the report as JSON")
}

// report is a generated roster together with its summary.
type report struct {
	Roster models.Roster         `json:"roster"`
	Stats  models.DashboardStats `json:"stats"`
}

// buildReport generates the configured cohort's roster the same way the
// dashboard does, so a seed and settings file print the roster the TUI would show.
func buildReport(cfg *config.Config) (report, error) {
	svc, err := settings.New(cfg.SettingsPath)
	if err != nil {
		return report{}, err
	}
	policy := svc.Get().Policy
	if err := svc.Close(); err != nil {
		logger.Warn("failed to close settings watcher", "error", err)
	}

	cohort, ok := services.ResolveCohort(models.DefaultCohorts(), cfg.CohortID)
	if !ok && cfg.CohortID != "" {
		logger.Warn("unknown cohort, using default", "cohort", cfg.CohortID, "default", cohort.ID)
	}

	engineConfig := metrics.DefaultConfig()
	engineConfig.Policy = policy
	engineConfig.Seed = cfg.RosterSeed
	engine, err := metrics.New(engineConfig)
	if err != nil {
		return report{}, fmt.Errorf("failed to initialize metrics engine: %w", err)
	}

	seed := services.CohortSeed(engine.Seed(), cohort.ID)
	engine.Reseed(seed)
	participants, err := engine.GenerateRoster(cfg.RosterSize, cfg.CurrentWeek)
	if err != nil {
		return report{}, err
	}

	roster := models.Roster{
		CohortID:     cohort.ID,
		CurrentWeek:  cfg.CurrentWeek,
		Seed:         seed,
		GeneratedAt:  time.Now(),
		Participants: participants,
	}
	stats, err := metrics.Summarize(roster)
	if err != nil {
		return report{}, err
	}
	return report{Roster: roster, Stats: stats}, nil
}

func writeReportJSON(w io.Writer, rep report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func writeReportTable(w io.Writer, rep report) error {
	header := lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, len(rep.Roster.Participants))
	for _, p := range rep.Roster.Participants {
		flag := ""
		if p.IsFlagged {
			flag = "⚑"
		}
		rows = append(rows, []string{
			p.FullName,
			p.Email,
			strconv.Itoa(p.CompletionRate) + "%",
			strconv.Itoa(p.EngagementScore),
			string(p.EngagementLevel),
			flag,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Subtle)).
		Headers("Participant", "Email", "Completion", "Score", "Level", "Flag").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	s := rep.Stats
	_, err := fmt.Fprintf(w, "%s\n%s week %d of %d, seed %d\n%s participants, %d active, %d%% average completion, %d flagged, %d certificates\n",
		t.Render(),
		rep.Roster.CohortID, s.CurrentWeek, models.TotalWeeks, rep.Roster.Seed,
		humanize.Comma(int64(s.TotalParticipants)), s.ActiveParticipants, s.AvgCompletionRate,
		s.FlaggedCount, s.CertificatesIssued,
	)
	return err
}
