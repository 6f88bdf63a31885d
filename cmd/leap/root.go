package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/j-veylop/leap-dashboard-tui/internal/app"
	"github.com/j-veylop/leap-dashboard-tui/internal/config"
	"github.com/j-veylop/leap-dashboard-tui/internal/logger"
	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/tabs/analytics"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/tabs/certificates"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/tabs/dashboard"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/tabs/participants"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/tabs/progress"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/tabs/reminders"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/tabs/resources"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/tabs/settings"
	"github.com/j-veylop/leap-dashboard-tui/internal/version"
)

// overrides are the command line flags that take precedence over the environment.
type overrides struct {
	seed   int64
	week   int
	size   int
	admin  string
	cohort string
}

var flags overrides

var rootCmd = &cobra.Command{
	Use:   "leap",
	Short: "Leap cohort dashboard",
	Long: `A terminal dashboard for running a Leap leadership cohort: participant
tracking, progress, reminders, resources, certificates and analytics.

Keyboard shortcuts:
  1-8             Switch views (filtered by role)
  Tab/Shift+Tab   Next/previous view
  [ / ]           Previous/next program week
  u / c           Cycle admin / cohort
  n               Notifications
  ?               Toggle help
  q, Ctrl+C       Quit`,
	Version:       version.GetVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.Int64Var(&flags.seed, "seed", 0, "roster seed (overrides ROSTER_SEED)")
	pf.IntVar(&flags.week, "week", 0, "current program week 1-12 (overrides CURRENT_WEEK)")
	pf.IntVar(&flags.size, "size", 0, "participants per cohort (overrides ROSTER_SIZE)")
	pf.StringVar(&flags.admin, "admin", "", "acting admin id (overrides ADMIN_ID)")
	pf.StringVar(&flags.cohort, "cohort", "", "cohort id (overrides COHORT_ID)")

	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.AddCommand(reportCmd, versionCmd)
}

// loadConfig reads the environment and applies flags that were set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := flags.apply(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o overrides) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed
	if changed("seed") {
		cfg.RosterSeed = o.seed
	}
	if changed("week") {
		cfg.CurrentWeek = o.week
	}
	if changed("size") {
		cfg.RosterSize = o.size
	}
	if changed("admin") {
		cfg.AdminID = o.admin
	}
	if changed("cohort") {
		cfg.CohortID = o.cohort
	}
	return cfg.Validate()
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logFile, err := logger.Init(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()
	logger.Info("starting", "version", version.Info())

	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(svcManager)
	registerTabs(model)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		if _, ok := <-sigChan; ok {
			p.Send(tea.Quit())
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// registerTabs builds one tab per view over the model's shared state.
func registerTabs(model *app.Model) {
	state := model.GetState()
	tabs := map[models.View]app.Tab{
		models.ViewDashboard:    dashboard.New(state),
		models.ViewParticipants: participants.New(state),
		models.ViewProgress:     progress.New(state),
		models.ViewReminders:    reminders.New(state),
		models.ViewResources:    resources.New(state),
		models.ViewCertificates: certificates.New(state),
		models.ViewAnalytics:    analytics.New(state),
		models.ViewSettings:     settings.New(state),
	}
	for view, tab := range tabs {
		model.SetTab(view, tab)
	}
}
