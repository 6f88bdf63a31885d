package analytics

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/styles"
)

// riskNamesShown caps the names listed under each risk group.
const riskNamesShown = 4

// View renders the analytics tab.
func (m *Model) View() string {
	if m.report.distribution.Total() == 0 {
		return m.renderEmpty()
	}

	cardWidth := max((m.width-10)/2, 36)
	row := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderDistribution(cardWidth),
		" ",
		m.renderSubmissions(cardWidth),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderCompletionChart(),
		row,
		m.renderRisk(),
	)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Analytics"),
		"",
		styles.HelpStyle.Render("No participants in this cohort yet."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("Analytics: " + m.state.GetCohort().Name)

	scopeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", scopeStyle.Render("[t] "+m.scope.String()))
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("Week %d of %d • %d participants",
		m.report.week, models.TotalWeeks, m.report.distribution.Total()))

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func (m *Model) renderCompletionChart() string {
	cardWidth := max(m.width-6, 40)
	rows := []string{styles.CardTitleStyle.Render("Weekly Completion"), ""}

	weeks := m.chartWeeks()
	if len(weeks) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  No weeks released yet"))
	} else {
		chart := components.RenderWeeklyCompletionChart(weeks, max(cardWidth-12, 30), 8)
		for line := range strings.SplitSeq(chart, "\n") {
			rows = append(rows, "  "+line)
		}

		best := bestWeek(weeks)
		rows = append(rows, "", fmt.Sprintf("  Best week: %s",
			lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).
				Render(fmt.Sprintf("Week %d (%d%%)", best.Week, best.Rate)),
		))
	}
	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// bestWeek returns the earliest week with the highest completion rate.
func bestWeek(weeks []models.WeekCompletion) models.WeekCompletion {
	best := weeks[0]
	for _, w := range weeks[1:] {
		if w.Rate > best.Rate {
			best = w
		}
	}
	return best
}

func (m *Model) renderDistribution(width int) string {
	rows := []string{
		styles.CardTitleStyle.Render("Engagement Distribution"),
		"",
		components.RenderDistribution(m.report.distribution, width-4),
		"",
	}
	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderSubmissions(width int) string {
	s := m.report.submissions
	chart := components.RenderBarChart(
		[]float64{float64(s.Completed), float64(s.Partial), float64(s.Missing), float64(s.Pending)},
		[]string{"Completed", "Partial", "Missing", "Pending"},
		width-4,
	)

	rows := []string{
		styles.CardTitleStyle.Render(fmt.Sprintf("Week %d Submissions", s.Week)),
		"",
		chart,
		"",
		"Submission rate " + styles.GetCompletionStyle(s.Rate).Render(fmt.Sprintf("%d%%", s.Rate)),
	}
	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderRisk() string {
	cardWidth := max(m.width-6, 40)
	thresholds := m.state.GetSettings().Thresholds

	rows := []string{
		styles.CardTitleStyle.Render("At Risk"),
		"",
		riskLine(fmt.Sprintf("Below passing grade (%d%%)", thresholds.PassingGrade), m.report.below),
		riskLine(fmt.Sprintf("Missed %d+ weeks", thresholds.AutoFlagMissedWeeks), m.report.missed),
		riskLine(fmt.Sprintf("Fewer than %d check-ins", thresholds.AccountabilityMinimum), m.report.watchlist),
		"",
		styles.HelpStyle.Render("f: open flagged participants"),
	}
	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func riskLine(label string, ps []models.Participant) string {
	count := styles.SuccessTextStyle.Render("0")
	if len(ps) > 0 {
		count = styles.WarningTextStyle.Render(fmt.Sprintf("%d", len(ps)))
	}

	names := make([]string, 0, riskNamesShown)
	for _, p := range ps[:min(len(ps), riskNamesShown)] {
		names = append(names, p.FullName)
	}
	list := strings.Join(names, ", ")
	if extra := len(ps) - len(names); extra > 0 {
		list += fmt.Sprintf(" +%d more", extra)
	}

	return fmt.Sprintf("%s %s  %s",
		styles.HelpDescStyle.Width(28).Render(label),
		count,
		styles.HelpStyle.Render(list),
	)
}
