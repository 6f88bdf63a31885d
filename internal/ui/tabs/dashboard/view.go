package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/metrics"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/styles"
)

// View renders the overview.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.renderLoading()
	}

	sections := []string{
		m.renderTitle(),
		m.renderCards(),
		"",
		m.renderCompletion(),
		"",
		m.renderPulse(),
		"",
		m.renderEngagement(),
		"",
		m.renderCertificates(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
}

func (m *Model) renderTitle() string {
	cohort := m.state.GetCohort()
	title := styles.TitleStyle.Render("Program Overview")
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%s · Week %d of %d", cohort.Name, m.state.CurrentWeek(), models.TotalWeeks))

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderCards() string {
	cards := m.cards()
	cardWidth := max((m.width-8)/len(cards)-2, 16)

	rendered := make([]string, 0, len(cards))
	for i, c := range cards {
		label := c.label
		if i == m.selected {
			label = "▸ " + label
		}
		card := components.StatCard(label, c.value, c.hint, cardWidth)
		if i == m.selected {
			card = styles.FocusedBorderStyle.Render(card)
		} else {
			card = styles.BlurredBorderStyle.Render(card)
		}
		rendered = append(rendered, card)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *Model) renderCompletion() string {
	width := max(m.width-8, 40)
	return m.completion.View("Avg completion", width)
}

// renderPulse lists this week's release and missed submissions.
func (m *Model) renderPulse() string {
	roster := m.state.GetRoster()
	week := m.state.CurrentWeek()

	released := 0
	for _, r := range m.state.GetResources() {
		if r.AssignedWeek != nil && *r.AssignedWeek == week {
			released++
		}
	}
	sub := metrics.Submissions(roster.Participants, week)

	icon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows := []string{fmt.Sprintf("%s %s", icon, styles.CardTitleStyle.Render("Program Pulse")), ""}
	rows = append(rows, fmt.Sprintf("  %s Week %d content released: %d resources",
		styles.InfoTextStyle.Render("●"), week, released))

	missed := styles.SuccessTextStyle.Render("●") + fmt.Sprintf(" No missed submissions for week %d", week)
	if sub.Missing > 0 {
		missed = styles.WarningTextStyle.Render("●") +
			fmt.Sprintf(" %d participants missed the week %d deadline", sub.Missing, week)
	}
	rows = append(rows, "  "+missed)
	rows = append(rows, fmt.Sprintf("  %s Submission rate this week: %s",
		styles.HelpStyle.Render("●"), styles.GetCompletionStyle(sub.Rate).Render(fmt.Sprintf("%d%%", sub.Rate))))

	return styles.CardStyle.Width(max(m.width-6, 40)).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderEngagement() string {
	roster := m.state.GetRoster()
	width := max(m.width-10, 40)

	trend := metrics.CompletionTrend(roster.Participants, roster.CurrentWeek)
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Completion Trend"))
	rows = append(rows, components.RenderSparkline(trend, width)+"  "+
		styles.HelpStyle.Render(fmt.Sprintf("weeks 1-%d", len(trend))))
	rows = append(rows, "")
	rows = append(rows, styles.CardTitleStyle.Render("Engagement"))
	rows = append(rows, components.RenderDistribution(metrics.Distribution(roster.Participants), width))

	return strings.Join(rows, "\n")
}

func (m *Model) renderCertificates() string {
	week := m.state.CurrentWeek()
	text := styles.HelpStyle.Render(fmt.Sprintf("End of program certificates will be available in Week %d.", models.TotalWeeks))
	if week >= eligibilityWeek {
		text += "  " + styles.HelpKeyStyle.Render("e") + styles.HelpDescStyle.Render(" check eligibility")
	}
	return styles.CardTitleStyle.Render("Certificates") + "\n" + text
}
