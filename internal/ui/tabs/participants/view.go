package participants

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/metrics"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/styles"
)

// View renders the participants tab.
func (m *Model) View() string {
	if m.profile != nil {
		return m.renderProfile(*m.profile)
	}

	var b strings.Builder

	roster := m.state.GetRoster()
	b.WriteString(styles.TitleStyle.Render("Participants"))
	b.WriteString(styles.HelpStyle.Render(fmt.Sprintf("  %d of %d shown", len(m.rows), roster.Len())))
	b.WriteString("\n\n")

	b.WriteString(m.renderFilters())
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(styles.HelpStyle.Render("No participants found matching your filters."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return styles.DocStyle.Render(b.String())
}

func (m *Model) renderFilters() string {
	filter := m.state.GetFilter()

	search := m.search.View()
	if !m.searching {
		if filter.Search == "" {
			search = styles.BlurredStyle.Render("/ Search by name or email...")
		} else {
			search = styles.BlurredStyle.Render("/ " + filter.Search)
		}
	}

	level := "All Levels"
	if filter.Level != "" {
		level = styles.GetEngagementStyle(filter.Level).Render(string(filter.Level) + " Engagement")
	}
	parts := []string{
		styles.BlurredBorderStyle.Width(44).Render(search),
		"  " + styles.HelpDescStyle.Render("Level: ") + level,
	}
	if filter.FlaggedOnly {
		parts = append(parts, "  "+styles.WarningTextStyle.Render("⚑ Flagged only"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (m *Model) renderHelp() string {
	if m.searching {
		return styles.HelpStyle.Render("Type to search • Enter/Esc: Done")
	}
	return styles.HelpStyle.Render("↑/↓: Navigate • Enter: Profile • e/w: Contact • E/W: Contact all • y/Y: Copy • l: Level • f: Flagged")
}

// renderProfile renders the detail card for one participant.
func (m *Model) renderProfile(p models.Participant) string {
	week := m.state.CurrentWeek()
	passing := m.state.GetSettings().Thresholds.PassingGrade
	stats := metrics.Profile(&p, week, passing)

	var lines []string

	name := styles.TitleStyle.Render(p.FullName)
	if p.IsFlagged {
		name += " " + styles.WarningTextStyle.Render("⚑ Flagged for review")
	}
	lines = append(lines, name)
	lines = append(lines, styles.GetEngagementStyle(p.EngagementLevel).Render(string(p.EngagementLevel)+" engagement")+
		styles.HelpStyle.Render(fmt.Sprintf(" · score %d · %s", p.EngagementScore, p.OnboardingStatus)))

	eligibility := styles.SuccessTextStyle.Render("Eligible for Certificate")
	if !stats.OnTrack {
		eligibility = styles.ErrorTextStyle.Render("Eligibility At Risk")
	}
	lines = append(lines, eligibility, "")

	lines = append(lines, field("Email", p.Email), field("WhatsApp", p.WhatsApp), field("Joined", p.JoinDate))
	lines = append(lines, "")

	lines = append(lines, styles.CardTitleStyle.Render("Attendance"))
	lines = append(lines,
		field("Attendance rate", fmt.Sprintf("%d%%", stats.AttendanceRate)),
		field("Missed rate", fmt.Sprintf("%d%%", stats.MissedRate)),
		field("Journal entries", fmt.Sprintf("%d", p.JournalingCount)),
		field("Check-ins", fmt.Sprintf("%d", p.AccountabilityCheckins)),
		field("Self assessments", fmt.Sprintf("%d", p.SelfAssessmentsCompleted)),
	)
	lines = append(lines, "")

	lines = append(lines, styles.CardTitleStyle.Render("Assignment Submission Status"))
	lines = append(lines, components.CompactBar(p.CompletionRate, 30))
	lines = append(lines, weekStrip(p, week)+"  "+
		styles.HelpStyle.Render(fmt.Sprintf("%d / %d Submitted", stats.Completed+stats.Partial, week)))
	lines = append(lines, components.StatusLegend())

	if p.Notes != "" {
		lines = append(lines, "", styles.HelpDescStyle.Render("Notes: "+p.Notes))
	}

	lines = append(lines, "", styles.HelpStyle.Render("e: Email • w: WhatsApp • Esc: Back"))

	card := styles.CardStyle.Width(min(max(m.width-6, 40), 90)).Render(strings.Join(lines, "\n"))
	return styles.DocStyle.Render(card)
}

func field(label, value string) string {
	if value == "" {
		value = "-"
	}
	return styles.HelpDescStyle.Width(18).Render(label) + value
}

// weekStrip renders one status glyph per week up to week.
func weekStrip(p models.Participant, week int) string {
	var b strings.Builder
	for w := 1; w <= week; w++ {
		status := p.StatusAt(w)
		b.WriteString(styles.GetStatusStyle(status).Render(styles.StatusGlyph(status)))
		b.WriteString(" ")
	}
	return strings.TrimSpace(b.String())
}
