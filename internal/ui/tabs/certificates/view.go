package certificates

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/leap-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/styles"
)

// View renders the certificates tab.
func (m *Model) View() string {
	threshold := m.state.GetSettings().Policy.CertificationThreshold
	cardWidth := max((m.width-12)/3, 20)

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		components.StatCard("Eligible to Graduate", strconv.Itoa(len(m.eligible)), fmt.Sprintf("≥ %d%% completion", threshold), cardWidth),
		" ",
		components.StatCard("Requirements Unmet", strconv.Itoa(len(m.ineligible)), "", cardWidth),
		" ",
		components.StatCard("Issued", strconv.Itoa(m.issuedCount()), fmt.Sprintf("of %d eligible", len(m.eligible)), cardWidth),
	)

	sections := []string{
		styles.TitleStyle.Render("Certification Management"),
		styles.HelpStyle.Render("Generate and issue completion certificates."),
		"",
		cards,
		"",
		m.renderEligible(),
		"",
		m.renderClosest(threshold),
		"",
		styles.HelpStyle.Render("i: Issue • Enter: Preview • d: Download • e: Email • E: Email all eligible"),
	}
	return styles.DocStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderEligible() string {
	cardWidth := max(m.width-6, 60)
	title := styles.CardTitleStyle.Render("Eligible Candidates")

	if len(m.eligible) == 0 {
		body := styles.HelpStyle.Render("No participants currently meet the graduation criteria.")
		return styles.CardStyle.Width(cardWidth).Render(title + "\n\n" + body)
	}
	return styles.CardStyle.Width(cardWidth).Render(title + "\n" + m.table.View())
}

func (m *Model) renderClosest(threshold int) string {
	closest := m.closest()
	if len(closest) == 0 {
		return ""
	}

	lines := []string{styles.CardTitleStyle.Render("Closest to Eligibility")}
	for _, p := range closest {
		gap := threshold - p.CompletionRate
		lines = append(lines, fmt.Sprintf("%s %s %s",
			lipgloss.NewStyle().Width(24).Render(p.FullName),
			components.CompactBar(p.CompletionRate, 20),
			styles.WarningTextStyle.Render(fmt.Sprintf("needs %d%% more", gap)),
		))
	}
	return strings.Join(lines, "\n")
}
