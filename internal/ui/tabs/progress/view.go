package progress

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/metrics"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/styles"
)

const (
	nameWidth  = 22
	assessDots = 3
)

// View renders the progress matrix.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Master Progress Tracker"))
	b.WriteString(styles.HelpStyle.Render("  sorted by " + m.sort.String()))
	b.WriteString("\n\n")
	b.WriteString(m.renderWeekStats())
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(styles.HelpStyle.Render("No participants in this cohort."))
		return styles.DocStyle.Render(b.String())
	}

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	end := min(m.offset+m.visibleRows(), len(m.rows))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(m.rows[i], i == m.cursor))
		b.WriteString("\n")
	}
	if len(m.rows) > m.visibleRows() {
		b.WriteString(styles.HelpStyle.Render(fmt.Sprintf("%d-%d of %d", m.offset+1, end, len(m.rows))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(components.StatusLegend())

	return styles.DocStyle.Render(b.String())
}

// renderWeekStats summarizes the current week's submissions.
func (m *Model) renderWeekStats() string {
	week := m.state.CurrentWeek()
	sub := metrics.Submissions(m.rows, week)

	cards := []string{
		components.StatCard(fmt.Sprintf("Week %d submitted", week), fmt.Sprintf("%d%%", sub.Rate), fmt.Sprintf("%d of %d", sub.Completed+sub.Partial, len(m.rows)), 20),
		components.StatCard("Completed", fmt.Sprintf("%d", sub.Completed), "", 14),
		components.StatCard("Partial", fmt.Sprintf("%d", sub.Partial), "", 14),
		components.StatCard("Missing", fmt.Sprintf("%d", sub.Missing), "", 14),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m *Model) renderHeader() string {
	var b strings.Builder
	b.WriteString(styles.TableHeaderStyle.Render(pad("Participant", nameWidth+2)))
	b.WriteString(styles.TableHeaderStyle.Render(pad("%", 5)))
	current := m.state.CurrentWeek()
	for w := 1; w <= models.TotalWeeks; w++ {
		label := pad(fmt.Sprintf("W%d", w), 4)
		if w == current {
			label = styles.FocusedStyle.Render(label)
		}
		b.WriteString(styles.TableHeaderStyle.Render(label))
	}
	b.WriteString(styles.TableHeaderStyle.Render(pad("Eng", 5)))
	b.WriteString(styles.TableHeaderStyle.Render("Assess"))
	return b.String()
}

func (m *Model) renderRow(p models.Participant, selected bool) string {
	var b strings.Builder

	prefix := "  "
	if selected {
		prefix = styles.FocusedStyle.Render("▸ ")
	}
	name := ansi.Truncate(p.FullName, nameWidth, "…")
	if selected {
		name = styles.TableSelectedStyle.Render(pad(name, nameWidth))
	} else {
		name = pad(name, nameWidth)
	}
	b.WriteString(prefix + name)
	b.WriteString(styles.GetCompletionStyle(p.CompletionRate).Render(pad(fmt.Sprintf("%d%%", p.CompletionRate), 5)))

	for w := 1; w <= models.TotalWeeks; w++ {
		status := p.StatusAt(w)
		b.WriteString(styles.GetStatusStyle(status).Render(pad(styles.StatusGlyph(status), 4)))
	}

	b.WriteString(styles.GetCompletionStyle(p.EngagementScore).Render(pad(fmt.Sprintf("%d%%", p.EngagementScore), 5)))
	b.WriteString(assessments(p.SelfAssessmentsCompleted))
	return b.String()
}

func assessments(done int) string {
	var b strings.Builder
	for i := 0; i < assessDots; i++ {
		if i < done {
			b.WriteString(styles.SuccessTextStyle.Render("●"))
		} else {
			b.WriteString(styles.HelpStyle.Render("○"))
		}
	}
	return b.String()
}

func pad(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
