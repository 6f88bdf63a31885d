package reminders

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/styles"
)

// View renders the reminders tab.
func (m *Model) View() string {
	cardWidth := max((m.width-10)/2, 36)

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.CardStyle.Width(cardWidth).Render(m.renderActions()),
		" ",
		styles.CardStyle.Width(cardWidth).Render(m.renderWatchlist()),
	)

	sections := []string{
		styles.TitleStyle.Render("Reminders & Accountability"),
		"",
		top,
		"",
		m.renderHistory(),
	}
	return styles.DocStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderActions() string {
	release, nudge := m.nextSends()
	roster := m.state.GetRoster()

	lines := []string{
		styles.CardTitleStyle.Render("Quick Actions"),
		"",
		action("e", fmt.Sprintf("Email week %d release to all %d participants", m.state.CurrentWeek(), roster.Len())),
		action("w", fmt.Sprintf("WhatsApp nudge to %d at risk", len(m.watchlist))),
		action("s", "Send accountability nudge now"),
		"",
		styles.CardTitleStyle.Render("Upcoming"),
		upcoming("Content release", "p", release),
		upcoming("Accountability nudge", "S", nudge),
	}
	return strings.Join(lines, "\n")
}

func action(k, desc string) string {
	return styles.HelpKeyStyle.Render(k) + "  " + styles.HelpDescStyle.Render(desc)
}

func upcoming(label, k string, at time.Time) string {
	when := styles.HelpStyle.Render("not scheduled")
	if !at.IsZero() {
		when = at.Local().Format("Mon Jan 2 15:04") + styles.HelpStyle.Render(" ("+humanize.Time(at)+")")
	}
	return fmt.Sprintf("%s %s  %s", styles.HelpKeyStyle.Render(k), styles.HelpDescStyle.Width(22).Render(label), when)
}

func (m *Model) renderWatchlist() string {
	minimum := m.state.GetSettings().Thresholds.AccountabilityMinimum

	lines := []string{
		styles.CardTitleStyle.Render("Watchlist") + styles.HelpStyle.Render(fmt.Sprintf("  fewer than %d check-ins", minimum)),
		"",
	}
	if len(m.watchlist) == 0 {
		lines = append(lines, styles.SuccessTextStyle.Render("Everyone is on track."))
		return strings.Join(lines, "\n")
	}

	for i, p := range m.watchlist[:min(len(m.watchlist), watchlistShown)] {
		prefix := "  "
		name := p.FullName
		if i == m.cursor {
			prefix = styles.FocusedStyle.Render("▸ ")
			name = styles.SelectedListItemStyle.Render(name)
		}
		lines = append(lines, fmt.Sprintf("%s%s  %s", prefix, name,
			styles.WarningTextStyle.Render(fmt.Sprintf("%d check-ins", p.AccountabilityCheckins))))
	}
	if extra := len(m.watchlist) - watchlistShown; extra > 0 {
		lines = append(lines, styles.HelpStyle.Render(fmt.Sprintf("  +%d more", extra)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderHistory() string {
	logs, _ := m.state.GetReminders()

	lines := []string{styles.CardTitleStyle.Render("Recent Communication Log"), ""}
	header := fmt.Sprintf("%-17s %-34s %-9s %10s  %s", "Date", "Template", "Channel", "Recipients", "Status")
	lines = append(lines, styles.TableHeaderStyle.Render(header))

	if len(logs) == 0 {
		lines = append(lines, styles.HelpStyle.Render("No reminders sent yet."))
	}

	limit := max(m.height-24, 4)
	for _, r := range logs[:min(len(logs), limit)] {
		status := string(r.Status)
		if r.Status != models.ReminderScheduled {
			status = fmt.Sprintf("%s (%d%%)", r.Status, r.DeliveryRate)
		}
		lines = append(lines, fmt.Sprintf("%-17s %-34s %s %10d  %s",
			r.Date.Local().Format("2006-01-02 15:04"),
			ansi.Truncate(r.Template, 34, "…"),
			styles.GetChannelStyle(r.Channel).Render(fmt.Sprintf("%-9s", r.Channel)),
			r.RecipientCount,
			styles.GetReminderStyle(r.Status).Render(status),
		))
	}
	if extra := len(logs) - limit; extra > 0 {
		lines = append(lines, styles.HelpStyle.Render(fmt.Sprintf("+%d older", extra)))
	}
	return strings.Join(lines, "\n")
}
