package settings

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/styles"
)

// View renders the settings tab.
func (m *Model) View() string {
	sections := []string{
		styles.TitleStyle.Render("System Settings"),
		styles.HelpStyle.Render("Configure automation rules and view audit logs."),
		"",
		m.renderPanes(),
		"",
	}

	if m.pane == paneAudit {
		sections = append(sections, m.renderAudit())
	} else {
		sections = append(sections, m.renderConfig())
	}

	return styles.DocStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderPanes() string {
	config, audit := styles.ButtonInactiveStyle, styles.ButtonInactiveStyle
	if m.pane == paneConfig {
		config = styles.ButtonActiveStyle
	} else {
		audit = styles.ButtonActiveStyle
	}

	strip := lipgloss.JoinHorizontal(lipgloss.Center,
		config.Render("Configuration"),
		audit.Render("Audit Trail"),
	)
	if m.dirty {
		strip += "  " + styles.WarningTextStyle.Render("● unsaved changes")
	}
	return strip
}

func (m *Model) renderConfig() string {
	valueWidth := max(m.width-46, 20)

	var lines []string
	section := ""
	for i, f := range m.fields {
		if f.section != section {
			if section != "" {
				lines = append(lines, "")
			}
			section = f.section
			lines = append(lines, styles.CardTitleStyle.Render(section))
		}

		prefix := "  "
		label := styles.HelpDescStyle.Width(34).Render(f.label)
		if i == m.cursor {
			prefix = styles.SelectedListItemStyle.Render("> ")
			label = styles.SelectedListItemStyle.Width(34).Render(f.label)
		}

		value := f.get(&m.draft)
		if m.editing && i == m.cursor {
			value = m.input.View()
		} else if f.long {
			value = styles.HelpStyle.Render(ansi.Truncate(value, valueWidth, "…"))
		}
		lines = append(lines, prefix+label+value)
	}

	if m.err != "" {
		lines = append(lines, "", styles.ErrorTextStyle.Render(m.err))
	}

	lines = append(lines, "", styles.HelpStyle.Render(m.configHelp()))
	return styles.CardStyle.Width(max(m.width-6, 60)).Render(strings.Join(lines, "\n"))
}

func (m *Model) configHelp() string {
	if m.editing {
		return "Enter: Apply • Esc: Cancel"
	}
	return "↑/↓: Select • Enter: Edit • s: Save • x: Discard • a: Audit trail"
}

// auditRows is how many audit entries fit on screen.
func (m *Model) auditRows() int {
	return max(m.height-12, 3)
}

func (m *Model) renderAudit() string {
	entries := m.state.GetAuditLog()
	if len(entries) == 0 {
		return styles.CardStyle.Width(max(m.width-6, 60)).Render(styles.HelpStyle.Render("No audit entries recorded yet."))
	}

	detailWidth := max(m.width-80, 20)
	header := fmt.Sprintf("%-14s %-16s %-20s %-*s %s", "When", "Actor", "Action", detailWidth, "Details", "Status")
	lines := []string{styles.TableHeaderStyle.Render(header)}

	start := min(m.auditOffset, len(entries)-1)
	end := min(start+m.auditRows(), len(entries))
	for _, e := range entries[start:end] {
		lines = append(lines, fmt.Sprintf("%-14s %-16s %-20s %-*s %s",
			ansi.Truncate(humanize.Time(e.Timestamp), 14, "…"),
			ansi.Truncate(e.ActorName, 16, "…"),
			string(e.Action),
			detailWidth, ansi.Truncate(e.Details, detailWidth, "…"),
			auditStatus(e.Status),
		))
	}

	lines = append(lines,
		"",
		styles.HelpStyle.Render(fmt.Sprintf("%d-%d of %d • ↑/↓: Scroll • a: Configuration", start+1, end, len(entries))),
	)
	return styles.CardStyle.Width(max(m.width-6, 60)).Render(strings.Join(lines, "\n"))
}

func auditStatus(s models.AuditStatus) string {
	if s == models.AuditFailure {
		return styles.ErrorTextStyle.Render(string(s))
	}
	return styles.SuccessTextStyle.Render(string(s))
}
