package resources

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/styles"
)

// View renders the resources tab.
func (m *Model) View() string {
	var sections []string
	sections = append(sections, m.renderTitle())

	switch {
	case m.adding:
		sections = append(sections, m.renderAddForm())
	case m.confirmDelete:
		sections = append(sections, m.renderDeleteConfirm(), m.renderTable())
	default:
		sections = append(sections, m.renderFilters(), "", m.renderTable())
	}

	sections = append(sections, m.renderFooter())

	return styles.DocStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderTitle() string {
	all := m.state.GetResources()
	week := m.state.CurrentWeek()

	released := 0
	for i := range all {
		if all[i].AssignedWeek != nil && *all[i].AssignedWeek == week {
			released++
		}
	}

	title := styles.TitleStyle.Render("Resource Library")
	counts := typeCounts(all)
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%d items (%d files, %d videos, %d links), %d released for week %d",
		len(all), counts[models.ResourceFile], counts[models.ResourceVideo], counts[models.ResourceLink], released, week))
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderFilters() string {
	search := m.search.View()
	if !m.searching {
		if m.filter.Search == "" {
			search = styles.BlurredStyle.Render("/ Search by title or tag...")
		} else {
			search = styles.BlurredStyle.Render("/ " + m.filter.Search)
		}
	}

	typ := "All Types"
	if m.filter.Type != "" {
		typ = styles.GetResourceTypeStyle(m.filter.Type).Render(string(m.filter.Type))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center,
		styles.BlurredBorderStyle.Width(44).Render(search),
		"  "+styles.HelpDescStyle.Render("Type: ")+typ,
		"  "+styles.HelpStyle.Render(fmt.Sprintf("%d shown", len(m.rows))),
	)
}

func (m *Model) renderTable() string {
	cardWidth := max(m.width-6, 60)

	if len(m.rows) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Center,
			"",
			styles.SubTitleStyle.Render("No resources found"),
			"",
			styles.HelpStyle.Render("Try a different search or type filter."),
			"",
			styles.InfoTextStyle.Render("Press 'a' to add a resource"),
			"",
		)
		return styles.CardStyle.Width(cardWidth).Render(content)
	}
	return styles.CardStyle.Width(cardWidth).Render(m.table.View())
}

// renderAddForm renders the add resource form.
func (m *Model) renderAddForm() string {
	cardWidth := min(max(m.width-10, 50), 80)

	rows := []string{styles.CardTitleStyle.Render("Add Resource"), ""}

	field := func(f formField, label, body string) {
		if m.focusedField == f {
			rows = append(rows, styles.FocusedStyle.Render("> "+label))
		} else {
			rows = append(rows, styles.BlurredStyle.Render("  "+label))
		}
		border := styles.BlurredBorderStyle
		if m.focusedField == f {
			border = styles.FocusedBorderStyle
		}
		rows = append(rows, border.Width(cardWidth-10).Render(body))
	}

	field(fieldTitle, "Title:", m.inputs[fieldTitle].View())
	field(fieldDescription, "Description:", m.inputs[fieldDescription].View())
	field(fieldType, "Type (←/→):", m.renderTypePicker())
	field(fieldURL, "URL:", m.inputs[fieldURL].View())
	field(fieldWeek, "Week:", m.inputs[fieldWeek].View())
	field(fieldTags, "Tags (comma separated):", m.inputs[fieldTags].View())
	rows = append(rows, "")

	submitStyle := styles.ButtonInactiveStyle
	cancelStyle := styles.ButtonInactiveStyle
	if m.focusedField == fieldSubmit {
		submitStyle = styles.ButtonActiveStyle
	}
	if m.focusedField == fieldCancel {
		cancelStyle = styles.ButtonActiveStyle
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center,
		submitStyle.Render(" Add Resource "),
		"  ",
		cancelStyle.Render(" Cancel "),
	))

	if m.formErr != "" {
		rows = append(rows, "", styles.ErrorTextStyle.Render(m.formErr))
	}

	return styles.ModalContentStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderTypePicker() string {
	parts := make([]string, len(resourceTypes))
	for i, t := range resourceTypes {
		if i == m.formType {
			parts[i] = styles.GetResourceTypeStyle(t).Bold(true).Render("[" + string(t) + "]")
		} else {
			parts[i] = styles.BlurredStyle.Render(" " + string(t) + " ")
		}
	}
	return strings.Join(parts, " ")
}

// renderDeleteConfirm renders the delete confirmation dialog.
func (m *Model) renderDeleteConfirm() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.WarningTextStyle.Bold(true).Render("Delete Resource?"),
		"",
		"Are you sure you want to delete:",
		styles.ErrorTextStyle.Render(m.pending.Title),
		styles.HelpStyle.Render(string(m.pending.Type)+" • "+m.pending.WeekLabel()),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			styles.ButtonActiveStyle.Render(" (Y)es "),
			"  ",
			styles.ButtonInactiveStyle.Render(" (N)o "),
		),
		"",
	)

	return styles.CenterHorizontal(
		styles.ModalContentStyle.Width(50).Render(content),
		m.width,
	)
}

func (m *Model) renderFooter() string {
	var shortcuts []string
	switch {
	case m.adding:
		shortcuts = []string{"Tab next", "Enter next/submit", "Ctrl+S save", "Esc cancel"}
	case m.confirmDelete:
		shortcuts = []string{"Y confirm", "N cancel"}
	case m.searching:
		shortcuts = []string{"Type to search", "Enter/Esc done"}
	default:
		shortcuts = []string{"/ search", "t type", "x clear", "a add", "d delete", "Enter copy link"}
	}
	return lipgloss.NewStyle().MarginTop(1).Render(styles.HelpStyle.Render(strings.Join(shortcuts, " • ")))
}

// typeCounts tallies the library by resource type.
func typeCounts(rs []models.Resource) map[models.ResourceType]int {
	out := make(map[models.ResourceType]int, len(resourceTypes))
	for _, r := range rs {
		out[r.Type]++
	}
	return out
}
