// Package styles defines the visual styling for the application.
package styles

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
)

// Color definitions for the Leap theme.
var (
	// Primary colors
	Primary   = lipgloss.Color("63")  // Indigo
	Secondary = lipgloss.Color("205") // Pink
	Subtle    = lipgloss.Color("240") // Gray

	// Channel colors
	Email    = lipgloss.Color("39") // Blue
	WhatsApp = lipgloss.Color("42") // Green

	// Status colors
	Success = lipgloss.Color("42")  // Green
	Error   = lipgloss.Color("196") // Red
	Warning = lipgloss.Color("220") // Yellow
	Info    = lipgloss.Color("39")  // Blue

	// Background colors
	BgDark   = lipgloss.Color("235")
	BgLight  = lipgloss.Color("237")
	BgAccent = lipgloss.Color("236")

	// Text colors
	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	// ToastStyle for floating notifications.
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)
)

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// SubTitleStyle is used for section headings.
var SubTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Secondary).
	MarginBottom(1)

// DocStyle provides consistent document margins.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)

// ActiveTabStyle styles the currently selected tab.
var ActiveTabStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("229")).
	Background(Primary).
	Padding(0, 2).
	MarginRight(1)

// InactiveTabStyle styles non-selected tabs.
var InactiveTabStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Background(BgLight).
	Padding(0, 2).
	MarginRight(1)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(1, 2).
	MarginBottom(1)

// StatCardStyle is the compact card used for headline numbers.
var StatCardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(0, 2).
	MarginRight(1)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// StatValueStyle renders the big number of a stat card.
var StatValueStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(TextPrimary)

// FocusedStyle is used for focused input elements.
var FocusedStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// BlurredStyle is used for unfocused input elements.
var BlurredStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// FocusedBorderStyle creates a focused border.
var FocusedBorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Primary).
	Padding(0, 1)

// BlurredBorderStyle creates an unfocused border.
var BlurredBorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(0, 1)

// ProgressLabelStyle styles progress bar labels.
var ProgressLabelStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Width(20)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpKeyStyle styles keyboard shortcut keys.
var HelpKeyStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// HelpDescStyle styles help descriptions.
var HelpDescStyle = lipgloss.NewStyle().
	Foreground(TextSecondary)

// HelpPanelStyle creates the help overlay panel.
var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 3).
	Background(BgDark)

// ListItemStyle styles list items.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedListItemStyle styles selected list items.
var SelectedListItemStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// TableHeaderStyle styles table headers.
var TableHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	BorderStyle(lipgloss.NormalBorder()).
	BorderBottom(true).
	BorderForeground(Subtle)

// TableSelectedStyle styles selected table rows.
var TableSelectedStyle = lipgloss.NewStyle().
	Background(BgAccent).
	Foreground(TextPrimary).
	Bold(true)

// ErrorTextStyle for error messages.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Error)

// SuccessTextStyle for success messages.
var SuccessTextStyle = lipgloss.NewStyle().
	Foreground(Success)

// WarningTextStyle for warning messages.
var WarningTextStyle = lipgloss.NewStyle().
	Foreground(Warning)

// InfoTextStyle for info messages.
var InfoTextStyle = lipgloss.NewStyle().
	Foreground(Info)

// ModalContentStyle styles modal content.
var ModalContentStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 2).
	Background(BgDark)

// ButtonStyle is the base button style.
var ButtonStyle = lipgloss.NewStyle().
	Padding(0, 2).
	MarginRight(1)

// ButtonActiveStyle styles active/focused buttons.
var ButtonActiveStyle = ButtonStyle.
	Background(Primary).
	Foreground(lipgloss.Color("229")).
	Bold(true)

var ButtonInactiveStyle = ButtonStyle.
	Background(BgLight).
	Foreground(TextSecondary)

// BadgeStyle is the base for small inline labels.
var BadgeStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Bold(true)

// GetCompletionStyle returns the style for a completion percentage.
func GetCompletionStyle(percent int) lipgloss.Style {
	switch {
	case percent >= 80:
		return SuccessTextStyle
	case percent >= 50:
		return WarningTextStyle
	default:
		return ErrorTextStyle
	}
}

// GetEngagementStyle returns the style for an engagement level.
func GetEngagementStyle(level models.EngagementLevel) lipgloss.Style {
	switch level {
	case models.EngagementHigh:
		return SuccessTextStyle
	case models.EngagementMedium:
		return WarningTextStyle
	case models.EngagementLow:
		return ErrorTextStyle
	default:
		return HelpStyle
	}
}

// GetStatusStyle returns the style for a weekly assignment status.
func GetStatusStyle(status models.AssignmentStatus) lipgloss.Style {
	switch status {
	case models.StatusCompleted:
		return SuccessTextStyle
	case models.StatusPartial:
		return WarningTextStyle
	case models.StatusMissing:
		return ErrorTextStyle
	default:
		return HelpStyle
	}
}

// StatusGlyph is the single-cell marker for a weekly status in the progress matrix.
func StatusGlyph(status models.AssignmentStatus) string {
	switch status {
	case models.StatusCompleted:
		return "●"
	case models.StatusPartial:
		return "◐"
	case models.StatusMissing:
		return "✕"
	default:
		return "·"
	}
}

// GetAlertStyle returns the style for a notification severity.
func GetAlertStyle(t models.AlertType) lipgloss.Style {
	switch t {
	case models.AlertCritical:
		return ErrorTextStyle.Bold(true)
	case models.AlertWarning:
		return WarningTextStyle
	default:
		return InfoTextStyle
	}
}

// GetChannelStyle returns the style for a messaging channel.
func GetChannelStyle(c models.Channel) lipgloss.Style {
	if c == models.ChannelWhatsApp {
		return lipgloss.NewStyle().Foreground(WhatsApp)
	}
	return lipgloss.NewStyle().Foreground(Email)
}

// GetReminderStyle returns the style for a reminder status.
func GetReminderStyle(s models.ReminderStatus) lipgloss.Style {
	switch s {
	case models.ReminderSent:
		return SuccessTextStyle
	case models.ReminderScheduled:
		return InfoTextStyle
	default:
		return ErrorTextStyle
	}
}

// GetRoleStyle returns the badge style for an admin role.
func GetRoleStyle(r models.Role) lipgloss.Style {
	switch r {
	case models.RoleSuperAdmin:
		return BadgeStyle.Foreground(Secondary)
	case models.RoleProgramManager:
		return BadgeStyle.Foreground(Primary)
	default:
		return BadgeStyle.Foreground(TextSecondary)
	}
}

// GetResourceTypeStyle returns the style for a library item type.
func GetResourceTypeStyle(t models.ResourceType) lipgloss.Style {
	switch t {
	case models.ResourceVideo:
		return lipgloss.NewStyle().Foreground(Secondary)
	case models.ResourceLink:
		return lipgloss.NewStyle().Foreground(Info)
	default:
		return lipgloss.NewStyle().Foreground(TextSecondary)
	}
}

// CenterHorizontal centers content horizontally within a given width.
func CenterHorizontal(content string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(content)
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}

// TableStyles returns the header and selection styles shared by data tables.
func TableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(Primary)
	s.Selected = s.Selected.
		Foreground(TextPrimary).
		Background(BgAccent).
		Bold(true)
	return s
}
