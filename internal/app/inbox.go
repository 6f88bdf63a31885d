package app

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/styles"
)

const inboxWidth = 60

// inbox is the notification list shown over the active view.
type inbox struct {
	active bool
	cursor int
}

func (b *inbox) toggle() {
	b.active = !b.active
	b.cursor = 0
}

// update handles keys while the inbox is open.
func (b *inbox) update(msg tea.KeyMsg, items []models.Notification) tea.Cmd {
	switch msg.String() {
	case "esc", "n":
		b.active = false
	case "up", "k":
		if b.cursor > 0 {
			b.cursor--
		}
	case "down", "j":
		if b.cursor < len(items)-1 {
			b.cursor++
		}
	case "a":
		return Emit(MarkAllReadMsg{})
	case "enter":
		if b.cursor >= len(items) {
			return nil
		}
		n := items[b.cursor]
		cmds := []tea.Cmd{}
		if !n.IsRead {
			cmds = append(cmds, Emit(MarkReadMsg{ID: n.ID}))
		}
		if n.Link != "" {
			b.active = false
			cmds = append(cmds, Emit(NavigateMsg{View: n.Link}))
		}
		return tea.Batch(cmds...)
	}
	return nil
}

func (b *inbox) view(items []models.Notification, unread int) string {
	var sb strings.Builder
	sb.WriteString(styles.TitleStyle.Render(fmt.Sprintf("Notifications (%d unread)", unread)))
	sb.WriteString("\n")

	if len(items) == 0 {
		sb.WriteString(styles.HelpStyle.Render("No notifications"))
		sb.WriteString("\n")
	}

	b.cursor = min(b.cursor, max(len(items)-1, 0))
	for i, n := range items {
		marker := "  "
		if !n.IsRead {
			marker = styles.GetAlertStyle(n.Type).Render("● ")
		}
		title := styles.GetAlertStyle(n.Type).Render(n.Title)
		if i == b.cursor {
			title = styles.SelectedListItemStyle.Render("> ") + title
		} else {
			title = "  " + title
		}
		sb.WriteString(marker + title + "  " + styles.HelpStyle.Render(humanize.Time(n.Timestamp)))
		sb.WriteString("\n")
		sb.WriteString("    " + styles.HelpDescStyle.Render(ansi.Truncate(n.Message, inboxWidth, "…")))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(styles.HelpStyle.Render("enter open  a mark all read  esc close"))
	return styles.ModalContentStyle.Render(sb.String())
}
