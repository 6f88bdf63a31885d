package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/messaging"
	"github.com/j-veylop/leap-dashboard-tui/internal/ui/styles"
)

const (
	focusSubject = iota
	focusBody
)

// composer is the message form shown over the active view.
type composer struct {
	active     bool
	channel    models.Channel
	recipients []models.Participant
	subject    textinput.Model
	body       textarea.Model
	available  []models.Resource
	attach     bool
	focus      int
	err        string
}

func newComposer() composer {
	subject := textinput.New()
	subject.Placeholder = "Subject"
	subject.CharLimit = 200

	body := textarea.New()
	body.Placeholder = "Type your message..."
	body.ShowLineNumbers = false
	body.CharLimit = 2000
	body.SetHeight(6)

	return composer{subject: subject, body: body}
}

// open resets the form for a new draft. available are the resources that can be attached.
func (c *composer) open(msg OpenComposeMsg, available []models.Resource) tea.Cmd {
	c.active = true
	c.channel = msg.Channel
	if c.channel == "" {
		c.channel = models.ChannelEmail
	}
	c.recipients = msg.Recipients
	c.available = available
	c.attach = false
	c.err = ""
	c.subject.SetValue(msg.Subject)
	c.body.SetValue(msg.Body)

	if c.channel == models.ChannelEmail && msg.Subject == "" {
		return c.setFocus(focusSubject)
	}
	return c.setFocus(focusBody)
}

func (c *composer) close() {
	c.active = false
	c.subject.Blur()
	c.body.Blur()
}

func (c *composer) setFocus(f int) tea.Cmd {
	if c.channel == models.ChannelWhatsApp {
		f = focusBody
	}
	c.focus = f
	if f == focusSubject {
		c.body.Blur()
		return c.subject.Focus()
	}
	c.subject.Blur()
	return c.body.Focus()
}

func (c *composer) setWidth(width int) {
	w := min(max(width-16, 30), 80)
	c.subject.Width = w - 10
	c.body.SetWidth(w)
}

// draft builds the message from the form.
func (c *composer) draft() messaging.Draft {
	d := messaging.Draft{
		Channel:    c.channel,
		Recipients: c.recipients,
		Body:       c.body.Value(),
	}
	if c.channel == models.ChannelEmail {
		d.Subject = c.subject.Value()
	}
	if c.attach {
		d.Attachments = c.available
	}
	return d
}

// update handles keys while the form is open. It returns a SendMessageMsg
// command once the draft validates.
func (c *composer) update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		c.close()
		return nil
	case "ctrl+s":
		d := c.draft()
		if err := d.Validate(); err != nil {
			c.err = err.Error()
			return nil
		}
		c.close()
		return Emit(SendMessageMsg{Draft: d})
	case "tab", "shift+tab":
		if c.focus == focusSubject {
			return c.setFocus(focusBody)
		}
		return c.setFocus(focusSubject)
	case "ctrl+t":
		if c.channel == models.ChannelEmail {
			c.channel = models.ChannelWhatsApp
		} else {
			c.channel = models.ChannelEmail
		}
		c.err = ""
		return c.setFocus(c.focus)
	case "ctrl+a":
		if len(c.available) > 0 {
			c.attach = !c.attach
		}
		return nil
	}

	c.err = ""
	var cmd tea.Cmd
	if c.focus == focusSubject {
		c.subject, cmd = c.subject.Update(msg)
	} else {
		c.body, cmd = c.body.Update(msg)
	}
	return cmd
}

func (c *composer) view() string {
	d := c.draft()
	var b strings.Builder

	title := "New Email"
	if c.channel == models.ChannelWhatsApp {
		title = "New WhatsApp Message"
	}
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n")

	b.WriteString(styles.HelpDescStyle.Render("To: "))
	b.WriteString(d.ToLine())
	b.WriteString("\n")

	if c.channel == models.ChannelEmail {
		b.WriteString(c.subject.View())
		b.WriteString("\n")
	}
	b.WriteString(c.body.View())
	b.WriteString("\n")

	if len(c.available) > 0 {
		box := "[ ]"
		if c.attach {
			box = "[x]"
		}
		b.WriteString(styles.HelpDescStyle.Render(fmt.Sprintf("%s attach %d resources for this week", box, len(c.available))))
		b.WriteString("\n")
	}
	b.WriteString(styles.HelpStyle.Render("Placeholders: {name} {week} {topic}"))
	b.WriteString("\n")

	if c.err != "" {
		b.WriteString(styles.ErrorTextStyle.Render(c.err))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		styles.HelpKeyStyle.Render("ctrl+s"), styles.HelpDescStyle.Render(" send  "),
		styles.HelpKeyStyle.Render("ctrl+t"), styles.HelpDescStyle.Render(" channel  "),
		styles.HelpKeyStyle.Render("ctrl+a"), styles.HelpDescStyle.Render(" attach  "),
		styles.HelpKeyStyle.Render("esc"), styles.HelpDescStyle.Render(" cancel"),
	))

	return styles.ModalContentStyle.Render(b.String())
}
