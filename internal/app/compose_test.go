package app

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
)

func typeText(c *composer, text string) {
	for _, r := range text {
		c.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func composeRecipients() []models.Participant {
	return []models.Participant{
		{ID: "p-1", FullName: "Alice Johnson", Email: "alice@example.com", WhatsApp: "+1 555 0100"},
		{ID: "p-2", FullName: "Bob Smith", Email: "bob@example.com", WhatsApp: "+1 555 0101"},
	}
}

func TestComposer_Open(t *testing.T) {
	tests := []struct {
		name      string
		msg       OpenComposeMsg
		channel   models.Channel
		wantFocus int
	}{
		{"defaults to email", OpenComposeMsg{}, models.ChannelEmail, focusSubject},
		{"email with subject", OpenComposeMsg{Channel: models.ChannelEmail, Subject: "Hi"}, models.ChannelEmail, focusBody},
		{"whatsapp", OpenComposeMsg{Channel: models.ChannelWhatsApp}, models.ChannelWhatsApp, focusBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newComposer()
			tt.msg.Recipients = composeRecipients()
			c.open(tt.msg, nil)
			if !c.active || c.channel != tt.channel || c.focus != tt.wantFocus {
				t.Errorf("active=%v channel=%s focus=%d", c.active, c.channel, c.focus)
			}
		})
	}
}

func TestComposer_SendEmail(t *testing.T) {
	c := newComposer()
	c.setWidth(100)
	c.open(OpenComposeMsg{Channel: models.ChannelEmail, Recipients: composeRecipients()}, nil)

	typeText(&c, "Week 4")
	c.update(tea.KeyMsg{Type: tea.KeyTab})
	if c.focus != focusBody {
		t.Fatal("tab should move to the body")
	}
	typeText(&c, "Hi {name}")

	cmd := c.update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatalf("send failed: %s", c.err)
	}
	msg, ok := cmd().(SendMessageMsg)
	if !ok {
		t.Fatal("expected SendMessageMsg")
	}
	if msg.Draft.Subject != "Week 4" || msg.Draft.Body != "Hi {name}" || len(msg.Draft.Recipients) != 2 {
		t.Errorf("draft = %+v", msg.Draft)
	}
	if c.active {
		t.Error("composer should close after sending")
	}
}

func TestComposer_Validation(t *testing.T) {
	c := newComposer()
	c.open(OpenComposeMsg{Channel: models.ChannelWhatsApp, Recipients: composeRecipients()}, nil)

	if cmd := c.update(tea.KeyMsg{Type: tea.KeyCtrlS}); cmd != nil {
		t.Error("empty message should not send")
	}
	if c.err == "" || !c.active {
		t.Error("validation error should be shown")
	}
	if !strings.Contains(c.view(), c.err) {
		t.Error("view should show the error")
	}

	typeText(&c, "x")
	if c.err != "" {
		t.Error("typing should clear the error")
	}
}

func TestComposer_ToggleChannel(t *testing.T) {
	c := newComposer()
	c.open(OpenComposeMsg{Recipients: composeRecipients()}, nil)

	c.update(tea.KeyMsg{Type: tea.KeyCtrlT})
	if c.channel != models.ChannelWhatsApp || c.focus != focusBody {
		t.Errorf("channel=%s focus=%d", c.channel, c.focus)
	}
	view := c.view()
	if !strings.Contains(view, "New WhatsApp Message") || !strings.Contains(view, "2 participants (broadcast list)") {
		t.Errorf("whatsapp view = %q", view)
	}
	if c.draft().Subject != "" {
		t.Error("whatsapp drafts carry no subject")
	}

	c.update(tea.KeyMsg{Type: tea.KeyCtrlT})
	if c.channel != models.ChannelEmail {
		t.Error("ctrl+t should switch back to email")
	}
	if !strings.Contains(c.view(), "2 recipients (BCC)") {
		t.Error("bulk email should show BCC")
	}
}

func TestComposer_Attachments(t *testing.T) {
	c := newComposer()
	c.open(OpenComposeMsg{Recipients: composeRecipients()}, nil)
	c.update(tea.KeyMsg{Type: tea.KeyCtrlA})
	if c.attach {
		t.Error("nothing to attach")
	}

	week := 4
	available := []models.Resource{{ID: "r-1", Title: "Slides", AssignedWeek: &week}}
	c.open(OpenComposeMsg{Recipients: composeRecipients()}, available)
	c.update(tea.KeyMsg{Type: tea.KeyCtrlA})
	if !c.attach || len(c.draft().Attachments) != 1 {
		t.Error("ctrl+a should attach this week's resources")
	}
	if !strings.Contains(c.view(), "[x] attach 1 resources") {
		t.Error("view should show the attachment toggle")
	}
}
