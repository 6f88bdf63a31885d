package reminders

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/j-veylop/leap-dashboard-tui/internal/db"
	"github.com/j-veylop/leap-dashboard-tui/internal/models"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/messaging"
	"github.com/j-veylop/leap-dashboard-tui/internal/services/settings"
	"github.com/j-veylop/leap-dashboard-tui/internal/validation"
)

type fakeRoster struct {
	mu           sync.Mutex
	participants []models.Participant
	week         int
}

func (f *fakeRoster) ParticipantsByID(ids []string) []models.Participant {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Participant
	for _, id := range ids {
		for _, p := range f.participants {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out
}

func (f *fakeRoster) CurrentWeek() int {
	return f.week
}

var testNow = time.Date(2023, 10, 27, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, poll time.Duration) (*Service, *db.DB) {
	t.Helper()

	store, err := db.New(":memory:")
	if err != nil {
		t.Fatalf("db.New() failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	roster := &fakeRoster{
		week: 8,
		participants: []models.Participant{
			{ID: "p-1", FullName: "Alice Johnson 0", Email: "alice@example.com", WhatsApp: "+1 (555) 000-1000"},
			{ID: "p-2", FullName: "Bob Smith 1", Email: "bob@example.com"},
		},
	}

	svc, err := New(store, messaging.New(store), roster, Config{
		PollInterval: poll,
		Now:          func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })

	return svc, store
}

func waitFor(t *testing.T, svc *Service, want EventType) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case event := <-svc.Events():
			if event.Type == want {
				return event
			}
		case <-timeout:
			t.Fatalf("timeout waiting for event type %v", want)
			return Event{}
		}
	}
}

func TestNew_SeedsHistory(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)

	history, err := svc.History()
	if err != nil {
		t.Fatalf("History() failed: %v", err)
	}
	if len(history) != 4 || history[0].ID != "r-1" || history[3].ID != "r-4" {
		t.Fatalf("History() = %+v", history)
	}
	if history[1].DeliveryRate != 92 || history[1].RecipientCount != 12 {
		t.Errorf("r-2 = %+v", history[1])
	}
}

func TestSchedule_DeliveredByPoller(t *testing.T) {
	svc, store := newTestService(t, 10*time.Millisecond)

	r, err := svc.Schedule("John Reese", Request{
		Template:     "Week 8 Accountability Nudge",
		Body:         "Hi {name}, week {week} check-in!",
		RecipientIDs: []string{"p-1", "p-2"},
		At:           testNow.Add(-time.Minute),
	})
	if err != nil {
		t.Fatalf("Schedule() failed: %v", err)
	}
	if r.Status != models.ReminderScheduled || r.Channel != models.ChannelWhatsApp || r.RecipientCount != 2 {
		t.Errorf("scheduled = %+v", r)
	}

	event := waitFor(t, svc, EventReminderSent)
	if event.Reminder.ID != r.ID {
		t.Fatalf("sent event for %s, want %s", event.Reminder.ID, r.ID)
	}
	if event.Reminder.DeliveryRate != 50 {
		t.Errorf("DeliveryRate = %d, want 50", event.Reminder.DeliveryRate)
	}

	stored, err := store.GetReminder(r.ID)
	if err != nil {
		t.Fatalf("GetReminder() failed: %v", err)
	}
	if stored.Status != models.ReminderSent || stored.DeliveryRate != 50 {
		t.Errorf("stored = %+v", stored)
	}

	outbox, _ := store.GetOutbox(event.Result.BatchID, 0)
	if len(outbox) != 2 || outbox[0].Body != "Hi Alice, week 8 check-in!" {
		t.Errorf("outbox = %+v", outbox)
	}

	if n, _ := store.CountAuditEntries(models.ActionScheduleReminder); n != 1 {
		t.Errorf("SCHEDULE_REMINDER entries = %d", n)
	}
	if n, _ := store.CountAuditEntries(models.ActionAutoReminder); n != 1 {
		t.Errorf("AUTO_REMINDER entries = %d", n)
	}
	if stats := svc.GetStats(); stats.Delivered != 1 || stats.LastPoll.IsZero() {
		t.Errorf("stats = %+v", stats)
	}
}

func TestSchedule_FutureNotDelivered(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)

	r, err := svc.Schedule("John Reese", Request{
		Template:     "Week 9 Content Release",
		Body:         "Week {week} is live",
		RecipientIDs: []string{"p-1"},
		At:           testNow.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Schedule() failed: %v", err)
	}

	n, err := svc.DeliverDue()
	if err != nil || n != 0 {
		t.Errorf("DeliverDue() = %d, %v; want 0", n, err)
	}

	history, _ := svc.History()
	if history[0].ID != r.ID || history[0].Status != models.ReminderScheduled {
		t.Errorf("newest reminder = %+v", history[0])
	}
}

func TestSchedule_Invalid(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)

	if _, err := svc.Schedule("x", Request{Template: "T", Body: "B", RecipientIDs: []string{"p-1"}}); !errors.Is(err, ErrNotScheduled) {
		t.Errorf("missing time error = %v", err)
	}

	_, err := svc.Schedule("x", Request{Template: " ", Body: "B", At: testNow})
	var vErr *validation.Error
	if !errors.As(err, &vErr) {
		t.Fatalf("Schedule() error = %v, want validation error", err)
	}
	for _, field := range []string{"template", "recipientIds"} {
		if _, ok := vErr.Field(field); !ok {
			t.Errorf("no error for %s: %+v", field, vErr.Fields)
		}
	}
}

func TestSendNow_AllUndeliverable(t *testing.T) {
	svc, store := newTestService(t, time.Hour)

	r, res, err := svc.SendNow("Sarah Connor", Request{
		Template:     "Week 8 Accountability Nudge",
		Body:         "Ping",
		RecipientIDs: []string{"p-2", "p-gone"},
	})
	if err != nil {
		t.Fatalf("SendNow() failed: %v", err)
	}
	if r.Status != models.ReminderFailed || r.DeliveryRate != 0 {
		t.Errorf("reminder = %+v", r)
	}
	if res.Recipients != 1 || res.Undeliverable != 1 {
		t.Errorf("result = %+v", res)
	}
	if !r.Date.Equal(testNow) {
		t.Errorf("Date = %v, want now", r.Date)
	}

	entries, _ := store.GetAuditLog(1)
	if len(entries) != 1 || entries[0].Action != models.ActionSendWhatsApp || entries[0].Status != models.AuditFailure {
		t.Errorf("audit = %+v", entries)
	}
}

func TestSendNow_Email(t *testing.T) {
	svc, store := newTestService(t, time.Hour)

	r, res, err := svc.SendNow("Sarah Connor", Request{
		Template:     "Program update",
		Body:         "Hello {name}",
		Channel:      models.ChannelEmail,
		RecipientIDs: []string{"p-1", "p-2"},
	})
	if err != nil {
		t.Fatalf("SendNow() failed: %v", err)
	}
	if r.Status != models.ReminderSent || r.DeliveryRate != 100 {
		t.Errorf("reminder = %+v", r)
	}
	msgs, _ := store.GetOutbox(res.BatchID, 0)
	if len(msgs) != 2 || !msgs[0].Bcc || msgs[0].Subject != "Program update" {
		t.Errorf("outbox = %+v", msgs)
	}
}

func TestDeliveryRate(t *testing.T) {
	tests := []struct {
		delivered, total, want int
	}{
		{0, 0, 0},
		{45, 45, 100},
		{11, 12, 92},
		{1, 3, 33},
		{2, 3, 67},
	}
	for _, tt := range tests {
		if got := DeliveryRate(tt.delivered, tt.total); got != tt.want {
			t.Errorf("DeliveryRate(%d, %d) = %d, want %d", tt.delivered, tt.total, got, tt.want)
		}
	}
}

func TestClose_Twice(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	if err := svc.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}

func TestNextOccurrence(t *testing.T) {
	// Friday 27 October 2023, 12:00 UTC
	now := testNow

	tests := []struct {
		name  string
		day   string
		clock string
		want  time.Time
	}{
		{"next monday", "Monday", "09:00", time.Date(2023, 10, 30, 9, 0, 0, 0, time.UTC)},
		{"later today", "Friday", "14:00", time.Date(2023, 10, 27, 14, 0, 0, 0, time.UTC)},
		{"earlier today rolls a week", "Friday", "09:00", time.Date(2023, 11, 3, 9, 0, 0, 0, time.UTC)},
		{"exactly now rolls a week", "Friday", "12:00", time.Date(2023, 11, 3, 12, 0, 0, 0, time.UTC)},
		{"thursday", "Thursday", "14:00", time.Date(2023, 11, 2, 14, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextOccurrence(now, tt.day, tt.clock)
			if err != nil {
				t.Fatalf("NextOccurrence() failed: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextOccurrence() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := NextOccurrence(now, "Funday", "09:00"); err == nil {
		t.Error("unknown weekday should fail")
	}
	if _, err := NextOccurrence(now, "Monday", "9am"); err == nil {
		t.Error("bad clock should fail")
	}
}

func TestNextRelease(t *testing.T) {
	up, err := NextRelease(testNow, settings.Defaults().Schedule)
	if err != nil {
		t.Fatalf("NextRelease() failed: %v", err)
	}
	if !up.ContentRelease.Equal(time.Date(2023, 10, 30, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("ContentRelease = %v", up.ContentRelease)
	}
	if !up.Nudge.Equal(time.Date(2023, 11, 2, 14, 0, 0, 0, time.UTC)) {
		t.Errorf("Nudge = %v", up.Nudge)
	}

	bad := settings.Defaults().Schedule
	bad.NudgeTime = "late"
	if _, err := NextRelease(testNow, bad); err == nil {
		t.Error("NextRelease() should fail for an invalid nudge time")
	}
}
