package db

import (
	"errors"
	"testing"
	"time"

	"github.com/j-veylop/leap-dashboard-tui/internal/models"
)

func TestInsertAuditEntry(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	entry := &models.AuditLogEntry{
		ActorName: "Sarah Connor",
		Action:    models.ActionAddResource,
		Details:   `Added resource "Week 3 Reading"`,
	}
	if err := db.InsertAuditEntry(entry); err != nil {
		t.Fatalf("InsertAuditEntry() failed: %v", err)
	}

	if entry.ID == "" {
		t.Error("InsertAuditEntry() should set ID")
	}
	if entry.Timestamp.IsZero() {
		t.Error("InsertAuditEntry() should set Timestamp")
	}
	if entry.Status != models.AuditSuccess {
		t.Errorf("Status = %q, want Success", entry.Status)
	}
}

func TestGetAuditLog_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	for _, e := range models.DefaultAuditLog() {
		if err := db.InsertAuditEntry(&e); err != nil {
			t.Fatalf("InsertAuditEntry(%s) failed: %v", e.ID, err)
		}
	}
	latest := &models.AuditLogEntry{
		Timestamp: time.Date(2023, 10, 28, 8, 0, 0, 500, time.UTC),
		ActorName: models.SystemActor,
		Action:    models.ActionAutoReminder,
	}
	if err := db.InsertAuditEntry(latest); err != nil {
		t.Fatalf("InsertAuditEntry() failed: %v", err)
	}

	entries, err := db.GetAuditLog(0)
	if err != nil {
		t.Fatalf("GetAuditLog() failed: %v", err)
	}
	if len(entries) != 6 {
		t.Fatalf("GetAuditLog() returned %d entries, want 6", len(entries))
	}
	if entries[0].ID != latest.ID || !entries[0].Timestamp.Equal(latest.Timestamp) {
		t.Errorf("first entry = %+v, want the latest", entries[0])
	}
	if entries[1].ID != "log-1" || entries[5].ID != "log-5" {
		t.Errorf("fixture order = %s..%s", entries[1].ID, entries[5].ID)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp.After(entries[i-1].Timestamp) {
			t.Errorf("entry %d is newer than entry %d", i, i-1)
		}
	}

	limited, err := db.GetAuditLog(2)
	if err != nil || len(limited) != 2 {
		t.Errorf("GetAuditLog(2) = %d entries, %v", len(limited), err)
	}

	n, err := db.CountAuditEntries(models.ActionSettingsUpdate)
	if err != nil || n != 1 {
		t.Errorf("CountAuditEntries(SETTINGS_UPDATE) = %d, %v", n, err)
	}
	all, err := db.CountAuditEntries("")
	if err != nil || all != 6 {
		t.Errorf("CountAuditEntries(\"\") = %d, %v", all, err)
	}
}

func TestResources(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	first := &models.Resource{
		Title:        "Week 3: Feedback",
		Type:         models.ResourceFile,
		URL:          "#",
		AssignedWeek: models.WeekPtr(3),
		Tags:         []string{"core", "reading"},
		UploadDate:   "2023-09-08",
	}
	second := &models.Resource{
		ID:         "res-x",
		Title:      "Program FAQ",
		Type:       models.ResourceLink,
		URL:        "https://example.com/faq",
		Tags:       []string{"info"},
		UploadDate: "2023-09-09",
	}
	for _, r := range []*models.Resource{first, second} {
		if err := db.InsertResource(r); err != nil {
			t.Fatalf("InsertResource(%s) failed: %v", r.Title, err)
		}
	}
	if first.ID == "" {
		t.Error("InsertResource() should set ID")
	}

	resources, err := db.GetResources()
	if err != nil {
		t.Fatalf("GetResources() failed: %v", err)
	}
	if len(resources) != 2 {
		t.Fatalf("GetResources() returned %d", len(resources))
	}
	if resources[0].ID != "res-x" {
		t.Errorf("most recent resource should list first, got %s", resources[0].ID)
	}
	if resources[0].AssignedWeek != nil {
		t.Errorf("general resource has week %d", *resources[0].AssignedWeek)
	}
	got := resources[1]
	if got.AssignedWeek == nil || *got.AssignedWeek != 3 {
		t.Errorf("AssignedWeek = %v, want 3", got.AssignedWeek)
	}
	if len(got.Tags) != 2 || got.Tags[1] != "reading" {
		t.Errorf("Tags = %v", got.Tags)
	}

	if err := db.DeleteResource("res-x"); err != nil {
		t.Fatalf("DeleteResource() failed: %v", err)
	}
	if err := db.DeleteResource("res-x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteResource() error = %v, want ErrNotFound", err)
	}
	if err := db.InsertResource(&models.Resource{ID: first.ID, Title: "dup", Type: models.ResourceFile}); err == nil {
		t.Error("InsertResource() with duplicate ID should fail")
	}
}

func TestReminders(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	for _, r := range models.DefaultReminderLogs() {
		if err := db.InsertReminder(&r); err != nil {
			t.Fatalf("InsertReminder(%s) failed: %v", r.ID, err)
		}
	}

	now := time.Date(2023, 10, 27, 12, 0, 0, 0, time.UTC)
	due := &models.ReminderLog{
		Date:           now.Add(-time.Minute),
		Template:       "Week 8 Accountability Nudge",
		Body:           "Hi {name}",
		RecipientIDs:   []string{"p-1", "p-2"},
		RecipientCount: 2,
		Status:         models.ReminderScheduled,
	}
	later := &models.ReminderLog{
		Date:     now.Add(time.Hour),
		Template: "Week 9 Content Release",
		Status:   models.ReminderScheduled,
	}
	for _, r := range []*models.ReminderLog{due, later} {
		if err := db.InsertReminder(r); err != nil {
			t.Fatalf("InsertReminder() failed: %v", err)
		}
	}
	if due.Channel != models.ChannelWhatsApp {
		t.Errorf("default channel = %q", due.Channel)
	}

	dueList, err := db.GetDueReminders(now)
	if err != nil {
		t.Fatalf("GetDueReminders() failed: %v", err)
	}
	if len(dueList) != 1 || dueList[0].ID != due.ID {
		t.Fatalf("GetDueReminders() = %+v", dueList)
	}
	if len(dueList[0].RecipientIDs) != 2 || dueList[0].Body != "Hi {name}" {
		t.Errorf("due reminder lost fields: %+v", dueList[0])
	}

	if err := db.UpdateReminderDelivery(due.ID, models.ReminderSent, 50); err != nil {
		t.Fatalf("UpdateReminderDelivery() failed: %v", err)
	}
	stored, err := db.GetReminder(due.ID)
	if err != nil {
		t.Fatalf("GetReminder() failed: %v", err)
	}
	if stored.Status != models.ReminderSent || stored.DeliveryRate != 50 {
		t.Errorf("stored = %+v", stored)
	}
	if err := db.UpdateReminderDelivery("missing", models.ReminderSent, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateReminderDelivery(missing) error = %v", err)
	}
	if _, err := db.GetReminder("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetReminder(missing) error = %v", err)
	}

	history, err := db.GetReminders()
	if err != nil {
		t.Fatalf("GetReminders() failed: %v", err)
	}
	if len(history) != 6 || history[0].ID != later.ID || history[len(history)-1].ID != "r-4" {
		t.Errorf("history order wrong: first %s last %s", history[0].ID, history[len(history)-1].ID)
	}
}

func TestOutbox(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	if err := db.InsertOutboxMessages(nil); err != nil {
		t.Errorf("InsertOutboxMessages(nil) failed: %v", err)
	}

	batch := []models.OutboxMessage{
		{BatchID: "b-1", Channel: models.ChannelEmail, ParticipantID: "p-1", Address: "a@example.com", Subject: "Hello", Body: "Hi A", Bcc: true, Delivered: true},
		{BatchID: "b-1", Channel: models.ChannelEmail, ParticipantID: "p-2", Address: "b@example.com", Subject: "Hello", Body: "Hi B", Bcc: true, Delivered: true},
	}
	if err := db.InsertOutboxMessages(batch); err != nil {
		t.Fatalf("InsertOutboxMessages() failed: %v", err)
	}
	if batch[0].ID == "" || batch[1].CreatedAt.IsZero() {
		t.Error("InsertOutboxMessages() should fill ID and CreatedAt")
	}

	whatsapp := []models.OutboxMessage{
		{BatchID: "b-2", Channel: models.ChannelWhatsApp, ParticipantID: "p-3", Body: "Ping"},
	}
	if err := db.InsertOutboxMessages(whatsapp); err != nil {
		t.Fatalf("InsertOutboxMessages() failed: %v", err)
	}

	got, err := db.GetOutbox("b-1", 0)
	if err != nil {
		t.Fatalf("GetOutbox(b-1) failed: %v", err)
	}
	if len(got) != 2 || got[0].ParticipantID != "p-1" || !got[1].Bcc || got[1].Subject != "Hello" {
		t.Errorf("GetOutbox(b-1) = %+v", got)
	}

	recent, err := db.GetOutbox("", 1)
	if err != nil {
		t.Fatalf("GetOutbox(recent) failed: %v", err)
	}
	if len(recent) != 1 || recent[0].BatchID != "b-2" || recent[0].Subject != "" || recent[0].Delivered {
		t.Errorf("GetOutbox(recent) = %+v", recent)
	}
}

func TestNotifications(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	now := time.Date(2023, 10, 27, 12, 0, 0, 0, time.UTC)
	for _, n := range models.DefaultNotifications(now) {
		if err := db.SaveNotification(&n); err != nil {
			t.Fatalf("SaveNotification(%s) failed: %v", n.ID, err)
		}
	}

	list, err := db.GetNotifications(0)
	if err != nil {
		t.Fatalf("GetNotifications() failed: %v", err)
	}
	if len(list) != 3 || list[0].ID != "n-1" || list[2].ID != "n-3" {
		t.Fatalf("GetNotifications() order wrong: %+v", list)
	}
	if list[1].Link != models.ViewParticipants || list[0].Link != "" {
		t.Errorf("links = %q / %q", list[1].Link, list[0].Link)
	}

	unread, err := db.CountUnreadNotifications()
	if err != nil || unread != 2 {
		t.Errorf("CountUnreadNotifications() = %d, %v; want 2", unread, err)
	}

	if err := db.MarkNotificationRead("n-1"); err != nil {
		t.Fatalf("MarkNotificationRead() failed: %v", err)
	}
	if err := db.MarkNotificationRead("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkNotificationRead(nope) error = %v", err)
	}

	changed, err := db.MarkAllNotificationsRead()
	if err != nil || changed != 1 {
		t.Errorf("MarkAllNotificationsRead() = %d, %v; want 1", changed, err)
	}
	if unread, _ := db.CountUnreadNotifications(); unread != 0 {
		t.Errorf("unread after MarkAll = %d", unread)
	}

	// saving again replaces rather than duplicates
	list[0].Title = "Integration Restored"
	if err := db.SaveNotification(&list[0]); err != nil {
		t.Fatalf("SaveNotification() replace failed: %v", err)
	}
	again, _ := db.GetNotifications(0)
	if len(again) != 3 || again[0].Title != "Integration Restored" {
		t.Errorf("replace produced %+v", again)
	}
}

func TestCertificates(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	at := time.Date(2023, 11, 20, 10, 0, 0, 0, time.UTC)
	created, err := db.IssueCertificate("c-101", "p-1", "Sarah Connor", at)
	if err != nil || !created {
		t.Fatalf("IssueCertificate() = %v, %v; want true", created, err)
	}
	created, err = db.IssueCertificate("c-101", "p-1", "John Reese", at.Add(time.Hour))
	if err != nil || created {
		t.Errorf("second IssueCertificate() = %v, %v; want false", created, err)
	}
	if _, err := db.IssueCertificate("c-100", "p-1", "Sarah Connor", at); err != nil {
		t.Fatalf("IssueCertificate(other cohort) failed: %v", err)
	}

	issued, err := db.GetIssuedCertificates("c-101")
	if err != nil {
		t.Fatalf("GetIssuedCertificates() failed: %v", err)
	}
	if len(issued) != 1 || !issued["p-1"].Equal(at) {
		t.Errorf("GetIssuedCertificates() = %v", issued)
	}

	by, err := db.GetCertificateIssuer("c-101", "p-1")
	if err != nil || by != "Sarah Connor" {
		t.Errorf("GetCertificateIssuer() = %q, %v", by, err)
	}
	if _, err := db.GetCertificateIssuer("c-101", "p-9"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetCertificateIssuer(p-9) error = %v", err)
	}
}

func TestTimeRoundTrip(t *testing.T) {
	in := time.Date(2023, 10, 27, 14, 30, 5, 123, time.FixedZone("EAT", 3*3600))
	out := parseTime(formatTime(in))
	if !out.Equal(in) {
		t.Errorf("round trip %v -> %v", in, out)
	}
	if formatTime(in) >= formatTime(in.Add(time.Nanosecond)) {
		t.Error("formatted times should sort chronologically")
	}
	if !parseTime("garbage").IsZero() {
		t.Error("garbage should parse to zero time")
	}
}
