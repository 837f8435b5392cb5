package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"randevulu/internal/changes"
	"randevulu/internal/events"
	"randevulu/internal/models"
	"randevulu/internal/store"
	"randevulu/internal/validate"
)

func TestRenderTemplate(t *testing.T) {
	got := renderTemplate("Randevu {date} {time} {unknown}", map[string]string{"date": "11.01.2030", "time": "14:00"})
	if got != "Randevu 11.01.2030 14:00 {unknown}" {
		t.Fatalf("unexpected template render: %s", got)
	}
}

func TestDefaultTemplateLanguages(t *testing.T) {
	for _, lang := range []string{"", "tr", "en"} {
		for _, id := range []string{reminderTemplate, reminderTemplateNoService} {
			if defaultTemplate(id, lang) == "" {
				t.Fatalf("missing template %s for %q", id, lang)
			}
		}
	}
	if defaultTemplate("unknown", "tr") != "" {
		t.Fatalf("expected no template for unknown id")
	}
}

type fakeOutbox struct {
	offset  int64
	events  []store.OutboxEvent
	updates []int64
}

func (f *fakeOutbox) ListOutboxEvents(ctx context.Context, afterSeq int64, limit int) ([]store.OutboxEvent, error) {
	var out []store.OutboxEvent
	for _, event := range f.events {
		if event.Seq > afterSeq && len(out) < limit {
			out = append(out, event)
		}
	}
	return out, nil
}

func (f *fakeOutbox) GetRelayOffset(ctx context.Context, name string) (int64, error) {
	return f.offset, nil
}

func (f *fakeOutbox) UpdateRelayOffset(ctx context.Context, name string, seq int64) error {
	f.offset = seq
	f.updates = append(f.updates, seq)
	return nil
}

// recordingPublisher fails on the event whose seq equals failOn.
type recordingPublisher struct {
	failOn    int64
	published []int64
}

func (p *recordingPublisher) Publish(ctx context.Context, event store.OutboxEvent) error {
	if event.Seq == p.failOn {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, event.Seq)
	return nil
}

func (p *recordingPublisher) Name() string { return "recording" }
func (p *recordingPublisher) Close() error { return nil }

func outboxWith(seqs ...int64) *fakeOutbox {
	outbox := &fakeOutbox{}
	for _, seq := range seqs {
		outbox.events = append(outbox.events, store.OutboxEvent{Seq: seq, Type: store.EventAppointmentCreated})
	}
	return outbox
}

func TestRelayPublishesInOrderAndAdvancesOffset(t *testing.T) {
	outbox := outboxWith(1, 2, 3)
	publisher := &recordingPublisher{}
	relay := NewRelay(outbox, publisher, nil, 2)

	if err := relay.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := relay.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(publisher.published) != 3 || publisher.published[2] != 3 {
		t.Fatalf("unexpected publish order: %v", publisher.published)
	}
	if outbox.offset != 3 {
		t.Fatalf("expected offset 3, got %d", outbox.offset)
	}

	if err := relay.Run(context.Background()); err != nil {
		t.Fatalf("idle run: %v", err)
	}
	if len(outbox.updates) != 2 {
		t.Fatalf("expected no offset write when idle, got %v", outbox.updates)
	}
}

func TestRelayStopsAtFailureAndRetries(t *testing.T) {
	outbox := outboxWith(1, 2, 3)
	publisher := &recordingPublisher{failOn: 2}
	relay := NewRelay(outbox, publisher, nil, 10)

	if err := relay.Run(context.Background()); err == nil {
		t.Fatalf("expected publish error")
	}
	if outbox.offset != 1 {
		t.Fatalf("expected offset to stop before the failed event, got %d", outbox.offset)
	}

	publisher.failOn = 0
	if err := relay.Run(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	want := []int64{1, 2, 3}
	for i, seq := range want {
		if publisher.published[i] != seq {
			t.Fatalf("expected %v, got %v", want, publisher.published)
		}
	}
}

func TestRelayWithNoopSink(t *testing.T) {
	outbox := outboxWith(5)
	relay := NewRelay(outbox, events.New(events.Config{Sink: events.SinkNoop}, nil), nil, 0)
	if err := relay.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if outbox.offset != 5 {
		t.Fatalf("expected offset 5, got %d", outbox.offset)
	}
}

type fakeReminderStore struct {
	due      []store.ReminderCandidate
	recorded map[string]bool
	from, to time.Time
}

func (f *fakeReminderStore) ListDueReminders(ctx context.Context, from, to time.Time, limit int) ([]store.ReminderCandidate, error) {
	f.from, f.to = from, to
	var out []store.ReminderCandidate
	for _, candidate := range f.due {
		if !f.recorded[candidate.AppointmentID] {
			out = append(out, candidate)
		}
	}
	return out, nil
}

func (f *fakeReminderStore) RecordReminder(ctx context.Context, appointmentID string, sentAt time.Time) (bool, error) {
	if f.recorded[appointmentID] {
		return false, nil
	}
	f.recorded[appointmentID] = true
	return true, nil
}

type fakeNotifier struct {
	sent []validate.NotificationInput
	err  error
}

func (f *fakeNotifier) Create(ctx context.Context, input validate.NotificationInput) (models.Notification, changes.Set, error) {
	if f.err != nil {
		return models.Notification{}, nil, f.err
	}
	f.sent = append(f.sent, input)
	return models.Notification{}, nil, nil
}

func TestRemindersSendOncePerAppointment(t *testing.T) {
	loc := time.FixedZone("TRT", 3*60*60)
	now := time.Date(2030, time.January, 11, 12, 0, 0, 0, loc)
	st := &fakeReminderStore{
		recorded: map[string]bool{},
		due: []store.ReminderCandidate{{
			AppointmentID: "5a6b7c8d-9e0f-4a1b-8c2d-e3f4a5b6c7d8",
			TenantName:    "Berber Ali",
			CreatedBy:     "2d3e4f5a-6b7c-4d8e-9fa0-b1c2d3e4f5a6",
			StartTime:     time.Date(2030, time.January, 11, 11, 0, 0, 0, time.UTC),
			ServiceName:   "Saç Kesimi",
		}},
	}
	notifier := &fakeNotifier{}
	reminders := NewReminders(st, notifier, nil, ReminderConfig{Lead: time.Hour, Location: loc, Now: func() time.Time { return now }})

	for i := 0; i < 2; i++ {
		if err := reminders.Run(context.Background()); err != nil {
			t.Fatalf("run #%d: %v", i+1, err)
		}
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected exactly one reminder, got %d", len(notifier.sent))
	}
	sent := notifier.sent[0]
	want := "Hatırlatma: Berber Ali işletmesindeki Saç Kesimi randevunuz 11.01.2030 tarihinde saat 14:00."
	if sent.Message != want {
		t.Fatalf("unexpected message:\n got %q\nwant %q", sent.Message, want)
	}
	if sent.Type != models.NotificationAppointmentReminder {
		t.Fatalf("unexpected type %s", sent.Type)
	}
	if !st.from.Equal(now) || !st.to.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected window %v - %v", st.from, st.to)
	}
}

func TestReminderFailureDoesNotStopBatch(t *testing.T) {
	st := &fakeReminderStore{
		recorded: map[string]bool{},
		due: []store.ReminderCandidate{
			{AppointmentID: "a1", CreatedBy: "u1", StartTime: time.Now()},
			{AppointmentID: "a2", CreatedBy: "u2", StartTime: time.Now()},
		},
	}
	reminders := NewReminders(st, &fakeNotifier{err: errors.New("insert failed")}, nil, ReminderConfig{})
	if err := reminders.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !st.recorded["a1"] || !st.recorded["a2"] {
		t.Fatalf("expected both appointments to be recorded, got %v", st.recorded)
	}
}
