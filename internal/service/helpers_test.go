package service

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"turnero/internal/db"
	"turnero/internal/repository"
)

type notification struct {
	appt  db.Appointment
	event NotificationEvent
}

type fakeNotifier struct {
	ch chan notification
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{ch: make(chan notification, 64)}
}

func (f *fakeNotifier) Notify(appt db.Appointment, event NotificationEvent) {
	f.ch <- notification{appt: appt, event: event}
}

func (f *fakeNotifier) next(t *testing.T) notification {
	t.Helper()
	select {
	case n := <-f.ch:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("expected a notification")
		return notification{}
	}
}

func (f *fakeNotifier) none(t *testing.T) {
	t.Helper()
	select {
	case n := <-f.ch:
		t.Fatalf("unexpected notification %s for %s", n.event, n.appt.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeEmail) SendEmail(toEmail, toName, subject, plainText, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, toEmail+"|"+subject+"|"+plainText+"|"+html)
	return f.err
}

type fakeSMS struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSMS) SendSMS(toNumber, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, toNumber+"|"+body)
	return nil
}

func newTestStore(t *testing.T) *repository.FileStore {
	t.Helper()
	return repository.NewFileStore(filepath.Join(t.TempDir(), "appointments.json"), zaptest.NewLogger(t))
}

// fixedClock returns successive instants one millisecond apart.
func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(time.Millisecond)
		return t
	}
}
