package email

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/codr1/CabinDesk/internal/models"
	"github.com/codr1/CabinDesk/internal/notify"
)

type sentEmail struct {
	recipient string
	subject   string
	body      string
	ctxErr    error
}

type fakeEmailSender struct {
	mu      sync.Mutex
	sent    []sentEmail
	started chan struct{}
	release chan struct{}
	err     error
}

func newFakeEmailSender() *fakeEmailSender {
	return &fakeEmailSender{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (f *fakeEmailSender) Send(ctx context.Context, recipient, subject, body string) error {
	select {
	case f.started <- struct{}{}:
	default:
	}
	<-f.release

	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEmail{recipient: recipient, subject: subject, body: body, ctxErr: ctx.Err()})
	return f.err
}

func (f *fakeEmailSender) emails() []sentEmail {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentEmail, len(f.sent))
	copy(out, f.sent)
	return out
}

func waitForSignal(t *testing.T, ch <-chan struct{}, message string) {
	t.Helper()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal(message)
	}
}

func testBooking() *models.Booking {
	return &models.Booking{
		ID:           12,
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
		NumNights:    3,
		NumGuests:    2,
		HasBreakfast: true,
		IsPaid:       true,
		TotalPrice:   360,
		Cabin:        &models.Cabin{Name: "005"},
		Guest:        &models.Guest{FullName: "Emma Watson", Email: "emma@example.com"},
	}
}

func TestGuestNotifier_SendsCheckInNotice(t *testing.T) {
	sender := newFakeEmailSender()
	close(sender.release)
	notifier := NewGuestNotifier(sender, "The Wild Oasis", nil)

	notifier.Notify(context.Background(), notify.Notification{
		Level:     notify.LevelSuccess,
		Event:     notify.EventCheckIn,
		BookingID: 12,
		Booking:   testBooking(),
	})
	notifier.Wait()

	emails := sender.emails()
	if len(emails) != 1 {
		t.Fatalf("sent %d emails, want 1", len(emails))
	}
	got := emails[0]
	if got.recipient != "emma@example.com" {
		t.Fatalf("recipient = %q", got.recipient)
	}
	if got.subject != "Welcome to The Wild Oasis" {
		t.Fatalf("subject = %q", got.subject)
	}
	for _, want := range []string{"Hi Emma Watson,", "Cabin: 005", "Arrival: Monday, Jan 1, 2024", "Breakfast: included", "Total: 360 (paid)"} {
		if !strings.Contains(got.body, want) {
			t.Fatalf("body missing %q:\n%s", want, got.body)
		}
	}
}

func TestGuestNotifier_IgnoresOtherNotifications(t *testing.T) {
	sender := newFakeEmailSender()
	close(sender.release)
	notifier := NewGuestNotifier(sender, "The Wild Oasis", nil)

	noGuest := testBooking()
	noGuest.Guest = nil

	for _, n := range []notify.Notification{
		{Level: notify.LevelFailure, Event: notify.EventCheckIn, Booking: testBooking()},
		{Level: notify.LevelSuccess, Event: notify.EventDelete, Booking: testBooking()},
		{Level: notify.LevelSuccess, Event: notify.EventCheckOut, Booking: noGuest},
		{Level: notify.LevelSuccess, Event: notify.EventCheckOut},
	} {
		notifier.Notify(context.Background(), n)
	}
	notifier.Wait()

	if got := len(sender.emails()); got != 0 {
		t.Fatalf("sent %d emails, want 0", got)
	}
}

func TestGuestNotifier_CallerCancellationDoesNotAbortSend(t *testing.T) {
	sender := newFakeEmailSender()
	notifier := NewGuestNotifier(sender, "The Wild Oasis", nil)

	ctx, cancel := context.WithCancel(context.Background())
	notifier.Notify(ctx, notify.Notification{
		Level:   notify.LevelSuccess,
		Event:   notify.EventCheckOut,
		Booking: testBooking(),
	})

	waitForSignal(t, sender.started, "expected check-out send to start")
	cancel()
	close(sender.release)
	notifier.Wait()

	emails := sender.emails()
	if len(emails) != 1 {
		t.Fatalf("sent %d emails, want 1", len(emails))
	}
	if emails[0].ctxErr != nil {
		t.Fatalf("send context err = %v, want nil", emails[0].ctxErr)
	}
	if !strings.HasPrefix(emails[0].subject, "Thank you for staying") {
		t.Fatalf("subject = %q", emails[0].subject)
	}
}

func TestGuestNotifier_SendFailureIsNotReturned(t *testing.T) {
	sender := newFakeEmailSender()
	sender.err = errors.New("throttled")
	close(sender.release)
	notifier := NewGuestNotifier(sender, "", nil)

	notifier.Notify(context.Background(), notify.Notification{
		Level:   notify.LevelSuccess,
		Event:   notify.EventCheckIn,
		Booking: testBooking(),
	})
	notifier.Wait()

	if got := sender.emails()[0].subject; got != "Welcome to our cabins" {
		t.Fatalf("subject = %q", got)
	}
}
