package email

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/codr1/CabinDesk/internal/notify"
)

const noticeEmailTimeout = 5 * time.Second

// GuestNotifier emails the guest after a successful check-in or check-out.
// Sends run asynchronously; failures are logged and never reach the caller.
type GuestNotifier struct {
	sender       Sender
	propertyName string
	logger       *zerolog.Logger
	timeout      time.Duration

	wg sync.WaitGroup
}

var _ notify.Sink = (*GuestNotifier)(nil)

func NewGuestNotifier(sender Sender, propertyName string, logger *zerolog.Logger) *GuestNotifier {
	return &GuestNotifier{
		sender:       sender,
		propertyName: propertyName,
		logger:       logger,
		timeout:      noticeEmailTimeout,
	}
}

func (g *GuestNotifier) Notify(ctx context.Context, n notify.Notification) {
	if g == nil || g.sender == nil {
		return
	}
	if n.Level != notify.LevelSuccess || n.Booking == nil || n.Booking.Guest == nil {
		return
	}
	recipient := strings.TrimSpace(n.Booking.Guest.Email)
	if recipient == "" {
		return
	}

	details := StayDetailsFor(g.propertyName, *n.Booking)
	var notice Notice
	switch n.Event {
	case notify.EventCheckIn:
		notice = BuildCheckInNotice(details)
	case notify.EventCheckOut:
		notice = BuildCheckOutNotice(details)
	default:
		return
	}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		sendCtx, cancel := newEmailContext(ctx, g.timeout)
		defer cancel()
		if err := g.sender.Send(sendCtx, recipient, notice.Subject, notice.Body); err != nil && g.logger != nil {
			g.logger.Error().
				Err(err).
				Str("recipient", recipient).
				Int64("booking_id", n.BookingID).
				Msg("Failed to send stay notice")
		}
	}()
}

// Wait blocks until pending sends finish.
func (g *GuestNotifier) Wait() {
	g.wg.Wait()
}
