// Package notify carries the outcome of staff actions to whoever displays or relays them.
package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/codr1/CabinDesk/internal/models"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelFailure Level = "failure"
)

type Event string

const (
	EventCreate   Event = "create"
	EventCheckIn  Event = "check-in"
	EventCheckOut Event = "check-out"
	EventDelete   Event = "delete"
	EventSync     Event = "status-sync"
)

// Notification is one outcome. Booking is set on success when the stored row is known.
type Notification struct {
	Level     Level           `json:"level"`
	Event     Event           `json:"event"`
	Message   string          `json:"message"`
	BookingID int64           `json:"bookingId"`
	Booking   *models.Booking `json:"-"`
}

// Sink receives notifications. Implementations must not block the caller for long.
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

// LogSink writes notifications to the request logger.
type LogSink struct{}

func (LogSink) Notify(ctx context.Context, n Notification) {
	logger := log.Ctx(ctx)
	event := logger.Info()
	if n.Level == LevelFailure {
		event = logger.Warn()
	}
	event.
		Str("event", string(n.Event)).
		Int64("booking_id", n.BookingID).
		Msg(n.Message)
}

type multi []Sink

func (m multi) Notify(ctx context.Context, n Notification) {
	for _, sink := range m {
		sink.Notify(ctx, n)
	}
}

// Multi fans a notification out to every non-nil sink.
func Multi(sinks ...Sink) Sink {
	var out multi
	for _, sink := range sinks {
		if sink != nil {
			out = append(out, sink)
		}
	}
	return out
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Last returns the most recent notification, if any.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}
