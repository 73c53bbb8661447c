// Package lifecycle moves bookings through unconfirmed, checked-in and checked-out.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/CabinDesk/internal/bookings"
	"github.com/codr1/CabinDesk/internal/models"
	"github.com/codr1/CabinDesk/internal/notify"
	"github.com/codr1/CabinDesk/internal/querycache"
	"github.com/codr1/CabinDesk/internal/store"
)

type Action string

const (
	ActionCheckIn  Action = "check-in"
	ActionCheckOut Action = "check-out"
)

// Failure texts shown to staff.
const (
	MsgCheckInFailed  = "There was an error while checking in"
	MsgCheckOutFailed = "There was an error while checking out"
	MsgDeleteFailed   = bookings.MsgBookingDelete
)

// PreconditionError rejects a transition from a status it does not start from.
type PreconditionError struct {
	BookingID int64
	Action    Action
	Status    models.Status
}

func (e PreconditionError) Error() string {
	return fmt.Sprintf("cannot %s booking %d while it is %s", e.Action, e.BookingID, e.Status)
}

// PaymentError reports an amount due that staff have not confirmed as received.
type PaymentError struct {
	BookingID int64
	AmountDue int64
}

func (e PaymentError) Error() string {
	return fmt.Sprintf("payment of %d for booking %d must be confirmed before check-in", e.AmountDue, e.BookingID)
}

type CheckInOptions struct {
	// AddBreakfast adds breakfast for every guest and night, raising the total.
	AddBreakfast bool `json:"addBreakfast"`
}

type Controller struct {
	store   store.Store
	cache   *querycache.Cache
	pricing models.Pricing
	sink    notify.Sink
	logger  zerolog.Logger
}

func NewController(st store.Store, cache *querycache.Cache, pricing models.Pricing, sink notify.Sink) *Controller {
	if sink == nil {
		sink = notify.LogSink{}
	}
	return &Controller{
		store:   st,
		cache:   cache,
		pricing: pricing,
		sink:    sink,
		logger:  log.Logger.With().Str("component", "lifecycle").Logger(),
	}
}

// CheckIn marks an unconfirmed booking checked-in and paid, optionally adding breakfast.
func (c *Controller) CheckIn(ctx context.Context, id int64, opts CheckInOptions) (models.Booking, error) {
	booking, err := c.load(ctx, id, notify.EventCheckIn, MsgCheckInFailed)
	if err != nil {
		return models.Booking{}, err
	}
	if booking.Status != models.StatusUnconfirmed {
		return models.Booking{}, c.fail(ctx, id, notify.EventCheckIn, MsgCheckInFailed,
			PreconditionError{BookingID: id, Action: ActionCheckIn, Status: booking.Status})
	}

	patch := c.checkInPatch(booking, opts)
	checkedIn := models.StatusCheckedIn
	paid := true
	patch.Status = &checkedIn
	patch.IsPaid = &paid

	updated, err := c.transition(ctx, id, ActionCheckIn, models.StatusUnconfirmed, patch)
	if err != nil {
		return models.Booking{}, c.fail(ctx, id, notify.EventCheckIn, MsgCheckInFailed, err)
	}

	c.succeed(ctx, notify.EventCheckIn, fmt.Sprintf("Booking #%d successfully checked in", id), updated)
	return updated, nil
}

// RequirePayment returns a PaymentError unless booking is already paid and
// checking it in with opts leaves the total unchanged.
func (c *Controller) RequirePayment(booking models.Booking, opts CheckInOptions) error {
	patch := c.checkInPatch(booking, opts)
	amount := booking.TotalPrice
	if patch.TotalPrice != nil {
		amount = *patch.TotalPrice
	}
	if booking.IsPaid && amount == booking.TotalPrice {
		return nil
	}
	return PaymentError{BookingID: booking.ID, AmountDue: amount}
}

func (c *Controller) checkInPatch(booking models.Booking, opts CheckInOptions) models.BookingPatch {
	if opts.AddBreakfast {
		return c.pricing.BreakfastAddition(booking)
	}
	return models.BookingPatch{}
}

// CheckOut marks a checked-in booking checked-out.
func (c *Controller) CheckOut(ctx context.Context, id int64) (models.Booking, error) {
	booking, err := c.load(ctx, id, notify.EventCheckOut, MsgCheckOutFailed)
	if err != nil {
		return models.Booking{}, err
	}
	if booking.Status != models.StatusCheckedIn {
		return models.Booking{}, c.fail(ctx, id, notify.EventCheckOut, MsgCheckOutFailed,
			PreconditionError{BookingID: id, Action: ActionCheckOut, Status: booking.Status})
	}

	checkedOut := models.StatusCheckedOut
	updated, err := c.transition(ctx, id, ActionCheckOut, models.StatusCheckedIn, models.BookingPatch{Status: &checkedOut})
	if err != nil {
		return models.Booking{}, c.fail(ctx, id, notify.EventCheckOut, MsgCheckOutFailed, err)
	}

	c.succeed(ctx, notify.EventCheckOut, fmt.Sprintf("Booking #%d successfully checked out", id), updated)
	return updated, nil
}

// Delete removes a booking in any status.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	if err := c.store.DeleteBooking(ctx, id); err != nil {
		return c.fail(ctx, id, notify.EventDelete, MsgDeleteFailed,
			&bookings.WriteError{Message: bookings.MsgBookingDelete, Err: err})
	}
	c.cache.Invalidate(bookings.MutatedResources()...)
	c.sink.Notify(ctx, notify.Notification{
		Level:     notify.LevelSuccess,
		Event:     notify.EventDelete,
		Message:   "Booking successfully deleted",
		BookingID: id,
	})
	return nil
}

func (c *Controller) load(ctx context.Context, id int64, event notify.Event, msg string) (models.Booking, error) {
	booking, err := c.store.GetBooking(ctx, id)
	if err != nil {
		return models.Booking{}, c.fail(ctx, id, event, msg,
			&bookings.LoadError{Message: bookings.MsgBookingNotFound, Err: err})
	}
	return booking, nil
}

// transition writes patch only while the booking still has status from. A
// concurrent change shows up as a PreconditionError carrying the new status.
func (c *Controller) transition(ctx context.Context, id int64, action Action, from models.Status, patch models.BookingPatch) (models.Booking, error) {
	updated, err := c.store.TransitionBooking(ctx, id, from, patch)
	if err == nil {
		return updated, nil
	}
	if errors.Is(err, store.ErrStatusMismatch) {
		current, getErr := c.store.GetBooking(ctx, id)
		if getErr == nil {
			return models.Booking{}, PreconditionError{BookingID: id, Action: action, Status: current.Status}
		}
	}
	if errors.Is(err, store.ErrNotFound) {
		return models.Booking{}, &bookings.LoadError{Message: bookings.MsgBookingNotFound, Err: err}
	}
	return models.Booking{}, &bookings.WriteError{Message: bookings.MsgBookingUpdate, Err: err}
}

func (c *Controller) succeed(ctx context.Context, event notify.Event, msg string, booking models.Booking) {
	c.cache.Invalidate(bookings.MutatedResources()...)
	c.logger.Info().
		Str("event", string(event)).
		Int64("booking_id", booking.ID).
		Str("status", booking.Status.String()).
		Msg("Booking transitioned")
	c.sink.Notify(ctx, notify.Notification{
		Level:     notify.LevelSuccess,
		Event:     event,
		Message:   msg,
		BookingID: booking.ID,
		Booking:   &booking,
	})
}

func (c *Controller) fail(ctx context.Context, id int64, event notify.Event, msg string, err error) error {
	c.logger.Error().
		Err(err).
		Str("event", string(event)).
		Int64("booking_id", id).
		Msg(msg)
	c.sink.Notify(ctx, notify.Notification{
		Level:     notify.LevelFailure,
		Event:     event,
		Message:   msg,
		BookingID: id,
	})
	return err
}
