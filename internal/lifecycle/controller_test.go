package lifecycle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codr1/CabinDesk/internal/bookings"
	"github.com/codr1/CabinDesk/internal/clock"
	"github.com/codr1/CabinDesk/internal/db"
	"github.com/codr1/CabinDesk/internal/lifecycle"
	"github.com/codr1/CabinDesk/internal/models"
	"github.com/codr1/CabinDesk/internal/notify"
	"github.com/codr1/CabinDesk/internal/querycache"
	"github.com/codr1/CabinDesk/internal/store"
	"github.com/codr1/CabinDesk/internal/testutil"
)

type fixture struct {
	db         *db.DB
	store      *testutil.FaultyStore
	cache      *querycache.Cache
	recorder   *notify.Recorder
	controller *lifecycle.Controller
	cabin      models.Cabin
	guest      models.Guest
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database := testutil.NewTestDB(t)
	st := &testutil.FaultyStore{Store: database.Queries}
	cache := querycache.New(querycache.Options{TTL: time.Hour, Clock: clock.NewMock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))})
	t.Cleanup(cache.Close)
	recorder := &notify.Recorder{}

	return &fixture{
		db:         database,
		store:      st,
		cache:      cache,
		recorder:   recorder,
		controller: lifecycle.NewController(st, cache, models.NewPricing(15), recorder),
		cabin:      testutil.InsertCabin(t, database, "001", 100, 10),
		guest:      testutil.InsertGuest(t, database, "Jonas Weber", "jonas@example.com"),
	}
}

func (f *fixture) book(t *testing.T, status models.Status, isPaid, hasBreakfast bool) models.Booking {
	t.Helper()
	return testutil.InsertBooking(t, f.db, testutil.BookingSeed{
		Cabin:        f.cabin,
		Guest:        f.guest,
		StartDate:    "2024-01-01",
		EndDate:      "2024-01-04",
		NumGuests:    2,
		HasBreakfast: hasBreakfast,
		Status:       status,
		IsPaid:       isPaid,
	})
}

func (f *fixture) status(t *testing.T, id int64) models.Status {
	t.Helper()
	booking, err := f.db.Queries.GetBooking(context.Background(), id)
	if err != nil {
		t.Fatalf("get booking %d: %v", id, err)
	}
	return booking.Status
}

func TestCheckInThenCheckOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	booking := f.book(t, models.StatusUnconfirmed, false, false)

	checkedIn, err := f.controller.CheckIn(ctx, booking.ID, lifecycle.CheckInOptions{})
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if checkedIn.Status != models.StatusCheckedIn || !checkedIn.IsPaid {
		t.Fatalf("after check-in: status=%s paid=%t", checkedIn.Status, checkedIn.IsPaid)
	}
	last, _ := f.recorder.Last()
	if last.Level != notify.LevelSuccess || last.Message != "Booking #1 successfully checked in" {
		t.Fatalf("notification = %+v", last)
	}

	checkedOut, err := f.controller.CheckOut(ctx, booking.ID)
	if err != nil {
		t.Fatalf("check out: %v", err)
	}
	if checkedOut.Status != models.StatusCheckedOut {
		t.Fatalf("after check-out: status=%s", checkedOut.Status)
	}
	if got := f.status(t, booking.ID); got != models.StatusCheckedOut {
		t.Fatalf("stored status = %s, want checked-out", got)
	}
}

func TestCheckIn_AddsBreakfast(t *testing.T) {
	f := newFixture(t)
	booking := f.book(t, models.StatusUnconfirmed, false, false)
	if booking.TotalPrice != 270 {
		t.Fatalf("seeded total = %d, want 270", booking.TotalPrice)
	}

	updated, err := f.controller.CheckIn(context.Background(), booking.ID, lifecycle.CheckInOptions{AddBreakfast: true})
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if !updated.HasBreakfast || updated.ExtrasPrice != 90 || updated.TotalPrice != 360 {
		t.Fatalf("breakfast=%t extras=%d total=%d; want true, 90, 360",
			updated.HasBreakfast, updated.ExtrasPrice, updated.TotalPrice)
	}
}

func TestCheckIn_UnpaidBookingBecomesPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	booking := f.book(t, models.StatusUnconfirmed, false, false)

	checkedIn, err := f.controller.CheckIn(ctx, booking.ID, lifecycle.CheckInOptions{})
	if err != nil {
		t.Fatalf("check in: %v", err)
	}
	if checkedIn.Status != models.StatusCheckedIn || !checkedIn.IsPaid {
		t.Fatalf("after check-in: status=%s paid=%t", checkedIn.Status, checkedIn.IsPaid)
	}
	stored, err := f.db.Queries.GetBooking(ctx, booking.ID)
	if err != nil {
		t.Fatalf("get booking: %v", err)
	}
	if stored.Status != models.StatusCheckedIn || !stored.IsPaid {
		t.Fatalf("stored: status=%s paid=%t", stored.Status, stored.IsPaid)
	}

	if _, err := f.controller.CheckOut(ctx, booking.ID); err != nil {
		t.Fatalf("check out right after check-in: %v", err)
	}
}

func TestRequirePayment(t *testing.T) {
	tests := []struct {
		name         string
		isPaid       bool
		hasBreakfast bool
		opts         lifecycle.CheckInOptions
		wantDue      int64
	}{
		{name: "unpaid", isPaid: false, wantDue: 270},
		{name: "paid", isPaid: true},
		{name: "paid_total_grows", isPaid: true, opts: lifecycle.CheckInOptions{AddBreakfast: true}, wantDue: 360},
		{name: "paid_breakfast_already_included", isPaid: true, hasBreakfast: true, opts: lifecycle.CheckInOptions{AddBreakfast: true}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newFixture(t)
			booking := f.book(t, models.StatusUnconfirmed, test.isPaid, test.hasBreakfast)

			err := f.controller.RequirePayment(booking, test.opts)

			if test.wantDue == 0 {
				if err != nil {
					t.Fatalf("RequirePayment: %v", err)
				}
				return
			}
			var paymentErr lifecycle.PaymentError
			if !errors.As(err, &paymentErr) {
				t.Fatalf("err = %v, want PaymentError", err)
			}
			if paymentErr.AmountDue != test.wantDue || paymentErr.BookingID != booking.ID {
				t.Fatalf("payment error = %+v, want due %d", paymentErr, test.wantDue)
			}
		})
	}
}

func TestTransitions_RejectWrongSourceStatus(t *testing.T) {
	tests := []struct {
		name   string
		status models.Status
		run    func(*lifecycle.Controller, int64) error
		action lifecycle.Action
		msg    string
	}{
		{
			name:   "check_out_unconfirmed",
			status: models.StatusUnconfirmed,
			run: func(c *lifecycle.Controller, id int64) error {
				_, err := c.CheckOut(context.Background(), id)
				return err
			},
			action: lifecycle.ActionCheckOut,
			msg:    lifecycle.MsgCheckOutFailed,
		},
		{
			name:   "check_in_checked_in",
			status: models.StatusCheckedIn,
			run: func(c *lifecycle.Controller, id int64) error {
				_, err := c.CheckIn(context.Background(), id, lifecycle.CheckInOptions{})
				return err
			},
			action: lifecycle.ActionCheckIn,
			msg:    lifecycle.MsgCheckInFailed,
		},
		{
			name:   "check_in_checked_out",
			status: models.StatusCheckedOut,
			run: func(c *lifecycle.Controller, id int64) error {
				_, err := c.CheckIn(context.Background(), id, lifecycle.CheckInOptions{})
				return err
			},
			action: lifecycle.ActionCheckIn,
			msg:    lifecycle.MsgCheckInFailed,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newFixture(t)
			booking := f.book(t, test.status, true, false)

			err := test.run(f.controller, booking.ID)

			var precondition lifecycle.PreconditionError
			if !errors.As(err, &precondition) {
				t.Fatalf("err = %v, want PreconditionError", err)
			}
			if precondition.Action != test.action || precondition.Status != test.status {
				t.Fatalf("precondition = %+v", precondition)
			}
			if got := f.status(t, booking.ID); got != test.status {
				t.Fatalf("status changed to %s", got)
			}
			last, ok := f.recorder.Last()
			if !ok || last.Level != notify.LevelFailure || last.Message != test.msg {
				t.Fatalf("notification = %+v, want failure %q", last, test.msg)
			}
		})
	}
}

func TestCheckIn_InvalidatesCachedReads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	booking := f.book(t, models.StatusUnconfirmed, true, false)

	service := bookings.NewService(f.store, f.cache, bookings.Options{})
	spec := bookings.QuerySpec{
		Filter: &bookings.Filter{Field: "status", Value: models.StatusUnconfirmed},
		Page:   1,
	}
	before, err := service.List(ctx, spec)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if before.Count != 1 {
		t.Fatalf("unconfirmed before = %d, want 1", before.Count)
	}
	if _, err := service.Get(ctx, booking.ID); err != nil {
		t.Fatalf("get: %v", err)
	}
	f.cache.Wait()

	if _, err := f.controller.CheckIn(ctx, booking.ID, lifecycle.CheckInOptions{}); err != nil {
		t.Fatalf("check in: %v", err)
	}

	after, err := service.List(ctx, spec)
	if err != nil {
		t.Fatalf("list after check-in: %v", err)
	}
	if after.Count != 0 {
		t.Fatalf("unconfirmed after = %d, want 0", after.Count)
	}
	detail, err := service.Get(ctx, booking.ID)
	if err != nil {
		t.Fatalf("get after check-in: %v", err)
	}
	if detail.Status != models.StatusCheckedIn {
		t.Fatalf("detail status = %s, want checked-in", detail.Status)
	}
}

func TestCheckIn_WriteFailureLeavesBookingUnchanged(t *testing.T) {
	f := newFixture(t)
	booking := f.book(t, models.StatusUnconfirmed, false, false)
	f.store.WriteErr = errors.New("database is locked")

	_, err := f.controller.CheckIn(context.Background(), booking.ID, lifecycle.CheckInOptions{})

	var writeErr *bookings.WriteError
	if !errors.As(err, &writeErr) || writeErr.Message != bookings.MsgBookingUpdate {
		t.Fatalf("err = %v, want WriteError %q", err, bookings.MsgBookingUpdate)
	}
	if got := f.status(t, booking.ID); got != models.StatusUnconfirmed {
		t.Fatalf("status = %s, want unconfirmed", got)
	}
}

func TestCheckIn_UnknownBooking(t *testing.T) {
	f := newFixture(t)

	_, err := f.controller.CheckIn(context.Background(), 404, lifecycle.CheckInOptions{})

	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	var loadErr *bookings.LoadError
	if !errors.As(err, &loadErr) || loadErr.Message != bookings.MsgBookingNotFound {
		t.Fatalf("err = %v, want LoadError %q", err, bookings.MsgBookingNotFound)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	booking := f.book(t, models.StatusCheckedOut, true, false)

	if err := f.controller.Delete(ctx, booking.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.db.Queries.GetBooking(ctx, booking.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("get deleted booking err = %v, want ErrNotFound", err)
	}

	err := f.controller.Delete(ctx, booking.ID)
	var writeErr *bookings.WriteError
	if !errors.As(err, &writeErr) || writeErr.Message != bookings.MsgBookingDelete {
		t.Fatalf("second delete err = %v, want WriteError %q", err, bookings.MsgBookingDelete)
	}
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second delete err = %v, want wrapped ErrNotFound", err)
	}
}
