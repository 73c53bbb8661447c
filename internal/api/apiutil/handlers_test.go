package apiutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/codr1/CabinDesk/internal/bookings"
	"github.com/codr1/CabinDesk/internal/dashboard"
	"github.com/codr1/CabinDesk/internal/lifecycle"
	"github.com/codr1/CabinDesk/internal/models"
	"github.com/codr1/CabinDesk/internal/store"
)

func TestErrorStatus(t *testing.T) {
	type draft struct {
		NumGuests int `validate:"min=1"`
	}
	validationErr := validator.New().Struct(draft{})
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"handler error", HandlerError{Status: http.StatusTeapot, Message: "short and stout"}, http.StatusTeapot},
		{"validation", validationErr, http.StatusBadRequest},
		{"field", FieldError{Field: "id", Reason: "is required"}, http.StatusBadRequest},
		{"invalid range", models.InvalidRangeError{StartDate: day, EndDate: day}, http.StatusBadRequest},
		{"capacity", bookings.CapacityError{CabinID: 1, NumGuests: 9, MaxCapacity: 4}, http.StatusBadRequest},
		{"invalid query", fmt.Errorf("%w: page", bookings.ErrInvalidQuery), http.StatusBadRequest},
		{"precondition", lifecycle.PreconditionError{BookingID: 1, Action: lifecycle.ActionCheckOut, Status: models.StatusUnconfirmed}, http.StatusConflict},
		{"payment", lifecycle.PaymentError{BookingID: 1, AmountDue: 360}, http.StatusPaymentRequired},
		{"no cabins", dashboard.DivisionUndefinedError{NumDays: 7}, http.StatusUnprocessableEntity},
		{"load not found", &bookings.LoadError{Message: bookings.MsgBookingNotFound, Err: store.ErrNotFound}, http.StatusNotFound},
		{"load failed", &bookings.LoadError{Message: bookings.MsgBookingsLoad, Err: errors.New("disk")}, http.StatusInternalServerError},
		{"delete missing", &bookings.WriteError{Message: bookings.MsgBookingDelete, Err: store.ErrNotFound}, http.StatusNotFound},
		{"write failed", &bookings.WriteError{Message: bookings.MsgBookingUpdate, Err: errors.New("locked")}, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorStatus(tt.err); got != tt.want {
				t.Fatalf("ErrorStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestWriteErrorUsesNotificationText(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)

	WriteError(rec, req, &bookings.LoadError{Message: bookings.MsgBookingsLoad, Err: errors.New("connection reset")})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != bookings.MsgBookingsLoad {
		t.Fatalf("message = %q, want %q", body.Message, bookings.MsgBookingsLoad)
	}
}

func TestDecodeOptionalJSON(t *testing.T) {
	var opts lifecycle.CheckInOptions

	empty := httptest.NewRequest(http.MethodPost, "/", nil)
	if err := DecodeOptionalJSON(empty, &opts); err != nil {
		t.Fatalf("empty body: %v", err)
	}

	body := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"addBreakfast":true}`))
	if err := DecodeOptionalJSON(body, &opts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !opts.AddBreakfast {
		t.Fatal("expected addBreakfast to be decoded")
	}

	unknown := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"lateCheckout":true}`))
	if err := DecodeOptionalJSON(unknown, &opts); err == nil {
		t.Fatal("expected unknown field to be rejected")
	}

	trailing := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{} {}`))
	if err := DecodeOptionalJSON(trailing, &opts); err == nil {
		t.Fatal("expected trailing data to be rejected")
	}
}
