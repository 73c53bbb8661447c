// internal/api/bookings/handlers.go
package bookings

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/CabinDesk/internal/api/apiutil"
	bookingsvc "github.com/codr1/CabinDesk/internal/bookings"
	"github.com/codr1/CabinDesk/internal/lifecycle"
	"github.com/codr1/CabinDesk/internal/models"
)

const (
	bookingQueryTimeout = 5 * time.Second
	bookingIDParam      = "id"
)

var (
	service    *bookingsvc.Service
	controller *lifecycle.Controller
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *bookingsvc.Service, ctrl *lifecycle.Controller) {
	if svc == nil || ctrl == nil {
		log.Warn().Msg("InitHandlers called with nil dependencies; booking handlers will be unavailable")
	}
	service = svc
	controller = ctrl
}

func RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/bookings", HandleListBookings)
	mux.HandleFunc("POST /api/v1/bookings", HandleCreateBooking)
	mux.HandleFunc("GET /api/v1/bookings/{id}", HandleGetBooking)
	mux.HandleFunc("DELETE /api/v1/bookings/{id}", HandleDeleteBooking)
	mux.HandleFunc("POST /api/v1/bookings/{id}/checkin", HandleCheckIn)
	mux.HandleFunc("POST /api/v1/bookings/{id}/checkout", HandleCheckOut)
	mux.HandleFunc("GET /api/v1/activity/today", HandleTodayActivity)
}

func ready(w http.ResponseWriter, r *http.Request) bool {
	if service == nil || controller == nil {
		log.Ctx(r.Context()).Error().Msg("Booking handlers not initialized")
		_ = apiutil.WriteJSON(w, http.StatusInternalServerError, apiutil.ErrorResponse{Message: "Internal Server Error"})
		return false
	}
	return true
}

// HandleListBookings serves GET /api/v1/bookings?status=&method=&sortBy=&page=.
func HandleListBookings(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	spec, err := bookingsvc.ParseQuerySpec(r.URL.Query(), service.PageSize())
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	page, err := service.List(ctx, spec)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, page)
}

// HandleCreateBooking serves POST /api/v1/bookings.
func HandleCreateBooking(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	var req bookingsvc.CreateRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid request body", Err: err})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	booking, err := service.Create(ctx, req)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeOK(w, r, http.StatusCreated, booking)
}

// HandleGetBooking serves GET /api/v1/bookings/{id}.
func HandleGetBooking(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	id, err := apiutil.IDFromPath(r, bookingIDParam)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	booking, err := service.Get(ctx, id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, booking)
}

// HandleDeleteBooking serves DELETE /api/v1/bookings/{id}.
func HandleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	id, err := apiutil.IDFromPath(r, bookingIDParam)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	if err := controller.Delete(ctx, id); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type checkInRequest struct {
	AddBreakfast bool `json:"addBreakfast"`
	// ConfirmPaid records that staff received the full amount due.
	ConfirmPaid bool `json:"confirmPaid"`
}

// HandleCheckIn serves POST /api/v1/bookings/{id}/checkin with an optional
// {"addBreakfast": bool, "confirmPaid": bool} body. Unless confirmPaid is set,
// an unpaid booking, or one whose total grows with breakfast, is refused with 402.
func HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	id, err := apiutil.IDFromPath(r, bookingIDParam)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var req checkInRequest
	if err := apiutil.DecodeOptionalJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid request body", Err: err})
		return
	}
	opts := lifecycle.CheckInOptions{AddBreakfast: req.AddBreakfast}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	if !req.ConfirmPaid {
		booking, err := service.Get(ctx, id)
		if err != nil {
			apiutil.WriteError(w, r, err)
			return
		}
		// Wrong-status bookings fall through so the controller reports the conflict.
		if booking.Status == models.StatusUnconfirmed {
			if err := controller.RequirePayment(booking, opts); err != nil {
				apiutil.WriteError(w, r, err)
				return
			}
		}
	}

	booking, err := controller.CheckIn(ctx, id, opts)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, booking)
}

// HandleCheckOut serves POST /api/v1/bookings/{id}/checkout.
func HandleCheckOut(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	id, err := apiutil.IDFromPath(r, bookingIDParam)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	booking, err := controller.CheckOut(ctx, id)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, booking)
}

// HandleTodayActivity serves GET /api/v1/activity/today.
func HandleTodayActivity(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), bookingQueryTimeout)
	defer cancel()

	activity, err := service.TodayActivity(ctx)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	writeOK(w, r, http.StatusOK, activity)
}

func writeOK(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if err := apiutil.WriteJSON(w, status, payload); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write response")
	}
}
