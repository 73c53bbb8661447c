package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/codr1/CabinDesk/internal/bookings"
	"github.com/codr1/CabinDesk/internal/dashboard"
	"github.com/codr1/CabinDesk/internal/lifecycle"
	"github.com/codr1/CabinDesk/internal/models"
	"github.com/codr1/CabinDesk/internal/store"
)

type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

// DecodeOptionalJSON is DecodeJSON that leaves dst untouched for an empty body.
func DecodeOptionalJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	err := DecodeJSON(r, dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteError logs err and writes it as an ErrorResponse with the status ErrorStatus assigns.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorResponse(err)
	logger := log.Ctx(r.Context())
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Int("status", status).
		Str("path", r.URL.Path).
		Msg("Request failed")

	if writeErr := WriteJSON(w, status, body); writeErr != nil {
		logger.Error().Err(writeErr).Msg("Failed to write error response")
	}
}

// ErrorStatus maps an error from the booking services to an HTTP status.
func ErrorStatus(err error) int {
	status, _ := errorResponse(err)
	return status
}

func errorResponse(err error) (int, ErrorResponse) {
	var (
		handlerErr      HandlerError
		fieldErr        FieldError
		validationErrs  validator.ValidationErrors
		rangeErr        models.InvalidRangeError
		capacityErr     bookings.CapacityError
		preconditionErr lifecycle.PreconditionError
		paymentErr      lifecycle.PaymentError
		divisionErr     dashboard.DivisionUndefinedError
		loadErr         *bookings.LoadError
		writeErr        *bookings.WriteError
	)

	switch {
	case errors.As(err, &handlerErr):
		return handlerErr.Status, ErrorResponse{Message: handlerErr.Message}
	case errors.As(err, &validationErrs):
		fields := make([]FieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fields = append(fields, FieldError{Field: fe.Field(), Reason: fe.Tag()})
		}
		return http.StatusBadRequest, ErrorResponse{Message: "Invalid request", Fields: fields}
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest, ErrorResponse{Message: fieldErr.Error(), Fields: []FieldError{fieldErr}}
	case errors.As(err, &rangeErr), errors.As(err, &capacityErr), errors.Is(err, bookings.ErrInvalidQuery):
		return http.StatusBadRequest, ErrorResponse{Message: err.Error()}
	case errors.As(err, &preconditionErr):
		return http.StatusConflict, ErrorResponse{Message: preconditionErr.Error()}
	case errors.As(err, &paymentErr):
		return http.StatusPaymentRequired, ErrorResponse{Message: paymentErr.Error()}
	case errors.As(err, &divisionErr):
		return http.StatusUnprocessableEntity, ErrorResponse{Message: divisionErr.Error()}
	case errors.As(err, &loadErr):
		if errors.Is(err, store.ErrNotFound) {
			return http.StatusNotFound, ErrorResponse{Message: loadErr.Message}
		}
		return http.StatusInternalServerError, ErrorResponse{Message: loadErr.Message}
	case errors.As(err, &writeErr):
		if errors.Is(err, store.ErrNotFound) {
			return http.StatusNotFound, ErrorResponse{Message: writeErr.Message}
		}
		return http.StatusInternalServerError, ErrorResponse{Message: writeErr.Message}
	default:
		return http.StatusInternalServerError, ErrorResponse{Message: "Internal Server Error"}
	}
}
