package store

import (
	"context"
	"errors"

	"github.com/codr1/CabinDesk/internal/models"
)

const (
	TableBookings = "bookings"
	TableCabins   = "cabins"
	TableGuests   = "guests"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrStatusMismatch = errors.New("booking status does not match")
	ErrUnknownField   = errors.New("unknown field")
)

// BookingPage is one read of bookings plus the total count of matching rows.
// Count is -1 when the query did not ask for an exact count.
type BookingPage struct {
	Bookings []models.Booking
	Count    int64
}

// Store is the persistent record store. Bookings are returned with their cabin and guest embedded.
type Store interface {
	ReadBookings(ctx context.Context, q Query) (BookingPage, error)
	GetBooking(ctx context.Context, id int64) (models.Booking, error)
	InsertBooking(ctx context.Context, booking models.Booking) (models.Booking, error)
	// TransitionBooking applies patch only while the stored status equals from.
	// It returns ErrStatusMismatch when the booking exists in another status.
	TransitionBooking(ctx context.Context, id int64, from models.Status, patch models.BookingPatch) (models.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error

	ListCabins(ctx context.Context) ([]models.Cabin, error)
	GetCabin(ctx context.Context, id int64) (models.Cabin, error)
	CountCabins(ctx context.Context) (int64, error)
}
