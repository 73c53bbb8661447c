package testutil

import (
	"context"
	"sync/atomic"

	"github.com/codr1/CabinDesk/internal/models"
	"github.com/codr1/CabinDesk/internal/store"
)

// FaultyStore wraps a store and fails reads or writes on demand.
type FaultyStore struct {
	store.Store
	ReadErr  error
	WriteErr error

	reads atomic.Int32
}

var _ store.Store = (*FaultyStore)(nil)

// Reads reports how many booking reads reached the wrapped store or failed.
func (s *FaultyStore) Reads() int {
	return int(s.reads.Load())
}

func (s *FaultyStore) ReadBookings(ctx context.Context, q store.Query) (store.BookingPage, error) {
	s.reads.Add(1)
	if s.ReadErr != nil {
		return store.BookingPage{}, s.ReadErr
	}
	return s.Store.ReadBookings(ctx, q)
}

func (s *FaultyStore) GetBooking(ctx context.Context, id int64) (models.Booking, error) {
	if s.ReadErr != nil {
		return models.Booking{}, s.ReadErr
	}
	return s.Store.GetBooking(ctx, id)
}

func (s *FaultyStore) ListCabins(ctx context.Context) ([]models.Cabin, error) {
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	return s.Store.ListCabins(ctx)
}

func (s *FaultyStore) CountCabins(ctx context.Context) (int64, error) {
	if s.ReadErr != nil {
		return 0, s.ReadErr
	}
	return s.Store.CountCabins(ctx)
}

func (s *FaultyStore) InsertBooking(ctx context.Context, booking models.Booking) (models.Booking, error) {
	if s.WriteErr != nil {
		return models.Booking{}, s.WriteErr
	}
	return s.Store.InsertBooking(ctx, booking)
}

func (s *FaultyStore) TransitionBooking(ctx context.Context, id int64, from models.Status, patch models.BookingPatch) (models.Booking, error) {
	if s.WriteErr != nil {
		return models.Booking{}, s.WriteErr
	}
	return s.Store.TransitionBooking(ctx, id, from, patch)
}

func (s *FaultyStore) DeleteBooking(ctx context.Context, id int64) error {
	if s.WriteErr != nil {
		return s.WriteErr
	}
	return s.Store.DeleteBooking(ctx, id)
}
