package dashboard

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codr1/CabinDesk/internal/bookings"
	"github.com/codr1/CabinDesk/internal/models"
)

type Dashboard struct {
	NumDays       int               `json:"numDays"`
	Stats         Stats             `json:"stats"`
	Sales         []SalesPoint      `json:"sales"`
	Durations     []DurationBucket  `json:"durations"`
	TodayActivity bookings.Activity `json:"todayActivity"`
}

type Service struct {
	bookings *bookings.Service
	location *time.Location
}

func NewService(bookingService *bookings.Service, location *time.Location) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{bookings: bookingService, location: location}
}

// Build loads the window's data and computes every dashboard figure.
func (s *Service) Build(ctx context.Context, numDays int) (Dashboard, error) {
	var (
		recent     []models.Booking
		stays      []models.Booking
		cabinCount int64
		activity   bookings.Activity
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recent, err = s.bookings.RecentBookings(gctx, numDays)
		return err
	})
	g.Go(func() error {
		var err error
		stays, err = s.bookings.RecentStays(gctx, numDays)
		return err
	})
	g.Go(func() error {
		var err error
		cabinCount, err = s.bookings.CabinCount(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		activity, err = s.bookings.TodayActivity(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	stats, err := ComputeStats(recent, stays, numDays, cabinCount)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Int("num_days", numDays).Msg("Dashboard stats unavailable")
		return Dashboard{}, err
	}

	return Dashboard{
		NumDays:       numDays,
		Stats:         stats,
		Sales:         SalesByDay(recent, s.bookings.Today(), numDays, s.location),
		Durations:     StayDurations(ConfirmedStays(stays)),
		TodayActivity: activity,
	}, nil
}
