package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/CabinDesk/internal/bookings"
	"github.com/codr1/CabinDesk/internal/clock"
	"github.com/codr1/CabinDesk/internal/models"
	"github.com/codr1/CabinDesk/internal/notify"
	"github.com/codr1/CabinDesk/internal/querycache"
	"github.com/codr1/CabinDesk/internal/store"
)

const (
	StatusSyncJobName = "booking_status_sync"
	statusSyncTimeout = 2 * time.Minute
)

// Drift is a booking whose dates say it should be further along than its stored status.
type Drift struct {
	BookingID int64         `json:"bookingId"`
	Stored    models.Status `json:"stored"`
	Derived   models.Status `json:"derived"`
	Corrected bool          `json:"corrected"`
}

type StatusSyncResult struct {
	Checked   int     `json:"checked"`
	Drifts    []Drift `json:"drifts"`
	Corrected int     `json:"corrected"`
}

type StatusSyncOptions struct {
	// Apply checks out stays that ended while still checked-in. Other drift is only logged.
	Apply    bool
	Clock    clock.Clock
	Location *time.Location
	Sink     notify.Sink
}

// StatusSync compares stored booking status with the status their dates imply.
type StatusSync struct {
	store    store.Store
	cache    *querycache.Cache
	apply    bool
	clock    clock.Clock
	location *time.Location
	sink     notify.Sink
	logger   zerolog.Logger
}

func NewStatusSync(st store.Store, cache *querycache.Cache, opts StatusSyncOptions) *StatusSync {
	location := opts.Location
	if location == nil {
		location = time.UTC
	}
	sink := opts.Sink
	if sink == nil {
		sink = notify.LogSink{}
	}
	return &StatusSync{
		store:    st,
		cache:    cache,
		apply:    opts.Apply,
		clock:    clock.OrReal(opts.Clock),
		location: location,
		sink:     sink,
		logger:   log.Logger.With().Str("component", "status_sync").Logger(),
	}
}

func statusRank(s models.Status) int {
	for i, status := range models.Statuses() {
		if status == s {
			return i
		}
	}
	return -1
}

// Run checks every open booking whose stay has started. Only drift that moves
// a booking forward is reported, and the only correction ever written is
// checked-in to checked-out.
func (s *StatusSync) Run(ctx context.Context) (StatusSyncResult, error) {
	today := models.Today(s.clock.Now(), s.location)

	page, err := s.store.ReadBookings(ctx, store.Query{
		Table: store.TableBookings,
		Where: []store.Condition{
			{Field: "status", Op: store.OpNeq, Value: models.StatusCheckedOut},
			{Field: "startDate", Op: store.OpLt, Value: today},
		},
		OrderBy: []store.Order{{Field: "startDate", Ascending: true}},
	})
	if err != nil {
		return StatusSyncResult{}, fmt.Errorf("load open bookings: %w", err)
	}

	result := StatusSyncResult{Checked: len(page.Bookings)}
	for _, booking := range page.Bookings {
		derived := models.DeriveStatus(booking.StartDate, booking.EndDate, today)
		if statusRank(derived) <= statusRank(booking.Status) {
			continue
		}

		drift := Drift{BookingID: booking.ID, Stored: booking.Status, Derived: derived}
		s.logger.Warn().
			Int64("booking_id", booking.ID).
			Str("stored", booking.Status.String()).
			Str("derived", derived.String()).
			Str("end_date", models.FormatDate(booking.EndDate)).
			Msg("Booking status drift")

		if s.apply && booking.Status == models.StatusCheckedIn && derived == models.StatusCheckedOut {
			corrected, err := s.checkOut(ctx, booking.ID)
			if err != nil {
				return result, err
			}
			drift.Corrected = corrected
			if corrected {
				result.Corrected++
			}
		}
		result.Drifts = append(result.Drifts, drift)
	}

	if result.Corrected > 0 {
		s.cache.Invalidate(bookings.MutatedResources()...)
	}
	s.logger.Info().
		Int("checked", result.Checked).
		Int("drifts", len(result.Drifts)).
		Int("corrected", result.Corrected).
		Bool("apply", s.apply).
		Msg("Booking status sync finished")
	return result, nil
}

func (s *StatusSync) checkOut(ctx context.Context, id int64) (bool, error) {
	checkedOut := models.StatusCheckedOut
	_, err := s.store.TransitionBooking(ctx, id, models.StatusCheckedIn, models.BookingPatch{Status: &checkedOut})
	switch {
	case err == nil:
		s.sink.Notify(ctx, notify.Notification{
			Level:     notify.LevelSuccess,
			Event:     notify.EventSync,
			Message:   fmt.Sprintf("Booking #%d automatically checked out", id),
			BookingID: id,
		})
		return true, nil
	case errors.Is(err, store.ErrStatusMismatch), errors.Is(err, store.ErrNotFound):
		// Staff changed or removed it since the read.
		s.logger.Debug().Err(err).Int64("booking_id", id).Msg("Skipped status correction")
		return false, nil
	default:
		return false, fmt.Errorf("check out booking %d: %w", id, err)
	}
}

// RegisterStatusSyncJob schedules sync on the singleton scheduler.
func RegisterStatusSyncJob(sync *StatusSync, cronExpr string) error {
	if sync == nil {
		return fmt.Errorf("status sync job requires a status sync")
	}
	jobLogger := sync.logger.With().
		Str("job_name", StatusSyncJobName).
		Str("cron", cronExpr).
		Logger()

	_, err := AddJob(StatusSyncJobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), statusSyncTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		if _, err := sync.Run(ctx); err != nil {
			jobLogger.Error().Err(err).Msg("Booking status sync failed")
		}
	})
	return err
}
