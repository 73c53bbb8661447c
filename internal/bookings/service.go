package bookings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/codr1/CabinDesk/internal/clock"
	"github.com/codr1/CabinDesk/internal/models"
	"github.com/codr1/CabinDesk/internal/notify"
	"github.com/codr1/CabinDesk/internal/querycache"
	"github.com/codr1/CabinDesk/internal/store"
)

const DefaultPageSize = 10

var validate = validator.New()

// Page is one page of bookings with the pagination totals.
type Page struct {
	Bookings  []models.Booking `json:"bookings"`
	Count     int64            `json:"count"`
	Page      int              `json:"page"`
	PageCount int              `json:"pageCount"`
}

// Activity is the arrivals and departures due today.
type Activity struct {
	Date     string           `json:"date"`
	Bookings []models.Booking `json:"bookings"`
}

// CreateRequest is a new booking as submitted by staff.
type CreateRequest struct {
	CabinID      int64  `json:"cabinId" validate:"required,gt=0"`
	GuestID      int64  `json:"guestId" validate:"required,gt=0"`
	StartDate    string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate      string `json:"endDate" validate:"required,datetime=2006-01-02"`
	NumGuests    int    `json:"numGuests" validate:"required,min=1"`
	HasBreakfast bool   `json:"hasBreakfast"`
	Observations string `json:"observations" validate:"max=1000"`
}

// CapacityError rejects more guests than the cabin holds.
type CapacityError struct {
	CabinID     int64
	NumGuests   int
	MaxCapacity int
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("cabin %d holds at most %d guests, got %d", e.CabinID, e.MaxCapacity, e.NumGuests)
}

type Options struct {
	PageSize int
	Pricing  models.Pricing
	Clock    clock.Clock
	Location *time.Location
	// Sink receives the outcome of Create. Nil logs it.
	Sink notify.Sink
}

type Service struct {
	store    store.Store
	cache    *querycache.Cache
	pageSize int
	pricing  models.Pricing
	clock    clock.Clock
	location *time.Location
	sink     notify.Sink
}

func NewService(st store.Store, cache *querycache.Cache, opts Options) *Service {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	location := opts.Location
	if location == nil {
		location = time.UTC
	}
	sink := opts.Sink
	if sink == nil {
		sink = notify.LogSink{}
	}
	return &Service{
		store:    st,
		cache:    cache,
		pageSize: pageSize,
		pricing:  opts.Pricing,
		clock:    clock.OrReal(opts.Clock),
		location: location,
		sink:     sink,
	}
}

func (s *Service) PageSize() int { return s.pageSize }

// Today is the current calendar date in the configured timezone.
func (s *Service) Today() time.Time {
	return models.Today(s.clock.Now(), s.location)
}

// List returns one page of bookings and prefetches its neighbours.
func (s *Service) List(ctx context.Context, spec QuerySpec) (Page, error) {
	page, err := querycache.Get(ctx, s.cache, s.listKey(spec), s.fetchPage(spec))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("query", spec.CacheKey()).Msg("Failed to load bookings")
		return Page{}, &LoadError{Message: MsgBookingsLoad, Err: err}
	}

	if spec.Page > 0 {
		for _, adjacent := range querycache.AdjacentPages(spec.Page, page.PageCount) {
			next := spec.WithPage(adjacent)
			querycache.Prefetch(s.cache, s.listKey(next), s.fetchPage(next))
		}
	}

	return page, nil
}

func (s *Service) listKey(spec QuerySpec) querycache.Key {
	return querycache.Key{Resource: ResourceBookings, ID: spec.CacheKey()}
}

func (s *Service) fetchPage(spec QuerySpec) func(context.Context) (Page, error) {
	return func(ctx context.Context) (Page, error) {
		result, err := s.store.ReadBookings(ctx, BuildQuery(spec, s.pageSize))
		if err != nil {
			return Page{}, err
		}
		return Page{
			Bookings:  result.Bookings,
			Count:     result.Count,
			Page:      spec.Page,
			PageCount: PageCount(result.Count, s.pageSize),
		}, nil
	}
}

// Get returns one booking with its cabin and guest.
func (s *Service) Get(ctx context.Context, id int64) (models.Booking, error) {
	key := querycache.Key{Resource: ResourceBooking, ID: strconv.FormatInt(id, 10)}
	booking, err := querycache.Get(ctx, s.cache, key, func(ctx context.Context) (models.Booking, error) {
		return s.store.GetBooking(ctx, id)
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("booking_id", id).Msg("Failed to load booking")
		return models.Booking{}, &LoadError{Message: MsgBookingNotFound, Err: err}
	}
	return booking, nil
}

// RecentBookings returns bookings created in the last numDays days, today included.
func (s *Service) RecentBookings(ctx context.Context, numDays int) ([]models.Booking, error) {
	today := s.Today()
	since := localMidnight(today.AddDate(0, 0, -numDays), s.location)
	endOfToday := localMidnight(today.AddDate(0, 0, 1), s.location).Add(-time.Second)

	query := store.Query{
		Table: store.TableBookings,
		Where: []store.Condition{
			{Field: "createdAt", Op: store.OpGte, Value: since},
			{Field: "createdAt", Op: store.OpLte, Value: endOfToday},
		},
		OrderBy: []store.Order{{Field: "createdAt", Ascending: true}},
	}
	key := querycache.Key{Resource: ResourceBookings, ID: fmt.Sprintf("last-%d@%s", numDays, models.FormatDate(today))}
	return s.readAll(ctx, key, query)
}

// RecentStays returns bookings whose stay started in the last numDays days, today included.
func (s *Service) RecentStays(ctx context.Context, numDays int) ([]models.Booking, error) {
	today := s.Today()
	query := store.Query{
		Table: store.TableBookings,
		Where: []store.Condition{
			{Field: "startDate", Op: store.OpGte, Value: today.AddDate(0, 0, -numDays)},
			{Field: "startDate", Op: store.OpLte, Value: today},
		},
		OrderBy: []store.Order{{Field: "startDate", Ascending: true}},
	}
	key := querycache.Key{Resource: ResourceStays, ID: fmt.Sprintf("last-%d@%s", numDays, models.FormatDate(today))}
	return s.readAll(ctx, key, query)
}

// TodayActivity returns unconfirmed bookings arriving today and checked-in
// bookings leaving today, oldest booking first.
func (s *Service) TodayActivity(ctx context.Context) (Activity, error) {
	today := s.Today()
	query := store.Query{
		Table: store.TableBookings,
		AnyOf: [][]store.Condition{
			{
				{Field: "status", Value: models.StatusUnconfirmed},
				{Field: "startDate", Value: today},
			},
			{
				{Field: "status", Value: models.StatusCheckedIn},
				{Field: "endDate", Value: today},
			},
		},
		OrderBy: []store.Order{{Field: "createdAt", Ascending: true}},
	}
	key := querycache.Key{Resource: ResourceTodayActivity, ID: models.FormatDate(today)}
	bookings, err := s.readAll(ctx, key, query)
	if err != nil {
		return Activity{}, err
	}
	return Activity{Date: models.FormatDate(today), Bookings: bookings}, nil
}

func (s *Service) readAll(ctx context.Context, key querycache.Key, query store.Query) ([]models.Booking, error) {
	bookings, err := querycache.Get(ctx, s.cache, key, func(ctx context.Context) ([]models.Booking, error) {
		result, err := s.store.ReadBookings(ctx, query)
		if err != nil {
			return nil, err
		}
		return result.Bookings, nil
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("key", key.String()).Msg("Failed to load bookings")
		return nil, &LoadError{Message: MsgRecentLoad, Err: err}
	}
	return bookings, nil
}

func (s *Service) Cabins(ctx context.Context) ([]models.Cabin, error) {
	key := querycache.Key{Resource: ResourceCabins, ID: "all"}
	cabins, err := querycache.Get(ctx, s.cache, key, s.store.ListCabins)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to load cabins")
		return nil, &LoadError{Message: MsgCabinsLoad, Err: err}
	}
	return cabins, nil
}

func (s *Service) CabinCount(ctx context.Context) (int64, error) {
	key := querycache.Key{Resource: ResourceCabins, ID: "count"}
	count, err := querycache.Get(ctx, s.cache, key, s.store.CountCabins)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to count cabins")
		return 0, &LoadError{Message: MsgCabinsLoad, Err: err}
	}
	return count, nil
}

// Create prices req against its cabin and stores it as unconfirmed.
// An invalid date range is rejected before the store is touched. Every call
// sends exactly one success or failure notification.
func (s *Service) Create(ctx context.Context, req CreateRequest) (models.Booking, error) {
	created, err := s.create(ctx, req)
	if err != nil {
		s.sink.Notify(ctx, notify.Notification{
			Level:   notify.LevelFailure,
			Event:   notify.EventCreate,
			Message: MsgBookingCreate,
		})
		return models.Booking{}, err
	}
	s.sink.Notify(ctx, notify.Notification{
		Level:     notify.LevelSuccess,
		Event:     notify.EventCreate,
		Message:   fmt.Sprintf("Booking #%d successfully created", created.ID),
		BookingID: created.ID,
		Booking:   &created,
	})
	return created, nil
}

func (s *Service) create(ctx context.Context, req CreateRequest) (models.Booking, error) {
	logger := log.Ctx(ctx)

	if err := validate.Struct(req); err != nil {
		return models.Booking{}, err
	}
	start, err := models.ParseDate(req.StartDate)
	if err != nil {
		return models.Booking{}, err
	}
	end, err := models.ParseDate(req.EndDate)
	if err != nil {
		return models.Booking{}, err
	}
	if _, err := models.NumNights(start, end); err != nil {
		return models.Booking{}, err
	}

	cabin, err := s.store.GetCabin(ctx, req.CabinID)
	if err != nil {
		logger.Error().Err(err).Int64("cabin_id", req.CabinID).Msg("Failed to load cabin for booking")
		if errors.Is(err, store.ErrNotFound) {
			return models.Booking{}, &LoadError{Message: MsgCabinNotFound, Err: err}
		}
		return models.Booking{}, &LoadError{Message: MsgCabinsLoad, Err: err}
	}
	if req.NumGuests > cabin.MaxCapacity {
		return models.Booking{}, CapacityError{CabinID: cabin.ID, NumGuests: req.NumGuests, MaxCapacity: cabin.MaxCapacity}
	}

	draft := models.Draft{
		CabinID:      req.CabinID,
		GuestID:      req.GuestID,
		StartDate:    start,
		EndDate:      end,
		NumGuests:    req.NumGuests,
		HasBreakfast: req.HasBreakfast,
		Observations: req.Observations,
	}
	quote, err := s.pricing.Quote(draft, cabin, s.Today())
	if err != nil {
		return models.Booking{}, err
	}

	booking := models.NewBooking(draft, quote)
	booking.Status = models.StatusUnconfirmed
	booking.CreatedAt = s.clock.Now()

	created, err := s.store.InsertBooking(ctx, booking)
	if err != nil {
		logger.Error().Err(err).Int64("cabin_id", req.CabinID).Msg("Failed to create booking")
		return models.Booking{}, &WriteError{Message: MsgBookingCreate, Err: err}
	}
	s.cache.Invalidate(MutatedResources()...)

	logger.Info().Int64("booking_id", created.ID).Int64("total_price", created.TotalPrice).Msg("Booking created")
	return created, nil
}

func localMidnight(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
