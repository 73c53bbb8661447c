// Package seed loads the sample cabins, guests and bookings used for demos.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/CabinDesk/internal/db"
	"github.com/codr1/CabinDesk/internal/models"
)

type sampleBooking struct {
	createdDaysAgo int
	startOffset    int // days from today
	nights         int
	cabin          int // index into Cabins
	guest          int // index into Guests
	numGuests      int
	hasBreakfast   bool
	isPaid         bool
	observations   string
}

var Cabins = []models.Cabin{
	{Name: "001", MaxCapacity: 2, RegularPrice: 250, Discount: 0, Description: "Cozy cabin for a couple, surrounded by pines."},
	{Name: "002", MaxCapacity: 2, RegularPrice: 350, Discount: 25, Description: "Couple retreat with a private hot tub."},
	{Name: "003", MaxCapacity: 4, RegularPrice: 300, Discount: 0, Description: "Family cabin with a wood-burning stove."},
	{Name: "004", MaxCapacity: 4, RegularPrice: 500, Discount: 50, Description: "Lakeside cabin with a large deck."},
	{Name: "005", MaxCapacity: 6, RegularPrice: 350, Discount: 0, Description: "Spacious group cabin near the trailhead."},
	{Name: "006", MaxCapacity: 6, RegularPrice: 800, Discount: 100, Description: "Luxury cabin with panoramic windows."},
	{Name: "007", MaxCapacity: 8, RegularPrice: 600, Discount: 100, Description: "Large cabin for groups and families."},
	{Name: "008", MaxCapacity: 10, RegularPrice: 1400, Discount: 0, Description: "The largest cabin, with a sauna and a games room."},
}

var Guests = []models.Guest{
	{FullName: "Lucas Ferreira", Email: "lucas@example.pt", Nationality: "Portugal", NationalID: "3525436345", CountryFlag: "https://flagcdn.com/pt.svg"},
	{FullName: "Jonathan Smith", Email: "johnsmith@test.eu", Nationality: "Great Britain", NationalID: "4534593454", CountryFlag: "https://flagcdn.com/gb.svg"},
	{FullName: "Jonatan Johansson", Email: "jonatan@example.com", Nationality: "Finland", NationalID: "9374074454", CountryFlag: "https://flagcdn.com/fi.svg"},
	{FullName: "Jonas Mueller", Email: "jonas@example.eu", Nationality: "Germany", NationalID: "1233212288", CountryFlag: "https://flagcdn.com/de.svg"},
	{FullName: "Jonas Anderson", Email: "anderson@example.com", Nationality: "Bolivia", NationalID: "0988520146", CountryFlag: "https://flagcdn.com/bo.svg"},
	{FullName: "Maria Gomez", Email: "maria@example.com", Nationality: "Mexico", NationalID: "108652446", CountryFlag: "https://flagcdn.com/mx.svg"},
	{FullName: "Ahmed Hassan", Email: "ahmed@example.com", Nationality: "Egypt", NationalID: "1077334562", CountryFlag: "https://flagcdn.com/eg.svg"},
	{FullName: "Emma Walsh", Email: "emma@example.co.uk", Nationality: "United Kingdom", NationalID: "1234578901", CountryFlag: "https://flagcdn.com/gb.svg"},
}

var sampleBookings = []sampleBooking{
	// Cabin 001
	{createdDaysAgo: 20, startOffset: 0, nights: 7, cabin: 0, guest: 1, numGuests: 1, hasBreakfast: true, isPaid: false, observations: "I have a gluten allergy and would like to request a gluten-free breakfast."},
	{createdDaysAgo: 33, startOffset: -23, nights: 13, cabin: 0, guest: 2, numGuests: 2, hasBreakfast: true, isPaid: true},
	{createdDaysAgo: 27, startOffset: 12, nights: 6, cabin: 0, guest: 3, numGuests: 2, hasBreakfast: false, isPaid: false},
	// Cabin 002
	{createdDaysAgo: 45, startOffset: -45, nights: 5, cabin: 1, guest: 4, numGuests: 2, hasBreakfast: true, isPaid: true},
	{createdDaysAgo: 2, startOffset: 15, nights: 3, cabin: 1, guest: 5, numGuests: 2, hasBreakfast: true, isPaid: true, observations: "We will be bringing our small dog with us."},
	{createdDaysAgo: 5, startOffset: -2, nights: 2, cabin: 1, guest: 6, numGuests: 1, hasBreakfast: false, isPaid: true},
	// Cabin 003
	{createdDaysAgo: 65, startOffset: -32, nights: 7, cabin: 2, guest: 7, numGuests: 4, hasBreakfast: true, isPaid: true},
	{createdDaysAgo: 2, startOffset: -1, nights: 4, cabin: 2, guest: 0, numGuests: 3, hasBreakfast: false, isPaid: true},
	// Cabin 004
	{createdDaysAgo: 7, startOffset: -5, nights: 5, cabin: 3, guest: 1, numGuests: 4, hasBreakfast: true, isPaid: true},
	{createdDaysAgo: 18, startOffset: 2, nights: 5, cabin: 3, guest: 2, numGuests: 2, hasBreakfast: true, isPaid: false},
	// Cabin 005
	{createdDaysAgo: 30, startOffset: -4, nights: 4, cabin: 4, guest: 3, numGuests: 5, hasBreakfast: true, isPaid: true, observations: "Arriving late, around 11pm."},
	{createdDaysAgo: 1, startOffset: 0, nights: 2, cabin: 4, guest: 4, numGuests: 4, hasBreakfast: false, isPaid: false},
	// Cabin 006
	{createdDaysAgo: 3, startOffset: -2, nights: 10, cabin: 5, guest: 5, numGuests: 6, hasBreakfast: true, isPaid: true},
	// Cabin 007
	{createdDaysAgo: 90, startOffset: -60, nights: 21, cabin: 6, guest: 6, numGuests: 8, hasBreakfast: false, isPaid: true},
	{createdDaysAgo: 12, startOffset: 8, nights: 22, cabin: 6, guest: 7, numGuests: 7, hasBreakfast: true, isPaid: false},
	// Cabin 008
	{createdDaysAgo: 6, startOffset: -6, nights: 6, cabin: 7, guest: 0, numGuests: 9, hasBreakfast: false, isPaid: true},
}

type Result struct {
	Cabins   int
	Guests   int
	Bookings int
}

// Run replaces every cabin, guest and booking with the sample data. Booking
// dates are relative to today and statuses follow from those dates.
func Run(ctx context.Context, database *db.DB, pricing models.Pricing, now time.Time, loc *time.Location) (Result, error) {
	today := models.Today(now, loc)
	var result Result

	err := database.RunInTx(ctx, func(tx *db.DB) error {
		if err := tx.Queries.DeleteAll(ctx); err != nil {
			return err
		}

		cabins := make([]models.Cabin, 0, len(Cabins))
		for _, c := range Cabins {
			created, err := tx.Queries.InsertCabin(ctx, c)
			if err != nil {
				return fmt.Errorf("insert cabin %s: %w", c.Name, err)
			}
			cabins = append(cabins, created)
		}
		guests := make([]models.Guest, 0, len(Guests))
		for _, g := range Guests {
			created, err := tx.Queries.InsertGuest(ctx, g)
			if err != nil {
				return fmt.Errorf("insert guest %s: %w", g.FullName, err)
			}
			guests = append(guests, created)
		}

		for i, sb := range sampleBookings {
			booking, err := buildBooking(sb, cabins, guests, pricing, today, now)
			if err != nil {
				return fmt.Errorf("sample booking %d: %w", i, err)
			}
			if _, err := tx.Queries.InsertBooking(ctx, booking); err != nil {
				return fmt.Errorf("insert sample booking %d: %w", i, err)
			}
		}

		result = Result{Cabins: len(cabins), Guests: len(guests), Bookings: len(sampleBookings)}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	log.Ctx(ctx).Info().
		Int("cabins", result.Cabins).
		Int("guests", result.Guests).
		Int("bookings", result.Bookings).
		Str("today", models.FormatDate(today)).
		Msg("Sample data loaded")
	return result, nil
}

func buildBooking(sb sampleBooking, cabins []models.Cabin, guests []models.Guest, pricing models.Pricing, today, now time.Time) (models.Booking, error) {
	cabin := cabins[sb.cabin]
	start := today.AddDate(0, 0, sb.startOffset)
	draft := models.Draft{
		CabinID:      cabin.ID,
		GuestID:      guests[sb.guest].ID,
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, sb.nights),
		NumGuests:    sb.numGuests,
		HasBreakfast: sb.hasBreakfast,
		Observations: sb.observations,
	}
	quote, err := pricing.Quote(draft, cabin, today)
	if err != nil {
		return models.Booking{}, err
	}

	booking := models.NewBooking(draft, quote)
	// Confirmed stays have been paid at check-in.
	booking.IsPaid = sb.isPaid || booking.Status.Confirmed()
	booking.CreatedAt = now.AddDate(0, 0, -sb.createdDaysAgo)
	return booking, nil
}
