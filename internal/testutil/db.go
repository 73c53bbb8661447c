package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/codr1/CabinDesk/internal/db"
	"github.com/codr1/CabinDesk/internal/models"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// InsertCabin adds a cabin priced at regularPrice with the given discount.
func InsertCabin(t *testing.T, database *db.DB, name string, regularPrice, discount int64) models.Cabin {
	t.Helper()

	cabin, err := database.Queries.InsertCabin(context.Background(), models.Cabin{
		Name:         name,
		MaxCapacity:  4,
		RegularPrice: regularPrice,
		Discount:     discount,
	})
	if err != nil {
		t.Fatalf("insert cabin: %v", err)
	}
	return cabin
}

func InsertGuest(t *testing.T, database *db.DB, fullName, email string) models.Guest {
	t.Helper()

	guest, err := database.Queries.InsertGuest(context.Background(), models.Guest{
		FullName:    fullName,
		Email:       email,
		Nationality: "Portugal",
		CountryFlag: "https://flagcdn.com/pt.svg",
	})
	if err != nil {
		t.Fatalf("insert guest: %v", err)
	}
	return guest
}

// BookingSeed describes a booking to insert; prices are derived from the cabin.
type BookingSeed struct {
	Cabin        models.Cabin
	Guest        models.Guest
	StartDate    string
	EndDate      string
	NumGuests    int
	HasBreakfast bool
	Status       models.Status
	IsPaid       bool
	CreatedAt    time.Time
}

// InsertBooking prices and inserts a booking.
func InsertBooking(t *testing.T, database *db.DB, seed BookingSeed) models.Booking {
	t.Helper()

	start, err := models.ParseDate(seed.StartDate)
	if err != nil {
		t.Fatalf("start date: %v", err)
	}
	end, err := models.ParseDate(seed.EndDate)
	if err != nil {
		t.Fatalf("end date: %v", err)
	}
	numGuests := seed.NumGuests
	if numGuests == 0 {
		numGuests = 1
	}
	draft := models.Draft{
		CabinID:      seed.Cabin.ID,
		GuestID:      seed.Guest.ID,
		StartDate:    start,
		EndDate:      end,
		NumGuests:    numGuests,
		HasBreakfast: seed.HasBreakfast,
	}
	quote, err := models.Pricing{}.Quote(draft, seed.Cabin, start)
	if err != nil {
		t.Fatalf("quote booking: %v", err)
	}

	booking := models.NewBooking(draft, quote)
	booking.Status = seed.Status
	if booking.Status == "" {
		booking.Status = models.StatusUnconfirmed
	}
	booking.IsPaid = seed.IsPaid
	booking.CreatedAt = seed.CreatedAt

	inserted, err := database.Queries.InsertBooking(context.Background(), booking)
	if err != nil {
		t.Fatalf("insert booking: %v", err)
	}
	return inserted
}
