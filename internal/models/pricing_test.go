package models

import (
	"errors"
	"testing"
	"time"
)

func date(t *testing.T, raw string) time.Time {
	t.Helper()
	parsed, err := ParseDate(raw)
	if err != nil {
		t.Fatalf("parse date %q: %v", raw, err)
	}
	return parsed
}

func TestQuote_Example(t *testing.T) {
	cabin := Cabin{ID: 1, RegularPrice: 100, Discount: 10}
	draft := Draft{
		CabinID:      1,
		StartDate:    date(t, "2024-01-01"),
		EndDate:      date(t, "2024-01-04"),
		NumGuests:    2,
		HasBreakfast: true,
	}

	quote, err := NewPricing(15).Quote(draft, cabin, date(t, "2023-12-20"))
	if err != nil {
		t.Fatalf("quote: %v", err)
	}

	if quote.NumNights != 3 {
		t.Fatalf("NumNights = %d, want 3", quote.NumNights)
	}
	if quote.CabinPrice != 270 {
		t.Fatalf("CabinPrice = %d, want 270", quote.CabinPrice)
	}
	if quote.ExtrasPrice != 90 {
		t.Fatalf("ExtrasPrice = %d, want 90", quote.ExtrasPrice)
	}
	if quote.TotalPrice != 360 {
		t.Fatalf("TotalPrice = %d, want 360", quote.TotalPrice)
	}
	if quote.Status != StatusUnconfirmed {
		t.Fatalf("Status = %q, want %q", quote.Status, StatusUnconfirmed)
	}
}

func TestQuote_InvalidRange(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
	}{
		{name: "same_day", start: "2024-03-10", end: "2024-03-10"},
		{name: "end_before_start", start: "2024-03-10", end: "2024-03-08"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			draft := Draft{StartDate: date(t, test.start), EndDate: date(t, test.end), NumGuests: 1}
			_, err := Pricing{}.Quote(draft, Cabin{RegularPrice: 100}, date(t, "2024-01-01"))
			var rangeErr InvalidRangeError
			if !errors.As(err, &rangeErr) {
				t.Fatalf("expected InvalidRangeError, got %v", err)
			}
		})
	}
}

func TestQuote_TotalIsCabinPlusExtras(t *testing.T) {
	cabin := Cabin{RegularPrice: 250, Discount: 25}
	today := date(t, "2024-06-01")
	pricing := NewPricing(20)

	for nights := 1; nights <= 10; nights++ {
		for guests := 1; guests <= 4; guests++ {
			for _, breakfast := range []bool{false, true} {
				start := date(t, "2024-06-10")
				draft := Draft{
					StartDate:    start,
					EndDate:      start.AddDate(0, 0, nights),
					NumGuests:    guests,
					HasBreakfast: breakfast,
				}
				quote, err := pricing.Quote(draft, cabin, today)
				if err != nil {
					t.Fatalf("quote: %v", err)
				}
				if quote.TotalPrice != quote.CabinPrice+quote.ExtrasPrice {
					t.Fatalf("total %d != cabin %d + extras %d", quote.TotalPrice, quote.CabinPrice, quote.ExtrasPrice)
				}
				if !breakfast && quote.ExtrasPrice != 0 {
					t.Fatalf("extras without breakfast = %d, want 0", quote.ExtrasPrice)
				}
				if quote.NumNights != nights {
					t.Fatalf("NumNights = %d, want %d", quote.NumNights, nights)
				}
			}
		}
	}
}

func TestQuote_Deterministic(t *testing.T) {
	draft := Draft{
		StartDate:    date(t, "2024-02-27"),
		EndDate:      date(t, "2024-03-02"),
		NumGuests:    3,
		HasBreakfast: true,
	}
	cabin := Cabin{RegularPrice: 310, Discount: 0}
	today := date(t, "2024-03-01")

	first, err := Pricing{}.Quote(draft, cabin, today)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Pricing{}.Quote(draft, cabin, today)
		if err != nil {
			t.Fatalf("quote: %v", err)
		}
		if again != first {
			t.Fatalf("quote %d = %+v, want %+v", i, again, first)
		}
	}
	// Leap day is counted.
	if first.NumNights != 4 {
		t.Fatalf("NumNights = %d, want 4", first.NumNights)
	}
}

func TestPricing_ZeroValueUsesDefaultBreakfastPrice(t *testing.T) {
	if got := (Pricing{}).ExtrasPrice(2, 2, true); got != 4*DefaultBreakfastPrice {
		t.Fatalf("ExtrasPrice = %d, want %d", got, 4*DefaultBreakfastPrice)
	}
}

func TestBreakfastAddition(t *testing.T) {
	booking := Booking{NumNights: 4, NumGuests: 2, CabinPrice: 800, TotalPrice: 800}

	patch := NewPricing(15).BreakfastAddition(booking)
	if patch.Empty() {
		t.Fatal("expected breakfast patch")
	}
	updated := patch.Apply(booking)
	if !updated.HasBreakfast {
		t.Fatal("HasBreakfast = false, want true")
	}
	if updated.ExtrasPrice != 120 {
		t.Fatalf("ExtrasPrice = %d, want 120", updated.ExtrasPrice)
	}
	if updated.TotalPrice != 920 {
		t.Fatalf("TotalPrice = %d, want 920", updated.TotalPrice)
	}

	if again := NewPricing(15).BreakfastAddition(updated); !again.Empty() {
		t.Fatalf("expected empty patch for booking with breakfast, got %+v", again)
	}
}
