package dashboard

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/codr1/CabinDesk/internal/models"
)

func stay(nights int, status models.Status) models.Booking {
	return models.Booking{NumNights: nights, Status: status}
}

func TestComputeStats(t *testing.T) {
	recent := []models.Booking{
		{TotalPrice: 360},
		{TotalPrice: 1200},
		{TotalPrice: 90},
	}
	stays := []models.Booking{
		stay(3, models.StatusCheckedIn),
		stay(4, models.StatusCheckedOut),
		stay(5, models.StatusUnconfirmed),
	}

	stats, err := ComputeStats(recent, stays, 7, 2)
	if err != nil {
		t.Fatalf("compute stats: %v", err)
	}

	if stats.NumBookings != 3 {
		t.Fatalf("NumBookings = %d, want 3", stats.NumBookings)
	}
	if stats.Sales != 1650 {
		t.Fatalf("Sales = %d, want 1650", stats.Sales)
	}
	if stats.Checkins != 2 {
		t.Fatalf("Checkins = %d, want 2", stats.Checkins)
	}
	if math.Abs(stats.OccupancyRate-0.5) > 1e-9 {
		t.Fatalf("OccupancyRate = %v, want 0.5", stats.OccupancyRate)
	}
	if stats.OccupancyPercent != 50 {
		t.Fatalf("OccupancyPercent = %d, want 50", stats.OccupancyPercent)
	}
}

func TestComputeStats_NoCabins(t *testing.T) {
	_, err := ComputeStats(nil, []models.Booking{stay(2, models.StatusCheckedIn)}, 7, 0)

	var divErr DivisionUndefinedError
	if !errors.As(err, &divErr) {
		t.Fatalf("err = %v, want DivisionUndefinedError", err)
	}
	if divErr.NumDays != 7 || divErr.CabinCount != 0 {
		t.Fatalf("error = %+v, want 7 days and 0 cabins", divErr)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		rate float64
		want int
	}{
		{rate: 0, want: 0},
		{rate: 1.0 / 3.0, want: 33},
		{rate: 2.0 / 3.0, want: 67},
		{rate: 0.125, want: 13},
		{rate: 1.2, want: 120},
	}
	for _, test := range tests {
		if got := Percent(test.rate); got != test.want {
			t.Errorf("Percent(%v) = %d, want %d", test.rate, got, test.want)
		}
	}
}

func TestSalesByDay(t *testing.T) {
	today := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	recent := []models.Booking{
		{CreatedAt: time.Date(2024, 3, 8, 10, 0, 0, 0, time.UTC), TotalPrice: 300, ExtrasPrice: 30},
		{CreatedAt: time.Date(2024, 3, 8, 18, 0, 0, 0, time.UTC), TotalPrice: 200, ExtrasPrice: 0},
		{CreatedAt: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC), TotalPrice: 100, ExtrasPrice: 15},
		{CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), TotalPrice: 999, ExtrasPrice: 99},
	}

	got := SalesByDay(recent, today, 3, time.UTC)
	want := []SalesPoint{
		{Date: "2024-03-07"},
		{Date: "2024-03-08", TotalSales: 500, ExtrasSales: 30},
		{Date: "2024-03-09"},
		{Date: "2024-03-10", TotalSales: 100, ExtrasSales: 15},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SalesByDay() = %+v, want %+v", got, want)
	}
}

func TestSalesByDay_UsesLocationForCreationDay(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	// 20:00 UTC on the 9th is already the 10th in Tokyo.
	recent := []models.Booking{{CreatedAt: time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC), TotalPrice: 100}}

	got := SalesByDay(recent, today, 2, tokyo)
	if len(got) != 3 || got[1].TotalSales != 0 || got[2].TotalSales != 100 {
		t.Fatalf("SalesByDay() = %+v, want the sale on 2024-03-10", got)
	}
}

func TestStayDurations(t *testing.T) {
	confirmed := []models.Booking{
		stay(1, models.StatusCheckedOut),
		stay(1, models.StatusCheckedIn),
		stay(5, models.StatusCheckedIn),
		stay(14, models.StatusCheckedOut),
		stay(21, models.StatusCheckedOut),
		stay(30, models.StatusCheckedOut),
	}

	got := StayDurations(confirmed)
	want := []DurationBucket{
		{Label: "1 night", Count: 2},
		{Label: "4-5 nights", Count: 1},
		{Label: "8-14 nights", Count: 1},
		{Label: "15-21 nights", Count: 1},
		{Label: "21+ nights", Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("StayDurations() = %+v, want %+v", got, want)
	}
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "", want: 7},
		{raw: "30", want: 30},
		{raw: "90", want: 90},
		{raw: "14", wantErr: true},
		{raw: "week", wantErr: true},
	}
	for _, test := range tests {
		got, err := ParseWindow(test.raw, 7)
		if test.wantErr {
			if err == nil {
				t.Errorf("ParseWindow(%q) = %d, want error", test.raw, got)
			}
			continue
		}
		if err != nil || got != test.want {
			t.Errorf("ParseWindow(%q) = %d, %v; want %d", test.raw, got, err, test.want)
		}
	}
}
