// Package dashboard aggregates recent bookings and stays into the staff dashboard.
package dashboard

import (
	"fmt"
	"math"

	"github.com/codr1/CabinDesk/internal/models"
)

// DivisionUndefinedError is returned when the occupancy rate has no
// cabin-nights to divide by.
type DivisionUndefinedError struct {
	NumDays    int
	CabinCount int64
}

func (e DivisionUndefinedError) Error() string {
	return fmt.Sprintf("occupancy rate is undefined for %d days and %d cabins", e.NumDays, e.CabinCount)
}

type Stats struct {
	NumBookings int   `json:"numBookings"`
	Sales       int64 `json:"sales"`
	Checkins    int   `json:"checkins"`
	// OccupancyRate is a fraction; OccupancyPercent is the rounded display value.
	OccupancyRate    float64 `json:"occupancyRate"`
	OccupancyPercent int     `json:"occupancyPercent"`
}

// ConfirmedStays keeps the stays whose guest actually arrived.
func ConfirmedStays(stays []models.Booking) []models.Booking {
	confirmed := make([]models.Booking, 0, len(stays))
	for _, stay := range stays {
		if stay.Status.Confirmed() {
			confirmed = append(confirmed, stay)
		}
	}
	return confirmed
}

// OccupancyRate is the booked nights of confirmed stays over the available cabin-nights.
func OccupancyRate(confirmed []models.Booking, numDays int, cabinCount int64) (float64, error) {
	available := int64(numDays) * cabinCount
	if numDays <= 0 || cabinCount <= 0 {
		return 0, DivisionUndefinedError{NumDays: numDays, CabinCount: cabinCount}
	}
	var nights int64
	for _, stay := range confirmed {
		nights += int64(stay.NumNights)
	}
	return float64(nights) / float64(available), nil
}

// Percent rounds a rate to the nearest whole percent.
func Percent(rate float64) int {
	return int(math.Round(rate * 100))
}

// ComputeStats reduces the window's bookings and stays to the headline numbers.
func ComputeStats(bookings, stays []models.Booking, numDays int, cabinCount int64) (Stats, error) {
	var sales int64
	for _, b := range bookings {
		sales += b.TotalPrice
	}
	confirmed := ConfirmedStays(stays)

	rate, err := OccupancyRate(confirmed, numDays, cabinCount)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		NumBookings:      len(bookings),
		Sales:            sales,
		Checkins:         len(confirmed),
		OccupancyRate:    rate,
		OccupancyPercent: Percent(rate),
	}, nil
}
