package dashboard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/codr1/CabinDesk/internal/models"
)

// Windows are the trailing day counts staff can pick.
var Windows = []int{7, 30, 90}

// ParseWindow reads the "last" query value, falling back to def when empty.
func ParseWindow(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("last must be one of %v", Windows)
	}
	for _, allowed := range Windows {
		if days == allowed {
			return days, nil
		}
	}
	if days == def && days > 0 {
		return days, nil
	}
	return 0, fmt.Errorf("last must be one of %v", Windows)
}

// SalesPoint is the revenue of bookings created on one day.
type SalesPoint struct {
	Date        string `json:"date"`
	TotalSales  int64  `json:"totalSales"`
	ExtrasSales int64  `json:"extrasSales"`
}

// SalesByDay returns one point per day from today-numDays through today, oldest
// first: numDays+1 points, the same days RecentBookings reads. Bookings are
// placed by their creation date in loc.
func SalesByDay(bookings []models.Booking, today time.Time, numDays int, loc *time.Location) []SalesPoint {
	if numDays <= 0 {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	points := make([]SalesPoint, numDays+1)
	index := make(map[string]int, len(points))
	first := models.DateOf(today).AddDate(0, 0, -numDays)
	for i := range points {
		date := models.FormatDate(first.AddDate(0, 0, i))
		points[i].Date = date
		index[date] = i
	}

	for _, b := range bookings {
		i, ok := index[models.FormatDate(b.CreatedAt.In(loc))]
		if !ok {
			continue
		}
		points[i].TotalSales += b.TotalPrice
		points[i].ExtrasSales += b.ExtrasPrice
	}
	return points
}

// DurationBucket counts confirmed stays of a length range.
type DurationBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type durationRange struct {
	label    string
	min, max int // max 0 means unbounded
}

var durationRanges = []durationRange{
	{label: "1 night", min: 1, max: 1},
	{label: "2 nights", min: 2, max: 2},
	{label: "3 nights", min: 3, max: 3},
	{label: "4-5 nights", min: 4, max: 5},
	{label: "6-7 nights", min: 6, max: 7},
	{label: "8-14 nights", min: 8, max: 14},
	{label: "15-21 nights", min: 15, max: 21},
	{label: "21+ nights", min: 22},
}

// StayDurations buckets confirmed stays by their number of nights. Empty buckets are left out.
func StayDurations(confirmed []models.Booking) []DurationBucket {
	counts := make([]int, len(durationRanges))
	for _, stay := range confirmed {
		for i, r := range durationRanges {
			if stay.NumNights >= r.min && (r.max == 0 || stay.NumNights <= r.max) {
				counts[i]++
				break
			}
		}
	}

	var buckets []DurationBucket
	for i, r := range durationRanges {
		if counts[i] > 0 {
			buckets = append(buckets, DurationBucket{Label: r.label, Count: counts[i]})
		}
	}
	return buckets
}
