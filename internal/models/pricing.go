package models

import (
	"fmt"
	"time"
)

// DefaultBreakfastPrice is charged per guest per night.
const DefaultBreakfastPrice int64 = 15

// InvalidRangeError rejects a stay whose end date is not after its start date.
type InvalidRangeError struct {
	StartDate time.Time
	EndDate   time.Time
}

func (e InvalidRangeError) Error() string {
	return fmt.Sprintf("end date %s must be after start date %s", FormatDate(e.EndDate), FormatDate(e.StartDate))
}

// Draft is the raw input of a new booking before pricing.
type Draft struct {
	CabinID      int64
	GuestID      int64
	StartDate    time.Time
	EndDate      time.Time
	NumGuests    int
	HasBreakfast bool
	Observations string
}

// Quote holds the values derived from a draft.
type Quote struct {
	NumNights   int    `json:"numNights"`
	CabinPrice  int64  `json:"cabinPrice"`
	ExtrasPrice int64  `json:"extrasPrice"`
	TotalPrice  int64  `json:"totalPrice"`
	Status      Status `json:"status"`
}

// Pricing computes booking prices. The zero value charges DefaultBreakfastPrice.
type Pricing struct {
	BreakfastPrice int64
}

func NewPricing(breakfastPrice int64) Pricing {
	return Pricing{BreakfastPrice: breakfastPrice}
}

func (p Pricing) breakfastPrice() int64 {
	if p.BreakfastPrice <= 0 {
		return DefaultBreakfastPrice
	}
	return p.BreakfastPrice
}

// NumNights returns the nights between start and end.
func NumNights(start, end time.Time) (int, error) {
	nights := DaysBetween(end, start)
	if nights <= 0 {
		return 0, InvalidRangeError{StartDate: start, EndDate: end}
	}
	return nights, nil
}

// CabinPrice is the accommodation cost for the stay.
func (p Pricing) CabinPrice(numNights int, cabin Cabin) int64 {
	return int64(numNights) * cabin.NightlyPrice()
}

// ExtrasPrice is the breakfast cost for the stay; zero without breakfast.
func (p Pricing) ExtrasPrice(numNights, numGuests int, hasBreakfast bool) int64 {
	if !hasBreakfast {
		return 0
	}
	return int64(numNights) * p.breakfastPrice() * int64(numGuests)
}

// Quote prices a draft against its cabin and derives the status for today.
func (p Pricing) Quote(draft Draft, cabin Cabin, today time.Time) (Quote, error) {
	numNights, err := NumNights(draft.StartDate, draft.EndDate)
	if err != nil {
		return Quote{}, err
	}

	cabinPrice := p.CabinPrice(numNights, cabin)
	extrasPrice := p.ExtrasPrice(numNights, draft.NumGuests, draft.HasBreakfast)

	return Quote{
		NumNights:   numNights,
		CabinPrice:  cabinPrice,
		ExtrasPrice: extrasPrice,
		TotalPrice:  cabinPrice + extrasPrice,
		Status:      DeriveStatus(draft.StartDate, draft.EndDate, today),
	}, nil
}

// NewBooking builds the booking row for a priced draft.
func NewBooking(draft Draft, quote Quote) Booking {
	return Booking{
		CabinID:      draft.CabinID,
		GuestID:      draft.GuestID,
		StartDate:    DateOf(draft.StartDate),
		EndDate:      DateOf(draft.EndDate),
		NumNights:    quote.NumNights,
		NumGuests:    draft.NumGuests,
		HasBreakfast: draft.HasBreakfast,
		Status:       quote.Status,
		CabinPrice:   quote.CabinPrice,
		ExtrasPrice:  quote.ExtrasPrice,
		TotalPrice:   quote.TotalPrice,
		Observations: draft.Observations,
	}
}

// BreakfastAddition is the patch that adds breakfast to an existing booking.
// It returns an empty patch when b already includes breakfast.
func (p Pricing) BreakfastAddition(b Booking) BookingPatch {
	if b.HasBreakfast {
		return BookingPatch{}
	}
	hasBreakfast := true
	extras := p.ExtrasPrice(b.NumNights, b.NumGuests, true)
	total := b.CabinPrice + extras
	return BookingPatch{
		HasBreakfast: &hasBreakfast,
		ExtrasPrice:  &extras,
		TotalPrice:   &total,
	}
}
