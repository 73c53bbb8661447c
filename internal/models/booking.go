// internal/models/booking.go
package models

import (
	"time"
)

// Booking is one reservation of a cabin by a guest.
// StartDate and EndDate are calendar dates stored as UTC midnight.
type Booking struct {
	ID           int64     `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	CabinID      int64     `json:"cabinId"`
	GuestID      int64     `json:"guestId"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	NumNights    int       `json:"numNights"`
	NumGuests    int       `json:"numGuests"`
	HasBreakfast bool      `json:"hasBreakfast"`
	Status       Status    `json:"status"`
	IsPaid       bool      `json:"isPaid"`
	CabinPrice   int64     `json:"cabinPrice"`
	ExtrasPrice  int64     `json:"extrasPrice"`
	TotalPrice   int64     `json:"totalPrice"`
	Observations string    `json:"observations,omitempty"`

	Cabin *Cabin `json:"cabin,omitempty"`
	Guest *Guest `json:"guest,omitempty"`
}

type Cabin struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	MaxCapacity  int    `json:"maxCapacity"`
	RegularPrice int64  `json:"regularPrice"`
	Discount     int64  `json:"discount"`
	Description  string `json:"description,omitempty"`
	Image        string `json:"image,omitempty"`
}

// NightlyPrice is the per-night price after discount.
func (c Cabin) NightlyPrice() int64 {
	return c.RegularPrice - c.Discount
}

type Guest struct {
	ID          int64  `json:"id"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Nationality string `json:"nationality,omitempty"`
	NationalID  string `json:"nationalId,omitempty"`
	CountryFlag string `json:"countryFlag,omitempty"`
}

// BookingPatch lists the mutable booking fields. Nil fields are left untouched.
type BookingPatch struct {
	Status       *Status
	IsPaid       *bool
	HasBreakfast *bool
	ExtrasPrice  *int64
	TotalPrice   *int64
	Observations *string
}

// Empty reports whether the patch changes nothing.
func (p BookingPatch) Empty() bool {
	return p.Status == nil && p.IsPaid == nil && p.HasBreakfast == nil &&
		p.ExtrasPrice == nil && p.TotalPrice == nil && p.Observations == nil
}

// Apply returns b with the patch fields written over it.
func (p BookingPatch) Apply(b Booking) Booking {
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.IsPaid != nil {
		b.IsPaid = *p.IsPaid
	}
	if p.HasBreakfast != nil {
		b.HasBreakfast = *p.HasBreakfast
	}
	if p.ExtrasPrice != nil {
		b.ExtrasPrice = *p.ExtrasPrice
	}
	if p.TotalPrice != nil {
		b.TotalPrice = *p.TotalPrice
	}
	if p.Observations != nil {
		b.Observations = *p.Observations
	}
	return b
}
