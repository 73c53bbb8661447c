package email

import (
	"fmt"
	"strings"
	"time"

	"github.com/codr1/CabinDesk/internal/models"
)

type Notice struct {
	Subject string
	Body    string
}

type StayDetails struct {
	PropertyName string
	GuestName    string
	CabinName    string
	StartDate    string
	EndDate      string
	NumNights    int
	NumGuests    int
	HasBreakfast bool
	TotalPrice   int64
	IsPaid       bool
}

func FormatStayDate(date time.Time) string {
	return date.Format("Monday, Jan 2, 2006")
}

// StayDetailsFor fills the notice fields of a booking loaded with its cabin and guest.
func StayDetailsFor(propertyName string, booking models.Booking) StayDetails {
	details := StayDetails{
		PropertyName: propertyName,
		StartDate:    FormatStayDate(booking.StartDate),
		EndDate:      FormatStayDate(booking.EndDate),
		NumNights:    booking.NumNights,
		NumGuests:    booking.NumGuests,
		HasBreakfast: booking.HasBreakfast,
		TotalPrice:   booking.TotalPrice,
		IsPaid:       booking.IsPaid,
	}
	if booking.Guest != nil {
		details.GuestName = booking.Guest.FullName
	}
	if booking.Cabin != nil {
		details.CabinName = booking.Cabin.Name
	}
	return details
}

func BuildCheckInNotice(details StayDetails) Notice {
	propertyName := orDefault(details.PropertyName, "our cabins")
	breakfast := "not included"
	if details.HasBreakfast {
		breakfast = "included"
	}
	payment := "due"
	if details.IsPaid {
		payment = "paid"
	}

	lines := []string{
		fmt.Sprintf("Hi %s,", orDefault(details.GuestName, "there")),
		"",
		fmt.Sprintf("Welcome to %s. You are checked in.", propertyName),
		"",
		fmt.Sprintf("Cabin: %s", orDefault(details.CabinName, "TBD")),
		fmt.Sprintf("Arrival: %s", orDefault(details.StartDate, "TBD")),
		fmt.Sprintf("Departure: %s", orDefault(details.EndDate, "TBD")),
		fmt.Sprintf("Nights: %d", details.NumNights),
		fmt.Sprintf("Guests: %d", details.NumGuests),
		fmt.Sprintf("Breakfast: %s", breakfast),
		fmt.Sprintf("Total: %d (%s)", details.TotalPrice, payment),
	}

	return Notice{
		Subject: fmt.Sprintf("Welcome to %s", propertyName),
		Body:    strings.Join(lines, "\n"),
	}
}

func BuildCheckOutNotice(details StayDetails) Notice {
	propertyName := orDefault(details.PropertyName, "our cabins")

	lines := []string{
		fmt.Sprintf("Hi %s,", orDefault(details.GuestName, "there")),
		"",
		fmt.Sprintf("Thank you for staying at %s. You are checked out.", propertyName),
		"",
		fmt.Sprintf("Cabin: %s", orDefault(details.CabinName, "TBD")),
		fmt.Sprintf("Stay: %s to %s (%d nights)", orDefault(details.StartDate, "TBD"), orDefault(details.EndDate, "TBD"), details.NumNights),
		fmt.Sprintf("Total paid: %d", details.TotalPrice),
		"",
		"We hope to see you again.",
	}

	return Notice{
		Subject: fmt.Sprintf("Thank you for staying at %s", propertyName),
		Body:    strings.Join(lines, "\n"),
	}
}

func orDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
