package bookings

// Resources name the cached reads. A booking mutation invalidates MutatedResources.
const (
	ResourceBookings      = "bookings"
	ResourceBooking       = "booking"
	ResourceStays         = "stays"
	ResourceTodayActivity = "today-activity"
	ResourceCabins        = "cabins"
)

// MutatedResources lists every cached read that depends on booking rows.
func MutatedResources() []string {
	return []string{ResourceBookings, ResourceBooking, ResourceStays, ResourceTodayActivity}
}

// Notification texts shown to staff.
const (
	MsgBookingsLoad    = "Bookings could not be loaded"
	MsgBookingNotFound = "Booking not found"
	MsgRecentLoad      = "Bookings could not get loaded"
	MsgCabinsLoad      = "Cabins could not be loaded"
	MsgCabinNotFound   = "Cabin not found"
	MsgBookingCreate   = "Booking could not be created"
	MsgBookingUpdate   = "Booking could not be updated"
	MsgBookingDelete   = "Booking could not be deleted"
)

// LoadError reports a failed read. No cached or partial data accompanies it.
type LoadError struct {
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error { return e.Err }

// WriteError reports a failed insert, update or delete. The stored record is unchanged.
type WriteError struct {
	Message string
	Err     error
}

func (e *WriteError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error { return e.Err }
