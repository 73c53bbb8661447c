package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/codr1/CabinDesk/internal/models"
	"github.com/codr1/CabinDesk/internal/store"
)

// DBTX is satisfied by both *sqlx.DB and *sqlx.Tx.
type DBTX interface {
	sqlx.ExtContext
}

// Queries implements store.Store on SQLite.
type Queries struct {
	db DBTX
}

var _ store.Store = (*Queries)(nil)

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

const selectBookings = `
SELECT
	b.id, b.created_at, b.cabin_id, b.guest_id, b.start_date, b.end_date,
	b.num_nights, b.num_guests, b.has_breakfast, b.status, b.is_paid,
	b.cabin_price, b.extras_price, b.total_price, b.observations,
	c.name AS cabin_name, c.max_capacity AS cabin_max_capacity,
	c.regular_price AS cabin_regular_price, c.discount AS cabin_discount,
	c.description AS cabin_description, c.image AS cabin_image,
	g.full_name AS guest_full_name, g.email AS guest_email,
	g.nationality AS guest_nationality, g.national_id AS guest_national_id,
	g.country_flag AS guest_country_flag
FROM bookings b
JOIN cabins c ON c.id = b.cabin_id
JOIN guests g ON g.id = b.guest_id`

const countBookings = `SELECT COUNT(*) FROM bookings b`

type bookingRow struct {
	ID           int64     `db:"id"`
	CreatedAt    time.Time `db:"created_at"`
	CabinID      int64     `db:"cabin_id"`
	GuestID      int64     `db:"guest_id"`
	StartDate    string    `db:"start_date"`
	EndDate      string    `db:"end_date"`
	NumNights    int       `db:"num_nights"`
	NumGuests    int       `db:"num_guests"`
	HasBreakfast bool      `db:"has_breakfast"`
	Status       string    `db:"status"`
	IsPaid       bool      `db:"is_paid"`
	CabinPrice   int64     `db:"cabin_price"`
	ExtrasPrice  int64     `db:"extras_price"`
	TotalPrice   int64     `db:"total_price"`
	Observations string    `db:"observations"`

	CabinName         string `db:"cabin_name"`
	CabinMaxCapacity  int    `db:"cabin_max_capacity"`
	CabinRegularPrice int64  `db:"cabin_regular_price"`
	CabinDiscount     int64  `db:"cabin_discount"`
	CabinDescription  string `db:"cabin_description"`
	CabinImage        string `db:"cabin_image"`

	GuestFullName    string `db:"guest_full_name"`
	GuestEmail       string `db:"guest_email"`
	GuestNationality string `db:"guest_nationality"`
	GuestNationalID  string `db:"guest_national_id"`
	GuestCountryFlag string `db:"guest_country_flag"`
}

func (r bookingRow) toModel() (models.Booking, error) {
	start, err := models.ParseDate(r.StartDate)
	if err != nil {
		return models.Booking{}, fmt.Errorf("booking %d start_date: %w", r.ID, err)
	}
	end, err := models.ParseDate(r.EndDate)
	if err != nil {
		return models.Booking{}, fmt.Errorf("booking %d end_date: %w", r.ID, err)
	}
	status, ok := models.ParseStatus(r.Status)
	if !ok {
		return models.Booking{}, fmt.Errorf("booking %d has unknown status %q", r.ID, r.Status)
	}

	return models.Booking{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt.UTC(),
		CabinID:      r.CabinID,
		GuestID:      r.GuestID,
		StartDate:    start,
		EndDate:      end,
		NumNights:    r.NumNights,
		NumGuests:    r.NumGuests,
		HasBreakfast: r.HasBreakfast,
		Status:       status,
		IsPaid:       r.IsPaid,
		CabinPrice:   r.CabinPrice,
		ExtrasPrice:  r.ExtrasPrice,
		TotalPrice:   r.TotalPrice,
		Observations: r.Observations,
		Cabin: &models.Cabin{
			ID:           r.CabinID,
			Name:         r.CabinName,
			MaxCapacity:  r.CabinMaxCapacity,
			RegularPrice: r.CabinRegularPrice,
			Discount:     r.CabinDiscount,
			Description:  r.CabinDescription,
			Image:        r.CabinImage,
		},
		Guest: &models.Guest{
			ID:          r.GuestID,
			FullName:    r.GuestFullName,
			Email:       r.GuestEmail,
			Nationality: r.GuestNationality,
			NationalID:  r.GuestNationalID,
			CountryFlag: r.GuestCountryFlag,
		},
	}, nil
}

// ReadBookings runs q against the bookings table with cabin and guest joined in.
func (q *Queries) ReadBookings(ctx context.Context, query store.Query) (store.BookingPage, error) {
	if query.Table != "" && query.Table != store.TableBookings {
		return store.BookingPage{}, fmt.Errorf("unsupported table: %s", query.Table)
	}

	where, whereArgs, err := compileWhere(query)
	if err != nil {
		return store.BookingPage{}, err
	}
	order, err := compileOrder(query.OrderBy)
	if err != nil {
		return store.BookingPage{}, err
	}
	limit, limitArgs, err := compileRange(query.Range)
	if err != nil {
		return store.BookingPage{}, err
	}

	count := int64(-1)
	if query.CountExact {
		if err := sqlx.GetContext(ctx, q.db, &count, q.db.Rebind(countBookings+where), whereArgs...); err != nil {
			return store.BookingPage{}, fmt.Errorf("count bookings: %w", err)
		}
	}

	args := append(append([]any{}, whereArgs...), limitArgs...)
	var rows []bookingRow
	if err := sqlx.SelectContext(ctx, q.db, &rows, q.db.Rebind(selectBookings+where+order+limit), args...); err != nil {
		return store.BookingPage{}, fmt.Errorf("select bookings: %w", err)
	}

	bookings := make([]models.Booking, 0, len(rows))
	for _, row := range rows {
		booking, err := row.toModel()
		if err != nil {
			return store.BookingPage{}, err
		}
		bookings = append(bookings, booking)
	}

	return store.BookingPage{Bookings: bookings, Count: count}, nil
}

func (q *Queries) GetBooking(ctx context.Context, id int64) (models.Booking, error) {
	var row bookingRow
	err := sqlx.GetContext(ctx, q.db, &row, q.db.Rebind(selectBookings+" WHERE b.id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, store.ErrNotFound
		}
		return models.Booking{}, fmt.Errorf("get booking %d: %w", id, err)
	}
	return row.toModel()
}

func (q *Queries) InsertBooking(ctx context.Context, booking models.Booking) (models.Booking, error) {
	if !booking.Status.Valid() {
		booking.Status = models.StatusUnconfirmed
	}
	createdAt := booking.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := q.db.ExecContext(ctx, q.db.Rebind(`
INSERT INTO bookings (
	created_at, cabin_id, guest_id, start_date, end_date, num_nights, num_guests,
	has_breakfast, status, is_paid, cabin_price, extras_price, total_price, observations
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		createdAt.UTC().Format(timestampLayout),
		booking.CabinID,
		booking.GuestID,
		models.FormatDate(booking.StartDate),
		models.FormatDate(booking.EndDate),
		booking.NumNights,
		booking.NumGuests,
		booking.HasBreakfast,
		string(booking.Status),
		booking.IsPaid,
		booking.CabinPrice,
		booking.ExtrasPrice,
		booking.TotalPrice,
		booking.Observations,
	)
	if err != nil {
		return models.Booking{}, fmt.Errorf("insert booking: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Booking{}, fmt.Errorf("booking id: %w", err)
	}
	return q.GetBooking(ctx, id)
}

func patchAssignments(patch models.BookingPatch) ([]string, []any) {
	var sets []string
	var args []any
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}
	if patch.IsPaid != nil {
		sets = append(sets, "is_paid = ?")
		args = append(args, *patch.IsPaid)
	}
	if patch.HasBreakfast != nil {
		sets = append(sets, "has_breakfast = ?")
		args = append(args, *patch.HasBreakfast)
	}
	if patch.ExtrasPrice != nil {
		sets = append(sets, "extras_price = ?")
		args = append(args, *patch.ExtrasPrice)
	}
	if patch.TotalPrice != nil {
		sets = append(sets, "total_price = ?")
		args = append(args, *patch.TotalPrice)
	}
	if patch.Observations != nil {
		sets = append(sets, "observations = ?")
		args = append(args, *patch.Observations)
	}
	return sets, args
}

func (q *Queries) TransitionBooking(ctx context.Context, id int64, from models.Status, patch models.BookingPatch) (models.Booking, error) {
	if patch.Empty() {
		return models.Booking{}, fmt.Errorf("transition of booking %d has no changes", id)
	}
	sets, args := patchAssignments(patch)
	args = append(args, id, string(from))

	result, err := q.db.ExecContext(ctx, q.db.Rebind("UPDATE bookings SET "+strings.Join(sets, ", ")+" WHERE id = ? AND status = ?"), args...)
	if err != nil {
		return models.Booking{}, fmt.Errorf("transition booking %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return models.Booking{}, fmt.Errorf("transition booking %d: %w", id, err)
	}
	if affected == 0 {
		if _, err := q.GetBooking(ctx, id); err != nil {
			return models.Booking{}, err
		}
		return models.Booking{}, store.ErrStatusMismatch
	}
	return q.GetBooking(ctx, id)
}

func (q *Queries) DeleteBooking(ctx context.Context, id int64) error {
	result, err := q.db.ExecContext(ctx, q.db.Rebind("DELETE FROM bookings WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete booking %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete booking %d: %w", id, err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
