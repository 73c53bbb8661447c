package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/codr1/CabinDesk/internal/models"
	"github.com/codr1/CabinDesk/internal/store"
)

type cabinRow struct {
	ID           int64  `db:"id"`
	Name         string `db:"name"`
	MaxCapacity  int    `db:"max_capacity"`
	RegularPrice int64  `db:"regular_price"`
	Discount     int64  `db:"discount"`
	Description  string `db:"description"`
	Image        string `db:"image"`
}

func (r cabinRow) toModel() models.Cabin {
	return models.Cabin{
		ID:           r.ID,
		Name:         r.Name,
		MaxCapacity:  r.MaxCapacity,
		RegularPrice: r.RegularPrice,
		Discount:     r.Discount,
		Description:  r.Description,
		Image:        r.Image,
	}
}

const selectCabins = `SELECT id, name, max_capacity, regular_price, discount, description, image FROM cabins`

func (q *Queries) ListCabins(ctx context.Context) ([]models.Cabin, error) {
	var rows []cabinRow
	if err := sqlx.SelectContext(ctx, q.db, &rows, selectCabins+" ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list cabins: %w", err)
	}
	cabins := make([]models.Cabin, 0, len(rows))
	for _, row := range rows {
		cabins = append(cabins, row.toModel())
	}
	return cabins, nil
}

func (q *Queries) GetCabin(ctx context.Context, id int64) (models.Cabin, error) {
	var row cabinRow
	if err := sqlx.GetContext(ctx, q.db, &row, q.db.Rebind(selectCabins+" WHERE id = ?"), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Cabin{}, store.ErrNotFound
		}
		return models.Cabin{}, fmt.Errorf("get cabin %d: %w", id, err)
	}
	return row.toModel(), nil
}

func (q *Queries) CountCabins(ctx context.Context) (int64, error) {
	var count int64
	if err := sqlx.GetContext(ctx, q.db, &count, "SELECT COUNT(*) FROM cabins"); err != nil {
		return 0, fmt.Errorf("count cabins: %w", err)
	}
	return count, nil
}

func (q *Queries) InsertCabin(ctx context.Context, cabin models.Cabin) (models.Cabin, error) {
	result, err := q.db.ExecContext(ctx, q.db.Rebind(`
INSERT INTO cabins (name, max_capacity, regular_price, discount, description, image)
VALUES (?, ?, ?, ?, ?, ?)`),
		cabin.Name, cabin.MaxCapacity, cabin.RegularPrice, cabin.Discount, cabin.Description, cabin.Image,
	)
	if err != nil {
		return models.Cabin{}, fmt.Errorf("insert cabin %q: %w", cabin.Name, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Cabin{}, fmt.Errorf("cabin id: %w", err)
	}
	cabin.ID = id
	return cabin, nil
}

func (q *Queries) InsertGuest(ctx context.Context, guest models.Guest) (models.Guest, error) {
	result, err := q.db.ExecContext(ctx, q.db.Rebind(`
INSERT INTO guests (full_name, email, nationality, national_id, country_flag)
VALUES (?, ?, ?, ?, ?)`),
		guest.FullName, guest.Email, guest.Nationality, guest.NationalID, guest.CountryFlag,
	)
	if err != nil {
		return models.Guest{}, fmt.Errorf("insert guest %q: %w", guest.Email, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Guest{}, fmt.Errorf("guest id: %w", err)
	}
	guest.ID = id
	return guest, nil
}

// DeleteAll removes every booking, guest, and cabin. Used by the sample data seeder.
func (q *Queries) DeleteAll(ctx context.Context) error {
	for _, table := range []string{store.TableBookings, store.TableGuests, store.TableCabins} {
		if _, err := q.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return nil
}
