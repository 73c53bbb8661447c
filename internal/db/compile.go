package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/codr1/CabinDesk/internal/models"
	"github.com/codr1/CabinDesk/internal/store"
)

const timestampLayout = "2006-01-02 15:04:05"

type columnKind int

const (
	kindPlain columnKind = iota
	kindDate
	kindTimestamp
)

type column struct {
	name string
	kind columnKind
}

// bookingColumns maps query field names onto the bookings table.
// Both the camelCase wire names and the snake_case column names are accepted.
var bookingColumns = map[string]column{
	"id":           {name: "b.id"},
	"createdAt":    {name: "b.created_at", kind: kindTimestamp},
	"created_at":   {name: "b.created_at", kind: kindTimestamp},
	"cabinId":      {name: "b.cabin_id"},
	"guestId":      {name: "b.guest_id"},
	"startDate":    {name: "b.start_date", kind: kindDate},
	"endDate":      {name: "b.end_date", kind: kindDate},
	"numNights":    {name: "b.num_nights"},
	"numGuests":    {name: "b.num_guests"},
	"hasBreakfast": {name: "b.has_breakfast"},
	"status":       {name: "b.status"},
	"isPaid":       {name: "b.is_paid"},
	"cabinPrice":   {name: "b.cabin_price"},
	"extrasPrice":  {name: "b.extras_price"},
	"totalPrice":   {name: "b.total_price"},
}

var sqlOperators = map[store.Operator]string{
	store.OpEq:  "=",
	store.OpNeq: "<>",
	store.OpGt:  ">",
	store.OpGte: ">=",
	store.OpLt:  "<",
	store.OpLte: "<=",
}

func lookupColumn(field string) (column, error) {
	col, ok := bookingColumns[field]
	if !ok {
		return column{}, fmt.Errorf("%w: %s", store.ErrUnknownField, field)
	}
	return col, nil
}

func bindValue(col column, value any) any {
	switch v := value.(type) {
	case time.Time:
		switch col.kind {
		case kindDate:
			return models.FormatDate(v)
		case kindTimestamp:
			return v.UTC().Format(timestampLayout)
		}
		return v
	case models.Status:
		return string(v)
	}
	return value
}

func compileCondition(cond store.Condition) (string, any, error) {
	col, err := lookupColumn(cond.Field)
	if err != nil {
		return "", nil, err
	}
	op, ok := sqlOperators[cond.Op]
	if !ok {
		return "", nil, fmt.Errorf("unsupported operator %s", cond.Op)
	}
	return col.name + " " + op + " ?", bindValue(col, cond.Value), nil
}

func compileConditions(conds []store.Condition) ([]string, []any, error) {
	clauses := make([]string, 0, len(conds))
	args := make([]any, 0, len(conds))
	for _, cond := range conds {
		clause, arg, err := compileCondition(cond)
		if err != nil {
			return nil, nil, err
		}
		clauses = append(clauses, clause)
		args = append(args, arg)
	}
	return clauses, args, nil
}

// compileWhere renders the WHERE clause of q, or an empty string when q has no conditions.
func compileWhere(q store.Query) (string, []any, error) {
	clauses, args, err := compileConditions(q.Where)
	if err != nil {
		return "", nil, err
	}

	if len(q.AnyOf) > 0 {
		groups := make([]string, 0, len(q.AnyOf))
		for _, group := range q.AnyOf {
			groupClauses, groupArgs, err := compileConditions(group)
			if err != nil {
				return "", nil, err
			}
			if len(groupClauses) == 0 {
				continue
			}
			groups = append(groups, "("+strings.Join(groupClauses, " AND ")+")")
			args = append(args, groupArgs...)
		}
		if len(groups) > 0 {
			clauses = append(clauses, "("+strings.Join(groups, " OR ")+")")
		}
	}

	if len(clauses) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func compileOrder(orders []store.Order) (string, error) {
	if len(orders) == 0 {
		return " ORDER BY b.id", nil
	}
	parts := make([]string, 0, len(orders)+1)
	for _, order := range orders {
		col, err := lookupColumn(order.Field)
		if err != nil {
			return "", err
		}
		direction := "DESC"
		if order.Ascending {
			direction = "ASC"
		}
		parts = append(parts, col.name+" "+direction)
	}
	// Tie-break on id so page slices stay stable across reads.
	parts = append(parts, "b.id")
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

func compileRange(r *store.Range) (string, []any, error) {
	if r == nil {
		return "", nil, nil
	}
	if r.From < 0 || r.To < r.From {
		return "", nil, fmt.Errorf("invalid range %d-%d", r.From, r.To)
	}
	return " LIMIT ? OFFSET ?", []any{r.Limit(), r.From}, nil
}
