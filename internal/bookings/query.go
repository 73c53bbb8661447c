// Package bookings reads and creates bookings through the query cache.
package bookings

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/codr1/CabinDesk/internal/models"
	"github.com/codr1/CabinDesk/internal/store"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

const (
	DefaultSortField = "startDate"
	DefaultDirection = Desc
	// StatusAll disables the status filter.
	StatusAll = "all"
)

var ErrInvalidQuery = errors.New("invalid bookings query")

// sortFields are the fields the bookings table can be ordered by.
var sortFields = map[string]bool{
	"startDate":  true,
	"endDate":    true,
	"createdAt":  true,
	"totalPrice": true,
	"numNights":  true,
	"numGuests":  true,
}

// Filter compares one field with a value. The zero Method is equality.
type Filter struct {
	Field  string
	Value  any
	Method store.Operator
}

type SortBy struct {
	Field     string
	Direction Direction
}

// QuerySpec is one list request. Page is 1-indexed; zero means no paging.
type QuerySpec struct {
	Filter *Filter
	SortBy *SortBy
	Page   int
}

// WithPage returns a copy of s for another page.
func (s QuerySpec) WithPage(page int) QuerySpec {
	s.Page = page
	return s
}

// CacheKey encodes every parameter of s, so two specs share a key only when equal.
func (s QuerySpec) CacheKey() string {
	filter := "none"
	if s.Filter != nil {
		filter = fmt.Sprintf("%s:%s:%v", s.Filter.Field, s.Filter.Method, s.Filter.Value)
	}
	sort := "none"
	if s.SortBy != nil {
		sort = s.SortBy.Field + "-" + string(s.SortBy.Direction)
	}
	return fmt.Sprintf("filter=%s|sort=%s|page=%d", filter, sort, s.Page)
}

// BuildQuery turns s into a store read on bookings. The exact match count is
// always requested so callers can compute the page count.
func BuildQuery(s QuerySpec, pageSize int) store.Query {
	q := store.Query{
		Table:      store.TableBookings,
		CountExact: true,
	}
	if s.Filter != nil {
		q.Where = []store.Condition{{
			Field: s.Filter.Field,
			Op:    s.Filter.Method,
			Value: s.Filter.Value,
		}}
	}
	if s.SortBy != nil {
		q.OrderBy = []store.Order{{
			Field:     s.SortBy.Field,
			Ascending: s.SortBy.Direction == Asc,
		}}
	}
	if s.Page > 0 && pageSize > 0 {
		from := (s.Page - 1) * pageSize
		q.Range = &store.Range{From: from, To: from + pageSize - 1}
	}
	return q
}

// PageCount is ceil(count / pageSize).
func PageCount(count int64, pageSize int) int {
	if count <= 0 || pageSize <= 0 {
		return 0
	}
	return int((count + int64(pageSize) - 1) / int64(pageSize))
}

// ParseQuerySpec reads status, method, sortBy and page from URL query values.
// Missing values fall back to every status, startDate-desc and page 1. method
// picks the status comparison (eq or neq). page is capped so its row range
// fits in an int for the given page size.
func ParseQuerySpec(values url.Values, pageSize int) (QuerySpec, error) {
	var spec QuerySpec

	method, err := store.ParseOperator(strings.TrimSpace(values.Get("method")))
	if err != nil {
		return QuerySpec{}, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	if method != store.OpEq && method != store.OpNeq {
		return QuerySpec{}, fmt.Errorf("%w: status cannot be compared with %s", ErrInvalidQuery, method)
	}

	if raw := strings.TrimSpace(values.Get("status")); raw != "" && raw != StatusAll {
		status, ok := models.ParseStatus(raw)
		if !ok {
			return QuerySpec{}, fmt.Errorf("%w: unknown status %q", ErrInvalidQuery, raw)
		}
		spec.Filter = &Filter{Field: "status", Value: status, Method: method}
	} else if method != store.OpEq {
		return QuerySpec{}, fmt.Errorf("%w: method %s needs a status", ErrInvalidQuery, method)
	}

	sortBy, err := parseSortBy(values.Get("sortBy"))
	if err != nil {
		return QuerySpec{}, err
	}
	spec.SortBy = &sortBy

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	spec.Page = 1
	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return QuerySpec{}, fmt.Errorf("%w: page must be a positive integer", ErrInvalidQuery)
		}
		if page > math.MaxInt/pageSize {
			return QuerySpec{}, fmt.Errorf("%w: page %d is out of range", ErrInvalidQuery, page)
		}
		spec.Page = page
	}

	return spec, nil
}

func parseSortBy(raw string) (SortBy, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SortBy{Field: DefaultSortField, Direction: DefaultDirection}, nil
	}
	idx := strings.LastIndex(raw, "-")
	if idx <= 0 {
		return SortBy{}, fmt.Errorf("%w: sortBy must look like field-direction", ErrInvalidQuery)
	}
	field, direction := raw[:idx], Direction(raw[idx+1:])
	if !sortFields[field] {
		return SortBy{}, fmt.Errorf("%w: cannot sort by %q", ErrInvalidQuery, field)
	}
	if direction != Asc && direction != Desc {
		return SortBy{}, fmt.Errorf("%w: sort direction must be asc or desc", ErrInvalidQuery)
	}
	return SortBy{Field: field, Direction: direction}, nil
}
