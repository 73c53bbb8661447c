package apiutil

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

func ParsePositiveInt64Field(raw string, field string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, FieldError{Field: field, Reason: "is required"}
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, FieldError{Field: field, Reason: "must be greater than 0"}
	}
	return value, nil
}

// IDFromPath reads a positive integer path wildcard such as {id}.
func IDFromPath(r *http.Request, name string) (int64, error) {
	id, err := ParsePositiveInt64Field(r.PathValue(name), name)
	if err != nil {
		return 0, fmt.Errorf("path %w", err)
	}
	return id, nil
}
