package schema

import (
	"math"
	"strconv"
	"strings"
)

// Pagination bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 50
)

// PageQuery is a validated page/limit pair.
type PageQuery struct {
	Page  int `json:"page" validate:"gte=1"`
	Limit int `json:"limit" validate:"gte=1,lte=50"`
}

// Offset returns the number of rows to skip for this page. The query must
// have passed Validate.
func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// ParsePageQuery coerces raw query-string values into a PageQuery.
// Empty values take the defaults. Non-integers, values below 1, a limit
// above MaxLimit and a page whose offset overflows are rejected.
func ParsePageQuery(rawPage, rawLimit string) (PageQuery, error) {
	verr := &ValidationError{}
	q := PageQuery{
		Page:  parseQueryInt(verr, "page", rawPage, DefaultPage),
		Limit: parseQueryInt(verr, "limit", rawLimit, DefaultLimit),
	}
	if !verr.Empty() {
		return PageQuery{}, verr
	}
	if err := q.Validate(); err != nil {
		return PageQuery{}, err
	}
	return q, nil
}

// Validate checks the bounds of an already-typed query, including that the
// offset of the requested page fits in an int.
func (q PageQuery) Validate() error {
	if err := Validate(q); err != nil {
		return err
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return NewValidationError("page", "is too large")
	}
	return nil
}

// ParseID parses a positive integer path identifier.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 1 {
		return 0, NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}

func parseQueryInt(verr *ValidationError, field, raw string, defaultValue int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		verr.Add(field, "must be an integer")
		return 0
	}
	return n
}
