package entities

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")

// Field length limits.
const (
	MaxTitleLength    = 200
	MaxImprintLength  = 200
	MaxSummaryLength  = 1000
	MaxISBNLength     = 13
	MaxNameLength     = 100
	MaxCategoryLength = 200
)

// ValidationError collects field-level constraint violations.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty error ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for a field. The first message per field wins.
func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// Has reports whether field has a recorded violation.
func (e *ValidationError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// OrNil returns nil when nothing was recorded, so callers can `return v.OrNil()`.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

func checkLength(v *ValidationError, field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		v.Add(field, fmt.Sprintf("ensure this value has at most %d characters (it has %d)", max, utf8.RuneCountInString(value)))
	}
}

func checkRequired(v *ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "this field is required")
	}
}

func (g *Genre) Validate() error {
	v := NewValidationError()
	checkRequired(v, "name", g.Name)
	checkLength(v, "name", g.Name, MaxCategoryLength)
	return v.OrNil()
}

func (l *Language) Validate() error {
	v := NewValidationError()
	checkRequired(v, "name", l.Name)
	checkLength(v, "name", l.Name, MaxCategoryLength)
	return v.OrNil()
}

func (a *Author) Validate() error {
	v := NewValidationError()
	checkRequired(v, "first_name", a.FirstName)
	checkLength(v, "first_name", a.FirstName, MaxNameLength)
	checkRequired(v, "last_name", a.LastName)
	checkLength(v, "last_name", a.LastName, MaxNameLength)
	if a.DateOfBirth != nil && a.DateOfDeath != nil && a.DateOfDeath.Before(*a.DateOfBirth) {
		v.Add("date_of_death", "date of death cannot be before date of birth")
	}
	return v.OrNil()
}

func (b *Book) Validate() error {
	v := NewValidationError()
	checkRequired(v, "title", b.Title)
	checkLength(v, "title", b.Title, MaxTitleLength)
	checkLength(v, "summary", b.Summary, MaxSummaryLength)
	checkLength(v, "isbn", b.ISBN, MaxISBNLength)
	return v.OrNil()
}

func (bi *BookInstance) Validate() error {
	v := NewValidationError()
	checkRequired(v, "imprint", bi.Imprint)
	checkLength(v, "imprint", bi.Imprint, MaxImprintLength)
	if bi.Status != "" && !bi.Status.Valid() {
		v.Add("status", fmt.Sprintf("%q is not a valid loan status", bi.Status))
	}
	return v.OrNil()
}
