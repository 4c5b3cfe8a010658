package book

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = errors.New("book not found")

// DefaultListLimit is used when a list request carries no limit.
const DefaultListLimit = 10

// Book represents a book entity.
type Book struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   *int   `json:"year"`
}

// Input is the payload for creating or replacing a book.
type Input struct {
	Title  string `json:"title" validate:"required,max=255"`
	Author string `json:"author" validate:"required,max=255"`
	Year   *int   `json:"year" validate:"omitempty,gte=0,lte=9999"`
}

// Normalize trims surrounding whitespace from the text fields.
func (in Input) Normalize() Input {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	return in
}

// ListQuery paginates the catalog in insertion order.
type ListQuery struct {
	Skip  int
	Limit int
}

// SearchQuery filters the catalog. Zero values mean the filter is not set.
type SearchQuery struct {
	Title  string
	Author string
	Year   *int
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when input is missing or malformed.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Message)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}
