package book

import (
	"context"
)

// Service provides book-related business logic.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates the input and stores a new book.
func (s *Service) Create(ctx context.Context, in Input) (Book, error) {
	in = in.Normalize()
	if err := Validate(in); err != nil {
		return Book{}, err
	}
	return s.repo.Create(ctx, in)
}

// List returns a page of books in insertion order.
func (s *Service) List(ctx context.Context, q ListQuery) ([]Book, error) {
	if q.Skip < 0 {
		return nil, newValidationError("skip", "skip must be greater than or equal to 0")
	}
	if q.Limit < 0 {
		return nil, newValidationError("limit", "limit must be greater than or equal to 0")
	}
	if q.Limit == 0 {
		return []Book{}, nil
	}
	return s.repo.List(ctx, q)
}

// Get returns the book with the given id.
func (s *Service) Get(ctx context.Context, id int64) (Book, error) {
	if id <= 0 {
		return Book{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Update replaces every field of an existing book.
func (s *Service) Update(ctx context.Context, id int64, in Input) (Book, error) {
	in = in.Normalize()
	if err := Validate(in); err != nil {
		return Book{}, err
	}
	if id <= 0 {
		return Book{}, ErrNotFound
	}
	return s.repo.Update(ctx, id, in)
}

// Delete removes a book.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

// Search returns books matching every supplied filter.
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]Book, error) {
	return s.repo.Search(ctx, q)
}
