package book

import (
	"context"
)

// Repository defines the contract for book data storage.
// Every method runs in its own storage session.
type Repository interface {
	Create(ctx context.Context, in Input) (Book, error)
	List(ctx context.Context, q ListQuery) ([]Book, error)
	GetByID(ctx context.Context, id int64) (Book, error)
	Update(ctx context.Context, id int64, in Input) (Book, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, q SearchQuery) ([]Book, error)
}
