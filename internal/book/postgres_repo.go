package book

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var readOnly = pgx.TxOptions{AccessMode: pgx.ReadOnly}

type PostgresRepo struct {
	db  *pgxpool.Pool
	cfg RepoConfig
}

func NewPostgresRepo(db *pgxpool.Pool, cfg RepoConfig) *PostgresRepo {
	return &PostgresRepo{db: db, cfg: cfg}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.cfg.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.cfg.QueryTimeout)
}

func scanPGBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Year)
	return b, err
}

func (r *PostgresRepo) Create(ctx context.Context, in Input) (Book, error) {
	const query = `
		INSERT INTO books (title, author, year)
		VALUES ($1, $2, $3)
		RETURNING ` + bookColumns

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var out Book
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		out, err = scanPGBook(tx.QueryRow(ctx, query, in.Title, in.Author, in.Year))
		return err
	})
	if err != nil {
		return Book{}, fmt.Errorf("insert book: %w", err)
	}
	return out, nil
}

func (r *PostgresRepo) List(ctx context.Context, q ListQuery) ([]Book, error) {
	const query = `
		SELECT ` + bookColumns + `
		FROM books
		ORDER BY id ASC
		LIMIT $1 OFFSET $2`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var out []Book
	err := pgx.BeginTxFunc(ctx, r.db, readOnly, func(tx pgx.Tx) error {
		var err error
		out, err = collectBooks(ctx, tx, query, q.Limit, q.Skip)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return out, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id int64) (Book, error) {
	const query = `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var out Book
	err := pgx.BeginTxFunc(ctx, r.db, readOnly, func(tx pgx.Tx) error {
		var err error
		out, err = scanPGBook(tx.QueryRow(ctx, query, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, fmt.Errorf("get book %d: %w", id, err)
	}
	return out, nil
}

func (r *PostgresRepo) Update(ctx context.Context, id int64, in Input) (Book, error) {
	const query = `
		UPDATE books
		SET title = $1, author = $2, year = $3
		WHERE id = $4
		RETURNING ` + bookColumns

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var out Book
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		out, err = scanPGBook(tx.QueryRow(ctx, query, in.Title, in.Author, in.Year, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, fmt.Errorf("update book %d: %w", id, err)
	}
	return out, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	return nil
}

func (r *PostgresRepo) Search(ctx context.Context, q SearchQuery) ([]Book, error) {
	where, args := buildSearch(dialectPostgres, q, r.cfg.CaseSensitiveSearch)
	query := fmt.Sprintf(`
		SELECT %s
		FROM books
		%s
		ORDER BY id ASC`, bookColumns, where)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var out []Book
	err := pgx.BeginTxFunc(ctx, r.db, readOnly, func(tx pgx.Tx) error {
		var err error
		out, err = collectBooks(ctx, tx, query, args...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return out, nil
}

func collectBooks(ctx context.Context, tx pgx.Tx, query string, args ...any) ([]Book, error) {
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanPGBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
