package book

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookcatalog/internal/store"
)

const bookColumns = "id, title, author, year"

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLBook(row scanner) (Book, error) {
	var (
		b    Book
		year sql.NullInt64
	)
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &year); err != nil {
		return Book{}, err
	}
	if year.Valid {
		y := int(year.Int64)
		b.Year = &y
	}
	return b, nil
}

// SQLiteRepo stores books through database/sql on the modernc SQLite driver.
type SQLiteRepo struct {
	db  *sql.DB
	cfg RepoConfig
}

func NewSQLiteRepo(db *sql.DB, cfg RepoConfig) *SQLiteRepo {
	return &SQLiteRepo{db: db, cfg: cfg}
}

func (r *SQLiteRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.cfg.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.cfg.QueryTimeout)
}

func (r *SQLiteRepo) Create(ctx context.Context, in Input) (Book, error) {
	const query = `
		INSERT INTO books (title, author, year)
		VALUES (?, ?, ?)
		RETURNING ` + bookColumns

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var out Book
	err := store.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		b, err := scanSQLBook(tx.QueryRowContext(ctx, query, in.Title, in.Author, nullableYear(in.Year)))
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return Book{}, fmt.Errorf("insert book: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepo) List(ctx context.Context, q ListQuery) ([]Book, error) {
	const query = `
		SELECT ` + bookColumns + `
		FROM books
		ORDER BY id ASC
		LIMIT ? OFFSET ?`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var out []Book
	err := store.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		out, err = queryBooks(ctx, tx, query, q.Limit, q.Skip)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id int64) (Book, error) {
	const query = `SELECT ` + bookColumns + ` FROM books WHERE id = ?`

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var out Book
	err := store.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		b, err := scanSQLBook(tx.QueryRowContext(ctx, query, id))
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, fmt.Errorf("get book %d: %w", id, err)
	}
	return out, nil
}

func (r *SQLiteRepo) Update(ctx context.Context, id int64, in Input) (Book, error) {
	const query = `
		UPDATE books
		SET title = ?, author = ?, year = ?
		WHERE id = ?
		RETURNING ` + bookColumns

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var out Book
	err := store.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		b, err := scanSQLBook(tx.QueryRowContext(ctx, query, in.Title, in.Author, nullableYear(in.Year), id))
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, fmt.Errorf("update book %d: %w", id, err)
	}
	return out, nil
}

func (r *SQLiteRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := store.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
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

func (r *SQLiteRepo) Search(ctx context.Context, q SearchQuery) ([]Book, error) {
	where, args := buildSearch(dialectSQLite, q, r.cfg.CaseSensitiveSearch)
	query := fmt.Sprintf(`
		SELECT %s
		FROM books
		%s
		ORDER BY id ASC`, bookColumns, where)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var out []Book
	err := store.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		out, err = queryBooks(ctx, tx, query, args...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return out, nil
}

func queryBooks(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]Book, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanSQLBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
