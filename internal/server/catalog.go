package server

import (
	"context"
	"database/sql"
	"fmt"

	"bookcatalog/internal/book"
	"bookcatalog/internal/config"
	"bookcatalog/internal/store"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Catalog is an opened book repository and the handles needed to manage it.
type Catalog struct {
	Repo   book.Repository
	Pinger Pinger
	// SQL is a database/sql view of the store, used for migrations.
	SQL    *sql.DB
	Driver store.Driver
	close  func()
}

func (c *Catalog) Close() {
	if c.close != nil {
		c.close()
	}
}

// OpenCatalog connects to the configured store and, when enabled, migrates it.
func OpenCatalog(ctx context.Context, cfg config.DBConfig, search config.SearchConfig, logger zerolog.Logger) (*Catalog, error) {
	driver, err := store.ParseDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}
	repoCfg := book.RepoConfig{
		QueryTimeout:        cfg.QueryTimeout,
		CaseSensitiveSearch: search.CaseSensitive,
	}

	var c *Catalog
	switch driver {
	case store.DriverPostgres:
		pool, err := store.OpenPostgres(ctx, cfg.DSN, cfg.MaxConns)
		if err != nil {
			return nil, err
		}
		db := stdlib.OpenDBFromPool(pool)
		c = &Catalog{
			Repo:   book.NewPostgresRepo(pool, repoCfg),
			Pinger: pingFunc(pool.Ping),
			SQL:    db,
			Driver: driver,
			close: func() {
				_ = db.Close()
				pool.Close()
			},
		}
	default:
		db, err := store.OpenSQLite(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		c = &Catalog{
			Repo:   book.NewSQLiteRepo(db, repoCfg),
			Pinger: pingFunc(db.PingContext),
			SQL:    db,
			Driver: driver,
			close:  func() { _ = db.Close() },
		}
	}
	logger.Info().Str("driver", string(driver)).Str("dsn", store.RedactDSN(cfg.DSN)).Msg("database connection OK")

	if cfg.Migrate {
		if err := store.Migrate(ctx, c.SQL, driver); err != nil {
			c.Close()
			return nil, fmt.Errorf("migrate %s: %w", driver, err)
		}
		logger.Info().Msg("database schema up to date")
	}
	return c, nil
}
