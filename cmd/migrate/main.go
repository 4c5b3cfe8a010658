package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"bookcatalog/internal/config"
	"bookcatalog/internal/logger"
	"bookcatalog/internal/server"
	"bookcatalog/internal/store"

	"github.com/pressly/goose/v3"
)

var errUnknownCommand = errors.New("unknown command")

func main() {
	command := flag.String("command", "up", "Migration command: up, down, status, version")
	flag.Parse()

	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		log := logger.New(logger.Options{Format: "console"})
		log.Fatal().Err(err).Msg("cannot load configuration")
	}
	log := logger.New(logger.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "bookcatalog-migrate",
		Env:     cfg.Env,
	})

	ctx := context.Background()
	dbCfg := cfg.DB
	dbCfg.Migrate = false

	catalog, err := server.OpenCatalog(ctx, dbCfg, cfg.Search, log)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open catalog store")
	}
	defer catalog.Close()

	provider, err := store.NewMigrator(catalog.SQL, catalog.Driver)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot build migrator")
	}

	if err := run(ctx, provider, *command, os.Stdout); err != nil {
		log.Error().Err(err).Str("command", *command).Msg("migration failed")
		catalog.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, provider *goose.Provider, command string, out io.Writer) error {
	switch command {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		for _, res := range results {
			fmt.Fprintf(out, "OK   %s (%s)\n", res.Source.Path, res.Duration)
		}
		if len(results) == 0 {
			fmt.Fprintln(out, "no migrations to apply")
		}
	case "down":
		res, err := provider.Down(ctx)
		if err != nil {
			return fmt.Errorf("roll back migration: %w", err)
		}
		fmt.Fprintf(out, "OK   %s (%s)\n", res.Source.Path, res.Duration)
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("migration status: %w", err)
		}
		for _, s := range statuses {
			applied := "Pending"
			if s.State == goose.StateApplied {
				applied = s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(out, "%-20s %s\n", applied, s.Source.Path)
		}
	case "version":
		v, err := provider.GetDBVersion(ctx)
		if err != nil {
			return fmt.Errorf("database version: %w", err)
		}
		fmt.Fprintf(out, "version %d\n", v)
	default:
		return fmt.Errorf("%w %q, use: up, down, status, version", errUnknownCommand, command)
	}
	return nil
}
