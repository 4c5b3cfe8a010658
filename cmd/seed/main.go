package main

import (
	"context"
	"fmt"

	"bookcatalog/internal/book"
	"bookcatalog/internal/config"
	"bookcatalog/internal/logger"
	"bookcatalog/internal/server"
)

func intPtr(v int) *int { return &v }

var sampleBooks = []book.Input{
	{Title: "Alice's Adventures in Wonderland", Author: "Lewis Carroll", Year: intPtr(1865)},
	{Title: "Through the Looking-Glass", Author: "Lewis Carroll", Year: intPtr(1871)},
	{Title: "Pride and Prejudice", Author: "Jane Austen", Year: intPtr(1813)},
	{Title: "Moby-Dick", Author: "Herman Melville", Year: intPtr(1851)},
	{Title: "The Hobbit", Author: "J. R. R. Tolkien", Year: intPtr(1937)},
	{Title: "Nineteen Eighty-Four", Author: "George Orwell", Year: intPtr(1949)},
	{Title: "Dune", Author: "Frank Herbert", Year: intPtr(1965)},
	{Title: "Beowulf", Author: "Unknown"},
}

func main() {
	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		log := logger.New(logger.Options{Format: "console"})
		log.Fatal().Err(err).Msg("cannot load configuration")
	}
	log := logger.New(logger.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "bookcatalog-seed",
		Env:     cfg.Env,
	})

	ctx := context.Background()
	dbCfg := cfg.DB
	dbCfg.Migrate = true

	catalog, err := server.OpenCatalog(ctx, dbCfg, cfg.Search, log)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open catalog store")
	}
	defer catalog.Close()

	n, err := seedCatalog(ctx, book.NewService(catalog.Repo), sampleBooks)
	if err != nil {
		catalog.Close()
		log.Fatal().Err(err).Msg("seed failed")
	}
	if n == 0 {
		log.Info().Msg("catalog already has books, nothing to seed")
		return
	}
	log.Info().Int("count", n).Msg("catalog seeded")
}

// seedCatalog inserts books into an empty catalog and reports how many it added.
func seedCatalog(ctx context.Context, svc *book.Service, books []book.Input) (int, error) {
	existing, err := svc.List(ctx, book.ListQuery{Limit: 1})
	if err != nil {
		return 0, fmt.Errorf("check existing books: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	for i, in := range books {
		if _, err := svc.Create(ctx, in); err != nil {
			return i, fmt.Errorf("create %q: %w", in.Title, err)
		}
	}
	return len(books), nil
}
