package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"bookcatalog/internal/book"
	"bookcatalog/internal/config"
	"bookcatalog/internal/httpx"
	"bookcatalog/internal/logger"
	"bookcatalog/internal/server"
)

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
		Service: "bookcatalog",
		Env:     cfg.Env,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := server.OpenCatalog(ctx, cfg.DB, cfg.Search, log)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open catalog store")
	}
	defer catalog.Close()

	var limiter *httpx.RateLimitMiddleware
	if cfg.RateLimit.RPS > 0 {
		limiter = httpx.NewRateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		go limiter.Run(ctx.Done())
	}

	router := server.NewRouter(cfg, log, book.NewService(catalog.Repo), catalog.Pinger, httpx.NewMetrics(), limiter)

	if err := server.Run(ctx, cfg.Server, router, log); err != nil {
		log.Error().Err(err).Msg("server error")
		catalog.Close()
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}
