// Package server wires the catalog handlers, health endpoints and middleware
// into an http.Handler and runs it.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"bookcatalog/internal/book"
	"bookcatalog/internal/config"
	"bookcatalog/internal/httpx"

	"github.com/rs/zerolog"
)

const readyTimeout = 500 * time.Millisecond

// NewRouter builds the full middleware chain around the catalog routes.
func NewRouter(cfg *config.Config, logger zerolog.Logger, books *book.Service, pinger Pinger, metrics *httpx.Metrics, limiter *httpx.RateLimitMiddleware) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthcheck", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONOK(w, map[string]string{"status": "ok"})
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := pinger.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	router.Handle("GET /metrics", metrics.Handler())

	book.NewHTTPHandler(books, logger).RegisterRoutes(router)

	mws := []httpx.Middleware{
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(logger),
		httpx.RecoveryMiddleware(logger),
		metrics.Middleware,
		httpx.SecurityHeadersMiddleware(cfg.Server.EnableHSTS),
		httpx.CORSMiddleware(cfg.CORSOriginList()),
		httpx.RequestSizeLimitMiddleware(cfg.Server.MaxBodyBytes),
	}
	if limiter != nil {
		mws = append(mws, limiter.Middleware)
	}

	return httpx.Chain(router, mws...)
}

// Run serves handler until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, cfg config.ServerConfig, handler http.Handler, logger zerolog.Logger) error {
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
