// Package server assembles the HTTP process: configuration, service,
// routes and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/okian/astrocore/internal/adapters/http/api"
	"github.com/okian/astrocore/internal/adapters/http/swagger"
	service "github.com/okian/astrocore/internal/app"
	"github.com/okian/astrocore/internal/config"
	"github.com/okian/astrocore/pkg/logger"
	"github.com/okian/astrocore/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// ErrServe wraps listener and serve failures.
var ErrServe = errors.New("http server failed")

// NewHandler registers the API and documentation routes for svc.
func NewHandler(ctx context.Context, svc *service.Service, log logger.Logger) http.Handler {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, api.WithLogger(log.Named("api"))).Register(ctx, mux)
	return mux
}

// Run builds the service from cfg and serves HTTP until ctx is cancelled.
// If ready is non-nil it receives the bound address once listening.
func Run(ctx context.Context, cfg *config.Config, log logger.Logger, ready chan<- string) error {
	opts, err := service.OptionsFromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	opts = append(opts, service.WithLogger(log.Named("service")))

	svc := service.New(opts...)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop(context.Background())

	metrics.RegisterRuntimeCollectors()

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("%w: listen %s: %w", ErrServe, cfg.Addr, err)
	}

	srv := &http.Server{
		Handler:           NewHandler(ctx, svc, log),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("%w: %w", ErrServe, err)
		}
		close(errCh)
	}()
	if ready != nil {
		ready <- ln.Addr().String()
	}

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}
