package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/astrocore/internal/config"
	"github.com/okian/astrocore/internal/server"
	"github.com/okian/astrocore/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	log, err := initLogger(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = logger.Sync() }()

	if err := server.Run(ctx, cfg, log, nil); err != nil {
		log.Error(ctx, "server exited", logger.Error(err))
		return 1
	}
	return 0
}

// initLogger applies the configured format and level, falling back to info
// on an invalid level.
func initLogger(ctx context.Context, cfg *config.Config) (logger.Logger, error) {
	if err := logger.Init(logger.WithFormat(logger.Format(cfg.LogFormat))); err != nil {
		return nil, err
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return log, nil
}
