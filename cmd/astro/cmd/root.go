// Package cmd provides the CLI commands for astro.
package cmd

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	service "github.com/okian/astrocore/internal/app"
	"github.com/okian/astrocore/internal/config"
	"github.com/okian/astrocore/internal/domain/ephemeris"
	"github.com/okian/astrocore/internal/domain/signs"
	"github.com/okian/astrocore/pkg/logger"
)

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	cfgFile string
	verbose bool
	cfg     *config.Config
}

// NewRootCommand builds the astro command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "astro",
		Short: "Resolve sun, moon and rising signs and score compatibility",
		Long: `astro computes zodiac placements from birth data and weighted
compatibility scores from category score sets.

Examples:
  astro signs --date 1990-06-15 --time 14:30 --lat 40.7128 --lon -74.006 --tz America/New_York
  astro score --scores pair.json --relationship consistent
  astro days --tz Pacific/Auckland
  astro serve`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&opts.cfgFile, "config", os.Getenv(config.EnvConfigFile), "YAML config file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newSignsCommand(opts))
	root.AddCommand(newScoreCommand(opts))
	root.AddCommand(newDaysCommand(opts))
	root.AddCommand(newServeCommand(opts))
	return root
}

// Execute runs the CLI with a context cancelled on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

func (o *rootOptions) init(ctx context.Context) error {
	cfg, err := config.LoadFile(ctx, o.cfgFile)
	if err != nil {
		return err
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	if err := logger.Init(logger.WithOutput(os.Stderr), logger.WithFormat(logger.Format(cfg.LogFormat))); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}
	o.cfg = cfg
	return nil
}

// newService builds a one-shot service for the offline subcommands. Caching
// is pointless for a single call, so the backend is forced off.
func (o *rootOptions) newService(ctx context.Context, houses, policy string) (*service.Service, error) {
	cfg := *o.cfg
	cfg.CacheBackend = config.CacheNone
	opts, err := service.OptionsFromConfig(ctx, &cfg)
	if err != nil {
		return nil, err
	}
	if houses != "" {
		hs, err := ephemeris.ParseHouseSystem(houses)
		if err != nil {
			return nil, err
		}
		opts = append(opts, service.WithHouseSystem(hs))
	}
	if policy != "" {
		p, err := signs.ParseUnknownTimePolicy(policy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, service.WithUnknownTimePolicy(p))
	}
	opts = append(opts, service.WithLogger(logger.Get().Named("cli")))
	return service.New(opts...), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
