package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jjenkins/adressen/internal/config"
	"github.com/jjenkins/adressen/internal/service"
	"github.com/jjenkins/adressen/internal/store"
)

var (
	cfgFile    string
	cacheStore string
	cacheDSN   string
	staleness  time.Duration
	logLevel   string

	cfg    config.Config
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "adressen",
	Short: "Browse the Rostock address list",
	Long: `Adressen serves a filterable, paginated table of all street addresses of
the Hanse- und Universitätsstadt Rostock, taken from the OpenData.HRO
address list. Responses are cached locally and refreshed once the
staleness window has passed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile, flagOverrides(cmd))
		if err != nil {
			return err
		}

		logger = newLogger(cfg.LogLevel)
		return nil
	},
}

// flagOverrides applies the flags the user set explicitly. They win over
// file and environment.
func flagOverrides(cmd *cobra.Command) func(*config.Config) {
	flags := cmd.Flags()
	return func(c *config.Config) {
		if flags.Changed("cache-store") {
			c.SetCacheStore(cacheStore)
		}
		if flags.Changed("cache-dsn") {
			c.Cache.DSN = cacheDSN
		}
		if flags.Changed("staleness") {
			c.Staleness = staleness
		}
		if flags.Changed("log-level") {
			c.LogLevel = logLevel
		}
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Path to a YAML config file")
	flags.StringVar(&cacheStore, "cache-store", "", "Cache store: memory, sqlite or postgres")
	flags.StringVar(&cacheDSN, "cache-dsn", "", "SQLite file path or PostgreSQL connection string")
	flags.DurationVar(&staleness, "staleness", service.DefaultStalenessWindow, "Maximum age of a cached response")
	flags.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func newLogger(level string) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "adressen",
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		l.Warn("unknown log level, using info", "level", level)
		lvl = log.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// newLoader wires the cache store, the open-data client and the freshness
// cache. The returned cleanup closes the store.
func newLoader() (*service.Loader, func(), error) {
	s, err := store.Open(cfg.Cache.Store, cfg.Cache.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache store: %w", err)
	}
	logger.Debug("cache store opened", "store", cfg.Cache.Store, "dsn", cfg.Cache.DSN)

	client := service.NewOpenDataClient(logger, service.WithTimeout(cfg.HTTP.Timeout))
	cache := service.NewFreshnessCache(s, client, cfg.Staleness,
		service.WithLogger(logger),
		service.WithValidator(service.ValidateAddresses),
	)
	loader := service.NewLoader(cache, cfg.Endpoint, logger)

	cleanup := func() {
		if err := s.Close(); err != nil {
			logger.Warn("failed to close cache store", "err", err)
		}
	}
	return loader, cleanup, nil
}
