package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"excursion-catalog/internal/catalog"
	"excursion-catalog/internal/config"
	"excursion-catalog/internal/logging"
	"excursion-catalog/internal/providers"
	"excursion-catalog/internal/providers/file"
	"excursion-catalog/internal/providers/static"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	verbose bool

	v      *viper.Viper
	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "excursions",
	Short:         "Load, crawl, export and serve the excursion catalog",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if v, err = config.New(cfgFile); err != nil {
			return err
		}
		if err := bindFlags(cmd); err != nil {
			return err
		}
		cfg = config.Load(v)

		if logger, err = logging.New(cfg.LogLevel, verbose); err != nil {
			return err
		}
		if used := v.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", zap.String("path", used))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

// flagKeys maps "<command>/<flag>" to a config key. A flag set on the
// command line overrides the file and the environment.
var flagKeys = map[string]string{}

func bindFlag(cmd *cobra.Command, name, key string) {
	flagKeys[cmd.Name()+"/"+name] = key
}

func bindFlags(cmd *cobra.Command) error {
	prefix := cmd.Name() + "/"
	for id, key := range flagKeys {
		name, ok := strings.CutPrefix(id, prefix)
		if !ok {
			continue
		}
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind --%s: %w", name, err)
			}
		}
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.excursions.yaml or $HOME/.excursions.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// catalogSource picks the local file when one is configured and the
// published document otherwise.
func catalogSource() providers.CatalogSource {
	if cfg.CatalogFile != "" {
		return file.New(cfg.CatalogFile)
	}
	src := static.New(cfg.CatalogBaseURL, cfg.CatalogTimeout, logger)
	src.Path = cfg.CatalogPath
	src.Retry.MaxAttempts = cfg.CatalogRetryAttempts
	return src
}

func newCatalog() *catalog.Store {
	return catalog.NewStore(catalogSource(), catalog.WithLogger(logger))
}

// loadCatalog returns a store that has loaded successfully.
func loadCatalog(ctx context.Context) (*catalog.Store, error) {
	store := newCatalog()
	if err := store.Load(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
