package main

import (
	"os"
	"os/signal"
	"syscall"

	"excursion-catalog/internal/api"
	"excursion-catalog/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePreload bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog API and, optionally, the built UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store := newCatalog()
		if servePreload {
			// A failed preload is kept in the store state and retried on
			// the first request.
			go func() {
				if err := store.Load(ctx); err != nil {
					logger.Warn("catalog preload failed", zap.Error(err))
				}
			}()
		}

		srv := api.New(store, logger, api.Options{StaticDir: cfg.ServerStaticDir})
		return srv.Run(ctx, cfg.ServerAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "", "listen address")
	serveCmd.Flags().String("static-dir", "", "directory holding the built UI")
	serveCmd.Flags().BoolVar(&servePreload, "preload", true, "load the catalog at startup")
	bindFlag(serveCmd, "addr", config.KeyServerAddr)
	bindFlag(serveCmd, "static-dir", config.KeyServerStaticDir)
}
