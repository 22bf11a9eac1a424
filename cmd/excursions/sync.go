package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"excursion-catalog/internal/config"
	"excursion-catalog/internal/export"
	"excursion-catalog/internal/storage"
	catalogsync "excursion-catalog/internal/sync"

	"github.com/spf13/cobra"
)

var (
	syncDryRun    bool
	syncDeleteXML bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Store the catalog as a snapshot and report what changed",
	Long: `Sync diffs the normalized catalog against the last stored snapshot,
upserts new and changed excursions and removes the ones that are gone.
With --delete-xml the removed excursions are also written as a delete feed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := loadCatalog(ctx)
		if err != nil {
			return err
		}

		db, err := storage.Open(ctx, cfg.DBDriver, cfg.DBDSN, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		plan, res, err := catalogsync.Run(ctx, db, store.Excursions(), time.Now(), syncDryRun, logger)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "create: %d  update: %d  delete: %d\n", len(plan.Create), len(plan.Update), len(plan.Delete))
		if len(plan.Skipped) > 0 {
			fmt.Fprintf(out, "skipped %d excursions without a stable id\n", len(plan.Skipped))
		}
		if syncDryRun {
			for _, ex := range plan.Create {
				fmt.Fprintf(out, "+ %s\t%s\n", ex.ID, ex.Title)
			}
			for _, ex := range plan.Update {
				fmt.Fprintf(out, "~ %s\t%s\n", ex.ID, ex.Title)
			}
			for _, d := range plan.Delete {
				fmt.Fprintf(out, "- %s\t%s\n", d.ID, d.Title)
			}
			return nil
		}

		if syncDeleteXML && len(plan.Delete) > 0 {
			if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
				return err
			}
			path := filepath.Join(cfg.ExportDir, "excursions_delete.xml")
			if err := export.WriteDeleteXML(path, plan.Delete); err != nil {
				return err
			}
			fmt.Fprintf(out, "delete feed: %s\n", path)
		}
		fmt.Fprintf(out, "stored %d, removed %d\n", res.Created+res.Updated, res.Deleted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().String("driver", "", "database driver: sqlite or postgres")
	syncCmd.Flags().String("dsn", "", "database file (sqlite) or connection string (postgres)")
	syncCmd.Flags().StringP("file", "f", "", "read the catalog from a local JSON file")
	syncCmd.Flags().BoolVarP(&syncDryRun, "dry-run", "n", false, "print the plan without writing")
	syncCmd.Flags().BoolVar(&syncDeleteXML, "delete-xml", false, "write removed excursions as a delete feed")
	bindFlag(syncCmd, "driver", config.KeyDBDriver)
	bindFlag(syncCmd, "dsn", config.KeyDBDSN)
	bindFlag(syncCmd, "file", config.KeyCatalogFile)
}
