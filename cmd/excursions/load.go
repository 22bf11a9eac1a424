package main

import (
	"fmt"

	"excursion-catalog/internal/config"
	"excursion-catalog/internal/render"

	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load and normalize the catalog, then print what it holds",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadCatalog(cmd.Context())
		if err != nil {
			return err
		}

		state := store.State()
		parts := store.ByCategory()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "records:     %d\n", len(store.Raw()))
		fmt.Fprintf(out, "excursions:  %d\n", len(parts.All))
		fmt.Fprintf(out, "  sochi:     %d\n", len(parts.Sochi))
		fmt.Fprintf(out, "  abkhazia:  %d\n", len(parts.Abkhazia))
		fmt.Fprintf(out, "loaded at:   %s\n", render.Date(state.LoadedAt))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().StringP("file", "f", "", "read the catalog from a local JSON file")
	bindFlag(loadCmd, "file", config.KeyCatalogFile)
}
