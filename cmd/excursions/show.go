package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"excursion-catalog/internal/catalog"
	"excursion-catalog/internal/config"
	"excursion-catalog/internal/devutil"
	"excursion-catalog/internal/render"

	"github.com/spf13/cobra"
)

var (
	showFields string
	showHTML   bool
)

var showCmd = &cobra.Command{
	Use:   "show <id-or-url>",
	Short: "Print one excursion",
	Long: `Show looks an excursion up by its slug or its source URL and prints it
as Markdown, HTML (--html) or as selected JSON fields (--fields id,title).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := loadCatalog(cmd.Context())
		if err != nil {
			return err
		}

		ex, ok := store.FindByID(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", catalog.ErrNotFound, args[0])
		}

		out := cmd.OutOrStdout()
		switch {
		case showFields != "":
			b, err := json.MarshalIndent(devutil.Pick(ex, splitFields(showFields)...), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
		case showHTML:
			html, err := render.HTML(ex)
			if err != nil {
				return err
			}
			fmt.Fprint(out, html)
		default:
			fmt.Fprint(out, render.Markdown(ex))
		}
		return nil
	},
}

func splitFields(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().StringVar(&showFields, "fields", "", "comma separated JSON fields to print")
	showCmd.Flags().BoolVar(&showHTML, "html", false, "render the excursion as HTML")
	showCmd.Flags().StringP("file", "f", "", "read the catalog from a local JSON file")
	bindFlag(showCmd, "file", config.KeyCatalogFile)
}
