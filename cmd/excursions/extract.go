package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"excursion-catalog/internal/config"
	"excursion-catalog/internal/crawler"
	"excursion-catalog/internal/export"
	"excursion-catalog/internal/extract"
	"excursion-catalog/internal/providers/file"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	extractInput   string
	extractSummary string
	extractURLs    string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Turn a crawl into the catalog document",
	Long: `Extract keeps the excursion detail pages of a crawl, filters their
images and content, and writes the catalog document the loader reads.
It can also write a TSV summary and the list of excursion URLs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := extractInput
		if in == "" {
			in = cfg.CrawlerOutput
		}
		data, err := readSiteData(in)
		if err != nil {
			return err
		}

		doc := extract.Catalog(data.Excursions)
		if err := file.Write(cfg.ExtractOutput, doc); err != nil {
			return err
		}

		if extractSummary != "" {
			if err := writeFile(extractSummary, func(w io.Writer) error { return export.WriteSummary(w, doc) }); err != nil {
				return err
			}
		}
		if extractURLs != "" {
			urls := extract.URLs(data.Excursions)
			if err := writeFile(extractURLs, func(w io.Writer) error { return export.WriteURLs(w, urls) }); err != nil {
				return err
			}
		}

		st := extract.Summarize(doc)
		logger.Info("catalog extracted",
			zap.String("from", in),
			zap.String("to", cfg.ExtractOutput),
			zap.Int("total", st.Total))

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "excursions:        %d\n", st.Total)
		fmt.Fprintf(out, "with price:        %d\n", st.WithPrice)
		fmt.Fprintf(out, "with duration:     %d\n", st.WithDuration)
		fmt.Fprintf(out, "with pickups:      %d\n", st.WithPickups)
		fmt.Fprintf(out, "with extra costs:  %d\n", st.WithExtraCosts)
		fmt.Fprintf(out, "images:            %d\n", st.Images)
		return nil
	},
}

func readSiteData(path string) (*crawler.SiteData, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read crawl: %w", err)
	}
	var data crawler.SiteData
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("decode crawl %s: %w", path, err)
	}
	return &data, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractInput, "in", "i", "", "crawl JSON (default: crawler.output)")
	extractCmd.Flags().StringP("out", "o", "", "catalog JSON path")
	extractCmd.Flags().StringVar(&extractSummary, "summary", "", "also write a TSV summary here")
	extractCmd.Flags().StringVar(&extractURLs, "urls", "", "also write the excursion URLs here")
	bindFlag(extractCmd, "out", config.KeyExtractOutput)
}
