package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"excursion-catalog/internal/config"
	"excursion-catalog/internal/crawler"
	"excursion-catalog/internal/httpx"
	"excursion-catalog/internal/providers/file"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	crawlReclassify bool
	crawlWait       time.Duration
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl the site and write the collected pages as JSON",
	Long: `Crawl walks the site breadth-first, sorts pages into excursions,
services, contacts and other pages, and writes everything it found.
An interrupted crawl still writes what it collected so far.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var fetcher crawler.Fetcher
		if cfg.CrawlerChrome {
			cf := crawler.NewChromeFetcher(cfg.CatalogTimeout, crawlWait, logger)
			defer cf.Close()
			fetcher = cf
		} else {
			retry := httpx.SingleAttempt()
			retry.MaxAttempts = cfg.CatalogRetryAttempts
			retry.Logger = logger
			fetcher = crawler.NewHTTPFetcher(cfg.CatalogTimeout, retry)
		}

		c := &crawler.Crawler{
			Fetcher:  fetcher,
			BaseURL:  cfg.CrawlerBaseURL,
			MaxPages: cfg.CrawlerMaxPages,
			Delay:    cfg.CrawlerDelay,
			Workers:  cfg.CrawlerWorkers,
			Logger:   logger,
		}
		data, crawlErr := c.Crawl(ctx)
		if data == nil {
			return crawlErr
		}
		if crawlErr != nil && !errors.Is(crawlErr, ctx.Err()) {
			return crawlErr
		}
		if crawlReclassify {
			data = crawler.Reclassify(data)
		}

		if err := file.Write(cfg.CrawlerOutput, data); err != nil {
			return err
		}
		logger.Info("crawl written",
			zap.String("path", cfg.CrawlerOutput),
			zap.Int("excursions", len(data.Excursions)),
			zap.Int("services", len(data.Services)),
			zap.Int("pages", len(data.Pages)))
		fmt.Fprintf(cmd.OutOrStdout(), "visited %d pages (%d failed): %d excursions, %d services, %d pages\n",
			data.Metadata.PagesVisited, data.Metadata.Failed,
			len(data.Excursions), len(data.Services), len(data.Pages))
		return crawlErr
	},
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().String("base-url", "", "site to crawl")
	crawlCmd.Flags().Int("max-pages", 0, "page budget")
	crawlCmd.Flags().Duration("delay", 0, "pause between batches")
	crawlCmd.Flags().Int("workers", 0, "pages fetched in parallel")
	crawlCmd.Flags().Bool("chrome", false, "render pages in headless Chrome")
	crawlCmd.Flags().StringP("out", "o", "", "output JSON path")
	crawlCmd.Flags().DurationVar(&crawlWait, "wait", 2*time.Second, "time to let scripts run with --chrome")
	crawlCmd.Flags().BoolVar(&crawlReclassify, "reclassify", true, "promote generic pages that look like excursions")

	bindFlag(crawlCmd, "base-url", config.KeyCrawlerBaseURL)
	bindFlag(crawlCmd, "max-pages", config.KeyCrawlerMaxPages)
	bindFlag(crawlCmd, "delay", config.KeyCrawlerDelay)
	bindFlag(crawlCmd, "workers", config.KeyCrawlerWorkers)
	bindFlag(crawlCmd, "chrome", config.KeyCrawlerChrome)
	bindFlag(crawlCmd, "out", config.KeyCrawlerOutput)
}
