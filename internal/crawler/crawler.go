package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"excursion-catalog/internal/concurrency"
	"excursion-catalog/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	DefaultMaxPages = 100
	DefaultDelay    = time.Second
	DefaultWorkers  = 4
)

// Crawler walks a site breadth-first from its base URL, staying on the
// base host, and sorts the pages it finds into excursions, services,
// contacts and other pages.
type Crawler struct {
	Fetcher  Fetcher
	BaseURL  string
	MaxPages int
	// Delay is the pause between two batches of fetches.
	Delay   time.Duration
	Workers int
	Logger  *zap.Logger
	// Now is the clock used for metadata timestamps.
	Now func() time.Time
}

type pageResult struct {
	url       string
	kind      Kind
	excursion domain.RawExcursion
	page      Page
	contacts  Contacts
	links     []string
	nav       []domain.Link
}

func (c *Crawler) defaults() {
	if c.MaxPages <= 0 {
		c.MaxPages = DefaultMaxPages
	}
	if c.Delay < 0 {
		c.Delay = 0
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Crawl visits at most MaxPages pages. Pages that fail to load are
// counted and skipped. The crawl stops early when ctx is done and returns
// what was collected together with ctx's error.
func (c *Crawler) Crawl(ctx context.Context) (*SiteData, error) {
	c.defaults()
	base, err := url.Parse(c.BaseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", c.BaseURL)
	}
	start := strings.TrimRight(base.String(), "/") + "/"

	data := &SiteData{Metadata: Metadata{
		BaseURL:   c.BaseURL,
		StartedAt: c.Now(),
		Renderer:  c.Fetcher.Name(),
	}}
	log := c.Logger.With(zap.String("base_url", c.BaseURL))
	log.Info("crawl started", zap.Int("max_pages", c.MaxPages), zap.String("renderer", c.Fetcher.Name()))

	visited := map[string]struct{}{}
	queue := []string{start}
	firstBatch := true

	for len(queue) > 0 && len(visited) < c.MaxPages {
		var batch []string
		for len(queue) > 0 && len(batch) < c.Workers && len(visited) < c.MaxPages {
			next := queue[0]
			queue = queue[1:]
			if _, ok := visited[next]; ok || IsSkippedFile(next) {
				continue
			}
			visited[next] = struct{}{}
			batch = append(batch, next)
		}
		if len(batch) == 0 {
			continue
		}

		if !firstBatch && c.Delay > 0 {
			if err := sleep(ctx, c.Delay); err != nil {
				return c.finish(data, log), err
			}
		}
		firstBatch = false

		results, errs := concurrency.ProcessParallel(ctx, batch,
			concurrency.ParallelOptions{MaxWorkers: c.Workers},
			func(ctx context.Context, _ int, pageURL string) (*pageResult, error) {
				return c.visit(ctx, pageURL, base.Host)
			})
		for _, err := range errs {
			data.Metadata.Failed++
			if !errors.Is(err, ErrNotHTML) {
				log.Warn("page failed", zap.Error(err))
			}
		}

		for _, r := range results {
			if r == nil {
				continue
			}
			data.Metadata.PagesVisited++
			c.collect(data, r)
			for _, link := range r.links {
				if _, ok := visited[link]; !ok {
					queue = append(queue, link)
				}
			}
		}

		if err := ctx.Err(); err != nil {
			return c.finish(data, log), err
		}
	}

	return c.finish(data, log), nil
}

func (c *Crawler) finish(data *SiteData, log *zap.Logger) *SiteData {
	data.Metadata.FinishedAt = c.Now()
	log.Info("crawl finished",
		zap.Int("pages", data.Metadata.PagesVisited),
		zap.Int("failed", data.Metadata.Failed),
		zap.Int("excursions", len(data.Excursions)),
		zap.Int("services", len(data.Services)),
		zap.Int("other", len(data.Pages)))
	return data
}

func (c *Crawler) visit(ctx context.Context, pageURL, host string) (*pageResult, error) {
	doc, err := c.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("page fetched", zap.String("url", pageURL))
	return processPage(doc, pageURL, host), nil
}

// processPage classifies a fetched page and extracts what its kind needs.
func processPage(doc *goquery.Document, pageURL, host string) *pageResult {
	r := &pageResult{
		url:   pageURL,
		links: FindLinks(doc, pageURL, host),
		nav:   Navigation(doc, pageURL),
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	r.kind = ClassifyURL(pageURL, title, doc.Text())

	if r.kind == KindExcursion {
		r.excursion = ParseExcursion(doc, pageURL)
		return r
	}

	text := ExtractText(doc, pageURL)
	r.contacts = ExtractContacts(doc)
	r.page = Page{
		URL:         pageURL,
		Title:       text.Title,
		Description: text.Description,
		Content:     text.Content,
		Links:       text.Links,
		Images:      ExtractImages(doc, pageURL),
	}
	if !r.contacts.IsEmpty() {
		contacts := r.contacts
		r.page.Contacts = &contacts
	}
	return r
}

func (c *Crawler) collect(data *SiteData, r *pageResult) {
	if len(data.Navigation) == 0 {
		data.Navigation = r.nav
	}
	switch r.kind {
	case KindExcursion:
		data.Excursions = append(data.Excursions, r.excursion)
		data.Images = append(data.Images, r.excursion.Images...)
		return
	case KindService:
		data.Services = append(data.Services, r.page)
	case KindContact:
		data.Contacts.Merge(r.contacts)
		data.Pages = append(data.Pages, r.page)
	default:
		data.Pages = append(data.Pages, r.page)
	}
	data.Images = append(data.Images, r.page.Images...)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
