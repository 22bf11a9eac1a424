package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"excursion-catalog/internal/httpx"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ErrNotHTML is returned for responses that are not HTML documents.
var ErrNotHTML = errors.New("not an html document")

// Fetcher loads a page and parses it into a document.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*goquery.Document, error)
	Name() string
}

// HTTPFetcher fetches pages with plain GET requests.
type HTTPFetcher struct {
	HTTP  *http.Client
	Retry httpx.RetryConfig
}

func NewHTTPFetcher(timeout time.Duration, retry httpx.RetryConfig) *HTTPFetcher {
	return &HTTPFetcher{
		HTTP:  &http.Client{Timeout: timeout},
		Retry: retry,
	}
}

func (f *HTTPFetcher) Name() string { return "http" }

func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	resp, body, err := httpx.Get(ctx, f.HTTP, pageURL, f.Retry)
	if err != nil {
		return nil, err
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err == nil && mt != "text/html" && mt != "application/xhtml+xml" {
			return nil, fmt.Errorf("%s: %w (%s)", pageURL, ErrNotHTML, mt)
		}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return doc, nil
}

// ChromeFetcher renders pages in a headless Chrome before parsing them,
// for pages whose content is filled in by scripts. One browser is shared
// by all fetches; each fetch opens its own tab.
type ChromeFetcher struct {
	// Wait is how long a page gets to run its scripts after load.
	Wait    time.Duration
	Timeout time.Duration

	logger      *zap.Logger
	once        sync.Once
	startErr    error
	browser     context.Context
	cancelAlloc context.CancelFunc
	cancelCtx   context.CancelFunc
}

func NewChromeFetcher(timeout, wait time.Duration, logger *zap.Logger) *ChromeFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChromeFetcher{Wait: wait, Timeout: timeout, logger: logger}
}

func (f *ChromeFetcher) Name() string { return "chrome" }

func (f *ChromeFetcher) start() {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.UserAgent(httpx.UserAgent),
		chromedp.WindowSize(1280, 900),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browser, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		f.logger.Debug(fmt.Sprintf(format, args...))
	}))
	f.browser, f.cancelAlloc, f.cancelCtx = browser, cancelAlloc, cancelCtx
	// Tabs are only opened in the same browser once it is running.
	if err := chromedp.Run(browser); err != nil {
		f.startErr = fmt.Errorf("start chrome: %w", err)
	}
}

func (f *ChromeFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	f.once.Do(f.start)
	if f.startErr != nil {
		return nil, f.startErr
	}

	tab, cancel := chromedp.NewContext(f.browser)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if f.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		tab, cancelTimeout = context.WithTimeout(tab, f.Timeout)
		defer cancelTimeout()
	}

	var html string
	err := chromedp.Run(tab,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(f.Wait),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("render %s: %w", pageURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return doc, nil
}

// Close shuts the browser down. It is a no-op if nothing was fetched.
func (f *ChromeFetcher) Close() {
	if f.cancelCtx != nil {
		f.cancelCtx()
		f.cancelAlloc()
	}
}
