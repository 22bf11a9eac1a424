package static

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"excursion-catalog/internal/domain"
	"excursion-catalog/internal/httpx"

	"go.uber.org/zap"
)

// ResourcePath is where the site publishes the catalog document.
const ResourcePath = "/json/excursions_complete.json"

// Source fetches the catalog document over HTTP.
type Source struct {
	BaseURL string
	Path    string
	HTTP    *http.Client
	Retry   httpx.RetryConfig
	Logger  *zap.Logger
}

func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Source {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	retry := httpx.SingleAttempt()
	retry.Logger = logger
	return &Source{
		BaseURL: baseURL,
		Path:    ResourcePath,
		HTTP:    &http.Client{Timeout: timeout},
		Retry:   retry,
		Logger:  logger,
	}
}

func (s *Source) Name() string { return "static" }

// URL is the absolute address of the catalog document.
func (s *Source) URL() (string, error) {
	p := s.Path
	if p == "" {
		p = ResourcePath
	}
	base, err := url.Parse(strings.TrimRight(s.BaseURL, "/") + "/")
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("static: invalid base url %q", s.BaseURL)
	}
	ref, err := url.Parse(strings.TrimLeft(p, "/"))
	if err != nil {
		return "", fmt.Errorf("static: invalid path %q: %w", p, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// Fetch performs one GET of the catalog document. A non-2xx answer is
// returned as *httpx.HTTPError.
func (s *Source) Fetch(ctx context.Context) (domain.CatalogDocument, error) {
	var doc domain.CatalogDocument

	target, err := s.URL()
	if err != nil {
		return doc, err
	}

	client := s.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	err = httpx.DoJSON(ctx, client, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Accept-Encoding", "br")
		return req, nil
	}, &doc, s.Retry)
	if err != nil {
		return domain.CatalogDocument{}, err
	}

	if s.Logger != nil {
		s.Logger.Debug("catalog fetched",
			zap.String("url", target),
			zap.Int("records", len(doc.Excursions)),
			zap.Duration("took", time.Since(start)))
	}
	return doc, nil
}
