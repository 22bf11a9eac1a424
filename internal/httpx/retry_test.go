package httpx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/andybalholm/brotli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const catalogURL = "https://hostaotdykh.ru/json/excursions_complete.json"

// Mock HTTP RoundTripper for testing
type mockRoundTripper struct {
	responses []*http.Response
	errors    []error
	index     int
	mux       sync.Mutex
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mux.Lock()
	defer m.mux.Unlock()

	if m.index >= len(m.responses) {
		return nil, errors.New("no more responses")
	}

	resp := m.responses[m.index]
	err := m.errors[m.index]
	m.index++
	return resp, err
}

func (m *mockRoundTripper) calls() int {
	m.mux.Lock()
	defer m.mux.Unlock()
	return m.index
}

func newMockClient(responses []*http.Response, errs []error) (*http.Client, *mockRoundTripper) {
	for i := len(errs); i < len(responses); i++ {
		errs = append(errs, nil)
	}
	rt := &mockRoundTripper{responses: responses, errors: errs}
	return &http.Client{Transport: rt}, rt
}

func newMockResponse(statusCode int, body string, headers map[string]string) *http.Response {
	header := http.Header{}
	for k, v := range headers {
		header.Set(k, v)
	}

	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     header,
	}
}

func buildGet(ctx context.Context) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, http.MethodGet, catalogURL, nil)
}

func fastConfig(attempts int) RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.MaxAttempts = attempts
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	cfg.Logger = zap.NewNop()
	return cfg
}

func TestDoWithRetrySuccess(t *testing.T) {
	client, _ := newMockClient(
		[]*http.Response{newMockResponse(200, `{"excursions": []}`, nil)},
		nil,
	)

	resp, body, err := DoWithRetry(context.Background(), client, buildGet, DefaultRetryConfig())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected status code 200, got %d", resp.StatusCode)
	}
	if string(body) != `{"excursions": []}` {
		t.Errorf("Expected body %q, got %q", `{"excursions": []}`, string(body))
	}
}

func TestDoWithRetryBuildReqError(t *testing.T) {
	client, rt := newMockClient([]*http.Response{nil}, nil)

	buildReq := func(ctx context.Context) (*http.Request, error) {
		return nil, errors.New("request build error")
	}

	_, _, err := DoWithRetry(context.Background(), client, buildReq, DefaultRetryConfig())
	if err == nil || !strings.Contains(err.Error(), "request build error") {
		t.Errorf("Expected request build error, got %v", err)
	}
	if rt.calls() != 0 {
		t.Errorf("Expected no round trips, got %d", rt.calls())
	}
}

func TestDoWithRetryNonRetryableError(t *testing.T) {
	client, rt := newMockClient(
		[]*http.Response{nil, nil},
		[]error{errors.New("non-retryable error"), nil},
	)

	_, _, err := DoWithRetry(context.Background(), client, buildGet, fastConfig(3))
	if err == nil || !strings.Contains(err.Error(), "non-retryable error") {
		t.Errorf("Expected non-retryable error, got %v", err)
	}
	if rt.calls() != 1 {
		t.Errorf("Expected 1 round trip, got %d", rt.calls())
	}
}

func TestDoWithRetryRetryableError(t *testing.T) {
	client, rt := newMockClient(
		[]*http.Response{nil, newMockResponse(200, `ok`, nil)},
		[]error{errors.New("read: connection reset by peer"), nil},
	)

	_, body, err := DoWithRetry(context.Background(), client, buildGet, fastConfig(3))
	if err != nil {
		t.Fatalf("Expected no error after retry, got %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("Expected body %q, got %q", "ok", string(body))
	}
	if rt.calls() != 2 {
		t.Errorf("Expected 2 round trips, got %d", rt.calls())
	}
}

func TestDoWithRetryRetryableStatus(t *testing.T) {
	client, _ := newMockClient(
		[]*http.Response{
			newMockResponse(429, `{"error": "rate limited"}`, map[string]string{"Retry-After": "0"}),
			newMockResponse(200, `{"success": true}`, nil),
		},
		nil,
	)

	resp, body, err := DoWithRetry(context.Background(), client, buildGet, fastConfig(8))
	if err != nil {
		t.Fatalf("Expected no error after retry, got %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected status code 200, got %d", resp.StatusCode)
	}
	if string(body) != `{"success": true}` {
		t.Errorf("Expected body %q, got %q", `{"success": true}`, string(body))
	}
}

func TestDoWithRetryMaxAttemptsExceeded(t *testing.T) {
	client, _ := newMockClient(
		[]*http.Response{
			newMockResponse(500, `{"error": "server error"}`, nil),
			newMockResponse(500, `{"error": "server error"}`, nil),
		},
		nil,
	)

	_, _, err := DoWithRetry(context.Background(), client, buildGet, fastConfig(2))
	if err == nil {
		t.Fatal("Expected error after max attempts, got nil")
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("Expected HTTPError, got %T", err)
	}
	if httpErr.StatusCode != 500 {
		t.Errorf("Expected status code 500, got %d", httpErr.StatusCode)
	}
}

func TestDoWithRetrySingleAttemptDoesNotRetry(t *testing.T) {
	client, rt := newMockClient(
		[]*http.Response{
			newMockResponse(503, `unavailable`, nil),
			newMockResponse(200, `ok`, nil),
		},
		nil,
	)

	_, _, err := DoWithRetry(context.Background(), client, buildGet, SingleAttempt())

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 503 {
		t.Fatalf("Expected 503 HTTPError, got %v", err)
	}
	if rt.calls() != 1 {
		t.Errorf("Expected 1 round trip, got %d", rt.calls())
	}
}

func TestDoWithRetryContextCancellation(t *testing.T) {
	client, _ := newMockClient(
		[]*http.Response{newMockResponse(503, ``, nil), newMockResponse(200, `ok`, nil)},
		nil,
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := fastConfig(2)
	cfg.BaseDelay = time.Second
	cfg.MaxDelay = 2 * time.Second

	_, _, err := DoWithRetry(ctx, client, buildGet, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled error, got %v", err)
	}
}

func TestDoWithRetryDefaultConfig(t *testing.T) {
	client, _ := newMockClient(
		[]*http.Response{newMockResponse(200, `{"success": true}`, nil)},
		nil,
	)

	// Zero values fall back to defaults
	_, _, err := DoWithRetry(context.Background(), client, buildGet, RetryConfig{})
	if err != nil {
		t.Errorf("Expected no error with default config, got %v", err)
	}
}

func TestDoWithRetryBrotliBody(t *testing.T) {
	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	if _, err := w.Write([]byte(`{"total": 1}`)); err != nil {
		t.Fatalf("brotli write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("brotli close: %v", err)
	}

	client, _ := newMockClient(
		[]*http.Response{newMockResponse(200, buf.String(), map[string]string{"Content-Encoding": "br"})},
		nil,
	)

	var out struct {
		Total int `json:"total"`
	}
	if err := DoJSON(context.Background(), client, buildGet, &out, SingleAttempt()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out.Total != 1 {
		t.Errorf("Expected total 1, got %d", out.Total)
	}
}

func TestGetSetsHeaders(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	_, body, err := Get(context.Background(), srv.Client(), srv.URL+"/ekskursii/", SingleAttempt())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(body) != "<html></html>" {
		t.Errorf("Unexpected body %q", string(body))
	}
	if gotUA != UserAgent {
		t.Errorf("Expected User-Agent %q, got %q", UserAgent, gotUA)
	}
	if !strings.HasPrefix(gotLang, "ru-RU") {
		t.Errorf("Expected Russian Accept-Language, got %q", gotLang)
	}
}

func TestDoJSONSuccess(t *testing.T) {
	client, _ := newMockClient(
		[]*http.Response{newMockResponse(200, `{"name": "test", "value": 123}`, nil)},
		nil,
	)

	var result struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	if err := DoJSON(context.Background(), client, buildGet, &result, DefaultRetryConfig()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Name != "test" || result.Value != 123 {
		t.Errorf("Expected {Name: 'test', Value: 123}, got %+v", result)
	}
}

func TestDoJSONNilOutput(t *testing.T) {
	client, _ := newMockClient(
		[]*http.Response{newMockResponse(200, `{"name": "test"}`, nil)},
		nil,
	)

	if err := DoJSON(context.Background(), client, buildGet, nil, DefaultRetryConfig()); err != nil {
		t.Errorf("Expected no error with nil output, got %v", err)
	}
}

func TestDoJSONInvalidJSON(t *testing.T) {
	client, _ := newMockClient(
		[]*http.Response{newMockResponse(200, `{"name": "test", invalid json}`, nil)},
		nil,
	)

	var result struct {
		Name string `json:"name"`
	}

	err := DoJSON(context.Background(), client, buildGet, &result, DefaultRetryConfig())
	if err == nil {
		t.Fatal("Expected JSON parse error, got nil")
	}
	if !strings.Contains(err.Error(), "json parse error") {
		t.Errorf("Expected 'json parse error' in error message, got %v", err)
	}
}

func TestSleepBackoff(t *testing.T) {
	ctx := context.Background()
	start := time.Now()
	if err := sleepBackoff(ctx, 1, 5*time.Millisecond, 50*time.Millisecond, 0); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if d := time.Since(start); d < 5*time.Millisecond {
		t.Errorf("Expected sleep of at least 5ms, got %v", d)
	}

	start = time.Now()
	if err := sleepBackoff(ctx, 1, 50*time.Millisecond, 100*time.Millisecond, 10*time.Millisecond); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if d := time.Since(start); d < 10*time.Millisecond {
		t.Errorf("Expected sleep of at least 10ms, got %v", d)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sleepBackoff(ctx, 1, time.Second, 2*time.Second, 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled error, got %v", err)
	}
}

func TestReadAndClose(t *testing.T) {
	testData := "test data"
	data, err := readAndClose(io.NopCloser(strings.NewReader(testData)))
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if string(data) != testData {
		t.Errorf("Expected %q, got %q", testData, string(data))
	}
}

func TestCatalogAndCrawlerAttempts(t *testing.T) {
	fast := func(attempts int) RetryConfig {
		cfg := SingleAttempt()
		cfg.MaxAttempts = attempts
		cfg.BaseDelay = time.Millisecond
		cfg.MaxDelay = 2 * time.Millisecond
		return cfg
	}

	testCases := []struct {
		name       string
		cfg        RetryConfig
		statuses   []int
		wantCalls  int
		wantStatus int // 0 means success
	}{
		{"single attempt gives up on 503", fast(1), []int{503, 200}, 1, 503},
		{"configured attempts ride out 503s", fast(3), []int{503, 502, 200}, 3, 0},
		{"configured attempts stop at the limit", fast(2), []int{503, 503, 200}, 2, 503},
		{"429 is retried", fast(2), []int{429, 200}, 2, 0},
		{"missing catalog is not retried", fast(3), []int{404, 200}, 1, 404},
		{"gone page is not retried", fast(3), []int{410, 200}, 1, 410},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			responses := make([]*http.Response, 0, len(tc.statuses))
			for _, code := range tc.statuses {
				responses = append(responses, newMockResponse(code, "body", nil))
			}
			client, rt := newMockClient(responses, nil)

			_, _, err := Get(context.Background(), client, catalogURL, tc.cfg)
			if rt.calls() != tc.wantCalls {
				t.Errorf("Expected %d calls, got %d", tc.wantCalls, rt.calls())
			}
			if tc.wantStatus == 0 {
				if err != nil {
					t.Errorf("Expected success, got %v", err)
				}
				return
			}
			var herr *HTTPError
			if !errors.As(err, &herr) || herr.StatusCode != tc.wantStatus {
				t.Errorf("Expected HTTPError %d, got %v", tc.wantStatus, err)
			}
		})
	}
}

func TestRetryLoggerKeptThroughDefaults(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	client, rt := newMockClient([]*http.Response{
		newMockResponse(503, "", nil),
		newMockResponse(200, "{}", nil),
	}, nil)

	// MaxAttempts 0 falls back to the defaults; the logger must survive that.
	_, _, err := DoWithRetry(context.Background(), client, buildGet, RetryConfig{Logger: zap.New(core)})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rt.calls() != 2 {
		t.Errorf("Expected 2 calls, got %d", rt.calls())
	}

	entries := logs.FilterMessage("retrying after status").All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 retry log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["status"]; got != int64(503) {
		t.Errorf("Expected logged status 503, got %v", got)
	}
}

func TestHTTPErrorFromCatalog(t *testing.T) {
	body := strings.Repeat("Страница не найдена. ", 100)
	client, _ := newMockClient([]*http.Response{
		newMockResponse(404, body, map[string]string{"X-Request-Id": "abc"}),
	}, nil)

	_, got, err := Get(context.Background(), client, catalogURL, SingleAttempt())
	var herr *HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("Expected *HTTPError, got %v", err)
	}
	if string(got) != body || string(herr.Body) != body {
		t.Error("Expected the full body to be returned and kept on the error")
	}
	if herr.Method != http.MethodGet || herr.URL != catalogURL || herr.Header.Get("X-Request-Id") != "abc" {
		t.Errorf("Unexpected error fields: %+v", herr)
	}

	msg := herr.Error()
	if !strings.HasPrefix(msg, "http error: GET "+catalogURL+" status=404 body=Страница") {
		t.Errorf("Unexpected message prefix: %q", msg)
	}
	if !strings.HasSuffix(msg, "…") || !utf8.ValidString(msg) {
		t.Errorf("Expected a valid truncated body, got %q", msg)
	}
}

func TestSnippetKeepsRunesWhole(t *testing.T) {
	testCases := []struct {
		input string
		max   int
		want  string
	}{
		{"  Цена по запросу  ", 100, "Цена по запросу"},
		{"Цена", 3, "Ц…"},
		{"Цена", 4, "Це…"},
		{"Цена", 5, "Це…"},
		{"price", 3, "pri…"},
		{"", 10, ""},
	}
	for _, tc := range testCases {
		if got := snippet([]byte(tc.input), tc.max); got != tc.want {
			t.Errorf("snippet(%q, %d) = %q, want %q", tc.input, tc.max, got, tc.want)
		}
	}
}

type stalledConn struct{}

func (stalledConn) Error() string   { return "i/o timeout" }
func (stalledConn) Timeout() bool   { return true }
func (stalledConn) Temporary() bool { return true }

func TestTransientErrors(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{"caller canceled", fmt.Errorf("fetch: %w", context.Canceled), false},
		{"deadline", fmt.Errorf("fetch: %w", context.DeadlineExceeded), true},
		{"client timeout", &url.Error{Op: "Get", URL: catalogURL, Err: stalledConn{}}, true},
		{"reset by site", errors.New("read tcp: connection reset by peer"), true},
		{"truncated body", io.ErrUnexpectedEOF, true},
		{"bad certificate", errors.New("x509: certificate signed by unknown authority"), false},
		{"unknown host", &url.Error{Op: "Get", URL: catalogURL, Err: errors.New("no such host")}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isRetryableNetErr(tc.err); got != tc.want {
				t.Errorf("isRetryableNetErr(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestParseRetryAfterForms(t *testing.T) {
	testCases := []struct {
		name   string
		value  string
		check  func(time.Duration) bool
		expect string
	}{
		{"seconds", "2", func(d time.Duration) bool { return d == 2*time.Second }, "2s"},
		{"future date", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat), func(d time.Duration) bool { return d > 58*time.Minute }, "about 1h"},
		{"past date", time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat), func(d time.Duration) bool { return d == 0 }, "0"},
		{"negative seconds", "-5", func(d time.Duration) bool { return d == 0 }, "0"},
		{"garbage", "soon", func(d time.Duration) bool { return d == 0 }, "0"},
		{"missing", "", func(d time.Duration) bool { return d == 0 }, "0"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			if tc.value != "" {
				resp.Header.Set("Retry-After", tc.value)
			}
			if d := ParseRetryAfter(resp); !tc.check(d) {
				t.Errorf("ParseRetryAfter(%q) = %v, want %s", tc.value, d, tc.expect)
			}
		})
	}
}
