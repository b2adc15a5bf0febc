package pageinsight

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Bahjat/seo-insight/internal/cache"
	"github.com/Bahjat/seo-insight/internal/model"
	"github.com/Bahjat/seo-insight/internal/platform/errs"
	"github.com/Bahjat/seo-insight/internal/seo"
)

var errConnectionRefused = errors.New("connection refused")

var discardLogger = slog.New(slog.DiscardHandler)

// mockFetcher implements Fetcher for testing.
type mockFetcher struct {
	body       string
	statusCode int
	err        error
	calls      atomic.Int32
}

func (m *mockFetcher) Fetch(_ context.Context, _ string) (io.ReadCloser, int, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.statusCode, m.err
	}
	return io.NopCloser(strings.NewReader(m.body)), m.statusCode, nil
}

// mockLinkChecker implements linkChecker for testing. Links listed in broken
// are reported as inaccessible.
type mockLinkChecker struct {
	broken map[string]bool

	mu           sync.Mutex
	receivedURLs []string
}

func (m *mockLinkChecker) CheckLinks(_ context.Context, links []string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receivedURLs = append(m.receivedURLs, links...)

	var n int
	for _, l := range links {
		if m.broken[l] {
			n++
		}
	}
	return n
}

// cancellingFetcher serves a page but cancels the request context first, as
// when a client disconnects mid-analysis.
type cancellingFetcher struct {
	mockFetcher
	cancel context.CancelFunc
}

func (f *cancellingFetcher) Fetch(ctx context.Context, target string) (io.ReadCloser, int, error) {
	f.cancel()
	return f.mockFetcher.Fetch(ctx, target)
}

// mockProber implements siteProber for testing.
type mockProber struct {
	files seo.SiteFiles
	page  *url.URL
}

func (m *mockProber) Probe(_ context.Context, page *url.URL) seo.SiteFiles {
	m.page = page
	return m.files
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func requireKind(t *testing.T, err error, want errs.Kind) *errs.AppError {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var appErr *errs.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *errs.AppError, got %T", err)
	}
	if appErr.Kind != want {
		t.Errorf("Kind = %s, want %s", appErr.Kind, want)
	}
	return appErr
}

const samplePage = `<!DOCTYPE html><html><head>
	<title>A reasonably descriptive page title here</title>
	<meta name="viewport" content="width=device-width">
	</head><body>
	<h1>Hello</h1>
	<h2>Sub</h2>
	<img src="a.png" alt="a">
	<a href="https://example.com/a">A</a>
	<a href="https://other.com/b">B</a>
	<a href="https://example.com/a">A again</a>
	</body></html>`

func TestEngine_Analyze_Success(t *testing.T) {
	engine := NewEngine(&mockFetcher{body: samplePage, statusCode: 200}, nil, discardLogger)

	report, err := engine.Analyze(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.URL != "https://example.com" {
		t.Errorf("URL = %q, want %q", report.URL, "https://example.com")
	}
	if report.Cached {
		t.Error("Cached = true on first analysis")
	}

	headers := report.RawResults[seo.CategoryHeaders]
	if len(headers) == 0 || headers[0].Status != model.StatusGood {
		t.Errorf("headers findings = %+v, want a good H1 finding first", headers)
	}
	if _, ok := report.RawResults[seo.CategoryPerformance]; !ok {
		t.Error("performance category missing; load time should always be measured")
	}
	// No link checker or prober configured.
	if _, ok := report.RawResults[seo.CategoryLinkHealth]; ok {
		t.Error("link_health present without a link checker")
	}
	if _, ok := report.RawResults[seo.CategoryCrawlability]; ok {
		t.Error("crawlability present without a site prober")
	}

	if _, ok := report.Results.Categories[seo.CategoryHreflang]; ok {
		t.Error("info-only hreflang category should not be scored")
	}
	if report.Results.Overall.Grade.Label == "" {
		t.Error("overall grade not set")
	}
}

func TestEngine_Analyze_PrependsScheme(t *testing.T) {
	engine := NewEngine(&mockFetcher{body: samplePage, statusCode: 200}, nil, discardLogger)

	report, err := engine.Analyze(context.Background(), "  example.com/path ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.URL != "https://example.com/path" {
		t.Errorf("URL = %q, want %q", report.URL, "https://example.com/path")
	}
}

func TestEngine_Analyze_FetchError(t *testing.T) {
	engine := NewEngine(&mockFetcher{err: errConnectionRefused}, nil, discardLogger)

	_, err := engine.Analyze(context.Background(), "https://down.example.com")
	requireKind(t, err, errs.Unreachable)
	if !errors.Is(err, errConnectionRefused) {
		t.Errorf("error chain does not include cause: %v", err)
	}
}

func TestEngine_Analyze_DeduplicatesLinks(t *testing.T) {
	lc := &mockLinkChecker{broken: map[string]bool{"https://other.com/b": true}}
	engine := NewEngine(&mockFetcher{body: samplePage, statusCode: 200}, nil, discardLogger,
		WithLinkChecker(lc))

	report, err := engine.Analyze(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The link checker should receive only unique URLs.
	if len(lc.receivedURLs) != 2 {
		t.Errorf("unique URLs sent to checker = %d, want 2: %v", len(lc.receivedURLs), lc.receivedURLs)
	}

	health := report.RawResults[seo.CategoryLinkHealth]
	if len(health) != 1 {
		t.Fatalf("link_health findings = %d, want 1", len(health))
	}
	if health[0].Details != "1 of 2 links are inaccessible (0 internal, 1 external)" {
		t.Errorf("details = %q", health[0].Details)
	}
}

func TestEngine_Analyze_SplitsInaccessibleLinks(t *testing.T) {
	page := `<html><body>
	<a href="/a">a</a><a href="/b">b</a><a href="https://EXAMPLE.com/c">c</a>
	<a href="https://other.com/x">x</a><a href="https://third.org/y">y</a>
	</body></html>`
	lc := &mockLinkChecker{broken: map[string]bool{
		"https://example.com/a": true,
		"https://EXAMPLE.com/c": true,
		"https://third.org/y":   true,
	}}
	engine := NewEngine(&mockFetcher{body: page, statusCode: 200}, nil, discardLogger,
		WithLinkChecker(lc))

	report, err := engine.Analyze(context.Background(), "https://example.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	health := report.RawResults[seo.CategoryLinkHealth]
	if len(health) != 1 {
		t.Fatalf("link_health findings = %d, want 1", len(health))
	}
	if want := "3 of 5 links are inaccessible (2 internal, 1 external)"; health[0].Details != want {
		t.Errorf("details = %q, want %q", health[0].Details, want)
	}
}

func TestEngine_Analyze_InterruptedIsNotCached(t *testing.T) {
	results, err := cache.New(cache.Options{})
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fetcher := &cancellingFetcher{
		mockFetcher: mockFetcher{body: samplePage, statusCode: 200},
		cancel:      cancel,
	}
	engine := NewEngine(fetcher, results, discardLogger, WithLinkChecker(&mockLinkChecker{}))

	_, err = engine.Analyze(ctx, "https://example.com")
	requireKind(t, err, errs.Timeout)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error chain does not include context.Canceled: %v", err)
	}
	if n := results.Stats().Entries; n != 0 {
		t.Fatalf("cache entries = %d after interrupted analysis, want 0", n)
	}

	fetcher.cancel = func() {}
	report, err := engine.Analyze(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Cached {
		t.Error("analysis after an interrupted run was served from cache")
	}
	if report.Results.Overall.Value == 0 {
		t.Errorf("overall = %+v, want a real score", report.Results.Overall)
	}
}

func TestEngine_Analyze_CachedReportIsACopy(t *testing.T) {
	results, err := cache.New(cache.Options{})
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	engine := NewEngine(&mockFetcher{body: samplePage, statusCode: 200}, results, discardLogger)

	first, err := engine.Analyze(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := first.Results.Overall
	wantHeaders := first.RawResults[seo.CategoryHeaders][0]

	first.RawResults[seo.CategoryHeaders][0].Status = model.StatusError
	delete(first.RawResults, seo.CategoryImages)
	first.Results.Categories[seo.CategoryHeaders] = model.Score{}

	second, err := engine.Analyze(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.Cached {
		t.Fatal("second analysis was not served from cache")
	}
	second.RawResults[seo.CategoryMobileFriendly] = nil

	third, err := engine.Analyze(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range []*model.Report{second, third} {
		if got := r.RawResults[seo.CategoryHeaders][0]; got != wantHeaders {
			t.Errorf("cached headers finding = %+v, want %+v", got, wantHeaders)
		}
		if _, ok := r.RawResults[seo.CategoryImages]; !ok {
			t.Error("images category missing from cached report")
		}
		if r.Results.Categories[seo.CategoryHeaders].Value == 0 {
			t.Error("cached headers score was overwritten by a caller")
		}
		if r.Results.Overall != want {
			t.Errorf("overall = %+v, want %+v", r.Results.Overall, want)
		}
	}
	if len(third.RawResults[seo.CategoryMobileFriendly]) == 0 {
		t.Error("mobile_friendly findings were cleared through a cached report")
	}
}

func TestEngine_Analyze_SiteProbe(t *testing.T) {
	prober := &mockProber{files: seo.SiteFiles{RobotsFound: true, SitemapFound: true, SitemapURLs: 4}}
	engine := NewEngine(&mockFetcher{body: samplePage, statusCode: 200}, nil, discardLogger,
		WithSiteProber(prober))

	report, err := engine.Analyze(context.Background(), "https://example.com/blog/post")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if prober.page == nil || prober.page.Host != "example.com" {
		t.Errorf("prober received %v, want the page URL", prober.page)
	}
	crawl := report.RawResults[seo.CategoryCrawlability]
	if len(crawl) != 2 {
		t.Fatalf("crawlability findings = %d, want 2", len(crawl))
	}
	for _, f := range crawl {
		if f.Status != model.StatusGood {
			t.Errorf("finding %q = %s, want good", f.Message, f.Status)
		}
	}
}

func TestEngine_Analyze_InvalidURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "empty", url: "   "},
		{name: "no host", url: "https://"},
		{name: "space in host", url: "http://exa mple.com"},
		{name: "ftp scheme", url: "ftp://example.com/file"},
		{name: "javascript scheme", url: "javascript://alert(1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &mockFetcher{}
			engine := NewEngine(fetcher, nil, discardLogger)

			_, err := engine.Analyze(context.Background(), tt.url)
			requireKind(t, err, errs.InvalidInput)
			if fetcher.calls.Load() != 0 {
				t.Error("fetcher called for invalid input")
			}
		})
	}
}

func TestEngine_Analyze_HTTPStatusError(t *testing.T) {
	engine := NewEngine(&mockFetcher{body: "not found", statusCode: 404}, nil, discardLogger)

	_, err := engine.Analyze(context.Background(), "https://example.com/missing")
	appErr := requireKind(t, err, errs.Unreachable)
	if appErr.UpstreamStatus != 404 {
		t.Errorf("UpstreamStatus = %d, want 404", appErr.UpstreamStatus)
	}
}

func TestEngine_Analyze_CheckFailureIsolated(t *testing.T) {
	catalog := seo.Catalog{
		{Category: "working", Run: func(*seo.Input) ([]model.Finding, error) {
			return []model.Finding{{Status: model.StatusGood, Message: "ok"}}, nil
		}},
		{Category: "broken", Run: func(*seo.Input) ([]model.Finding, error) {
			panic("selector exploded")
		}},
	}
	engine := NewEngine(&mockFetcher{body: samplePage, statusCode: 200}, nil, discardLogger,
		WithCatalog(catalog))

	report, err := engine.Analyze(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if broken, ok := report.RawResults["broken"]; !ok || len(broken) != 0 {
		t.Errorf("broken = %v (present %v), want present and empty", broken, ok)
	}
	if report.Results.Overall.Value != 100 {
		t.Errorf("overall = %d, want 100", report.Results.Overall.Value)
	}
}

func TestEngine_Analyze_CachesWithinTTL(t *testing.T) {
	clock := &testClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	results, err := cache.New(cache.Options{TTL: time.Hour, Now: clock.Now})
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}

	var runs atomic.Int32
	catalog := seo.Catalog{{Category: "counted", Run: func(*seo.Input) ([]model.Finding, error) {
		runs.Add(1)
		return []model.Finding{{Status: model.StatusWarning, Message: "w"}}, nil
	}}}

	fetcher := &mockFetcher{body: samplePage, statusCode: 200}
	engine := NewEngine(fetcher, results, discardLogger, WithCatalog(catalog), WithClock(clock.Now))

	first, err := engine.Analyze(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clock.Advance(30 * time.Minute)
	second, err := engine.Analyze(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.Cached {
		t.Error("second analysis within TTL was not served from cache")
	}
	if !second.AnalyzedAt.Equal(first.AnalyzedAt) {
		t.Errorf("AnalyzedAt = %s, want first %s", second.AnalyzedAt, first.AnalyzedAt)
	}
	if second.Results.Overall != first.Results.Overall {
		t.Errorf("cached overall = %+v, want %+v", second.Results.Overall, first.Results.Overall)
	}
	if runs.Load() != 1 || fetcher.calls.Load() != 1 {
		t.Errorf("pipeline ran %d times (fetches %d), want 1", runs.Load(), fetcher.calls.Load())
	}

	clock.Advance(31 * time.Minute)
	third, err := engine.Analyze(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third.Cached {
		t.Error("analysis after TTL was served from cache")
	}
	if runs.Load() != 2 {
		t.Errorf("pipeline ran %d times, want 2", runs.Load())
	}
}

func TestEngine_Analyze_FailureIsNotCached(t *testing.T) {
	results, err := cache.New(cache.Options{})
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}

	fetcher := &mockFetcher{statusCode: 503, body: "down"}
	engine := NewEngine(fetcher, results, discardLogger)

	_, err = engine.Analyze(context.Background(), "https://example.com")
	requireKind(t, err, errs.Unreachable)
	if results.Stats().Entries != 0 {
		t.Error("failed analysis was cached")
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "https://example.com", want: "https://example.com"},
		{in: "example.com", want: "https://example.com"},
		{in: " http://example.com/a?b=c ", want: "http://example.com/a?b=c"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, parsed, err := NormalizeURL(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if parsed.String() != got {
				t.Errorf("parsed URL %q does not match %q", parsed, got)
			}
		})
	}
}
