package pageinsight

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Bahjat/seo-insight/internal/cache"
	"github.com/Bahjat/seo-insight/internal/model"
	"github.com/Bahjat/seo-insight/internal/platform/errs"
	"github.com/Bahjat/seo-insight/internal/scoring"
	"github.com/Bahjat/seo-insight/internal/seo"
)

const invalidURLMessage = "Invalid URL format. Please ensure you entered a valid URL (e.g., https://example.com)."

// linkChecker defines how the engine validates link accessibility.
type linkChecker interface {
	CheckLinks(ctx context.Context, links []string) int
}

// siteProber defines how the engine inspects robots.txt and sitemap.xml.
type siteProber interface {
	Probe(ctx context.Context, page *url.URL) seo.SiteFiles
}

// resultCache defines where the engine keeps finished analyses.
type resultCache interface {
	Get(url string) (*cache.Entry, bool)
	Put(url string, e *cache.Entry)
}

// Engine orchestrates fetching, parsing, the check catalog, scoring and
// result caching.
type Engine struct {
	fetcher     Fetcher
	results     resultCache
	linkChecker linkChecker
	prober      siteProber
	catalog     seo.Catalog
	logger      *slog.Logger
	now         func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLinkChecker enables link accessibility checking.
func WithLinkChecker(lc linkChecker) Option {
	return func(e *Engine) { e.linkChecker = lc }
}

// WithSiteProber enables robots.txt and sitemap.xml probing.
func WithSiteProber(p siteProber) Option {
	return func(e *Engine) { e.prober = p }
}

// WithCatalog replaces the default check catalog.
func WithCatalog(c seo.Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// WithClock sets the time source used for load time and cache timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine returns an Engine backed by the given Fetcher and result cache.
// results may be nil to disable caching.
func NewEngine(fetcher Fetcher, results resultCache, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		fetcher: fetcher,
		results: results,
		catalog: seo.DefaultCatalog(),
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NormalizeURL trims raw, prepends https:// when it carries no scheme and
// validates that the result is an absolute http(s) URL.
func NormalizeURL(raw string) (string, *url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil, &errs.AppError{Kind: errs.InvalidInput, Message: invalidURLMessage}
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: invalidURLMessage,
			Cause:   err,
		}
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", nil, &errs.AppError{
			Kind:    errs.InvalidInput,
			Message: "Only http and https URLs are supported.",
		}
	}
	if parsed.Host == "" || strings.ContainsAny(parsed.Host, " \t") {
		return "", nil, &errs.AppError{Kind: errs.InvalidInput, Message: invalidURLMessage}
	}

	return parsed.String(), parsed, nil
}

// Analyze returns the SEO report for targetURL, from cache when a fresh one
// exists.
func (e *Engine) Analyze(ctx context.Context, targetURL string) (*model.Report, error) {
	normalized, parsed, err := NormalizeURL(targetURL)
	if err != nil {
		return nil, err
	}

	if e.results != nil {
		if entry, ok := e.results.Get(normalized); ok {
			report := reportFrom(normalized, entry)
			report.Cached = true
			return report, nil
		}
	}

	start := e.now()
	body, statusCode, err := e.fetcher.Fetch(ctx, normalized)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.Unreachable,
			Message: "The provided URL could not be reached. Check the address.",
			Cause:   err,
		}
	}
	defer func() { _ = body.Close() }()

	if statusCode >= 400 {
		return nil, &errs.AppError{
			Kind:           errs.Unreachable,
			UpstreamStatus: statusCode,
			Message:        "The provided URL returned an error status.",
		}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.Unreachable,
			Message: "The provided URL could not be read completely.",
			Cause:   err,
		}
	}
	loadTime := e.now().Sub(start)

	page, err := Parse(bytes.NewReader(data), parsed)
	if err != nil {
		return nil, &errs.AppError{
			Kind:    errs.ParsingFailed,
			Message: "Failed to parse the HTML content.",
			Cause:   err,
		}
	}

	in := &seo.Input{
		Doc:     page.Doc,
		URL:     parsed,
		Metrics: e.measure(ctx, page, parsed),
	}
	in.Metrics.LoadTime = &loadTime
	if err := ctx.Err(); err != nil {
		return nil, interrupted(err)
	}

	outcomes := e.catalog.Run(ctx, in)
	if err := ctx.Err(); err != nil {
		return nil, interrupted(err)
	}

	raw := seo.Collect(outcomes, e.logger.With("url", normalized))
	entry := &cache.Entry{
		Result:      scoring.Aggregate(raw),
		RawFindings: raw,
		Timestamp:   e.now(),
	}
	if e.results != nil {
		e.results.Put(normalized, entry)
	}

	return reportFrom(normalized, entry), nil
}

// reportFrom builds a report that owns its maps, so callers cannot reach into
// a cached entry.
func reportFrom(target string, entry *cache.Entry) *model.Report {
	return &model.Report{
		URL:        target,
		Results:    entry.Result.Clone(),
		RawResults: entry.RawFindings.Clone(),
		AnalyzedAt: entry.Timestamp,
	}
}

// interrupted reports an analysis abandoned by its caller. Partial results
// are never cached.
func interrupted(cause error) *errs.AppError {
	return &errs.AppError{
		Kind:    errs.Timeout,
		Message: "The analysis was interrupted before it could finish.",
		Cause:   cause,
	}
}

// measure runs the optional network collaborators side by side.
func (e *Engine) measure(ctx context.Context, page *Page, pageURL *url.URL) seo.Metrics {
	var (
		m  seo.Metrics
		wg sync.WaitGroup
	)

	if e.linkChecker != nil {
		links := page.UniqueLinks()
		links = links[:min(len(links), MaxLinks)]

		var internal, external []string
		for _, l := range links {
			if l.IsInternal {
				internal = append(internal, l.URL)
			} else {
				external = append(external, l.URL)
			}
		}

		health := &seo.LinkHealth{Checked: len(links)}
		m.Links = health
		if len(internal) > 0 {
			wg.Go(func() { health.InaccessibleInternal = e.linkChecker.CheckLinks(ctx, internal) })
		}
		if len(external) > 0 {
			wg.Go(func() { health.InaccessibleExternal = e.linkChecker.CheckLinks(ctx, external) })
		}
	}

	if e.prober != nil {
		wg.Go(func() {
			files := e.prober.Probe(ctx, pageURL)
			m.Site = &files
		})
	}

	wg.Wait()
	return m
}
