package pageinsight

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"
)

// MaxLinks caps how many links a single analysis checks.
const MaxLinks = 1000

// LinkChecker validates link accessibility using a reusable HTTP client.
type LinkChecker struct {
	client      *http.Client
	concurrency int
}

// NewLinkChecker returns a LinkChecker with a 5s timeout that does not follow
// redirects. Unless allowPrivate is set, it refuses non-public addresses.
// The concurrency parameter controls the worker pool size.
func NewLinkChecker(concurrency int, allowPrivate bool) *LinkChecker {
	return newLinkChecker(concurrency, &http.Transport{
		DialContext:         newDialer(allowPrivate).DialContext,
		MaxConnsPerHost:     concurrency,
		MaxIdleConnsPerHost: concurrency,
		IdleConnTimeout:     90 * time.Second,
	})
}

func newLinkChecker(concurrency int, transport http.RoundTripper) *LinkChecker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &LinkChecker{
		concurrency: concurrency,
		client: &http.Client{
			Timeout:   5 * time.Second,
			Transport: transport,
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// checkLink performs a HEAD request and returns true if the link is inaccessible.
// Servers that reject HEAD with 403 or 405 get a second chance with GET.
func (lc *LinkChecker) checkLink(ctx context.Context, link string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, link, nil)
	if err != nil {
		return true // malformed URL is inaccessible
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := lc.client.Do(req)
	if err != nil {
		return ctx.Err() == nil // inaccessible only if context wasn't cancelled
	}
	_ = resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusForbidden, http.StatusMethodNotAllowed:
		return lc.getProbe(ctx, link)
	}
	return resp.StatusCode >= 400
}

// getProbe retries a link with GET, reading nothing beyond the headers.
func (lc *LinkChecker) getProbe(ctx context.Context, link string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return true
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := lc.client.Do(req)
	if err != nil {
		return ctx.Err() == nil
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.CopyN(io.Discard, resp.Body, 512)

	return resp.StatusCode >= 400
}

// CheckLinks validates a list of URLs concurrently using a pool of worker
// goroutines sized by the configured concurrency and returns the count of
// inaccessible links. Processes at most MaxLinks links.
func (lc *LinkChecker) CheckLinks(ctx context.Context, links []string) int {
	limit := min(len(links), MaxLinks)
	links = links[:limit]

	if limit == 0 {
		return 0
	}

	jobs := make(chan string, limit)
	results := make(chan bool, limit)

	numWorkers := min(limit, lc.concurrency)

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Go(func() {
			for link := range jobs {
				results <- lc.checkLink(ctx, link)
			}
		})
	}

	for _, link := range links {
		jobs <- link
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var inaccessible int
	for bad := range results {
		if bad {
			inaccessible++
		}
	}

	return inaccessible
}
