package pageinsight

import (
	"bufio"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/Bahjat/seo-insight/internal/seo"
)

// SiteProber looks up robots.txt and sitemap.xml on a page's origin.
type SiteProber struct {
	fetcher Fetcher
}

// NewSiteProber returns a prober that retrieves files through fetcher.
func NewSiteProber(fetcher Fetcher) *SiteProber {
	return &SiteProber{fetcher: fetcher}
}

// Probe fetches both files concurrently. A file that cannot be fetched, or
// answers with a non-200 status, counts as missing.
func (p *SiteProber) Probe(ctx context.Context, page *url.URL) seo.SiteFiles {
	origin := url.URL{Scheme: page.Scheme, Host: page.Host}

	var files seo.SiteFiles
	var wg sync.WaitGroup

	wg.Go(func() {
		body, ok := p.get(ctx, origin.JoinPath("robots.txt").String())
		if !ok {
			return
		}
		defer func() { _ = body.Close() }()
		files.RobotsFound = true
		files.RobotsBlocksAll = robotsBlocksAll(body)
	})

	wg.Go(func() {
		body, ok := p.get(ctx, origin.JoinPath("sitemap.xml").String())
		if !ok {
			return
		}
		defer func() { _ = body.Close() }()
		n, err := countSitemapURLs(body)
		if err != nil {
			return
		}
		files.SitemapFound = true
		files.SitemapURLs = n
	})

	wg.Wait()
	return files
}

func (p *SiteProber) get(ctx context.Context, target string) (io.ReadCloser, bool) {
	body, status, err := p.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, false
	}
	if status != http.StatusOK {
		_ = body.Close()
		return nil, false
	}
	return body, true
}

// robotsBlocksAll reports whether the group for "User-agent: *" disallows the
// whole site. Consecutive User-agent lines share the rules that follow them.
func robotsBlocksAll(r io.Reader) bool {
	var (
		inWildcard  bool
		agentsBlock bool // true while reading consecutive User-agent lines
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			if !agentsBlock {
				inWildcard = false
			}
			agentsBlock = true
			if value == "*" {
				inWildcard = true
			}
		case "disallow":
			agentsBlock = false
			if inWildcard && value == "/" {
				return true
			}
		default:
			agentsBlock = false
		}
	}
	return false
}

var errNotSitemap = errors.New("document is not a sitemap")

// countSitemapURLs counts <url> entries of a urlset or <sitemap> entries of a
// sitemap index.
func countSitemapURLs(r io.Reader) (int, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false

	var (
		root  string
		count int
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if root == "" {
			root = se.Name.Local
			if root != "urlset" && root != "sitemapindex" {
				return 0, errNotSitemap
			}
			continue
		}
		if se.Name.Local == "url" || se.Name.Local == "sitemap" {
			count++
		}
	}
	if root == "" {
		return 0, errNotSitemap
	}
	return count, nil
}
