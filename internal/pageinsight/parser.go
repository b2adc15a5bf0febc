package pageinsight

import (
	"io"
	"net/url"
	"strings"

	"github.com/Bahjat/seo-insight/internal/seo"
)

// Page is a parsed document together with the http(s) links it points to.
type Page struct {
	Doc   *seo.Document
	Links []Link
}

// Link represents a URL found on the page with its classification.
type Link struct {
	URL        string
	IsInternal bool
}

var selHrefAnchors = seo.Tag("a").Has("href")

// Parse builds a document tree from body and resolves every anchor against
// baseURL. Links are returned in document order, duplicates included.
func Parse(body io.Reader, baseURL *url.URL) (*Page, error) {
	doc, err := seo.ParseDocument(body)
	if err != nil {
		return nil, err
	}

	page := &Page{Doc: doc}
	for _, a := range doc.FindAll(selHrefAnchors) {
		href, _ := seo.Attr(a, "href")
		if link, ok := classifyLink(strings.TrimSpace(href), baseURL); ok {
			page.Links = append(page.Links, link)
		}
	}
	return page, nil
}

// UniqueLinks returns the links with distinct URLs in first-seen order.
func (p *Page) UniqueLinks() []Link {
	seen := make(map[string]struct{}, len(p.Links))
	var out []Link
	for _, l := range p.Links {
		if _, ok := seen[l.URL]; ok {
			continue
		}
		seen[l.URL] = struct{}{}
		out = append(out, l)
	}
	return out
}

func classifyLink(href string, baseURL *url.URL) (Link, bool) {
	if href == "" {
		return Link{}, false
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return Link{}, false
	}

	resolved := baseURL.ResolveReference(parsed)
	resolved.Fragment = ""

	// Skip non-http(s) schemes (mailto:, javascript:, tel:, etc.)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return Link{}, false
	}

	isInternal := strings.EqualFold(resolved.Host, baseURL.Host)
	return Link{URL: resolved.String(), IsInternal: isInternal}, true
}
