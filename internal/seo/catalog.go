package seo

import (
	"net/url"
	"time"

	"github.com/Bahjat/seo-insight/internal/model"
)

// Category names used as keys in raw findings and category scores.
const (
	CategoryMetaTags       = "meta_tags"
	CategoryHeaders        = "headers"
	CategoryImages         = "images"
	CategoryLinks          = "links"
	CategoryContent        = "content"
	CategoryMobileFriendly = "mobile_friendly"
	CategoryStructuredData = "structured_data"
	CategoryReadability    = "readability"
	CategoryCanonical      = "canonical"
	CategoryHreflang       = "hreflang"
	CategorySocial         = "social"
	CategoryLocalSEO       = "local_seo"
	CategoryPerformance    = "performance"
	CategoryLinkHealth     = "link_health"
	CategoryCrawlability   = "crawlability"
	CategorySecurity       = "security"
)

// SiteFiles describes the well-known files probed on the page's origin.
type SiteFiles struct {
	RobotsFound     bool
	RobotsBlocksAll bool
	SitemapFound    bool
	SitemapURLs     int
}

// LinkHealth is the outcome of checking links for accessibility. Internal
// links share the analyzed page's host.
type LinkHealth struct {
	Checked              int
	InaccessibleInternal int
	InaccessibleExternal int
}

// Inaccessible returns how many checked links failed.
func (lh LinkHealth) Inaccessible() int {
	return lh.InaccessibleInternal + lh.InaccessibleExternal
}

// Metrics carries values measured outside the document. A nil field means the
// measurement was not taken and the check that consumes it is skipped.
type Metrics struct {
	LoadTime *time.Duration
	Links    *LinkHealth
	Site     *SiteFiles
}

// Input is everything a check may look at.
type Input struct {
	Doc     *Document
	URL     *url.URL
	Metrics Metrics
}

// Check produces the findings of one category. Run returns (nil, nil) when the
// check does not apply to the input, for example when a metric is missing.
type Check struct {
	Category string
	Run      func(in *Input) ([]model.Finding, error)
}

// Catalog is an ordered list of checks. Order only matters for display.
type Catalog []Check

// DefaultCatalog returns every built-in check.
func DefaultCatalog() Catalog {
	return Catalog{
		{Category: CategoryMetaTags, Run: checkMetaTags},
		{Category: CategoryHeaders, Run: checkHeaders},
		{Category: CategoryImages, Run: checkImages},
		{Category: CategoryLinks, Run: checkLinks},
		{Category: CategoryContent, Run: checkContent},
		{Category: CategoryMobileFriendly, Run: checkMobileFriendly},
		{Category: CategoryStructuredData, Run: checkStructuredData},
		{Category: CategoryReadability, Run: checkReadability},
		{Category: CategoryCanonical, Run: checkCanonical},
		{Category: CategoryHreflang, Run: checkHreflang},
		{Category: CategorySocial, Run: checkSocial},
		{Category: CategoryLocalSEO, Run: checkLocalSEO},
		{Category: CategoryPerformance, Run: checkPageSpeed},
		{Category: CategoryLinkHealth, Run: checkLinkHealth},
		{Category: CategoryCrawlability, Run: checkCrawlability},
		{Category: CategorySecurity, Run: checkSecurity},
	}
}

func good(message, details string) model.Finding {
	return model.Finding{Status: model.StatusGood, Message: message, Details: details}
}

func warning(message, details string) model.Finding {
	return model.Finding{Status: model.StatusWarning, Message: message, Details: details}
}

func failure(message, details string) model.Finding {
	return model.Finding{Status: model.StatusError, Message: message, Details: details}
}

func info(message, details string) model.Finding {
	return model.Finding{Status: model.StatusInfo, Message: message, Details: details}
}
