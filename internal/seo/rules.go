package seo

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Bahjat/seo-insight/internal/model"
)

const (
	MinTitleLength       = 30
	MaxTitleLength       = 60
	MinDescriptionLength = 120
	MaxDescriptionLength = 160
	MinWordCount         = 300
)

var (
	errNoDocument = errors.New("no parsed document")
	errNoURL      = errors.New("no page URL")
)

var socialLinkPattern = regexp.MustCompile(`(?i)^(https?:)?//([a-z0-9-]+\.)*(facebook|twitter|x|linkedin|instagram|youtube)\.com(/|$|\?)`)

var (
	selTitle           = Tag("title")
	selMetaDescription = Tag("meta").Eq("name", "description")
	selViewport        = Tag("meta").Eq("name", "viewport")
	selTwitterCard     = Tag("meta").Eq("name", "twitter:card")
	selJSONLD          = Tag("script").Eq("type", "application/ld+json")
	selJSONLDDiv       = Tag("div").Eq("type", "application/ld+json")
	selMicrodata       = Selector{}.Has("itemtype")
	selImages          = Tag("img")
	selAnchors         = Tag("a")
	selCanonical       = Tag("link").HasToken("rel", "canonical")
	selHreflang        = Tag("link").HasToken("rel", "alternate").Has("hreflang")
	selOpenGraph       = Tag("meta").Prefix("property", "og:")
	selTwitterTags     = Tag("meta").Prefix("name", "twitter:")
	selSocialLinks     = Tag("a").Like("href", socialLinkPattern)
	selAddress         = Tag("address")
	selLocalBusiness   = Selector{}.Substr("itemtype", "schema.org/LocalBusiness")
	selPhoneLinks      = Tag("a").Prefix("href", "tel:")

	requiredOpenGraph = []string{"og:title", "og:description", "og:image"}
)

func checkMetaTags(in *Input) ([]model.Finding, error) {
	if in.Doc == nil {
		return nil, errNoDocument
	}
	doc := in.Doc

	findings := []model.Finding{titleFinding(doc)}
	findings = append(findings, descriptionFinding(doc))
	findings = append(findings, viewportFinding(doc))

	missingOG := false
	for _, prop := range requiredOpenGraph {
		if _, ok := doc.First(Tag("meta").Eq("property", prop)); !ok {
			missingOG = true
			break
		}
	}
	if missingOG {
		findings = append(findings, warning("Missing Open Graph meta tags",
			"Open Graph meta tags improve social media sharing"))
	} else {
		findings = append(findings, good("Open Graph meta tags present",
			"All required Open Graph meta tags found"))
	}

	if card, ok := doc.First(selTwitterCard); ok {
		content, _ := Attr(card, "content")
		findings = append(findings, good("Twitter Card meta tags present",
			"Twitter card type: "+content))
	} else {
		findings = append(findings, warning("Missing Twitter Card meta tags",
			"Twitter Card meta tags improve Twitter sharing"))
	}

	if n := doc.Count(selJSONLD) + doc.Count(selJSONLDDiv); n > 0 {
		findings = append(findings, good("Schema.org markup found",
			fmt.Sprintf("Found %d schema markup elements", n)))
	} else {
		findings = append(findings, warning("No Schema.org markup found",
			"Schema markup helps search engines understand your content"))
	}

	return findings, nil
}

func titleFinding(doc *Document) model.Finding {
	var title string
	if n, ok := doc.First(selTitle); ok {
		title = strings.TrimSpace(NodeText(n))
	}

	length := utf8.RuneCountInString(title)
	switch {
	case length == 0:
		return failure("Missing title tag", "Every page should have a unique title tag")
	case length < MinTitleLength:
		return warning("Title tag is too short",
			fmt.Sprintf("Current length: %d characters. Recommended: %d-%d characters", length, MinTitleLength, MaxTitleLength))
	case length > MaxTitleLength:
		return warning("Title tag is too long",
			fmt.Sprintf("Current length: %d characters. Recommended: %d-%d characters", length, MinTitleLength, MaxTitleLength))
	default:
		return good("Title tag length is optimal", fmt.Sprintf("Current length: %d characters", length))
	}
}

func descriptionFinding(doc *Document) model.Finding {
	n, ok := doc.First(selMetaDescription)
	if !ok {
		return failure("Missing meta description", "Every page should have a meta description")
	}

	content, _ := Attr(n, "content")
	length := utf8.RuneCountInString(strings.TrimSpace(content))
	switch {
	case length < MinDescriptionLength:
		return warning("Meta description is too short",
			fmt.Sprintf("Current length: %d characters. Recommended: %d-%d characters", length, MinDescriptionLength, MaxDescriptionLength))
	case length > MaxDescriptionLength:
		return warning("Meta description is too long",
			fmt.Sprintf("Current length: %d characters. Recommended: %d-%d characters", length, MinDescriptionLength, MaxDescriptionLength))
	default:
		return good("Meta description length is optimal", fmt.Sprintf("Current length: %d characters", length))
	}
}

func viewportFinding(doc *Document) model.Finding {
	n, ok := doc.First(selViewport)
	if !ok {
		return failure("Missing viewport meta tag", "Mobile-friendly pages should have a viewport meta tag")
	}
	content, _ := Attr(n, "content")
	return good("Viewport meta tag present", "Content: "+content)
}

func checkHeaders(in *Input) ([]model.Finding, error) {
	if in.Doc == nil {
		return nil, errNoDocument
	}

	var findings []model.Finding
	switch h1 := in.Doc.Count(Tag("h1")); {
	case h1 == 0:
		findings = append(findings, failure("Missing H1 tag", "Every page should have one H1 tag"))
	case h1 > 1:
		findings = append(findings, warning("Multiple H1 tags found",
			fmt.Sprintf("Found %d H1 tags. Recommended: 1 H1 tag per page", h1)))
	default:
		findings = append(findings, good("H1 tag usage is optimal", "Page has exactly one H1 tag"))
	}

	// Distribution is reported, not judged.
	findings = append(findings, info("Header tag distribution",
		fmt.Sprintf("H2: %d, H3: %d, H4: %d",
			in.Doc.Count(Tag("h2")), in.Doc.Count(Tag("h3")), in.Doc.Count(Tag("h4")))))

	return findings, nil
}

func checkImages(in *Input) ([]model.Finding, error) {
	if in.Doc == nil {
		return nil, errNoDocument
	}

	images := in.Doc.FindAll(selImages)
	if len(images) == 0 {
		return []model.Finding{warning("No images found",
			"Consider adding relevant images to enhance content")}, nil
	}

	var missing int
	for _, img := range images {
		if alt, _ := Attr(img, "alt"); alt == "" {
			missing++
		}
	}

	if missing > 0 {
		return []model.Finding{warning("Images missing alt text",
			fmt.Sprintf("%d out of %d images are missing alt text", missing, len(images)))}, nil
	}
	return []model.Finding{good("All images have alt text",
		fmt.Sprintf("All %d images have alt text", len(images)))}, nil
}

func checkLinks(in *Input) ([]model.Finding, error) {
	if in.Doc == nil {
		return nil, errNoDocument
	}

	anchors := in.Doc.FindAll(selAnchors)
	if len(anchors) == 0 {
		return []model.Finding{warning("No links found",
			"Consider adding internal and external links")}, nil
	}

	var internal, external int
	for _, a := range anchors {
		href, _ := Attr(a, "href")
		href = strings.TrimSpace(href)
		switch {
		case href == "":
		case strings.HasPrefix(strings.ToLower(href), "http"):
			external++
		default:
			internal++
		}
	}

	return []model.Finding{good("Link distribution",
		fmt.Sprintf("Internal links: %d, External links: %d", internal, external))}, nil
}

func checkContent(in *Input) ([]model.Finding, error) {
	if in.Doc == nil {
		return nil, errNoDocument
	}

	words := len(strings.Fields(in.Doc.Text()))
	if words < MinWordCount {
		return []model.Finding{warning("Content length is too short",
			fmt.Sprintf("Current word count: %d. Recommended: At least %d words", words, MinWordCount))}, nil
	}
	return []model.Finding{good("Content length is good",
		fmt.Sprintf("Current word count: %d", words))}, nil
}

func checkMobileFriendly(in *Input) ([]model.Finding, error) {
	if in.Doc == nil {
		return nil, errNoDocument
	}

	if _, ok := in.Doc.First(selViewport); !ok {
		return []model.Finding{failure("Missing viewport meta tag",
			"Add viewport meta tag for mobile responsiveness")}, nil
	}
	return []model.Finding{good("Viewport meta tag found",
		"Page is configured for mobile devices")}, nil
}

func checkStructuredData(in *Input) ([]model.Finding, error) {
	if in.Doc == nil {
		return nil, errNoDocument
	}

	var findings []model.Finding
	if n := in.Doc.Count(selJSONLD); n > 0 {
		findings = append(findings, good("JSON-LD found",
			fmt.Sprintf("Found %d JSON-LD implementations", n)))
	} else {
		findings = append(findings, warning("No JSON-LD found",
			"Consider adding JSON-LD for better search results"))
	}

	if n := in.Doc.Count(selMicrodata); n > 0 {
		findings = append(findings, good("Microdata found",
			fmt.Sprintf("Found %d microdata elements", n)))
	}

	return findings, nil
}

func checkReadability(in *Input) ([]model.Finding, error) {
	if in.Doc == nil {
		return nil, errNoDocument
	}
	return []model.Finding{Readability(in.Doc.Text())}, nil
}

func checkCanonical(in *Input) ([]model.Finding, error) {
	if in.Doc == nil {
		return nil, errNoDocument
	}

	if n, ok := in.Doc.First(selCanonical); ok {
		href, _ := Attr(n, "href")
		return []model.Finding{good("Canonical tag found", "Canonical URL: "+href)}, nil
	}
	return []model.Finding{warning("No canonical tag found",
		"Consider adding a canonical tag to prevent duplicate content issues")}, nil
}

func checkHreflang(in *Input) ([]model.Finding, error) {
	if in.Doc == nil {
		return nil, errNoDocument
	}

	if n := in.Doc.Count(selHreflang); n > 0 {
		return []model.Finding{good("Hreflang tags found",
			fmt.Sprintf("Found %d language alternatives", n))}, nil
	}
	return []model.Finding{info("No hreflang tags found",
		"Add hreflang tags if your site supports multiple languages")}, nil
}

func checkSocial(in *Input) ([]model.Finding, error) {
	if in.Doc == nil {
		return nil, errNoDocument
	}

	var findings []model.Finding
	if n := in.Doc.Count(selOpenGraph); n > 0 {
		findings = append(findings, good("Open Graph tags found",
			fmt.Sprintf("Found %d Open Graph tags", n)))
	}
	if n := in.Doc.Count(selTwitterTags); n > 0 {
		findings = append(findings, good("Twitter Card tags found",
			fmt.Sprintf("Found %d Twitter Card tags", n)))
	}
	if n := in.Doc.Count(selSocialLinks); n > 0 {
		findings = append(findings, good("Social media links found",
			fmt.Sprintf("Found %d social media links", n)))
	}

	if len(findings) == 0 {
		return []model.Finding{info("No social media integration found",
			"Consider adding Open Graph tags, Twitter Cards or links to your social profiles")}, nil
	}
	return findings, nil
}

func checkLocalSEO(in *Input) ([]model.Finding, error) {
	if in.Doc == nil {
		return nil, errNoDocument
	}

	var findings []model.Finding
	if _, ok := in.Doc.First(selAddress); ok {
		findings = append(findings, good("Business address found", "Address tag properly implemented"))
	}
	if _, ok := in.Doc.First(selLocalBusiness); ok {
		findings = append(findings, good("Local Business schema found",
			"Schema.org LocalBusiness markup implemented"))
	}
	if n := in.Doc.Count(selPhoneLinks); n > 0 {
		findings = append(findings, good("Click-to-call links found",
			fmt.Sprintf("Found %d tel: links", n)))
	}

	if len(findings) == 0 {
		return []model.Finding{info("No local SEO signals found",
			"Add an address element or LocalBusiness markup if the site represents a physical business")}, nil
	}
	return findings, nil
}

func checkPageSpeed(in *Input) ([]model.Finding, error) {
	if in.Metrics.LoadTime == nil {
		return nil, nil
	}
	return []model.Finding{PageSpeed(in.Metrics.LoadTime.Seconds())}, nil
}

// PageSpeed grades a measured fetch time given in seconds.
func PageSpeed(seconds float64) model.Finding {
	details := fmt.Sprintf("Page loaded in %.2f seconds", seconds)
	switch {
	case seconds < 2:
		return good("Page load time", details)
	case seconds < 4:
		return warning("Page load time", details)
	default:
		return failure("Page load time", details)
	}
}

func checkLinkHealth(in *Input) ([]model.Finding, error) {
	lh := in.Metrics.Links
	if lh == nil || lh.Checked == 0 {
		return nil, nil
	}

	if n := lh.Inaccessible(); n > 0 {
		return []model.Finding{warning("Inaccessible links found",
			fmt.Sprintf("%d of %d links are inaccessible (%d internal, %d external)",
				n, lh.Checked, lh.InaccessibleInternal, lh.InaccessibleExternal))}, nil
	}
	return []model.Finding{good("All links are accessible",
		fmt.Sprintf("All %d checked links responded", lh.Checked))}, nil
}

func checkCrawlability(in *Input) ([]model.Finding, error) {
	site := in.Metrics.Site
	if site == nil {
		return nil, nil
	}

	var findings []model.Finding
	switch {
	case !site.RobotsFound:
		findings = append(findings, warning("No robots.txt found",
			"A robots.txt file tells crawlers which parts of the site to index"))
	case site.RobotsBlocksAll:
		findings = append(findings, failure("robots.txt blocks all crawlers",
			"User-agent: * is disallowed from the whole site"))
	default:
		findings = append(findings, good("robots.txt found", "Crawlers are allowed to index the site"))
	}

	if site.SitemapFound {
		findings = append(findings, good("Sitemap found",
			fmt.Sprintf("sitemap.xml lists %d URLs", site.SitemapURLs)))
	} else {
		findings = append(findings, warning("No sitemap.xml found",
			"A sitemap helps search engines discover your pages"))
	}

	return findings, nil
}

func checkSecurity(in *Input) ([]model.Finding, error) {
	if in.URL == nil {
		return nil, errNoURL
	}

	if strings.EqualFold(in.URL.Scheme, "https") {
		return []model.Finding{good("Page served over HTTPS", "Connection to "+in.URL.Host+" is encrypted")}, nil
	}
	return []model.Finding{warning("Page not served over HTTPS",
		"Search engines favour pages served over HTTPS")}, nil
}
