package scrape

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/khoborlab/svnews/internal/article"
	"github.com/khoborlab/svnews/internal/logger"
)

// Fetcher downloads a page body. Satisfied by fetch.Client.
type Fetcher interface {
	Get(url string) (string, error)
}

// Parser extracts article lists and article bodies from the configured site.
type Parser struct {
	fetcher Fetcher
	baseURL string
}

func NewParser(fetcher Fetcher, baseURL string) *Parser {
	return &Parser{
		fetcher: fetcher,
		baseURL: strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
	}
}

// Listing pages: ordered selector strategies, most specific first. The first
// strategy yielding at least one link wins.
var listingSelectors = []string{
	"article h2 a",
	"h2.entry-title a",
	".post h2 a",
	".post-title a",
	"h2 a",
}

// maxPerListing caps how many links one listing page contributes.
const maxPerListing = 5

// navPathPrefixes mark links that enumerate rather than contain content.
var navPathPrefixes = []string{
	"/category/",
	"/tag/",
	"/page/",
	"/author/",
	"/about",
	"/contact",
}

// ParseListing extracts up to maxPerListing articles from a listing page, in
// document order, deduplicated by normalized URL within the call.
func (p *Parser) ParseListing(html, category string) ([]article.Article, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}

	var links *goquery.Selection
	for _, sel := range listingSelectors {
		found := doc.Find(sel)
		if found.Length() > 0 {
			links = found
			break
		}
	}

	var out []article.Article
	seen := map[string]struct{}{}

	add := func(title, href string) {
		if len(out) >= maxPerListing || href == "" || title == "" {
			return
		}
		resolved := p.resolveURL(href)
		if resolved == "" {
			return
		}
		if _, dup := seen[resolved]; dup {
			return
		}
		seen[resolved] = struct{}{}
		out = append(out, article.Article{
			URL:         resolved,
			TitleSource: title,
			Category:    category,
			ScrapedAt:   time.Now().UTC(),
		})
	}

	if links != nil {
		links.Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			title := strings.TrimSpace(s.Text())
			if title == "" {
				// Image-only link: pull the heading text from the nearest
				// header block around it.
				title = headingTextNear(s)
			}
			add(title, href)
		})
		return out, nil
	}

	// No strategy matched anything. Fall back to a heuristic scan of every
	// anchor on the page.
	logger.Warn("no listing selector matched, falling back to anchor scan")
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		title := strings.TrimSpace(s.Text())
		if len([]rune(title)) < 20 {
			return
		}
		if !p.sameHost(href) || p.isNavLink(href) {
			return
		}
		add(title, href)
	})
	return out, nil
}

// headingTextNear resolves the article title for anchors whose own text is
// empty (thumbnail links): climb to the closest header container, then read
// its title element.
func headingTextNear(s *goquery.Selection) string {
	container := s.Closest("header, .entry-header, article")
	if container.Length() == 0 {
		return ""
	}
	for _, sel := range []string{"h1", "h2", ".entry-title", ".post-title"} {
		if t := strings.TrimSpace(container.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

func (p *Parser) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	switch {
	case strings.HasPrefix(href, "//"):
		// Protocol-relative: adopt the base URL's scheme.
		href = p.scheme() + ":" + href
	case !strings.HasPrefix(href, "http"):
		if !strings.HasPrefix(href, "/") {
			href = "/" + href
		}
		href = p.baseURL + href
	}
	return strings.TrimSuffix(href, "/")
}

func (p *Parser) scheme() string {
	if u, err := url.Parse(p.baseURL); err == nil && u.Scheme != "" {
		return u.Scheme
	}
	return "https"
}

func (p *Parser) sameHost(href string) bool {
	if strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//") {
		return true
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	base, err := url.Parse(p.baseURL)
	if err != nil {
		return false
	}
	return u.Host == base.Host
}

func (p *Parser) isNavLink(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return true
	}
	path := u.Path
	if path == "" || path == "/" {
		return true
	}
	for _, prefix := range navPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Article bodies: ordered container selectors, the first match wins.
var contentSelectors = []string{
	".post-content",
	".entry-content",
	".single-content",
	"article",
}

// Cleanup patterns applied to extracted bodies, in order.
var (
	reDateLine        = regexp.MustCompile(`(?m)^\d{4}[\s\-]\d{1,2}[\s\-]\d{1,2}\s*$`)
	reDateBetween     = regexp.MustCompile(`\n\d{4}[\s\-]\d{1,2}[\s\-]\d{1,2}\n`)
	reBylineLine      = regexp.MustCompile(`(?mi)^.*(?:Text:|Foto:|Bild:).*$`)
	reReadMoreTrailer = regexp.MustCompile(`(?mi)^LÄS MER:.*$`)
	reExtraNewlines   = regexp.MustCompile(`\n{3,}`)
)

// ParseArticle fetches an article page and returns its title and cleaned
// body. Failures are returned so the caller can log and skip the item; the
// pipeline never aborts on a single article.
func (p *Parser) ParseArticle(articleURL string) (title, body string, err error) {
	html, err := p.fetcher.Get(articleURL)
	if err != nil {
		return "", "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("parse article html: %w", err)
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())
	if idx := strings.Index(title, " | "); idx >= 0 {
		title = strings.TrimSpace(title[:idx])
	}

	for _, sel := range contentSelectors {
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}
		var paragraphs []string
		container.Find("p").Each(func(_ int, s *goquery.Selection) {
			if text := strings.TrimSpace(s.Text()); text != "" {
				paragraphs = append(paragraphs, text)
			}
		})
		body = strings.Join(paragraphs, "\n")
		break
	}

	return title, CleanBody(body), nil
}

// CleanBody strips boilerplate from an extracted article body: standalone
// date lines, byline/credit lines, "read more" trailers, and excess blank
// lines.
func CleanBody(body string) string {
	if body == "" {
		return ""
	}
	body = reDateLine.ReplaceAllString(body, "")
	body = reDateBetween.ReplaceAllString(body, "\n")
	body = reBylineLine.ReplaceAllString(body, "")
	body = reReadMoreTrailer.ReplaceAllString(body, "")
	body = reExtraNewlines.ReplaceAllString(body, "\n\n")
	return strings.TrimSpace(body)
}
