package article

import "time"

// Article is the unit of work flowing through the pipeline. It is created by
// a source (listing scrape or RSS), enriched by the summarizer and translator,
// published once, and discarded at the end of the run.
type Article struct {
	// URL is the dedupe identity recorded in the posted-set: the page URL
	// for scraped items, the item GUID for feed items (which may be an
	// opaque tag: URI or hash).
	URL string
	// Link is the address shown in the published post. Empty means URL
	// doubles as the display link.
	Link        string
	TitleSource string
	Category    string
	BodySource  string
	// SummarySource is filled by the summarizer. Depending on the backend it
	// may already be in the target language.
	SummarySource string
	ScrapedAt     time.Time
}

// SourceLink returns the URL to print in the post.
func (a Article) SourceLink() string {
	if a.Link != "" {
		return a.Link
	}
	return a.URL
}

// Publishable reports whether the article carries enough identity to be
// considered for posting. The final formatted-text check happens later, after
// summarization and translation.
func (a Article) Publishable() bool {
	return a.URL != "" && a.TitleSource != ""
}
