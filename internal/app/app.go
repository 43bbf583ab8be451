package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/khoborlab/svnews/internal/article"
	"github.com/khoborlab/svnews/internal/config"
	"github.com/khoborlab/svnews/internal/facebook"
	"github.com/khoborlab/svnews/internal/fetch"
	"github.com/khoborlab/svnews/internal/logger"
	"github.com/khoborlab/svnews/internal/metrics"
	"github.com/khoborlab/svnews/internal/post"
	"github.com/khoborlab/svnews/internal/rss"
	"github.com/khoborlab/svnews/internal/scrape"
	"github.com/khoborlab/svnews/internal/store"
	"github.com/khoborlab/svnews/internal/summarize"
	"github.com/khoborlab/svnews/internal/translate"
)

// Publisher posts formatted text to the page feed and gates the run on
// credential validity.
type Publisher interface {
	Publish(message string) bool
	ValidateCredentials() error
}

// Store is the persisted posted-set.
type Store interface {
	Load() error
	IsPosted(url string) bool
	MarkPosted(url string) error
}

// Translator renders text in the target language, best effort.
type Translator interface {
	Translate(text, target string) string
}

// Source collects the run's candidate articles. A Source error is terminal
// for the run; per-article problems are handled inside the loop instead.
type Source interface {
	Collect() ([]article.Article, error)
}

// ArticleParser fetches and extracts a single article page.
type ArticleParser interface {
	ParseArticle(url string) (title, body string, err error)
}

// Pipeline sequences one run: validate credentials, load the store, collect
// articles, then per article dedupe, summarize, translate, format, publish,
// and record, until the post ceiling is reached.
type Pipeline struct {
	cfg        *config.Config
	store      Store
	publisher  Publisher
	summarizer summarize.Summarizer
	translator Translator
	source     Source
	parser     ArticleParser // nil when the source already carries bodies
	sleep      func(time.Duration)
}

// New wires the real components from config. Construction fails fast on
// misconfiguration (missing credentials, unknown summarizer type); everything
// after this point is fail-soft per article.
func New(cfg *config.Config) (*Pipeline, error) {
	summarizer, err := summarize.New(cfg.Site.Summarizer)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:        cfg,
		store:      store.New(cfg.PostedPath),
		publisher:  facebook.New(cfg.PageID, cfg.PageToken),
		summarizer: summarizer,
		translator: translate.New(openaiKeyFor(cfg)),
		sleep:      time.Sleep,
	}

	if cfg.SourceMode == "rss" {
		p.source = &rssSource{feedsPath: cfg.FeedsPath}
	} else {
		fetcher := fetch.New(cfg.RequestTimeout, cfg.FetchDelay, cfg.UserAgent)
		parser := scrape.NewParser(fetcher, cfg.Site.BaseURL)
		p.source = &scrapeSource{cfg: cfg, fetcher: fetcher, parser: parser}
		p.parser = parser
	}

	return p, nil
}

func openaiKeyFor(cfg *config.Config) string {
	// The translator shares the summarizer's key when the config points at a
	// custom env var; otherwise the conventional variable is used.
	if cfg.Site.Summarizer.Type == "openai" && cfg.Site.Summarizer.APIKeyEnv != "" {
		return os.Getenv(cfg.Site.Summarizer.APIKeyEnv)
	}
	return os.Getenv("OPENAI_API_KEY")
}

// Run executes the pipeline once. Only pre-loop failures (credentials, store
// load, source collection) return an error; per-article failures are logged,
// counted, and skipped.
func (p *Pipeline) Run() error {
	logger.Info("run starting", "mode", p.cfg.SourceMode, "max_posts", p.cfg.Site.MaxPosts)

	if err := p.publisher.ValidateCredentials(); err != nil {
		logger.Error("credential validation failed, aborting run", "error", err)
		metrics.Global.SetError(err.Error())
		return err
	}

	if err := p.store.Load(); err != nil {
		logger.Error("failed to load posted db, aborting run", "error", err)
		metrics.Global.SetError(err.Error())
		return err
	}

	articles, err := p.source.Collect()
	if err != nil {
		logger.Error("failed to collect articles, aborting run", "error", err)
		metrics.Global.SetError(err.Error())
		return err
	}
	logger.Info("articles collected", "count", len(articles))

	posted := 0
	for _, a := range articles {
		metrics.Global.IncArticlesSeen()

		if a.URL == "" {
			metrics.Global.IncEmptySkipped()
			continue
		}
		if p.store.IsPosted(a.URL) {
			logger.Debug("already posted, skipping", "url", a.URL)
			metrics.Global.IncDuplicatesSkipped()
			continue
		}

		ok, err := p.processOne(a)
		if err != nil && !ok {
			logger.Error("article failed, skipping", "url", a.URL, "error", err)
			continue
		}
		if !ok {
			continue
		}

		// ok with a non-nil error means the post went out but recording it
		// failed; processOne has logged that. The post still counts toward
		// the ceiling.
		posted++
		if posted >= p.cfg.Site.MaxPosts {
			logger.Info("post ceiling reached, stopping", "posted", posted)
			break
		}
	}

	metrics.Global.SetLastRun()
	logger.Info("run finished", "posted", posted)
	return nil
}

// processOne takes an article through summarize → translate → format →
// publish → record. Returns true only after a successful publish and store
// update.
func (p *Pipeline) processOne(a article.Article) (bool, error) {
	// In scrape mode the listing only carries title and URL; the body (and a
	// better title) comes from the article page.
	if p.parser != nil && a.BodySource == "" {
		title, body, err := p.parser.ParseArticle(a.URL)
		if err != nil {
			// Per-article fetch/parse failures degrade to an empty body; the
			// item may still be postable from its listing title.
			logger.Warn("article parse failed, continuing with empty body", "url", a.URL, "error", err)
		} else {
			if title != "" {
				a.TitleSource = title
			}
			a.BodySource = body
		}
	}

	if !a.Publishable() {
		logger.Warn("article has no usable title, skipping", "url", a.URL)
		metrics.Global.IncEmptySkipped()
		return false, nil
	}

	a.SummarySource = p.summarizer.Summarize(a.BodySource, p.cfg.Site.Summarizer.MaxSentences)

	title := p.translator.Translate(a.TitleSource, p.cfg.TargetLanguage)
	if strings.TrimSpace(title) == "" {
		title = a.TitleSource
	}

	summary := a.SummarySource
	if summary != "" && !p.summaryPreTranslated() {
		summary = p.translator.Translate(summary, p.cfg.TargetLanguage)
	}

	message := post.Format(title, post.Bullets(summary), a.SourceLink())
	if strings.TrimSpace(message) == "" || strings.TrimSpace(title) == "" {
		logger.Warn("formatted post is empty, skipping", "url", a.URL)
		metrics.Global.IncEmptySkipped()
		return false, nil
	}

	logger.Info("publishing article", "url", a.URL, "category", a.Category)
	if !p.publisher.Publish(message) {
		metrics.Global.IncPublishFailures()
		return false, fmt.Errorf("publish failed")
	}

	metrics.Global.IncPostsPublished()

	recordErr := p.store.MarkPosted(a.URL)
	if recordErr != nil {
		// The post is out but the record failed; surface loudly since the
		// next run would publish it again.
		logger.Error("published but failed to record, manual fix needed", "url", a.URL, "error", recordErr)
	}
	p.sleep(p.cfg.PostDelay)
	return true, recordErr
}

func (p *Pipeline) summaryPreTranslated() bool {
	lp, ok := p.summarizer.(summarize.LanguageProducer)
	return ok && lp.OutputLanguage() == p.cfg.TargetLanguage
}

// scrapeSource collects listing entries for each configured category, or
// bare URL stubs when the config addresses articles directly.
type scrapeSource struct {
	cfg     *config.Config
	fetcher scrape.Fetcher
	parser  *scrape.Parser
}

func (s *scrapeSource) Collect() ([]article.Article, error) {
	if len(s.cfg.Site.URLs) > 0 {
		var out []article.Article
		for _, u := range s.cfg.Site.URLs {
			out = append(out, article.Article{URL: store.Normalize(u), ScrapedAt: time.Now().UTC()})
		}
		return out, nil
	}

	var out []article.Article
	var lastErr error
	okCount := 0
	for _, category := range s.cfg.Site.Categories {
		listingURL := fmt.Sprintf("%s/category/%s/", strings.TrimSuffix(s.cfg.Site.BaseURL, "/"), category)

		html, err := s.fetcher.Get(listingURL)
		if err != nil {
			logger.Error("failed to fetch listing", "url", listingURL, "error", err)
			lastErr = err
			continue
		}

		entries, err := s.parser.ParseListing(html, capitalize(category))
		if err != nil {
			logger.Error("failed to parse listing", "url", listingURL, "error", err)
			lastErr = err
			continue
		}
		okCount++
		out = append(out, entries...)
		logger.Info("listing scraped", "category", category, "articles", len(entries))
	}

	// All listings failing is a run-level scrape failure.
	if okCount == 0 && lastErr != nil {
		return nil, fmt.Errorf("every listing failed: %w", lastErr)
	}
	return out, nil
}

type rssSource struct {
	feedsPath string
}

func (r *rssSource) Collect() ([]article.Article, error) {
	feeds, err := rss.LoadFeeds(r.feedsPath)
	if err != nil {
		return nil, err
	}
	return rss.FetchAll(feeds), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
