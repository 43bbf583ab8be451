package rss

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/khoborlab/svnews/internal/article"
	"github.com/khoborlab/svnews/internal/logger"
)

// FeedsConfig is the YAML feeds list:
//
//	feeds:
//	  - https://...
type FeedsConfig struct {
	Feeds []string `yaml:"feeds"`
}

// LoadFeeds reads the RSS feed URL list from a YAML file.
func LoadFeeds(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feeds config: %w", err)
	}
	defer f.Close()

	var cfg FeedsConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse feeds config: %w", err)
	}
	return cfg.Feeds, nil
}

var reHTMLTags = regexp.MustCompile(`<[^>]+>`)

// FetchAll downloads and parses every feed, mapping items into pipeline
// articles. A feed that fails to parse is logged and skipped.
func FetchAll(urls []string) []article.Article {
	parser := gofeed.NewParser()
	var out []article.Article
	okCount := 0

	for _, feedURL := range urls {
		feed, err := parser.ParseURL(feedURL)
		if err != nil {
			logger.Warn("failed to parse feed", "url", feedURL, "error", err)
			continue
		}
		okCount++

		for _, item := range feed.Items {
			out = append(out, fromItem(item))
		}
		logger.Info("loaded feed", "url", feedURL, "items", len(feed.Items))
	}

	logger.Info("feeds processed", "ok", okCount, "total", len(urls))
	return out
}

// fromItem maps a feed entry. The dedupe identifier preference is GUID, then
// link, then title, matching the legacy posted-db schema; the item link is
// carried separately so an opaque GUID never ends up as the post's source
// line.
func fromItem(item *gofeed.Item) article.Article {
	id := item.GUID
	if id == "" {
		id = item.Link
	}
	if id == "" {
		id = item.Title
	}

	body := item.Description
	if body == "" {
		body = item.Content
	}
	body = strings.TrimSpace(reHTMLTags.ReplaceAllString(body, " "))
	body = strings.Join(strings.Fields(body), " ")

	return article.Article{
		URL:         id,
		Link:        item.Link,
		TitleSource: item.Title,
		BodySource:  body,
		ScrapedAt:   time.Now().UTC(),
	}
}
