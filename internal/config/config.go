package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configuration problems are the only errors that abort a run before the
// pipeline starts; they carry remediation hints for the operator.
var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

// SummarizerConfig selects and parameterizes a summarizer implementation.
type SummarizerConfig struct {
	Type           string `json:"type"`            // lexrank | textrank | openai | gemini | naive
	Language       string `json:"language"`        // ISO 639-1 code of the source text
	OutputLanguage string `json:"output_language"` // optional; only honored by the openai backend
	Model          string `json:"model"`           // optional model override for LLM backends
	APIKeyEnv      string `json:"api_key_env"`     // env var holding the key for LLM backends
	MaxSentences   int    `json:"max_sentences"`
}

// SiteConfig is the JSON config file contract.
type SiteConfig struct {
	BaseURL    string           `json:"base_url"`
	Categories []string         `json:"categories,omitempty"`
	URLs       []string         `json:"urls,omitempty"`
	Summarizer SummarizerConfig `json:"summarizer"`
	MaxPosts   int              `json:"max_posts"`
}

type Config struct {
	// Facebook publish settings
	PageID    string
	PageToken string

	// Source selection
	SourceMode     string // "scrape" or "rss"
	SiteConfigPath string
	FeedsPath      string
	Site           SiteConfig

	// Dedupe store
	PostedPath string

	// Politeness and limits
	FetchDelay     time.Duration
	PostDelay      time.Duration
	RequestTimeout time.Duration
	UserAgent      string
	TargetLanguage string // translation target, ISO 639-1

	Debug bool
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Load builds a Config from environment variables and the site config file.
// The returned config is immutable for the run.
func Load() (*Config, error) {
	cfg := &Config{
		SourceMode:     getEnvOrDefault("SOURCE_MODE", "scrape"),
		SiteConfigPath: getEnvOrDefault("SITE_CONFIG_PATH", "configs/site.json"),
		FeedsPath:      getEnvOrDefault("FEEDS_CONFIG_PATH", "configs/feeds.yaml"),
		PostedPath:     getEnvOrDefault("POSTED_DB_PATH", "posted.json"),
		FetchDelay:     getEnvDurationOrDefault("FETCH_DELAY", 1500*time.Millisecond),
		PostDelay:      getEnvDurationOrDefault("POST_DELAY", 2*time.Second),
		RequestTimeout: getEnvDurationOrDefault("REQUEST_TIMEOUT", 15*time.Second),
		UserAgent:      getEnvOrDefault("USER_AGENT", defaultUserAgent),
		TargetLanguage: getEnvOrDefault("TARGET_LANGUAGE", "bn"),
	}

	cfg.PageID = os.Getenv("FB_PAGE_ID")
	cfg.PageToken = os.Getenv("FB_PAGE_TOKEN")

	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	site, err := LoadSiteConfig(cfg.SiteConfigPath)
	if err != nil {
		return nil, err
	}
	cfg.Site = *site

	if v := os.Getenv("MAX_POSTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Site.MaxPosts = n
		}
	}

	return cfg, cfg.Validate()
}

// LoadSiteConfig reads and sanity-checks the JSON site config.
func LoadSiteConfig(path string) (*SiteConfig, error) {
	site := &SiteConfig{
		Summarizer: SummarizerConfig{
			Type:         "lexrank",
			Language:     "sv",
			MaxSentences: 4,
		},
		MaxPosts: 1,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file is fine for rss mode; scrape mode catches the
			// missing base_url during Validate.
			return site, nil
		}
		return nil, fmt.Errorf("read site config: %w", err)
	}

	if err := json.Unmarshal(data, site); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
	}

	if site.Summarizer.MaxSentences <= 0 {
		site.Summarizer.MaxSentences = 4
	}
	if site.MaxPosts <= 0 {
		site.MaxPosts = 1
	}
	if site.Summarizer.Language == "" {
		site.Summarizer.Language = "sv"
	}

	return site, nil
}

func (c *Config) Validate() error {
	if c.PageID == "" {
		return fmt.Errorf("%w: FB_PAGE_ID is not set; export the target page id", ErrMissingCredential)
	}
	if c.PageToken == "" {
		return fmt.Errorf("%w: FB_PAGE_TOKEN is not set; generate a page access token and export it", ErrMissingCredential)
	}
	if c.SourceMode != "scrape" && c.SourceMode != "rss" {
		return fmt.Errorf("%w: SOURCE_MODE must be 'scrape' or 'rss'", ErrInvalidConfig)
	}
	if len(c.Site.Categories) > 0 && len(c.Site.URLs) > 0 {
		return fmt.Errorf("%w: 'categories' and 'urls' are mutually exclusive", ErrInvalidConfig)
	}
	if c.SourceMode == "scrape" && c.Site.BaseURL == "" && len(c.Site.URLs) == 0 {
		return fmt.Errorf("%w: scrape mode needs 'base_url' (with 'categories') or 'urls'", ErrInvalidConfig)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d >= 0 {
			return d
		}
	}
	return defaultValue
}
