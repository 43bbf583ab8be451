// Package summarize provides the pluggable text summarization layer of the
// pipeline: two graph-rank extractive implementations, two LLM-backed
// abstractive implementations, and a naive first-sentences fallback.
//
// All implementations share one contract: Summarize never fails past its own
// boundary. Ordinary runtime problems (network, rate limits, degenerate
// input) produce a best-effort string or "". Only construction can fail, and
// only for missing configuration.
package summarize

import (
	"errors"
	"fmt"
	"os"

	"github.com/khoborlab/svnews/internal/config"
)

// Summarizer produces a bounded-length summary of the given text.
// Summarize("") returns "". The output contains at most maxSentences
// terminal-punctuation-delimited sentences for any input of three or more
// sentences; shorter inputs are passed through the naive path.
type Summarizer interface {
	Summarize(text string, maxSentences int) string
}

// LanguageProducer is implemented by summarizers that can emit the summary
// already translated into a target language. The orchestrator skips the
// translation stage when the produced language matches the configured target.
type LanguageProducer interface {
	OutputLanguage() string
}

var (
	ErrMissingAPIKey = errors.New("summarizer requires an API key")
	ErrUnknownType   = errors.New("unknown summarizer type")
)

// New builds the summarizer selected by the config. LLM backends fail fast
// here when their credential is absent; everything after construction is
// fail-soft.
func New(cfg config.SummarizerConfig) (Summarizer, error) {
	switch cfg.Type {
	case "", "lexrank":
		return NewLexRank(cfg.Language), nil
	case "textrank":
		return NewTextRank(cfg.Language), nil
	case "naive":
		return Naive{}, nil
	case "openai":
		key := apiKey(cfg.APIKeyEnv, "OPENAI_API_KEY")
		return NewOpenAI(key, cfg.Model, cfg.Language, cfg.OutputLanguage, NewLexRank(cfg.Language))
	case "gemini":
		key := apiKey(cfg.APIKeyEnv, "GEMINI_API_KEY")
		return NewGemini(key, cfg.Model, cfg.Language, NewLexRank(cfg.Language))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, cfg.Type)
	}
}

func apiKey(envName, fallbackEnv string) string {
	if envName != "" {
		return os.Getenv(envName)
	}
	return os.Getenv(fallbackEnv)
}

// langName maps an ISO 639-1 code to the language name used in LLM prompts.
func langName(code string) string {
	switch code {
	case "sv":
		return "Swedish"
	case "en":
		return "English"
	case "de":
		return "German"
	case "da":
		return "Danish"
	case "no":
		return "Norwegian"
	case "bn":
		return "Bangla"
	case "uk":
		return "Ukrainian"
	default:
		return "the source language"
	}
}
