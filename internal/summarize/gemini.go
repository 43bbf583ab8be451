package summarize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/khoborlab/svnews/internal/logger"
	"github.com/khoborlab/svnews/internal/metrics"
)

// Gemini is the second abstractive backend. The client is constructed lazily
// on first use; a failed construction or a failed generation both fall back
// to the extractive summarizer.
type Gemini struct {
	apiKey   string
	model    string
	lang     string
	fallback Summarizer
	timeout  time.Duration

	client *genai.Client
}

func NewGemini(apiKey, model, lang string, fallback Summarizer) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: gemini summarizer selected but no key configured", ErrMissingAPIKey)
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &Gemini{
		apiKey:   apiKey,
		model:    model,
		lang:     lang,
		fallback: fallback,
		timeout:  30 * time.Second,
	}, nil
}

func (g *Gemini) Summarize(text string, maxSentences int) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	if g.client == nil {
		client, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
		if err != nil {
			logger.Warn("gemini client init failed, using extractive fallback", "error", err)
			metrics.Global.IncSummaryFallbacks()
			return g.fallback.Summarize(text, maxSentences)
		}
		g.client = client
	}

	prompt := fmt.Sprintf(`Summarize the following %s news article in at most %d sentences, in %s.
Keep concrete facts. Reply with the summary only.

Article:
%s`, langName(g.lang), maxSentences, langName(g.lang), truncateForPrompt(text))

	model := g.client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		logger.Warn("gemini summarization failed, using extractive fallback", "error", err)
		metrics.Global.IncSummaryFallbacks()
		return g.fallback.Summarize(text, maxSentences)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		logger.Warn("gemini returned no content, using extractive fallback")
		metrics.Global.IncSummaryFallbacks()
		return g.fallback.Summarize(text, maxSentences)
	}

	summary := strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
	if summary == "" {
		metrics.Global.IncSummaryFallbacks()
		return g.fallback.Summarize(text, maxSentences)
	}
	return postProcess(summary)
}

// Close releases the lazily constructed client, if any.
func (g *Gemini) Close() {
	if g.client != nil {
		g.client.Close()
	}
}
