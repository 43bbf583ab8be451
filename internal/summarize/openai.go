package summarize

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"

	"github.com/khoborlab/svnews/internal/logger"
	"github.com/khoborlab/svnews/internal/metrics"
)

// maxPromptRunes bounds how much article text goes into an LLM prompt.
const maxPromptRunes = 6000

// OpenAI is the abstractive summarizer backed by the chat completion API.
// When outputLang is set the summary comes back already in that language and
// the pipeline skips its own translation stage. Any request failure falls
// back to the extractive summarizer.
type OpenAI struct {
	client     *openai.Client
	model      string
	lang       string
	outputLang string
	fallback   Summarizer
	timeout    time.Duration
}

func NewOpenAI(apiKey, model, lang, outputLang string, fallback Summarizer) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openai summarizer selected but no key configured", ErrMissingAPIKey)
	}
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	return &OpenAI{
		client:     openai.NewClient(apiKey),
		model:      model,
		lang:       lang,
		outputLang: outputLang,
		fallback:   fallback,
		timeout:    20 * time.Second,
	}, nil
}

// OutputLanguage reports the language the summary is produced in, or "" when
// the summary stays in the source language.
func (o *OpenAI) OutputLanguage() string {
	return o.outputLang
}

func (o *OpenAI) Summarize(text string, maxSentences int) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	prompt := o.buildPrompt(truncateForPrompt(text), maxSentences)

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   600,
		Temperature: 0.3,
	})
	if err != nil {
		logger.Warn("openai summarization failed, using extractive fallback", "error", err)
		metrics.Global.IncSummaryFallbacks()
		return o.fallback.Summarize(text, maxSentences)
	}
	if len(resp.Choices) == 0 {
		logger.Warn("openai returned no choices, using extractive fallback")
		metrics.Global.IncSummaryFallbacks()
		return o.fallback.Summarize(text, maxSentences)
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	summary = strings.Trim(summary, `"'`)
	if summary == "" {
		metrics.Global.IncSummaryFallbacks()
		return o.fallback.Summarize(text, maxSentences)
	}
	return postProcess(summary)
}

func (o *OpenAI) buildPrompt(text string, maxSentences int) string {
	target := langName(o.lang)
	if o.outputLang != "" {
		target = langName(o.outputLang)
	}
	return fmt.Sprintf(`Summarize the following %s news article in at most %d sentences.
Write the summary in %s.
Keep the journalistic tone and the concrete facts (names, numbers, places).
Reply with the summary only, no preamble.

Article:
%s`, langName(o.lang), maxSentences, target, text)
}

// truncateForPrompt cuts input on a rune boundary and tries to end at a
// sentence so the model doesn't see a torn-off clause.
func truncateForPrompt(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= maxPromptRunes {
		return text
	}
	runes := []rune(text)
	trimmed := string(runes[:maxPromptRunes])
	if idx := strings.LastIndex(trimmed, ". "); idx > 1200 {
		trimmed = trimmed[:idx+1]
	}
	return trimmed
}
