package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"

	"github.com/khoborlab/svnews/internal/logger"
	"github.com/khoborlab/svnews/internal/metrics"
)

// maxTranslateRunes caps submissions so upstream request limits hold.
const maxTranslateRunes = 8000

const defaultFreeEndpoint = "https://translate.googleapis.com/translate_a/single"

// Translator maps text into a target language with a two-tier strategy: an
// LLM one-shot instruction when a key is configured, then the free
// translation endpoint. Both failing returns the input unchanged; Translate
// never reports an error to the caller.
type Translator struct {
	openaiClient *openai.Client
	http         *http.Client
	freeEndpoint string
	timeout      time.Duration
}

func New(openaiKey string) *Translator {
	t := &Translator{
		http:         &http.Client{Timeout: 15 * time.Second},
		freeEndpoint: defaultFreeEndpoint,
		timeout:      20 * time.Second,
	}
	if openaiKey != "" {
		t.openaiClient = openai.NewClient(openaiKey)
	}
	return t
}

// Translate returns text rendered in the target language, or the original
// text when every tier fails or the input is empty.
func (t *Translator) Translate(text, target string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	original := text
	text = normalizeForTranslation(text)

	if t.openaiClient != nil {
		if result, err := t.translateWithLLM(text, target); err == nil && result != "" {
			return result
		} else if err != nil {
			logger.Warn("llm translation failed, trying free service", "target", target, "error", err)
		}
	}

	result, err := t.translateWithFreeService(text, target)
	if err == nil && result != "" {
		return result
	}
	if err != nil {
		logger.Warn("free translation failed, keeping original text", "target", target, "error", err)
	}
	metrics.Global.IncTranslateFallbacks()
	return original
}

func normalizeForTranslation(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) > maxTranslateRunes {
		text = string([]rune(text)[:maxTranslateRunes])
	}
	return text
}

func (t *Translator) translateWithLLM(text, target string) (string, error) {
	prompt := fmt.Sprintf("Translate the following text to %s. Reply with the translation only, no comments or notes.\n\n%s",
		languageName(target), text)

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	resp, err := t.openaiClient.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT3Dot5Turbo,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: 2000,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in completion response")
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	out = strings.Trim(out, `"'`)
	return out, nil
}

func (t *Translator) translateWithFreeService(text, target string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto")
	params.Set("tl", target)
	params.Set("dt", "t")
	params.Set("q", text)

	resp, err := t.http.Get(t.freeEndpoint + "?" + params.Encode())
	if err != nil {
		return "", fmt.Errorf("translation request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Warn("failed to close translation response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation service returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read translation response: %w", err)
	}
	return parseFreeServiceResponse(body)
}

// parseFreeServiceResponse unpacks the nested-array response format: the
// first element holds segment arrays whose first element is translated text.
func parseFreeServiceResponse(body []byte) (string, error) {
	var response []interface{}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if len(response) == 0 {
		return "", errors.New("empty translation response")
	}

	segments, ok := response[0].([]interface{})
	if !ok {
		return "", errors.New("unexpected translation response format")
	}

	var b strings.Builder
	for _, seg := range segments {
		if parts, ok := seg.([]interface{}); ok && len(parts) > 0 {
			if translated, ok := parts[0].(string); ok {
				b.WriteString(translated)
			}
		}
	}
	return b.String(), nil
}

func languageName(code string) string {
	switch code {
	case "bn":
		return "Bangla"
	case "sv":
		return "Swedish"
	case "en":
		return "English"
	case "uk":
		return "Ukrainian"
	case "da":
		return "Danish"
	default:
		return code
	}
}
