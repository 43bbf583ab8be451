package summarize

import "strings"

// Naive is the rule-based fallback: the first maxSentences non-trivial
// sentences of the text, verbatim.
type Naive struct{}

func (Naive) Summarize(text string, maxSentences int) string {
	return naiveSummary(text, maxSentences)
}

func naiveSummary(text string, maxSentences int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return ""
	}

	sentences := splitSentences(text)
	var picked []string
	for _, s := range sentences {
		if len([]rune(s)) <= 20 {
			continue
		}
		picked = append(picked, ensureTerminal(s))
		if len(picked) >= maxSentences {
			break
		}
	}

	// Nothing non-trivial: keep the first sentence rather than dropping the
	// whole text, so single-sentence inputs always come back.
	if len(picked) == 0 && len(sentences) > 0 {
		picked = append(picked, ensureTerminal(sentences[0]))
	}

	return strings.TrimSpace(strings.Join(picked, " "))
}
