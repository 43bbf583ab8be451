package summarize

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// Noise patterns removed before ranking. Dates and years are only dropped
// when they stand alone on a line, so in-sentence years survive.
var (
	reStandaloneDate = regexp.MustCompile(`(?m)^\d{4}[\s\-]\d{1,2}[\s\-]\d{1,2}\s*$`)
	reStandaloneYear = regexp.MustCompile(`(?m)^\d{4}\s*$`)
	reEmail          = regexp.MustCompile(`\S+@\S+`)
	reURL            = regexp.MustCompile(`https?://\S+`)
	reSentenceEnd    = regexp.MustCompile(`([.!?])\s+`)

	// Post-processing of ranker output.
	reMissingSpace = regexp.MustCompile(`\.(\p{Lu})`)
	reLostBoundary = regexp.MustCompile(`(\p{Ll})\s+(\p{Lu}\p{Ll})`)
	rePunctNoSpace = regexp.MustCompile(`([.!?])(\p{L})`)
)

// cleanForRanking normalizes raw article text into a single line of
// well-terminated sentences: noise lines removed, whitespace collapsed,
// fragments under 20 characters dropped.
func cleanForRanking(text string) string {
	if text == "" {
		return ""
	}

	text = reStandaloneDate.ReplaceAllString(text, "")
	text = reStandaloneYear.ReplaceAllString(text, "")
	text = reEmail.ReplaceAllString(text, "")
	text = reURL.ReplaceAllString(text, "")

	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.Join(strings.Fields(text), " ")

	var kept []string
	for _, s := range splitSentences(text) {
		if len([]rune(s)) > 20 {
			kept = append(kept, ensureTerminal(s))
		}
	}
	if len(kept) == 0 {
		return text
	}
	return strings.Join(kept, " ")
}

// splitSentences splits on terminal punctuation followed by whitespace,
// keeping the punctuation attached to its sentence.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var out []string
	last := 0
	for _, loc := range reSentenceEnd.FindAllStringSubmatchIndex(text, -1) {
		// loc[3] is the end of the punctuation group.
		if s := strings.TrimSpace(text[last:loc[3]]); s != "" {
			out = append(out, s)
		}
		last = loc[1]
	}
	if tail := strings.TrimSpace(text[last:]); tail != "" {
		out = append(out, tail)
	}
	return out
}

func ensureTerminal(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	last := []rune(s)[len([]rune(s))-1]
	if last != '.' && last != '!' && last != '?' {
		return s + "."
	}
	return s
}

// adaptiveCount picks how many sentences to extract: 15% of the document,
// floored at 2, never more than maxSentences. Short documents over-compress
// and long ones under-compress at any fixed count.
func adaptiveCount(docSentences, maxSentences int) int {
	optimal := int(math.Round(float64(docSentences) * 0.15))
	if optimal < 2 {
		optimal = 2
	}
	if optimal > maxSentences {
		optimal = maxSentences
	}
	return optimal
}

// Small stopword sets for the supported source languages. Ranking quality
// only needs the highest-frequency function words filtered out.
var stopwords = map[string]map[string]struct{}{
	"sv": toSet("och", "att", "det", "som", "en", "ett", "är", "av", "för",
		"på", "med", "den", "till", "inte", "har", "de", "om", "ska", "var",
		"sig", "från", "vi", "man", "kan", "när", "efter", "nu", "under"),
	"en": toSet("the", "and", "that", "for", "with", "this", "from", "are",
		"was", "have", "has", "not", "but", "his", "her", "they", "will",
		"been", "were", "their", "which", "into", "more", "than", "also"),
	"da": toSet("og", "at", "det", "som", "en", "et", "er", "af", "for",
		"på", "med", "den", "til", "ikke", "har", "de", "om", "skal", "var"),
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// tokenize lowercases a sentence and returns its significant word tokens.
func tokenize(sentence, lang string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(sentence) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	stop := stopwords[lang]
	var tokens []string
	for _, w := range strings.Fields(b.String()) {
		if len([]rune(w)) <= 2 {
			continue
		}
		if _, isStop := stop[w]; isStop {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// postProcess repairs ranker output that lost spacing or punctuation: a space
// is restored after a period before a capital, and a period is inserted where
// a lowercase word runs straight into a capitalized one. The second rule is a
// heuristic and can misfire on mid-sentence proper nouns.
func postProcess(summary string) string {
	summary = strings.ReplaceAll(summary, "\n", " ")
	summary = strings.ReplaceAll(summary, "\r", " ")
	summary = reMissingSpace.ReplaceAllString(summary, ". $1")
	summary = reLostBoundary.ReplaceAllString(summary, "$1. $2")
	summary = rePunctNoSpace.ReplaceAllString(summary, "$1 $2")
	return strings.TrimSpace(strings.Join(strings.Fields(summary), " "))
}
