package post

import (
	"fmt"
	"regexp"
	"strings"
)

// maxBullets is the number of summary points a post carries.
const maxBullets = 3

// bulletSourceCap bounds how much summary text feeds the bullet list.
const bulletSourceCap = 300

// Format composes the final Bangla post from the translated title, summary
// bullets, and the source URL. The template is fixed.
func Format(title string, bullets []string, link string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📰 শিরোনাম: %s\n\n", title))

	if len(bullets) > 0 {
		b.WriteString("📌 সংক্ষেপ:\n")
		for _, point := range bullets {
			b.WriteString(fmt.Sprintf("- %s\n", point))
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("🔗 সূত্র: %s", link))

	return b.String()
}

var reSentenceSplit = regexp.MustCompile(`[.!?।]\s+`)

// Bullets derives up to three bullet points from a summary: its first three
// sentences, or three roughly equal chunks when the text has fewer sentences.
// The Bangla danda (।) counts as a sentence terminator alongside Latin
// punctuation, since bullets are usually built from translated text.
func Bullets(summary string) []string {
	summary = strings.Join(strings.Fields(summary), " ")
	if summary == "" {
		return nil
	}

	if runes := []rune(summary); len(runes) > bulletSourceCap {
		summary = string(runes[:bulletSourceCap])
	}

	var sentences []string
	for _, s := range reSentenceSplit.Split(summary, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) >= maxBullets {
		return sentences[:maxBullets]
	}
	if len(sentences) == 0 {
		return nil
	}

	// Too few sentences: split the text into roughly equal chunks instead.
	runes := []rune(summary)
	chunkSize := (len(runes) + maxBullets - 1) / maxBullets
	if chunkSize < 1 {
		chunkSize = 1
	}

	var chunks []string
	for i := 0; i < len(runes) && len(chunks) < maxBullets; i += chunkSize {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		if chunk := strings.TrimSpace(string(runes[i:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}
