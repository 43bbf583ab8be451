package summarize

import (
	"math"
	"sort"
	"strings"
)

// GraphRank implements extractive summarization over the document's sentence
// graph: sentences become nodes, pairwise similarity becomes edge weight, and
// a damped power iteration scores centrality. Two similarity variants are
// supported:
//
//   - lexrank: cosine similarity of tf-idf vectors, thresholded
//   - textrank: word-overlap normalized by log sentence lengths
type GraphRank struct {
	variant string
	lang    string
}

func NewLexRank(lang string) *GraphRank {
	return &GraphRank{variant: "lexrank", lang: lang}
}

func NewTextRank(lang string) *GraphRank {
	return &GraphRank{variant: "textrank", lang: lang}
}

const (
	dampingFactor   = 0.85
	rankIterations  = 30
	rankConvergence = 1e-4
	cosineThreshold = 0.1
)

func (g *GraphRank) Summarize(text string, maxSentences int) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	cleaned := cleanForRanking(text)
	sentences := splitSentences(cleaned)
	if len(sentences) < 3 {
		// Too short to rank meaningfully.
		return naiveSummary(text, maxSentences)
	}

	tokens := make([][]string, len(sentences))
	for i, s := range sentences {
		tokens[i] = tokenize(s, g.lang)
	}

	var sim [][]float64
	if g.variant == "textrank" {
		sim = overlapMatrix(tokens)
	} else {
		sim = cosineMatrix(tokens)
	}

	scores := powerIterate(sim)
	count := adaptiveCount(len(sentences), maxSentences)
	selected := topByScore(scores, count)

	var parts []string
	for _, idx := range selected {
		parts = append(parts, ensureTerminal(sentences[idx]))
	}
	summary := postProcess(strings.Join(parts, " "))
	if summary == "" {
		return naiveSummary(text, maxSentences)
	}
	return summary
}

// cosineMatrix builds tf-idf weighted cosine similarities, zeroing edges
// below the threshold so weakly related sentences don't link.
func cosineMatrix(tokens [][]string) [][]float64 {
	n := len(tokens)

	df := map[string]int{}
	tf := make([]map[string]float64, n)
	for i, sent := range tokens {
		tf[i] = map[string]float64{}
		for _, w := range sent {
			tf[i][w]++
		}
		for w := range tf[i] {
			df[w]++
		}
	}

	idf := func(w string) float64 {
		return math.Log(float64(n) / (1.0 + float64(df[w])))
	}

	norm := make([]float64, n)
	for i := range tf {
		var sum float64
		for w, f := range tf[i] {
			v := f * idf(w)
			sum += v * v
		}
		norm[i] = math.Sqrt(sum)
	}

	sim := newMatrix(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if norm[i] == 0 || norm[j] == 0 {
				continue
			}
			var dot float64
			for w, fi := range tf[i] {
				if fj, ok := tf[j][w]; ok {
					wIDF := idf(w)
					dot += fi * wIDF * fj * wIDF
				}
			}
			cos := dot / (norm[i] * norm[j])
			if cos >= cosineThreshold {
				sim[i][j] = cos
				sim[j][i] = cos
			}
		}
	}
	return sim
}

// overlapMatrix builds the TextRank similarity: shared words divided by the
// sum of log sentence lengths.
func overlapMatrix(tokens [][]string) [][]float64 {
	n := len(tokens)
	sets := make([]map[string]struct{}, n)
	for i, sent := range tokens {
		sets[i] = map[string]struct{}{}
		for _, w := range sent {
			sets[i][w] = struct{}{}
		}
	}

	sim := newMatrix(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			li, lj := len(sets[i]), len(sets[j])
			if li <= 1 || lj <= 1 {
				continue
			}
			shared := 0
			for w := range sets[i] {
				if _, ok := sets[j][w]; ok {
					shared++
				}
			}
			if shared == 0 {
				continue
			}
			s := float64(shared) / (math.Log(float64(li)) + math.Log(float64(lj)))
			sim[i][j] = s
			sim[j][i] = s
		}
	}
	return sim
}

// powerIterate runs damped PageRank over the weighted similarity graph.
func powerIterate(sim [][]float64) []float64 {
	n := len(sim)
	scores := make([]float64, n)
	next := make([]float64, n)
	for i := range scores {
		scores[i] = 1.0 / float64(n)
	}

	rowSum := make([]float64, n)
	for i := range sim {
		for _, w := range sim[i] {
			rowSum[i] += w
		}
	}

	for iter := 0; iter < rankIterations; iter++ {
		for i := 0; i < n; i++ {
			var incoming float64
			for j := 0; j < n; j++ {
				if j == i || sim[j][i] == 0 || rowSum[j] == 0 {
					continue
				}
				incoming += scores[j] * sim[j][i] / rowSum[j]
			}
			next[i] = (1-dampingFactor)/float64(n) + dampingFactor*incoming
		}

		var delta float64
		for i := range scores {
			delta += math.Abs(next[i] - scores[i])
		}
		copy(scores, next)
		if delta < rankConvergence {
			break
		}
	}
	return scores
}

// topByScore returns the indices of the count highest-scored sentences,
// reordered by document position so the summary reads in original order.
func topByScore(scores []float64, count int) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	if count > len(idx) {
		count = len(idx)
	}
	selected := append([]int(nil), idx[:count]...)
	sort.Ints(selected)
	return selected
}

func newMatrix(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}
