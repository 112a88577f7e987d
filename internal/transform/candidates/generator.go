// internal/transform/candidates/generator.go
package candidates

import (
	"context"
	"sort"
	"strings"

	"niche-proxy/internal/common/logger"
	"niche-proxy/internal/transform/similarity"
)

// maxSynthesizedLen caps query-synthesized candidate names.
const maxSynthesizedLen = 30

// genericCandidates seed the list when no category vocabulary applies.
var genericCandidates = []string{"Content Creation", "Video Tutorials", "Educational Content"}

// formatWords are content-format suffixes combined with the query.
var formatWords = []string{"Tutorials", "Tips", "Guides", "Reviews"}

// categoryWords are category-flavored suffixes for query synthesis.
var categoryWords = map[string]string{
	"Gaming":               "Games",
	"Education":            "Learning",
	"Entertainment":        "Shows",
	"Howto & Style":        "Style",
	"Science & Technology": "Tech",
}

// Generator produces ranked niche-name candidates for a search.
type Generator struct {
	scorer *similarity.Scorer
	vocab  *VocabStore
	logger logger.Logger
}

// NewGenerator creates a candidate generator.
func NewGenerator(scorer *similarity.Scorer, vocab *VocabStore, log logger.Logger) *Generator {
	return &Generator{scorer: scorer, vocab: vocab, logger: log}
}

type scoredCandidate struct {
	name  string
	score float64
}

// Generate returns up to desiredCount candidate niche names ranked by
// relevance to the query and category. With a non-empty query,
// candidates scoring at least threshold come first; lower-scoring ones
// backfill so the count is met whenever enough candidates exist.
func (g *Generator) Generate(ctx context.Context, query, category string, desiredCount int, threshold float64) []string {
	vocab := g.vocab.Load(ctx)
	query = strings.TrimSpace(query)

	pool := g.seedCandidates(vocab, query, category)
	pool = dedupe(pool)

	scored := make([]scoredCandidate, 0, len(pool))
	for _, name := range pool {
		scored = append(scored, scoredCandidate{
			name:  name,
			score: g.scoreCandidate(name, query, category),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	var relevant []string
	if query != "" {
		for _, c := range scored {
			if c.score >= threshold {
				relevant = append(relevant, c.name)
			}
		}
	}

	// Backfill from the highest-scoring remainder.
	if len(relevant) < desiredCount {
		included := make(map[string]bool, len(relevant))
		for _, name := range relevant {
			included[name] = true
		}
		for _, c := range scored {
			if len(relevant) >= desiredCount {
				break
			}
			if !included[c.name] {
				relevant = append(relevant, c.name)
				included[c.name] = true
			}
		}
	}

	if len(relevant) > desiredCount {
		relevant = relevant[:desiredCount]
	}
	return relevant
}

// seedCandidates assembles the unscored candidate pool.
func (g *Generator) seedCandidates(vocab *Vocabulary, query, category string) []string {
	categoryTerms, categoryKnown := vocab.Categories[category]

	switch {
	case categoryKnown:
		pool := synthesizeQueryTerms(query, category)
		return append(pool, categoryTerms...)

	case (category == "" || category == "All") && query != "":
		// Sample every category so any query can find a home.
		pool := synthesizeQueryTerms(query, "Content")
		for _, cat := range sortedKeys(vocab.Categories) {
			pool = append(pool, firstN(vocab.Categories[cat], 3)...)
		}
		return pool

	default:
		var pool []string
		for _, cat := range sortedKeys(vocab.Categories) {
			pool = append(pool, firstN(vocab.Categories[cat], 2)...)
		}
		return append(pool, genericCandidates...)
	}
}

// synthesizeQueryTerms combines the query with the category, format
// words, and modifier templates. Terms no longer than the query or
// category, or longer than 30 characters, are discarded.
func synthesizeQueryTerms(query, category string) []string {
	if query == "" {
		return nil
	}

	terms := []string{
		query + " " + category,
		category + " " + query,
		"Best " + query + " Content",
		query + " for Beginners",
		"Advanced " + query + " Techniques",
		query + " Trends",
		"Popular " + query,
		"Trending " + query,
	}
	for _, word := range formatWords {
		terms = append(terms, query+" "+word)
	}
	if word, ok := categoryWords[category]; ok {
		terms = append(terms, query+" "+word)
	}

	kept := terms[:0]
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if len(term) <= len(category) || len(term) <= len(query) || len(term) > maxSynthesizedLen {
			continue
		}
		kept = append(kept, term)
	}
	return kept
}

// scoreCandidate blends string similarity with substring, prefix,
// token-overlap, category, and length signals, clamped to [0, 1].
func (g *Generator) scoreCandidate(name, query, category string) float64 {
	nameLower := strings.ToLower(name)
	var score float64

	if query != "" {
		queryLower := strings.ToLower(query)
		score = g.scorer.Score(name, query)

		if strings.Contains(nameLower, queryLower) {
			score += 0.2
		} else {
			score += 0.2 * tokenOverlap(nameLower, queryLower)
		}
		if strings.HasPrefix(nameLower, queryLower) {
			score += 0.1
		}
	}

	if category != "" && category != "All" {
		categoryLower := strings.ToLower(category)
		if strings.Contains(nameLower, categoryLower) {
			score += 0.15
		} else {
			score += 0.15 * tokenOverlap(nameLower, categoryLower)
		}
	}

	switch n := len([]rune(name)); {
	case n > 25:
		score -= 0.05
	case n >= 10:
		score += 0.05
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// tokenOverlap gives partial credit for multi-word needles: the
// fraction of needle tokens contained in haystack. Single-token
// needles earn nothing here; the substring check already covered them.
func tokenOverlap(haystack, needle string) float64 {
	tokens := strings.Fields(needle)
	if len(tokens) < 2 {
		return 0
	}
	matched := 0
	for _, token := range tokens {
		if strings.Contains(haystack, token) {
			matched++
		}
	}
	return float64(matched) / float64(len(tokens))
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func firstN(items []string, n int) []string {
	if len(items) < n {
		n = len(items)
	}
	return items[:n]
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
