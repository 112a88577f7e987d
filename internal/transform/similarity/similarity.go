// Package similarity blends three string similarity algorithms into a
// single score used for relevance ranking: Levenshtein for
// character-level edits, token Jaccard for multi-word overlap, and
// Jaro-Winkler for prefix emphasis.
package similarity

import (
	"strings"

	"niche-proxy/internal/common/config"
)

// Scorer combines the algorithms with configured weights. Scores are
// always in [0, 1]; 1 means identical after case folding.
type Scorer struct {
	weights config.AlgorithmWeights
}

// NewScorer creates a scorer with the given algorithm weights. The
// weights are validated at config load; they sum to 1.0.
func NewScorer(weights config.AlgorithmWeights) *Scorer {
	return &Scorer{weights: weights}
}

// Score computes the blended similarity of two strings. Comparison is
// case-insensitive. Shortcut branches handle very short strings and
// substring containment before the weighted blend; because of them the
// score is not guaranteed symmetric in every branch, and callers must
// not rely on Score(a, b) == Score(b, a).
func (s *Scorer) Score(str1, str2 string) float64 {
	if str1 == "" && str2 == "" {
		return 1.0
	}
	if str1 == "" || str2 == "" {
		return 0.0
	}

	s1 := strings.ToLower(str1)
	s2 := strings.ToLower(str2)

	if s1 == s2 {
		return 1.0
	}

	r1 := []rune(s1)
	r2 := []rune(s2)

	// Very short strings carry too little signal for the blend.
	if min(len(r1), len(r2)) < 3 {
		jw := JaroWinkler(s1, s2)
		if jw >= 0.9 {
			return jw
		}
		if strings.Contains(s1, s2) || strings.Contains(s2, s1) {
			return 0.7
		}
		return 0.1
	}

	// Substring containment scores on length ratio alone.
	if strings.Contains(s1, s2) || strings.Contains(s2, s1) {
		shorter := float64(min(len(r1), len(r2)))
		longer := float64(max(len(r1), len(r2)))
		return 0.8 + 0.2*shorter/longer
	}

	lev := Levenshtein(s1, s2)

	var jaccard float64
	if strings.Contains(s1, " ") || strings.Contains(s2, " ") {
		jaccard = Jaccard(s1, s2)
	}

	jw := JaroWinkler(s1, s2)

	final := lev*s.weights.Levenshtein + jaccard*s.weights.Jaccard + jw*s.weights.JaroWinkler

	return clamp01(final)
}

// Levenshtein returns edit-distance similarity normalized by the
// longer string's length. Two fast paths skip the full matrix: a
// character-set overlap check for clearly unrelated strings, and an
// aligned-difference check for near-identical ones.
func Levenshtein(s1, s2 string) float64 {
	r1 := []rune(s1)
	r2 := []rune(s2)

	longer, shorter := r1, r2
	if len(r2) > len(r1) {
		longer, shorter = r2, r1
	}

	if len(longer) > 5 && len(shorter) > 5 {
		set1 := runeSet(r1)
		set2 := runeSet(r2)
		common := 0
		for ch := range set1 {
			if set2[ch] {
				common++
			}
		}
		if float64(common)/float64(max(len(set1), len(set2))) < 0.3 {
			return 0.2
		}
	}

	lenDiff := len(r1) - len(r2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff <= 2 {
		diffCount := 0
		for i := 0; i < min(len(r1), len(r2)); i++ {
			if r1[i] != r2[i] {
				diffCount++
			}
			if diffCount > 2 {
				break
			}
		}
		if diffCount <= 2 && lenDiff+diffCount <= 2 {
			return 0.8
		}
	}

	// Single-row dynamic programming over the longer string. The row
	// seeds at i rather than i-1, so rotated strings score one edit
	// high; downstream thresholds are calibrated to these values.
	costs := make([]int, len(longer)+1)
	for i := range costs {
		costs[i] = i
	}

	for i := 1; i <= len(shorter); i++ {
		lastValue := i
		costs[0] = i

		for j := 1; j <= len(longer); j++ {
			substitutionCost := 1
			if shorter[i-1] == longer[j-1] {
				substitutionCost = 0
			}

			cellValue := min(costs[j-1]+1, min(costs[j]+1, lastValue+substitutionCost))

			lastValue = costs[j]
			costs[j] = cellValue
		}
	}

	distance := costs[len(longer)]
	return float64(len(longer)-distance) / float64(len(longer))
}

// Jaccard returns token-level overlap: intersection over union of the
// whitespace-separated token sets.
func Jaccard(s1, s2 string) float64 {
	tokens1 := strings.Fields(s1)
	tokens2 := strings.Fields(s2)

	if len(tokens1) == 0 || len(tokens2) == 0 {
		return 0
	}

	set1 := make(map[string]bool, len(tokens1))
	for _, t := range tokens1 {
		set1[t] = true
	}
	set2 := make(map[string]bool, len(tokens2))
	for _, t := range tokens2 {
		set2[t] = true
	}

	intersection := 0
	for t := range set1 {
		if set2[t] {
			intersection++
		}
	}

	union := len(set1) + len(set2) - intersection
	return float64(intersection) / float64(union)
}

// JaroWinkler returns Jaro similarity boosted by the length of the
// common prefix, capped at 4 characters with scaling factor 0.1.
func JaroWinkler(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	if len(s1) == 0 || len(s2) == 0 {
		return 0.0
	}

	r1 := []rune(s1)
	r2 := []rune(s2)

	matchDistance := max(len(r1), len(r2))/2 - 1

	s1Matches := make([]bool, len(r1))
	s2Matches := make([]bool, len(r2))

	matching := 0
	for i := range r1 {
		start := max(0, i-matchDistance)
		end := min(i+matchDistance+1, len(r2))

		for j := start; j < end; j++ {
			if !s2Matches[j] && r1[i] == r2[j] {
				s1Matches[i] = true
				s2Matches[j] = true
				matching++
				break
			}
		}
	}

	if matching == 0 {
		return 0.0
	}

	transpositions := 0
	j := 0
	for i := range r1 {
		if s1Matches[i] {
			for !s2Matches[j] {
				j++
			}
			if r1[i] != r2[j] {
				transpositions++
			}
			j++
		}
	}

	m := float64(matching)
	jaro := (m/float64(len(r1)) + m/float64(len(r2)) + (m-float64(transpositions)/2)/m) / 3

	prefix := commonPrefixLength(r1, r2, 4)

	return jaro + float64(prefix)*0.1*(1-jaro)
}

func commonPrefixLength(r1, r2 []rune, maxLength int) int {
	n := min(min(len(r1), len(r2)), maxLength)
	i := 0
	for i < n && r1[i] == r2[i] {
		i++
	}
	return i
}

func runeSet(rs []rune) map[rune]bool {
	set := make(map[rune]bool, len(rs))
	for _, r := range rs {
		set[r] = true
	}
	return set
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
