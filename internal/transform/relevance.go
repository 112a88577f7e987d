// internal/transform/relevance.go
package transform

import (
	"strings"

	"niche-proxy/internal/models"
)

// RelevanceMetrics summarizes how well a niche list matches the search
// parameters. Used for response metadata and for Prometheus gauges.
type RelevanceMetrics struct {
	RelevantCount         int
	RelevantPercentage    float64
	AverageRelevanceScore float64
	MatchTypes            map[string]int
}

func emptyRelevanceMetrics() RelevanceMetrics {
	return RelevanceMetrics{
		MatchTypes: map[string]int{"exact": 0, "partial": 0, "category": 0, "none": 0},
	}
}

// relevanceMetrics classifies every niche against the query and
// category: exact name match, partial (substring or similarity at or
// above the threshold), category-substring match, or none.
func (t *Transformer) relevanceMetrics(niches []models.Niche, params models.SearchParams) RelevanceMetrics {
	query := strings.ToLower(params.Query)
	category := strings.ToLower(params.Category)

	if len(niches) == 0 || (query == "" && (category == "" || category == "all")) {
		return emptyRelevanceMetrics()
	}

	metrics := emptyRelevanceMetrics()
	var totalScore float64

	for _, niche := range niches {
		nameLower := strings.ToLower(niche.Name)
		matchType := "none"
		var score float64

		if query != "" {
			switch {
			case nameLower == query:
				matchType = "exact"
				score = 1.0
			case strings.Contains(nameLower, query):
				matchType = "partial"
				score = 0.8
			default:
				score = t.scorer.Score(nameLower, query)
				if score >= t.cfg.SimilarityThreshold {
					matchType = "partial"
				}
			}
		}

		if category != "" && category != "all" && strings.Contains(nameLower, category) {
			if matchType == "none" {
				matchType = "category"
			}
			if score < 0.6 {
				score = 0.6
			}
		}

		metrics.MatchTypes[matchType]++
		totalScore += score
	}

	metrics.RelevantCount = metrics.MatchTypes["exact"] + metrics.MatchTypes["partial"] + metrics.MatchTypes["category"]
	metrics.RelevantPercentage = float64(metrics.RelevantCount) / float64(len(niches))
	metrics.AverageRelevanceScore = totalScore / float64(len(niches))

	return metrics
}
