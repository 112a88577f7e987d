// internal/models/niche.go
package models

import "encoding/json"

// CompetitionLevel buckets a niche by how crowded it is.
type CompetitionLevel string

const (
	CompetitionLow    CompetitionLevel = "Low"
	CompetitionMedium CompetitionLevel = "Medium"
	CompetitionHigh   CompetitionLevel = "High"
)

// Rank converts a competition level to a comparable score (Low is best).
func (c CompetitionLevel) Rank() int {
	switch c {
	case CompetitionLow:
		return 1
	case CompetitionMedium:
		return 2
	case CompetitionHigh:
		return 3
	default:
		return 2
	}
}

// SearchParams are the caller-supplied search parameters, immutable per request.
type SearchParams struct {
	Query         string   `json:"query"`
	Category      string   `json:"category"`
	Subcategories []string `json:"subcategories,omitempty"`
	TimeRange     string   `json:"timeRange,omitempty"`
	Demographics  string   `json:"demographics,omitempty"`
}

// Channel is a representative channel for a niche.
type Channel struct {
	Name string `json:"name"`
	Subs int64  `json:"subs"`
}

// Demographics describes the audience of a niche.
type Demographics struct {
	AgeGroups   []string       `json:"age_groups"`
	GenderSplit map[string]int `json:"gender_split"`
}

// Niche is a single entry in the analytics result.
type Niche struct {
	Name               string           `json:"name"`
	GrowthRate         float64          `json:"growth_rate"`
	ShortsFriendly     bool             `json:"shorts_friendly"`
	CompetitionLevel   CompetitionLevel `json:"competition_level"`
	ViewerDemographics *Demographics    `json:"viewer_demographics,omitempty"`
	TrendingTopics     []string         `json:"trending_topics,omitempty"`
	TopChannels        []Channel        `json:"top_channels,omitempty"`
	RelevanceScore     float64          `json:"_relevance_score,omitempty"`
}

// AnalysisSummary names the superlative niches of a result.
type AnalysisSummary struct {
	FastestGrowing     string `json:"fastest_growing"`
	MostShortsFriendly string `json:"most_shorts_friendly"`
	LowestCompetition  string `json:"lowest_competition"`
}

// Meta carries transformation metadata attached to every response.
type Meta struct {
	TransformationVersion   string  `json:"transformation_version"`
	ProcessingTimeMs        int64   `json:"processing_time_ms"`
	RelevanceScore          float64 `json:"relevance_score,omitempty"`
	RelevanceThreshold      float64 `json:"relevance_threshold,omitempty"`
	MatchedNicheCount       int     `json:"matched_niche_count,omitempty"`
	OriginalQueryPresent    bool    `json:"original_query_present"`
	OriginalCategoryPresent bool    `json:"original_category_present"`
	CacheHit                bool    `json:"cache_hit"`
}

// UpstreamResponse mirrors the analytics API payload. Query and Category are
// pointers: the upstream is known to null them out when it ignores the
// caller's parameters, and that null is the override-detection signal.
type UpstreamResponse struct {
	Date            string           `json:"date,omitempty"`
	Query           *string          `json:"query"`
	Category        *string          `json:"category"`
	Niches          []Niche          `json:"niches"`
	AnalysisSummary *AnalysisSummary `json:"analysis_summary,omitempty"`
	Recommendations []string         `json:"recommendations,omitempty"`
	Mock            bool             `json:"_mock,omitempty"`
}

// TransformedResult is the document returned to the dashboard.
type TransformedResult struct {
	Date            string           `json:"date,omitempty"`
	Query           string           `json:"query"`
	Category        string           `json:"category"`
	Subcategory     string           `json:"subcategory,omitempty"`
	Niches          []Niche          `json:"niches"`
	AnalysisSummary *AnalysisSummary `json:"analysis_summary,omitempty"`
	Recommendations []string         `json:"recommendations,omitempty"`
	Meta            *Meta            `json:"meta,omitempty"`
	Filtered        bool             `json:"_filtered,omitempty"`
	Mock            bool             `json:"_mock,omitempty"`

	// original upstream payload kept for audit, never serialized to clients
	original json.RawMessage
}

// SetOriginal retains the raw upstream payload for audit.
func (t *TransformedResult) SetOriginal(raw json.RawMessage) { t.original = raw }

// Original returns the raw upstream payload the result was built from.
func (t *TransformedResult) Original() json.RawMessage { return t.original }
