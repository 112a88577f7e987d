// internal/upstream/mock.go
package upstream

import (
	"time"

	"niche-proxy/internal/models"
)

// MockNicheScoutResponse builds the synthetic payload returned when
// the analytics API is unreachable. The shape matches the real
// endpoint exactly; query and category echo the caller's parameters so
// the override detector leaves it alone.
func MockNicheScoutResponse(params models.SearchParams) *models.UpstreamResponse {
	query := params.Query
	category := params.Category
	if category == "" {
		category = "All"
	}

	return &models.UpstreamResponse{
		Date:     time.Now().UTC().Format("2006-01-02"),
		Query:    &query,
		Category: &category,
		Niches: []models.Niche{
			{
				Name:             "Mobile Gaming",
				GrowthRate:       87.5,
				ShortsFriendly:   true,
				CompetitionLevel: models.CompetitionMedium,
				ViewerDemographics: &models.Demographics{
					AgeGroups:   []string{"18-24", "25-34"},
					GenderSplit: map[string]int{"male": 65, "female": 35},
				},
				TrendingTopics: []string{
					"Game development tutorials",
					"Mobile gaming optimization",
					"Indie game showcases",
				},
				TopChannels: []models.Channel{
					{Name: "MobileGamerPro", Subs: 2_800_000},
					{Name: "GameHubMobile", Subs: 1_400_000},
				},
			},
			{
				Name:             "Game Development",
				GrowthRate:       72.1,
				ShortsFriendly:   false,
				CompetitionLevel: models.CompetitionLow,
				ViewerDemographics: &models.Demographics{
					AgeGroups:   []string{"25-34", "35-44"},
					GenderSplit: map[string]int{"male": 80, "female": 20},
				},
				TrendingTopics: []string{
					"Unity tutorials",
					"Game design principles",
					"Indie publishing strategies",
				},
				TopChannels: []models.Channel{
					{Name: "GameDevHQ", Subs: 1_200_000},
					{Name: "CodeMonkey", Subs: 980_000},
				},
			},
			{
				Name:             "Indie Games",
				GrowthRate:       65.3,
				ShortsFriendly:   true,
				CompetitionLevel: models.CompetitionMedium,
				ViewerDemographics: &models.Demographics{
					AgeGroups:   []string{"18-24", "25-34"},
					GenderSplit: map[string]int{"male": 70, "female": 30},
				},
				TrendingTopics: []string{
					"Indie game reviews",
					"Game jams",
					"Pixel art tutorials",
				},
				TopChannels: []models.Channel{
					{Name: "IndieGameSpotlight", Subs: 850_000},
					{Name: "PixelPerfect", Subs: 720_000},
				},
			},
		},
		Mock: true,
	}
}
