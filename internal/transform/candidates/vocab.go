// Package candidates generates and ranks niche-name candidates for a
// query/category pair, backed by a cached category vocabulary.
package candidates

import (
	"context"
	"time"

	"niche-proxy/internal/common/cache"
	"niche-proxy/internal/common/logger"
)

// VocabularyCacheKey is the well-known cache key for category lists.
const VocabularyCacheKey = "category-lists"

// Vocabulary maps content categories to curated niche-name terms.
type Vocabulary struct {
	Version     string              `json:"version"`
	LastUpdated string              `json:"lastUpdated"`
	Categories  map[string][]string `json:"categories"`
}

// VocabStore loads the vocabulary through the tiered cache so operators
// can push updated lists without a redeploy.
type VocabStore struct {
	cache  *cache.Service
	ttl    time.Duration
	logger logger.Logger
}

// NewVocabStore creates a vocabulary store caching entries for ttl.
func NewVocabStore(cacheSvc *cache.Service, ttl time.Duration, log logger.Logger) *VocabStore {
	return &VocabStore{cache: cacheSvc, ttl: ttl, logger: log}
}

// Load returns the cached vocabulary, seeding the cache with the
// built-in default on a miss. Never fails: the default is always
// available.
func (s *VocabStore) Load(ctx context.Context) *Vocabulary {
	var vocab Vocabulary
	if s.cache.Get(ctx, VocabularyCacheKey, &vocab) && len(vocab.Categories) > 0 {
		s.logger.Debug("Using cached category lists", map[string]interface{}{
			"version": vocab.Version,
		})
		return &vocab
	}

	defaults := defaultVocabulary()
	if err := s.cache.Set(ctx, VocabularyCacheKey, defaults, s.ttl); err != nil {
		s.logger.Warn("Failed to cache default category lists", map[string]interface{}{
			"error": err.Error(),
		})
	}
	s.logger.Info("Using default category lists", nil)
	return defaults
}

// Update replaces the cached vocabulary.
func (s *VocabStore) Update(ctx context.Context, vocab *Vocabulary) error {
	return s.cache.Set(ctx, VocabularyCacheKey, vocab, s.ttl)
}

func defaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Version:     "1.0.0",
		LastUpdated: time.Now().UTC().Format("2006-01-02"),
		Categories: map[string][]string{
			"Gaming": {
				"Mobile Gaming",
				"Game Development",
				"Indie Games",
				"Strategy Games",
				"Gaming Tutorials",
				"Game Reviews",
				"FPS Games",
				"RPG Games",
				"Game Streaming",
				"Gaming Tips",
				"Esports Coverage",
				"Gaming News",
				"Console Gaming",
				"Game Mods",
				"Speedrunning",
			},
			"Education": {
				"Online Courses",
				"Tutorial Videos",
				"How-to Guides",
				"Educational Content",
				"Educational Technology",
				"Study Skills",
				"Science Education",
				"Math Tutorials",
				"Language Learning",
				"Academic Resources",
				"Student Tips",
				"Educational Games",
				"Learning Strategies",
				"Test Preparation",
				"Coding Education",
			},
			"Entertainment": {
				"Short-Form Comedy",
				"Reaction Videos",
				"Vlog Content",
				"Storytelling",
				"Music Covers",
				"Comedy Sketches",
				"Celebrity News",
				"Film Reviews",
				"Stand-up Comedy",
				"Prank Videos",
				"Fan Theories",
				"TV Show Recaps",
				"Celebrity Interviews",
				"Web Series",
				"Entertainment News",
			},
			"Howto & Style": {
				"DIY Projects",
				"Home Improvement",
				"Beauty Tutorials",
				"Fashion Guides",
				"Makeup Reviews",
				"Home Decor",
				"Crafting Tutorials",
				"Hair Styling",
				"Outfit Ideas",
				"Skincare Routines",
				"DIY Home Decor",
				"Nail Art",
				"Fashion Trends",
				"Product Reviews",
				"Style Tips",
			},
			"Science & Technology": {
				"Tech Reviews",
				"Coding Tutorials",
				"Science Explainers",
				"Tech News",
				"Gadget Reviews",
				"AI Developments",
				"Space Exploration",
				"Programming Tips",
				"Science Experiments",
				"Tech Unboxing",
				"Robotics",
				"Technology Trends",
				"Data Science",
				"Software Reviews",
				"DIY Electronics",
			},
		},
	}
}
