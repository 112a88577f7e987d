// Package transform orchestrates the per-request pipeline: call the
// upstream analytics API, detect whether it ignored the caller's
// search parameters, regenerate a relevant niche list when it did, and
// attach scoring metadata either way.
package transform

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"niche-proxy/internal/common/config"
	"niche-proxy/internal/common/errors"
	"niche-proxy/internal/common/logger"
	"niche-proxy/internal/common/metrics"
	"niche-proxy/internal/common/observability"
	"niche-proxy/internal/models"
	"niche-proxy/internal/transform/candidates"
	"niche-proxy/internal/transform/similarity"
	"niche-proxy/internal/transform/topics"
	"niche-proxy/internal/upstream"

	"go.opentelemetry.io/otel/trace"
)

// TransformationVersion tags regenerated responses.
const TransformationVersion = "phase1-v1"

var competitionCycle = []models.CompetitionLevel{
	models.CompetitionLow,
	models.CompetitionMedium,
	models.CompetitionHigh,
}

// UpstreamFetcher is the slice of the upstream client the transformer
// needs; tests substitute a stub.
type UpstreamFetcher interface {
	FetchNicheScout(ctx context.Context, params models.SearchParams) (*upstream.Result, error)
}

// Transformer runs the transformation pipeline for one search request.
type Transformer struct {
	cfg       config.TransformationConfig
	upstream  UpstreamFetcher
	generator *candidates.Generator
	enricher  *topics.Enricher
	scorer    *similarity.Scorer
	recorder  *metrics.Recorder
	obs       *observability.Observability
	tracing   *observability.Tracing
	logger    logger.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewTransformer wires the pipeline. obs and tracing may be nil; the
// transformer then skips OpenTelemetry recording.
func NewTransformer(
	cfg config.TransformationConfig,
	fetcher UpstreamFetcher,
	generator *candidates.Generator,
	enricher *topics.Enricher,
	scorer *similarity.Scorer,
	recorder *metrics.Recorder,
	obs *observability.Observability,
	tracing *observability.Tracing,
	log logger.Logger,
) *Transformer {
	return &Transformer{
		cfg:       cfg,
		upstream:  fetcher,
		generator: generator,
		enricher:  enricher,
		scorer:    scorer,
		recorder:  recorder,
		obs:       obs,
		tracing:   tracing,
		logger:    log,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Process runs the full pipeline for one request. It returns an error
// only when the upstream fails and mock fallback is disabled; every
// other failure mode degrades into a well-formed result.
func (t *Transformer) Process(ctx context.Context, params models.SearchParams) (*models.TransformedResult, error) {
	start := time.Now()

	if t.tracing != nil {
		var span trace.Span
		ctx, span = t.tracing.StartSpan(ctx, "transform.process")
		defer span.End()
	}

	result, err := t.upstream.FetchNicheScout(ctx, params)
	if result != nil {
		t.recorder.RecordAPIRequest(result.Latency)
	}
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeMalformedUpstreamResponse) {
			// A garbled payload gets the same treatment as an ignored
			// search: rebuild the niche list from scratch.
			t.logger.Warn("Malformed upstream payload, regenerating niches", map[string]interface{}{
				"error": err.Error(),
			})
			empty := &models.UpstreamResponse{}
			out := t.regenerate(ctx, empty, params, start)
			if result != nil {
				out.SetOriginal(result.Raw)
			}
			t.finish(ctx, out, params, start, "regenerated")
			return out, nil
		}
		if t.obs != nil {
			t.obs.RecordUpstreamCall(ctx, "error")
		}
		return nil, err
	}

	if t.obs != nil {
		outcome := "success"
		if result.Mock {
			outcome = "mock"
		}
		t.obs.RecordUpstreamCall(ctx, outcome)
	}

	data := result.Response

	// Override detection: the upstream nulls out the echo fields when
	// it has ignored the caller's parameters. An empty niche list still
	// regenerates; every numeric attribute is synthesized then.
	if data.Query == nil || data.Category == nil {
		t.logger.Info("Upstream ignored search parameters, applying transformation", map[string]interface{}{
			"query":    params.Query,
			"category": params.Category,
		})

		out := t.regenerate(ctx, data, params, start)
		out.SetOriginal(result.Raw)
		out.Mock = result.Mock
		t.finish(ctx, out, params, start, "regenerated")
		return out, nil
	}

	out := t.passThrough(data, result.Mock, start)
	t.finish(ctx, out, params, start, "pass_through")
	return out, nil
}

// passThrough wraps an upstream response that already honored the
// caller's parameters.
func (t *Transformer) passThrough(data *models.UpstreamResponse, mock bool, start time.Time) *models.TransformedResult {
	t.logger.Info("Upstream respected search parameters, no transformation needed", nil)

	out := &models.TransformedResult{
		Date:            data.Date,
		Niches:          data.Niches,
		AnalysisSummary: data.AnalysisSummary,
		Recommendations: data.Recommendations,
		Mock:            mock,
		Meta: &models.Meta{
			TransformationVersion:   "none",
			ProcessingTimeMs:        time.Since(start).Milliseconds(),
			OriginalQueryPresent:    data.Query != nil,
			OriginalCategoryPresent: data.Category != nil,
		},
	}
	if data.Query != nil {
		out.Query = *data.Query
	}
	if data.Category != nil {
		out.Category = *data.Category
	}
	return out
}

// regenerate rebuilds the niche list from relevance-ranked candidates,
// borrowing numeric attributes from the upstream niches where present.
func (t *Transformer) regenerate(ctx context.Context, data *models.UpstreamResponse, params models.SearchParams, start time.Time) *models.TransformedResult {
	names := t.generator.Generate(ctx, params.Query, params.Category, t.cfg.DefaultNicheCount, t.cfg.SimilarityThreshold)

	t.logger.Info("Generated relevant niches from search parameters", map[string]interface{}{
		"count": len(names),
	})

	niches := make([]models.Niche, 0, len(names))
	for i, name := range names {
		var original models.Niche
		if len(data.Niches) > 0 {
			original = data.Niches[i%len(data.Niches)]
		}

		niche := models.Niche{
			Name:           name,
			GrowthRate:     original.GrowthRate,
			ShortsFriendly: original.ShortsFriendly,
			TrendingTopics: t.enricher.TopicsFor(name),
			TopChannels:    t.enricher.ChannelsFor(name, original.TopChannels, params.Category),
			RelevanceScore: t.scorer.Score(name, params.Query),
		}

		if niche.GrowthRate == 0 {
			niche.GrowthRate = t.randomGrowthRate()
		}
		if original.CompetitionLevel != "" {
			niche.CompetitionLevel = original.CompetitionLevel
		} else {
			niche.CompetitionLevel = competitionCycle[i%len(competitionCycle)]
		}
		if original.ViewerDemographics != nil {
			niche.ViewerDemographics = original.ViewerDemographics
		} else {
			niche.ViewerDemographics = &models.Demographics{
				AgeGroups:   []string{"18-24", "25-34"},
				GenderSplit: map[string]int{"male": 70, "female": 30},
			}
		}
		if !original.ShortsFriendly {
			niche.ShortsFriendly = t.randomBool()
		}

		niches = append(niches, niche)
	}

	sort.SliceStable(niches, func(i, j int) bool {
		return niches[i].GrowthRate > niches[j].GrowthRate
	})

	out := &models.TransformedResult{
		Date:        data.Date,
		Query:       params.Query,
		Category:    params.Category,
		Subcategory: strings.Join(params.Subcategories, ", "),
		Niches:      niches,
		Filtered:    true,
	}

	if len(niches) > 0 {
		out.AnalysisSummary = t.summarize(niches)
		out.Recommendations = t.recommend(out.AnalysisSummary, params.Category, niches)
	}

	rel := t.relevanceMetrics(niches, params)
	out.Meta = &models.Meta{
		TransformationVersion:   TransformationVersion,
		ProcessingTimeMs:        time.Since(start).Milliseconds(),
		RelevanceScore:          rel.AverageRelevanceScore,
		RelevanceThreshold:      t.cfg.SimilarityThreshold,
		MatchedNicheCount:       len(names),
		OriginalQueryPresent:    data.Query != nil,
		OriginalCategoryPresent: data.Category != nil,
	}

	return out
}

// summarize finds the superlative niches for the analysis summary.
func (t *Transformer) summarize(niches []models.Niche) *models.AnalysisSummary {
	fastest := niches[0]
	for _, n := range niches[1:] {
		if n.GrowthRate > fastest.GrowthRate {
			fastest = n
		}
	}

	shortsFriendly := niches[0]
	for _, n := range niches {
		if n.ShortsFriendly {
			shortsFriendly = n
			break
		}
	}

	lowestCompetition := niches[0]
	for _, n := range niches[1:] {
		if n.CompetitionLevel.Rank() < lowestCompetition.CompetitionLevel.Rank() {
			lowestCompetition = n
		}
	}

	return &models.AnalysisSummary{
		FastestGrowing:     fastest.Name,
		MostShortsFriendly: shortsFriendly.Name,
		LowestCompetition:  lowestCompetition.Name,
	}
}

// recommend renders recommendation strings from the summary.
func (t *Transformer) recommend(summary *models.AnalysisSummary, category string, niches []models.Niche) []string {
	recs := []string{
		fmt.Sprintf("Focus on %s for highest growth potential", summary.FastestGrowing),
		fmt.Sprintf("Create %s content with clear tutorials and tips", strings.ToLower(category)),
	}
	if len(niches[0].TrendingTopics) > 0 {
		recs = append(recs, fmt.Sprintf("Target trending topics like %s", niches[0].TrendingTopics[0]))
	}
	if summary.LowestCompetition != summary.FastestGrowing {
		recs = append(recs, fmt.Sprintf("Consider %s for an easier entry against less competition", summary.LowestCompetition))
	}
	return recs
}

// finish emits the per-request metrics for both pipeline outcomes.
func (t *Transformer) finish(ctx context.Context, out *models.TransformedResult, params models.SearchParams, start time.Time, outcome string) {
	elapsed := time.Since(start)
	rel := t.relevanceMetrics(out.Niches, params)

	t.recorder.RecordTransformation(params.Query, params.Category, elapsed, rel.AverageRelevanceScore, rel.RelevantCount, rel.MatchTypes)
	if t.obs != nil {
		t.obs.RecordTransformProcessed(ctx, outcome)
		t.obs.RecordTransformDuration(ctx, elapsed, outcome)
	}

	t.logger.Info("Transformation completed", map[string]interface{}{
		"outcome":        outcome,
		"durationMs":     elapsed.Milliseconds(),
		"relevanceScore": rel.AverageRelevanceScore,
		"relevantNiches": rel.RelevantCount,
		"returnedNiches": len(out.Niches),
	})
}

func (t *Transformer) randomGrowthRate() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return float64(20 + t.rng.Intn(41))
}

func (t *Transformer) randomBool() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rng.Intn(2) == 1
}
