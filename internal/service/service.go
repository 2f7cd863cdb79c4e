// Package service implements the hybrid recommendation engine: the
// interaction log, preference store, similarity index, trending scorer,
// recommendation engine and feedback loop. All components are stateless
// processors over the Store; the only in-memory state is the rebuildable
// embedding cache.
package service

import (
	"time"

	"github.com/pulsefeed/recommendation-service/internal/logger"
)

const (
	defaultLimit = 10
	maxLimit     = 50

	// Preference learning.
	strengthStep      = 0.1
	newStrengthFactor = 0.5
	newNegStrength    = 0.1
	newConfidence     = 0.1
	confidenceDivisor = 10.0
	topTopics         = 3

	// Similarity index.
	similarityAlgorithm  = "ai_embeddings"
	similarityConfidence = 0.8
	minSimilarityScore   = 0.1
	defaultSimilarLimit  = 5
	similarityCatalogMax = 500

	// Trending windows.
	trendingWindow  = 24 * time.Hour
	velocityWindow  = time.Hour
	weekWindow      = 7 * 24 * time.Hour
	trendingCutoff  = 0.1
	trendingOverSel = 2 // stage over-selects by this factor before filtering

	// Recommendation engine.
	neighborLimit       = 10
	minCommonItems      = 2
	candidatePoolSize   = 100
	candidateWindowDays = 30
	coldStartWindowDays = 7
	coldStartScore      = 0.5
	maxPerAuthor        = 3
	userContentSample   = 5

	// Feedback.
	feedbackScanLimit = 1000

	algorithmVersion = "hybrid-v1"
)

// Weights are the tunable stage multipliers of the hybrid engine. The
// retraining job reports per-algorithm feedback ratios but does not rewrite
// these; automatic tuning is an extension point.
type Weights struct {
	Collaborative float64
	ContentBased  float64
	Trending      float64
}

func DefaultWeights() Weights {
	return Weights{Collaborative: 0.4, ContentBased: 0.3, Trending: 0.2}
}

type Service struct {
	store   TxStore
	oracle  ContentOracle
	vectors VectorCache
	log     *logger.Logger
	weights Weights

	now func() time.Time
}

func New(store TxStore, oracle ContentOracle, vectors VectorCache, log *logger.Logger, weights Weights) *Service {
	if weights == (Weights{}) {
		weights = DefaultWeights()
	}
	return &Service{
		store:   store,
		oracle:  oracle,
		vectors: vectors,
		log:     log,
		weights: weights,
		now:     time.Now,
	}
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

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
