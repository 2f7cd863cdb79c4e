package scheduler

import (
	"context"

	"github.com/pulsefeed/recommendation-service/internal/config"
	"github.com/pulsefeed/recommendation-service/internal/logger"
	"github.com/pulsefeed/recommendation-service/internal/service"
)

// Jobs builds the standard maintenance job set over the engine, with
// intervals taken from configuration.
func Jobs(cfg *config.Config, svc *service.Service, log *logger.Logger) []Job {
	return []Job{
		{
			Name:     "embedding_refresh",
			Interval: cfg.EmbeddingRefreshInterval,
			Run: func(ctx context.Context) error {
				n, err := svc.RefreshMissingEmbeddings(ctx)
				if n > 0 {
					log.Info("embeddings refreshed", "count", n)
				}
				return err
			},
		},
		{
			Name:     "preference_update",
			Interval: cfg.PreferenceUpdateInterval,
			Run: func(ctx context.Context) error {
				n, err := svc.BulkUpdatePreferences(ctx)
				if n > 0 {
					log.Info("preferences reconciled", "count", n)
				}
				return err
			},
		},
		{
			Name:     "similarity_calculation",
			Interval: cfg.SimilarityUpdateInterval,
			Run: func(ctx context.Context) error {
				n, err := svc.BulkCalculateSimilarities(ctx)
				if n > 0 {
					log.Info("similarities recomputed", "sources", n)
				}
				return err
			},
		},
		{
			Name:     "trending_refresh",
			Interval: cfg.TrendingRefreshInterval,
			Run: func(ctx context.Context) error {
				n, err := svc.BulkRefreshTrending(ctx)
				if n > 0 {
					log.Info("trending refreshed", "count", n)
				}
				return err
			},
		},
		{
			Name:     "model_training",
			Interval: cfg.ModelTrainingInterval,
			Run:      svc.RetrainWeights,
		},
		{
			Name:     "feedback_analysis",
			Interval: cfg.FeedbackAnalysisInterval,
			Run: func(ctx context.Context) error {
				return svc.AnalyzeFeedback(ctx, cfg.FeedbackAnalysisInterval)
			},
		},
		{
			Name:     "retention_cleanup",
			Interval: cfg.RetentionCleanupInterval,
			Run:      svc.CleanupOldData,
		},
	}
}
