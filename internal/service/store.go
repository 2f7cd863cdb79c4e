package service

import (
	"context"
	"time"

	"github.com/pulsefeed/recommendation-service/internal/domain"
	"github.com/pulsefeed/recommendation-service/internal/oracle"
	"github.com/pulsefeed/recommendation-service/internal/repository"
)

// Store is the persistence surface the engine and background jobs run
// against. *repository.Repository satisfies it; tests use an in-memory
// implementation.
type Store interface {
	// Users / content
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
	GetContent(ctx context.Context, contentID int64) (*domain.Content, error)
	ListRecentContent(ctx context.Context, since time.Time, excludeAuthorID int64, limit int) ([]domain.Content, error)
	ListCandidateContent(ctx context.Context, userID int64, categories, authors []string, since time.Time, limit int) ([]domain.Content, error)
	ListContentByAuthor(ctx context.Context, authorID int64, limit int) ([]domain.Content, error)
	ListContentExcept(ctx context.Context, contentID int64, limit int) ([]domain.Content, error)

	// Interaction log
	InsertInteraction(ctx context.Context, in domain.Interaction) (domain.Interaction, error)
	ListInteractionsByUser(ctx context.Context, userID int64, since time.Time) ([]domain.Interaction, error)
	CountInteractionsByUser(ctx context.Context, userID int64) (int, error)
	ListInteractionsByContentSince(ctx context.Context, contentID int64, since time.Time) ([]domain.Interaction, error)
	ListPositiveInteractionsForContents(ctx context.Context, contentIDs []int64, excludeUserID int64) ([]domain.Interaction, error)
	ListPositiveInteractionsByUser(ctx context.Context, userID int64, excludeContentIDs []int64, limit int) ([]domain.Interaction, error)
	DistinctInteractingUsersSince(ctx context.Context, since time.Time) ([]int64, error)
	DistinctInteractedContentSince(ctx context.Context, since time.Time) ([]int64, error)
	DeleteInteractionsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Preference store
	GetActivePreference(ctx context.Context, userID int64, ptype domain.PreferenceType, value string) (*domain.Preference, error)
	GetPreferenceByID(ctx context.Context, userID, preferenceID int64) (*domain.Preference, error)
	InsertPreference(ctx context.Context, p domain.Preference) error
	UpdatePreference(ctx context.Context, p domain.Preference) error
	ListActivePreferences(ctx context.Context, userID int64, typeFilter domain.PreferenceType, minStrength float64) ([]domain.Preference, error)
	DeactivatePreference(ctx context.Context, preferenceID int64) error
	DeactivatePreferencesInactiveSince(ctx context.Context, cutoff time.Time) (int64, error)

	// Similarity index
	ListSimilaritiesBySource(ctx context.Context, sourceID int64, minScore float64, limit int) ([]domain.ContentSimilarity, error)
	UpsertSimilarity(ctx context.Context, s domain.ContentSimilarity) error
	DeleteStaleSimilarities(ctx context.Context, before time.Time, maxConfidence float64) (int64, error)

	// Trending
	GetTrendingRecord(ctx context.Context, contentID int64) (*domain.TrendingRecord, error)
	UpsertTrendingRecord(ctx context.Context, t domain.TrendingRecord) error
	ListTrendingRecords(ctx context.Context, limit int, timeframe domain.Timeframe, category string) ([]domain.TrendingRecord, error)

	// Feedback
	InsertFeedback(ctx context.Context, f domain.RecommendationFeedback) error
	ListFeedbackSince(ctx context.Context, since time.Time, limit int) ([]domain.RecommendationFeedback, error)

	// Embeddings
	GetEmbedding(ctx context.Context, contentID int64) ([]float64, error)
	UpsertEmbedding(ctx context.Context, contentID int64, modelName string, vec []float64) error
	ListContentMissingEmbedding(ctx context.Context, limit int) ([]domain.Content, error)
}

// TxStore is a Store that can scope a group of writes to one transaction.
type TxStore interface {
	Store
	InTx(ctx context.Context, fn func(tx Store) error) error
}

// ContentOracle is the opaque scoring oracle: text in, fixed-length vector
// or topic/sentiment classification out.
type ContentOracle interface {
	Embed(text string) ([]float64, error)
	Classify(title, body string) (oracle.Classification, error)
}

// VectorCache fronts the persisted embeddings. Entries are rebuildable and
// never authoritative; a nil cache is valid and simply misses everything.
type VectorCache interface {
	Get(ctx context.Context, contentID int64) ([]float64, error)
	Set(ctx context.Context, contentID int64, vec []float64) error
}

// PgStore adapts *repository.Repository to TxStore.
type PgStore struct {
	*repository.Repository
}

func NewPgStore(repo *repository.Repository) PgStore {
	return PgStore{Repository: repo}
}

func (s PgStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	return s.Repository.InTx(ctx, func(tx *repository.Repository) error {
		return fn(PgStore{Repository: tx})
	})
}
