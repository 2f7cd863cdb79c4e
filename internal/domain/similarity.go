package domain

import "time"

// ContentSimilarity is one directed (source, target, algorithm) similarity
// edge. Recomputation overwrites the row for that key rather than updating
// fields in place.
type ContentSimilarity struct {
	ID              int64     `json:"id"`
	SourceID        int64     `json:"source_id"`
	TargetID        int64     `json:"target_id"`
	Algorithm       string    `json:"algorithm"`
	SimilarityScore float64   `json:"similarity_score"`
	Confidence      float64   `json:"confidence"`
	ValidationCount int       `json:"validation_count"`
	ComputedAt      time.Time `json:"computed_at"`
	IsActive        bool      `json:"is_active"`
}

// SimilarContent is the (content, score) pair returned by the Similarity Index.
type SimilarContent struct {
	ContentID       int64   `json:"content_id"`
	SimilarityScore float64 `json:"similarity_score"`
	Algorithm       string  `json:"algorithm"`
	Confidence      float64 `json:"confidence"`
}
