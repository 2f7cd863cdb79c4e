package domain

import "time"

type PreferenceType string

const (
	PreferenceCategory  PreferenceType = "category"
	PreferenceAuthor    PreferenceType = "author"
	PreferenceTopic     PreferenceType = "topic"
	PreferenceSentiment PreferenceType = "sentiment"
)

func (t PreferenceType) Valid() bool {
	switch t {
	case PreferenceCategory, PreferenceAuthor, PreferenceTopic, PreferenceSentiment:
		return true
	}
	return false
}

// Preference is a per-(user, type, value) running aggregate learned from
// interactions. At most one active row exists per unique key; deactivated
// rows are kept for audit and recomputation.
type Preference struct {
	ID                   int64          `json:"id"`
	UserID               int64          `json:"user_id"`
	Type                 PreferenceType `json:"preference_type"`
	Value                string         `json:"preference_value"`
	Strength             float64        `json:"strength"`
	Confidence           float64        `json:"confidence"`
	InteractionCount     int            `json:"interaction_count"`
	PositiveInteractions int            `json:"positive_interactions"`
	NegativeInteractions int            `json:"negative_interactions"`
	FirstInteraction     time.Time      `json:"first_interaction"`
	LastInteraction      time.Time      `json:"last_interaction"`
	IsActive             bool           `json:"is_active"`
}
