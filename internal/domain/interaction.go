package domain

import "time"

type InteractionType string

const (
	InteractionView    InteractionType = "view"
	InteractionLike    InteractionType = "like"
	InteractionShare   InteractionType = "share"
	InteractionComment InteractionType = "comment"
	InteractionSave    InteractionType = "save"
	InteractionClick   InteractionType = "click"
	InteractionDismiss InteractionType = "dismiss"
	InteractionReport  InteractionType = "report"
	InteractionDislike InteractionType = "dislike"
)

var validInteractionTypes = map[InteractionType]struct{}{
	InteractionView:    {},
	InteractionLike:    {},
	InteractionShare:   {},
	InteractionComment: {},
	InteractionSave:    {},
	InteractionClick:   {},
	InteractionDismiss: {},
	InteractionReport:  {},
	InteractionDislike: {},
}

func (t InteractionType) Valid() bool {
	_, ok := validInteractionTypes[t]
	return ok
}

// Positive reports whether the interaction counts toward preference strength.
func (t InteractionType) Positive() bool {
	switch t {
	case InteractionLike, InteractionShare, InteractionSave, InteractionComment:
		return true
	}
	return false
}

// Negative reports whether the interaction counts against preference strength.
func (t InteractionType) Negative() bool {
	return t == InteractionDislike || t == InteractionReport
}

// Interaction is an append-only record of a user acting on a content item.
// Rows are never updated; retention pruning is the only delete path.
type Interaction struct {
	ID               int64           `json:"id"`
	UserID           int64           `json:"user_id"`
	ContentID        int64           `json:"content_id"`
	Type             InteractionType `json:"interaction_type"`
	Score            float64         `json:"score"`
	SessionID        string          `json:"session_id,omitempty"`
	TimeSpentSeconds int             `json:"time_spent_seconds"`
	ScrollDepth      float64         `json:"scroll_depth"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Validate rejects malformed interactions before any write happens.
func (i Interaction) Validate() error {
	if i.UserID <= 0 {
		return &ValidationError{Field: "user_id", Reason: "must be positive"}
	}
	if i.ContentID <= 0 {
		return &ValidationError{Field: "content_id", Reason: "must be positive"}
	}
	if !i.Type.Valid() {
		return &ValidationError{Field: "interaction_type", Reason: "unknown type " + string(i.Type)}
	}
	if i.Score < 0 || i.Score > 1 {
		return &ValidationError{Field: "score", Reason: "must be in [0,1]"}
	}
	if i.TimeSpentSeconds < 0 {
		return &ValidationError{Field: "time_spent_seconds", Reason: "must be >= 0"}
	}
	if i.ScrollDepth < 0 || i.ScrollDepth > 1 {
		return &ValidationError{Field: "scroll_depth", Reason: "must be in [0,1]"}
	}
	return nil
}
