package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// RecommendationType is the kind of activity being suggested.
type RecommendationType string

// Recommendation types
const (
	RecommendationLesson RecommendationType = "lesson"
	RecommendationReview RecommendationType = "review"
	RecommendationQuiz   RecommendationType = "quiz"
)

// ReasonType explains which signal produced a recommendation.
type ReasonType string

// Reason types, listed in descending priority band.
const (
	ReasonMisconception ReasonType = "misconception"
	ReasonReviewDue     ReasonType = "review_due"
	ReasonLowMastery    ReasonType = "low_mastery"
	ReasonNotStarted    ReasonType = "not_started"
	ReasonIncomplete    ReasonType = "incomplete"
)

// RecommendationReason is shown to the learner next to a suggestion.
type RecommendationReason struct {
	Type          ReasonType `json:"type"`
	Details       string     `json:"details"`
	TagsMentioned []Tag      `json:"tagsMentioned,omitempty"`
}

// Recommendation is one ranked suggestion. Priority runs from 1 to 10.
type Recommendation struct {
	ID          string               `json:"id"`
	Type        RecommendationType   `json:"type"`
	TargetSlug  string               `json:"targetSlug"`
	TargetTitle string               `json:"targetTitle"`
	Tags        []Tag                `json:"tags"`
	Reason      RecommendationReason `json:"reason"`
	Priority    int                  `json:"priority"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// RecommendationState is a generated recommendation set and its lifetime.
type RecommendationState struct {
	Items       []Recommendation `json:"items"`
	GeneratedAt time.Time        `json:"generatedAt"`
	ValidUntil  time.Time        `json:"validUntil"`
}

// IsFreshAt reports whether the state may still be served at now.
func (s RecommendationState) IsFreshAt(now time.Time) bool {
	return now.Before(s.ValidUntil)
}

// CacheStatus tags a RecommendationCache.
type CacheStatus string

// Cache statuses
const (
	CacheInvalid CacheStatus = "invalid"
	CacheValid   CacheStatus = "valid"
)

// RecommendationCache is either Invalid, meaning the next read must
// regenerate, or Valid with a state. The zero value is Invalid.
type RecommendationCache struct {
	valid bool
	state RecommendationState
}

// InvalidRecommendations returns the cache state that forces regeneration.
func InvalidRecommendations() RecommendationCache {
	return RecommendationCache{}
}

// ValidRecommendations wraps a generated state.
func ValidRecommendations(state RecommendationState) RecommendationCache {
	return RecommendationCache{valid: true, state: state}
}

// Status returns the cache tag.
func (c RecommendationCache) Status() CacheStatus {
	if c.valid {
		return CacheValid
	}
	return CacheInvalid
}

// Lookup returns the cached state if the cache is Valid and not expired at now.
func (c RecommendationCache) Lookup(now time.Time) (RecommendationState, bool) {
	if !c.valid || !c.state.IsFreshAt(now) {
		return RecommendationState{}, false
	}
	return c.state, true
}

// State returns the wrapped state regardless of expiry. The boolean is false
// for an Invalid cache.
func (c RecommendationCache) State() (RecommendationState, bool) {
	return c.state, c.valid
}

type recommendationCacheJSON struct {
	Status CacheStatus          `json:"status"`
	State  *RecommendationState `json:"state,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (c RecommendationCache) MarshalJSON() ([]byte, error) {
	out := recommendationCacheJSON{Status: c.Status()}
	if c.valid {
		state := c.state
		out.State = &state
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. It accepts the tagged form,
// null, and the bare RecommendationState older snapshots stored.
func (c *RecommendationCache) UnmarshalJSON(data []byte) error {
	*c = RecommendationCache{}
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("%w: recommendations: %v", ErrInvalidFormat, err)
	}

	if _, tagged := probe["status"]; tagged {
		var in recommendationCacheJSON
		if err := json.Unmarshal(data, &in); err != nil {
			return fmt.Errorf("%w: recommendations: %v", ErrInvalidFormat, err)
		}
		if in.Status == CacheValid && in.State != nil {
			*c = ValidRecommendations(*in.State)
		}
		return nil
	}

	if _, legacy := probe["items"]; legacy {
		var state RecommendationState
		if err := json.Unmarshal(data, &state); err != nil {
			return fmt.Errorf("%w: recommendations: %v", ErrInvalidFormat, err)
		}
		*c = ValidRecommendations(state)
	}
	return nil
}
