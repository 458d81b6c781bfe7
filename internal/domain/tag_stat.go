package domain

import (
	"errors"
	"time"
)

// Validation errors for TagStat
var (
	ErrMasteryOutOfRange = errors.New("mastery must be between 0 and 1")
	ErrNegativeCounter   = errors.New("stat counters cannot be negative")
	ErrSeenMismatch      = errors.New("seen must equal correct plus wrong")
)

// TagStat tracks a learner's estimated proficiency on one tag.
// Seen always equals Correct + Wrong.
type TagStat struct {
	Tag          Tag        `json:"tag"`
	Mastery      float64    `json:"mastery"`      // Estimated proficiency in [0,1]
	Seen         int        `json:"seen"`         // Total attempts naming this tag
	Correct      int        `json:"correct"`      // Correct attempts
	Wrong        int        `json:"wrong"`        // Wrong attempts
	LastSeenAt   *time.Time `json:"lastSeenAt"`   // Time of the latest attempt, nil if never seen
	NextReviewAt *time.Time `json:"nextReviewAt"` // When the tag is due again, nil if never seen
}

// NewTagStat returns the zero state for a tag.
func NewTagStat(tag Tag) TagStat {
	return TagStat{Tag: tag}
}

// Validate checks the TagStat invariants.
func (s TagStat) Validate() error {
	if s.Mastery < 0 || s.Mastery > 1 {
		return ErrMasteryOutOfRange
	}
	if s.Seen < 0 || s.Correct < 0 || s.Wrong < 0 {
		return ErrNegativeCounter
	}
	if s.Seen != s.Correct+s.Wrong {
		return ErrSeenMismatch
	}
	return nil
}

// TagStats holds one TagStat per tag.
type TagStats map[Tag]TagStat

// Clone returns a copy that shares no timestamps with the receiver.
func (m TagStats) Clone() TagStats {
	if m == nil {
		return nil
	}
	out := make(TagStats, len(m))
	for tag, stat := range m {
		out[tag] = stat.clone()
	}
	return out
}

func (s TagStat) clone() TagStat {
	s.LastSeenAt = cloneTime(s.LastSeenAt)
	s.NextReviewAt = cloneTime(s.NextReviewAt)
	return s
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
