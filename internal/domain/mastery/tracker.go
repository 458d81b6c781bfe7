package mastery

import (
	"errors"
	"time"

	"github.com/phrazzld/stargazer/internal/domain"
)

// ErrNilParams is returned when a tracker is built without parameters.
var ErrNilParams = errors.New("mastery params cannot be nil")

// TagDelta summarizes how one attempt changed one tag.
type TagDelta struct {
	Tag          domain.Tag `json:"tag"`
	OldMastery   float64    `json:"oldMastery"`
	NewMastery   float64    `json:"newMastery"`
	Delta        float64    `json:"delta"`
	NextReviewAt time.Time  `json:"nextReviewAt"`
}

// UpdateResult is the output of one mastery update. The caller appends
// Attempt to the history and invalidates cached recommendations in the same
// snapshot write.
type UpdateResult struct {
	Stats   domain.TagStats
	Deltas  []TagDelta
	Attempt domain.QuestionAttempt
}

// Tracker applies the mastery update rule.
type Tracker interface {
	// Update computes new per-tag statistics for one answered question.
	// It never fails: unknown tags are ignored and an empty tag list yields
	// an unchanged map plus the recorded attempt.
	Update(stats domain.TagStats, event domain.AnswerEvent, now time.Time) UpdateResult

	// Params exposes the parameters the tracker was built with.
	Params() *Params
}

type defaultTracker struct {
	params *Params
}

// NewDefaultTracker creates a tracker with default parameters
func NewDefaultTracker() Tracker {
	return &defaultTracker{params: NewDefaultParams()}
}

// NewTrackerWithParams creates a tracker with custom parameters.
func NewTrackerWithParams(params *Params) (Tracker, error) {
	if params == nil {
		return nil, ErrNilParams
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultTracker{params: params}, nil
}

func (t *defaultTracker) Update(
	stats domain.TagStats,
	event domain.AnswerEvent,
	now time.Time,
) UpdateResult {
	next, deltas := applyAttempt(stats, event, now, t.params)
	return UpdateResult{
		Stats:   next,
		Deltas:  deltas,
		Attempt: domain.NewQuestionAttempt(event, now),
	}
}

func (t *defaultTracker) Params() *Params {
	return t.params
}

// NewTagStats returns one zero-valued TagStat for every taxonomy tag.
func NewTagStats() domain.TagStats {
	tags := domain.AllTags()
	stats := make(domain.TagStats, len(tags))
	for _, tag := range tags {
		stats[tag] = domain.NewTagStat(tag)
	}
	return stats
}

// MigrateTagStats returns a map holding every current taxonomy tag. Existing
// entries, including tags no longer in the taxonomy, are kept as they are;
// missing tags are backfilled with the zero state.
func MigrateTagStats(stats domain.TagStats) domain.TagStats {
	out := stats.Clone()
	if out == nil {
		out = make(domain.TagStats, len(domain.AllTags()))
	}
	for _, tag := range domain.AllTags() {
		stat, ok := out[tag]
		if !ok {
			out[tag] = domain.NewTagStat(tag)
			continue
		}
		if stat.Tag == "" {
			stat.Tag = tag
			out[tag] = stat
		}
	}
	return out
}
