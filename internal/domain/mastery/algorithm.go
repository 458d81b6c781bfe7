package mastery

import (
	"time"

	"github.com/phrazzld/stargazer/internal/domain"
)

// calculateDelta determines how far one attempt moves a tag's mastery.
//
// Parameters:
//   - isCorrect: Whether the learner answered correctly
//   - difficulty: The question difficulty (1-3)
//   - params: Configuration parameters for the update rule
//
// Returns:
//   - The signed delta: BaseCorrectDelta or BaseWrongDelta scaled by the
//     difficulty multiplier. Unknown difficulties use a multiplier of 1.0.
func calculateDelta(isCorrect bool, difficulty domain.Difficulty, params *Params) float64 {
	base := params.BaseWrongDelta
	if isCorrect {
		base = params.BaseCorrectDelta
	}
	return base * params.multiplier(difficulty)
}

// clampMastery keeps mastery within [0,1].
func clampMastery(m float64) float64 {
	if m < 0 {
		return 0
	}
	if m > 1 {
		return 1
	}
	return m
}

// calculateNextTagStat creates the updated TagStat for one tag after an attempt.
//
// This function follows the immutable update pattern: it copies the input
// stat and returns the copy with new values, leaving the original untouched.
//
// Algorithm behavior:
//   - Mastery moves by delta and is clamped to [0,1]
//   - Seen is incremented, along with Correct or Wrong depending on the outcome
//   - LastSeenAt is set to now
//   - NextReviewAt is recomputed from the outcome and the new mastery
func calculateNextTagStat(
	stat domain.TagStat,
	isCorrect bool,
	delta float64,
	now time.Time,
	params *Params,
) domain.TagStat {
	next := stat
	next.Mastery = clampMastery(stat.Mastery + delta)
	next.Seen++
	if isCorrect {
		next.Correct++
	} else {
		next.Wrong++
	}

	seenAt := now
	next.LastSeenAt = &seenAt

	reviewAt := NextReviewAt(isCorrect, next.Mastery, now, params)
	next.NextReviewAt = &reviewAt

	return next
}

// applyAttempt runs the update rule for every distinct known tag named by the
// event. Unknown tags are skipped. The input map is not modified; known tags
// missing from it start from the zero state.
func applyAttempt(
	stats domain.TagStats,
	event domain.AnswerEvent,
	now time.Time,
	params *Params,
) (domain.TagStats, []TagDelta) {
	next := stats.Clone()
	if next == nil {
		next = make(domain.TagStats, len(domain.AllTags()))
	}

	delta := calculateDelta(event.IsCorrect, event.Difficulty, params)
	applied := make(map[domain.Tag]bool, len(event.Tags))
	deltas := make([]TagDelta, 0, len(event.Tags))

	for _, tag := range event.Tags {
		if !tag.IsKnown() || applied[tag] {
			continue
		}
		applied[tag] = true

		current, ok := next[tag]
		if !ok {
			current = domain.NewTagStat(tag)
		}
		current.Tag = tag

		updated := calculateNextTagStat(current, event.IsCorrect, delta, now, params)
		next[tag] = updated

		deltas = append(deltas, TagDelta{
			Tag:          tag,
			OldMastery:   current.Mastery,
			NewMastery:   updated.Mastery,
			Delta:        delta,
			NextReviewAt: *updated.NextReviewAt,
		})
	}

	return next, deltas
}
