package misconception

import (
	"fmt"

	"github.com/phrazzld/stargazer/internal/domain"
)

// PatternKind names one of the supported error patterns.
type PatternKind string

// Supported pattern kinds
const (
	// KindConsecutiveWrong matches K wrong answers in a row on the same tag.
	KindConsecutiveWrong PatternKind = "consecutive_wrong"
	// KindConfusedPair matches choosing one specific wrong answer in place of
	// one specific right answer, at least N times.
	KindConfusedPair PatternKind = "confused_pair"
	// KindLowMasteryPersistent matches accuracy at or below a ceiling across
	// the last Window attempts on a tag.
	KindLowMasteryPersistent PatternKind = "low_mastery_persistent"
)

// Pattern is a tagged union over the supported error patterns. Only the
// fields of the selected Kind are meaningful. Patterns are plain data so the
// rule library can be listed, compared and serialized.
//
// Every pattern is anchored at the newest attempt: it holds only when the
// attempt just recorded completes the pattern. A pattern that stays true in
// old history does not fire again on unrelated answers.
type Pattern struct {
	Kind PatternKind `json:"kind"`

	// consecutive_wrong, low_mastery_persistent. Empty means any tag of the
	// newest attempt for consecutive_wrong.
	Tag domain.Tag `json:"tag,omitempty"`

	// consecutive_wrong: streak length; confused_pair: occurrences needed
	Count int `json:"count,omitempty"`

	// confused_pair
	SelectedAnswerID string `json:"selectedAnswerId,omitempty"`
	CorrectAnswerID  string `json:"correctAnswerId,omitempty"`

	// low_mastery_persistent
	Window      int     `json:"window,omitempty"`
	MaxAccuracy float64 `json:"maxAccuracy,omitempty"`
}

// ConsecutiveWrong builds a consecutive_wrong pattern. An empty tag matches a
// streak on any tag.
func ConsecutiveWrong(tag domain.Tag, count int) Pattern {
	return Pattern{Kind: KindConsecutiveWrong, Tag: tag, Count: count}
}

// ConfusedPair builds a confused_pair pattern.
func ConfusedPair(selectedAnswerID, correctAnswerID string, count int) Pattern {
	return Pattern{
		Kind:             KindConfusedPair,
		SelectedAnswerID: selectedAnswerID,
		CorrectAnswerID:  correctAnswerID,
		Count:            count,
	}
}

// LowMasteryPersistent builds a low_mastery_persistent pattern.
func LowMasteryPersistent(tag domain.Tag, window int, maxAccuracy float64) Pattern {
	return Pattern{Kind: KindLowMasteryPersistent, Tag: tag, Window: window, MaxAccuracy: maxAccuracy}
}

// Validate checks that the fields required by the pattern kind are set.
func (p Pattern) Validate() error {
	switch p.Kind {
	case KindConsecutiveWrong:
		if p.Count < 1 {
			return fmt.Errorf("%w: consecutive_wrong needs count >= 1", ErrInvalidPattern)
		}
	case KindConfusedPair:
		if p.SelectedAnswerID == "" || p.CorrectAnswerID == "" || p.Count < 1 {
			return fmt.Errorf("%w: confused_pair needs both answer ids and count >= 1", ErrInvalidPattern)
		}
	case KindLowMasteryPersistent:
		if p.Tag == "" || p.Window < 1 || p.MaxAccuracy < 0 || p.MaxAccuracy > 1 {
			return fmt.Errorf("%w: low_mastery_persistent needs a tag, window >= 1 and accuracy in [0,1]", ErrInvalidPattern)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidPattern, p.Kind)
	}
	return nil
}

// Matches dispatches on the pattern kind. Empty or short histories never match.
func (p Pattern) Matches(attempts []domain.QuestionAttempt) bool {
	if len(attempts) == 0 {
		return false
	}
	switch p.Kind {
	case KindConsecutiveWrong:
		return matchConsecutiveWrong(p, attempts)
	case KindConfusedPair:
		return matchConfusedPair(p, attempts)
	case KindLowMasteryPersistent:
		return matchLowMasteryPersistent(p, attempts)
	default:
		return false
	}
}

func matchConsecutiveWrong(p Pattern, attempts []domain.QuestionAttempt) bool {
	latest := attempts[len(attempts)-1]
	if latest.IsCorrect || p.Count < 1 {
		return false
	}

	if p.Tag != "" {
		return latest.HasTag(p.Tag) && trailingWrong(attempts, p.Tag) >= p.Count
	}
	for _, tag := range latest.Tags {
		if trailingWrong(attempts, tag) >= p.Count {
			return true
		}
	}
	return false
}

// trailingWrong counts wrong answers on tag, walking back from the newest
// attempt until a correct answer on that tag.
func trailingWrong(attempts []domain.QuestionAttempt, tag domain.Tag) int {
	streak := 0
	for i := len(attempts) - 1; i >= 0; i-- {
		a := attempts[i]
		if !a.HasTag(tag) {
			continue
		}
		if a.IsCorrect {
			break
		}
		streak++
	}
	return streak
}

func isConfusion(p Pattern, a domain.QuestionAttempt) bool {
	return !a.IsCorrect &&
		a.SelectedAnswerID == p.SelectedAnswerID &&
		a.CorrectAnswerID == p.CorrectAnswerID
}

func matchConfusedPair(p Pattern, attempts []domain.QuestionAttempt) bool {
	if p.Count < 1 || !isConfusion(p, attempts[len(attempts)-1]) {
		return false
	}
	occurrences := 0
	for _, a := range attempts {
		if isConfusion(p, a) {
			occurrences++
		}
	}
	return occurrences >= p.Count
}

func matchLowMasteryPersistent(p Pattern, attempts []domain.QuestionAttempt) bool {
	if p.Window < 1 || !attempts[len(attempts)-1].HasTag(p.Tag) {
		return false
	}
	seen, correct := 0, 0
	for i := len(attempts) - 1; i >= 0 && seen < p.Window; i-- {
		a := attempts[i]
		if !a.HasTag(p.Tag) {
			continue
		}
		seen++
		if a.IsCorrect {
			correct++
		}
	}
	if seen < p.Window {
		return false
	}
	return float64(correct)/float64(seen) <= p.MaxAccuracy
}
