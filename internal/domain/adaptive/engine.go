package adaptive

import (
	"time"

	"github.com/phrazzld/stargazer/internal/domain"
	"github.com/phrazzld/stargazer/internal/domain/mastery"
	"github.com/phrazzld/stargazer/internal/domain/misconception"
	"github.com/phrazzld/stargazer/internal/domain/recommend"
)

// AnswerResult is the outcome of recording one answered question.
type AnswerResult struct {
	// Progress is the complete next snapshot. It must be persisted as a whole.
	Progress   *domain.Progress
	Deltas     []mastery.TagDelta
	Attempt    domain.QuestionAttempt
	Detections []misconception.Detection
}

// Engine composes the tracker, detector and generator into whole-snapshot
// transitions. Every method takes a snapshot and returns a new one; inputs are
// never modified, so a caller that fails to persist simply drops the result.
type Engine struct {
	tracker   mastery.Tracker
	detector  *misconception.Detector
	generator recommend.Generator
}

// NewEngine creates an engine from its parts.
func NewEngine(
	tracker mastery.Tracker,
	detector *misconception.Detector,
	generator recommend.Generator,
) *Engine {
	return &Engine{
		tracker:   tracker,
		detector:  detector,
		generator: generator,
	}
}

// NewDefaultEngine creates an engine with default parameters and the
// built-in rule library.
func NewDefaultEngine() *Engine {
	return NewEngine(
		mastery.NewDefaultTracker(),
		misconception.NewDefaultDetector(),
		recommend.NewDefaultGenerator(),
	)
}

// Detector exposes the rule library.
func (e *Engine) Detector() *misconception.Detector {
	return e.detector
}

// ApplyAnswer records one answered question. Tag statistics, history,
// misconception flags and cache invalidation all land in the returned
// snapshot together.
func (e *Engine) ApplyAnswer(p *domain.Progress, event domain.AnswerEvent, now time.Time) AnswerResult {
	next := MigrateProgress(p)

	update := e.tracker.Update(next.TagStats, event, now)
	next.TagStats = update.Stats
	next.QuestionHistory = append(next.QuestionHistory, update.Attempt)

	flags, detections := e.detector.Evaluate(next.Misconceptions, next.QuestionHistory, now)
	next.Misconceptions = flags
	next.Recommendations = domain.InvalidRecommendations()

	return AnswerResult{
		Progress:   next,
		Deltas:     update.Deltas,
		Attempt:    update.Attempt,
		Detections: detections,
	}
}

// Resolve acknowledges a misconception. It reports false when there was no
// open flag for the rule; the returned snapshot is then equal to the input.
func (e *Engine) Resolve(p *domain.Progress, ruleID string, now time.Time) (*domain.Progress, bool) {
	next := MigrateProgress(p)
	flags, changed := e.detector.Resolve(next.Misconceptions, ruleID, now)
	if !changed {
		return next, false
	}
	next.Misconceptions = flags
	next.Recommendations = domain.InvalidRecommendations()
	return next, true
}

// StartLesson marks a lesson as opened. It reports false if it already was.
func (e *Engine) StartLesson(p *domain.Progress, slug string) (*domain.Progress, bool) {
	next := MigrateProgress(p)
	if next.HasStartedLesson(slug) {
		return next, false
	}
	next.StartedLessons = append(next.StartedLessons, slug)
	next.Recommendations = domain.InvalidRecommendations()
	return next, true
}

// CompleteLesson marks a lesson as finished, starting it first if needed.
// It reports false if the lesson was already complete.
func (e *Engine) CompleteLesson(p *domain.Progress, slug string) (*domain.Progress, bool) {
	next, _ := e.StartLesson(p, slug)
	if next.HasCompletedLesson(slug) {
		return next, false
	}
	next.CompletedLessons = append(next.CompletedLessons, slug)
	next.Recommendations = domain.InvalidRecommendations()
	return next, true
}

// Recommendations returns the recommendation set for now, honoring the cache.
// When the cache was stale the returned snapshot carries the new Valid state
// and regenerated is true; the caller should persist it.
func (e *Engine) Recommendations(
	p *domain.Progress,
	catalog domain.Catalog,
	now time.Time,
) (next *domain.Progress, state domain.RecommendationState, regenerated bool) {
	next = MigrateProgress(p)
	in := recommend.Input{
		Lessons: next.LessonEntries(catalog),
		Quizzes: next.QuizEntries(catalog),
		Stats:   next.TagStats,
		History: next.QuestionHistory,
		Active:  e.detector.Active(next.Misconceptions),
		Now:     now,
	}

	state, regenerated = e.generator.Current(next.Recommendations, in)
	if regenerated {
		next.Recommendations = domain.ValidRecommendations(state)
	}
	return next, state, regenerated
}
