package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/stargazer/internal/domain"
	"github.com/phrazzld/stargazer/internal/domain/adaptive"
	"github.com/phrazzld/stargazer/internal/domain/mastery"
	"github.com/phrazzld/stargazer/internal/domain/misconception"
	"github.com/phrazzld/stargazer/internal/events"
	"github.com/phrazzld/stargazer/internal/platform/logger"
	"github.com/phrazzld/stargazer/internal/redact"
	"github.com/phrazzld/stargazer/internal/store"
)

// DefaultProgressKey is the store key of the single learner snapshot.
const DefaultProgressKey = "stargazer-progress"

// AnswerOutcome is what the caller learns from one recorded answer.
type AnswerOutcome struct {
	Deltas     []mastery.TagDelta        `json:"deltas"`
	Attempt    domain.QuestionAttempt    `json:"attempt"`
	Detections []misconception.Detection `json:"detections"`
}

// LearningService reads and changes the learner's progress.
type LearningService interface {
	// RecordAnswer applies one answered question and persists the result.
	// Returns ErrInvalidAnswer when the event fails validation.
	RecordAnswer(ctx context.Context, event domain.AnswerEvent) (*AnswerOutcome, error)

	// ResolveMisconception acknowledges a misconception. It reports false,
	// without writing, when the rule had no open flag. Flags left by rules
	// since dropped from the library can still be resolved.
	ResolveMisconception(ctx context.Context, ruleID string) (bool, error)

	// StartLesson and CompleteLesson record lesson progress. They report
	// false, without writing, when nothing changed.
	// Both return ErrUnknownLesson for slugs outside the catalog.
	StartLesson(ctx context.Context, slug string) (bool, error)
	CompleteLesson(ctx context.Context, slug string) (bool, error)

	// Recommendations returns the current recommendation set, regenerating
	// and persisting it when the cache is stale.
	Recommendations(ctx context.Context) (domain.RecommendationState, error)

	// Read-only views over the stored snapshot.
	Summary(ctx context.Context) (adaptive.Summary, error)
	ReviewQueue(ctx context.Context) ([]mastery.ReviewQueueItem, error)
	WeakestTags(ctx context.Context) ([]domain.TagStat, error)
	UnseenTags(ctx context.Context) ([]domain.Tag, error)
	ActiveMisconceptions(ctx context.Context) ([]misconception.ActiveMisconception, error)

	// Catalog returns the lesson catalog the service validates against.
	Catalog() domain.Catalog
}

// Options configures a learning service. Zero values select defaults.
type Options struct {
	// Key is the store key of the snapshot
	Key string
	// MaxRetries is the number of attempts per write operation
	MaxRetries int
	// Clock supplies the engine's notion of now
	Clock func() time.Time
}

type learningServiceImpl struct {
	store      store.ProgressStore
	engine     *adaptive.Engine
	catalog    domain.Catalog
	emitter    events.EventEmitter
	key        string
	maxRetries int
	now        func() time.Time
	logger     *slog.Logger
}

// NewLearningService creates a new LearningService.
// It returns an error if any of the required dependencies are nil.
func NewLearningService(
	progressStore store.ProgressStore,
	engine *adaptive.Engine,
	catalog domain.Catalog,
	emitter events.EventEmitter,
	opts Options,
	logger *slog.Logger,
) (LearningService, error) {
	if progressStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "progressStore cannot be nil"}
	}
	if engine == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "engine cannot be nil"}
	}
	if emitter == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "emitter cannot be nil"}
	}

	if opts.Key == "" {
		opts.Key = DefaultProgressKey
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 3
	}
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &learningServiceImpl{
		store:      progressStore,
		engine:     engine,
		catalog:    catalog,
		emitter:    emitter,
		key:        opts.Key,
		maxRetries: opts.MaxRetries,
		now:        opts.Clock,
		logger:     logger.With(slog.String("component", "learning_service")),
	}, nil
}

// transition computes the next snapshot from the current one. It reports
// whether anything changed; unchanged snapshots are not written.
type transition func(p *domain.Progress, now time.Time) (*domain.Progress, bool, error)

// load reads and migrates the stored snapshot. A missing snapshot is a new
// learner at revision 0.
func (s *learningServiceImpl) load(ctx context.Context) (*domain.Progress, int64, error) {
	rec, err := s.store.Get(ctx, s.key)
	if store.IsNotFoundError(err) {
		return adaptive.NewProgress(), 0, nil
	}
	if err != nil {
		return nil, 0, err
	}

	p, err := adaptive.DecodeProgress(rec.Data)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrCorruptProgress, err)
	}
	return p, rec.Revision, nil
}

// update runs load, transition and a revision-checked write, retrying from a
// fresh read whenever another writer got there first.
func (s *learningServiceImpl) update(ctx context.Context, op string, fn transition) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("operation", op))

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		current, revision, err := s.load(ctx)
		if err != nil {
			log.Error("failed to load progress", redact.Attr("error", err))
			return false, NewServiceError(op, "failed to load progress", err)
		}

		next, changed, err := fn(current, s.now())
		if err != nil {
			return false, NewServiceError(op, "transition rejected", err)
		}
		if !changed {
			return false, nil
		}

		data, err := adaptive.EncodeProgress(next)
		if err != nil {
			return false, NewServiceError(op, "failed to encode progress", err)
		}

		newRevision, err := s.store.Put(ctx, s.key, data, revision)
		if err == nil {
			log.Debug("progress saved",
				slog.Int64("revision", newRevision),
				slog.Int("attempt", attempt))
			return true, nil
		}
		if !store.IsConflictError(err) {
			log.Error("failed to save progress", redact.Attr("error", err))
			return false, NewServiceError(op, "failed to save progress", err)
		}

		log.Warn("progress changed concurrently, retrying",
			slog.Int("attempt", attempt),
			slog.Int64("revision", revision))
	}

	log.Error("giving up after repeated revision conflicts", slog.Int("attempts", s.maxRetries))
	return false, fmt.Errorf("%w: %s after %d attempts", ErrRetriesExhausted, op, s.maxRetries)
}

// read loads the snapshot for read-only views.
func (s *learningServiceImpl) read(ctx context.Context, op string) (*domain.Progress, error) {
	p, _, err := s.load(ctx)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load progress",
			slog.String("operation", op),
			redact.Attr("error", err))
		return nil, NewServiceError(op, "failed to load progress", err)
	}
	return p, nil
}

// emit publishes an event after a successful write. The write already
// happened, so a handler failure is logged and not returned.
func (s *learningServiceImpl) emit(ctx context.Context, eventType string, payload interface{}, at time.Time) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewEvent(eventType, payload, at)
	if err != nil {
		log.Error("failed to create event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit event",
			slog.String("event_type", eventType),
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
	}
}

// MasteryUpdatedPayload is the payload of a mastery.updated event.
type MasteryUpdatedPayload struct {
	QuestionID string             `json:"questionId"`
	IsCorrect  bool               `json:"isCorrect"`
	Deltas     []mastery.TagDelta `json:"deltas"`
}

// MisconceptionPayload is the payload of misconception.detected and
// misconception.resolved events.
type MisconceptionPayload struct {
	RuleID       string `json:"ruleId"`
	TriggerCount int    `json:"triggerCount,omitempty"`
	BecameActive bool   `json:"becameActive,omitempty"`
}

// RecordAnswer implements LearningService.RecordAnswer
func (s *learningServiceImpl) RecordAnswer(
	ctx context.Context,
	event domain.AnswerEvent,
) (*AnswerOutcome, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAnswer, err)
	}

	var (
		result adaptive.AnswerResult
		at     time.Time
	)
	_, err := s.update(ctx, "record_answer", func(p *domain.Progress, now time.Time) (*domain.Progress, bool, error) {
		result = s.engine.ApplyAnswer(p, event, now)
		at = now
		return result.Progress, true, nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("answer recorded",
		slog.String("question_id", event.QuestionID),
		slog.Bool("is_correct", event.IsCorrect),
		slog.Int("tags_updated", len(result.Deltas)),
		slog.Int("detections", len(result.Detections)))

	s.emit(ctx, events.TypeMasteryUpdated, MasteryUpdatedPayload{
		QuestionID: event.QuestionID,
		IsCorrect:  event.IsCorrect,
		Deltas:     result.Deltas,
	}, at)
	for _, d := range result.Detections {
		s.emit(ctx, events.TypeMisconceptionDetected, MisconceptionPayload{
			RuleID:       d.RuleID,
			TriggerCount: d.TriggerCount,
			BecameActive: d.BecameActive,
		}, at)
	}

	outcome := &AnswerOutcome{
		Deltas:     result.Deltas,
		Attempt:    result.Attempt,
		Detections: result.Detections,
	}
	if outcome.Deltas == nil {
		outcome.Deltas = []mastery.TagDelta{}
	}
	if outcome.Detections == nil {
		outcome.Detections = []misconception.Detection{}
	}
	return outcome, nil
}

// ResolveMisconception implements LearningService.ResolveMisconception
func (s *learningServiceImpl) ResolveMisconception(ctx context.Context, ruleID string) (bool, error) {
	var at time.Time
	resolved, err := s.update(ctx, "resolve_misconception", func(p *domain.Progress, now time.Time) (*domain.Progress, bool, error) {
		at = now
		next, changed := s.engine.Resolve(p, ruleID, now)
		return next, changed, nil
	})
	if err != nil || !resolved {
		return false, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("misconception resolved",
		slog.String("rule_id", ruleID))
	s.emit(ctx, events.TypeMisconceptionResolved, MisconceptionPayload{RuleID: ruleID}, at)
	return true, nil
}

func (s *learningServiceImpl) lessonChange(
	ctx context.Context,
	op string,
	slug string,
	apply func(p *domain.Progress, slug string) (*domain.Progress, bool),
) (bool, error) {
	if _, ok := s.catalog.Lesson(slug); !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownLesson, slug)
	}
	changed, err := s.update(ctx, op, func(p *domain.Progress, _ time.Time) (*domain.Progress, bool, error) {
		next, changed := apply(p, slug)
		return next, changed, nil
	})
	if err != nil {
		return false, err
	}
	if changed {
		logger.FromContextOrDefault(ctx, s.logger).Info("lesson progress recorded",
			slog.String("operation", op),
			slog.String("slug", slug))
	}
	return changed, nil
}

// StartLesson implements LearningService.StartLesson
func (s *learningServiceImpl) StartLesson(ctx context.Context, slug string) (bool, error) {
	return s.lessonChange(ctx, "start_lesson", slug, s.engine.StartLesson)
}

// CompleteLesson implements LearningService.CompleteLesson
func (s *learningServiceImpl) CompleteLesson(ctx context.Context, slug string) (bool, error) {
	return s.lessonChange(ctx, "complete_lesson", slug, s.engine.CompleteLesson)
}

// Recommendations implements LearningService.Recommendations
func (s *learningServiceImpl) Recommendations(ctx context.Context) (domain.RecommendationState, error) {
	var state domain.RecommendationState
	regenerated, err := s.update(ctx, "recommendations", func(p *domain.Progress, now time.Time) (*domain.Progress, bool, error) {
		var (
			next  *domain.Progress
			fresh bool
		)
		next, state, fresh = s.engine.Recommendations(p, s.catalog, now)
		return next, fresh, nil
	})
	if err != nil {
		return domain.RecommendationState{}, err
	}
	if regenerated {
		logger.FromContextOrDefault(ctx, s.logger).Debug("recommendations regenerated",
			slog.Int("count", len(state.Items)),
			slog.Time("valid_until", state.ValidUntil))
	}
	return state, nil
}

// Summary implements LearningService.Summary
func (s *learningServiceImpl) Summary(ctx context.Context) (adaptive.Summary, error) {
	p, err := s.read(ctx, "summary")
	if err != nil {
		return adaptive.Summary{}, err
	}
	return s.engine.Summarize(p, s.now()), nil
}

// ReviewQueue implements LearningService.ReviewQueue
func (s *learningServiceImpl) ReviewQueue(ctx context.Context) ([]mastery.ReviewQueueItem, error) {
	p, err := s.read(ctx, "review_queue")
	if err != nil {
		return nil, err
	}
	return s.engine.ReviewQueue(p, s.now()), nil
}

// WeakestTags implements LearningService.WeakestTags
func (s *learningServiceImpl) WeakestTags(ctx context.Context) ([]domain.TagStat, error) {
	p, err := s.read(ctx, "weakest_tags")
	if err != nil {
		return nil, err
	}
	return s.engine.WeakestTags(p), nil
}

// UnseenTags implements LearningService.UnseenTags
func (s *learningServiceImpl) UnseenTags(ctx context.Context) ([]domain.Tag, error) {
	p, err := s.read(ctx, "unseen_tags")
	if err != nil {
		return nil, err
	}
	return s.engine.UnseenTags(p), nil
}

// ActiveMisconceptions implements LearningService.ActiveMisconceptions
func (s *learningServiceImpl) ActiveMisconceptions(
	ctx context.Context,
) ([]misconception.ActiveMisconception, error) {
	p, err := s.read(ctx, "active_misconceptions")
	if err != nil {
		return nil, err
	}
	return s.engine.ActiveMisconceptions(p), nil
}

// Catalog implements LearningService.Catalog
func (s *learningServiceImpl) Catalog() domain.Catalog {
	return s.catalog
}

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAnswer) ||
		errors.Is(err, ErrUnknownLesson)
}
