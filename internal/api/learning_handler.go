package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/stargazer/internal/api/shared"
	"github.com/phrazzld/stargazer/internal/domain"
	"github.com/phrazzld/stargazer/internal/platform/logger"
	"github.com/phrazzld/stargazer/internal/service"
)

// LearningHandler serves answers, mastery views, review queue,
// recommendations and lesson progress.
type LearningHandler struct {
	learningService service.LearningService
	logger          *slog.Logger
}

// NewLearningHandler creates a new LearningHandler
func NewLearningHandler(learningService service.LearningService, logger *slog.Logger) *LearningHandler {
	if learningService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("learningService cannot be nil for LearningHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for LearningHandler")
	}

	return &LearningHandler{
		learningService: learningService,
		logger:          logger.With(slog.String("component", "learning_handler")),
	}
}

// ListTags handles GET /api/tags
func (h *LearningHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, domain.Taxonomy())
}

// RecordAnswer handles POST /api/answers
func (h *LearningHandler) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req AnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	event := req.ToEvent()
	outcome, err := h.learningService.RecordAnswer(r.Context(), event)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var ignored []string
	for _, tag := range event.Tags {
		if !tag.IsKnown() {
			ignored = append(ignored, string(tag))
		}
	}
	if len(ignored) > 0 {
		log.Debug("answer named tags outside the taxonomy",
			slog.String("question_id", event.QuestionID),
			slog.Any("tags", ignored))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AnswerResponse{
		QuestionID:  outcome.Attempt.QuestionID,
		AttemptedAt: outcome.Attempt.AttemptedAt,
		Deltas:      outcome.Deltas,
		Detections:  outcome.Detections,
		IgnoredTags: ignored,
	})
}

// GetMastery handles GET /api/mastery
func (h *LearningHandler) GetMastery(w http.ResponseWriter, r *http.Request) {
	summary, err := h.learningService.Summary(r.Context())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, masteryResponse(summary))
}

// GetWeakest handles GET /api/mastery/weakest
func (h *LearningHandler) GetWeakest(w http.ResponseWriter, r *http.Request) {
	stats, err := h.learningService.WeakestTags(r.Context())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tagMasteryResponses(stats))
}

// GetUnseen handles GET /api/mastery/unseen
func (h *LearningHandler) GetUnseen(w http.ResponseWriter, r *http.Request) {
	tags, err := h.learningService.UnseenTags(r.Context())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	out := make([]TagResponse, len(tags))
	for i, t := range tags {
		out[i] = tagResponse(t)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// GetDueReviews handles GET /api/reviews/due
func (h *LearningHandler) GetDueReviews(w http.ResponseWriter, r *http.Request) {
	queue, err := h.learningService.ReviewQueue(r.Context())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, queue)
}

// GetRecommendations handles GET /api/recommendations
func (h *LearningHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	state, err := h.learningService.Recommendations(r.Context())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, state)
}

// StartLesson handles POST /api/lessons/{slug}/start
func (h *LearningHandler) StartLesson(w http.ResponseWriter, r *http.Request) {
	h.lessonProgress(w, r, h.learningService.StartLesson)
}

// CompleteLesson handles POST /api/lessons/{slug}/complete
func (h *LearningHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	h.lessonProgress(w, r, h.learningService.CompleteLesson)
}

func (h *LearningHandler) lessonProgress(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, slug string) (bool, error),
) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Lesson slug is required")
		return
	}

	changed, err := apply(r.Context(), slug)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, LessonResponse{Slug: slug, Changed: changed})
}
