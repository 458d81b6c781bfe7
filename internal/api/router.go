package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/stargazer/internal/api/middleware"
	"github.com/phrazzld/stargazer/internal/service"
)

// NewRouter builds the HTTP router with every API route and the standard
// middleware stack.
func NewRouter(learningService service.LearningService, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(logger))

	learningHandler := NewLearningHandler(learningService, logger)
	misconceptionHandler := NewMisconceptionHandler(learningService, logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/tags", learningHandler.ListTags)
		r.Post("/answers", learningHandler.RecordAnswer)

		r.Get("/mastery", learningHandler.GetMastery)
		r.Get("/mastery/weakest", learningHandler.GetWeakest)
		r.Get("/mastery/unseen", learningHandler.GetUnseen)
		r.Get("/reviews/due", learningHandler.GetDueReviews)
		r.Get("/recommendations", learningHandler.GetRecommendations)

		r.Get("/misconceptions", misconceptionHandler.ListActive)
		r.Post("/misconceptions/{ruleID}/resolve", misconceptionHandler.Resolve)

		r.Post("/lessons/{slug}/start", learningHandler.StartLesson)
		r.Post("/lessons/{slug}/complete", learningHandler.CompleteLesson)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
