package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/stargazer/internal/api/shared"
	"github.com/phrazzld/stargazer/internal/platform/logger"
	"github.com/phrazzld/stargazer/internal/service"
)

// MisconceptionHandler serves the active misconception list and resolution.
type MisconceptionHandler struct {
	learningService service.LearningService
	logger          *slog.Logger
}

// NewMisconceptionHandler creates a new MisconceptionHandler
func NewMisconceptionHandler(learningService service.LearningService, logger *slog.Logger) *MisconceptionHandler {
	if learningService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("learningService cannot be nil for MisconceptionHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for MisconceptionHandler")
	}

	return &MisconceptionHandler{
		learningService: learningService,
		logger:          logger.With(slog.String("component", "misconception_handler")),
	}
}

// ListActive handles GET /api/misconceptions
func (h *MisconceptionHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	active, err := h.learningService.ActiveMisconceptions(r.Context())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, active)
}

// Resolve handles POST /api/misconceptions/{ruleID}/resolve
func (h *MisconceptionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ruleID := chi.URLParam(r, "ruleID")
	if ruleID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Rule ID is required")
		return
	}

	resolved, err := h.learningService.ResolveMisconception(r.Context(), ruleID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	log.Debug("misconception resolve requested",
		slog.String("rule_id", ruleID),
		slog.Bool("resolved", resolved))

	shared.RespondWithJSON(w, r, http.StatusOK, ResolveResponse{RuleID: ruleID, Resolved: resolved})
}
