package handler

import (
	"net/http"

	"secretstore-api/internal/http/httperr"
	"secretstore-api/internal/observability/logger"
	"secretstore-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type LogHandler struct {
	service *service.LogService
}

func NewLogHandler(service *service.LogService) *LogHandler {
	return &LogHandler{service: service}
}

// ListLogs handles GET /logs
func (h *LogHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	entries, err := h.service.List(ctx, actorID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// ListLogsByWorkspace handles GET /logs/workspace/{workspaceId}
func (h *LogHandler) ListLogsByWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	workspaceID := chi.URLParam(r, "workspaceId")
	if workspaceID == "" {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "workspaceId is required")
		return
	}

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	entries, err := h.service.ListByWorkspace(ctx, actorID, workspaceID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// ExportLogs handles GET /logs/export
func (h *LogHandler) ExportLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="logs.csv"`)
	w.WriteHeader(http.StatusOK)

	// Headers are already committed; a failure mid-stream can only be logged.
	if err := h.service.ExportCSV(ctx, actorID, w); err != nil {
		logger.SetRootError(ctx, err)
		log.Error(ctx, "log export aborted", zap.Error(err))
	}
}
