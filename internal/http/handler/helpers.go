package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"secretstore-api/internal/auth"
	"secretstore-api/internal/domain"
	"secretstore-api/internal/http/httperr"
	"secretstore-api/internal/observability/logger"
	"secretstore-api/internal/service"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Helper functions for standardized responses

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// requireActor extracts the authenticated user id from the request context.
// Writes a 401 and returns false when the claims are missing.
func requireActor(w http.ResponseWriter, ctx context.Context) (string, bool) {
	claims, ok := auth.GetClaims(ctx)
	if !ok {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "authentication claims not found")
		return "", false
	}
	actorID := claims.UserID()
	if actorID == "" {
		httperr.Unauthorized401(w, ctx, httperr.ErrCodeInvalidToken, "user id not found in claims")
		return "", false
	}
	return actorID, true
}

// decodeJSON parses a request body. Writes a 400 and returns false on a
// malformed body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httperr.BadRequest400(w, r.Context(), httperr.ErrCodeInvalidParameter, "invalid request body")
		return false
	}
	return true
}

// handleServiceError maps service errors onto the HTTP error taxonomy:
// denial -> 403 with the per-operation reason, unknown id -> 404,
// validation -> 400, conflicts -> 409, everything else -> 500 with the
// details kept server-side.
func handleServiceError(w http.ResponseWriter, ctx context.Context, log *logger.Logger, err error) {
	logger.SetRootError(ctx, err)

	var denied *service.AccessDeniedError
	if errors.As(err, &denied) {
		httperr.Forbidden403(w, ctx, httperr.ErrCodeForbidden, denied.Reason)
		return
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make(map[string]string, len(validationErrs))
		for _, fe := range validationErrs {
			fields[fe.Field()] = fe.Tag()
		}
		httperr.BadRequest400WithFields(w, ctx, httperr.ErrCodeValidationError, "validation failed", fields)
		return
	}

	switch {
	case errors.Is(err, service.ErrWorkspaceNotFound):
		httperr.NotFound404(w, ctx, "workspace not found")
	case errors.Is(err, service.ErrRoleNotFound):
		httperr.NotFound404(w, ctx, "role not found")
	case errors.Is(err, service.ErrRoleBindingNotFound):
		httperr.NotFound404(w, ctx, "role binding not found")
	case errors.Is(err, service.ErrWorkspaceUserNotFound):
		httperr.NotFound404(w, ctx, "workspace user not found")
	case errors.Is(err, service.ErrSecretNotFound):
		httperr.NotFound404(w, ctx, "secret not found")
	case errors.Is(err, service.ErrEventBindingNotFound):
		httperr.NotFound404(w, ctx, "event binding not found")
	case errors.Is(err, service.ErrChatBindingNotFound):
		httperr.NotFound404(w, ctx, "chat binding not found")
	case errors.Is(err, service.ErrPairingCodeInvalid):
		httperr.NotFound404(w, ctx, "pairing code invalid")
	case errors.Is(err, service.ErrAlreadyMember):
		httperr.Conflict409(w, ctx, "user is already a member of this workspace")
	case errors.Is(err, service.ErrChatBindingExists):
		httperr.Conflict409(w, ctx, "chat binding already exists")
	case errors.Is(err, service.ErrWorkspaceIDRequired):
		httperr.BadRequest400(w, ctx, httperr.ErrCodeMissingParameter, "workspace_id is required")
	case errors.Is(err, service.ErrChatIDRequired):
		httperr.BadRequest400(w, ctx, httperr.ErrCodeMissingParameter, "chat_id is required")
	case errors.Is(err, domain.ErrInvalidAction):
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidActionType, "invalid action type")
	default:
		log.Error(ctx, "unexpected service error", zap.Error(err))
		httperr.InternalError(w, ctx)
	}
}
