package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"restaurant-directory/internal/dto/request"
	"restaurant-directory/internal/usecase"
	"restaurant-directory/pkg/utils"

	"go.uber.org/zap"
)

// writeServiceError maps the service error kind to a status code. Messages of
// classified errors are shown to the caller; anything else is a 500.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	msg := err.Error()

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		log.Warn(operation+" failed - invalid input", zap.Error(err))
		utils.ResponseBadRequest(w, msg, nil)

	case errors.Is(err, usecase.ErrUnauthorized):
		log.Warn(operation+" failed - unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, msg)

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, msg)

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, msg)

	case errors.Is(err, usecase.ErrConflict):
		log.Warn(operation+" failed - already exists", zap.Error(err))
		utils.ResponseConflict(w, msg)

	case errors.Is(err, usecase.ErrTooLarge):
		log.Warn(operation+" failed - too large", zap.Error(err))
		utils.ResponseTooLarge(w, msg)

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// decodeAndValidate reads a JSON body into dst and runs the struct validator.
// It writes the 400 response itself and reports whether the handler should go on.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}

	if validationErrors := utils.ValidateStruct(dst); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return false
	}
	return true
}

// actorID returns the authenticated caller, or "" for anonymous requests.
func actorID(r *http.Request) string {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return ""
	}
	return userID.String()
}

// requireActor writes 401 when the request carries no caller.
func requireActor(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := actorID(r)
	if id == "" {
		utils.ResponseUnauthorized(w, "Authentication required")
		return "", false
	}
	return id, true
}

func paginationFromQuery(r *http.Request) request.PaginatedRequest {
	query := r.URL.Query()
	return request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}
}
