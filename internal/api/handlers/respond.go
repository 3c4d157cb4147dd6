package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/healthfinder/backend/internal/domain/repositories"
	"github.com/healthfinder/backend/internal/infrastructure/observability"
	apperrors "github.com/healthfinder/backend/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithServiceError maps the AppError taxonomy onto HTTP statuses:
// not-found 404, invalid query and validation 400, store unavailable 503,
// everything else 500. Internal errors are logged with trace context; their
// details never reach the response body.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("unhandled service error")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch appErr.Type {
	case apperrors.ErrorTypeNotFound:
		respondWithError(w, http.StatusNotFound, appErr.Message)
	case apperrors.ErrorTypeInvalidQuery, apperrors.ErrorTypeValidation:
		respondWithError(w, http.StatusBadRequest, appErr.Message)
	case apperrors.ErrorTypeUnavailable:
		respondWithError(w, http.StatusServiceUnavailable, appErr.Message)
	default:
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("internal service error")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parsePage reads pageSize/pageNum. Both are optional; when paging is
// requested, pageSize must be a positive integer and pageNum (1-indexed,
// default 1) yields offset pageSize*(pageNum-1).
func parsePage(q url.Values) (repositories.Page, error) {
	sizeStr := q.Get("pageSize")
	numStr := q.Get("pageNum")

	if sizeStr == "" && numStr == "" {
		return repositories.Page{}, nil
	}
	if sizeStr == "" {
		return repositories.Page{}, apperrors.NewInvalidQueryError("pageNum requires pageSize")
	}

	size, err := strconv.Atoi(sizeStr)
	if err != nil || size <= 0 {
		return repositories.Page{}, apperrors.NewInvalidQueryError("pageSize must be a positive integer")
	}

	num := 1
	if numStr != "" {
		num, err = strconv.Atoi(numStr)
		if err != nil || num <= 0 {
			return repositories.Page{}, apperrors.NewInvalidQueryError("pageNum must be a positive integer")
		}
	}

	return repositories.Page{
		Limit:  size,
		Offset: size * (num - 1),
	}, nil
}
