package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/healthfinder/backend/internal/application/services"
	"github.com/healthfinder/backend/internal/domain/entities"
	"github.com/healthfinder/backend/internal/domain/repositories"
	apperrors "github.com/healthfinder/backend/pkg/errors"
)

// ClinicQueryService defines the clinic operations used by the handler.
type ClinicQueryService interface {
	List(ctx context.Context, filter repositories.ClinicFilter) (*services.ClinicPage, error)
	GetByID(ctx context.Context, id string) (*entities.Clinic, error)
}

// ClinicHandler handles clinic-related HTTP requests
type ClinicHandler struct {
	service ClinicQueryService
}

// NewClinicHandler creates a new clinic handler
func NewClinicHandler(service ClinicQueryService) *ClinicHandler {
	return &ClinicHandler{service: service}
}

// ListClinics handles GET /clinics
func (h *ClinicHandler) ListClinics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repositories.ClinicFilter{
		Search:     q.Get("search"),
		ClinicType: q.Get("clinicType"),
		OpenHours:  q.Get("openHours"),
		DropIn:     isTruthy(q.Get("dropin")),
		SortField:  q.Get("sortField"),
	}

	switch order := q.Get("sortOrder"); order {
	case "", repositories.SortOrderAsc:
		filter.SortOrder = repositories.SortOrderAsc
	case repositories.SortOrderDesc:
		filter.SortOrder = repositories.SortOrderDesc
	default:
		respondWithError(w, http.StatusBadRequest, "sortOrder must be asc or desc")
		return
	}

	if v := q.Get("avgRating"); v != "" {
		rating, err := strconv.Atoi(v)
		if err != nil || rating < 1 || rating > 5 {
			respondWithError(w, http.StatusBadRequest, "avgRating must be an integer between 1 and 5")
			return
		}
		filter.MinAvgRating = rating
	}

	page, err := parsePage(q)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	filter.Limit = page.Limit
	filter.Offset = page.Offset

	result, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetClinic handles GET /clinics/{id}
func (h *ClinicHandler) GetClinic(w http.ResponseWriter, r *http.Request) {
	clinicID := r.PathValue("id")
	if clinicID == "" {
		respondWithServiceError(w, r, apperrors.NewInvalidQueryError("clinic ID is required"))
		return
	}

	clinic, err := h.service.GetByID(r.Context(), clinicID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, clinic)
}

// isTruthy reports whether a query value requests a boolean filter. Any
// present value other than an explicit false form counts.
func isTruthy(value string) bool {
	switch value {
	case "", "false", "0":
		return false
	}
	return true
}
