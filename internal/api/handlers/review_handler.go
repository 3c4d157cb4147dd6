package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/healthfinder/backend/internal/application/services"
	"github.com/healthfinder/backend/internal/domain/entities"
	"github.com/healthfinder/backend/internal/domain/repositories"
	"github.com/healthfinder/backend/internal/infrastructure/observability"
)

// ReviewSubmissionService defines the review operations used by the handler.
type ReviewSubmissionService interface {
	Submit(ctx context.Context, clinicID string, input services.SubmitReviewInput) (*entities.Review, error)
	ListAll(ctx context.Context, page repositories.Page) ([]*entities.Review, error)
	ListByClinic(ctx context.Context, clinicID string, page repositories.Page) ([]*entities.Review, error)
}

// ReviewHandler handles review submissions and listings.
type ReviewHandler struct {
	service ReviewSubmissionService
	metrics *observability.Metrics
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(service ReviewSubmissionService, metrics *observability.Metrics) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		metrics: metrics,
	}
}

type submitReviewRequest struct {
	Review string `json:"review"`
	Rating int    `json:"rating"`
	Name   string `json:"name"`
	Title  string `json:"title"`
	// ClinicID is accepted for wire compatibility; the path parameter is
	// authoritative.
	ClinicID string `json:"clinic_id"`
}

// SubmitReview handles POST /clinics/{id}/review
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	clinicID := r.PathValue("id")

	var payload submitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	_, err := h.service.Submit(r.Context(), clinicID, services.SubmitReviewInput{
		Review: payload.Review,
		Rating: payload.Rating,
		Name:   payload.Name,
		Title:  payload.Title,
	})
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	observability.RecordReviewSubmitted(r.Context(), h.metrics, clinicID)

	respondWithJSON(w, http.StatusCreated, map[string]bool{
		"success": true,
	})
}

// ListAllReviews handles GET /clinics/reviews
func (h *ReviewHandler) ListAllReviews(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r.URL.Query())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	reviews, err := h.service.ListAll(r.Context(), page)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, reviews)
}

// ListClinicReviews handles GET /clinics/{id}/reviews
func (h *ReviewHandler) ListClinicReviews(w http.ResponseWriter, r *http.Request) {
	clinicID := r.PathValue("id")

	page, err := parsePage(r.URL.Query())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	reviews, err := h.service.ListByClinic(r.Context(), clinicID, page)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, reviews)
}
