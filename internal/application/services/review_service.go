package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/healthfinder/backend/internal/domain/entities"
	"github.com/healthfinder/backend/internal/domain/repositories"
	apperrors "github.com/healthfinder/backend/pkg/errors"
)

// ReviewService handles review submission and listing.
type ReviewService struct {
	reviews  repositories.ReviewRepository
	clinics  repositories.ClinicRepository
	validate *validator.Validate
}

// NewReviewService creates a new review service.
func NewReviewService(reviews repositories.ReviewRepository, clinics repositories.ClinicRepository) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		clinics:  clinics,
		validate: validator.New(),
	}
}

// SubmitReviewInput is the review submission payload. Bounds follow the
// canonical schema: rating 1-5, review 5-300 chars, name 2-26, title 5-60.
type SubmitReviewInput struct {
	Review string `json:"review" validate:"required,min=5,max=300"`
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Name   string `json:"name" validate:"required,min=2,max=26"`
	Title  string `json:"title" validate:"required,min=5,max=60"`
}

// Submit validates the payload and persists the review. The repository
// checks clinic existence and refreshes the clinic aggregates atomically,
// so nothing is written for a missing clinic and a failed validation never
// reaches the store.
func (s *ReviewService) Submit(ctx context.Context, clinicID string, input SubmitReviewInput) (*entities.Review, error) {
	input.Review = strings.TrimSpace(input.Review)
	input.Name = strings.TrimSpace(input.Name)
	input.Title = strings.TrimSpace(input.Title)

	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, strings.ToLower(fe.Field()))
			}
			return nil, apperrors.NewValidationError(fmt.Sprintf("invalid field(s): %s", strings.Join(fields, ", ")))
		}
		return nil, apperrors.NewValidationError("invalid review payload")
	}

	review := &entities.Review{
		ID:         uuid.New().String(),
		ClinicID:   clinicID,
		Review:     input.Review,
		Rating:     input.Rating,
		Name:       input.Name,
		Title:      input.Title,
		ReviewDate: time.Now().UTC(),
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// ListAll returns reviews across all clinics, newest first.
func (s *ReviewService) ListAll(ctx context.Context, page repositories.Page) ([]*entities.Review, error) {
	return s.reviews.ListAll(ctx, page)
}

// ListByClinic returns the reviews for one clinic, newest first. A missing
// clinic is a not-found error rather than an empty list.
func (s *ReviewService) ListByClinic(ctx context.Context, clinicID string, page repositories.Page) ([]*entities.Review, error) {
	exists, err := s.clinics.Exists(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("clinic with id %s not found", clinicID))
	}

	return s.reviews.ListByClinic(ctx, clinicID, page)
}
