package services

import (
	"context"
	"fmt"

	"github.com/healthfinder/backend/internal/domain/entities"
	"github.com/healthfinder/backend/internal/domain/repositories"
	apperrors "github.com/healthfinder/backend/pkg/errors"
)

// ClinicService handles read-only clinic operations.
type ClinicService struct {
	repo repositories.ClinicRepository
}

// NewClinicService creates a new clinic service.
func NewClinicService(repo repositories.ClinicRepository) *ClinicService {
	return &ClinicService{repo: repo}
}

// ClinicPage is a page of clinics plus the total match count before
// pagination.
type ClinicPage struct {
	Clinics      []*entities.Clinic `json:"clinics"`
	TotalResults int                `json:"total_results"`
}

// List returns the clinics matching the filter.
func (s *ClinicService) List(ctx context.Context, filter repositories.ClinicFilter) (*ClinicPage, error) {
	if filter.SortField != "" && !repositories.IsSortableClinicColumn(filter.SortField) {
		return nil, apperrors.NewInvalidQueryError(fmt.Sprintf("cannot sort by %q", filter.SortField))
	}

	clinics, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ClinicPage{Clinics: clinics, TotalResults: total}, nil
}

// GetByID returns one clinic with its reviews.
func (s *ClinicService) GetByID(ctx context.Context, id string) (*entities.Clinic, error) {
	return s.repo.GetByID(ctx, id)
}
