package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthfinder/backend/internal/application/services"
	"github.com/healthfinder/backend/internal/domain/entities"
	"github.com/healthfinder/backend/internal/domain/repositories"
	apperrors "github.com/healthfinder/backend/pkg/errors"
)

type recordingClinicRepo struct {
	lastFilter repositories.ClinicFilter
	clinics    []*entities.Clinic
	total      int
	called     bool
}

func (r *recordingClinicRepo) List(ctx context.Context, filter repositories.ClinicFilter) ([]*entities.Clinic, int, error) {
	r.called = true
	r.lastFilter = filter
	return r.clinics, r.total, nil
}

func (r *recordingClinicRepo) GetByID(ctx context.Context, id string) (*entities.Clinic, error) {
	for _, clinic := range r.clinics {
		if clinic.ID == id {
			return clinic, nil
		}
	}
	return nil, apperrors.NewNotFoundError("clinic not found")
}

func (r *recordingClinicRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.GetByID(ctx, id)
	return err == nil, nil
}

func TestClinicService_List_ReturnsPageWithTotal(t *testing.T) {
	repo := &recordingClinicRepo{
		clinics: []*entities.Clinic{{ID: "c1"}, {ID: "c2"}},
		total:   42,
	}
	service := services.NewClinicService(repo)

	page, err := service.List(context.Background(), repositories.ClinicFilter{
		SortField: "average_rating",
		SortOrder: repositories.SortOrderDesc,
	})

	require.NoError(t, err)
	assert.Len(t, page.Clinics, 2)
	assert.Equal(t, 42, page.TotalResults)
	assert.Equal(t, "average_rating", repo.lastFilter.SortField)
}

func TestClinicService_List_RejectsUnknownSortField(t *testing.T) {
	repo := &recordingClinicRepo{}
	service := services.NewClinicService(repo)

	_, err := service.List(context.Background(), repositories.ClinicFilter{SortField: "password"})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeInvalidQuery, apperrors.TypeOf(err))
	assert.False(t, repo.called)
}

func TestClinicService_List_AcceptsEveryClinicAttribute(t *testing.T) {
	columns := []string{
		"id", "region", "clinic_operation", "clinic_type", "clinic_name",
		"address", "open_hours", "drop_in", "review_count", "average_rating",
		"created_at", "updated_at",
	}

	for _, column := range columns {
		repo := &recordingClinicRepo{}
		service := services.NewClinicService(repo)

		_, err := service.List(context.Background(), repositories.ClinicFilter{SortField: column})

		require.NoError(t, err, "sorting by %s", column)
		assert.True(t, repo.called)
	}
}

func TestClinicService_List_AllowsEmptySortField(t *testing.T) {
	repo := &recordingClinicRepo{}
	service := services.NewClinicService(repo)

	_, err := service.List(context.Background(), repositories.ClinicFilter{})

	require.NoError(t, err)
	assert.True(t, repo.called)
}

func TestClinicService_GetByID(t *testing.T) {
	repo := &recordingClinicRepo{clinics: []*entities.Clinic{{ID: "c1", ClinicName: "Vårdcentral Kungsholmen"}}}
	service := services.NewClinicService(repo)

	clinic, err := service.GetByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Vårdcentral Kungsholmen", clinic.ClinicName)

	_, err = service.GetByID(context.Background(), "missing")
	assert.True(t, apperrors.IsNotFound(err))
}
