package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthfinder/backend/internal/domain/repositories"
	"github.com/healthfinder/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/healthfinder/backend/pkg/errors"
)

func newClinicAdapterMock(t *testing.T) (*ClinicAdapter, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewClinicAdapter(postgres.NewClientFromDB(db), nil), mock
}

func clinicRows(ids ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "region", "clinic_operation", "clinic_type", "clinic_name",
		"address", "open_hours", "drop_in", "review_count", "average_rating",
		"created_at", "updated_at",
	})
	now := time.Now()
	for _, id := range ids {
		rows.AddRow(id, "Stockholm", "Vårdcentral", "Hälsocentral", "Clinic "+id,
			"Storgatan 1", "08:00 - 17:00", "09:00 - 11:00", 2, 4.5, now, now)
	}
	return rows
}

func TestClinicAdapter_List_CountAndPageShareFilters(t *testing.T) {
	adapter, mock := newClinicAdapterMock(t)

	// count first, page second, both carrying the same ILIKE predicates
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "clinics" WHERE \(\("region" ILIKE '%Solna%'\) OR \("address" ILIKE '%Solna%'\)\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(`SELECT .+ FROM "clinics" WHERE \(\("region" ILIKE '%Solna%'\) OR \("address" ILIKE '%Solna%'\)\) LIMIT 10 OFFSET 10`).
		WillReturnRows(clinicRows("c1"))
	mock.ExpectQuery(`SELECT .+ FROM "reviews" WHERE \("clinic_id" IN \('c1'\)\) ORDER BY "review_date" DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "clinic_id", "review", "rating", "name", "title", "review_date"}))

	clinics, total, err := adapter.List(context.Background(), repositories.ClinicFilter{
		Search: "Solna",
		Limit:  10,
		Offset: 10,
	})

	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, clinics, 1)
	assert.NotNil(t, clinics[0].Reviews)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClinicAdapter_List_EmergencyFilter(t *testing.T) {
	adapter, mock := newClinicAdapterMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "clinics" WHERE \("clinic_operation" IN \('Akutmottagning', 'Närakut', 'Jouröppen mottagning'\)\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT .+ FROM "clinics" WHERE \("clinic_operation" IN \('Akutmottagning', 'Närakut', 'Jouröppen mottagning'\)\)`).
		WillReturnRows(clinicRows())

	clinics, total, err := adapter.List(context.Background(), repositories.ClinicFilter{
		ClinicType: repositories.ClinicTypeEmergency,
	})

	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, clinics)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClinicAdapter_List_HoursDropInAndRating(t *testing.T) {
	adapter, mock := newClinicAdapterMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "clinics" WHERE \(\("open_hours" = 'Dygnet runt'\) AND \("drop_in" != 'Stängt'\) AND \("average_rating" >= 4\)\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT .+ FROM "clinics" WHERE \(\("open_hours" = 'Dygnet runt'\) AND \("drop_in" != 'Stängt'\) AND \("average_rating" >= 4\)\) ORDER BY "average_rating" DESC`).
		WillReturnRows(clinicRows())

	_, _, err := adapter.List(context.Background(), repositories.ClinicFilter{
		OpenHours:    repositories.OpenHoursAll,
		DropIn:       true,
		MinAvgRating: 4,
		SortField:    "average_rating",
		SortOrder:    repositories.SortOrderDesc,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClinicAdapter_GetByID_ExpandsReviews(t *testing.T) {
	adapter, mock := newClinicAdapterMock(t)

	mock.ExpectQuery(`SELECT .+ FROM "clinics" WHERE \("id" = 'c1'\)`).
		WillReturnRows(clinicRows("c1"))
	mock.ExpectQuery(`SELECT .+ FROM "reviews" WHERE \("clinic_id" IN \('c1'\)\) ORDER BY "review_date" DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "clinic_id", "review", "rating", "name", "title", "review_date"}).
			AddRow("r1", "c1", "Snabb och vänlig mottagning", 5, "Ann", "Mycket bra", time.Now()))

	clinic, err := adapter.GetByID(context.Background(), "c1")

	require.NoError(t, err)
	require.Len(t, clinic.Reviews, 1)
	assert.Equal(t, "r1", clinic.Reviews[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClinicAdapter_GetByID_NotFound(t *testing.T) {
	adapter, mock := newClinicAdapterMock(t)

	mock.ExpectQuery(`SELECT .+ FROM "clinics" WHERE \("id" = 'missing'\)`).
		WillReturnRows(clinicRows())

	_, err := adapter.GetByID(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestClinicAdapter_Exists(t *testing.T) {
	adapter, mock := newClinicAdapterMock(t)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM clinics WHERE id = \$1\)`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := adapter.Exists(context.Background(), "c1")

	require.NoError(t, err)
	assert.True(t, exists)
}
