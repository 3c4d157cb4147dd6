package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthfinder/backend/internal/domain/entities"
	"github.com/healthfinder/backend/internal/domain/repositories"
	"github.com/healthfinder/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/healthfinder/backend/pkg/errors"
)

func newReviewAdapterMock(t *testing.T) (*ReviewAdapter, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewReviewAdapter(postgres.NewClientFromDB(db), nil), mock
}

func sampleReview() *entities.Review {
	return &entities.Review{
		ID:         "r1",
		ClinicID:   "c1",
		Review:     "Snabb och vänlig mottagning",
		Rating:     5,
		Name:       "Ann",
		Title:      "Mycket bra",
		ReviewDate: time.Now().UTC(),
	}
}

func TestReviewAdapter_Create_LocksInsertsAndRefreshes(t *testing.T) {
	adapter, mock := newReviewAdapterMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM clinics WHERE id = \$1 FOR UPDATE`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c1"))
	mock.ExpectExec(`INSERT INTO "reviews"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE clinics SET[\s\S]+COALESCE\(ROUND\(AVG\(rating\)::numeric, 1\), 0\)[\s\S]+WHERE clinic_id = \$1`).
		WithArgs("c1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := adapter.Create(context.Background(), sampleReview())

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Two submissions against the same clinic serialize on the FOR UPDATE row
// lock: the second transaction cannot take the lock until the first has
// committed, and its aggregate refresh then recomputes the count and
// average from all review rows, including the first writer's. The ordered
// expectations model that serialized schedule; a lost increment would mean
// a refresh ran outside its own lock/insert/commit sequence.
func TestReviewAdapter_Create_ConcurrentSubmissionsSerializeOnRowLock(t *testing.T) {
	adapter, mock := newReviewAdapterMock(t)

	for range [2]struct{}{} {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM clinics WHERE id = \$1 FOR UPDATE`).
			WithArgs("c1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c1"))
		mock.ExpectExec(`INSERT INTO "reviews"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE clinics SET[\s\S]+COALESCE\(ROUND\(AVG\(rating\)::numeric, 1\), 0\)[\s\S]+WHERE clinic_id = \$1`).
			WithArgs("c1", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	first := sampleReview()
	second := sampleReview()
	second.ID = "r2"
	second.Rating = 3

	require.NoError(t, adapter.Create(context.Background(), first))
	require.NoError(t, adapter.Create(context.Background(), second))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// A submission against a clinic that does not exist must write nothing:
// the row lock comes up empty and the transaction rolls back before the
// insert is even attempted.
func TestReviewAdapter_Create_MissingClinicWritesNothing(t *testing.T) {
	adapter, mock := newReviewAdapterMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM clinics WHERE id = \$1 FOR UPDATE`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := adapter.Create(context.Background(), sampleReview())

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewAdapter_Create_RollsBackOnInsertFailure(t *testing.T) {
	adapter, mock := newReviewAdapterMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM clinics WHERE id = \$1 FOR UPDATE`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c1"))
	mock.ExpectExec(`INSERT INTO "reviews"`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := adapter.Create(context.Background(), sampleReview())

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewAdapter_ListAll_NewestFirstWithPaging(t *testing.T) {
	adapter, mock := newReviewAdapterMock(t)

	mock.ExpectQuery(`SELECT .+ FROM "reviews" ORDER BY "review_date" DESC LIMIT 4 OFFSET 4`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "clinic_id", "review", "rating", "name", "title", "review_date"}).
			AddRow("r2", "c1", "Lång väntetid men bra vård", 3, "Bo", "Helt okej", time.Now()).
			AddRow("r1", "c2", "Snabb och vänlig mottagning", 5, "Ann", "Mycket bra", time.Now()))

	reviews, err := adapter.ListAll(context.Background(), repositories.Page{Limit: 4, Offset: 4})

	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "r2", reviews[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewAdapter_ListByClinic_FiltersOnClinicID(t *testing.T) {
	adapter, mock := newReviewAdapterMock(t)

	mock.ExpectQuery(`SELECT .+ FROM "reviews" WHERE \("clinic_id" = 'c1'\) ORDER BY "review_date" DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "clinic_id", "review", "rating", "name", "title", "review_date"}).
			AddRow("r1", "c1", "Snabb och vänlig mottagning", 5, "Ann", "Mycket bra", time.Now()))

	reviews, err := adapter.ListByClinic(context.Background(), "c1", repositories.Page{})

	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "c1", reviews[0].ClinicID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
