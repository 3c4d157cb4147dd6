package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/healthfinder/backend/internal/domain/entities"
	"github.com/healthfinder/backend/internal/domain/repositories"
	"github.com/healthfinder/backend/internal/infrastructure/clients/postgres"
	"github.com/healthfinder/backend/internal/infrastructure/observability"
	apperrors "github.com/healthfinder/backend/pkg/errors"
)

// ReviewAdapter implements review persistence in Postgres.
type ReviewAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

var _ repositories.ReviewRepository = (*ReviewAdapter)(nil)

// NewReviewAdapter creates a new review adapter.
func NewReviewAdapter(client *postgres.Client, metrics *observability.Metrics) *ReviewAdapter {
	return &ReviewAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		metrics: metrics,
	}
}

var reviewColumns = []interface{}{
	"id", "clinic_id", "review", "rating", "name", "title", "review_date",
}

// refreshAggregatesQuery recomputes the clinic's derived fields from the
// authoritative review rows, server-side. Running it in the same
// transaction as the insert, after the FOR UPDATE lock, reestablishes the
// invariant review_count == COUNT(reviews) and
// average_rating == ROUND(AVG(rating), 1) on every call.
const refreshAggregatesQuery = `
	UPDATE clinics SET
		review_count = agg.cnt,
		average_rating = agg.avg,
		updated_at = $2
	FROM (
		SELECT
			COUNT(*) AS cnt,
			COALESCE(ROUND(AVG(rating)::numeric, 1), 0) AS avg
		FROM reviews
		WHERE clinic_id = $1
	) AS agg
	WHERE id = $1`

// Create inserts a review and refreshes the owning clinic's aggregates in
// one transaction. The clinic row is locked first: a missing clinic aborts
// before anything is written, and concurrent submissions against the same
// clinic serialize on the lock so neither increment can be lost.
func (a *ReviewAdapter) Create(ctx context.Context, review *entities.Review) error {
	start := time.Now()
	defer func() {
		observability.RecordDBMetric(ctx, a.metrics, "reviews.create", time.Since(start))
	}()

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	var clinicID string
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM clinics WHERE id = $1 FOR UPDATE", review.ClinicID,
	).Scan(&clinicID)
	if err == sql.ErrNoRows {
		return apperrors.NewNotFoundError(fmt.Sprintf("clinic with id %s not found", review.ClinicID))
	}
	if err != nil {
		return apperrors.NewInternalError("failed to lock clinic", err)
	}

	record := goqu.Record{
		"id":          review.ID,
		"clinic_id":   review.ClinicID,
		"review":      review.Review,
		"rating":      review.Rating,
		"name":        review.Name,
		"title":       review.Title,
		"review_date": review.ReviewDate,
	}

	query, args, err := a.db.Insert("reviews").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build review insert query", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create review", err)
	}

	if _, err := tx.ExecContext(ctx, refreshAggregatesQuery, review.ClinicID, time.Now().UTC()); err != nil {
		return apperrors.NewInternalError("failed to refresh clinic aggregates", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit review", err)
	}

	return nil
}

// ListAll retrieves reviews across all clinics, newest first.
func (a *ReviewAdapter) ListAll(ctx context.Context, page repositories.Page) ([]*entities.Review, error) {
	ds := a.db.From("reviews").
		Select(reviewColumns...).
		Order(goqu.I("review_date").Desc())

	return a.listReviews(ctx, ds, page)
}

// ListByClinic retrieves reviews for one clinic, newest first.
func (a *ReviewAdapter) ListByClinic(ctx context.Context, clinicID string, page repositories.Page) ([]*entities.Review, error) {
	ds := a.db.From("reviews").
		Select(reviewColumns...).
		Where(goqu.Ex{"clinic_id": clinicID}).
		Order(goqu.I("review_date").Desc())

	return a.listReviews(ctx, ds, page)
}

func (a *ReviewAdapter) listReviews(ctx context.Context, ds *goqu.SelectDataset, page repositories.Page) ([]*entities.Review, error) {
	start := time.Now()
	defer func() {
		observability.RecordDBMetric(ctx, a.metrics, "reviews.list", time.Since(start))
	}()

	if page.Limit > 0 {
		ds = ds.Limit(uint(page.Limit))
	}
	if page.Offset > 0 {
		ds = ds.Offset(uint(page.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build review list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list reviews", err)
	}
	defer rows.Close()

	reviews := []*entities.Review{}
	for rows.Next() {
		review := &entities.Review{}
		if err := scanReviewInto(rows, review); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating reviews", err)
	}

	return reviews, nil
}

func scanReviewInto(row rowScanner, review *entities.Review) error {
	err := row.Scan(
		&review.ID,
		&review.ClinicID,
		&review.Review,
		&review.Rating,
		&review.Name,
		&review.Title,
		&review.ReviewDate,
	)
	if err != nil {
		return apperrors.NewInternalError("failed to scan review", err)
	}
	return nil
}
