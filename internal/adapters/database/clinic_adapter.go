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

// ClinicAdapter implements the ClinicRepository interface
type ClinicAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

var _ repositories.ClinicRepository = (*ClinicAdapter)(nil)

// NewClinicAdapter creates a new clinic adapter
func NewClinicAdapter(client *postgres.Client, metrics *observability.Metrics) *ClinicAdapter {
	return &ClinicAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		metrics: metrics,
	}
}

var clinicColumns = []interface{}{
	"id", "region", "clinic_operation", "clinic_type", "clinic_name",
	"address", "open_hours", "drop_in", "review_count", "average_rating",
	"created_at", "updated_at",
}

// clinicPredicates translates the filter into AND-composed goqu
// expressions. The same predicate set backs both the page query and the
// total count, so total_results always reflects filters but never
// pagination.
func clinicPredicates(filter repositories.ClinicFilter) []goqu.Expression {
	exprs := []goqu.Expression{}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		exprs = append(exprs, goqu.Or(
			goqu.I("region").ILike(pattern),
			goqu.I("address").ILike(pattern),
		))
	}

	switch filter.ClinicType {
	case repositories.ClinicTypeEmergency:
		exprs = append(exprs, goqu.Ex{"clinic_operation": entities.EmergencyOperations})
	case repositories.ClinicTypeRegular:
		exprs = append(exprs, goqu.Ex{"clinic_operation": entities.OperationRegularCare})
	}

	switch filter.OpenHours {
	case repositories.OpenHoursAll:
		exprs = append(exprs, goqu.Ex{"open_hours": entities.HoursAroundTheClock})
	case repositories.OpenHoursOther:
		exprs = append(exprs, goqu.I("open_hours").Neq(entities.HoursClosed))
	}

	if filter.DropIn {
		exprs = append(exprs, goqu.I("drop_in").Neq(entities.HoursClosed))
	}

	if filter.MinAvgRating > 0 {
		exprs = append(exprs, goqu.I("average_rating").Gte(filter.MinAvgRating))
	}

	return exprs
}

// List retrieves a page of clinics matching the filter plus the total
// match count before pagination, with reviews expanded.
func (a *ClinicAdapter) List(ctx context.Context, filter repositories.ClinicFilter) ([]*entities.Clinic, int, error) {
	start := time.Now()
	defer func() {
		observability.RecordDBMetric(ctx, a.metrics, "clinics.list", time.Since(start))
	}()

	exprs := clinicPredicates(filter)

	countQuery, countArgs, err := a.db.From("clinics").
		Select(goqu.COUNT("*")).
		Where(exprs...).
		ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build clinic count query", err)
	}

	var total int
	if err := a.client.DB().QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewInternalError("failed to count clinics", err)
	}

	ds := a.db.From("clinics").
		Select(clinicColumns...).
		Where(exprs...)

	if filter.SortField != "" {
		col := goqu.I(filter.SortField)
		if filter.SortOrder == repositories.SortOrderDesc {
			ds = ds.Order(col.Desc())
		} else {
			ds = ds.Order(col.Asc())
		}
	}

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build clinic list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to list clinics", err)
	}
	defer rows.Close()

	clinics := []*entities.Clinic{}
	for rows.Next() {
		clinic, err := scanClinic(rows)
		if err != nil {
			return nil, 0, err
		}
		clinics = append(clinics, clinic)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewInternalError("error iterating clinics", err)
	}

	if err := a.attachReviews(ctx, clinics); err != nil {
		return nil, 0, err
	}

	return clinics, total, nil
}

// GetByID retrieves a clinic by ID with its reviews expanded
func (a *ClinicAdapter) GetByID(ctx context.Context, id string) (*entities.Clinic, error) {
	start := time.Now()
	defer func() {
		observability.RecordDBMetric(ctx, a.metrics, "clinics.get", time.Since(start))
	}()

	query, args, err := a.db.From("clinics").
		Select(clinicColumns...).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build clinic query", err)
	}

	row := a.client.DB().QueryRowContext(ctx, query, args...)
	clinic, err := scanClinic(row)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("clinic with id %s not found", id))
		}
		return nil, err
	}

	if err := a.attachReviews(ctx, []*entities.Clinic{clinic}); err != nil {
		return nil, err
	}

	return clinic, nil
}

// Exists reports whether a clinic with the given ID exists
func (a *ClinicAdapter) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := a.client.DB().QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM clinics WHERE id = $1)", id,
	).Scan(&exists)
	if err != nil {
		return false, apperrors.NewInternalError("failed to check clinic existence", err)
	}
	return exists, nil
}

// attachReviews expands the derived review list for each clinic in one
// query. The list is not stored on the clinic row; reviews.clinic_id is
// the only link.
func (a *ClinicAdapter) attachReviews(ctx context.Context, clinics []*entities.Clinic) error {
	ids := make([]string, 0, len(clinics))
	byID := make(map[string]*entities.Clinic, len(clinics))
	for _, clinic := range clinics {
		clinic.Reviews = []*entities.Review{}
		ids = append(ids, clinic.ID)
		byID[clinic.ID] = clinic
	}
	if len(ids) == 0 {
		return nil
	}

	query, args, err := a.db.From("reviews").
		Select(reviewColumns...).
		Where(goqu.Ex{"clinic_id": ids}).
		Order(goqu.I("review_date").Desc()).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build review expansion query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to load clinic reviews", err)
	}
	defer rows.Close()

	for rows.Next() {
		review := &entities.Review{}
		if err := scanReviewInto(rows, review); err != nil {
			return err
		}
		if clinic, ok := byID[review.ClinicID]; ok {
			clinic.Reviews = append(clinic.Reviews, review)
		}
	}

	if err := rows.Err(); err != nil {
		return apperrors.NewInternalError("error iterating clinic reviews", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClinic(row rowScanner) (*entities.Clinic, error) {
	clinic := &entities.Clinic{}
	err := row.Scan(
		&clinic.ID,
		&clinic.Region,
		&clinic.ClinicOperation,
		&clinic.ClinicType,
		&clinic.ClinicName,
		&clinic.Address,
		&clinic.OpenHours,
		&clinic.DropIn,
		&clinic.ReviewCount,
		&clinic.AverageRating,
		&clinic.CreatedAt,
		&clinic.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("clinic not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to scan clinic", err)
	}
	return clinic, nil
}
