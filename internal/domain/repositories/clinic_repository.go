package repositories

import (
	"context"

	"github.com/healthfinder/backend/internal/domain/entities"
)

// ClinicRepository defines the interface for clinic data operations
type ClinicRepository interface {
	// List retrieves a page of clinics matching the filter along with the
	// total number of matches before pagination
	List(ctx context.Context, filter ClinicFilter) ([]*entities.Clinic, int, error)

	// GetByID retrieves a clinic by ID with its reviews expanded
	GetByID(ctx context.Context, id string) (*entities.Clinic, error)

	// Exists reports whether a clinic with the given ID exists
	Exists(ctx context.Context, id string) (bool, error)
}

// ClinicFilter defines the filter, sort and page parameters for listing
// clinics. All filter predicates are AND-composed; sorting and pagination
// apply after filtering.
type ClinicFilter struct {
	// Search is matched case-insensitively as a substring against the
	// region or the address. Empty matches everything.
	Search string

	// ClinicType is "emg" (emergency operation categories), "reg"
	// (regular care) or empty for no filter.
	ClinicType string

	// OpenHours is "all" (around the clock), "other" (excludes closed)
	// or empty for no filter.
	OpenHours string

	// DropIn restricts to clinics whose drop-in descriptor is not the
	// closed sentinel.
	DropIn bool

	// MinAvgRating restricts to clinics with average_rating >= the
	// threshold. Zero means no filter.
	MinAvgRating int

	SortField string
	SortOrder string

	Limit  int
	Offset int
}

// sortableClinicColumns is the whitelist of clinic attributes a caller may
// sort by. Sorting by anything else is an invalid query, not a silent
// no-op.
var sortableClinicColumns = map[string]struct{}{
	"id":               {},
	"region":           {},
	"clinic_operation": {},
	"clinic_type":      {},
	"clinic_name":      {},
	"address":          {},
	"open_hours":       {},
	"drop_in":          {},
	"review_count":     {},
	"average_rating":   {},
	"created_at":       {},
	"updated_at":       {},
}

// IsSortableClinicColumn reports whether field is an allowed sort column.
func IsSortableClinicColumn(field string) bool {
	_, ok := sortableClinicColumns[field]
	return ok
}

// Clinic type filter values accepted on the wire.
const (
	ClinicTypeEmergency = "emg"
	ClinicTypeRegular   = "reg"

	OpenHoursAll   = "all"
	OpenHoursOther = "other"

	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)
