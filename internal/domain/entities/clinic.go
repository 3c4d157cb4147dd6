package entities

import "time"

// Operation categories and open-hours values used by the clinic dataset.
// The descriptors are stored verbatim from the seed data, in Swedish.
const (
	OperationEmergency   = "Akutmottagning"
	OperationUrgentCare  = "Närakut"
	OperationOnCall      = "Jouröppen mottagning"
	OperationRegularCare = "Vårdcentral"

	HoursAroundTheClock = "Dygnet runt"
	HoursClosed         = "Stängt"
)

// EmergencyOperations is the fixed set of emergency-style operation
// categories matched by the "emg" clinic type filter.
var EmergencyOperations = []string{
	OperationEmergency,
	OperationUrgentCare,
	OperationOnCall,
}

// Clinic represents a health clinic listing.
//
// ReviewCount and AverageRating are derived from the reviews table and
// refreshed inside the same transaction as every review insert, so they
// always agree with the linked review rows.
type Clinic struct {
	ID              string    `json:"id" db:"id"`
	Region          string    `json:"region" db:"region"`
	ClinicOperation string    `json:"clinic_operation" db:"clinic_operation"`
	ClinicType      string    `json:"clinic_type" db:"clinic_type"`
	ClinicName      string    `json:"clinic_name" db:"clinic_name"`
	Address         string    `json:"address" db:"address"`
	OpenHours       string    `json:"open_hours" db:"open_hours"`
	DropIn          string    `json:"drop_in" db:"drop_in"`
	ReviewCount     int       `json:"review_count" db:"review_count"`
	AverageRating   float64   `json:"average_rating" db:"average_rating"`
	Reviews         []*Review `json:"reviews" db:"-"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
