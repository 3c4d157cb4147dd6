package entities

import "time"

// Review is a user-submitted review of a clinic. Reviews are immutable
// once created; reviews.clinic_id is the single authoritative link to the
// owning clinic.
type Review struct {
	ID         string    `json:"id" db:"id"`
	ClinicID   string    `json:"clinic_id" db:"clinic_id"`
	Review     string    `json:"review" db:"review"`
	Rating     int       `json:"rating" db:"rating"`
	Name       string    `json:"name" db:"name"`
	Title      string    `json:"title" db:"title"`
	ReviewDate time.Time `json:"review_date" db:"review_date"`
}
