package repositories

import (
	"context"

	"github.com/healthfinder/backend/internal/domain/entities"
)

// ReviewRepository defines the interface for review operations.
type ReviewRepository interface {
	// Create persists a review and refreshes the owning clinic's
	// review_count and average_rating in the same transaction. It fails
	// with a not-found error, writing nothing, when the clinic does not
	// exist.
	Create(ctx context.Context, review *entities.Review) error

	// ListAll retrieves reviews across all clinics, newest first.
	ListAll(ctx context.Context, page Page) ([]*entities.Review, error)

	// ListByClinic retrieves reviews for one clinic, newest first.
	ListByClinic(ctx context.Context, clinicID string, page Page) ([]*entities.Review, error)
}

// Page defines offset pagination for review listings. A zero Limit means
// no limit.
type Page struct {
	Limit  int
	Offset int
}
