package request

import (
	"context"

	"github.com/google/uuid"

	"github.com/lendshare/service-lending/internal/platform/domain"
)

// Repository defines persistence operations for item requests.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ItemRequest, error)
	// FindByRequesterID returns the user's own requests, newest first.
	FindByRequesterID(ctx context.Context, requesterID uuid.UUID) ([]*ItemRequest, error)
	// FindOthers returns requests published by other users, newest
	// first, windowed by page.
	FindOthers(ctx context.Context, requesterID uuid.UUID, page domain.Page) ([]*ItemRequest, error)
	Save(ctx context.Context, r *ItemRequest) error
}
