package item

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for item listings.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Item, error)
	FindByRequestID(ctx context.Context, requestID uuid.UUID) ([]*Item, error)
	// SearchAvailable finds available items whose name or description
	// contains the text, case-insensitively.
	SearchAvailable(ctx context.Context, text string) ([]*Item, error)
	Save(ctx context.Context, item *Item) error
	Update(ctx context.Context, item *Item) error
}

// CommentRepository defines persistence operations for item comments.
type CommentRepository interface {
	FindByItemID(ctx context.Context, itemID uuid.UUID) ([]*Comment, error)
	Save(ctx context.Context, comment *Comment) error
}
