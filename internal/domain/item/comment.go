package item

import (
	"time"

	"github.com/google/uuid"

	"github.com/lendshare/service-lending/internal/platform/domain"
)

// Comment is an append-only review left on an item by a user who
// completed a booking of it. Comments are never updated or deleted.
type Comment struct {
	id        uuid.UUID
	itemID    uuid.UUID
	authorID  uuid.UUID
	text      string
	createdAt time.Time
}

// NewComment creates a new comment on an item.
func NewComment(itemID, authorID uuid.UUID, text string, createdAt time.Time) (*Comment, error) {
	if text == "" {
		return nil, domain.NewValidationError("comment text is required")
	}
	return &Comment{
		id:        uuid.New(),
		itemID:    itemID,
		authorID:  authorID,
		text:      text,
		createdAt: createdAt.UTC(),
	}, nil
}

// ReconstructComment rebuilds a Comment from persistence.
func ReconstructComment(id, itemID, authorID uuid.UUID, text string, createdAt time.Time) *Comment {
	return &Comment{
		id:        id,
		itemID:    itemID,
		authorID:  authorID,
		text:      text,
		createdAt: createdAt,
	}
}

// Getters.
func (c *Comment) ID() uuid.UUID        { return c.id }
func (c *Comment) ItemID() uuid.UUID    { return c.itemID }
func (c *Comment) AuthorID() uuid.UUID  { return c.authorID }
func (c *Comment) Text() string         { return c.text }
func (c *Comment) CreatedAt() time.Time { return c.createdAt }
