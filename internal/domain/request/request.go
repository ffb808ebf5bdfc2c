package request

import (
	"time"

	"github.com/google/uuid"

	"github.com/lendshare/service-lending/internal/platform/domain"
)

// ItemRequest is a user's published wish for an item that is not yet
// listed. Owners may answer a request by listing an item against it.
type ItemRequest struct {
	id          uuid.UUID
	requesterID uuid.UUID
	description string
	createdAt   time.Time
}

// New creates a new item request.
func New(requesterID uuid.UUID, description string) (*ItemRequest, error) {
	if requesterID == uuid.Nil {
		return nil, domain.NewValidationError("requester ID is required")
	}
	if description == "" {
		return nil, domain.NewValidationError("request description is required")
	}
	return &ItemRequest{
		id:          uuid.New(),
		requesterID: requesterID,
		description: description,
		createdAt:   time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds an ItemRequest from persistence.
func Reconstruct(id, requesterID uuid.UUID, description string, createdAt time.Time) *ItemRequest {
	return &ItemRequest{
		id:          id,
		requesterID: requesterID,
		description: description,
		createdAt:   createdAt,
	}
}

// Getters.
func (r *ItemRequest) ID() uuid.UUID          { return r.id }
func (r *ItemRequest) RequesterID() uuid.UUID { return r.requesterID }
func (r *ItemRequest) Description() string    { return r.description }
func (r *ItemRequest) CreatedAt() time.Time   { return r.createdAt }
