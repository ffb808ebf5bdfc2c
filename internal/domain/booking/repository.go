package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lendshare/service-lending/internal/platform/domain"
)

// Scope selects whose bookings a search covers: those made by a user,
// or those placed on items the user owns. The two scopes share one
// search path; only this discriminator differs.
type Scope string

const (
	ScopeBooker Scope = "booker"
	ScopeOwner  Scope = "owner"
)

// SearchQuery describes one listing call: a scope plus a state filter
// evaluated against a single now snapshot, windowed by offset/size.
// Results are always ordered by start descending.
type SearchQuery struct {
	Scope  Scope
	UserID uuid.UUID
	State  QueryState
	Now    time.Time
	Page   domain.Page
}

// Repository defines the persistence contract for booking aggregates.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// Search retrieves bookings matching the query, ordered by start
	// descending, windowed by the query's page.
	Search(ctx context.Context, q SearchQuery) ([]*Booking, error)

	// FindLastFinished retrieves the booking for the item with the
	// greatest end among those with end < now, or nil if none exists.
	FindLastFinished(ctx context.Context, itemID uuid.UUID, now time.Time) (*Booking, error)

	// FindNextUpcoming retrieves the booking for the item with the
	// smallest start among those with start > now, or nil if none exists.
	FindNextUpcoming(ctx context.Context, itemID uuid.UUID, now time.Time) (*Booking, error)

	// HasFinishedApproved reports whether the user has at least one
	// APPROVED booking of the item that ended before now.
	HasFinishedApproved(ctx context.Context, bookerID, itemID uuid.UUID, now time.Time) (bool, error)

	// Save persists a new booking.
	Save(ctx context.Context, b *Booking) error

	// CompareAndSetStatus atomically moves the booking from the expected
	// status to the target status. It returns false, with no error, when
	// the stored status no longer matches expected.
	CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected, target Status) (bool, error)
}
