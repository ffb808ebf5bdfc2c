package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/lendshare/service-lending/internal/platform/domain"
)

// Booking is the aggregate root for a time-bounded reservation of an
// item. Only the status ever changes after creation; the time window
// and the item/booker references are immutable.
type Booking struct {
	id        uuid.UUID
	itemID    uuid.UUID
	bookerID  uuid.UUID
	start     time.Time
	end       time.Time
	status    Status
	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking in state WAITING. The window is
// validated against now, the caller's single submission-time snapshot:
// both ends must not lie in the past and the window must be non-empty.
func NewBooking(itemID, bookerID uuid.UUID, start, end, now time.Time) (*Booking, error) {
	if itemID == uuid.Nil {
		return nil, domain.NewValidationError("item ID is required")
	}
	if bookerID == uuid.Nil {
		return nil, domain.NewValidationError("booker ID is required")
	}
	if start.Before(now) || end.Before(now) || !end.After(start) {
		return nil, domain.NewValidationError("booking window is invalid: start and end must be in the future and end must be after start")
	}

	createdAt := now.UTC()
	return &Booking{
		id:        uuid.New(),
		itemID:    itemID,
		bookerID:  bookerID,
		start:     start,
		end:       end,
		status:    StatusWaiting,
		version:   1,
		createdAt: createdAt,
		updatedAt: createdAt,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id, itemID, bookerID uuid.UUID,
	start, end time.Time,
	status Status,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:        id,
		itemID:    itemID,
		bookerID:  bookerID,
		start:     start,
		end:       end,
		status:    status,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// ItemID returns the id of the booked item.
func (b *Booking) ItemID() uuid.UUID { return b.itemID }

// BookerID returns the id of the user who requested the booking.
func (b *Booking) BookerID() uuid.UUID { return b.bookerID }

// Start returns the beginning of the booking window.
func (b *Booking) Start() time.Time { return b.start }

// End returns the end of the booking window.
func (b *Booking) End() time.Time { return b.end }

// Status returns the current booking status.
func (b *Booking) Status() Status { return b.status }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Resolve transitions the booking out of WAITING: to APPROVED when
// approve is true, to REJECTED otherwise.
func (b *Booking) Resolve(approve bool) error {
	target := StatusRejected
	if approve {
		target = StatusApproved
	}
	if !b.status.CanTransitionTo(target) {
		return domain.NewInvalidStateError(string(b.status), string(StatusWaiting))
	}
	b.status = target
	b.version++
	b.updatedAt = time.Now().UTC()
	return nil
}

// IsVisibleTo reports whether the given user may see this booking:
// the booker and the item's owner may, nobody else.
func (b *Booking) IsVisibleTo(userID, itemOwnerID uuid.UUID) bool {
	return b.bookerID == userID || itemOwnerID == userID
}

// SpansMoment reports whether the booking window contains the given moment.
func (b *Booking) SpansMoment(now time.Time) bool {
	return !b.start.After(now) && !b.end.Before(now)
}

// FinishedBefore reports whether the booking ended strictly before the given moment.
func (b *Booking) FinishedBefore(now time.Time) bool {
	return b.end.Before(now)
}

// StartsAfter reports whether the booking starts strictly after the given moment.
func (b *Booking) StartsAfter(now time.Time) bool {
	return b.start.After(now)
}
