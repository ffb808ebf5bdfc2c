package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/lendshare/service-lending/internal/domain/booking"
	itemDomain "github.com/lendshare/service-lending/internal/domain/item"
	userDomain "github.com/lendshare/service-lending/internal/domain/user"
	"github.com/lendshare/service-lending/internal/events"
	"github.com/lendshare/service-lending/internal/platform/domain"
	"github.com/lendshare/service-lending/internal/platform/kafka"
)

// EventPublisher publishes CloudEvents to a topic. Satisfied by the
// Kafka producer; tests substitute a recording fake.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	ItemID uuid.UUID `json:"item_id" binding:"required"`
	Start  time.Time `json:"start" binding:"required"`
	End    time.Time `json:"end" binding:"required"`
}

// UserRef is a by-id reference to a user in API responses.
type UserRef struct {
	ID uuid.UUID `json:"id"`
}

// ItemRef is a by-id reference to an item in API responses.
type ItemRef struct {
	ID uuid.UUID `json:"id"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID        uuid.UUID `json:"id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    string    `json:"status"`
	Booker    UserRef   `json:"booker"`
	Item      ItemRef   `json:"item"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingService orchestrates the booking lifecycle: creation,
// owner approval/rejection, visibility-checked reads and the
// state-filtered listings for bookers and item owners.
type BookingService struct {
	bookings bookingDomain.Repository
	items    itemDomain.Repository
	users    userDomain.Repository
	producer EventPublisher
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.Repository,
	items itemDomain.Repository,
	users userDomain.Repository,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		items:    items,
		users:    users,
		producer: producer,
		logger:   logger,
	}
}

// CreateBooking creates a new WAITING booking for the requester.
// Preconditions are checked in a fixed order; the first failure wins.
func (s *BookingService) CreateBooking(ctx context.Context, requesterID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}

	item, err := s.items.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if !item.Available() {
		return nil, domain.NewValidationError("item is not available")
	}
	if item.IsOwnedBy(requesterID) {
		return nil, domain.NewValidationError("owner can not book his own item")
	}

	now := time.Now().UTC()
	b, err := bookingDomain.NewBooking(req.ItemID, requesterID, req.Start, req.End, now)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Save(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingRequested, events.BookingRequestedEvent{
		BookingID:  b.ID(),
		ItemID:     item.ID(),
		OwnerID:    item.OwnerID(),
		BookerID:   requesterID,
		Start:      b.Start(),
		End:        b.End(),
		OccurredAt: time.Now().UTC(),
	})

	s.logger.Info("booking created",
		zap.String("booking_id", b.ID().String()),
		zap.String("item_id", item.ID().String()),
		zap.String("booker_id", requesterID.String()),
	)
	result := toBookingDTO(b)
	return &result, nil
}

// UpdateBooking applies the owner's decision to a WAITING booking,
// moving it to APPROVED or REJECTED. The status write is conditional on
// the status still being WAITING, so two racing decisions cannot both
// land; the loser observes the post-race status.
func (s *BookingService) UpdateBooking(ctx context.Context, bookingID uuid.UUID, approve bool, requesterID uuid.UUID) (*BookingDTO, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}

	item, err := s.items.FindByID(ctx, b.ItemID())
	if err != nil {
		return nil, err
	}
	if !item.IsOwnedBy(requesterID) {
		return nil, domain.NewForbiddenError("user is not the item owner")
	}

	if b.Status() != bookingDomain.StatusWaiting {
		return nil, domain.NewInvalidStateError(b.Status().String(), bookingDomain.StatusWaiting.String())
	}

	target := bookingDomain.StatusRejected
	if approve {
		target = bookingDomain.StatusApproved
	}

	swapped, err := s.bookings.CompareAndSetStatus(ctx, bookingID, bookingDomain.StatusWaiting, target)
	if err != nil {
		return nil, err
	}
	if !swapped {
		// Lost the race: report against the status that actually won.
		current, err := s.bookings.FindByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		return nil, domain.NewInvalidStateError(current.Status().String(), bookingDomain.StatusWaiting.String())
	}

	updated, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	eventType := events.BookingRejected
	if approve {
		eventType = events.BookingApproved
	}
	s.publishEvent(ctx, events.TopicBookingEvents, eventType, events.BookingResolvedEvent{
		BookingID:  updated.ID(),
		ItemID:     item.ID(),
		OwnerID:    item.OwnerID(),
		BookerID:   updated.BookerID(),
		Status:     updated.Status().String(),
		OccurredAt: time.Now().UTC(),
	})

	s.logger.Info("booking resolved",
		zap.String("booking_id", bookingID.String()),
		zap.String("status", updated.Status().String()),
	)
	result := toBookingDTO(updated)
	return &result, nil
}

// GetBooking retrieves a single booking, visible only to the booker and
// the item owner.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, requesterID uuid.UUID) (*BookingDTO, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}

	item, err := s.items.FindByID(ctx, b.ItemID())
	if err != nil {
		return nil, err
	}
	if !b.IsVisibleTo(requesterID, item.OwnerID()) {
		return nil, domain.NewForbiddenError("user is not the booker or the item owner")
	}

	result := toBookingDTO(b)
	return &result, nil
}

// GetBookerBookings lists bookings made by the user, filtered by state,
// ordered by start descending.
func (s *BookingService) GetBookerBookings(ctx context.Context, userID uuid.UUID, state string, page domain.Page) ([]BookingDTO, error) {
	return s.listBookings(ctx, bookingDomain.ScopeBooker, userID, state, page)
}

// GetOwnerBookings lists bookings placed on items the user owns,
// filtered by state, ordered by start descending.
func (s *BookingService) GetOwnerBookings(ctx context.Context, userID uuid.UUID, state string, page domain.Page) ([]BookingDTO, error) {
	return s.listBookings(ctx, bookingDomain.ScopeOwner, userID, state, page)
}

// listBookings is the single search path shared by both scopes. The
// state literal is parsed once and now is captured once, so every
// predicate in the call classifies against the same snapshot.
func (s *BookingService) listBookings(ctx context.Context, scope bookingDomain.Scope, userID uuid.UUID, state string, page domain.Page) ([]BookingDTO, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	queryState, err := bookingDomain.ParseQueryState(state)
	if err != nil {
		return nil, err
	}

	results, err := s.bookings.Search(ctx, bookingDomain.SearchQuery{
		Scope:  scope,
		UserID: userID,
		State:  queryState,
		Now:    time.Now().UTC(),
		Page:   page,
	})
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(results))
	for i, b := range results {
		dtos[i] = toBookingDTO(b)
	}
	return dtos, nil
}

// --- Helpers ---

func (s *BookingService) requireUser(ctx context.Context, userID uuid.UUID) error {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check user existence: %w", err)
	}
	if !exists {
		return domain.NewNotFoundError("user", userID.String())
	}
	return nil
}

func toBookingDTO(b *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:        b.ID(),
		Start:     b.Start(),
		End:       b.End(),
		Status:    b.Status().String(),
		Booker:    UserRef{ID: b.BookerID()},
		Item:      ItemRef{ID: b.ItemID()},
		CreatedAt: b.CreatedAt(),
		UpdatedAt: b.UpdatedAt(),
	}
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent("service-lending", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
