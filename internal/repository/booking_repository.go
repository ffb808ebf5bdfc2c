package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/lendshare/service-lending/internal/domain/booking"
	"github.com/lendshare/service-lending/internal/platform/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID    uuid.UUID `gorm:"type:uuid;index;not null"`
	BookerID  uuid.UUID `gorm:"type:uuid;index;not null"`
	StartAt   time.Time `gorm:"not null;index"`
	EndAt     time.Time `gorm:"not null;index"`
	Status    string    `gorm:"not null;size:20;index"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of booking.Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// Search retrieves bookings matching the query, ordered by start
// descending. Booker and owner scopes run through the same builder;
// only the scoping clause differs.
func (r *GormBookingRepository) Search(ctx context.Context, q bookingDomain.SearchQuery) ([]*bookingDomain.Booking, error) {
	tx := r.db.WithContext(ctx).Model(&BookingModel{})

	switch q.Scope {
	case bookingDomain.ScopeBooker:
		tx = tx.Where("bookings.booker_id = ?", q.UserID)
	case bookingDomain.ScopeOwner:
		tx = tx.Joins("JOIN items ON items.id = bookings.item_id").
			Where("items.owner_id = ?", q.UserID)
	default:
		return nil, fmt.Errorf("unknown search scope: %s", q.Scope)
	}

	switch q.State {
	case bookingDomain.QueryAll:
		// no further filter
	case bookingDomain.QueryCurrent:
		tx = tx.Where("bookings.start_at <= ? AND bookings.end_at >= ?", q.Now, q.Now)
	case bookingDomain.QueryPast:
		tx = tx.Where("bookings.end_at < ?", q.Now)
	case bookingDomain.QueryFuture:
		tx = tx.Where("bookings.start_at > ?", q.Now)
	case bookingDomain.QueryWaiting:
		tx = tx.Where("bookings.status = ?", string(bookingDomain.StatusWaiting))
	case bookingDomain.QueryRejected:
		tx = tx.Where("bookings.status = ?", string(bookingDomain.StatusRejected))
	default:
		return nil, fmt.Errorf("unknown query state: %s", q.State)
	}

	var models []BookingModel
	if err := tx.
		Order("bookings.start_at DESC").
		Offset(q.Page.From).
		Limit(q.Page.Size).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to search bookings: %w", err)
	}

	return toDomainBookings(models)
}

// FindLastFinished retrieves the most recently finished booking of the item.
func (r *GormBookingRepository) FindLastFinished(ctx context.Context, itemID uuid.UUID, now time.Time) (*bookingDomain.Booking, error) {
	var model BookingModel
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND end_at < ?", itemID, now).
		Order("end_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find last finished booking: %w", err)
	}
	return toDomainBooking(&model)
}

// FindNextUpcoming retrieves the soonest upcoming booking of the item.
func (r *GormBookingRepository) FindNextUpcoming(ctx context.Context, itemID uuid.UUID, now time.Time) (*bookingDomain.Booking, error) {
	var model BookingModel
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND start_at > ?", itemID, now).
		Order("start_at ASC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find next upcoming booking: %w", err)
	}
	return toDomainBooking(&model)
}

// HasFinishedApproved reports whether the user finished an approved
// booking of the item before now.
func (r *GormBookingRepository) HasFinishedApproved(ctx context.Context, bookerID, itemID uuid.UUID, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("booker_id = ? AND item_id = ? AND status = ? AND end_at < ?",
			bookerID, itemID, string(bookingDomain.StatusApproved), now).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count finished bookings: %w", err)
	}
	return count > 0, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, b *bookingDomain.Booking) error {
	if err := r.db.WithContext(ctx).Create(toBookingModel(b)).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// CompareAndSetStatus performs the conditional status write. The WHERE
// clause carries the expected status so a concurrent resolver cannot
// overwrite a terminal state; zero rows affected signals the precondition
// no longer holds.
func (r *GormBookingRepository) CompareAndSetStatus(ctx context.Context, id uuid.UUID, expected, target bookingDomain.Status) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND status = ?", id, string(expected)).
		Updates(map[string]interface{}{
			"status":     string(target),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update booking status: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// --- Conversion helpers ---

func toBookingModel(b *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:        b.ID(),
		ItemID:    b.ItemID(),
		BookerID:  b.BookerID(),
		StartAt:   b.Start(),
		EndAt:     b.End(),
		Status:    string(b.Status()),
		Version:   b.Version(),
		CreatedAt: b.CreatedAt(),
		UpdatedAt: b.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return bookingDomain.Reconstruct(
		m.ID,
		m.ItemID,
		m.BookerID,
		m.StartAt,
		m.EndAt,
		status,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		b, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = b
	}
	return bookings, nil
}
