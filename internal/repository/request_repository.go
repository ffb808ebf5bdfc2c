package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	requestDomain "github.com/lendshare/service-lending/internal/domain/request"
	"github.com/lendshare/service-lending/internal/platform/domain"
)

// ItemRequestModel is the GORM model for the item_requests table.
type ItemRequestModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequesterID uuid.UUID `gorm:"type:uuid;index;not null"`
	Description string    `gorm:"not null;size:1000"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ItemRequestModel) TableName() string {
	return "item_requests"
}

// GormRequestRepository is the GORM-based implementation of request.Repository.
type GormRequestRepository struct {
	db *gorm.DB
}

// NewGormRequestRepository creates a new GormRequestRepository.
func NewGormRequestRepository(db *gorm.DB) *GormRequestRepository {
	return &GormRequestRepository{db: db}
}

// FindByID retrieves an item request by id.
func (r *GormRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*requestDomain.ItemRequest, error) {
	var model ItemRequestModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("item request", id.String())
		}
		return nil, fmt.Errorf("failed to find item request by ID: %w", err)
	}
	return toDomainRequest(&model), nil
}

// FindByRequesterID retrieves the user's own requests, newest first.
func (r *GormRequestRepository) FindByRequesterID(ctx context.Context, requesterID uuid.UUID) ([]*requestDomain.ItemRequest, error) {
	var models []ItemRequestModel
	if err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find requests by requester: %w", err)
	}
	return toDomainRequests(models), nil
}

// FindOthers retrieves requests published by other users, newest first.
func (r *GormRequestRepository) FindOthers(ctx context.Context, requesterID uuid.UUID, page domain.Page) ([]*requestDomain.ItemRequest, error) {
	var models []ItemRequestModel
	if err := r.db.WithContext(ctx).
		Where("requester_id <> ?", requesterID).
		Order("created_at DESC").
		Offset(page.From).
		Limit(page.Size).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find other users' requests: %w", err)
	}
	return toDomainRequests(models), nil
}

// Save persists a new item request.
func (r *GormRequestRepository) Save(ctx context.Context, req *requestDomain.ItemRequest) error {
	model := &ItemRequestModel{
		ID:          req.ID(),
		RequesterID: req.RequesterID(),
		Description: req.Description(),
		CreatedAt:   req.CreatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save item request: %w", err)
	}
	return nil
}

// --- Conversion helpers ---

func toDomainRequest(m *ItemRequestModel) *requestDomain.ItemRequest {
	return requestDomain.Reconstruct(m.ID, m.RequesterID, m.Description, m.CreatedAt)
}

func toDomainRequests(models []ItemRequestModel) []*requestDomain.ItemRequest {
	requests := make([]*requestDomain.ItemRequest, len(models))
	for i, m := range models {
		requests[i] = toDomainRequest(&m)
	}
	return requests
}
