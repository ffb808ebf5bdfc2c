package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	itemDomain "github.com/lendshare/service-lending/internal/domain/item"
	requestDomain "github.com/lendshare/service-lending/internal/domain/request"
	userDomain "github.com/lendshare/service-lending/internal/domain/user"
	"github.com/lendshare/service-lending/internal/platform/domain"
)

// CreateItemRequestRequest holds the description of a wanted item.
type CreateItemRequestRequest struct {
	Description string `json:"description" binding:"required"`
}

// RequestItemDTO is the compact item shape attached to a request: the
// items listed in answer to it.
type RequestItemDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Available bool      `json:"available"`
}

// ItemRequestDTO is the response representation of an item request.
type ItemRequestDTO struct {
	ID          uuid.UUID        `json:"id"`
	Description string           `json:"description"`
	RequesterID uuid.UUID        `json:"requester_id"`
	Created     time.Time        `json:"created"`
	Items       []RequestItemDTO `json:"items"`
}

// RequestService manages item requests: wishes for items not yet in
// the catalog, answered by owners listing items against them.
type RequestService struct {
	requests requestDomain.Repository
	items    itemDomain.Repository
	users    userDomain.Repository
	logger   *zap.Logger
}

// NewRequestService creates a new RequestService.
func NewRequestService(
	requests requestDomain.Repository,
	items itemDomain.Repository,
	users userDomain.Repository,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{
		requests: requests,
		items:    items,
		users:    users,
		logger:   logger,
	}
}

// CreateRequest records a new item request for the user.
func (s *RequestService) CreateRequest(ctx context.Context, requesterID uuid.UUID, req CreateItemRequestRequest) (*ItemRequestDTO, error) {
	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}

	r, err := requestDomain.New(requesterID, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.requests.Save(ctx, r); err != nil {
		return nil, fmt.Errorf("failed to save item request: %w", err)
	}

	s.logger.Info("item request created",
		zap.String("request_id", r.ID().String()),
		zap.String("requester_id", requesterID.String()),
	)
	return &ItemRequestDTO{
		ID:          r.ID(),
		Description: r.Description(),
		RequesterID: r.RequesterID(),
		Created:     r.CreatedAt(),
		Items:       []RequestItemDTO{},
	}, nil
}

// GetOwnRequests lists the user's requests, newest first, each with the
// items listed in answer to it.
func (s *RequestService) GetOwnRequests(ctx context.Context, requesterID uuid.UUID) ([]ItemRequestDTO, error) {
	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}

	requests, err := s.requests.FindByRequesterID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.toDTOs(ctx, requests)
}

// GetOtherRequests lists requests made by other users, newest first,
// windowed by the page.
func (s *RequestService) GetOtherRequests(ctx context.Context, userID uuid.UUID, page domain.Page) ([]ItemRequestDTO, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	requests, err := s.requests.FindOthers(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return s.toDTOs(ctx, requests)
}

// GetRequest retrieves a single request with its answering items. Any
// existing user may view any request.
func (s *RequestService) GetRequest(ctx context.Context, userID, requestID uuid.UUID) (*ItemRequestDTO, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	r, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	dto, err := s.toDTO(ctx, r)
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// --- Helpers ---

func (s *RequestService) requireUser(ctx context.Context, userID uuid.UUID) error {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check user existence: %w", err)
	}
	if !exists {
		return domain.NewNotFoundError("user", userID.String())
	}
	return nil
}

func (s *RequestService) toDTOs(ctx context.Context, requests []*requestDomain.ItemRequest) ([]ItemRequestDTO, error) {
	dtos := make([]ItemRequestDTO, 0, len(requests))
	for _, r := range requests {
		dto, err := s.toDTO(ctx, r)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, *dto)
	}
	return dtos, nil
}

func (s *RequestService) toDTO(ctx context.Context, r *requestDomain.ItemRequest) (*ItemRequestDTO, error) {
	items, err := s.items.FindByRequestID(ctx, r.ID())
	if err != nil {
		return nil, err
	}

	itemDTOs := make([]RequestItemDTO, 0, len(items))
	for _, item := range items {
		itemDTOs = append(itemDTOs, RequestItemDTO{
			ID:        item.ID(),
			Name:      item.Name(),
			OwnerID:   item.OwnerID(),
			Available: item.Available(),
		})
	}
	return &ItemRequestDTO{
		ID:          r.ID(),
		Description: r.Description(),
		RequesterID: r.RequesterID(),
		Created:     r.CreatedAt(),
		Items:       itemDTOs,
	}, nil
}
