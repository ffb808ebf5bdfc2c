package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/lendshare/service-lending/internal/domain/booking"
	itemDomain "github.com/lendshare/service-lending/internal/domain/item"
	userDomain "github.com/lendshare/service-lending/internal/domain/user"
	"github.com/lendshare/service-lending/internal/platform/domain"
)

// CreateItemRequest holds the data needed to list a new item.
type CreateItemRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description" binding:"required"`
	Available   *bool      `json:"available" binding:"required"`
	RequestID   *uuid.UUID `json:"request_id"`
}

// UpdateItemRequest holds a partial item update. Empty name and
// description leave the stored values untouched; a nil Available does
// the same for availability.
type UpdateItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
}

// AddCommentRequest holds the text of a new comment.
type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// BookingSummaryDTO is the compact booking shape embedded in owner
// views of an item.
type BookingSummaryDTO struct {
	ID       uuid.UUID `json:"id"`
	BookerID uuid.UUID `json:"booker_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// CommentDTO is the response representation of a comment.
type CommentDTO struct {
	ID         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"author_name"`
	Created    time.Time `json:"created"`
}

// ItemDTO is the response representation of an item. LastBooking and
// NextBooking are populated only when the viewer owns the item.
type ItemDTO struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Available   bool               `json:"available"`
	OwnerID     uuid.UUID          `json:"owner_id"`
	RequestID   *uuid.UUID         `json:"request_id,omitempty"`
	LastBooking *BookingSummaryDTO `json:"last_booking,omitempty"`
	NextBooking *BookingSummaryDTO `json:"next_booking,omitempty"`
	Comments    []CommentDTO       `json:"comments"`
}

// ItemService manages the item catalog: listing, partial updates,
// search, owner views enriched with booking summaries, and comments
// gated on completed bookings.
type ItemService struct {
	items    itemDomain.Repository
	comments itemDomain.CommentRepository
	bookings bookingDomain.Repository
	users    userDomain.Repository
	logger   *zap.Logger
}

// NewItemService creates a new ItemService.
func NewItemService(
	items itemDomain.Repository,
	comments itemDomain.CommentRepository,
	bookings bookingDomain.Repository,
	users userDomain.Repository,
	logger *zap.Logger,
) *ItemService {
	return &ItemService{
		items:    items,
		comments: comments,
		bookings: bookings,
		users:    users,
		logger:   logger,
	}
}

// CreateItem lists a new item owned by ownerID.
func (s *ItemService) CreateItem(ctx context.Context, ownerID uuid.UUID, req CreateItemRequest) (*ItemDTO, error) {
	exists, err := s.users.Exists(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if !exists {
		return nil, domain.NewNotFoundError("user", ownerID.String())
	}
	if req.Available == nil {
		return nil, domain.NewValidationError("available must be provided")
	}

	item, err := itemDomain.NewItem(ownerID, req.Name, req.Description, *req.Available, req.RequestID)
	if err != nil {
		return nil, err
	}
	if err := s.items.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to save item: %w", err)
	}

	s.logger.Info("item created",
		zap.String("item_id", item.ID().String()),
		zap.String("owner_id", ownerID.String()),
	)
	result := toItemDTO(item, nil, nil, []CommentDTO{})
	return &result, nil
}

// UpdateItem applies a partial update to an item. Only the owner may
// update; anyone else gets a not-found answer, the item's existence is
// not disclosed.
func (s *ItemService) UpdateItem(ctx context.Context, ownerID, itemID uuid.UUID, req UpdateItemRequest) (*ItemDTO, error) {
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.IsOwnedBy(ownerID) {
		return nil, domain.NewForbiddenError("user is not the item owner")
	}

	item.Update(req.Name, req.Description, req.Available)
	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("item updated", zap.String("item_id", itemID.String()))
	result := toItemDTO(item, nil, nil, []CommentDTO{})
	return &result, nil
}

// GetItem retrieves an item with its comments. When the viewer owns the
// item, the last finished and next upcoming bookings are attached.
func (s *ItemService) GetItem(ctx context.Context, itemID, viewerID uuid.UUID) (*ItemDTO, error) {
	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	var last, next *BookingSummaryDTO
	if item.IsOwnedBy(viewerID) {
		now := time.Now().UTC()
		last, next, err = s.bookingSummaries(ctx, itemID, now)
		if err != nil {
			return nil, err
		}
	}

	comments, err := s.commentDTOs(ctx, itemID)
	if err != nil {
		return nil, err
	}

	result := toItemDTO(item, last, next, comments)
	return &result, nil
}

// GetOwnerItems lists all items owned by the user, each with booking
// summaries and comments.
func (s *ItemService) GetOwnerItems(ctx context.Context, ownerID uuid.UUID) ([]ItemDTO, error) {
	exists, err := s.users.Exists(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if !exists {
		return nil, domain.NewNotFoundError("user", ownerID.String())
	}

	items, err := s.items.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	dtos := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		last, next, err := s.bookingSummaries(ctx, item.ID(), now)
		if err != nil {
			return nil, err
		}
		comments, err := s.commentDTOs(ctx, item.ID())
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, toItemDTO(item, last, next, comments))
	}
	return dtos, nil
}

// SearchItems finds available items whose name or description contains
// the text, case-insensitively. Blank text yields an empty result
// without touching storage.
func (s *ItemService) SearchItems(ctx context.Context, text string) ([]ItemDTO, error) {
	if strings.TrimSpace(text) == "" {
		return []ItemDTO{}, nil
	}

	items, err := s.items.SearchAvailable(ctx, text)
	if err != nil {
		return nil, err
	}

	dtos := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toItemDTO(item, nil, nil, []CommentDTO{}))
	}
	return dtos, nil
}

// CanComment reports whether the user has at least one APPROVED booking
// of the item that has already ended.
func (s *ItemService) CanComment(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	return s.bookings.HasFinishedApproved(ctx, userID, itemID, time.Now().UTC())
}

// AddComment records a comment on an item. Only users who completed an
// approved booking of the item may comment.
func (s *ItemService) AddComment(ctx context.Context, userID, itemID uuid.UUID, req AddCommentRequest) (*CommentDTO, error) {
	author, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.items.FindByID(ctx, itemID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	eligible, err := s.bookings.HasFinishedApproved(ctx, userID, itemID, now)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, domain.NewValidationError("user has no finished approved booking of this item")
	}

	comment, err := itemDomain.NewComment(itemID, userID, req.Text, now)
	if err != nil {
		return nil, err
	}
	if err := s.comments.Save(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}

	s.logger.Info("comment added",
		zap.String("item_id", itemID.String()),
		zap.String("author_id", userID.String()),
	)
	return &CommentDTO{
		ID:         comment.ID(),
		Text:       comment.Text(),
		AuthorName: author.Name(),
		Created:    comment.CreatedAt(),
	}, nil
}

// --- Helpers ---

// bookingSummaries loads the last finished and next upcoming bookings
// for an item against one now snapshot. Either may be nil.
func (s *ItemService) bookingSummaries(ctx context.Context, itemID uuid.UUID, now time.Time) (*BookingSummaryDTO, *BookingSummaryDTO, error) {
	lastBooking, err := s.bookings.FindLastFinished(ctx, itemID, now)
	if err != nil {
		return nil, nil, err
	}
	nextBooking, err := s.bookings.FindNextUpcoming(ctx, itemID, now)
	if err != nil {
		return nil, nil, err
	}
	return toBookingSummary(lastBooking), toBookingSummary(nextBooking), nil
}

func (s *ItemService) commentDTOs(ctx context.Context, itemID uuid.UUID) ([]CommentDTO, error) {
	comments, err := s.comments.FindByItemID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	dtos := make([]CommentDTO, 0, len(comments))
	for _, c := range comments {
		authorName := ""
		author, err := s.users.FindByID(ctx, c.AuthorID())
		if err == nil {
			authorName = author.Name()
		} else if !domain.IsNotFound(err) {
			return nil, err
		}
		dtos = append(dtos, CommentDTO{
			ID:         c.ID(),
			Text:       c.Text(),
			AuthorName: authorName,
			Created:    c.CreatedAt(),
		})
	}
	return dtos, nil
}

func toBookingSummary(b *bookingDomain.Booking) *BookingSummaryDTO {
	if b == nil {
		return nil
	}
	return &BookingSummaryDTO{
		ID:       b.ID(),
		BookerID: b.BookerID(),
		Start:    b.Start(),
		End:      b.End(),
	}
}

func toItemDTO(i *itemDomain.Item, last, next *BookingSummaryDTO, comments []CommentDTO) ItemDTO {
	return ItemDTO{
		ID:          i.ID(),
		Name:        i.Name(),
		Description: i.Description(),
		Available:   i.Available(),
		OwnerID:     i.OwnerID(),
		RequestID:   i.RequestID(),
		LastBooking: last,
		NextBooking: next,
		Comments:    comments,
	}
}
