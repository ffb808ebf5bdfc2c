package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lendshare/service-lending/internal/application"
	"github.com/lendshare/service-lending/internal/platform/domain"
	"github.com/lendshare/service-lending/internal/platform/middleware"
	"github.com/lendshare/service-lending/internal/platform/response"
)

const (
	defaultPageFrom = 0
	defaultPageSize = 10
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	bookings.Use(middleware.RequireUserID())
	{
		bookings.POST("", h.CreateBooking)
		bookings.PATCH("/:id", h.UpdateBooking)
		bookings.GET("/:id", h.GetBooking)
		bookings.GET("", h.ListBookerBookings)
		bookings.GET("/owner", h.ListOwnerBookings)
	}
}

// CreateBooking handles POST /bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateBooking handles PATCH /bookings/:id?approved=true|false.
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	approved, err := strconv.ParseBool(c.Query("approved"))
	if err != nil {
		response.BadRequest(c, "approved must be true or false")
		return
	}

	result, err := h.service.UpdateBooking(c.Request.Context(), bookingID, approved, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetBooking handles GET /bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListBookerBookings handles GET /bookings?state=&from=&size=.
func (h *BookingHandler) ListBookerBookings(c *gin.Context) {
	h.listBookings(c, h.service.GetBookerBookings)
}

// ListOwnerBookings handles GET /bookings/owner?state=&from=&size=.
func (h *BookingHandler) ListOwnerBookings(c *gin.Context) {
	h.listBookings(c, h.service.GetOwnerBookings)
}

func (h *BookingHandler) listBookings(
	c *gin.Context,
	list func(ctx context.Context, userID uuid.UUID, state string, page domain.Page) ([]application.BookingDTO, error),
) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	state := c.DefaultQuery("state", "ALL")
	page, err := parsePage(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	results, err := list(c.Request.Context(), userID, state, page)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, results)
}

// parsePage reads from/size query parameters with their defaults.
func parsePage(c *gin.Context) (domain.Page, error) {
	from, err := strconv.Atoi(c.DefaultQuery("from", strconv.Itoa(defaultPageFrom)))
	if err != nil {
		return domain.Page{}, domain.NewValidationError("from must be an integer")
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultPageSize)))
	if err != nil {
		return domain.Page{}, domain.NewValidationError("size must be an integer")
	}
	return domain.NewPage(from, size)
}
