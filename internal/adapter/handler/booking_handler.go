package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/srgjo27/showtime_booking/internal/core/domain"
	"github.com/srgjo27/showtime_booking/internal/core/services"
)

// BookingService is the part of services.BookingService the HTTP layer uses.
type BookingService interface {
	Book(ctx context.Context, userID uuid.UUID, req services.BookingRequest) (*domain.Booking, error)
	LockSeats(ctx context.Context, userID uuid.UUID, req services.SeatSelectionRequest) error
	ModifyBooking(ctx context.Context, bookingID, userID uuid.UUID, req services.BookingRequest) (*domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID, userID uuid.UUID) error
	GroupBooking(ctx context.Context, userID uuid.UUID, reqs []services.BookingRequest) ([]services.GroupBookingResult, error)
	GetUnavailableSeats(ctx context.Context, showID uuid.UUID) ([]string, error)
	GetBooking(ctx context.Context, bookingID, userID uuid.UUID) (*domain.Booking, error)
	ListBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Booking, error)
}

type ErrorResponse struct {
	Error string   `json:"error"`
	Code  string   `json:"code"`
	Seats []string `json:"seats,omitempty"`
}

type GroupBookingRequest struct {
	Bookings []services.BookingRequest `json:"bookings"`
}

type GroupBookingItem struct {
	Booking *domain.Booking `json:"booking,omitempty"`
	Error   *ErrorResponse  `json:"error,omitempty"`
}

type BookingHandler struct {
	svc BookingService
	log *zap.Logger
}

func NewBookingHandler(svc BookingService, log *zap.Logger) *BookingHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingHandler{svc: svc, log: log}
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req services.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid json body")
		return
	}

	booking, err := h.svc.Book(c.Request.Context(), userID(c), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

func (h *BookingHandler) GroupBooking(c *gin.Context) {
	var req GroupBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid json body")
		return
	}

	results, err := h.svc.GroupBooking(c.Request.Context(), userID(c), req.Bookings)
	if err != nil {
		h.handleError(c, err)
		return
	}

	items := make([]GroupBookingItem, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			items = append(items, GroupBookingItem{Error: errorBody(r.Err)})
			continue
		}
		items = append(items, GroupBookingItem{Booking: r.Booking})
	}

	c.JSON(http.StatusOK, gin.H{"results": items})
}

func (h *BookingHandler) LockSeats(c *gin.Context) {
	var req services.SeatSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid json body")
		return
	}

	if err := h.svc.LockSeats(c.Request.Context(), userID(c), req); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lockable": true, "seats": req.SeatNumbers})
}

func (h *BookingHandler) ListBookings(c *gin.Context) {
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		h.badRequest(c, "limit must be a number")
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		h.badRequest(c, "offset must be a number")
		return
	}

	bookings, err := h.svc.ListBookings(c.Request.Context(), userID(c), limit, offset)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "limit": limit, "offset": offset})
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, ok := h.pathID(c)
	if !ok {
		return
	}

	booking, err := h.svc.GetBooking(c.Request.Context(), bookingID, userID(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) ModifyBooking(c *gin.Context) {
	bookingID, ok := h.pathID(c)
	if !ok {
		return
	}

	var req services.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid json body")
		return
	}

	booking, err := h.svc.ModifyBooking(c.Request.Context(), bookingID, userID(c), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.svc.CancelBooking(c.Request.Context(), bookingID, userID(c)); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking_id": bookingID, "status": domain.BookingCancelled})
}

func (h *BookingHandler) GetUnavailableSeats(c *gin.Context) {
	showID, ok := h.pathID(c)
	if !ok {
		return
	}

	seats, err := h.svc.GetUnavailableSeats(c.Request.Context(), showID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"show_id": showID, "unavailable_seats": seats})
}

func (h *BookingHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.badRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *BookingHandler) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: string(domain.KindValidation)})
}

func (h *BookingHandler) handleError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	if kind == domain.KindInternal {
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}

	c.JSON(StatusFor(kind), errorBody(err))
}

func errorBody(err error) *ErrorResponse {
	kind := domain.KindOf(err)
	body := &ErrorResponse{Error: err.Error(), Code: string(kind)}
	if kind == domain.KindInternal {
		body.Error = "internal server error"
	}

	var unavailable *domain.SeatUnavailableError
	if errors.As(err, &unavailable) {
		body.Seats = unavailable.Seats
	}
	return body
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindSeatUnavailable:
		return http.StatusConflict
	case domain.KindSeatLocked:
		return http.StatusLocked
	case domain.KindPaymentFailed:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
