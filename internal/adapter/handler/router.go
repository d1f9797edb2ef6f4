package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(h *BookingHandler, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/shows/:id/unavailable-seats", h.GetUnavailableSeats)

	bookings := router.Group("/bookings", RequireUser())
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.POST("/group", h.GroupBooking)
		bookings.POST("/locks", h.LockSeats)
		bookings.GET("/:id", h.GetBooking)
		bookings.PUT("/:id", h.ModifyBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
	}

	return router
}
