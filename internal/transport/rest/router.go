package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/courtside-dev/stadium-booking/internal/service"
)

// SetupRouter собирает HTTP-маршруты поверх ядра бронирования.
func SetupRouter(h *Handler, identity *service.IdentityService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}

	stadium := r.Group("/stadium")
	{
		stadium.GET("", h.ListStadiums)

		adminOnly := stadium.Group("", Auth(identity), RequireAdmin())
		adminOnly.POST("", h.CreateStadium)
		adminOnly.POST("/:stadiumId/court", h.CreateCourt)
	}

	booking := r.Group("/booking", Auth(identity))
	{
		booking.GET("", h.FindCurrentWeek)
		booking.GET("/all", h.FindAll)
		booking.GET("/court/:courtId", h.FindByCourt)
		booking.GET("/id/:bookingId", h.FindByID)
		booking.GET("/user/:userId", h.FindByUser)
		booking.GET("/bill/:billId", h.FindByBill)

		booking.POST("", h.Book)
		booking.POST("/admin", RequireAdmin(), h.BookAdmin)

		booking.PATCH("/approve/:bookingId", RequireAdmin(), h.Approve)
		booking.PATCH("/slip/:bookingId", h.UploadSlip)
		booking.PATCH("/:bookingId", h.Update)

		booking.DELETE("/bill/:billId", h.DeleteByBill)
		booking.DELETE("/:bookingId", h.DeleteByID)
	}

	return r
}
