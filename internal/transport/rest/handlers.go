package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/courtside-dev/stadium-booking/internal/interval"
	"github.com/courtside-dev/stadium-booking/internal/repository"
	"github.com/courtside-dev/stadium-booking/internal/service"
	"github.com/courtside-dev/stadium-booking/internal/storage"
)

// Handler связывает HTTP-поверхность с сервисами ядра.
type Handler struct {
	bookings *service.BookingService
	identity *service.IdentityService
	courts   repository.CourtRepository
	slips    storage.SlipStore
}

func NewHandler(
	bookings *service.BookingService,
	identity *service.IdentityService,
	courts repository.CourtRepository,
	slips storage.SlipStore,
) *Handler {
	return &Handler{
		bookings: bookings,
		identity: identity,
		courts:   courts,
		slips:    slips,
	}
}

// writeError отображает типизированные ошибки ядра на HTTP-статусы.
// Всё, что не распознано, считается недоступностью хранилища.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, interval.ErrInvalidInterval),
		errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
	}
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
