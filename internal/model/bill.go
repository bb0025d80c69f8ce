package model

import (
	"time"

	"github.com/google/uuid"
)

// bills — счёт одного оформления. Не владеет бронями: связь слабая,
// через Booking.BillID, и нужна только для поиска и каскадного удаления.
type Bill struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	UserID uuid.UUID `gorm:"type:uuid;not null;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}
