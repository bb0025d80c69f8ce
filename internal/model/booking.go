package model

import (
	"time"

	"github.com/google/uuid"
)

// Статус брони. Закрытый жизненный цикл:
//
//	PENDING → PAID            (оплата слипом, ровно один раз)
//	PENDING|PAID → APPROVED|UNAPPROVED
//	APPROVED ↔ UNAPPROVED     (решение администратора можно пересмотреть)
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "PENDING"
	BookingStatusPaid       BookingStatus = "PAID"
	BookingStatusApproved   BookingStatus = "APPROVED"
	BookingStatusUnapproved BookingStatus = "UNAPPROVED"
)

// CanTransition сообщает, допустим ли переход s → to.
// Повторное применение того же решения (APPROVED→APPROVED и т.п.) допустимо.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
	switch to {
	case BookingStatusPaid:
		return s == BookingStatusPending
	case BookingStatusApproved, BookingStatusUnapproved:
		return s == BookingStatusPending || s == BookingStatusPaid ||
			s == BookingStatusApproved || s == BookingStatusUnapproved
	default:
		return false
	}
}

// bookings — бронь корта на полуоткрытый интервал [StartsAt, EndsAt).
type Booking struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CourtID uuid.UUID `gorm:"type:uuid;not null;index"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index"`

	StartsAt time.Time `gorm:"type:timestamp with time zone;not null;index"`
	EndsAt   time.Time `gorm:"type:timestamp with time zone;not null;index"`

	Status BookingStatus `gorm:"type:varchar(32);not null;default:'PENDING';index"`

	// Слабая ссылка на счёт: брони одного оформления делят BillID.
	// Используется только для группового показа и удаления.
	BillID *uuid.UUID `gorm:"type:uuid;index"`

	// Ссылка на загруженный слип оплаты; заполняется только операцией оплаты.
	Slip string `gorm:"type:varchar(255)"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	// Навигационные поля для Preload.
	Court *Court `gorm:"foreignKey:CourtID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	User  *User  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
