package model

import (
	"time"

	"github.com/google/uuid"
)

// Позиция (роль) пользователя.
type Position string

const (
	PositionUser  Position = "user"
	PositionAdmin Position = "admin"
)

// users
type User struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	DisplayName  string `gorm:"type:varchar(255)"`

	Position Position `gorm:"type:varchar(32);not null;default:'user'"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}
