package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// stadiums — площадка, внутри которой находятся корты.
type Stadium struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Name        string `gorm:"type:varchar(255);not null"`
	Description string `gorm:"type:text"`

	// Произвольные атрибуты площадки (покрытие, освещение и т.п.).
	Facilities datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Courts []Court `gorm:"foreignKey:StadiumID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// courts — бронируемый ресурс. Пересечения интервалов проверяются
// в пределах одного корта.
type Court struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	StadiumID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(255);not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Stadium *Stadium `gorm:"foreignKey:StadiumID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
