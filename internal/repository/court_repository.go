package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/courtside-dev/stadium-booking/internal/model"
)

type CourtRepository interface {
	// Каталог площадок вместе с кортами.
	ListStadiums(ctx context.Context) ([]model.Stadium, error)
	// Создать площадку.
	CreateStadium(ctx context.Context, stadium *model.Stadium) error
	// Найти корт по ID.
	GetCourt(ctx context.Context, id uuid.UUID) (*model.Court, error)
	// Создать корт.
	CreateCourt(ctx context.Context, court *model.Court) error
}

type GormCourtRepository struct {
	db *gorm.DB
}

func NewGormCourtRepository(db *gorm.DB) *GormCourtRepository {
	return &GormCourtRepository{db: db}
}

func (r *GormCourtRepository) ListStadiums(ctx context.Context) ([]model.Stadium, error) {
	var stadiums []model.Stadium
	err := r.db.WithContext(ctx).Preload("Courts").Find(&stadiums).Error
	return stadiums, err
}

func (r *GormCourtRepository) CreateStadium(ctx context.Context, stadium *model.Stadium) error {
	if stadium.ID == uuid.Nil {
		stadium.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(stadium).Error
}

func (r *GormCourtRepository) GetCourt(ctx context.Context, id uuid.UUID) (*model.Court, error) {
	var c model.Court
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormCourtRepository) CreateCourt(ctx context.Context, court *model.Court) error {
	if court.ID == uuid.Nil {
		court.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(court).Error
}
