package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/courtside-dev/stadium-booking/internal/model"
)

type BookingRepository interface {
	// Создать одну бронь.
	Create(ctx context.Context, booking *model.Booking) error
	// Создать счёт и группу броней в одной транзакции (всё или ничего).
	CreateAll(ctx context.Context, bill *model.Bill, bookings []*model.Booking) error
	// Получить бронь по ID вместе с кортом и пользователем.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	// Все брони без фильтрации.
	ListAll(ctx context.Context) ([]model.Booking, error)
	// Брони одного корта.
	ListByCourt(ctx context.Context, courtID uuid.UUID) ([]model.Booking, error)
	// Брони одного пользователя.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Booking, error)
	// Брони одного счёта.
	ListByBill(ctx context.Context, billID uuid.UUID) ([]model.Booking, error)
	// Брони корта, пересекающиеся с [from, to) по полуоткрытому правилу.
	ListByCourtIntersecting(ctx context.Context, courtID uuid.UUID, from, to time.Time) ([]model.Booking, error)
	// Брони, у которых EndsAt лежит в [from, to), по возрастанию StartsAt.
	ListEndingWithin(ctx context.Context, from, to time.Time) ([]model.Booking, error)
	// Атомарный read-modify-write над одной бронью.
	Mutate(ctx context.Context, id uuid.UUID, fn func(*model.Booking) error) (*model.Booking, error)
	// Сохранить изменённую бронь целиком.
	Update(ctx context.Context, booking *model.Booking) error
	// Удалить бронь; возвращает количество удалённых строк.
	DeleteByID(ctx context.Context, id uuid.UUID) (int64, error)
	// Удалить все брони счёта вместе с самим счётом.
	DeleteByBill(ctx context.Context, billID uuid.UUID) (int64, error)
}

// Реализация на GORM.
type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *GormBookingRepository) CreateAll(ctx context.Context, bill *model.Bill, bookings []*model.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if bill != nil {
			if bill.ID == uuid.Nil {
				bill.ID = uuid.New()
			}
			if err := tx.Create(bill).Error; err != nil {
				return err
			}
		}
		for _, b := range bookings {
			if b.ID == uuid.Nil {
				b.ID = uuid.New()
			}
			if err := tx.Create(b).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	if err := r.db.WithContext(ctx).
		Preload("Court").
		Preload("User").
		First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) ListAll(ctx context.Context) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Preload("Court").
		Preload("User").
		Order("starts_at ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *GormBookingRepository) ListByCourt(ctx context.Context, courtID uuid.UUID) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Preload("Court").
		Preload("User").
		Where("court_id = ?", courtID).
		Order("starts_at ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *GormBookingRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Preload("Court").
		Where("user_id = ?", userID).
		Order("starts_at ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *GormBookingRepository) ListByBill(ctx context.Context, billID uuid.UUID) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Preload("Court").
		Preload("User").
		Where("bill_id = ?", billID).
		Order("starts_at ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *GormBookingRepository) ListByCourtIntersecting(ctx context.Context, courtID uuid.UUID, from, to time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	// Полуоткрытое правило пересечения: starts_at < to AND ends_at > from.
	err := r.db.WithContext(ctx).
		Where("court_id = ?", courtID).
		Where("starts_at < ? AND ends_at > ?", to, from).
		Order("starts_at ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *GormBookingRepository) ListEndingWithin(ctx context.Context, from, to time.Time) ([]model.Booking, error) {
	var bookings []model.Booking
	err := r.db.WithContext(ctx).
		Preload("Court").
		Preload("User").
		Where("ends_at >= ? AND ends_at < ?", from, to).
		Order("starts_at ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *GormBookingRepository) Mutate(ctx context.Context, id uuid.UUID, fn func(*model.Booking) error) (*model.Booking, error) {
	var b model.Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&b, "id = ?", id).Error; err != nil {
			return err
		}
		if err := fn(&b); err != nil {
			return err
		}
		return tx.Save(&b).Error
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

func (r *GormBookingRepository) DeleteByID(ctx context.Context, id uuid.UUID) (int64, error) {
	tx := r.db.WithContext(ctx).Delete(&model.Booking{}, "id = ?", id)
	return tx.RowsAffected, tx.Error
}

func (r *GormBookingRepository) DeleteByBill(ctx context.Context, billID uuid.UUID) (int64, error) {
	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Booking{}, "bill_id = ?", billID)
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return tx.Delete(&model.Bill{}, "id = ?", billID).Error
	})
	return removed, err
}
