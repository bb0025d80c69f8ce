package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/courtside-dev/stadium-booking/internal/interval"
	"github.com/courtside-dev/stadium-booking/internal/model"
	"github.com/courtside-dev/stadium-booking/internal/repository"
)

// EventPublisher публикует доменные события брони (booking.created и т.п.).
// Реализация на RabbitMQ живёт в internal/mq; nil отключает публикацию.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// BookingInput — кандидат на бронь.
type BookingInput struct {
	CourtID  uuid.UUID
	UserID   uuid.UUID
	StartsAt time.Time
	EndsAt   time.Time
}

// BookingUpdate — частичное обновление брони (исправление интервала или корта).
// Статус и слип этим путём не меняются: для них есть MarkPaid и Approve.
type BookingUpdate struct {
	CourtID  *uuid.UUID
	StartsAt *time.Time
	EndsAt   *time.Time
}

// BookingService владеет жизненным циклом брони: допуск (одиночный и
// пакетный), переходы статуса, выборки и удаление. Допуск — атомарная
// единица «валидация → проверка пересечений → вставка», сериализованная
// по корту; переходы статуса сериализуются по ID брони, иначе две
// конкурентные оплаты могут обе увидеть PENDING и обе записать PAID.
type BookingService struct {
	bookings repository.BookingRepository
	pub      EventPublisher

	courtLocks  *keyedLocks
	statusLocks *keyedLocks
	now         func() time.Time
}

func NewBookingService(bookings repository.BookingRepository, pub EventPublisher) *BookingService {
	return &BookingService{
		bookings:    bookings,
		pub:         pub,
		courtLocks:  newKeyedLocks(),
		statusLocks: newKeyedLocks(),
		now:         time.Now,
	}
}

// Overlaps сообщает, пересекается ли кандидат [start, end) с какой-либо
// существующей бронью корта. Касание границами пересечением не считается.
func (s *BookingService) Overlaps(ctx context.Context, courtID uuid.UUID, start, end time.Time) (bool, error) {
	tr, err := interval.NewTimeRange(start, end)
	if err != nil {
		return false, err
	}
	existing, err := s.courtRanges(ctx, courtID, tr, uuid.Nil)
	if err != nil {
		return false, err
	}
	return interval.HasConflict(tr, existing), nil
}

// Create валидирует интервал, проверяет пересечения по корту и создаёт
// бронь в статусе PENDING. Возвращает сохранённую бронь с назначенным ID.
func (s *BookingService) Create(ctx context.Context, in BookingInput) (*model.Booking, error) {
	tr, err := interval.NewTimeRange(in.StartsAt, in.EndsAt)
	if err != nil {
		return nil, err
	}

	unlock := s.courtLocks.Lock(in.CourtID)
	defer unlock()

	if err := s.ensureFree(ctx, in.CourtID, tr, uuid.Nil, nil); err != nil {
		return nil, err
	}

	b := &model.Booking{
		CourtID:  in.CourtID,
		UserID:   in.UserID,
		StartsAt: tr.Start,
		EndsAt:   tr.End,
		Status:   model.BookingStatusPending,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.publish(ctx, "booking.created", bookingEvent(b))
	return b, nil
}

// CreateBatch — пакетный допуск одного оформления. Все кандидаты получают
// общий счёт и принадлежат ownerID. Каждый кандидат проверяется против
// сохранённого состояния и уже принятых соседей по пакету; при любом отказе
// пакет не сохраняется целиком, ошибка называет индекс кандидата.
func (s *BookingService) CreateBatch(ctx context.Context, ownerID uuid.UUID, ins []BookingInput) ([]*model.Booking, error) {
	for i := range ins {
		ins[i].UserID = ownerID
	}
	return s.admitBatch(ctx, ownerID, ins)
}

// CreateBatchAdmin — привилегированный вариант: кандидаты могут указывать
// произвольных пользователей, счёт принадлежит администратору adminID.
func (s *BookingService) CreateBatchAdmin(ctx context.Context, adminID uuid.UUID, ins []BookingInput) ([]*model.Booking, error) {
	return s.admitBatch(ctx, adminID, ins)
}

func (s *BookingService) admitBatch(ctx context.Context, billOwner uuid.UUID, ins []BookingInput) ([]*model.Booking, error) {
	if len(ins) == 0 {
		return nil, nil
	}

	// Сначала валидация всех интервалов: при ошибке не трогаем хранилище.
	trs := make([]interval.TimeRange, len(ins))
	for i, in := range ins {
		tr, err := interval.NewTimeRange(in.StartsAt, in.EndsAt)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		trs[i] = tr
	}

	courtIDs := make([]uuid.UUID, len(ins))
	for i, in := range ins {
		courtIDs[i] = in.CourtID
	}
	unlock := s.courtLocks.Lock(courtIDs...)
	defer unlock()

	bill := &model.Bill{ID: uuid.New(), UserID: billOwner}
	bookings := make([]*model.Booking, len(ins))
	accepted := make(map[uuid.UUID][]interval.TimeRange)

	for i, in := range ins {
		if err := s.ensureFree(ctx, in.CourtID, trs[i], uuid.Nil, accepted[in.CourtID]); err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		accepted[in.CourtID] = append(accepted[in.CourtID], trs[i])
		bookings[i] = &model.Booking{
			CourtID:  in.CourtID,
			UserID:   in.UserID,
			StartsAt: trs[i].Start,
			EndsAt:   trs[i].End,
			Status:   model.BookingStatusPending,
			BillID:   &bill.ID,
		}
	}

	if err := s.bookings.CreateAll(ctx, bill, bookings); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}

	for _, b := range bookings {
		s.publish(ctx, "booking.created", bookingEvent(b))
	}
	return bookings, nil
}

// ensureFree проверяет кандидата против сохранённых броней корта (кроме
// excludeID) и против уже принятых соседей siblings.
func (s *BookingService) ensureFree(ctx context.Context, courtID uuid.UUID, tr interval.TimeRange, excludeID uuid.UUID, siblings []interval.TimeRange) error {
	existing, err := s.courtRanges(ctx, courtID, tr, excludeID)
	if err != nil {
		return err
	}
	if interval.HasConflict(tr, existing) || interval.HasConflict(tr, siblings) {
		return fmt.Errorf("court %s: %w", courtID, ErrConflict)
	}
	return nil
}

func (s *BookingService) courtRanges(ctx context.Context, courtID uuid.UUID, tr interval.TimeRange, excludeID uuid.UUID) ([]interval.TimeRange, error) {
	rows, err := s.bookings.ListByCourtIntersecting(ctx, courtID, tr.Start, tr.End)
	if err != nil {
		return nil, fmt.Errorf("list court bookings: %w", err)
	}
	ranges := make([]interval.TimeRange, 0, len(rows))
	for _, b := range rows {
		if excludeID != uuid.Nil && b.ID == excludeID {
			continue
		}
		ranges = append(ranges, interval.TimeRange{Start: b.StartsAt, End: b.EndsAt})
	}
	return ranges, nil
}

func (s *BookingService) FindAll(ctx context.Context) ([]model.Booking, error) {
	bookings, err := s.bookings.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) FindByCourt(ctx context.Context, courtID uuid.UUID) ([]model.Booking, error) {
	bookings, err := s.bookings.ListByCourt(ctx, courtID)
	if err != nil {
		return nil, fmt.Errorf("list court bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) FindByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, orNotFound("get booking", err)
	}
	return b, nil
}

func (s *BookingService) FindByUser(ctx context.Context, userID uuid.UUID) ([]model.Booking, error) {
	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) FindByBill(ctx context.Context, billID uuid.UUID) ([]model.Booking, error) {
	bookings, err := s.bookings.ListByBill(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("list bill bookings: %w", err)
	}
	return bookings, nil
}

// FindCurrentWeek возвращает брони, у которых EndsAt попадает в окно
// [полночь сегодня, полночь + 7 суток), по возрастанию StartsAt.
// Бронь, заканчивающаяся ровно на правой границе, не входит.
func (s *BookingService) FindCurrentWeek(ctx context.Context) ([]model.Booking, error) {
	w := interval.WeekWindow(s.now())
	bookings, err := s.bookings.ListEndingWithin(ctx, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("list current week: %w", err)
	}
	return bookings, nil
}

// MarkPaid прикрепляет ссылку на слип и переводит бронь PENDING → PAID.
// Повторная оплата отклоняется (ErrInvalidTransition). Мьютекс брони
// линеаризует read-modify-write: из двух конкурентных оплат проходит
// ровно одна, вторая видит уже записанный PAID.
func (s *BookingService) MarkPaid(ctx context.Context, id uuid.UUID, slipRef string) (*model.Booking, error) {
	unlock := s.statusLocks.Lock(id)
	defer unlock()

	b, err := s.bookings.Mutate(ctx, id, func(b *model.Booking) error {
		if !b.Status.CanTransition(model.BookingStatusPaid) {
			return fmt.Errorf("%s -> PAID: %w", b.Status, ErrInvalidTransition)
		}
		b.Status = model.BookingStatusPaid
		b.Slip = slipRef
		return nil
	})
	if err != nil {
		return nil, orNotFound("mark paid", err)
	}
	s.publish(ctx, "booking.paid", bookingEvent(b))
	return b, nil
}

// Approve переводит бронь в APPROVED либо UNAPPROVED. Решение можно
// пересматривать; повторное применение того же решения — не ошибка.
func (s *BookingService) Approve(ctx context.Context, id uuid.UUID, approve bool) (*model.Booking, error) {
	target := model.BookingStatusUnapproved
	if approve {
		target = model.BookingStatusApproved
	}

	unlock := s.statusLocks.Lock(id)
	defer unlock()

	b, err := s.bookings.Mutate(ctx, id, func(b *model.Booking) error {
		if !b.Status.CanTransition(target) {
			return fmt.Errorf("%s -> %s: %w", b.Status, target, ErrInvalidTransition)
		}
		b.Status = target
		return nil
	})
	if err != nil {
		return nil, orNotFound("approve", err)
	}
	s.publish(ctx, "booking.approved", map[string]any{
		"booking_id": b.ID.String(),
		"approved":   approve,
	})
	return b, nil
}

// Update исправляет корт и/или интервал брони. Пересечения проверяются
// заново (собственный интервал брони исключается) — инвариант
// непересечения сохраняется и при обновлении.
func (s *BookingService) Update(ctx context.Context, id uuid.UUID, upd BookingUpdate) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, orNotFound("get booking", err)
	}

	if upd.CourtID != nil {
		b.CourtID = *upd.CourtID
	}
	if upd.StartsAt != nil {
		b.StartsAt = *upd.StartsAt
	}
	if upd.EndsAt != nil {
		b.EndsAt = *upd.EndsAt
	}

	tr, err := interval.NewTimeRange(b.StartsAt, b.EndsAt)
	if err != nil {
		return nil, err
	}

	unlock := s.courtLocks.Lock(b.CourtID)
	defer unlock()

	if err := s.ensureFree(ctx, b.CourtID, tr, b.ID, nil); err != nil {
		return nil, err
	}

	b.Court = nil
	b.User = nil
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	return b, nil
}

func (s *BookingService) DeleteByID(ctx context.Context, id uuid.UUID) error {
	rows, err := s.bookings.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	s.publish(ctx, "booking.deleted", map[string]any{"booking_id": id.String()})
	return nil
}

// DeleteByBill удаляет все брони счёта и сам счёт. Если броней нет —
// ErrNotFound; брони других счетов не затрагиваются.
func (s *BookingService) DeleteByBill(ctx context.Context, billID uuid.UUID) error {
	rows, err := s.bookings.DeleteByBill(ctx, billID)
	if err != nil {
		return fmt.Errorf("delete bill bookings: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	s.publish(ctx, "booking.deleted", map[string]any{"bill_id": billID.String()})
	return nil
}

func (s *BookingService) publish(ctx context.Context, key string, v any) {
	if s.pub == nil {
		return
	}
	_ = s.pub.PublishJSON(ctx, key, v)
}

func bookingEvent(b *model.Booking) map[string]any {
	return map[string]any{
		"booking_id": b.ID.String(),
		"court_id":   b.CourtID.String(),
		"user_id":    b.UserID.String(),
		"starts_at":  b.StartsAt.Unix(),
		"ends_at":    b.EndsAt.Unix(),
		"status":     string(b.Status),
	}
}

func orNotFound(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, ErrInvalidTransition) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
