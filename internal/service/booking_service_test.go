package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/courtside-dev/stadium-booking/internal/interval"
	"github.com/courtside-dev/stadium-booking/internal/model"
	"github.com/courtside-dev/stadium-booking/internal/repository"
)

// testNow — «сегодня» для всех тестов недельного окна.
var testNow = time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql DB: %v", err)
	}
	// одно соединение: отдельные коннекты к :memory: видят разные базы
	sqlDB.SetMaxOpenConns(1)

	// Minimal schema for the query/update logic (sqlite-friendly).
	schema := []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			display_name TEXT,
			position TEXT NOT NULL,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE stadia (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			facilities TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE courts (
			id TEXT PRIMARY KEY,
			stadium_id TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE bills (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			created_at DATETIME
		);`,
		`CREATE TABLE bookings (
			id TEXT PRIMARY KEY,
			court_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			starts_at DATETIME NOT NULL,
			ends_at DATETIME NOT NULL,
			status TEXT NOT NULL,
			bill_id TEXT,
			slip TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func newTestService(t *testing.T) (*BookingService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewBookingService(repository.NewGormBookingRepository(db), nil)
	svc.now = func() time.Time { return testNow }
	return svc, db
}

func at(t *testing.T, day, hour, min int) time.Time {
	t.Helper()
	return time.Date(2024, 3, day, hour, min, 0, 0, time.UTC)
}

func countBookings(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&model.Booking{}).Count(&n).Error; err != nil {
		t.Fatalf("count bookings: %v", err)
	}
	return n
}

//
// Одиночный допуск
//

func TestCreate_AssignsIDAndPending(t *testing.T) {
	svc, _ := newTestService(t)
	courtID, userID := uuid.New(), uuid.New()

	b, err := svc.Create(context.Background(), BookingInput{
		CourtID:  courtID,
		UserID:   userID,
		StartsAt: at(t, 4, 10, 0),
		EndsAt:   at(t, 4, 11, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.ID == uuid.Nil {
		t.Fatalf("expected assigned id")
	}
	if b.Status != model.BookingStatusPending {
		t.Fatalf("expected PENDING, got %s", b.Status)
	}
	if b.CourtID != courtID || b.UserID != userID {
		t.Fatalf("expected court/user to be preserved, got %+v", b)
	}
}

func TestCreate_InvalidInterval(t *testing.T) {
	svc, db := newTestService(t)

	// start == end
	_, err := svc.Create(context.Background(), BookingInput{
		CourtID:  uuid.New(),
		UserID:   uuid.New(),
		StartsAt: at(t, 4, 10, 0),
		EndsAt:   at(t, 4, 10, 0),
	})
	if !errors.Is(err, interval.ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}

	// start > end
	_, err = svc.Create(context.Background(), BookingInput{
		CourtID:  uuid.New(),
		UserID:   uuid.New(),
		StartsAt: at(t, 4, 11, 0),
		EndsAt:   at(t, 4, 10, 0),
	})
	if !errors.Is(err, interval.ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}

	if n := countBookings(t, db); n != 0 {
		t.Fatalf("expected no writes on validation failure, got %d rows", n)
	}
}

func TestCreate_Conflict(t *testing.T) {
	svc, db := newTestService(t)
	courtID := uuid.New()

	if _, err := svc.Create(context.Background(), BookingInput{
		CourtID: courtID, UserID: uuid.New(),
		StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0),
	}); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err := svc.Create(context.Background(), BookingInput{
		CourtID: courtID, UserID: uuid.New(),
		StartsAt: at(t, 4, 10, 30), EndsAt: at(t, 4, 11, 30),
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	if n := countBookings(t, db); n != 1 {
		t.Fatalf("expected 1 booking, got %d", n)
	}
}

func TestCreate_AdjacentAllowed(t *testing.T) {
	svc, _ := newTestService(t)
	courtID := uuid.New()

	if _, err := svc.Create(context.Background(), BookingInput{
		CourtID: courtID, UserID: uuid.New(),
		StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0),
	}); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := svc.Create(context.Background(), BookingInput{
		CourtID: courtID, UserID: uuid.New(),
		StartsAt: at(t, 4, 11, 0), EndsAt: at(t, 4, 12, 0),
	}); err != nil {
		t.Fatalf("adjacent booking must be admitted, got %v", err)
	}
}

func TestCreate_SameWindowOtherCourt(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Create(context.Background(), BookingInput{
		CourtID: uuid.New(), UserID: uuid.New(),
		StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0),
	}); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := svc.Create(context.Background(), BookingInput{
		CourtID: uuid.New(), UserID: uuid.New(),
		StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0),
	}); err != nil {
		t.Fatalf("same window on another court must be admitted, got %v", err)
	}
}

func TestOverlaps(t *testing.T) {
	svc, _ := newTestService(t)
	courtID := uuid.New()

	if _, err := svc.Create(context.Background(), BookingInput{
		CourtID: courtID, UserID: uuid.New(),
		StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0),
	}); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	got, err := svc.Overlaps(context.Background(), courtID, at(t, 4, 10, 30), at(t, 4, 11, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Fatalf("expected overlap")
	}

	got, err = svc.Overlaps(context.Background(), courtID, at(t, 4, 11, 0), at(t, 4, 12, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Fatalf("adjacency must not count as overlap")
	}
}

//
// Пакетный допуск
//

func TestCreateBatch_SharedBill(t *testing.T) {
	svc, _ := newTestService(t)
	ownerID := uuid.New()
	courtA, courtB := uuid.New(), uuid.New()

	bookings, err := svc.CreateBatch(context.Background(), ownerID, []BookingInput{
		{CourtID: courtA, StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0)},
		{CourtID: courtB, StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookings) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(bookings))
	}
	if bookings[0].BillID == nil || bookings[1].BillID == nil || *bookings[0].BillID != *bookings[1].BillID {
		t.Fatalf("expected shared bill id, got %+v / %+v", bookings[0].BillID, bookings[1].BillID)
	}
	for _, b := range bookings {
		if b.UserID != ownerID {
			t.Fatalf("batch bookings must belong to the owner, got %s", b.UserID)
		}
	}

	found, err := svc.FindByBill(context.Background(), *bookings[0].BillID)
	if err != nil {
		t.Fatalf("find by bill: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 bookings in bill, got %d", len(found))
	}
}

func TestCreateBatch_SiblingConflictRollsBack(t *testing.T) {
	svc, db := newTestService(t)
	courtID := uuid.New()

	_, err := svc.CreateBatch(context.Background(), uuid.New(), []BookingInput{
		{CourtID: courtID, StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0)},
		{CourtID: courtID, StartsAt: at(t, 4, 10, 30), EndsAt: at(t, 4, 11, 30)},
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	if n := countBookings(t, db); n != 0 {
		t.Fatalf("expected no bookings persisted from a failed batch, got %d", n)
	}
	var bills int64
	if err := db.Model(&model.Bill{}).Count(&bills).Error; err != nil {
		t.Fatalf("count bills: %v", err)
	}
	if bills != 0 {
		t.Fatalf("expected no bill persisted from a failed batch, got %d", bills)
	}
}

func TestCreateBatch_PersistedConflictNamesCandidate(t *testing.T) {
	svc, db := newTestService(t)
	courtID := uuid.New()

	if _, err := svc.Create(context.Background(), BookingInput{
		CourtID: courtID, UserID: uuid.New(),
		StartsAt: at(t, 4, 13, 0), EndsAt: at(t, 4, 14, 0),
	}); err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	_, err := svc.CreateBatch(context.Background(), uuid.New(), []BookingInput{
		{CourtID: courtID, StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0)},
		{CourtID: courtID, StartsAt: at(t, 4, 13, 30), EndsAt: at(t, 4, 14, 30)},
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if n := countBookings(t, db); n != 1 {
		t.Fatalf("expected only the seed booking, got %d", n)
	}
}

func TestCreateBatch_InvalidCandidateWritesNothing(t *testing.T) {
	svc, db := newTestService(t)

	_, err := svc.CreateBatch(context.Background(), uuid.New(), []BookingInput{
		{CourtID: uuid.New(), StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0)},
		{CourtID: uuid.New(), StartsAt: at(t, 4, 12, 0), EndsAt: at(t, 4, 12, 0)},
	})
	if !errors.Is(err, interval.ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
	if n := countBookings(t, db); n != 0 {
		t.Fatalf("expected no writes, got %d", n)
	}
}

func TestCreateBatchAdmin_KeepsTargetUsers(t *testing.T) {
	svc, _ := newTestService(t)
	adminID := uuid.New()
	alice, bob := uuid.New(), uuid.New()

	bookings, err := svc.CreateBatchAdmin(context.Background(), adminID, []BookingInput{
		{CourtID: uuid.New(), UserID: alice, StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0)},
		{CourtID: uuid.New(), UserID: bob, StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bookings[0].UserID != alice || bookings[1].UserID != bob {
		t.Fatalf("admin batch must keep target users, got %s / %s", bookings[0].UserID, bookings[1].UserID)
	}
}

//
// Выборки
//

func TestFindCurrentWeek_WindowAndOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	courtID := uuid.New()

	// попадает в окно, позднее начало
	late, err := svc.Create(ctx, BookingInput{
		CourtID: courtID, UserID: uuid.New(),
		StartsAt: at(t, 6, 10, 0), EndsAt: at(t, 6, 11, 0),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	// попадает в окно, раннее начало
	early, err := svc.Create(ctx, BookingInput{
		CourtID: courtID, UserID: uuid.New(),
		StartsAt: at(t, 4, 8, 0), EndsAt: at(t, 4, 9, 0),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	// заканчивается до окна (вчера)
	if _, err := svc.Create(ctx, BookingInput{
		CourtID: courtID, UserID: uuid.New(),
		StartsAt: at(t, 3, 10, 0), EndsAt: at(t, 3, 11, 0),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// заканчивается ровно на правой границе окна — исключается
	if _, err := svc.Create(ctx, BookingInput{
		CourtID: courtID, UserID: uuid.New(),
		StartsAt: at(t, 10, 23, 0), EndsAt: at(t, 11, 0, 0),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := svc.FindCurrentWeek(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 bookings in window, got %d", len(got))
	}
	if got[0].ID != early.ID || got[1].ID != late.ID {
		t.Fatalf("expected ascending by StartsAt: %v then %v, got %v then %v",
			early.ID, late.ID, got[0].ID, got[1].ID)
	}
}

func TestFindByCourtAndBill_IncludeDetails(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	stadium := model.Stadium{ID: uuid.New(), Name: "Main Arena"}
	court := model.Court{ID: uuid.New(), StadiumID: stadium.ID, Name: "Court 1"}
	user := model.User{
		ID:           uuid.New(),
		Email:        "somchai@example.com",
		PasswordHash: "x",
		DisplayName:  "Somchai",
		Position:     model.PositionUser,
	}
	for _, row := range []any{&stadium, &court, &user} {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed row: %v", err)
		}
	}

	batch, err := svc.CreateBatchAdmin(ctx, user.ID, []BookingInput{
		{CourtID: court.ID, UserID: user.ID, StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0)},
	})
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	byCourt, err := svc.FindByCourt(ctx, court.ID)
	if err != nil {
		t.Fatalf("find by court: %v", err)
	}
	if len(byCourt) != 1 || byCourt[0].Court == nil || byCourt[0].Court.Name != "Court 1" {
		t.Fatalf("expected court detail on court listing, got %+v", byCourt)
	}
	if byCourt[0].User == nil || byCourt[0].User.DisplayName != "Somchai" {
		t.Fatalf("expected user detail on court listing, got %+v", byCourt[0].User)
	}

	byBill, err := svc.FindByBill(ctx, *batch[0].BillID)
	if err != nil {
		t.Fatalf("find by bill: %v", err)
	}
	if len(byBill) != 1 || byBill[0].Court == nil || byBill[0].User == nil {
		t.Fatalf("expected court and user detail on bill listing, got %+v", byBill)
	}
}

func TestFindByID_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.FindByID(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindByUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.Create(ctx, BookingInput{
		CourtID: uuid.New(), UserID: userID,
		StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Create(ctx, BookingInput{
		CourtID: uuid.New(), UserID: uuid.New(),
		StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := svc.FindByUser(ctx, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].UserID != userID {
		t.Fatalf("expected exactly the user's booking, got %+v", got)
	}
}

//
// Переходы статуса
//

func TestMarkPaid_SetsSlipAndStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, BookingInput{
		CourtID: uuid.New(), UserID: uuid.New(),
		StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	paid, err := svc.MarkPaid(ctx, b.ID, "slips/2024/abc.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paid.Status != model.BookingStatusPaid {
		t.Fatalf("expected PAID, got %s", paid.Status)
	}
	if paid.Slip != "slips/2024/abc.jpg" {
		t.Fatalf("expected slip reference, got %q", paid.Slip)
	}
}

func TestMarkPaid_TwiceRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, BookingInput{
		CourtID: uuid.New(), UserID: uuid.New(),
		StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.MarkPaid(ctx, b.ID, "first.jpg"); err != nil {
		t.Fatalf("first payment: %v", err)
	}

	_, err = svc.MarkPaid(ctx, b.ID, "second.jpg")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	cur, err := svc.FindByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if cur.Slip != "first.jpg" {
		t.Fatalf("second payment must not replace the slip, got %q", cur.Slip)
	}
}

func TestMarkPaid_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.MarkPaid(context.Background(), uuid.New(), "x.jpg")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApprove_ToggleAndIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, BookingInput{
		CourtID: uuid.New(), UserID: uuid.New(),
		StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.MarkPaid(ctx, b.ID, "slip.jpg"); err != nil {
		t.Fatalf("pay: %v", err)
	}

	got, err := svc.Approve(ctx, b.ID, true)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Status != model.BookingStatusApproved {
		t.Fatalf("expected APPROVED, got %s", got.Status)
	}

	got, err = svc.Approve(ctx, b.ID, false)
	if err != nil {
		t.Fatalf("re-decide: %v", err)
	}
	if got.Status != model.BookingStatusUnapproved {
		t.Fatalf("expected UNAPPROVED after re-decision, got %s", got.Status)
	}

	// повторное то же решение — не ошибка
	got, err = svc.Approve(ctx, b.ID, false)
	if err != nil {
		t.Fatalf("idempotent re-apply: %v", err)
	}
	if got.Status != model.BookingStatusUnapproved {
		t.Fatalf("expected UNAPPROVED, got %s", got.Status)
	}
}

func TestApprove_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Approve(context.Background(), uuid.New(), true)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPaidAfterApproveRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, BookingInput{
		CourtID: uuid.New(), UserID: uuid.New(),
		StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Approve(ctx, b.ID, true); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// оплата поверх APPROVED молча снимала бы решение — отклоняется
	_, err = svc.MarkPaid(ctx, b.ID, "slip.jpg")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

//
// Обновление
//

func TestUpdate_RevalidatesOverlap(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	courtID := uuid.New()

	if _, err := svc.Create(ctx, BookingInput{
		CourtID: courtID, UserID: uuid.New(),
		StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0),
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	b, err := svc.Create(ctx, BookingInput{
		CourtID: courtID, UserID: uuid.New(),
		StartsAt: at(t, 4, 14, 0), EndsAt: at(t, 4, 15, 0),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	newStart, newEnd := at(t, 4, 10, 30), at(t, 4, 11, 30)
	_, err = svc.Update(ctx, b.ID, BookingUpdate{StartsAt: &newStart, EndsAt: &newEnd})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on update into occupied window, got %v", err)
	}
}

func TestUpdate_MoveWithinOwnWindow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	courtID := uuid.New()

	b, err := svc.Create(ctx, BookingInput{
		CourtID: courtID, UserID: uuid.New(),
		StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	// сдвиг в пределах собственного интервала: конфликт с самим собой не считается
	newStart := at(t, 4, 10, 30)
	got, err := svc.Update(ctx, b.ID, BookingUpdate{StartsAt: &newStart})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.StartsAt.Equal(newStart) {
		t.Fatalf("expected StartsAt %v, got %v", newStart, got.StartsAt)
	}
}

func TestUpdate_InvalidInterval(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, BookingInput{
		CourtID: uuid.New(), UserID: uuid.New(),
		StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	badEnd := at(t, 4, 9, 0)
	_, err = svc.Update(ctx, b.ID, BookingUpdate{EndsAt: &badEnd})
	if !errors.Is(err, interval.ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
}

//
// Удаление
//

func TestDeleteByID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, BookingInput{
		CourtID: uuid.New(), UserID: uuid.New(),
		StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.DeleteByID(ctx, b.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.DeleteByID(ctx, b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeat delete, got %v", err)
	}
}

func TestDeleteByBill_RemovesGroupOnly(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	batch, err := svc.CreateBatch(ctx, uuid.New(), []BookingInput{
		{CourtID: uuid.New(), StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0)},
		{CourtID: uuid.New(), StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0)},
	})
	if err != nil {
		t.Fatalf("seed batch: %v", err)
	}
	other, err := svc.Create(ctx, BookingInput{
		CourtID: uuid.New(), UserID: uuid.New(),
		StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0),
	})
	if err != nil {
		t.Fatalf("seed other: %v", err)
	}

	billID := *batch[0].BillID
	if err := svc.DeleteByBill(ctx, billID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := countBookings(t, db); n != 1 {
		t.Fatalf("expected only the unrelated booking to survive, got %d", n)
	}
	if _, err := svc.FindByID(ctx, other.ID); err != nil {
		t.Fatalf("unrelated booking must survive: %v", err)
	}

	if err := svc.DeleteByBill(ctx, billID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeat delete, got %v", err)
	}
}

//
// Конкурентный допуск
//

func TestConcurrentAdmission_SingleWinner(t *testing.T) {
	svc, db := newTestService(t)
	courtID := uuid.New()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), BookingInput{
				CourtID: courtID, UserID: uuid.New(),
				StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0),
			})
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrConflict):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 || lost != workers-1 {
		t.Fatalf("expected exactly one admission, got %d wins / %d conflicts", won, lost)
	}
	if n := countBookings(t, db); n != 1 {
		t.Fatalf("non-overlap invariant violated: %d rows", n)
	}
}

func TestConcurrentMarkPaid_SingleWinner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, BookingInput{
		CourtID: uuid.New(), UserID: uuid.New(),
		StartsAt: at(t, 4, 10, 0), EndsAt: at(t, 4, 11, 0),
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.MarkPaid(ctx, b.ID, fmt.Sprintf("slip-%d.jpg", i))
		}(i)
	}
	wg.Wait()

	winner := -1
	var lost int
	for i, err := range errs {
		switch {
		case err == nil:
			if winner != -1 {
				t.Fatalf("PAID must be set exactly once, workers %d and %d both won", winner, i)
			}
			winner = i
		case errors.Is(err, ErrInvalidTransition):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if winner == -1 || lost != workers-1 {
		t.Fatalf("expected exactly one payment, got winner=%d / %d rejections", winner, lost)
	}

	cur, err := svc.FindByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if cur.Status != model.BookingStatusPaid {
		t.Fatalf("expected PAID, got %s", cur.Status)
	}
	if want := fmt.Sprintf("slip-%d.jpg", winner); cur.Slip != want {
		t.Fatalf("losing payment must not overwrite the slip: expected %q, got %q", want, cur.Slip)
	}
}
