package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/courtside-dev/stadium-booking/internal/model"
	"github.com/courtside-dev/stadium-booking/internal/repository"
)

// Identity — результат проверки токена: кто вызывает и с какой позицией.
type Identity struct {
	UserID   uuid.UUID
	Position model.Position
}

func (id Identity) IsAdmin() bool {
	return id.Position == model.PositionAdmin
}

type tokenClaims struct {
	Position string `json:"position"`
	jwt.RegisteredClaims
}

// IdentityService реализует регистрацию, вход и проверку прав.
// Ядро бронирования само проверок не делает: транспорт получает Identity
// отсюда и передаёт дальше.
type IdentityService struct {
	users  repository.UserRepository
	secret []byte
	ttl    time.Duration
}

func NewIdentityService(users repository.UserRepository, secret []byte, ttl time.Duration) *IdentityService {
	return &IdentityService{users: users, secret: secret, ttl: ttl}
}

// Register создаёт пользователя с bcrypt-хэшем пароля.
func (s *IdentityService) Register(ctx context.Context, email, password, displayName string, position model.Position) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Position:     position,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login проверяет пару email/пароль и выдаёт подписанный токен.
func (s *IdentityService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	claims := tokenClaims{
		Position: string(u.Position),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, u, nil
}

// ParseToken валидирует токен и возвращает Identity вызывающего.
func (s *IdentityService) ParseToken(tokenStr string) (Identity, error) {
	var claims tokenClaims
	t, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !t.Valid {
		return Identity{}, ErrInvalidCredentials
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{UserID: userID, Position: model.Position(claims.Position)}, nil
}

// CheckAdmin пропускает только администратора.
func (s *IdentityService) CheckAdmin(id Identity) error {
	if !id.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// CheckOwner пропускает владельца брони либо администратора.
func (s *IdentityService) CheckOwner(id Identity, b *model.Booking) error {
	if id.IsAdmin() || b.UserID == id.UserID {
		return nil
	}
	return ErrForbidden
}
