package service

import "errors"

// Ошибки ядра бронирования. Все три — ошибки вызывающей стороны,
// они возвращаются синхронно и не являются сбоем системы.
// Ошибки хранилища пробрасываются как есть, обёрнутые через %w.
var (
	// Операция адресует несуществующую бронь или счёт.
	ErrNotFound = errors.New("booking not found")
	// Кандидат пересекается с существующей бронью или с соседом по пакету.
	ErrConflict = errors.New("overlapping booking")
	// Недопустимый переход статуса (например, повторная оплата).
	ErrInvalidTransition = errors.New("invalid status transition")
	// Недостаточно прав на операцию.
	ErrForbidden = errors.New("forbidden")
	// Неверная пара email/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
