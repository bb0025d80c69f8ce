package rest

import (
	"time"

	"github.com/google/uuid"

	"github.com/courtside-dev/stadium-booking/internal/model"
)

type bookingBody struct {
	CourtID  uuid.UUID  `json:"court_id" binding:"required"`
	UserID   *uuid.UUID `json:"user_id"` // только для админского оформления
	StartsAt time.Time  `json:"starts_at" binding:"required"`
	EndsAt   time.Time  `json:"ends_at" binding:"required"`
}

type updateBookingBody struct {
	CourtID  *uuid.UUID `json:"court_id"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

type approveBody struct {
	Approve *bool `json:"approve" binding:"required"`
}

type registerBody struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"display_name"`
}

type loginBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type stadiumBody struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Facilities  map[string]any `json:"facilities"`
}

type courtBody struct {
	Name string `json:"name" binding:"required"`
}

type bookingResponse struct {
	ID       uuid.UUID  `json:"id"`
	CourtID  uuid.UUID  `json:"court_id"`
	UserID   uuid.UUID  `json:"user_id"`
	StartsAt time.Time  `json:"starts_at"`
	EndsAt   time.Time  `json:"ends_at"`
	Status   string     `json:"status"`
	BillID   *uuid.UUID `json:"bill_id,omitempty"`
	Slip     string     `json:"slip,omitempty"`

	CourtName string `json:"court_name,omitempty"`
	UserName  string `json:"user_name,omitempty"`
}

func newBookingResponse(b *model.Booking) bookingResponse {
	resp := bookingResponse{
		ID:       b.ID,
		CourtID:  b.CourtID,
		UserID:   b.UserID,
		StartsAt: b.StartsAt,
		EndsAt:   b.EndsAt,
		Status:   string(b.Status),
		BillID:   b.BillID,
		Slip:     b.Slip,
	}
	if b.Court != nil {
		resp.CourtName = b.Court.Name
	}
	if b.User != nil {
		resp.UserName = b.User.DisplayName
	}
	return resp
}

func newBookingResponses(bookings []model.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, newBookingResponse(&bookings[i]))
	}
	return out
}
