package http

import (
	"time"

	"github.com/nekogravitycat/item-sharing-backend/internal/booking"
	itemHttp "github.com/nekogravitycat/item-sharing-backend/internal/item/http"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/request"
	userHttp "github.com/nekogravitycat/item-sharing-backend/internal/user/http"
)

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	State string `form:"state"`
}

type BookingResponse struct {
	ID        string           `json:"id"`
	Item      itemHttp.ItemTag `json:"item"`
	Booker    userHttp.UserTag `json:"booker"`
	StartTime time.Time        `json:"start"`
	EndTime   time.Time        `json:"end"`
	Status    string           `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:        b.ID,
		Item:      itemHttp.ItemTag{ID: b.ItemID, Name: b.ItemName},
		Booker:    userHttp.UserTag{ID: b.BookerID, Name: b.BookerName},
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

type CreateBookingRequest struct {
	ItemID    string    `json:"item_id" binding:"required,uuid"`
	StartTime time.Time `json:"start" binding:"required"`
	EndTime   time.Time `json:"end" binding:"required"`
}

// UpdateStatusRequest carries the owner's decision from the query string.
type UpdateStatusRequest struct {
	Approved *bool `form:"approved" binding:"required"`
}
