package http

import (
	"time"

	"github.com/nekogravitycat/item-sharing-backend/internal/booking"
	commentHttp "github.com/nekogravitycat/item-sharing-backend/internal/comment/http"
	"github.com/nekogravitycat/item-sharing-backend/internal/item"
	"github.com/nekogravitycat/item-sharing-backend/internal/photo"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/request"
)

// ItemTag is a brief representation of an item used inside other resources.
type ItemTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BookingShort is the last or next booking shown to an item's owner.
type BookingShort struct {
	ID        string    `json:"id"`
	BookerID  string    `json:"booker_id"`
	StartTime time.Time `json:"start"`
	EndTime   time.Time `json:"end"`
}

func newBookingShort(b *booking.Booking) *BookingShort {
	if b == nil {
		return nil
	}
	return &BookingShort{
		ID:        b.ID,
		BookerID:  b.BookerID,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
	}
}

type ItemResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Available   bool      `json:"available"`
	PhotoURL    *string   `json:"photo_url"`
	RequestID   *string   `json:"request_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewItemResponse(it *item.Item) ItemResponse {
	resp := ItemResponse{
		ID:          it.ID,
		OwnerID:     it.OwnerID,
		Name:        it.Name,
		Description: it.Description,
		Available:   it.Available,
		RequestID:   it.RequestID,
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
	if it.PhotoID != nil {
		u := photo.URL(*it.PhotoID)
		resp.PhotoURL = &u
	}
	return resp
}

// OwnedItemResponse adds booking context that only the owner may see.
type OwnedItemResponse struct {
	ItemResponse
	LastBooking *BookingShort `json:"last_booking"`
	NextBooking *BookingShort `json:"next_booking"`
}

type ItemDetailResponse struct {
	ItemResponse
	LastBooking *BookingShort                 `json:"last_booking,omitempty"`
	NextBooking *BookingShort                 `json:"next_booking,omitempty"`
	Comments    []commentHttp.CommentResponse `json:"comments"`
}

type CreateItemRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Available   *bool   `json:"available" binding:"required"`
	RequestID   *string `json:"request_id" binding:"omitempty,uuid"`
}

type UpdateItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

type SearchItemsRequest struct {
	request.ListParams
	Text string `form:"text"`
}
