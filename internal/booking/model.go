package booking

import (
	"time"

	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(apperror.KindNotFound, "booking not found")
	ErrUserNotFound     = apperror.New(apperror.KindNotFound, "user not found")
	ErrItemNotFound     = apperror.New(apperror.KindNotFound, "item not found")
	ErrTimeConflict     = apperror.New(apperror.KindConflict, "item is already booked for this time")
	ErrInvalidTimeRange = apperror.New(apperror.KindInvalidArgument, "start time must be before end time")
	ErrStartTimePast    = apperror.New(apperror.KindInvalidArgument, "start time must be in the future")
	ErrEndTimePast      = apperror.New(apperror.KindInvalidArgument, "end time cannot be in the past")
	ErrItemUnavailable  = apperror.New(apperror.KindInvalidArgument, "item is not available for booking")
	ErrOwnItem          = apperror.New(apperror.KindForbidden, "owner cannot book their own item")
	ErrNotItemOwner     = apperror.New(apperror.KindForbidden, "only the item owner can decide on a booking")
	ErrAlreadyApproved  = apperror.New(apperror.KindInvalidState, "booking is already approved")
	ErrStatusChanged    = apperror.New(apperror.KindInvalidState, "booking status was changed by another request")
	ErrPermissionDenied = apperror.New(apperror.KindForbidden, "permission denied")
	ErrUnknownCategory  = apperror.New(apperror.KindInvalidArgument, "unknown state")
)

// Status is the owner's decision on a booking.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Booking reserves an item for the closed interval [StartTime, EndTime].
type Booking struct {
	ID         string
	ItemID     string
	ItemName   string
	BookerID   string
	BookerName string
	OwnerID    string
	StartTime  time.Time
	EndTime    time.Time
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Filter defines parameters for listing bookings. Exactly one of BookerID or
// OwnerID is expected to be set.
type Filter struct {
	BookerID string
	OwnerID  string
	Category Category
	// Now anchors the time based categories.
	Now      time.Time
	Page     int
	PageSize int
}
