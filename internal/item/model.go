package item

import (
	"time"

	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(apperror.KindNotFound, "item not found")
	ErrOwnerNotFound    = apperror.New(apperror.KindNotFound, "owner not found")
	ErrNotOwner         = apperror.New(apperror.KindForbidden, "only the owner can modify this item")
	ErrEmptyName        = apperror.New(apperror.KindInvalidArgument, "name cannot be empty")
	ErrEmptyDescription = apperror.New(apperror.KindInvalidArgument, "description cannot be empty")
	ErrNameTooLong      = apperror.New(apperror.KindInvalidArgument, "name is too long")
	ErrDescTooLong      = apperror.New(apperror.KindInvalidArgument, "description is too long")
	ErrRequestNotFound  = apperror.New(apperror.KindNotFound, "item request not found")
)

const (
	MaxNameLength        = 100
	MaxDescriptionLength = 1000
)

// Item is something a user lists so that other users can book it.
type Item struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	Available   bool
	PhotoID     *string
	// RequestID links the item to the request it was listed in answer to.
	RequestID   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Filter defines parameters for listing items.
type Filter struct {
	OwnerID string
	// Text matches name or description case-insensitively and limits results
	// to available items.
	Text     string
	Page     int
	PageSize int
}
