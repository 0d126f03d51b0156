package itemrequest

import (
	"time"

	"github.com/nekogravitycat/item-sharing-backend/internal/item"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(apperror.KindNotFound, "item request not found")
	ErrUserNotFound       = apperror.New(apperror.KindNotFound, "user not found")
	ErrEmptyDescription   = apperror.New(apperror.KindInvalidArgument, "request description cannot be empty")
	ErrDescriptionTooLong = apperror.New(apperror.KindInvalidArgument, "request description is too long")
)

const MaxDescriptionLength = 150

// Request asks other users to list an item the requester is looking for.
type Request struct {
	ID          string
	RequesterID string
	Description string
	CreatedAt   time.Time
	// Items answering the request. Only filled for own listings and single lookups.
	Items []*item.Item
}

// Filter defines parameters for listing requests.
type Filter struct {
	RequesterID string
	// ExcludeRequesterID drops one user's requests, used to browse everyone else's.
	ExcludeRequesterID string
	Page               int
	PageSize           int
}
