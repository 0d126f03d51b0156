package comment

import (
	"time"

	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/apperror"
)

var (
	ErrItemNotFound = apperror.New(apperror.KindNotFound, "item not found")
	ErrEmptyText    = apperror.New(apperror.KindInvalidArgument, "comment text cannot be empty")
	ErrTextTooLong  = apperror.New(apperror.KindInvalidArgument, "comment text is too long")
	ErrNotEligible  = apperror.New(apperror.KindInvalidArgument, "only users who have finished a booking of this item can comment on it")
)

const MaxTextLength = 2000

type Comment struct {
	ID         string
	ItemID     string
	AuthorID   string
	AuthorName string
	Text       string
	CreatedAt  time.Time
}
