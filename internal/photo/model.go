package photo

import (
	"time"

	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/apperror"
)

var (
	ErrNotFound    = apperror.New(apperror.KindNotFound, "photo not found")
	ErrNoThumbnail = apperror.New(apperror.KindNotFound, "thumbnail not available for this photo")
	ErrTooLarge    = apperror.New(apperror.KindInvalidArgument, "photo is too large")
)

// Photo is the picture an owner attached to an item.
type Photo struct {
	ID            string
	ItemID        string
	UploaderID    string
	Filename      string
	StoragePath   string
	ThumbnailPath *string
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

// URL returns the public path serving the photo.
func URL(id string) string {
	return "/v1/photos/" + id
}

func ThumbnailURL(id string) string {
	return "/v1/photos/" + id + "/thumbnail"
}
