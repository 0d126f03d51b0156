package storage

import (
	"bytes"
	"fmt"
	"io"
	"slices"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"

	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/apperror"
)

var ErrNotImage = apperror.New(apperror.KindInvalidArgument, "file is not a supported image")

// ThumbnailSize bounds both sides of a generated thumbnail.
const ThumbnailSize = 240

// AllowedImageTypes are the raster formats accepted for upload. Anything a
// browser could execute, such as SVG, stays out.
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// DetectImage sniffs the content type of data and returns it along with the
// matching file extension if it is one of AllowedImageTypes.
func DetectImage(data []byte) (contentType, ext string, err error) {
	mt := mimetype.Detect(data)
	if !slices.Contains(AllowedImageTypes, mt.String()) {
		return "", "", ErrNotImage
	}
	return mt.String(), mt.Extension(), nil
}

// Thumbnail decodes an image, honoring EXIF orientation, and returns a JPEG
// that fits in a size x size box.
func Thumbnail(content io.Reader, size int) ([]byte, error) {
	img, err := imaging.Decode(content, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}

	thumb := imaging.Fit(img, size, size, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
