package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "photos/ab/one.bin", strings.NewReader("hello")))

	rc, err := s.Open(ctx, "photos/ab/one.bin")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.Delete(ctx, "photos/ab/one.bin"))
	require.NoError(t, s.Delete(ctx, "photos/ab/one.bin"))

	_, err = s.Open(ctx, "photos/ab/one.bin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "/etc/passwd", "../outside", "a/../../outside", "."} {
		assert.ErrorIs(t, s.Save(ctx, key, strings.NewReader("x")), ErrInvalidPath, key)
		_, err := s.Open(ctx, key)
		assert.ErrorIs(t, err, ErrInvalidPath, key)
	}
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDetectImage(t *testing.T) {
	ct, ext, err := DetectImage(testPNG(t, 4, 4))
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
	assert.Equal(t, ".png", ext)

	_, _, err = DetectImage([]byte("just some text"))
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestDetectImageRejectsScriptableFormats(t *testing.T) {
	svg := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><script>alert(1)</script></svg>`)
	_, _, err := DetectImage(svg)
	assert.ErrorIs(t, err, ErrNotImage)

	_, _, err = DetectImage([]byte("<html><body><script>alert(1)</script></body></html>"))
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestThumbnail(t *testing.T) {
	data, err := Thumbnail(bytes.NewReader(testPNG(t, 800, 400)), ThumbnailSize)
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, ThumbnailSize, img.Bounds().Dx())
	assert.Equal(t, ThumbnailSize/2, img.Bounds().Dy())

	_, err = Thumbnail(strings.NewReader("not an image"), ThumbnailSize)
	assert.ErrorIs(t, err, ErrNotImage)
}
