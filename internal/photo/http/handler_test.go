package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/item-sharing-backend/internal/auth"
	"github.com/nekogravitycat/item-sharing-backend/internal/item"
	"github.com/nekogravitycat/item-sharing-backend/internal/photo"
)

const (
	itemID  = "3b0e4d6c-1f1a-4a8e-8f55-2a4b7c9d0e11"
	photoID = "9d8c7b6a-5f4e-4d3c-8b2a-1a0f9e8d7c6b"
)

type stubService struct {
	uploaded []byte
}

func (s *stubService) Upload(ctx context.Context, req photo.UploadRequest) (*photo.Photo, error) {
	if req.UploaderID != "owner" {
		return nil, item.ErrNotOwner
	}
	data, err := io.ReadAll(req.Content)
	if err != nil {
		return nil, err
	}
	s.uploaded = data
	thumb := "thumb"
	return &photo.Photo{ID: photoID, ItemID: req.ItemID, ThumbnailPath: &thumb}, nil
}

func (s *stubService) Download(ctx context.Context, id string) (io.ReadCloser, *photo.Photo, error) {
	if id != photoID {
		return nil, nil, photo.ErrNotFound
	}
	return io.NopCloser(strings.NewReader("original")), &photo.Photo{ID: id, ContentType: "image/png"}, nil
}

func (s *stubService) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *photo.Photo, error) {
	return nil, nil, photo.ErrNoThumbnail
}

func setupRouter(svc photo.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	fakeAuth := func(c *gin.Context) {
		auth.SetUserID(c, c.GetHeader("X-User"))
	}
	RegisterRoutes(r.Group("/v1"), NewHandler(svc, 1<<20), fakeAuth)
	return r
}

func uploadRequest(t *testing.T, user string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "ladder.png")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/items/"+itemID+"/photo", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-User", user)
	return req
}

func TestUpload(t *testing.T) {
	svc := &stubService{}
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "owner", []byte("pixels")))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "pixels", string(svc.uploaded))

	var resp PhotoUploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, photo.URL(photoID), resp.URL)
	require.NotNil(t, resp.ThumbnailURL)
	assert.Equal(t, photo.ThumbnailURL(photoID), *resp.ThumbnailURL)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "stranger", []byte("pixels")))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/items/"+itemID+"/photo", nil)
	req.Header.Set("X-User", "owner")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServe(t *testing.T) {
	r := setupRouter(&stubService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/photos/"+photoID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "original", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/photos/"+photoID+"/thumbnail", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/photos/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
