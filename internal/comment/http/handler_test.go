package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/item-sharing-backend/internal/auth"
	"github.com/nekogravitycat/item-sharing-backend/internal/comment"
)

const itemID = "3b0e4d6c-1f1a-4a8e-8f55-2a4b7c9d0e11"

type stubService struct {
	comments []*comment.Comment
}

func (s *stubService) Create(ctx context.Context, req comment.CreateRequest) (*comment.Comment, error) {
	if req.AuthorID != "booker" {
		return nil, comment.ErrNotEligible
	}
	cm := &comment.Comment{ID: "c1", ItemID: req.ItemID, AuthorID: req.AuthorID, AuthorName: "Bob", Text: req.Text, CreatedAt: time.Now()}
	s.comments = append(s.comments, cm)
	return cm, nil
}

func (s *stubService) ListByItem(ctx context.Context, id string) ([]*comment.Comment, error) {
	if id != itemID {
		return nil, comment.ErrItemNotFound
	}
	return s.comments, nil
}

func setupRouter(svc comment.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	fakeAuth := func(c *gin.Context) {
		auth.SetUserID(c, c.GetHeader("X-User"))
	}
	RegisterRoutes(r.Group("/v1"), NewHandler(svc), fakeAuth)
	return r
}

func do(r *gin.Engine, method, path, user, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User", user)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateAndList(t *testing.T) {
	r := setupRouter(&stubService{})
	path := "/v1/items/" + itemID + "/comments"

	w := do(r, http.MethodGet, path, "anyone", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(r, http.MethodPost, path, "booker", `{"text":"worked great"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created CommentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "worked great", created.Text)
	assert.Equal(t, "Bob", created.AuthorName)

	w = do(r, http.MethodGet, path, "anyone", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []CommentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestCreateErrors(t *testing.T) {
	r := setupRouter(&stubService{})
	path := "/v1/items/" + itemID + "/comments"

	w := do(r, http.MethodPost, path, "stranger", `{"text":"never used it"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, path, "booker", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/v1/items/nope/comments", "booker", `{"text":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/v1/items/9d8c7b6a-5f4e-4d3c-8b2a-1a0f9e8d7c6b/comments", "anyone", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
