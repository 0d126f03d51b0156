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
	"github.com/nekogravitycat/item-sharing-backend/internal/item"
	"github.com/nekogravitycat/item-sharing-backend/internal/itemrequest"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/response"
)

const requestID = "5e6f7a8b-9c0d-4e1f-a2b3-c4d5e6f7a8b9"

var created = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type stubService struct {
	lastPage, lastPageSize int
}

func (s *stubService) Create(ctx context.Context, req itemrequest.CreateRequest) (*itemrequest.Request, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, itemrequest.ErrEmptyDescription
	}
	return &itemrequest.Request{ID: requestID, RequesterID: req.RequesterID, Description: req.Description, CreatedAt: created}, nil
}

func (s *stubService) ListOwn(ctx context.Context, userID string) ([]*itemrequest.Request, error) {
	return []*itemrequest.Request{{
		ID:          requestID,
		RequesterID: userID,
		Description: "Tent",
		CreatedAt:   created,
		Items:       []*item.Item{{ID: "tent", Name: "Tent", OwnerID: "bob"}},
	}}, nil
}

func (s *stubService) ListOthers(ctx context.Context, userID string, page, pageSize int) ([]*itemrequest.Request, int, error) {
	s.lastPage, s.lastPageSize = page, pageSize
	return []*itemrequest.Request{{ID: requestID, RequesterID: "bob", Description: "Drill", CreatedAt: created}}, 5, nil
}

func (s *stubService) GetByID(ctx context.Context, viewerID, id string) (*itemrequest.Request, error) {
	if id != requestID {
		return nil, itemrequest.ErrNotFound
	}
	return &itemrequest.Request{ID: id, Description: "Tent", CreatedAt: created, Items: []*item.Item{}}, nil
}

func setupRouter(svc itemrequest.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	fakeAuth := func(c *gin.Context) {
		auth.SetUserID(c, c.GetHeader("X-User"))
	}
	RegisterRoutes(r.Group("/v1"), NewHandler(svc), fakeAuth)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User", "alice")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreate(t *testing.T) {
	r := setupRouter(&stubService{})

	w := do(r, http.MethodPost, "/v1/requests", `{"description":"Tent"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp RequestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, requestID, resp.ID)
	assert.Equal(t, "Tent", resp.Description)

	w = do(r, http.MethodPost, "/v1/requests", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/v1/requests", `{"description":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListOwnIncludesAnswers(t *testing.T) {
	r := setupRouter(&stubService{})

	w := do(r, http.MethodGet, "/v1/requests", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []RequestWithItemsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Len(t, list[0].Items, 1)
	assert.Equal(t, AnswerResponse{ID: "tent", Name: "Tent", OwnerID: "bob"}, list[0].Items[0])
}

func TestListOthersPaginates(t *testing.T) {
	svc := &stubService{}
	r := setupRouter(svc)

	w := do(r, http.MethodGet, "/v1/requests/all?page=2&page_size=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page response.PageResponse[RequestResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, svc.lastPage)
	assert.Equal(t, 1, svc.lastPageSize)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Drill", page.Items[0].Description)

	w = do(r, http.MethodGet, "/v1/requests/all?page_size=500", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGet(t *testing.T) {
	r := setupRouter(&stubService{})

	w := do(r, http.MethodGet, "/v1/requests/"+requestID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"items":[]`)

	w = do(r, http.MethodGet, "/v1/requests/9d8c7b6a-5f4e-4d3c-8b2a-1a0f9e8d7c6b", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/v1/requests/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
