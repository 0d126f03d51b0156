package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookingHttp "github.com/nekogravitycat/item-sharing-backend/internal/booking/http"
	"github.com/nekogravitycat/item-sharing-backend/internal/db"
	itemHttp "github.com/nekogravitycat/item-sharing-backend/internal/item/http"
	itemRequestHttp "github.com/nekogravitycat/item-sharing-backend/internal/itemrequest/http"
	"github.com/nekogravitycat/item-sharing-backend/internal/pkg/response"
	userHttp "github.com/nekogravitycat/item-sharing-backend/internal/user/http"
)

// These tests drive the whole stack against a real Postgres. They are skipped
// unless TEST_DB_DSN is set; the database is truncated between tests.

var (
	testRouter *gin.Engine
	testPool   *pgxpool.Pool
	testClock  = &clock{}
)

var clockStart = time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func TestMain(m *testing.M) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		log.Printf("TEST_DB_DSN not set, integration tests will be skipped")
		os.Exit(m.Run())
	}

	ctx := context.Background()
	var err error
	testPool, err = db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatalf("unable to connect to database: %v", err)
	}
	if err := db.Migrate(ctx, testPool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	storageDir, err := os.MkdirTemp("", "shareit-photos-*")
	if err != nil {
		log.Fatalf("temp dir: %v", err)
	}

	container, err := NewContainer(Config{
		DBPool:         testPool,
		JWTSecret:      "integration-secret",
		JWTTTL:         30 * time.Minute,
		BcryptCost:     4, // Lower cost for testing purposes
		StoragePath:    storageDir,
		MaxUploadBytes: 1 << 20,
		Clock:          testClock.Now,
	})
	if err != nil {
		log.Fatalf("init container: %v", err)
	}
	testRouter = container.Router
	gin.SetMode(gin.TestMode)

	exitCode := m.Run()

	testPool.Close()
	os.RemoveAll(storageDir)
	os.Exit(exitCode)
}

func setup(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DB_DSN not set")
	}
	_, err := testPool.Exec(context.Background(), "TRUNCATE TABLE public.users CASCADE")
	require.NoError(t, err)
	testClock.Set(clockStart)
}

func executeRequest(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// registerUser signs a user up and returns its id and access token.
func registerUser(t *testing.T, email, name string) (string, string) {
	t.Helper()
	w := executeRequest("POST", "/v1/auth/register", userHttp.RegisterRequest{
		Email: email, Password: "password123", Name: name,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = executeRequest("POST", "/v1/auth/login", userHttp.LoginRequest{Email: email, Password: "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[userHttp.LoginResponse](t, w)
	return resp.User.ID, resp.AccessToken
}

func createItem(t *testing.T, token, name string) string {
	t.Helper()
	available := true
	w := executeRequest("POST", "/v1/items", itemHttp.CreateItemRequest{
		Name: name, Description: name + " for rent", Available: &available,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[itemHttp.ItemResponse](t, w).ID
}

func bookingBody(itemID string, start, end time.Time) bookingHttp.CreateBookingRequest {
	return bookingHttp.CreateBookingRequest{ItemID: itemID, StartTime: start, EndTime: end}
}

type bookingPage = response.PageResponse[bookingHttp.BookingResponse]

func TestBookingLifecycle(t *testing.T) {
	setup(t)

	ownerID, ownerToken := registerUser(t, "owner@shareit.test", "Olga")
	_, bookerToken := registerUser(t, "booker@shareit.test", "Boris")
	_, thirdToken := registerUser(t, "third@shareit.test", "Tess")
	itemID := createItem(t, ownerToken, "Ladder")

	now := testClock.Now()
	day := 24 * time.Hour
	var bookingID string

	t.Run("booker requests item", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings", bookingBody(itemID, now.Add(day), now.Add(2*day)), bookerToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		resp := decode[bookingHttp.BookingResponse](t, w)
		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, "Ladder", resp.Item.Name)
		bookingID = resp.ID
	})

	t.Run("same window conflicts", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings", bookingBody(itemID, now.Add(day), now.Add(2*day)), thirdToken)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("owner cannot book own item", func(t *testing.T) {
		w := executeRequest("POST", "/v1/bookings", bookingBody(itemID, now.Add(5*day), now.Add(6*day)), ownerToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("third user cannot view", func(t *testing.T) {
		w := executeRequest("GET", "/v1/bookings/"+bookingID, nil, thirdToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
		w = executeRequest("GET", "/v1/bookings/"+bookingID, nil, ownerToken)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("owner approves once", func(t *testing.T) {
		w := executeRequest("PATCH", "/v1/bookings/"+bookingID+"?approved=true", nil, bookerToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = executeRequest("PATCH", "/v1/bookings/"+bookingID+"?approved=true", nil, ownerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "approved", decode[bookingHttp.BookingResponse](t, w).Status)

		w = executeRequest("PATCH", "/v1/bookings/"+bookingID+"?approved=false", nil, ownerToken)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("future and past lists", func(t *testing.T) {
		w := executeRequest("GET", "/v1/bookings?state=FUTURE", nil, bookerToken)
		require.Equal(t, http.StatusOK, w.Code)
		future := decode[bookingPage](t, w)
		require.Len(t, future.Items, 1)
		assert.Equal(t, bookingID, future.Items[0].ID)

		w = executeRequest("GET", "/v1/bookings?state=PAST", nil, bookerToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[bookingPage](t, w).Items)

		w = executeRequest("GET", "/v1/bookings/owner?state=ALL", nil, ownerToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, decode[bookingPage](t, w).Total)

		w = executeRequest("GET", "/v1/bookings?state=WAITING", nil, bookerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("comment after booking ends", func(t *testing.T) {
		comment := map[string]string{"text": "Sturdy and clean"}

		w := executeRequest("POST", "/v1/items/"+itemID+"/comments", comment, bookerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		testClock.Set(now.Add(3 * day))

		w = executeRequest("POST", "/v1/items/"+itemID+"/comments", comment, bookerToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = executeRequest("POST", "/v1/items/"+itemID+"/comments", comment, thirdToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("item detail", func(t *testing.T) {
		w := executeRequest("GET", "/v1/items/"+itemID, nil, ownerToken)
		require.Equal(t, http.StatusOK, w.Code)
		detail := decode[itemHttp.ItemDetailResponse](t, w)
		assert.Equal(t, ownerID, detail.OwnerID)
		require.NotNil(t, detail.LastBooking)
		assert.Equal(t, bookingID, detail.LastBooking.ID)
		assert.Nil(t, detail.NextBooking)
		require.Len(t, detail.Comments, 1)
		assert.Equal(t, "Boris", detail.Comments[0].AuthorName)

		w = executeRequest("GET", "/v1/items/"+itemID, nil, thirdToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, decode[itemHttp.ItemDetailResponse](t, w).LastBooking)
	})
}

func TestConcurrentBookingsOnlyOneWins(t *testing.T) {
	setup(t)

	_, ownerToken := registerUser(t, "owner@shareit.test", "Olga")
	itemID := createItem(t, ownerToken, "Tent")

	const n = 6
	tokens := make([]string, n)
	for i := range tokens {
		_, tokens[i] = registerUser(t, fmt.Sprintf("booker%d@shareit.test", i), "Booker")
	}

	start := testClock.Now().Add(24 * time.Hour)
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := executeRequest("POST", "/v1/bookings", bookingBody(itemID, start, start.Add(time.Hour)), tokens[i])
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		if code == http.StatusCreated {
			created++
			continue
		}
		assert.Equal(t, http.StatusConflict, code)
	}
	assert.Equal(t, 1, created)
}

func TestCreateResponseMatchesStoredTimes(t *testing.T) {
	setup(t)

	_, ownerToken := registerUser(t, "owner@shareit.test", "Olga")
	_, bookerToken := registerUser(t, "booker@shareit.test", "Boris")
	itemID := createItem(t, ownerToken, "Kayak")

	start := testClock.Now().Add(24*time.Hour + 123456789*time.Nanosecond)
	end := start.Add(time.Hour)
	w := executeRequest("POST", "/v1/bookings", bookingBody(itemID, start, end), bookerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[bookingHttp.BookingResponse](t, w)

	w = executeRequest("GET", "/v1/bookings/"+created.ID, nil, bookerToken)
	require.Equal(t, http.StatusOK, w.Code)
	stored := decode[bookingHttp.BookingResponse](t, w)
	assert.True(t, created.StartTime.Equal(stored.StartTime))
	assert.True(t, created.EndTime.Equal(stored.EndTime))
}

func TestItemRequests(t *testing.T) {
	setup(t)

	_, aliceToken := registerUser(t, "alice@shareit.test", "Alice")
	bobID, bobToken := registerUser(t, "bob@shareit.test", "Bob")

	w := executeRequest("POST", "/v1/requests", itemRequestHttp.CreateItemRequestRequest{Description: "Need a tent"}, aliceToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	requestID := decode[itemRequestHttp.RequestResponse](t, w).ID

	available := true
	w = executeRequest("POST", "/v1/items", itemHttp.CreateItemRequest{
		Name: "Tent", Description: "Two person tent", Available: &available, RequestID: &requestID,
	}, bobToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	unknown := "9d8c7b6a-5f4e-4d3c-8b2a-1a0f9e8d7c6b"
	w = executeRequest("POST", "/v1/items", itemHttp.CreateItemRequest{
		Name: "Stove", Description: "Camping stove", Available: &available, RequestID: &unknown,
	}, bobToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = executeRequest("GET", "/v1/requests", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	own := decode[[]itemRequestHttp.RequestWithItemsResponse](t, w)
	require.Len(t, own, 1)
	require.Len(t, own[0].Items, 1)
	assert.Equal(t, bobID, own[0].Items[0].OwnerID)

	w = executeRequest("GET", "/v1/requests/all", nil, bobToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[response.PageResponse[itemRequestHttp.RequestResponse]](t, w).Total)

	w = executeRequest("GET", "/v1/requests/all", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[response.PageResponse[itemRequestHttp.RequestResponse]](t, w).Total)

	w = executeRequest("GET", "/v1/requests/"+requestID, nil, bobToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[itemRequestHttp.RequestWithItemsResponse](t, w).Items, 1)
}
