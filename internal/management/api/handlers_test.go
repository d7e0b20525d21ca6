package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bookcatalogue/catalogue/internal/management/catalog"
	"github.com/bookcatalogue/catalogue/internal/management/config"
	"github.com/bookcatalogue/catalogue/internal/management/db"
	"github.com/bookcatalogue/catalogue/internal/management/events"
	"github.com/bookcatalogue/catalogue/internal/management/repo"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&db.Book{}))

	log := zap.NewNop()
	r := repo.NewBookRepository(&db.DB{DB: gormDB}, log)
	service := catalog.NewService(r, log)
	h := NewHandler(service, events.NoopPublisher{}, log)

	cfg := &config.Config{
		Users: []config.User{
			{Username: "admin", Password: "admin", Role: config.RoleAdmin},
			{Username: "worker", Password: "worker", Role: config.RoleWorker},
		},
	}
	return NewRouter(h, cfg, log)
}

func doRequest(router *gin.Engine, method, path, user, pass string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.SetBasicAuth(user, pass)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createPayload(name string) map[string]any {
	return map[string]any{
		"name":         name,
		"author":       "Frank Herbert",
		"publish_date": "1965-08-01",
		"price_cents":  2999,
		"book_type":    "HARD_COVER",
	}
}

func createBook(t *testing.T, router *gin.Engine, name string) BookResponse {
	t.Helper()
	w := doRequest(router, http.MethodPost, "/api/books", "admin", "admin", createPayload(name))
	require.Equal(t, http.StatusCreated, w.Code)

	var resp BookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateBook(t *testing.T) {
	router := newTestRouter(t)

	resp := createBook(t, router, "Dune")
	assert.Len(t, resp.ISBN, 13)
	assert.Equal(t, "Dune", resp.Name)
	assert.Equal(t, int64(2999), resp.PriceCents)
}

func TestCreateBookMergesOnResubmit(t *testing.T) {
	router := newTestRouter(t)

	first := createBook(t, router, "Dune")

	payload := createPayload("Dune")
	payload["price_cents"] = 1550
	w := doRequest(router, http.MethodPost, "/api/books", "worker", "worker", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	var second BookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, first.ISBN, second.ISBN)
	assert.Equal(t, int64(1550), second.PriceCents)
}

func TestCreateBookValidation(t *testing.T) {
	router := newTestRouter(t)

	payload := createPayload("Dune")
	payload["book_type"] = "PAPERBACK"
	w := doRequest(router, http.MethodPost, "/api/books", "admin", "admin", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "book_type")

	payload = createPayload("Dune")
	delete(payload, "price_cents")
	w = doRequest(router, http.MethodPost, "/api/books", "admin", "admin", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	payload = createPayload("Dune")
	payload["publish_date"] = "01/08/1965"
	w = doRequest(router, http.MethodPost, "/api/books", "admin", "admin", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetByISBN(t *testing.T) {
	router := newTestRouter(t)
	created := createBook(t, router, "Dune")

	w := doRequest(router, http.MethodGet, "/api/books?isbn="+created.ISBN, "worker", "worker", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp BookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, created.ISBN, resp.ISBN)
}

func TestGetByISBNNotFound(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/books?isbn=MISSING000000", "admin", "admin", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING000000")
}

func TestGetByISBNMissingParam(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/books", "admin", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAll(t *testing.T) {
	router := newTestRouter(t)
	createBook(t, router, "Dune")
	createBook(t, router, "Dune Messiah")

	w := doRequest(router, http.MethodGet, "/api/books/all", "worker", "worker", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp []BookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}

func TestSearch(t *testing.T) {
	router := newTestRouter(t)
	createBook(t, router, "Dune")
	createBook(t, router, "Dune Messiah")

	w := doRequest(router, http.MethodGet, "/api/books/search?name=Dune", "admin", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp []BookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)

	w = doRequest(router, http.MethodGet, "/api/books/search?author=Frank+Herbert", "admin", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)

	// Without parameters the search falls back to the whole catalogue.
	w = doRequest(router, http.MethodGet, "/api/books/search", "admin", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}

func TestUpdateBook(t *testing.T) {
	router := newTestRouter(t)
	created := createBook(t, router, "Dune")

	patch := map[string]any{"price_cents": 3499}
	w := doRequest(router, http.MethodPatch, "/api/books/"+created.ISBN, "admin", "admin", patch)
	require.Equal(t, http.StatusOK, w.Code)

	var resp BookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, created.ISBN, resp.ISBN)
	assert.Equal(t, int64(3499), resp.PriceCents)
	assert.Equal(t, "Dune", resp.Name)
}

func TestUpdateBookNotFound(t *testing.T) {
	router := newTestRouter(t)

	patch := map[string]any{"price_cents": 3499}
	w := doRequest(router, http.MethodPatch, "/api/books/MISSING000000", "admin", "admin", patch)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteBook(t *testing.T) {
	router := newTestRouter(t)
	created := createBook(t, router, "Dune")

	w := doRequest(router, http.MethodDelete, "/api/books/"+created.ISBN, "admin", "admin", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(router, http.MethodDelete, "/api/books/"+created.ISBN, "admin", "admin", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthRequired(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/books/all", "", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
}

func TestAuthBadCredentials(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/books/all", "admin", "wrong", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, http.MethodGet, "/api/books/all", "nobody", "admin", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWorkerCannotMutate(t *testing.T) {
	router := newTestRouter(t)
	created := createBook(t, router, "Dune")

	patch := map[string]any{"price_cents": 1}
	w := doRequest(router, http.MethodPatch, "/api/books/"+created.ISBN, "worker", "worker", patch)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(router, http.MethodDelete, "/api/books/"+created.ISBN, "worker", "worker", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The book is untouched after both refusals.
	w = doRequest(router, http.MethodGet, fmt.Sprintf("/api/books?isbn=%s", created.ISBN), "worker", "worker", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp BookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2999), resp.PriceCents)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/healthz", "", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
