package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Shimizu-Technology/pdf-term-search/internal/database"
	"github.com/Shimizu-Technology/pdf-term-search/internal/handlers"
	"github.com/Shimizu-Technology/pdf-term-search/internal/middleware"
	"github.com/Shimizu-Technology/pdf-term-search/internal/models"
	"github.com/Shimizu-Technology/pdf-term-search/internal/services/termsearch"
)

// emptyStore knows no keys, users or searches.
type emptyStore struct{}

func (emptyStore) HealthCheck(context.Context) error { return nil }
func (emptyStore) CreateSearch(context.Context, *models.SearchRecord) error { return nil }
func (emptyStore) DeleteSearch(context.Context, string) error { return database.ErrNotFound }
func (emptyStore) CreateAPIKey(context.Context, *models.APIKey) error { return nil }
func (emptyStore) ListAPIKeys(context.Context) ([]models.APIKey, error) { return nil, nil }
func (emptyStore) RevokeAPIKey(context.Context, string) error { return database.ErrNotFound }
func (emptyStore) CreateUser(context.Context, *models.User) error { return nil }
func (emptyStore) UpdateAPIKeyLastUsed(context.Context, string) error { return nil }
func (emptyStore) GetUserByID(context.Context, string) (*models.User, error) { return nil, database.ErrNotFound }
func (emptyStore) GetUserByEmail(context.Context, string) (*models.User, error) { return nil, database.ErrNotFound }

func (emptyStore) GetSearch(context.Context, string) (*models.SearchRecord, error) {
	return nil, database.ErrNotFound
}

func (emptyStore) ListSearches(context.Context, models.SearchListParams) ([]models.SearchRecord, error) {
	return nil, nil
}

func (emptyStore) GetAPIKeyByHash(context.Context, string) (*models.APIKey, error) {
	return nil, database.ErrNotFound
}

func setup(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := emptyStore{}
	return Setup(Deps{
		Handler:        handlers.NewHandler(store, termsearch.New(time.UTC), handlers.Options{DefaultRateLimit: 10}),
		Auth:           store,
		RateLimiter:    middleware.NewRateLimiter(10, middleware.OwnerKey{}),
		JWTSecret:      "secret",
		AllowedOrigins: []string{"http://localhost:5173"},
	})
}

func TestSetup_Routes(t *testing.T) {
	r := setup(t)

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"GET /",
		"GET /api/v1/health",
		"GET /api/docs",
		"GET /api/docs/openapi.yaml",
		"POST /api/v1/keys",
		"POST /api/v1/auth/register",
		"POST /api/v1/auth/login",
		"GET /api/v1/auth/me",
		"POST /api/v1/auth/refresh",
		"POST /api/v1/searches",
		"GET /api/v1/searches",
		"GET /api/v1/searches/:id",
		"GET /api/v1/searches/:id/export",
		"DELETE /api/v1/searches/:id",
		"GET /api/v1/keys",
		"DELETE /api/v1/keys/:id",
	} {
		require.True(t, registered[want], "missing route %s", want)
	}
}

func TestSetup_ProtectedRoutesRequireAuth(t *testing.T) {
	r := setup(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/searches"},
		{http.MethodGet, "/api/v1/searches"},
		{http.MethodGet, "/api/v1/searches/abc/export"},
		{http.MethodGet, "/api/v1/keys"},
		{http.MethodGet, "/api/v1/auth/me"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			require.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
}
