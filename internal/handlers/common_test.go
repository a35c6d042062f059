// Common test helpers
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Shimizu-Technology/pdf-term-search/internal/database"
	"github.com/Shimizu-Technology/pdf-term-search/internal/middleware"
	"github.com/Shimizu-Technology/pdf-term-search/internal/models"
	"github.com/Shimizu-Technology/pdf-term-search/internal/services/termsearch"
)

const (
	testSecret   = "test-jwt-secret"
	testAPIKey   = "pts_test_key_one"
	otherAPIKey  = "pts_test_key_two"
	testAdminKey = "admin-secret"
)

// memStore is an in-memory Store and middleware.AuthStore.
type memStore struct {
	mu         sync.Mutex
	searches   map[string]models.SearchRecord
	keys       map[string]*models.APIKey // by id
	users      map[string]*models.User   // by id
	failCreate bool
}

func newMemStore() *memStore {
	return &memStore{
		searches: map[string]models.SearchRecord{},
		keys:     map[string]*models.APIKey{},
		users:    map[string]*models.User{},
	}
}

func (m *memStore) HealthCheck(context.Context) error { return nil }

func (m *memStore) CreateSearch(_ context.Context, s *models.SearchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate {
		return errors.New("database is down")
	}
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now()
	m.searches[s.ID] = *s
	return nil
}

func (m *memStore) GetSearch(_ context.Context, id string) (*models.SearchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.searches[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &s, nil
}

func (m *memStore) ListSearches(_ context.Context, p models.SearchListParams) ([]models.SearchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SearchRecord
	for _, s := range m.searches {
		if (p.APIKeyID != nil || p.UserID != nil) && !p.Owns(&s) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) DeleteSearch(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.searches[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.searches, id)
	return nil
}

func (m *memStore) CreateAPIKey(_ context.Context, key *models.APIKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key.ID = uuid.NewString()
	key.CreatedAt = time.Now()
	m.keys[key.ID] = key
	return nil
}

func (m *memStore) ListAPIKeys(context.Context) ([]models.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.APIKey
	for _, k := range m.keys {
		out = append(out, *k)
	}
	return out, nil
}

func (m *memStore) RevokeAPIKey(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[id]
	if !ok {
		return database.ErrNotFound
	}
	k.Active = false
	return nil
}

func (m *memStore) GetAPIKeyByHash(_ context.Context, hash string) (*models.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range m.keys {
		if k.KeyHash == hash && k.Active {
			copied := *k
			return &copied, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memStore) UpdateAPIKeyLastUsed(context.Context, string) error { return nil }

func (m *memStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return database.ErrEmailTaken
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	copied := *u
	m.users[u.ID] = &copied
	return nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, database.ErrNotFound
}

func (m *memStore) addKey(raw string, rateLimit int) *models.APIKey {
	key := &models.APIKey{
		KeyHash:   middleware.HashAPIKey(raw),
		KeyPrefix: raw[:8],
		Name:      raw,
		Active:    true,
		RateLimit: rateLimit,
	}
	_ = m.CreateAPIKey(context.Background(), key)
	return key
}

// setupTestServer wires the handlers behind the same middleware the
// production router uses.
func setupTestServer(t *testing.T, maxUpload int64) (*gin.Engine, *memStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemStore()
	store.addKey(testAPIKey, 100)
	store.addKey(otherAPIKey, 100)

	h := NewHandler(store, termsearch.New(time.UTC), Options{
		JWTSecret:        testSecret,
		AdminAPIKey:      testAdminKey,
		DefaultRateLimit: 100,
		MaxUploadBytes:   maxUpload,
	})
	limiter := middleware.NewRateLimiter(100, middleware.OwnerKey{})

	r := gin.New()
	r.GET("/api/v1/health", h.HealthCheck)
	r.GET("/", h.ServeUI)
	r.GET("/api/docs", h.ServeSwaggerUI)
	r.GET("/api/docs/openapi.yaml", h.ServeOpenAPISpec)
	r.POST("/api/v1/keys", h.CreateAPIKey)
	r.POST("/api/v1/auth/register", h.Register)
	r.POST("/api/v1/auth/login", h.Login)

	jwtOnly := r.Group("/api/v1/auth", middleware.JWTAuth(store, testSecret))
	jwtOnly.GET("/me", h.GetMe)
	jwtOnly.POST("/refresh", h.RefreshToken)

	protected := r.Group("/api/v1", middleware.DualAuth(store, testSecret), limiter.RateLimit())
	protected.POST("/searches", h.CreateSearch)
	protected.GET("/searches", h.ListSearches)
	protected.GET("/searches/:id", h.GetSearch)
	protected.GET("/searches/:id/export", h.ExportSearch)
	protected.DELETE("/searches/:id", h.DeleteSearch)
	protected.GET("/keys", h.ListAPIKeys)
	protected.DELETE("/keys/:id", h.RevokeAPIKey)

	return r, store
}

// upload is one multipart file part.
type upload struct {
	field    string
	filename string
	content  []byte
}

func multipartBody(t *testing.T, files []upload, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func doRequest(router *gin.Engine, method, path string, body *bytes.Buffer, headers map[string]string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(data)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}
