// Package handlers contains HTTP handler functions for the API.
//
// Go Pattern: Handlers in Gin receive a *gin.Context which provides:
// - Request data (params, query, body, headers)
// - Response methods (JSON, Data, Status)
// - Middleware data (c.Get/c.Set)
//
// We group related handlers into a struct (Handler) that holds shared dependencies.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-term-search/internal/models"
	"github.com/Shimizu-Technology/pdf-term-search/internal/services/termsearch"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Store is everything the handlers need from persistence.
// *database.DB satisfies it; tests use an in-memory implementation.
type Store interface {
	HealthCheck(ctx context.Context) error

	CreateSearch(ctx context.Context, s *models.SearchRecord) error
	GetSearch(ctx context.Context, id string) (*models.SearchRecord, error)
	ListSearches(ctx context.Context, params models.SearchListParams) ([]models.SearchRecord, error)
	DeleteSearch(ctx context.Context, id string) error

	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id string) error

	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Options carries the configuration handlers read at request time.
type Options struct {
	JWTSecret        string
	AdminAPIKey      string
	DefaultRateLimit int
	MaxUploadBytes   int64
}

// Handler holds shared dependencies for all HTTP handlers.
// Go Pattern: Dependency injection via struct fields. Tests create a Handler
// with a fake Store instead of a database.
type Handler struct {
	Store    Store
	Searcher *termsearch.Service
	Options
}

// NewHandler creates a new handler with all dependencies.
func NewHandler(store Store, searcher *termsearch.Service, opts Options) *Handler {
	return &Handler{
		Store:    store,
		Searcher: searcher,
		Options:  opts,
	}
}

// HealthCheck returns the API health status.
// GET /api/v1/health
func (h *Handler) HealthCheck(c *gin.Context) {
	dbStatus := "healthy"
	if err := h.Store.HealthCheck(c.Request.Context()); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:   "ok",
		Version:  Version,
		Database: dbStatus,
	})
}

// abort writes the standard error body.
func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error:   code,
		Message: message,
		Code:    status,
	})
}
