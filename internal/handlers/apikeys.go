// apikeys.go handles API key management endpoints.
package handlers

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-term-search/internal/database"
	"github.com/Shimizu-Technology/pdf-term-search/internal/middleware"
	"github.com/Shimizu-Technology/pdf-term-search/internal/models"
)

// keyPrefix marks keys issued by this service.
const keyPrefix = "pts_"

// CreateAPIKey generates a new API key.
// POST /api/v1/keys
//
// Security: This endpoint requires the X-Admin-Key header when ADMIN_API_KEY
// is configured (always in release mode). Otherwise it is open for bootstrapping.
//
// Request body:
//
//	{"name": "My App", "rate_limit": 200}
//
// Response includes the raw key. It's only shown once.
func (h *Handler) CreateAPIKey(c *gin.Context) {
	if h.AdminAPIKey != "" {
		providedKey := c.GetHeader("X-Admin-Key")
		if providedKey == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", "X-Admin-Key header is required to create API keys")
			return
		}
		if subtle.ConstantTimeCompare([]byte(providedKey), []byte(h.AdminAPIKey)) != 1 {
			abort(c, http.StatusForbidden, "forbidden", "Invalid admin key")
			return
		}
	}

	var req models.CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	rawKey, err := generateAPIKey()
	if err != nil {
		log.Printf("❌ Failed to generate API key: %v", err)
		abort(c, http.StatusInternalServerError, "generation_error", "Failed to generate API key")
		return
	}

	rateLimit := req.RateLimit
	if rateLimit <= 0 {
		rateLimit = h.DefaultRateLimit
	}

	// Only the hash is stored
	key := &models.APIKey{
		KeyHash:   middleware.HashAPIKey(rawKey),
		KeyPrefix: rawKey[:8],
		Name:      req.Name,
		Active:    true,
		RateLimit: rateLimit,
	}

	if err := h.Store.CreateAPIKey(c.Request.Context(), key); err != nil {
		log.Printf("❌ Failed to create API key: %v", err)
		abort(c, http.StatusInternalServerError, "database_error", "Failed to create API key")
		return
	}

	c.JSON(http.StatusCreated, models.CreateAPIKeyResponse{
		APIKey: *key,
		RawKey: rawKey,
	})
}

// ListAPIKeys returns all API keys (without the raw key values).
// GET /api/v1/keys
func (h *Handler) ListAPIKeys(c *gin.Context) {
	keys, err := h.Store.ListAPIKeys(c.Request.Context())
	if err != nil {
		abort(c, http.StatusInternalServerError, "database_error", "Failed to list API keys")
		return
	}

	if keys == nil {
		keys = []models.APIKey{}
	}

	c.JSON(http.StatusOK, keys)
}

// RevokeAPIKey deactivates an API key.
// DELETE /api/v1/keys/:id
func (h *Handler) RevokeAPIKey(c *gin.Context) {
	if err := h.Store.RevokeAPIKey(c.Request.Context(), c.Param("id")); err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			log.Printf("Failed to revoke key %s: %v", c.Param("id"), err)
		}
		abort(c, http.StatusNotFound, "not_found", "API key not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "API key revoked"})
}

// generateAPIKey creates a cryptographically secure random API key:
// "pts_" + 32 random hex characters.
func generateAPIKey() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return keyPrefix + hex.EncodeToString(b), nil
}
