// Package middleware provides HTTP middleware for the API.
//
// Go Pattern: In Gin, middleware is a gin.HandlerFunc that calls c.Next() to
// continue the chain, or c.Abort() to stop processing.
package middleware

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-term-search/internal/models"
)

// AuthStore is the slice of the database the auth middleware needs.
// *database.DB satisfies it; tests pass an in-memory fake.
type AuthStore interface {
	GetAPIKeyByHash(ctx context.Context, hash string) (*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id string) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const apiKeyContextKey contextKey = "api_key"

// APIKeyAuth returns middleware that validates the X-API-Key header.
//
// How it works:
// 1. Read the X-API-Key header
// 2. Hash it (we never store raw keys)
// 3. Look up the hash in the database
// 4. If valid, store the key info in the request context
// 5. If invalid, return 401 Unauthorized
func APIKeyAuth(store AuthStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawKey := c.GetHeader("X-API-Key")
		if rawKey == "" {
			unauthorized(c, "Missing X-API-Key header. Create an API key via POST /api/v1/keys")
			return
		}

		apiKey, err := store.GetAPIKeyByHash(c.Request.Context(), HashAPIKey(rawKey))
		if err != nil {
			unauthorized(c, "Invalid or revoked API key")
			return
		}

		setAPIKey(c, store, apiKey)
		c.Next()
	}
}

// setAPIKey stores the key for handlers and bumps last_used_at in the background.
func setAPIKey(c *gin.Context, store AuthStore, apiKey *models.APIKey) {
	c.Set(string(apiKeyContextKey), apiKey)

	// The request context is cancelled when the response is written,
	// so the background update must not inherit its cancellation.
	ctx := context.WithoutCancel(c.Request.Context())
	go func() {
		if err := store.UpdateAPIKeyLastUsed(ctx, apiKey.ID); err != nil {
			log.Printf("⚠️  Failed to update last_used_at for key %s: %v", apiKey.KeyPrefix, err)
		}
	}()
}

// GetAPIKey retrieves the authenticated API key from the request context.
// Call this in your handlers after the auth middleware has run.
func GetAPIKey(c *gin.Context) *models.APIKey {
	val, exists := c.Get(string(apiKeyContextKey))
	if !exists {
		return nil
	}
	key, ok := val.(*models.APIKey)
	if !ok {
		return nil
	}
	return key
}

// HashAPIKey creates a SHA-256 hash of an API key.
// We store hashes, not raw keys, same principle as password hashing.
func HashAPIKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", hash)
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:   "unauthorized",
		Message: message,
		Code:    http.StatusUnauthorized,
	})
}
