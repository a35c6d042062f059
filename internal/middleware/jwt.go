// jwt.go provides JWT authentication middleware.
// It works alongside API key auth: browser users sign in, scripts use keys.
package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Shimizu-Technology/pdf-term-search/internal/models"
)

const userContextKey contextKey = "user"

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 72 * time.Hour

// JWTClaims extends standard JWT claims with user info.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateJWT creates a new JWT token for a user.
func GenerateJWT(user *models.User, secret string) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseJWT validates and parses a JWT token string.
// Only HS256 is accepted so a token cannot downgrade its own algorithm.
func ParseJWT(tokenString, secret string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", errors.New("missing bearer token")
	}
	return strings.TrimPrefix(authHeader, "Bearer "), nil
}

// JWTAuth returns middleware that validates JWT Bearer tokens.
// It sets the user in the context if a valid token is provided.
func JWTAuth(store AuthStore, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c)
		if err != nil {
			unauthorized(c, "Missing or invalid Authorization header. Use 'Bearer <token>'")
			return
		}

		claims, err := ParseJWT(tokenString, jwtSecret)
		if err != nil {
			unauthorized(c, "Invalid or expired token")
			return
		}

		user, err := store.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			unauthorized(c, "User not found")
			return
		}

		c.Set(string(userContextKey), user)
		c.Next()
	}
}

// DualAuth returns middleware that accepts EITHER an API key OR a JWT token.
func DualAuth(store AuthStore, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Try API key first
		if rawKey := c.GetHeader("X-API-Key"); rawKey != "" {
			apiKey, err := store.GetAPIKeyByHash(c.Request.Context(), HashAPIKey(rawKey))
			if err == nil {
				setAPIKey(c, store, apiKey)
				c.Next()
				return
			}
		}

		// Then a JWT token
		if tokenString, err := bearerToken(c); err == nil {
			if claims, err := ParseJWT(tokenString, jwtSecret); err == nil {
				if user, err := store.GetUserByID(c.Request.Context(), claims.UserID); err == nil {
					c.Set(string(userContextKey), user)
					c.Next()
					return
				}
			}
		}

		unauthorized(c, "Provide a valid X-API-Key header or Authorization: Bearer <token>")
	}
}

// GetUser retrieves the authenticated user from the request context.
func GetUser(c *gin.Context) *models.User {
	val, exists := c.Get(string(userContextKey))
	if !exists {
		return nil
	}
	user, ok := val.(*models.User)
	if !ok {
		return nil
	}
	return user
}
