// Package router sets up all HTTP routes for the API.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-term-search/internal/handlers"
	"github.com/Shimizu-Technology/pdf-term-search/internal/middleware"
)

// Deps is everything the routes need.
type Deps struct {
	Handler        *handlers.Handler
	Auth           middleware.AuthStore
	RateLimiter    *middleware.RateLimiter
	JWTSecret      string
	AllowedOrigins []string
}

// Setup creates and configures the Gin router with all routes.
func Setup(d Deps) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORS(d.AllowedOrigins))

	// Multipart files beyond this are spooled to disk instead of memory
	r.MaxMultipartMemory = 8 << 20

	h := d.Handler

	// --- Public Routes (no auth required) ---
	r.GET("/", h.ServeUI)
	r.GET("/api/v1/health", h.HealthCheck)
	r.POST("/api/v1/keys", h.CreateAPIKey)

	// API Documentation
	r.GET("/api/docs", h.ServeSwaggerUI)
	r.GET("/api/docs/openapi.yaml", h.ServeOpenAPISpec)

	// --- Auth Routes (public) ---
	r.POST("/api/v1/auth/register", h.Register)
	r.POST("/api/v1/auth/login", h.Login)

	// --- JWT-protected routes ---
	jwtProtected := r.Group("/api/v1/auth")
	jwtProtected.Use(middleware.JWTAuth(d.Auth, d.JWTSecret))
	{
		jwtProtected.GET("/me", h.GetMe)
		jwtProtected.POST("/refresh", h.RefreshToken)
	}

	// --- Protected Routes (API key OR JWT) ---
	protected := r.Group("/api/v1")
	protected.Use(middleware.DualAuth(d.Auth, d.JWTSecret))
	protected.Use(d.RateLimiter.RateLimit())
	{
		// Term search
		protected.POST("/searches", h.CreateSearch)
		protected.GET("/searches", h.ListSearches)
		protected.GET("/searches/:id", h.GetSearch)
		protected.GET("/searches/:id/export", h.ExportSearch)
		protected.DELETE("/searches/:id", h.DeleteSearch)

		// API key management
		protected.GET("/keys", h.ListAPIKeys)
		protected.DELETE("/keys/:id", h.RevokeAPIKey)
	}

	return r
}
