// Package models defines the data structures used throughout the application.
//
// Go Pattern: Models are plain structs with JSON tags for serialization.
// The `db` tags work with sqlx for database column mapping. Search results
// themselves live in the search package; a SearchRecord is what we persist
// about one run so its report can be downloaded again later.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/Shimizu-Technology/pdf-term-search/internal/search"
)

// SummaryRows is the per-term report stored as JSONB.
// Go Pattern: Implementing driver.Valuer and sql.Scanner lets sqlx read and
// write a custom type directly, the same way it handles time.Time.
type SummaryRows []search.SummaryRow

// Value encodes the rows as JSON for the database driver.
func (r SummaryRows) Value() (driver.Value, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r)
}

// Scan decodes a JSONB column.
func (r *SummaryRows) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		*r = SummaryRows{}
		return nil
	default:
		return errors.New("summary rows: unsupported column type")
	}
	return json.Unmarshal(data, r)
}

// SearchRecord is one persisted search run.
type SearchRecord struct {
	ID           string        `json:"id" db:"id"`
	DocumentName string        `json:"document_name" db:"document_name"`
	PageCount    int           `json:"page_count" db:"page_count"`
	FailedPages  pq.Int64Array `json:"failed_pages" db:"failed_pages"` // Pages whose text could not be extracted
	TermCount    int           `json:"term_count" db:"term_count"`
	FoundCount   int           `json:"found_count" db:"found_count"`
	Rows         SummaryRows   `json:"rows" db:"report_rows"`
	SearchedAt   time.Time     `json:"searched_at" db:"searched_at"`
	APIKeyID     *string       `json:"-" db:"api_key_id"` // Pointer = nullable
	UserID       *string       `json:"-" db:"user_id"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
}

// Totals recomputes the report totals from the stored rows.
func (s *SearchRecord) Totals() search.Totals {
	return search.Summarize(s.Rows)
}

// SearchResponse is returned by POST /api/v1/searches.
type SearchResponse struct {
	SearchRecord
	Totals search.Totals `json:"totals"`
	Saved  bool          `json:"saved"` // false when the record could not be persisted
}

// SearchListParams scopes a listing to one caller. A record belongs to the
// caller when either its API key or its user matches.
type SearchListParams struct {
	Limit    int
	APIKeyID *string
	UserID   *string
}

// Owns reports whether s was made by the caller these params describe.
// The same rule filters ListSearches, so anything a caller can open also
// shows up in its listing.
func (p SearchListParams) Owns(s *SearchRecord) bool {
	if p.APIKeyID != nil && s.APIKeyID != nil && *p.APIKeyID == *s.APIKeyID {
		return true
	}
	return p.UserID != nil && s.UserID != nil && *p.UserID == *s.UserID
}

// APIKey represents an API key for authentication.
// Note: We store the HASH of the key, never the raw key itself.
type APIKey struct {
	ID         string     `json:"id" db:"id"`
	KeyHash    string     `json:"-" db:"key_hash"`            // "-" means never serialize to JSON
	KeyPrefix  string     `json:"key_prefix" db:"key_prefix"` // First 8 chars for identification
	Name       string     `json:"name" db:"name"`
	Active     bool       `json:"active" db:"active"`
	RateLimit  int        `json:"rate_limit" db:"rate_limit"` // Requests per hour
	UserID     *string    `json:"user_id,omitempty" db:"user_id"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" db:"last_used_at"` // Pointer = nullable
}

// User is an account that signs in with email and password.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// --- Request/Response DTOs (Data Transfer Objects) ---

// CreateAPIKeyRequest is the JSON body for POST /api/v1/keys.
type CreateAPIKeyRequest struct {
	Name      string `json:"name" binding:"required"`
	RateLimit int    `json:"rate_limit,omitempty"` // 0 = use default
}

// CreateAPIKeyResponse includes the raw key, shown only once at creation time.
type CreateAPIKeyResponse struct {
	APIKey
	RawKey string `json:"raw_key"`
}

// RegisterRequest is the JSON body for POST /api/v1/auth/register.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
}

// LoginRequest is the JSON body for POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries a fresh token and the signed-in user.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ErrorResponse is a standard error format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
}
