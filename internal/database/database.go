// Package database handles PostgreSQL connections and queries.
//
// Go Pattern: We use the `sqlx` package which extends Go's standard `database/sql`
// with convenient features like scanning rows into structs. You write raw SQL
// and sqlx maps the columns onto the `db:"..."` tags of our models.
//
// Go's database/sql has built-in connection pooling: one *sqlx.DB is created
// at startup and shared across every request goroutine.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver, the underscore import runs its init()

	"github.com/Shimizu-Technology/pdf-term-search/internal/models"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// DB wraps the sqlx database connection with our application-specific methods.
// Go Pattern: Embedding (*sqlx.DB) gives us all of sqlx's methods automatically,
// plus we can add our own.
type DB struct {
	*sqlx.DB
}

// New creates a new database connection with connection pooling configured.
func New(databaseURL string) (*DB, error) {
	// sqlx.Connect both opens the connection and pings the database
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(2 * time.Minute)
	db.SetConnMaxIdleTime(30 * time.Second)

	return &DB{db}, nil
}

// HealthCheck verifies the database connection is alive.
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}

// notFound converts sql.ErrNoRows into ErrNotFound and wraps everything else.
func notFound(what string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w: %w", what, ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// --- Search Record Operations ---

// CreateSearch inserts a search record. The ID is generated here so the
// caller can reference the record before the insert returns.
func (db *DB) CreateSearch(ctx context.Context, s *models.SearchRecord) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	query := `
		INSERT INTO searches (id, document_name, page_count, failed_pages, term_count, found_count, report_rows, searched_at, api_key_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`

	return db.QueryRowContext(ctx, query,
		s.ID, s.DocumentName, s.PageCount, s.FailedPages,
		s.TermCount, s.FoundCount, s.Rows, s.SearchedAt,
		s.APIKeyID, s.UserID,
	).Scan(&s.CreatedAt)
}

// GetSearch retrieves a single search record by ID.
func (db *DB) GetSearch(ctx context.Context, id string) (*models.SearchRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFound("search", sql.ErrNoRows)
	}

	var s models.SearchRecord
	err := db.GetContext(ctx, &s, `SELECT * FROM searches WHERE id = $1`, id)
	if err != nil {
		return nil, notFound("search", err)
	}
	return &s, nil
}

// ListSearches returns the most recent searches for one caller: records made
// with its API key or by its user (see SearchListParams.Owns). With neither
// filter set every record matches.
func (db *DB) ListSearches(ctx context.Context, params models.SearchListParams) ([]models.SearchRecord, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 50
	}

	var apiKeyValue, userValue interface{}
	if params.APIKeyID != nil {
		apiKeyValue = *params.APIKeyID
	}
	if params.UserID != nil {
		userValue = *params.UserID
	}

	searches := []models.SearchRecord{}
	err := db.SelectContext(ctx, &searches,
		`SELECT * FROM searches
		 WHERE ($1::uuid IS NULL AND $2::uuid IS NULL)
		    OR api_key_id = $1
		    OR user_id = $2
		 ORDER BY created_at DESC
		 LIMIT $3`,
		apiKeyValue, userValue, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}
	return searches, nil
}

// DeleteSearch removes a search record by ID.
func (db *DB) DeleteSearch(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return notFound("search", sql.ErrNoRows)
	}

	result, err := db.ExecContext(ctx, `DELETE FROM searches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete search: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return notFound("search", sql.ErrNoRows)
	}
	return nil
}
