package middleware

import "github.com/Shimizu-Technology/pdf-term-search/internal/models"

// OwnerKey identifies the operator's personal API key, which skips rate limits.
// It matches either the key ID or the key prefix if configured.
type OwnerKey struct {
	ID     string
	Prefix string
}

// Matches reports whether apiKey is the owner key.
func (o OwnerKey) Matches(apiKey *models.APIKey) bool {
	if apiKey == nil {
		return false
	}
	if o.ID != "" && apiKey.ID == o.ID {
		return true
	}
	if o.Prefix != "" && apiKey.KeyPrefix == o.Prefix {
		return true
	}
	return false
}
