package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Shimizu-Technology/pdf-term-search/internal/search"
)

func TestSummaryRows_ValueScan(t *testing.T) {
	rows := SummaryRows{{
		Term:             "cat",
		Found:            true,
		DocumentName:     "a.pdf",
		SearchedAt:       time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		Pages:            []int{1, 4},
		TotalOccurrences: 2,
		SampleContexts:   []string{"a cat", "cat b"},
	}}

	value, err := rows.Value()
	require.NoError(t, err)

	var decoded SummaryRows
	require.NoError(t, decoded.Scan(value))
	require.Len(t, decoded, 1)
	require.Equal(t, rows[0].Pages, decoded[0].Pages)
	require.True(t, rows[0].SearchedAt.Equal(decoded[0].SearchedAt))

	require.NoError(t, decoded.Scan(`[]`))
	require.Empty(t, decoded)

	require.NoError(t, decoded.Scan(nil))
	require.NotNil(t, decoded)

	require.Error(t, decoded.Scan(42))
}

func TestSummaryRows_NilValueIsEmptyArray(t *testing.T) {
	var rows SummaryRows
	value, err := rows.Value()
	require.NoError(t, err)
	require.Equal(t, []byte("[]"), value)
}

func TestSearchRecord_Totals(t *testing.T) {
	rec := SearchRecord{Rows: SummaryRows{{Found: true}, {Found: false}}}
	require.Equal(t, search.Totals{Total: 2, Found: 1, NotFound: 1}, rec.Totals())
}

func TestSearchListParams_Owns(t *testing.T) {
	key, otherKey := "key-1", "key-2"
	user, otherUser := "user-1", "user-2"

	tests := []struct {
		name   string
		params SearchListParams
		rec    SearchRecord
		want   bool
	}{
		{"same key", SearchListParams{APIKeyID: &key}, SearchRecord{APIKeyID: &key}, true},
		{"other key", SearchListParams{APIKeyID: &otherKey}, SearchRecord{APIKeyID: &key}, false},
		{"same user", SearchListParams{UserID: &user}, SearchRecord{UserID: &user}, true},
		{"other user", SearchListParams{UserID: &otherUser}, SearchRecord{UserID: &user}, false},
		{"linked key sees its user's jwt search", SearchListParams{APIKeyID: &otherKey, UserID: &user}, SearchRecord{UserID: &user}, true},
		{"user sees search made with a linked key", SearchListParams{UserID: &user}, SearchRecord{APIKeyID: &key, UserID: &user}, true},
		{"no caller", SearchListParams{}, SearchRecord{APIKeyID: &key}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.params.Owns(&tt.rec))
		})
	}
}
