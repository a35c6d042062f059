package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Shimizu-Technology/pdf-term-search/internal/search"
	"github.com/stretchr/testify/require"
)

func sampleRows() []search.SummaryRow {
	at := time.Date(2025, 6, 1, 14, 5, 9, 0, time.UTC)
	return []search.SummaryRow{
		{
			Term:             "contract",
			Found:            true,
			DocumentName:     "deal.pdf",
			SearchedAt:       at,
			Pages:            []int{1, 3},
			TotalOccurrences: 4,
			SampleContexts:   []string{"the contract, signed", "a \"quoted\" contract"},
		},
		{
			Term:           "penalty",
			DocumentName:   "deal.pdf",
			SearchedAt:     at,
			Pages:          []int{},
			SampleContexts: []string{},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"csv", FormatCSV, false},
		{"MD", FormatMarkdown, false},
		{" json ", FormatJSON, false},
		{"srt", "", true},
		{"xlsx", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				require.True(t, errors.Is(err, ErrInvalidFormat))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestFilenameAndContentType(t *testing.T) {
	require.Equal(t, "resultados_busqueda.csv", Filename(FormatCSV))
	require.Equal(t, "resultados_busqueda.md", Filename(FormatMarkdown))
	require.Equal(t, "resultados_busqueda.json", Filename(FormatJSON))
	require.Equal(t, "text/csv; charset=utf-8", FormatCSV.ContentType())
	require.Equal(t, "application/json; charset=utf-8", FormatJSON.ContentType())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRows()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, Header, records[0])
	require.Equal(t, []string{
		"contract", "Yes", "deal.pdf", "2025-06-01 14:05:09", "1,3", "4",
		`the contract, signed | a "quoted" contract`,
	}, records[1])
	require.Equal(t, []string{
		"penalty", "No", "deal.pdf", "2025-06-01 14:05:09", "N/A", "0", "N/A",
	}, records[2])
}

func TestWriteCSV_HeaderOnlyForNoRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	require.Equal(t, strings.Join(Header, ",")+"\n", buf.String())
}

func TestWriteMarkdown(t *testing.T) {
	rows := sampleRows()
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, "deal.pdf", rows, search.Summarize(rows)))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "# Search results: deal.pdf\n"))
	require.Contains(t, out, "| Searched | 2025-06-01 14:05:09 |")
	require.Contains(t, out, "| Found | 1 |")
	require.Contains(t, out, "| Not found | 1 |")
	require.Contains(t, out, `| contract | Yes | 1,3 | 4 | the contract, signed \| a "quoted" contract |`)
	require.Contains(t, out, "| penalty | No | N/A | 0 | N/A |")
}

func TestWriteMarkdown_EscapesDocumentName(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, "a|b\nc.pdf", nil, search.Totals{}))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "# Search results: a\\|b c.pdf\n"), out)
	require.Contains(t, out, "| Document | a\\|b c.pdf |")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleRows()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	require.Equal(t, "contract", decoded[0]["term"])
	require.Equal(t, []any{}, decoded[1]["pages"])
}

func TestMarkdownCell(t *testing.T) {
	require.Equal(t, `a \| b c`, markdownCell("a | b\r\nc"))
}
