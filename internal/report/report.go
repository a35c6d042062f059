// Package report writes search summaries as downloadable files.
//
// Supported formats:
//   - csv : one row per term, the format spreadsheet users expect
//   - md  : Markdown with a metadata table and a results table
//   - json: the full search record
//
// Go Pattern: Each format is its own writer taking an io.Writer. Handlers
// write into a buffer and hand it to c.Data; the CLI writes straight to a
// file or stdout.
package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Shimizu-Technology/pdf-term-search/internal/search"
)

// CSVFilename is the download name of the CSV report.
const CSVFilename = "resultados_busqueda.csv"

// Format is an export format accepted by the export endpoints.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
)

var ErrInvalidFormat = errors.New("supported formats: csv, md, json")

// Header is the CSV column row.
var Header = []string{
	"Term",
	"Found",
	"Document",
	"Searched_At",
	"Pages_Found",
	"Total_Occurrences",
	"Example_Contexts",
}

// ParseFormat validates a format query value. Empty means csv.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatMarkdown, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w (got %q)", ErrInvalidFormat, s)
	}
}

// ContentType is the MIME type sent with a download.
func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatJSON:
		return "application/json; charset=utf-8"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Filename is the attachment name for a report in this format.
func Filename(f Format) string {
	if f == FormatCSV || f == "" {
		return CSVFilename
	}
	return "resultados_busqueda." + string(f)
}

// WriteCSV writes the header and one record per row.
func WriteCSV(w io.Writer, rows []search.SummaryRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Term,
			row.FoundLabel(),
			row.DocumentName,
			row.TimestampLabel(),
			row.PagesLabel(),
			strconv.Itoa(row.TotalOccurrences),
			row.ContextsLabel(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMarkdown writes a metadata table followed by the results table.
func WriteMarkdown(w io.Writer, documentName string, rows []search.SummaryRow, totals search.Totals) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Search results: %s\n\n", markdownCell(documentName)))
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Document | %s |\n", markdownCell(documentName)))
	if len(rows) > 0 {
		sb.WriteString(fmt.Sprintf("| Searched | %s |\n", rows[0].TimestampLabel()))
	}
	sb.WriteString(fmt.Sprintf("| Terms | %d |\n", totals.Total))
	sb.WriteString(fmt.Sprintf("| Found | %d |\n", totals.Found))
	sb.WriteString(fmt.Sprintf("| Not found | %d |\n", totals.NotFound))
	sb.WriteString("\n---\n\n")
	sb.WriteString("## Results\n\n")
	sb.WriteString("| Term | Found | Pages | Occurrences | Examples |\n")
	sb.WriteString("|------|-------|-------|-------------|----------|\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %s |\n",
			markdownCell(row.Term),
			row.FoundLabel(),
			row.PagesLabel(),
			row.TotalOccurrences,
			markdownCell(row.ContextsLabel()),
		))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// markdownCell escapes pipes and flattens newlines so a value stays in its cell.
func markdownCell(s string) string {
	replacer := strings.NewReplacer("|", `\|`, "\r", "", "\n", " ")
	return replacer.Replace(s)
}
