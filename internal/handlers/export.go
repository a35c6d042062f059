// export.go handles report downloads in multiple formats.
//
// Supported formats:
//   - csv : resultados_busqueda.csv, one row per term
//   - md  : Markdown with a metadata table
//   - json: the full search record
package handlers

import (
	"bytes"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-term-search/internal/models"
	"github.com/Shimizu-Technology/pdf-term-search/internal/report"
)

// ExportSearch downloads a stored search report.
// GET /api/v1/searches/:id/export?format=csv|md|json
//
// Response headers are set for file download:
//   - Content-Type: appropriate MIME type
//   - Content-Disposition: attachment with filename
func (h *Handler) ExportSearch(c *gin.Context) {
	// Validate format before doing any database work
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		abort(c, http.StatusBadRequest, "invalid_format", "Supported formats: csv, md, json")
		return
	}

	rec, ok := h.loadOwnedSearch(c)
	if !ok {
		return
	}

	writeReport(c, format, rec)
}

// writeReport renders rec in the given format and sends it as an attachment.
// Go Pattern: Render into a buffer first so a failed write becomes a clean
// 500 instead of a half-sent file.
func writeReport(c *gin.Context, format report.Format, rec *models.SearchRecord) {
	var buf bytes.Buffer
	var err error

	switch format {
	case report.FormatMarkdown:
		err = report.WriteMarkdown(&buf, rec.DocumentName, rec.Rows, rec.Totals())
	case report.FormatJSON:
		err = report.WriteJSON(&buf, models.SearchResponse{
			SearchRecord: *rec,
			Totals:       rec.Totals(),
			Saved:        rec.ID != "",
		})
	default:
		err = report.WriteCSV(&buf, rec.Rows)
	}
	if err != nil {
		log.Printf("❌ Failed to render %s report: %v", format, err)
		abort(c, http.StatusInternalServerError, "export_error", "Failed to generate the report")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.Filename(format)))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
