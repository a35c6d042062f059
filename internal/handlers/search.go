// search.go handles the term search endpoints.
//
//	POST   /api/v1/searches      Upload a document and terms, run the search
//	GET    /api/v1/searches      List recent searches for the caller
//	GET    /api/v1/searches/:id  Get one search
//	DELETE /api/v1/searches/:id  Delete a search
package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"github.com/Shimizu-Technology/pdf-term-search/internal/database"
	"github.com/Shimizu-Technology/pdf-term-search/internal/middleware"
	"github.com/Shimizu-Technology/pdf-term-search/internal/models"
	"github.com/Shimizu-Technology/pdf-term-search/internal/report"
	"github.com/Shimizu-Technology/pdf-term-search/internal/search"
	"github.com/Shimizu-Technology/pdf-term-search/internal/services/termsearch"
	"github.com/Shimizu-Technology/pdf-term-search/internal/source"
)

// errUploadTooLarge marks a body rejected by http.MaxBytesReader.
var errUploadTooLarge = errors.New("upload too large")

// CreateSearch runs a term search over an uploaded document.
// POST /api/v1/searches
//
// Multipart fields:
//   - document   (file, required): .pdf, .docx, .md, .html or .txt
//   - terms_file (file, optional): one term per line, UTF-8; wins over "terms"
//   - terms      (text, optional): one term per line
//
// With ?format=csv|md|json the report is returned as a download. Without it
// the search record is returned as JSON with 201 Created.
func (h *Handler) CreateSearch(c *gin.Context) {
	// Validate the download format before doing any work
	var format report.Format
	if q := c.Query("format"); q != "" {
		f, err := report.ParseFormat(q)
		if err != nil {
			abort(c, http.StatusBadRequest, "invalid_format", "Supported formats: csv, md, json")
			return
		}
		format = f
	}

	if h.MaxUploadBytes > 0 {
		if c.Request.ContentLength > h.MaxUploadBytes {
			h.abortTooLarge(c)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}

	filename, data, err := readUpload(c, "document")
	if err != nil {
		if errors.Is(err, errUploadTooLarge) {
			h.abortTooLarge(c)
			return
		}
		abort(c, http.StatusBadRequest, "missing_document",
			"No document provided. Upload a file with the field name 'document'.")
		return
	}

	if !source.IsSupported(filename) {
		abort(c, http.StatusBadRequest, "unsupported_format",
			fmt.Sprintf("Unsupported file format '%s'. Accepted: .pdf, .docx, .md, .html, .txt", filepath.Ext(filename)))
		return
	}

	terms, err := readTerms(c)
	if err != nil {
		switch {
		case errors.Is(err, errUploadTooLarge):
			h.abortTooLarge(c)
		case errors.Is(err, search.ErrInvalidEncoding):
			abort(c, http.StatusBadRequest, "invalid_terms_encoding", "The terms file must be UTF-8 text")
		default:
			abort(c, http.StatusBadRequest, "invalid_request", "Failed to read the terms file")
		}
		return
	}

	outcome, err := h.Searcher.Run(termsearch.Request{
		DocumentName: filename,
		Document:     data,
		Terms:        terms,
	})
	if err != nil {
		h.abortSearchError(c, filename, err)
		return
	}

	for _, page := range outcome.Result.FailedPages {
		log.Printf("⚠️  %s: page %d could not be extracted, searched as empty", filename, page)
	}

	rec := newSearchRecord(c, outcome)
	saved := true
	if err := h.Store.CreateSearch(c.Request.Context(), rec); err != nil {
		// Still return the result even if the save fails
		log.Printf("❌ Failed to save search record for %s: %v", filename, err)
		rec.ID = ""
		saved = false
	}

	if format != "" {
		writeReport(c, format, rec)
		return
	}

	c.JSON(http.StatusCreated, models.SearchResponse{
		SearchRecord: *rec,
		Totals:       outcome.Totals,
		Saved:        saved,
	})
}

// ListSearches returns recent searches made by the caller.
// GET /api/v1/searches
func (h *Handler) ListSearches(c *gin.Context) {
	params := models.SearchListParams{Limit: 50}
	params.APIKeyID, params.UserID = callerIDs(c)

	searches, err := h.Store.ListSearches(c.Request.Context(), params)
	if err != nil {
		log.Printf("Failed to list searches: %v", err)
		abort(c, http.StatusInternalServerError, "database_error", "Failed to list searches")
		return
	}

	if searches == nil {
		searches = []models.SearchRecord{}
	}

	c.JSON(http.StatusOK, searches)
}

// GetSearch returns a single search record.
// GET /api/v1/searches/:id
func (h *Handler) GetSearch(c *gin.Context) {
	rec, ok := h.loadOwnedSearch(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, models.SearchResponse{
		SearchRecord: *rec,
		Totals:       rec.Totals(),
		Saved:        true,
	})
}

// DeleteSearch removes a search record.
// DELETE /api/v1/searches/:id
func (h *Handler) DeleteSearch(c *gin.Context) {
	rec, ok := h.loadOwnedSearch(c)
	if !ok {
		return
	}

	if err := h.Store.DeleteSearch(c.Request.Context(), rec.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			abort(c, http.StatusNotFound, "not_found", "Search not found")
			return
		}
		log.Printf("Failed to delete search %s: %v", rec.ID, err)
		abort(c, http.StatusInternalServerError, "database_error", "Failed to delete search")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Search deleted"})
}

// loadOwnedSearch fetches :id and checks the caller owns it. Records owned by
// someone else are reported as not found so IDs can't be probed.
func (h *Handler) loadOwnedSearch(c *gin.Context) (*models.SearchRecord, bool) {
	rec, err := h.Store.GetSearch(c.Request.Context(), c.Param("id"))
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			log.Printf("Failed to load search %s: %v", c.Param("id"), err)
		}
		abort(c, http.StatusNotFound, "not_found", "Search not found")
		return nil, false
	}

	if !ownsSearch(c, rec) {
		abort(c, http.StatusNotFound, "not_found", "Search not found")
		return nil, false
	}

	return rec, true
}

func (h *Handler) abortTooLarge(c *gin.Context) {
	abort(c, http.StatusRequestEntityTooLarge, "file_too_large",
		fmt.Sprintf("Upload exceeds the %dMB limit", h.MaxUploadBytes>>20))
}

// abortSearchError maps search failures onto HTTP errors.
func (h *Handler) abortSearchError(c *gin.Context, filename string, err error) {
	switch {
	case errors.Is(err, search.ErrNoDocument):
		abort(c, http.StatusBadRequest, "missing_document", "The uploaded document is empty")
	case errors.Is(err, search.ErrNoTerms), errors.Is(err, search.ErrEmptyTerm):
		abort(c, http.StatusBadRequest, "missing_terms",
			"Provide at least one search term, either typed in 'terms' or as a 'terms_file'")
	case errors.Is(err, source.ErrUnsupportedFormat):
		abort(c, http.StatusBadRequest, "unsupported_format", err.Error())
	case errors.Is(err, source.ErrMalformedDocument), errors.Is(err, source.ErrEmptyDocument):
		log.Printf("⚠️  Could not open %s: %v", filename, err)
		abort(c, http.StatusUnprocessableEntity, "malformed_document",
			"The document could not be read. Check that it is a valid, unencrypted file.")
	default:
		log.Printf("❌ Search failed for %s: %v", filename, err)
		abort(c, http.StatusInternalServerError, "search_failed", "The search could not be completed")
	}
}

// newSearchRecord builds the persisted form of a search, owned by the caller.
func newSearchRecord(c *gin.Context, outcome *termsearch.Outcome) *models.SearchRecord {
	failed := make(pq.Int64Array, 0, len(outcome.Result.FailedPages))
	for _, p := range outcome.Result.FailedPages {
		failed = append(failed, int64(p))
	}

	rec := &models.SearchRecord{
		DocumentName: outcome.DocumentName,
		PageCount:    outcome.Result.PageCount,
		FailedPages:  failed,
		TermCount:    outcome.Totals.Total,
		FoundCount:   outcome.Totals.Found,
		Rows:         outcome.Rows,
		SearchedAt:   outcome.SearchedAt,
	}
	rec.APIKeyID, rec.UserID = callerIDs(c)
	return rec
}

// callerIDs returns the API key and user the request is authenticated as.
// A key linked to a user account carries that user too.
func callerIDs(c *gin.Context) (apiKeyID, userID *string) {
	if apiKey := middleware.GetAPIKey(c); apiKey != nil {
		return &apiKey.ID, apiKey.UserID
	}
	if user := middleware.GetUser(c); user != nil {
		return nil, &user.ID
	}
	return nil, nil
}

func ownsSearch(c *gin.Context, rec *models.SearchRecord) bool {
	var caller models.SearchListParams
	caller.APIKeyID, caller.UserID = callerIDs(c)
	return caller.Owns(rec)
}

// readUpload reads a whole multipart file field into memory. The parsers
// need random access, and uploads are capped by MaxBytesReader.
func readUpload(c *gin.Context, field string) (string, []byte, error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		return "", nil, uploadError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, uploadError(err)
	}
	return filepath.Base(header.Filename), data, nil
}

// readTerms applies the term input policy: an uploaded terms file wins over
// typed terms, even when the file yields no terms.
func readTerms(c *gin.Context) ([]string, error) {
	file, _, err := c.Request.FormFile("terms_file")
	switch {
	case err == nil:
		defer file.Close()
		return search.ParseTerms(file)
	case !errors.Is(err, http.ErrMissingFile):
		return nil, uploadError(err)
	}

	return search.ParseTermsText(c.PostForm("terms")), nil
}

// uploadError tags body-size failures so callers can answer 413.
func uploadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge) ||
		strings.Contains(err.Error(), "request body too large") {
		return fmt.Errorf("%w: %v", errUploadTooLarge, err)
	}
	return err
}
