// Package termsearch runs one search end to end: it opens the uploaded
// document, aggregates matches for every term and builds the summary rows.
//
// It is the thin layer the HTTP handlers and the CLI share. Input guards run
// before anything touches the document, so a request without terms never
// pays for PDF parsing.
package termsearch

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Shimizu-Technology/pdf-term-search/internal/search"
	"github.com/Shimizu-Technology/pdf-term-search/internal/source"
)

var ErrNoDocument = search.ErrNoDocument

// Request is everything one search needs.
type Request struct {
	DocumentName string
	Document     []byte
	Terms        []string
}

// Outcome bundles the raw result with the report built from it.
type Outcome struct {
	DocumentName string
	SearchedAt   time.Time
	Result       *search.Result
	Rows         []search.SummaryRow
	Totals       search.Totals
}

// OpenFunc parses document bytes into pages. source.Open in production.
type OpenFunc func(filename string, data []byte) (source.Document, error)

// Service runs searches. The zero value is not usable; call New.
type Service struct {
	open     OpenFunc
	now      func() time.Time
	location *time.Location
}

// New creates a Service that stamps reports in the given zone.
// A nil location means time.Local.
func New(location *time.Location) *Service {
	if location == nil {
		location = time.Local
	}
	return &Service{
		open:     source.Open,
		now:      time.Now,
		location: location,
	}
}

// Run validates the request, opens the document and produces the report.
func (s *Service) Run(req Request) (*Outcome, error) {
	if len(req.Document) == 0 || strings.TrimSpace(req.DocumentName) == "" {
		return nil, ErrNoDocument
	}
	if len(req.Terms) == 0 {
		return nil, search.ErrNoTerms
	}

	doc, err := s.open(req.DocumentName, req.Document)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", req.DocumentName, err)
	}

	result, err := search.Aggregate(doc, req.Terms)
	if err != nil {
		return nil, err
	}

	searchedAt := s.now().In(s.location)
	rows := search.BuildReport(result, req.DocumentName, searchedAt)

	return &Outcome{
		DocumentName: req.DocumentName,
		SearchedAt:   searchedAt,
		Result:       result,
		Rows:         rows,
		Totals:       search.Summarize(rows),
	}, nil
}

// IsInputError reports whether err was caused by the caller's input rather
// than by the document itself.
func IsInputError(err error) bool {
	return errors.Is(err, search.ErrNoDocument) ||
		errors.Is(err, search.ErrNoTerms) ||
		errors.Is(err, search.ErrEmptyTerm) ||
		errors.Is(err, source.ErrUnsupportedFormat)
}
