package search

import (
	"strconv"
	"strings"
	"time"
)

const (
	// MaxSamples caps the example contexts per page and per row.
	MaxSamples = 3

	// NotFound is rendered in place of empty page and context lists.
	NotFound = "N/A"

	// SampleSeparator joins example contexts in a rendered row.
	SampleSeparator = " | "

	// TimestampLayout is the human-readable search timestamp (YYYY-MM-DD HH:MM:SS).
	TimestampLayout = "2006-01-02 15:04:05"
)

// SummaryRow is the per-term line of a search report.
type SummaryRow struct {
	Term             string    `json:"term"`
	Found            bool      `json:"found"`
	DocumentName     string    `json:"document_name"`
	SearchedAt       time.Time `json:"searched_at"`
	Pages            []int     `json:"pages"`
	TotalOccurrences int       `json:"total_occurrences"`
	SampleContexts   []string  `json:"sample_contexts"`
}

// Totals summarizes a report: Found + NotFound == Total.
type Totals struct {
	Total    int `json:"total"`
	Found    int `json:"found"`
	NotFound int `json:"not_found"`
}

// BuildReport turns a search result into one summary row per term, in the
// result's term order.
func BuildReport(result *Result, documentName string, searchedAt time.Time) []SummaryRow {
	if result == nil {
		return nil
	}

	rows := make([]SummaryRow, 0, len(result.Terms))
	for _, t := range result.Terms {
		row := SummaryRow{
			Term:             t.Term,
			Found:            t.Found(),
			DocumentName:     documentName,
			SearchedAt:       searchedAt,
			Pages:            []int{},
			TotalOccurrences: t.Occurrences(),
			SampleContexts:   sampleContexts(t.Pages),
		}
		for _, p := range t.Pages {
			row.Pages = append(row.Pages, p.Page)
		}
		rows = append(rows, row)
	}

	return rows
}

// sampleContexts takes at most MaxSamples windows from each page, in page
// order, then keeps at most MaxSamples of the concatenation. Both caps matter:
// the per-page cap decides which windows are eligible at all.
func sampleContexts(pages []PageHits) []string {
	var samples []string
	for _, p := range pages {
		samples = append(samples, p.Contexts[:min(len(p.Contexts), MaxSamples)]...)
	}
	if len(samples) > MaxSamples {
		samples = samples[:MaxSamples]
	}
	if samples == nil {
		samples = []string{}
	}
	return samples
}

// Summarize counts found and not-found rows.
func Summarize(rows []SummaryRow) Totals {
	totals := Totals{Total: len(rows)}
	for _, row := range rows {
		if row.Found {
			totals.Found++
		}
	}
	totals.NotFound = totals.Total - totals.Found
	return totals
}

// FoundLabel renders the found flag.
func (r SummaryRow) FoundLabel() string {
	if r.Found {
		return "Yes"
	}
	return "No"
}

// PagesLabel renders the pages as "1,3" or NotFound.
func (r SummaryRow) PagesLabel() string {
	if len(r.Pages) == 0 {
		return NotFound
	}
	parts := make([]string, len(r.Pages))
	for i, p := range r.Pages {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}

// ContextsLabel renders the sample contexts joined by SampleSeparator, or NotFound.
func (r SummaryRow) ContextsLabel() string {
	if len(r.SampleContexts) == 0 {
		return NotFound
	}
	return strings.Join(r.SampleContexts, SampleSeparator)
}

// TimestampLabel renders SearchedAt with TimestampLayout in its own location.
func (r SummaryRow) TimestampLabel() string {
	return r.SearchedAt.Format(TimestampLayout)
}
