package search

import (
	"errors"
	"strings"
)

var (
	ErrNoDocument = errors.New("no document supplied")
	ErrNoTerms    = errors.New("no search terms supplied")
	ErrEmptyTerm  = errors.New("search terms must not be blank")
)

// Document is an ordered sequence of pages that can each yield plain text.
// Pages are numbered from 1.
type Document interface {
	NumPages() int
	PageText(page int) (string, error)
}

// PageHits holds the context windows found for one term on one page,
// in left-to-right token order.
type PageHits struct {
	Page     int      `json:"page"`
	Contexts []string `json:"contexts"`
}

// TermHits is the per-page match list for one input term. Pages are in
// ascending order. An empty Pages slice means the term was not found.
type TermHits struct {
	Term  string     `json:"term"`
	Pages []PageHits `json:"pages"`
}

// Found reports whether the term matched on at least one page.
func (t TermHits) Found() bool {
	return len(t.Pages) > 0
}

// Occurrences is the total number of matching tokens across all pages.
func (t TermHits) Occurrences() int {
	total := 0
	for _, p := range t.Pages {
		total += len(p.Contexts)
	}
	return total
}

// Result is the outcome of searching one document for a list of terms.
// Terms has exactly one entry per input term, in input order, duplicates included.
type Result struct {
	Terms       []TermHits `json:"terms"`
	PageCount   int        `json:"page_count"`
	FailedPages []int      `json:"failed_pages,omitempty"`
}

// Lookup returns the first entry for term (exact, case-sensitive as supplied).
func (r *Result) Lookup(term string) (TermHits, bool) {
	for _, t := range r.Terms {
		if t.Term == term {
			return t, true
		}
	}
	return TermHits{}, false
}

// Aggregate searches every page of doc for every term.
//
// Pages are visited in ascending order and MatchPage runs once per page with
// the whole term set. A page whose text cannot be extracted is searched as
// empty text and recorded in FailedPages instead of failing the search.
func Aggregate(doc Document, terms []string) (*Result, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}
	if len(terms) == 0 {
		return nil, ErrNoTerms
	}
	for _, term := range terms {
		if strings.TrimSpace(term) == "" {
			return nil, ErrEmptyTerm
		}
	}

	result := &Result{
		Terms:     make([]TermHits, len(terms)),
		PageCount: doc.NumPages(),
	}
	for i, term := range terms {
		result.Terms[i] = TermHits{Term: term, Pages: []PageHits{}}
	}

	for page := 1; page <= result.PageCount; page++ {
		text, err := doc.PageText(page)
		if err != nil {
			result.FailedPages = append(result.FailedPages, page)
			text = ""
		}

		hits := MatchPage(text, terms)
		if len(hits) == 0 {
			continue
		}

		for i := range result.Terms {
			windows, ok := hits[strings.ToLower(result.Terms[i].Term)]
			if !ok {
				continue
			}
			// Each entry gets its own copy so callers can't alias duplicates.
			contexts := make([]string, len(windows))
			copy(contexts, windows)
			result.Terms[i].Pages = append(result.Terms[i].Pages, PageHits{Page: page, Contexts: contexts})
		}
	}

	return result, nil
}
