// Package search implements the term search over extracted page text:
// matching terms against one page, aggregating matches across a document,
// and folding the aggregate into per-term summary rows.
//
// Everything in this package is a pure function of its inputs. There is no
// package-level state, so concurrent searches never share anything.
package search

import "strings"

// ContextRadius is the number of tokens kept on each side of a matching token.
const ContextRadius = 5

// MatchPage finds every token on one page that contains one of the terms.
//
// Matching is a case-insensitive substring test against whitespace-delimited
// tokens, so "cat" matches both "cat" and "category". For each hit a context
// window of up to 2*ContextRadius+1 tokens is captured, clipped at the page
// edges. The result is keyed by the lower-cased term; terms without hits on
// this page have no key. Duplicate terms (after lower-casing) are matched once.
func MatchPage(pageText string, terms []string) map[string][]string {
	hits := make(map[string][]string)
	if pageText == "" {
		return hits
	}

	lowered := strings.ToLower(pageText)
	tokens := strings.Fields(lowered)

	seen := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		needle := strings.ToLower(term)
		if needle == "" {
			continue
		}
		if _, ok := seen[needle]; ok {
			continue
		}
		seen[needle] = struct{}{}

		// Cheap page-level check before walking the tokens.
		if !strings.Contains(lowered, needle) {
			continue
		}

		var windows []string
		for i, token := range tokens {
			if strings.Contains(token, needle) {
				windows = append(windows, contextWindow(tokens, i))
			}
		}
		if len(windows) > 0 {
			hits[needle] = windows
		}
	}

	return hits
}

// contextWindow joins tokens [i-ContextRadius, i+ContextRadius] clipped to the slice.
func contextWindow(tokens []string, i int) string {
	start := max(0, i-ContextRadius)
	end := min(len(tokens), i+ContextRadius+1)
	return strings.Join(tokens[start:end], " ")
}
