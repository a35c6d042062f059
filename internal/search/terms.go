package search

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// ErrInvalidEncoding is returned when a term list is not valid UTF-8 text.
var ErrInvalidEncoding = errors.New("term list is not valid UTF-8")

// ParseTerms reads a newline-delimited term list. The whole list is rejected
// if any byte sequence is not valid UTF-8.
func ParseTerms(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read term list: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}
	return ParseTermsText(string(data)), nil
}

// ParseTermsText splits s on newlines, trims each line and drops blank ones.
// Order and duplicates are kept; case is left alone.
func ParseTermsText(s string) []string {
	var terms []string
	for _, line := range strings.Split(s, "\n") {
		if term := strings.TrimSpace(line); term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}
