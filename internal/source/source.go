// Package source turns uploaded document bytes into page-addressable plain text.
//
// Every format is exposed through the same Document interface: an ordered
// sequence of pages, numbered from 1, each yielding plain text. Formats without
// real pagination (DOCX, HTML) are a single page; Markdown and plain text use
// explicit separators.
package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrMalformedDocument = errors.New("malformed document")
	ErrEmptyDocument     = errors.New("document is empty")
	ErrPageOutOfRange    = errors.New("page out of range")
)

// Document is an ordered sequence of pages that each yield plain text.
type Document interface {
	NumPages() int
	PageText(page int) (string, error)
}

// SupportedExtensions lists the file extensions Open understands.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".docx":     true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".txt":      true,
}

// IsSupported checks the extension of filename against SupportedExtensions.
func IsSupported(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Open parses data according to the extension of filename.
// Parse failures are wrapped with ErrMalformedDocument.
func Open(filename string, data []byte) (Document, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		doc, err := OpenPDF(data)
		if err != nil {
			return nil, err
		}
		return doc, nil
	case ".docx":
		return OpenDOCX(data)
	case ".md", ".markdown":
		return OpenMarkdown(data), nil
	case ".html", ".htm":
		return OpenHTML(data)
	case ".txt":
		return OpenText(data), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// pages is a Document whose text was fully extracted up front.
type pages []string

func (p pages) NumPages() int { return len(p) }

func (p pages) PageText(page int) (string, error) {
	if page < 1 || page > len(p) {
		return "", fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, page, len(p))
	}
	return p[page-1], nil
}

func malformed(format string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformedDocument, format, err)
}
