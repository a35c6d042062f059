package source

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFDocument extracts text page by page with the ledongthuc/pdf library.
// It's a pure Go implementation, so no CGO or poppler is needed.
type PDFDocument struct {
	reader *pdf.Reader
}

// ValidatePDF checks the "%PDF-" magic bytes.
func ValidatePDF(data []byte) bool {
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}

// OpenPDF parses the PDF cross-reference structure. Page text is extracted
// lazily by PageText, so a broken page only affects itself.
func OpenPDF(data []byte) (doc *PDFDocument, err error) {
	if !ValidatePDF(data) {
		return nil, malformed("pdf", errors.New("missing %PDF- header"))
	}

	// The parser panics on some corrupt inputs instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, malformed("pdf", fmt.Errorf("parser panic: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, malformed("pdf", err)
	}

	return &PDFDocument{reader: reader}, nil
}

// NumPages returns the page count from the page tree.
func (d *PDFDocument) NumPages() int {
	return d.reader.NumPage()
}

// PageText returns the plain text of one page. Image-only or empty pages
// yield "" without an error.
func (d *PDFDocument) PageText(page int) (text string, err error) {
	if page < 1 || page > d.NumPages() {
		return "", fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, page, d.NumPages())
	}

	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("page %d: extraction panic: %v", page, r)
		}
	}()

	p := d.reader.Page(page)
	if p.V.IsNull() {
		return "", nil
	}

	text, err = p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("page %d: %w", page, err)
	}
	return text, nil
}
