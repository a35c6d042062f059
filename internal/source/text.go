package source

import "strings"

// PageBreak separates pages in plain-text documents. pdftotext and most
// print-to-text tools emit a form feed between pages.
const PageBreak = "\f"

// OpenText splits plain text on form feeds. Text without a form feed is one page.
func OpenText(data []byte) Document {
	return pages(strings.Split(string(data), PageBreak))
}
