// Command termsearch searches a local document for a list of terms and writes
// the report as CSV.
//
//	termsearch -doc report.pdf -terms terms.txt
//	termsearch -doc notes.md -term invoice -term "due date" -out -
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Shimizu-Technology/pdf-term-search/internal/report"
	"github.com/Shimizu-Technology/pdf-term-search/internal/search"
	"github.com/Shimizu-Technology/pdf-term-search/internal/services/termsearch"
)

// termFlags collects repeated -term values.
type termFlags []string

func (f *termFlags) String() string { return strings.Join(*f, ",") }

func (f *termFlags) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func main() {
	log.SetFlags(0)
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("❌ %v", err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("termsearch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		docPath   = fs.String("doc", "", "document to search (.pdf, .docx, .md, .html, .txt)")
		termsPath = fs.String("terms", "", "file with one search term per line; wins over -term")
		out       = fs.String("out", report.CSVFilename, `CSV output path, "-" for stdout`)
		terms     termFlags
	)
	fs.Var(&terms, "term", "search term (repeatable)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *docPath == "" {
		fs.Usage()
		return errors.New("-doc is required")
	}

	data, err := os.ReadFile(*docPath)
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}

	termList := []string(terms)
	if *termsPath != "" {
		termList, err = loadTerms(*termsPath)
		if err != nil {
			return err
		}
	}

	outcome, err := termsearch.New(time.Local).Run(termsearch.Request{
		DocumentName: filepath.Base(*docPath),
		Document:     data,
		Terms:        termList,
	})
	if err != nil {
		return err
	}

	for _, page := range outcome.Result.FailedPages {
		fmt.Fprintf(stderr, "⚠️  page %d could not be extracted, searched as empty\n", page)
	}

	if err := writeCSV(*out, stdout, outcome.Rows); err != nil {
		return err
	}

	fmt.Fprintf(stderr, "📊 %d terms, %d found, %d not found (%d pages)\n",
		outcome.Totals.Total, outcome.Totals.Found, outcome.Totals.NotFound, outcome.Result.PageCount)
	if *out != "-" {
		fmt.Fprintf(stderr, "✅ Wrote %s\n", *out)
	}
	return nil
}

func loadTerms(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening terms file: %w", err)
	}
	defer f.Close()

	terms, err := search.ParseTerms(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return terms, nil
}

func writeCSV(path string, stdout io.Writer, rows []search.SummaryRow) error {
	if path == "-" {
		return report.WriteCSV(stdout, rows)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := report.WriteCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
