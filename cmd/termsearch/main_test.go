package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Shimizu-Technology/pdf-term-search/internal/search"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_Stdout(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "notes.txt", "alpha beta\fgamma alpha")

	var stdout, stderr bytes.Buffer
	err := run([]string{"-doc", doc, "-term", "alpha", "-term", "zeta", "-out", "-"}, &stdout, &stderr)
	require.NoError(t, err)

	records, err := csv.NewReader(&stdout).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, []string{"alpha", "Yes", "notes.txt"}, records[1][:3])
	require.Equal(t, "1,2", records[1][4])
	require.Equal(t, "2", records[1][5])
	require.Equal(t, "No", records[2][1])
	require.Contains(t, stderr.String(), "2 terms, 1 found, 1 not found (2 pages)")
}

func TestRun_TermsFileWinsAndWritesFile(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "notes.txt", "alpha beta")
	terms := writeFile(t, dir, "terms.txt", "beta\n\n")
	out := filepath.Join(dir, "out.csv")

	var stdout, stderr bytes.Buffer
	err := run([]string{"-doc", doc, "-terms", terms, "-term", "alpha", "-out", out}, &stdout, &stderr)
	require.NoError(t, err)
	require.Empty(t, stdout.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "beta", records[1][0])
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "notes.txt", "alpha")
	badTerms := writeFile(t, dir, "terms.txt", string([]byte{0xff, 0xfe}))

	tests := []struct {
		name string
		args []string
		err  error
	}{
		{"MissingDoc", []string{"-term", "a"}, nil},
		{"NoTerms", []string{"-doc", doc, "-out", "-"}, search.ErrNoTerms},
		{"BadTermsEncoding", []string{"-doc", doc, "-terms", badTerms}, search.ErrInvalidEncoding},
		{"UnreadableDoc", []string{"-doc", filepath.Join(dir, "missing.pdf")}, os.ErrNotExist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(tt.args, &stdout, &stderr)
			require.Error(t, err)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
			}
		})
	}
}
