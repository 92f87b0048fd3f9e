package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"calculator/internal/session"
)

// header is the first CSV row.
var header = []string{"expression", "result"}

// WriteCSV writes history entries, most recent first, as CSV rows.
func WriteCSV(w io.Writer, entries []session.Entry) error {
	out := make([][]string, 0, len(entries)+1)
	out = append(out, header)
	for _, e := range entries {
		out = append(out, []string{e.Expression, e.Result})
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(out); err != nil {
		return fmt.Errorf("error writing CSV: %w", err)
	}
	return nil
}

// SaveCSV exports history to filename, adding a .csv extension when the
// name has none. It returns the path written.
func SaveCSV(entries []session.Entry, filename string) (string, error) {
	if filepath.Ext(filename) == "" {
		filename += ".csv"
	}
	f, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	if err := WriteCSV(f, entries); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return filename, nil
}
