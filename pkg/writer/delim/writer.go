// Package delim writes delimited (CSV/TSV) tables.
package delim

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	rdelim "github.com/ChrisMcGann/pepcontext/pkg/reader/delim"
)

// Writer handles writing rows to a delimited table file
type Writer struct {
	file       *os.File
	csv        *csv.Writer
	outputPath string
	rows       int
}

// Create truncates (or creates) path and writes the header row.
// comma == 0 detects the delimiter from the file name.
func Create(path string, header []string, comma rune) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	if comma == 0 {
		comma = rdelim.DelimiterFor(path)
	}

	w := &Writer{file: f, csv: csv.NewWriter(f), outputPath: path}
	w.csv.Comma = comma
	if err := w.csv.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	return w, nil
}

// Write appends one row. Rows are buffered until Flush.
func (w *Writer) Write(fields []string) error {
	if err := w.csv.Write(fields); err != nil {
		return fmt.Errorf("failed to write row %d: %w", w.rows+1, err)
	}
	w.rows++
	return nil
}

// Flush writes buffered rows to disk. Rows flushed before a later failure
// remain in the file.
func (w *Writer) Flush() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", w.outputPath, err)
	}
	return nil
}

// Rows returns the number of data rows written.
func (w *Writer) Rows() int {
	return w.rows
}

// Path returns the output path.
func (w *Writer) Path() string {
	return w.outputPath
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	if w.file == nil {
		return nil
	}
	ferr := w.Flush()
	cerr := w.file.Close()
	w.file = nil
	if ferr != nil {
		return ferr
	}
	if cerr != nil {
		return fmt.Errorf("failed to close %s: %w", w.outputPath, cerr)
	}
	return nil
}
