// Package delim provides streaming readers for delimited (CSV/TSV) tables
// with a header row.
package delim

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMissingColumn is returned when a required column is absent from the header.
var ErrMissingColumn = errors.New("missing column")

// Reader provides streaming access to a delimited table
type Reader struct {
	csv     *csv.Reader
	closer  io.Closer
	header  []string
	columns map[string]int
	fields  []string
	lineNum int
	err     error
}

// NewReader creates a Reader over r and consumes the header row.
func NewReader(r io.Reader, comma rune) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty table: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	rd := &Reader{
		csv:     cr,
		header:  header,
		columns: make(map[string]int, len(header)),
		lineNum: 1,
	}
	for i, name := range header {
		name = strings.TrimSpace(name)
		header[i] = name
		if _, dup := rd.columns[name]; !dup {
			rd.columns[name] = i
		}
	}
	return rd, nil
}

// Open opens a table file. comma == 0 detects the delimiter from the name.
func Open(path string, comma rune) (*Reader, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if comma == 0 {
		comma = DelimiterFor(path)
	}
	r, err := NewReader(f, comma)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.closer = f
	return r, nil
}

// Close releases the underlying file, if the Reader owns one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Header returns the column names.
func (r *Reader) Header() []string {
	return r.header
}

// Column returns the index of a named column.
func (r *Reader) Column(name string) (int, bool) {
	i, ok := r.columns[name]
	return i, ok
}

// Require returns the indexes of the named columns, or an error wrapping
// ErrMissingColumn naming the first one absent.
func (r *Reader) Require(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		c, ok := r.columns[name]
		if !ok {
			return nil, fmt.Errorf("%w %q (have %s)", ErrMissingColumn, name, strings.Join(r.header, ", "))
		}
		idx[i] = c
	}
	return idx, nil
}

// Next advances to the next record. Returns false at end of input or on error.
func (r *Reader) Next() bool {
	r.fields = nil
	for {
		fields, err := r.csv.Read()
		if err != nil {
			if err != io.EOF {
				r.err = fmt.Errorf("line %d: %w", r.lineNum+1, err)
			}
			return false
		}
		r.lineNum, _ = r.csv.FieldPos(0)
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		if len(fields) < len(r.header) {
			padded := make([]string, len(r.header))
			copy(padded, fields)
			fields = padded
		}
		r.fields = fields
		return true
	}
}

// Fields returns the current record, padded to the header width.
func (r *Reader) Fields() []string {
	return r.fields
}

// Field returns the trimmed value at column index i of the current record.
func (r *Reader) Field(i int) string {
	if i < 0 || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// Line returns the line number of the current record.
func (r *Reader) Line() int {
	return r.lineNum
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}
