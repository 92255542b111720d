package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/ChrisMcGann/pepcontext/pkg/core"
	"github.com/ChrisMcGann/pepcontext/pkg/merge"
	rdelim "github.com/ChrisMcGann/pepcontext/pkg/reader/delim"
)

// Summary describes the contexts held by a final or intermediate table.
type Summary struct {
	Column           string
	Rows             int
	RowsWithContext  int
	Contexts         int
	DistinctContexts int
	DistinctKeys     int
	NTerminal        int
	CTerminal        int
	Malformed        int
}

// Summarize scans the context column of a table. column may be empty, in
// which case the final table column (matchContext) or the intermediate
// table column (matchContexts) is used, whichever is present.
func Summarize(path string, comma rune, column string) (Summary, error) {
	r, err := rdelim.Open(path, comma)
	if err != nil {
		return Summary{}, err
	}
	defer r.Close()

	if column == "" {
		column = merge.DefaultContextColumn
		if _, ok := r.Column(column); !ok {
			column = MatchContextsColumn
		}
	}
	cols, err := r.Require(column)
	if err != nil {
		return Summary{}, fmt.Errorf("%s: %w", path, err)
	}

	s := Summary{Column: column}
	contexts := make(map[string]struct{})
	keys := make(map[string]struct{})
	for r.Next() {
		s.Rows++
		field := r.Field(cols[0])
		if field == "" {
			continue
		}
		s.RowsWithContext++
		for _, cs := range strings.Split(field, ",") {
			c, err := core.ParseContext(cs)
			if err != nil {
				s.Malformed++
				continue
			}
			s.Contexts++
			str := c.String()
			if _, seen := contexts[str]; seen {
				continue
			}
			contexts[str] = struct{}{}
			keys[c.Matched] = struct{}{}
			if c.NTerminal() {
				s.NTerminal++
			}
			if c.CTerminal() {
				s.CTerminal++
			}
		}
	}
	if err := r.Err(); err != nil {
		return Summary{}, fmt.Errorf("error reading %s: %w", path, err)
	}

	s.DistinctContexts = len(contexts)
	s.DistinctKeys = len(keys)
	return s, nil
}

// Print writes a human-readable summary.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "Column: %s\n", s.Column)
	fmt.Fprintf(w, "Rows: %d (%d with a context)\n", s.Rows, s.RowsWithContext)
	fmt.Fprintf(w, "Contexts: %d (%d distinct)\n", s.Contexts, s.DistinctContexts)
	fmt.Fprintf(w, "Distinct peptides: %d\n", s.DistinctKeys)
	fmt.Fprintf(w, "Protein N-terminal contexts: %d\n", s.NTerminal)
	fmt.Fprintf(w, "Protein C-terminal contexts: %d\n", s.CTerminal)
	if s.Malformed > 0 {
		fmt.Fprintf(w, "Malformed contexts: %d\n", s.Malformed)
	}
}
