// Package merge left-joins enrichment contexts back onto the original
// peptide table by stripped sequence.
package merge

import (
	"strings"

	"github.com/ChrisMcGann/pepcontext/pkg/core"
)

// DefaultContextColumn names the enrichment column appended to the peptide table.
const DefaultContextColumn = "matchContext"

// Joiner left-joins peptide rows against enrichment contexts.
type Joiner struct {
	keyColumn int
	contexts  map[string][]string
	strip     bool
}

// NewJoiner creates a Joiner using the value at keyColumn as the join key.
// contexts maps stripped sequence to its distinct contexts, typically
// aggregate.Aggregator.ByKey. When strip is set the key is normalised with
// core.StripModifications before lookup.
func NewJoiner(keyColumn int, contexts map[string][]string, strip bool) *Joiner {
	return &Joiner{keyColumn: keyColumn, contexts: contexts, strip: strip}
}

// Header returns the output header: the input header plus contextColumn.
func Header(input []string, contextColumn string) []string {
	if contextColumn == "" {
		contextColumn = DefaultContextColumn
	}
	out := make([]string, 0, len(input)+1)
	out = append(out, input...)
	return append(out, contextColumn)
}

// Key returns the join key for a row.
func (j *Joiner) Key(fields []string) string {
	if j.keyColumn < 0 || j.keyColumn >= len(fields) {
		return ""
	}
	key := strings.TrimSpace(fields[j.keyColumn])
	if j.strip {
		key = core.StripModifications(key)
	}
	return key
}

// Join calls emit once per matching context for fields, or once with an
// empty context when nothing matches. It returns the number of matched
// contexts. The slice passed to emit is reused between calls.
func (j *Joiner) Join(fields []string, emit func([]string) error) (int, error) {
	out := make([]string, len(fields)+1)
	copy(out, fields)

	contexts := j.contexts[j.Key(fields)]
	if len(contexts) == 0 {
		out[len(fields)] = ""
		return 0, emit(out)
	}
	for _, c := range contexts {
		out[len(fields)] = c
		if err := emit(out); err != nil {
			return 0, err
		}
	}
	return len(contexts), nil
}

// JoinAll joins every row and returns the expanded table.
func (j *Joiner) JoinAll(rows [][]string) ([][]string, error) {
	var out [][]string
	for _, row := range rows {
		_, err := j.Join(row, func(r []string) error {
			out = append(out, append([]string(nil), r...))
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
