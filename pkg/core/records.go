// Package core provides the record types, match contexts and validation logic
// shared by the PepContext matching pipeline.
package core

import (
	"fmt"
	"strings"
)

// Boundary is the flanking marker used when a match touches either end of a
// protein sequence. It doubles as the context field separator.
const Boundary = '.'

// PeptideRecord is one (protein group, peptide) pair read from the peptide table.
type PeptideRecord struct {
	GroupID  string // Protein group identifier
	Sequence string // Stripped peptide sequence, may contain Z, B, J or X
	Line     int    // Source line number (0 when not read from a file)
}

// ProteinRecord is one (protein group, sequence) pair read from the protein
// table. Sequence may still hold several ';'-separated sequences until it is
// expanded by the scanner.
type ProteinRecord struct {
	GroupID  string
	Sequence string
	Line     int
}

// MatchContext is a matched peptide together with one flanking residue on
// each side, or Boundary when the match touches the sequence edge.
type MatchContext struct {
	Previous byte
	Matched  string
	Next     byte
}

// NewMatchContext builds the context for seq[start:end].
func NewMatchContext(seq string, start, end int) MatchContext {
	c := MatchContext{
		Previous: Boundary,
		Matched:  seq[start:end],
		Next:     Boundary,
	}
	if start > 0 {
		c.Previous = seq[start-1]
	}
	if end < len(seq) {
		c.Next = seq[end]
	}
	return c
}

// String renders the context as "P.MATCHED.F".
func (c MatchContext) String() string {
	var b strings.Builder
	b.Grow(len(c.Matched) + 4)
	b.WriteByte(c.Previous)
	b.WriteByte(Boundary)
	b.WriteString(c.Matched)
	b.WriteByte(Boundary)
	b.WriteByte(c.Next)
	return b.String()
}

// NTerminal reports whether the match starts at the first residue.
func (c MatchContext) NTerminal() bool {
	return c.Previous == Boundary
}

// CTerminal reports whether the match ends at the last residue.
func (c MatchContext) CTerminal() bool {
	return c.Next == Boundary
}

// RecordMatchResult holds every context found for one expanded protein record.
type RecordMatchResult struct {
	GroupID  string
	Sequence string
	Contexts []MatchContext
}

// Empty reports whether the record produced no matches.
func (r RecordMatchResult) Empty() bool {
	return len(r.Contexts) == 0
}

// ContextStrings renders all contexts in match order.
func (r RecordMatchResult) ContextStrings() []string {
	out := make([]string, len(r.Contexts))
	for i, c := range r.Contexts {
		out[i] = c.String()
	}
	return out
}

// EnrichmentRow pairs a stripped peptide key with one context string.
// The key is the matched segment of the context, not the indexed peptide.
type EnrichmentRow struct {
	Key     string
	Context string
}

// MissingFieldError reports a record lacking a required column value.
type MissingFieldError struct {
	Line  int
	Field string
}

func (e *MissingFieldError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: missing value for %s", e.Line, e.Field)
	}
	return fmt.Sprintf("missing value for %s", e.Field)
}

// MalformedContextError reports a context string that does not parse back into
// previous, matched and next parts.
type MalformedContextError struct {
	Context string
	Message string
}

func (e *MalformedContextError) Error() string {
	return fmt.Sprintf("malformed context %q: %s", e.Context, e.Message)
}

// ParseContext parses a "P.MATCHED.F" string. P and F must be a single
// uppercase residue or Boundary, MATCHED one or more uppercase residues.
func ParseContext(s string) (MatchContext, error) {
	s = strings.TrimSpace(s)
	if len(s) < 5 {
		return MatchContext{}, &MalformedContextError{Context: s, Message: "too short"}
	}
	if s[1] != Boundary || s[len(s)-2] != Boundary {
		return MatchContext{}, &MalformedContextError{Context: s, Message: "missing separator"}
	}
	if !isFlank(s[0]) {
		return MatchContext{}, &MalformedContextError{Context: s, Message: "invalid previous residue"}
	}
	if !isFlank(s[len(s)-1]) {
		return MatchContext{}, &MalformedContextError{Context: s, Message: "invalid next residue"}
	}
	matched := s[2 : len(s)-2]
	for i := 0; i < len(matched); i++ {
		if !isResidue(matched[i]) {
			return MatchContext{}, &MalformedContextError{Context: s, Message: "invalid matched segment"}
		}
	}
	return MatchContext{Previous: s[0], Matched: matched, Next: s[len(s)-1]}, nil
}

func isResidue(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

func isFlank(c byte) bool {
	return c == Boundary || isResidue(c)
}
