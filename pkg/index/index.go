// Package index maps protein group identifiers to the unique peptide
// sequences observed for each group.
package index

import (
	"slices"
	"strings"

	"github.com/ChrisMcGann/pepcontext/pkg/core"
)

// Index is an immutable group -> peptide set mapping. It is safe for
// concurrent reads once built.
type Index struct {
	groups   map[string][]string
	peptides int
}

// Builder accumulates peptide records. It is not safe for concurrent use.
type Builder struct {
	groups  map[string]map[string]struct{}
	skipped int
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{groups: make(map[string]map[string]struct{})}
}

// Add records one (group, peptide) pair. It returns false and drops the pair
// when either value is empty.
func (b *Builder) Add(groupID, peptide string) bool {
	groupID = strings.TrimSpace(groupID)
	peptide = strings.TrimSpace(peptide)
	if groupID == "" || peptide == "" {
		b.skipped++
		return false
	}
	set, ok := b.groups[groupID]
	if !ok {
		set = make(map[string]struct{})
		b.groups[groupID] = set
	}
	set[peptide] = struct{}{}
	return true
}

// AddRecord is Add for a PeptideRecord, returning a MissingFieldError for
// dropped records.
func (b *Builder) AddRecord(rec core.PeptideRecord) error {
	if b.Add(rec.GroupID, rec.Sequence) {
		return nil
	}
	field := "proteinGroupId"
	if strings.TrimSpace(rec.Sequence) == "" {
		field = "strippedPeptideSequence"
	}
	return &core.MissingFieldError{Line: rec.Line, Field: field}
}

// Skipped returns the number of records dropped for a missing field.
func (b *Builder) Skipped() int {
	return b.skipped
}

// Build freezes the accumulated records into an Index. The Builder may be
// reused afterwards, but further additions do not affect the returned Index.
func (b *Builder) Build() *Index {
	ix := &Index{groups: make(map[string][]string, len(b.groups))}
	for group, set := range b.groups {
		peps := make([]string, 0, len(set))
		for p := range set {
			peps = append(peps, p)
		}
		slices.Sort(peps)
		ix.groups[group] = peps
		ix.peptides += len(peps)
	}
	return ix
}

// Build indexes records in one call. Records missing either field are dropped.
func Build(records []core.PeptideRecord) *Index {
	b := NewBuilder()
	for _, rec := range records {
		b.Add(rec.GroupID, rec.Sequence)
	}
	return b.Build()
}

// Lookup returns the sorted unique peptides for groupID, or nil when the
// group is unknown. The returned slice must not be modified.
func (ix *Index) Lookup(groupID string) []string {
	return ix.groups[groupID]
}

// Len returns the number of indexed protein groups.
func (ix *Index) Len() int {
	return len(ix.groups)
}

// Peptides returns the total number of (group, peptide) entries.
func (ix *Index) Peptides() int {
	return ix.peptides
}

// Groups returns the indexed group identifiers in sorted order.
func (ix *Index) Groups() []string {
	out := make([]string, 0, len(ix.groups))
	for g := range ix.groups {
		out = append(out, g)
	}
	slices.Sort(out)
	return out
}
