// Package aggregate flattens per-record match results into a de-duplicated
// set of (stripped peptide, context) enrichment rows.
package aggregate

import (
	"cmp"
	"slices"
	"strings"

	"github.com/ChrisMcGann/pepcontext/pkg/core"
)

// Aggregator is an order-insensitive set of enrichment rows. It is not safe
// for concurrent use; merge per-worker aggregators with Merge instead.
type Aggregator struct {
	rows      map[core.EnrichmentRow]struct{}
	malformed int
	records   int
}

// New returns an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{rows: make(map[core.EnrichmentRow]struct{})}
}

// Add folds match results into the set. Results without contexts are ignored.
func (a *Aggregator) Add(results ...core.RecordMatchResult) {
	for _, r := range results {
		if r.Empty() {
			continue
		}
		a.records++
		for _, c := range r.Contexts {
			a.addContext(c.String())
		}
	}
}

// AddContexts folds stored context strings into the set, for example the
// comma-split matchContexts column of an intermediate table. Entries that do
// not parse are dropped and counted. It returns the number dropped.
func (a *Aggregator) AddContexts(contexts []string) int {
	before := a.malformed
	for _, s := range contexts {
		a.addContext(s)
	}
	return a.malformed - before
}

// addContext re-derives the key from the matched segment of the context.
func (a *Aggregator) addContext(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	c, err := core.ParseContext(s)
	if err != nil {
		a.malformed++
		return
	}
	a.rows[core.EnrichmentRow{Key: c.Matched, Context: c.String()}] = struct{}{}
}

// Merge adds every row of other into a.
func (a *Aggregator) Merge(other *Aggregator) {
	for row := range other.rows {
		a.rows[row] = struct{}{}
	}
	a.malformed += other.malformed
	a.records += other.records
}

// Len returns the number of distinct rows.
func (a *Aggregator) Len() int {
	return len(a.rows)
}

// Malformed returns the number of context strings dropped because they could
// not be parsed.
func (a *Aggregator) Malformed() int {
	return a.malformed
}

// Records returns the number of non-empty results added.
func (a *Aggregator) Records() int {
	return a.records
}

// Rows returns the distinct rows sorted by key, then context.
func (a *Aggregator) Rows() []core.EnrichmentRow {
	out := make([]core.EnrichmentRow, 0, len(a.rows))
	for row := range a.rows {
		out = append(out, row)
	}
	slices.SortFunc(out, func(x, y core.EnrichmentRow) int {
		if c := cmp.Compare(x.Key, y.Key); c != 0 {
			return c
		}
		return cmp.Compare(x.Context, y.Context)
	})
	return out
}

// ByKey groups the distinct contexts by stripped peptide key. Contexts for a
// key are sorted.
func (a *Aggregator) ByKey() map[string][]string {
	out := make(map[string][]string)
	for _, row := range a.Rows() {
		out[row.Key] = append(out[row.Key], row.Context)
	}
	return out
}

// Aggregate is the one-shot form of New followed by Add and Rows.
func Aggregate(results []core.RecordMatchResult) []core.EnrichmentRow {
	a := New()
	a.Add(results...)
	return a.Rows()
}
