package match

import (
	"iter"
	"slices"

	"github.com/ChrisMcGann/pepcontext/pkg/core"
)

// Mode selects where the search resumes after a match.
type Mode int

const (
	// Overlapping resumes one residue after the start of the previous match,
	// so tandem and overlapping occurrences are all reported.
	Overlapping Mode = iota
	// NonOverlapping resumes at the end of the previous match.
	NonOverlapping
)

// FindAll lazily yields every (possibly overlapping) occurrence of p in seq
// as a MatchContext, in order of start offset.
func FindAll(seq string, p *Pattern) iter.Seq[core.MatchContext] {
	return Scan(seq, p, Overlapping)
}

// Scan is FindAll with an explicit resume policy.
func Scan(seq string, p *Pattern, mode Mode) iter.Seq[core.MatchContext] {
	return func(yield func(core.MatchContext) bool) {
		k := 0
		for k <= len(seq) {
			start, end, ok := p.FindFrom(seq, k)
			if !ok {
				return
			}
			if !yield(core.NewMatchContext(seq, start, end)) {
				return
			}
			if mode == NonOverlapping && end > start {
				k = end
			} else {
				k = start + 1
			}
		}
	}
}

// Contexts collects all overlapping occurrences of p in seq.
func Contexts(seq string, p *Pattern) []core.MatchContext {
	return slices.Collect(FindAll(seq, p))
}
