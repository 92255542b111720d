// Package match compiles peptide sequences with ambiguous residue codes into
// patterns and finds their flanked occurrences in protein sequences.
package match

import (
	"errors"
	"regexp"
	"strings"
	"sync"
)

// ErrEmptyPeptide is returned when compiling an empty peptide sequence.
var ErrEmptyPeptide = errors.New("empty peptide sequence")

// ambiguous residue codes and the residues they stand for.
// Ambiguity is expanded on the peptide side only.
var ambiguousClasses = map[byte]string{
	'Z': "[QE]",
	'B': "[DN]",
	'J': "[LI]",
	'X': ".",
}

// Pattern is a compiled peptide. Every element of the pattern matches exactly
// one residue, so a match is always as long as the peptide.
type Pattern struct {
	peptide string
	re      *regexp.Regexp
}

// Compile converts a peptide into a Pattern, expanding Z, B, J and X.
func Compile(peptide string) (*Pattern, error) {
	if peptide == "" {
		return nil, ErrEmptyPeptide
	}

	var b strings.Builder
	b.WriteString("(?s)")
	for i := 0; i < len(peptide); i++ {
		if class, ok := ambiguousClasses[peptide[i]]; ok {
			b.WriteString(class)
			continue
		}
		b.WriteString(regexp.QuoteMeta(peptide[i : i+1]))
	}

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, err
	}
	return &Pattern{peptide: peptide, re: re}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(peptide string) *Pattern {
	p, err := Compile(peptide)
	if err != nil {
		panic("match: Compile(" + peptide + "): " + err.Error())
	}
	return p
}

// Peptide returns the peptide the pattern was compiled from.
func (p *Pattern) Peptide() string {
	return p.peptide
}

// Len returns the number of residues every match spans.
func (p *Pattern) Len() int {
	return len(p.peptide)
}

// Ambiguous reports whether the peptide contains any ambiguous residue code.
func (p *Pattern) Ambiguous() bool {
	for i := 0; i < len(p.peptide); i++ {
		if _, ok := ambiguousClasses[p.peptide[i]]; ok {
			return true
		}
	}
	return false
}

// FindFrom returns the leftmost match in seq starting at or after offset k.
// end is exclusive.
func (p *Pattern) FindFrom(seq string, k int) (start, end int, ok bool) {
	if k < 0 {
		k = 0
	}
	if len(seq)-k < len(p.peptide) {
		return 0, 0, false
	}
	loc := p.re.FindStringIndex(seq[k:])
	if loc == nil {
		return 0, 0, false
	}
	return k + loc[0], k + loc[1], true
}

// Compiler caches compiled patterns by peptide string. It is safe for
// concurrent use by multiple scanners.
type Compiler struct {
	cache sync.Map // string -> *Pattern
}

// NewCompiler returns an empty Compiler.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile returns the cached pattern for peptide, compiling it on first use.
func (c *Compiler) Compile(peptide string) (*Pattern, error) {
	if v, ok := c.cache.Load(peptide); ok {
		return v.(*Pattern), nil
	}
	p, err := Compile(peptide)
	if err != nil {
		return nil, err
	}
	v, _ := c.cache.LoadOrStore(peptide, p)
	return v.(*Pattern), nil
}
