package core

import (
	"strings"
)

// annotation brackets used by common search engines:
// PEPM[Oxidation]K, PEPC(UniMod:4)K, PEPS{Phospho}K
var annotationClose = map[byte]byte{
	'[': ']',
	'(': ')',
	'{': '}',
}

// StripModifications removes modification annotations from a peptide string,
// leaving plain uppercase residues. It handles bracketed annotations, inline
// mass deltas (PEPM+15.995K), lowercase modified residues (PEPmK), the
// underscore terminators used by Spectronaut/MaxQuant (_PEPTIDE_) and
// flank notation (K.PEPTIDE.R).
func StripModifications(seq string) string {
	seq = strings.TrimSpace(seq)
	seq = strings.Trim(seq, "_")
	if n := len(seq); n >= 5 && seq[1] == Boundary && seq[n-2] == Boundary {
		seq = seq[2 : n-2]
	}

	var b strings.Builder
	b.Grow(len(seq))
	var closing []byte
	for i := 0; i < len(seq); i++ {
		c := seq[i]
		if cl, ok := annotationClose[c]; ok {
			closing = append(closing, cl)
			continue
		}
		if len(closing) > 0 {
			if c == closing[len(closing)-1] {
				closing = closing[:len(closing)-1]
			}
			continue
		}
		switch {
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c)
		case c >= 'a' && c <= 'z':
			b.WriteByte(c - 'a' + 'A')
		}
	}
	return b.String()
}

// IsStripped reports whether seq already consists of uppercase residues only.
func IsStripped(seq string) bool {
	if seq == "" {
		return false
	}
	for i := 0; i < len(seq); i++ {
		if !isResidue(seq[i]) {
			return false
		}
	}
	return true
}
