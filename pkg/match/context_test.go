package match

import (
	"slices"
	"strings"
	"testing"

	"github.com/ChrisMcGann/pepcontext/pkg/core"
)

func contextStrings(cs []core.MatchContext) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}

func TestFindAll(t *testing.T) {
	tests := []struct {
		name    string
		seq     string
		peptide string
		want    []string
	}{
		{name: "single interior", seq: "XXPEPYY", peptide: "PEP", want: []string{"X.PEP.Y"}},
		{name: "overlapping", seq: "AAAA", peptide: "AA", want: []string{"..AA.A", "A.AA.A", "A.AA.."}},
		{name: "n-terminal", seq: "PEPKR", peptide: "PEP", want: []string{"..PEP.K"}},
		{name: "c-terminal", seq: "KRPEP", peptide: "PEP", want: []string{"R.PEP.."}},
		{name: "whole sequence", seq: "PEP", peptide: "PEP", want: []string{"..PEP.."}},
		{name: "tandem repeat", seq: "KPEPPEPR", peptide: "PEP", want: []string{"K.PEP.P", "P.PEP.R"}},
		{name: "self-overlap", seq: "PEPEPEK", peptide: "PEPE", want: []string{"..PEPE.P", "E.PEPE.K"}},
		{name: "no match", seq: "MKLV", peptide: "PEP", want: nil},
		{name: "peptide longer than sequence", seq: "PE", peptide: "PEP", want: nil},
		{name: "ambiguous reports concrete residues", seq: "MPELKPEIK", peptide: "PEJK", want: []string{"M.PELK.P", "K.PEIK.."}},
		{name: "wildcard", seq: "AKAMA", peptide: "AXA", want: []string{"..AKA.M", "K.AMA.."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := contextStrings(Contexts(tt.seq, MustCompile(tt.peptide)))
			if len(got) == 0 {
				got = nil
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("FindAll(%q, %q) = %v, want %v", tt.seq, tt.peptide, got, tt.want)
			}
		})
	}
}

func TestScanNonOverlapping(t *testing.T) {
	got := contextStrings(slices.Collect(Scan("AAAAA", MustCompile("AA"), NonOverlapping)))
	want := []string{"..AA.A", "A.AA.A"}
	if !slices.Equal(got, want) {
		t.Errorf("Scan(NonOverlapping) = %v, want %v", got, want)
	}
}

func TestFindAllStopsEarly(t *testing.T) {
	n := 0
	for range FindAll("AAAAAAAA", MustCompile("A")) {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("expected iteration to stop after 3, got %d", n)
	}
}

// literalOccurrences is the brute-force reference for unambiguous peptides.
func literalOccurrences(seq, peptide string) []int {
	var starts []int
	for i := 0; i+len(peptide) <= len(seq); i++ {
		if seq[i:i+len(peptide)] == peptide {
			starts = append(starts, i)
		}
	}
	return starts
}

func TestFindAllMatchesLiteralOccurrences(t *testing.T) {
	seq := "MKKLLKKLLKKAKKAKKLKLKLKKAAKAKAK"
	peptides := []string{"K", "KK", "KKL", "LK", "KLKL", "AKA", "AKAK", "MKKL", "KAK"}

	for _, pep := range peptides {
		want := literalOccurrences(seq, pep)
		cs := Contexts(seq, MustCompile(pep))
		if len(cs) != len(want) {
			t.Errorf("%s: got %d matches, want %d", pep, len(cs), len(want))
			continue
		}
		for i, c := range cs {
			if c.Matched != pep {
				t.Errorf("%s: match %d is %q", pep, i, c.Matched)
			}
			if c.NTerminal() != (want[i] == 0) {
				t.Errorf("%s: match %d boundary mismatch", pep, i)
			}
		}
	}
}

func TestWildcardFindsEveryResidue(t *testing.T) {
	residues := "ACDEFGHIKLMNPQRSTVWY"
	var b strings.Builder
	for i := 0; i < len(residues); i++ {
		b.WriteString("G")
		b.WriteByte(residues[i])
		b.WriteString("G")
	}
	seq := b.String()

	cs := Contexts(seq, MustCompile("GXG"))
	seen := make(map[string]bool)
	for _, c := range cs {
		if len(c.Matched) != 3 {
			t.Fatalf("match %q has wrong length", c.Matched)
		}
		seen[c.Matched] = true
	}
	for i := 0; i < len(residues); i++ {
		if s := "G" + residues[i:i+1] + "G"; !seen[s] {
			t.Errorf("wildcard missed %s", s)
		}
	}
}
