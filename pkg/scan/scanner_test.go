package scan

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/ChrisMcGann/pepcontext/pkg/core"
	"github.com/ChrisMcGann/pepcontext/pkg/index"
	"github.com/ChrisMcGann/pepcontext/pkg/match"
)

func testIndex() *index.Index {
	return index.Build([]core.PeptideRecord{
		{GroupID: "G1", Sequence: "PEP"},
		{GroupID: "G1", Sequence: "PEP"},
		{GroupID: "G2", Sequence: "AA"},
		{GroupID: "G3", Sequence: "PEJK"},
	})
}

func TestScan(t *testing.T) {
	s := New(testIndex(), Config{Threads: 1})

	tests := []struct {
		name  string
		group string
		seq   string
		want  []string
	}{
		{name: "single match", group: "G1", seq: "XXPEPYY", want: []string{"X.PEP.Y"}},
		{name: "duplicate peptide matched once", group: "G1", seq: "PEPK", want: []string{"..PEP.K"}},
		{name: "overlapping", group: "G2", seq: "AAAA", want: []string{"..AA.A", "A.AA.A", "A.AA.."}},
		{name: "ambiguous", group: "G3", seq: "MPEIK", want: []string{"M.PEIK.."}},
		{name: "unknown group", group: "G9", seq: "PEPPEP", want: []string{}},
		{name: "group without match", group: "G1", seq: "MKLV", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.Scan(tt.group, tt.seq)
			if res.GroupID != tt.group || res.Sequence != tt.seq {
				t.Errorf("result identity = (%q, %q)", res.GroupID, res.Sequence)
			}
			if got := res.ContextStrings(); !slices.Equal(got, tt.want) {
				t.Errorf("Scan() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScanNonOverlappingMode(t *testing.T) {
	s := New(testIndex(), Config{Mode: match.NonOverlapping})
	got := s.Scan("G2", "AAAA").ContextStrings()
	if want := []string{"..AA.A", "A.AA.."}; !slices.Equal(got, want) {
		t.Errorf("Scan() = %v, want %v", got, want)
	}
}

func TestExpandSequences(t *testing.T) {
	tests := []struct {
		name string
		seq  string
		sep  string
		want []string
	}{
		{name: "single", seq: "MSEQ1", want: []string{"MSEQ1"}},
		{name: "two", seq: "MSEQ1;MSEQ2", want: []string{"MSEQ1", "MSEQ2"}},
		{name: "whitespace and empties", seq: " MSEQ1 ;; MSEQ2;", want: []string{"MSEQ1", "MSEQ2"}},
		{name: "custom separator", seq: "MA|MB", sep: "|", want: []string{"MA", "MB"}},
		{name: "empty", seq: "", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := ExpandSequences(core.ProteinRecord{GroupID: "G", Sequence: tt.seq, Line: 7}, tt.sep)
			got := make([]string, len(recs))
			for i, r := range recs {
				got[i] = r.Sequence
				if r.GroupID != "G" || r.Line != 7 {
					t.Errorf("expanded record lost identity: %+v", r)
				}
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ExpandSequences(%q) = %v, want %v", tt.seq, got, tt.want)
			}
		})
	}
}

func TestScanRecordMultiSequence(t *testing.T) {
	s := New(testIndex(), Config{})
	results := s.ScanRecord(core.ProteinRecord{GroupID: "G1", Sequence: "MPEPK;KKPEP"})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if got := results[0].ContextStrings(); !slices.Equal(got, []string{"M.PEP.K"}) {
		t.Errorf("first sequence = %v", got)
	}
	if got := results[1].ContextStrings(); !slices.Equal(got, []string{"K.PEP.."}) {
		t.Errorf("second sequence = %v", got)
	}
	if results[1].Sequence != "KKPEP" {
		t.Errorf("second result sequence = %q", results[1].Sequence)
	}
}

func TestScanBatchIndependentOfThreads(t *testing.T) {
	recs := []core.ProteinRecord{
		{GroupID: "G1", Sequence: "XXPEPYY;PEPPEP"},
		{GroupID: "G9", Sequence: "PEP"},
		{GroupID: "G2", Sequence: "AAAA"},
		{GroupID: "G1", Sequence: "MKLV"},
		{GroupID: "G3", Sequence: "PEJK;PELK"},
	}

	var baseline [][]string
	for _, threads := range []int{1, 2, 8} {
		s := New(testIndex(), Config{Threads: threads})
		results, err := s.ScanBatch(context.Background(), recs)
		if err != nil {
			t.Fatalf("threads=%d: %v", threads, err)
		}
		var got [][]string
		for _, r := range results {
			if r.Empty() {
				t.Errorf("threads=%d: empty result for %s", threads, r.Sequence)
			}
			got = append(got, r.ContextStrings())
		}
		if baseline == nil {
			baseline = got
			continue
		}
		if !slices.EqualFunc(got, baseline, slices.Equal[[]string]) {
			t.Errorf("threads=%d: %v differs from %v", threads, got, baseline)
		}
	}

	want := [][]string{
		{"X.PEP.Y"},
		{"..PEP.P", "P.PEP.."},
		{"..AA.A", "A.AA.A", "A.AA.."},
		{"..PELK.."},
	}
	if !slices.EqualFunc(baseline, want, slices.Equal[[]string]) {
		t.Errorf("ScanBatch() = %v, want %v", baseline, want)
	}
}

func TestScanBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(testIndex(), Config{Threads: 2})
	_, err := s.ScanBatch(ctx, []core.ProteinRecord{{GroupID: "G1", Sequence: "PEP"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
