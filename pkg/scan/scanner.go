// Package scan runs every peptide indexed for a protein group against that
// group's protein sequences and collects the flanked matches.
package scan

import (
	"context"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ChrisMcGann/pepcontext/pkg/core"
	"github.com/ChrisMcGann/pepcontext/pkg/index"
	"github.com/ChrisMcGann/pepcontext/pkg/match"
)

// DefaultSeparator splits isoform/variant sequences stored in one field.
const DefaultSeparator = ";"

// Config controls a Scanner.
type Config struct {
	Threads   int        // worker goroutines for ScanBatch (<1 means NumCPU)
	Separator string     // sequence field separator ("" means DefaultSeparator)
	Mode      match.Mode // resume policy after a match
}

// Scanner matches protein records against a read-only peptide index.
// A Scanner is safe for concurrent use.
type Scanner struct {
	cfg      Config
	index    *index.Index
	compiler *match.Compiler
}

// New creates a Scanner over ix.
func New(ix *index.Index, cfg Config) *Scanner {
	if cfg.Threads < 1 {
		cfg.Threads = runtime.NumCPU()
	}
	if cfg.Separator == "" {
		cfg.Separator = DefaultSeparator
	}
	return &Scanner{
		cfg:      cfg,
		index:    ix,
		compiler: match.NewCompiler(),
	}
}

// ExpandSequences splits a record whose sequence field holds several
// sep-delimited sequences into one record per sequence. Empty parts are
// dropped.
func ExpandSequences(rec core.ProteinRecord, sep string) []core.ProteinRecord {
	if sep == "" {
		sep = DefaultSeparator
	}
	parts := strings.Split(rec.Sequence, sep)
	out := make([]core.ProteinRecord, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, core.ProteinRecord{GroupID: rec.GroupID, Sequence: p, Line: rec.Line})
	}
	return out
}

// Scan matches every peptide indexed for groupID against one sequence.
// An unknown group yields an empty result.
func (s *Scanner) Scan(groupID, sequence string) core.RecordMatchResult {
	res := core.RecordMatchResult{GroupID: groupID, Sequence: sequence}
	for _, pep := range s.index.Lookup(groupID) {
		p, err := s.compiler.Compile(pep)
		if err != nil {
			continue
		}
		for c := range match.Scan(sequence, p, s.cfg.Mode) {
			res.Contexts = append(res.Contexts, c)
		}
	}
	return res
}

// ScanRecord expands rec and scans each sub-sequence independently. Results
// are returned in sub-sequence order, including empty ones.
func (s *Scanner) ScanRecord(rec core.ProteinRecord) []core.RecordMatchResult {
	subs := ExpandSequences(rec, s.cfg.Separator)
	out := make([]core.RecordMatchResult, 0, len(subs))
	for _, sub := range subs {
		out = append(out, s.Scan(sub.GroupID, sub.Sequence))
	}
	return out
}

// ScanBatch scans recs on a bounded pool of workers and returns the results
// that carry at least one match, in input order. Output does not depend on
// the number of workers.
func (s *Scanner) ScanBatch(ctx context.Context, recs []core.ProteinRecord) ([]core.RecordMatchResult, error) {
	perRecord := make([][]core.RecordMatchResult, len(recs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Threads)
	for i := range recs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perRecord[i] = s.ScanRecord(recs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []core.RecordMatchResult
	for _, results := range perRecord {
		for _, r := range results {
			if !r.Empty() {
				out = append(out, r)
			}
		}
	}
	return out, nil
}
