// Package pipeline drives a PepContext run: index the peptide table, scan the
// protein table in bounded batches, aggregate the matches and left-join them
// onto the peptide table.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ChrisMcGann/pepcontext/pkg/aggregate"
	"github.com/ChrisMcGann/pepcontext/pkg/core"
	"github.com/ChrisMcGann/pepcontext/pkg/index"
	"github.com/ChrisMcGann/pepcontext/pkg/match"
	"github.com/ChrisMcGann/pepcontext/pkg/merge"
	rdelim "github.com/ChrisMcGann/pepcontext/pkg/reader/delim"
	"github.com/ChrisMcGann/pepcontext/pkg/scan"
	wdelim "github.com/ChrisMcGann/pepcontext/pkg/writer/delim"
	"github.com/ChrisMcGann/pepcontext/pkg/writer/sqlite"
)

// Default column names.
const (
	DefaultPeptideColumn  = "strippedPeptideSequence"
	DefaultGroupColumn    = "proteinGroupId"
	DefaultSequenceColumn = "sequence"
	MatchContextsColumn   = "matchContexts"
	DefaultBatchSize      = 10000
)

// Config holds run configuration
type Config struct {
	PeptidePath      string // peptide table (A)
	ProteinPath      string // protein table (B)
	IntermediatePath string // per-record match table; "" skips it
	OutputPath       string // final joined table
	SQLitePath       string // optional SQLite export of the enrichment rows

	BatchSize int  // protein records per batch
	Threads   int  // scan workers per batch
	Delimiter rune // 0 detects from each file name

	PeptideColumn  string
	GroupColumn    string
	SequenceColumn string
	ContextColumn  string
	Separator      string // isoform separator in the sequence column

	NonOverlapping     bool // resume after match end instead of match start + 1
	StripModifications bool // strip annotations from peptide sequences

	Stdout io.Writer // progress; nil discards
	Stderr io.Writer // warnings; nil discards
}

func (c *Config) setDefaults() {
	if c.BatchSize < 1 {
		c.BatchSize = DefaultBatchSize
	}
	if c.PeptideColumn == "" {
		c.PeptideColumn = DefaultPeptideColumn
	}
	if c.GroupColumn == "" {
		c.GroupColumn = DefaultGroupColumn
	}
	if c.SequenceColumn == "" {
		c.SequenceColumn = DefaultSequenceColumn
	}
	if c.ContextColumn == "" {
		c.ContextColumn = merge.DefaultContextColumn
	}
	if c.Separator == "" {
		c.Separator = scan.DefaultSeparator
	}
	if c.Stdout == nil {
		c.Stdout = io.Discard
	}
	if c.Stderr == nil {
		c.Stderr = io.Discard
	}
}

func (c *Config) mode() match.Mode {
	if c.NonOverlapping {
		return match.NonOverlapping
	}
	return match.Overlapping
}

// Stats summarises a run.
type Stats struct {
	PeptideRows       int
	SkippedPeptides   int
	IndexedGroups     int
	IndexedPeptides   int
	ProteinRecords    int
	SkippedProteins   int
	Batches           int
	MatchedRecords    int
	Contexts          int
	EnrichmentRows    int
	MalformedContexts int
	OutputRows        int
	MatchedRows       int
}

// Print writes a human-readable summary.
func (s Stats) Print(w io.Writer) {
	fmt.Fprintf(w, "Peptide rows: %d", s.PeptideRows)
	if s.SkippedPeptides > 0 {
		fmt.Fprintf(w, " (%d not indexed: missing fields)", s.SkippedPeptides)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Indexed: %d peptides across %d protein groups\n", s.IndexedPeptides, s.IndexedGroups)
	if s.ProteinRecords > 0 || s.Batches > 0 {
		fmt.Fprintf(w, "Protein records: %d in %d batches", s.ProteinRecords, s.Batches)
		if s.SkippedProteins > 0 {
			fmt.Fprintf(w, " (%d skipped: missing fields)", s.SkippedProteins)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Matched sequences: %d (%d contexts)\n", s.MatchedRecords, s.Contexts)
	}
	fmt.Fprintf(w, "Enrichment rows: %d\n", s.EnrichmentRows)
	if s.MalformedContexts > 0 {
		fmt.Fprintf(w, "Malformed contexts dropped: %d\n", s.MalformedContexts)
	}
	if s.OutputRows > 0 {
		fmt.Fprintf(w, "Output rows: %d (%d with a context)\n", s.OutputRows, s.MatchedRows)
	}
}

// Run executes every stage and writes the final table.
func Run(ctx context.Context, cfg Config) (Stats, error) {
	cfg.setDefaults()
	var stats Stats

	ix, err := BuildIndex(cfg, &stats)
	if err != nil {
		return stats, err
	}

	agg, err := Scan(ctx, cfg, ix, &stats)
	if err != nil {
		return stats, err
	}

	if err := Merge(cfg, agg, &stats); err != nil {
		return stats, err
	}
	return stats, nil
}

// BuildIndex reads the peptide table and builds the group -> peptide index.
func BuildIndex(cfg Config, stats *Stats) (*index.Index, error) {
	cfg.setDefaults()

	r, err := rdelim.Open(cfg.PeptidePath, cfg.Delimiter)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	cols, err := r.Require(cfg.PeptideColumn, cfg.GroupColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.PeptidePath, err)
	}

	b := index.NewBuilder()
	rows := 0
	for r.Next() {
		rows++
		rec := core.PeptideRecord{
			Sequence: r.Field(cols[0]),
			GroupID:  r.Field(cols[1]),
			Line:     r.Line(),
		}
		if cfg.StripModifications {
			rec.Sequence = core.StripModifications(rec.Sequence)
		}
		if err := b.AddRecord(rec); err != nil {
			warnf(cfg.Stderr, "%s: %v", cfg.PeptidePath, err)
		}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", cfg.PeptidePath, err)
	}

	ix := b.Build()
	stats.PeptideRows += rows
	stats.SkippedPeptides += b.Skipped()
	stats.IndexedGroups = ix.Len()
	stats.IndexedPeptides = ix.Peptides()
	fmt.Fprintf(cfg.Stdout, "Indexed %d peptides across %d protein groups\n", ix.Peptides(), ix.Len())
	return ix, nil
}

// Scan streams the protein table in batches through the scanner, appends the
// matched records of every batch to the intermediate table and returns the
// aggregated enrichment rows. Batches flushed before an error stay on disk.
func Scan(ctx context.Context, cfg Config, ix *index.Index, stats *Stats) (*aggregate.Aggregator, error) {
	cfg.setDefaults()

	r, err := rdelim.Open(cfg.ProteinPath, cfg.Delimiter)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	cols, err := r.Require(cfg.GroupColumn, cfg.SequenceColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.ProteinPath, err)
	}

	var out *wdelim.Writer
	if cfg.IntermediatePath != "" {
		out, err = wdelim.Create(cfg.IntermediatePath,
			[]string{cfg.GroupColumn, cfg.SequenceColumn, MatchContextsColumn}, cfg.Delimiter)
		if err != nil {
			return nil, err
		}
		defer out.Close()
	}

	scanner := scan.New(ix, scan.Config{
		Threads:   cfg.Threads,
		Separator: cfg.Separator,
		Mode:      cfg.mode(),
	})
	agg := aggregate.New()

	batch := make([]core.ProteinRecord, 0, cfg.BatchSize)
	for {
		batch, err = readBatch(r, cols, batch[:0], cfg, stats)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		results, err := scanner.ScanBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		stats.Batches++
		stats.MatchedRecords += len(results)
		for _, res := range results {
			stats.Contexts += len(res.Contexts)
		}

		if out != nil {
			for _, res := range results {
				row := []string{res.GroupID, res.Sequence, strings.Join(res.ContextStrings(), ",")}
				if err := out.Write(row); err != nil {
					return nil, err
				}
			}
			if err := out.Flush(); err != nil {
				return nil, err
			}
		}
		agg.Add(results...)

		fmt.Fprintf(cfg.Stdout, "Processed %d protein records...\n", stats.ProteinRecords)
	}

	if out != nil {
		if err := out.Close(); err != nil {
			return nil, err
		}
		fmt.Fprintf(cfg.Stdout, "Wrote %d matched sequences to %s\n", out.Rows(), cfg.IntermediatePath)
	}

	stats.EnrichmentRows = agg.Len()
	stats.MalformedContexts += agg.Malformed()
	return agg, nil
}

// readBatch fills batch with up to cfg.BatchSize protein records. An empty
// batch means the table is exhausted.
func readBatch(r *rdelim.Reader, cols []int, batch []core.ProteinRecord, cfg Config, stats *Stats) ([]core.ProteinRecord, error) {
	for len(batch) < cfg.BatchSize && r.Next() {
		rec := core.ProteinRecord{
			GroupID:  r.Field(cols[0]),
			Sequence: r.Field(cols[1]),
			Line:     r.Line(),
		}
		stats.ProteinRecords++
		if rec.GroupID == "" || rec.Sequence == "" {
			field := cfg.GroupColumn
			if rec.GroupID != "" {
				field = cfg.SequenceColumn
			}
			stats.SkippedProteins++
			warnf(cfg.Stderr, "%s: %v", cfg.ProteinPath, &core.MissingFieldError{Line: rec.Line, Field: field})
			continue
		}
		batch = append(batch, rec)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", cfg.ProteinPath, err)
	}
	return batch, nil
}

// LoadIntermediate re-reads an intermediate table into an aggregator.
// Malformed context strings are dropped with a warning, so the table may be
// edited by hand between stages.
func LoadIntermediate(cfg Config, stats *Stats) (*aggregate.Aggregator, error) {
	cfg.setDefaults()

	r, err := rdelim.Open(cfg.IntermediatePath, cfg.Delimiter)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	cols, err := r.Require(MatchContextsColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.IntermediatePath, err)
	}

	agg := aggregate.New()
	for r.Next() {
		field := r.Field(cols[0])
		if field == "" {
			continue
		}
		contexts := strings.Split(field, ",")
		if dropped := agg.AddContexts(contexts); dropped > 0 {
			warnf(cfg.Stderr, "%s: line %d: dropped %d malformed context(s)", cfg.IntermediatePath, r.Line(), dropped)
		}
		stats.MatchedRecords++
		stats.Contexts += len(contexts)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", cfg.IntermediatePath, err)
	}

	stats.EnrichmentRows = agg.Len()
	stats.MalformedContexts += agg.Malformed()
	return agg, nil
}

// Merge left-joins the aggregated contexts onto the peptide table, writes the
// final table and, when configured, the SQLite export.
func Merge(cfg Config, agg *aggregate.Aggregator, stats *Stats) error {
	cfg.setDefaults()
	if cfg.OutputPath == "" {
		return errors.New("no output path configured")
	}

	r, err := rdelim.Open(cfg.PeptidePath, cfg.Delimiter)
	if err != nil {
		return err
	}
	defer r.Close()

	cols, err := r.Require(cfg.PeptideColumn)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.PeptidePath, err)
	}

	out, err := wdelim.Create(cfg.OutputPath, merge.Header(r.Header(), cfg.ContextColumn), cfg.Delimiter)
	if err != nil {
		return err
	}
	defer out.Close()

	joiner := merge.NewJoiner(cols[0], agg.ByKey(), cfg.StripModifications)
	width := len(r.Header())
	for r.Next() {
		fields := r.Fields()
		if len(fields) > width {
			fields = fields[:width]
		}
		n, err := joiner.Join(fields, out.Write)
		if err != nil {
			return err
		}
		if n > 0 {
			stats.MatchedRows++
		}
	}
	if err := r.Err(); err != nil {
		return fmt.Errorf("error reading %s: %w", cfg.PeptidePath, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	stats.OutputRows = out.Rows()
	fmt.Fprintf(cfg.Stdout, "Wrote %d rows to %s\n", out.Rows(), cfg.OutputPath)

	if cfg.SQLitePath != "" {
		if err := writeSQLite(cfg, agg); err != nil {
			return err
		}
	}
	return nil
}

func writeSQLite(cfg Config, agg *aggregate.Aggregator) error {
	w, err := sqlite.NewWriter(cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("failed to create output database: %w", err)
	}
	defer w.Close()

	if err := w.WriteRows(agg.Rows()); err != nil {
		return fmt.Errorf("failed to write enrichment rows: %w", err)
	}
	info := sqlite.RunInfo{
		PeptideFile: cfg.PeptidePath,
		ProteinFile: cfg.ProteinPath,
		Description: "pepctx enrichment",
	}
	if err := w.Finalize(info); err != nil {
		return fmt.Errorf("failed to finalize database: %w", err)
	}
	fmt.Fprintf(cfg.Stdout, "Wrote %d enrichment rows to %s (run %s)\n", agg.Len(), cfg.SQLitePath, w.RunID())
	return nil
}

func warnf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "Warning: "+format+"\n", args...)
}
