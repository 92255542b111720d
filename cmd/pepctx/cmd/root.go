// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/pepcontext/pkg/merge"
	"github.com/ChrisMcGann/pepcontext/pkg/pipeline"
	"github.com/ChrisMcGann/pepcontext/pkg/reader/delim"
	"github.com/ChrisMcGann/pepcontext/pkg/scan"
)

var (
	// I/O flags
	peptideFile      string
	proteinFile      string
	outputFile       string
	intermediateFile string
	sqliteFile       string

	// Shared flags
	batchSize          int
	threads            int
	delimiter          string
	peptideColumn      string
	groupColumn        string
	sequenceColumn     string
	contextColumn      string
	separator          string
	nonOverlapping     bool
	stripModifications bool
	quiet              bool
)

// envFlags maps environment variables to the flags they provide defaults for.
// Values from a .env file are visible here once main has loaded it.
var envFlags = map[string]string{
	"PEPCTX_BATCH_SIZE":      "batch-size",
	"PEPCTX_THREADS":         "threads",
	"PEPCTX_DELIMITER":       "delimiter",
	"PEPCTX_PEPTIDE_COLUMN":  "peptide-column",
	"PEPCTX_GROUP_COLUMN":    "group-column",
	"PEPCTX_SEQUENCE_COLUMN": "sequence-column",
	"PEPCTX_CONTEXT_COLUMN":  "context-column",
}

var rootCmd = &cobra.Command{
	Use:   "pepctx",
	Short: "PepContext - map peptides to their flanking protein context",
	Long: `PepContext finds every occurrence of each peptide inside the protein
sequences of its protein group and annotates the peptide table with the
matched context (previous residue, peptide, next residue).

- Ambiguous residues in peptides are expanded: Z=Q/E, B=D/N, J=L/I, X=any
- Overlapping occurrences are reported (see --non-overlapping)
- Protein sequences separated by ';' are scanned as isoforms
- Protein input is processed in bounded batches on multiple threads`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: applyEnv,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(summarizeCmd)

	pf := rootCmd.PersistentFlags()
	pf.IntVar(&batchSize, "batch-size", pipeline.DefaultBatchSize, "Protein records per batch (bounds memory)")
	pf.IntVarP(&threads, "threads", "t", runtime.NumCPU(), "Number of worker threads per batch")
	pf.StringVar(&delimiter, "delimiter", "", "Field delimiter: tab, comma, semicolon, pipe (auto-detect from extension if not specified)")
	pf.StringVar(&peptideColumn, "peptide-column", pipeline.DefaultPeptideColumn, "Peptide table column holding the stripped sequence")
	pf.StringVar(&groupColumn, "group-column", pipeline.DefaultGroupColumn, "Column holding the protein group identifier")
	pf.StringVar(&sequenceColumn, "sequence-column", pipeline.DefaultSequenceColumn, "Protein table column holding the sequence(s)")
	pf.StringVar(&contextColumn, "context-column", merge.DefaultContextColumn, "Name of the enrichment column in the final table")
	pf.StringVar(&separator, "separator", scan.DefaultSeparator, "Separator between isoform sequences in the sequence column")
	pf.BoolVar(&nonOverlapping, "non-overlapping", false, "Resume searching after the end of each match instead of one residue after its start")
	pf.BoolVar(&stripModifications, "strip-modifications", false, "Remove modification annotations from peptide sequences before matching")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
}

// applyEnv fills flags the user did not set from PEPCTX_* environment variables.
func applyEnv(cmd *cobra.Command, args []string) error {
	for env, name := range envFlags {
		val, ok := os.LookupEnv(env)
		if !ok || val == "" {
			continue
		}
		f := cmd.Flags().Lookup(name)
		if f == nil || f.Changed {
			continue
		}
		if err := cmd.Flags().Set(name, val); err != nil {
			return fmt.Errorf("invalid %s=%q: %w", env, val, err)
		}
	}
	return nil
}

// buildConfig validates the shared flags and assembles a pipeline config.
func buildConfig(cmd *cobra.Command) (pipeline.Config, error) {
	if batchSize < 1 {
		return pipeline.Config{}, fmt.Errorf("--batch-size must be at least 1, got %d", batchSize)
	}
	if threads < 1 {
		return pipeline.Config{}, fmt.Errorf("--threads must be at least 1, got %d", threads)
	}
	comma, ok := delim.ParseDelimiter(delimiter)
	if !ok {
		return pipeline.Config{}, fmt.Errorf("invalid delimiter '%s', must be tab, comma, semicolon or pipe", delimiter)
	}

	var stdout io.Writer = cmd.OutOrStdout()
	if quiet {
		stdout = io.Discard
	}

	return pipeline.Config{
		PeptidePath:        peptideFile,
		ProteinPath:        proteinFile,
		IntermediatePath:   intermediateFile,
		OutputPath:         outputFile,
		SQLitePath:         sqliteFile,
		BatchSize:          batchSize,
		Threads:            threads,
		Delimiter:          comma,
		PeptideColumn:      peptideColumn,
		GroupColumn:        groupColumn,
		SequenceColumn:     sequenceColumn,
		ContextColumn:      contextColumn,
		Separator:          separator,
		NonOverlapping:     nonOverlapping,
		StripModifications: stripModifications,
		Stdout:             stdout,
		Stderr:             cmd.ErrOrStderr(),
	}, nil
}

// requireFiles checks that every named input exists.
func requireFiles(paths ...string) error {
	for _, p := range paths {
		if p == "-" {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("input file does not exist: %s", p)
		} else if err != nil {
			return fmt.Errorf("cannot access input file %s: %w", p, err)
		}
	}
	return nil
}
