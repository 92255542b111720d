package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/pepcontext/pkg/pipeline"
)

var errPeptideStdin = errors.New("the peptide table is read twice and cannot come from stdin")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Map peptides to protein contexts and write the enriched peptide table",
	Long: `Run the full pipeline: index the peptide table, scan the protein table in
batches, aggregate the matched contexts and left-join them onto the peptide
table. Every peptide row appears at least once in the output, once per
distinct matching context.

Examples:
  # Enrich a peptide table
  pepctx run --peptides peptides.tsv --proteins proteins.tsv --out enriched.tsv

  # Keep the per-protein match table and export a SQLite database
  pepctx run -p peptides.csv -P proteins.csv.gz -o enriched.csv --intermediate matches.csv --sqlite enrichment.db

  # Peptides carry modification annotations
  pepctx run -p report.tsv -P fasta.tsv -o out.tsv --peptide-column modifiedSequence --strip-modifications`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&peptideFile, "peptides", "p", "", "Peptide table path (required)")
	runCmd.Flags().StringVarP(&proteinFile, "proteins", "P", "", "Protein table path, '-' for stdin (required)")
	runCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Enriched peptide table (required)")
	runCmd.Flags().StringVar(&intermediateFile, "intermediate", "", "Also write per-protein matches to this table")
	runCmd.Flags().StringVar(&sqliteFile, "sqlite", "", "Also export enrichment rows to this SQLite database")

	runCmd.MarkFlagRequired("peptides")
	runCmd.MarkFlagRequired("proteins")
	runCmd.MarkFlagRequired("out")
}

func runRun(cmd *cobra.Command, args []string) error {
	if peptideFile == "-" {
		return errPeptideStdin
	}
	if err := requireFiles(peptideFile, proteinFile); err != nil {
		return err
	}
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Fprintf(cfg.Stdout, "Mapping %s onto %s...\n", peptideFile, proteinFile)
	fmt.Fprintf(cfg.Stdout, "Batch size: %d, threads: %d\n", cfg.BatchSize, cfg.Threads)
	if cfg.NonOverlapping {
		fmt.Fprintf(cfg.Stdout, "Matching: non-overlapping\n")
	}

	stats, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(cfg.Stdout, "\nMapping complete!\n")
	stats.Print(cfg.Stdout)
	fmt.Fprintf(cfg.Stdout, "Output: %s\n", cfg.OutputPath)
	return nil
}
