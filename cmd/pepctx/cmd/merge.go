package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/pepcontext/pkg/pipeline"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Join a per-protein match table onto the peptide table",
	Long: `Read the matchContexts column of a table written by 'pepctx scan' (or
'pepctx run --intermediate'), de-duplicate the contexts and left-join them
onto the peptide table by stripped sequence. Contexts that no longer parse
as P.PEPTIDE.F are dropped with a warning.

Examples:
  pepctx merge --peptides peptides.tsv --intermediate matches.tsv --out enriched.tsv`,
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVarP(&peptideFile, "peptides", "p", "", "Peptide table path (required)")
	mergeCmd.Flags().StringVarP(&intermediateFile, "intermediate", "i", "", "Per-protein match table (required)")
	mergeCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Enriched peptide table (required)")
	mergeCmd.Flags().StringVar(&sqliteFile, "sqlite", "", "Also export enrichment rows to this SQLite database")

	mergeCmd.MarkFlagRequired("peptides")
	mergeCmd.MarkFlagRequired("intermediate")
	mergeCmd.MarkFlagRequired("out")
}

func runMerge(cmd *cobra.Command, args []string) error {
	if peptideFile == "-" {
		return errPeptideStdin
	}
	if err := requireFiles(peptideFile, intermediateFile); err != nil {
		return err
	}
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	var stats pipeline.Stats
	agg, err := pipeline.LoadIntermediate(cfg, &stats)
	if err != nil {
		return err
	}
	if err := pipeline.Merge(cfg, agg, &stats); err != nil {
		return err
	}

	fmt.Fprintf(cfg.Stdout, "\nMerge complete!\n")
	stats.Print(cfg.Stdout)
	fmt.Fprintf(cfg.Stdout, "Output: %s\n", cfg.OutputPath)
	return nil
}
