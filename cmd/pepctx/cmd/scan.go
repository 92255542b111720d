package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/pepcontext/pkg/pipeline"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Write the per-protein match table only",
	Long: `Index the peptide table and scan the protein table, writing one row per
protein sequence with at least one match (proteinGroupId, sequence,
matchContexts). The table can be reviewed or edited and then joined onto the
peptide table with 'pepctx merge'.

Examples:
  pepctx scan --peptides peptides.tsv --proteins proteins.tsv --intermediate matches.tsv`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&peptideFile, "peptides", "p", "", "Peptide table path (required)")
	scanCmd.Flags().StringVarP(&proteinFile, "proteins", "P", "", "Protein table path, '-' for stdin (required)")
	scanCmd.Flags().StringVarP(&intermediateFile, "intermediate", "o", "", "Per-protein match table (required)")

	scanCmd.MarkFlagRequired("peptides")
	scanCmd.MarkFlagRequired("proteins")
	scanCmd.MarkFlagRequired("intermediate")
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := requireFiles(peptideFile, proteinFile); err != nil {
		return err
	}
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var stats pipeline.Stats
	ix, err := pipeline.BuildIndex(cfg, &stats)
	if err != nil {
		return err
	}
	if _, err := pipeline.Scan(ctx, cfg, ix, &stats); err != nil {
		return err
	}

	fmt.Fprintf(cfg.Stdout, "\nScan complete!\n")
	stats.Print(cfg.Stdout)
	fmt.Fprintf(cfg.Stdout, "Output: %s\n", cfg.IntermediatePath)
	return nil
}
