package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/pepcontext/pkg/pipeline"
	"github.com/ChrisMcGann/pepcontext/pkg/reader/delim"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize the contexts in an enriched or per-protein match table",
	Long: `Print summary statistics about a table written by pepctx: row count, context
count, distinct peptides and how many contexts sit at a protein terminus.
The context column is detected unless --context-column is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireFiles(args[0]); err != nil {
			return err
		}
		comma, ok := delim.ParseDelimiter(delimiter)
		if !ok {
			return fmt.Errorf("invalid delimiter '%s', must be tab, comma, semicolon or pipe", delimiter)
		}

		column := ""
		if cmd.Flags().Changed("context-column") {
			column = contextColumn
		}
		s, err := pipeline.Summarize(args[0], comma, column)
		if err != nil {
			return err
		}
		s.Print(cmd.OutOrStdout())
		return nil
	},
}
