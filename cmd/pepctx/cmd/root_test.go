package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestApplyEnv(t *testing.T) {
	var size int
	var column string
	c := &cobra.Command{Use: "x"}
	c.Flags().IntVar(&size, "batch-size", 10, "")
	c.Flags().StringVar(&column, "peptide-column", "strippedPeptideSequence", "")

	t.Setenv("PEPCTX_BATCH_SIZE", "25")
	t.Setenv("PEPCTX_PEPTIDE_COLUMN", "sequence")
	if err := c.Flags().Parse([]string{"--peptide-column", "fromFlag"}); err != nil {
		t.Fatal(err)
	}

	if err := applyEnv(c, nil); err != nil {
		t.Fatal(err)
	}
	if size != 25 {
		t.Errorf("batch-size = %d, want 25 from environment", size)
	}
	if column != "fromFlag" {
		t.Errorf("peptide-column = %q, explicit flag should win", column)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	var size int
	c := &cobra.Command{Use: "x"}
	c.Flags().IntVar(&size, "batch-size", 10, "")
	t.Setenv("PEPCTX_BATCH_SIZE", "many")

	if err := applyEnv(c, nil); err == nil {
		t.Error("expected error for non-numeric PEPCTX_BATCH_SIZE")
	}
}

func TestRunAndSummarizeCommands(t *testing.T) {
	dir := t.TempDir()
	peptides := filepath.Join(dir, "peptides.tsv")
	proteins := filepath.Join(dir, "proteins.tsv")
	out := filepath.Join(dir, "enriched.tsv")
	if err := os.WriteFile(peptides, []byte("strippedPeptideSequence\tproteinGroupId\nPEP\tG1\nKR\tG1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(proteins, []byte("proteinGroupId\tsequence\nG1\tXXPEPYY\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	defer rootCmd.SetOut(nil)
	defer rootCmd.SetErr(nil)

	rootCmd.SetArgs([]string{"run", "-p", peptides, "-P", proteins, "-o", out, "--batch-size", "1", "-t", "2"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("run: %v\n%s", err, stdout.String())
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := "strippedPeptideSequence\tproteinGroupId\tmatchContext\nPEP\tG1\tX.PEP.Y\nKR\tG1\t\n"
	if string(data) != want {
		t.Errorf("enriched table = %q, want %q", data, want)
	}
	if !strings.Contains(stdout.String(), "Mapping complete!") {
		t.Errorf("missing completion message:\n%s", stdout.String())
	}

	stdout.Reset()
	rootCmd.SetArgs([]string{"summarize", out})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !strings.Contains(stdout.String(), "Rows: 2 (1 with a context)") {
		t.Errorf("unexpected summary:\n%s", stdout.String())
	}
}
