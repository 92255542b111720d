package pipeline

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSummarize(t *testing.T) {
	cfg := testConfig(t)
	if _, err := Run(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want Summary
	}{
		{
			name: "final table",
			path: cfg.OutputPath,
			want: Summary{
				Column: "matchContext", Rows: 10, RowsWithContext: 7, Contexts: 7,
				DistinctContexts: 5, DistinctKeys: 2, NTerminal: 1, CTerminal: 2,
			},
		},
		{
			name: "intermediate table",
			path: cfg.IntermediatePath,
			want: Summary{
				Column: "matchContexts", Rows: 4, RowsWithContext: 4, Contexts: 6,
				DistinctContexts: 6, DistinctKeys: 3, NTerminal: 1, CTerminal: 3,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Summarize(tt.path, 0, "")
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Summarize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSummarizeMalformed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "edited.csv", "matchContext\nX.PEP.Y\nPEP\n\n")
	got, err := Summarize(path, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if got.Malformed != 1 || got.Contexts != 1 || got.Rows != 2 {
		t.Errorf("Summarize() = %+v", got)
	}

	if _, err := Summarize(filepath.Join(dir, "edited.csv"), 0, "nope"); err == nil {
		t.Error("expected missing column error")
	}
}
