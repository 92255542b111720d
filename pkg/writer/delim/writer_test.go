package delim

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "matches.csv")
	w, err := Create(path, []string{"proteinGroupId", "sequence", "matchContexts"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write([]string{"G1", "XXPEPYY", "X.PEP.Y,Y.PEP.."}); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := w.Write([]string{"G2", "AAAA", "..AA.A"}); err != nil {
		t.Fatal(err)
	}
	if w.Rows() != 2 {
		t.Errorf("Rows() = %d, want 2", w.Rows())
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "proteinGroupId,sequence,matchContexts\n" +
		"G1,XXPEPYY,\"X.PEP.Y,Y.PEP..\"\n" +
		"G2,AAAA,..AA.A\n"
	if string(data) != want {
		t.Errorf("file contents:\n%s\nwant:\n%s", data, want)
	}
}

func TestWriterTSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "final.tsv")
	w, err := Create(path, []string{"a", "b"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write([]string{"1", "x,y"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "a\tb\n1\tx,y\n" {
		t.Errorf("unexpected TSV output %q", data)
	}
}
