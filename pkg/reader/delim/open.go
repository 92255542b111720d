package delim

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// multiReadCloser closes multiple io.Closers when Close() is called.
type multiReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiReadCloser) Close() error {
	var err error
	for _, c := range m.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// openFile opens path for reading. "-" is stdin; gzip input is detected by
// magic number or .gz suffix and decompressed transparently.
func openFile(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	var sig [2]byte
	n, _ := io.ReadFull(fh, sig[:])
	if _, err := fh.Seek(0, io.SeekStart); err != nil {
		_ = fh.Close()
		return nil, err
	}
	if (n == 2 && sig[0] == 0x1f && sig[1] == 0x8b) || strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(fh)
		if err != nil {
			_ = fh.Close()
			return nil, err
		}
		return &multiReadCloser{Reader: gr, closers: []io.Closer{gr, fh}}, nil
	}
	return fh, nil
}

// DelimiterFor picks the field delimiter from a file name: tab for .tsv, .tab
// and .txt (optionally gzipped), comma otherwise.
func DelimiterFor(path string) rune {
	name := strings.ToLower(strings.TrimSuffix(path, ".gz"))
	switch filepath.Ext(name) {
	case ".tsv", ".tab", ".txt":
		return '\t'
	default:
		return ','
	}
}

// ParseDelimiter converts a --delimiter flag value into a rune. Empty means
// detect from the file name.
func ParseDelimiter(s string) (rune, bool) {
	switch strings.ToLower(s) {
	case "":
		return 0, true
	case "tab", `\t`, "\t":
		return '\t', true
	case "comma", ",":
		return ',', true
	case "semicolon", ";":
		return ';', true
	case "pipe", "|":
		return '|', true
	}
	return 0, false
}
