package report

import (
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// compressed wraps w according to the report path suffix: .gz is gzip,
// .zst is zstd, anything else is written as is. Closing the returned
// writer flushes the compressor but not w.
func compressed(w io.Writer, path string) (io.WriteCloser, error) {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return gzip.NewWriter(w), nil
	case strings.HasSuffix(path, ".zst"):
		return zstd.NewWriter(w)
	default:
		return nopCloser{w}, nil
	}
}
