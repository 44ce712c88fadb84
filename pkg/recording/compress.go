package recording

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression selects the decompression applied to an input stream.
type Compression string

const (
	CompressionAuto Compression = "auto"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
	CompressionNone Compression = "none"
)

// ParseCompression validates a compression name.
func ParseCompression(name string) (Compression, error) {
	switch c := Compression(name); c {
	case CompressionAuto, CompressionGzip, CompressionZstd, CompressionNone:
		return c, nil
	case "":
		return CompressionAuto, nil
	}
	return "", fmt.Errorf("unknown compression %q (known: auto, gzip, zstd, none)", name)
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// OpenReader wraps r with the requested decompression. Auto sniffs the
// stream's magic bytes and passes unrecognized data through untouched.
func OpenReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	if c == CompressionAuto || c == "" {
		c = sniffCompression(br)
	}
	switch c {
	case CompressionGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("recording: gzip: %w", err)
		}
		return zr, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("recording: zstd: %w", err)
		}
		return zr.IOReadCloser(), nil
	case CompressionNone:
		return io.NopCloser(br), nil
	}
	return nil, fmt.Errorf("recording: unknown compression %q", c)
}

func sniffCompression(br *bufio.Reader) Compression {
	head, _ := br.Peek(4)
	if bytes.HasPrefix(head, gzipMagic) {
		return CompressionGzip
	}
	if bytes.HasPrefix(head, zstdMagic) {
		return CompressionZstd
	}
	return CompressionNone
}
