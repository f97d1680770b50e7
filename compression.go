package sheetdb

import (
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/nao1215/sheetdb/domain/model"
	"github.com/ulikunitz/xz"
)

// decompressor wraps a compressed workbook stream.
type decompressor struct {
	compressionType model.CompressionType
}

func newDecompressor(compressionType model.CompressionType) *decompressor {
	return &decompressor{compressionType: compressionType}
}

// reader wraps r with a decompression reader. The returned cleanup releases
// decoder resources but does not close r.
func (d *decompressor) reader(r io.Reader) (io.Reader, func() error, error) {
	switch d.compressionType {
	case model.CompressionNone:
		return r, func() error { return nil }, nil

	case model.CompressionGZ:
		gzReader, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gzReader, gzReader.Close, nil

	case model.CompressionBZ2:
		// bzip2.NewReader doesn't need closing
		return bzip2.NewReader(r), func() error { return nil }, nil

	case model.CompressionXZ:
		xzReader, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		// xz.Reader doesn't have a Close method
		return xzReader, func() error { return nil }, nil

	case model.CompressionZSTD:
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return decoder, func() error {
			decoder.Close()
			return nil
		}, nil

	default:
		return nil, nil, fmt.Errorf("%w: compression %v", ErrUnsupportedFormat, d.compressionType)
	}
}

// openDecompressed opens path and returns a reader that handles
// decompression according to f's compression extension.
func openDecompressed(f *model.File) (io.Reader, func() error, error) {
	file, err := os.Open(f.Path()) //nolint:gosec // User-provided path is necessary for file operations
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	reader, cleanup, err := newDecompressor(f.Compression()).reader(file)
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}

	compositeCleanup := func() error {
		cleanupErr := cleanup()
		if closeErr := file.Close(); closeErr != nil && cleanupErr == nil {
			cleanupErr = closeErr
		}
		return cleanupErr
	}

	return reader, compositeCleanup, nil
}
