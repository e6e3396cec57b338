// Covid19DB - COVID-19 Dataset Loader
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/covid19db

package fetch

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var errDecompress = errors.New("decompress")

type compression int

const (
	compressionNone compression = iota
	compressionGzip
	compressionZstd
)

// detectCompression picks a codec from the file name and returns the name
// with the compression suffix removed.
func detectCompression(name string) (compression, string) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		return compressionGzip, name[:len(name)-len(".gz")]
	case strings.HasSuffix(lower, ".zst"):
		return compressionZstd, name[:len(name)-len(".zst")]
	default:
		return compressionNone, name
	}
}

// decompressReader wraps r with the decoder for c. Closing the result
// releases the decoder but not r.
func decompressReader(r io.Reader, c compression) (io.ReadCloser, error) {
	switch c {
	case compressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %w", errDecompress, err)
		}
		return zr, nil
	case compressionZstd:
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", errDecompress, err)
		}
		return zr.IOReadCloser(), nil
	default:
		return io.NopCloser(r), nil
	}
}

// copyDecompressed copies r through the decoder for c into w and returns
// the number of decompressed bytes written.
func copyDecompressed(w io.Writer, r io.Reader, c compression) (int64, error) {
	dr, err := decompressReader(r, c)
	if err != nil {
		return 0, err
	}
	defer dr.Close() //nolint:errcheck // decoder close has nothing to flush

	n, err := io.Copy(w, dr)
	if err != nil {
		if c != compressionNone {
			return n, fmt.Errorf("%w: %w", errDecompress, err)
		}
		return n, err
	}
	return n, nil
}
