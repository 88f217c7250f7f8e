package utils

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ralt/aer/internal/scanner"
	"github.com/ulikunitz/xz"
)

// GzipDecompress decompresses gzip data
func GzipDecompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

// XzDecompress decompresses xz data
func XzDecompress(data []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	return io.ReadAll(r)
}

// ZstdDecompress decompresses zstandard data
func ZstdDecompress(data []byte) ([]byte, error) {
	d, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer d.Close()

	return io.ReadAll(d)
}

// DecompressDefinition returns the plain toml contents of a definition
// stored in the given format
func DecompressDefinition(data []byte, defType scanner.DefinitionType) ([]byte, error) {
	switch defType {
	case scanner.TypeToml, scanner.TypeUnknown:
		return data, nil
	case scanner.TypeTomlGzip:
		return GzipDecompress(data)
	case scanner.TypeTomlXz:
		return XzDecompress(data)
	case scanner.TypeTomlZstd:
		return ZstdDecompress(data)
	default:
		return nil, fmt.Errorf("unsupported definition type: %s", defType)
	}
}
