package scanner

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Magic bytes for compressed definitions
var (
	gzipMagic = []byte{0x1F, 0x8B}
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	xzMagic   = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}
)

// DetectDefinitionType determines the definition type based on magic bytes
// and file extension
func DetectDefinitionType(path string) (DefinitionType, error) {
	f, err := os.Open(path)
	if err != nil {
		return TypeUnknown, err
	}
	defer f.Close()

	header := make([]byte, 8)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return TypeUnknown, err
	}
	header = header[:n]

	return DetectType(filepath.Base(path), header), nil
}

// DetectType classifies a definition from its file name and leading bytes.
// Magic bytes win over the extension.
func DetectType(name string, header []byte) DefinitionType {
	name = strings.ToLower(name)

	switch {
	case bytes.HasPrefix(header, gzipMagic):
		return TypeTomlGzip
	case bytes.HasPrefix(header, xzMagic):
		return TypeTomlXz
	case bytes.HasPrefix(header, zstdMagic):
		return TypeTomlZstd
	}

	switch {
	case strings.HasSuffix(name, ".toml"):
		return TypeToml
	case strings.HasSuffix(name, ".toml.gz"):
		return TypeTomlGzip
	case strings.HasSuffix(name, ".toml.xz"):
		return TypeTomlXz
	case strings.HasSuffix(name, ".toml.zst"):
		return TypeTomlZstd
	}

	return TypeUnknown
}

// HasDefinitionExtension reports whether name looks like a package
// definition file.
func HasDefinitionExtension(name string) bool {
	name = strings.ToLower(name)
	for _, ext := range []string{".toml", ".toml.gz", ".toml.xz", ".toml.zst"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
