package scanner

import "context"

// DefinitionType represents the storage format of a package definition
type DefinitionType int

const (
	TypeUnknown DefinitionType = iota
	TypeToml
	TypeTomlGzip
	TypeTomlXz
	TypeTomlZstd
)

// String returns the string representation of DefinitionType
func (dt DefinitionType) String() string {
	switch dt {
	case TypeToml:
		return "toml"
	case TypeTomlGzip:
		return "toml+gzip"
	case TypeTomlXz:
		return "toml+xz"
	case TypeTomlZstd:
		return "toml+zstd"
	default:
		return "unknown"
	}
}

// ScannedDefinition represents a package definition file found during scanning
type ScannedDefinition struct {
	Path string
	Type DefinitionType
	Size int64
}

// Scanner interface for detecting and scanning package definitions
type Scanner interface {
	// Scan expands paths into package definition files
	Scan(ctx context.Context, paths []string) ([]ScannedDefinition, error)

	// DetectType determines the definition type of a file
	DetectType(path string) (DefinitionType, error)
}
