package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// FileSystemScanner implements Scanner interface for filesystem scanning
type FileSystemScanner struct{}

// NewFileSystemScanner creates a new filesystem scanner
func NewFileSystemScanner() *FileSystemScanner {
	return &FileSystemScanner{}
}

// Scan expands paths into package definitions, keeping the order of paths.
// Files are used as given; directories are walked recursively in lexical
// order for files with a definition extension.
func (s *FileSystemScanner) Scan(ctx context.Context, paths []string) ([]ScannedDefinition, error) {
	var definitions []ScannedDefinition

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}

		if !info.IsDir() {
			def, err := s.scanFile(path, info)
			if err != nil {
				return nil, err
			}
			definitions = append(definitions, def)
			continue
		}

		found, err := s.scanDir(ctx, path)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			logrus.Warnf("No package definitions found in %s", path)
		}
		definitions = append(definitions, found...)
	}

	return definitions, nil
}

func (s *FileSystemScanner) scanDir(ctx context.Context, dir string) ([]ScannedDefinition, error) {
	var definitions []ScannedDefinition

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Check context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() || !HasDefinitionExtension(info.Name()) {
			return nil
		}

		def, err := s.scanFile(path, info)
		if err != nil {
			logrus.Warnf("Failed to detect type for %s: %v", path, err)
			return nil
		}

		logrus.Debugf("Found %s package definition: %s", def.Type, path)
		definitions = append(definitions, def)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}

	return definitions, nil
}

func (s *FileSystemScanner) scanFile(path string, info os.FileInfo) (ScannedDefinition, error) {
	defType, err := s.DetectType(path)
	if err != nil {
		return ScannedDefinition{}, fmt.Errorf("failed to detect type for %s: %w", path, err)
	}

	// Explicitly named files are read as plain toml when nothing else fits
	if defType == TypeUnknown {
		defType = TypeToml
	}

	return ScannedDefinition{
		Path: path,
		Type: defType,
		Size: info.Size(),
	}, nil
}

// DetectType determines the definition type of a file
func (s *FileSystemScanner) DetectType(path string) (DefinitionType, error) {
	return DetectDefinitionType(path)
}
