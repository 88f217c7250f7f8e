// Package parser reads package definition files into models.PackageData.
package parser

import (
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/ralt/aer/internal/models"
	"github.com/ralt/aer/internal/scanner"
	"github.com/ralt/aer/internal/utils"
	"github.com/sirupsen/logrus"
)

// regexesKey is the toml key of the classification regexes
var regexesKey = []string{"updater", "chocolatey", "regexes"}

type document struct {
	Metadata models.Metadata `toml:"metadata"`
	Updater  struct {
		Chocolatey *chocolateyDocument `toml:"chocolatey"`
	} `toml:"updater"`
}

type chocolateyDocument struct {
	ParseURL *models.ParseURL  `toml:"parse_url"`
	Regexes  map[string]string `toml:"regexes"`
}

// ReadFile loads the package definition at path, detecting compressed
// definitions by their magic bytes and extension.
func ReadFile(path string) (*models.PackageData, error) {
	defType, err := scanner.DetectDefinitionType(path)
	if err != nil {
		return nil, definitionError(path, err)
	}
	return ReadDefinition(scanner.ScannedDefinition{Path: path, Type: defType})
}

// ReadDefinition loads a scanned package definition.
func ReadDefinition(def scanner.ScannedDefinition) (*models.PackageData, error) {
	data, err := os.ReadFile(def.Path)
	if err != nil {
		return nil, definitionError(def.Path, err)
	}

	plain, err := utils.DecompressDefinition(data, def.Type)
	if err != nil {
		return nil, definitionError(def.Path, fmt.Errorf("failed to decompress %s definition: %w", def.Type, err))
	}

	pkg, err := Parse(plain)
	if err != nil {
		return nil, definitionError(def.Path, err)
	}
	return pkg, nil
}

// Parse decodes a toml package definition. Regex entries keep the order in
// which they appear in the document.
func Parse(data []byte) (*models.PackageData, error) {
	var doc document
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, fmt.Errorf("invalid package definition: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		logrus.Debugf("Ignoring unknown keys in package definition: %v", undecoded)
	}

	if doc.Metadata.ID == "" {
		return nil, fmt.Errorf("package definition has no metadata.id")
	}

	pkg := &models.PackageData{Metadata: doc.Metadata}
	if choco := doc.Updater.Chocolatey; choco != nil {
		pkg.Updater.Chocolatey = &models.ChocolateyConfig{
			ParseURL: choco.ParseURL,
			Regexes:  orderedRegexes(md.Keys(), choco.Regexes),
		}
	}

	return pkg, nil
}

// orderedRegexes returns the regexes in document order. Names missing from
// keys, which should not happen, are appended in sorted order.
func orderedRegexes(keys []toml.Key, regexes map[string]string) []models.RegexEntry {
	entries := make([]models.RegexEntry, 0, len(regexes))
	seen := make(map[string]bool, len(regexes))

	for _, key := range keys {
		if len(key) != len(regexesKey)+1 || !hasPrefix(key, regexesKey) {
			continue
		}
		name := key[len(key)-1]
		pattern, ok := regexes[name]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		entries = append(entries, models.RegexEntry{Name: name, Pattern: pattern})
	}

	var rest []string
	for name := range regexes {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		entries = append(entries, models.RegexEntry{Name: name, Pattern: regexes[name]})
	}

	return entries
}

func hasPrefix(key toml.Key, prefix []string) bool {
	for i, part := range prefix {
		if key[i] != part {
			return false
		}
	}
	return true
}

func definitionError(path string, err error) error {
	return &models.AerError{
		Type:    models.ErrDefinitionParse,
		Package: path,
		Err:     err,
	}
}
