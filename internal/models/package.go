package models

import (
	"fmt"

	"github.com/ralt/aer/internal/version"
)

// PackageData is a package definition loaded from a package file
type PackageData struct {
	Metadata Metadata
	Updater  Updater
}

// Metadata contains the descriptive part of a package definition
type Metadata struct {
	ID         string `toml:"id"`
	Summary    string `toml:"summary"`
	ProjectURL string `toml:"project_url"`
}

// Updater holds the updater configurations of a package
type Updater struct {
	Chocolatey *ChocolateyConfig
}

// HasChocolatey reports whether the package carries Chocolatey updater data
func (d *PackageData) HasChocolatey() bool {
	return d.Updater.Chocolatey != nil
}

// Chocolatey returns the Chocolatey updater data, or nil if there is none
func (d *PackageData) Chocolatey() *ChocolateyConfig {
	return d.Updater.Chocolatey
}

// ChocolateyConfig describes where download links are found and how they
// are classified
type ChocolateyConfig struct {
	ParseURL *ParseURL
	Regexes  []RegexEntry
}

// ParseURLKind distinguishes the two parse url strategies
type ParseURLKind int

const (
	// ParseURLDirect uses every link found on the page
	ParseURLDirect ParseURLKind = iota
	// ParseURLFilteredWithRegex filters the page links and follows the
	// first match
	ParseURLFilteredWithRegex
)

// String returns the string representation of ParseURLKind
func (k ParseURLKind) String() string {
	switch k {
	case ParseURLDirect:
		return "Direct"
	case ParseURLFilteredWithRegex:
		return "FilteredWithRegex"
	default:
		return "Unknown"
	}
}

// ParseURL is the strategy used to locate the candidate links of a package.
// An empty Regex means the links of URL are used directly.
type ParseURL struct {
	URL   string
	Regex string
}

// Kind returns the strategy kind
func (p *ParseURL) Kind() ParseURLKind {
	if p.Regex == "" {
		return ParseURLDirect
	}
	return ParseURLFilteredWithRegex
}

// UnmarshalTOML accepts either a plain url string or a table with the
// keys url and regex.
func (p *ParseURL) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case string:
		p.URL = v
		p.Regex = ""
	case map[string]any:
		for key, value := range v {
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("parse_url.%s must be a string, got %T", key, value)
			}
			switch key {
			case "url":
				p.URL = s
			case "regex":
				p.Regex = s
			default:
				return fmt.Errorf("unknown parse_url key %q", key)
			}
		}
	default:
		return fmt.Errorf("parse_url must be a string or a table, got %T", data)
	}

	if p.URL == "" {
		return fmt.Errorf("parse_url has no url")
	}
	return nil
}

// RegexEntry is a named classification pattern. Patterns may contain a
// named group "version".
type RegexEntry struct {
	Name    string
	Pattern string
}

// Link is a hyperlink found on a page
type Link struct {
	Href    string
	Version *version.Version
}

// ClassificationResult is the outcome of classifying links
type ClassificationResult struct {
	Arch32 *Link
	Arch64 *Link
	Others []Link
}
