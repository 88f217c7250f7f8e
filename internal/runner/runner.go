// Package runner processes package definition files one after the other,
// resolving and classifying the download links of each package.
package runner

import (
	"context"
	"fmt"

	"github.com/ralt/aer/internal/classifier"
	"github.com/ralt/aer/internal/models"
	"github.com/ralt/aer/internal/scanner"
	"github.com/sirupsen/logrus"
)

// Loader reads a package definition
type Loader interface {
	Load(def scanner.ScannedDefinition) (*models.PackageData, error)
}

// LoaderFunc adapts a function to the Loader interface
type LoaderFunc func(def scanner.ScannedDefinition) (*models.PackageData, error)

// Load calls f(def)
func (f LoaderFunc) Load(def scanner.ScannedDefinition) (*models.PackageData, error) {
	return f(def)
}

// LinkResolver resolves a parse url strategy into candidate links
type LinkResolver interface {
	Resolve(ctx context.Context, strategy *models.ParseURL) ([]models.Link, error)
}

// Report is the outcome of processing one package definition
type Report struct {
	File      string
	PackageID string
	Links     []models.Link
	Result    models.ClassificationResult
}

// Runner processes package definitions
type Runner struct {
	loader   Loader
	resolver LinkResolver
}

// New creates a Runner
func New(loader Loader, resolver LinkResolver) *Runner {
	return &Runner{loader: loader, resolver: resolver}
}

// RunAll processes defs in order and stops at the first failure. Later
// definitions are not attempted and the failing definition's error is
// returned.
func (r *Runner) RunAll(ctx context.Context, defs []scanner.ScannedDefinition) error {
	for _, def := range defs {
		if _, err := r.Run(ctx, def); err != nil {
			return err
		}
	}
	return nil
}

// RunPaths processes paths in order and stops at the first failure. Each
// path is expanded into definitions only once every path before it has been
// processed, so a missing later path never prevents earlier packages from
// running.
func (r *Runner) RunPaths(ctx context.Context, sc scanner.Scanner, paths []string) error {
	for _, path := range paths {
		defs, err := sc.Scan(ctx, []string{path})
		if err != nil {
			return &models.AerError{
				Type:    models.ErrDefinitionParse,
				Package: path,
				Err:     err,
			}
		}
		if err := r.RunAll(ctx, defs); err != nil {
			return err
		}
	}
	return nil
}

// Run processes a single package definition. Packages without Chocolatey
// updater data produce a report without links.
func (r *Runner) Run(ctx context.Context, def scanner.ScannedDefinition) (*Report, error) {
	logrus.Infof("Loading package data from '%s'", def.Path)

	data, err := r.loader.Load(def)
	if err != nil {
		return nil, err
	}

	id := data.Metadata.ID
	log := logrus.WithField("package", id)
	log.Infof("Successfully loaded package data with identifier '%s'!", id)

	report := &Report{File: def.Path, PackageID: id}
	if !data.HasChocolatey() {
		log.Info("No chocolatey updater data available, nothing to resolve")
		return report, nil
	}

	choco := data.Chocolatey()
	links, err := r.resolver.Resolve(ctx, choco.ParseURL)
	if err != nil {
		if models.IsType(err, models.ErrMissingParseURL) {
			log.Warn("No url have been specified to parse!")
		}
		return nil, withPackage(err, id)
	}
	report.Links = links
	log.Debugf("Classifying %d candidate links using %d regexes", len(links), len(choco.Regexes))

	result, err := classifier.Classify(links, choco.Regexes)
	if err != nil {
		return nil, withPackage(err, id)
	}
	report.Result = result
	logResult(log, result)

	return report, nil
}

func logResult(log *logrus.Entry, result models.ClassificationResult) {
	if result.Arch32 != nil {
		log.Infof("Arch 32: %s", describe(*result.Arch32))
	} else {
		log.Info("Arch 32: None")
	}
	if result.Arch64 != nil {
		log.Infof("Arch 64: %s", describe(*result.Arch64))
	} else {
		log.Info("Arch 64: None")
	}

	others := make([]string, len(result.Others))
	for i, link := range result.Others {
		others[i] = link.Href
	}
	log.Infof("Others: %q", others)
}

func describe(link models.Link) string {
	if link.Version == nil {
		return link.Href
	}
	return fmt.Sprintf("%s (version %s)", link.Href, link.Version)
}

// withPackage attaches the package identifier to an AerError that has none
func withPackage(err error, id string) error {
	if aerErr, ok := err.(*models.AerError); ok && aerErr.Package == "" {
		return &models.AerError{Type: aerErr.Type, Package: id, Err: aerErr.Err}
	}
	return err
}
