// Package resolver turns a parse url strategy into the list of candidate
// download links, optionally drilling through a second page.
package resolver

import (
	"context"
	"fmt"
	"regexp"

	"github.com/ralt/aer/internal/models"
	"github.com/ralt/aer/internal/web"
	"github.com/sirupsen/logrus"
)

// State is a resolution state
type State int

const (
	AwaitingFirstFetch State = iota
	AwaitingDrillFetch
	Resolved
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case AwaitingFirstFetch:
		return "AwaitingFirstFetch"
	case AwaitingDrillFetch:
		return "AwaitingDrillFetch"
	case Resolved:
		return "Resolved"
	default:
		return "Unknown"
	}
}

// Step is a snapshot of a resolution. URL and Filter describe the next
// fetch while the state is not Resolved; Links holds the result once it is.
type Step struct {
	State  State
	URL    string
	Filter *regexp.Regexp
	Links  []models.Link
}

// Start returns the initial step for a strategy. The strategy's regex is
// compiled here, so an invalid filter fails before anything is fetched.
func Start(strategy *models.ParseURL) (Step, error) {
	if strategy == nil {
		return Step{}, &models.AerError{
			Type: models.ErrMissingParseURL,
			Err:  fmt.Errorf("no url have been specified to parse"),
		}
	}

	step := Step{State: AwaitingFirstFetch, URL: strategy.URL}
	if strategy.Kind() == models.ParseURLFilteredWithRegex {
		re, err := regexp.Compile(strategy.Regex)
		if err != nil {
			return Step{}, &models.AerError{
				Type: models.ErrPattern,
				Err:  fmt.Errorf("invalid parse url regex: %w", err),
			}
		}
		step.Filter = re
	}
	return step, nil
}

// Next advances the resolution with the links returned by the fetch the
// step asked for. It does no I/O.
//
// A first fetch without a filter resolves to its links. A filtered first
// fetch resolves to an empty list when nothing matched, and otherwise asks
// for the first match to be fetched unfiltered. A drill fetch resolves to
// its own links, discarding the first-level matches.
func (s Step) Next(fetched []models.Link) Step {
	switch s.State {
	case AwaitingFirstFetch:
		if s.Filter == nil {
			return Step{State: Resolved, Links: fetched}
		}
		if len(fetched) == 0 {
			return Step{State: Resolved, Links: []models.Link{}}
		}
		return Step{State: AwaitingDrillFetch, URL: fetched[0].Href}
	case AwaitingDrillFetch:
		return Step{State: Resolved, Links: fetched}
	default:
		return s
	}
}

// Resolver resolves parse url strategies using a page fetcher.
type Resolver struct {
	fetcher web.PageFetcher
}

// New creates a Resolver
func New(fetcher web.PageFetcher) *Resolver {
	return &Resolver{fetcher: fetcher}
}

// Resolve returns the candidate links for strategy.
func (r *Resolver) Resolve(ctx context.Context, strategy *models.ParseURL) ([]models.Link, error) {
	step, err := Start(strategy)
	if err != nil {
		return nil, err
	}

	if step.Filter != nil {
		logrus.Infof("Parsing links on '%s' using regex '%s'", step.URL, step.Filter)
	} else {
		logrus.Infof("Parsing links on '%s'", step.URL)
	}

	for step.State != Resolved {
		links, err := r.fetch(ctx, step)
		if err != nil {
			return nil, err
		}

		next := step.Next(links)
		if next.State == AwaitingDrillFetch {
			logrus.Infof("%d links found, using first one to get links!", len(links))
			logrus.Infof("Parsing links on '%s'", next.URL)
		}
		step = next
	}

	return step.Links, nil
}

func (r *Resolver) fetch(ctx context.Context, step Step) ([]models.Link, error) {
	page, err := r.fetcher.Fetch(ctx, step.URL)
	if err != nil {
		return nil, &models.AerError{
			Type: models.ErrFetch,
			Err:  fmt.Errorf("failed to fetch %s: %w", step.URL, err),
		}
	}

	_, links := page.Links(step.Filter)
	return links, nil
}
