// Package classifier sorts candidate download links into architecture
// slots and a catch-all bucket using named regular expressions.
package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ralt/aer/internal/models"
	"github.com/ralt/aer/internal/version"
)

const (
	arch32Name = "arch32"
	arch64Name = "arch64"

	versionGroup = "version"
)

// Rule is a compiled regex entry
type Rule struct {
	Name string
	re   *regexp.Regexp
}

// Compile compiles every entry, in order. The first invalid pattern is
// reported as a pattern error.
func Compile(entries []models.RegexEntry) ([]Rule, error) {
	rules := make([]Rule, 0, len(entries))
	for _, entry := range entries {
		re, err := regexp.Compile(entry.Pattern)
		if err != nil {
			return nil, &models.AerError{
				Type: models.ErrPattern,
				Err:  fmt.Errorf("invalid regex for %s: %w", entry.Name, err),
			}
		}
		rules = append(rules, Rule{Name: entry.Name, re: re})
	}
	return rules, nil
}

// Classify compiles entries and classifies links with them.
func Classify(links []models.Link, entries []models.RegexEntry) (models.ClassificationResult, error) {
	rules, err := Compile(entries)
	if err != nil {
		return models.ClassificationResult{}, err
	}
	return ClassifyRules(links, rules), nil
}

// ClassifyRules folds rules over links. Rules named arch32 or arch64
// (case-insensitive) take the first matching link, replacing whatever an
// earlier rule of the same name selected. All other rules append every
// match to Others. The links slice is never modified.
func ClassifyRules(links []models.Link, rules []Rule) models.ClassificationResult {
	result := models.ClassificationResult{Others: []models.Link{}}
	for _, rule := range rules {
		result = apply(result, rule, links)
	}
	return result
}

func apply(acc models.ClassificationResult, rule Rule, links []models.Link) models.ClassificationResult {
	matches := Match(rule, links)

	switch strings.ToLower(rule.Name) {
	case arch32Name:
		acc.Arch32 = first(matches)
	case arch64Name:
		acc.Arch64 = first(matches)
	default:
		others := make([]models.Link, 0, len(acc.Others)+len(matches))
		others = append(others, acc.Others...)
		acc.Others = append(others, matches...)
	}
	return acc
}

// Match returns copies of the links whose href matches the rule, in order.
// When the rule has a version group that captured a parsable version, the
// copy carries it.
func Match(rule Rule, links []models.Link) []models.Link {
	groupIndex := rule.re.SubexpIndex(versionGroup)

	var matches []models.Link
	for _, link := range links {
		idx := rule.re.FindStringSubmatchIndex(link.Href)
		if idx == nil {
			continue
		}

		match := link
		if groupIndex >= 0 && idx[2*groupIndex] >= 0 {
			raw := link.Href[idx[2*groupIndex]:idx[2*groupIndex+1]]
			if v, ok := version.Parse(raw); ok {
				match.Version = &v
			}
		}
		matches = append(matches, match)
	}
	return matches
}

func first(links []models.Link) *models.Link {
	if len(links) == 0 {
		return nil
	}
	link := links[0]
	return &link
}
