package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"missing parse url", &AerError{Type: ErrMissingParseURL, Package: "foo", Err: errors.New("no url")}, ExitMissingParseURL},
		{"wrapped missing parse url", fmt.Errorf("processing foo.toml: %w", &AerError{Type: ErrMissingParseURL, Err: errors.New("no url")}), ExitMissingParseURL},
		{"fetch", &AerError{Type: ErrFetch, Err: errors.New("boom")}, ExitFailure},
		{"pattern", &AerError{Type: ErrPattern, Err: errors.New("bad regex")}, ExitFailure},
		{"definition", &AerError{Type: ErrDefinitionParse, Err: errors.New("bad toml")}, ExitFailure},
		{"plain", errors.New("something else"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAerErrorMessage(t *testing.T) {
	err := &AerError{Type: ErrFetch, Package: "7zip", Err: errors.New("connection refused")}
	if got, want := err.Error(), "[Fetch] 7zip: connection refused"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err = &AerError{Type: ErrPattern, Err: errors.New("missing )")}
	if got, want := err.Error(), "[Pattern] missing )"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	inner := errors.New("inner")
	if !errors.Is(&AerError{Type: ErrFetch, Err: inner}, inner) {
		t.Error("AerError does not unwrap to its cause")
	}
}

func TestParseURLUnmarshalTOML(t *testing.T) {
	var direct ParseURL
	if err := direct.UnmarshalTOML("https://example.org/downloads"); err != nil {
		t.Fatalf("UnmarshalTOML(string) failed: %v", err)
	}
	if direct.Kind() != ParseURLDirect || direct.URL != "https://example.org/downloads" {
		t.Errorf("got %+v (%s), want direct url", direct, direct.Kind())
	}

	var filtered ParseURL
	err := filtered.UnmarshalTOML(map[string]any{
		"url":   "https://example.org/releases",
		"regex": `/tag/v[\d.]+$`,
	})
	if err != nil {
		t.Fatalf("UnmarshalTOML(table) failed: %v", err)
	}
	if filtered.Kind() != ParseURLFilteredWithRegex || filtered.Regex != `/tag/v[\d.]+$` {
		t.Errorf("got %+v (%s), want filtered url", filtered, filtered.Kind())
	}

	for name, data := range map[string]any{
		"number":      42,
		"no url":      map[string]any{"regex": ".*"},
		"unknown key": map[string]any{"url": "https://example.org", "filter": ".*"},
		"non string":  map[string]any{"url": 1},
	} {
		var p ParseURL
		if err := p.UnmarshalTOML(data); err == nil {
			t.Errorf("%s: expected error, got %+v", name, p)
		}
	}
}
