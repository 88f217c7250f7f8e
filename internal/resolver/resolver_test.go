package resolver

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/ralt/aer/internal/models"
	"github.com/ralt/aer/internal/web"
)

// fakeFetcher serves canned HTML documents and records every fetched url.
type fakeFetcher struct {
	pages   map[string]string
	fetched []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*web.Page, error) {
	f.fetched = append(f.fetched, url)
	doc, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s", web.ErrNotFound, url)
	}
	return web.ParsePage(url, strings.NewReader(doc))
}

func anchors(hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, href := range hrefs {
		fmt.Fprintf(&b, `<a href="%s">link</a>`, href)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func hrefs(links []models.Link) []string {
	result := make([]string, len(links))
	for i, link := range links {
		result[i] = link.Href
	}
	return result
}

const (
	indexURL = "https://example.org/releases"
	tag2URL  = "https://example.org/releases/tag/v2.0"
	tag1URL  = "https://example.org/releases/tag/v1.0"
)

func newFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]string{
		indexURL: anchors("/about", tag2URL, tag1URL, "/contact"),
		tag2URL:  anchors("/dl/tool-2.0-x86.exe", "/dl/tool-2.0-x64.exe", "/releases"),
		tag1URL:  anchors("/dl/tool-1.0-x86.exe"),
	}}
}

func TestResolveMissingStrategy(t *testing.T) {
	f := newFetcher()
	links, err := New(f).Resolve(context.Background(), nil)
	if !models.IsType(err, models.ErrMissingParseURL) {
		t.Fatalf("Resolve(nil) = %v, want missing parse url error", err)
	}
	if models.ExitCode(err) != models.ExitMissingParseURL {
		t.Errorf("ExitCode = %d, want %d", models.ExitCode(err), models.ExitMissingParseURL)
	}
	if links != nil {
		t.Errorf("links = %v, want none", links)
	}
	if len(f.fetched) != 0 {
		t.Errorf("fetched %v, want no fetch", f.fetched)
	}
}

func TestResolveDirect(t *testing.T) {
	f := newFetcher()
	links, err := New(f).Resolve(context.Background(), &models.ParseURL{URL: indexURL})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	want := []string{"https://example.org/about", tag2URL, tag1URL, "https://example.org/contact"}
	if !reflect.DeepEqual(hrefs(links), want) {
		t.Errorf("links = %v, want %v", hrefs(links), want)
	}
	if !reflect.DeepEqual(f.fetched, []string{indexURL}) {
		t.Errorf("fetched %v, want only the index", f.fetched)
	}
}

func TestResolveFilteredDrillsIntoFirstMatch(t *testing.T) {
	f := newFetcher()
	strategy := &models.ParseURL{URL: indexURL, Regex: `/tag/v[\d.]+$`}

	links, err := New(f).Resolve(context.Background(), strategy)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	want := []string{
		"https://example.org/dl/tool-2.0-x86.exe",
		"https://example.org/dl/tool-2.0-x64.exe",
		"https://example.org/releases",
	}
	if !reflect.DeepEqual(hrefs(links), want) {
		t.Errorf("links = %v, want %v", hrefs(links), want)
	}
	if !reflect.DeepEqual(f.fetched, []string{indexURL, tag2URL}) {
		t.Errorf("fetched %v, want index then first match", f.fetched)
	}
}

func TestResolveFilteredWithoutMatches(t *testing.T) {
	f := newFetcher()
	strategy := &models.ParseURL{URL: indexURL, Regex: `/nothing-here/`}

	links, err := New(f).Resolve(context.Background(), strategy)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if links == nil || len(links) != 0 {
		t.Errorf("links = %v, want empty list", links)
	}
	if len(f.fetched) != 1 {
		t.Errorf("fetched %v, want a single fetch", f.fetched)
	}
}

func TestResolveInvalidFilter(t *testing.T) {
	f := newFetcher()
	_, err := New(f).Resolve(context.Background(), &models.ParseURL{URL: indexURL, Regex: `(`})
	if !models.IsType(err, models.ErrPattern) {
		t.Fatalf("Resolve = %v, want pattern error", err)
	}
	if len(f.fetched) != 0 {
		t.Errorf("fetched %v, want no fetch", f.fetched)
	}
}

func TestResolveFetchErrors(t *testing.T) {
	f := newFetcher()
	_, err := New(f).Resolve(context.Background(), &models.ParseURL{URL: "https://example.org/gone"})
	if !models.IsType(err, models.ErrFetch) {
		t.Fatalf("Resolve = %v, want fetch error", err)
	}
	if !errors.Is(err, web.ErrNotFound) {
		t.Errorf("fetch error does not wrap the cause: %v", err)
	}

	// A failing drill fetch is a fetch error too.
	f.pages[indexURL] = anchors("https://example.org/releases/tag/v3.0")
	_, err = New(f).Resolve(context.Background(), &models.ParseURL{URL: indexURL, Regex: `/tag/`})
	if !models.IsType(err, models.ErrFetch) {
		t.Fatalf("Resolve = %v, want fetch error from drill fetch", err)
	}
}

func TestStepTransitions(t *testing.T) {
	first := []models.Link{{Href: "https://example.org/a"}, {Href: "https://example.org/b"}}
	second := []models.Link{{Href: "https://example.org/c"}}

	direct, err := Start(&models.ParseURL{URL: indexURL})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if direct.State != AwaitingFirstFetch || direct.URL != indexURL || direct.Filter != nil {
		t.Fatalf("Start(direct) = %+v", direct)
	}
	if got := direct.Next(first); got.State != Resolved || !reflect.DeepEqual(got.Links, first) {
		t.Errorf("direct Next = %+v, want resolved with first-level links", got)
	}

	filtered := Step{State: AwaitingFirstFetch, URL: indexURL, Filter: regexp.MustCompile(".")}

	drill := filtered.Next(first)
	if drill.State != AwaitingDrillFetch || drill.URL != first[0].Href || drill.Filter != nil {
		t.Fatalf("filtered Next = %+v, want drill into first link without filter", drill)
	}
	if len(drill.Links) != 0 {
		t.Errorf("drill step carries links %v, want none", drill.Links)
	}

	done := drill.Next(second)
	if done.State != Resolved || !reflect.DeepEqual(done.Links, second) {
		t.Errorf("drill Next = %+v, want resolved with only the second page links", done)
	}

	empty := filtered.Next(nil)
	if empty.State != Resolved || empty.Links == nil || len(empty.Links) != 0 {
		t.Errorf("filtered Next(nil) = %+v, want resolved with empty list", empty)
	}

	if again := done.Next(first); !reflect.DeepEqual(again, done) {
		t.Errorf("Next on a resolved step changed it: %+v", again)
	}
}
