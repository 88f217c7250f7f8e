package web

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/ralt/aer/internal/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Page is a parsed HTML document.
type Page struct {
	url   *url.URL
	hrefs []string
}

// ParsePage parses an HTML document located at pageURL. Hyperlinks are
// resolved against pageURL, or against the document's <base href> when
// present, and kept in document order.
func ParsePage(pageURL string, r io.Reader) (*Page, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page url %q: %w", pageURL, err)
	}

	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html of %s: %w", pageURL, err)
	}

	page := &Page{url: base}
	var raw []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Base:
				if href, ok := attr(n, "href"); ok {
					if u, err := base.Parse(strings.TrimSpace(href)); err == nil {
						base = u
					}
				}
			case atom.A:
				if href, ok := attr(n, "href"); ok {
					raw = append(raw, href)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for _, href := range raw {
		if abs, ok := resolve(base, href); ok {
			page.hrefs = append(page.hrefs, abs)
		}
	}
	return page, nil
}

// URL identifies the page.
func (p *Page) URL() string {
	return p.url.String()
}

// Len returns the number of hyperlinks on the page.
func (p *Page) Len() int {
	return len(p.hrefs)
}

// Links returns the page identifier and the page's hyperlinks in document
// order. When filter is not nil only the links whose href matches it are
// returned.
func (p *Page) Links(filter *regexp.Regexp) (string, []models.Link) {
	links := make([]models.Link, 0, len(p.hrefs))
	for _, href := range p.hrefs {
		if filter != nil && !filter.MatchString(href) {
			continue
		}
		links = append(links, models.Link{Href: href})
	}
	return p.URL(), links
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// resolve turns href into an absolute url. Empty, fragment-only and
// non-navigational hrefs are dropped.
func resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}

	u, err := base.Parse(href)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "javascript", "mailto", "tel", "data":
		return "", false
	}
	return u.String(), true
}
