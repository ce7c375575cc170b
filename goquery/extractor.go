// Package goquery locates email bodies in HTML snapshots of webmail pages
// using CSS selectors.
package goquery

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/mailscan"
)

// Ensure Extractor implements mailscan.ContentExtractor at compile time.
var _ mailscan.ContentExtractor = (*Extractor)(nil)

// Extractor finds the email body in a page's markup by trying locators in
// priority order.
type Extractor struct {
	source   mailscan.HTMLSource
	locators []mailscan.Locator
}

// NewExtractor creates an Extractor reading markup from source.
func NewExtractor(source mailscan.HTMLSource, locators []mailscan.Locator) *Extractor {
	return &Extractor{source: source, locators: locators}
}

// ExtractContent reads the page markup and returns the first non-empty body.
func (e *Extractor) ExtractContent(ctx context.Context) (*mailscan.ExtractionResult, error) {
	html, err := e.source.HTML(ctx)
	if err != nil {
		return nil, err
	}
	return Locate(html, e.locators)
}

// Locate evaluates locators against html in order. For each locator the
// first matching element is rendered to text; the first element whose text
// is not blank wins. Returns a not-found result when nothing matches.
func Locate(html string, locators []mailscan.Locator) (*mailscan.ExtractionResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, mailscan.Errorf(mailscan.EINVALID, "failed to parse HTML: %v", err)
	}

	for _, loc := range locators {
		sel := doc.Find(loc.Selector).First()
		if sel.Length() == 0 {
			continue
		}
		if text := InnerText(sel); strings.TrimSpace(text) != "" {
			return mailscan.Found(text), nil
		}
	}

	return mailscan.NotFound(), nil
}

// CompileLocators checks that every locator holds a valid CSS selector.
func CompileLocators(locators []mailscan.Locator) error {
	for _, loc := range locators {
		if _, err := cascadia.Compile(loc.Selector); err != nil {
			return mailscan.Errorf(mailscan.EINVALID, "locator %q: invalid selector %q: %v", loc.Name, loc.Selector, err)
		}
	}
	return nil
}
