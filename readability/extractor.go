// Package readability locates email bodies with go-readability's article
// scoring when no locator matches.
package readability

import (
	"context"
	"strings"

	"github.com/fwojciec/mailscan"
	"github.com/fwojciec/mailscan/goquery"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements mailscan.ContentExtractor at compile time.
var _ mailscan.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-readability to find the main content of a page.
type Extractor struct {
	source mailscan.HTMLSource
}

// NewExtractor creates a new Extractor reading markup from source.
func NewExtractor(source mailscan.HTMLSource) *Extractor {
	return &Extractor{source: source}
}

// Strategy is a mailscan.Strategy that builds an Extractor.
func Strategy(source mailscan.HTMLSource) mailscan.ContentExtractor {
	return NewExtractor(source)
}

// ExtractContent reads the page markup and extracts its article content.
func (e *Extractor) ExtractContent(ctx context.Context) (*mailscan.ExtractionResult, error) {
	rawHTML, err := e.source.HTML(ctx)
	if err != nil {
		return nil, err
	}
	return Extract(rawHTML)
}

// Extract returns the article content of rawHTML rendered as text.
func Extract(rawHTML string) (*mailscan.ExtractionResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return mailscan.NotFound(), nil
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		// Readability fails on pages without a scorable article.
		return mailscan.NotFound(), nil
	}

	text, err := goquery.Text(article.Content)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return mailscan.NotFound(), nil
	}
	return mailscan.Found(text), nil
}
