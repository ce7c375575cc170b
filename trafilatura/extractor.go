// Package trafilatura locates email bodies with go-trafilatura's main
// content heuristics when no locator matches.
package trafilatura

import (
	"context"
	"strings"

	gq "github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/mailscan"
	"github.com/fwojciec/mailscan/goquery"
	"github.com/markusmobius/go-trafilatura"
)

// Ensure Extractor implements mailscan.ContentExtractor at compile time.
var _ mailscan.ContentExtractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to find the main content of a page.
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

// ExtractContent reads the page markup and extracts its main content.
func (e *Extractor) ExtractContent(ctx context.Context) (*mailscan.ExtractionResult, error) {
	rawHTML, err := e.source.HTML(ctx)
	if err != nil {
		return nil, err
	}
	return Extract(rawHTML), nil
}

// Extract returns the main content of rawHTML rendered as text. Pages the
// heuristics cannot make sense of yield a not found result.
func Extract(rawHTML string) *mailscan.ExtractionResult {
	if strings.TrimSpace(rawHTML) == "" {
		return mailscan.NotFound()
	}

	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil || result == nil || result.ContentNode == nil {
		return mailscan.NotFound()
	}

	text := goquery.InnerText(gq.NewDocumentFromNode(result.ContentNode).Selection)
	if strings.TrimSpace(text) == "" {
		return mailscan.NotFound()
	}
	return mailscan.Found(text)
}
