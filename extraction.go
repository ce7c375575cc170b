package mailscan

import (
	"context"
	"strings"
)

// Action identifies a request sent from the scanner to a page.
type Action string

// ActionGetContent asks the page for the visible email body.
const ActionGetContent Action = "get_content"

// ExtractionRequest is sent to a page's extractor.
type ExtractionRequest struct {
	Action Action `json:"action"`
}

// ExtractionResult is the extractor's reply. A nil Text means no locator
// matched non-empty content.
type ExtractionResult struct {
	Text *string `json:"text"`
}

// NotFound returns a result signaling that no email body was found.
func NotFound() *ExtractionResult {
	return &ExtractionResult{}
}

// Found returns a result carrying text.
func Found(text string) *ExtractionResult {
	return &ExtractionResult{Text: &text}
}

// Content returns the extracted text and whether it is non-empty.
func (r *ExtractionResult) Content() (string, bool) {
	if r == nil || r.Text == nil || strings.TrimSpace(*r.Text) == "" {
		return "", false
	}
	return *r.Text, true
}

// Locator is a CSS selector that may identify the email body element.
type Locator struct {
	Name     string
	Selector string
}

// DefaultLocators lists Gmail body locators from most to least specific.
// The main-content fallback comes last because it can capture page chrome.
var DefaultLocators = []Locator{
	{Name: "body", Selector: ".a3s.aiL"},
	{Name: "container", Selector: ".ii.gt"},
	{Name: "main", Selector: "[role='main']"},
}

// ContentExtractor finds the email body within a page.
type ContentExtractor interface {
	// ExtractContent returns the first non-empty body text it can locate.
	// Finding nothing is not an error: the result's Text is nil instead.
	ExtractContent(ctx context.Context) (*ExtractionResult, error)
}

// HTMLSource provides the current markup of a page.
type HTMLSource interface {
	HTML(ctx context.Context) (string, error)
}

// Strategy builds a ContentExtractor that reads a page's markup. Strategies
// are heuristic fallbacks tried after a page's locators.
type Strategy func(src HTMLSource) ContentExtractor

// Page is a browser tab whose extractor can be asked for content.
type Page interface {
	// ID identifies the page within its browser.
	ID() string

	// URL returns the address the page is showing.
	URL() string

	// Send delivers req to the page's extractor and waits for the reply.
	// Returns ENORESPONSE if the extractor does not answer.
	// The context bounds how long Send waits.
	Send(ctx context.Context, req ExtractionRequest) (*ExtractionResult, error)
}

// PageFinder locates the page the user is looking at.
type PageFinder interface {
	// ActivePage returns the active page in the active window.
	// Returns ENOPAGE if there is none.
	ActivePage(ctx context.Context) (Page, error)
}

// Serve answers a single extraction request on behalf of a page.
// Actions other than ActionGetContent are ignored and yield ENORESPONSE.
func Serve(ctx context.Context, ext ContentExtractor, req ExtractionRequest) (*ExtractionResult, error) {
	if req.Action != ActionGetContent {
		return nil, Errorf(ENORESPONSE, "unrecognized action %q", req.Action)
	}
	return ext.ExtractContent(ctx)
}

// Chain returns a ContentExtractor that tries exts in order and returns the
// first result with non-empty text.
func Chain(exts ...ContentExtractor) ContentExtractor {
	return chain(exts)
}

type chain []ContentExtractor

func (c chain) ExtractContent(ctx context.Context) (*ExtractionResult, error) {
	for _, ext := range c {
		res, err := ext.ExtractContent(ctx)
		if err != nil {
			return nil, err
		}
		if _, ok := res.Content(); ok {
			return res, nil
		}
	}
	return NotFound(), nil
}

// ParseLocator parses a locator written as "name=selector". A value without
// a name uses the selector as its name.
func ParseLocator(s string) (Locator, error) {
	name, selector, ok := strings.Cut(s, "=")
	if !ok {
		selector = name
	}
	name, selector = strings.TrimSpace(name), strings.TrimSpace(selector)
	if selector == "" {
		return Locator{}, Errorf(EINVALID, "locator %q has no selector", s)
	}
	if name == "" {
		name = selector
	}
	return Locator{Name: name, Selector: selector}, nil
}
