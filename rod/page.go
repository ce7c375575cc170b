package rod

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/mailscan"
	"github.com/go-rod/rod"
)

var (
	_ mailscan.Page             = (*Page)(nil)
	_ mailscan.HTMLSource       = (*Page)(nil)
	_ mailscan.ContentExtractor = (*Extractor)(nil)
)

// innerTextJS returns the rendered text of the first element matching a
// selector, or null.
const innerTextJS = `(selector) => {
	const el = document.querySelector(selector);
	return el ? el.innerText : null;
}`

// Page is a live browser tab.
type Page struct {
	page      *rod.Page
	url       string
	extractor mailscan.ContentExtractor
}

func newPage(p *rod.Page, pageURL string, locators []mailscan.Locator, fallbacks []mailscan.Strategy) *Page {
	page := &Page{page: p, url: pageURL}

	exts := []mailscan.ContentExtractor{NewExtractor(p, locators)}
	for _, fallback := range fallbacks {
		exts = append(exts, fallback(page))
	}
	page.extractor = mailscan.Chain(exts...)

	return page
}

// ID returns the DevTools target id of the tab.
func (p *Page) ID() string { return string(p.page.TargetID) }

// URL returns the address the tab showed when it was found.
func (p *Page) URL() string { return p.url }

// HTML returns the tab's current DOM serialized as HTML.
func (p *Page) HTML(ctx context.Context) (string, error) {
	html, err := p.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("reading tab html: %w", err)
	}
	return html, nil
}

// Send hands req to the tab's extractor and waits for its reply or for ctx
// to end, whichever comes first.
func (p *Page) Send(ctx context.Context, req mailscan.ExtractionRequest) (*mailscan.ExtractionResult, error) {
	type reply struct {
		res *mailscan.ExtractionResult
		err error
	}

	ch := make(chan reply, 1)
	go func() {
		res, err := mailscan.Serve(ctx, p.extractor, req)
		ch <- reply{res: res, err: err}
	}()

	select {
	case r := <-ch:
		return r.res, r.err
	case <-ctx.Done():
		return nil, mailscan.Errorf(mailscan.ENORESPONSE, "tab %s did not reply: %v", p.ID(), ctx.Err())
	}
}

// Extractor evaluates locators against the live DOM of a tab, reading the
// browser's own rendering of each element's text.
type Extractor struct {
	page     *rod.Page
	locators []mailscan.Locator
}

// NewExtractor creates an Extractor for a tab.
func NewExtractor(page *rod.Page, locators []mailscan.Locator) *Extractor {
	return &Extractor{page: page, locators: locators}
}

// ExtractContent returns the untrimmed text of the first locator whose first
// match has non-blank text.
func (e *Extractor) ExtractContent(ctx context.Context) (*mailscan.ExtractionResult, error) {
	page := e.page.Context(ctx)
	for _, loc := range e.locators {
		obj, err := page.Eval(innerTextJS, loc.Selector)
		if err != nil {
			return nil, fmt.Errorf("evaluating locator %s: %w", loc.Name, err)
		}
		if obj.Value.Nil() {
			continue
		}
		text := obj.Value.Str()
		if strings.TrimSpace(text) == "" {
			continue
		}
		return mailscan.Found(text), nil
	}
	return mailscan.NotFound(), nil
}
