package goquery

import (
	"context"

	"github.com/fwojciec/mailscan"
)

var (
	_ mailscan.Page       = (*Page)(nil)
	_ mailscan.HTMLSource = (*Page)(nil)
	_ mailscan.PageFinder = (*PageFinder)(nil)
)

// Page is a static snapshot of a webmail page, such as a saved HTML file.
// Its extractor answers requests on its own goroutine, so callers observe
// the same asynchronous reply as with a live tab.
type Page struct {
	id        string
	url       string
	html      string
	extractor mailscan.ContentExtractor
}

// NewPage creates a Page for html. Locators are tried first, then each
// fallback strategy in order.
func NewPage(id, pageURL, html string, locators []mailscan.Locator, fallbacks ...mailscan.Strategy) *Page {
	p := &Page{id: id, url: pageURL, html: html}

	exts := []mailscan.ContentExtractor{NewExtractor(p, locators)}
	for _, fallback := range fallbacks {
		exts = append(exts, fallback(p))
	}
	p.extractor = mailscan.Chain(exts...)

	return p
}

// ID returns the page identifier.
func (p *Page) ID() string { return p.id }

// URL returns the address the snapshot was taken from, if known.
func (p *Page) URL() string { return p.url }

// HTML returns the snapshot markup.
func (p *Page) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.html, nil
}

// Send hands req to the page's extractor and waits for its reply or for ctx
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
		return nil, mailscan.Errorf(mailscan.ENORESPONSE, "page %s did not reply: %v", p.id, ctx.Err())
	}
}

// PageFinder reports a single snapshot as the active page.
type PageFinder struct {
	page *Page
}

// NewPageFinder creates a PageFinder for page. A nil page means no page is
// open.
func NewPageFinder(page *Page) *PageFinder {
	return &PageFinder{page: page}
}

// ActivePage returns the snapshot, or ENOPAGE if there is none.
func (f *PageFinder) ActivePage(ctx context.Context) (mailscan.Page, error) {
	if f.page == nil {
		return nil, mailscan.Errorf(mailscan.ENOPAGE, "no page is open")
	}
	return f.page, nil
}
