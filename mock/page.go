package mock

import (
	"context"

	"github.com/fwojciec/mailscan"
)

var (
	_ mailscan.Page       = (*Page)(nil)
	_ mailscan.PageFinder = (*PageFinder)(nil)
)

// Page is a mock implementation of mailscan.Page.
type Page struct {
	IDFn   func() string
	URLFn  func() string
	SendFn func(ctx context.Context, req mailscan.ExtractionRequest) (*mailscan.ExtractionResult, error)
}

func (p *Page) ID() string {
	if p.IDFn == nil {
		return "mock-page"
	}
	return p.IDFn()
}

func (p *Page) URL() string {
	if p.URLFn == nil {
		return "https://mail.example.com/"
	}
	return p.URLFn()
}

func (p *Page) Send(ctx context.Context, req mailscan.ExtractionRequest) (*mailscan.ExtractionResult, error) {
	return p.SendFn(ctx, req)
}

// PageFinder is a mock implementation of mailscan.PageFinder.
type PageFinder struct {
	ActivePageFn func(ctx context.Context) (mailscan.Page, error)
}

func (f *PageFinder) ActivePage(ctx context.Context) (mailscan.Page, error) {
	return f.ActivePageFn(ctx)
}
