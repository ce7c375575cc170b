package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/mailscan"
)

var (
	_ mailscan.PageFinder = (*LoggingPageFinder)(nil)
	_ mailscan.Page       = (*LoggingPage)(nil)
)

// LoggingPageFinder wraps a PageFinder with debug logging. Pages it returns
// are wrapped in LoggingPage.
type LoggingPageFinder struct {
	next   mailscan.PageFinder
	logger *slog.Logger
}

// NewLoggingPageFinder creates a new LoggingPageFinder.
func NewLoggingPageFinder(next mailscan.PageFinder, logger *slog.Logger) *LoggingPageFinder {
	return &LoggingPageFinder{next: next, logger: logger}
}

// ActivePage delegates to the wrapped finder and logs the page found.
func (f *LoggingPageFinder) ActivePage(ctx context.Context) (page mailscan.Page, err error) {
	defer func(begin time.Time) {
		attrs := []any{"duration", time.Since(begin), "err", err}
		if page != nil {
			attrs = append(attrs, "page", page.ID(), "url", page.URL())
		}
		f.logger.Debug("active page", attrs...)
	}(time.Now())

	page, err = f.next.ActivePage(ctx)
	if err != nil {
		return nil, err
	}
	return NewLoggingPage(page, f.logger), nil
}

// LoggingPage wraps a Page with debug logging of extraction round trips.
type LoggingPage struct {
	next   mailscan.Page
	logger *slog.Logger
}

// NewLoggingPage creates a new LoggingPage.
func NewLoggingPage(next mailscan.Page, logger *slog.Logger) *LoggingPage {
	return &LoggingPage{next: next, logger: logger}
}

// ID delegates to the wrapped page.
func (p *LoggingPage) ID() string { return p.next.ID() }

// URL delegates to the wrapped page.
func (p *LoggingPage) URL() string { return p.next.URL() }

// Send delegates to the wrapped page and logs whether content came back.
func (p *LoggingPage) Send(ctx context.Context, req mailscan.ExtractionRequest) (res *mailscan.ExtractionResult, err error) {
	defer func(begin time.Time) {
		text, found := res.Content()
		p.logger.Debug("extract",
			"page", p.next.ID(),
			"action", req.Action,
			"found", found,
			"bytes", len(text),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Send(ctx, req)
}
