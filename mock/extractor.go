package mock

import (
	"context"

	"github.com/fwojciec/mailscan"
)

var (
	_ mailscan.ContentExtractor = (*ContentExtractor)(nil)
	_ mailscan.HTMLSource       = (*HTMLSource)(nil)
)

// ContentExtractor is a mock implementation of mailscan.ContentExtractor.
type ContentExtractor struct {
	ExtractContentFn func(ctx context.Context) (*mailscan.ExtractionResult, error)
}

func (e *ContentExtractor) ExtractContent(ctx context.Context) (*mailscan.ExtractionResult, error) {
	return e.ExtractContentFn(ctx)
}

// HTMLSource is a mock implementation of mailscan.HTMLSource.
type HTMLSource struct {
	HTMLFn func(ctx context.Context) (string, error)
}

func (s *HTMLSource) HTML(ctx context.Context) (string, error) {
	return s.HTMLFn(ctx)
}
