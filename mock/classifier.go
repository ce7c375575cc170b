package mock

import (
	"context"

	"github.com/fwojciec/mailscan"
)

var _ mailscan.Classifier = (*Classifier)(nil)

// Classifier is a mock implementation of mailscan.Classifier.
type Classifier struct {
	AnalyzeFn func(ctx context.Context, req *mailscan.AnalysisRequest) (*mailscan.AnalysisResponse, error)
}

func (c *Classifier) Analyze(ctx context.Context, req *mailscan.AnalysisRequest) (*mailscan.AnalysisResponse, error) {
	return c.AnalyzeFn(ctx, req)
}
