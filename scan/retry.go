package scan

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/mailscan"
	"golang.org/x/time/rate"
)

var _ mailscan.Classifier = (*RetryingClassifier)(nil)

// DefaultRetryDelays returns the backoff delays for classification retries:
// 250ms, 500ms.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{250 * time.Millisecond, 500 * time.Millisecond}
}

// RetryingClassifier retries classification requests that failed because the
// service was unavailable, and paces requests with a token bucket so rapid
// re-scans do not flood the service. Malformed replies and invalid requests
// are never retried.
type RetryingClassifier struct {
	next    mailscan.Classifier
	delays  []time.Duration
	limiter *rate.Limiter
	logger  *slog.Logger
}

// RetryOption configures a RetryingClassifier.
type RetryOption func(*RetryingClassifier)

// WithRetryDelays sets the wait before each retry. The number of delays is
// the number of retries; nil disables retrying.
func WithRetryDelays(delays []time.Duration) RetryOption {
	return func(c *RetryingClassifier) {
		c.delays = delays
	}
}

// WithRateLimit allows at most rps requests per second with no bursting.
// Zero or negative disables pacing.
func WithRateLimit(rps float64) RetryOption {
	return func(c *RetryingClassifier) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithRetryLogger sets the logger used to report retries.
func WithRetryLogger(logger *slog.Logger) RetryOption {
	return func(c *RetryingClassifier) {
		c.logger = logger
	}
}

// NewRetryingClassifier wraps next with DefaultRetryDelays and no pacing.
func NewRetryingClassifier(next mailscan.Classifier, opts ...RetryOption) *RetryingClassifier {
	c := &RetryingClassifier{
		next:   next,
		delays: DefaultRetryDelays(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze calls the wrapped classifier, retrying EUNAVAILABLE errors.
func (c *RetryingClassifier) Analyze(ctx context.Context, req *mailscan.AnalysisRequest) (*mailscan.AnalysisResponse, error) {
	maxAttempts := len(c.delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, mailscan.Errorf(mailscan.EUNAVAILABLE, "waiting for classifier: %v", err)
			}
		}

		resp, err := c.next.Analyze(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if mailscan.ErrorCode(err) != mailscan.EUNAVAILABLE || attempt >= maxAttempts-1 {
			break
		}

		c.logger.Debug("retry analyze", "attempt", attempt+2, "err", err)

		select {
		case <-ctx.Done():
			return nil, lastErr
		case <-time.After(c.delays[attempt]):
		}
	}

	return nil, lastErr
}
