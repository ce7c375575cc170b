package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/mailscan"
)

// Ensure LoggingClassifier implements mailscan.Classifier.
var _ mailscan.Classifier = (*LoggingClassifier)(nil)

// LoggingClassifier wraps a Classifier with logging. Verdicts are logged
// at info, failures at debug.
type LoggingClassifier struct {
	next   mailscan.Classifier
	logger *slog.Logger
}

// NewLoggingClassifier creates a new LoggingClassifier.
func NewLoggingClassifier(next mailscan.Classifier, logger *slog.Logger) *LoggingClassifier {
	return &LoggingClassifier{next: next, logger: logger}
}

// Analyze delegates to the wrapped classifier and logs the verdict.
func (c *LoggingClassifier) Analyze(ctx context.Context, req *mailscan.AnalysisRequest) (resp *mailscan.AnalysisResponse, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"bytes", len(req.EmailText),
			"duration", time.Since(begin),
		}
		if resp != nil && resp.OverallResult != nil {
			attrs = append(attrs,
				"label", resp.OverallResult.Label,
				"confidence", resp.OverallResult.Confidence,
			)
		}
		if err != nil {
			// Callers report the failure; this is a trace.
			attrs = append(attrs, "code", mailscan.ErrorCode(err), "err", err)
			c.logger.Debug("analyze", attrs...)
			return
		}
		c.logger.Info("analyze", attrs...)
	}(time.Now())
	return c.next.Analyze(ctx, req)
}
