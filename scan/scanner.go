// Package scan drives a user-triggered scan from extraction through
// classification to the rendered verdict.
package scan

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/mailscan"
	"github.com/google/uuid"
)

// Default bounds on the two suspension points of a scan.
const (
	DefaultExtractTimeout = 5 * time.Second
	DefaultAnalyzeTimeout = 10 * time.Second
)

// Scanner owns the popup's scan state. Each Run starts a new session and
// supersedes the previous one; views produced by a superseded session are
// never rendered.
//
// Scanner is safe for concurrent use.
type Scanner struct {
	Pages      mailscan.PageFinder
	Classifier mailscan.Classifier
	Renderer   mailscan.Renderer
	Logger     *slog.Logger

	// ExtractTimeout bounds the wait for the page's reply.
	ExtractTimeout time.Duration
	// AnalyzeTimeout bounds the classification call.
	AnalyzeTimeout time.Duration

	// NewSessionID generates session identifiers. Defaults to uuid.NewString.
	NewSessionID func() string

	mu      sync.Mutex
	session string
	state   mailscan.ScanState
}

// Run starts a new session and scans the active page. It is Begin
// followed by RunSession.
func (s *Scanner) Run(ctx context.Context) error {
	return s.RunSession(ctx, s.Begin())
}

// Begin claims a new session, superseding any previous one, and returns
// its id. Callers that run scans in the background call Begin when the
// scan is triggered so sessions follow trigger order.
func (s *Scanner) Begin() string {
	return s.begin()
}

// RunSession performs one scan of the active page for session id.
//
// It returns ENOPAGE, without rendering anything, if no page is active.
// Otherwise every outcome ends in a rendered terminal view and the returned
// error reports why a scan failed: ENOCONTENT when the page has no email
// body, EUNAVAILABLE or EMALFORMED when classification failed, and
// ESUPERSEDED when a newer session took over.
func (s *Scanner) RunSession(ctx context.Context, id string) error {
	page, err := s.Pages.ActivePage(ctx)
	if err != nil {
		s.logger().Warn("scan not started", "session", id, "err", err)
		return err
	}

	logger := s.logger().With("session", id, "page", page.ID(), "url", page.URL())

	if !s.render(ctx, id, mailscan.ExtractingView()) {
		return superseded(id)
	}

	text, err := s.extract(ctx, page)
	if err != nil {
		// Not a system fault: the user is not looking at an email.
		logger.Debug("no email content", "err", err)
		if !s.render(ctx, id, mailscan.NoContentView()) {
			return superseded(id)
		}
		return err
	}

	if !s.render(ctx, id, mailscan.AnalyzingView()) {
		return superseded(id)
	}

	resp, err := s.analyze(ctx, text)
	if err != nil {
		logger.Error("classification failed",
			"code", mailscan.ErrorCode(err),
			"bytes", len(text),
			"err", err,
		)
		if !s.render(ctx, id, mailscan.ConnectionErrorView()) {
			return superseded(id)
		}
		return err
	}

	if !s.render(ctx, id, mailscan.CompleteView(resp)) {
		return superseded(id)
	}

	logger.Info("scan complete",
		"label", resp.OverallResult.Label,
		"confidence", resp.OverallResult.Confidence,
		"terms", len(resp.HighlightedWords),
		"sentences", len(resp.SuspiciousSentences),
	)
	return nil
}

// Reset discards the current session and returns the scanner to idle.
// A scan still in flight keeps running but renders nothing further.
func (s *Scanner) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = ""
	s.state = mailscan.StateIdle
}

// State returns the state of the current session.
func (s *Scanner) State() mailscan.ScanState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == "" {
		return mailscan.StateIdle
	}
	return s.state
}

// extract asks the page for its email body.
func (s *Scanner) extract(ctx context.Context, page mailscan.Page) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, durationOr(s.ExtractTimeout, DefaultExtractTimeout))
	defer cancel()

	res, err := page.Send(ctx, mailscan.ExtractionRequest{Action: mailscan.ActionGetContent})
	if err != nil {
		return "", mailscan.Errorf(mailscan.ENOCONTENT, "no reply from page: %s", mailscan.ErrorMessage(err))
	}

	text, ok := res.Content()
	if !ok {
		return "", mailscan.Errorf(mailscan.ENOCONTENT, "no email content on page")
	}
	return text, nil
}

// analyze classifies text. Responses without an overall result are
// rejected so rendering never sees them.
func (s *Scanner) analyze(ctx context.Context, text string) (*mailscan.AnalysisResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, durationOr(s.AnalyzeTimeout, DefaultAnalyzeTimeout))
	defer cancel()

	resp, err := s.Classifier.Analyze(ctx, &mailscan.AnalysisRequest{EmailText: text})
	if err != nil {
		switch mailscan.ErrorCode(err) {
		case mailscan.EUNAVAILABLE, mailscan.EMALFORMED:
			return nil, err
		}
		return nil, mailscan.Errorf(mailscan.EUNAVAILABLE, "classification failed: %v", err)
	}
	if resp == nil {
		return nil, mailscan.Errorf(mailscan.EMALFORMED, "empty classification response")
	}
	if err := resp.Validate(); err != nil {
		return nil, err
	}
	return resp, nil
}

// begin starts a new session, superseding any previous one.
func (s *Scanner) begin() string {
	newID := s.NewSessionID
	if newID == nil {
		newID = uuid.NewString
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = newID()
	s.state = mailscan.StateIdle
	return s.session
}

// render applies v if session id is still current. It reports false when
// the session has been superseded. Renderer failures are logged and do
// not interrupt the scan.
func (s *Scanner) render(ctx context.Context, id string, v mailscan.View) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != s.session {
		return false
	}
	s.state = v.State

	if err := s.Renderer.Render(ctx, v); err != nil {
		s.logger().Error("render failed", "session", id, "state", v.State, "err", err)
	}
	return true
}

func (s *Scanner) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

func superseded(id string) error {
	return mailscan.Errorf(mailscan.ESUPERSEDED, "scan %s superseded", id)
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
