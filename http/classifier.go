// Package http provides an HTTP client for the classification service.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/mailscan"
)

// DefaultTimeout bounds a single classification request.
const DefaultTimeout = 10 * time.Second

// DefaultBaseURL is the address of a locally running classification service.
const DefaultBaseURL = "http://127.0.0.1:8000"

// maxErrorBody limits how much of an error response is kept for diagnostics.
const maxErrorBody = 512

// Ensure Classifier implements mailscan.Classifier at compile time.
var _ mailscan.Classifier = (*Classifier)(nil)

// Classifier submits email text to the classification service's
// POST /analyze endpoint.
type Classifier struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithTimeout sets the timeout for classification requests.
// Defaults to DefaultTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(c *Classifier) {
		c.timeout = d
	}
}

// WithBaseURL sets the service address. Defaults to DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(c *Classifier) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// NewClassifier creates a new HTTP-based Classifier.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.client = &http.Client{
		Timeout: c.timeout,
	}

	return c
}

// Endpoint returns the URL requests are sent to.
func (c *Classifier) Endpoint() string {
	return c.baseURL + "/analyze"
}

// Analyze sends req to the service and decodes its verdict. Transport
// failures and non-2xx replies return EUNAVAILABLE; bodies that cannot be
// decoded or lack an overall result return EMALFORMED.
func (c *Classifier) Analyze(ctx context.Context, req *mailscan.AnalysisRequest) (*mailscan.AnalysisResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding analysis request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, mailscan.Errorf(mailscan.EINVALID, "invalid service address %q: %v", c.baseURL, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, mailscan.Errorf(mailscan.EUNAVAILABLE, "POST %s: %v", c.Endpoint(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, mailscan.Errorf(mailscan.EUNAVAILABLE, "POST %s: HTTP %d: %s",
			c.Endpoint(), resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var out mailscan.AnalysisResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, mailscan.Errorf(mailscan.EMALFORMED, "decoding response from %s: %v", c.Endpoint(), err)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}

	return &out, nil
}
