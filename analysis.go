package mailscan

import (
	"context"
	"strings"
)

// SpamLabel is the classifier label that marks a message as high risk.
const SpamLabel = "SPAM"

// AnalysisRequest is submitted to the classification service.
type AnalysisRequest struct {
	EmailText string `json:"email_text"`
}

// Validate returns an error if the request has no text to classify.
func (r *AnalysisRequest) Validate() error {
	if strings.TrimSpace(r.EmailText) == "" {
		return Errorf(EINVALID, "email text required")
	}
	return nil
}

// OverallResult is the verdict for the whole message.
type OverallResult struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// IsSpam reports whether the label marks the message as spam.
// Any label other than SPAM, compared case-insensitively, is safe.
func (r OverallResult) IsSpam() bool {
	return strings.EqualFold(r.Label, SpamLabel)
}

// SuspiciousSentence is a sentence the classifier flagged on its own.
type SuspiciousSentence struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// AnalysisResponse is the classification service's reply.
// HighlightedWords and SuspiciousSentences are optional.
type AnalysisResponse struct {
	OverallResult       *OverallResult       `json:"overall_result"`
	HighlightedWords    []string             `json:"highlighted_words,omitempty"`
	SuspiciousSentences []SuspiciousSentence `json:"suspicious_sentences,omitempty"`
}

// Validate returns EMALFORMED if the response lacks an overall result.
func (r *AnalysisResponse) Validate() error {
	if r.OverallResult == nil {
		return Errorf(EMALFORMED, "response missing overall_result")
	}
	return nil
}

// Classifier submits email text for spam and phishing classification.
type Classifier interface {
	// Analyze classifies the text in req.
	// Returns EUNAVAILABLE if the service cannot be reached or answers with
	// an error, and EMALFORMED if the reply cannot be understood.
	Analyze(ctx context.Context, req *AnalysisRequest) (*AnalysisResponse, error)
}
