// Package gemini classifies email bodies with a Google Gemini model.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/mailscan"
	"google.golang.org/genai"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// DefaultMaxBytes bounds the email body sent to the model.
const DefaultMaxBytes = 32 * 1024

// truncationMarker is appended to bodies cut to fit the configured limits.
const truncationMarker = "\n[... content truncated ...]"

const systemInstruction = `You are a phishing and spam detection system. You are given the text of a single email as displayed to its recipient.
Classify it as SPAM (phishing, scams, unsolicited bulk mail, malware lures) or SAFE.
Report your confidence that the email is SPAM as a number between 0 and 1.
List the words or short phrases that most influenced the verdict, exactly as they appear in the email.
List the individual sentences that are suspicious, exactly as they appear in the email, each with your confidence that it is malicious.
Respond only with the JSON object described by the response schema.`

// Ensure Classifier implements mailscan.Classifier at compile time.
var _ mailscan.Classifier = (*Classifier)(nil)

// Fitter shortens text to a token budget.
type Fitter interface {
	Fit(ctx context.Context, text string, maxTokens int) (string, error)
}

// Classifier implements mailscan.Classifier using Google Gemini.
type Classifier struct {
	client    *genai.Client
	model     string
	maxBytes  int
	fitter    Fitter
	maxTokens int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithModel sets the Gemini model. Defaults to DefaultModel.
func WithModel(model string) Option {
	return func(c *Classifier) {
		c.model = model
	}
}

// WithMaxBytes sets the maximum body size sent to the model. Zero or a
// negative value disables the limit.
func WithMaxBytes(n int) Option {
	return func(c *Classifier) {
		c.maxBytes = n
	}
}

// WithTokenLimit additionally fits the body into maxTokens model tokens.
func WithTokenLimit(fitter Fitter, maxTokens int) Option {
	return func(c *Classifier) {
		c.fitter = fitter
		c.maxTokens = maxTokens
	}
}

// NewClassifier creates a new Classifier.
func NewClassifier(client *genai.Client, opts ...Option) *Classifier {
	c := &Classifier{
		client:   client,
		model:    DefaultModel,
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze asks the model for a verdict on req's email text.
func (c *Classifier) Analyze(ctx context.Context, req *mailscan.AnalysisRequest) (*mailscan.AnalysisResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body := Truncate(req.EmailText, c.maxBytes)
	if c.fitter != nil && c.maxTokens > 0 {
		var err error
		if body, err = c.fitter.Fit(ctx, body, c.maxTokens); err != nil {
			return nil, fmt.Errorf("fitting email to token budget: %w", err)
		}
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: BuildUserPrompt(body)}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return nil, mailscan.Errorf(mailscan.EUNAVAILABLE, "gemini: %v", err)
	}
	if result == nil {
		return nil, mailscan.Errorf(mailscan.EMALFORMED, "gemini returned nil result")
	}

	return ParseVerdict(result.Text())
}

// BuildConfig returns the GenerateContentConfig for classification calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema:   verdictSchema(),
	}
}

func verdictSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"label": {
				Type: genai.TypeString,
				Enum: []string{mailscan.SpamLabel, "SAFE"},
			},
			"confidence": {
				Type:        genai.TypeNumber,
				Description: "Confidence that the email is SPAM, between 0 and 1.",
			},
			"highlighted_words": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"suspicious_sentences": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"text":       {Type: genai.TypeString},
						"confidence": {Type: genai.TypeNumber},
					},
					Required: []string{"text"},
				},
			},
		},
		Required: []string{"label", "confidence"},
	}
}

// BuildUserPrompt wraps the email body for the model.
func BuildUserPrompt(body string) string {
	var sb strings.Builder
	sb.WriteString("<email>\n")
	sb.WriteString(body)
	sb.WriteString("\n</email>")
	return sb.String()
}

// verdict is the JSON object the model is asked to produce.
type verdict struct {
	Label               string                        `json:"label"`
	Confidence          float64                       `json:"confidence"`
	HighlightedWords    []string                      `json:"highlighted_words"`
	SuspiciousSentences []mailscan.SuspiciousSentence `json:"suspicious_sentences"`
}

// ParseVerdict converts the model's reply into an AnalysisResponse. Replies
// wrapped in prose or code fences are accepted as long as they contain a
// single JSON object.
func ParseVerdict(text string) (*mailscan.AnalysisResponse, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return nil, mailscan.Errorf(mailscan.EMALFORMED, "gemini reply has no JSON object")
	}

	var v verdict
	if err := json.Unmarshal([]byte(text[start:end+1]), &v); err != nil {
		return nil, mailscan.Errorf(mailscan.EMALFORMED, "decoding gemini reply: %v", err)
	}

	label := strings.ToUpper(strings.TrimSpace(v.Label))
	if label == "" {
		return nil, mailscan.Errorf(mailscan.EMALFORMED, "gemini reply has no label")
	}

	sentences := make([]mailscan.SuspiciousSentence, 0, len(v.SuspiciousSentences))
	for _, s := range v.SuspiciousSentences {
		if strings.TrimSpace(s.Text) == "" {
			continue
		}
		s.Confidence = clamp(s.Confidence)
		sentences = append(sentences, s)
	}

	words := make([]string, 0, len(v.HighlightedWords))
	for _, w := range v.HighlightedWords {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}

	return &mailscan.AnalysisResponse{
		OverallResult:       &mailscan.OverallResult{Label: label, Confidence: clamp(v.Confidence)},
		HighlightedWords:    words,
		SuspiciousSentences: sentences,
	}, nil
}

// Truncate cuts body to at most maxBytes on a rune boundary and marks the
// cut. A non-positive maxBytes leaves body unchanged.
func Truncate(body string, maxBytes int) string {
	if maxBytes <= 0 || len(body) <= maxBytes {
		return body
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + truncationMarker
}

func clamp(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
