package gemini_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/fwojciec/mailscan"
	"github.com/fwojciec/mailscan/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fitterFunc func(ctx context.Context, text string, maxTokens int) (string, error)

func (f fitterFunc) Fit(ctx context.Context, text string, maxTokens int) (string, error) {
	return f(ctx, text, maxTokens)
}

func TestClassifier_Analyze_RejectsBlankText(t *testing.T) {
	t.Parallel()

	classifier := gemini.NewClassifier(nil) // nil client ok for this test

	_, err := classifier.Analyze(context.Background(), &mailscan.AnalysisRequest{EmailText: "  \n"})

	require.Error(t, err)
	assert.Equal(t, mailscan.EINVALID, mailscan.ErrorCode(err))
}

func TestClassifier_Analyze_PropagatesFitterError(t *testing.T) {
	t.Parallel()

	var gotMax int
	fitter := fitterFunc(func(ctx context.Context, text string, maxTokens int) (string, error) {
		gotMax = maxTokens
		return "", errors.New("tokenizer unavailable")
	})
	classifier := gemini.NewClassifier(nil, gemini.WithTokenLimit(fitter, 2048))

	_, err := classifier.Analyze(context.Background(), &mailscan.AnalysisRequest{EmailText: "hello"})

	require.Error(t, err)
	assert.Equal(t, 2048, gotMax)
	assert.Contains(t, err.Error(), "tokenizer unavailable")
}

func TestBuildConfig_RequestsJSONVerdict(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig()

	assert.Equal(t, "application/json", config.ResponseMIMEType)
	require.NotNil(t, config.ResponseSchema)
	assert.Equal(t, genai.TypeObject, config.ResponseSchema.Type)
	assert.ElementsMatch(t, []string{"label", "confidence"}, config.ResponseSchema.Required)
	assert.Equal(t, []string{"SPAM", "SAFE"}, config.ResponseSchema.Properties["label"].Enum)
	assert.Contains(t, config.ResponseSchema.Properties, "highlighted_words")
	assert.Contains(t, config.ResponseSchema.Properties, "suspicious_sentences")
}

func TestBuildConfig_SetsSystemInstruction(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig()

	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, "spam detection")
	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0, *config.Temperature, 0.001)
}

func TestBuildUserPrompt_WrapsBody(t *testing.T) {
	t.Parallel()

	prompt := gemini.BuildUserPrompt("Click here to claim your prize")

	assert.Equal(t, "<email>\nClick here to claim your prize\n</email>", prompt)
	assert.NotContains(t, prompt, "spam detection")
}

func TestParseVerdict(t *testing.T) {
	t.Parallel()

	t.Run("converts a full verdict", func(t *testing.T) {
		t.Parallel()

		resp, err := gemini.ParseVerdict(`{
			"label": "spam",
			"confidence": 0.93,
			"highlighted_words": ["urgent", " ", "verify"],
			"suspicious_sentences": [
				{"text": "Verify your account now.", "confidence": 0.9},
				{"text": ""}
			]
		}`)

		require.NoError(t, err)
		assert.Equal(t, "SPAM", resp.OverallResult.Label)
		assert.True(t, resp.OverallResult.IsSpam())
		assert.InDelta(t, 0.93, resp.OverallResult.Confidence, 1e-9)
		assert.Equal(t, []string{"urgent", "verify"}, resp.HighlightedWords)
		require.Len(t, resp.SuspiciousSentences, 1)
		assert.Equal(t, "Verify your account now.", resp.SuspiciousSentences[0].Text)
	})

	t.Run("accepts replies wrapped in code fences", func(t *testing.T) {
		t.Parallel()

		resp, err := gemini.ParseVerdict("```json\n{\"label\": \"SAFE\", \"confidence\": 0.1}\n```")

		require.NoError(t, err)
		assert.Equal(t, "SAFE", resp.OverallResult.Label)
		assert.Empty(t, resp.HighlightedWords)
		assert.Empty(t, resp.SuspiciousSentences)
	})

	t.Run("clamps confidence", func(t *testing.T) {
		t.Parallel()

		resp, err := gemini.ParseVerdict(`{"label": "SPAM", "confidence": 1.7}`)

		require.NoError(t, err)
		assert.InDelta(t, 1.0, resp.OverallResult.Confidence, 1e-9)
	})

	t.Run("rejects replies without JSON", func(t *testing.T) {
		t.Parallel()

		_, err := gemini.ParseVerdict("I cannot classify this email.")

		assert.Equal(t, mailscan.EMALFORMED, mailscan.ErrorCode(err))
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		t.Parallel()

		_, err := gemini.ParseVerdict(`{"label": SPAM}`)

		assert.Equal(t, mailscan.EMALFORMED, mailscan.ErrorCode(err))
	})

	t.Run("rejects a missing label", func(t *testing.T) {
		t.Parallel()

		_, err := gemini.ParseVerdict(`{"confidence": 0.4}`)

		assert.Equal(t, mailscan.EMALFORMED, mailscan.ErrorCode(err))
	})
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	t.Run("leaves short bodies alone", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "short", gemini.Truncate("short", 100))
	})

	t.Run("disabled by non-positive limit", func(t *testing.T) {
		t.Parallel()

		body := strings.Repeat("a", 1000)
		assert.Equal(t, body, gemini.Truncate(body, 0))
	})

	t.Run("cuts and marks long bodies", func(t *testing.T) {
		t.Parallel()

		got := gemini.Truncate(strings.Repeat("a", 100), 10)

		assert.True(t, strings.HasPrefix(got, "aaaaaaaaaa\n"))
		assert.Contains(t, got, "truncated")
	})

	t.Run("never splits a rune", func(t *testing.T) {
		t.Parallel()

		got := gemini.Truncate("ééééé", 3)

		assert.True(t, utf8.ValidString(got))
		assert.True(t, strings.HasPrefix(got, "é\n"))
	})
}
