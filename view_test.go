package mailscan_test

import (
	"testing"

	"github.com/fwojciec/mailscan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(label string, confidence float64) *mailscan.AnalysisResponse {
	return &mailscan.AnalysisResponse{
		OverallResult: &mailscan.OverallResult{Label: label, Confidence: confidence},
	}
}

func TestFormatPercentage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		confidence float64
		want       string
	}{
		{0, "0.00%"},
		{1, "100.00%"},
		{0.97, "97.00%"},
		{0.5, "50.00%"},
		{0.01, "1.00%"},
		{0.123456, "12.35%"},
		{0.9999, "99.99%"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, mailscan.FormatPercentage(tt.confidence))
		})
	}
}

func TestPercentage(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 97.0, mailscan.Percentage(0.97), 1e-9)
	assert.InDelta(t, 12.35, mailscan.Percentage(0.123456), 1e-9)
	assert.InDelta(t, 0.0, mailscan.Percentage(0), 1e-9)
}

func TestCompleteView(t *testing.T) {
	t.Parallel()

	t.Run("renders percentage text and matching fill width", func(t *testing.T) {
		t.Parallel()

		for _, c := range []float64{0, 0.0001, 0.25, 0.5, 0.97, 0.999, 1} {
			v := mailscan.CompleteView(response("SPAM", c))

			assert.Equal(t, mailscan.FormatPercentage(c), v.PercentText)
			assert.Equal(t, v.PercentText, v.FillWidth)
		}
	})

	t.Run("shows result panel and hides busy indicator", func(t *testing.T) {
		t.Parallel()

		v := mailscan.CompleteView(response("SAFE", 0.1))

		assert.Equal(t, mailscan.StateComplete, v.State)
		assert.Equal(t, mailscan.StatusComplete, v.StatusText)
		assert.True(t, v.ResultVisible)
		assert.False(t, v.Busy)
	})

	t.Run("applies high risk styling to spam regardless of case", func(t *testing.T) {
		t.Parallel()

		for _, label := range []string{"SPAM", "spam", "Spam", "sPaM"} {
			v := mailscan.CompleteView(response(label, 0.9))

			assert.Equal(t, mailscan.RiskHigh, v.Risk, label)
			assert.Equal(t, mailscan.LabelHigh, v.LabelText)
			assert.Equal(t, mailscan.ColorHigh, v.AccentColor)
			assert.Equal(t, mailscan.IconHigh, v.Icon)
		}
	})

	t.Run("defaults every other label to safe styling", func(t *testing.T) {
		t.Parallel()

		for _, label := range []string{"", "ham", "Unknown", "SAFE", "NOT SPAM", "spam ", "PHISHING"} {
			v := mailscan.CompleteView(response(label, 0.9))

			assert.Equal(t, mailscan.RiskSafe, v.Risk, label)
			assert.Equal(t, mailscan.LabelSafe, v.LabelText)
			assert.Equal(t, mailscan.ColorSafe, v.AccentColor)
			assert.Equal(t, mailscan.IconSafe, v.Icon)
		}
	})

	t.Run("shows evidence panel with comma-joined terms in order", func(t *testing.T) {
		t.Parallel()

		resp := response("SPAM", 0.9)
		resp.HighlightedWords = []string{"prize", "urgent", "verify"}

		v := mailscan.CompleteView(resp)

		assert.True(t, v.EvidenceVisible)
		assert.Equal(t, "prize, urgent, verify", v.EvidenceTerms)
		assert.Equal(t, "Suspicious terms found: prize, urgent, verify", v.EvidenceText)
	})

	t.Run("hides evidence panel for empty or absent terms", func(t *testing.T) {
		t.Parallel()

		absent := mailscan.CompleteView(response("SPAM", 0.9))
		resp := response("SPAM", 0.9)
		resp.HighlightedWords = []string{}
		empty := mailscan.CompleteView(resp)

		assert.False(t, absent.EvidenceVisible)
		assert.Empty(t, absent.EvidenceText)
		assert.False(t, empty.EvidenceVisible)
	})

	t.Run("lists suspicious sentences in input order", func(t *testing.T) {
		t.Parallel()

		resp := response("SPAM", 0.9)
		resp.SuspiciousSentences = []mailscan.SuspiciousSentence{
			{Text: "Click here to claim."},
			{Text: "Your account is locked.", Confidence: 0.95},
			{Text: "Act now."},
		}

		v := mailscan.CompleteView(resp)

		assert.True(t, v.DeepDiveVisible)
		assert.Equal(t, []string{"Click here to claim.", "Your account is locked.", "Act now."}, v.Sentences)
	})

	t.Run("hides deep-dive panel without sentences", func(t *testing.T) {
		t.Parallel()

		v := mailscan.CompleteView(response("SAFE", 0.2))

		assert.False(t, v.DeepDiveVisible)
		assert.Empty(t, v.Sentences)
	})

	t.Run("second view does not carry over first view's sentences", func(t *testing.T) {
		t.Parallel()

		first := response("SPAM", 0.9)
		first.SuspiciousSentences = []mailscan.SuspiciousSentence{{Text: "one"}, {Text: "two"}}
		second := response("SPAM", 0.8)
		second.SuspiciousSentences = []mailscan.SuspiciousSentence{{Text: "three"}}

		v1 := mailscan.CompleteView(first)
		v2 := mailscan.CompleteView(second)

		require.Len(t, v1.Sentences, 2)
		assert.Equal(t, []string{"three"}, v2.Sentences)
	})
}

func TestTransitionalViews(t *testing.T) {
	t.Parallel()

	t.Run("extracting shows busy indicator", func(t *testing.T) {
		t.Parallel()

		v := mailscan.ExtractingView()

		assert.Equal(t, mailscan.StateExtracting, v.State)
		assert.Equal(t, "Extracting email...", v.StatusText)
		assert.True(t, v.Busy)
		assert.False(t, v.ResultVisible)
	})

	t.Run("analyzing keeps busy indicator", func(t *testing.T) {
		t.Parallel()

		v := mailscan.AnalyzingView()

		assert.Equal(t, mailscan.StateAnalyzing, v.State)
		assert.Equal(t, "Analyzing patterns...", v.StatusText)
		assert.True(t, v.Busy)
	})

	t.Run("no content asks user to open an email", func(t *testing.T) {
		t.Parallel()

		v := mailscan.NoContentView()

		assert.Equal(t, mailscan.StateFailed, v.State)
		assert.Equal(t, "Error: Open an email first!", v.StatusText)
		assert.False(t, v.Busy)
		assert.False(t, v.ResultVisible)
	})

	t.Run("connection error hides busy indicator and result panel", func(t *testing.T) {
		t.Parallel()

		v := mailscan.ConnectionErrorView()

		assert.Equal(t, mailscan.StateFailed, v.State)
		assert.Equal(t, "Connection Error", v.StatusText)
		assert.False(t, v.Busy)
		assert.False(t, v.ResultVisible)
	})
}
