package mailscan_test

import (
	"encoding/json"
	"testing"

	"github.com/fwojciec/mailscan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisRequest_Validate(t *testing.T) {
	t.Parallel()

	t.Run("accepts text", func(t *testing.T) {
		t.Parallel()

		req := &mailscan.AnalysisRequest{EmailText: "Win a free prize now"}

		assert.NoError(t, req.Validate())
	})

	t.Run("rejects blank text", func(t *testing.T) {
		t.Parallel()

		req := &mailscan.AnalysisRequest{EmailText: "  \n"}

		err := req.Validate()

		require.Error(t, err)
		assert.Equal(t, mailscan.EINVALID, mailscan.ErrorCode(err))
	})
}

func TestAnalysisResponse_Decode(t *testing.T) {
	t.Parallel()

	t.Run("decodes full response", func(t *testing.T) {
		t.Parallel()

		body := `{
			"overall_result": {"label": "SPAM", "confidence": 0.97},
			"highlighted_words": ["prize", "free"],
			"suspicious_sentences": [{"text": "Win a free prize now", "confidence": 0.99}],
			"status": "success"
		}`

		var resp mailscan.AnalysisResponse
		require.NoError(t, json.Unmarshal([]byte(body), &resp))

		require.NoError(t, resp.Validate())
		assert.Equal(t, "SPAM", resp.OverallResult.Label)
		assert.InDelta(t, 0.97, resp.OverallResult.Confidence, 1e-9)
		assert.Equal(t, []string{"prize", "free"}, resp.HighlightedWords)
		require.Len(t, resp.SuspiciousSentences, 1)
		assert.Equal(t, "Win a free prize now", resp.SuspiciousSentences[0].Text)
	})

	t.Run("treats optional fields as absent", func(t *testing.T) {
		t.Parallel()

		var resp mailscan.AnalysisResponse
		require.NoError(t, json.Unmarshal([]byte(`{"overall_result":{"label":"SAFE","confidence":0.1}}`), &resp))

		require.NoError(t, resp.Validate())
		assert.Empty(t, resp.HighlightedWords)
		assert.Empty(t, resp.SuspiciousSentences)
	})

	t.Run("reports missing overall result as malformed", func(t *testing.T) {
		t.Parallel()

		var resp mailscan.AnalysisResponse
		require.NoError(t, json.Unmarshal([]byte(`{"highlighted_words":["x"]}`), &resp))

		err := resp.Validate()

		require.Error(t, err)
		assert.Equal(t, mailscan.EMALFORMED, mailscan.ErrorCode(err))
	})
}

func TestOverallResult_IsSpam(t *testing.T) {
	t.Parallel()

	assert.True(t, mailscan.OverallResult{Label: "SPAM"}.IsSpam())
	assert.True(t, mailscan.OverallResult{Label: "spam"}.IsSpam())
	assert.False(t, mailscan.OverallResult{Label: "NOT SPAM"}.IsSpam())
	assert.False(t, mailscan.OverallResult{Label: ""}.IsSpam())
}
