package gemini

import (
	"context"

	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ Fitter = (*TokenCounter)(nil)

// TokenCounter counts tokens locally using the Gemini tokenizer.
type TokenCounter struct {
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter creates a new TokenCounter for the given model.
func NewTokenCounter(model string) (*TokenCounter, error) {
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, err
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens counts the number of tokens in the given text.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	result, err := tc.tok.CountTokens(contents, nil)
	if err != nil {
		return 0, err
	}

	return int(result.TotalTokens), nil
}

// Fit returns the longest prefix of text that fits in maxTokens, marked as
// truncated when it had to be cut.
func (tc *TokenCounter) Fit(ctx context.Context, text string, maxTokens int) (string, error) {
	n, err := tc.CountTokens(ctx, text)
	if err != nil {
		return "", err
	}
	if n <= maxTokens {
		return text, nil
	}

	runes := []rune(text)
	lo, hi := 0, len(runes)
	for lo < hi {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		mid := (lo + hi + 1) / 2
		n, err := tc.CountTokens(ctx, string(runes[:mid]))
		if err != nil {
			return "", err
		}
		if n <= maxTokens {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return string(runes[:lo]) + truncationMarker, nil
}
