package gemini_test

import (
	"context"
	"testing"

	"github.com/leohentschker/vslint"
	"github.com/leohentschker/vslint/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRule = vslint.Rule{
	RuleID:      "text-too-wide",
	Description: "If any line of text contains more than 75 characters, mark it as true; otherwise, mark it as false.",
}

func reviewerWithResponse(t *testing.T, text string) *gemini.Reviewer {
	t.Helper()
	client := &gemini.MockGenerativeClient{
		GenerateContentFn: func(ctx context.Context, model string, contents []*gemini.Content, config *gemini.GenerateContentConfig) (*gemini.GenerateContentResponse, error) {
			return &gemini.GenerateContentResponse{Text: text}, nil
		},
	}
	return gemini.NewReviewer(gemini.WithClientFactory(func(ctx context.Context, apiKey string) (gemini.GenerativeClient, error) {
		return client, nil
	}))
}

func TestReviewer_ReviewRule(t *testing.T) {
	t.Parallel()

	model := vslint.Model{Name: gemini.DefaultModel, Key: "test-key"}

	t.Run("parses a failing verdict", func(t *testing.T) {
		t.Parallel()

		reviewer := reviewerWithResponse(t, `{"fail": true, "explanation": "too wide"}`)

		result, err := reviewer.ReviewRule(t.Context(), []byte("png"), testRule, model)

		require.NoError(t, err)
		assert.True(t, result.Fail)
		assert.Equal(t, "too wide", result.Explanation)
	})

	t.Run("parses a passing verdict", func(t *testing.T) {
		t.Parallel()

		reviewer := reviewerWithResponse(t, `{"fail": false}`)

		result, err := reviewer.ReviewRule(t.Context(), []byte("png"), testRule, model)

		require.NoError(t, err)
		assert.False(t, result.Fail)
	})

	t.Run("sends the screenshot and the rule text", func(t *testing.T) {
		t.Parallel()

		var gotContents []*gemini.Content
		client := &gemini.MockGenerativeClient{
			GenerateContentFn: func(ctx context.Context, model string, contents []*gemini.Content, config *gemini.GenerateContentConfig) (*gemini.GenerateContentResponse, error) {
				gotContents = contents
				return &gemini.GenerateContentResponse{Text: `{"fail": false}`}, nil
			},
		}
		reviewer := gemini.NewReviewer(gemini.WithClientFactory(func(ctx context.Context, apiKey string) (gemini.GenerativeClient, error) {
			return client, nil
		}))

		_, err := reviewer.ReviewRule(t.Context(), []byte("png-bytes"), testRule, model)

		require.NoError(t, err)
		require.Len(t, gotContents, 1)
		require.Len(t, gotContents[0].Parts, 2)
		assert.Equal(t, []byte("png-bytes"), gotContents[0].Parts[0].InlineData.Data)
		assert.Contains(t, gotContents[0].Parts[1].Text, "text-too-wide")
	})

	t.Run("malformed model output is a hard provider error", func(t *testing.T) {
		t.Parallel()

		reviewer := reviewerWithResponse(t, "this is not json")

		_, err := reviewer.ReviewRule(t.Context(), []byte("png"), testRule, model)

		var provErr *vslint.ProviderError
		require.ErrorAs(t, err, &provErr)
	})

	t.Run("missing key is a provider error", func(t *testing.T) {
		t.Parallel()

		reviewer := reviewerWithResponse(t, `{"fail": false}`)

		_, err := reviewer.ReviewRule(t.Context(), []byte("png"), testRule, vslint.Model{Name: gemini.DefaultModel})

		var provErr *vslint.ProviderError
		require.ErrorAs(t, err, &provErr)
	})
}
