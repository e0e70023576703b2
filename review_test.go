package vslint_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leohentschker/vslint"
	"github.com/leohentschker/vslint/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ruleWithID(id string) vslint.Rule {
	return vslint.Rule{
		RuleID:      id,
		Description: "If the layout is broken, mark it as true; otherwise, mark it as false.",
	}
}

func staticRenderer(image []byte, vp vslint.Viewport) *mock.Renderer {
	return &mock.Renderer{
		RenderFn: func(ctx context.Context, in vslint.RenderInput) (*vslint.Rendering, error) {
			return &vslint.Rendering{Image: image, Viewport: vp}, nil
		},
	}
}

func TestEngine_Review(t *testing.T) {
	t.Parallel()

	image := []byte("png-bytes")
	viewport := vslint.Viewport{Width: 1920, Height: 1080}

	t.Run("aggregates a passing review", func(t *testing.T) {
		t.Parallel()

		provider := &mock.Provider{
			ReviewRuleFn: func(ctx context.Context, img []byte, rule vslint.Rule, model vslint.Model) (vslint.RuleResult, error) {
				assert.Equal(t, image, img)
				return vslint.RuleResult{Fail: false}, nil
			},
		}
		engine := vslint.NewEngine(staticRenderer(image, viewport), provider)

		resp, err := engine.Review(t.Context(), &vslint.ReviewRequest{
			Content:     "<div>sample-element</div>",
			Rules:       []vslint.Rule{ruleWithID("rule-a"), ruleWithID("rule-b")},
			TestDetails: vslint.TestDetails{Name: "TestSample"},
		})

		require.NoError(t, err)
		assert.True(t, resp.Pass)
		assert.Equal(t, vslint.PassedExplanation, resp.Explanation)
		assert.Equal(t, vslint.ContentHash("<div>sample-element</div>"), resp.ContentHash)
		assert.Equal(t, image, resp.Content)
		assert.Equal(t, viewport, resp.Viewport)
		assert.Len(t, resp.Violations, 2)
	})

	t.Run("one failing rule fails the review and keeps its explanation", func(t *testing.T) {
		t.Parallel()

		provider := &mock.Provider{
			ReviewRuleFn: func(ctx context.Context, img []byte, rule vslint.Rule, model vslint.Model) (vslint.RuleResult, error) {
				if rule.RuleID == "rule-b" {
					return vslint.RuleResult{Fail: true, Explanation: "too wide"}, nil
				}
				return vslint.RuleResult{}, nil
			},
		}
		engine := vslint.NewEngine(staticRenderer(image, viewport), provider)

		resp, err := engine.Review(t.Context(), &vslint.ReviewRequest{
			Content: "<div>sample-element</div>",
			Rules:   []vslint.Rule{ruleWithID("rule-a"), ruleWithID("rule-b")},
		})

		require.NoError(t, err)
		assert.False(t, resp.Pass)
		assert.Contains(t, resp.Explanation, "too wide")
		assert.False(t, resp.Violations["rule-a"].Fail)
		assert.True(t, resp.Violations["rule-b"].Fail)
	})

	t.Run("explanations follow rule declaration order, not completion order", func(t *testing.T) {
		t.Parallel()

		provider := &mock.Provider{
			ReviewRuleFn: func(ctx context.Context, img []byte, rule vslint.Rule, model vslint.Model) (vslint.RuleResult, error) {
				// The first rule finishes last.
				if rule.RuleID == "rule-a" {
					time.Sleep(20 * time.Millisecond)
					return vslint.RuleResult{Fail: true, Explanation: "first problem"}, nil
				}
				return vslint.RuleResult{Fail: true, Explanation: "second problem"}, nil
			},
		}
		engine := vslint.NewEngine(staticRenderer(image, viewport), provider)

		resp, err := engine.Review(t.Context(), &vslint.ReviewRequest{
			Content: "<div>x</div>",
			Rules:   []vslint.Rule{ruleWithID("rule-a"), ruleWithID("rule-b")},
		})

		require.NoError(t, err)
		assert.Equal(t, "first problem\n\nsecond problem", resp.Explanation)
	})

	t.Run("a failed provider call aborts the review", func(t *testing.T) {
		t.Parallel()

		provider := &mock.Provider{
			ReviewRuleFn: func(ctx context.Context, img []byte, rule vslint.Rule, model vslint.Model) (vslint.RuleResult, error) {
				if rule.RuleID == "rule-b" {
					return vslint.RuleResult{}, &vslint.ProviderError{Provider: "openai", Cause: errors.New("boom")}
				}
				return vslint.RuleResult{}, nil
			},
		}
		engine := vslint.NewEngine(staticRenderer(image, viewport), provider)

		_, err := engine.Review(t.Context(), &vslint.ReviewRequest{
			Content: "<div>x</div>",
			Rules:   []vslint.Rule{ruleWithID("rule-a"), ruleWithID("rule-b")},
		})

		var provErr *vslint.ProviderError
		require.ErrorAs(t, err, &provErr)
	})

	t.Run("render failure is a RenderError", func(t *testing.T) {
		t.Parallel()

		renderer := &mock.Renderer{
			RenderFn: func(ctx context.Context, in vslint.RenderInput) (*vslint.Rendering, error) {
				return nil, errors.New("navigation timeout")
			},
		}
		engine := vslint.NewEngine(renderer, &mock.Provider{})

		_, err := engine.Review(t.Context(), &vslint.ReviewRequest{
			Content: "<div>x</div>",
			Rules:   []vslint.Rule{ruleWithID("rule-a")},
		})

		var renderErr *vslint.RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.Contains(t, err.Error(), "navigation timeout")
	})

	t.Run("empty rule set is rejected", func(t *testing.T) {
		t.Parallel()

		engine := vslint.NewEngine(staticRenderer(image, viewport), &mock.Provider{})

		_, err := engine.Review(t.Context(), &vslint.ReviewRequest{Content: "<div>x</div>"})

		require.Error(t, err)
	})
}
