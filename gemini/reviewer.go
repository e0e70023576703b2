package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/leohentschker/vslint"
)

// Compile-time interface verification.
var _ vslint.Provider = (*Reviewer)(nil)

// Reviewer implements vslint.Provider using Google Gemini. Clients are
// created lazily per API key, since the key arrives with each request.
type Reviewer struct {
	newClient func(ctx context.Context, apiKey string) (GenerativeClient, error)

	mu      sync.Mutex
	clients map[string]GenerativeClient
}

// ReviewerOption configures a Reviewer.
type ReviewerOption func(*Reviewer)

// WithClientFactory overrides how clients are constructed, for testing.
func WithClientFactory(factory func(ctx context.Context, apiKey string) (GenerativeClient, error)) ReviewerOption {
	return func(r *Reviewer) {
		r.newClient = factory
	}
}

// NewReviewer creates a Reviewer.
func NewReviewer(opts ...ReviewerOption) *Reviewer {
	r := &Reviewer{
		newClient: func(ctx context.Context, apiKey string) (GenerativeClient, error) {
			return NewClient(ctx, apiKey)
		},
		clients: make(map[string]GenerativeClient),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReviewRule evaluates one rule against the rendered screenshot.
func (r *Reviewer) ReviewRule(ctx context.Context, image []byte, rule vslint.Rule, model vslint.Model) (vslint.RuleResult, error) {
	if model.Key == "" {
		return vslint.RuleResult{}, &vslint.ProviderError{Provider: "gemini", Cause: fmt.Errorf("GEMINI_API_KEY not set")}
	}
	client, err := r.clientFor(ctx, model.Key)
	if err != nil {
		return vslint.RuleResult{}, &vslint.ProviderError{Provider: "gemini", Cause: err}
	}

	contents := []*Content{{
		Parts: []*Part{
			{InlineData: &Blob{MIMEType: "image/png", Data: image}},
			{Text: BuildRulePrompt(rule)},
		},
	}}

	resp, err := client.GenerateContent(ctx, model.Name, contents, BuildReviewConfig())
	if err != nil {
		return vslint.RuleResult{}, &vslint.ProviderError{Provider: "gemini", Cause: err}
	}
	if resp == nil {
		return vslint.RuleResult{}, &vslint.ProviderError{Provider: "gemini", Cause: fmt.Errorf("returned nil response")}
	}

	var result vslint.RuleResult
	if err := json.Unmarshal([]byte(resp.Text), &result); err != nil {
		return vslint.RuleResult{}, &vslint.ProviderError{Provider: "gemini", Cause: fmt.Errorf("failed to parse response: %w", err)}
	}
	return result, nil
}

func (r *Reviewer) clientFor(ctx context.Context, apiKey string) (GenerativeClient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if client, ok := r.clients[apiKey]; ok {
		return client, nil
	}
	client, err := r.newClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	r.clients[apiKey] = client
	return client, nil
}

// BuildRulePrompt creates the user prompt for a single-rule review.
func BuildRulePrompt(rule vslint.Rule) string {
	return fmt.Sprintf(`Evaluate the attached component screenshot against the following design rule.

## %s
%s

Respond with JSON matching this schema: { "explanation": string, "fail": boolean }.
Set fail to the boolean the rule tells you to mark. When fail is true, explanation must describe the concrete problem you see in the screenshot.`, rule.RuleID, rule.Description)
}

// BuildReviewConfig returns config for review calls.
func BuildReviewConfig() *GenerateContentConfig {
	temp := float32(0) // Deterministic verdicts for CI-adjacent use
	return &GenerateContentConfig{
		SystemInstruction: &Content{
			Parts: []*Part{{
				Text: `You are an AI assistant working as a senior designer reviewing website components.

You take two inputs:
1. Rule: the rule to evaluate the component against.
2. Image: a screenshot of the component rendered in Chrome.

You care a lot about design quality and do not miss any detail. When you give feedback it should be very detailed and grounded in what is visible in the screenshot.`,
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
}
