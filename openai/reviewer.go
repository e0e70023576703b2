// Package openai implements the review provider for OpenAI-compatible
// chat-completion endpoints.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/leohentschker/vslint"
)

// DefaultBaseURL is the OpenAI API endpoint. Any OpenAI-compatible backend
// can be substituted via WithBaseURL.
const DefaultBaseURL = "https://api.openai.com/v1"

// Compile-time interface verification.
var _ vslint.Provider = (*Reviewer)(nil)

// Reviewer implements vslint.Provider against the chat completions API.
type Reviewer struct {
	baseURL    string
	httpClient *http.Client
}

// ReviewerOption configures a Reviewer.
type ReviewerOption func(*Reviewer)

// WithBaseURL points the reviewer at an OpenAI-compatible endpoint.
func WithBaseURL(baseURL string) ReviewerOption {
	return func(r *Reviewer) {
		r.baseURL = baseURL
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) ReviewerOption {
	return func(r *Reviewer) {
		r.httpClient = c
	}
}

// NewReviewer creates a Reviewer.
func NewReviewer(opts ...ReviewerOption) *Reviewer {
	r := &Reviewer{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

const systemPrompt = `You are an AI assistant working as a senior designer to review website components and provide feedback on their design.

You take two inputs:
1. Rule: The rule to evaluate the component against.
2. Image: A screenshot of the component in Chrome.

You need to evaluate the component against the rule and provide feedback on the design to be run in a CI pipeline.

YOU ARE A SENIOR DESIGNER THAT CARES A LOT ABOUT DESIGN QUALITY AND DOES NOT MISS ANY DETAIL. WHEN YOU GIVE FEEDBACK IT SHOULD BE VERY DETAILED AND INCLUDE EXPLANATIONS IN THE CONTEXT OF THE SPECIFIC HTML PASSED IN.`

// Chat completions wire types, narrowed to what the review needs.

type chatRequest struct {
	Model          string         `json:"model"`
	ResponseFormat responseFormat `json:"response_format"`
	Temperature    float32        `json:"temperature"`
	Seed           int            `json:"seed"`
	Messages       []chatMessage  `json:"messages"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type imagePart struct {
	Type     string   `json:"type"`
	ImageURL imageURL `json:"image_url"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ReviewRule evaluates one rule against the rendered screenshot.
func (r *Reviewer) ReviewRule(ctx context.Context, image []byte, rule vslint.Rule, model vslint.Model) (vslint.RuleResult, error) {
	if model.Key == "" {
		return vslint.RuleResult{}, &vslint.ProviderError{Provider: "openai", Cause: fmt.Errorf("OPENAI_API_KEY not set")}
	}

	prompt := fmt.Sprintf("%s\n\nReturn in JSON format: { explanation: string; fail: boolean; }.\n\nHere is the rule you are evaluating:\n## %s\n%s", systemPrompt, rule.RuleID, rule.Description)
	payload := chatRequest{
		Model:          model.Name,
		ResponseFormat: responseFormat{Type: "json_object"},
		Temperature:    0,
		Seed:           42,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []imagePart{{
					Type: "image_url",
					ImageURL: imageURL{
						URL:    "data:image/png;base64," + base64.StdEncoding.EncodeToString(image),
						Detail: "high",
					},
				}},
			},
			{Role: "system", Content: prompt},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return vslint.RuleResult{}, &vslint.ProviderError{Provider: "openai", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return vslint.RuleResult{}, &vslint.ProviderError{Provider: "openai", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+model.Key)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return vslint.RuleResult{}, &vslint.ProviderError{Provider: "openai", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return vslint.RuleResult{}, &vslint.ProviderError{
			Provider: "openai",
			Cause:    fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(data)),
		}
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return vslint.RuleResult{}, &vslint.ProviderError{Provider: "openai", Cause: fmt.Errorf("failed to parse response: %w", err)}
	}
	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return vslint.RuleResult{}, &vslint.ProviderError{Provider: "openai", Cause: fmt.Errorf("no result from OpenAI")}
	}

	var result vslint.RuleResult
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &result); err != nil {
		return vslint.RuleResult{}, &vslint.ProviderError{Provider: "openai", Cause: fmt.Errorf("failed to parse model verdict: %w", err)}
	}
	return result, nil
}
