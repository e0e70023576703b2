// Package provider routes review calls to the right vision-model backend
// based on the requested model name.
package provider

import (
	"context"
	"strings"

	"github.com/leohentschker/vslint"
	"github.com/leohentschker/vslint/gemini"
	"github.com/leohentschker/vslint/openai"
)

// Kind tags the backend family a model belongs to.
type Kind int

// Backend families.
const (
	KindOpenAICompatible Kind = iota
	KindGeminiCompatible
)

// KindForModel classifies a model name. Anything that is not a Gemini model
// is treated as OpenAI-compatible, mirroring how custom endpoints are wired.
func KindForModel(name string) Kind {
	if strings.HasPrefix(name, "gemini") {
		return KindGeminiCompatible
	}
	return KindOpenAICompatible
}

// Compile-time interface verification.
var _ vslint.Provider = (*Dispatcher)(nil)

// Dispatcher implements vslint.Provider by delegating each call to the
// backend matching the request's model name.
type Dispatcher struct {
	openai vslint.Provider
	gemini vslint.Provider
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithOpenAI overrides the OpenAI-compatible backend.
func WithOpenAI(p vslint.Provider) DispatcherOption {
	return func(d *Dispatcher) {
		d.openai = p
	}
}

// WithGemini overrides the Gemini backend.
func WithGemini(p vslint.Provider) DispatcherOption {
	return func(d *Dispatcher) {
		d.gemini = p
	}
}

// NewDispatcher creates a Dispatcher with the default backends.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		openai: openai.NewReviewer(),
		gemini: gemini.NewReviewer(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ReviewRule dispatches to the backend for the model.
func (d *Dispatcher) ReviewRule(ctx context.Context, image []byte, rule vslint.Rule, model vslint.Model) (vslint.RuleResult, error) {
	if KindForModel(model.Name) == KindGeminiCompatible {
		return d.gemini.ReviewRule(ctx, image, rule, model)
	}
	return d.openai.ReviewRule(ctx, image, rule, model)
}
