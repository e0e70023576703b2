// Package eval scores design rules against their labelled samples. Each
// sample is reviewed with just its rule in play, and the model's verdict is
// compared to the label, giving a per-rule accuracy measure for tuning rule
// wording and model choice.
package eval

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/leohentschker/vslint"
)

// SampleFailure records one sample the model got wrong.
type SampleFailure struct {
	Index       int
	Want        bool
	Got         bool
	Explanation string
}

// Result is the score for a single rule.
type Result struct {
	RuleID   string
	Total    int
	Correct  int
	Failures []SampleFailure
}

// Accuracy returns the fraction of samples the model labelled correctly.
// A rule with no samples scores zero.
func (r Result) Accuracy() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total)
}

// Harness runs rule samples through a review service.
type Harness struct {
	service vslint.ReviewService
	model   vslint.Model
	logger  *zap.Logger
}

// HarnessOption configures a Harness.
type HarnessOption func(*Harness)

// WithHarnessLogger sets the logger.
func WithHarnessLogger(logger *zap.Logger) HarnessOption {
	return func(h *Harness) {
		h.logger = logger
	}
}

// NewHarness creates a Harness that evaluates with the given service and
// model.
func NewHarness(service vslint.ReviewService, model vslint.Model, opts ...HarnessOption) *Harness {
	h := &Harness{
		service: service,
		model:   model,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EvaluateRule reviews every sample of the rule in isolation and scores the
// verdicts against the labels. Samples with no explicit viewport are rendered
// at content size.
func (h *Harness) EvaluateRule(ctx context.Context, rule vslint.Rule) (Result, error) {
	if err := rule.Validate(); err != nil {
		return Result{}, err
	}

	result := Result{RuleID: rule.RuleID, Total: len(rule.Samples)}
	for i, sample := range rule.Samples {
		viewport := vslint.FitSize()
		if sample.Viewport.Width > 0 && sample.Viewport.Height > 0 {
			viewport = vslint.ConcreteSize(sample.Viewport)
		}

		resp, err := h.service.Review(ctx, &vslint.ReviewRequest{
			Content:     sample.HTML,
			Rules:       []vslint.Rule{rule},
			Model:       h.model,
			Options:     vslint.RequestOptions{Viewport: viewport},
			TestDetails: vslint.TestDetails{Name: fmt.Sprintf("%s sample %d", rule.RuleID, i)},
		})
		if err != nil {
			return Result{}, fmt.Errorf("evaluate rule %s sample %d: %w", rule.RuleID, i, err)
		}

		got := resp.Violations[rule.RuleID].Fail
		if got == sample.Fail {
			result.Correct++
			continue
		}
		result.Failures = append(result.Failures, SampleFailure{
			Index:       i,
			Want:        sample.Fail,
			Got:         got,
			Explanation: resp.Explanation,
		})
		h.logger.Debug("sample mislabelled",
			zap.String("rule", rule.RuleID),
			zap.Int("sample", i),
			zap.Bool("want", sample.Fail),
			zap.Bool("got", got),
		)
	}
	return result, nil
}

// Evaluate scores every rule that has samples. Rules without samples are
// skipped rather than reported as zero-accuracy.
func (h *Harness) Evaluate(ctx context.Context, rules []vslint.Rule) ([]Result, error) {
	var results []Result
	for _, rule := range rules {
		if len(rule.Samples) == 0 {
			h.logger.Info("rule has no samples, skipping", zap.String("rule", rule.RuleID))
			continue
		}
		result, err := h.EvaluateRule(ctx, rule)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Format renders results as a human-readable report.
func Format(results []Result) string {
	if len(results) == 0 {
		return "No rules with samples to evaluate.\n"
	}

	var sb strings.Builder
	for _, r := range results {
		fmt.Fprintf(&sb, "%s: %d/%d (%.0f%%)\n", r.RuleID, r.Correct, r.Total, r.Accuracy()*100)
		for _, f := range r.Failures {
			fmt.Fprintf(&sb, "  sample %d: want fail=%t, got fail=%t\n", f.Index, f.Want, f.Got)
			if f.Explanation != "" {
				fmt.Fprintf(&sb, "    %s\n", f.Explanation)
			}
		}
	}
	return sb.String()
}
