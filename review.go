package vslint

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PassedExplanation is the aggregate explanation when no rule failed.
const PassedExplanation = "Design review passed."

// Engine is the local ReviewService: it renders the request's content once
// and fans out one provider call per rule.
type Engine struct {
	renderer Renderer
	provider Provider
	logger   *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the logger.
func WithEngineLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an Engine backed by the given renderer and provider.
func NewEngine(renderer Renderer, provider Provider, opts ...EngineOption) *Engine {
	e := &Engine{
		renderer: renderer,
		provider: provider,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compile-time interface verification.
var _ ReviewService = (*Engine)(nil)

// Review renders the request and evaluates every rule concurrently. Rule
// calls are dispatched in parallel but the aggregated explanation follows
// rule-declaration order. A single failed provider call aborts the review;
// it is never silently dropped.
func (e *Engine) Review(ctx context.Context, req *ReviewRequest) (*ReviewResponse, error) {
	if len(req.Rules) == 0 {
		return nil, fmt.Errorf("vslint: review request has no rules")
	}
	if err := ValidateRules(req.Rules); err != nil {
		return nil, fmt.Errorf("vslint: %w", err)
	}

	runID := uuid.NewString()
	logger := e.logger.With(zap.String("run_id", runID), zap.String("test", req.TestDetails.Name))

	rendering, err := e.renderer.Render(ctx, RenderInput{
		Content:     req.Content,
		Stylesheets: req.Stylesheets,
		Viewport:    req.Options.Viewport,
	})
	if err != nil {
		return nil, &RenderError{Cause: err}
	}
	logger.Debug("rendered content",
		zap.Int("image_bytes", len(rendering.Image)),
		zap.Int("width", rendering.Viewport.Width),
		zap.Int("height", rendering.Viewport.Height))

	// Fan out one call per rule. Results land in declaration-order slots so
	// aggregation below is deterministic regardless of completion order.
	results := make([]RuleResult, len(req.Rules))
	g, gctx := errgroup.WithContext(ctx)
	for i, rule := range req.Rules {
		g.Go(func() error {
			res, err := e.provider.ReviewRule(gctx, rendering.Image, rule, req.Model)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &ReviewResponse{
		Name:        req.TestDetails.Name,
		ContentHash: ContentHash(req.Content),
		Violations:  make(map[string]Violation, len(req.Rules)),
		Viewport:    rendering.Viewport,
		Content:     rendering.Image,
	}
	var failed []string
	for i, rule := range req.Rules {
		res := results[i]
		resp.Violations[rule.RuleID] = Violation{
			RuleID: rule.RuleID,
			Fail:   res.Fail,
			Rule:   rule.Description,
		}
		if res.Fail && strings.TrimSpace(res.Explanation) != "" {
			failed = append(failed, strings.TrimSpace(res.Explanation))
		}
	}
	resp.Pass = resp.ComputePass()
	if len(failed) > 0 {
		resp.Explanation = strings.Join(failed, "\n\n")
	} else {
		resp.Explanation = PassedExplanation
	}

	logger.Debug("review complete", zap.Bool("pass", resp.Pass), zap.String("explanation", resp.Explanation))
	return resp, nil
}
