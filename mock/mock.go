// Package mock provides hand-written mocks for vslint interfaces.
package mock

import (
	"context"

	"github.com/leohentschker/vslint"
)

// Compile-time interface verification.
var (
	_ vslint.Renderer      = (*Renderer)(nil)
	_ vslint.Provider      = (*Provider)(nil)
	_ vslint.ReviewService = (*ReviewService)(nil)
	_ vslint.SnapshotStore = (*SnapshotStore)(nil)
	_ vslint.Prompter      = (*Prompter)(nil)
)

// Renderer is a mock implementation of vslint.Renderer.
type Renderer struct {
	RenderFn func(ctx context.Context, in vslint.RenderInput) (*vslint.Rendering, error)
}

func (r *Renderer) Render(ctx context.Context, in vslint.RenderInput) (*vslint.Rendering, error) {
	return r.RenderFn(ctx, in)
}

// Provider is a mock implementation of vslint.Provider.
type Provider struct {
	ReviewRuleFn func(ctx context.Context, image []byte, rule vslint.Rule, model vslint.Model) (vslint.RuleResult, error)
}

func (p *Provider) ReviewRule(ctx context.Context, image []byte, rule vslint.Rule, model vslint.Model) (vslint.RuleResult, error) {
	return p.ReviewRuleFn(ctx, image, rule, model)
}

// ReviewService is a mock implementation of vslint.ReviewService.
type ReviewService struct {
	ReviewFn func(ctx context.Context, req *vslint.ReviewRequest) (*vslint.ReviewResponse, error)
}

func (s *ReviewService) Review(ctx context.Context, req *vslint.ReviewRequest) (*vslint.ReviewResponse, error) {
	return s.ReviewFn(ctx, req)
}

// SnapshotStore is a mock implementation of vslint.SnapshotStore.
type SnapshotStore struct {
	ReadFn  func(identifier string) (*vslint.SnapshotRecord, error)
	WriteFn func(identifier string, record *vslint.SnapshotRecord) error
}

func (s *SnapshotStore) Read(identifier string) (*vslint.SnapshotRecord, error) {
	return s.ReadFn(identifier)
}

func (s *SnapshotStore) Write(identifier string, record *vslint.SnapshotRecord) error {
	return s.WriteFn(identifier, record)
}

// Prompter is a mock implementation of vslint.Prompter.
type Prompter struct {
	ConfirmFn func(ctx context.Context, question string) (vslint.Decision, error)
}

func (p *Prompter) Confirm(ctx context.Context, question string) (vslint.Decision, error) {
	return p.ConfirmFn(ctx, question)
}
