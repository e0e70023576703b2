// Package fs provides file-based caching for review services.
package fs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/leohentschker/vslint"
)

// Compile-time interface verification.
var _ vslint.ReviewService = (*Service)(nil)

// Service wraps a ReviewService with file-based response caching. The cache
// key covers everything that can change a verdict: content, stylesheets,
// rules, model name and viewport. Credentials are excluded so rotating a key
// does not invalidate the cache.
type Service struct {
	inner    vslint.ReviewService
	cacheDir string
}

// NewService creates a new caching review service.
func NewService(inner vslint.ReviewService, cacheDir string) *Service {
	return &Service{
		inner:    inner,
		cacheDir: cacheDir,
	}
}

// Review returns a cached response or delegates to the inner service.
func (s *Service) Review(ctx context.Context, req *vslint.ReviewRequest) (*vslint.ReviewResponse, error) {
	hash := s.hashRequest(req)

	if cached, err := s.loadFromCache(hash); err == nil {
		return cached, nil
	}

	resp, err := s.inner.Review(ctx, req)
	if err != nil {
		return nil, err
	}

	// Best-effort: a failed cache write never fails the review.
	_ = s.saveToCache(hash, resp)

	return resp, nil
}

// cacheKey is the subset of a request that determines the verdict.
type cacheKey struct {
	Content     string            `json:"content"`
	Stylesheets []string          `json:"stylesheets"`
	Rules       []vslint.Rule     `json:"rules"`
	ModelName   string            `json:"modelName"`
	Viewport    vslint.RenderSize `json:"viewport"`
}

func (s *Service) hashRequest(req *vslint.ReviewRequest) string {
	data, _ := json.Marshal(cacheKey{
		Content:     req.Content,
		Stylesheets: req.Stylesheets,
		Rules:       req.Rules,
		ModelName:   req.Model.Name,
		Viewport:    req.Options.Viewport,
	})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (s *Service) cachePath(hash string) string {
	return filepath.Join(s.cacheDir, hash+".json")
}

func (s *Service) loadFromCache(hash string) (*vslint.ReviewResponse, error) {
	data, err := os.ReadFile(s.cachePath(hash))
	if err != nil {
		return nil, err
	}

	var resp vslint.ReviewResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (s *Service) saveToCache(hash string, resp *vslint.ReviewResponse) error {
	if err := os.MkdirAll(s.cacheDir, 0755); err != nil {
		return err
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	return os.WriteFile(s.cachePath(hash), data, 0644)
}
