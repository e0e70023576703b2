// Package rod renders review documents with a headless Chrome driven by Rod.
package rod

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/leohentschker/vslint"
)

// Compile-time interface verification.
var _ vslint.Renderer = (*Renderer)(nil)

// Renderer implements vslint.Renderer with a shared headless browser. The
// browser process is launched lazily on first use and reused for the life of
// the process; every render gets its own isolated page.
type Renderer struct {
	connect func() (*rod.Browser, error)
	logger  *zap.Logger
	scale   float64

	mu      sync.Mutex
	browser *rod.Browser
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithRendererLogger sets the logger.
func WithRendererLogger(logger *zap.Logger) RendererOption {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// WithConnect overrides how the browser is launched, for tests or for
// connecting to an external Chrome.
func WithConnect(connect func() (*rod.Browser, error)) RendererOption {
	return func(r *Renderer) {
		r.connect = connect
	}
}

// NewRenderer creates a Renderer. The browser is not launched until the
// first Render call.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		connect: launchLocal,
		logger:  zap.NewNop(),
		scale:   2, // matches what reviewers see on retina displays
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func launchLocal() (*rod.Browser, error) {
	u, err := launcher.New().Headless(true).NoSandbox(true).Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}
	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	return browser, nil
}

// Render draws the document at the requested size and screenshots it. Fit
// sizing measures the content bounding box after the document is loaded.
func (r *Renderer) Render(ctx context.Context, in vslint.RenderInput) (*vslint.Rendering, error) {
	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := page.SetDocumentContent(BuildDocument(in.Content, in.Stylesheets)); err != nil {
		return nil, fmt.Errorf("set document content: %w", err)
	}

	viewport := in.Viewport.Viewport
	if in.Viewport.Fit {
		viewport, err = measureContent(page)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("fit size measured", zap.Int("width", viewport.Width), zap.Int("height", viewport.Height))
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewport.Width,
		Height:            viewport.Height,
		DeviceScaleFactor: r.scale,
		Mobile:            false,
	}); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	image, err := page.Screenshot(false, nil)
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return &vslint.Rendering{Image: image, Viewport: viewport}, nil
}

// Close shuts down the shared browser. Only call at process shutdown.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil
	return err
}

func (r *Renderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return r.browser, nil
	}
	browser, err := r.connect()
	if err != nil {
		return nil, err
	}
	r.logger.Debug("browser launched")
	r.browser = browser
	return browser, nil
}

// measureContent returns the bounding box of the rendered fragment.
func measureContent(page *rod.Page) (vslint.Viewport, error) {
	res, err := page.Eval(`() => {
		const el = document.body.firstElementChild || document.body;
		const rect = el.getBoundingClientRect();
		return {
			width: Math.max(1, Math.ceil(rect.width)),
			height: Math.max(1, Math.ceil(rect.height)),
		};
	}`)
	if err != nil {
		return vslint.Viewport{}, fmt.Errorf("measure content bounds: %w", err)
	}
	return vslint.Viewport{
		Width:  res.Value.Get("width").Int(),
		Height: res.Value.Get("height").Int(),
	}, nil
}

// BuildDocument wraps the fragment markup in a full document with the
// stylesheets inlined in the head, the same document the reviewer sees.
func BuildDocument(content string, stylesheets []string) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<style>\n")
	sb.WriteString(strings.Join(stylesheets, "\n"))
	sb.WriteString("\n</style>\n</head>\n<body>\n")
	sb.WriteString(content)
	sb.WriteString("\n</body>\n</html>\n")
	return sb.String()
}
