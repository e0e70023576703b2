package vslint

import (
	"encoding/json"
	"fmt"
)

// Viewport is a concrete pixel size used when rendering before review.
type Viewport struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// SizeFit is the symbolic token for content-bounding-box sizing. It is
// resolved by the renderer from measured content bounds, never by the
// resolver, and is therefore never cached as a concrete size.
const SizeFit = "fit"

// sizePresets maps symbolic size tokens to concrete viewports.
var sizePresets = map[string]Viewport{
	"full-screen": {Width: 1920, Height: 1080},
	"mobile":      {Width: 375, Height: 812},
	"tablet":      {Width: 768, Height: 1024},
	"xs":          {Width: 320, Height: 568},
	"sm":          {Width: 640, Height: 480},
	"md":          {Width: 768, Height: 1024},
	"lg":          {Width: 1024, Height: 768},
	"xl":          {Width: 1280, Height: 1024},
	"2xl":         {Width: 1536, Height: 1024},
	"3xl":         {Width: 1920, Height: 1080},
}

// Size is a requested render size: either a symbolic token or explicit
// dimensions. The zero value means "no size requested" and resolves to the
// full-desktop default.
type Size struct {
	Token  string
	Width  int
	Height int
}

// SizeToken returns a symbolic Size.
func SizeToken(token string) Size { return Size{Token: token} }

// SizeDims returns an explicit Size.
func SizeDims(width, height int) Size { return Size{Width: width, Height: height} }

// IsZero reports whether no size was requested.
func (s Size) IsZero() bool { return s.Token == "" && s.Width == 0 && s.Height == 0 }

// Suffix returns the snapshot-identifier suffix for the size: the token
// itself, WIDTHxHEIGHT for explicit dimensions, or empty when unset.
func (s Size) Suffix() string {
	if s.Token != "" {
		return s.Token
	}
	if s.Width > 0 && s.Height > 0 {
		return fmt.Sprintf("%dx%d", s.Width, s.Height)
	}
	return ""
}

// Resolve maps a Size to a RenderSize. Unknown tokens and non-positive
// explicit dimensions are errors; an unset size defaults to the full-desktop
// preset.
func (s Size) Resolve() (RenderSize, error) {
	if s.IsZero() {
		return ConcreteSize(sizePresets["full-screen"]), nil
	}
	if s.Token == SizeFit {
		return FitSize(), nil
	}
	if s.Token != "" {
		vp, ok := sizePresets[s.Token]
		if !ok {
			return RenderSize{}, fmt.Errorf("unknown size token %q", s.Token)
		}
		return ConcreteSize(vp), nil
	}
	if s.Width <= 0 || s.Height <= 0 {
		return RenderSize{}, fmt.Errorf("viewport dimensions must be positive, got %dx%d", s.Width, s.Height)
	}
	return ConcreteSize(Viewport{Width: s.Width, Height: s.Height}), nil
}

// RenderSize is the resolved render size handed to the renderer: either a
// concrete viewport or the fit sentinel. On the wire it serializes as the
// string "fit" or a {width,height} object.
type RenderSize struct {
	Fit      bool
	Viewport Viewport
}

// FitSize returns the fit sentinel.
func FitSize() RenderSize { return RenderSize{Fit: true} }

// ConcreteSize returns a concrete RenderSize.
func ConcreteSize(vp Viewport) RenderSize { return RenderSize{Viewport: vp} }

// MarshalJSON implements json.Marshaler.
func (s RenderSize) MarshalJSON() ([]byte, error) {
	if s.Fit {
		return json.Marshal(SizeFit)
	}
	return json.Marshal(s.Viewport)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *RenderSize) UnmarshalJSON(data []byte) error {
	var token string
	if err := json.Unmarshal(data, &token); err == nil {
		if token != SizeFit {
			return fmt.Errorf("unknown viewport token %q", token)
		}
		*s = FitSize()
		return nil
	}
	var vp Viewport
	if err := json.Unmarshal(data, &vp); err != nil {
		return err
	}
	*s = ConcreteSize(vp)
	return nil
}
