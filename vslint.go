// Package vslint provides domain types for AI-assisted design review of
// rendered UI fragments. Instead of pixel-diffing, a vision-capable model
// checks a screenshot of the fragment against natural-language design rules,
// and the verdict is cached in a snapshot keyed by content hash.
package vslint

import "context"

// Model identifies a vision-capable review model and its credential.
type Model struct {
	Name string `json:"modelName" yaml:"modelName"`
	Key  string `json:"key,omitempty" yaml:"key,omitempty"`
}

// RequestOptions carries per-request rendering options on the wire.
type RequestOptions struct {
	Viewport RenderSize `json:"viewport"`
}

// TestDetails identifies the test a review request originated from.
type TestDetails struct {
	Name string `json:"name"`
}

// ReviewRequest is the input to a single design review. It is constructed
// fresh per verification attempt and never persisted verbatim.
type ReviewRequest struct {
	Content     string         `json:"content"`
	Stylesheets []string       `json:"stylesheets"`
	Rules       []Rule         `json:"rules"`
	Model       Model          `json:"model"`
	Options     RequestOptions `json:"options"`
	TestDetails TestDetails    `json:"testDetails"`
}

// Violation is one rule's verdict for one review attempt.
type Violation struct {
	RuleID string `json:"-"`
	Fail   bool   `json:"fail"`
	Rule   string `json:"rule"` // the rule description the model evaluated
}

// ReviewResponse is the outcome of a single design review.
//
// Pass is always derivable from Violations; readers must re-derive it via
// ComputePass rather than trusting the stored value.
type ReviewResponse struct {
	Name        string               `json:"name"`
	ContentHash string               `json:"contentHash"`
	Pass        bool                 `json:"pass"`
	Explanation string               `json:"explanation,omitempty"`
	Violations  map[string]Violation `json:"violations"`
	Viewport    Viewport             `json:"viewport"`
	Content     []byte               `json:"content"` // rendered PNG, base64 on the wire
}

// ComputePass returns true iff no violation failed.
func (r *ReviewResponse) ComputePass() bool {
	for _, v := range r.Violations {
		if v.Fail {
			return false
		}
	}
	return true
}

// SnapshotRecord is the persisted last-known verdict for a snapshot
// identifier. It is created on first review, fully replaced whenever the
// content hash changes, and never deleted automatically; deleting the record
// is the explicit mechanism for forcing a re-review.
type SnapshotRecord struct {
	ContentHash string   `json:"contentHash"`
	FailedRules []string `json:"failedRules"`
	Pass        bool     `json:"pass"`
	Explanation string   `json:"explanation,omitempty"`
}

// SnapshotStore is a durable mapping from snapshot identifiers to records.
//
// Read returns (nil, nil) for a missing record and for a record that cannot
// be parsed: corruption forces a fresh review instead of failing the run.
// Write fully replaces any prior record and is idempotent for identical
// records. Implementations with different physical encodings must round-trip
// records exactly, including an empty FailedRules slice.
type SnapshotStore interface {
	Read(identifier string) (*SnapshotRecord, error)
	Write(identifier string, record *SnapshotRecord) error
}

// Rendering is the result of rendering markup at a viewport: the screenshot
// bytes and the concrete pixel dimensions that were used. For fit-sized
// renders the viewport reports the measured content bounds.
type Rendering struct {
	Image    []byte
	Viewport Viewport
}

// RenderInput describes what the renderer should draw.
type RenderInput struct {
	Content     string
	Stylesheets []string
	Viewport    RenderSize
}

// Renderer turns serialized markup plus stylesheets into a screenshot.
type Renderer interface {
	Render(ctx context.Context, in RenderInput) (*Rendering, error)
}

// RuleResult is a vision-model backend's verdict for one rule.
type RuleResult struct {
	Fail        bool   `json:"fail"`
	Explanation string `json:"explanation,omitempty"`
}

// Provider reviews a rendered image against a single rule using the given
// model. Implementations wrap concrete vision-model backends.
type Provider interface {
	ReviewRule(ctx context.Context, image []byte, rule Rule, model Model) (RuleResult, error)
}

// ReviewService executes a complete design review: render the request's
// content, evaluate every rule, and aggregate the verdict. The local Engine
// and the HTTP client implement this interchangeably.
type ReviewService interface {
	Review(ctx context.Context, req *ReviewRequest) (*ReviewResponse, error)
}

// Element is the minimal structural contract a value must satisfy to be
// design-reviewed: it can serialize itself to markup.
type Element interface {
	OuterHTML() string
}

// RawElement adapts a markup string to the Element interface.
type RawElement string

// OuterHTML returns the markup as-is.
func (e RawElement) OuterHTML() string { return string(e) }

// Decision is the outcome of a manual-override prompt.
type Decision int

// Prompt decisions.
const (
	// DecisionAccepted confirms the failure: the violation stands.
	DecisionAccepted Decision = iota
	// DecisionRejected overrides the failure: the violation is flipped to
	// passing before the snapshot is persisted.
	DecisionRejected
	// DecisionExhausted means the user produced too many invalid keystrokes.
	DecisionExhausted
)

// Prompter asks a human to confirm or override a failing rule. Confirm
// blocks on input; invalid keystrokes are retried a bounded number of times
// before DecisionExhausted is returned.
type Prompter interface {
	Confirm(ctx context.Context, question string) (Decision, error)
}
