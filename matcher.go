package vslint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultSnapshotDir is where snapshot records and image artifacts live.
const DefaultSnapshotDir = "__design_snapshots__"

// DefaultReviewTimeout bounds a single verification call end to end.
const DefaultReviewTimeout = 50 * time.Second

// Config is the matcher-level configuration surface.
type Config struct {
	// CustomStyles lists CSS files inlined into every rendered document.
	// Each path must exist at construction time.
	CustomStyles []string

	// Rules is the rule set to review against. Defaults to DefaultRules.
	Rules []Rule

	// Strict controls whether a cached failing verdict still fails the test.
	// When false, a cache hit always passes but the message reports the
	// prior failures.
	Strict bool

	// Model names the review model and carries its credential.
	Model Model

	// SnapshotDir overrides DefaultSnapshotDir.
	SnapshotDir string

	// AllowCIReviews permits live review calls in CI. Off by default: a
	// cache miss in CI is a CIGuardError even when a credential is present.
	AllowCIReviews bool

	// SerializeSnapshots serializes concurrent verifications for the same
	// snapshot identifier. Off by default: last writer wins.
	SerializeSnapshots bool

	// Timeout bounds one verification call. Defaults to DefaultReviewTimeout.
	Timeout time.Duration

	// Env is the environment lookup used for CI detection. Defaults to
	// os.Getenv.
	Env func(string) string
}

// DefaultConfig returns a Config with the defaults applied.
func DefaultConfig() Config {
	return Config{
		Strict:      true,
		SnapshotDir: DefaultSnapshotDir,
		Timeout:     DefaultReviewTimeout,
		Env:         os.Getenv,
	}
}

// TestState identifies the currently running test for snapshot keying.
type TestState struct {
	TestPath string // path of the test source file
	TestName string // full name of the running test
}

// RunOptions are per-call overrides for a single verification.
type RunOptions struct {
	// AtSize renders at a symbolic or explicit size instead of the default.
	AtSize Size

	// Strict overrides the configured strict flag for this call only.
	Strict *bool

	// ForceReview bypasses the snapshot cache entirely.
	ForceReview bool

	// Log overrides the log level for this call ("debug", "info", "warn",
	// "error").
	Log string
}

// MatcherResult is the test-framework-facing verdict. Message is lazy so
// passing verifications never pay for message formatting.
type MatcherResult struct {
	Pass    bool
	Message func() string
}

// Orchestrator is the review-snapshot decision pipeline: given a rendered
// element it decides cache-hit, cache-miss, or CI-guard-violation, delegates
// the actual review to a ReviewService, routes failures through the optional
// manual-override prompt, and persists the verdict.
type Orchestrator struct {
	cfg         Config
	service     ReviewService
	snapshots   SnapshotStore
	prompter    Prompter
	logger      *zap.Logger
	stylesheets []string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithPrompter enables the interactive manual-override flow. The prompter is
// never consulted in CI.
func WithPrompter(p Prompter) OrchestratorOption {
	return func(o *Orchestrator) {
		o.prompter = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator validates the configuration and loads the custom
// stylesheets. Configuration problems are fatal here, before any review call.
func NewOrchestrator(cfg Config, service ReviewService, snapshots SnapshotStore, opts ...OrchestratorOption) (*Orchestrator, error) {
	if cfg.SnapshotDir == "" {
		cfg.SnapshotDir = DefaultSnapshotDir
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultReviewTimeout
	}
	if cfg.Env == nil {
		cfg.Env = os.Getenv
	}
	if len(cfg.Rules) == 0 {
		cfg.Rules = DefaultRules()
	}
	if err := ValidateRules(cfg.Rules); err != nil {
		return nil, &ConfigError{Msg: err.Error()}
	}
	if service == nil {
		return nil, &ConfigError{Msg: "a review service is required"}
	}
	if snapshots == nil {
		return nil, &ConfigError{Msg: "a snapshot store is required"}
	}

	var stylesheets []string
	for _, cssPath := range cfg.CustomStyles {
		data, err := os.ReadFile(cssPath)
		if err != nil {
			return nil, &ConfigError{Msg: fmt.Sprintf("could not find CSS file at path %s; this file is required to correctly render your snapshots", cssPath)}
		}
		stylesheets = append(stylesheets, string(data))
	}

	o := &Orchestrator{
		cfg:         cfg,
		service:     service,
		snapshots:   snapshots,
		logger:      zap.NewNop(),
		stylesheets: stylesheets,
		locks:       make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Verify runs the decision pipeline for one element. Only configuration
// errors, the CI guard, and an exhausted override prompt return a non-nil
// error; every other failure mode degrades to a failing MatcherResult so a
// single bad rule or outage fails one test, not the whole run.
func (o *Orchestrator) Verify(ctx context.Context, state TestState, received any, opts *RunOptions) (MatcherResult, error) {
	if opts == nil {
		opts = &RunOptions{}
	}
	logger := o.runLogger(opts.Log)

	el, ok := received.(Element)
	if !ok {
		return failResult("received invalid value for element: pass a value implementing vslint.Element (for example vslint.RawElement) into Verify"), nil
	}

	viewport, err := opts.AtSize.Resolve()
	if err != nil {
		return failResult(err.Error()), nil
	}

	markup := el.OuterHTML()
	hash := ContentHash(markup)
	identifier := SnapshotIdentifier(state.TestPath, state.TestName, opts.AtSize)
	logger = logger.With(zap.String("snapshot", identifier))
	strict := o.cfg.Strict
	if opts.Strict != nil {
		strict = *opts.Strict
	}

	if o.cfg.SerializeSnapshots {
		unlock := o.lock(identifier)
		defer unlock()
	}

	if !opts.ForceReview {
		if result, hit := o.lookup(logger, identifier, hash, strict); hit {
			return result, nil
		}
	}

	// Cache miss. Never fall through to a live model call in CI.
	if o.inCI() && (!o.cfg.AllowCIReviews || o.cfg.Model.Key == "") {
		return MatcherResult{}, &CIGuardError{Identifier: identifier}
	}
	if o.cfg.Model.Name == "" || o.cfg.Model.Key == "" {
		return MatcherResult{}, &ConfigError{Msg: "content changed but review cannot run: model name and key are not set; if the key comes from the environment, make sure it is exported"}
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	resp, err := o.service.Review(ctx, &ReviewRequest{
		Content:     markup,
		Stylesheets: o.stylesheets,
		Rules:       o.cfg.Rules,
		Model:       o.cfg.Model,
		Options:     RequestOptions{Viewport: viewport},
		TestDetails: TestDetails{Name: state.TestName},
	})
	if err != nil {
		logger.Error("design review failed", zap.Error(err))
		return failResult("error while running design review: " + err.Error()), nil
	}
	// Pass is derivable from the violations; never trust the stored flag.
	resp.Pass = resp.ComputePass()

	if o.prompter != nil && !o.inCI() {
		if err := o.applyOverrides(ctx, resp); err != nil {
			return MatcherResult{}, err
		}
	}

	artifactPath, err := o.persist(logger, identifier, hash, resp)
	if err != nil {
		return failResult(err.Error()), nil
	}

	pass := resp.Pass
	explanation := resp.Explanation
	return MatcherResult{
		Pass: pass,
		Message: func() string {
			if pass {
				return "Automated design review passed"
			}
			return fmt.Sprintf("Design review failed: %s\n\nRendered artifact: %s\nTo override this, update the value of pass to true in the snapshot for %s", explanation, artifactPath, identifier)
		},
	}, nil
}

// lookup reports whether the stored snapshot covers the candidate hash and,
// if so, the verdict for it. A corrupt or missing record is a miss.
func (o *Orchestrator) lookup(logger *zap.Logger, identifier, hash string, strict bool) (MatcherResult, bool) {
	record, err := o.snapshots.Read(identifier)
	if err != nil {
		logger.Warn("snapshot read failed, forcing re-review", zap.Error(err))
		return MatcherResult{}, false
	}
	if record == nil || record.ContentHash != hash {
		return MatcherResult{}, false
	}

	logger.Debug("content unchanged, skipping review",
		zap.Bool("cached_pass", record.Pass), zap.Bool("strict", strict))
	pass := record.Pass
	explanation := record.Explanation
	failedRules := record.FailedRules
	if record.Pass {
		return MatcherResult{
			Pass:    true,
			Message: func() string { return "Snapshot passed design review (cached)" },
		}, true
	}
	if !strict {
		return MatcherResult{
			Pass: true,
			Message: func() string {
				return fmt.Sprintf("Snapshot failed design review but strict mode is off (failed rules: %v)\n%s", failedRules, explanation)
			},
		}, true
	}
	return MatcherResult{
		Pass: pass,
		Message: func() string {
			return fmt.Sprintf("Snapshot failed design review (cached).\n%s\n\nTo override this, update the value of pass to true in the snapshot for %s", explanation, identifier)
		},
	}, true
}

// applyOverrides walks failing violations in rule-declaration order and lets
// a human flip false positives to passing. Only prompt exhaustion aborts.
func (o *Orchestrator) applyOverrides(ctx context.Context, resp *ReviewResponse) error {
	for _, rule := range o.cfg.Rules {
		v, ok := resp.Violations[rule.RuleID]
		if !ok || !v.Fail {
			continue
		}
		question := fmt.Sprintf("Automated review failed for rule %s: %s. Log violation and fail test?", rule.RuleID, rule.Description)
		decision, err := o.prompter.Confirm(ctx, question)
		if err != nil {
			return err
		}
		switch decision {
		case DecisionRejected:
			v.Fail = false
			resp.Violations[rule.RuleID] = v
		case DecisionExhausted:
			return &PromptError{RuleID: rule.RuleID}
		}
	}
	resp.Pass = resp.ComputePass()
	return nil
}

// persist writes the image artifact and the snapshot record. The record is
// always written, even for failing verdicts, so unchanged content is a cache
// hit on the next run. Returns the artifact path.
func (o *Orchestrator) persist(logger *zap.Logger, identifier, hash string, resp *ReviewResponse) (string, error) {
	if err := os.MkdirAll(o.cfg.SnapshotDir, 0o755); err != nil {
		return "", fmt.Errorf("could not create snapshot directory: %w", err)
	}
	artifactPath := filepath.Join(o.cfg.SnapshotDir, identifier+".png")
	if len(resp.Content) > 0 {
		if err := os.WriteFile(artifactPath, resp.Content, 0o644); err != nil {
			return "", fmt.Errorf("could not write image artifact: %w", err)
		}
	}

	failedRules := []string{}
	for _, rule := range o.cfg.Rules {
		if v, ok := resp.Violations[rule.RuleID]; ok && v.Fail {
			failedRules = append(failedRules, rule.RuleID)
		}
	}
	record := &SnapshotRecord{
		ContentHash: hash,
		FailedRules: failedRules,
		Pass:        resp.Pass,
		Explanation: resp.Explanation,
	}
	if err := o.snapshots.Write(identifier, record); err != nil {
		return "", fmt.Errorf("could not write snapshot record: %w", err)
	}
	logger.Debug("snapshot persisted", zap.Bool("pass", record.Pass), zap.Strings("failed_rules", failedRules))
	return artifactPath, nil
}

func (o *Orchestrator) inCI() bool {
	return o.cfg.Env("CI") != ""
}

// lock returns after acquiring the per-identifier mutex; the returned func
// releases it.
func (o *Orchestrator) lock(identifier string) func() {
	o.mu.Lock()
	m, ok := o.locks[identifier]
	if !ok {
		m = &sync.Mutex{}
		o.locks[identifier] = m
	}
	o.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// runLogger applies the per-call level override, if any. The override can
// move the level in either direction: lowering to debug for one noisy
// verification is the common case, which zap.IncreaseLevel cannot do.
func (o *Orchestrator) runLogger(level string) *zap.Logger {
	if level == "" {
		return o.logger
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		o.logger.Warn("ignoring invalid log level override", zap.String("level", level))
		return o.logger
	}
	return o.logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return &leveledCore{Core: core, level: lvl}
	}))
}

// leveledCore replaces the wrapped core's level gate so a per-call override
// can also lower the threshold. Entries are filtered here in Check; the
// wrapped core's Write does not re-check the level.
type leveledCore struct {
	zapcore.Core
	level zapcore.LevelEnabler
}

func (c *leveledCore) Enabled(lvl zapcore.Level) bool {
	return c.level.Enabled(lvl)
}

func (c *leveledCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.level.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *leveledCore) With(fields []zapcore.Field) zapcore.Core {
	return &leveledCore{Core: c.Core.With(fields), level: c.level}
}

func failResult(message string) MatcherResult {
	return MatcherResult{Pass: false, Message: func() string { return message }}
}
