package vslint

import "fmt"

// ConfigError reports an invalid or incomplete matcher configuration, such as
// a missing model credential or a missing stylesheet file. It is fatal and
// raised before any review call.
type ConfigError struct {
	Msg string
}

// Error implements the error interface.
func (e *ConfigError) Error() string { return "vslint: " + e.Msg }

// CIGuardError reports an attempted uncached review inside a CI environment.
// Snapshots must be generated locally and committed; a live model call in CI
// would make builds nondeterministic and incur uncontrolled API spend.
type CIGuardError struct {
	Identifier string
}

// Error implements the error interface.
func (e *CIGuardError) Error() string {
	return fmt.Sprintf("vslint: no up-to-date design snapshot for %q and reviews are disabled in CI; run this test locally and commit the snapshot", e.Identifier)
}

// RenderError reports a failure in the headless-browser rendering step.
type RenderError struct {
	Cause error
}

// Error implements the error interface.
func (e *RenderError) Error() string { return "vslint: render failed: " + e.Cause.Error() }

// Unwrap returns the underlying cause.
func (e *RenderError) Unwrap() error { return e.Cause }

// ProviderError reports a failure from a vision-model backend: network, auth,
// or malformed model output. It is never retried.
type ProviderError struct {
	Provider string
	Cause    error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("vslint: %s review failed: %s", e.Provider, e.Cause.Error())
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error { return e.Cause }

// PromptError reports an exhausted manual-override prompt.
type PromptError struct {
	RuleID string
}

// Error implements the error interface.
func (e *PromptError) Error() string {
	return fmt.Sprintf("vslint: too many invalid keystrokes while reviewing rule %q", e.RuleID)
}
