package vslint

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleSample is a labelled example for a rule, used by the eval harness to
// score how well a model applies the rule.
type RuleSample struct {
	HTML     string   `json:"html" yaml:"html"`
	Viewport Viewport `json:"viewport" yaml:"viewport"`
	Fail     bool     `json:"fail" yaml:"fail"`
}

// Rule is a natural-language design check with a stable identifier. The
// description must tell the model how to answer in both directions so that
// the fail boolean in the response is unambiguous. Rules are immutable once
// loaded into a run.
type Rule struct {
	RuleID      string       `json:"ruleid" yaml:"ruleid"`
	Description string       `json:"description" yaml:"description"`
	Samples     []RuleSample `json:"samples,omitempty" yaml:"samples,omitempty"`
}

// Phrases every rule description must contain so the model is told what true
// and false mean for this rule.
const (
	truePhrase  = "mark it as true"
	falsePhrase = "mark it as false"
)

// Validate checks the rule's structural constraints.
func (r Rule) Validate() error {
	if r.RuleID == "" || len(r.RuleID) > 100 {
		return fmt.Errorf("rule id must be 1-100 characters, got %q", r.RuleID)
	}
	if len(r.Description) < 10 || len(r.Description) > 1000 {
		return fmt.Errorf("rule %q: description must be 10-1000 characters", r.RuleID)
	}
	if !strings.Contains(r.Description, truePhrase) || !strings.Contains(r.Description, falsePhrase) {
		return fmt.Errorf("rule %q: description must contain the phrase %q as well as the phrase %q", r.RuleID, truePhrase, falsePhrase)
	}
	return nil
}

// ValidateRules validates every rule and checks id uniqueness.
func ValidateRules(rules []Rule) error {
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return err
		}
		if seen[r.RuleID] {
			return fmt.Errorf("duplicate rule id %q", r.RuleID)
		}
		seen[r.RuleID] = true
	}
	return nil
}

// DefaultRules returns the built-in design rule set.
func DefaultRules() []Rule {
	return []Rule{
		{
			RuleID:      "text-too-wide",
			Description: "If any line of text contains more than 75 characters, mark it as true; otherwise, mark it as false.",
		},
		{
			RuleID:      "text-has-typos",
			Description: "If there are any spelling or grammatical errors, or content is in the wrong tense, mark it as true; otherwise, mark it as false. Be very harsh.",
		},
		{
			RuleID:      "text-is-coherent",
			Description: "If text for grouped elements isn't following the same grammatical style or structure, mark it as true; otherwise, mark it as false.",
		},
		{
			RuleID:      "text-too-small",
			Description: "Check if the text is easily readable. If the text size is too small, mark it as true; otherwise, mark it as false.",
		},
		{
			RuleID:      "hierarchy-through-font-weight",
			Description: "Check to see if hierarchy is managed via font size rather than font weight. If it is, mark it as true; otherwise, mark it as false.",
		},
	}
}

// LoadRules reads and validates a rule set from a YAML or JSON file.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("could not read rules file %s: %s", path, err)}
	}
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("could not parse rules file %s: %s", path, err)}
	}
	if err := ValidateRules(rules); err != nil {
		return nil, &ConfigError{Msg: err.Error()}
	}
	return rules, nil
}
