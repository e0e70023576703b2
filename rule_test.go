package vslint_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leohentschker/vslint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleValidate(t *testing.T) {
	t.Parallel()

	valid := vslint.Rule{
		RuleID:      "text-too-wide",
		Description: "If any line is too wide, mark it as true; otherwise, mark it as false.",
	}

	t.Run("accepts a well-formed rule", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, valid.Validate())
	})

	t.Run("rejects empty rule id", func(t *testing.T) {
		t.Parallel()

		r := valid
		r.RuleID = ""
		assert.Error(t, r.Validate())
	})

	t.Run("rejects description without the true branch phrase", func(t *testing.T) {
		t.Parallel()

		r := valid
		r.Description = "If any line is too wide, flag it; otherwise, mark it as false."
		err := r.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mark it as true")
	})

	t.Run("rejects description without the false branch phrase", func(t *testing.T) {
		t.Parallel()

		r := valid
		r.Description = "If any line is too wide, mark it as true; otherwise, ignore it."
		assert.Error(t, r.Validate())
	})

	t.Run("rejects short descriptions", func(t *testing.T) {
		t.Parallel()

		r := valid
		r.Description = "short"
		assert.Error(t, r.Validate())
	})
}

func TestValidateRules(t *testing.T) {
	t.Parallel()

	t.Run("default rules are valid", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, vslint.ValidateRules(vslint.DefaultRules()))
	})

	t.Run("rejects duplicate rule ids", func(t *testing.T) {
		t.Parallel()

		rules := vslint.DefaultRules()
		rules = append(rules, rules[0])
		err := vslint.ValidateRules(rules)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})
}

func TestLoadRules(t *testing.T) {
	t.Parallel()

	t.Run("loads rules from YAML", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "rules.yaml")
		content := `
- ruleid: no-overlap
  description: "If elements visually overlap, mark it as true; otherwise, mark it as false."
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		rules, err := vslint.LoadRules(path)

		require.NoError(t, err)
		require.Len(t, rules, 1)
		assert.Equal(t, "no-overlap", rules[0].RuleID)
	})

	t.Run("loads rules from JSON", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "rules.json")
		content := `[{"ruleid":"no-overlap","description":"If elements visually overlap, mark it as true; otherwise, mark it as false."}]`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		rules, err := vslint.LoadRules(path)

		require.NoError(t, err)
		require.Len(t, rules, 1)
	})

	t.Run("invalid rule is a config error", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "rules.yaml")
		content := `
- ruleid: bad
  description: "Too vague."
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		_, err := vslint.LoadRules(path)

		var cfgErr *vslint.ConfigError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("missing file is a config error", func(t *testing.T) {
		t.Parallel()

		_, err := vslint.LoadRules("/nonexistent/rules.yaml")

		var cfgErr *vslint.ConfigError
		require.ErrorAs(t, err, &cfgErr)
	})
}
