package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/leohentschker/vslint"
	"github.com/leohentschker/vslint/eval"
	vslinthttp "github.com/leohentschker/vslint/http"
	"github.com/leohentschker/vslint/provider"
	"github.com/leohentschker/vslint/rod"
)

var (
	evaluateRulesPath string
	evaluateModel     string
	evaluateServerURL string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score design rules against their labelled samples",
	Long: `Reviews every labelled sample of every rule in the rules file and
reports per-rule accuracy. Use this to tune rule wording before relying on a
rule in tests.`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&evaluateRulesPath, "rules", "", "Path to the rules file (YAML or JSON)")
	evaluateCmd.Flags().StringVar(&evaluateModel, "model", "gpt-4o", "Model to evaluate with")
	evaluateCmd.Flags().StringVar(&evaluateServerURL, "server", "", "Review server URL (default: review locally)")
	_ = evaluateCmd.MarkFlagRequired("rules")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	rules, err := vslint.LoadRules(evaluateRulesPath)
	if err != nil {
		return err
	}

	model := vslint.Model{Name: evaluateModel, Key: modelKey(evaluateModel)}

	var service vslint.ReviewService
	if evaluateServerURL != "" {
		service = vslinthttp.NewClient(evaluateServerURL)
	} else {
		renderer := rod.NewRenderer(rod.WithRendererLogger(logger))
		defer func() {
			if err := renderer.Close(); err != nil {
				logger.Warn("browser shutdown failed", zap.Error(err))
			}
		}()
		service = vslint.NewEngine(renderer, provider.NewDispatcher(), vslint.WithEngineLogger(logger))
	}

	harness := eval.NewHarness(service, model, eval.WithHarnessLogger(logger))
	results, err := harness.Evaluate(cmd.Context(), rules)
	if err != nil {
		return err
	}

	fmt.Print(eval.Format(results))
	return nil
}

// modelKey picks the credential matching the model's provider family.
func modelKey(model string) string {
	if provider.KindForModel(model) == provider.KindGeminiCompatible {
		return os.Getenv("GEMINI_API_KEY")
	}
	return os.Getenv("OPENAI_API_KEY")
}
