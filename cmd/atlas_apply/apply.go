package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/atlas/autoapply/internal/answers"
	"github.com/atlas/autoapply/internal/fetch"
	"github.com/atlas/autoapply/internal/observability"
	"github.com/atlas/autoapply/internal/types"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Fill the application form of a single job",
	Long: `Open the job page, fill the application form from the profile and print the result.
The form is only submitted with --submit (or apply.auto_submit in the config).`,
	RunE: runApply,
}

var (
	applyURL           string
	applyProfile       string
	applyAnswers       string
	applySubmit        bool
	applyScreenshotDir string
	applyGenerate      bool
	applyOutput        string
	applyVerbose       bool
)

func init() {
	applyCmd.Flags().StringVarP(&applyURL, "url", "u", "", "Job application URL (required)")
	applyCmd.Flags().StringVarP(&applyProfile, "profile", "p", "", "Path to profile JSON (required)")
	applyCmd.Flags().StringVarP(&applyAnswers, "answers", "a", "", "Path to free-text answers JSON")
	applyCmd.Flags().BoolVar(&applySubmit, "submit", false, "Submit the form after filling")
	applyCmd.Flags().StringVar(&applyScreenshotDir, "screenshot-dir", "", "Save a screenshot of the finished form to this directory")
	applyCmd.Flags().BoolVar(&applyGenerate, "generate-answers", false, "Generate free-text answers with the LLM when no answers file is given")
	applyCmd.Flags().StringVarP(&applyOutput, "out", "o", "", "Write the result JSON to this file instead of stdout")

	applyCmd.Flags().BoolVarP(&applyVerbose, "verbose", "v", false, "Print a readable summary to stderr")

	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, _ []string) error {
	if applyURL == "" {
		return fmt.Errorf("--url is required")
	}
	profile, err := loadProfile(applyProfile)
	if err != nil {
		return err
	}
	freeText, err := loadAnswers(applyAnswers)
	if err != nil {
		return err
	}

	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if applySubmit {
		cfg.Apply.AutoSubmit = true
	}
	if applyScreenshotDir != "" {
		cfg.Screenshots.Dir = applyScreenshotDir
		cfg.Apply.ScreenshotOnComplete = true
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if freeText == nil && applyGenerate {
		gen, release, err := newGenerator(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer release()
		description, err := fetch.NewFetcher(logger).Description(ctx, applyURL)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: could not fetch job description: %v\n", err)
		}
		freeText, err = gen.Generate(ctx, answers.GenerateRequest{
			JobURL:         applyURL,
			JobDescription: description,
			Profile:        profile,
		})
		if err != nil {
			return fmt.Errorf("failed to generate answers: %w", err)
		}
	}

	engine, err := newEngine(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	result := engine.ApplyToJob(ctx, applyURL, profile, freeText)
	if applyVerbose {
		observability.NewPrinter(os.Stderr).PrintApplyResult(result)
	}
	if err := writeJSON(applyOutput, result); err != nil {
		return err
	}
	if result.Status == types.StatusError {
		return fmt.Errorf("application failed: %s", result.Error)
	}
	return nil
}
