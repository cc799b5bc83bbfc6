package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atlas/autoapply/internal/answers"
	"github.com/atlas/autoapply/internal/browser"
	"github.com/atlas/autoapply/internal/fetch"
	"github.com/atlas/autoapply/internal/observability"
)

var answersCmd = &cobra.Command{
	Use:   "answers",
	Short: "Generate free-text answers for a job with the LLM",
	Long: `Generate answers to the common free-text application questions (why this company,
why this role, strengths, experience, cover letter) from the profile and the job
description. The output can be passed to apply with --answers.`,
	RunE: runAnswers,
}

var (
	answersURL         string
	answersProfile     string
	answersDescription string
	answersQuestions   []string
	answersRender      bool
	answersOutput      string
)

func init() {
	answersCmd.Flags().StringVarP(&answersURL, "url", "u", "", "Job posting URL (required)")
	answersCmd.Flags().StringVarP(&answersProfile, "profile", "p", "", "Path to profile JSON (required)")
	answersCmd.Flags().StringVarP(&answersDescription, "description", "d", "", "Path to a job description text file (fetched from --url when omitted)")
	answersCmd.Flags().StringSliceVarP(&answersQuestions, "questions", "q", nil, "Question keys to answer (default: all)")
	answersCmd.Flags().BoolVar(&answersRender, "render", false, "Render the job page in headless Chrome when plain HTTP returns too little text")
	answersCmd.Flags().StringVarP(&answersOutput, "out", "o", "", "Write the answers JSON to this file instead of stdout")

	rootCmd.AddCommand(answersCmd)
}

func runAnswers(cmd *cobra.Command, _ []string) error {
	if answersURL == "" {
		return fmt.Errorf("--url is required")
	}
	profile, err := loadProfile(answersProfile)
	if err != nil {
		return err
	}

	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	description := ""
	if answersDescription != "" {
		content, err := os.ReadFile(answersDescription)
		if err != nil {
			return fmt.Errorf("failed to read description file: %w", err)
		}
		description = strings.TrimSpace(string(content))
	} else {
		var session browser.Session
		if answersRender {
			session, err = browser.ChromeLauncher{Logger: logger}.Launch(ctx, cfg.Engine().BrowserOptions())
			if err != nil {
				return fmt.Errorf("failed to launch browser: %w", err)
			}
			defer func() { _ = session.Close() }()
		}
		fetcher := fetch.NewFetcher(logger)
		fetcher.Session = session
		description, err = fetcher.Description(ctx, answersURL)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: could not fetch job description: %v\n", err)
		}
	}

	gen, release, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer release()

	generated, err := gen.Generate(ctx, answers.GenerateRequest{
		JobURL:         answersURL,
		JobDescription: description,
		Profile:        profile,
		Questions:      answersQuestions,
	})
	if err != nil {
		return fmt.Errorf("failed to generate answers: %w", err)
	}
	if answersOutput != "" {
		observability.NewPrinter(os.Stderr).PrintAnswers(generated)
	}
	return writeJSON(answersOutput, generated)
}
