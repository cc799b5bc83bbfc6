package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/atlas/autoapply/internal/autoapply"
	"github.com/atlas/autoapply/internal/db"
	"github.com/atlas/autoapply/internal/observability"
	"github.com/atlas/autoapply/internal/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Apply to a list of jobs one after another",
	Long: `Apply to every job in a JSON file in order, pausing a random interval between jobs.
A failed job never stops the batch. With --user-id and a configured database the
filled and submitted applications are recorded.`,
	RunE: runBatch,
}

var (
	batchJobs    string
	batchProfile string
	batchSubmit  bool
	batchUserID  string
	batchOutput  string
)

func init() {
	batchCmd.Flags().StringVarP(&batchJobs, "jobs", "j", "", "Path to a JSON array of jobs (required)")
	batchCmd.Flags().StringVarP(&batchProfile, "profile", "p", "", "Path to profile JSON (required)")
	batchCmd.Flags().BoolVar(&batchSubmit, "submit", false, "Submit each form after filling")
	batchCmd.Flags().StringVar(&batchUserID, "user-id", "", "Record results for this user (requires DATABASE_URL)")
	batchCmd.Flags().StringVarP(&batchOutput, "out", "o", "", "Write the results JSON to this file instead of stdout")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	jobs, err := loadJobs(batchJobs)
	if err != nil {
		return err
	}
	profile, err := loadProfile(batchProfile)
	if err != nil {
		return err
	}
	var userID uuid.UUID
	if batchUserID != "" {
		if userID, err = uuid.Parse(batchUserID); err != nil {
			return fmt.Errorf("invalid user-id: %w", err)
		}
	}

	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if batchSubmit {
		cfg.Apply.AutoSubmit = true
	}
	if batchUserID != "" && cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL required when using --user-id")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	engine, err := newEngine(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	results := engine.ApplyToMultipleJobs(ctx, jobs, profile, printProgress)
	observability.NewPrinter(os.Stderr).PrintBatchSummary(results)

	if batchUserID != "" {
		recorded, err := recordBatch(ctx, cfg.DatabaseURL, userID, jobs, results)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stderr, "Recorded %d applications\n", recorded)
	}

	return writeJSON(batchOutput, map[string]any{
		"summary": autoapply.Summarize(results),
		"results": results,
	})
}

func printProgress(completed, total int, r *types.ApplyResult) {
	line := fmt.Sprintf("[%d/%d] %-14s %s", completed, total, r.Status, r.JobURL)
	if r.Error != "" {
		line += " (" + r.Error + ")"
	}
	_, _ = fmt.Fprintln(os.Stderr, line)
}

// outcomesFor pairs results with the opportunity ids of the jobs they came from.
func outcomesFor(jobs []types.JobTarget, results []*types.ApplyResult) []db.Outcome {
	outcomes := make([]db.Outcome, 0, len(results))
	for i, r := range results {
		o := db.Outcome{Result: r}
		if i < len(jobs) {
			o.OpportunityID = jobs[i].OpportunityID
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}

func recordBatch(ctx context.Context, databaseURL string, userID uuid.UUID, jobs []types.JobTarget, results []*types.ApplyResult) (int, error) {
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return 0, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	n, err := database.RecordResults(ctx, userID, outcomesFor(jobs, results))
	if err != nil {
		return 0, fmt.Errorf("failed to record applications: %w", err)
	}
	return n, nil
}
