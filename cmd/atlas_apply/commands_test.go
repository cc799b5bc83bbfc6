package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"apply", "batch", "answers", "serve", "migrate"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestApplyCommand_Flags(t *testing.T) {
	for _, name := range []string{"url", "profile", "answers", "submit", "screenshot-dir", "generate-answers", "out", "verbose"} {
		assert.NotNil(t, applyCmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "false", applyCmd.Flags().Lookup("submit").DefValue, "never submits unless asked")
}

func TestRunApply_InputErrors(t *testing.T) {
	profile := writeTemp(t, "profile.json", validProfile)
	t.Cleanup(func() { applyURL, applyProfile, applyAnswers = "", "", "" })

	tests := []struct {
		name    string
		url     string
		profile string
		answers string
		wantErr string
	}{
		{"no url", "", profile, "", "--url is required"},
		{"no profile", "https://example.com/jobs/1", "", "", "--profile is required"},
		{"bad answers", "https://example.com/jobs/1", profile, "/nonexistent/answers.json", "failed to read answers file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applyURL, applyProfile, applyAnswers = tt.url, tt.profile, tt.answers
			err := runApply(applyCmd, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunBatch_InputErrors(t *testing.T) {
	profile := writeTemp(t, "profile.json", validProfile)
	jobs := writeTemp(t, "jobs.json", `[{"url": "https://example.com/jobs/1"}]`)
	t.Cleanup(func() { batchJobs, batchProfile, batchUserID = "", "", "" })

	tests := []struct {
		name    string
		jobs    string
		profile string
		userID  string
		wantErr string
	}{
		{"no jobs", "", profile, "", "--jobs is required"},
		{"no profile", jobs, "", "", "--profile is required"},
		{"bad user id", jobs, profile, "user-1", "invalid user-id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batchJobs, batchProfile, batchUserID = tt.jobs, tt.profile, tt.userID
			err := runBatch(batchCmd, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunAnswers_InputErrors(t *testing.T) {
	t.Cleanup(func() { answersURL, answersProfile = "", "" })

	answersURL = ""
	err := runAnswers(answersCmd, nil)
	assert.ErrorContains(t, err, "--url is required")

	answersURL = "https://example.com/jobs/1"
	answersProfile = ""
	err = runAnswers(answersCmd, nil)
	assert.ErrorContains(t, err, "--profile is required")
}

func TestRunMigrate_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ATLAS_DATABASE_URL", "")
	migrateDatabaseURL = ""

	err := runMigrate(migrateCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
