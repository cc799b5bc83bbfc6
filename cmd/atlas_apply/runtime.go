package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/atlas/autoapply/internal/answers"
	"github.com/atlas/autoapply/internal/autoapply"
	"github.com/atlas/autoapply/internal/browser"
	"github.com/atlas/autoapply/internal/config"
	"github.com/atlas/autoapply/internal/llm"
	"github.com/atlas/autoapply/internal/logging"
	"github.com/atlas/autoapply/internal/metrics"
	"github.com/atlas/autoapply/internal/schemas"
	"github.com/atlas/autoapply/internal/screenshots"
	"github.com/atlas/autoapply/internal/types"
)

// loadRuntime reads configuration and builds the logger shared by every command.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newEngine builds an engine over headless Chrome. reg may be nil.
func newEngine(cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*autoapply.Engine, error) {
	opts := []autoapply.Option{autoapply.WithLogger(logger)}

	store, err := newScreenshotStore(cfg.Screenshots)
	if err != nil {
		return nil, err
	}
	if store != nil {
		opts = append(opts, autoapply.WithScreenshotStore(store))
	}
	if reg != nil {
		opts = append(opts, autoapply.WithObserver(metrics.NewRecorder(reg)))
	}

	return autoapply.New(cfg.Engine(), browser.ChromeLauncher{Logger: logger}, opts...), nil
}

// newScreenshotStore returns the configured store, or nil when screenshots have nowhere to go.
func newScreenshotStore(cfg config.ScreenshotConfig) (screenshots.Store, error) {
	switch {
	case cfg.S3.Bucket != "":
		store, err := screenshots.NewS3Store(screenshots.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Prefix:          cfg.S3.Prefix,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 screenshot store: %w", err)
		}
		return store, nil
	case cfg.Dir != "":
		store, err := screenshots.NewLocalStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, nil
	}
}

// newGenerator builds the LLM answer generator, wrapped in the Redis cache when
// one is configured. The returned func releases both clients.
func newGenerator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (answers.Generator, func(), error) {
	if cfg.LLM.APIKey == "" {
		return nil, nil, fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or llm.api_key)")
	}
	client, err := llm.NewClient(ctx, cfg.LLMClientConfig(), cfg.LLM.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	closers := []func() error{client.Close}
	var gen answers.Generator = answers.NewLLMGenerator(client)

	if cfg.Redis.Address != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("answer cache unavailable, continuing without it",
				zap.String("address", cfg.Redis.Address), zap.Error(err))
			_ = rdb.Close()
		} else {
			gen = answers.NewCachedGenerator(gen, answers.NewRedisCache(rdb, cfg.Redis.AnswerTTL), logger)
			closers = append(closers, rdb.Close)
		}
	}

	release := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("failed to close client", zap.Error(err))
			}
		}
	}
	return gen, release, nil
}

// loadProfile reads a profile JSON file and validates it against the profile schema.
func loadProfile(path string) (*types.UserProfile, error) {
	if path == "" {
		return nil, fmt.Errorf("--profile is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	if err := schemas.Validate(schemas.Profile, data); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", path, err)
	}
	var p types.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", path, err)
	}
	return &p, nil
}

// loadAnswers reads a free-text answers file. An empty path yields no answers.
func loadAnswers(path string) (types.FreeTextAnswers, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers file: %w", err)
	}
	if err := schemas.Validate(schemas.Answers, data); err != nil {
		return nil, fmt.Errorf("invalid answers %s: %w", path, err)
	}
	var a types.FreeTextAnswers
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse answers: %w", err)
	}
	return a, nil
}

// loadJobs reads a JSON array of job targets.
func loadJobs(path string) ([]types.JobTarget, error) {
	if path == "" {
		return nil, fmt.Errorf("--jobs is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read jobs file: %w", err)
	}
	if err := schemas.Validate(schemas.Jobs, data); err != nil {
		return nil, fmt.Errorf("invalid jobs %s: %w", path, err)
	}
	var jobs []types.JobTarget
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to parse jobs: %w", err)
	}
	validate := validator.New()
	for i := range jobs {
		if err := validate.Struct(&jobs[i]); err != nil {
			return nil, fmt.Errorf("invalid job %d (%s): %w", i+1, jobs[i].URL, err)
		}
	}
	return jobs, nil
}

// writeJSON writes v as indented JSON to path, or to stdout when path is empty.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if path == "" {
		_, _ = fmt.Fprintln(os.Stdout, string(data))
		return nil
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
