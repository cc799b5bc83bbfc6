package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/atlas/autoapply/internal/db"
	"github.com/atlas/autoapply/internal/fetch"
	"github.com/atlas/autoapply/internal/server"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the apply engine. Application history is
available when DATABASE_URL is set, answer generation when GEMINI_API_KEY is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if servePort > 0 {
		cfg.Server.Port = servePort
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	engine, err := newEngine(cfg, logger, reg)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	deps := server.Deps{
		Applier:  engine,
		Gatherer: reg,
		Logger:   logger,
		Describe: fetch.NewFetcher(logger).Description,
	}

	if cfg.DatabaseURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		database, err := db.Connect(connectCtx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		if err := database.Migrate(connectCtx); err != nil {
			return err
		}
		deps.Store = database
	} else {
		logger.Warn("DATABASE_URL not set, application history is disabled")
	}

	if cfg.LLM.APIKey != "" {
		gen, release, err := newGenerator(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer release()
		deps.Generator = gen
	} else {
		logger.Warn("no LLM API key, answer generation is disabled")
	}

	srv, err := server.New(server.Config{
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		MaxBatchJobs: cfg.Server.MaxBatchJobs,
		RateLimit:    cfg.RateLimiter(),
	}, deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("serving", zap.Int("port", cfg.Server.Port), zap.Bool("auto_submit", cfg.Apply.AutoSubmit))
	return srv.Start(ctx)
}
