package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas/autoapply/internal/llm"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 30*time.Second, cfg.Apply.MinJobDelay)
	assert.Equal(t, 90*time.Second, cfg.Apply.MaxJobDelay)
	assert.False(t, cfg.Apply.AutoSubmit, "never submits unless asked")
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "atlas.yaml", `
browser:
  headless: false
  timeout: 45s
apply:
  auto_submit: true
  min_job_delay: 5s
  max_job_delay: 10s
redis:
  address: localhost:6379
server:
  port: 9090
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 45*time.Second, cfg.Browser.Timeout)
	assert.True(t, cfg.Apply.AutoSubmit)
	assert.Equal(t, 5*time.Second, cfg.Apply.MinJobDelay)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 1280, cfg.Browser.ViewportWidth, "unset keys keep defaults")
}

func TestLoad_JSONFile(t *testing.T) {
	path := writeFile(t, "atlas.json", `{"apply": {"screenshot_on_complete": true}, "screenshots": {"dir": "/tmp/shots"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Apply.ScreenshotOnComplete)
	assert.Equal(t, "/tmp/shots", cfg.Screenshots.Dir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ATLAS_APPLY_AUTO_SUBMIT", "true")
	t.Setenv("ATLAS_SERVER_PORT", "7000")
	t.Setenv("ATLAS_APPLY_MAX_JOB_DELAY", "2m")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("DATABASE_URL", "postgres://localhost/atlas")
	t.Setenv("AWS_REGION", "us-west-2")

	path := writeFile(t, "atlas.yaml", "server:\n  port: 9090\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Apply.AutoSubmit)
	assert.Equal(t, 7000, cfg.Server.Port, "environment wins over the file")
	assert.Equal(t, 2*time.Minute, cfg.Apply.MaxJobDelay)
	assert.Equal(t, "gemini-key", cfg.LLM.APIKey)
	assert.Equal(t, "postgres://localhost/atlas", cfg.DatabaseURL)
	assert.Equal(t, "us-west-2", cfg.Screenshots.S3.Region)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("/nonexistent/path/atlas.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	path := writeFile(t, "atlas.yaml", "apply:\n  min_job_delay: 60s\n  max_job_delay: 10s\n")
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_job_delay")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero timeout", func(c *Config) { c.Browser.Timeout = 0 }, "browser.timeout"},
		{"bad viewport", func(c *Config) { c.Browser.ViewportWidth = 0 }, "viewport"},
		{"negative delay", func(c *Config) { c.Apply.MinJobDelay = -time.Second }, "min_job_delay"},
		{"temperature", func(c *Config) { c.LLM.Temperature = 3 }, "temperature"},
		{"port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"batch cap", func(c *Config) { c.Server.MaxBatchJobs = 0 }, "max_batch_jobs"},
		{"bucket without region", func(c *Config) { c.Screenshots.S3.Bucket = "shots" }, "region"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Engine(t *testing.T) {
	cfg := Default()
	cfg.Apply.AutoSubmit = true
	cfg.Browser.ChromePath = "/usr/bin/chromium"

	engine := cfg.Engine()
	assert.True(t, engine.AutoSubmit)
	assert.Equal(t, "/usr/bin/chromium", engine.ChromePath)
	assert.Equal(t, cfg.Apply.MinJobDelay, engine.MinJobDelay)
}

func TestConfig_LLMClientConfig(t *testing.T) {
	cfg := Default()
	assert.Equal(t, llm.DefaultConfig().GetModel(llm.TierStandard), cfg.LLMClientConfig().GetModel(llm.TierStandard))

	cfg.LLM.Model = "gemini-custom"
	cfg.LLM.Temperature = 0.2
	out := cfg.LLMClientConfig()
	assert.Equal(t, "gemini-custom", out.GetModel(llm.TierStandard))
	assert.InDelta(t, 0.2, out.Temperature, 1e-6)
}

func TestConfig_RateLimiter(t *testing.T) {
	cfg := Default()
	cfg.Server.RateLimit.Whitelist = []string{"10.0.0.1"}

	rl := cfg.RateLimiter()
	assert.True(t, rl.Enabled)
	assert.True(t, rl.Whitelist["10.0.0.1"])
	assert.NotEmpty(t, rl.EndpointConfigs)

	cfg.Server.RateLimit.Enabled = false
	assert.False(t, cfg.RateLimiter().Enabled)
}
