// Package config loads configuration for the CLI and the API server from an
// optional YAML/JSON file, a .env file and ATLAS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/atlas/autoapply/internal/autoapply"
	"github.com/atlas/autoapply/internal/llm"
	"github.com/atlas/autoapply/internal/server/ratelimit"
)

// EnvPrefix prefixes every environment override, e.g. ATLAS_APPLY_AUTO_SUBMIT.
const EnvPrefix = "ATLAS"

// Config is the full application configuration.
type Config struct {
	Browser     BrowserConfig    `mapstructure:"browser"`
	Apply       ApplyConfig      `mapstructure:"apply"`
	LLM         LLMConfig        `mapstructure:"llm"`
	DatabaseURL string           `mapstructure:"database_url"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Screenshots ScreenshotConfig `mapstructure:"screenshots"`
	Server      ServerConfig     `mapstructure:"server"`
	Log         LogConfig        `mapstructure:"log"`
}

// BrowserConfig configures the headless browser.
type BrowserConfig struct {
	Headless       bool          `mapstructure:"headless"`
	Timeout        time.Duration `mapstructure:"timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	ViewportWidth  int           `mapstructure:"viewport_width"`
	ViewportHeight int           `mapstructure:"viewport_height"`
	ChromePath     string        `mapstructure:"chrome_path"`
}

// ApplyConfig configures application behavior.
type ApplyConfig struct {
	AutoSubmit           bool          `mapstructure:"auto_submit"`
	ScreenshotOnComplete bool          `mapstructure:"screenshot_on_complete"`
	MinJobDelay          time.Duration `mapstructure:"min_job_delay"`
	MaxJobDelay          time.Duration `mapstructure:"max_job_delay"`
}

// LLMConfig configures answer generation.
type LLMConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
}

// RedisConfig configures the answer cache. An empty address disables caching.
type RedisConfig struct {
	Address   string        `mapstructure:"address"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	AnswerTTL time.Duration `mapstructure:"answer_ttl"`
}

// ScreenshotConfig selects where screenshots are stored. S3 wins when a bucket is set.
type ScreenshotConfig struct {
	Dir string   `mapstructure:"dir"`
	S3  S3Config `mapstructure:"s3"`
}

// S3Config holds the S3 screenshot bucket settings.
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Prefix          string `mapstructure:"prefix"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port         int             `mapstructure:"port"`
	ReadTimeout  time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout time.Duration   `mapstructure:"write_timeout"`
	MaxBatchJobs int             `mapstructure:"max_batch_jobs"`
	RateLimit    RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig toggles API rate limiting and lists exempt or banned client IPs.
type RateLimitConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Whitelist []string `mapstructure:"whitelist"`
	Blacklist []string `mapstructure:"blacklist"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	engine := autoapply.DefaultConfig()
	return Config{
		Browser: BrowserConfig{
			Headless:       engine.Headless,
			Timeout:        engine.Timeout,
			UserAgent:      engine.UserAgent,
			ViewportWidth:  engine.ViewportWidth,
			ViewportHeight: engine.ViewportHeight,
		},
		Apply: ApplyConfig{
			MinJobDelay: engine.MinJobDelay,
			MaxJobDelay: engine.MaxJobDelay,
		},
		LLM: LLMConfig{
			Temperature: llm.DefaultConfig().Temperature,
		},
		Redis: RedisConfig{
			AnswerTTL: 7 * 24 * time.Hour,
		},
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Minute,
			MaxBatchJobs: 25,
			RateLimit:    RateLimitConfig{Enabled: true},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// setDefaults registers every key so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("browser.headless", d.Browser.Headless)
	v.SetDefault("browser.timeout", d.Browser.Timeout)
	v.SetDefault("browser.user_agent", d.Browser.UserAgent)
	v.SetDefault("browser.viewport_width", d.Browser.ViewportWidth)
	v.SetDefault("browser.viewport_height", d.Browser.ViewportHeight)
	v.SetDefault("browser.chrome_path", "")
	v.SetDefault("apply.auto_submit", d.Apply.AutoSubmit)
	v.SetDefault("apply.screenshot_on_complete", d.Apply.ScreenshotOnComplete)
	v.SetDefault("apply.min_job_delay", d.Apply.MinJobDelay)
	v.SetDefault("apply.max_job_delay", d.Apply.MaxJobDelay)
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.answer_ttl", d.Redis.AnswerTTL)
	v.SetDefault("screenshots.dir", "")
	v.SetDefault("screenshots.s3.bucket", "")
	v.SetDefault("screenshots.s3.prefix", "")
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.max_batch_jobs", d.Server.MaxBatchJobs)
	v.SetDefault("server.rate_limit.enabled", d.Server.RateLimit.Enabled)
	v.SetDefault("server.rate_limit.whitelist", []string{})
	v.SetDefault("server.rate_limit.blacklist", []string{})
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// bindConventionalEnv accepts the variable names other tools already use.
func bindConventionalEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"llm.api_key":                      {"ATLAS_LLM_API_KEY", "GEMINI_API_KEY"},
		"database_url":                     {"ATLAS_DATABASE_URL", "DATABASE_URL"},
		"screenshots.s3.region":            {"ATLAS_SCREENSHOTS_S3_REGION", "AWS_REGION"},
		"screenshots.s3.access_key_id":     {"ATLAS_SCREENSHOTS_S3_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID"},
		"screenshots.s3.secret_access_key": {"ATLAS_SCREENSHOTS_S3_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

// Load reads configuration. path may be empty, in which case only defaults,
// .env and the environment apply. A missing .env is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindConventionalEnv(v); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required secrets are checked by the commands that need them.
func (c *Config) Validate() error {
	var errs []error
	if c.Browser.Timeout <= 0 {
		errs = append(errs, errors.New("'browser.timeout' must be positive"))
	}
	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		errs = append(errs, errors.New("'browser.viewport_width' and 'browser.viewport_height' must be positive"))
	}
	if c.Apply.MinJobDelay < 0 {
		errs = append(errs, errors.New("'apply.min_job_delay' must be non-negative"))
	}
	if c.Apply.MaxJobDelay < c.Apply.MinJobDelay {
		errs = append(errs, errors.New("'apply.max_job_delay' must not be less than 'apply.min_job_delay'"))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, errors.New("'llm.temperature' must be between 0 and 2"))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, errors.New("'server.port' must be between 0 and 65535"))
	}
	if c.Server.MaxBatchJobs <= 0 {
		errs = append(errs, errors.New("'server.max_batch_jobs' must be positive"))
	}
	if c.Screenshots.S3.Bucket != "" && c.Screenshots.S3.Region == "" {
		errs = append(errs, errors.New("'screenshots.s3.region' is required when a bucket is set"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config error: %w", errors.Join(errs...))
	}
	return nil
}

// Engine returns the engine configuration.
func (c *Config) Engine() autoapply.Config {
	return autoapply.Config{
		Headless:             c.Browser.Headless,
		Timeout:              c.Browser.Timeout,
		AutoSubmit:           c.Apply.AutoSubmit,
		ScreenshotOnComplete: c.Apply.ScreenshotOnComplete,
		MinJobDelay:          c.Apply.MinJobDelay,
		MaxJobDelay:          c.Apply.MaxJobDelay,
		UserAgent:            c.Browser.UserAgent,
		ViewportWidth:        c.Browser.ViewportWidth,
		ViewportHeight:       c.Browser.ViewportHeight,
		ChromePath:           c.Browser.ChromePath,
	}
}

// LLMClientConfig returns the LLM client configuration. A configured model
// overrides the standard tier.
func (c *Config) LLMClientConfig() *llm.Config {
	cfg := llm.DefaultConfig()
	cfg.Temperature = c.LLM.Temperature
	if c.LLM.Model != "" {
		cfg = cfg.WithModel(llm.TierStandard, c.LLM.Model)
	}
	return cfg
}

// RateLimiter returns the API rate limiter configuration.
func (c *Config) RateLimiter() *ratelimit.Config {
	rl := ratelimit.DefaultConfig().WithLists(c.Server.RateLimit.Whitelist, c.Server.RateLimit.Blacklist)
	rl.Enabled = c.Server.RateLimit.Enabled
	return rl
}
