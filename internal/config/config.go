// Package config loads pathwise settings from a YAML file, a .env file and
// PATHWISE_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/pathwise/internal/cache"
	"github.com/abhisek/pathwise/internal/llm"
	"github.com/abhisek/pathwise/internal/pathgen"
	"github.com/abhisek/pathwise/internal/store"
)

// Config is the complete application configuration.
type Config struct {
	LLM        llm.Config     `yaml:"llm"`
	Store      StoreConfig    `yaml:"store"`
	Server     ServerConfig   `yaml:"server"`
	Auth       AuthConfig     `yaml:"auth"`
	Cache      cache.Config   `yaml:"cache"`
	Generation pathgen.Config `yaml:"generation"`
	Log        LogConfig      `yaml:"log"`
}

type StoreConfig struct {
	// DSN is a SQLite path, a file: URI or a postgres:// URL. Empty means
	// the default per-user database file.
	DSN string `yaml:"dsn"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	AdminEmails []string      `yaml:"admin_emails"`
}

type LogConfig struct {
	// Mode is "dev" or "prod".
	Mode string `yaml:"mode"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		LLM: llm.DefaultConfig(),
		Server: ServerConfig{
			Addr:            ":8080",
			CORSOrigins:     []string{"http://localhost:5173"},
			ShutdownTimeout: 10 * time.Second,
		},
		Auth:       AuthConfig{TokenTTL: 7 * 24 * time.Hour},
		Cache:      cache.DefaultConfig(),
		Generation: pathgen.DefaultConfig(),
		Log:        LogConfig{Mode: "dev"},
	}
}

// Load builds the configuration. path may be empty, in which case
// PATHWISE_CONFIG names the YAML file, and no file is read if that is
// unset too. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	if err := loadDotenv(); err != nil {
		return nil, err
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("PATHWISE_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if cfg.LLM.Validate() != nil {
		discoverLLM(&cfg.LLM)
	}

	if cfg.Store.DSN == "" {
		dsn, err := store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		cfg.Store.DSN = dsn
	}

	return &cfg, nil
}

func loadDotenv(files ...string) error {
	err := godotenv.Load(files...)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load .env: %w", err)
}

func applyEnv(cfg *Config) error {
	llm.ApplyEnv(&cfg.LLM)

	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setList := func(dst *[]string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = splitList(v)
		}
	}
	var errs []error
	setDuration := func(dst *time.Duration, key string) {
		v := os.Getenv(key)
		if v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = d
	}

	setString(&cfg.Store.DSN, "PATHWISE_DB")
	setString(&cfg.Server.Addr, "PATHWISE_ADDR")
	setList(&cfg.Server.CORSOrigins, "PATHWISE_CORS_ORIGINS")
	setString(&cfg.Auth.JWTSecret, "PATHWISE_JWT_SECRET")
	setDuration(&cfg.Auth.TokenTTL, "PATHWISE_TOKEN_TTL")
	setList(&cfg.Auth.AdminEmails, "PATHWISE_ADMIN_EMAILS")
	setString(&cfg.Cache.RedisAddr, "PATHWISE_REDIS_ADDR")
	setString(&cfg.Cache.RedisPassword, "PATHWISE_REDIS_PASSWORD")
	setDuration(&cfg.Cache.TTL, "PATHWISE_CACHE_TTL")
	setDuration(&cfg.Generation.QuestionsTimeout, "PATHWISE_QUESTIONS_TIMEOUT")
	setDuration(&cfg.Generation.RoadmapTimeout, "PATHWISE_ROADMAP_TIMEOUT")
	setDuration(&cfg.Generation.LessonTimeout, "PATHWISE_LESSON_TIMEOUT")
	setString(&cfg.Log.Mode, "PATHWISE_LOG_MODE")

	return errors.Join(errs...)
}

// discoverLLM fills in the provider and key from the well-known
// <PROVIDER>_API_KEY variables, keeping configured models.
func discoverLLM(cfg *llm.Config) {
	found, ok := llm.DiscoverConfig()
	if !ok {
		return
	}
	cfg.Provider = found.Provider
	switch found.Provider {
	case "gemini":
		cfg.Gemini.APIKey = found.Gemini.APIKey
	case "openai":
		cfg.OpenAI.APIKey = found.OpenAI.APIKey
	case "anthropic":
		cfg.Anthropic.APIKey = found.Anthropic.APIKey
	case "openrouter":
		cfg.OpenRouter.APIKey = found.OpenRouter.APIKey
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	var errs []error
	if err := c.LLM.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Store.DSN == "" {
		errs = append(errs, errors.New("store dsn is required"))
	}
	return errors.Join(errs...)
}

// ValidateServer additionally checks the settings of the HTTP server.
func (c *Config) ValidateServer() error {
	var errs []error
	if err := c.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server addr is required"))
	}
	if len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("PATHWISE_JWT_SECRET must be at least 32 bytes"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth token ttl must be positive"))
	}
	return errors.Join(errs...)
}

// IsAdminEmail reports whether email is listed as an administrator.
func (c *Config) IsAdminEmail(email string) bool {
	for _, e := range c.Auth.AdminEmails {
		if strings.EqualFold(e, strings.TrimSpace(email)) {
			return true
		}
	}
	return false
}
