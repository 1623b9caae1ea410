package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const WebhookPathPrefix = "/webhook/"

type Config struct {
	Token            string        `env:"TOKEN,required,notEmpty"`
	OpenAIAPIKey     string        `env:"OPENAI_API_KEY,required,notEmpty"`
	WebhookSecret    string        `env:"WEBHOOK_SECRET"                   envDefault:"mysecret"`
	ExternalURL      string        `env:"RENDER_EXTERNAL_URL"`
	Port             int           `env:"PORT"                             envDefault:"5000"`
	DownloadTimeout  time.Duration `env:"DOWNLOAD_TIMEOUT"                 envDefault:"30s"`
	SummarizeTimeout time.Duration `env:"SUMMARIZE_TIMEOUT"                envDefault:"60s"`
	UpdateTimeout    time.Duration `env:"UPDATE_TIMEOUT"                   envDefault:"2m"`
	MaxPDFBytes      int64         `env:"MAX_PDF_BYTES"                    envDefault:"20971520"`
	WebhookCheckSpec string        `env:"WEBHOOK_CHECK_SPEC"               envDefault:"*/30 * * * *"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env file: %w", err)
	}

	return parse(env.Options{})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Token = strings.TrimSpace(cfg.Token)
	cfg.OpenAIAPIKey = strings.TrimSpace(cfg.OpenAIAPIKey)
	cfg.WebhookSecret = strings.Trim(strings.TrimSpace(cfg.WebhookSecret), "/")
	cfg.ExternalURL = strings.TrimRight(strings.TrimSpace(cfg.ExternalURL), "/")

	if cfg.Token == "" || cfg.OpenAIAPIKey == "" {
		return Config{}, errors.New("TOKEN and OPENAI_API_KEY must not be blank")
	}
	if cfg.WebhookSecret == "" {
		return Config{}, errors.New("WEBHOOK_SECRET must not be blank")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("PORT is out of range: %d", cfg.Port)
	}
	if cfg.MaxPDFBytes <= 0 {
		return Config{}, fmt.Errorf("MAX_PDF_BYTES must be positive: %d", cfg.MaxPDFBytes)
	}

	return cfg, nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c Config) WebhookPath() string {
	return WebhookPathPrefix + c.WebhookSecret
}

// WebhookURL is empty when no external URL is configured.
func (c Config) WebhookURL() string {
	if c.ExternalURL == "" {
		return ""
	}

	return c.ExternalURL + c.WebhookPath()
}
