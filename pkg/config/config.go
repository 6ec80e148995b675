package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App   AppConfig
	API   APIConfig
	Retry RetryConfig
	Store StoreConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PACKFINDERZ_CLIENT_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"PACKFINDERZ_CLIENT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PACKFINDERZ_CLIENT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type APIConfig struct {
	BaseURL        string        `envconfig:"PACKFINDERZ_CLIENT_API_BASE_URL" required:"true"`
	RequestTimeout time.Duration `envconfig:"PACKFINDERZ_CLIENT_API_TIMEOUT" default:"8s"`
	ClientID       string        `envconfig:"PACKFINDERZ_CLIENT_API_CLIENT_ID" default:"packfinderz-client/go"`
}

func (a APIConfig) validate() error {
	if strings.TrimSpace(a.BaseURL) == "" {
		return fmt.Errorf("%s is required", EnvAPIBaseURL)
	}
	if a.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}

// RetryConfig bounds the executor's GET retry loop and the checkout
// pipeline's independent submission budget.
type RetryConfig struct {
	MaxGetRetries    int           `envconfig:"PACKFINDERZ_CLIENT_MAX_GET_RETRIES" default:"2"`
	RetryDelay       time.Duration `envconfig:"PACKFINDERZ_CLIENT_RETRY_DELAY" default:"600ms"`
	SubmitAttempts   int           `envconfig:"PACKFINDERZ_CLIENT_SUBMIT_ATTEMPTS" default:"2"`
	SubmitRetryDelay time.Duration `envconfig:"PACKFINDERZ_CLIENT_SUBMIT_RETRY_DELAY" default:"1s"`
}

type StoreConfig struct {
	Path string `envconfig:"PACKFINDERZ_CLIENT_STORE_PATH" default:"packfinderz-client.db"`
}
