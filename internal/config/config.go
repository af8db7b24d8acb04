package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kjstillabower/weathercheck/internal/validation"
)

const (
	DefaultWeatherAPIURL      = "https://api.openweathermap.org/data/2.5/weather"
	DefaultWeatherAPITimeout  = 10 * time.Second
	DefaultRateLimitPerMinute = 60
	DefaultCountry            = "US"
	DefaultLogLevel           = "warn"
)

// Config holds CLI configuration loaded from .env, YAML and the environment.
type Config struct {
	WeatherAPIKey      string
	WeatherAPIURL      string
	WeatherAPITimeout  time.Duration
	RateLimitPerMinute int

	DefaultCountry string

	LogLevel    string
	MetricsAddr string // empty disables the /metrics listener
}

type fileConfig struct {
	WeatherAPI struct {
		URL                string `yaml:"url"`
		Timeout            string `yaml:"timeout"`
		RateLimitPerMinute *int   `yaml:"rate_limit_per_minute"`
	} `yaml:"weather_api"`

	Location struct {
		DefaultCountry string `yaml:"default_country"`
	} `yaml:"location"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
}

type secretsFile struct {
	WeatherAPIKey string `yaml:"weather_api_key"`
}

// Load reads .env, then config/{ENV_NAME}.yaml (default dev) and config/secrets.yaml, all
// relative to the working directory and all optional. The API key comes from WEATHER_API_KEY
// or the secrets file and is the only required value. Environment variables win over files.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(filepath.Join(cwd, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	var fc fileConfig
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.WeatherAPIKey = strings.TrimSpace(os.Getenv("WEATHER_API_KEY"))
	if cfg.WeatherAPIKey == "" {
		secretsPath := filepath.Join(cwd, "config", "secrets.yaml")
		secretsData, err := os.ReadFile(secretsPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read secrets file: %w", err)
			}
		} else {
			var sec secretsFile
			if err := yaml.Unmarshal(secretsData, &sec); err != nil {
				return nil, fmt.Errorf("parse secrets file: %w", err)
			}
			cfg.WeatherAPIKey = strings.TrimSpace(sec.WeatherAPIKey)
		}
	}
	if cfg.WeatherAPIKey == "" {
		return nil, fmt.Errorf("WEATHER_API_KEY required (set env, .env, or config/secrets.yaml weather_api_key)")
	}

	cfg.WeatherAPIURL = firstNonEmpty(os.Getenv("WEATHER_API_URL"), fc.WeatherAPI.URL, DefaultWeatherAPIURL)
	cfg.WeatherAPITimeout = parseDurationOrZero(fc.WeatherAPI.Timeout, DefaultWeatherAPITimeout)
	cfg.RateLimitPerMinute = DefaultRateLimitPerMinute
	if fc.WeatherAPI.RateLimitPerMinute != nil {
		cfg.RateLimitPerMinute = *fc.WeatherAPI.RateLimitPerMinute
	}

	cfg.DefaultCountry = firstNonEmpty(fc.Location.DefaultCountry, DefaultCountry)
	cfg.LogLevel = firstNonEmpty(os.Getenv("LOG_LEVEL"), fc.Log.Level, DefaultLogLevel)
	cfg.MetricsAddr = firstNonEmpty(os.Getenv("METRICS_ADDR"), fc.Metrics.Addr)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty string or parse error.
// Returns zero or negative durations as-is (validate rejects them).
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// validate performs post-load validation and normalizes the country code to upper case.
func validate(cfg *Config) error {
	if cfg.WeatherAPITimeout <= 0 {
		return fmt.Errorf("weather_api.timeout must be positive")
	}
	if cfg.RateLimitPerMinute < 0 {
		return fmt.Errorf("weather_api.rate_limit_per_minute must not be negative, got %d", cfg.RateLimitPerMinute)
	}
	country, err := validation.ValidateCountryCode(cfg.DefaultCountry)
	if err != nil {
		return fmt.Errorf("location.default_country %q: %w", cfg.DefaultCountry, err)
	}
	cfg.DefaultCountry = country
	return nil
}
