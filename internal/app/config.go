package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	AmadeusBaseURL   string        `envconfig:"AMADEUS_BASE_URL" default:"https://test.api.amadeus.com"`
	AmadeusAPIKey    string        `envconfig:"AMADEUS_API_KEY" required:"true"`
	AmadeusAPISecret string        `envconfig:"AMADEUS_API_SECRET" required:"true"`
	AmadeusTimeout   time.Duration `envconfig:"AMADEUS_TIMEOUT" default:"20s"`

	RedisAddr         string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	AnalyticsCacheTTL time.Duration `envconfig:"ANALYTICS_CACHE_TTL" default:"10m"`

	SMTPHost string `envconfig:"SMTP_HOST" default:"127.0.0.1"`
	SMTPPort int    `envconfig:"SMTP_PORT" default:"1025"`
	SMTPFrom string `envconfig:"SMTP_FROM" default:"alerts@farewatch.local"`

	AlertRecipient string `envconfig:"ALERT_RECIPIENT"`
	AlertOrigin    string `envconfig:"ALERT_ORIGIN" default:"BLR"`
	AlertAirline   string `envconfig:"ALERT_AIRLINE" default:"AI"`
	AlertMinSeats  int    `envconfig:"ALERT_MIN_SEATS" default:"9"`

	CatalogPath string `envconfig:"CATALOG_PATH" default:"destinations.yml"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.AmadeusAPIKey == "" || cfg.AmadeusAPISecret == "" {
		return nil, errors.New("amadeus credentials must be provided")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
