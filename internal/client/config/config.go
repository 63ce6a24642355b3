package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime settings for the ConsultBook client.
//
// Fields:
//   - APIBaseURL: base URL of the booking backend (auth and user endpoints).
//   - GeocoderURL: base URL of a Nominatim-compatible place search service.
//   - DatabaseDSN: SQLite DSN of the local key-value store.
//   - StoreDriver: "sqlite" (default) or "redis".
//   - RedisAddr / RedisPassword / RedisDB: used only with the redis driver.
//   - RequestTimeout: per-call HTTP timeout.
//   - ResendCooldown: wait before another OTP may be requested.
//   - LogFormat: "text" (slog) or "json" (zap).
type Config struct {
	APIBaseURL     string        `env:"CONSULTBOOK_API_URL"`
	GeocoderURL    string        `env:"CONSULTBOOK_GEOCODER_URL"`
	DatabaseDSN    string        `env:"CONSULTBOOK_DB_DSN"`
	StoreDriver    string        `env:"CONSULTBOOK_STORE"`
	RedisAddr      string        `env:"CONSULTBOOK_REDIS_ADDR"`
	RedisPassword  string        `env:"CONSULTBOOK_REDIS_PASSWORD"`
	RedisDB        int           `env:"CONSULTBOOK_REDIS_DB"`
	RequestTimeout time.Duration `env:"CONSULTBOOK_REQUEST_TIMEOUT"`
	ResendCooldown time.Duration `env:"CONSULTBOOK_RESEND_COOLDOWN"`
	LogFormat      string        `env:"CONSULTBOOK_LOG_FORMAT"`
}

// LoadDefaults populates c with values suitable for a local dev backend.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.GeocoderURL = "https://nominatim.openstreetmap.org"
	c.DatabaseDSN = "~/.consultbook/consultbook.db"
	c.StoreDriver = "sqlite"
	c.RedisAddr = "127.0.0.1:6379"
	c.RequestTimeout = 15 * time.Second
	c.ResendCooldown = 30 * time.Second
	c.LogFormat = "text"
}

// LoadConfig applies defaults, then the JSON file, the environment and the
// command-line flags. Later sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	parseFlags(cfg)
	return cfg, nil
}

// parseEnv overlays variables that are set; unset ones keep earlier values.
func parseEnv(cfg *Config) error {
	return env.Parse(cfg)
}
