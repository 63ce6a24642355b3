// Package config handles configuration for the dev backend,
// including defaults, JSON overlay, environment and command-line flags.
package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds runtime settings for the ConsultBook dev backend.
//
// Fields:
//   - EndpointAddr: bind address of the HTTP API.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration: lifetime of issued tokens.
//   - OtpValidityDuration: how long an emailed code stays usable.
//   - ResendAPIKey / MailFrom: Resend credentials; without a key codes are logged.
//   - AdminEmails: accounts created for these addresses get the admin role.
//   - LogFormat: "text" (slog) or "json" (zap).
type Config struct {
	EndpointAddr                string        `env:"CONSULTBOOK_SERVER_ADDR"`
	SecretKey                   string        `env:"CONSULTBOOK_SERVER_SECRET"`
	AccessTokenValidityDuration time.Duration `env:"CONSULTBOOK_SERVER_TOKEN_TTL"`
	OtpValidityDuration         time.Duration `env:"CONSULTBOOK_SERVER_OTP_TTL"`
	ResendAPIKey                string        `env:"RESEND_API_KEY"`
	MailFrom                    string        `env:"CONSULTBOOK_SERVER_MAIL_FROM"`
	AdminEmails                 []string      `env:"CONSULTBOOK_SERVER_ADMINS" envSeparator:","`
	LogFormat                   string        `env:"CONSULTBOOK_SERVER_LOG_FORMAT"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 60 * time.Minute
	c.OtpValidityDuration = 10 * time.Minute
	c.MailFrom = "ConsultBook <onboarding@resend.dev>"
	c.LogFormat = "text"
}

// LoadConfig applies defaults, then the JSON file, the environment and the
// command-line flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	parseFlags(cfg)
	return cfg, nil
}

// IsAdmin reports whether email is listed in AdminEmails. Case is ignored.
func (c *Config) IsAdmin(email string) bool {
	for _, a := range c.AdminEmails {
		if equalFold(a, email) {
			return true
		}
	}
	return false
}
