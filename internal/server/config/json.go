package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/consultbook/internal/flagx"
	"github.com/dmitrijs2005/consultbook/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Durations use
// timex.Duration, so both "10m" and integer nanoseconds are accepted.
// Absent fields leave the corresponding Config value untouched.
type JsonConfig struct {
	EndpointAddr                string          `json:"endpoint_addr"`
	SecretKey                   string          `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	OtpValidityDuration         *timex.Duration `json:"otp_validity_duration"`
	ResendAPIKey                string          `json:"resend_api_key"`
	MailFrom                    string          `json:"mail_from"`
	AdminEmails                 []string        `json:"admin_emails"`
	LogFormat                   string          `json:"log_format"`
}

// parseJson overlays config with the file named by -c/-config. If the file
// cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.ResendAPIKey, c.ResendAPIKey)
	setString(&config.MailFrom, c.MailFrom)
	setString(&config.LogFormat, c.LogFormat)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.OtpValidityDuration != nil {
		config.OtpValidityDuration = c.OtpValidityDuration.Duration
	}
	if c.AdminEmails != nil {
		config.AdminEmails = c.AdminEmails
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
