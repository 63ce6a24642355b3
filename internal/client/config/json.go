package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/consultbook/internal/flagx"
	"github.com/dmitrijs2005/consultbook/internal/timex"
)

// JsonConfig is the on-disk shape of the client config file. Durations use
// timex.Duration so "15s" and integer nanoseconds are both accepted. Absent
// fields leave the corresponding Config value untouched.
type JsonConfig struct {
	APIBaseURL     string          `json:"api_base_url"`
	GeocoderURL    string          `json:"geocoder_url"`
	DatabaseDSN    string          `json:"database_dsn"`
	StoreDriver    string          `json:"store_driver"`
	RedisAddr      string          `json:"redis_addr"`
	RedisDB        *int            `json:"redis_db"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	ResendCooldown *timex.Duration `json:"resend_cooldown"`
	LogFormat      string          `json:"log_format"`
}

// parseJson overlays cfg with the file named by -c/-config. It panics on
// read or decode errors.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.GeocoderURL, jc.GeocoderURL)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.StoreDriver, jc.StoreDriver)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	setString(&cfg.LogFormat, jc.LogFormat)
	if jc.RedisDB != nil {
		cfg.RedisDB = *jc.RedisDB
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.ResendCooldown != nil {
		cfg.ResendCooldown = jc.ResendCooldown.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
