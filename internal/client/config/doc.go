// Package config loads runtime configuration for the ConsultBook client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables (CONSULTBOOK_*), including those loaded from a
//     .env file by the entrypoint.
//  4. Command-line flags, which override everything else.
//
// # JSON schema
//
//	{
//	  "api_base_url": "http://127.0.0.1:8080",
//	  "geocoder_url": "https://nominatim.openstreetmap.org",
//	  "database_dsn": "~/.consultbook/consultbook.db",
//	  "store_driver": "sqlite",
//	  "request_timeout": "15s",
//	  "resend_cooldown": "30s",
//	  "log_format": "text"
//	}
package config
