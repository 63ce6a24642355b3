package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/consultbook/internal/flagx"
)

// parseFlags overlays cfg with command-line flags:
//
//	-a string   backend base URL
//	-g string   geocoder base URL
//	-d string   local store DSN
//	-s string   store driver (sqlite|redis)
//	-l string   log format (text|json)
//	-t int      request timeout in seconds
//
// Only these flags are read from os.Args; the rest is left to other layers.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], "-a", "-g", "-d", "-s", "-l", "-t")

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "backend base URL")
	fs.StringVar(&cfg.GeocoderURL, "g", cfg.GeocoderURL, "geocoder base URL")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "local store DSN")
	fs.StringVar(&cfg.StoreDriver, "s", cfg.StoreDriver, "store driver (sqlite|redis)")
	fs.StringVar(&cfg.LogFormat, "l", cfg.LogFormat, "log format (text|json)")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
