package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/consultbook/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-o int      OTP validity, minutes
//	-k string   Resend API key
//	-f string   sender address of OTP mail
//	-m string   comma separated admin emails
//	-l string   log format (text|json)
//
// Duration flags are accepted as integers in minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], "-a", "-s", "-t", "-o", "-k", "-f", "-m", "-l")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	otpValidityDuration := fs.Int("o", int(config.OtpValidityDuration.Minutes()), "otp_validity_duration (in minutes)")

	fs.StringVar(&config.ResendAPIKey, "k", config.ResendAPIKey, "Resend API key")
	fs.StringVar(&config.MailFrom, "f", config.MailFrom, "sender of OTP mail")
	admins := fs.String("m", strings.Join(config.AdminEmails, ","), "comma separated admin emails")
	fs.StringVar(&config.LogFormat, "l", config.LogFormat, "log format (text|json)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.OtpValidityDuration = time.Duration(*otpValidityDuration) * time.Minute
	config.AdminEmails = splitList(*admins)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
