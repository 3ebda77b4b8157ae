package config

import (
	"flag"

	"github.com/dmitrijs2005/aimauth/internal/flagx"
)

// parseFlags populates Config fields from command-line flags. Flags it does
// not declare are ignored, so -c / -config can share the command line.
//
//	-a string     HTTP bind address (e.g. ":8000")
//	-b string     database driver: postgres | sqlite
//	-d string     database DSN, or a file path for sqlite
//	-s string     JWT HMAC secret key
//	-k int        bcrypt cost
//	-r string     role given to new accounts
//	-l string     log level: debug | info | warn | error
//	-f string     log format: json | console
//	-o string     OTLP/gRPC collector endpoint
//	-t duration   graceful shutdown timeout (e.g. "10s")
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DBDriver, "b", config.DBDriver, "database driver (postgres|sqlite)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.IntVar(&config.BcryptCost, "k", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.DefaultRole, "r", config.DefaultRole, "default role for new accounts")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format (json|console)")
	fs.StringVar(&config.OTLPEndpoint, "o", config.OTLPEndpoint, "OTLP collector endpoint")
	fs.DurationVar(&config.ShutdownTimeout, "t", config.ShutdownTimeout, "graceful shutdown timeout")

	return flagx.ParseOwn(fs, args)
}
