package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/credvault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":8080")
//	-g string     gRPC bind address (e.g., ":50051")
//	-b string     database driver ("postgres" or "sqlite")
//	-d string     database DSN
//	-s string     JWT HMAC secret key
//	-t duration   access token TTL (e.g., "1h")
//	-r duration   refresh token TTL (e.g., "720h")
//	-R string     Redis address for the login limiter
//	-m string     MongoDB URI, selects the mongo audit backend
//	-l string     log level
//
// The args are first filtered with flagx.FilterArgs so that flags owned by
// other components, such as -c, do not break parsing.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-b", "-d", "-s", "-t", "-r", "-R", "-m", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC address and port")
	fs.StringVar(&config.DatabaseDriver, "b", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.AccessTokenTTL, "t", config.AccessTokenTTL, "access token TTL")
	fs.DurationVar(&config.RefreshTokenTTL, "r", config.RefreshTokenTTL, "refresh token TTL")
	fs.StringVar(&config.RedisAddr, "R", config.RedisAddr, "redis address")
	mongoURI := fs.String("m", "", "mongo URI for the audit log")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	if *mongoURI != "" {
		config.MongoURI = *mongoURI
		config.AuditBackend = AuditBackendMongo
	}
	return nil
}
