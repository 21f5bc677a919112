package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/credvault/internal/flagx"
	"github.com/dmitrijs2005/credvault/internal/timex"
	"gopkg.in/yaml.v2"
)

// fileConfig is the on-disk shape of Config. Durations accept both "1h" and
// integer nanoseconds. Zero values leave the current setting untouched.
type fileConfig struct {
	HTTPAddr string `json:"http_addr" yaml:"http_addr"`
	GRPCAddr string `json:"grpc_addr" yaml:"grpc_addr"`

	DatabaseDriver string `json:"database_driver" yaml:"database_driver"`
	DatabaseDSN    string `json:"database_dsn" yaml:"database_dsn"`

	SecretKey       string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenTTL  timex.Duration `json:"access_token_ttl" yaml:"access_token_ttl"`
	RefreshTokenTTL timex.Duration `json:"refresh_token_ttl" yaml:"refresh_token_ttl"`

	Argon2 struct {
		MemoryKiB uint32 `json:"memory_kib" yaml:"memory_kib"`
		Time      uint32 `json:"time" yaml:"time"`
		Threads   uint8  `json:"threads" yaml:"threads"`
		KeyLength uint32 `json:"key_length" yaml:"key_length"`
	} `json:"argon2" yaml:"argon2"`

	Redis struct {
		Addr     string `json:"addr" yaml:"addr"`
		Password string `json:"password" yaml:"password"`
		DB       int    `json:"db" yaml:"db"`
	} `json:"redis" yaml:"redis"`

	Login struct {
		MaxAttempts int            `json:"max_attempts" yaml:"max_attempts"`
		Cooldown    timex.Duration `json:"cooldown" yaml:"cooldown"`
		PerAddress  bool           `json:"per_address" yaml:"per_address"`
	} `json:"login" yaml:"login"`

	Audit struct {
		Backend       string `json:"backend" yaml:"backend"`
		MongoURI      string `json:"mongo_uri" yaml:"mongo_uri"`
		MongoDatabase string `json:"mongo_database" yaml:"mongo_database"`
	} `json:"audit" yaml:"audit"`

	LogLevel    string `json:"log_level" yaml:"log_level"`
	Environment string `json:"environment" yaml:"environment"`
}

// parseFile overlays the file named by -c/-config, if any. The format
// follows the extension: .yaml/.yml for YAML, anything else JSON.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fc := &fileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (fc *fileConfig) apply(cfg *Config) {
	setString(&cfg.HTTPAddr, fc.HTTPAddr)
	setString(&cfg.GRPCAddr, fc.GRPCAddr)
	setString(&cfg.DatabaseDriver, fc.DatabaseDriver)
	setString(&cfg.DatabaseDSN, fc.DatabaseDSN)
	setString(&cfg.SecretKey, fc.SecretKey)
	if fc.AccessTokenTTL.Duration > 0 {
		cfg.AccessTokenTTL = fc.AccessTokenTTL.Duration
	}
	if fc.RefreshTokenTTL.Duration > 0 {
		cfg.RefreshTokenTTL = fc.RefreshTokenTTL.Duration
	}

	if fc.Argon2.MemoryKiB > 0 {
		cfg.Argon2MemoryKiB = fc.Argon2.MemoryKiB
	}
	if fc.Argon2.Time > 0 {
		cfg.Argon2Time = fc.Argon2.Time
	}
	if fc.Argon2.Threads > 0 {
		cfg.Argon2Threads = fc.Argon2.Threads
	}
	if fc.Argon2.KeyLength > 0 {
		cfg.Argon2KeyLength = fc.Argon2.KeyLength
	}

	setString(&cfg.RedisAddr, fc.Redis.Addr)
	setString(&cfg.RedisPassword, fc.Redis.Password)
	if fc.Redis.DB > 0 {
		cfg.RedisDB = fc.Redis.DB
	}
	if fc.Login.MaxAttempts > 0 {
		cfg.LoginMaxAttempts = fc.Login.MaxAttempts
	}
	if fc.Login.Cooldown.Duration > 0 {
		cfg.LoginCooldown = fc.Login.Cooldown.Duration
	}
	if fc.Login.PerAddress {
		cfg.LoginPerAddress = true
	}

	setString(&cfg.AuditBackend, fc.Audit.Backend)
	setString(&cfg.MongoURI, fc.Audit.MongoURI)
	setString(&cfg.MongoDatabase, fc.Audit.MongoDatabase)

	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.Environment, fc.Environment)
}
