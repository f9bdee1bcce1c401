// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// Database types
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

type Config struct {
	Port         int    `yaml:"port"`
	DatabaseURL  string `yaml:"database_url"`
	DatabaseType string `yaml:"database_type"`

	// Vote integrity secrets
	EncryptionKey string `yaml:"encryption_key"`
	HMACSecret    string `yaml:"hmac_secret"`

	// Session collaborator secrets
	VoterTokenSecret string `yaml:"voter_token_secret"`
	AdminKey         string `yaml:"admin_key"`

	SMTP SMTPConfig `yaml:"smtp"`
}

// SMTPConfig is optional; an empty Host disables email delivery.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// ParseFlags builds the configuration from CLI flags, environment variables
// and an optional YAML file, in that order of precedence.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var configFile string

	fs := flag.NewFlagSet("ward-ballot", flag.ContinueOnError)

	fs.StringVar(&configFile, "c", "", "YAML config file")

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.EncryptionKey, "encryption-key", "", "Candidate encryption key (prefer env)")
	fs.StringVar(&cfg.HMACSecret, "hmac-secret", "", "Vote signature secret (prefer env)")
	fs.StringVar(&cfg.VoterTokenSecret, "voter-token-secret", "", "Voter session token secret (prefer env)")
	fs.StringVar(&cfg.AdminKey, "admin-key", "", "Admin key for audit endpoints (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}
	var fileCfg Config
	if configFile != "" {
		var err error
		fileCfg, err = LoadConfigFile(configFile)
		if err != nil {
			return Config{}, err
		}
	}

	// Fall back to environment variables, then the config file
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else if fileCfg.Port != 0 {
			cfg.Port = fileCfg.Port
		} else {
			cfg.Port = 3318 // default
		}
	}

	cfg.DatabaseURL = fallback(cfg.DatabaseURL, "DATABASE_URL", fileCfg.DatabaseURL)
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	cfg.DatabaseType = fallback(cfg.DatabaseType, "DATABASE_TYPE", fileCfg.DatabaseType)
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = DatabaseSQLite
	}
	if cfg.DatabaseType != DatabaseSQLite && cfg.DatabaseType != DatabasePostgres {
		return Config{}, fmt.Errorf("unsupported DATABASE_TYPE: %s", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	cfg.EncryptionKey = fallback(cfg.EncryptionKey, "ENCRYPTION_KEY", fileCfg.EncryptionKey)
	if cfg.EncryptionKey == "" {
		return Config{}, errors.New("ENCRYPTION_KEY required")
	}

	cfg.HMACSecret = fallback(cfg.HMACSecret, "HMAC_SECRET", fileCfg.HMACSecret)
	if cfg.HMACSecret == "" {
		return Config{}, errors.New("HMAC_SECRET required")
	}

	cfg.VoterTokenSecret = fallback(cfg.VoterTokenSecret, "VOTER_TOKEN_SECRET", fileCfg.VoterTokenSecret)
	if cfg.VoterTokenSecret == "" {
		return Config{}, errors.New("VOTER_TOKEN_SECRET required")
	}

	cfg.AdminKey = fallback(cfg.AdminKey, "ADMIN_KEY", fileCfg.AdminKey)
	if cfg.AdminKey == "" {
		return Config{}, errors.New("ADMIN_KEY required")
	}

	// SMTP is env or file only
	cfg.SMTP.Host = fallback("", "SMTP_HOST", fileCfg.SMTP.Host)
	cfg.SMTP.Username = fallback("", "SMTP_USERNAME", fileCfg.SMTP.Username)
	cfg.SMTP.Password = fallback("", "SMTP_PASSWORD", fileCfg.SMTP.Password)
	cfg.SMTP.From = fallback("", "SMTP_FROM", fileCfg.SMTP.From)
	cfg.SMTP.Port = fileCfg.SMTP.Port
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, errors.New("invalid SMTP_PORT env variable")
		}
		cfg.SMTP.Port = port
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}

	return cfg, nil
}

// LoadConfigFile decodes a YAML config file.
func LoadConfigFile(path string) (Config, error) {
	var cfg Config

	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config file: %w", err)
	}

	return cfg, nil
}

func fallback(current, envKey, fileValue string) string {
	if current != "" {
		return current
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return fileValue
}

// String describes the configuration without secrets.
func (c Config) String() string {
	return fmt.Sprintf("port=%d db=%s smtp=%s encryption_key=%s hmac_secret=%s",
		c.Port, c.DatabaseType, c.SMTP.Host, mask(c.EncryptionKey), mask(c.HMACSecret))
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}
