package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Addr         string        `mapstructure:"addr"`
		Mode         string        `mapstructure:"mode"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
	} `mapstructure:"server"`

	Redis struct {
		URL      string `mapstructure:"url"`
		PoolSize int    `mapstructure:"pool_size"`
	} `mapstructure:"redis"`

	Auth struct {
		IdentityPoolID string `mapstructure:"identity_pool_id"`
		Region         string `mapstructure:"region"`
		// Endpoint overrides the oracle base URL derived from the region.
		// Used against local identity-provider emulators.
		Endpoint          string        `mapstructure:"endpoint"`
		AcceptedTokenUses []string      `mapstructure:"accepted_token_uses"`
		OracleTimeout     time.Duration `mapstructure:"oracle_timeout"`
		OracleRetryWait   time.Duration `mapstructure:"oracle_retry_wait"`
		// CacheTTL is the positive-decision cache ceiling. Zero disables
		// caching entirely; a cached Allow can outlive a sign-out by at
		// most this duration.
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"auth"`

	Observability struct {
		TraceEnabled       bool   `mapstructure:"trace_enabled"`
		TracingEndpointURL string `mapstructure:"tracing_endpoint_url"`
		LogLevel           string `mapstructure:"log_level"`
		Format             string `mapstructure:"log_format"`
		LogSource          bool   `mapstructure:"log_source"`
	} `mapstructure:"observability"`
}

func MustLoad() *Config {
	v := viper.New()

	logger := slog.Default()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvPrefix("TOKEN_AUTHORIZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		logger.Error("Failed to read config", slog.Any("error", err))
		os.Exit(1)
	}

	if env := os.Getenv("APP_ENV"); env != "" {
		v.SetConfigName(fmt.Sprintf("config.%s", env))
		if err := v.MergeInConfig(); err != nil {
			logger.Info("No environment-specific config (optional)", slog.String("env", env))
		}
		logger.Info("Environment-specific config loaded", slog.String("env", env))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		logger.Error("Failed to unmarshal config", slog.Any("error", err))
		os.Exit(1)
	}

	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8123")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	// The oracle only honors access tokens, so access is the only class
	// accepted out of the box.
	v.SetDefault("auth.accepted_token_uses", []string{"access"})
	v.SetDefault("auth.oracle_timeout", "3s")
	v.SetDefault("auth.oracle_retry_wait", "100ms")
	v.SetDefault("auth.cache_ttl", "0s")
	v.SetDefault("observability.log_level", "info")
	v.SetDefault("observability.log_format", "json")
}

// IssuerURL returns the issuer string tokens must carry in their iss claim,
// derived from the configured pool identity and region.
func (c *Config) IssuerURL() string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", c.Auth.Region, c.Auth.IdentityPoolID)
}

// OracleEndpoint returns the base URL of the revocation oracle. An explicit
// endpoint override wins over the region-derived default.
func (c *Config) OracleEndpoint() string {
	if c.Auth.Endpoint != "" {
		return strings.TrimSuffix(c.Auth.Endpoint, "/")
	}
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com", c.Auth.Region)
}
