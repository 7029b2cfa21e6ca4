// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Policy engines selectable with POLICY_ENGINE.
const (
	PolicyEngineStatic = "static"
	PolicyEngineOPA    = "opa"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// GRPCAddr is the address the gRPC server listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN. Empty keeps assignments, policies and audit logs in memory.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// DBPingTimeout bounds the startup ping (e.g. "5s").
	DBPingTimeout string `mapstructure:"DB_PING_TIMEOUT"`

	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file. Only needed to
	// issue tokens (cmd/seed); the server validates with JWTPublicKey alone.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file. Required in production.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim (e.g. "zeno-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "zeno-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`

	// AssignmentsAPIURL is the base URL of the business REST API. When set, business roles are
	// resolved from GET {url}/api/businesses/{id}/users instead of the local store.
	AssignmentsAPIURL string `mapstructure:"ASSIGNMENTS_API_URL"`
	// AssignmentsAPIToken is sent as a bearer token to the business REST API.
	AssignmentsAPIToken string `mapstructure:"ASSIGNMENTS_API_TOKEN"`

	// PolicyEngine selects the business action evaluator: "static" or "opa".
	PolicyEngine string `mapstructure:"POLICY_ENGINE"`

	// OTelEndpoint is the OTLP gRPC collector (e.g. "localhost:4317"). Empty disables export.
	OTelEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTelInsecure disables TLS to the collector.
	OTelInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// OTelServiceName is the service.name resource attribute.
	OTelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	// Every key needs a default so Unmarshal picks up values that only exist in the environment.
	v.SetDefault("GRPC_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_PING_TIMEOUT", "5s")
	v.SetDefault("JWT_PRIVATE_KEY", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_ISSUER", "zeno-auth")
	v.SetDefault("JWT_AUDIENCE", "zeno-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("ASSIGNMENTS_API_URL", "")
	v.SetDefault("ASSIGNMENTS_API_TOKEN", "")
	v.SetDefault("POLICY_ENGINE", PolicyEngineStatic)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "zeno-access")
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.GRPCAddr == "" {
		return nil, errors.New("config: GRPC_ADDR must be set")
	}

	cfg.PolicyEngine = strings.ToLower(strings.TrimSpace(cfg.PolicyEngine))
	switch cfg.PolicyEngine {
	case "":
		cfg.PolicyEngine = PolicyEngineStatic
	case PolicyEngineStatic, PolicyEngineOPA:
	default:
		return nil, fmt.Errorf("config: POLICY_ENGINE must be %q or %q, got %q", PolicyEngineStatic, PolicyEngineOPA, cfg.PolicyEngine)
	}

	if cfg.IsProduction() && strings.TrimSpace(cfg.JWTPublicKey) == "" {
		return nil, errors.New("config: JWT_PUBLIC_KEY must be set when APP_ENV=production")
	}

	if cfg.AssignmentsAPIURL != "" && !strings.HasPrefix(cfg.AssignmentsAPIURL, "http://") && !strings.HasPrefix(cfg.AssignmentsAPIURL, "https://") {
		return nil, errors.New("config: ASSIGNMENTS_API_URL must be an http(s) URL")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// PingTimeout parses DBPingTimeout. Returns 5s if unset or invalid.
func (c *Config) PingTimeout() time.Duration {
	d, err := time.ParseDuration(c.DBPingTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// UsesOPA reports whether business actions are evaluated with OPA.
func (c *Config) UsesOPA() bool { return c.PolicyEngine == PolicyEngineOPA }

// AuthEnabled reports whether a public key is configured for validating access tokens.
func (c *Config) AuthEnabled() bool { return strings.TrimSpace(c.JWTPublicKey) != "" }

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool { return strings.EqualFold(c.Env, "production") }
