package config

import (
	"strings"
	"testing"
	"time"
)

// unsetAll clears every variable Load reads so a developer's shell does not leak into tests.
func unsetAll(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GRPC_ADDR", "DATABASE_URL", "DB_PING_TIMEOUT", "JWT_PRIVATE_KEY", "JWT_PUBLIC_KEY",
		"JWT_ISSUER", "JWT_AUDIENCE", "JWT_ACCESS_TTL", "ASSIGNMENTS_API_URL", "ASSIGNMENTS_API_TOKEN",
		"POLICY_ENGINE", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_INSECURE", "OTEL_SERVICE_NAME", "APP_ENV",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("GRPC_ADDR", ":8080")
	t.Setenv("POLICY_ENGINE", "static")
	t.Setenv("JWT_ISSUER", "zeno-auth")
	t.Setenv("JWT_AUDIENCE", "zeno-api")
	t.Setenv("JWT_ACCESS_TTL", "15m")
	t.Setenv("OTEL_SERVICE_NAME", "zeno-access")
	t.Setenv("DB_PING_TIMEOUT", "5s")
}

func TestLoad_Defaults(t *testing.T) {
	unsetAll(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GRPCAddr != ":8080" {
		t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, ":8080")
	}
	if cfg.JWTIssuer != "zeno-auth" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "zeno-auth")
	}
	if cfg.JWTAudience != "zeno-api" {
		t.Errorf("JWTAudience = %q, want %q", cfg.JWTAudience, "zeno-api")
	}
	if cfg.PolicyEngine != PolicyEngineStatic || cfg.UsesOPA() {
		t.Errorf("PolicyEngine = %q, want static", cfg.PolicyEngine)
	}
	if cfg.OTelServiceName != "zeno-access" {
		t.Errorf("OTelServiceName = %q, want zeno-access", cfg.OTelServiceName)
	}
	if cfg.AuthEnabled() {
		t.Error("AuthEnabled should be false without a public key")
	}
	if cfg.AccessTTL() != 15*time.Minute {
		t.Errorf("AccessTTL = %v, want 15m", cfg.AccessTTL())
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	unsetAll(t)
	t.Setenv("GRPC_ADDR", ":9090")
	t.Setenv("JWT_ISSUER", "custom-issuer")
	t.Setenv("POLICY_ENGINE", " OPA ")
	t.Setenv("ASSIGNMENTS_API_URL", "https://api.example.com")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GRPCAddr != ":9090" {
		t.Errorf("GRPCAddr = %q, want %q", cfg.GRPCAddr, ":9090")
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "custom-issuer")
	}
	if !cfg.UsesOPA() {
		t.Errorf("PolicyEngine = %q, want opa", cfg.PolicyEngine)
	}
	if cfg.AssignmentsAPIURL != "https://api.example.com" {
		t.Errorf("AssignmentsAPIURL = %q", cfg.AssignmentsAPIURL)
	}
	if !cfg.OTelInsecure {
		t.Error("OTelInsecure should be true")
	}
}

func TestLoad_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"empty grpc addr", map[string]string{"GRPC_ADDR": ""}, "GRPC_ADDR"},
		{"unknown policy engine", map[string]string{"POLICY_ENGINE": "cedar"}, "POLICY_ENGINE"},
		{"production without key", map[string]string{"APP_ENV": "production"}, "JWT_PUBLIC_KEY"},
		{"bad assignments url", map[string]string{"ASSIGNMENTS_API_URL": "ftp://x"}, "ASSIGNMENTS_API_URL"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			unsetAll(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Load err = %v, want mention of %s", err, tc.wantErr)
			}
		})
	}
}

func TestLoad_ProductionWithKey(t *testing.T) {
	unsetAll(t)
	t.Setenv("APP_ENV", "Production")
	t.Setenv("JWT_PUBLIC_KEY", "/etc/zeno/jwt.pub")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsProduction() || !cfg.AuthEnabled() {
		t.Errorf("IsProduction = %v, AuthEnabled = %v", cfg.IsProduction(), cfg.AuthEnabled())
	}
}

func TestConfig_Durations(t *testing.T) {
	testCases := []struct {
		raw  string
		want time.Duration
	}{
		{"30m", 30 * time.Minute},
		{"", 15 * time.Minute},
		{"garbage", 15 * time.Minute},
		{"-5m", 15 * time.Minute},
	}
	for _, tc := range testCases {
		c := &Config{JWTAccessTTL: tc.raw}
		if got := c.AccessTTL(); got != tc.want {
			t.Errorf("AccessTTL(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
	if got := (&Config{DBPingTimeout: "2s"}).PingTimeout(); got != 2*time.Second {
		t.Errorf("PingTimeout = %v, want 2s", got)
	}
	if got := (&Config{}).PingTimeout(); got != 5*time.Second {
		t.Errorf("PingTimeout default = %v, want 5s", got)
	}
}
