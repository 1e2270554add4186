package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/tempus/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestEngineConfig_Calendar(t *testing.T) {
	cfg := EngineConfig{DefaultCalendar: "Gregory"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("gregory should pass: %v", err)
	}
	if cfg.DefaultCalendar != "gregory" {
		t.Errorf("calendar = %q, want lower-cased", cfg.DefaultCalendar)
	}

	cfg = EngineConfig{DefaultCalendar: "hebrew"}
	if err := cfg.Validate(); err == nil {
		t.Error("unshipped calendar should fail")
	}
}

func TestZonesConfig_Validate(t *testing.T) {
	cfg := ZonesConfig{Watch: true, CacheTTL: time.Minute}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "watch is on") {
		t.Errorf("watch without dir: %v", err)
	}

	cfg = ZonesConfig{CacheTTL: time.Millisecond}
	if err := cfg.Validate(); err == nil {
		t.Error("sub-second cache ttl should fail")
	}

	cfg = ZonesConfig{CacheTTL: time.Minute}
	if err := cfg.Validate(); err != nil {
		t.Errorf("catalog is optional without watch: %v", err)
	}
}

func TestMetricsConfig_Path(t *testing.T) {
	for path, ok := range map[string]bool{
		"/metrics":     true,
		"metrics":      false,
		"/api/metrics": false,
		"":             false,
	} {
		cfg := MetricsConfig{Enabled: true, Path: path}
		if err := cfg.Validate(); (err == nil) != ok {
			t.Errorf("path %q: err = %v", path, err)
		}
	}

	off := MetricsConfig{Enabled: false}
	if err := off.Validate(); err != nil {
		t.Errorf("disabled metrics need no path: %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	t.Setenv("TEMPUS_TEST_TOKEN", "s3cret")
	data := `app:
  log_level: debug
  http:
    port: 9090
    shutdown_timeout: 5s
auth:
  mode: token
  token: ${TEMPUS_TEST_TOKEN}
engine:
  default_calendar: gregory
  default_time_zone: Europe/Berlin
zones:
  catalog_dir: ` + dir + `
  watch: false
  cache_ttl: 30m
metrics:
  enabled: false
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug || cfg.App.HTTP.Port != 9090 || cfg.App.HTTP.ShutdownTimeout != 5*time.Second {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Auth.Token != "s3cret" || !cfg.Auth.AuthEnabled() {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Engine.DefaultTimeZone != "Europe/Berlin" || cfg.Zones.CacheTTL != 30*time.Minute {
		t.Errorf("engine/zones = %+v %+v", cfg.Engine, cfg.Zones)
	}
	if cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" {
		t.Errorf("metrics = %+v", cfg.Metrics)
	}
}
