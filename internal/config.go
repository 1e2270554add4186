package internal

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/tempus/internal/calendar"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Auth    AuthConfig        `yaml:"auth"`
	Engine  EngineConfig      `yaml:"engine"`
	Zones   ZonesConfig       `yaml:"zones"`
	Metrics MetricsConfig     `yaml:"metrics"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	if err := c.Zones.Validate(); err != nil {
		return err
	}
	return c.Metrics.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// EngineConfig sets what a request gets when it leaves the calendar or
// zone out.
type EngineConfig struct {
	DefaultCalendar string `yaml:"default_calendar"`
	DefaultTimeZone string `yaml:"default_time_zone"`
}

// Validate validates the engine configuration.
func (c *EngineConfig) Validate() error {
	c.DefaultCalendar = strings.ToLower(c.DefaultCalendar)
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultCalendar, validation.Required,
			validation.In(calendar.ISO8601, calendar.Gregorian).Error("must be iso8601 or gregory")),
	)
}

// ZonesConfig controls the zone catalog and the IANA zone cache.
type ZonesConfig struct {
	CatalogDir string        `yaml:"catalog_dir"`
	Watch      bool          `yaml:"watch"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
}

// Validate validates the zones configuration.
func (c *ZonesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CatalogDir, validation.When(c.Watch, validation.Required.Error("is required when watch is on"))),
		validation.Field(&c.CacheTTL, validation.Required, validation.Min(time.Second)),
	)
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Validate validates the metrics configuration.
func (c *MetricsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.When(c.Enabled,
			validation.Required,
			validation.By(func(v interface{}) error {
				if !strings.HasPrefix(v.(string), "/") || strings.HasPrefix(v.(string), "/api") {
					return fmt.Errorf("must start with / and stay outside /api")
				}
				return nil
			}))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port:            8080,
				ShutdownTimeout: 10 * time.Second,
			},
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Engine: EngineConfig{
			DefaultCalendar: calendar.ISO8601,
		},
		Zones: ZonesConfig{
			CatalogDir: "./zones",
			Watch:      true,
			CacheTTL:   time.Hour,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
