// Copyright 2026 The OpenTrusty Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/opentrusty/payrollgate/internal/rbac"
)

// Session stores
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// EnvProduction disables role simulation.
const EnvProduction = "production"

var (
	ErrParsingConfig = errors.New("failed to parse configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds all application configuration
type Config struct {
	Env string `env:"APP_ENV" envDefault:"development"`

	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Session       SessionConfig
	RBAC          RBACConfig
	Observability ObservabilityConfig
	RateLimit     RateLimitConfig
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64 `env:"RATELIMIT_RPS" envDefault:"10"`
	Burst             int     `env:"RATELIMIT_BURST" envDefault:"20"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port         string        `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`

	// FrontendDir holds the built console bundle. Empty disables SPA serving.
	FrontendDir  string   `env:"SERVER_FRONTEND_DIR"`
	AllowedHosts []string `env:"SERVER_ALLOWED_HOSTS" envSeparator:","`

	// TrustedProxies lists proxy addresses or CIDRs whose forwarding
	// headers are believed.
	TrustedProxies []string `env:"SERVER_TRUSTED_PROXIES" envSeparator:","`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string `env:"DB_HOST" envDefault:"localhost"`
	Port         string `env:"DB_PORT" envDefault:"5432"`
	User         string `env:"DB_USER" envDefault:"payrollgate"`
	Password     string `env:"DB_PASSWORD"`
	Database     string `env:"DB_NAME" envDefault:"payrollgate"`
	SSLMode      string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL            string        `env:"REDIS_URL"`
	KeyPrefix      string        `env:"REDIS_KEY_PREFIX" envDefault:"payrollgate:session:"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"10s"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
}

// SessionConfig holds session management configuration
type SessionConfig struct {
	Store           string        `env:"SESSION_STORE" envDefault:"memory"`
	CookieName      string        `env:"SESSION_COOKIE_NAME" envDefault:"payrollgate_session"`
	CookieDomain    string        `env:"SESSION_COOKIE_DOMAIN"`
	CookiePath      string        `env:"SESSION_COOKIE_PATH" envDefault:"/"`
	CookieSecure    bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	CookieSameSite  string        `env:"SESSION_COOKIE_SAME_SITE" envDefault:"Lax"`
	Lifetime        time.Duration `env:"SESSION_LIFETIME" envDefault:"24h"`
	IdleTimeout     time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"1h"`
	DefaultRole     rbac.Role     `env:"SESSION_DEFAULT_ROLE" envDefault:"SUPER_ADMIN"`
	AllowRoleSwitch bool          `env:"SESSION_ALLOW_ROLE_SWITCH" envDefault:"true"`

	// RequireTrustedRole refuses sessions that would take DefaultRole; the
	// role must arrive in TrustedRoleHeader from a trusted proxy.
	RequireTrustedRole bool   `env:"SESSION_REQUIRE_TRUSTED_ROLE" envDefault:"false"`
	TrustedRoleHeader  string `env:"SESSION_TRUSTED_ROLE_HEADER"`
}

// SameSiteMode maps CookieSameSite to net/http. Unknown values are Lax.
func (s SessionConfig) SameSiteMode() http.SameSite {
	switch strings.ToLower(s.CookieSameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// RBACConfig selects where the permission matrix comes from
type RBACConfig struct {
	MatrixSource string `env:"RBAC_MATRIX_SOURCE" envDefault:"static"`
	MatrixFile   string `env:"RBAC_MATRIX_FILE"`
}

// ObservabilityConfig holds logging and tracing configuration
type ObservabilityConfig struct {
	LogLevel       string  `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string  `env:"LOG_FORMAT" envDefault:"json"`
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	MetricsEnabled bool    `env:"METRICS_ENABLED" envDefault:"false"`
	ServiceName    string  `env:"OTEL_SERVICE_NAME" envDefault:"payrollgate"`
	ServiceVersion string  `env:"OTEL_SERVICE_VERSION" envDefault:"0.1.0"`
	SamplingRate   float64 `env:"OTEL_SAMPLING_RATE" envDefault:"1.0"`
}

// Load loads configuration from the environment, after an optional .env file
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Join(ErrParsingConfig, err)
	}
	return validated(&cfg)
}

// LoadFrom parses configuration from the given variables only
func LoadFrom(environ map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, errors.Join(ErrParsingConfig, err)
	}
	return validated(&cfg)
}

func validated(cfg *Config) (*Config, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// NeedsDatabase reports whether any component reads Postgres
func (c *Config) NeedsDatabase() bool {
	return c.RBAC.MatrixSource == rbac.SourcePostgres || c.Session.Store == StorePostgres
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error

	if !c.Session.DefaultRole.Valid() {
		errs = append(errs, fmt.Errorf("SESSION_DEFAULT_ROLE: %w", rbac.ErrUnknownRole))
	}
	if c.IsProduction() && c.Session.AllowRoleSwitch {
		errs = append(errs, errors.New("SESSION_ALLOW_ROLE_SWITCH must be false in production"))
	}
	if c.IsProduction() && !c.Session.RequireTrustedRole {
		errs = append(errs, errors.New("SESSION_REQUIRE_TRUSTED_ROLE must be true in production"))
	}
	if c.Session.RequireTrustedRole {
		if c.Session.TrustedRoleHeader == "" {
			errs = append(errs, errors.New("SESSION_TRUSTED_ROLE_HEADER is required when SESSION_REQUIRE_TRUSTED_ROLE=true"))
		}
		if len(c.Server.TrustedProxies) == 0 {
			errs = append(errs, errors.New("SERVER_TRUSTED_PROXIES is required when SESSION_REQUIRE_TRUSTED_ROLE=true"))
		}
	}
	for _, p := range c.Server.TrustedProxies {
		if !validProxy(p) {
			errs = append(errs, fmt.Errorf("SERVER_TRUSTED_PROXIES: invalid address or prefix %q", p))
		}
	}
	if c.Session.Lifetime <= 0 {
		errs = append(errs, errors.New("SESSION_LIFETIME must be positive"))
	}
	if c.Session.CleanupInterval <= 0 {
		errs = append(errs, errors.New("SESSION_CLEANUP_INTERVAL must be positive"))
	}
	if c.RateLimit.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("RATELIMIT_RPS must be positive"))
	}
	if c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("RATELIMIT_BURST must be positive"))
	}

	switch c.Session.Store {
	case StoreMemory, StorePostgres:
	case StoreRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("REDIS_URL is required when SESSION_STORE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE: unknown store %q", c.Session.Store))
	}

	switch c.RBAC.MatrixSource {
	case rbac.SourceStatic, rbac.SourcePostgres:
	case rbac.SourceYAML:
		if c.RBAC.MatrixFile == "" {
			errs = append(errs, errors.New("RBAC_MATRIX_FILE is required when RBAC_MATRIX_SOURCE=yaml"))
		}
	default:
		errs = append(errs, fmt.Errorf("RBAC_MATRIX_SOURCE: unknown source %q", c.RBAC.MatrixSource))
	}

	if c.NeedsDatabase() && c.Database.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD is required"))
	}

	if len(errs) > 0 {
		return errors.Join(ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func validProxy(entry string) bool {
	entry = strings.TrimSpace(entry)
	if strings.Contains(entry, "/") {
		_, err := netip.ParsePrefix(entry)
		return err == nil
	}
	_, err := netip.ParseAddr(entry)
	return err == nil
}
