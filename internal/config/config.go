// Package config loads the application configuration.
//
// Values are layered, later layers winning:
//  1. built-in defaults (Default)
//  2. an optional YAML file, path taken from PLAYGROUND_CONFIG_PATH
//  3. environment variables prefixed with PLAYGROUND_ (a `.env` file is loaded first if present)
//
// Nested keys use a double underscore in env vars:
// PLAYGROUND_SERVER__PORT -> server.port -> Config.Server.Port.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/deppfellow/apiplayground/internal/validation"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix         = "PLAYGROUND_"
	ConfigPathEnvVar  = EnvPrefix + "CONFIG_PATH"
	EnvProduction     = "production"
	EnvDevelopment    = "development"
	EnvTest           = "test"
	defaultRootPath   = "/api/v1"
	defaultServiceTag = "apiplayground"
)

// Config is the root configuration object.
//
// Database is optional: without it the totem store lives in memory. An empty Redis address
// likewise switches the item key/value store and the job queue to in-process implementations.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      *DatabaseConfig      `koanf:"database" validate:"omitempty"`
	Redis         RedisConfig          `koanf:"redis"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=development production test"`

	// Debug adds the stack trace of unhandled errors to 500 responses.
	Debug bool `koanf:"debug"`
}

type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	RootPath           string   `koanf:"root_path"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// RateLimit is the sustained requests per second allowed per client IP; 0 disables limiting.
	RateLimit float64 `koanf:"rate_limit" validate:"gte=0"`
	RateBurst int     `koanf:"rate_burst" validate:"gte=0"`
}

type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

type RedisConfig struct {
	Address string `koanf:"address"`
}

type AuthConfig struct {
	BcryptCost int `koanf:"bcrypt_cost" validate:"min=4,max=31"`
}

type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	EmailFrom    string `koanf:"email_from" validate:"omitempty,email"`
}

// Default returns the built-in configuration layer.
func Default() *Config {
	return &Config{
		Primary: Primary{Env: EnvDevelopment},
		Server: ServerConfig{
			Port:               "8080",
			RootPath:           defaultRootPath,
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
			RateLimit:          20,
			RateBurst:          40,
		},
		Auth:          AuthConfig{BcryptCost: 10},
		Integration:   IntegrationConfig{EmailFrom: "playground@example.com"},
		Observability: DefaultObservabilityConfig(),
	}
}

// LoadConfig reads defaults, the optional YAML file and the environment, then validates the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envTransform maps PLAYGROUND_SERVER__CORS_ALLOWED_ORIGINS=a,b to server.cors_allowed_origins=[a b].
func envTransform(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "config_path" {
		return "", nil
	}
	key = strings.ReplaceAll(key, "__", ".")

	if strings.HasSuffix(key, "origins") || strings.HasSuffix(key, "checks") {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return key, parts
	}
	return key, value
}

func (c *Config) finalize() error {
	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}
	c.Observability.ServiceName = defaultServiceTag
	c.Observability.Environment = c.Primary.Env

	if c.Server.RootPath != "" && !strings.HasPrefix(c.Server.RootPath, "/") {
		c.Server.RootPath = "/" + c.Server.RootPath
	}
	c.Server.RootPath = strings.TrimSuffix(c.Server.RootPath, "/")

	if failures := validation.Struct(c); len(failures) > 0 {
		return fmt.Errorf("config validation failed: %w", failures)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Primary.Env == EnvProduction
}
