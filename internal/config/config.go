// AngelaMos | 2026
// config.go

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	JWT       JWTConfig       `koanf:"jwt"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
	Card      CardConfig      `koanf:"card"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
	AutoSchema      bool          `koanf:"auto_schema"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

type JWTConfig struct {
	Secret             string        `koanf:"secret"`
	AccessTokenExpire  time.Duration `koanf:"access_token_expire"`
	RefreshTokenExpire time.Duration `koanf:"refresh_token_expire"`
	Issuer             string        `koanf:"issuer"`
	Audience           string        `koanf:"audience"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type CardConfig struct {
	Organization    string `koanf:"organization"`
	TemplateVersion string `koanf:"template_version"`
	VerifyBaseURL   string `koanf:"verify_base_url"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

const minSecretLength = 32

//go:embed defaults.yaml
var defaultsYAML []byte

// embedded serves an in-binary YAML document to koanf.
type embedded []byte

func (e embedded) ReadBytes() ([]byte, error) { return e, nil }

func (e embedded) Read() (map[string]any, error) {
	return nil, errors.New("embedded provider only supports ReadBytes")
}

var (
	cfg  *Config
	once sync.Once
)

// Load parses the configuration once per process and caches the result.
func Load(configPath string) (*Config, error) {
	var loadErr error

	once.Do(func() {
		cfg, loadErr = Parse(configPath)
	})

	if loadErr != nil {
		return nil, loadErr
	}
	if cfg == nil {
		return nil, fmt.Errorf("config: previous load failed")
	}

	return cfg, nil
}

// Parse layers the embedded defaults, the optional YAML file and the
// environment, in that order, then validates the result.
func Parse(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(embedded(defaultsYAML), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		_, err := os.Stat(configPath)
		switch {
		case err == nil:
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file: %w", err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("stat config file: %w", err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	c := &Config{}
	if err := k.Unmarshal("", c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// sections are the top-level keys an environment variable may address as
// SECTION_FIELD, e.g. JWT_ACCESS_TOKEN_EXPIRE -> jwt.access_token_expire.
var sections = []string{
	"app", "server", "database", "redis", "jwt",
	"rate_limit", "cors", "log", "otel", "card",
}

var envAliases = map[string]string{
	"ENVIRONMENT":                 "app.environment",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
}

var listKeys = map[string]bool{
	"cors.allowed_origins": true,
	"cors.allowed_methods": true,
	"cors.allowed_headers": true,
}

// envKey maps an environment variable name to a config key, or "" to skip it.
func envKey(name string) string {
	if key, ok := envAliases[name]; ok {
		return key
	}

	lower := strings.ToLower(name)
	for _, section := range sections {
		if field, ok := strings.CutPrefix(lower, section+"_"); ok && field != "" {
			return section + "." + field
		}
	}
	return ""
}

func envValue(name, value string) (string, any) {
	key := envKey(name)
	if key == "" || !listKeys[key] {
		return key, value
	}

	items := strings.Split(value, ",")
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
	return key, items
}

// validate reports every problem at once.
func validate(c *Config) error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Database.URL != "", "DATABASE_URL is required")
	check(c.Redis.URL != "", "REDIS_URL is required")

	if c.JWT.Secret == "" {
		check(false, "JWT_SECRET is required")
	} else {
		check(len(c.JWT.Secret) >= minSecretLength,
			"JWT_SECRET must be at least %d bytes", minSecretLength)
	}
	check(c.JWT.AccessTokenExpire > 0, "jwt.access_token_expire must be positive")

	check(c.Card.TemplateVersion != "", "card.template_version is required")

	check(!(c.CORS.AllowCredentials && slices.Contains(c.CORS.AllowedOrigins, "*")),
		"CORS wildcard '*' cannot be used with allow_credentials")

	check(!(c.IsProduction() && c.Otel.Enabled && c.Otel.Insecure),
		"OTEL_INSECURE must be false in production")

	check(c.Server.ReadTimeout > 0, "server.read_timeout must be positive")
	check(c.Server.WriteTimeout > 0, "server.write_timeout must be positive")

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

func (s *ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
