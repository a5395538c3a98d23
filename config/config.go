// Package config loads gensync client configuration via Viper.
//
// Precedence: defaults < config file (gensync.toml, discovered by walking up
// from the working directory) < environment variables (GENSYNC_ prefix).
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/stratalab/gensync/errors"
)

// Config is the resolved client configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Push    PushConfig    `mapstructure:"push"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// APIConfig configures the request/response transport.
type APIConfig struct {
	// URL is the base URL of the generation API.
	URL string `mapstructure:"url"`
	// TimeoutSeconds bounds unary calls and the wait for stream headers.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// PushConfig configures the persistent push channel.
type PushConfig struct {
	// URL is the websocket endpoint. Empty derives ws(s):// from api.url.
	URL string `mapstructure:"url"`
	// ReconnectGraceSeconds is how long after connect (or after a drop) the
	// channel waits before its single liveness check / reconnect attempt.
	ReconnectGraceSeconds int `mapstructure:"reconnect_grace_seconds"`
}

// AuthConfig carries the bearer credential attached to every call.
type AuthConfig struct {
	Token string `mapstructure:"token"`
}

// LogConfig selects the log output format.
type LogConfig struct {
	JSON bool `mapstructure:"json"`
}

// MetricsConfig optionally exposes Prometheus counters.
type MetricsConfig struct {
	// Addr is the listen address for the /metrics endpoint. Empty disables it.
	Addr string `mapstructure:"addr"`
}

// Timeout returns the unary call deadline.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ReconnectGrace returns the push channel liveness grace period.
func (c PushConfig) ReconnectGrace() time.Duration {
	return time.Duration(c.ReconnectGraceSeconds) * time.Second
}

// WebSocketURL resolves the push endpoint, deriving it from the API base URL
// when not configured explicitly.
func (c Config) WebSocketURL() string {
	if c.Push.URL != "" {
		return c.Push.URL
	}
	return HTTPToWS(c.API.URL) + "/ws/generation"
}

// HTTPToWS converts http(s) URLs to ws(s) URLs.
func HTTPToWS(url string) string {
	if strings.HasPrefix(url, "https://") {
		return "wss://" + strings.TrimPrefix(url, "https://")
	}
	if strings.HasPrefix(url, "http://") {
		return "ws://" + strings.TrimPrefix(url, "http://")
	}
	return url
}

var (
	globalConfig  *Config
	viperInstance *viper.Viper
)

// Load reads configuration using the shared Viper instance. The result is
// cached for the process lifetime; use Reset in tests.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	globalConfig = &cfg
	return globalConfig, nil
}

// LoadWithViper loads configuration from a provided Viper instance.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config from %s", configPath)
	}
	return &cfg, nil
}

// GetViper returns the shared Viper instance for advanced access.
func GetViper() *viper.Viper {
	return initViper()
}

// Reset clears the cached configuration (useful for testing).
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	v.SetEnvPrefix("GENSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The credential usually arrives via environment, never a checked-in file.
	v.BindEnv("auth.token", "GENSYNC_TOKEN")

	SetDefaults(v)

	if path := findProjectConfig(); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		// Missing or unreadable file is non-fatal; defaults and env apply.
		_ = v.ReadInConfig()
	}

	viperInstance = v
	return v
}

// findProjectConfig searches for gensync.toml by walking up the directory
// tree. Returns empty string if none found.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		path := filepath.Join(dir, "gensync.toml")
		if _, err := os.Stat(path); err == nil {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
