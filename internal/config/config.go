// Package config loads axsim settings from defaults, an optional YAML file
// and AXSIM_* environment variables, in increasing order of precedence.
// Command-line flags are applied on top by the cmd package.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the root configuration.
type Config struct {
	// LogLevel is a zerolog level name.
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// LogFile, when set, receives a rotated copy of the log.
	LogFile string `yaml:"log_file" mapstructure:"log_file"`
	// Scenario is the YAML scenario seeding the simulated desktop. Empty
	// selects the built-in demo.
	Scenario string `yaml:"scenario" mapstructure:"scenario"`
	// MessagingTimeout bounds each callback hand-off to the main queue.
	// Zero waits indefinitely.
	MessagingTimeout time.Duration `yaml:"messaging_timeout" mapstructure:"messaging_timeout"`

	Server ServerConfig `yaml:"server" mapstructure:"server"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Transport   string        `yaml:"transport" mapstructure:"transport"`
	Port        int           `yaml:"port" mapstructure:"port"`
	CacheTTL    time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	MetricsAddr string        `yaml:"metrics_addr" mapstructure:"metrics_addr"`
}

// Transports accepted by ServerConfig.Transport.
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("scenario", "")
	v.SetDefault("messaging_timeout", "0s")

	v.SetDefault("server.transport", TransportStdio)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cache_ttl", "2s")
	v.SetDefault("server.metrics_addr", "")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("AXSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration. path may be empty, in which case only
// defaults and the environment apply.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decoderOption()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}

// Validate reports the first invalid setting.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", ErrInvalid)
	}
	if cfg.MessagingTimeout < 0 {
		return fmt.Errorf("%w: messaging_timeout must not be negative, got %s", ErrInvalid, cfg.MessagingTimeout)
	}
	switch cfg.Server.Transport {
	case TransportStdio, TransportStreamableHTTP:
	default:
		return fmt.Errorf("%w: server.transport must be %q or %q, got %q",
			ErrInvalid, TransportStdio, TransportStreamableHTTP, cfg.Server.Transport)
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port must be between 1 and 65535, got %d", ErrInvalid, cfg.Server.Port)
	}
	if cfg.Server.CacheTTL < 0 {
		return fmt.Errorf("%w: server.cache_ttl must not be negative, got %s", ErrInvalid, cfg.Server.CacheTTL)
	}
	return nil
}
