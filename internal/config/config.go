package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/dkeye/bubble/internal/domain"
)

const DefaultPath = "./bubble.toml"

type Config struct {
	Server           []string      `mapstructure:"server"`
	Name             string        `mapstructure:"name"`
	DiscoveryTimeout time.Duration `mapstructure:"discovery_timeout"`
	ConnectTimeout   time.Duration `mapstructure:"connect_timeout"`
	Log              LogConfig     `mapstructure:"log"`
	Web              WebConfig     `mapstructure:"web"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

type WebConfig struct {
	Addr       string        `mapstructure:"addr"`
	Mode       string        `mapstructure:"mode"`
	StaticPath string        `mapstructure:"static_path"`
	SendRate   int           `mapstructure:"send_rate"`
	SendWindow time.Duration `mapstructure:"send_window"`
}

// Load reads the TOML file at path. A missing file is not an error: defaults
// and BUBBLE_* environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	if path == "" {
		path = DefaultPath
	}
	v.SetConfigFile(path)

	v.SetEnvPrefix("bubble")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server", []string{})
	v.SetDefault("name", "")
	v.SetDefault("discovery_timeout", "1s")
	v.SetDefault("connect_timeout", "5s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
	v.SetDefault("web.addr", "127.0.0.1:8787")
	v.SetDefault("web.mode", "release")
	v.SetDefault("web.static_path", "./web")
	v.SetDefault("web.send_rate", 5)
	v.SetDefault("web.send_window", "1s")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		log.Warn().Str("module", "config").Str("path", path).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("path", v.ConfigFileUsed()).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	// A single env value arrives as one string; split it like a list.
	if len(cfg.Server) == 1 && strings.ContainsAny(cfg.Server[0], " ,") {
		cfg.Server = strings.FieldsFunc(cfg.Server[0], func(r rune) bool { return r == ' ' || r == ',' })
	}
	return &cfg, nil
}

// Validate fails when no configured endpoint parses.
func (c *Config) Validate() error {
	eps, errs := domain.ParseEndpoints(c.Server)
	for _, err := range errs {
		log.Warn().Str("module", "config").Err(err).Msg("ignoring server entry")
	}
	if len(eps) == 0 {
		return domain.NewError(domain.ErrorConfiguration, "no valid server configured")
	}
	return nil
}
