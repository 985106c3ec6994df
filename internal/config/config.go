package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server   ServerConfig
	Stream   StreamConfig
	Timeline TimelineConfig
	Database DatabaseConfig
	Log      LogConfig
	UI       UIConfig
}

// ServerConfig points at the nakama API.
type ServerConfig struct {
	URL     string
	Timeout time.Duration
}

// StreamConfig selects the push channel transport.
type StreamConfig struct {
	Transport      string        `mapstructure:"transport"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
}

// TimelineConfig holds feed settings.
type TimelineConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// LogConfig holds glog settings.
type LogConfig struct {
	Dir       string
	Verbosity int
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DateFormat string `mapstructure:"date_format"`
	StartPath  string `mapstructure:"start_path"`
}

// Load reads configuration from the file named by FEEDTERM_CONFIG (or the
// default location) and env. Env var overrides use prefix FEEDTERM_.
func Load() (Config, error) {
	return LoadFile(os.Getenv("FEEDTERM_CONFIG"))
}

// LoadFile is Load with an explicit config file. An empty path falls back to
// ~/.config/feedterm/config.toml when present.
func LoadFile(cfgPath string) (Config, error) {
	v := viper.New()

	home := os.Getenv("HOME")
	v.SetDefault("server.url", "http://localhost:3000")
	v.SetDefault("server.timeout", 60*time.Second)
	v.SetDefault("stream.transport", "sse")
	v.SetDefault("stream.reconnect_delay", 3*time.Second)
	v.SetDefault("timeline.page_size", 10)
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "feedterm", "feedterm.db"))
	v.SetDefault("log.dir", filepath.Join(home, ".local", "state", "feedterm", "logs"))
	v.SetDefault("log.verbosity", 0)
	v.SetDefault("ui.date_format", "Jan 2 15:04")
	v.SetDefault("ui.start_path", "/")

	v.SetConfigType("toml")

	explicit := cfgPath != ""
	if explicit {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "feedterm"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("FEEDTERM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// a missing default file is fine, a broken or missing explicit one is not
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the client cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.URL) == "" {
		return fmt.Errorf("config: server.url required")
	}
	switch strings.ToLower(c.Stream.Transport) {
	case "sse", "websocket":
	default:
		return fmt.Errorf("config: unknown stream.transport %q", c.Stream.Transport)
	}
	if c.Timeline.PageSize <= 0 || c.Timeline.PageSize > 99 {
		return fmt.Errorf("config: timeline.page_size must be within 1..99, got %d", c.Timeline.PageSize)
	}
	if !strings.HasPrefix(c.UI.StartPath, "/") {
		return fmt.Errorf("config: ui.start_path must start with /")
	}
	return nil
}
