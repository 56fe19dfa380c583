// Package config loads GlobeGuru settings from an optional YAML file,
// GLOBEGURU_* environment variables and command-line flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "GLOBEGURU"

// Config is the full application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Geo      GeoConfig      `mapstructure:"geo"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Offline  OfflineConfig  `mapstructure:"offline"`
	Session  SessionConfig  `mapstructure:"session"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LogConfig configures zap
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig points at the optional PostgreSQL catalog
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// GeoConfig configures the location race
type GeoConfig struct {
	IPAPIURL  string        `mapstructure:"ipapi_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	CacheSize int           `mapstructure:"cache_size"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

// ChatConfig sets the simulated typing delays
type ChatConfig struct {
	ReplyDelay  time.Duration `mapstructure:"reply_delay"`
	WidgetDelay time.Duration `mapstructure:"widget_delay"`
}

// OfflineConfig sets the simulated download speed
type OfflineConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
	Step         int           `mapstructure:"step"`
}

// SessionConfig bounds the in-memory visitor sessions
type SessionConfig struct {
	Max int           `mapstructure:"max"`
	TTL time.Duration `mapstructure:"ttl"`
}

// Defaults
const (
	DefaultPort         = 3000
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "json"
	DefaultIPAPIURL     = "https://ipapi.co"
	DefaultGeoTimeout   = 8 * time.Second
	DefaultGeoCacheSize = 4096
	DefaultGeoCacheTTL  = time.Hour
	DefaultReplyDelay   = 1500 * time.Millisecond
	DefaultWidgetDelay  = time.Second
	DefaultTickInterval = 200 * time.Millisecond
	DefaultStep         = 10
	DefaultSessionMax   = 10000
	DefaultSessionTTL   = 30 * time.Minute
)

// NewViper returns a viper instance with every key defaulted and bound to its
// GLOBEGURU_ variable. Callers may bind flags on it before calling LoadWith.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("database.url", "")
	v.SetDefault("geo.ipapi_url", DefaultIPAPIURL)
	v.SetDefault("geo.timeout", DefaultGeoTimeout)
	v.SetDefault("geo.cache_size", DefaultGeoCacheSize)
	v.SetDefault("geo.cache_ttl", DefaultGeoCacheTTL)
	v.SetDefault("chat.reply_delay", DefaultReplyDelay)
	v.SetDefault("chat.widget_delay", DefaultWidgetDelay)
	v.SetDefault("offline.tick_interval", DefaultTickInterval)
	v.SetDefault("offline.step", DefaultStep)
	v.SetDefault("session.max", DefaultSessionMax)
	v.SetDefault("session.ttl", DefaultSessionTTL)

	// platform conventions
	_ = v.BindEnv("server.port", envPrefix+"_SERVER_PORT", "PORT")
	_ = v.BindEnv("database.url", envPrefix+"_DATABASE_URL", "DATABASE_URL")

	return v
}

// Load reads configPath when it is not empty, then applies env overrides
func Load(configPath string) (*Config, error) {
	return LoadWith(NewViper(), configPath)
}

// LoadWith is Load on a caller-prepared viper instance
func LoadWith(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the application cannot run with
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}
	if c.Geo.Timeout <= 0 {
		return fmt.Errorf("config: geo.timeout must be positive")
	}
	if c.Geo.CacheSize < 1 {
		return fmt.Errorf("config: geo.cache_size must be >= 1, got %d", c.Geo.CacheSize)
	}
	if c.Chat.ReplyDelay <= 0 || c.Chat.WidgetDelay <= 0 {
		return fmt.Errorf("config: chat delays must be positive")
	}
	if c.Offline.TickInterval <= 0 {
		return fmt.Errorf("config: offline.tick_interval must be positive")
	}
	if c.Offline.Step < 1 || c.Offline.Step > 100 {
		return fmt.Errorf("config: offline.step %d is out of range [1, 100]", c.Offline.Step)
	}
	if c.Session.Max < 1 {
		return fmt.Errorf("config: session.max must be >= 1, got %d", c.Session.Max)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("config: session.ttl must be positive")
	}
	return nil
}
