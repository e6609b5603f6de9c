// Package config loads sunwindow settings from YAML, the environment and
// built-in defaults.
package config

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"cloudeng.io/errors"
	"github.com/spf13/viper"

	"github.com/thurmanmarka/sunwindow"
)

// EnvPrefix prefixes environment overrides, e.g. SUNWINDOW_LOCATION_LATITUDE.
const EnvPrefix = "SUNWINDOW"

type Config struct {
	Location LocationConfig `mapstructure:"location"`
	Search   SearchConfig   `mapstructure:"search"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	API      APIConfig      `mapstructure:"api"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

type LocationConfig struct {
	Name      string  `mapstructure:"name"`
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
}

type SearchConfig struct {
	WindowHours int     `mapstructure:"window_hours"`
	Horizon     float64 `mapstructure:"horizon"`
	Twilight    string  `mapstructure:"twilight"` // empty, civil, nautical or astronomical
}

type MonitorConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

type APIConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

type DatabaseConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"` // 0 keeps observations forever
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn or error
	Format string `mapstructure:"format"` // text or json
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("location.name", "home")
	v.SetDefault("location.latitude", 0.0)
	v.SetDefault("location.longitude", 0.0)
	v.SetDefault("search.window_hours", sunwindow.WindowHours)
	v.SetDefault("search.horizon", sunwindow.HorizonAltitude)
	v.SetDefault("search.twilight", "")
	v.SetDefault("monitor.enabled", true)
	v.SetDefault("monitor.interval", "1m")
	v.SetDefault("api.enabled", true)
	v.SetDefault("api.port", 8046)
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.topic_prefix", "sunwindow")
	v.SetDefault("mqtt.client_id", "")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("database.enabled", true)
	v.SetDefault("database.path", "./sunwindow.db")
	v.SetDefault("database.retention_days", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configPath, or sunwindow.yaml from the working directory or
// /etc/sunwindow when configPath is empty. A missing default file is not an
// error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("sunwindow")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/sunwindow")
	}
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs errors.M
	bad := func(field, format string, args ...any) {
		errs.Append(&ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if lat := c.Location.Latitude; math.IsNaN(lat) || lat < -90 || lat > 90 {
		bad("location.latitude", "%v is outside [-90, 90]", lat)
	}
	if lon := c.Location.Longitude; math.IsNaN(lon) || lon < -180 || lon > 180 {
		bad("location.longitude", "%v is outside [-180, 180]", lon)
	}
	if _, err := c.Finder(); err != nil {
		bad("search", "%v", err)
	}
	if c.Monitor.Enabled && c.Monitor.Interval <= 0 {
		bad("monitor.interval", "must be positive, got %v", c.Monitor.Interval)
	}
	if c.API.Enabled && (c.API.Port <= 0 || c.API.Port > 65535) {
		bad("api.port", "%d is not a valid port", c.API.Port)
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		bad("mqtt.broker", "required when mqtt is enabled")
	}
	if c.Database.Enabled && c.Database.Path == "" {
		bad("database.path", "required when the database is enabled")
	}
	if c.Database.RetentionDays < 0 {
		bad("database.retention_days", "must not be negative, got %d", c.Database.RetentionDays)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		bad("log.level", "%v", err)
	}
	if f := c.Log.Format; f != "text" && f != "json" {
		bad("log.format", "%q is not text or json", f)
	}
	return errs.Err()
}

// Finder builds the finder described by the search section. A twilight
// kind takes precedence over the horizon altitude.
func (c *Config) Finder() (*sunwindow.Finder, error) {
	opts := []sunwindow.Option{
		sunwindow.WithWindow(c.Search.WindowHours),
		sunwindow.WithHorizon(c.Search.Horizon),
	}
	if c.Search.Twilight != "" {
		k, err := sunwindow.ParseTwilight(c.Search.Twilight)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sunwindow.WithTwilight(k))
	}
	return sunwindow.NewFinder(opts...)
}

// Coordinates returns the configured location.
func (c *Config) Coordinates() sunwindow.Coordinates {
	return sunwindow.Coordinates{Lat: c.Location.Latitude, Lon: c.Location.Longitude}
}

// ParseLevel maps a level name to its slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}
