package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/planbiir/gpause/internal/pause"
)

// Config holds all application configuration.
type Config struct {
	Detection pause.Config `mapstructure:"detection"`
	Log       LogConfig    `mapstructure:"log"`
	Server    ServerConfig `mapstructure:"server"`
	Store     StoreConfig  `mapstructure:"store"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	MaxUploadMB int    `mapstructure:"max_upload_mb"`
}

// StoreConfig points at the SQLite database. An empty path disables storage.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// Load reads configuration from an optional YAML file and GPAUSE_* environment
// variables on top of the defaults. When path is empty, gpause.yaml is looked
// up in the working directory and ./configs and may be absent.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	d := pause.DefaultConfig()
	v.SetDefault("detection.dist_start", d.DistStart)
	v.SetDefault("detection.dist_end", d.DistEnd)
	v.SetDefault("detection.time_window_start", d.TimeWindowStart)
	v.SetDefault("detection.time_window_end", d.TimeWindowEnd)
	v.SetDefault("detection.pace_start", d.PaceStart)
	v.SetDefault("detection.pace_end", d.PaceEnd)
	v.SetDefault("detection.n_start", d.NStart)
	v.SetDefault("detection.n_end", d.NEnd)
	v.SetDefault("detection.density_thresh", d.DensityThresh)
	v.SetDefault("detection.density_window", d.DensityWindow)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("store.path", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("gpause")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	// Environment variables: GPAUSE_DETECTION_DIST_START → detection.dist_start
	v.SetEnvPrefix("GPAUSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that every section is usable.
func (c *Config) Validate() error {
	var errs []string

	if err := c.Detection.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}
	if c.Server.Addr == "" {
		errs = append(errs, "server.addr is required")
	}
	if c.Server.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Sprintf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
